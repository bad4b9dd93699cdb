package app

import (
	"context"
	"time"

	"github.com/shandysiswandi/gofactor/internal/pkg/goerror"
	"github.com/shandysiswandi/gofactor/internal/pkg/router"
)

type healthResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (h healthResponse) Message() string {
	return "service is healthy"
}

func (a *App) health(r *router.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.dbConn.Ping(ctx); err != nil {
		return nil, goerror.NewServerKind("StorageFailure", err)
	}
	if err := a.cacheConn.Ping(ctx).Err(); err != nil {
		return nil, goerror.NewServerKind("StorageFailure", err)
	}

	return healthResponse{
		Name:    a.config.GetString("app.name"),
		Version: a.config.GetString("app.version"),
	}, nil
}
