package inbound

import (
	"context"

	"github.com/shandysiswandi/gofactor/internal/pkg/router"
	"github.com/shandysiswandi/gofactor/internal/recovery/usecase"
)

type uc interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.RegisterOutput, error)
	StartVerification(ctx context.Context, in usecase.StartVerificationInput) (*usecase.StartVerificationOutput, error)
	Verify(ctx context.Context, in usecase.VerifyInput) (*usecase.VerifyOutput, error)

	RegisterAuthenticator(ctx context.Context, in usecase.RegisterAuthenticatorInput) (*usecase.RegisterAuthenticatorOutput, error)
	VerifyAuthenticator(ctx context.Context, in usecase.VerifyAuthenticatorInput) (*usecase.VerifyOutput, error)
	DeleteAuthenticator(ctx context.Context, in usecase.DeleteAuthenticatorInput) (*usecase.DeleteAuthenticatorOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Phone
	r.POST("/api/v1/register", end.Register)
	r.POST("/api/v1/start", end.StartVerification)
	r.POST("/api/v1/verify", end.Verify)

	// Authenticator (TOTP)
	r.POST("/api/v1/authenticator/register", end.RegisterAuthenticator)
	r.POST("/api/v1/authenticator/verify", end.VerifyAuthenticator)
	r.POST("/api/v1/authenticator/delete", end.DeleteAuthenticator)
}
