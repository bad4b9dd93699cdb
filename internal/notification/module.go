package notification

import (
	"context"

	"github.com/shandysiswandi/gofactor/internal/notification/inbound"
	"github.com/shandysiswandi/gofactor/internal/notification/outbound/archive"
	outsms "github.com/shandysiswandi/gofactor/internal/notification/outbound/sms"
	"github.com/shandysiswandi/gofactor/internal/notification/usecase"
	"github.com/shandysiswandi/gofactor/internal/pkg/clock"
	"github.com/shandysiswandi/gofactor/internal/pkg/config"
	"github.com/shandysiswandi/gofactor/internal/pkg/goroutine"
	"github.com/shandysiswandi/gofactor/internal/pkg/instrument"
	"github.com/shandysiswandi/gofactor/internal/pkg/messaging"
	"github.com/shandysiswandi/gofactor/internal/pkg/sms"
	"github.com/shandysiswandi/gofactor/internal/pkg/storage"
	"github.com/shandysiswandi/gofactor/internal/pkg/uid"
	"github.com/shandysiswandi/gofactor/internal/pkg/validator"
)

type Dependency struct {
	Ctx       context.Context
	Messaging messaging.Consumer
	SMS       sms.SMS
	// Storage is optional; without it binding events are not archived.
	Storage    storage.Storage
	Config     config.Config
	Instrument instrument.Instrumentation
	UUID       uid.StringID
	Clock      clock.Clocker
	Goroutine  *goroutine.Manager
	Validator  validator.Validator
}

func New(dep Dependency) error {
	var repoArchive *archive.Archive
	if dep.Storage != nil {
		repoArchive = archive.New(dep.Storage, dep.Config.GetString("modules.notification.archive.bucket"), dep.Instrument)
	}

	deps := usecase.Dependency{
		RepoSMS:    outsms.New(dep.SMS, dep.Instrument),
		Config:     dep.Config,
		Clock:      dep.Clock,
		Validator:  dep.Validator,
		Instrument: dep.Instrument,
	}
	if repoArchive != nil {
		deps.RepoArchive = repoArchive
	}

	uc, err := usecase.NewNotification(deps)
	if err != nil {
		return err
	}

	if dep.Ctx != nil {
		inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)
	}

	return nil
}
