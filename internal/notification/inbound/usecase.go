package inbound

import (
	"context"

	"github.com/shandysiswandi/gofactor/internal/notification/usecase"
)

type uc interface {
	DeliverSMS(ctx context.Context, in usecase.DeliverSMSInput) error
	ArchiveBindingEvent(ctx context.Context, in usecase.ArchiveBindingEventInput) error
}
