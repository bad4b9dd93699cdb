package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/gofactor/internal/notification/entity"
	"github.com/shandysiswandi/gofactor/internal/pkg/instrument"
)

type ArchiveBindingEventInput struct {
	EventID    string           `validate:"required"`
	Kind       entity.AuditKind `validate:"required,oneof=binding_verified binding_deleted"`
	Address    string           `validate:"required"`
	Channel    string           `validate:"required,oneof=phone authenticator"`
	OccurredAt time.Time        `validate:"required"`
}

// ArchiveBindingEvent writes a binding event to object storage when
// modules.notification.archive.enabled is set. The object key is derived from
// the event id, so a redelivered event overwrites its own record.
func (s *Usecase) ArchiveBindingEvent(ctx context.Context, in ArchiveBindingEventInput) error {
	ctx, span := s.startSpan(ctx, "ArchiveBindingEvent")
	defer span.End()

	if !s.cfg.GetBool("modules.notification.archive.enabled") || s.repoArchive == nil {
		slog.DebugContext(ctx, "archive disabled, skipping binding event", "event_id", in.EventID)
		return nil
	}

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "error", err)
		return nil
	}

	rec := entity.AuditRecord{
		EventID:       in.EventID,
		Kind:          in.Kind,
		Address:       in.Address,
		Channel:       in.Channel,
		OccurredAt:    in.OccurredAt,
		CorrelationID: instrument.GetCorrelationID(ctx),
	}

	key := rec.ObjectKey(s.cfg.GetString("modules.notification.archive.prefix"))
	if err := s.repoArchive.Put(ctx, key, rec); err != nil {
		slog.ErrorContext(ctx, "failed to archive binding event", "event_id", in.EventID, "key", key, "error", err)
		return err
	}

	return nil
}
