package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/gofactor/internal/notification/entity"
	"github.com/shandysiswandi/gofactor/internal/pkg/sms"
)

type DeliverSMSInput struct {
	Address     string    `validate:"required"`
	Phone       string    `validate:"required,e164"`
	Code        string    `validate:"required,numeric,len=6"`
	RequestedAt time.Time `validate:"required"`
}

// DeliverSMS renders and sends a requested code. Invalid payloads and codes
// that expired while queued are dropped; gateway failures are returned so the
// broker redelivers.
func (s *Usecase) DeliverSMS(ctx context.Context, in DeliverSMSInput) error {
	ctx, span := s.startSpan(ctx, "DeliverSMS")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "error", err)
		return nil
	}

	code := entity.SMSCode(in)
	if code.Expired(s.clock.Now(), s.cfg.GetDuration("modules.recovery.sms.code_ttl")) {
		slog.WarnContext(ctx, "sms code expired before delivery", "address", in.Address, "requested_at", in.RequestedAt)
		return nil
	}

	var body strings.Builder
	if err := s.smsTpl.Execute(&body, code); err != nil {
		slog.ErrorContext(ctx, "failed to render sms body", "address", in.Address, "error", err)
		return nil
	}

	if err := s.repoSMS.Send(ctx, sms.Message{To: in.Phone, Body: body.String()}); err != nil {
		slog.ErrorContext(ctx, "failed to send sms", "address", in.Address, "error", err)
		return err
	}

	slog.InfoContext(ctx, "sms code delivered", "address", in.Address)
	return nil
}
