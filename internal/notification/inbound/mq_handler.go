package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/gofactor/internal/notification/entity"
	"github.com/shandysiswandi/gofactor/internal/notification/usecase"
	"github.com/shandysiswandi/gofactor/internal/pkg/instrument"
	"github.com/shandysiswandi/gofactor/internal/pkg/messaging"
	"github.com/shandysiswandi/gofactor/internal/pkg/uid"
	"github.com/shandysiswandi/gofactor/internal/shared/event"
)

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg messaging.Message) context.Context {
	if cID := msg.Header(event.HeaderCorrelationID); cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

// SMSCodeRequested never logs the body: it carries the plain code.
func (h *MQHandler) SMSCodeRequested(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "SMSCodeRequested")
	defer span.End()

	slog.InfoContext(ctx, "consume: sms code requested", "msg_id", msg.ID())

	var payload event.SMSCodeRequestedMessage
	if err := json.Unmarshal(msg.Body(), &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of sms code requested", "msg_id", msg.ID(), "error", err)
		return nil
	}

	if err := h.uc.DeliverSMS(ctx, usecase.DeliverSMSInput{
		Address:     payload.Address,
		Phone:       payload.Phone,
		Code:        payload.Code,
		RequestedAt: payload.RequestedAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume sms code requested", "msg_id", msg.ID(), "error", err)
		return err
	}

	return nil
}

func (h *MQHandler) BindingVerified(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "BindingVerified")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: binding verified", "msg_body", string(body))

	var payload event.BindingVerifiedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of binding verified", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ArchiveBindingEvent(ctx, usecase.ArchiveBindingEventInput{
		EventID:    payload.EventID,
		Kind:       entity.AuditBindingVerified,
		Address:    payload.Address,
		Channel:    payload.Channel,
		OccurredAt: payload.VerifiedAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume binding verified", "msg_body", string(body), "error", err)
		return err
	}

	return nil
}

func (h *MQHandler) BindingDeleted(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "BindingDeleted")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: binding deleted", "msg_body", string(body))

	var payload event.BindingDeletedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of binding deleted", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ArchiveBindingEvent(ctx, usecase.ArchiveBindingEventInput{
		EventID:    payload.EventID,
		Kind:       entity.AuditBindingDeleted,
		Address:    payload.Address,
		Channel:    payload.Channel,
		OccurredAt: payload.DeletedAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume binding deleted", "msg_body", string(body), "error", err)
		return err
	}

	return nil
}
