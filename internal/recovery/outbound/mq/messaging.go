package mq

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/gofactor/internal/pkg/instrument"
	"github.com/shandysiswandi/gofactor/internal/pkg/messaging"
	"github.com/shandysiswandi/gofactor/internal/pkg/uid"
	"github.com/shandysiswandi/gofactor/internal/recovery/usecase"
	"github.com/shandysiswandi/gofactor/internal/shared/event"
)

type Messaging struct {
	client messaging.Publisher
	uuid   uid.StringID
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, uuid uid.StringID, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, uuid: uuid, ins: ins}
}

func (m *Messaging) PublishSMSCodeRequested(ctx context.Context, msg usecase.SMSCodeRequestedEvent) error {
	return m.publish(ctx, "PublishSMSCodeRequested", event.SMSCodeRequestedDestination, msg.Address, event.SMSCodeRequestedMessage{
		Address:     msg.Address,
		Phone:       msg.Phone,
		Code:        msg.Code,
		RequestedAt: msg.RequestedAt,
	})
}

func (m *Messaging) PublishBindingVerified(ctx context.Context, msg usecase.BindingVerifiedEvent) error {
	return m.publish(ctx, "PublishBindingVerified", event.BindingVerifiedDestination, msg.Address, event.BindingVerifiedMessage{
		EventID:    m.uuid.Generate(),
		Address:    msg.Address,
		Channel:    msg.Channel.String(),
		VerifiedAt: msg.VerifiedAt,
	})
}

func (m *Messaging) PublishBindingDeleted(ctx context.Context, msg usecase.BindingDeletedEvent) error {
	return m.publish(ctx, "PublishBindingDeleted", event.BindingDeletedDestination, msg.Address, event.BindingDeletedMessage{
		EventID:   m.uuid.Generate(),
		Address:   msg.Address,
		Channel:   msg.Channel.String(),
		DeletedAt: msg.DeletedAt,
	})
}

// publish keys every message by address so one address stays ordered on
// brokers that partition.
func (m *Messaging) publish(ctx context.Context, name, topic, address string, payload any) error {
	ctx, span := m.ins.Tracer("recovery.outbound.mq").Start(ctx, name,
		trace.WithAttributes(attribute.String("messaging.destination", topic)))
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := m.client.Publish(ctx, topic, messaging.OutgoingMessage{
		Body:    body,
		Key:     address,
		Headers: map[string]string{event.HeaderCorrelationID: instrument.GetCorrelationID(ctx)},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
