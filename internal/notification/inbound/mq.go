package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/gofactor/internal/pkg/config"
	"github.com/shandysiswandi/gofactor/internal/pkg/goroutine"
	"github.com/shandysiswandi/gofactor/internal/pkg/instrument"
	"github.com/shandysiswandi/gofactor/internal/pkg/messaging"
	"github.com/shandysiswandi/gofactor/internal/pkg/uid"
	"github.com/shandysiswandi/gofactor/internal/shared/event"
)

// RegisterMQConsumer starts one consumer per name listed in
// modules.notification.consumer_names. Consumers stop when ctx is done.
func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	consumer messaging.Consumer,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enableConsumerNames := cfg.GetArray("modules.notification.consumer_names")
	concurrency := max(cfg.GetInt("modules.notification.consumer_concurrency"), 1)

	var consumers = []struct {
		name    string // also the group, channel, queue group or subscription
		topic   string // destination where publisher sent message
		handler messaging.Handler
	}{
		{
			name:    event.SMSCodeRequestedConsumerNotification,
			topic:   event.SMSCodeRequestedDestination,
			handler: mqHandler.SMSCodeRequested,
		},
		{
			name:    event.BindingVerifiedConsumerNotification,
			topic:   event.BindingVerifiedDestination,
			handler: mqHandler.BindingVerified,
		},
		{
			name:    event.BindingDeletedConsumerNotification,
			topic:   event.BindingDeletedDestination,
			handler: mqHandler.BindingDeleted,
		},
	}

	for _, c := range consumers {
		if !slices.Contains(enableConsumerNames, c.name) {
			continue
		}

		routine.Go(ctx, func(pCtx context.Context) error {
			slog.InfoContext(ctx, "Running job for handling consumer", "consumer", c.name)
			return consumer.Consume(pCtx,
				c.topic,
				c.handler,
				messaging.WithGroup(c.name),
				messaging.WithAutoAck(true),
				messaging.WithConcurrency(concurrency),
				messaging.WithMaxInFlight(concurrency),
			)
		})
	}
}
