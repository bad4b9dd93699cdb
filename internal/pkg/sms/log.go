package sms

import (
	"context"
	"log/slog"
)

// Log writes messages to the default slog logger instead of sending them.
// The body is logged under "sms_body" so it can be masked like any other key.
type Log struct{}

func NewLog() *Log {
	return &Log{}
}

func (l *Log) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}

	slog.InfoContext(ctx, "sms: message delivered to log", "to", msg.To, "sms_body", msg.Body)
	return nil
}

func (l *Log) Close() error {
	return nil
}
