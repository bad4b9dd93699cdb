package sms

import (
	"context"
	"errors"
	"io"
	"strings"
)

var (
	// ErrNoRecipient is returned when Message.To is empty.
	ErrNoRecipient = errors.New("sms: no recipient provided")
	// ErrUnknownDriver is returned by NewFromDriver for an unsupported driver.
	ErrUnknownDriver = errors.New("sms: unknown driver")
)

const (
	DriverLog     = "log"
	DriverWebhook = "webhook"
)

// Message is a provider-agnostic text message.
type Message struct {
	// To is the E.164 phone number.
	To string
	// Body is the plain text content.
	Body string
}

// SMS abstracts a text message gateway.
type SMS interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}

// FactoryOptions carries the settings of every driver.
type FactoryOptions struct {
	Webhook WebhookConfig
}

// NewFromDriver builds the gateway named by driver. An empty name selects "log".
func NewFromDriver(driver string, opts FactoryOptions) (SMS, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverLog:
		return NewLog(), nil
	case DriverWebhook:
		return NewWebhook(opts.Webhook)
	default:
		return nil, ErrUnknownDriver
	}
}
