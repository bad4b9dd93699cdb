package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// ErrWebhookURLRequired is returned when WebhookConfig.URL is empty.
var ErrWebhookURLRequired = errors.New("sms: webhook url is required")

// WebhookConfig configures the HTTP gateway.
type WebhookConfig struct {
	// URL receives a POST with {"to": "...", "body": "..."}.
	URL string
	// Token is sent as a bearer token when set.
	Token string
	// Timeout bounds a single attempt. Defaults to 5s.
	Timeout time.Duration
	// MaxRetries is the number of retries after the first attempt. Defaults to 3.
	MaxRetries uint64
	// Backoff is the first exponential backoff step. Defaults to 200ms.
	Backoff time.Duration
}

// Webhook posts messages to an HTTP SMS gateway, retrying 5xx responses and
// transport errors with exponential backoff.
type Webhook struct {
	cfg    WebhookConfig
	client *http.Client
}

type webhookPayload struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

func NewWebhook(cfg WebhookConfig) (*Webhook, error) {
	if cfg.URL == "" {
		return nil, ErrWebhookURLRequired
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 200 * time.Millisecond
	}

	return &Webhook{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}, nil
}

func (w *Webhook) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}

	body, err := json.Marshal(webhookPayload{To: msg.To, Body: msg.Body})
	if err != nil {
		return err
	}

	backoff := retry.WithMaxRetries(w.cfg.MaxRetries, retry.NewExponential(w.cfg.Backoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		return w.post(ctx, body)
	})
}

func (w *Webhook) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+w.cfg.Token)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return retry.RetryableError(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return retry.RetryableError(fmt.Errorf("sms: webhook responded %d", resp.StatusCode))
	case resp.StatusCode >= 300:
		return fmt.Errorf("sms: webhook responded %d", resp.StatusCode)
	}

	return nil
}

func (w *Webhook) Close() error {
	w.client.CloseIdleConnections()
	return nil
}
