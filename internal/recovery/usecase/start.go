package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/gofactor/internal/pkg/goerror"
	"github.com/shandysiswandi/gofactor/internal/pkg/idempotency"
	"github.com/shandysiswandi/gofactor/internal/recovery/entity"
)

type StartVerificationInput struct {
	Address string `json:"address" validate:"required,hexadecimal,len=128"`
}

type StartVerificationOutput struct {
	Success bool
	// Code is only set when codes are exposed for local development.
	Code string
}

// StartVerification issues a fresh SMS code for the phone bound to address
// and hands it to the notification pipeline.
func (s *Usecase) StartVerification(ctx context.Context, in StartVerificationInput) (*StartVerificationOutput, error) {
	ctx, span := s.startSpan(ctx, "StartVerification")
	defer span.End()

	in.Address = normalizeAddress(in.Address)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	b, err := s.lookup(ctx, entity.ChannelPhone, in.Address)
	if err != nil {
		return nil, err
	}

	var code string
	issue := func(ctx context.Context) error {
		c, err := s.sms.Initiate(ctx, b.Secret)
		if err != nil {
			slog.ErrorContext(ctx, "failed to initiate sms code", "address", b.Address, "error", err)
			return entity.NewStorageFailure(err)
		}

		if err := s.repoMessaging.PublishSMSCodeRequested(ctx, SMSCodeRequestedEvent{
			Address:     b.Address,
			Phone:       b.Secret,
			Code:        c,
			RequestedAt: s.clock.Now(),
		}); err != nil {
			slog.ErrorContext(ctx, "failed to publish sms code requested", "address", b.Address, "error", err)
			return goerror.NewServer(err)
		}

		code = c
		return nil
	}

	if err := s.withCooldown(ctx, "sms:"+b.Address, issue); err != nil {
		return nil, err
	}

	out := &StartVerificationOutput{Success: true}
	if s.cfg.GetBool("modules.recovery.sms.expose_code") {
		out.Code = code
	}

	return out, nil
}

// withCooldown runs fn at most once per resend cooldown for key.
// A failed fn releases the key so the caller can retry at once.
func (s *Usecase) withCooldown(ctx context.Context, key string, fn func(context.Context) error) error {
	cooldown := s.cfg.GetDuration("modules.recovery.sms.resend_cooldown")
	if cooldown <= 0 || s.idemp == nil {
		return fn(ctx)
	}

	var fnErr error
	err := s.idemp.Exec(ctx, key, func(ctx context.Context) error {
		fnErr = fn(ctx)
		return fnErr
	},
		idempotency.WithLockDuration(cooldown),
		idempotency.WithStateTTL(cooldown),
		idempotency.WithReleaseOnFailure(),
	)

	switch {
	case fnErr != nil:
		return fnErr
	case errors.Is(err, idempotency.ErrAlreadyInProgress),
		errors.Is(err, idempotency.ErrAlreadyCompleted),
		errors.Is(err, idempotency.ErrAlreadyFailed):
		slog.WarnContext(ctx, "sms code requested inside cooldown", "key", key)
		return entity.ErrTooManyRequests
	case err != nil:
		slog.ErrorContext(ctx, "failed to guard sms resend", "key", key, "error", err)
		return entity.NewStorageFailure(err)
	}

	return nil
}
