package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/gofactor/internal/pkg/clock"
	"github.com/shandysiswandi/gofactor/internal/pkg/config"
	"github.com/shandysiswandi/gofactor/internal/pkg/ecsig"
	"github.com/shandysiswandi/gofactor/internal/pkg/goerror"
	"github.com/shandysiswandi/gofactor/internal/pkg/idempotency"
	"github.com/shandysiswandi/gofactor/internal/pkg/instrument"
	"github.com/shandysiswandi/gofactor/internal/pkg/mfa"
	"github.com/shandysiswandi/gofactor/internal/pkg/uid"
	"github.com/shandysiswandi/gofactor/internal/pkg/validator"
	"github.com/shandysiswandi/gofactor/internal/pkg/valueobject"
	"github.com/shandysiswandi/gofactor/internal/recovery/entity"
)

type SMSCodeRequestedEvent struct {
	Address     string
	Phone       string
	Code        string
	RequestedAt time.Time
}

type BindingVerifiedEvent struct {
	Address    string
	Channel    entity.Channel
	VerifiedAt time.Time
}

type BindingDeletedEvent struct {
	Address   string
	Channel   entity.Channel
	DeletedAt time.Time
}

type repoMessaging interface {
	PublishSMSCodeRequested(ctx context.Context, msg SMSCodeRequestedEvent) error
	PublishBindingVerified(ctx context.Context, msg BindingVerifiedEvent) error
	PublishBindingDeleted(ctx context.Context, msg BindingDeletedEvent) error
}

type repoDB interface {
	GetBinding(ctx context.Context, ch entity.Channel, address string) (*entity.Binding, error)
	CreateBinding(ctx context.Context, b entity.Binding) error
	UpdatePendingSecret(ctx context.Context, ch entity.Channel, address, secret string) error
	VerifyBinding(ctx context.Context, ch entity.Channel, address string, data valueobject.JSONMap) (*entity.Verification, error)
	SoftDeleteAuthenticator(ctx context.Context, address string) error
}

type smsOTP interface {
	Initiate(ctx context.Context, phone string) (string, error)
	Verify(ctx context.Context, phone, candidate string) error
}

type totpEngine interface {
	Validate(secret, candidate string) bool
}

type secretProvisioner interface {
	Generate(accountName string) (secret string, uri string, err error)
}

type secretSealer interface {
	EncryptString(plaintext string, scope mfa.Scope) (string, error)
	DecryptString(ciphertext string, scope mfa.Scope) (string, error)
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	idemp         idempotency.Idempotency
	validator     validator.Validator
	cfg           config.Config
	verifier      ecsig.Verifier
	sms           smsOTP
	totp          totpEngine
	provisioner   secretProvisioner
	sealer        secretSealer
	uid           uid.NumberID
	clock         clock.Clocker
	ins           instrument.Instrumentation
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Idempotency   idempotency.Idempotency
	Validator     validator.Validator
	Config        config.Config
	Verifier      ecsig.Verifier
	SMS           smsOTP
	TOTP          totpEngine
	Provisioner   secretProvisioner
	Sealer        secretSealer
	UID           uid.NumberID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		idemp:         dep.Idempotency,
		validator:     dep.Validator,
		cfg:           dep.Config,
		verifier:      dep.Verifier,
		sms:           dep.SMS,
		totp:          dep.TOTP,
		provisioner:   dep.Provisioner,
		sealer:        dep.Sealer,
		uid:           dep.UID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("recovery.usecase").Start(ctx, name)
}

// PublicKey and Signature are the wire shapes of the signed claim.
type PublicKey struct {
	X string `json:"x" validate:"required,hexcoord"`
	Y string `json:"y" validate:"required,hexcoord"`
}

type Signature struct {
	R string `json:"r" validate:"required,hexcoord"`
	S string `json:"s" validate:"required,hexcoord"`
	V string `json:"v" validate:"omitempty,max=4"`
}

// authenticate derives the address of pub and checks sig over message.
// It runs before any registry access.
func (s *Usecase) authenticate(ctx context.Context, pub PublicKey, sig Signature, message func(address string) string) (string, error) {
	key := ecsig.PublicKey{X: pub.X, Y: pub.Y}

	address, err := ecsig.Address(key)
	if err != nil {
		return "", entity.ErrInvalidSignature
	}

	if err := s.verifier.Verify(key, ecsig.Signature{R: sig.R, S: sig.S, V: sig.V}, []byte(message(address))); err != nil {
		slog.WarnContext(ctx, "signature rejected", "address", address, "error", err)
		return "", entity.ErrInvalidSignature
	}

	return address, nil
}

func normalizeAddress(address string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(address), "0x"))
}

// lookup resolves the live binding of address, mapping a miss to InvalidAddress.
func (s *Usecase) lookup(ctx context.Context, ch entity.Channel, address string) (*entity.Binding, error) {
	b, err := s.repoDB.GetBinding(ctx, ch, address)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, entity.ErrInvalidAddress
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get binding", "channel", ch, "address", address, "error", err)
		return nil, entity.NewStorageFailure(err)
	}
	return b, nil
}

const (
	registerAttempts = 3
	registerBackoff  = 10 * time.Millisecond
)

// register applies the register transition for address. A concurrent writer
// surfaces as goerror.ErrConflict and is retried against the fresh row.
// It reports whether the binding was already verified.
func (s *Usecase) register(ctx context.Context, ch entity.Channel, address, secret string) (bool, error) {
	var alreadyVerified bool

	backoff := retry.WithMaxRetries(registerAttempts, retry.NewConstant(registerBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		state := entity.StateUnregistered
		b, err := s.repoDB.GetBinding(ctx, ch, address)
		switch {
		case err == nil:
			state = b.State
		case !errors.Is(err, goerror.ErrNotFound):
			return err
		}

		switch state.Register() {
		case entity.RegisterNoop:
			alreadyVerified = true
			return nil
		case entity.RegisterOverwrite:
			err = s.repoDB.UpdatePendingSecret(ctx, ch, address, secret)
		default:
			err = s.repoDB.CreateBinding(ctx, entity.Binding{
				ID:      s.uid.Generate(),
				Channel: ch,
				Address: address,
				Secret:  secret,
				State:   entity.StatePending,
			})
		}

		if errors.Is(err, goerror.ErrConflict) {
			slog.InfoContext(ctx, "binding changed concurrently, retrying register", "channel", ch, "address", address)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to register binding", "channel", ch, "address", address, "error", err)
		return false, entity.NewStorageFailure(err)
	}

	return alreadyVerified, nil
}

// complete applies the verify transition, merging data, and announces the
// first transition.
func (s *Usecase) complete(ctx context.Context, ch entity.Channel, address string, data map[string]any) (valueobject.JSONMap, error) {
	v, err := s.repoDB.VerifyBinding(ctx, ch, address, valueobject.JSONMap(data))
	switch {
	case errors.Is(err, goerror.ErrNotFound):
		return nil, entity.ErrInvalidAddress
	case errors.Is(err, entity.ErrIllegalTransition):
		return nil, err
	case err != nil:
		slog.ErrorContext(ctx, "failed to repo verify binding", "channel", ch, "address", address, "error", err)
		return nil, entity.NewStorageFailure(err)
	}

	if v.Transitioned {
		if err := s.repoMessaging.PublishBindingVerified(ctx, BindingVerifiedEvent{
			Address:    address,
			Channel:    ch,
			VerifiedAt: s.clock.Now(),
		}); err != nil {
			slog.ErrorContext(ctx, "failed to publish binding verified", "channel", ch, "address", address, "error", err)
		}
	}

	if v.Data == nil {
		return valueobject.JSONMap{}, nil
	}
	return v.Data, nil
}
