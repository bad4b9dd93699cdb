package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/gofactor/internal/pkg/goerror"
	"github.com/shandysiswandi/gofactor/internal/pkg/mfa"
	"github.com/shandysiswandi/gofactor/internal/recovery/entity"
)

type VerifyAuthenticatorInput struct {
	Address string         `json:"address" validate:"required,hexadecimal,len=128"`
	Code    string         `json:"code" validate:"required,len=6"`
	Data    map[string]any `json:"data"`
}

// VerifyAuthenticator checks a TOTP code against the live authenticator
// binding of address. A soft deleted binding resolves as InvalidAddress.
func (s *Usecase) VerifyAuthenticator(ctx context.Context, in VerifyAuthenticatorInput) (*VerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyAuthenticator")
	defer span.End()

	in.Address = normalizeAddress(in.Address)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	b, err := s.lookup(ctx, entity.ChannelAuthenticator, in.Address)
	if err != nil {
		return nil, err
	}

	secret, err := s.sealer.DecryptString(b.Secret, mfa.Scope{Subject: b.Address, Purpose: mfa.PurposeTOTPSecret})
	if err != nil {
		slog.ErrorContext(ctx, "failed to decrypt totp secret", "address", b.Address, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.totp.Validate(secret, in.Code) {
		slog.WarnContext(ctx, "totp code mismatch", "address", b.Address)
		return nil, entity.ErrInvalidCode
	}

	data, err := s.complete(ctx, entity.ChannelAuthenticator, b.Address, in.Data)
	if err != nil {
		return nil, err
	}

	return &VerifyOutput{Data: data}, nil
}
