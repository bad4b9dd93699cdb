package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/gofactor/internal/pkg/goerror"
	"github.com/shandysiswandi/gofactor/internal/pkg/mfa"
	"github.com/shandysiswandi/gofactor/internal/pkg/otp"
	"github.com/shandysiswandi/gofactor/internal/recovery/entity"
)

type RegisterAuthenticatorInput struct {
	PubKey    PublicKey `json:"pubKey" validate:"required"`
	Sig       Signature `json:"sig" validate:"required"`
	SecretKey string    `json:"secretKey" validate:"omitempty,base32secret"`
}

type RegisterAuthenticatorOutput struct {
	Success    bool
	Registered bool
	Secret     string
	QRData     string
}

// RegisterAuthenticator binds a TOTP secret to the address of the signing key.
//
// A client supplied secret must be covered by the signature. Without one the
// signature covers the address and the server provisions the secret.
func (s *Usecase) RegisterAuthenticator(ctx context.Context, in RegisterAuthenticatorInput) (*RegisterAuthenticatorOutput, error) {
	ctx, span := s.startSpan(ctx, "RegisterAuthenticator")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	var secret string
	provided := in.SecretKey != ""
	if provided {
		normalized, err := otp.NormalizeSecret(in.SecretKey)
		if err != nil {
			return nil, goerror.NewInvalidInput(nil, "secretKey", "secretKey must be a valid base32 secret")
		}
		secret = normalized
	}

	// the signature covers the secret exactly as sent
	address, err := s.authenticate(ctx, in.PubKey, in.Sig, func(address string) string {
		if provided {
			return in.SecretKey
		}
		return address
	})
	if err != nil {
		return nil, err
	}

	uri := ""
	if !provided {
		secret, uri, err = s.provisioner.Generate(address)
		if err != nil {
			slog.ErrorContext(ctx, "failed to generate totp secret", "address", address, "error", err)
			return nil, goerror.NewServer(err)
		}
	}

	sealed, err := s.sealer.EncryptString(secret, mfa.Scope{Subject: address, Purpose: mfa.PurposeTOTPSecret})
	if err != nil {
		slog.ErrorContext(ctx, "failed to encrypt totp secret", "address", address, "error", err)
		return nil, goerror.NewServer(err)
	}

	registered, err := s.register(ctx, entity.ChannelAuthenticator, address, sealed)
	if err != nil {
		return nil, err
	}

	if registered {
		return &RegisterAuthenticatorOutput{Registered: true}, nil
	}

	out := &RegisterAuthenticatorOutput{Success: true}
	if !provided {
		out.Secret = secret
		out.QRData = uri
	}

	return out, nil
}
