package usecase

import (
	"context"

	"github.com/shandysiswandi/gofactor/internal/pkg/goerror"
	"github.com/shandysiswandi/gofactor/internal/recovery/entity"
)

type RegisterInput struct {
	PubKey PublicKey `json:"pubKey" validate:"required"`
	Sig    Signature `json:"sig" validate:"required"`
	Number string    `json:"number" validate:"required,e164"`
}

type RegisterOutput struct {
	Success    bool
	Registered bool
}

// Register binds a phone number to the address of the signing key.
// The signature must cover the number itself.
func (s *Usecase) Register(ctx context.Context, in RegisterInput) (*RegisterOutput, error) {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	address, err := s.authenticate(ctx, in.PubKey, in.Sig, func(string) string { return in.Number })
	if err != nil {
		return nil, err
	}

	registered, err := s.register(ctx, entity.ChannelPhone, address, in.Number)
	if err != nil {
		return nil, err
	}

	if registered {
		return &RegisterOutput{Registered: true}, nil
	}

	return &RegisterOutput{Success: true}, nil
}
