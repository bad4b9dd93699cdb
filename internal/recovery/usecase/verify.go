package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/gofactor/internal/pkg/goerror"
	"github.com/shandysiswandi/gofactor/internal/pkg/smsotp"
	"github.com/shandysiswandi/gofactor/internal/pkg/valueobject"
	"github.com/shandysiswandi/gofactor/internal/recovery/entity"
)

type VerifyInput struct {
	Address string         `json:"address" validate:"required,hexadecimal,len=128"`
	Code    string         `json:"code" validate:"required,len=6"`
	Data    map[string]any `json:"data"`
}

type VerifyOutput struct {
	Data valueobject.JSONMap
}

// Verify checks the SMS code of address and marks the phone binding verified.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (*VerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	in.Address = normalizeAddress(in.Address)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	b, err := s.lookup(ctx, entity.ChannelPhone, in.Address)
	if err != nil {
		return nil, err
	}

	if err := s.sms.Verify(ctx, b.Secret, in.Code); err != nil {
		if errors.Is(err, smsotp.ErrInvalidCode) {
			slog.WarnContext(ctx, "sms code mismatch", "address", b.Address)
			return nil, entity.ErrInvalidCode
		}
		slog.ErrorContext(ctx, "failed to verify sms code", "address", b.Address, "error", err)
		return nil, entity.NewStorageFailure(err)
	}

	data, err := s.complete(ctx, entity.ChannelPhone, b.Address, in.Data)
	if err != nil {
		return nil, err
	}

	return &VerifyOutput{Data: data}, nil
}
