package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/gofactor/internal/pkg/goerror"
	"github.com/shandysiswandi/gofactor/internal/recovery/entity"
)

// DeleteMessagePrefix prefixes the address in the signed delete message.
const DeleteMessagePrefix = "delete:"

type DeleteAuthenticatorInput struct {
	PubKey PublicKey `json:"pubKey" validate:"required"`
	Sig    Signature `json:"sig" validate:"required"`
}

type DeleteAuthenticatorOutput struct {
	Success bool
}

// DeleteAuthenticator soft deletes the verified authenticator binding of the
// signing key. The signature covers "delete:" followed by the address.
func (s *Usecase) DeleteAuthenticator(ctx context.Context, in DeleteAuthenticatorInput) (*DeleteAuthenticatorOutput, error) {
	ctx, span := s.startSpan(ctx, "DeleteAuthenticator")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	address, err := s.authenticate(ctx, in.PubKey, in.Sig, func(address string) string {
		return DeleteMessagePrefix + address
	})
	if err != nil {
		return nil, err
	}

	b, err := s.lookup(ctx, entity.ChannelAuthenticator, address)
	if err != nil {
		return nil, err
	}

	if _, err := b.State.Delete(entity.ChannelAuthenticator); err != nil {
		slog.WarnContext(ctx, "authenticator not deletable", "address", address, "state", b.State.String())
		return nil, err
	}

	if err := s.repoDB.SoftDeleteAuthenticator(ctx, address); err != nil {
		if errors.Is(err, goerror.ErrConflict) {
			return nil, entity.ErrIllegalTransition
		}
		slog.ErrorContext(ctx, "failed to repo soft delete authenticator", "address", address, "error", err)
		return nil, entity.NewStorageFailure(err)
	}

	if err := s.repoMessaging.PublishBindingDeleted(ctx, BindingDeletedEvent{
		Address:   address,
		Channel:   entity.ChannelAuthenticator,
		DeletedAt: s.clock.Now(),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish binding deleted", "address", address, "error", err)
	}

	return &DeleteAuthenticatorOutput{Success: true}, nil
}
