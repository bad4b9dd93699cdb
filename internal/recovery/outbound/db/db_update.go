package db

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/shandysiswandi/gofactor/internal/pkg/goerror"
	"github.com/shandysiswandi/gofactor/internal/pkg/valueobject"
	"github.com/shandysiswandi/gofactor/internal/recovery/entity"
)

// UpdatePendingSecret replaces the secret of a still pending row. It returns
// goerror.ErrConflict when the row left the pending state or disappeared.
func (s *DB) UpdatePendingSecret(ctx context.Context, ch entity.Channel, address, secret string) (err error) {
	ctx, span := s.startSpan(ctx, "UpdatePendingSecret", ch)
	defer func() { s.endSpan(span, err) }()

	t := tableOf(ch)
	query := "UPDATE " + t.name + " SET " + t.secret + " = $2, updated_at = now() WHERE address = $1 AND status = $3" + t.live()

	tag, err := s.conn.Exec(ctx, query, address, secret, entity.StatePending.Status())
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrConflict
	}

	return nil
}

// VerifyBinding locks the live row, applies the verify transition and merges
// data into the stored object.
func (s *DB) VerifyBinding(ctx context.Context, ch entity.Channel, address string, data valueobject.JSONMap) (_ *entity.Verification, err error) {
	ctx, span := s.startSpan(ctx, "VerifyBinding", ch)
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer s.rollback(ctx, tx)

	b, err := s.selectBinding(ctx, tx, ch, address, true)
	if err != nil {
		return nil, s.mapError(err)
	}

	next, transitioned, err := b.State.Verify()
	if err != nil {
		return nil, err
	}

	merged := b.Data.Merge(data)
	if transitioned || len(data) > 0 {
		t := tableOf(ch)
		query := "UPDATE " + t.name + " SET status = $2, data = $3, updated_at = now() WHERE id = $1"
		if _, err := tx.Exec(ctx, query, b.ID, next.Status(), merged); err != nil {
			return nil, s.mapError(err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, s.mapError(err)
	}

	return &entity.Verification{Data: merged, Transitioned: transitioned}, nil
}

// SoftDeleteAuthenticator flags the verified authenticator row of address as
// deleted. It returns goerror.ErrConflict when no verified live row exists.
func (s *DB) SoftDeleteAuthenticator(ctx context.Context, address string) (err error) {
	ctx, span := s.startSpan(ctx, "SoftDeleteAuthenticator", entity.ChannelAuthenticator)
	defer func() { s.endSpan(span, err) }()

	query := "UPDATE " + authenticatorTable.name +
		" SET deleted = 'true', updated_at = now() WHERE address = $1 AND status = $2" + authenticatorTable.live()

	tag, err := s.conn.Exec(ctx, query, address, entity.StateVerified.Status())
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrConflict
	}

	return nil
}
