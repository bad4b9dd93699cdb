package db

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/shandysiswandi/gofactor/internal/recovery/entity"
)

func (s *DB) GetBinding(ctx context.Context, ch entity.Channel, address string) (_ *entity.Binding, err error) {
	ctx, span := s.startSpan(ctx, "GetBinding", ch)
	defer func() { s.endSpan(span, err) }()

	b, err := s.selectBinding(ctx, s.conn, ch, address, false)
	if err != nil {
		return nil, s.mapError(err)
	}
	return b, nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *DB) selectBinding(ctx context.Context, q querier, ch entity.Channel, address string, forUpdate bool) (*entity.Binding, error) {
	t := tableOf(ch)

	deleted := "'false'"
	if t.softDelete {
		deleted = "deleted"
	}
	query := "SELECT id, address, " + t.secret + ", status, " + deleted + ", data, created_at, updated_at FROM " +
		t.name + " WHERE address = $1" + t.live()
	if forUpdate {
		query += " FOR UPDATE"
	}

	var (
		b              = entity.Binding{Channel: ch}
		status, delcol string
	)
	if err := q.QueryRow(ctx, query, address).Scan(
		&b.ID, &b.Address, &b.Secret, &status, &delcol, &b.Data, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	b.State = entity.StateFromColumns(status, delcol)

	return &b, nil
}
