package db

import (
	"context"

	"github.com/shandysiswandi/gofactor/internal/pkg/goerror"
	"github.com/shandysiswandi/gofactor/internal/recovery/entity"
)

// CreateBinding inserts a pending row. It returns goerror.ErrConflict when a
// live row for the address already exists, including one inserted concurrently.
func (s *DB) CreateBinding(ctx context.Context, b entity.Binding) (err error) {
	ctx, span := s.startSpan(ctx, "CreateBinding", b.Channel)
	defer func() { s.endSpan(span, err) }()

	t := tableOf(b.Channel)
	cols := "id, address, " + t.secret + ", status"
	vals := "$1, $2, $3, $4"
	if t.softDelete {
		cols += ", deleted"
		vals += ", 'false'"
	}

	query := "INSERT INTO " + t.name + " (" + cols + ") VALUES (" + vals + ") ON CONFLICT DO NOTHING"
	tag, err := s.conn.Exec(ctx, query, b.ID, b.Address, b.Secret, entity.StatePending.Status())
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrConflict
	}

	return nil
}
