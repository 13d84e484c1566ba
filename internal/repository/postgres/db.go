// Package postgres implements the repositories on PostgreSQL through pgx.
package postgres

import (
	"context"
	"errors"

	"movexa_cms/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// DBTX is the subset of pgx used by the repositories.
// *pgxpool.Pool, pgx.Tx and pgxmock pools satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewStore wires all postgres repositories on db
func NewStore(db DBTX) *repository.Store {
	return &repository.Store{
		Backend:  "postgres",
		Users:    NewUserRepository(db),
		Services: NewServiceRepository(db),
		Content:  NewContentRepository(db),
	}
}

// duplicateField maps a unique violation to the offending field
func duplicateField(err error, constraints map[string]string) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return "", false
	}
	if field, ok := constraints[pgErr.ConstraintName]; ok {
		return field, true
	}
	return pgErr.ConstraintName, true
}
