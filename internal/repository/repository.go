package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolationCode = "23505"

// RepoExtension is the pool-or-transaction a repository method runs on.
// Both *pgxpool.Pool and pgx.Tx satisfy it; passing nil makes the method
// fall back to the repository's own pool.
type RepoExtension interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ RepoExtension = (*pgxpool.Pool)(nil)

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation. The ledger treats this as the authoritative token-already-used
// signal.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}

	return false
}
