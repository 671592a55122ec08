// Package postgres implements the repository interfaces on PostgreSQL via database/sql.
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"docqa/internal/repository"
)

// uniqueViolation is the SQLSTATE Postgres reports for a unique constraint conflict.
const uniqueViolation = "23505"

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// translate maps driver errors onto repository sentinels.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrDuplicate
	}
	return err
}
