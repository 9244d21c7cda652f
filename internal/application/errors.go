package application

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// The service produces three distinguishable error kinds; the HTTP boundary
// maps them to 400, 404 and 409. Anything else is an unclassified failure.

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation. The repository surfaces the driver error unchanged; this is the
// one persistence failure the service translates.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
