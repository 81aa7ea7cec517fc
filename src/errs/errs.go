package errs

import (
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies an operation failure so handlers can pick a status code
// without inspecting driver internals.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConstraint Kind = "constraint"
	KindConnection Kind = "connection"
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Constraintf(format string, args ...any) *Error {
	return &Error{Kind: KindConstraint, Msg: fmt.Sprintf(format, args...)}
}

func Connectionf(format string, args ...any) *Error {
	return &Error{Kind: KindConnection, Msg: fmt.Sprintf(format, args...)}
}

// Is reports whether err carries the given kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Postgres error codes this app cares about.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// FromPg classifies a pgx error into one of the kinds above. Errors it does
// not recognize pass through unchanged.
func FromPg(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &Error{Kind: KindNotFound, Msg: "no matching row", Err: err}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &Error{Kind: KindConstraint, Msg: "duplicate value violates unique constraint", Err: err}
		case pgForeignKeyViolation:
			return &Error{Kind: KindConstraint, Msg: "referenced row does not exist", Err: err}
		case pgCheckViolation:
			return &Error{Kind: KindConstraint, Msg: "value rejected by check constraint", Err: err}
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &Error{Kind: KindConnection, Msg: "database unreachable", Err: err}
	}
	return err
}
