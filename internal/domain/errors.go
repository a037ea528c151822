// Package domain holds the error taxonomy shared by every service and
// transport in the planner.
package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Sentinel errors, matched with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("already exists")
	ErrValidation    = errors.New("validation failed")
	ErrMalformedTree = errors.New("malformed template tree")
)

// ConflictError reports a natural-key collision on a named resource. It is
// a validation failure as well as a conflict.
type ConflictError struct {
	Resource string
	Name     string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Resource, e.Name)
}

// Is allows errors.Is to match against ErrConflict and ErrValidation.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict || target == ErrValidation
}

// StatusCode maps an error to the HTTP status used by the API.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMalformedTree):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Validation wraps a validation failure so it matches ErrValidation.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// IsDuplicateKey reports whether err is a unique constraint violation from
// any of the supported stores.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23505 = unique_violation
		return pgErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		// 1062 = ER_DUP_ENTRY
		return myErr.Number == 1062
	}
	// modernc sqlite is not covered by gorm's error translation.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
