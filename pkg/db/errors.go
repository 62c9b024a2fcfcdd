package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether the provided error references a unique
// constraint violation. When constraintName is provided, the helper also
// requires the constraint text to appear in the error.
func IsUniqueViolation(err error, constraintName ...string) bool {
	if err == nil {
		return false
	}

	matched := false
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		matched = pgErr.Code == uniqueViolationCode
	case errors.Is(err, gorm.ErrDuplicatedKey):
		matched = true
	default:
		msg := err.Error()
		matched = strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
	}
	if !matched {
		return false
	}

	if len(constraintName) > 0 && constraintName[0] != "" {
		return strings.Contains(err.Error(), constraintName[0])
	}
	return true
}
