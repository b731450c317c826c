package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gestion-ventes/ventes-api/internal/core/domain"
)

// SQLSTATE codes translated into domain errors.
const (
	codeUniqueViolation  = "23505"
	codeNotNullViolation = "23502"
	codeCheckViolation   = "23514"
	codeNumericRange     = "22003"
	codeUntranslatable   = "22021"

	constraintUsername = "users_username_key"
)

// translateError maps constraint violations to domain errors and wraps
// everything else with op.
func translateError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			if pgErr.ConstraintName == constraintUsername {
				return domain.ErrUserExists
			}
		case codeNotNullViolation:
			return domain.NewValidationError(pgErr.ColumnName + " is required")
		case codeCheckViolation:
			return domain.NewValidationError("constraint " + pgErr.ConstraintName + " violated")
		case codeNumericRange:
			return domain.NewValidationError("numeric value out of range")
		case codeUntranslatable:
			return domain.NewValidationError("text contains characters the database cannot store")
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
