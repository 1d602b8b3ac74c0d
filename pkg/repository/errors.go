package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgDuplicateKeyCode     = "23505"
	pgCheckViolationCode   = "23514"
	pgNotNullViolationCode = "23502"
)

// ErrConstraint is returned for rows rejected by a CHECK or NOT NULL
// constraint, such as a prompt stored for an unknown stage.
var ErrConstraint = errors.New("constraint violation")

// MapError translates database errors to domain errors.
// sql.ErrNoRows becomes notFoundErr and a unique violation becomes
// duplicateErr. Check and not-null violations wrap ErrConstraint with the
// constraint or column name. Other errors are returned unchanged.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgDuplicateKeyCode:
		return duplicateErr
	case pgCheckViolationCode:
		return fmt.Errorf("%w: %s", ErrConstraint, pgErr.ConstraintName)
	case pgNotNullViolationCode:
		return fmt.Errorf("%w: %s is required", ErrConstraint, pgErr.ColumnName)
	}

	return err
}
