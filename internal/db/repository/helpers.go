// Package repository implements the metastore ports on SQLite.
package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"propel-insights/internal/domain"
)

// newID generates a unique identifier for new rows.
func newID() string {
	return uuid.NewString()
}

// mapDBError converts database/sql errors into domain errors.
func mapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound("not found")
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return domain.ErrConflict("duplicate: %v", err)
	}
	return err
}
