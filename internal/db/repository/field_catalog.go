package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"propel-insights/internal/domain"
)

// Compile-time check.
var _ domain.FieldCatalogRepository = (*FieldCatalogRepo)(nil)

// FieldCatalogRepo implements FieldCatalogRepository using SQLite.
type FieldCatalogRepo struct {
	db *sql.DB
}

// NewFieldCatalogRepo creates a new FieldCatalogRepo.
func NewFieldCatalogRepo(db *sql.DB) *FieldCatalogRepo {
	return &FieldCatalogRepo{db: db}
}

// Upsert inserts or replaces a catalog entry. The source path is validated
// into a FieldAddress before it reaches this method; the raw string is what
// gets stored.
func (r *FieldCatalogRepo) Upsert(ctx context.Context, d domain.FieldDescriptor) error {
	sourcePath := d.Address.Column
	if !d.Address.Direct() {
		sourcePath = d.Address.Relation + "__" + d.Address.Column
	}

	enabled := 0
	if d.Enabled {
		enabled = 1
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO field_catalog (key, dataset, label, source_path, data_type, synonyms, enabled)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			dataset     = excluded.dataset,
			label       = excluded.label,
			source_path = excluded.source_path,
			data_type   = excluded.data_type,
			synonyms    = excluded.synonyms,
			enabled     = excluded.enabled,
			updated_at  = CURRENT_TIMESTAMP`,
		d.Key, d.Dataset, d.Label, sourcePath, string(d.DataType),
		strings.Join(d.Synonyms, ","), enabled,
	)
	return mapDBError(err)
}

// ListEnabled returns all enabled entries ordered by dataset then label.
func (r *FieldCatalogRepo) ListEnabled(ctx context.Context) ([]domain.FieldDescriptor, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT key, dataset, label, source_path, data_type, synonyms
		FROM field_catalog
		WHERE enabled = 1
		ORDER BY dataset, label`)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close()

	var out []domain.FieldDescriptor
	for rows.Next() {
		var d domain.FieldDescriptor
		var sourcePath, dataType, synonyms string
		if err := rows.Scan(&d.Key, &d.Dataset, &d.Label, &sourcePath, &dataType, &synonyms); err != nil {
			return nil, err
		}

		addr, err := domain.ParseFieldAddress(sourcePath)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %s: %w", d.Key, err)
		}
		d.Address = addr

		dt, ok := domain.ParseDataType(dataType)
		if !ok {
			return nil, fmt.Errorf("catalog entry %s: unknown data type %q", d.Key, dataType)
		}
		d.DataType = dt

		d.Synonyms = splitSynonyms(synonyms)
		d.Enabled = true
		out = append(out, d)
	}
	return out, rows.Err()
}

// SetEnabled toggles a catalog entry.
func (r *FieldCatalogRepo) SetEnabled(ctx context.Context, key string, enabled bool) error {
	v := 0
	if enabled {
		v = 1
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE field_catalog SET enabled = ?, updated_at = CURRENT_TIMESTAMP WHERE key = ?`, v, key)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("catalog entry %q not found", key)
	}
	return nil
}

// DisableAbsent disables every entry whose key is not in keep.
func (r *FieldCatalogRepo) DisableAbsent(ctx context.Context, keep []string) error {
	if len(keep) == 0 {
		_, err := r.db.ExecContext(ctx,
			`UPDATE field_catalog SET enabled = 0, updated_at = CURRENT_TIMESTAMP WHERE enabled = 1`)
		return mapDBError(err)
	}

	placeholders := strings.Repeat("?,", len(keep))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(keep))
	for i, k := range keep {
		args[i] = k
	}

	_, err := r.db.ExecContext(ctx, fmt.Sprintf(
		`UPDATE field_catalog SET enabled = 0, updated_at = CURRENT_TIMESTAMP
		 WHERE enabled = 1 AND key NOT IN (%s)`, placeholders), args...)
	return mapDBError(err)
}

func splitSynonyms(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
