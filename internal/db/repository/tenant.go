package repository

import (
	"context"
	"database/sql"

	"propel-insights/internal/domain"
)

// Compile-time check.
var _ domain.TenantRepository = (*TenantRepo)(nil)

// TenantRepo implements TenantRepository using SQLite.
type TenantRepo struct {
	db *sql.DB
}

// NewTenantRepo creates a new TenantRepo.
func NewTenantRepo(db *sql.DB) *TenantRepo {
	return &TenantRepo{db: db}
}

// Create inserts a new tenant.
func (r *TenantRepo) Create(ctx context.Context, name string) (*domain.Tenant, error) {
	id := newID()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tenants (id, name) VALUES (?, ?)`, id, name)
	if err != nil {
		return nil, mapDBError(err)
	}
	return r.GetByID(ctx, id)
}

// GetByID returns a tenant by ID.
func (r *TenantRepo) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	return r.get(ctx, `SELECT id, name, created_at FROM tenants WHERE id = ?`, id)
}

// GetByAPIKeyHash resolves a tenant from a SHA-256 API key hash.
func (r *TenantRepo) GetByAPIKeyHash(ctx context.Context, hash string) (*domain.Tenant, error) {
	return r.get(ctx, `
		SELECT t.id, t.name, t.created_at
		FROM tenants t
		JOIN api_keys k ON k.tenant_id = t.id
		WHERE k.key_hash = ?`, hash)
}

// CreateAPIKey stores a hashed API key for a tenant. Raw keys are never
// persisted.
func (r *TenantRepo) CreateAPIKey(ctx context.Context, tenantID, hash string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (key_hash, tenant_id) VALUES (?, ?)`, hash, tenantID)
	return mapDBError(err)
}

// List returns all tenants ordered by name.
func (r *TenantRepo) List(ctx context.Context) ([]domain.Tenant, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM tenants ORDER BY name`)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close()

	var out []domain.Tenant
	for rows.Next() {
		var t domain.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TenantRepo) get(ctx context.Context, query string, args ...interface{}) (*domain.Tenant, error) {
	var t domain.Tenant
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&t.ID, &t.Name, &t.CreatedAt)
	if err != nil {
		return nil, mapDBError(err)
	}
	return &t, nil
}
