package domain

import "context"

// FieldCatalogRepository is the metastore port for the field allowlist.
type FieldCatalogRepository interface {
	// Upsert inserts or replaces a catalog entry keyed by its unique key.
	Upsert(ctx context.Context, d FieldDescriptor) error
	// ListEnabled returns all enabled entries ordered by dataset then label.
	ListEnabled(ctx context.Context) ([]FieldDescriptor, error)
	// SetEnabled toggles an entry; disabling removes it from every schema
	// listing and causes plans referencing it to drop the key.
	SetEnabled(ctx context.Context, key string, enabled bool) error
	// DisableAbsent disables every entry whose key is not in keep, so
	// fields removed from the declarative definitions stop being queryable
	// after the next sync.
	DisableAbsent(ctx context.Context, keep []string) error
}

// TenantRepository is the metastore port for tenant resolution.
type TenantRepository interface {
	Create(ctx context.Context, name string) (*Tenant, error)
	GetByID(ctx context.Context, id string) (*Tenant, error)
	GetByAPIKeyHash(ctx context.Context, hash string) (*Tenant, error)
	CreateAPIKey(ctx context.Context, tenantID, hash string) error
	List(ctx context.Context) ([]Tenant, error)
}
