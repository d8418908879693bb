// Package catalog maintains the allowlist of queryable fields per dataset.
// It is the security boundary between user-supplied plans and storage: any
// key a plan references must resolve to an enabled entry scoped to the
// plan's dataset, or it is dropped.
package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"propel-insights/internal/domain"
)

// Catalog serves field descriptors from an in-memory snapshot of the enabled
// catalog entries. The snapshot is replaced only by Reload (boot-time sync);
// request handling reads it without mutation, so concurrent requests need no
// coordination beyond the RWMutex guarding the swap.
type Catalog struct {
	repo domain.FieldCatalogRepository

	mu        sync.RWMutex
	byDataset map[string][]domain.FieldDescriptor
	byField   map[string]map[string]domain.FieldDescriptor // dataset → field name → descriptor
}

// New creates an empty Catalog. Call Reload before serving requests.
func New(repo domain.FieldCatalogRepository) *Catalog {
	return &Catalog{
		repo:      repo,
		byDataset: map[string][]domain.FieldDescriptor{},
		byField:   map[string]map[string]domain.FieldDescriptor{},
	}
}

// Reload replaces the snapshot with the currently enabled entries.
func (c *Catalog) Reload(ctx context.Context) error {
	entries, err := c.repo.ListEnabled(ctx)
	if err != nil {
		return err
	}

	byDataset := map[string][]domain.FieldDescriptor{}
	byField := map[string]map[string]domain.FieldDescriptor{}
	for _, d := range entries {
		byDataset[d.Dataset] = append(byDataset[d.Dataset], d)
		if byField[d.Dataset] == nil {
			byField[d.Dataset] = map[string]domain.FieldDescriptor{}
		}
		byField[d.Dataset][FieldName(d)] = d
	}

	c.mu.Lock()
	c.byDataset = byDataset
	c.byField = byField
	c.mu.Unlock()
	return nil
}

// Lookup resolves a plan key against the allowlist, scoped to one dataset.
// The key may be a bare field name ("role") or fully qualified
// ("employee.role"). Disabled and unknown keys are NotFound.
func (c *Catalog) Lookup(dataset, key string) (domain.FieldDescriptor, error) {
	field := strings.TrimPrefix(strings.TrimSpace(key), dataset+".")

	c.mu.RLock()
	defer c.mu.RUnlock()

	fields, ok := c.byField[dataset]
	if !ok {
		return domain.FieldDescriptor{}, domain.ErrNotFound("dataset %q has no catalog entries", dataset)
	}
	d, ok := fields[field]
	if !ok {
		return domain.FieldDescriptor{}, domain.ErrNotFound("field %q is not queryable on dataset %q", key, dataset)
	}
	return d, nil
}

// SchemaFor returns the enabled descriptors for one dataset, ordered by label.
func (c *Catalog) SchemaFor(dataset string) []domain.FieldDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.FieldDescriptor(nil), c.byDataset[dataset]...)
}

// Schema returns all enabled descriptors grouped by dataset.
func (c *Catalog) Schema() map[string][]domain.FieldDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string][]domain.FieldDescriptor, len(c.byDataset))
	for dataset, fields := range c.byDataset {
		out[dataset] = append([]domain.FieldDescriptor(nil), fields...)
	}
	return out
}

// Datasets returns the dataset names with at least one enabled field, sorted.
func (c *Catalog) Datasets() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.byDataset))
	for name := range c.byDataset {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FieldName returns the plan-facing field name for a descriptor: its unique
// key with the "dataset." prefix removed.
func FieldName(d domain.FieldDescriptor) string {
	return strings.TrimPrefix(d.Key, d.Dataset+".")
}
