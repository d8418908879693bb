// Package registry maps dataset names to their tenant-scoped record sources.
package registry

import (
	"fmt"
	"sort"

	"propel-insights/internal/domain"
)

// ColumnKind separates aggregatable columns from grouping columns.
type ColumnKind int

// Column kinds.
const (
	Categorical ColumnKind = iota
	Numeric
)

// Relation is a single permitted join hop from a dataset's base table.
type Relation struct {
	Table      string // joined table
	ForeignKey string // column on the base table referencing the joined table's id
}

// Handle describes one registered dataset: its base table, the mandatory
// tenant-scoping column, the one-hop relations a field address may traverse,
// and the declared kind of every reachable column.
type Handle struct {
	Name         string
	Table        string
	TenantColumn string
	Relations    map[string]Relation

	columns         cols
	relationColumns map[string]cols
}

// HasColumn reports whether the address resolves to a declared column.
func (h *Handle) HasColumn(addr domain.FieldAddress) bool {
	if addr.Direct() {
		_, ok := h.columns[addr.Column]
		return ok
	}
	cols, ok := h.relationColumns[addr.Relation]
	if !ok {
		return false
	}
	_, ok = cols[addr.Column]
	return ok
}

// Numeric reports whether the address resolves to a numeric column.
func (h *Handle) Numeric(addr domain.FieldAddress) bool {
	if addr.Direct() {
		return h.columns[addr.Column] == Numeric
	}
	cols, ok := h.relationColumns[addr.Relation]
	return ok && cols[addr.Column] == Numeric
}

// Registry resolves dataset names to handles. It is built once at startup
// and read-only afterwards.
type Registry struct {
	handles map[string]*Handle
}

// Resolve returns the handle for a dataset name.
func (r *Registry) Resolve(name string) (*Handle, error) {
	h, ok := r.handles[name]
	if !ok {
		return nil, domain.ErrNotFound("unknown dataset %q", name)
	}
	return h, nil
}

// Datasets returns all registered dataset names, sorted.
func (r *Registry) Datasets() []string {
	names := make([]string, 0, len(r.handles))
	for name := range r.handles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate cross-checks the catalog schema against the registry: every
// enabled entry must address a declared column through a declared relation,
// and entries typed numeric must address numeric columns. Run at boot after
// catalog sync; a mismatch means the definitions and migrations diverged.
func (r *Registry) Validate(schema map[string][]domain.FieldDescriptor) error {
	for dataset, fields := range schema {
		h, ok := r.handles[dataset]
		if !ok {
			return fmt.Errorf("catalog references unregistered dataset %q", dataset)
		}
		for _, d := range fields {
			if !h.HasColumn(d.Address) {
				return fmt.Errorf("catalog entry %s addresses unknown column", d.Key)
			}
			if d.DataType.Numeric() && !h.Numeric(d.Address) {
				return fmt.Errorf("catalog entry %s is typed %s but addresses a categorical column", d.Key, d.DataType)
			}
		}
	}
	return nil
}

// cols is shorthand for building column kind maps.
type cols map[string]ColumnKind

var projectColumns = cols{
	"name": Categorical, "location": Categorical, "status": Categorical,
	"budget": Numeric,
}

var customerColumns = cols{
	"name": Categorical, "status": Categorical, "channel": Categorical,
}

var unitColumns = cols{
	"number": Categorical, "status": Categorical,
	"price": Numeric, "floor": Numeric, "bedrooms": Numeric,
}

// New builds the static dataset registry. Every table carries tenant_id;
// relations never exceed one hop.
func New() *Registry {
	projectRel := map[string]Relation{
		"project": {Table: "projects", ForeignKey: "project_id"},
	}

	handles := []*Handle{
		{
			Name: "project", Table: "projects", TenantColumn: "tenant_id",
			columns: projectColumns,
		},
		{
			Name: "unit", Table: "units", TenantColumn: "tenant_id",
			Relations: projectRel,
			columns:   unitColumns,
			relationColumns: map[string]cols{
				"project": projectColumns,
			},
		},
		{
			Name: "customer", Table: "customers", TenantColumn: "tenant_id",
			Relations: projectRel,
			columns:   customerColumns,
			relationColumns: map[string]cols{
				"project": projectColumns,
			},
		},
		{
			Name: "booking", Table: "bookings", TenantColumn: "tenant_id",
			Relations: map[string]Relation{
				"project":  {Table: "projects", ForeignKey: "project_id"},
				"customer": {Table: "customers", ForeignKey: "customer_id"},
				"unit":     {Table: "units", ForeignKey: "unit_id"},
			},
			columns: cols{
				"booking_value": Numeric, "booking_date": Categorical,
				"status": Categorical,
			},
			relationColumns: map[string]cols{
				"project":  projectColumns,
				"customer": customerColumns,
				"unit":     unitColumns,
			},
		},
		{
			Name: "employee", Table: "employees", TenantColumn: "tenant_id",
			columns: cols{
				"name": Categorical, "employee_code": Categorical,
				"role": Categorical, "department": Categorical,
				"joined_on": Categorical,
			},
		},
		{
			Name: "marketing_campaign", Table: "marketing_campaigns", TenantColumn: "tenant_id",
			columns: cols{
				"name": Categorical, "channel": Categorical, "status": Categorical,
				"spend": Numeric, "leads": Numeric, "bookings": Numeric,
				"roi": Numeric, "started_on": Categorical,
			},
		},
		{
			Name: "location_demand", Table: "location_demand", TenantColumn: "tenant_id",
			columns: cols{
				"location": Categorical, "month": Categorical,
				"enquiries": Numeric, "bookings": Numeric, "demand_score": Numeric,
			},
		},
		{
			Name: "org_kpi", Table: "org_kpi_daily", TenantColumn: "tenant_id",
			columns: cols{
				"kpi_date": Categorical, "revenue_booked": Numeric,
				"revenue_collected": Numeric, "outstanding": Numeric,
				"units_sold": Numeric, "leads": Numeric, "site_visits": Numeric,
			},
		},
		{
			Name: "project_kpi", Table: "project_kpi_daily", TenantColumn: "tenant_id",
			Relations: projectRel,
			columns: cols{
				"kpi_date": Categorical, "units_total": Numeric,
				"units_sold": Numeric, "revenue_booked": Numeric,
				"construction_percent": Numeric,
			},
			relationColumns: map[string]cols{
				"project": projectColumns,
			},
		},
		{
			Name: "org_snapshot", Table: "org_monthly_snapshots", TenantColumn: "tenant_id",
			columns: cols{
				"month": Categorical, "revenue_booked": Numeric,
				"revenue_collected": Numeric, "outstanding": Numeric,
				"units_sold": Numeric,
			},
		},
		{
			Name: "project_snapshot", Table: "project_monthly_snapshots", TenantColumn: "tenant_id",
			Relations: projectRel,
			columns: cols{
				"month": Categorical, "revenue_booked": Numeric,
				"units_sold": Numeric, "construction_percent": Numeric,
			},
			relationColumns: map[string]cols{
				"project": projectColumns,
			},
		},
	}

	byName := make(map[string]*Handle, len(handles))
	for _, h := range handles {
		byName[h.Name] = h
	}
	return &Registry{handles: byName}
}
