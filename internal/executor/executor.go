// Package executor validates, tenant-scopes, aggregates, and shapes query
// plans into results. It never lets a fault escape its boundary: every
// internal error becomes an error-shaped answer.
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"propel-insights/internal/catalog"
	"propel-insights/internal/domain"
	"propel-insights/internal/registry"
)

// Executor runs validated plans against tenant-scoped storage.
type Executor struct {
	db       *sql.DB
	registry *registry.Registry
	catalog  *catalog.Catalog
	logger   *slog.Logger
}

// New creates an Executor.
func New(db *sql.DB, reg *registry.Registry, cat *catalog.Catalog, logger *slog.Logger) *Executor {
	return &Executor{db: db, registry: reg, catalog: cat, logger: logger}
}

// Execute runs one plan for one tenant. It always returns a result: user
// mistakes yield readable message text with Failed=false, backend faults
// yield message text with Failed=true.
func (e *Executor) Execute(ctx context.Context, plan *domain.Plan, tenant *domain.Tenant) (result *domain.QueryResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("plan execution panicked", slog.Any("panic", r))
			result = domain.ErrorResult(true, "query execution failed, please try again")
		}
	}()

	plan.Normalize()

	handle, err := e.registry.Resolve(plan.Dataset)
	if err != nil {
		return domain.ErrorResult(true, "unknown dataset %q", plan.Dataset)
	}

	v := e.validate(handle, plan)
	if v.badFilter != "" {
		return domain.ErrorResult(false, "could not understand the filter value for %q", v.badFilter)
	}

	q := buildQuery(handle, v, plan.Limit)
	rows, err := e.run(ctx, q, tenant.ID)
	if err != nil {
		e.logger.Error("plan query failed",
			slog.String("dataset", plan.Dataset),
			slog.String("error", err.Error()))
		return domain.ErrorResult(true, "query execution failed, please try again")
	}

	return shape(plan.ChartType, v, rows)
}

// validated is the catalog-checked remainder of a plan: only enabled fields
// scoped to the dataset survive, everything else is silently dropped.
type validated struct {
	grouped bool
	metrics []domain.FieldDescriptor
	dims    []domain.FieldDescriptor
	filters []filterPredicate

	badFilter string // first filter key whose value failed type coercion
}

type filterPredicate struct {
	field domain.FieldDescriptor
	value interface{}
}

func (e *Executor) validate(handle *registry.Handle, plan *domain.Plan) validated {
	var v validated

	for _, key := range plan.Metrics {
		d, err := e.catalog.Lookup(plan.Dataset, key)
		if err != nil || !d.DataType.Numeric() {
			e.dropKey(plan.Dataset, key, "metric")
			continue
		}
		v.metrics = append(v.metrics, d)
	}

	for _, key := range plan.Dimensions {
		d, err := e.catalog.Lookup(plan.Dataset, key)
		if err != nil {
			e.dropKey(plan.Dataset, key, "dimension")
			continue
		}
		v.dims = append(v.dims, d)
	}

	for key, raw := range plan.Filters {
		d, err := e.catalog.Lookup(plan.Dataset, key)
		if err != nil {
			e.dropKey(plan.Dataset, key, "filter")
			continue
		}
		value, err := coerceFilterValue(d.DataType, raw)
		if err != nil {
			if v.badFilter == "" || key < v.badFilter {
				v.badFilter = key
			}
			continue
		}
		v.filters = append(v.filters, filterPredicate{field: d, value: value})
	}

	// A plan stripped down to nothing still answers something: a bare
	// tenant-scoped row count.
	if len(v.metrics) == 0 && len(v.dims) == 0 && plan.ChartType != domain.ChartAnswer {
		plan.ChartType = domain.ChartAnswer
	}

	v.grouped = len(v.dims) > 0
	return v
}

func (e *Executor) dropKey(dataset, key, role string) {
	e.logger.Debug("dropped plan key",
		slog.String("dataset", dataset),
		slog.String("key", key),
		slog.String("role", role))
}

// resultRow is one fetched row: the dimension values followed by one float
// per aggregate.
type resultRow struct {
	groups []string
	values []float64
}

func (e *Executor) run(ctx context.Context, q query, tenantID string) ([]resultRow, error) {
	args := append([]interface{}{tenantID}, q.args...)
	rows, err := e.db.QueryContext(ctx, q.sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.sql, err)
	}
	defer rows.Close()

	var out []resultRow
	for rows.Next() {
		r := resultRow{
			groups: make([]string, q.groupCols),
			values: make([]float64, q.valueCols),
		}
		dest := make([]interface{}, 0, q.groupCols+q.valueCols)
		scanGroups := make([]sql.NullString, q.groupCols)
		scanValues := make([]sql.NullFloat64, q.valueCols)
		for i := range scanGroups {
			dest = append(dest, &scanGroups[i])
		}
		for i := range scanValues {
			dest = append(dest, &scanValues[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, g := range scanGroups {
			r.groups[i] = g.String
		}
		for i, val := range scanValues {
			r.values[i] = val.Float64
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
