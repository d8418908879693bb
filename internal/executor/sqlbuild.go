package executor

import (
	"fmt"
	"strings"

	"propel-insights/internal/domain"
	"propel-insights/internal/registry"
)

// query is a compiled, parameterized aggregation statement. The tenant id is
// always the first bind parameter; args holds the rest in order.
type query struct {
	sql       string
	args      []interface{}
	groupCols int
	valueCols int
}

// buildQuery compiles a validated plan into one SELECT. Grouped plans sum
// each metric (or count rows) per dimension tuple, ordered by the first
// aggregate descending with the group key ascending as tie-breaker so equal
// counts come back in a stable order. Scalar plans collapse to a single row.
func buildQuery(h *registry.Handle, v validated, limit int) query {
	var (
		selects []string
		args    []interface{}
	)

	joins := newJoinSet(h)

	for _, d := range v.dims {
		selects = append(selects, joins.qualify(d.Address))
	}

	aggs := len(v.metrics)
	if aggs == 0 {
		selects = append(selects, "COUNT(*) AS agg_0")
		aggs = 1
	} else {
		for i, m := range v.metrics {
			selects = append(selects, fmt.Sprintf("COALESCE(SUM(%s), 0) AS agg_%d", joins.qualify(m.Address), i))
		}
	}

	for _, f := range v.filters {
		// Qualification may add a join, so resolve before assembling FROM.
		joins.qualify(f.field.Address)
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(selects, ", "))
	b.WriteString(" FROM ")
	b.WriteString(h.Table)
	for _, j := range joins.clauses {
		b.WriteString(j)
	}

	fmt.Fprintf(&b, " WHERE %s.%s = ?", h.Table, h.TenantColumn)
	for _, f := range v.filters {
		fmt.Fprintf(&b, " AND %s = ?", joins.qualify(f.field.Address))
		args = append(args, f.value)
	}

	if v.grouped {
		groups := make([]string, len(v.dims))
		for i, d := range v.dims {
			groups[i] = joins.qualify(d.Address)
		}
		fmt.Fprintf(&b, " GROUP BY %s", strings.Join(groups, ", "))
		fmt.Fprintf(&b, " ORDER BY agg_0 DESC, %s ASC", groups[0])
		b.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	return query{
		sql:       b.String(),
		args:      args,
		groupCols: len(v.dims),
		valueCols: aggs,
	}
}

// joinSet tracks which one-hop relations the statement traverses and emits
// each LEFT JOIN exactly once.
type joinSet struct {
	handle  *registry.Handle
	joined  map[string]bool
	clauses []string
}

func newJoinSet(h *registry.Handle) *joinSet {
	return &joinSet{handle: h, joined: map[string]bool{}}
}

// qualify returns the fully qualified column for an address, registering the
// relation's join on first use.
func (j *joinSet) qualify(addr domain.FieldAddress) string {
	if addr.Direct() {
		return j.handle.Table + "." + addr.Column
	}
	rel := j.handle.Relations[addr.Relation]
	if !j.joined[addr.Relation] {
		j.joined[addr.Relation] = true
		j.clauses = append(j.clauses, fmt.Sprintf(" LEFT JOIN %s ON %s.%s = %s.id",
			rel.Table, j.handle.Table, rel.ForeignKey, rel.Table))
	}
	return rel.Table + "." + addr.Column
}
