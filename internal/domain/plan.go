package domain

import "strings"

// ChartType selects how a query result is rendered.
type ChartType string

// Supported chart types.
const (
	ChartBar    ChartType = "bar"
	ChartLine   ChartType = "line"
	ChartPie    ChartType = "pie"
	ChartTable  ChartType = "table"
	ChartAnswer ChartType = "answer"
)

// ParseChartType validates a chart type string.
func ParseChartType(s string) (ChartType, bool) {
	switch ChartType(strings.ToLower(strings.TrimSpace(s))) {
	case ChartBar:
		return ChartBar, true
	case ChartLine:
		return ChartLine, true
	case ChartPie:
		return ChartPie, true
	case ChartTable:
		return ChartTable, true
	case ChartAnswer:
		return ChartAnswer, true
	}
	return "", false
}

// Limit bounds for a plan. Values outside the range are clamped, never
// rejected.
const (
	MinPlanLimit = 1
	MaxPlanLimit = 50
)

// Plan is the structured, validated intermediate representation of an
// analytics request. It is transient, built per request by the translator
// or the heuristic planner and never persisted.
type Plan struct {
	Dataset    string                 `json:"dataset"`
	Metrics    []string               `json:"metrics"`
	Dimensions []string               `json:"dimensions"`
	Filters    map[string]interface{} `json:"filters"`
	ChartType  ChartType              `json:"chart_type"`
	Limit      int                    `json:"limit"`
}

// Clone deep-copies the plan so callers can normalize or execute it without
// mutating the original.
func (p *Plan) Clone() *Plan {
	out := *p
	out.Metrics = append([]string(nil), p.Metrics...)
	out.Dimensions = append([]string(nil), p.Dimensions...)
	if p.Filters != nil {
		out.Filters = make(map[string]interface{}, len(p.Filters))
		for k, v := range p.Filters {
			out.Filters[k] = v
		}
	}
	return &out
}

// Normalize clamps the limit into [MinPlanLimit, MaxPlanLimit] and defaults
// an unset or unrecognized chart type to "answer". A zero limit (absent in
// the source JSON) defaults to the maximum so grouped plans are not
// truncated to a single row.
func (p *Plan) Normalize() {
	if ct, ok := ParseChartType(string(p.ChartType)); ok {
		p.ChartType = ct
	} else {
		p.ChartType = ChartAnswer
	}
	if p.Limit == 0 {
		p.Limit = MaxPlanLimit
	}
	if p.Limit < MinPlanLimit {
		p.Limit = MinPlanLimit
	}
	if p.Limit > MaxPlanLimit {
		p.Limit = MaxPlanLimit
	}
	if p.Filters == nil {
		p.Filters = map[string]interface{}{}
	}
}
