// Package planner holds the deterministic pieces of query planning: the
// keyword-based fallback planner, the chart-type resolver, and JSON plan
// extraction from model output.
package planner

import (
	"strings"

	"propel-insights/internal/domain"
)

// category is one keyword-matched dataset family. Order matters: the first
// category with a keyword hit wins, so ambiguous prompts ("project
// bookings") resolve by position in the chain, not semantic relevance.
type category struct {
	dataset string
	words   []string

	groupWords   []string // secondary cues selecting the grouped plan
	groupDim     string
	dimOverrides []dimOverride
	groupChart   domain.ChartType
	groupMetrics []string

	scalarMetrics []string // metrics for the degenerate plan
}

// dimOverride swaps the grouping dimension when a more specific cue appears.
type dimOverride struct {
	cue string
	dim string
}

var categories = []category{
	{
		dataset:    "employee",
		words:      []string{"employee", "staff", "team", "people", "worker"},
		groupWords: []string{"by role", "by department", "breakdown"},
		groupDim:   "role",
		dimOverrides: []dimOverride{
			{cue: "by department", dim: "department"},
		},
		groupChart: domain.ChartBar,
	},
	{
		dataset:    "customer",
		words:      []string{"customer", "client", "buyer"},
		groupWords: []string{"by status", "by stage", "breakdown"},
		groupDim:   "status",
		groupChart: domain.ChartPie,
	},
	{
		dataset:    "project",
		words:      []string{"project", "development", "site"},
		groupWords: []string{"by status", "breakdown"},
		groupDim:   "status",
		groupChart: domain.ChartPie,
	},
	{
		dataset:      "booking",
		words:        []string{"booking", "booked", "reservation"},
		groupWords:   []string{"by project", "breakdown"},
		groupDim:     "project__name",
		groupChart:   domain.ChartBar,
		groupMetrics: []string{"booking_value"},

		scalarMetrics: []string{"booking_value"},
	},
	{
		dataset:    "unit",
		words:      []string{"unit", "flat", "apartment", "inventory"},
		groupWords: []string{"by status", "breakdown"},
		groupDim:   "status",
		groupChart: domain.ChartPie,
	},
	{
		dataset:      "marketing_campaign",
		words:        []string{"marketing", "campaign", "ads", "advertising"},
		groupWords:   []string{"by channel", "breakdown"},
		groupDim:     "channel",
		groupChart:   domain.ChartPie,
		groupMetrics: []string{"spend"},

		scalarMetrics: []string{"spend", "leads", "bookings"},
	},
	{
		dataset: "org_kpi",
		words:   []string{"revenue", "sales", "income", "money"},

		scalarMetrics: []string{"revenue_booked", "revenue_collected"},
	},
}

// HeuristicPlan builds a plan from raw question text using keyword matching
// alone. It is a pure function of the lowercased text with no external
// dependencies, so the engine never dead-ends when the language model is
// unavailable or incoherent.
func HeuristicPlan(text string) *domain.Plan {
	t := strings.ToLower(text)
	intent := chartIntent(t)

	for _, cat := range categories {
		if !containsAny(t, cat.words) {
			continue
		}

		if containsAny(t, cat.groupWords) && cat.groupDim != "" {
			return groupedPlan(t, cat, intent)
		}

		// "show projects" and friends get a grouped-by-name listing
		// rather than a bare count.
		if cat.dataset == "project" && containsAny(t, []string{"list", "show", "all", "graph", "chart"}) {
			listing := cat
			listing.groupDim = "name"
			listing.groupChart = domain.ChartBar
			return groupedPlan(t, listing, intent)
		}

		return scalarPlan(cat)
	}

	// No category matched: default to the organization revenue aggregate.
	return &domain.Plan{
		Dataset:   "org_kpi",
		Metrics:   []string{"revenue_booked"},
		Filters:   map[string]interface{}{},
		ChartType: domain.ChartAnswer,
		Limit:     1,
	}
}

func groupedPlan(t string, cat category, intent domain.ChartType) *domain.Plan {
	// An explicit pie/bar/line intent overrides the category default;
	// table and answer intents keep it, so "show employees by role"
	// still renders as the category's bar chart.
	chart := cat.groupChart
	if intent == domain.ChartPie || intent == domain.ChartBar || intent == domain.ChartLine {
		chart = intent
	}
	dim := cat.groupDim
	for _, o := range cat.dimOverrides {
		if strings.Contains(t, o.cue) {
			dim = o.dim
			break
		}
	}
	return &domain.Plan{
		Dataset:    cat.dataset,
		Metrics:    append([]string(nil), cat.groupMetrics...),
		Dimensions: []string{dim},
		Filters:    map[string]interface{}{},
		ChartType:  chart,
		Limit:      domain.MaxPlanLimit,
	}
}

func scalarPlan(cat category) *domain.Plan {
	return &domain.Plan{
		Dataset:   cat.dataset,
		Metrics:   append([]string(nil), cat.scalarMetrics...),
		Filters:   map[string]interface{}{},
		ChartType: domain.ChartAnswer,
		Limit:     1,
	}
}

// chartIntent classifies the visualization the user literally asked for.
func chartIntent(t string) domain.ChartType {
	switch {
	case strings.Contains(t, "pie"):
		return domain.ChartPie
	case strings.Contains(t, "bar"):
		return domain.ChartBar
	case strings.Contains(t, "line"), strings.Contains(t, "trend"):
		return domain.ChartLine
	case strings.Contains(t, "table"), strings.Contains(t, "list"), strings.Contains(t, "show"):
		return domain.ChartTable
	default:
		return domain.ChartAnswer
	}
}

func containsAny(t string, words []string) bool {
	for _, w := range words {
		if strings.Contains(t, w) {
			return true
		}
	}
	return false
}
