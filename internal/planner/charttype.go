package planner

import (
	"strings"

	"propel-insights/internal/domain"
)

// ResolveChartType post-processes a plan's visualization type against the
// literal wording of the question. Rules are order-sensitive and the first
// explicit cue wins; the grouped-plan upgrade applies only when no cue
// matched at all.
func ResolveChartType(plan *domain.Plan, text string) {
	t := strings.ToLower(text)

	switch {
	case strings.Contains(t, "pie chart"),
		strings.Contains(t, " pie "),
		strings.HasPrefix(t, "pie "):
		plan.ChartType = domain.ChartPie
	case strings.Contains(t, "bar graph"),
		strings.Contains(t, "bar chart"),
		strings.Contains(t, "bar") && strings.Contains(t, "chart"):
		plan.ChartType = domain.ChartBar
	case strings.Contains(t, "line chart"),
		strings.Contains(t, "line graph"),
		strings.Contains(t, "line") && strings.Contains(t, "chart"):
		plan.ChartType = domain.ChartLine
	default:
		// A grouped plan defaults to a breakdown visualization unless
		// the user explicitly asked for a flat list.
		if len(plan.Dimensions) > 0 &&
			(plan.ChartType == domain.ChartTable || plan.ChartType == domain.ChartAnswer) {
			plan.ChartType = domain.ChartPie
		}
	}
}
