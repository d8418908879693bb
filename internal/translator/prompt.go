package translator

import (
	"fmt"
	"sort"
	"strings"

	"propel-insights/internal/domain"
)

const plannerInstructions = `You are a query planner for a real estate analytics system.
Given a user's question, generate a JSON plan to answer it.

Understand the question intent:
- Questions about "how many employees" use the "employee" dataset with empty metrics (count)
- Questions about "total revenue" use the "org_kpi" dataset with the "revenue_booked" metric
- Questions about "marketing campaigns" use the "marketing_campaign" dataset
- Questions about "customers" use the "customer" dataset
- Questions about "projects" use the "project" dataset
- Questions about "bookings" use the "booking" dataset

Return ONLY valid JSON with this structure:
{
  "dataset": "dataset_name",
  "metrics": ["metric_field_key"],
  "dimensions": ["dimension_field_key"],
  "filters": {"field_key": "value"},
  "chart_type": "bar|line|pie|table|answer",
  "limit": 50
}

Rules:
- Use "answer" chart_type for simple questions like "what's my total revenue?" (no dimensions, no chart needed)
- Use "bar", "line", or "pie" for comparisons and breakdowns when the user asks for charts
- When the user asks for a "pie chart", "bar graph", or "line chart", ALWAYS include at least one dimension
- For pie/bar/line charts with no metric, use an empty metrics array (counts by dimension)
- For "units" or "portfolio units", group by the "status" or "project__name" dimension
- For "employees", group by the "role" or "department" dimension
- For "customers", group by the "status" or "channel" dimension
- Never invent field keys; use only the available fields listed below
- The tenant scope is applied automatically; do not add a tenant filter`

// BuildSystemPrompt renders the planner instructions followed by a compact
// per-dataset field listing the model can ground its field keys on.
func BuildSystemPrompt(schema map[string][]domain.FieldDescriptor) string {
	var b strings.Builder
	b.WriteString(plannerInstructions)
	b.WriteString("\n\nAvailable fields:\n")
	b.WriteString(RenderSchema(schema))
	return b.String()
}

// RenderSchema serializes the enabled catalog as one line per field:
//
//	dataset.field (type): Label (synonyms: a, b)
func RenderSchema(schema map[string][]domain.FieldDescriptor) string {
	datasets := make([]string, 0, len(schema))
	for name := range schema {
		datasets = append(datasets, name)
	}
	sort.Strings(datasets)

	var b strings.Builder
	for _, dataset := range datasets {
		fmt.Fprintf(&b, "%s:\n", dataset)
		for _, d := range schema[dataset] {
			fmt.Fprintf(&b, "  %s (%s): %s", d.Key, d.DataType, d.Label)
			if len(d.Synonyms) > 0 {
				fmt.Fprintf(&b, " (synonyms: %s)", strings.Join(d.Synonyms, ", "))
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}
