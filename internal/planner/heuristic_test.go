package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propel-insights/internal/domain"
)

func TestHeuristicPlanCategories(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		dataset string
		chart   domain.ChartType
		dims    []string
		metrics []string
		limit   int
	}{
		{
			name:    "revenue question",
			text:    "what's my total revenue?",
			dataset: "org_kpi",
			chart:   domain.ChartAnswer,
			metrics: []string{"revenue_booked", "revenue_collected"},
			limit:   1,
		},
		{
			name:    "employees by role",
			text:    "show employees by role",
			dataset: "employee",
			chart:   domain.ChartBar,
			dims:    []string{"role"},
			limit:   50,
		},
		{
			name:    "employees by department",
			text:    "staff breakdown by department",
			dataset: "employee",
			chart:   domain.ChartBar,
			dims:    []string{"department"},
			limit:   50,
		},
		{
			name:    "customers by status",
			text:    "customers by status",
			dataset: "customer",
			chart:   domain.ChartPie,
			dims:    []string{"status"},
			limit:   50,
		},
		{
			name:    "customer count",
			text:    "how many customers do we have",
			dataset: "customer",
			chart:   domain.ChartAnswer,
			limit:   1,
		},
		{
			name:    "bookings by project",
			text:    "bookings by project",
			dataset: "booking",
			chart:   domain.ChartBar,
			dims:    []string{"project__name"},
			metrics: []string{"booking_value"},
			limit:   50,
		},
		{
			name:    "units by status",
			text:    "unit breakdown",
			dataset: "unit",
			chart:   domain.ChartPie,
			dims:    []string{"status"},
			limit:   50,
		},
		{
			name:    "marketing by channel",
			text:    "marketing spend by channel",
			dataset: "marketing_campaign",
			chart:   domain.ChartPie,
			dims:    []string{"channel"},
			metrics: []string{"spend"},
			limit:   50,
		},
		{
			name:    "project listing",
			text:    "list all projects",
			dataset: "project",
			chart:   domain.ChartBar,
			dims:    []string{"name"},
			limit:   50,
		},
		{
			name:    "no category match",
			text:    "hello there",
			dataset: "org_kpi",
			chart:   domain.ChartAnswer,
			metrics: []string{"revenue_booked"},
			limit:   1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			plan := HeuristicPlan(tc.text)
			require.NotNil(t, plan)
			assert.Equal(t, tc.dataset, plan.Dataset)
			assert.Equal(t, tc.chart, plan.ChartType)
			assert.Equal(t, tc.limit, plan.Limit)
			if tc.dims == nil {
				assert.Empty(t, plan.Dimensions)
			} else {
				assert.Equal(t, tc.dims, plan.Dimensions)
			}
			if tc.metrics == nil {
				assert.Empty(t, plan.Metrics)
			} else {
				assert.Equal(t, tc.metrics, plan.Metrics)
			}
			assert.NotNil(t, plan.Filters)
		})
	}
}

func TestHeuristicPlanFirstCategoryWins(t *testing.T) {
	// "project bookings" mentions both project and booking; project sits
	// earlier in the priority chain.
	plan := HeuristicPlan("project bookings this month")
	assert.Equal(t, "project", plan.Dataset)
}

func TestHeuristicPlanExplicitChartOverridesDefault(t *testing.T) {
	plan := HeuristicPlan("pie of employees by role")
	assert.Equal(t, "employee", plan.Dataset)
	assert.Equal(t, domain.ChartPie, plan.ChartType)
}

func TestHeuristicPlanIsDeterministic(t *testing.T) {
	const text = "show me a bar chart of customers by status"
	first := HeuristicPlan(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, HeuristicPlan(text))
	}
}
