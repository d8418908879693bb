package executor

import (
	"strings"

	"propel-insights/internal/domain"
)

const countLabel = "Count"

// shape renders fetched rows into the result form the plan's chart type
// asks for. An empty result set is a real result: zero for answers, empty
// labels and series for charts, no rows for tables.
func shape(chart domain.ChartType, v validated, rows []resultRow) *domain.QueryResult {
	if v.grouped {
		return shapeGrouped(chart, v, rows)
	}
	return shapeScalar(chart, v, rows)
}

func shapeGrouped(chart domain.ChartType, v validated, rows []resultRow) *domain.QueryResult {
	switch chart {
	case domain.ChartPie, domain.ChartBar, domain.ChartLine:
		labels := make([]string, 0, len(rows))
		series := make([][]float64, aggCount(v))
		for i := range series {
			series[i] = make([]float64, 0, len(rows))
		}
		for _, r := range rows {
			labels = append(labels, strings.Join(r.groups, " / "))
			for i := range series {
				series[i] = append(series[i], r.values[i])
			}
		}
		return &domain.QueryResult{Chart: &domain.Chart{ChartType: chart, Labels: labels, Series: series}}

	case domain.ChartTable:
		columns := make([]string, 0, len(v.dims)+aggCount(v))
		for _, d := range v.dims {
			columns = append(columns, d.Label)
		}
		columns = append(columns, aggLabels(v)...)
		out := make([][]interface{}, 0, len(rows))
		for _, r := range rows {
			row := make([]interface{}, 0, len(columns))
			for _, g := range r.groups {
				row = append(row, g)
			}
			for _, val := range r.values {
				row = append(row, val)
			}
			out = append(out, row)
		}
		return &domain.QueryResult{Table: &domain.Table{Columns: columns, Rows: out}}

	default:
		// A grouped plan asked to answer in one number: total the first
		// aggregate across groups.
		var total float64
		for _, r := range rows {
			total += r.values[0]
		}
		return &domain.QueryResult{Answer: &domain.Answer{Value: total, Label: aggLabels(v)[0]}}
	}
}

func shapeScalar(chart domain.ChartType, v validated, rows []resultRow) *domain.QueryResult {
	values := make([]float64, aggCount(v))
	if len(rows) > 0 {
		copy(values, rows[0].values)
	}
	labels := aggLabels(v)

	switch chart {
	case domain.ChartPie, domain.ChartBar, domain.ChartLine:
		return &domain.QueryResult{Chart: &domain.Chart{
			ChartType: chart,
			Labels:    labels,
			Series:    [][]float64{values},
		}}

	case domain.ChartTable:
		out := make([][]interface{}, 0, len(values))
		for i, val := range values {
			out = append(out, []interface{}{labels[i], val})
		}
		return &domain.QueryResult{Table: &domain.Table{Columns: []string{"Metric", "Value"}, Rows: out}}

	default:
		return &domain.QueryResult{Answer: &domain.Answer{Value: values[0], Label: labels[0]}}
	}
}

func aggCount(v validated) int {
	if len(v.metrics) == 0 {
		return 1
	}
	return len(v.metrics)
}

func aggLabels(v validated) []string {
	if len(v.metrics) == 0 {
		return []string{countLabel}
	}
	labels := make([]string, len(v.metrics))
	for i, m := range v.metrics {
		labels[i] = m.Label
	}
	return labels
}
