package domain

import (
	"fmt"
	"strconv"
)

// Answer is a single scalar result with a human-readable label.
type Answer struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// Text renders the answer for the response payload.
func (a Answer) Text() string {
	return fmt.Sprintf("%s: %s", a.Label, formatNumber(a.Value))
}

// Chart is a labelled numeric series result.
type Chart struct {
	ChartType ChartType   `json:"chart_type"`
	Labels    []string    `json:"labels"`
	Series    [][]float64 `json:"series"`
}

// Table is a tabular result.
type Table struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// QueryResult is the executor output: exactly one of Answer, Chart, or Table
// is set for a successful query. Error-shaped results carry Message instead.
// Failed is true only for genuine backend faults (unknown dataset,
// unexpected execution error); ordinary user mistakes stay Failed=false.
type QueryResult struct {
	Answer  *Answer
	Chart   *Chart
	Table   *Table
	Message string
	Failed  bool
}

// ErrorResult builds an error-shaped result with message text.
func ErrorResult(failed bool, format string, args ...interface{}) *QueryResult {
	return &QueryResult{Message: fmt.Sprintf(format, args...), Failed: failed}
}

// AnswerText returns the textual answer for the response payload: the error
// message for error-shaped results, the formatted scalar for answers, and
// empty for charts and tables.
func (r *QueryResult) AnswerText() string {
	if r.Message != "" {
		return r.Message
	}
	if r.Answer != nil {
		return r.Answer.Text()
	}
	return ""
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
