package executor

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"propel-insights/internal/domain"
)

// coerceFilterValue converts a JSON-decoded filter literal into the bind
// value its field's declared type expects. Plans arrive from an LLM or from
// user text, so numbers show up as strings and vice versa; coercion is
// lenient about representation but strict about meaning.
func coerceFilterValue(dt domain.DataType, raw interface{}) (interface{}, error) {
	switch dt {
	case domain.TypeDecimal, domain.TypeInteger:
		return coerceNumber(raw)
	case domain.TypeDate:
		return coerceDate(raw)
	case domain.TypeBoolean:
		return coerceBool(raw)
	default:
		// string and reference fields match on their textual form
		switch v := raw.(type) {
		case string:
			return v, nil
		case float64:
			return formatFilterNumber(v), nil
		case bool:
			return strconv.FormatBool(v), nil
		default:
			return nil, fmt.Errorf("cannot use %T as a text filter", raw)
		}
	}
}

func coerceNumber(raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", v)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("cannot use %T as a numeric filter", raw)
	}
}

// coerceDate accepts ISO 8601 date or timestamp strings and binds the
// date-only form, matching how date columns are stored.
func coerceDate(raw interface{}) (interface{}, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("cannot use %T as a date filter", raw)
	}
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return nil, fmt.Errorf("%q is not an ISO 8601 date", s)
}

func coerceBool(raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean", v)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("cannot use %T as a boolean filter", raw)
	}
}

func formatFilterNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
