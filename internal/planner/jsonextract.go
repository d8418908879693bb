package planner

import "errors"

// ErrNoJSON is returned when no balanced JSON object is present in the text.
var ErrNoJSON = errors.New("no JSON object found in text")

// ExtractJSON returns the first balanced top-level JSON object embedded in
// free text. Language models wrap plans in prose and markdown fences, so we
// scan for the first '{' and track brace depth, skipping braces inside
// string literals and honoring backslash escapes. The candidate is returned
// raw; the caller unmarshals and reports syntax errors.
func ExtractJSON(text string) (string, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if start >= 0 && inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		case '"':
			if start >= 0 {
				inString = true
			}
		}
	}
	return "", ErrNoJSON
}
