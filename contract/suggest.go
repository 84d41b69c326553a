package contract

import "strings"

// DefaultExample derives a value from a schema: the first enum member, the
// default, an example, the constant, then a boundary or zero value of the
// declared type.
func DefaultExample(schema map[string]any) (any, bool) {
	if enum, ok := schema["enum"].([]any); ok && len(enum) > 0 {
		return enum[0], true
	}
	for _, key := range []string{"default", "example", "const"} {
		if v, ok := schema[key]; ok {
			return v, true
		}
	}
	if examples, ok := schema["examples"].([]any); ok && len(examples) > 0 {
		return examples[0], true
	}

	switch primaryType(schema) {
	case "integer":
		return int64(boundary(schema, 1)), true
	case "number":
		return boundary(schema, 0.5), true
	case "string":
		n, _ := toInt(schema["minLength"])
		return strings.Repeat("a", n), true
	case "boolean":
		return false, true
	case "array":
		return []any{}, true
	case "object":
		return map[string]any{}, true
	}
	return nil, false
}

// boundary returns the smallest value inside the declared range, stepping
// by step past exclusive bounds. Zero is used when it is in range.
func boundary(s map[string]any, step float64) float64 {
	lo, hasLo := toFloat(s["minimum"])
	if exclusive, _ := s["exclusiveMinimum"].(bool); exclusive && hasLo {
		lo += step
	}
	if e, ok := toFloat(s["exclusiveMinimum"]); ok {
		lo, hasLo = e+step, true
	}
	hi, hasHi := toFloat(s["maximum"])
	if exclusive, _ := s["exclusiveMaximum"].(bool); exclusive && hasHi {
		hi -= step
	}
	if e, ok := toFloat(s["exclusiveMaximum"]); ok {
		hi, hasHi = e-step, true
	}
	switch {
	case hasLo && lo > 0:
		return lo
	case hasHi && hi < 0:
		return hi
	default:
		return 0
	}
}
