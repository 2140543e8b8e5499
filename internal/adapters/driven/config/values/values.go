// Package values converts loosely typed configuration values.
//
// TOML integers decode as int64, YAML integers as int, and in-memory callers
// store whatever Go type they hold, so every config store reads through
// these helpers. Values of the wrong kind convert to the zero value.
package values

// String returns v when it is a string.
func String(v any) string {
	s, _ := v.(string)
	return s
}

// Int returns v as an int. Floats are not truncated.
func Int(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case int32:
		return int(n)
	case uint64:
		return int(n)
	default:
		return 0
	}
}

// Float returns v as a float64. Integers are accepted, so
// temperature = 1 reads as 1.0.
func Float(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

// Bool returns v when it is a bool.
func Bool(v any) bool {
	b, _ := v.(bool)
	return b
}

// StringSlice returns v as a []string. Non-string items of a []any are
// skipped.
func StringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}
