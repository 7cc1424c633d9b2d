package analytics

import (
	"strings"
	"unicode"
)

// snakeToCamelKeys recursively rewrites map keys from snake_case to the
// camelCase JSON names used by the Google API clients. Values are left
// untouched.
func snakeToCamelKeys(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, inner := range v {
			out[snakeToCamel(key)] = snakeToCamelKeys(inner)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, inner := range v {
			out[i] = snakeToCamelKeys(inner)
		}
		return out
	default:
		return value
	}
}

// camelToSnakeKeys is the inverse of snakeToCamelKeys, used when rendering
// typed API responses in the snake_case shape of the protobuf reference docs.
func camelToSnakeKeys(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, inner := range v {
			out[camelToSnake(key)] = camelToSnakeKeys(inner)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, inner := range v {
			out[i] = camelToSnakeKeys(inner)
		}
		return out
	default:
		return value
	}
}

func snakeToCamel(s string) string {
	parts := strings.Split(s, "_")
	if len(parts) == 1 {
		return s
	}
	var b strings.Builder
	b.WriteString(parts[0])
	for _, part := range parts[1:] {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
