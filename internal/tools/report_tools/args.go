package report_tools

import (
	"fmt"
)

// stringArg returns the string value for key, or "" when absent.
func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// boolArg returns the boolean value for key, or false when absent.
func boolArg(args map[string]interface{}, key string) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return false
}

// int64Arg returns the numeric value for key as an int64. JSON numbers arrive
// as float64; fractional values are rejected.
func int64Arg(args map[string]interface{}, key string) (int64, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return 0, nil
	}
	switch v := raw.(type) {
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("%s must be an integer", key)
		}
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("%s must be a number", key)
	}
}

// listArg returns the list value for key, or nil when absent.
func listArg(args map[string]interface{}, key string) ([]interface{}, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s must be a list", key)
	}
	return list, nil
}

// stringListArg returns the list value for key as strings.
func stringListArg(args map[string]interface{}, key string) ([]string, error) {
	list, err := listArg(args, key)
	if err != nil {
		return nil, err
	}
	result := make([]string, 0, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be a string", key, i)
		}
		result = append(result, s)
	}
	return result, nil
}

// objectArg returns the object value for key, or nil when absent.
func objectArg(args map[string]interface{}, key string) (map[string]interface{}, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s must be an object", key)
	}
	return obj, nil
}
