package analytics

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const propertyPrefix = "properties/"

// CanonicalizeProperty converts a property reference into the canonical
// "properties/<id>" resource name expected by the Google Analytics APIs.
//
// Accepted shapes:
//   - a positive integer (JSON numbers arrive as float64)
//   - a numeric string, optionally whitespace-padded (e.g. " 213025502 ")
//   - a string of the form "properties/<digits>"
//
// Anything else fails with ErrInvalidProperty.
func CanonicalizeProperty(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return canonicalizePropertyString(v)
	case float64:
		if v < 0 || v != math.Trunc(v) {
			return "", fmt.Errorf("%w: %v is not a positive integer property ID", ErrInvalidProperty, v)
		}
		return fmt.Sprintf("%s%d", propertyPrefix, int64(v)), nil
	case int:
		if v < 0 {
			return "", fmt.Errorf("%w: %d is not a positive integer property ID", ErrInvalidProperty, v)
		}
		return fmt.Sprintf("%s%d", propertyPrefix, v), nil
	case int64:
		if v < 0 {
			return "", fmt.Errorf("%w: %d is not a positive integer property ID", ErrInvalidProperty, v)
		}
		return fmt.Sprintf("%s%d", propertyPrefix, v), nil
	default:
		return "", fmt.Errorf("%w: expected a number or string, got %T", ErrInvalidProperty, value)
	}
}

func canonicalizePropertyString(s string) (string, error) {
	s = strings.TrimSpace(s)
	digits := s
	if strings.HasPrefix(s, propertyPrefix) {
		digits = s[len(propertyPrefix):]
	}
	if digits == "" || !isDigits(digits) {
		return "", fmt.Errorf("%w: %q. Expected a numeric string (e.g. \"213025502\") or \"properties/<id>\". "+
			"Get property IDs from get_account_summaries()", ErrInvalidProperty, s)
	}
	// Re-parse to strip leading zeros, matching the numeric path.
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: %q is not a valid property ID", ErrInvalidProperty, s)
	}
	return fmt.Sprintf("%s%d", propertyPrefix, n), nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
