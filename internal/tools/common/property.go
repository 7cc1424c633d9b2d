package common

import (
	"github.com/analytics-mcp/analytics-mcp/internal/analytics"
)

// GetPropertyFromArgs extracts the target property from request arguments
// and reduces it to the canonical "properties/<id>" form for metrics labels.
// Returns the empty string when no usable property is present so callers
// can skip the label entirely.
func GetPropertyFromArgs(args map[string]interface{}) string {
	raw, ok := args["property_id"]
	if !ok {
		return ""
	}
	property, err := analytics.CanonicalizeProperty(raw)
	if err != nil {
		return ""
	}
	return property
}
