package common

import "testing"

func TestGetPropertyFromArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]interface{}
		expected string
	}{
		{"missing", map[string]interface{}{}, ""},
		{"numeric string", map[string]interface{}{"property_id": "123456"}, "properties/123456"},
		{"resource name", map[string]interface{}{"property_id": "properties/123456"}, "properties/123456"},
		{"number", map[string]interface{}{"property_id": float64(123456)}, "properties/123456"},
		{"invalid", map[string]interface{}{"property_id": "not-a-property"}, ""},
		{"negative", map[string]interface{}{"property_id": float64(-5)}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetPropertyFromArgs(tt.args); got != tt.expected {
				t.Errorf("GetPropertyFromArgs() = %q, want %q", got, tt.expected)
			}
		})
	}
}
