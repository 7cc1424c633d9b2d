package instrumentation

import "testing"

func TestNormalizePropertyLabel(t *testing.T) {
	tests := []struct {
		property string
		expected string
	}{
		{"properties/123456", "properties/123456"},
		{"properties/987654321", "properties/987654321"},
		{"123456", "unknown"},
		{"accounts/123", "unknown"},
		{"", "unknown"},
		{"garbage", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.property, func(t *testing.T) {
			result := NormalizePropertyLabel(tt.property)
			if result != tt.expected {
				t.Errorf("NormalizePropertyLabel(%q) = %q, want %q", tt.property, result, tt.expected)
			}
		})
	}
}

func TestOperationConstants(t *testing.T) {
	operations := map[string]string{
		OperationRunReport:            "run_report",
		OperationRunRealtimeReport:    "run_realtime_report",
		OperationRunFunnelReport:      "run_funnel_report",
		OperationGetMetadata:          "get_metadata",
		OperationGetProperty:          "get_property",
		OperationListAccountSummaries: "list_account_summaries",
		OperationListGoogleAdsLinks:   "list_google_ads_links",
	}

	for constant, expected := range operations {
		if constant != expected {
			t.Errorf("Operation constant = %q, want %q", constant, expected)
		}
	}
}
