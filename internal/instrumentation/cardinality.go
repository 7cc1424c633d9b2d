package instrumentation

import "strings"

// Cardinality management helpers for metrics.
// These functions reduce high-cardinality label values to prevent metrics explosion.
//
// # Warning
//
// High cardinality in metrics can cause:
// - Increased memory usage in Prometheus/metrics backends
// - Slower query performance
// - Higher storage costs
//
// Always use these helpers when recording metrics with caller-supplied values.

// NormalizePropertyLabel reduces a property reference to a stable label.
// Canonical "properties/<id>" names pass through; anything else collapses to
// "unknown" so malformed caller input cannot mint new label values.
func NormalizePropertyLabel(property string) string {
	if property == "" || !strings.HasPrefix(property, "properties/") {
		return "unknown"
	}
	return property
}

// Common operation types for Google Analytics API metrics.
// Status, OAuth, and Service constants are defined in config.go.
const (
	OperationRunReport            = "run_report"
	OperationRunRealtimeReport    = "run_realtime_report"
	OperationRunFunnelReport      = "run_funnel_report"
	OperationGetMetadata          = "get_metadata"
	OperationGetProperty          = "get_property"
	OperationListAccountSummaries = "list_account_summaries"
	OperationListGoogleAdsLinks   = "list_google_ads_links"
)
