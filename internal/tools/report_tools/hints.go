package report_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/analytics-mcp/analytics-mcp/internal/server"
	"github.com/analytics-mcp/analytics-mcp/internal/tools/common"
)

// Common notes to consider when applying dimension and metric filters.
const filterNotes = `
  Notes:
    The API applies the 'dimension_filter' and 'metric_filter'
    independently. As a result, some complex combinations of dimension and
    metric filters are not possible in a single report request.

    For example, you can't create a 'dimension_filter' and 'metric_filter'
    combination for the following condition:

    (
      (eventName = "page_view" AND eventCount > 100)
      OR
      (eventName = "join_group" AND eventCount < 50)
    )

    This isn't possible because there's no way to apply the condition
    "eventCount > 100" only to the data with eventName of "page_view", and
    the condition "eventCount < 50" only to the data with eventName of
    "join_group".

    If you have complex conditions like this, either:

    a)  Run a single report that applies a subset of the conditions that
        the API supports as well as the data needed to perform filtering of the
        API response on the client side.

    or

    b)  Run a separate report for each combination of dimension condition and
        metric condition.

    Try to run fewer reports (option a) if possible. However, if running
    fewer reports results in excessive quota usage for the API, use option
    b. More information on quota usage is at
    https://developers.google.com/analytics/blog/2023/data-api-quota-management.
`

const standardDimensionsHint = `Standard dimensions defined in the HTML table at
    https://developers.google.com/analytics/devguides/reporting/data/v1/api-schema#dimensions
    These dimensions are available to *every* property`

const standardMetricsHint = `Standard metrics defined in the HTML table at
      https://developers.google.com/analytics/devguides/reporting/data/v1/api-schema#metrics
      These metrics are available to *every* property`

const realtimeDimensionsHint = `Realtime dimensions defined in the HTML table at
    https://developers.google.com/analytics/devguides/reporting/data/v1/realtime-api-schema#dimensions
    These dimensions are available to *every* property`

const realtimeMetricsHint = `Realtime metrics defined in the HTML table at
      https://developers.google.com/analytics/devguides/reporting/data/v1/realtime-api-schema#metrics
      These metrics are available to *every* property`

const dateRangesHints = `Example date_ranges arguments:
      1. A single date range:

        [ {"start_date": "2025-01-01", "end_date": "2025-01-31", "name": "Jan2025"} ]

      2. A relative date range using 'yesterday' and 'today':
        [ {"start_date": "yesterday", "end_date": "today", "name": "YesterdayAndToday"} ]

      3. A relative date range using 'NdaysAgo' and 'today':
        [ {"start_date": "30daysAgo", "end_date": "yesterday", "name": "Previous30Days"} ]

      4. Multiple date ranges:
        [ {"start_date": "2025-01-01", "end_date": "2025-01-31", "name": "Jan2025"},
          {"start_date": "2025-02-01", "end_date": "2025-02-28", "name": "Feb2025"} ]
    `

const metricFilterHints = `Example metric_filter arguments:
      1. A simple filter:
        {"filter": {"field_name": "eventCount", "numeric_filter": {"operation": "GREATER_THAN", "value": {"int64_value": 10}}}}

      2. A NOT filter:
        {"not_expression": {"filter": {"field_name": "eventCount", "numeric_filter": {"operation": "GREATER_THAN", "value": {"int64_value": 10}}}}}

      3. An empty value filter:
        {"filter": {"field_name": "purchaseRevenue", "empty_filter": {}}}

      4. An AND group filter:
        {"and_group": {"expressions": [
          {"filter": {"field_name": "eventCount", "numeric_filter": {"operation": "GREATER_THAN", "value": {"int64_value": 10}}}},
          {"filter": {"field_name": "purchaseRevenue", "between_filter": {"from_value": {"double_value": 10.0}, "to_value": {"double_value": 25.0}}}}
        ]}}

      5. An OR group filter:
        {"or_group": {"expressions": [
          {"filter": {"field_name": "eventCount", "numeric_filter": {"operation": "GREATER_THAN", "value": {"int64_value": 10}}}},
          {"filter": {"field_name": "purchaseRevenue", "between_filter": {"from_value": {"double_value": 10.0}, "to_value": {"double_value": 25.0}}}}
        ]}}

    ` + filterNotes

const dimensionFilterHints = `Example dimension_filter arguments:
      1. A simple filter:
        {"filter": {"field_name": "eventName", "string_filter": {"match_type": "BEGINS_WITH", "value": "add"}}}

      2. A NOT filter:
        {"not_expression": {"filter": {"field_name": "eventName", "string_filter": {"match_type": "BEGINS_WITH", "value": "add"}}}}

      3. An empty value filter:
        {"filter": {"field_name": "source", "empty_filter": {}}}

      4. An AND group filter:
        {"and_group": {"expressions": [
          {"filter": {"field_name": "sourceMedium", "string_filter": {"match_type": "EXACT", "value": "google / cpc"}}},
          {"filter": {"field_name": "eventName", "in_list_filter": {"case_sensitive": true, "values": ["first_visit", "purchase", "add_to_cart"]}}}
        ]}}

      5. An OR group filter:
        {"or_group": {"expressions": [
          {"filter": {"field_name": "sourceMedium", "string_filter": {"match_type": "EXACT", "value": "google / cpc"}}},
          {"filter": {"field_name": "eventName", "in_list_filter": {"case_sensitive": true, "values": ["first_visit", "purchase", "add_to_cart"]}}}
        ]}}

    ` + filterNotes

// staticTextTool builds a no-argument tool that returns fixed hint text.
func staticTextTool(name, description, text string) (mcp.Tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)) {
	tool := mcp.NewTool(name, mcp.WithDescription(description))
	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(text), nil
	}
	return tool, handler
}

// RegisterHintTools registers the schema and argument-format hint tools.
// These return static guidance text and never call the backend.
func RegisterHintTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	hints := []struct {
		name        string
		description string
		text        string
	}{
		{
			name:        "get_standard_dimensions",
			description: "Retrieves the list of standard dimensions, available to every property.",
			text:        standardDimensionsHint,
		},
		{
			name:        "get_standard_metrics",
			description: "Retrieves the list of standard metrics, available to every property.",
			text:        standardMetricsHint,
		},
		{
			name:        "get_realtime_dimensions",
			description: "Retrieves the list of realtime reporting dimensions.",
			text:        realtimeDimensionsHint,
		},
		{
			name:        "get_realtime_metrics",
			description: "Retrieves the list of realtime reporting metrics.",
			text:        realtimeMetricsHint,
		},
		{
			name:        "run_report_date_ranges_hints",
			description: "Provides hints about the expected values for the date_ranges argument for the run_report tool.",
			text:        dateRangesHints,
		},
		{
			name:        "run_report_metric_filter_hints",
			description: "Provides hints about the expected values for the metric_filter argument for the run_report and run_realtime_report tools.",
			text:        metricFilterHints,
		},
		{
			name:        "run_report_dimension_filter_hints",
			description: "Provides hints about the expected values for the dimension_filter argument for the run_report and run_realtime_report tools.",
			text:        dimensionFilterHints,
		},
	}

	for _, hint := range hints {
		tool, handler := staticTextTool(hint.name, hint.description, hint.text)
		s.AddTool(tool, common.InstrumentedToolHandler(hint.name, sc, handler))
	}

	return nil
}
