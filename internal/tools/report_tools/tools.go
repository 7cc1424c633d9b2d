package report_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/analytics-mcp/analytics-mcp/internal/instrumentation"
	"github.com/analytics-mcp/analytics-mcp/internal/server"
	"github.com/analytics-mcp/analytics-mcp/internal/tools/common"
)

// RegisterReportTools registers the Data API report tools with the MCP server.
func RegisterReportTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := RegisterHintTools(s, sc); err != nil {
		return fmt.Errorf("failed to register hint tools: %w", err)
	}

	runReportTool := mcp.NewTool("run_report",
		mcp.WithDescription("Run a Google Analytics report using the Data API. "+
			"Filter expressions, order bys, and date ranges use the snake_case field names of the protobuf reference docs "+
			"(https://github.com/googleapis/googleapis/tree/master/google/analytics/data/v1beta)."),
		mcp.WithString("property_id",
			mcp.Required(),
			mcp.Description("The Google Analytics property ID. A number, a numeric string, or 'properties/<id>'."),
		),
		mcp.WithArray("date_ranges",
			mcp.Required(),
			mcp.Description("A list of date ranges to include in the report, each {start_date, end_date, name?}. "+
				"See the run_report_date_ranges_hints tool for the expected format."),
		),
		mcp.WithArray("dimensions",
			mcp.Required(),
			mcp.Description("A list of dimension names to include in the report."),
		),
		mcp.WithArray("metrics",
			mcp.Required(),
			mcp.Description("A list of metric names to include in the report."),
		),
		mcp.WithObject("dimension_filter",
			mcp.Description("A Data API FilterExpression to apply to the dimensions. Don't use this for filtering metrics; "+
				"use metric_filter instead. See the run_report_dimension_filter_hints tool for the expected format."),
		),
		mcp.WithObject("metric_filter",
			mcp.Description("A Data API FilterExpression to apply to the metrics. Don't use this for filtering dimensions; "+
				"use dimension_filter instead. See the run_report_metric_filter_hints tool for the expected format."),
		),
		mcp.WithArray("order_bys",
			mcp.Description("Ordering of the report rows. Each entry has optional 'desc' and exactly one of "+
				"{dimension: {dimension_name, order_type?}} or {metric: {metric_name}}."),
		),
		mcp.WithNumber("limit",
			mcp.Description("The maximum number of rows to return in each response. Must be a positive integer <= 250,000. "+
				"Used to paginate through large reports."),
		),
		mcp.WithNumber("offset",
			mcp.Description("The row count of the start row. The first row is counted as row 0. "+
				"Used to paginate through large reports."),
		),
		mcp.WithString("currency_code",
			mcp.Description("Currency code for currency metrics, e.g. 'USD'. Defaults to the property's currency."),
		),
		mcp.WithBoolean("return_property_quota",
			mcp.Description("Include the property's Data API quota state in the response."),
		),
	)

	s.AddTool(runReportTool, common.InstrumentedToolHandlerWithService(
		"run_report", instrumentation.ServiceData, instrumentation.OperationRunReport, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRunReport(ctx, request, sc)
		}))

	runRealtimeReportTool := mcp.NewTool("run_realtime_report",
		mcp.WithDescription("Run a Google Analytics realtime report using the Data API. "+
			"Dimensions and metrics must be realtime dimensions and metrics; see the get_realtime_dimensions and "+
			"get_realtime_metrics tools."),
		mcp.WithString("property_id",
			mcp.Required(),
			mcp.Description("The Google Analytics property ID. A number, a numeric string, or 'properties/<id>'."),
		),
		mcp.WithArray("dimensions",
			mcp.Required(),
			mcp.Description("A list of realtime dimension names to include in the report."),
		),
		mcp.WithArray("metrics",
			mcp.Required(),
			mcp.Description("A list of realtime metric names to include in the report."),
		),
		mcp.WithObject("dimension_filter",
			mcp.Description("A Data API FilterExpression to apply to the dimensions. "+
				"See the run_report_dimension_filter_hints tool for the expected format."),
		),
		mcp.WithObject("metric_filter",
			mcp.Description("A Data API FilterExpression to apply to the metrics. "+
				"See the run_report_metric_filter_hints tool for the expected format."),
		),
		mcp.WithArray("order_bys",
			mcp.Description("Ordering of the report rows, in the same shape as for run_report."),
		),
		mcp.WithNumber("limit",
			mcp.Description("The maximum number of rows to return. Must be a positive integer <= 250,000."),
		),
		mcp.WithBoolean("return_property_quota",
			mcp.Description("Include the property's realtime quota state in the response."),
		),
	)

	s.AddTool(runRealtimeReportTool, common.InstrumentedToolHandlerWithService(
		"run_realtime_report", instrumentation.ServiceData, instrumentation.OperationRunRealtimeReport, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRunRealtimeReport(ctx, request, sc)
		}))

	runFunnelReportTool := mcp.NewTool("run_funnel_report",
		mcp.WithDescription("Run a Google Analytics funnel report using the Data API (alpha). "+
			"A funnel needs at least two steps; each step is {name?, event} for a simple event step or "+
			"{name?, filter_expression} with a full funnel filter tree in snake_case protobuf field names."),
		mcp.WithString("property_id",
			mcp.Required(),
			mcp.Description("The Google Analytics property ID. A number, a numeric string, or 'properties/<id>'."),
		),
		mcp.WithArray("funnel_steps",
			mcp.Required(),
			mcp.Description("The ordered funnel steps. At least two are required. Each step is "+
				"{name?, event: '<eventName>'} or {name?, filter_expression: <FunnelFilterExpression>}."),
		),
		mcp.WithArray("date_ranges",
			mcp.Description("A list of date ranges for the funnel, each {start_date, end_date, name?}."),
		),
		mcp.WithObject("funnel_breakdown",
			mcp.Description("Breakdown settings: {breakdown_dimension: '<dimensionName>'}."),
		),
		mcp.WithObject("funnel_next_action",
			mcp.Description("Next-action settings: {next_action_dimension: '<dimensionName>', limit?}."),
		),
		mcp.WithArray("segments",
			mcp.Description("Optional Data API segments, passed through in snake_case protobuf field names."),
		),
		mcp.WithBoolean("return_property_quota",
			mcp.Description("Include the property's Data API quota state in the response."),
		),
	)

	s.AddTool(runFunnelReportTool, common.InstrumentedToolHandlerWithService(
		"run_funnel_report", instrumentation.ServiceDataAlpha, instrumentation.OperationRunFunnelReport, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRunFunnelReport(ctx, request, sc)
		}))

	return nil
}
