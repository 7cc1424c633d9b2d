package report_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	analyticsalpha "google.golang.org/api/analyticsdata/v1alpha"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"

	"github.com/analytics-mcp/analytics-mcp/internal/analytics"
	"github.com/analytics-mcp/analytics-mcp/internal/auth"
	"github.com/analytics-mcp/analytics-mcp/internal/server"
)

// parseReportArgs assembles the shared run_report / run_realtime_report
// arguments. Validation of the individual shapes happens in the request
// builders.
func parseReportArgs(args map[string]interface{}) (analytics.ReportArgs, error) {
	var parsed analytics.ReportArgs

	parsed.Property = args["property_id"]
	parsed.CurrencyCode = stringArg(args, "currency_code")

	var err error
	if parsed.DateRanges, err = listArg(args, "date_ranges"); err != nil {
		return parsed, err
	}
	if parsed.Dimensions, err = stringListArg(args, "dimensions"); err != nil {
		return parsed, err
	}
	if parsed.Metrics, err = stringListArg(args, "metrics"); err != nil {
		return parsed, err
	}
	if parsed.DimensionFilter, err = objectArg(args, "dimension_filter"); err != nil {
		return parsed, err
	}
	if parsed.MetricFilter, err = objectArg(args, "metric_filter"); err != nil {
		return parsed, err
	}
	if parsed.OrderBys, err = listArg(args, "order_bys"); err != nil {
		return parsed, err
	}
	if parsed.Limit, err = int64Arg(args, "limit"); err != nil {
		return parsed, err
	}
	if parsed.Offset, err = int64Arg(args, "offset"); err != nil {
		return parsed, err
	}

	return parsed, nil
}

func handleRunReport(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	reportArgs, err := parseReportArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	quotaRequested := boolArg(args, "return_property_quota")

	apiRequest, err := analytics.BuildRunReportRequest(reportArgs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	svc, err := sc.Clients().Data(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Data API client: %v", err)), nil
	}

	response, err := auth.WithRetry(ctx, sc.Clients(), sc.Logger(), "run_report",
		func(ctx context.Context) (*analyticsdata.RunReportResponse, error) {
			return svc.Properties.RunReport(apiRequest.Property, apiRequest).Context(ctx).Do()
		})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to run report: %v", err)), nil
	}

	return jsonResult(analytics.NormalizeReport(response, quotaRequested))
}

func handleRunRealtimeReport(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	reportArgs, err := parseReportArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	quotaRequested := boolArg(args, "return_property_quota")

	apiRequest, err := analytics.BuildRunRealtimeReportRequest(reportArgs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	svc, err := sc.Clients().Data(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Data API client: %v", err)), nil
	}

	response, err := auth.WithRetry(ctx, sc.Clients(), sc.Logger(), "run_realtime_report",
		func(ctx context.Context) (*analyticsdata.RunRealtimeReportResponse, error) {
			return svc.Properties.RunRealtimeReport(apiRequest.Property, apiRequest).Context(ctx).Do()
		})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to run realtime report: %v", err)), nil
	}

	return jsonResult(analytics.NormalizeRealtimeReport(response, quotaRequested))
}

func handleRunFunnelReport(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	funnelArgs := analytics.FunnelArgs{
		Property:            args["property_id"],
		ReturnPropertyQuota: boolArg(args, "return_property_quota"),
	}

	var err error
	if funnelArgs.Steps, err = listArg(args, "funnel_steps"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if funnelArgs.DateRanges, err = listArg(args, "date_ranges"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if funnelArgs.Breakdown, err = objectArg(args, "funnel_breakdown"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if funnelArgs.NextAction, err = objectArg(args, "funnel_next_action"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if funnelArgs.Segments, err = listArg(args, "segments"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	property, apiRequest, err := analytics.BuildRunFunnelReportRequest(funnelArgs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	svc, err := sc.Clients().Alpha(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Data API alpha client: %v", err)), nil
	}

	response, err := auth.WithRetry(ctx, sc.Clients(), sc.Logger(), "run_funnel_report",
		func(ctx context.Context) (*analyticsalpha.GoogleAnalyticsDataV1alphaRunFunnelReportResponse, error) {
			return svc.Properties.RunFunnelReport(property, apiRequest).Context(ctx).Do()
		})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to run funnel report: %v", err)), nil
	}

	normalized, err := analytics.NormalizeFunnelReport(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to render funnel report: %v", err)), nil
	}
	return jsonResult(normalized)
}

// jsonResult renders a normalized result as indented JSON text.
func jsonResult(value interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
