package admin_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/analytics-mcp/analytics-mcp/internal/instrumentation"
	"github.com/analytics-mcp/analytics-mcp/internal/server"
	"github.com/analytics-mcp/analytics-mcp/internal/tools/common"
)

// RegisterAdminTools registers the Admin API account and property tools plus
// the per-property metadata tools with the MCP server.
func RegisterAdminTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	accountSummariesTool := mcp.NewTool("get_account_summaries",
		mcp.WithDescription("Retrieves summaries of all Google Analytics accounts and properties "+
			"accessible by the caller, including display names and property IDs."),
	)

	s.AddTool(accountSummariesTool, common.InstrumentedToolHandlerWithService(
		"get_account_summaries", instrumentation.ServiceAdmin, instrumentation.OperationListAccountSummaries, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetAccountSummaries(ctx, request, sc)
		}))

	propertyDetailsTool := mcp.NewTool("get_property_details",
		mcp.WithDescription("Returns details about a Google Analytics property, such as its display "+
			"name, time zone, currency code, and service level."),
		mcp.WithString("property_id",
			mcp.Required(),
			mcp.Description("The Google Analytics property ID. A number, a numeric string, or 'properties/<id>'."),
		),
	)

	s.AddTool(propertyDetailsTool, common.InstrumentedToolHandlerWithService(
		"get_property_details", instrumentation.ServiceAdmin, instrumentation.OperationGetProperty, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetPropertyDetails(ctx, request, sc)
		}))

	googleAdsLinksTool := mcp.NewTool("list_google_ads_links",
		mcp.WithDescription("Returns the Google Ads links for a Google Analytics property."),
		mcp.WithString("property_id",
			mcp.Required(),
			mcp.Description("The Google Analytics property ID. A number, a numeric string, or 'properties/<id>'."),
		),
	)

	s.AddTool(googleAdsLinksTool, common.InstrumentedToolHandlerWithService(
		"list_google_ads_links", instrumentation.ServiceAdmin, instrumentation.OperationListGoogleAdsLinks, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListGoogleAdsLinks(ctx, request, sc)
		}))

	dimensionsTool := mcp.NewTool("get_dimensions",
		mcp.WithDescription("Returns the dimensions available for a property, including custom "+
			"dimensions. Use get_standard_dimensions for the dimensions shared by every property."),
		mcp.WithString("property_id",
			mcp.Required(),
			mcp.Description("The Google Analytics property ID. A number, a numeric string, or 'properties/<id>'."),
		),
	)

	s.AddTool(dimensionsTool, common.InstrumentedToolHandlerWithService(
		"get_dimensions", instrumentation.ServiceData, instrumentation.OperationGetMetadata, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetDimensions(ctx, request, sc)
		}))

	metricsTool := mcp.NewTool("get_metrics",
		mcp.WithDescription("Returns the metrics available for a property, including custom metrics "+
			"and key events. Use get_standard_metrics for the metrics shared by every property."),
		mcp.WithString("property_id",
			mcp.Required(),
			mcp.Description("The Google Analytics property ID. A number, a numeric string, or 'properties/<id>'."),
		),
	)

	s.AddTool(metricsTool, common.InstrumentedToolHandlerWithService(
		"get_metrics", instrumentation.ServiceData, instrumentation.OperationGetMetadata, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetMetrics(ctx, request, sc)
		}))

	return nil
}
