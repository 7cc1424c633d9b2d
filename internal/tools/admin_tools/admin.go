package admin_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	analyticsadmin "google.golang.org/api/analyticsadmin/v1beta"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"

	"github.com/analytics-mcp/analytics-mcp/internal/analytics"
	"github.com/analytics-mcp/analytics-mcp/internal/auth"
	"github.com/analytics-mcp/analytics-mcp/internal/server"
)

func handleGetAccountSummaries(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	svc, err := sc.Clients().Admin(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Admin API client: %v", err)), nil
	}

	// The whole paged listing retries as a unit so a credential refresh in
	// the middle of paging restarts from the first page.
	summaries, err := auth.WithRetry(ctx, sc.Clients(), sc.Logger(), "get_account_summaries",
		func(ctx context.Context) ([]*analyticsadmin.GoogleAnalyticsAdminV1betaAccountSummary, error) {
			var all []*analyticsadmin.GoogleAnalyticsAdminV1betaAccountSummary
			err := svc.AccountSummaries.List().Pages(ctx,
				func(page *analyticsadmin.GoogleAnalyticsAdminV1betaListAccountSummariesResponse) error {
					all = append(all, page.AccountSummaries...)
					return nil
				})
			return all, err
		})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list account summaries: %v", err)), nil
	}

	normalized, err := analytics.NormalizeResource(summaries)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to render account summaries: %v", err)), nil
	}
	return jsonResult(normalized)
}

func handleGetPropertyDetails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	property, err := analytics.CanonicalizeProperty(request.GetArguments()["property_id"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	svc, err := sc.Clients().Admin(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Admin API client: %v", err)), nil
	}

	details, err := auth.WithRetry(ctx, sc.Clients(), sc.Logger(), "get_property_details",
		func(ctx context.Context) (*analyticsadmin.GoogleAnalyticsAdminV1betaProperty, error) {
			return svc.Properties.Get(property).Context(ctx).Do()
		})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get property details: %v", err)), nil
	}

	normalized, err := analytics.NormalizeResource(details)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to render property details: %v", err)), nil
	}
	return jsonResult(normalized)
}

func handleListGoogleAdsLinks(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	property, err := analytics.CanonicalizeProperty(request.GetArguments()["property_id"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	svc, err := sc.Clients().Admin(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Admin API client: %v", err)), nil
	}

	links, err := auth.WithRetry(ctx, sc.Clients(), sc.Logger(), "list_google_ads_links",
		func(ctx context.Context) ([]*analyticsadmin.GoogleAnalyticsAdminV1betaGoogleAdsLink, error) {
			var all []*analyticsadmin.GoogleAnalyticsAdminV1betaGoogleAdsLink
			err := svc.Properties.GoogleAdsLinks.List(property).Pages(ctx,
				func(page *analyticsadmin.GoogleAnalyticsAdminV1betaListGoogleAdsLinksResponse) error {
					all = append(all, page.GoogleAdsLinks...)
					return nil
				})
			return all, err
		})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list Google Ads links: %v", err)), nil
	}

	normalized, err := analytics.NormalizeResource(links)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to render Google Ads links: %v", err)), nil
	}
	return jsonResult(normalized)
}

func handleGetDimensions(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	metadata, result := getMetadata(ctx, request, sc, "get_dimensions")
	if result != nil {
		return result, nil
	}

	normalized, err := analytics.NormalizeResource(metadata.Dimensions)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to render dimensions: %v", err)), nil
	}
	return jsonResult(normalized)
}

func handleGetMetrics(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	metadata, result := getMetadata(ctx, request, sc, "get_metrics")
	if result != nil {
		return result, nil
	}

	normalized, err := analytics.NormalizeResource(metadata.Metrics)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to render metrics: %v", err)), nil
	}
	return jsonResult(normalized)
}

// getMetadata fetches the Data API metadata for the property named in the
// request. A non-nil result is an error result to return to the caller.
func getMetadata(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, operation string) (*analyticsdata.Metadata, *mcp.CallToolResult) {
	property, err := analytics.CanonicalizeProperty(request.GetArguments()["property_id"])
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}

	svc, err := sc.Clients().Data(ctx)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("Failed to create Data API client: %v", err))
	}

	metadata, err := auth.WithRetry(ctx, sc.Clients(), sc.Logger(), operation,
		func(ctx context.Context) (*analyticsdata.Metadata, error) {
			return svc.Properties.GetMetadata(property + "/metadata").Context(ctx).Do()
		})
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("Failed to get property metadata: %v", err))
	}

	return metadata, nil
}

// jsonResult renders a normalized result as indented JSON text.
func jsonResult(value interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
