// Package admin_tools implements the Google Analytics account and property
// tools for the MCP server.
//
// The package registers tools backed by the Admin API:
//
//   - get_account_summaries lists every accessible account and property
//   - get_property_details returns a single property resource
//   - list_google_ads_links lists the Google Ads links of a property
//
// and two per-property metadata tools backed by the Data API:
//
//   - get_dimensions returns the dimensions available to a property,
//     including custom dimensions
//   - get_metrics returns the metrics available to a property, including
//     custom metrics and key events
//
// Listing tools fetch every page before responding. Resources are rendered
// with snake_case field names matching the protobuf reference docs.
package admin_tools
