// Package report_tools implements the Google Analytics Data API report tools
// for the MCP server.
//
// The package registers three reporting tools backed by the Data API:
//
//   - run_report runs a core report (v1beta RunReport)
//   - run_realtime_report runs a realtime report (v1beta RunRealtimeReport)
//   - run_funnel_report runs a funnel report (v1alpha RunFunnelReport)
//
// plus a set of hint tools that return static guidance text about the
// available dimensions, metrics, and the expected argument formats for date
// ranges and filter expressions.
//
// Tool arguments use the snake_case field names of the protobuf reference
// docs. The handlers parse the raw arguments, delegate request construction
// to the analytics package, execute the call with automatic credential
// recovery, and render the normalized response as indented JSON.
package report_tools
