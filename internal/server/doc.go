// Package server provides the MCP server context, HTTP transport, and
// operational endpoints for the analytics-mcp application.
//
// # Key Components
//
// ServerContext holds the shared dependencies for tool handlers: the
// credential configuration source, the Google credential store, and the
// lazily initialized Google Analytics API clients.
//
// HTTPServer wraps the MCP server with the streamable HTTP transport on
// /mcp, optionally guarded by bearer token introspection. Every request to
// the endpoint is verified against the configured introspection endpoint;
// verification fails closed and denied requests receive a 401 with a
// WWW-Authenticate challenge.
//
// HealthChecker exposes /healthz and /readyz endpoints for Kubernetes
// probes, and MetricsServer serves Prometheus metrics on a dedicated port
// so operational metrics stay off the main application listener.
package server
