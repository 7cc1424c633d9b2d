package common

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/analytics-mcp/analytics-mcp/internal/instrumentation"
	"github.com/analytics-mcp/analytics-mcp/internal/logging"
	"github.com/analytics-mcp/analytics-mcp/internal/server"
)

// InstrumentedToolHandler wraps a tool handler with invocation metrics.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(
	toolName string,
	sc *server.ServerContext,
	handler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error),
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		metrics := sc.Metrics()

		// If no instrumentation configured, just call the handler
		if metrics == nil {
			return handler(ctx, request)
		}

		start := time.Now()
		property := GetPropertyFromArgs(request.GetArguments())

		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = instrumentation.StatusError
		}

		if property != "" {
			metrics.RecordToolInvocationWithProperty(ctx, toolName, status,
				instrumentation.NormalizePropertyLabel(property), duration)
		} else {
			metrics.RecordToolInvocation(ctx, toolName, status, duration)
		}

		sc.Logger().Debug("tool invocation complete",
			logging.Tool(toolName),
			logging.Status(status),
			slog.Duration(logging.KeyDuration, duration))

		return result, err
	}
}

// InstrumentedToolHandlerWithService is like InstrumentedToolHandler but also
// records the Google API surface and operation type for more detailed metrics.
//
// This handler records both:
// - MCP tool invocation metrics (mcp_tool_invocations_total, mcp_tool_duration_seconds)
// - Google API operation metrics (google_api_operations_total, google_api_operation_duration_seconds)
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandlerWithService("run_report", instrumentation.ServiceData, instrumentation.OperationRunReport, sc, handler))
func InstrumentedToolHandlerWithService(
	toolName string,
	serviceName string,
	operation string,
	sc *server.ServerContext,
	handler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error),
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		metrics := sc.Metrics()

		// If no instrumentation configured, just call the handler
		if metrics == nil {
			return handler(ctx, request)
		}

		start := time.Now()
		property := GetPropertyFromArgs(request.GetArguments())

		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = instrumentation.StatusError
		}

		if property != "" {
			metrics.RecordToolInvocationWithProperty(ctx, toolName, status,
				instrumentation.NormalizePropertyLabel(property), duration)
		} else {
			metrics.RecordToolInvocation(ctx, toolName, status, duration)
		}

		// Record Google API operation metrics for service-level observability.
		metrics.RecordGoogleAPIOperation(ctx, serviceName, operation, status, duration)

		logger := sc.Logger()
		attrs := []any{
			logging.Tool(toolName),
			logging.Service(serviceName),
			logging.Operation(operation),
			logging.Status(status),
			slog.Duration(logging.KeyDuration, duration),
		}
		if property != "" {
			attrs = append(attrs, logging.Property(property))
		}
		logger.Debug("tool invocation complete", attrs...)

		return result, err
	}
}
