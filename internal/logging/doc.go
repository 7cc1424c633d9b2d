// Package logging provides structured logging utilities for analytics-mcp.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - Consistent attribute naming across the codebase
//   - Token sanitization for credential material
//
// # Usage Patterns
//
// Log with standard attributes:
//
//	logger.Info("report complete",
//	    logging.Operation("run_report"),
//	    logging.Property("properties/213025502"),
//	    logging.Status("success"))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("token refreshed",
//	    slog.String("token", logging.SanitizeToken(token)))
//
// Tokens and client secrets are never logged directly.
package logging
