// Package cmd implements the command-line interface for analytics-mcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server to provide Google Analytics tools for AI assistants
//   - refresh-token: Manually refresh the OAuth access token in a config file
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
