package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the analytics-mcp application
var rootCmd = &cobra.Command{
	Use:   "analytics-mcp",
	Short: "MCP server exposing Google Analytics reporting and admin tools",
	Long: `analytics-mcp is a Model Context Protocol (MCP) server that exposes
Google Analytics Data API and Admin API operations as tools for AI assistants.

It supports OAuth2 credentials from a config file (with automatic token
refresh) or Application Default Credentials as a fallback.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "analytics-mcp version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newRefreshTokenCmd())
	rootCmd.AddCommand(newVersionCmd())
}
