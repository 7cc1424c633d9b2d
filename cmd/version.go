package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of analytics-mcp",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("analytics-mcp version %s\n", version)
		},
	}
}
