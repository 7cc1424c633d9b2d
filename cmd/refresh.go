package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/analytics-mcp/analytics-mcp/internal/auth"
	"github.com/analytics-mcp/analytics-mcp/internal/config"
)

func newRefreshTokenCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "refresh-token",
		Short: "Refresh the OAuth access token in a config file",
		Long: `Refresh the OAuth access token stored in a credentials config file and
write the new token back to the file.

The config file is located via the --config flag or the
GOOGLE_ANALYTICS_CONFIG_PATH environment variable. It must contain an OAuth
client and a refresh token.

The serve command refreshes tokens automatically; this command is for
refreshing a token out of band, for example before distributing a config
file to an environment without network access to the token endpoint.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ResolvePath(configPath)
			if path == "" {
				return fmt.Errorf("no config file: provide --config or set %s", config.EnvConfigPath)
			}

			store := auth.NewStore(config.NewSource(path), nil)
			token, err := store.Refresh(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to refresh token: %w", err)
			}

			fmt.Printf("Access token refreshed in %s\n", path)
			if !token.Expiry.IsZero() {
				fmt.Printf("New token expires at %s\n", token.Expiry.Format("2006-01-02 15:04:05 MST"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to the credentials config file. Can also use GOOGLE_ANALYTICS_CONFIG_PATH env var.")

	return cmd
}
