package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/analytics-mcp/analytics-mcp/internal/config"
	"github.com/analytics-mcp/analytics-mcp/internal/instrumentation"
	"github.com/analytics-mcp/analytics-mcp/internal/server"
	"github.com/analytics-mcp/analytics-mcp/internal/tools/admin_tools"
	"github.com/analytics-mcp/analytics-mcp/internal/tools/report_tools"
	"github.com/analytics-mcp/analytics-mcp/internal/verifier"
)

// VerifierConfig holds inbound token verification settings for the
// streamable-http transport.
type VerifierConfig struct {
	// Enabled requires a verified bearer token on every /mcp request.
	Enabled bool

	// URL is the token introspection endpoint. Empty means the Google
	// tokeninfo endpoint.
	URL string

	// Method is the HTTP method for the introspection request.
	Method string

	// ContentType for body-carrying introspection methods.
	ContentType string

	// Auth is the outbound auth mode: none, bearer, or basic.
	Auth          string
	BearerToken   string
	BasicUsername string
	BasicPassword string

	// RequiredScopes must all be granted on the inbound token.
	RequiredScopes []string
}

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode        bool
		transport        string
		httpAddr         string
		configPath       string
		disableStreaming bool
		// Token verification settings (streamable-http only)
		requireAuth           bool
		verifierURL           string
		verifierMethod        string
		verifierContentType   string
		verifierAuth          string
		verifierBearerToken   string
		verifierBasicUsername string
		verifierBasicPassword string
		verifierScopes        []string
		// Metrics server configuration
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide Google Analytics
reporting and admin tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport

Credentials:
  The server reads OAuth credentials from a JSON config file:
    --config /path/to/config.json OR GOOGLE_ANALYTICS_CONFIG_PATH env var
  Access tokens are refreshed automatically and persisted back to the file.
  Without a config file, Application Default Credentials are used instead.

Token Verification (streamable-http only):
  With --require-auth, every request to /mcp must carry a bearer token that
  passes introspection:
    --verifier-url OR TOKEN_VERIFIER_URL env var (default: Google tokeninfo)
    --verifier-scopes OR TOKEN_VERIFIER_REQUIRED_SCOPES env var`,
		RunE: func(cmd *cobra.Command, args []string) error {
			verifierConfig := VerifierConfig{
				Enabled:        requireAuth,
				URL:            verifierURL,
				Method:         verifierMethod,
				ContentType:    verifierContentType,
				Auth:           verifierAuth,
				BearerToken:    verifierBearerToken,
				BasicUsername:  verifierBasicUsername,
				BasicPassword:  verifierBasicPassword,
				RequiredScopes: verifierScopes,
			}
			loadVerifierEnvVars(cmd, &verifierConfig)

			metricsConfig := MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			}

			return runServe(transport, debugMode, httpAddr, configPath, disableStreaming, verifierConfig, metricsConfig)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to the credentials config file. Can also use GOOGLE_ANALYTICS_CONFIG_PATH env var. Without it, Application Default Credentials are used.")
	cmd.Flags().BoolVar(&disableStreaming, "disable-streaming", false, "Disable streaming for HTTP transport (for compatibility with certain clients)")

	// Token verification flags (streamable-http transport only)
	cmd.Flags().BoolVar(&requireAuth, "require-auth", false, "Require a verified bearer token on every MCP request (streamable-http only). Can also use MCP_REQUIRE_AUTH env var.")
	cmd.Flags().StringVar(&verifierURL, "verifier-url", "", "Token introspection endpoint URL. Default is the Google tokeninfo endpoint. Can also use TOKEN_VERIFIER_URL env var.")
	cmd.Flags().StringVar(&verifierMethod, "verifier-method", "", "HTTP method for the introspection request (GET or POST). Can also use TOKEN_VERIFIER_METHOD env var.")
	cmd.Flags().StringVar(&verifierContentType, "verifier-content-type", "", "Content type for POST introspection requests: json or form. Can also use TOKEN_VERIFIER_CONTENT_TYPE env var.")
	cmd.Flags().StringVar(&verifierAuth, "verifier-auth", "", "Outbound authentication to the introspection endpoint: none, bearer, or basic. Can also use TOKEN_VERIFIER_AUTH env var.")
	cmd.Flags().StringVar(&verifierBearerToken, "verifier-bearer-token", "", "Bearer token for the introspection endpoint. Can also use TOKEN_VERIFIER_BEARER_TOKEN env var.")
	cmd.Flags().StringVar(&verifierBasicUsername, "verifier-basic-username", "", "Basic auth username for the introspection endpoint. Can also use TOKEN_VERIFIER_BASIC_USERNAME env var.")
	cmd.Flags().StringVar(&verifierBasicPassword, "verifier-basic-password", "", "Basic auth password for the introspection endpoint. Can also use TOKEN_VERIFIER_BASIC_PASSWORD env var.")
	cmd.Flags().StringSliceVar(&verifierScopes, "verifier-scopes", nil, "OAuth scopes that must be granted on inbound tokens (comma-separated). Can also use TOKEN_VERIFIER_REQUIRED_SCOPES env var.")

	// Metrics server flags
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(transport string, debugMode bool, httpAddr, configPath string, disableStreaming bool, verifierConfig VerifierConfig, metricsConfig MetricsConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := newLogger(debugMode)

	// Load metrics config from environment if not set via flags
	if !metricsConfig.Enabled {
		if os.Getenv("METRICS_ENABLED") == "true" {
			metricsConfig.Enabled = true
		}
	}
	if metricsConfig.Addr == "" || metricsConfig.Addr == ":9090" {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			metricsConfig.Addr = addr
		}
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			if transport != "stdio" {
				log.Printf("Error during instrumentation shutdown: %v", err)
			}
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if transport != "stdio" && metricsConfig.Enabled && provider.Enabled() {
		var err error
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		log.Printf("Metrics server started on %s", metricsServer.Addr())
	}

	// Resolve the credentials config file. Absent file means Application
	// Default Credentials.
	var source *config.Source
	if path := config.ResolvePath(configPath); path != "" {
		source = config.NewSource(path)
		if transport != "stdio" {
			log.Printf("Using credentials config file: %s", path)
		}
	} else if transport != "stdio" {
		log.Printf("No credentials config file, using Application Default Credentials")
	}

	// Create server context
	serverContext := server.NewServerContext(shutdownCtx, source, version, logger)
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
	}
	defer func() {
		// Shutdown metrics server first
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("Error during metrics server shutdown: %v", err)
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			if transport != "stdio" {
				log.Printf("Error during server context shutdown: %v", err)
			}
		}
	}()

	// Create MCP server
	mcpSrv := mcpserver.NewMCPServer("analytics-mcp", version,
		mcpserver.WithToolCapabilities(true),
	)

	// Register all tools
	if err := registerAllTools(mcpSrv, serverContext); err != nil {
		return err
	}

	// Start the appropriate server based on transport type
	switch transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, httpAddr, disableStreaming, verifierConfig, metricsConfig, provider, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", transport)
	}
}

// newLogger builds the process logger. Log output goes to stderr so the
// stdio transport keeps stdout free for the protocol.
func newLogger(debugMode bool) *slog.Logger {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools registers all MCP tools
func registerAllTools(mcpSrv *mcpserver.MCPServer, ctx *server.ServerContext) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Reports",
			register: func() error {
				return report_tools.RegisterReportTools(mcpSrv, ctx)
			},
		},
		{
			name: "Admin",
			register: func() error {
				return admin_tools.RegisterAdminTools(mcpSrv, ctx)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, serverContext *server.ServerContext, addr string, disableStreaming bool, verifierConfig VerifierConfig, metricsConfig MetricsConfig, instrProvider *instrumentation.Provider, logger *slog.Logger) error {
	var tokenVerifier *verifier.Verifier
	if verifierConfig.Enabled {
		tokenVerifier = verifier.New(verifier.Config{
			URL:            verifierConfig.URL,
			Method:         verifierConfig.Method,
			ContentType:    verifierConfig.ContentType,
			Auth:           verifierConfig.Auth,
			BearerToken:    verifierConfig.BearerToken,
			BasicUsername:  verifierConfig.BasicUsername,
			BasicPassword:  verifierConfig.BasicPassword,
			RequiredScopes: verifierConfig.RequiredScopes,
		}, logger)
	}

	var metrics *instrumentation.Metrics
	if instrProvider != nil && instrProvider.Enabled() {
		metrics = instrProvider.Metrics()
	}

	healthChecker := server.NewHealthChecker(serverContext)

	httpServer, err := server.NewHTTPServer(mcpSrv, healthChecker, server.HTTPServerConfig{
		Addr:             addr,
		DisableStreaming: disableStreaming,
		Verifier:         tokenVerifier,
		Metrics:          metrics,
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	fmt.Printf("Streamable HTTP server starting on %s\n", addr)
	fmt.Printf("  HTTP endpoint: /mcp\n")
	fmt.Printf("  Health endpoints: /healthz, /readyz\n")
	if metricsConfig.Enabled {
		fmt.Printf("  Metrics endpoint: %s/metrics\n", metricsConfig.Addr)
	}
	if tokenVerifier != nil {
		fmt.Println("\nToken verification: ENABLED")
		fmt.Println("  Requests to /mcp must carry a bearer token that passes introspection.")
	} else {
		fmt.Println("\nToken verification: DISABLED")
		fmt.Println("  Use --require-auth to require verified bearer tokens on /mcp.")
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Println("Shutdown signal received, stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		fmt.Println("HTTP server stopped normally")
	}

	fmt.Println("HTTP server gracefully stopped")
	return nil
}

// loadVerifierEnvVars loads token verification configuration from environment
// variables. Environment variables only apply when the corresponding flag was
// not explicitly set.
func loadVerifierEnvVars(cmd *cobra.Command, config *VerifierConfig) {
	if !cmd.Flags().Changed("require-auth") {
		if os.Getenv("MCP_REQUIRE_AUTH") == "true" {
			config.Enabled = true
		}
	}
	if !cmd.Flags().Changed("verifier-url") {
		if url := os.Getenv("TOKEN_VERIFIER_URL"); url != "" {
			config.URL = url
		}
	}
	if !cmd.Flags().Changed("verifier-method") {
		if method := os.Getenv("TOKEN_VERIFIER_METHOD"); method != "" {
			config.Method = method
		}
	}
	if !cmd.Flags().Changed("verifier-content-type") {
		if contentType := os.Getenv("TOKEN_VERIFIER_CONTENT_TYPE"); contentType != "" {
			config.ContentType = contentType
		}
	}
	if !cmd.Flags().Changed("verifier-auth") {
		if auth := os.Getenv("TOKEN_VERIFIER_AUTH"); auth != "" {
			config.Auth = auth
		}
	}
	if !cmd.Flags().Changed("verifier-bearer-token") {
		if token := os.Getenv("TOKEN_VERIFIER_BEARER_TOKEN"); token != "" {
			config.BearerToken = token
		}
	}
	if !cmd.Flags().Changed("verifier-basic-username") {
		if username := os.Getenv("TOKEN_VERIFIER_BASIC_USERNAME"); username != "" {
			config.BasicUsername = username
		}
	}
	if !cmd.Flags().Changed("verifier-basic-password") {
		if password := os.Getenv("TOKEN_VERIFIER_BASIC_PASSWORD"); password != "" {
			config.BasicPassword = password
		}
	}
	if len(config.RequiredScopes) == 0 {
		if scopes := os.Getenv("TOKEN_VERIFIER_REQUIRED_SCOPES"); scopes != "" {
			config.RequiredScopes = parseCommaSeparatedList(scopes)
		}
	}
}

// parseCommaSeparatedList parses a comma-separated string into a slice,
// trimming whitespace from each element and filtering out empty strings.
// Returns nil if the input is empty or contains only whitespace/commas.
func parseCommaSeparatedList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
