package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/analytics-mcp/analytics-mcp/internal/instrumentation"
	"github.com/analytics-mcp/analytics-mcp/internal/verifier"
)

const (
	// DefaultHTTPReadHeaderTimeout is the default read header timeout for the HTTP server.
	DefaultHTTPReadHeaderTimeout = 10 * time.Second

	// DefaultHTTPWriteTimeout is the default write timeout for the HTTP server.
	// Streaming responses need a generous window.
	DefaultHTTPWriteTimeout = 120 * time.Second

	// DefaultHTTPIdleTimeout is the default idle timeout for the HTTP server.
	DefaultHTTPIdleTimeout = 120 * time.Second
)

// HTTPServerConfig holds configuration for the streamable HTTP transport.
type HTTPServerConfig struct {
	// Addr is the address to bind the server to (e.g., ":8080").
	Addr string

	// DisableStreaming disables SSE streaming on the /mcp endpoint,
	// forcing plain JSON responses.
	DisableStreaming bool

	// Verifier authenticates inbound bearer tokens. When nil, the /mcp
	// endpoint is served without authentication.
	Verifier *verifier.Verifier

	// Metrics records HTTP request and token verification metrics.
	// May be nil when instrumentation is disabled.
	Metrics *instrumentation.Metrics

	// Logger is the server logger. Defaults to slog.Default().
	Logger *slog.Logger
}

// HTTPServer serves the MCP server over the streamable HTTP transport,
// along with health endpoints for Kubernetes probes.
type HTTPServer struct {
	mcpServer  *mcpserver.MCPServer
	config     HTTPServerConfig
	health     *HealthChecker
	httpServer *http.Server
}

// NewHTTPServer creates a new HTTP server wrapping the given MCP server.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, health *HealthChecker, config HTTPServerConfig) (*HTTPServer, error) {
	if mcpServer == nil {
		return nil, fmt.Errorf("mcp server is required")
	}
	if config.Addr == "" {
		return nil, fmt.Errorf("listen address is required")
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &HTTPServer{
		mcpServer: mcpServer,
		config:    config,
		health:    health,
	}, nil
}

// Handler builds the HTTP handler tree: the /mcp endpoint wrapped in
// authentication and metrics middleware, plus health endpoints.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	opts := []mcpserver.StreamableHTTPOption{
		mcpserver.WithEndpointPath("/mcp"),
	}
	if s.config.DisableStreaming {
		opts = append(opts, mcpserver.WithDisableStreaming(true))
	}
	streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer, opts...)

	var mcpHandler http.Handler = streamable
	if s.config.Verifier != nil {
		mcpHandler = s.requireBearerToken(mcpHandler)
	}
	mux.Handle("/mcp", s.recordRequest(mcpHandler))

	if s.health != nil {
		s.health.RegisterHealthEndpoints(mux)
	}

	return mux
}

// Start starts the HTTP server in a blocking manner.
// Call this in a goroutine if you need non-blocking operation.
func (s *HTTPServer) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: DefaultHTTPReadHeaderTimeout,
		WriteTimeout:      DefaultHTTPWriteTimeout,
		IdleTimeout:       DefaultHTTPIdleTimeout,
	}

	s.config.Logger.Info("starting streamable HTTP server",
		"addr", s.config.Addr,
		"auth", s.config.Verifier != nil,
	)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		s.config.Logger.Info("shutting down streamable HTTP server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// requireBearerToken rejects requests whose Authorization header does not
// carry a bearer token the verifier accepts. Verification fails closed.
func (s *HTTPServer) requireBearerToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		identity := s.config.Verifier.Verify(r.Context(), token)
		if identity == nil {
			if s.config.Metrics != nil {
				s.config.Metrics.RecordTokenVerification(r.Context(), instrumentation.VerificationDeny)
			}
			w.Header().Set("WWW-Authenticate", `Bearer realm="mcp", error="invalid_token"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if s.config.Metrics != nil {
			s.config.Metrics.RecordTokenVerification(r.Context(), instrumentation.VerificationAllow)
		}
		next.ServeHTTP(w, r)
	})
}

// recordRequest records request counts and durations for the wrapped handler.
func (s *HTTPServer) recordRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.Metrics == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.config.Metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, recorder.status, time.Since(start))
	})
}

// statusRecorder captures the response status code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(status)
}

// Flush passes through to the underlying writer so SSE streaming keeps working.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// extractBearerToken returns the bearer token from the Authorization header,
// or the empty string when the header is missing or not a bearer scheme.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
