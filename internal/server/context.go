package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/analytics-mcp/analytics-mcp/internal/analytics"
	"github.com/analytics-mcp/analytics-mcp/internal/auth"
	"github.com/analytics-mcp/analytics-mcp/internal/config"
	"github.com/analytics-mcp/analytics-mcp/internal/instrumentation"
)

// ServerContext holds the shared dependencies for the MCP server.
type ServerContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	source   *config.Source
	store    *auth.Store
	clients  *analytics.Clients
	logger   *slog.Logger
	metrics  *instrumentation.Metrics
	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context.
//
// The configuration source may be nil, in which case the credential store
// falls back to Application Default Credentials. Google API clients are
// constructed lazily on first use, so a missing or invalid credential file
// does not prevent the server from starting.
func NewServerContext(ctx context.Context, source *config.Source, version string, logger *slog.Logger) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	if logger == nil {
		logger = slog.Default()
	}

	store := auth.NewStore(source, logger)
	clients := analytics.NewClients(store, version)

	return &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		source:  source,
		store:   store,
		clients: clients,
		logger:  logger,
	}
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// ConfigSource returns the credential configuration source. May be nil when
// the server runs on Application Default Credentials only.
func (sc *ServerContext) ConfigSource() *config.Source {
	return sc.source
}

// CredentialStore returns the Google credential store.
func (sc *ServerContext) CredentialStore() *auth.Store {
	return sc.store
}

// Clients returns the lazily initialized Google Analytics API clients.
func (sc *ServerContext) Clients() *analytics.Clients {
	return sc.clients
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// SetMetrics attaches a metrics recorder to the server context and hooks
// the credential store's refresh observer into it.
func (sc *ServerContext) SetMetrics(metrics *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = metrics
	if metrics != nil {
		sc.store.OnRefresh = func(result string) {
			metrics.RecordOAuthTokenRefresh(sc.ctx, result)
		}
	}
}

// Metrics returns the metrics recorder, or nil when instrumentation is
// not configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// IsShutdown returns whether the server has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
