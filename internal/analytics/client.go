package analytics

import (
	"context"
	"fmt"
	"sync"

	analyticsadmin "google.golang.org/api/analyticsadmin/v1beta"
	analyticsalpha "google.golang.org/api/analyticsdata/v1alpha"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/option"

	"github.com/analytics-mcp/analytics-mcp/internal/auth"
)

// Clients lazily constructs and caches the Google Analytics API services.
// There is one cache slot per backend surface: the Data API (reports), the
// v1alpha Data API (funnels), and the Admin API (accounts and properties).
// All three pull tokens through the same credential store, so invalidating
// the store affects every cached service on its next call.
type Clients struct {
	store     *auth.Store
	userAgent string

	mu    sync.Mutex
	data  *analyticsdata.Service
	alpha *analyticsalpha.Service
	admin *analyticsadmin.Service
}

// NewClients creates a client cache backed by the given credential store.
func NewClients(store *auth.Store, version string) *Clients {
	return &Clients{
		store:     store,
		userAgent: fmt.Sprintf("analytics-mcp/%s", version),
	}
}

// Data returns the cached Data API service, constructing it on first use.
func (c *Clients) Data(ctx context.Context) (*analyticsdata.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.data != nil {
		return c.data, nil
	}
	svc, err := analyticsdata.NewService(ctx, c.options(ctx)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Analytics Data API client: %w", err)
	}
	c.data = svc
	return svc, nil
}

// Alpha returns the cached v1alpha Data API service used for funnel reports.
func (c *Clients) Alpha(ctx context.Context) (*analyticsalpha.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.alpha != nil {
		return c.alpha, nil
	}
	svc, err := analyticsalpha.NewService(ctx, c.options(ctx)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Analytics Data API v1alpha client: %w", err)
	}
	c.alpha = svc
	return svc, nil
}

// Admin returns the cached Admin API service.
func (c *Clients) Admin(ctx context.Context) (*analyticsadmin.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.admin != nil {
		return c.admin, nil
	}
	svc, err := analyticsadmin.NewService(ctx, c.options(ctx)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Analytics Admin API client: %w", err)
	}
	c.admin = svc
	return svc, nil
}

// Invalidate drops the cached services and the store's cached token. The next
// call on any surface rebuilds its client with fresh credentials. Idempotent.
func (c *Clients) Invalidate() {
	c.mu.Lock()
	c.data = nil
	c.alpha = nil
	c.admin = nil
	c.mu.Unlock()
	c.store.Invalidate()
}

// Store returns the credential store backing these clients.
func (c *Clients) Store() *auth.Store {
	return c.store
}

func (c *Clients) options(ctx context.Context) []option.ClientOption {
	return []option.ClientOption{
		option.WithTokenSource(c.store.TokenSource(ctx)),
		option.WithUserAgent(c.userAgent),
	}
}
