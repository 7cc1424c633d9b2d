package server

import (
	"context"
	"testing"

	"github.com/analytics-mcp/analytics-mcp/internal/config"
)

func TestNewServerContext_Defaults(t *testing.T) {
	sc := NewServerContext(context.Background(), nil, "test", nil)
	t.Cleanup(func() { _ = sc.Shutdown() })

	if sc.Logger() == nil {
		t.Error("expected default logger")
	}
	if sc.CredentialStore() == nil {
		t.Error("expected credential store")
	}
	if sc.Clients() == nil {
		t.Error("expected clients")
	}
	if sc.ConfigSource() != nil {
		t.Error("expected nil config source")
	}
	if sc.Metrics() != nil {
		t.Error("expected nil metrics before SetMetrics")
	}
}

func TestServerContext_ConfigSource(t *testing.T) {
	source := config.NewSource("/tmp/does-not-exist.json")
	sc := NewServerContext(context.Background(), source, "test", nil)
	t.Cleanup(func() { _ = sc.Shutdown() })

	if sc.ConfigSource() != source {
		t.Error("expected the configured source back")
	}
}

func TestServerContext_Shutdown(t *testing.T) {
	sc := NewServerContext(context.Background(), nil, "test", nil)

	if sc.IsShutdown() {
		t.Error("context should not start shut down")
	}

	if err := sc.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error: %v", err)
	}
	if !sc.IsShutdown() {
		t.Error("expected IsShutdown() after Shutdown()")
	}

	select {
	case <-sc.Context().Done():
	default:
		t.Error("expected context to be canceled after Shutdown()")
	}

	// Second shutdown is a no-op.
	if err := sc.Shutdown(); err != nil {
		t.Fatalf("second Shutdown() error: %v", err)
	}
}
