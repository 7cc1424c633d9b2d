package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/analytics-mcp/analytics-mcp/internal/config"
)

// tokenEndpoint serves the OAuth2 refresh flow, handing out sequentially
// numbered access tokens.
func tokenEndpoint(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	issued := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("grant_type") != "refresh_token" {
			http.Error(w, "unsupported grant type", http.StatusBadRequest)
			return
		}
		issued++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token": "fresh-%d", "token_type": "Bearer", "expires_in": 3600}`, issued)
	}))
	t.Cleanup(srv.Close)
	return srv, &issued
}

func storeWithConfig(t *testing.T, expiresAt int64) (*Store, *config.Source) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ga-config.json")
	doc := fmt.Sprintf(`{
		"googleOAuthCredentials": {"clientId": "id", "clientSecret": "secret"},
		"googleAnalyticsTokens": {"accessToken": "stored-token", "refreshToken": "rt", "expiresAt": %d}
	}`, expiresAt)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0600))

	source := config.NewSource(path)
	return NewStore(source, nil), source
}

func TestTokenUsesStoredTokenWhenFresh(t *testing.T) {
	store, _ := storeWithConfig(t, time.Now().Add(time.Hour).Unix())

	tok, err := store.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stored-token", tok.AccessToken)
}

func TestTokenRefreshesWhenExpired(t *testing.T) {
	srv, issued := tokenEndpoint(t)
	store, source := storeWithConfig(t, time.Now().Add(-time.Hour).Unix())
	store.endpoint = oauth2.Endpoint{TokenURL: srv.URL}

	tok, err := store.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh-1", tok.AccessToken)
	assert.Equal(t, "rt", tok.RefreshToken)
	assert.Equal(t, 1, *issued)

	// The refreshed token must be persisted back to the config file.
	doc, _, err := source.Load()
	require.NoError(t, err)
	assert.Equal(t, "fresh-1", doc.Tokens.AccessToken)
	assert.Greater(t, doc.Tokens.ExpiresAt, time.Now().Unix())
}

func TestTokenRefreshesWithinLookahead(t *testing.T) {
	srv, issued := tokenEndpoint(t)
	store, _ := storeWithConfig(t, time.Now().Add(2*time.Minute).Unix())
	store.endpoint = oauth2.Endpoint{TokenURL: srv.URL}

	tok, err := store.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh-1", tok.AccessToken)
	assert.Equal(t, 1, *issued)
}

func TestTokenInvalidateForcesRefresh(t *testing.T) {
	srv, issued := tokenEndpoint(t)
	store, _ := storeWithConfig(t, time.Now().Add(time.Hour).Unix())
	store.endpoint = oauth2.Endpoint{TokenURL: srv.URL}

	tok, err := store.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stored-token", tok.AccessToken)

	store.Invalidate()

	tok, err = store.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh-1", tok.AccessToken)
	assert.Equal(t, 1, *issued)
}

func TestTokenRefreshObserver(t *testing.T) {
	srv, _ := tokenEndpoint(t)
	store, _ := storeWithConfig(t, time.Now().Add(-time.Hour).Unix())
	store.endpoint = oauth2.Endpoint{TokenURL: srv.URL}

	var results []string
	store.OnRefresh = func(result string) { results = append(results, result) }

	_, err := store.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"success"}, results)
}

func TestTokenRefreshesWhenExpiryUnset(t *testing.T) {
	srv, issued := tokenEndpoint(t)
	store, _ := storeWithConfig(t, 0)
	store.endpoint = oauth2.Endpoint{TokenURL: srv.URL}

	tok, err := store.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh-1", tok.AccessToken)
	assert.Equal(t, 1, *issued, "a record with no recorded expiry must be refreshed")
}

func TestTokenCachedRecordSkipsFileRead(t *testing.T) {
	store, source := storeWithConfig(t, time.Now().Add(time.Hour).Unix())

	tok, err := store.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stored-token", tok.AccessToken)

	// With the record cached, a second call must not touch the file.
	require.NoError(t, os.Remove(source.Path()))

	again, err := store.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stored-token", again.AccessToken)
}

func TestTokenFailedRefreshReturnsStaleRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid_grant"}`, http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	store, _ := storeWithConfig(t, time.Now().Add(-time.Hour).Unix())
	store.endpoint = oauth2.Endpoint{TokenURL: srv.URL}
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", filepath.Join(t.TempDir(), "missing.json"))

	var results []string
	store.OnRefresh = func(result string) { results = append(results, result) }

	// The stale record comes back so the auth-retry wrapper can decide; a
	// refresh failure is not a credential outage.
	tok, err := store.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stored-token", tok.AccessToken)
	assert.Equal(t, []string{"error"}, results)

	// The stale record must not be served from cache: the next call tries
	// the refresh again.
	_, err = store.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"error", "error"}, results)
}

func TestTokenNoCredentialsAnywhere(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", filepath.Join(t.TempDir(), "missing.json"))

	store := NewStore(nil, nil)
	_, err := store.Token(context.Background())
	assert.ErrorIs(t, err, ErrCredentialsUnavailable)
}

func TestTokenMissingConfigFallsThrough(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", filepath.Join(t.TempDir(), "missing.json"))

	source := config.NewSource(filepath.Join(t.TempDir(), "missing-config.json"))
	store := NewStore(source, nil)

	_, err := store.Token(context.Background())
	assert.ErrorIs(t, err, ErrCredentialsUnavailable)
}

func TestRefreshForcesEvenWhenFresh(t *testing.T) {
	srv, issued := tokenEndpoint(t)
	store, source := storeWithConfig(t, time.Now().Add(time.Hour).Unix())
	store.endpoint = oauth2.Endpoint{TokenURL: srv.URL}

	tok, err := store.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh-1", tok.AccessToken)
	assert.Equal(t, 1, *issued)

	doc, _, err := source.Load()
	require.NoError(t, err)
	assert.Equal(t, "fresh-1", doc.Tokens.AccessToken)
}
