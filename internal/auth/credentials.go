package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/analytics-mcp/analytics-mcp/internal/config"
	"github.com/analytics-mcp/analytics-mcp/internal/logging"
)

// Scope is the only Google API scope this server ever requests.
const Scope = "https://www.googleapis.com/auth/analytics.readonly"

// RefreshLookahead is how long before the recorded expiry a token is treated
// as already expired and proactively refreshed.
const RefreshLookahead = 5 * time.Minute

// ErrCredentialsUnavailable indicates that neither the config file nor
// Application Default Credentials yielded usable credentials.
var ErrCredentialsUnavailable = errors.New("no usable Google Analytics credentials available")

// Store resolves Google API credentials for outgoing requests. It prefers the
// OAuth2 token material in the config file, refreshing it when expired or
// about to expire and persisting the refreshed access token back. When no
// config file is available it falls back to Application Default Credentials.
type Store struct {
	source *config.Source // nil when no config path is configured
	logger *slog.Logger

	// endpoint is the OAuth2 token endpoint, overridable in tests.
	endpoint oauth2.Endpoint

	mu        sync.Mutex
	forceNext bool
	cached    *oauth2.Token

	// OnRefresh, when set, is called after every refresh attempt with
	// "success" or "error". Used for metrics.
	OnRefresh func(result string)
}

// NewStore creates a credential store. source may be nil, in which case only
// Application Default Credentials are used.
func NewStore(source *config.Source, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{source: source, logger: logger, endpoint: google.Endpoint}
}

// Invalidate drops the cached record and marks the next Token call as a
// forced refresh. Called when a Google API request fails with an auth error.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.forceNext = true
	s.cached = nil
	s.mu.Unlock()
}

// TokenSource returns an oauth2.TokenSource backed by this store. Every token
// pull goes through the full resolution path, so an Invalidate between API
// calls takes effect on the next call.
func (s *Store) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &storeTokenSource{ctx: ctx, store: s}
}

type storeTokenSource struct {
	ctx   context.Context
	store *Store
}

func (ts *storeTokenSource) Token() (*oauth2.Token, error) {
	return ts.store.Token(ts.ctx)
}

// Token resolves a valid access token. Resolution order:
//
//  1. The cached record from a previous call, when still fresh.
//  2. Config file OAuth2 tokens, refreshed via the refresh token when the
//     access token is missing, has no recorded expiry, is expired, or is
//     within RefreshLookahead of expiry.
//  3. Application Default Credentials.
//
// Errors from the config path other than "file not present" are logged and do
// not prevent the ADC fallback; if both paths fail the returned error wraps
// ErrCredentialsUnavailable.
func (s *Store) Token(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	force := s.forceNext
	s.forceNext = false
	if !force && tokenFresh(s.cached) {
		tok := s.cached
		s.mu.Unlock()
		return tok, nil
	}
	s.cached = nil
	s.mu.Unlock()

	var configErr error
	if s.source != nil {
		tok, err := s.configToken(ctx, force)
		if err == nil && tok != nil {
			s.mu.Lock()
			s.cached = tok
			s.mu.Unlock()
			return tok, nil
		}
		configErr = err
		if err != nil {
			s.logger.Debug("Config credentials unavailable, trying Application Default Credentials",
				logging.Operation("resolve_credentials"),
				logging.Err(err))
		}
	}

	creds, err := google.FindDefaultCredentials(ctx, Scope)
	if err != nil {
		if configErr != nil {
			return nil, fmt.Errorf("%w: config credentials failed (%v) and ADC failed (%v)",
				ErrCredentialsUnavailable, configErr, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrCredentialsUnavailable, err)
	}

	tok, err := creds.TokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to obtain token from ADC: %v", ErrCredentialsUnavailable, err)
	}
	return tok, nil
}

// configToken loads the config document and returns a usable token from it,
// refreshing when needed. Returns (nil, nil) when the document carries no
// OAuth material, which sends the caller to the ADC fallback.
func (s *Store) configToken(ctx context.Context, force bool) (*oauth2.Token, error) {
	doc, found, err := s.source.Load()
	if err != nil {
		return nil, err
	}
	if !found || !doc.HasOAuthCredentials() {
		return nil, nil
	}

	token := &oauth2.Token{
		AccessToken:  doc.Tokens.AccessToken,
		RefreshToken: doc.Tokens.RefreshToken,
		TokenType:    "Bearer",
	}
	if doc.Tokens.ExpiresAt > 0 {
		token.Expiry = time.Unix(doc.Tokens.ExpiresAt, 0)
	}

	// A record without a recorded expiry cannot be trusted, so it refreshes
	// like an expired one.
	if !force && tokenFresh(token) {
		return token, nil
	}

	fresh, err := s.refresh(ctx, doc, token)
	if err != nil {
		// Hand the stale record back rather than failing over to ADC; if
		// the backend rejects it, the auth-retry wrapper invalidates and
		// comes back through here.
		if token.AccessToken != "" {
			return token, nil
		}
		return nil, err
	}
	return fresh, nil
}

// tokenFresh reports whether the record can be used as-is: it carries an
// access token and a recorded expiry at least RefreshLookahead away.
func tokenFresh(token *oauth2.Token) bool {
	return token != nil &&
		token.AccessToken != "" &&
		!token.Expiry.IsZero() &&
		time.Until(token.Expiry) >= RefreshLookahead
}

// refresh exchanges the refresh token for a new access token and persists the
// result back to the config file. Persistence failures are logged but do not
// fail the refresh; the in-memory token is still valid for this process.
func (s *Store) refresh(ctx context.Context, doc *config.Document, token *oauth2.Token) (*oauth2.Token, error) {
	conf := &oauth2.Config{
		ClientID:     doc.OAuth.ClientID,
		ClientSecret: doc.OAuth.ClientSecret,
		Endpoint:     s.endpoint,
		Scopes:       []string{Scope},
	}

	// Clearing the access token forces the token source to hit the refresh
	// endpoint even when the recorded expiry is still in the future.
	stale := *token
	stale.AccessToken = ""

	fresh, err := conf.TokenSource(ctx, &stale).Token()
	if err != nil {
		s.observeRefresh("error")
		s.logger.Warn("OAuth token refresh failed",
			logging.Operation("token_refresh"),
			logging.Err(err))
		return nil, fmt.Errorf("failed to refresh access token: %w", err)
	}
	s.observeRefresh("success")

	var expiresAt int64
	if !fresh.Expiry.IsZero() {
		expiresAt = fresh.Expiry.Unix()
	}
	if err := s.source.SaveTokens(fresh.AccessToken, expiresAt); err != nil {
		s.logger.Warn("Failed to persist refreshed token to config file",
			logging.Operation("token_refresh"),
			logging.Err(err))
	} else {
		s.logger.Info("Refreshed OAuth access token",
			logging.Operation("token_refresh"),
			slog.String("token", logging.SanitizeToken(fresh.AccessToken)))
	}

	// The Google token endpoint does not always return the refresh token;
	// carry the original forward.
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = token.RefreshToken
	}
	return fresh, nil
}

// Refresh forces a token refresh regardless of the recorded expiry. Used by
// the refresh-token command.
func (s *Store) Refresh(ctx context.Context) (*oauth2.Token, error) {
	if s.source == nil {
		return nil, fmt.Errorf("%w: no config file configured", ErrCredentialsUnavailable)
	}
	doc, found, err := s.source.Load()
	if err != nil {
		return nil, err
	}
	if !found || !doc.HasOAuthCredentials() {
		return nil, fmt.Errorf("%w: config file is missing OAuth credentials", ErrCredentialsUnavailable)
	}

	token := &oauth2.Token{
		AccessToken:  doc.Tokens.AccessToken,
		RefreshToken: doc.Tokens.RefreshToken,
		TokenType:    "Bearer",
	}
	return s.refresh(ctx, doc, token)
}

func (s *Store) observeRefresh(result string) {
	if s.OnRefresh != nil {
		s.OnRefresh(result)
	}
}
