package verifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/analytics-mcp/analytics-mcp/internal/logging"
)

// DefaultIntrospectionURL is the Google tokeninfo endpoint, used when no
// introspection URL is configured.
const DefaultIntrospectionURL = "https://www.googleapis.com/oauth2/v1/tokeninfo"

// requestTimeout bounds the introspection call. Exceeding it is a transport
// error, which denies the token.
const requestTimeout = 5 * time.Second

// Outbound auth modes for the introspection request.
const (
	AuthNone   = "none"
	AuthBearer = "bearer"
	AuthBasic  = "basic"
)

// Content types supported for non-GET introspection requests.
const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// Config describes how to reach the introspection endpoint.
type Config struct {
	// URL of the introspection endpoint. Empty means DefaultIntrospectionURL.
	URL string
	// Method is the HTTP method; empty means GET. GET carries the token as a
	// query parameter, other methods carry it in the body.
	Method string
	// ContentType for body-carrying methods; empty means ContentTypeJSON.
	ContentType string
	// Auth selects outbound authentication to the endpoint itself.
	Auth          string
	BearerToken   string
	BasicUsername string
	BasicPassword string
	// RequiredScopes must all be present in the token's granted scopes.
	RequiredScopes []string
}

// Identity is a successfully verified caller identity.
type Identity struct {
	Token     string
	ClientID  string
	Scopes    []string
	ExpiresAt time.Time
}

// Verifier validates inbound bearer tokens against a remote introspection
// endpoint. Any ambiguous outcome (transport error, timeout, non-success
// status, unparseable body, missing scopes) denies the token; verification
// never fails open.
type Verifier struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

// New creates a Verifier. A nil logger falls back to slog.Default.
func New(config Config, logger *slog.Logger) *Verifier {
	if config.URL == "" {
		config.URL = DefaultIntrospectionURL
	}
	if config.Method == "" {
		config.Method = http.MethodGet
	}
	if config.ContentType == "" {
		config.ContentType = ContentTypeJSON
	}
	if config.Auth == "" {
		config.Auth = AuthNone
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{
		config: config,
		client: &http.Client{Timeout: requestTimeout},
		logger: logger,
	}
}

// Verify introspects the bearer token and returns the caller identity, or nil
// if the token could not be positively verified.
func (v *Verifier) Verify(ctx context.Context, token string) *Identity {
	if token == "" {
		return nil
	}

	req, err := v.buildRequest(ctx, token)
	if err != nil {
		v.logger.Debug("Failed to build introspection request",
			logging.Operation("verify_token"),
			logging.Err(err))
		return nil
	}

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Debug("Token introspection transport error",
			logging.Operation("verify_token"),
			logging.Err(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		v.logger.Debug("Token introspection rejected token",
			logging.Operation("verify_token"),
			slog.Int("status_code", resp.StatusCode))
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil
	}

	var info map[string]interface{}
	if err := json.Unmarshal(body, &info); err != nil {
		v.logger.Debug("Token introspection returned unparseable body",
			logging.Operation("verify_token"),
			logging.Err(err))
		return nil
	}

	return v.identityFromResponse(token, info)
}

func (v *Verifier) buildRequest(ctx context.Context, token string) (*http.Request, error) {
	var req *http.Request
	var err error

	if v.config.Method == http.MethodGet {
		endpoint, parseErr := url.Parse(v.config.URL)
		if parseErr != nil {
			return nil, parseErr
		}
		query := endpoint.Query()
		query.Set("access_token", token)
		endpoint.RawQuery = query.Encode()
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	} else {
		var body io.Reader
		var contentType string
		switch v.config.ContentType {
		case ContentTypeForm:
			form := url.Values{"token": {token}}
			body = strings.NewReader(form.Encode())
			contentType = ContentTypeForm
		default:
			payload, marshalErr := json.Marshal(map[string]string{"token": token})
			if marshalErr != nil {
				return nil, marshalErr
			}
			body = strings.NewReader(string(payload))
			contentType = ContentTypeJSON
		}
		req, err = http.NewRequestWithContext(ctx, v.config.Method, v.config.URL, body)
		if err == nil {
			req.Header.Set("Content-Type", contentType)
		}
	}
	if err != nil {
		return nil, err
	}

	switch v.config.Auth {
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+v.config.BearerToken)
	case AuthBasic:
		req.SetBasicAuth(v.config.BasicUsername, v.config.BasicPassword)
	}
	return req, nil
}

func (v *Verifier) identityFromResponse(token string, info map[string]interface{}) *Identity {
	if errVal, ok := info["error"]; ok && errVal != nil {
		return nil
	}
	// RFC 7662 introspection responses carry an explicit active flag.
	if active, ok := info["active"].(bool); ok && !active {
		return nil
	}

	scopes := parseScopes(info["scope"])
	for _, required := range v.config.RequiredScopes {
		if !containsScope(scopes, required) {
			v.logger.Debug("Token is missing a required scope",
				logging.Operation("verify_token"),
				slog.String("scope", required))
			return nil
		}
	}

	return &Identity{
		Token:     token,
		ClientID:  clientIDFromResponse(info),
		Scopes:    scopes,
		ExpiresAt: expiryFromResponse(info),
	}
}

// parseScopes splits a space-separated scope string into a list.
func parseScopes(raw interface{}) []string {
	s, ok := raw.(string)
	if !ok || s == "" {
		return nil
	}
	return strings.Fields(s)
}

func containsScope(scopes []string, want string) bool {
	for _, s := range scopes {
		if s == want {
			return true
		}
	}
	return false
}

// clientIDFromResponse picks the owning client identifier from the fields
// used by Google tokeninfo (issued_to, audience) and RFC 7662 (client_id).
func clientIDFromResponse(info map[string]interface{}) string {
	for _, key := range []string{"client_id", "issued_to", "audience", "aud", "azp"} {
		if s, ok := info[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// expiryFromResponse derives the token expiry from either an absolute exp
// timestamp (RFC 7662) or a relative expires_in count (Google tokeninfo).
func expiryFromResponse(info map[string]interface{}) time.Time {
	if exp := numberField(info, "exp"); exp > 0 {
		return time.Unix(exp, 0)
	}
	if expiresIn := numberField(info, "expires_in"); expiresIn > 0 {
		return time.Now().Add(time.Duration(expiresIn) * time.Second)
	}
	return time.Time{}
}

func numberField(info map[string]interface{}, key string) int64 {
	switch v := info[key].(type) {
	case float64:
		return int64(v)
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// String describes the verifier target for startup logging.
func (v *Verifier) String() string {
	return fmt.Sprintf("%s %s (auth=%s)", v.config.Method, v.config.URL, v.config.Auth)
}
