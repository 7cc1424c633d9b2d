package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// EnvConfigPath is the environment variable consulted for the config file
// path when no explicit path is given.
const EnvConfigPath = "GOOGLE_ANALYTICS_CONFIG_PATH"

// JSON keys recognized in the config document. Any other keys are preserved
// untouched across a SaveTokens call.
const (
	keyOAuthCredentials = "googleOAuthCredentials"
	keyAnalyticsTokens  = "googleAnalyticsTokens"
	keyAccessToken      = "accessToken"
	keyRefreshToken     = "refreshToken"
	keyExpiresAt        = "expiresAt"
	keyClientID         = "clientId"
	keyClientSecret     = "clientSecret"
)

// OAuthClient holds the OAuth client credentials from the config document.
type OAuthClient struct {
	ClientID     string
	ClientSecret string
}

// Tokens holds the Google Analytics token material from the config document.
// ExpiresAt is a unix timestamp in seconds; zero means no expiry recorded.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64
}

// Document is a parsed config document. The raw representation is retained so
// that writing back the refreshed token touches only the two mutated fields
// and preserves everything else.
type Document struct {
	OAuth  *OAuthClient
	Tokens *Tokens
}

// HasOAuthCredentials reports whether the document carries all four fields
// required for the OAuth2 refresh flow.
func (d *Document) HasOAuthCredentials() bool {
	return d != nil &&
		d.OAuth != nil && d.OAuth.ClientID != "" && d.OAuth.ClientSecret != "" &&
		d.Tokens != nil && d.Tokens.AccessToken != "" && d.Tokens.RefreshToken != ""
}

// Source is a JSON config file on disk. All reads and writes go through the
// same Source so that concurrent token refreshes within the process are
// serialized; cross-process safety relies on the atomic rename in SaveTokens.
type Source struct {
	path string
	mu   sync.Mutex
}

// NewSource creates a Source for the given path.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// Path returns the file path backing this source.
func (s *Source) Path() string {
	return s.path
}

// ResolvePath returns the explicit path if non-empty, otherwise the value of
// the GOOGLE_ANALYTICS_CONFIG_PATH environment variable. An empty result
// means no config source is configured and Application Default Credentials
// should be used.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return os.Getenv(EnvConfigPath)
}

// Load reads and parses the config document. A missing, unreadable, or
// syntactically invalid file is reported as found=false with the underlying
// error for logging; it is not a failure of the caller's operation, which
// falls back to Application Default Credentials.
func (s *Source) Load() (*Document, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.readRaw()
	if err != nil {
		return nil, false, err
	}

	doc := &Document{}

	if msg, ok := raw[keyOAuthCredentials]; ok {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(msg, &fields); err == nil {
			doc.OAuth = &OAuthClient{
				ClientID:     stringField(fields, keyClientID),
				ClientSecret: stringField(fields, keyClientSecret),
			}
		}
	}

	if msg, ok := raw[keyAnalyticsTokens]; ok {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(msg, &fields); err == nil {
			doc.Tokens = &Tokens{
				AccessToken:  stringField(fields, keyAccessToken),
				RefreshToken: stringField(fields, keyRefreshToken),
				ExpiresAt:    intField(fields, keyExpiresAt),
			}
		}
	}

	return doc, true, nil
}

// SaveTokens rewrites the accessToken and expiresAt fields under
// googleAnalyticsTokens, leaving every other field of the document intact.
// The write is atomic: the new document is written to a temp file in the same
// directory and renamed over the original, so concurrent readers never see a
// partial document.
func (s *Source) SaveTokens(accessToken string, expiresAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.readRaw()
	if err != nil {
		return fmt.Errorf("failed to re-read config for token update: %w", err)
	}

	var tokens map[string]json.RawMessage
	if msg, ok := raw[keyAnalyticsTokens]; ok {
		if err := json.Unmarshal(msg, &tokens); err != nil {
			return fmt.Errorf("malformed %s section: %w", keyAnalyticsTokens, err)
		}
	} else {
		tokens = make(map[string]json.RawMessage)
	}

	tokenJSON, err := json.Marshal(accessToken)
	if err != nil {
		return fmt.Errorf("failed to encode access token: %w", err)
	}
	tokens[keyAccessToken] = tokenJSON
	if expiresAt > 0 {
		expiryJSON, err := json.Marshal(expiresAt)
		if err != nil {
			return fmt.Errorf("failed to encode expiry: %w", err)
		}
		tokens[keyExpiresAt] = expiryJSON
	}

	tokensJSON, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("failed to encode %s section: %w", keyAnalyticsTokens, err)
	}
	raw[keyAnalyticsTokens] = tokensJSON

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config document: %w", err)
	}

	return s.writeAtomic(data)
}

// readRaw reads the config file into a key-preserving raw map.
func (s *Source) readRaw() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", s.path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config file %s is not valid JSON: %w", s.path, err)
	}
	return raw, nil
}

// writeAtomic writes data to a temp file next to the config file and renames
// it into place.
func (s *Source) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp config file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp config file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp config file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}

func stringField(fields map[string]json.RawMessage, key string) string {
	msg, ok := fields[key]
	if !ok {
		return ""
	}
	var v string
	if err := json.Unmarshal(msg, &v); err != nil {
		return ""
	}
	return v
}

func intField(fields map[string]json.RawMessage, key string) int64 {
	msg, ok := fields[key]
	if !ok {
		return 0
	}
	var v int64
	if err := json.Unmarshal(msg, &v); err != nil {
		// Some writers store expiresAt as a float; tolerate that.
		var f float64
		if err := json.Unmarshal(msg, &f); err != nil {
			return 0
		}
		return int64(f)
	}
	return v
}
