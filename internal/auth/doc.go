// Package auth resolves Google API credentials for the server.
//
// The Store prefers OAuth2 token material from the config file, refreshing
// the access token when it is missing, expired, or within five minutes of
// expiry, and persisting the refreshed token back to the file. When no config
// file is available it falls back to Application Default Credentials.
//
// WithRetry wraps Google API calls so that a single authentication failure
// invalidates the cached token and retries the call once with fresh
// credentials.
package auth
