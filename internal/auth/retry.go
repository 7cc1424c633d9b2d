package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"google.golang.org/api/googleapi"

	"github.com/analytics-mcp/analytics-mcp/internal/logging"
)

// authErrorPhrases are the message fragments that mark an error as an
// authentication failure even when no HTTP status is attached.
var authErrorPhrases = []string{
	"unauthorized",
	"unauthenticated",
	"invalid authentication",
	"access token",
	"expired",
	"refresh",
}

// IsAuthError reports whether err looks like an authentication or
// authorization failure from a Google API. Both the HTTP status (401/403 on a
// googleapi.Error) and the error message are considered.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == 401 || apiErr.Code == 403) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, phrase := range authErrorPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

// Invalidator drops cached credential state so the next use resolves fresh
// credentials. Satisfied by *Store and by client caches layered on top of it.
type Invalidator interface {
	Invalidate()
}

// WithRetry runs fn and, when it fails with an authentication error,
// invalidates the cached credentials and retries exactly once. Non-auth
// errors propagate unchanged; when the retry also fails, the original
// error is the one returned.
func WithRetry[T any](ctx context.Context, creds Invalidator, logger *slog.Logger, operation string, fn func(context.Context) (T, error)) (T, error) {
	result, err := fn(ctx)
	if err == nil || !IsAuthError(err) {
		return result, err
	}

	if logger != nil {
		logger.Info("Retrying after authentication error",
			logging.Operation(operation),
			logging.Err(err))
	}
	creds.Invalidate()

	result, retryErr := fn(ctx)
	if retryErr != nil {
		if logger != nil {
			logger.Warn("Retry failed",
				logging.Operation(operation),
				logging.Err(retryErr))
		}
		return result, err
	}
	return result, nil
}
