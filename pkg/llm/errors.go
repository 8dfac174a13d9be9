package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Failure classes a provider reports. Providers wrap the underlying error
// so callers can still inspect it.
var (
	ErrUnauthorized = errors.New("llm: authentication failed")
	ErrRateLimited  = errors.New("llm: rate limited")
	ErrNetwork      = errors.New("llm: network failure")
	ErrEmptyReply   = errors.New("llm: empty reply")
)

// StatusError classifies a non-200 reply from an HTTP provider.
func StatusError(provider string, status int, body []byte) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s status %d: %s", ErrUnauthorized, provider, status, body)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s status %d: %s", ErrRateLimited, provider, status, body)
	case status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %s status %d: %s", ErrNetwork, provider, status, body)
	}
	return fmt.Errorf("%s error: status %d, body: %s", provider, status, body)
}

// TransportError wraps a failed round trip. Context errors pass through
// untouched.
func TransportError(provider string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %s request failed: %v", ErrNetwork, provider, err)
}
