package httputil

import (
	"net/http"
	"time"

	errs "github.com/kobex777/anymaps/pkg/errors"
)

// DefaultTimeout bounds a single request to the generation service.
const DefaultTimeout = 60 * time.Second

// NewHTTPClient creates an HTTP client with the given timeout, or
// [DefaultTimeout] when timeout is not positive.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// CheckStatus converts a non-2xx status code into a coded error.
// 5xx and 429 responses are wrapped in [RetryableError].
func CheckStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errs.New(errs.ErrCodeNotFound, "status %d", code)
	case code == http.StatusTooManyRequests, code >= 500:
		return &RetryableError{Err: errs.New(errs.ErrCodeUnavailable, "status %d", code)}
	default:
		return errs.New(errs.ErrCodeNetwork, "status %d", code)
	}
}

// Transport wraps a transport failure as retryable.
func Transport(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: errs.Wrap(errs.ErrCodeNetwork, err, "request failed")}
}
