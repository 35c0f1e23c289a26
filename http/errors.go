package http

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyURL is returned by Do when no URL has been set.
	ErrEmptyURL = errors.New("request URL is empty")

	// ErrTooManyRedirects is returned by DoFollow when the limit set with
	// WithMaxRedirects is exceeded. Without that option redirects are unbounded.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrTimeout matches every *TimeoutError through errors.Is.
	ErrTimeout = errors.New("timeout")
)

// Timeout phases reported by TimeoutError.
const (
	PhaseConnect = "connect"
	PhaseRead    = "read"
)

// TimeoutError reports that the connect or read timeout of a request elapsed.
// It satisfies net.Error so callers that already special-case timeouts keep working.
type TimeoutError struct {
	// Phase is PhaseConnect or PhaseRead
	Phase string
	Err   error
}

func (e *TimeoutError) Error() string {
	if e.Err == nil {
		return e.Phase + " timeout"
	}
	return fmt.Sprintf("%s timeout: %v", e.Phase, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrTimeout) true for any TimeoutError.
func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// Timeout always reports true.
func (e *TimeoutError) Timeout() bool { return true }

// Temporary is part of net.Error.
func (e *TimeoutError) Temporary() bool { return true }

// UnsupportedCharsetError is returned by Response.TextWithCharset when the
// named charset is not known.
type UnsupportedCharsetError struct {
	Name string
}

func (e *UnsupportedCharsetError) Error() string {
	return fmt.Sprintf("unsupported charset: %q", e.Name)
}
