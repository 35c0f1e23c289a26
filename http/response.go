package http

import (
	"bytes"
	"net/http"
	"time"
)

// Response is an immutable snapshot of a completed exchange. Every accessor
// returns a copy, so callers may modify what they get back.
type Response struct {
	statusCode    int
	statusMessage string
	headers       http.Header
	body          []byte
	elapsed       time.Duration
}

// NewResponse builds a Response from already buffered parts. Requester uses
// it internally; it is exported for transports and tests that fabricate responses.
func NewResponse(statusCode int, statusMessage string, headers map[string][]string, body []byte) *Response {
	return &Response{
		statusCode:    statusCode,
		statusMessage: statusMessage,
		headers:       http.Header(headers).Clone(),
		body:          bytes.Clone(body),
	}
}

// StatusCode returns the HTTP status code (e.g. 404).
func (r *Response) StatusCode() int {
	return r.statusCode
}

// StatusMessage returns the reason phrase of the status line (e.g. "Not Found").
func (r *Response) StatusMessage() string {
	return r.statusMessage
}

// Header returns the value stored under key. The lookup is case-sensitive and
// matches keys as the transport reported them; NetTransport reports canonical
// MIME keys such as "Content-Type". When a header repeats, the last value wins.
func (r *Response) Header(key string) (string, bool) {
	values := r.headers[key]
	if len(values) == 0 {
		return "", false
	}
	return values[len(values)-1], true
}

// Headers returns every header with all of its values.
func (r *Response) Headers() map[string][]string {
	return r.headers.Clone()
}

// Body returns the raw response body.
func (r *Response) Body() []byte {
	return bytes.Clone(r.body)
}

// Elapsed is the wall time from opening the exchange to the end of the body.
func (r *Response) Elapsed() time.Duration {
	return r.elapsed
}

// Charset returns the charset declared in the Content-Type header, upper-cased.
func (r *Response) Charset() (string, bool) {
	contentType, ok := r.Header("Content-Type")
	if !ok {
		return "", false
	}
	return ParseCharset(contentType)
}

// Text decodes the body using the declared charset, or UTF-8 when none is
// declared. If the declared charset is unknown or decoding fails, the bytes
// are converted to a Go string as they are. Text never fails.
func (r *Response) Text() string {
	var (
		text string
		err  error
	)
	if charset, ok := r.Charset(); ok {
		text, err = decode(r.body, charset)
	} else {
		text, err = decodeWith(r.body, defaultEncoding)
	}
	if err != nil {
		return string(r.body)
	}
	return text
}

// TextWithCharset decodes the body with the named charset. It returns an
// *UnsupportedCharsetError when the name is not recognized.
func (r *Response) TextWithCharset(charset string) (string, error) {
	return decode(r.body, charset)
}

// IsSuccess returns true if the status code is in the 2xx range
func (r *Response) IsSuccess() bool {
	return r.statusCode >= 200 && r.statusCode < 300
}

// IsRedirect returns true if the status code is in the 3xx range
func (r *Response) IsRedirect() bool {
	return r.statusCode >= 300 && r.statusCode < 400
}

// IsClientError returns true if the status code is in the 4xx range
func (r *Response) IsClientError() bool {
	return r.statusCode >= 400 && r.statusCode < 500
}

// IsServerError returns true if the status code is in the 5xx range
func (r *Response) IsServerError() bool {
	return r.statusCode >= 500 && r.statusCode < 600
}
