package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"strings"
	"time"
)

const (
	// MethodPost is the only method whose requests carry the parameter map.
	MethodPost = "POST"

	formContentType = "application/x-www-form-urlencoded"
	initialBodySize = 10 * 1024
)

// Requester accumulates the configuration of an HTTP request and executes it.
//
// Setters return the Requester itself so calls can be chained. A Requester is
// meant for a single owner and is not safe for concurrent use. Do may be
// called any number of times; each call is independent and uses the
// configuration present at that moment.
type Requester struct {
	url            string
	method         string
	connectTimeout time.Duration
	readTimeout    time.Duration
	headers        map[string]string
	params         map[string]string

	transport    Transport
	logger       *slog.Logger
	maxRedirects int
}

// RequesterOption is a function that configures a Requester
type RequesterOption func(*Requester)

// NewRequester creates a Requester with the given options.
//
// Example:
//
//	resp, err := http.NewRequester().
//	    SetURL("http://localhost/test.php").
//	    SetMethod("post").
//	    AddParameter("key", "one").
//	    Do(ctx)
func NewRequester(options ...RequesterOption) *Requester {
	r := &Requester{
		headers:   make(map[string]string),
		params:    make(map[string]string),
		transport: NetTransport{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(r)
	}

	return r
}

// WithTransport replaces the default NetTransport.
func WithTransport(t Transport) RequesterOption {
	return func(r *Requester) {
		r.transport = t
	}
}

// WithLogger sets the logger used for debug output. By default nothing is logged.
func WithLogger(logger *slog.Logger) RequesterOption {
	return func(r *Requester) {
		r.logger = logger
	}
}

// WithMaxRedirects caps how many Location hops DoFollow takes before failing
// with ErrTooManyRedirects. Zero or a negative value keeps the default, which
// is no limit at all: a server redirecting to itself keeps DoFollow busy forever.
func WithMaxRedirects(n int) RequesterOption {
	return func(r *Requester) {
		r.maxRedirects = n
	}
}

// URL returns the URL to request.
func (r *Requester) URL() string {
	return r.url
}

// SetURL sets the URL to request. It is not validated until Do.
func (r *Requester) SetURL(url string) *Requester {
	r.url = url
	return r
}

// SetURLWithQuery sets the URL to base followed by '?' and params encoded as a
// query string (see EncodeQuery). The '?' is appended even for empty params.
func (r *Requester) SetURLWithQuery(base string, params map[string]string) *Requester {
	return r.SetURL(base + "?" + EncodeQuery(params))
}

// Method returns the HTTP method in upper case.
func (r *Requester) Method() string {
	return r.method
}

// SetMethod sets the HTTP method. It is case-insensitive: "post" and "POST"
// are the same. An empty method is sent as GET.
func (r *Requester) SetMethod(method string) *Requester {
	r.method = strings.ToUpper(method)
	return r
}

// ConnectTimeout returns the timeout for establishing the connection.
func (r *Requester) ConnectTimeout() time.Duration {
	return r.connectTimeout
}

// SetConnectTimeout sets the timeout for establishing the connection.
// Zero means no timeout; negative values are stored as zero.
func (r *Requester) SetConnectTimeout(timeout time.Duration) *Requester {
	r.connectTimeout = max(timeout, 0)
	return r
}

// ReadTimeout returns the timeout for reading the response.
func (r *Requester) ReadTimeout() time.Duration {
	return r.readTimeout
}

// SetReadTimeout sets how long a read from the server may block. Zero means no
// timeout; negative values are stored as zero.
func (r *Requester) SetReadTimeout(timeout time.Duration) *Requester {
	r.readTimeout = max(timeout, 0)
	return r
}

// Headers returns a copy of the request headers.
func (r *Requester) Headers() map[string]string {
	return maps.Clone(r.headers)
}

// AddHeader sets a request header. Keys are case-sensitive and a later call
// with the same key replaces the value.
func (r *Requester) AddHeader(key, value string) *Requester {
	r.headers[key] = value
	return r
}

// AddHeaders sets every header in headers.
func (r *Requester) AddHeaders(headers map[string]string) *Requester {
	maps.Copy(r.headers, headers)
	return r
}

// ClearHeaders removes all request headers.
func (r *Requester) ClearHeaders() *Requester {
	clear(r.headers)
	return r
}

// Parameters returns a copy of the POST parameters.
func (r *Requester) Parameters() map[string]string {
	return maps.Clone(r.params)
}

// AddParameter sets a POST parameter. Parameters are ignored unless the
// method is POST.
func (r *Requester) AddParameter(key, value string) *Requester {
	r.params[key] = value
	return r
}

// AddParameters sets every parameter in params.
func (r *Requester) AddParameters(params map[string]string) *Requester {
	maps.Copy(r.params, params)
	return r
}

// ClearParameters removes all POST parameters.
func (r *Requester) ClearParameters() *Requester {
	clear(r.params)
	return r
}

// Do sends the request and blocks until the whole response body has been read.
//
// For POST the parameters are sent as the body, joined as key=value pairs in
// key order and NOT percent-encoded. Timeouts are reported as *TimeoutError;
// any other transport error is returned as the transport produced it. The
// response is returned whatever its status code.
func (r *Requester) Do(ctx context.Context) (*Response, error) {
	if r.url == "" {
		return nil, ErrEmptyURL
	}

	out := &Outgoing{
		URL:            r.url,
		Method:         r.method,
		ConnectTimeout: r.connectTimeout,
		ReadTimeout:    r.readTimeout,
		Header:         maps.Clone(r.headers),
	}
	if r.method == MethodPost {
		out.Body = encodeParams(r.params)
		if !hasHeader(out.Header, "Content-Type") {
			out.Header["Content-Type"] = formContentType
		}
	}

	r.logger.Debug("sending request", "method", out.Method, "url", out.URL)
	start := time.Now()

	in, err := r.transport.Open(ctx, out)
	if err != nil {
		r.logger.Debug("request failed", "url", out.URL, "error", err)
		return nil, err
	}
	defer in.Body.Close()

	buf := bytes.NewBuffer(make([]byte, 0, initialBodySize))
	if _, err := io.Copy(buf, in.Body); err != nil {
		r.logger.Debug("reading body failed", "url", out.URL, "error", err)
		return nil, err
	}

	resp := NewResponse(in.StatusCode, in.StatusMessage, in.Header, buf.Bytes())
	resp.elapsed = time.Since(start)

	r.logger.Debug("received response",
		"url", out.URL,
		"status", resp.statusCode,
		"bytes", len(resp.body),
		"elapsed", resp.elapsed)

	return resp, nil
}

// DoFollow behaves like Do. When follow is true and the response carries a
// Location header, the URL is replaced by that value and the request is sent
// again, until a response without Location arrives. The Location value is
// used verbatim, so it should be absolute.
func (r *Requester) DoFollow(ctx context.Context, follow bool) (*Response, error) {
	for hops := 0; ; hops++ {
		resp, err := r.Do(ctx)
		if err != nil || !follow {
			return resp, err
		}

		location, ok := resp.Header("Location")
		if !ok {
			return resp, nil
		}
		if r.maxRedirects > 0 && hops >= r.maxRedirects {
			return nil, fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, hops)
		}

		r.logger.Debug("following redirect", "from", r.url, "to", location, "status", resp.statusCode)
		r.SetURL(location)
	}
}

func hasHeader(headers map[string]string, key string) bool {
	for k := range headers {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}
