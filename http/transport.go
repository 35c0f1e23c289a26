package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Outgoing is everything a Transport needs to perform one exchange.
type Outgoing struct {
	URL            string
	Method         string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	// Header keys are sent exactly as given.
	Header map[string]string
	// Body is nil unless the request carries one.
	Body []byte
}

// Incoming is an open exchange. The caller must close Body.
type Incoming struct {
	StatusCode    int
	StatusMessage string
	Header        http.Header
	Body          io.ReadCloser
}

// Transport opens a single HTTP exchange. Requester treats it as a black box:
// it hands over an Outgoing, reads the Incoming to the end, and closes it.
type Transport interface {
	Open(ctx context.Context, out *Outgoing) (*Incoming, error)
}

// NetTransport is the default Transport, backed by net/http.
//
// Every call dials a fresh connection that is closed together with the
// response body. Redirects are never followed here; a 3xx response is returned
// as is so Requester.DoFollow can inspect its Location header.
type NetTransport struct{}

// Open implements Transport.
func (NetTransport) Open(ctx context.Context, out *Outgoing) (*Incoming, error) {
	var body io.Reader
	if out.Body != nil {
		body = bytes.NewReader(out.Body)
	}

	req, err := http.NewRequestWithContext(ctx, out.Method, out.URL, body)
	if err != nil {
		return nil, err
	}
	for key, value := range out.Header {
		if strings.EqualFold(key, "Host") {
			req.Host = value
			continue
		}
		req.Header[key] = []string{value}
	}

	transport := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		DisableKeepAlives: true,
		DialContext:       dialer(out.ConnectTimeout, out.ReadTimeout),
	}
	client := &http.Client{
		Transport: transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Do(req)
	if err != nil {
		transport.CloseIdleConnections()
		return nil, classify(err)
	}

	return &Incoming{
		StatusCode:    resp.StatusCode,
		StatusMessage: reasonPhrase(resp),
		Header:        resp.Header,
		Body:          &incomingBody{ReadCloser: resp.Body, transport: transport},
	}, nil
}

// dialer returns a DialContext func applying the connect timeout to the dial
// and the read timeout to every subsequent read on the connection.
func dialer(connectTimeout, readTimeout time.Duration) func(ctx context.Context, network, addr string) (net.Conn, error) {
	d := &net.Dialer{Timeout: connectTimeout}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() && ctx.Err() == nil {
				return nil, &TimeoutError{Phase: PhaseConnect, Err: err}
			}
			return nil, err
		}
		if readTimeout <= 0 {
			return conn, nil
		}
		return &deadlineConn{Conn: conn, timeout: readTimeout}, nil
	}
}

// deadlineConn re-arms the read deadline before each Read, so the timeout
// bounds the silence between two reads rather than the whole exchange.
type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (c *deadlineConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	n, err := c.Conn.Read(p)
	if err != nil && errors.Is(err, os.ErrDeadlineExceeded) {
		return n, &TimeoutError{Phase: PhaseRead, Err: err}
	}
	return n, err
}

type incomingBody struct {
	io.ReadCloser
	transport *http.Transport
}

func (b *incomingBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if err != nil && err != io.EOF {
		return n, classify(err)
	}
	return n, err
}

func (b *incomingBody) Close() error {
	err := b.ReadCloser.Close()
	b.transport.CloseIdleConnections()
	return err
}

// classify digs a TimeoutError out of whatever net/http wrapped around it.
// Other errors are returned untouched.
func classify(err error) error {
	var te *TimeoutError
	if errors.As(err, &te) {
		return te
	}
	return err
}

// reasonPhrase extracts "Not Found" from a "404 Not Found" status line.
func reasonPhrase(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	if msg, ok := strings.CutPrefix(resp.Status, code); ok {
		return strings.TrimSpace(msg)
	}
	return resp.Status
}
