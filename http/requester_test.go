package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newEchoServer answers like the reference test.php script: it greets, then
// reports which headers and POST parameters it recognized.
func newEchoServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body strings.Builder
		body.WriteString("Hello World!\n")

		if r.Header.Get("apiKey") == "boxresin" {
			body.WriteString("apiKey is detected.\n")
		}
		if r.Method == http.MethodPost {
			if err := r.ParseForm(); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if r.PostForm.Has("hello") {
				body.WriteString("World!\n")
			}
			if r.PostForm.Get("key") == "one" {
				body.WriteString("ha!\n")
			}
			if r.PostForm.Get("key2") == "two" {
				body.WriteString("한글\n")
			}
		}

		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body.String()))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRequester_Setters(t *testing.T) {
	req := NewRequester().
		SetURL("http://example.com").
		SetMethod("post").
		SetConnectTimeout(2*time.Second).
		SetReadTimeout(-time.Second).
		AddHeader("X-A", "1").
		AddHeaders(map[string]string{"X-A": "2", "x-a": "3"}).
		AddParameter("k", "v").
		AddParameters(map[string]string{"k": "w", "j": "x"})

	assert.Equal(t, "http://example.com", req.URL())
	assert.Equal(t, "POST", req.Method())
	assert.Equal(t, 2*time.Second, req.ConnectTimeout())
	assert.Equal(t, time.Duration(0), req.ReadTimeout())
	assert.Equal(t, map[string]string{"X-A": "2", "x-a": "3"}, req.Headers())
	assert.Equal(t, map[string]string{"k": "w", "j": "x"}, req.Parameters())

	req.ClearHeaders().ClearParameters()
	assert.Empty(t, req.Headers())
	assert.Empty(t, req.Parameters())
}

func TestRequester_SetURLWithQuery(t *testing.T) {
	req := NewRequester().SetURLWithQuery("https://www.daum.net", map[string]string{
		"foo": "&^*$= my crazy query% |!!",
	})
	assert.Equal(t, "https://www.daum.net?foo=%26%5E*%24%3D+my+crazy+query%25+%7C%21%21", req.URL())

	req.SetURLWithQuery("https://www.google.com", map[string]string{})
	assert.Equal(t, "https://www.google.com?", req.URL())
}

func TestRequester_Do(t *testing.T) {
	server := newEchoServer(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		build    func(*Requester)
		expected string
	}{
		{
			name:     "plain GET with lower-case method",
			build:    func(r *Requester) { r.SetMethod("get") },
			expected: "Hello World!\n",
		},
		{
			name:     "header is transmitted",
			build:    func(r *Requester) { r.SetMethod("GET").AddHeader("apiKey", "boxresin") },
			expected: "Hello World!\napiKey is detected.\n",
		},
		{
			name: "POST parameters",
			build: func(r *Requester) {
				r.SetMethod("POST").
					AddParameter("hello", "anything").
					AddParameter("key", "one").
					AddParameter("key2", "two")
			},
			expected: "Hello World!\nWorld!\nha!\n한글\n",
		},
		{
			name: "POST parameters from a map",
			build: func(r *Requester) {
				r.SetMethod("POST").AddParameters(map[string]string{
					"hello": "anything",
					"key":   "one",
					"key2":  "two",
				})
			},
			expected: "Hello World!\nWorld!\nha!\n한글\n",
		},
		{
			name: "POST parameters and header",
			build: func(r *Requester) {
				r.SetMethod("POST").AddParameter("hello", "haha").AddHeader("apiKey", "boxresin")
			},
			expected: "Hello World!\napiKey is detected.\nWorld!\n",
		},
		{
			name: "parameters are dropped for GET",
			build: func(r *Requester) {
				r.SetMethod("GET").AddParameter("hello", "anything").AddParameter("key", "one")
			},
			expected: "Hello World!\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewRequester().SetURL(server.URL + "/test/test.php")
			tt.build(req)

			resp, err := req.Do(ctx)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode())
			assert.Equal(t, "OK", resp.StatusMessage())
			assert.Equal(t, tt.expected, resp.Text())

			_, ok := resp.Charset()
			assert.False(t, ok)
		})
	}
}

func TestRequester_DoRequestBody(t *testing.T) {
	type seen struct {
		method      string
		body        string
		contentType string
	}
	requests := make(chan seen, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests <- seen{method: r.Method, body: string(body), contentType: r.Header.Get("Content-Type")}
	}))
	defer server.Close()

	ctx := context.Background()
	req := NewRequester().
		SetURL(server.URL).
		AddParameter("b", "x y").
		AddParameter("a", "1&2")

	for _, method := range []string{"post", "POST", "Post"} {
		_, err := req.SetMethod(method).Do(ctx)
		require.NoError(t, err)
		assert.Equal(t, seen{method: "POST", body: "a=1&2&b=x y", contentType: formContentType}, <-requests)
	}

	_, err := req.SetMethod("get").Do(ctx)
	require.NoError(t, err)
	assert.Equal(t, seen{method: "GET"}, <-requests)

	_, err = req.SetMethod("put").Do(ctx)
	require.NoError(t, err)
	assert.Equal(t, seen{method: "PUT"}, <-requests)

	_, err = req.SetMethod("POST").AddHeader("Content-Type", "text/plain").Do(ctx)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", (<-requests).contentType)
}

func TestRequester_DoEmptyURL(t *testing.T) {
	_, err := NewRequester().SetMethod("GET").Do(context.Background())
	assert.ErrorIs(t, err, ErrEmptyURL)
}

func TestRequester_DoStatusMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	}))
	defer server.Close()

	resp, err := NewRequester().SetURL(server.URL).SetMethod("GET").Do(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())
	assert.Equal(t, "Not Found", resp.StatusMessage())
	assert.Equal(t, "missing", resp.Text())
	assert.True(t, resp.IsClientError())

	charset, ok := resp.Charset()
	assert.True(t, ok)
	assert.Equal(t, "UTF-8", charset)
}

func TestRequester_DoFollow(t *testing.T) {
	var hits atomic.Int32
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		var n int
		if _, err := fmt.Sscanf(r.URL.Path, "/hop/%d", &n); err == nil && n > 0 {
			w.Header().Set("Location", fmt.Sprintf("%s/hop/%d", server.URL, n-1))
			w.WriteHeader(http.StatusFound)
			return
		}
		_, _ = w.Write([]byte("arrived at " + r.URL.Path))
	}))
	defer server.Close()

	ctx := context.Background()

	for _, n := range []int{0, 1, 3} {
		hits.Store(0)
		req := NewRequester().SetURL(fmt.Sprintf("%s/hop/%d", server.URL, n)).SetMethod("GET")

		resp, err := req.DoFollow(ctx, true)
		require.NoError(t, err)
		assert.Equal(t, int32(n+1), hits.Load(), "exchanges for a chain of %d", n)
		assert.Equal(t, http.StatusOK, resp.StatusCode())
		assert.Equal(t, "arrived at /hop/0", resp.Text())
		assert.Equal(t, server.URL+"/hop/0", req.URL())
	}

	// Without following, the redirect response itself comes back
	hits.Store(0)
	req := NewRequester().SetURL(server.URL + "/hop/2").SetMethod("GET")
	resp, err := req.DoFollow(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, http.StatusFound, resp.StatusCode())
	location, ok := resp.Header("Location")
	assert.True(t, ok)
	assert.Equal(t, server.URL+"/hop/1", location)
	assert.Equal(t, server.URL+"/hop/2", req.URL())
}

// loopTransport redirects every request back to the same URL.
type loopTransport struct {
	opened int
}

func (l *loopTransport) Open(_ context.Context, out *Outgoing) (*Incoming, error) {
	l.opened++
	return &Incoming{
		StatusCode:    http.StatusFound,
		StatusMessage: "Found",
		Header:        http.Header{"Location": {out.URL}},
		Body:          io.NopCloser(strings.NewReader("")),
	}, nil
}

func TestRequester_DoFollowMaxRedirects(t *testing.T) {
	// Unbounded by default: the loop only ends here because the transport
	// starts failing, which stands in for a caller-imposed deadline.
	transport := &loopTransport{}
	failing := transportFunc(func(ctx context.Context, out *Outgoing) (*Incoming, error) {
		if transport.opened == 50 {
			return nil, io.ErrUnexpectedEOF
		}
		return transport.Open(ctx, out)
	})
	_, err := NewRequester(WithTransport(failing)).SetURL("http://loop").DoFollow(context.Background(), true)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, 50, transport.opened)

	transport = &loopTransport{}
	_, err = NewRequester(WithTransport(transport), WithMaxRedirects(5)).
		SetURL("http://loop").
		DoFollow(context.Background(), true)
	assert.ErrorIs(t, err, ErrTooManyRedirects)
	assert.Equal(t, 6, transport.opened)
}

type transportFunc func(ctx context.Context, out *Outgoing) (*Incoming, error)

func (f transportFunc) Open(ctx context.Context, out *Outgoing) (*Incoming, error) {
	return f(ctx, out)
}

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func TestRequester_DoClosesBody(t *testing.T) {
	ok := &trackingBody{Reader: strings.NewReader("fine")}
	resp, err := NewRequester(WithTransport(transportFunc(func(context.Context, *Outgoing) (*Incoming, error) {
		return &Incoming{StatusCode: 200, StatusMessage: "OK", Body: ok}, nil
	}))).SetURL("http://x").Do(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fine", resp.Text())
	assert.True(t, ok.closed)

	readErr := errors.New("stream broke")
	broken := &trackingBody{Reader: io.MultiReader(strings.NewReader("partial"), errReader{readErr})}
	resp, err = NewRequester(WithTransport(transportFunc(func(context.Context, *Outgoing) (*Incoming, error) {
		return &Incoming{StatusCode: 200, StatusMessage: "OK", Body: broken}, nil
	}))).SetURL("http://x").Do(context.Background())
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, readErr)
	assert.True(t, broken.closed)
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func TestRequester_DoForwardsConfiguration(t *testing.T) {
	var got *Outgoing
	req := NewRequester(WithTransport(transportFunc(func(_ context.Context, out *Outgoing) (*Incoming, error) {
		got = out
		return &Incoming{StatusCode: 204, StatusMessage: "No Content", Body: io.NopCloser(strings.NewReader(""))}, nil
	}))).
		SetURL("http://x/y").
		SetMethod("delete").
		SetConnectTimeout(time.Second).
		SetReadTimeout(2*time.Second).
		AddHeader("apiKey", "boxresin").
		AddParameter("ignored", "yes")

	_, err := req.Do(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "http://x/y", got.URL)
	assert.Equal(t, "DELETE", got.Method)
	assert.Equal(t, time.Second, got.ConnectTimeout)
	assert.Equal(t, 2*time.Second, got.ReadTimeout)
	assert.Equal(t, map[string]string{"apiKey": "boxresin"}, got.Header)
	assert.Nil(t, got.Body)
}
