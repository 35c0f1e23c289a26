package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/requester/http"
)

func TestRunInBackground_TicksWhileWaiting(t *testing.T) {
	release := make(chan struct{})
	ticks := 0
	var got error
	want := errors.New("boom")

	runInBackground(
		func() (*http.Response, error) {
			<-release
			return nil, want
		},
		time.Millisecond,
		func() {
			// tick runs on this goroutine, so no locking is needed
			ticks++
			if ticks == 3 {
				close(release)
			}
		},
		func(_ *http.Response, err error) { got = err },
	)

	assert.GreaterOrEqual(t, ticks, 3)
	assert.Same(t, want, got)
}

func TestRunInBackground_DoneBeforeReturn(t *testing.T) {
	resp := http.NewResponse(200, "OK", nil, []byte("x"))
	called := false

	runInBackground(
		func() (*http.Response, error) { return resp, nil },
		time.Hour,
		func() { t.Error("tick should not run for an immediate job") },
		func(r *http.Response, err error) {
			called = true
			assert.Same(t, resp, r)
			assert.NoError(t, err)
		},
	)

	assert.True(t, called)
}

func TestSpinner(t *testing.T) {
	var buf bytes.Buffer
	s := &spinner{w: &buf, label: "requesting"}

	s.Clear()
	assert.Empty(t, buf.String(), "clear before drawing writes nothing")

	s.Tick()
	s.Tick()
	assert.Equal(t, fmt.Sprintf("\r%s requesting\r%s requesting", spinnerFrames[0], spinnerFrames[1]), buf.String())

	buf.Reset()
	s.Clear()
	assert.Equal(t, "\r\033[K", buf.String())

	silent := &spinner{label: "requesting"}
	silent.Tick()
	silent.Clear()
}

func TestExecute(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Path == "/start" {
			w.Header().Set("Location", "http://"+r.Host+"/end")
			w.WriteHeader(nethttp.StatusFound)
			return
		}
		fmt.Fprint(w, "end")
	}))
	defer server.Close()

	req := http.NewRequester().SetURL(server.URL + "/start")
	resp, err := execute(context.Background(), req, false, nil)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusFound, resp.StatusCode())

	var progress bytes.Buffer
	resp, err = execute(context.Background(), req.SetURL(server.URL+"/start"), true, &progress)
	require.NoError(t, err)
	assert.Equal(t, "end", resp.Text())
	assert.True(t, strings.HasSuffix(req.URL(), "/end"))
}
