package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/wesleyorama2/requester/http"
)

const spinnerInterval = 100 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type outcome struct {
	resp *http.Response
	err  error
}

// runInBackground executes job on its own goroutine. The calling goroutine
// stays free: it invokes tick on every interval while waiting, then hands the
// outcome to done itself, so done never runs concurrently with the caller.
func runInBackground(job func() (*http.Response, error), interval time.Duration, tick func(), done func(*http.Response, error)) {
	results := make(chan outcome, 1)
	go func() {
		resp, err := job()
		results <- outcome{resp: resp, err: err}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case r := <-results:
			done(r.resp, r.err)
			return
		case <-ticker.C:
			tick()
		}
	}
}

// spinner draws a one-line progress indicator. A nil writer draws nothing.
type spinner struct {
	w     io.Writer
	label string
	frame int
	drawn bool
}

func (s *spinner) Tick() {
	if s.w == nil {
		return
	}
	fmt.Fprintf(s.w, "\r%s %s", spinnerFrames[s.frame%len(spinnerFrames)], s.label)
	s.frame++
	s.drawn = true
}

func (s *spinner) Clear() {
	if s.w == nil || !s.drawn {
		return
	}
	fmt.Fprint(s.w, "\r\033[K")
	s.drawn = false
}

// execute performs one request (following redirects when asked) on a
// background goroutine while the spinner runs in the foreground.
func execute(ctx context.Context, req *http.Requester, follow bool, progress io.Writer) (*http.Response, error) {
	var (
		resp *http.Response
		err  error
	)

	s := &spinner{w: progress, label: "requesting " + req.URL()}
	runInBackground(
		func() (*http.Response, error) { return req.DoFollow(ctx, follow) },
		spinnerInterval,
		s.Tick,
		func(r *http.Response, e error) {
			s.Clear()
			resp, err = r, e
		},
	)

	return resp, err
}
