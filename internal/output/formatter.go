package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/wesleyorama2/requester/http"
	"github.com/wesleyorama2/requester/internal/expect"
	"github.com/wesleyorama2/requester/internal/stats"
)

// Formatter is responsible for formatting requests and responses in text format
type Formatter struct {
	Verbose bool
	NoColor bool
	colors  *ColorScheme
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	colors := DefaultColorScheme()
	if noColor {
		colors = NoColorScheme()
	}
	return &Formatter{
		Verbose: verbose,
		NoColor: noColor,
		colors:  colors,
	}
}

// FormatRequest formats a request for display
func (f *Formatter) FormatRequest(req *http.Requester) string {
	var buf strings.Builder

	method := req.Method()
	if method == "" {
		method = "GET"
	}
	buf.WriteString(fmt.Sprintf("▶ REQUEST: %s %s\n", f.colors.Method.Sprint(method), f.colors.URL.Sprint(req.URL())))

	if f.Verbose || len(req.Headers()) > 0 {
		buf.WriteString("  Headers:\n")
		writeSorted(&buf, req.Headers(), f.colors.HeaderKey)
	}

	if method == http.MethodPost && len(req.Parameters()) > 0 {
		buf.WriteString("  Parameters:\n")
		writeSorted(&buf, req.Parameters(), f.colors.HeaderKey)
	}

	return buf.String()
}

// FormatResponse formats a response for display. text is the decoded body.
func (f *Formatter) FormatResponse(resp *http.Response, text string) string {
	var buf strings.Builder

	statusColor := f.colors.StatusError
	if resp.IsSuccess() {
		statusColor = f.colors.StatusOK
	} else if resp.IsRedirect() {
		statusColor = f.colors.StatusWarn
	}

	status := fmt.Sprintf("%d %s", resp.StatusCode(), resp.StatusMessage())
	buf.WriteString(fmt.Sprintf("◀ RESPONSE: %s (%dms)\n",
		statusColor.Sprint(strings.TrimSpace(status)),
		resp.Elapsed().Milliseconds()))

	if f.Verbose {
		charset, ok := resp.Charset()
		if !ok {
			charset = "none"
		}
		buf.WriteString(fmt.Sprintf("  %s %s\n", f.colors.Label.Sprint("Charset:"), charset))

		buf.WriteString("  Headers:\n")
		headers := resp.Headers()
		for _, key := range sortedKeys(headers) {
			for _, value := range headers[key] {
				buf.WriteString(fmt.Sprintf("    %s: %s\n", f.colors.HeaderKey.Sprint(key), value))
			}
		}
	}

	if text != "" {
		buf.WriteString("  Body:\n")
		buf.WriteString(formatJSONString(text))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatResults formats expectation results, one line each
func (f *Formatter) FormatResults(name string, results []expect.Result) string {
	var buf strings.Builder

	buf.WriteString(fmt.Sprintf("  %s %s\n", f.colors.Label.Sprint("Checks:"), name))
	for _, r := range results {
		if r.Passed {
			buf.WriteString(fmt.Sprintf("    %s %s\n", SuccessIcon(f.NoColor), r.Name))
		} else {
			buf.WriteString(fmt.Sprintf("    %s %s: %s\n", ErrorIcon(f.NoColor), r.Name, f.colors.Error.Sprint(r.Message)))
		}
	}

	return buf.String()
}

// FormatSummary formats latency statistics of repeated requests
func (f *Formatter) FormatSummary(s stats.Summary) string {
	var buf strings.Builder

	buf.WriteString(fmt.Sprintf("  %s %d ok, %d failed, %d bytes\n",
		f.colors.Label.Sprint("Requests:"), s.Count, s.Failures, s.Bytes))
	if s.Count > 0 {
		buf.WriteString(fmt.Sprintf("    min %v  p50 %v  p90 %v  p99 %v  max %v  mean %v\n",
			s.Min, s.P50, s.P90, s.P99, s.Max, s.Mean))
	}

	return buf.String()
}

func writeSorted(buf *strings.Builder, m map[string]string, keyColor *color.Color) {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		buf.WriteString(fmt.Sprintf("    %s: %s\n", keyColor.Sprint(key), m[key]))
	}
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// formatJSONString attempts to pretty-print a JSON string
func formatJSONString(s string) string {
	var prettyJSON bytes.Buffer
	err := json.Indent(&prettyJSON, []byte(s), "  ", "  ")
	if err != nil {
		return s
	}
	return prettyJSON.String()
}
