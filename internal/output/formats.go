package output

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/requester/http"
	"github.com/wesleyorama2/requester/internal/expect"
	"github.com/wesleyorama2/requester/internal/stats"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable text format
	FormatText OutputFormat = "text"
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
)

// FormatProvider is an interface for different output formatters
type FormatProvider interface {
	FormatRequest(req *http.Requester) string
	FormatResponse(resp *http.Response, text string) string
	FormatResults(name string, results []expect.Result) string
	FormatSummary(s stats.Summary) string
}

// RequestData represents the structured data of a request
type RequestData struct {
	Method         string            `json:"method" yaml:"method"`
	URL            string            `json:"url" yaml:"url"`
	Headers        map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Parameters     map[string]string `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	ConnectTimeout int64             `json:"connectTimeoutMs,omitempty" yaml:"connectTimeoutMs,omitempty"`
	ReadTimeout    int64             `json:"readTimeoutMs,omitempty" yaml:"readTimeoutMs,omitempty"`
	Timestamp      string            `json:"timestamp" yaml:"timestamp"`
}

// ResponseData represents the structured data of a response
type ResponseData struct {
	StatusCode    int                 `json:"statusCode" yaml:"statusCode"`
	StatusMessage string              `json:"statusMessage" yaml:"statusMessage"`
	Headers       map[string][]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Charset       string              `json:"charset,omitempty" yaml:"charset,omitempty"`
	Body          interface{}         `json:"body,omitempty" yaml:"body,omitempty"`
	ResponseTime  int64               `json:"responseTimeMs" yaml:"responseTimeMs"`
	ContentLength int                 `json:"contentLength" yaml:"contentLength"`
	Timestamp     string              `json:"timestamp" yaml:"timestamp"`
}

// ResultsData wraps expectation results of a named request
type ResultsData struct {
	Request string          `json:"request" yaml:"request"`
	Passed  bool            `json:"passed" yaml:"passed"`
	Checks  []expect.Result `json:"checks" yaml:"checks"`
}

func requestData(req *http.Requester) RequestData {
	data := RequestData{
		Method:         req.Method(),
		URL:            req.URL(),
		Headers:        req.Headers(),
		ConnectTimeout: req.ConnectTimeout().Milliseconds(),
		ReadTimeout:    req.ReadTimeout().Milliseconds(),
		Timestamp:      time.Now().Format(time.RFC3339),
	}
	if data.Method == "" {
		data.Method = "GET"
	}
	if data.Method == http.MethodPost {
		data.Parameters = req.Parameters()
	}
	if len(data.Headers) == 0 {
		data.Headers = nil
	}
	return data
}

func responseData(resp *http.Response, text string, verbose bool) ResponseData {
	data := ResponseData{
		StatusCode:    resp.StatusCode(),
		StatusMessage: resp.StatusMessage(),
		ResponseTime:  resp.Elapsed().Milliseconds(),
		ContentLength: len(resp.Body()),
		Timestamp:     time.Now().Format(time.RFC3339),
	}
	if charset, ok := resp.Charset(); ok {
		data.Charset = charset
	}
	if verbose {
		data.Headers = resp.Headers()
	}

	// Embed JSON bodies as structured data, anything else as a string
	if text != "" {
		var body interface{}
		if err := json.Unmarshal([]byte(text), &body); err == nil {
			data.Body = body
		} else {
			data.Body = text
		}
	}
	return data
}

func resultsData(name string, results []expect.Result) ResultsData {
	return ResultsData{Request: name, Passed: expect.Passed(results), Checks: results}
}

// JSONFormatter formats output as JSON, one document per call
type JSONFormatter struct {
	Verbose bool
	Pretty  bool
}

func (f *JSONFormatter) marshal(v interface{}) string {
	var output []byte
	var err error
	if f.Pretty {
		output, err = json.MarshalIndent(v, "", "  ")
	} else {
		output, err = json.Marshal(v)
	}

	if err != nil {
		return fmt.Sprintf(`{"error":"Failed to marshal output: %s"}`, err)
	}

	return string(output) + "\n"
}

// FormatRequest formats a request as JSON
func (f *JSONFormatter) FormatRequest(req *http.Requester) string {
	return f.marshal(requestData(req))
}

// FormatResponse formats a response as JSON
func (f *JSONFormatter) FormatResponse(resp *http.Response, text string) string {
	return f.marshal(responseData(resp, text, f.Verbose))
}

// FormatResults formats expectation results as JSON
func (f *JSONFormatter) FormatResults(name string, results []expect.Result) string {
	return f.marshal(resultsData(name, results))
}

// FormatSummary formats latency statistics as JSON
func (f *JSONFormatter) FormatSummary(s stats.Summary) string {
	return f.marshal(s)
}

// YAMLFormatter formats output as YAML, one document per call
type YAMLFormatter struct {
	Verbose bool
}

func (f *YAMLFormatter) marshal(v interface{}) string {
	output, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: Failed to marshal output: %s\n", err)
	}

	return "---\n" + string(output)
}

// FormatRequest formats a request as YAML
func (f *YAMLFormatter) FormatRequest(req *http.Requester) string {
	return f.marshal(requestData(req))
}

// FormatResponse formats a response as YAML
func (f *YAMLFormatter) FormatResponse(resp *http.Response, text string) string {
	return f.marshal(responseData(resp, text, f.Verbose))
}

// FormatResults formats expectation results as YAML
func (f *YAMLFormatter) FormatResults(name string, results []expect.Result) string {
	return f.marshal(resultsData(name, results))
}

// FormatSummary formats latency statistics as YAML
func (f *YAMLFormatter) FormatSummary(s stats.Summary) string {
	return f.marshal(s)
}

// GetFormatter returns a formatter for the given format. Unknown formats get
// the text formatter.
func GetFormatter(format OutputFormat, verbose bool, noColor bool) FormatProvider {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Verbose: verbose, Pretty: true}
	case FormatYAML:
		return &YAMLFormatter{Verbose: verbose}
	default:
		return NewFormatter(verbose, noColor)
	}
}

// ParseFormat validates a user supplied format name
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case FormatText, FormatJSON, FormatYAML:
		return OutputFormat(s), nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
}
