package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/requester/http"
)

// File is a request file: named requests plus variables substituted into them.
// Both YAML and JSON files are accepted.
type File struct {
	Variables map[string]string  `yaml:"variables,omitempty" json:"variables,omitempty"`
	Requests  map[string]Request `yaml:"requests" json:"requests"`
}

// Request describes a single request in a File
type Request struct {
	URL             string            `yaml:"url" json:"url"`
	Method          string            `yaml:"method,omitempty" json:"method,omitempty"`
	Query           map[string]string `yaml:"query,omitempty" json:"query,omitempty"`
	Headers         map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	Params          map[string]string `yaml:"params,omitempty" json:"params,omitempty"`
	ConnectTimeout  string            `yaml:"connectTimeout,omitempty" json:"connectTimeout,omitempty"`
	ReadTimeout     string            `yaml:"readTimeout,omitempty" json:"readTimeout,omitempty"`
	FollowRedirects bool              `yaml:"followRedirects,omitempty" json:"followRedirects,omitempty"`
	MaxRedirects    int               `yaml:"maxRedirects,omitempty" json:"maxRedirects,omitempty"`
	Charset         string            `yaml:"charset,omitempty" json:"charset,omitempty"`
	Expect          *Expect           `yaml:"expect,omitempty" json:"expect,omitempty"`
}

// Expect lists the checks run against a response
type Expect struct {
	Status   int               `yaml:"status,omitempty" json:"status,omitempty"`
	Contains string            `yaml:"contains,omitempty" json:"contains,omitempty"`
	Charset  string            `yaml:"charset,omitempty" json:"charset,omitempty"`
	JSONPath map[string]string `yaml:"jsonPath,omitempty" json:"jsonPath,omitempty"`
	Schema   string            `yaml:"schema,omitempty" json:"schema,omitempty"`
}

// LoadFile reads, parses and validates a request file
func LoadFile(path string) (*File, error) {
	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("request file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading request file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a request file and validates it. JSON input works as well,
// since JSON is valid YAML.
func Parse(data []byte) (*File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing request file: %w", err)
	}

	if errs := Validate(&file); len(errs) > 0 {
		return nil, fmt.Errorf("invalid request file: %w", errs)
	}

	return &file, nil
}

// Names returns the request names in sorted order
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Requests))
	for name := range f.Requests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named request with variables substituted.
// Values in vars take precedence over the file's own variables.
func (f *File) Lookup(name string, vars map[string]string) (Request, error) {
	req, ok := f.Requests[name]
	if !ok {
		return Request{}, fmt.Errorf("request not found: %s", name)
	}

	merged := make(map[string]string, len(f.Variables)+len(vars))
	for k, v := range f.Variables {
		merged[k] = v
	}
	for k, v := range vars {
		merged[k] = v
	}

	return req.substitute(merged), nil
}

// Requester builds an http.Requester from the named request.
func (f *File) Requester(name string, vars map[string]string, options ...http.RequesterOption) (*http.Requester, Request, error) {
	req, err := f.Lookup(name, vars)
	if err != nil {
		return nil, Request{}, err
	}
	requester, err := req.Requester(options...)
	return requester, req, err
}

// Requester builds an http.Requester configured as described by r.
func (r Request) Requester(options ...http.RequesterOption) (*http.Requester, error) {
	connectTimeout, err := parseDuration(r.ConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid connectTimeout: %w", err)
	}
	readTimeout, err := parseDuration(r.ReadTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid readTimeout: %w", err)
	}

	if r.MaxRedirects > 0 {
		options = append(options, http.WithMaxRedirects(r.MaxRedirects))
	}

	method := r.Method
	if method == "" {
		method = "GET"
	}

	requester := http.NewRequester(options...).
		SetMethod(method).
		SetConnectTimeout(connectTimeout).
		SetReadTimeout(readTimeout).
		AddHeaders(r.Headers).
		AddParameters(r.Params)

	if len(r.Query) > 0 {
		requester.SetURLWithQuery(r.URL, r.Query)
	} else {
		requester.SetURL(r.URL)
	}

	return requester, nil
}

// substitute replaces {{name}} placeholders in every string field that is
// sent over the wire.
func (r Request) substitute(vars map[string]string) Request {
	if len(vars) == 0 {
		return r
	}

	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	replacer := strings.NewReplacer(pairs...)

	out := r
	out.URL = replacer.Replace(r.URL)
	out.Query = substituteMap(replacer, r.Query)
	out.Headers = substituteMap(replacer, r.Headers)
	out.Params = substituteMap(replacer, r.Params)
	return out
}

func substituteMap(replacer *strings.Replacer, m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[replacer.Replace(k)] = replacer.Replace(v)
	}
	return out
}

// parseDuration accepts Go duration strings; a bare number is taken as milliseconds.
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	if strings.Trim(s, "0123456789") == "" {
		s += "ms"
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s)
	}
	return d, nil
}
