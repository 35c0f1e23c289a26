// Package expect checks responses against the expect blocks of request files.
package expect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wesleyorama2/requester/http"
	"github.com/wesleyorama2/requester/internal/config"
)

// Result is the outcome of one check
type Result struct {
	Name    string `json:"name" yaml:"name"`
	Passed  bool   `json:"passed" yaml:"passed"`
	Message string `json:"message" yaml:"message"`
}

// Evaluate runs every check in exp against resp, in a fixed order: status,
// contains, charset, JSON paths (sorted), schema. A nil exp yields no results.
// body is the decoded response text, passed in so callers control the charset.
func Evaluate(resp *http.Response, body string, exp *config.Expect) []Result {
	if exp == nil {
		return nil
	}

	var results []Result

	if exp.Status != 0 {
		results = append(results, Result{
			Name:    "status",
			Passed:  resp.StatusCode() == exp.Status,
			Message: fmt.Sprintf("expected status %d, got %d", exp.Status, resp.StatusCode()),
		})
	}

	if exp.Contains != "" {
		results = append(results, Result{
			Name:    "contains",
			Passed:  strings.Contains(body, exp.Contains),
			Message: fmt.Sprintf("expected body to contain %q", exp.Contains),
		})
	}

	if exp.Charset != "" {
		charset, ok := resp.Charset()
		if !ok {
			charset = "none"
		}
		results = append(results, Result{
			Name:    "charset",
			Passed:  strings.EqualFold(charset, exp.Charset),
			Message: fmt.Sprintf("expected charset %s, got %s", strings.ToUpper(exp.Charset), charset),
		})
	}

	paths := make([]string, 0, len(exp.JSONPath))
	for path := range exp.JSONPath {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		want := exp.JSONPath[path]
		got, err := Extract(body, path)
		r := Result{Name: "jsonPath " + path, Passed: err == nil && got == want}
		if err != nil {
			r.Message = err.Error()
		} else {
			r.Message = fmt.Sprintf("expected %q, got %q", want, got)
		}
		results = append(results, r)
	}

	if exp.Schema != "" {
		violations, err := validateSchema(body, exp.Schema)
		r := Result{Name: "schema", Passed: err == nil && len(violations) == 0}
		switch {
		case err != nil:
			r.Message = err.Error()
		case len(violations) > 0:
			r.Message = strings.Join(violations, "; ")
		default:
			r.Message = "body matches schema"
		}
		results = append(results, r)
	}

	return results
}

// Passed reports whether every result passed
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
