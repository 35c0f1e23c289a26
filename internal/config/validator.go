package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValidationError represents a request file validation error
type ValidationError struct {
	Path    string
	Message string
}

// Error returns the error message
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors collects every problem found in a request file
type ValidationErrors []ValidationError

// Error joins all messages
func (ve ValidationErrors) Error() string {
	msgs := make([]string, len(ve))
	for i, e := range ve {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

var validMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true,
	"PATCH": true, "HEAD": true, "OPTIONS": true, "TRACE": true,
}

// Validate checks a request file and returns every problem found, in request
// name order.
func Validate(file *File) ValidationErrors {
	var errors ValidationErrors

	if len(file.Requests) == 0 {
		errors = append(errors, ValidationError{
			Path:    "requests",
			Message: "at least one request is required",
		})
	}

	for _, name := range file.Names() {
		errors = append(errors, validateRequest(name, file.Requests[name])...)
	}

	return errors
}

func validateRequest(name string, req Request) ValidationErrors {
	var errors ValidationErrors
	path := "requests." + name

	if req.URL == "" {
		errors = append(errors, ValidationError{
			Path:    path + ".url",
			Message: "url is required",
		})
	}

	if req.Method != "" && !validMethods[strings.ToUpper(req.Method)] {
		errors = append(errors, ValidationError{
			Path:    path + ".method",
			Message: fmt.Sprintf("invalid method: %s", req.Method),
		})
	}

	if len(req.Params) > 0 && req.Method != "" && !strings.EqualFold(req.Method, "POST") {
		errors = append(errors, ValidationError{
			Path:    path + ".params",
			Message: "params are only sent with POST",
		})
	}

	for _, d := range []struct{ field, value string }{
		{"connectTimeout", req.ConnectTimeout},
		{"readTimeout", req.ReadTimeout},
	} {
		if _, err := parseDuration(d.value); err != nil {
			errors = append(errors, ValidationError{
				Path:    path + "." + d.field,
				Message: fmt.Sprintf("invalid duration %q: %v", d.value, err),
			})
		}
	}

	if req.MaxRedirects < 0 {
		errors = append(errors, ValidationError{
			Path:    path + ".maxRedirects",
			Message: "maxRedirects cannot be negative",
		})
	}

	if req.Expect != nil {
		errors = append(errors, validateExpect(path+".expect", req.Expect)...)
	}

	return errors
}

func validateExpect(path string, expect *Expect) ValidationErrors {
	var errors ValidationErrors

	if expect.Status != 0 && (expect.Status < 100 || expect.Status > 599) {
		errors = append(errors, ValidationError{
			Path:    path + ".status",
			Message: fmt.Sprintf("invalid status code: %d", expect.Status),
		})
	}

	for jsonPath := range expect.JSONPath {
		if strings.TrimSpace(jsonPath) == "" {
			errors = append(errors, ValidationError{
				Path:    path + ".jsonPath",
				Message: "path cannot be empty",
			})
		}
	}

	if expect.Schema != "" && !json.Valid([]byte(expect.Schema)) {
		errors = append(errors, ValidationError{
			Path:    path + ".schema",
			Message: "schema is not valid JSON",
		})
	}

	return errors
}
