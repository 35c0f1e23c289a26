package http

import (
	"net/http"
	"testing"
)

func TestResponse_Accessors(t *testing.T) {
	headers := http.Header{
		"Content-Type": {"text/plain"},
		"Set-Cookie":   {"a=1", "b=2"},
	}
	body := []byte("Hello World!\n")

	resp := NewResponse(200, "OK", headers, body)

	if resp.StatusCode() != 200 {
		t.Errorf("Expected status code 200, got %d", resp.StatusCode())
	}
	if resp.StatusMessage() != "OK" {
		t.Errorf("Expected status message OK, got %s", resp.StatusMessage())
	}
	if string(resp.Body()) != "Hello World!\n" {
		t.Errorf("Expected body %q, got %q", "Hello World!\n", resp.Body())
	}

	// Mutating the inputs must not leak into the response
	body[0] = 'J'
	headers.Set("Content-Type", "application/json")
	if string(resp.Body()) != "Hello World!\n" {
		t.Errorf("Response body changed after mutating the source slice")
	}
	if v, _ := resp.Header("Content-Type"); v != "text/plain" {
		t.Errorf("Response header changed after mutating the source map: %s", v)
	}

	// Mutating the outputs must not leak either
	resp.Body()[0] = 'J'
	resp.Headers()["Content-Type"][0] = "changed"
	if string(resp.Body()) != "Hello World!\n" {
		t.Errorf("Response body changed after mutating a returned copy")
	}
	if v, _ := resp.Header("Content-Type"); v != "text/plain" {
		t.Errorf("Response header changed after mutating a returned copy: %s", v)
	}
}

func TestResponse_Header(t *testing.T) {
	resp := NewResponse(200, "OK", http.Header{
		"Content-Type": {"text/plain"},
		"Set-Cookie":   {"a=1", "b=2"},
	}, nil)

	if v, ok := resp.Header("Content-Type"); !ok || v != "text/plain" {
		t.Errorf("Expected Content-Type: text/plain, got %q (found=%v)", v, ok)
	}
	if v, ok := resp.Header("Set-Cookie"); !ok || v != "b=2" {
		t.Errorf("Expected the last Set-Cookie value b=2, got %q (found=%v)", v, ok)
	}
	if _, ok := resp.Header("content-type"); ok {
		t.Errorf("Expected lookup to be case-sensitive")
	}
	if _, ok := resp.Header("Non-Existent"); ok {
		t.Errorf("Expected Non-Existent header to be absent")
	}
	if got := resp.Headers()["Set-Cookie"]; len(got) != 2 {
		t.Errorf("Expected both Set-Cookie values, got %v", got)
	}
}

func TestResponse_StatusClasses(t *testing.T) {
	tests := []struct {
		code                                       int
		success, redirect, clientError, serverError bool
	}{
		{code: 200, success: true},
		{code: 302, redirect: true},
		{code: 404, clientError: true},
		{code: 503, serverError: true},
	}

	for _, tt := range tests {
		resp := NewResponse(tt.code, "", nil, nil)
		if resp.IsSuccess() != tt.success || resp.IsRedirect() != tt.redirect ||
			resp.IsClientError() != tt.clientError || resp.IsServerError() != tt.serverError {
			t.Errorf("Unexpected status classes for %d", tt.code)
		}
	}
}
