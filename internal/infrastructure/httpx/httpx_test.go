package httpx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type rtFunc func(*http.Request) (*http.Response, error)

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func httpClientRT(rt http.RoundTripper) *http.Client {
	return &http.Client{Transport: rt, Timeout: 2 * time.Second}
}

func TestDoJSON_Retry500Then200(t *testing.T) {
	var calls int
	rt := httpClientRT(rtFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			return &http.Response{StatusCode: 500, Body: io.NopCloser(strings.NewReader("err")), Header: make(http.Header), Request: r}, nil
		}
		return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(`{"ok": true}`)), Header: make(http.Header), Request: r}, nil
	}))
	type resp struct {
		OK bool `json:"ok"`
	}
	var out resp
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c := &Client{HTTP: rt}
	if err := c.DoJSON(ctx, req, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.OK {
		t.Fatalf("expected ok=true")
	}
	if calls < 2 {
		t.Fatalf("expected at least 2 calls, got %d", calls)
	}
}

func TestDoJSON_NoRetryOn400(t *testing.T) {
	var calls int
	rt := httpClientRT(rtFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return &http.Response{StatusCode: 400, Body: io.NopCloser(strings.NewReader("bad")), Header: make(http.Header), Request: r}, nil
	}))
	var out any
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	c := &Client{HTTP: rt}
	err := c.DoJSON(context.Background(), req, &out)
	if err == nil {
		t.Fatalf("expected error")
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Code != 400 {
		t.Fatalf("expected StatusError 400, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDoJSON_DecodeError_NoRetry(t *testing.T) {
	var calls int
	rt := httpClientRT(rtFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader("{x")), Header: make(http.Header), Request: r}, nil
	}))
	var out map[string]any
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	c := &Client{HTTP: rt}
	if err := c.DoJSON(context.Background(), req, &out); err == nil {
		t.Fatalf("expected decode error")
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDoJSON_SetsAuthHeader(t *testing.T) {
	var got string
	rt := httpClientRT(rtFunc(func(r *http.Request) (*http.Response, error) {
		got = r.Header.Get("Authorization")
		return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(`{}`)), Header: make(http.Header), Request: r}, nil
	}))
	var out map[string]any
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	c := &Client{HTTP: rt, AuthHeader: "apikey t0ken"}
	if err := c.DoJSON(context.Background(), req, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "apikey t0ken" {
		t.Fatalf("expected apikey header, got %q", got)
	}
}
