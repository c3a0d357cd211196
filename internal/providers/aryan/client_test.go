package aryan

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestDescribeURLSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("imageUrl"); got != "http://example.com/a.jpg?x=1&y=2" {
			t.Errorf("imageUrl = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "prompt": " a red bicycle ", "author": "ignored"}`))
	}))
	defer ts.Close()

	client := NewClient(Options{Endpoint: ts.URL + "/aryan/promptv2"})
	got, err := client.DescribeURL(context.Background(), "http://example.com/a.jpg?x=1&y=2")
	if err != nil {
		t.Fatalf("DescribeURL error: %v", err)
	}
	if got != "a red bicycle" {
		t.Fatalf("prompt = %q", got)
	}
}

func TestDescribeURLSoftFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "success without text", status: 200, body: `{"success": true}`, want: ErrNoPrompt},
		{name: "empty prompt", status: 200, body: `{"prompt": "   "}`, want: ErrNoPrompt},
		{name: "html", status: 200, body: `<html>oops</html>`, want: ErrMalformed},
		{name: "array", status: 200, body: `["x"]`, want: ErrMalformed},
		{name: "prompt wrong type", status: 200, body: `{"prompt": 12}`, want: ErrMalformed},
		{name: "server error", status: 502, body: `{"prompt": "x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			_, err := NewClient(Options{Endpoint: ts.URL}).DescribeURL(context.Background(), "http://example.com/a.jpg")
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if tt.want == nil {
				var se *StatusError
				if !errors.As(err, &se) || se.Code != tt.status {
					t.Fatalf("expected StatusError %d, got %v", tt.status, err)
				}
			}
		})
	}
}

func TestDescribeURLBlockInsecure(t *testing.T) {
	called := false
	client := NewClient(Options{
		BlockInsecure: true,
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			called = true
			return nil, errors.New("unreachable")
		})},
	})
	if _, err := client.DescribeURL(context.Background(), "https://example.com/a.jpg"); !errors.Is(err, ErrInsecureBlocked) {
		t.Fatalf("expected ErrInsecureBlocked, got %v", err)
	}
	if called {
		t.Fatal("transport must not be used when insecure endpoints are blocked")
	}
}

func TestDescribeURLHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := NewClient(Options{HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return nil, r.Context().Err()
	})}})
	if _, err := client.DescribeURL(ctx, "http://example.com/a.jpg"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParseResponseDefaultEndpoint(t *testing.T) {
	if NewClient(Options{}).Endpoint() != DefaultEndpoint {
		t.Fatal("default endpoint not applied")
	}
	res, err := ParseResponse([]byte(`{"success": false, "prompt": "still text"}`))
	if err != nil {
		t.Fatalf("ParseResponse error: %v", err)
	}
	if text, ok := res.Usable(); !ok || text != "still text" {
		t.Fatalf("Usable = %q, %v", text, ok)
	}
	if res.Success == nil || *res.Success {
		t.Fatal("success flag not captured")
	}
}
