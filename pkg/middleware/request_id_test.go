package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestIDGenerated(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	})

	rec := httptest.NewRecorder()
	RequestID(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Fatal("no request ID on context")
	}
	if len(seen) != 16 {
		t.Errorf("request ID %q has length %d, want 16", seen, len(seen))
	}
	if got := rec.Header().Get("X-Request-ID"); got != seen {
		t.Errorf("response header %q != context ID %q", got, seen)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "caller-supplied-id")
	rec := httptest.NewRecorder()
	RequestID(next).ServeHTTP(rec, req)

	if seen != "caller-supplied-id" {
		t.Errorf("context ID = %q, want caller-supplied-id", seen)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "caller-supplied-id" {
		t.Errorf("response header = %q, want caller-supplied-id", got)
	}
}

func TestGetRequestIDEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetRequestID(req.Context()); got != "" {
		t.Errorf("GetRequestID on bare context = %q, want empty", got)
	}
}
