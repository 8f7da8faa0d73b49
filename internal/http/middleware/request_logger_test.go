package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/careloop/hospital-scheduler/pkg/logging"
)

func TestRequestLoggerCallsNext(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})

	handler := RequestLogger(logging.Default())(next)

	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	req.Header.Set("X-Request-ID", "req-1")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if !called {
		t.Fatalf("wrapped handler was not invoked")
	}
	if rr.Code != http.StatusTeapot {
		t.Fatalf("middleware must pass the response through, got %d", rr.Code)
	}
}

func TestRequestLoggerNilLogger(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler := RequestLogger(nil)(next)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
}
