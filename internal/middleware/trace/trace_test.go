package trace

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"notare/internal/log"
)

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Output: &buf, Format: "json", Component: "test"})

	var seenID string
	var scoped *log.Logger
	m := NewMiddleware(logger, func(*http.Request) string { return "203.0.113.9" })
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		scoped = log.FromContext(r.Context())
		if r.URL.Path == "/boom" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks", nil))

	if !strings.HasPrefix(seenID, "req_") || len(seenID) != len("req_")+16 {
		t.Errorf("request id = %q", seenID)
	}
	if rec.Header().Get(HeaderRequestID) != seenID {
		t.Errorf("%s header = %q, want %q", HeaderRequestID, rec.Header().Get(HeaderRequestID), seenID)
	}
	if scoped == nil || scoped.Logger == logger.Logger {
		t.Error("handler should see a request-scoped logger")
	}
	if !strings.Contains(buf.String(), `"HTTP request completed"`) || !strings.Contains(buf.String(), `"status_code":200`) {
		t.Errorf("completion not logged: %s", buf.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if !strings.Contains(buf.String(), `"level":"ERROR"`) {
		t.Error("5xx completion should log at error level")
	}

	metrics := m.GetMetrics()
	if metrics.TotalRequests != 2 || metrics.FailedRequests != 1 {
		t.Errorf("metrics = %+v", metrics)
	}
}

func TestGetRequestIDMissing(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetRequestID(r.Context()); got != "" {
		t.Errorf("GetRequestID() = %q, want empty", got)
	}
}
