package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestJSONFormatCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentChat, Format: "json", Output: &buf})

	logger.Debug("hidden")
	logger.Info("reply scheduled", FieldSession, "abc")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if rec["component"] != ComponentChat || rec[FieldSession] != "abc" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestWithRecordOmitsEmptyDate(t *testing.T) {
	f := NewFields().WithRecord("task", "task-5", "")
	if _, ok := f[FieldRecordDate]; ok {
		t.Errorf("empty date should be omitted: %v", f)
	}
	f = NewFields().WithRecord("mood", "mood-1", "2024-01-15")
	if f[FieldRecordDate] != "2024-01-15" || f[FieldRecordKind] != "mood" {
		t.Errorf("unexpected fields: %v", f)
	}
}

func TestMiddlewareStoresLogger(t *testing.T) {
	if FromContext(context.Background()).Component() != "unknown" {
		t.Errorf("expected fallback logger")
	}

	logger := New(Config{Component: ComponentApp, Output: &bytes.Buffer{}})
	var got *Logger
	h := Middleware(logger)(ComponentMiddleware(ComponentHTTP)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got == nil || got.Component() != ComponentHTTP {
		t.Fatalf("expected http component logger, got %+v", got)
	}
}

func TestWithComponentRebinds(t *testing.T) {
	var buf bytes.Buffer
	app := New(Config{Level: slog.LevelInfo, Component: ComponentApp, Format: "json", Output: &buf})

	chat := app.With(FieldRequestID, "req_1").WithComponent(ComponentChat)
	chat.Info("reply sent")

	line := strings.TrimSpace(buf.String())
	if n := strings.Count(line, `"component"`); n != 1 {
		t.Fatalf("component appears %d times: %s", n, line)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		t.Fatal(err)
	}
	if rec["component"] != ComponentChat || rec[FieldRequestID] != "req_1" {
		t.Errorf("unexpected record: %v", rec)
	}
	if chat.Component() != ComponentChat || app.Component() != ComponentApp {
		t.Errorf("components = %q, %q", chat.Component(), app.Component())
	}
	if chat.WithComponent(ComponentChat) != chat {
		t.Error("rebinding to the same component should be a no-op")
	}
}
