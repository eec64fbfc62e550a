package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func decodeTriggers(t *testing.T, w *httptest.ResponseRecorder) map[string]map[string]any {
	t.Helper()
	raw := w.Header().Get("HX-Trigger")
	if raw == "" {
		t.Fatal("HX-Trigger header not set")
	}
	var events map[string]map[string]any
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		t.Fatalf("HX-Trigger is not a JSON object: %v (%s)", err, raw)
	}
	return events
}

func TestHTMXResponseBuilder_TaskWrite(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerTaskCreated("task-9").
		TriggerCalendarRefresh("2024-01-15").
		TriggerFormReset().
		TriggerSuccessNotification("Tarefa adicionada").
		BodyHTML(`<ul class="tasks"></ul>`).
		Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Body.String() != `<ul class="tasks"></ul>` {
		t.Errorf("body = %q", w.Body.String())
	}

	events := decodeTriggers(t, w)
	if events[EventTaskCreated]["id"] != "task-9" {
		t.Errorf("task:created = %v", events[EventTaskCreated])
	}
	if events[EventCalendarRefresh]["date"] != "2024-01-15" {
		t.Errorf("calendar:refresh = %v", events[EventCalendarRefresh])
	}
	if _, ok := events[EventFormReset]; !ok {
		t.Error("form:reset missing")
	}
	toast := events[EventNotification]
	if toast["type"] != "success" || toast["message"] != "Tarefa adicionada" || toast["duration"] != float64(3000) {
		t.Errorf("show-notification = %v", toast)
	}
}

func TestHTMXResponseBuilder_JournalEvents(t *testing.T) {
	tests := []struct {
		name  string
		build func(*HTMXResponseBuilder) *HTMXResponseBuilder
		event string
		want  map[string]any
	}{
		{
			name:  "toggle",
			build: func(b *HTMXResponseBuilder) *HTMXResponseBuilder { return b.TriggerTaskToggled("task-2", true) },
			event: EventTaskToggled,
			want:  map[string]any{"id": "task-2", "completed": true},
		},
		{
			name:  "mood",
			build: func(b *HTMXResponseBuilder) *HTMXResponseBuilder { return b.TriggerMoodRecorded("2024-01-15") },
			event: EventMoodRecorded,
			want:  map[string]any{"date": "2024-01-15"},
		},
		{
			name:  "entry",
			build: func(b *HTMXResponseBuilder) *HTMXResponseBuilder { return b.TriggerEntryCreated("entry-4", "2024-01-12") },
			event: EventEntryCreated,
			want:  map[string]any{"id": "entry-4", "date": "2024-01-12"},
		},
		{
			name:  "undated refresh",
			build: func(b *HTMXResponseBuilder) *HTMXResponseBuilder { return b.TriggerCalendarRefresh("") },
			event: EventCalendarRefresh,
			want:  map[string]any{"date": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.build(NewHTMXResponse()).Write(w)

			got := decodeTriggers(t, w)[tt.event]
			if len(got) != len(tt.want) {
				t.Fatalf("%s = %v, want %v", tt.event, got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s[%s] = %v, want %v", tt.event, k, got[k], v)
				}
			}
		})
	}
}

func TestHTMXResponseBuilder_NoTriggersNoHeader(t *testing.T) {
	w := httptest.NewRecorder()
	NewHTMXResponse().Header("Cache-Control", "no-store").Write(w)

	if _, ok := w.Header()["Hx-Trigger"]; ok {
		t.Error("HX-Trigger should be absent without events")
	}
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q", w.Header().Get("Cache-Control"))
	}
	if w.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", w.Body.String())
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name string
		resp *HTMXResponseBuilder
		code int
	}{
		{"bad request", BadRequestError("Filtro inválido"), http.StatusBadRequest},
		{"unprocessable", UnprocessableEntityError("Filtro inválido"), http.StatusUnprocessableEntity},
		{"not found", NotFoundError("Filtro inválido"), http.StatusNotFound},
		{"internal", InternalServerError("Filtro inválido"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.resp.Write(w)

			if w.Code != tt.code {
				t.Errorf("status = %d, want %d", w.Code, tt.code)
			}
			if w.Body.String() != `<div class="error">Filtro inválido</div>` {
				t.Errorf("body = %q", w.Body.String())
			}
			toast := decodeTriggers(t, w)[EventNotification]
			if toast["type"] != "error" || toast["message"] != "Filtro inválido" {
				t.Errorf("error toast = %v", toast)
			}
		})
	}
}

func TestErrorResponse_EscapesHTML(t *testing.T) {
	w := httptest.NewRecorder()
	UnprocessableEntityError(`<script>alert("x")</script>`).Write(w)

	body := w.Body.String()
	if strings.Contains(body, "<script>") {
		t.Errorf("message not escaped: %s", body)
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Errorf("expected escaped markup, got %s", body)
	}
}

func TestMethodNotAllowedError(t *testing.T) {
	w := httptest.NewRecorder()
	MethodNotAllowedError("GET, POST").Write(w)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
	if w.Header().Get("Allow") != "GET, POST" {
		t.Errorf("Allow = %q", w.Header().Get("Allow"))
	}
	if w.Body.Len() != 0 {
		t.Errorf("405 should have no body, got %q", w.Body.String())
	}
}
