package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"notare/internal/chat"
	"notare/internal/journal/memory"
	"notare/internal/log"
	"notare/internal/seed"
	"notare/internal/services"
)

var monday = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// manualTimers collects scheduled chat replies so tests decide when they fire.
type manualTimers struct {
	mu  sync.Mutex
	fns []func()
}

type manualTimer struct{}

func (manualTimer) Stop() bool { return true }

func (m *manualTimers) schedule(_ time.Duration, f func()) chat.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fns = append(m.fns, f)
	return manualTimer{}
}

func (m *manualTimers) fireAll() {
	m.mu.Lock()
	fns := m.fns
	m.fns = nil
	m.mu.Unlock()
	for _, f := range fns {
		f()
	}
}

type testEnv struct {
	srv    *Server
	timers *manualTimers
}

func newTestServer(t *testing.T, mutate func(*Deps)) *testEnv {
	t.Helper()

	store := memory.New()
	ds, err := seed.Default()
	if err != nil {
		t.Fatalf("seed.Default() error = %v", err)
	}
	if err := seed.Apply(context.Background(), store, ds); err != nil {
		t.Fatalf("seed.Apply() error = %v", err)
	}

	logger := log.New(log.Config{Output: io.Discard})
	svc := services.NewJournalService(store,
		services.WithClock(func() time.Time { return monday }),
		services.WithLogger(logger),
	)

	timers := &manualTimers{}
	hub := chat.NewHub(chat.Config{
		Replier:  chat.ReplierFunc(func(string) string { return "Conte-me mais sobre isso." }),
		Schedule: timers.schedule,
		Now:      func() time.Time { return monday },
	}, nil, time.Hour)

	deps := Deps{Journal: svc, Chat: hub, Logger: logger}
	if mutate != nil {
		mutate(&deps)
	}
	srv := NewServer(":0", deps)
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
		hub.Close()
	})
	return &testEnv{srv: srv, timers: timers}
}

func (e *testEnv) do(method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestIndexAndHealth(t *testing.T) {
	env := newTestServer(t, nil)

	rr := env.do(http.MethodGet, "/", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("index status = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"notare", "segunda-feira, 15 de janeiro", `hx-get="/ui/calendar"`, "#gratidão"} {
		if !strings.Contains(body, want) {
			t.Errorf("index body missing %q", want)
		}
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := env.do(http.MethodGet, path, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rr.Code)
		}
		var payload map[string]any
		if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
			t.Fatalf("%s body is not JSON: %v", path, err)
		}
	}

	if rr := env.do(http.MethodGet, "/nope", nil); rr.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d, want 404", rr.Code)
	}
	if rr := env.do(http.MethodPost, "/", nil); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST / status = %d, want 405", rr.Code)
	}
}

func TestReadyReportsStoreFailure(t *testing.T) {
	env := newTestServer(t, func(d *Deps) {
		d.Ping = func(context.Context) error { return errors.New("database is locked") }
	})

	rr := env.do(http.MethodGet, "/readyz", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status = %d, want 503", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "not_ready") {
		t.Errorf("readyz body = %s", rr.Body.String())
	}
}

func TestMissingTemplates(t *testing.T) {
	env := newTestServer(t, nil)
	env.srv.templates = nil

	if rr := env.do(http.MethodGet, "/", nil); rr.Code != http.StatusInternalServerError {
		t.Errorf("index status = %d, want 500", rr.Code)
	}
	if rr := env.do(http.MethodGet, "/readyz", nil); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz status = %d, want 503", rr.Code)
	}
}

func TestMiddlewareHeaders(t *testing.T) {
	env := newTestServer(t, nil)

	rr := env.do(http.MethodGet, "/tasks", nil)
	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
	if got := rr.Header().Get("X-Request-ID"); !strings.HasPrefix(got, "req_") {
		t.Errorf("X-Request-ID = %q", got)
	}
	if got := rr.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}

	rr = env.do(http.MethodGet, "/static/app.css", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("static status = %d", rr.Code)
	}
	if got := rr.Header().Get("Cache-Control"); !strings.Contains(got, "max-age=3600") {
		t.Errorf("static Cache-Control = %q", got)
	}

	if rr := env.do(http.MethodGet, "/.env", nil); rr.Code != http.StatusBadRequest {
		t.Errorf("probe path status = %d, want 400", rr.Code)
	}
}

func TestCalendarPartial(t *testing.T) {
	env := newTestServer(t, nil)

	rr := env.do(http.MethodGet, "/ui/calendar?date=2024-01-15", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("calendar status = %d: %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	for _, want := range []string{"janeiro 2024", "Conversa importante", "Revisar relatório mensal", "day today"} {
		if !strings.Contains(body, want) {
			t.Errorf("calendar missing %q", want)
		}
	}

	rr = env.do(http.MethodGet, "/ui/calendar?date=2024-01-15&nav=next", nil)
	if !strings.Contains(rr.Body.String(), "fevereiro 2024") {
		t.Errorf("next month title missing")
	}

	rr = env.do(http.MethodGet, "/ui/calendar?date=9998-12-01&nav=next", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "dezembro 9998") {
		t.Errorf("nav=next at the last month = %d, want it to stay on dezembro 9998", rr.Code)
	}

	// The selection survives navigation and keeps its own events.
	rr = env.do(http.MethodGet, "/ui/calendar?date=2024-01-15&selected=2024-01-15&nav=next", nil)
	body = rr.Body.String()
	if !strings.Contains(body, "segunda-feira, 15 de janeiro") || !strings.Contains(body, "Reflexão matinal") {
		t.Errorf("selected day lost its events after nav=next: %s", body)
	}
	if strings.Contains(body, "Nada registrado neste dia.") {
		t.Error("selected day reported as empty after nav=next")
	}

	rr = env.do(http.MethodGet, "/ui/calendar?date=2024-01-15&mode=week&selected=2024-01-17", nil)
	body = rr.Body.String()
	if !strings.Contains(body, "14 a 20 de janeiro de 2024") {
		t.Errorf("week title missing: %s", body)
	}
	if !strings.Contains(body, "quarta-feira, 17 de janeiro") {
		t.Errorf("selected day detail missing")
	}

	tests := []struct {
		name  string
		query string
	}{
		{"bad date", "date=15-01-2024"},
		{"bad mode", "mode=year"},
		{"bad nav", "nav=sideways"},
		{"bad selected", "selected=ontem"},
		{"reference past the last year", "date=9999-12-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := env.do(http.MethodGet, "/ui/calendar?"+tt.query, nil); rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rr.Code)
			}
		})
	}
}

func TestMiniCalendar(t *testing.T) {
	env := newTestServer(t, nil)

	rr := env.do(http.MethodGet, "/ui/mini-calendar?year=2024&month=1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("mini calendar status = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"janeiro 2024", "mood-positive", "mood-negative", "year=2024&amp;month=2", "year=2023&amp;month=12"} {
		if !strings.Contains(body, want) {
			t.Errorf("mini calendar missing %q", want)
		}
	}
}

func TestCreateTask(t *testing.T) {
	env := newTestServer(t, nil)

	tests := []struct {
		name       string
		form       url.Values
		wantStatus int
		wantBody   string
	}{
		{"blank title", url.Values{"title": {"  "}}, http.StatusUnprocessableEntity, "Informe um título"},
		{"bad priority", url.Values{"title": {"x"}, "priority": {"urgent"}}, http.StatusUnprocessableEntity, "Prioridade inválida"},
		{"bad due time", url.Values{"title": {"x"}, "due_time": {"25:00"}}, http.StatusUnprocessableEntity, "Horário inválido"},
		{"bad date", url.Values{"title": {"x"}, "date": {"amanhã"}}, http.StatusUnprocessableEntity, "Data inválida"},
		{"created", url.Values{"title": {"Comprar flores"}, "priority": {"low"}, "date": {"2024-01-16"}}, http.StatusOK, "Comprar flores"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(http.MethodPost, "/tasks", tt.form)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if !strings.Contains(rr.Body.String(), tt.wantBody) {
				t.Errorf("body missing %q: %s", tt.wantBody, rr.Body.String())
			}
		})
	}

	rr := env.do(http.MethodPost, "/tasks", url.Values{"title": {"<b>Ligar</b>"}})
	trigger := rr.Header().Get("HX-Trigger")
	for _, want := range []string{"task:created", "form:reset", "show-notification"} {
		if !strings.Contains(trigger, want) {
			t.Errorf("HX-Trigger missing %q: %s", want, trigger)
		}
	}
	if strings.Contains(rr.Body.String(), "<b>Ligar</b>") {
		t.Error("task title was not escaped")
	}

	if rr := env.do(http.MethodPut, "/tasks", nil); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("PUT /tasks status = %d, want 405", rr.Code)
	}
}

func TestListTasksFilter(t *testing.T) {
	env := newTestServer(t, nil)

	rr := env.do(http.MethodGet, "/tasks?filter=completed", nil)
	body := rr.Body.String()
	if !strings.Contains(body, "Meditação matinal") || strings.Contains(body, "Revisar relatório") {
		t.Errorf("completed filter body = %s", body)
	}
	if !strings.Contains(body, "1 de 5 concluídas") {
		t.Errorf("counts missing from body")
	}

	if rr := env.do(http.MethodGet, "/tasks?filter=someday", nil); rr.Code != http.StatusBadRequest {
		t.Errorf("bad filter status = %d, want 400", rr.Code)
	}
}

func TestToggleTask(t *testing.T) {
	env := newTestServer(t, nil)

	rr := env.do(http.MethodPost, "/tasks/toggle", url.Values{"id": {"task-2"}, "filter": {"completed"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("toggle status = %d: %s", rr.Code, rr.Body.String())
	}
	trigger := rr.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, `"task:toggled"`) || !strings.Contains(trigger, `"completed":true`) {
		t.Errorf("HX-Trigger = %s", trigger)
	}
	if !strings.Contains(trigger, `"calendar:refresh"`) {
		t.Errorf("HX-Trigger missing calendar:refresh: %s", trigger)
	}
	if !strings.Contains(rr.Body.String(), "Revisar relatório mensal") {
		t.Error("toggled task should be listed under the completed filter")
	}

	if rr := env.do(http.MethodPost, "/tasks/toggle", url.Values{"id": {"missing"}}); rr.Code != http.StatusNotFound {
		t.Errorf("missing task status = %d, want 404", rr.Code)
	}
	if rr := env.do(http.MethodPost, "/tasks/toggle", url.Values{}); rr.Code != http.StatusBadRequest {
		t.Errorf("no id status = %d, want 400", rr.Code)
	}
	if rr := env.do(http.MethodGet, "/tasks/toggle", nil); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET toggle status = %d, want 405", rr.Code)
	}
}

func TestMoods(t *testing.T) {
	env := newTestServer(t, nil)

	rr := env.do(http.MethodGet, "/moods", nil)
	if !strings.Contains(rr.Body.String(), "Positivo 60%") {
		t.Errorf("mood breakdown missing: %s", rr.Body.String())
	}

	rr = env.do(http.MethodPost, "/moods", url.Values{"level": {"amazing"}, "note": {"Viagem"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("record mood status = %d: %s", rr.Code, rr.Body.String())
	}
	if trigger := rr.Header().Get("HX-Trigger"); !strings.Contains(trigger, `"mood:recorded"`) || !strings.Contains(trigger, "2024-01-15") {
		t.Errorf("HX-Trigger = %s", trigger)
	}
	if !strings.Contains(rr.Body.String(), "Viagem") {
		t.Error("new mood missing from history")
	}

	if rr := env.do(http.MethodPost, "/moods", url.Values{"level": {"meh"}}); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad level status = %d, want 422", rr.Code)
	}
}

func TestEntries(t *testing.T) {
	env := newTestServer(t, nil)

	rr := env.do(http.MethodPost, "/entries", url.Values{
		"content": {"Caminhada no parque"},
		"type":    {"gratitude"},
		"tag":     {"saúde"},
		"tags":    {"natureza, Saúde"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("create entry status = %d: %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Caminhada no parque") || !strings.Contains(body, "#natureza") {
		t.Errorf("new entry missing from list: %s", body)
	}
	if strings.Count(body, "#saúde</span>") != 1 {
		t.Error("tags should be deduplicated")
	}
	if trigger := rr.Header().Get("HX-Trigger"); !strings.Contains(trigger, `"entry:created"`) {
		t.Errorf("HX-Trigger = %s", trigger)
	}

	rr = env.do(http.MethodGet, "/entries?tag=amizade", nil)
	body = rr.Body.String()
	if !strings.Contains(body, "conversa profunda") || strings.Contains(body, "Caminhada no parque") {
		t.Errorf("tag filter body = %s", body)
	}

	if rr := env.do(http.MethodPost, "/entries", url.Values{"content": {" "}}); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("blank entry status = %d, want 422", rr.Code)
	}
	if rr := env.do(http.MethodPost, "/entries", url.Values{"content": {"x"}, "type": {"rant"}}); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad type status = %d, want 422", rr.Code)
	}
}

func TestChatConversation(t *testing.T) {
	env := newTestServer(t, nil)

	rr := env.do(http.MethodGet, "/chat", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("chat status = %d", rr.Code)
	}
	var session *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == ChatCookie {
			session = c
		}
	}
	if session == nil || session.Value == "" {
		t.Fatal("chat session cookie not set")
	}

	rr = env.do(http.MethodPost, "/chat", url.Values{"message": {"Hoje foi um bom dia"}}, session)
	if rr.Code != http.StatusOK {
		t.Fatalf("submit status = %d: %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Hoje foi um bom dia") || !strings.Contains(body, "digitando") {
		t.Errorf("submit body = %s", body)
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Error("existing session should not be re-issued")
	}

	env.timers.fireAll()

	body = env.do(http.MethodGet, "/chat", nil, session).Body.String()
	if !strings.Contains(body, "Conte-me mais sobre isso.") {
		t.Errorf("reply missing after timer fired: %s", body)
	}
	if strings.Contains(body, "digitando") {
		t.Error("typing indicator should clear after the reply")
	}

	if rr := env.do(http.MethodPost, "/chat", url.Values{"message": {"  "}}, session); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("blank message status = %d, want 422", rr.Code)
	}
}

func TestChatReissuesForgedSession(t *testing.T) {
	env := newTestServer(t, nil)

	forged := &http.Cookie{Name: ChatCookie, Value: "escolhido-pelo-cliente"}
	rr := env.do(http.MethodGet, "/chat", nil, forged)
	if rr.Code != http.StatusOK {
		t.Fatalf("chat status = %d", rr.Code)
	}
	var issued string
	for _, c := range rr.Result().Cookies() {
		if c.Name == ChatCookie {
			issued = c.Value
		}
	}
	if issued == "" || issued == forged.Value {
		t.Fatalf("issued session = %q, want a fresh id", issued)
	}
	if _, err := uuid.Parse(issued); err != nil {
		t.Errorf("issued session %q is not a UUID: %v", issued, err)
	}
}

func TestChatDisabled(t *testing.T) {
	env := newTestServer(t, func(d *Deps) { d.Chat = nil })
	if rr := env.do(http.MethodGet, "/chat", nil); rr.Code != http.StatusNotFound {
		t.Errorf("chat status = %d, want 404", rr.Code)
	}
}

func TestReports(t *testing.T) {
	env := newTestServer(t, nil)

	rr := env.do(http.MethodGet, "/reports?preset=custom&start=2024-01-01&end=2024-01-31", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("report status = %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "1 de 5 concluídas") {
		t.Errorf("report summary missing: %s", rr.Body.String())
	}

	rr = env.do(http.MethodGet, "/reports?preset=custom&start=2024-01-01&end=2024-01-31&category=work&mood=negative", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "0 de 1 concluídas") {
		t.Errorf("filtered report = %d %s", rr.Code, rr.Body.String())
	}

	tests := []struct {
		name  string
		query string
	}{
		{"bad preset", "preset=forever"},
		{"reversed range", "preset=custom&start=2024-02-01&end=2024-01-01"},
		{"range over a year", "preset=custom&start=2024-01-01&end=2025-01-01"},
		{"bad mood", "mood=ecstatic"},
		{"bad status", "status=lost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := env.do(http.MethodGet, "/reports?"+tt.query, nil); rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rr.Code)
			}
		})
	}
}

func TestReportExport(t *testing.T) {
	env := newTestServer(t, nil)
	query := "preset=custom&start=2024-01-01&end=2024-01-31"

	rr := env.do(http.MethodGet, "/reports/export?format=csv&"+query, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("csv status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("csv Content-Type = %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "relatorio-notare-2024-01-15.csv") {
		t.Errorf("csv Content-Disposition = %q", cd)
	}
	if !strings.Contains(rr.Body.String(), "total_tarefas,5") {
		t.Errorf("csv body = %s", rr.Body.String())
	}

	rr = env.do(http.MethodGet, "/reports/export?format=ics&"+query, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("ics status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("ics Content-Type = %q", ct)
	}
	if !strings.Contains(rr.Body.String(), "BEGIN:VCALENDAR") {
		t.Error("ics body missing VCALENDAR")
	}

	if rr := env.do(http.MethodGet, "/reports/export?format=pdf", nil); rr.Code != http.StatusBadRequest {
		t.Errorf("pdf status = %d, want 400", rr.Code)
	}

	rr = env.do(http.MethodGet, "/reports/export?format=ics&preset=custom&start=2024-01-01&end=2524-12-31", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("five century ics status = %d, want 400", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "366 dias") {
		t.Errorf("range error body = %s", rr.Body.String())
	}
}

func TestProgress(t *testing.T) {
	env := newTestServer(t, nil)

	rr := env.do(http.MethodGet, "/progress?period=month", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("progress status = %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "em 30 dias") {
		t.Errorf("progress body = %s", rr.Body.String())
	}

	if rr := env.do(http.MethodGet, "/progress?period=decade", nil); rr.Code != http.StatusBadRequest {
		t.Errorf("bad period status = %d, want 400", rr.Code)
	}
}

func TestRateLimit(t *testing.T) {
	env := newTestServer(t, func(d *Deps) { d.RateLimitPerMinute = 2 })

	for i := 0; i < 2; i++ {
		if rr := env.do(http.MethodGet, "/tasks", nil); rr.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rr.Code)
		}
	}
	rr := env.do(http.MethodGet, "/tasks", nil)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header not set")
	}
	if rr := env.do(http.MethodGet, "/healthz", nil); rr.Code != http.StatusOK {
		t.Errorf("health probe should be exempt, got %d", rr.Code)
	}

	metrics := env.do(http.MethodGet, "/metrics", nil).Body.String()
	for _, want := range []string{"rate_limit_rejected_total 1", "http_requests_total", "chat_sessions 0"} {
		if !strings.Contains(metrics, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestWriteMetrics(t *testing.T) {
	env := newTestServer(t, nil)

	env.do(http.MethodPost, "/tasks", url.Values{"title": {"Regar plantas"}})
	env.do(http.MethodPost, "/tasks", url.Values{"title": {""}})

	metrics := env.do(http.MethodGet, "/metrics", nil).Body.String()
	if !strings.Contains(metrics, "journal_writes_total 1") || !strings.Contains(metrics, "journal_write_errors_total 1") {
		t.Errorf("write metrics = %s", metrics)
	}
}

func TestCalendarCacheMetrics(t *testing.T) {
	env := newTestServer(t, nil)

	for i := 0; i < 2; i++ {
		if rr := env.do(http.MethodGet, "/ui/calendar?date=2024-01-15", nil); rr.Code != http.StatusOK {
			t.Fatalf("calendar status = %d", rr.Code)
		}
	}

	metrics := env.do(http.MethodGet, "/metrics", nil).Body.String()
	for _, want := range []string{
		"calendar_lookup_cache_entries 1",
		"calendar_lookup_cache_hits_total 1",
		"calendar_lookup_cache_misses_total 1",
	} {
		if !strings.Contains(metrics, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	env := newTestServer(t, func(d *Deps) { d.CleanupInterval = time.Hour })
	if err := env.srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := env.srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("second Shutdown() error = %v", err)
	}
}
