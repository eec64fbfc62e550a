package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"notare/internal/calendar"
	"notare/internal/core"
	"notare/internal/stats"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(health)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})
	fail := func(name string, detail string) {
		checks[name] = detail
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	if s.templates == nil {
		fail("templates", "failed: templates not loaded")
	} else {
		checks["templates"] = "ok"
	}

	if s.ping != nil {
		if err := s.ping(ctx); err != nil {
			fail("store", fmt.Sprintf("failed: %v", err))
		} else {
			checks["store"] = "ok"
		}
	} else {
		checks["store"] = "not_checked"
	}

	checks["cache"] = map[string]interface{}{
		"lookup_entries": s.journal.LookupCache().Size(),
		"status":         "ok",
	}
	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}
	if s.chat != nil {
		checks["chat"] = map[string]interface{}{
			"sessions": s.chat.Len(),
			"status":   "ok",
		}
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}

	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(response)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()

	chatSessions := 0
	if s.chat != nil {
		chatSessions = s.chat.Len()
	}

	w.WriteHeader(http.StatusOK)

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
		fmt.Fprintf(w, "%s %v\n\n", name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_requests_failed_total", "counter", "HTTP requests answered with a 5xx status", traceMetrics.FailedRequests)
	metric("http_response_time_avg_microseconds", "gauge", "Average response time", traceMetrics.AverageResponseTime)
	metric("journal_writes_total", "counter", "Journal records written through the UI", s.appMetrics.writes.Load())
	metric("journal_write_errors_total", "counter", "Rejected or failed journal writes", s.appMetrics.writeErrors.Load())
	metric("chat_messages_total", "counter", "Chat messages submitted", s.appMetrics.chatMessages.Load())
	metric("chat_sessions", "gauge", "Open chat sessions", chatSessions)
	lookups := s.journal.LookupCache()
	lookupStats := lookups.Stats()
	metric("calendar_lookup_cache_entries", "gauge", "Cached calendar lookups", lookups.Size())
	metric("calendar_lookup_cache_hits_total", "counter", "Calendar lookups served from cache", lookupStats.Hits)
	metric("calendar_lookup_cache_misses_total", "counter", "Calendar lookups rebuilt from the store", lookupStats.Misses)
	metric("rate_limit_hits_total", "counter", "Total rate limited requests counted", rateLimitMetrics.TotalHits)
	metric("rate_limit_rejected_total", "counter", "Requests rejected by the rate limiter", rateLimitMetrics.Limited)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", rateLimitMetrics.ClientCount)
	metric("suspicious_requests_total", "counter", "Total suspicious requests detected", securityMetrics.SuspiciousRequests)
	metric("blocked_requests_total", "counter", "Suspicious requests that were blocked", securityMetrics.BlockedRequests)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", int64(time.Since(s.appMetrics.uptime).Seconds()))
}

type indexData struct {
	Today      core.Date
	TodayLabel string
	MoodLevels []core.MoodLevel
	Priorities []core.Priority
	Categories []core.Category
	EntryTypes []core.EntryType
	CommonTags []string
	Presets    []stats.DatePreset
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Página não encontrada").Write(w)
		return
	}
	if resp := RequireMethod(r, http.MethodGet, http.MethodHead); resp != nil {
		resp.Write(w)
		return
	}

	today := s.journal.Today()
	data := indexData{
		Today:      today,
		TodayLabel: calendar.FormatLong(today),
		MoodLevels: core.MoodLevels(),
		Priorities: []core.Priority{core.PriorityHigh, core.PriorityMedium, core.PriorityLow},
		Categories: core.Categories(),
		EntryTypes: core.EntryTypes(),
		CommonTags: core.CommonTags,
		Presets:    stats.Presets(),
	}
	s.render(w, r, "index.html", data, nil)
}

// recordWrite counts a UI write for /metrics.
func (s *Server) recordWrite(err error) {
	if err != nil {
		s.appMetrics.writeErrors.Add(1)
		return
	}
	s.appMetrics.writes.Add(1)
}
