package http

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"
	"time"

	"notare/internal/calendar"
	"notare/internal/core"
	"notare/internal/log"
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"dateKey":   func(d core.Date) string { return d.Key() },
		"longDate":  calendar.FormatLong,
		"monthName": calendar.MonthName,
		"clock":     func(t time.Time) string { return t.Format("15:04") },
		"join":      strings.Join,
		"moodLabel": func(m core.MoodLevel) string { return m.Label() },
		"moodClass": func(m core.MoodLevel) string {
			if m == "" {
				return ""
			}
			return "mood-" + string(m)
		},
		"priorityLabel":  func(p core.Priority) string { return p.Label() },
		"categoryLabel":  func(c core.Category) string { return c.Label() },
		"entryTypeLabel": func(t core.EntryType) string { return t.Label() },
		"overdue":        func(t core.Task, today core.Date) bool { return t.IsOverdue(today) },
		"isUser":         func(m core.ChatMessage) bool { return m.Role == core.RoleUser },
	}
}

// render executes the named template and writes it through b, which may
// already carry triggers. A template failure becomes a 500 so a partial is
// never half written.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any, b *HTMXResponseBuilder) {
	if s.templates == nil {
		s.requestLogger(r).ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path,
			log.FieldErrorType, log.ErrorTypeConfiguration)
		InternalServerError("Modelos não carregados").Write(w)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.requestLogger(r).ErrorContext(r.Context(), "Template execution failed",
			"template", name,
			log.FieldOperation, log.OpRender,
			"error", err)
		InternalServerError("Erro ao renderizar").Write(w)
		return
	}

	if b == nil {
		b = NewHTMXResponse()
	}
	b.BodyHTML(buf.String()).Write(w)
}
