// Package http serves the journal dashboard: full pages, HTMX partials
// and the operational endpoints.
package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// Client-side events announced through HX-Trigger. The dashboard script and
// the hx-trigger attributes of the panels listen for these names.
const (
	EventTaskCreated     = "task:created"
	EventTaskToggled     = "task:toggled"
	EventMoodRecorded    = "mood:recorded"
	EventEntryCreated    = "entry:created"
	EventCalendarRefresh = "calendar:refresh"
	EventFormReset       = "form:reset"
	EventNotification    = "show-notification"
)

// HTMXResponseBuilder collects the status, headers, HX-Trigger events and
// body of a partial response.
type HTMXResponseBuilder struct {
	triggers   map[string]any
	statusCode int
	body       []byte
	headers    http.Header
}

func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]any),
		statusCode: http.StatusOK,
		headers:    make(http.Header),
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers.Set(name, value)
	return b
}

func (b *HTMXResponseBuilder) trigger(event string, detail any) *HTMXResponseBuilder {
	b.triggers[event] = detail
	return b
}

func (b *HTMXResponseBuilder) TriggerTaskCreated(id string) *HTMXResponseBuilder {
	return b.trigger(EventTaskCreated, map[string]string{"id": id})
}

func (b *HTMXResponseBuilder) TriggerTaskToggled(id string, completed bool) *HTMXResponseBuilder {
	return b.trigger(EventTaskToggled, map[string]any{"id": id, "completed": completed})
}

func (b *HTMXResponseBuilder) TriggerMoodRecorded(date string) *HTMXResponseBuilder {
	return b.trigger(EventMoodRecorded, map[string]string{"date": date})
}

func (b *HTMXResponseBuilder) TriggerEntryCreated(id, date string) *HTMXResponseBuilder {
	return b.trigger(EventEntryCreated, map[string]string{"id": id, "date": date})
}

// TriggerCalendarRefresh asks the calendar panels to reload. date is empty
// for undated writes, which leaves the visible period alone.
func (b *HTMXResponseBuilder) TriggerCalendarRefresh(date string) *HTMXResponseBuilder {
	return b.trigger(EventCalendarRefresh, map[string]string{"date": date})
}

func (b *HTMXResponseBuilder) TriggerFormReset() *HTMXResponseBuilder {
	return b.trigger(EventFormReset, struct{}{})
}

type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

// TriggerNotification shows a toast for durationMs.
func (b *HTMXResponseBuilder) TriggerNotification(kind NotificationType, message string, durationMs int) *HTMXResponseBuilder {
	return b.trigger(EventNotification, map[string]any{
		"type":     string(kind),
		"message":  message,
		"duration": durationMs,
	})
}

func (b *HTMXResponseBuilder) TriggerSuccessNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationSuccess, message, 3000)
}

// BodyHTML sets an HTML body. The content is written as is.
func (b *HTMXResponseBuilder) BodyHTML(html string) *HTMXResponseBuilder {
	b.headers.Set("Content-Type", "text/html; charset=utf-8")
	b.body = []byte(html)
	return b
}

func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, values := range b.headers {
		w.Header()[name] = values
	}
	if len(b.triggers) > 0 {
		if events, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(events))
		}
	}

	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse renders message, escaped, in the error box the panels
// swap in. Errors also raise an error toast.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(statusCode).
		TriggerNotification(NotificationError, message, 5000).
		BodyHTML(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`)
}

func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnprocessableEntityError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

func NotFoundError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// MethodNotAllowedError answers 405 with the Allow header and no body.
func MethodNotAllowedError(allowedMethods string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(http.StatusMethodNotAllowed).
		Header("Allow", allowedMethods)
}
