package http

import (
	"errors"
	"net/http"
	"strings"

	"notare/internal/chat"
	"notare/internal/core"
	"notare/internal/journal"
	"notare/internal/services"
	"notare/internal/stats"
)

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// userMessages maps validation failures to the text shown in the UI.
var userMessages = []struct {
	err error
	msg string
}{
	{core.ErrEmptyTitle, "Informe um título"},
	{core.ErrEmptyContent, "Escreva algo antes de salvar"},
	{core.ErrTitleTooLong, "Título muito longo"},
	{core.ErrContentTooLong, "Texto muito longo"},
	{core.ErrInvalidMoodLevel, "Humor inválido"},
	{core.ErrInvalidPriority, "Prioridade inválida"},
	{core.ErrInvalidCategory, "Categoria inválida"},
	{core.ErrInvalidDueTime, "Horário inválido, use HH:MM"},
	{core.ErrInvalidEntryType, "Tipo de entrada inválido"},
	{core.ErrInvalidViewMode, "Modo de visualização inválido"},
	{core.ErrInvalidDate, "Data inválida"},
	{core.ErrZeroDate, "Informe uma data"},
	{core.ErrInvalidRepetition, "Repetição inválida"},
	{core.ErrMissingRRule, "Informe a regra de repetição"},
	{stats.ErrInvalidPreset, "Período inválido"},
	{stats.ErrInvalidTaskStatus, "Status de tarefa inválido"},
	{stats.ErrInvalidPeriod, "Período inválido"},
}

// userMessage returns the UI text for a validation error. Errors without a
// mapping get a generic message so internal details never reach the page.
func userMessage(err error) string {
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return "Dados inválidos"
}

// writeError maps service errors to HTMX error responses. Only unexpected
// failures are logged at error level.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		UnprocessableEntityError(userMessage(err)).Write(w)
	case errors.Is(err, journal.ErrNotFound):
		NotFoundError("Registro não encontrado").Write(w)
	case errors.Is(err, chat.ErrClosed):
		ErrorResponse(http.StatusServiceUnavailable, "Conversa encerrada").Write(w)
	default:
		s.requestLogger(r).ErrorContext(r.Context(), "Request failed",
			"operation", operation,
			"error", err)
		InternalServerError("Erro interno, tente novamente").Write(w)
	}
}
