package http

import (
	"context"
	"errors"
	"net/http"

	"notare/internal/chat"
	"notare/internal/core"
	"notare/internal/log"
)

type chatData struct {
	Messages []core.ChatMessage
	Typing   bool
}

// handleChat renders the conversation of the session cookie on GET and
// submits a message on POST. While a reply is pending the partial polls
// itself, so the assistant's answer shows up without a client timer.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGETOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if s.chat == nil {
		NotFoundError("Conversa indisponível").Write(w)
		return
	}

	sessionID := ""
	if c, err := r.Cookie(ChatCookie); err == nil {
		sessionID = c.Value
	}
	id, conv, err := s.chat.Get(sessionID)
	if err != nil {
		s.writeError(w, r, err, "chat_session")
		return
	}
	if id != sessionID {
		http.SetCookie(w, &http.Cookie{
			Name:     ChatCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
			Secure:   r.TLS != nil,
		})
	}

	if r.Method == http.MethodPost {
		p := NewRequestBodyParser(r)
		if err := p.Parse(); err != nil {
			BadRequestError("Formato de requisição inválido").Write(w)
			return
		}
		msg, err := conv.Submit(r.Context(), p.Get("message"))
		switch {
		case errors.Is(err, chat.ErrClosed), errors.Is(err, context.Canceled):
			s.writeError(w, r, err, "chat_submit")
			return
		case err != nil:
			UnprocessableEntityError(userMessage(err)).Write(w)
			return
		}
		s.appMetrics.chatMessages.Add(1)
		s.requestLogger(r).DebugContext(r.Context(), "Chat message submitted",
			log.FieldSession, id,
			"message_id", msg.ID)
	}

	data := chatData{
		Messages: conv.Messages(),
		Typing:   conv.Typing(),
	}
	s.render(w, r, "chat", data, nil)
}
