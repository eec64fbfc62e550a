package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"notare/internal/core"
)

// Hub owns one conversation per browser session.
type Hub struct {
	cfg     Config
	history []core.ChatMessage
	idle    time.Duration

	mu       sync.Mutex
	sessions map[string]*Conversation
	closed   bool
}

// NewHub creates conversations from cfg, each starting with history.
// Sessions idle for longer than idle are removed by CleanExpired.
func NewHub(cfg Config, history []core.ChatMessage, idle time.Duration) *Hub {
	return &Hub{
		cfg:      cfg.withDefaults(),
		history:  history,
		idle:     idle,
		sessions: make(map[string]*Conversation),
	}
}

// Get returns the conversation of session id. Empty, unknown and malformed
// ids start a new conversation under a freshly minted id, which is the one
// to hand back to the client.
func (h *Hub) Get(id string) (string, *Conversation, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return "", nil, ErrClosed
	}
	if _, err := uuid.Parse(id); err == nil {
		if c, ok := h.sessions[id]; ok {
			return id, c, nil
		}
	}
	id = uuid.NewString()
	c := New(h.cfg, h.history)
	h.sessions[id] = c
	return id, c, nil
}

// Sweep closes and drops sessions with no activity for longer than idle.
func (h *Hub) Sweep(idle time.Duration) int {
	cutoff := h.cfg.Now().Add(-idle)

	h.mu.Lock()
	var stale []*Conversation
	for id, c := range h.sessions {
		if c.LastActivity().Before(cutoff) {
			stale = append(stale, c)
			delete(h.sessions, id)
		}
	}
	h.mu.Unlock()

	for _, c := range stale {
		c.Close()
	}
	return len(stale)
}

// CleanExpired sweeps with the hub's idle timeout. It lets the hub be
// registered with the cache cleanup manager.
func (h *Hub) CleanExpired() int {
	if h.idle <= 0 {
		return 0
	}
	return h.Sweep(h.idle)
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Close tears down every conversation. Later calls to Get fail with ErrClosed.
func (h *Hub) Close() {
	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[string]*Conversation)
	h.closed = true
	h.mu.Unlock()

	for _, c := range sessions {
		c.Close()
	}
}
