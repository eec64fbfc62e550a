// Package chat implements the diary conversation: the user writes a message
// and, after a short delay, an assistant reply is appended. The reply is a
// scheduled task owned by the conversation; closing the conversation cancels
// it so nothing fires once the view is gone.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"notare/internal/core"
)

// DefaultDelay is how long the assistant "types" before replying.
const DefaultDelay = 2 * time.Second

var ErrClosed = errors.New("conversation closed")

// Timer is the handle of a scheduled reply.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. time.AfterFunc is the default.
type Scheduler func(d time.Duration, f func()) Timer

func afterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Config struct {
	Delay    time.Duration
	Replier  Replier
	Schedule Scheduler
	Now      func() time.Time
	// OnReply runs outside the conversation lock after a reply is appended.
	OnReply func(core.ChatMessage)
}

func (c Config) withDefaults() Config {
	if c.Delay <= 0 {
		c.Delay = DefaultDelay
	}
	if c.Replier == nil {
		c.Replier = NewRandomReplier(nil)
	}
	if c.Schedule == nil {
		c.Schedule = afterFunc
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Conversation is safe for concurrent use.
type Conversation struct {
	cfg Config

	mu           sync.Mutex
	messages     []core.ChatMessage
	pending      map[uint64]Timer
	seq          uint64
	closed       bool
	lastActivity time.Time
}

// New starts a conversation holding a copy of history.
func New(cfg Config, history []core.ChatMessage) *Conversation {
	cfg = cfg.withDefaults()
	msgs := make([]core.ChatMessage, len(history))
	copy(msgs, history)
	return &Conversation{
		cfg:          cfg,
		messages:     msgs,
		pending:      make(map[uint64]Timer),
		lastActivity: cfg.Now(),
	}
}

// Submit appends the user's message and schedules one reply to it.
func (c *Conversation) Submit(ctx context.Context, text string) (core.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return core.ChatMessage{}, err
	}
	msg := core.ChatMessage{
		ID:      uuid.NewString(),
		Role:    core.RoleUser,
		Content: strings.TrimSpace(text),
		At:      c.cfg.Now(),
	}
	if err := msg.Validate(); err != nil {
		return core.ChatMessage{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ChatMessage{}, ErrClosed
	}

	c.messages = append(c.messages, msg)
	c.lastActivity = msg.At
	c.seq++
	id := c.seq
	prompt := msg.Content
	c.pending[id] = c.cfg.Schedule(c.cfg.Delay, func() { c.reply(id, prompt) })
	return msg, nil
}

func (c *Conversation) reply(id uint64, prompt string) {
	c.mu.Lock()
	if _, ok := c.pending[id]; c.closed || !ok {
		c.mu.Unlock()
		return
	}
	delete(c.pending, id)

	msg := core.ChatMessage{
		ID:      uuid.NewString(),
		Role:    core.RoleAssistant,
		Content: c.cfg.Replier.Reply(prompt),
		At:      c.cfg.Now(),
	}
	c.messages = append(c.messages, msg)
	c.lastActivity = msg.At
	onReply := c.cfg.OnReply
	c.mu.Unlock()

	if onReply != nil {
		onReply(msg)
	}
}

// Messages returns a snapshot of the conversation.
func (c *Conversation) Messages() []core.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// Typing reports whether a reply is still pending.
func (c *Conversation) Typing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending) > 0
}

func (c *Conversation) LastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActivity
}

func (c *Conversation) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close cancels every pending reply. A reply whose timer already fired
// sees the closed flag and is dropped. Close is idempotent.
func (c *Conversation) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for id, t := range c.pending {
		t.Stop()
		delete(c.pending, id)
	}
}
