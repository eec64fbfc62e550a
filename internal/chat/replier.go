package chat

import (
	"math/rand"
	"sync"
	"time"
)

// DefaultReplies are the assistant's canned prompts.
var DefaultReplies = []string{
	"Como isso fez você se sentir?",
	"Conte-me mais sobre isso.",
	"Que interessante! O que você aprendeu com essa experiência?",
	"Isso parece muito significativo para você.",
	"Como você pode aplicar isso em outros aspectos da sua vida?",
}

// Replier chooses the assistant's answer to a user message.
type Replier interface {
	Reply(prompt string) string
}

// ReplierFunc adapts a function to Replier.
type ReplierFunc func(prompt string) string

func (f ReplierFunc) Reply(prompt string) string { return f(prompt) }

// RandomReplier picks uniformly from a fixed list.
type RandomReplier struct {
	mu      sync.Mutex
	rnd     *rand.Rand
	replies []string
}

// NewRandomReplier uses DefaultReplies when replies is empty.
func NewRandomReplier(replies []string) *RandomReplier {
	return NewSeededReplier(replies, time.Now().UnixNano())
}

func NewSeededReplier(replies []string, seed int64) *RandomReplier {
	if len(replies) == 0 {
		replies = DefaultReplies
	}
	return &RandomReplier{
		rnd:     rand.New(rand.NewSource(seed)),
		replies: replies,
	}
}

func (r *RandomReplier) Reply(string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.replies[r.rnd.Intn(len(r.replies))]
}
