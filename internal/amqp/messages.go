package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Record kinds carried by journal events.
const (
	KindTask      = "task"
	KindMood      = "mood"
	KindEntry     = "entry"
	KindRecurring = "recurring"
)

// Actions describe what happened to the record.
const (
	ActionCreated      = "created"
	ActionToggled      = "toggled"
	ActionMaterialized = "materialized"
)

var ErrInvalidMessage = errors.New("invalid journal event")

// JournalEventMessage announces a journal write. It carries only the record
// identity; consumers read the record itself from the store.
type JournalEventMessage struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Date      string    `json:"date,omitempty"` // yyyy-MM-dd of the record, when it has one
	Timestamp time.Time `json:"timestamp"`
}

func NewJournalEventMessage(kind, id, action, date string) *JournalEventMessage {
	return &JournalEventMessage{
		Kind:      kind,
		ID:        id,
		Action:    action,
		Date:      date,
		Timestamp: time.Now(),
	}
}

func (m *JournalEventMessage) Validate() error {
	switch m.Kind {
	case KindTask, KindMood, KindEntry, KindRecurring:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidMessage, m.Kind)
	}
	if m.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidMessage)
	}
	switch m.Action {
	case ActionCreated, ActionToggled, ActionMaterialized:
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidMessage, m.Action)
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *JournalEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// JournalEventMessageFromJSON decodes and validates a message.
func JournalEventMessageFromJSON(data []byte) (*JournalEventMessage, error) {
	var msg JournalEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
