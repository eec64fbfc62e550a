// Package journal defines the storage ports of the journal. Adapters live in
// sub-packages (memory) and in internal/storage (sqlite).
package journal

import (
	"context"
	"errors"

	"notare/internal/calendar"
	"notare/internal/core"
)

// ErrNotFound is returned when a record ID does not exist.
var ErrNotFound = errors.New("not found")

type TaskStore interface {
	ListTasks(ctx context.Context) ([]core.Task, error)
	GetTask(ctx context.Context, id string) (core.Task, error)
	AddTask(ctx context.Context, t core.Task) (core.Task, error)
	// ToggleTask flips the completed flag and returns the updated task.
	ToggleTask(ctx context.Context, id string) (core.Task, error)
}

type MoodStore interface {
	ListMoods(ctx context.Context) ([]core.MoodRecord, error)
	AddMood(ctx context.Context, m core.MoodRecord) (core.MoodRecord, error)
}

// EntryStore lists entries newest first.
type EntryStore interface {
	ListEntries(ctx context.Context) ([]core.Entry, error)
	AddEntry(ctx context.Context, e core.Entry) (core.Entry, error)
}

type RecurringStore interface {
	ListRecurring(ctx context.Context) ([]core.RecurringTask, error)
	AddRecurring(ctx context.Context, rt core.RecurringTask) (core.RecurringTask, error)
	UpdateLastExecution(ctx context.Context, id string, d core.Date) error
}

// MarkerStore holds free calendar markers that are not derived from
// tasks, entries or moods.
type MarkerStore interface {
	ListMarkers(ctx context.Context) ([]calendar.DatedEvent, error)
	AddMarker(ctx context.Context, m calendar.DatedEvent) error
}

// Store is the full persistence port.
type Store interface {
	TaskStore
	MoodStore
	EntryStore
	RecurringStore
	MarkerStore
	Close() error
}
