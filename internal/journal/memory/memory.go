package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"notare/internal/calendar"
	"notare/internal/core"
	"notare/internal/journal"
	"notare/internal/seed"
)

// Store keeps the journal in process memory. Everything is lost on restart.
type Store struct {
	mu        sync.Mutex
	tasks     []core.Task
	moods     []core.MoodRecord
	entries   []core.Entry
	recurring []core.RecurringTask
	markers   []calendar.DatedEvent
}

var _ journal.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// NewFromSeed returns a store holding the dataset at path, or the embedded
// demo dataset when path is empty.
func NewFromSeed(ctx context.Context, path string) (*Store, error) {
	ds, err := seed.Load(path)
	if err != nil {
		return nil, err
	}
	s := New()
	if err := seed.Apply(ctx, s, ds); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ListTasks(_ context.Context) ([]core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Task(nil), s.tasks...), nil
}

func (s *Store) GetTask(_ context.Context, id string) (core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Task{}, fmt.Errorf("task %s: %w", id, journal.ErrNotFound)
}

func (s *Store) AddTask(_ context.Context, t core.Task) (core.Task, error) {
	if err := t.Validate(); err != nil {
		return core.Task{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, t)
	return t, nil
}

func (s *Store) ToggleTask(_ context.Context, id string) (core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Completed = !s.tasks[i].Completed
			return s.tasks[i], nil
		}
	}
	return core.Task{}, fmt.Errorf("task %s: %w", id, journal.ErrNotFound)
}

// ListMoods returns moods newest first.
func (s *Store) ListMoods(_ context.Context) ([]core.MoodRecord, error) {
	s.mu.Lock()
	out := append([]core.MoodRecord(nil), s.moods...)
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date.Time) })
	return out, nil
}

func (s *Store) AddMood(_ context.Context, m core.MoodRecord) (core.MoodRecord, error) {
	if err := m.Validate(); err != nil {
		return core.MoodRecord{}, err
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moods = append(s.moods, m)
	return m, nil
}

func (s *Store) ListEntries(_ context.Context) ([]core.Entry, error) {
	s.mu.Lock()
	out := append([]core.Entry(nil), s.entries...)
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) AddEntry(_ context.Context, e core.Entry) (core.Entry, error) {
	e.Tags = core.NormalizeTags(e.Tags)
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return e, nil
}

func (s *Store) ListRecurring(_ context.Context) ([]core.RecurringTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.RecurringTask(nil), s.recurring...), nil
}

func (s *Store) AddRecurring(_ context.Context, rt core.RecurringTask) (core.RecurringTask, error) {
	if err := rt.Validate(); err != nil {
		return core.RecurringTask{}, err
	}
	if rt.ID == "" {
		rt.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recurring = append(s.recurring, rt)
	return rt, nil
}

func (s *Store) UpdateLastExecution(_ context.Context, id string, d core.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.recurring {
		if s.recurring[i].ID == id {
			s.recurring[i].LastExecutionDate = d
			return nil
		}
	}
	return fmt.Errorf("recurring task %s: %w", id, journal.ErrNotFound)
}

func (s *Store) ListMarkers(_ context.Context) ([]calendar.DatedEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]calendar.DatedEvent(nil), s.markers...), nil
}

func (s *Store) AddMarker(_ context.Context, m calendar.DatedEvent) error {
	if err := m.Date.Validate(); err != nil {
		return err
	}
	if !m.Event.Kind.IsValid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidEventKind, m.Event.Kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = append(s.markers, m)
	return nil
}

func (s *Store) Close() error { return nil }

// Empty reports whether the store holds no tasks, moods or entries.
func (s *Store) Empty(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)+len(s.moods)+len(s.entries) == 0, nil
}
