package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"notare/internal/amqp"
	"notare/internal/cache"
	"notare/internal/calendar"
	"notare/internal/core"
	"notare/internal/journal"
	"notare/internal/log"
	"notare/internal/stats"
)

const (
	lookupCacheSize = 32
	icsProdID       = "-//notare//diário//PT-BR"
)

// ErrInvalidInput wraps every validation failure of a write.
var ErrInvalidInput = errors.New("invalid input")

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

// EventPublisher announces journal writes. *amqp.Client implements it.
type EventPublisher interface {
	PublishJournalEvent(ctx context.Context, msg *amqp.JournalEventMessage) error
}

// JournalService orchestrates journal writes across the store and the
// message bus, and serves the read models built from the store.
type JournalService struct {
	store     journal.Store
	publisher EventPublisher
	logger    *log.StructuredLogger
	lookups   *cache.LRUCache[calendar.MapLookup]
	now       func() time.Time
}

type Option func(*JournalService)

// WithPublisher enables event publishing. A nil publisher disables it.
func WithPublisher(p EventPublisher) Option {
	return func(s *JournalService) { s.publisher = p }
}

// WithClock sets the source of "now". Its location defines "today".
func WithClock(now func() time.Time) Option {
	return func(s *JournalService) { s.now = now }
}

// WithLookupCache replaces the calendar lookup cache. Register it with a
// cache.Manager to have expired months swept.
func WithLookupCache(c *cache.LRUCache[calendar.MapLookup]) Option {
	return func(s *JournalService) { s.lookups = c }
}

func WithLogger(l *log.Logger) Option {
	return func(s *JournalService) { s.logger = log.NewStructuredLogger(l) }
}

func NewJournalService(store journal.Store, opts ...Option) *JournalService {
	s := &JournalService{
		store:   store,
		lookups: cache.NewLRUCache[calendar.MapLookup](lookupCacheSize, 5*time.Minute),
		now:     time.Now,
		logger:  log.NewStructuredLogger(log.New(log.Config{Level: slog.LevelInfo, Component: log.ComponentJournal})),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock.
func (s *JournalService) Now() time.Time { return s.now() }

// Today is the current calendar day in the clock's location.
func (s *JournalService) Today() core.Date { return core.DateOf(s.now()) }

// LookupCache exposes the calendar cache for registration with a cleanup
// manager.
func (s *JournalService) LookupCache() *cache.LRUCache[calendar.MapLookup] { return s.lookups }

// Store returns the underlying store.
func (s *JournalService) Store() journal.Store { return s.store }

func (s *JournalService) Tasks(ctx context.Context) ([]core.Task, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// AddTask validates and stores t. Missing priority and category default to
// medium and personal.
func (s *JournalService) AddTask(ctx context.Context, t core.Task) (core.Task, error) {
	t.Title = strings.TrimSpace(t.Title)
	if t.Priority == "" {
		t.Priority = core.PriorityMedium
	}
	if t.Category == "" {
		t.Category = core.CategoryPersonal
	}
	if err := t.Validate(); err != nil {
		return core.Task{}, invalid(err)
	}

	saved, err := s.store.AddTask(ctx, t)
	if err != nil {
		return core.Task{}, fmt.Errorf("save task: %w", err)
	}
	s.written(ctx, log.OpCreate, amqp.KindTask, amqp.ActionCreated, saved.ID, saved.DueDate)
	return saved, nil
}

func (s *JournalService) ToggleTask(ctx context.Context, id string) (core.Task, error) {
	t, err := s.store.ToggleTask(ctx, id)
	if err != nil {
		return core.Task{}, fmt.Errorf("toggle task: %w", err)
	}
	s.written(ctx, log.OpToggle, amqp.KindTask, amqp.ActionToggled, t.ID, t.DueDate)
	return t, nil
}

func (s *JournalService) Moods(ctx context.Context) ([]core.MoodRecord, error) {
	moods, err := s.store.ListMoods(ctx)
	if err != nil {
		return nil, fmt.Errorf("list moods: %w", err)
	}
	return moods, nil
}

// RecordMood stores m, dated today when no date is given.
func (s *JournalService) RecordMood(ctx context.Context, m core.MoodRecord) (core.MoodRecord, error) {
	if m.Date.IsZero() {
		m.Date = s.Today()
	}
	m.Note = strings.TrimSpace(m.Note)
	if err := m.Validate(); err != nil {
		return core.MoodRecord{}, invalid(err)
	}

	saved, err := s.store.AddMood(ctx, m)
	if err != nil {
		return core.MoodRecord{}, fmt.Errorf("save mood: %w", err)
	}
	s.written(ctx, log.OpCreate, amqp.KindMood, amqp.ActionCreated, saved.ID, saved.Date)
	return saved, nil
}

func (s *JournalService) Entries(ctx context.Context) ([]core.Entry, error) {
	entries, err := s.store.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// AddEntry stores e. Date and creation time default to now; tags are
// normalized.
func (s *JournalService) AddEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	now := s.now()
	if e.Date.IsZero() {
		e.Date = core.DateOf(now)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.Type == "" {
		e.Type = core.EntryReflection
	}
	e.Content = strings.TrimSpace(e.Content)
	e.Tags = core.NormalizeTags(e.Tags)
	if err := e.Validate(); err != nil {
		return core.Entry{}, invalid(err)
	}

	saved, err := s.store.AddEntry(ctx, e)
	if err != nil {
		return core.Entry{}, fmt.Errorf("save entry: %w", err)
	}
	s.written(ctx, log.OpCreate, amqp.KindEntry, amqp.ActionCreated, saved.ID, saved.Date)
	return saved, nil
}

func (s *JournalService) Recurring(ctx context.Context) ([]core.RecurringTask, error) {
	rts, err := s.store.ListRecurring(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recurring tasks: %w", err)
	}
	return rts, nil
}

func (s *JournalService) AddRecurring(ctx context.Context, rt core.RecurringTask) (core.RecurringTask, error) {
	rt.Title = strings.TrimSpace(rt.Title)
	if rt.Priority == "" {
		rt.Priority = core.PriorityMedium
	}
	if rt.Category == "" {
		rt.Category = core.CategoryPersonal
	}
	if err := rt.Validate(); err != nil {
		return core.RecurringTask{}, invalid(err)
	}
	if _, err := calendar.Rule(rt); err != nil {
		return core.RecurringTask{}, invalid(err)
	}

	saved, err := s.store.AddRecurring(ctx, rt)
	if err != nil {
		return core.RecurringTask{}, fmt.Errorf("save recurring task: %w", err)
	}
	s.written(ctx, log.OpCreate, amqp.KindRecurring, amqp.ActionCreated, saved.ID, saved.StartDate)
	return saved, nil
}

// Materialize creates the task rt produces on day and records day as the
// template's last execution.
func (s *JournalService) Materialize(ctx context.Context, rt core.RecurringTask, day core.Date) (core.Task, error) {
	t := rt.Instance(day)
	if err := t.Validate(); err != nil {
		return core.Task{}, invalid(err)
	}

	saved, err := s.store.AddTask(ctx, t)
	if err != nil {
		return core.Task{}, fmt.Errorf("save task from %s: %w", rt.ID, err)
	}
	if err := s.store.UpdateLastExecution(ctx, rt.ID, day); err != nil {
		return saved, fmt.Errorf("update last execution of %s: %w", rt.ID, err)
	}
	s.written(ctx, log.OpMaterialize, amqp.KindTask, amqp.ActionMaterialized, saved.ID, day)
	return saved, nil
}

// Snapshot loads tasks, entries and moods concurrently.
func (s *JournalService) Snapshot(ctx context.Context) (stats.Data, error) {
	var data stats.Data
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data.Tasks, err = s.Tasks(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		data.Entries, err = s.Entries(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		data.Moods, err = s.Moods(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return stats.Data{}, err
	}
	return data, nil
}

func (s *JournalService) Report(ctx context.Context, f stats.Filter) (stats.Report, error) {
	data, err := s.Snapshot(ctx)
	if err != nil {
		return stats.Report{}, err
	}
	return stats.Build(f, data, s.now()), nil
}

func (s *JournalService) Progress(ctx context.Context, period stats.Period) (stats.ProgressStats, []stats.Achievement, error) {
	data, err := s.Snapshot(ctx)
	if err != nil {
		return stats.ProgressStats{}, nil, err
	}
	p := stats.Progress(period, s.now(), data)
	return p, stats.Achievements(data, p), nil
}

// CalendarLookup returns the events of [from, to]: free markers, records
// derived from the journal, and recurring templates projected on the days
// after their last execution. Results are cached until the next write.
func (s *JournalService) CalendarLookup(ctx context.Context, from, to core.Date) (calendar.MapLookup, error) {
	key := from.Key() + ".." + to.Key()
	if l, ok := s.lookups.Get(key); ok {
		return l, nil
	}

	data, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	markers, err := s.store.ListMarkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list markers: %w", err)
	}
	templates, err := s.Recurring(ctx)
	if err != nil {
		return nil, err
	}

	events := append(markers, calendar.EventsFromJournal(data.Tasks, data.Entries, data.Moods)...)
	for _, rt := range templates {
		start := from
		if next := rt.LastExecutionDate.AddDays(1); !rt.LastExecutionDate.IsZero() && next.After(start.Time) {
			start = next
		}
		projected, err := calendar.RecurringEvents([]core.RecurringTask{rt}, start, to)
		if err != nil {
			slog.WarnContext(ctx, "Skipping recurring task with bad rule", "id", rt.ID, "error", err)
			continue
		}
		events = append(events, projected...)
	}

	lookup := calendar.MapLookup{}
	for _, ev := range events {
		if ev.Date.Before(from.Time) || ev.Date.After(to.Time) {
			continue
		}
		lookup.Add(ev.Date, ev.Event)
	}
	s.lookups.Set(key, lookup)
	return lookup, nil
}

// MiniMonth summarizes each day of the month for the sidebar calendar.
func (s *JournalService) MiniMonth(ctx context.Context, year, month int) ([]calendar.MiniDay, error) {
	data, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return calendar.MiniMonth(year, month, data.Entries, data.Moods), nil
}

// ExportICS renders the events of [from, to] as an iCalendar document.
func (s *JournalService) ExportICS(ctx context.Context, from, to core.Date) (string, error) {
	lookup, err := s.CalendarLookup(ctx, from, to)
	if err != nil {
		return "", err
	}
	return calendar.ExportICS(lookup.Flatten(), icsProdID)
}

// written invalidates cached read models, logs the write and publishes it.
// Publishing is best effort: the record is already stored.
func (s *JournalService) written(ctx context.Context, op, kind, action, id string, date core.Date) {
	s.lookups.Purge()

	dateKey := ""
	if !date.IsZero() {
		dateKey = date.Key()
	}
	s.logger.LogRecordWritten(ctx, op, kind, id, dateKey)

	if s.publisher == nil {
		return
	}
	msg := amqp.NewJournalEventMessage(kind, id, action, dateKey)
	if err := s.publisher.PublishJournalEvent(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish journal event",
			"kind", kind, "id", id, "action", action, "error", err)
	}
}

type closer interface {
	Close() error
}

// Close closes the store and, when it can be closed, the publisher.
func (s *JournalService) Close() error {
	var errs []error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close journal service: %w", err)
	}
	return nil
}
