// Package seed loads demo journal data from YAML. The built-in dataset is
// embedded; SEED_FILE can point to another file with the same layout.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"notare/internal/calendar"
	"notare/internal/core"
	"notare/internal/journal"
)

//go:embed seed.yaml
var defaultSeed []byte

type file struct {
	Markers   map[string][]core.Event `yaml:"markers"`
	Moods     []mood                  `yaml:"moods"`
	Tasks     []task                  `yaml:"tasks"`
	Entries   []entry                 `yaml:"entries"`
	Chat      []message               `yaml:"chat"`
	Recurring []recurring             `yaml:"recurring"`
}

type mood struct {
	ID    string `yaml:"id"`
	Date  string `yaml:"date"`
	Level string `yaml:"level"`
	Note  string `yaml:"note"`
}

type task struct {
	ID        string `yaml:"id"`
	Title     string `yaml:"title"`
	Completed bool   `yaml:"completed"`
	Priority  string `yaml:"priority"`
	Category  string `yaml:"category"`
	DueTime   string `yaml:"due_time"`
	DueDate   string `yaml:"due_date"`
}

type entry struct {
	ID        string    `yaml:"id"`
	Date      string    `yaml:"date"`
	CreatedAt time.Time `yaml:"created_at"`
	Type      string    `yaml:"type"`
	Tags      []string  `yaml:"tags"`
	Content   string    `yaml:"content"`
}

type message struct {
	ID      string    `yaml:"id"`
	Role    string    `yaml:"role"`
	At      time.Time `yaml:"at"`
	Content string    `yaml:"content"`
}

type recurring struct {
	ID        string `yaml:"id"`
	Title     string `yaml:"title"`
	Priority  string `yaml:"priority"`
	Category  string `yaml:"category"`
	DueTime   string `yaml:"due_time"`
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`
	Every     string `yaml:"every"`
	RRule     string `yaml:"rrule"`
}

// Dataset is a validated seed.
type Dataset struct {
	Markers   []calendar.DatedEvent
	Moods     []core.MoodRecord
	Tasks     []core.Task
	Entries   []core.Entry
	Chat      []core.ChatMessage
	Recurring []core.RecurringTask
}

// Default returns the embedded dataset.
func Default() (Dataset, error) {
	return Parse(defaultSeed)
}

// Load reads a seed file. An empty path selects the embedded dataset.
func Load(path string) (Dataset, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("read seed %s: %w", path, err)
	}
	ds, err := Parse(b)
	if err != nil {
		return Dataset{}, fmt.Errorf("seed %s: %w", path, err)
	}
	return ds, nil
}

// Parse decodes and validates YAML seed data. Every invalid record is
// reported; nothing is returned unless the whole file is valid.
func Parse(b []byte) (Dataset, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Dataset{}, fmt.Errorf("decode seed: %w", err)
	}

	var (
		ds   Dataset
		errs []error
	)
	fail := func(kind string, i int, err error) {
		errs = append(errs, fmt.Errorf("%s[%d]: %w", kind, i, err))
	}

	keys := make([]string, 0, len(f.Markers))
	for k := range f.Markers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		d, err := core.ParseDateKey(k)
		if err != nil {
			errs = append(errs, fmt.Errorf("markers: %w", err))
			continue
		}
		for i, ev := range f.Markers[k] {
			if _, err := core.ParseEventKind(string(ev.Kind)); err != nil {
				fail("markers."+k, i, err)
				continue
			}
			ds.Markers = append(ds.Markers, calendar.DatedEvent{Date: d, Event: ev})
		}
	}

	for i, m := range f.Moods {
		rec, err := m.record()
		if err != nil {
			fail("moods", i, err)
			continue
		}
		ds.Moods = append(ds.Moods, rec)
	}
	for i, t := range f.Tasks {
		rec, err := t.record()
		if err != nil {
			fail("tasks", i, err)
			continue
		}
		ds.Tasks = append(ds.Tasks, rec)
	}
	for i, e := range f.Entries {
		rec, err := e.record()
		if err != nil {
			fail("entries", i, err)
			continue
		}
		ds.Entries = append(ds.Entries, rec)
	}
	for i, m := range f.Chat {
		rec := core.ChatMessage{ID: m.ID, Role: core.ChatRole(m.Role), Content: m.Content, At: m.At}
		if err := rec.Validate(); err != nil {
			fail("chat", i, err)
			continue
		}
		ds.Chat = append(ds.Chat, rec)
	}
	for i, r := range f.Recurring {
		rec, err := r.record()
		if err != nil {
			fail("recurring", i, err)
			continue
		}
		ds.Recurring = append(ds.Recurring, rec)
	}

	if len(errs) > 0 {
		return Dataset{}, errors.Join(errs...)
	}
	return ds, nil
}

func (m mood) record() (core.MoodRecord, error) {
	d, err := core.ParseDateKey(m.Date)
	if err != nil {
		return core.MoodRecord{}, err
	}
	lvl, err := core.ParseMoodLevel(m.Level)
	if err != nil {
		return core.MoodRecord{}, err
	}
	rec := core.MoodRecord{ID: m.ID, Date: d, Level: lvl, Note: m.Note}
	return rec, rec.Validate()
}

func (t task) record() (core.Task, error) {
	p, err := core.ParsePriority(t.Priority)
	if err != nil {
		return core.Task{}, err
	}
	c, err := core.ParseCategory(t.Category)
	if err != nil {
		return core.Task{}, err
	}
	rec := core.Task{ID: t.ID, Title: t.Title, Completed: t.Completed, Priority: p, Category: c, DueTime: t.DueTime}
	if t.DueDate != "" {
		if rec.DueDate, err = core.ParseDateKey(t.DueDate); err != nil {
			return core.Task{}, err
		}
	}
	return rec, rec.Validate()
}

func (e entry) record() (core.Entry, error) {
	d, err := core.ParseDateKey(e.Date)
	if err != nil {
		return core.Entry{}, err
	}
	typ, err := core.ParseEntryType(e.Type)
	if err != nil {
		return core.Entry{}, err
	}
	rec := core.Entry{ID: e.ID, Date: d, CreatedAt: e.CreatedAt, Content: e.Content, Type: typ, Tags: core.NormalizeTags(e.Tags)}
	return rec, rec.Validate()
}

func (r recurring) record() (core.RecurringTask, error) {
	start, err := core.ParseDateKey(r.StartDate)
	if err != nil {
		return core.RecurringTask{}, err
	}
	every, err := core.ParseRepetition(r.Every)
	if err != nil {
		return core.RecurringTask{}, err
	}
	rec := core.RecurringTask{
		ID:        r.ID,
		Title:     r.Title,
		Priority:  core.Priority(r.Priority),
		Category:  core.Category(r.Category),
		DueTime:   r.DueTime,
		StartDate: start,
		Every:     every,
		RRule:     r.RRule,
	}
	if r.EndDate != "" {
		if rec.EndDate, err = core.ParseDateKey(r.EndDate); err != nil {
			return core.RecurringTask{}, err
		}
	}
	return rec, rec.Validate()
}

// Apply writes every record of ds into store. Chat history is not stored;
// it only primes new conversations.
func Apply(ctx context.Context, store journal.Store, ds Dataset) error {
	for _, m := range ds.Markers {
		if err := store.AddMarker(ctx, m); err != nil {
			return fmt.Errorf("seed marker: %w", err)
		}
	}
	for _, m := range ds.Moods {
		if _, err := store.AddMood(ctx, m); err != nil {
			return fmt.Errorf("seed mood %s: %w", m.ID, err)
		}
	}
	for _, t := range ds.Tasks {
		if _, err := store.AddTask(ctx, t); err != nil {
			return fmt.Errorf("seed task %s: %w", t.ID, err)
		}
	}
	for _, e := range ds.Entries {
		if _, err := store.AddEntry(ctx, e); err != nil {
			return fmt.Errorf("seed entry %s: %w", e.ID, err)
		}
	}
	for _, rt := range ds.Recurring {
		if _, err := store.AddRecurring(ctx, rt); err != nil {
			return fmt.Errorf("seed recurring task %s: %w", rt.ID, err)
		}
	}
	return nil
}
