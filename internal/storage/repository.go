package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"notare/internal/calendar"
	"notare/internal/core"
	"notare/internal/journal"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the durable journal.Store.
type SQLiteRepository struct {
	db *sql.DB
}

var _ journal.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Debug("Journal schema ready", "path", dbPath, "version", version)

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable. Used by the readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Empty reports whether the store holds no tasks, moods or entries. The
// binaries seed the demo dataset only into an empty database.
func (r *SQLiteRepository) Empty(ctx context.Context) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM tasks) + (SELECT COUNT(*) FROM moods) + (SELECT COUNT(*) FROM entries)`).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count records: %w", err)
	}
	return n == 0, nil
}

const taskColumns = `id, title, completed, priority, category, due_time, due_date`

func (r *SQLiteRepository) ListTasks(ctx context.Context) ([]core.Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []core.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *SQLiteRepository) GetTask(ctx context.Context, id string) (core.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Task{}, fmt.Errorf("task %s: %w", id, journal.ErrNotFound)
	}
	if err != nil {
		return core.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

func (r *SQLiteRepository) AddTask(ctx context.Context, t core.Task) (core.Task, error) {
	if err := t.Validate(); err != nil {
		return core.Task{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Completed, string(t.Priority), string(t.Category), t.DueTime, dateKey(t.DueDate))
	if err != nil {
		return core.Task{}, fmt.Errorf("create task: %w", err)
	}

	slog.InfoContext(ctx, "Task saved to SQLite",
		"id", t.ID,
		"priority", t.Priority,
		"category", t.Category,
		"due_date", dateKey(t.DueDate))
	return t, nil
}

func (r *SQLiteRepository) ToggleTask(ctx context.Context, id string) (core.Task, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE tasks SET completed = 1 - completed WHERE id = ?`, id)
	if err != nil {
		return core.Task{}, fmt.Errorf("toggle task %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.Task{}, fmt.Errorf("task %s: %w", id, journal.ErrNotFound)
	}
	return r.GetTask(ctx, id)
}

func (r *SQLiteRepository) ListMoods(ctx context.Context) ([]core.MoodRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, date, level, note FROM moods ORDER BY date DESC, rowid`)
	if err != nil {
		return nil, fmt.Errorf("list moods: %w", err)
	}
	defer rows.Close()

	var moods []core.MoodRecord
	for rows.Next() {
		var (
			m           core.MoodRecord
			date, level string
		)
		if err := rows.Scan(&m.ID, &date, &level, &m.Note); err != nil {
			return nil, fmt.Errorf("scan mood: %w", err)
		}
		if m.Date, err = core.ParseDateKey(date); err != nil {
			return nil, fmt.Errorf("mood %s: %w", m.ID, err)
		}
		m.Level = core.MoodLevel(level)
		moods = append(moods, m)
	}
	return moods, rows.Err()
}

func (r *SQLiteRepository) AddMood(ctx context.Context, m core.MoodRecord) (core.MoodRecord, error) {
	if err := m.Validate(); err != nil {
		return core.MoodRecord{}, err
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO moods (id, date, level, note) VALUES (?, ?, ?, ?)`,
		m.ID, m.Date.Key(), string(m.Level), m.Note)
	if err != nil {
		return core.MoodRecord{}, fmt.Errorf("create mood: %w", err)
	}

	slog.InfoContext(ctx, "Mood saved to SQLite", "id", m.ID, "date", m.Date.Key(), "level", m.Level)
	return m, nil
}

func (r *SQLiteRepository) ListEntries(ctx context.Context) ([]core.Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, created_at, type, tags, content FROM entries ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []core.Entry
	for rows.Next() {
		var (
			e                      core.Entry
			date, created, typ, tg string
		)
		if err := rows.Scan(&e.ID, &date, &created, &typ, &tg, &e.Content); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if e.Date, err = core.ParseDateKey(date); err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("entry %s created_at: %w", e.ID, err)
		}
		e.Type = core.EntryType(typ)
		e.Tags = core.SplitTags(tg)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *SQLiteRepository) AddEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	e.Tags = core.NormalizeTags(e.Tags)
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO entries (id, date, created_at, type, tags, content) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Date.Key(), e.CreatedAt.UTC().Format(time.RFC3339Nano), string(e.Type), strings.Join(e.Tags, ","), e.Content)
	if err != nil {
		return core.Entry{}, fmt.Errorf("create entry: %w", err)
	}

	slog.InfoContext(ctx, "Entry saved to SQLite",
		"id", e.ID,
		"date", e.Date.Key(),
		"type", e.Type,
		"tags", len(e.Tags))
	return e, nil
}

const recurringColumns = `id, title, priority, category, due_time, start_date, end_date, every, rrule, last_execution_date`

func (r *SQLiteRepository) ListRecurring(ctx context.Context) ([]core.RecurringTask, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+recurringColumns+` FROM recurring_tasks ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list recurring tasks: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringTask
	for rows.Next() {
		var (
			rt                        core.RecurringTask
			priority, category, every string
			start, end, last          string
		)
		if err := rows.Scan(&rt.ID, &rt.Title, &priority, &category, &rt.DueTime,
			&start, &end, &every, &rt.RRule, &last); err != nil {
			return nil, fmt.Errorf("scan recurring task: %w", err)
		}
		rt.Priority = core.Priority(priority)
		rt.Category = core.Category(category)
		rt.Every = core.RepetitionTypes(every)
		if rt.StartDate, err = core.ParseDateKey(start); err != nil {
			return nil, fmt.Errorf("recurring task %s: %w", rt.ID, err)
		}
		if rt.EndDate, err = optionalDate(end); err != nil {
			return nil, fmt.Errorf("recurring task %s: %w", rt.ID, err)
		}
		if rt.LastExecutionDate, err = optionalDate(last); err != nil {
			return nil, fmt.Errorf("recurring task %s: %w", rt.ID, err)
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) AddRecurring(ctx context.Context, rt core.RecurringTask) (core.RecurringTask, error) {
	if err := rt.Validate(); err != nil {
		return core.RecurringTask{}, err
	}
	if rt.ID == "" {
		rt.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO recurring_tasks (`+recurringColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rt.ID, rt.Title, string(rt.Priority), string(rt.Category), rt.DueTime,
		rt.StartDate.Key(), dateKey(rt.EndDate), string(rt.Every), rt.RRule, dateKey(rt.LastExecutionDate))
	if err != nil {
		return core.RecurringTask{}, fmt.Errorf("create recurring task: %w", err)
	}

	slog.InfoContext(ctx, "Recurring task saved to SQLite", "id", rt.ID, "every", rt.Every)
	return rt, nil
}

func (r *SQLiteRepository) UpdateLastExecution(ctx context.Context, id string, d core.Date) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recurring_tasks SET last_execution_date = ? WHERE id = ?`, dateKey(d), id)
	if err != nil {
		return fmt.Errorf("update last execution %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("recurring task %s: %w", id, journal.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) ListMarkers(ctx context.Context) ([]calendar.DatedEvent, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT date, title, kind FROM markers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list markers: %w", err)
	}
	defer rows.Close()

	var out []calendar.DatedEvent
	for rows.Next() {
		var date, title, kind string
		if err := rows.Scan(&date, &title, &kind); err != nil {
			return nil, fmt.Errorf("scan marker: %w", err)
		}
		d, err := core.ParseDateKey(date)
		if err != nil {
			return nil, fmt.Errorf("marker: %w", err)
		}
		out = append(out, calendar.DatedEvent{Date: d, Event: core.Event{Title: title, Kind: core.EventKind(kind)}})
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) AddMarker(ctx context.Context, m calendar.DatedEvent) error {
	if err := m.Date.Validate(); err != nil {
		return err
	}
	if !m.Event.Kind.IsValid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidEventKind, m.Event.Kind)
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO markers (date, title, kind) VALUES (?, ?, ?)`,
		m.Date.Key(), m.Event.Title, string(m.Event.Kind))
	if err != nil {
		return fmt.Errorf("create marker: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (core.Task, error) {
	var (
		t                  core.Task
		priority, category string
		due                string
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Completed, &priority, &category, &t.DueTime, &due); err != nil {
		return core.Task{}, err
	}
	t.Priority = core.Priority(priority)
	t.Category = core.Category(category)
	d, err := optionalDate(due)
	if err != nil {
		return core.Task{}, err
	}
	t.DueDate = d
	return t, nil
}

// dateKey stores a zero date as the empty string.
func dateKey(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Key()
}

func optionalDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	return core.ParseDateKey(s)
}
