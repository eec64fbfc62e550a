// Package sheets describes the spreadsheet backup of the journal. The Google
// adapter lives in sheets/google.
package sheets

import (
	"context"
	"strings"
	"time"

	"notare/internal/core"
)

// BackupRow is one journal record flattened into spreadsheet columns.
type BackupRow struct {
	Kind     string
	ID       string
	Date     string // yyyy-MM-dd, empty for undated tasks
	Title    string
	Detail   string
	Tags     string
	SyncedAt time.Time
}

// Header is written above the first row of a new backup sheet.
var Header = []any{"tipo", "id", "data", "título", "detalhe", "tags", "sincronizado_em"}

// Values returns the row in Header order.
func (r BackupRow) Values() []any {
	return []any{r.Kind, r.ID, r.Date, r.Title, r.Detail, r.Tags, r.SyncedAt.UTC().Format(time.RFC3339)}
}

// Year of the record date, or of SyncedAt for undated rows. Backup sheets are
// split per year.
func (r BackupRow) Year() int {
	if d, err := core.ParseDateKey(r.Date); err == nil {
		return d.Year()
	}
	return r.SyncedAt.Year()
}

// BackupWriter appends rows to the backup.
type BackupWriter interface {
	AppendRow(ctx context.Context, row BackupRow) (rowRef string, err error)
}

func TaskRow(t core.Task, at time.Time) BackupRow {
	status := "pendente"
	if t.Completed {
		status = "concluída"
	}
	detail := strings.Join(nonEmpty(t.Priority.Label(), t.Category.Label(), t.DueTime, status), " · ")
	return BackupRow{Kind: "task", ID: t.ID, Date: optionalKey(t.DueDate), Title: t.Title, Detail: detail, SyncedAt: at}
}

func MoodRow(m core.MoodRecord, at time.Time) BackupRow {
	return BackupRow{Kind: "mood", ID: m.ID, Date: m.Date.Key(), Title: m.Level.Label(), Detail: m.Note, SyncedAt: at}
}

func EntryRow(e core.Entry, at time.Time) BackupRow {
	return BackupRow{
		Kind:     "entry",
		ID:       e.ID,
		Date:     e.Date.Key(),
		Title:    e.Type.Label(),
		Detail:   e.Content,
		Tags:     strings.Join(e.Tags, ", "),
		SyncedAt: at,
	}
}

func RecurringRow(rt core.RecurringTask, at time.Time) BackupRow {
	rule := string(rt.Every)
	if rt.Every == core.Custom {
		rule = rt.RRule
	}
	return BackupRow{
		Kind:     "recurring",
		ID:       rt.ID,
		Date:     rt.StartDate.Key(),
		Title:    rt.Title,
		Detail:   rule,
		SyncedAt: at,
	}
}

func optionalKey(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Key()
}

func nonEmpty(in ...string) []string {
	out := in[:0]
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
