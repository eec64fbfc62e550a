package stats

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"notare/internal/core"
)

const (
	PresetLast7Days  DatePreset = "last7days"
	PresetLast30Days DatePreset = "last30days"
	PresetLastWeek   DatePreset = "lastWeek"
	PresetLastMonth  DatePreset = "lastMonth"
	PresetThisMonth  DatePreset = "thisMonth"
	PresetCustom     DatePreset = "custom"
)

const (
	StatusCompleted TaskStatus = "completed"
	StatusPending   TaskStatus = "pending"
	StatusOverdue   TaskStatus = "overdue"
)

type (
	// DatePreset names a report date range.
	DatePreset string

	TaskStatus string
)

var (
	ErrInvalidPreset     = errors.New("invalid date preset")
	ErrInvalidTaskStatus = errors.New("invalid task status")
	ErrInvertedRange     = errors.New("start date after end date")
	ErrRangeTooLong      = errors.New("date range too long")
)

// MaxRangeDays bounds custom report periods, both ends included.
const MaxRangeDays = 366

// CheckRange validates a custom report period.
func CheckRange(from, to core.Date) error {
	if from.After(to.Time) {
		return ErrInvertedRange
	}
	if core.DaysBetween(from, to) > MaxRangeDays {
		return fmt.Errorf("%w: %s..%s exceeds %d days", ErrRangeTooLong, from.Key(), to.Key(), MaxRangeDays)
	}
	return nil
}

// topTagsInSummary is how many tags the report summary lists.
const topTagsInSummary = 3

func Presets() []DatePreset {
	return []DatePreset{PresetLast7Days, PresetLast30Days, PresetLastWeek, PresetLastMonth, PresetThisMonth, PresetCustom}
}

func ParsePreset(s string) (DatePreset, error) {
	s = strings.TrimSpace(s)
	for _, p := range Presets() {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPreset, s)
}

func (p DatePreset) Label() string {
	switch p {
	case PresetLast7Days:
		return "Últimos 7 dias"
	case PresetLast30Days:
		return "Últimos 30 dias"
	case PresetLastWeek:
		return "Semana passada"
	case PresetLastMonth:
		return "Mês passado"
	case PresetThisMonth:
		return "Este mês"
	case PresetCustom:
		return "Personalizado"
	}
	return string(p)
}

// Range resolves the preset against now. Custom ranges carry their own
// bounds, so ok is false for them.
func (p DatePreset) Range(now time.Time) (from, to core.Date, ok bool) {
	today := core.DateOf(now)
	switch p {
	case PresetLast7Days:
		return today.AddDays(-7), today, true
	case PresetLast30Days:
		return today.AddDays(-30), today, true
	case PresetLastWeek:
		start := today.AddDays(-7)
		start = start.AddDays(-int(start.Weekday()))
		return start, start.AddDays(6), true
	case PresetLastMonth:
		first := core.NewDate(today.Year(), today.Month()-1, 1)
		return first, first.LastOfMonth(), true
	case PresetThisMonth:
		return today.FirstOfMonth(), today, true
	}
	return core.Date{}, core.Date{}, false
}

func ParseTaskStatus(s string) (TaskStatus, error) {
	st := TaskStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusCompleted, StatusPending, StatusOverdue:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTaskStatus, s)
}

// Matches reports whether t has status st on day today.
func (st TaskStatus) Matches(t core.Task, today core.Date) bool {
	switch st {
	case StatusCompleted:
		return t.Completed
	case StatusPending:
		return !t.Completed
	case StatusOverdue:
		return t.IsOverdue(today)
	}
	return false
}

// Filter selects the records a report covers. Empty slices place no
// restriction.
type Filter struct {
	Preset       DatePreset
	From         core.Date
	To           core.Date
	Moods        []core.MoodLevel
	Tags         []string
	Categories   []core.Category
	EntryTypes   []core.EntryType
	TaskStatuses []TaskStatus
}

// NewFilter returns an unrestricted filter over the range of preset. Custom
// and unknown presets fall back to the last 30 days until bounds are set.
func NewFilter(preset DatePreset, now time.Time) Filter {
	from, to, ok := preset.Range(now)
	if !ok {
		from, to, _ = PresetLast30Days.Range(now)
	}
	return Filter{Preset: preset, From: from, To: to}
}

// Apply returns the records matching f. Tasks with no due date are not
// filtered by date.
func (f Filter) Apply(data Data, today core.Date) Data {
	data = FilterRange(data, f.From, f.To)

	var out Data
	for _, e := range data.Entries {
		if len(f.EntryTypes) > 0 && !slices.Contains(f.EntryTypes, e.Type) {
			continue
		}
		if len(f.Tags) > 0 && !hasAnyTag(e, f.Tags) {
			continue
		}
		out.Entries = append(out.Entries, e)
	}
	for _, t := range data.Tasks {
		if len(f.Categories) > 0 && !slices.Contains(f.Categories, t.Category) {
			continue
		}
		if len(f.TaskStatuses) > 0 && !matchesAnyStatus(t, f.TaskStatuses, today) {
			continue
		}
		out.Tasks = append(out.Tasks, t)
	}
	for _, m := range data.Moods {
		if len(f.Moods) > 0 && !slices.Contains(f.Moods, m.Level) {
			continue
		}
		out.Moods = append(out.Moods, m)
	}
	return out
}

func hasAnyTag(e core.Entry, tags []string) bool {
	for _, tag := range tags {
		if e.HasTag(tag) {
			return true
		}
	}
	return false
}

func matchesAnyStatus(t core.Task, statuses []TaskStatus, today core.Date) bool {
	for _, st := range statuses {
		if st.Matches(t, today) {
			return true
		}
	}
	return false
}

type Summary struct {
	TotalEntries   int
	TotalTasks     int
	CompletedTasks int
	AverageMood    float64
	StreakDays     int
	MostUsedTags   []string
}

// Report is the full output of the report generator.
type Report struct {
	Preset            DatePreset
	From              core.Date
	To                core.Date
	GeneratedAt       time.Time
	Summary           Summary
	MoodDistribution  []LevelShare
	DailyActivity     []DayActivity
	CategoryBreakdown []CategoryShare
	TaskCompletion    []DayCompletion
	TimePatterns      []HourCount
}

// Build assembles a report of data restricted by f. The streak is measured
// on the unfiltered history.
func Build(f Filter, data Data, now time.Time) Report {
	if f.From.IsZero() || f.To.IsZero() {
		def := NewFilter(PresetLast30Days, now)
		f.From, f.To = def.From, def.To
	}
	today := core.DateOf(now)
	sel := f.Apply(data, today)

	completed := 0
	for _, t := range sel.Tasks {
		if t.Completed {
			completed++
		}
	}
	tags := TopTags(sel.Entries, topTagsInSummary)
	names := make([]string, len(tags))
	for i, tc := range tags {
		names[i] = tc.Tag
	}

	return Report{
		Preset:      f.Preset,
		From:        f.From,
		To:          f.To,
		GeneratedAt: now,
		Summary: Summary{
			TotalEntries:   len(sel.Entries),
			TotalTasks:     len(sel.Tasks),
			CompletedTasks: completed,
			AverageMood:    AverageMood(sel.Moods),
			StreakDays:     Streak(EntryDates(data.Entries), today),
			MostUsedTags:   names,
		},
		MoodDistribution:  MoodDistribution(sel.Moods),
		DailyActivity:     DailyActivity(f.From, f.To, sel.Entries, sel.Tasks, sel.Moods),
		CategoryBreakdown: CategoryBreakdown(sel.Tasks),
		TaskCompletion:    CompletionByDay(f.From, f.To, sel.Tasks),
		TimePatterns:      TimePatterns(sel.Entries),
	}
}

// Filename returns the download name for an export in format ext.
func (r Report) Filename(ext string) string {
	return fmt.Sprintf("relatorio-notare-%s.%s", r.GeneratedAt.Format(core.DateKeyLayout), ext)
}

// WriteCSV writes the summary followed by the daily activity table.
func (r Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	rows := [][]string{
		{"periodo_inicio", r.From.Key()},
		{"periodo_fim", r.To.Key()},
		{"total_entradas", strconv.Itoa(r.Summary.TotalEntries)},
		{"total_tarefas", strconv.Itoa(r.Summary.TotalTasks)},
		{"tarefas_concluidas", strconv.Itoa(r.Summary.CompletedTasks)},
		{"humor_medio", strconv.FormatFloat(r.Summary.AverageMood, 'f', 1, 64)},
		{"sequencia_dias", strconv.Itoa(r.Summary.StreakDays)},
		{"tags_mais_usadas", strings.Join(r.Summary.MostUsedTags, " ")},
		{},
		{"data", "entradas", "tarefas", "tarefas_concluidas", "humor"},
	}
	for i, day := range r.DailyActivity {
		done := 0
		if i < len(r.TaskCompletion) {
			done = r.TaskCompletion[i].Completed
		}
		rows = append(rows, []string{
			day.Date.Key(),
			strconv.Itoa(day.Entries),
			strconv.Itoa(day.Tasks),
			strconv.Itoa(done),
			strconv.FormatFloat(day.Mood, 'f', 1, 64),
		})
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write report csv: %w", err)
	}
	return nil
}
