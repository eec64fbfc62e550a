package stats

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"notare/internal/core"
)

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Period is the window of the progress panel.
type Period string

var ErrInvalidPeriod = errors.New("invalid period")

func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return p, nil
}

func (p Period) IsValid() bool {
	switch p {
	case PeriodWeek, PeriodMonth, PeriodYear:
		return true
	}
	return false
}

// Days is the length of the window.
func (p Period) Days() int {
	switch p {
	case PeriodWeek:
		return 7
	case PeriodYear:
		return 365
	}
	return 30
}

func (p Period) Label() string {
	switch p {
	case PeriodWeek:
		return "Semana"
	case PeriodYear:
		return "Ano"
	}
	return "Mês"
}

// Range returns the window ending today.
func (p Period) Range(today core.Date) (from, to core.Date) {
	return today.AddDays(1 - p.Days()), today
}

// Data is the journal content the aggregates are computed over.
type Data struct {
	Entries []core.Entry
	Tasks   []core.Task
	Moods   []core.MoodRecord
}

// Achievement is a milestone shown on the progress panel.
type Achievement struct {
	Title       string
	Description string
	Earned      bool
}

type ProgressStats struct {
	Period         Period
	From           core.Date
	To             core.Date
	Entries        int
	TotalDays      int
	EntryRate      int
	PositiveRate   int
	TasksCompleted int
	TotalTasks     int
	CompletionRate int
	MoodAverage    float64
	Streak         int
	Achievements   []Achievement
}

// Progress computes the progress panel for the window of period ending on
// now's calendar day. Undated tasks are always counted. Streak and
// achievements look at the whole history.
func Progress(period Period, now time.Time, data Data) ProgressStats {
	if !period.IsValid() {
		period = PeriodMonth
	}
	today := core.DateOf(now)
	from, to := period.Range(today)
	window := FilterRange(data, from, to)

	completed := 0
	for _, t := range window.Tasks {
		if t.Completed {
			completed++
		}
	}

	p := ProgressStats{
		Period:         period,
		From:           from,
		To:             to,
		Entries:        len(window.Entries),
		TotalDays:      period.Days(),
		EntryRate:      EntryFrequency(window.Entries, from, to),
		PositiveRate:   MoodBreakdown(window.Moods).Positive,
		TasksCompleted: completed,
		TotalTasks:     len(window.Tasks),
		CompletionRate: TaskCompletion(window.Tasks),
		MoodAverage:    AverageMood(window.Moods),
		Streak:         Streak(EntryDates(data.Entries), today),
	}
	p.Achievements = Achievements(data, p)
	return p
}

// Achievement thresholds.
const (
	goldenStreakDays   = 30
	deepReflectionMin  = 100
	moodMasterRate     = 80
	expertOrganizerMin = 500
)

// Achievements evaluates the milestones against the full history and the
// current window.
func Achievements(data Data, p ProgressStats) []Achievement {
	completed := 0
	for _, t := range data.Tasks {
		if t.Completed {
			completed++
		}
	}
	return []Achievement{
		{
			Title:       "Sequência de Ouro",
			Description: fmt.Sprintf("Manteve sequência de %d dias", goldenStreakDays),
			Earned:      p.Streak >= goldenStreakDays,
		},
		{
			Title:       "Reflexão Profunda",
			Description: fmt.Sprintf("Escreveu %d entradas", deepReflectionMin),
			Earned:      len(data.Entries) >= deepReflectionMin,
		},
		{
			Title:       "Mestre do Humor",
			Description: fmt.Sprintf("Manteve %d%% de positividade", moodMasterRate),
			Earned:      len(data.Moods) > 0 && p.PositiveRate >= moodMasterRate,
		},
		{
			Title:       "Organizador Expert",
			Description: fmt.Sprintf("Completou %d tarefas", expertOrganizerMin),
			Earned:      completed >= expertOrganizerMin,
		},
	}
}

// FilterRange keeps the records dated inside [from, to]. Tasks without a
// due date are kept.
func FilterRange(data Data, from, to core.Date) Data {
	var out Data
	for _, e := range data.Entries {
		if inRange(e.Date, from, to) {
			out.Entries = append(out.Entries, e)
		}
	}
	for _, t := range data.Tasks {
		if t.DueDate.IsZero() || inRange(t.DueDate, from, to) {
			out.Tasks = append(out.Tasks, t)
		}
	}
	for _, m := range data.Moods {
		if inRange(m.Date, from, to) {
			out.Moods = append(out.Moods, m)
		}
	}
	return out
}
