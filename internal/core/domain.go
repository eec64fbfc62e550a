package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	KindTask  EventKind = "task"
	KindEntry EventKind = "entry"
	KindMood  EventKind = "mood"
)

const (
	MoodTerrible MoodLevel = "terrible"
	MoodNegative MoodLevel = "negative"
	MoodNeutral  MoodLevel = "neutral"
	MoodPositive MoodLevel = "positive"
	MoodAmazing  MoodLevel = "amazing"
)

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryHealth   Category = "health"
	CategoryStudy    Category = "study"
)

const (
	ViewMonth ViewMode = "month"
	ViewWeek  ViewMode = "week"
)

type (
	// EventKind tags what a calendar event was derived from.
	EventKind string

	// MoodLevel is an emotional self-report, ordered from terrible to amazing.
	MoodLevel string

	Priority string

	Category string

	// ViewMode selects the span of a calendar grid.
	ViewMode string

	// Event is a single calendar marker shown inside a day cell.
	Event struct {
		Title string    `json:"title" yaml:"title"`
		Kind  EventKind `json:"kind" yaml:"kind"`
	}

	MoodRecord struct {
		ID    string
		Date  Date
		Level MoodLevel
		Note  string
	}

	Task struct {
		ID        string
		Title     string
		Completed bool
		Priority  Priority
		Category  Category
		DueTime   string // optional, "HH:MM"
		DueDate   Date
	}
)

var (
	ErrInvalidEventKind = errors.New("invalid event kind")
	ErrInvalidMoodLevel = errors.New("invalid mood level")
	ErrInvalidPriority  = errors.New("invalid priority")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidViewMode  = errors.New("invalid view mode")
	ErrInvalidDueTime   = errors.New("invalid due time")
	ErrEmptyTitle       = errors.New("empty title")
	ErrEmptyContent     = errors.New("empty content")
	ErrTitleTooLong     = errors.New("title too long")
	ErrContentTooLong   = errors.New("content too long")
)

// Lengths count characters, not bytes.
const (
	maxTitleLength = 200
	maxNoteLength  = 500
)

func ParseEventKind(s string) (EventKind, error) {
	k := EventKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidEventKind, s)
	}
	return k, nil
}

func (k EventKind) IsValid() bool {
	switch k {
	case KindTask, KindEntry, KindMood:
		return true
	}
	return false
}

// MoodLevels lists every level from best to worst.
func MoodLevels() []MoodLevel {
	return []MoodLevel{MoodAmazing, MoodPositive, MoodNeutral, MoodNegative, MoodTerrible}
}

func ParseMoodLevel(s string) (MoodLevel, error) {
	m := MoodLevel(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMoodLevel, s)
	}
	return m, nil
}

func (m MoodLevel) IsValid() bool {
	return m.Score() > 0
}

// Score maps a level onto 1 (terrible) .. 5 (amazing); unknown levels score 0.
func (m MoodLevel) Score() int {
	switch m {
	case MoodTerrible:
		return 1
	case MoodNegative:
		return 2
	case MoodNeutral:
		return 3
	case MoodPositive:
		return 4
	case MoodAmazing:
		return 5
	}
	return 0
}

// Label returns the pt-BR display name.
func (m MoodLevel) Label() string {
	switch m {
	case MoodTerrible:
		return "Terrível"
	case MoodNegative:
		return "Difícil"
	case MoodNeutral:
		return "Neutro"
	case MoodPositive:
		return "Positivo"
	case MoodAmazing:
		return "Incrível"
	}
	return string(m)
}

func (m MoodLevel) IsPositive() bool { return m == MoodPositive || m == MoodAmazing }

func (m MoodLevel) IsNegative() bool { return m == MoodNegative || m == MoodTerrible }

func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
	return p, nil
}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "Alta"
	case PriorityMedium:
		return "Média"
	case PriorityLow:
		return "Baixa"
	}
	return string(p)
}

// Categories lists every task category in display order.
func Categories() []Category {
	return []Category{CategoryPersonal, CategoryWork, CategoryHealth, CategoryStudy}
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

func (c Category) IsValid() bool {
	switch c {
	case CategoryWork, CategoryPersonal, CategoryHealth, CategoryStudy:
		return true
	}
	return false
}

func (c Category) Label() string {
	switch c {
	case CategoryWork:
		return "Trabalho"
	case CategoryPersonal:
		return "Pessoal"
	case CategoryHealth:
		return "Saúde"
	case CategoryStudy:
		return "Estudo"
	}
	return string(c)
}

func ParseViewMode(s string) (ViewMode, error) {
	v := ViewMode(strings.ToLower(strings.TrimSpace(s)))
	if !v.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidViewMode, s)
	}
	return v, nil
}

func (v ViewMode) IsValid() bool {
	return v == ViewMonth || v == ViewWeek
}

func (m MoodRecord) Validate() error {
	if err := m.Date.Validate(); err != nil {
		return err
	}
	if !m.Level.IsValid() {
		return ErrInvalidMoodLevel
	}
	if utf8.RuneCountInString(m.Note) > maxNoteLength {
		return fmt.Errorf("%w: note exceeds %d characters", ErrContentTooLong, maxNoteLength)
	}
	return nil
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(t.Title) > maxTitleLength {
		return fmt.Errorf("%w: max %d characters", ErrTitleTooLong, maxTitleLength)
	}
	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if !t.Category.IsValid() {
		return ErrInvalidCategory
	}
	if t.DueTime != "" {
		if _, err := time.Parse("15:04", t.DueTime); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDueTime, t.DueTime)
		}
	}
	return nil
}

// IsOverdue reports whether an open task's due date lies before today.
func (t Task) IsOverdue(today Date) bool {
	if t.Completed || t.DueDate.IsZero() {
		return false
	}
	return t.DueDate.Before(today.Time)
}
