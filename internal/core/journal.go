package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	EntryReflection EntryType = "reflection"
	EntryGratitude  EntryType = "gratitude"
	EntryGoal       EntryType = "goal"
	EntryMemory     EntryType = "memory"
	EntryDream      EntryType = "dream"
)

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

const (
	Daily   RepetitionTypes = "daily"
	Weekly  RepetitionTypes = "weekly"
	Monthly RepetitionTypes = "monthly"
	Yearly  RepetitionTypes = "yearly"
	// Custom repetitions are described by an RFC 5545 RRULE.
	Custom RepetitionTypes = "rrule"
)

type (
	EntryType string

	ChatRole string

	RepetitionTypes string

	// Entry is a free-form diary entry.
	Entry struct {
		ID        string
		Date      Date
		CreatedAt time.Time
		Content   string
		Type      EntryType
		Tags      []string
	}

	ChatMessage struct {
		ID      string
		Role    ChatRole
		Content string
		At      time.Time
	}

	// RecurringTask is a template the scheduler turns into concrete tasks.
	RecurringTask struct {
		ID                string
		Title             string
		Priority          Priority
		Category          Category
		DueTime           string
		StartDate         Date
		EndDate           Date
		Every             RepetitionTypes
		RRule             string
		LastExecutionDate Date
	}
)

var (
	ErrInvalidEntryType  = errors.New("invalid entry type")
	ErrInvalidRepetition = errors.New("invalid repetition type")
	ErrMissingRRule      = errors.New("rrule repetition requires a rule")
)

const maxContentLength = 2000

// CommonTags are the suggestions offered when writing an entry.
var CommonTags = []string{
	"gratidão", "ansiedade", "produtividade", "relacionamentos",
	"crescimento", "saúde", "trabalho", "família",
}

// EntryTypes lists every entry type in display order.
func EntryTypes() []EntryType {
	return []EntryType{EntryReflection, EntryGratitude, EntryGoal, EntryMemory, EntryDream}
}

func ParseEntryType(s string) (EntryType, error) {
	t := EntryType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntryType, s)
	}
	return t, nil
}

func (t EntryType) IsValid() bool {
	switch t {
	case EntryReflection, EntryGratitude, EntryGoal, EntryMemory, EntryDream:
		return true
	}
	return false
}

func (t EntryType) Label() string {
	switch t {
	case EntryReflection:
		return "Reflexão"
	case EntryGratitude:
		return "Gratidão"
	case EntryGoal:
		return "Objetivo"
	case EntryMemory:
		return "Memória"
	case EntryDream:
		return "Sonho"
	}
	return string(t)
}

func (r ChatRole) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

func ParseRepetition(s string) (RepetitionTypes, error) {
	r := RepetitionTypes(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case Daily, Weekly, Monthly, Yearly, Custom:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRepetition, s)
}

// NormalizeTags trims, lower-cases and dedupes tags, preserving first-seen order.
func NormalizeTags(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "#")))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// SplitTags parses a comma or whitespace separated tag list.
func SplitTags(s string) []string {
	return NormalizeTags(strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	}))
}

func (e Entry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Content) == "" {
		return ErrEmptyContent
	}
	if utf8.RuneCountInString(e.Content) > maxContentLength {
		return fmt.Errorf("%w: max %d characters", ErrContentTooLong, maxContentLength)
	}
	if !e.Type.IsValid() {
		return ErrInvalidEntryType
	}
	return nil
}

// HasTag reports whether the entry carries tag (case-insensitive).
func (e Entry) HasTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (m ChatMessage) Validate() error {
	if !m.Role.IsValid() {
		return fmt.Errorf("invalid chat role %q", m.Role)
	}
	if strings.TrimSpace(m.Content) == "" {
		return ErrEmptyContent
	}
	if utf8.RuneCountInString(m.Content) > maxContentLength {
		return fmt.Errorf("%w: message exceeds %d characters", ErrContentTooLong, maxContentLength)
	}
	return nil
}

func (rt RecurringTask) Validate() error {
	if err := rt.StartDate.Validate(); err != nil {
		return errors.New("invalid start date: " + err.Error())
	}

	if !rt.EndDate.IsZero() && rt.EndDate.Before(rt.StartDate.Time) {
		return errors.New("end date must be after start date")
	}

	switch rt.Every {
	case Daily, Weekly, Monthly, Yearly:
	case Custom:
		if strings.TrimSpace(rt.RRule) == "" {
			return ErrMissingRRule
		}
	default:
		return ErrInvalidRepetition
	}

	return rt.Instance(rt.StartDate).Validate()
}

// Instance builds the concrete task generated for day d.
func (rt RecurringTask) Instance(d Date) Task {
	return Task{
		Title:    rt.Title,
		Priority: rt.Priority,
		Category: rt.Category,
		DueTime:  rt.DueTime,
		DueDate:  d,
	}
}

// ActiveOn reports whether day d lies inside the template's validity window.
func (rt RecurringTask) ActiveOn(d Date) bool {
	if d.Before(rt.StartDate.Time) {
		return false
	}
	return rt.EndDate.IsZero() || !d.After(rt.EndDate.Time)
}
