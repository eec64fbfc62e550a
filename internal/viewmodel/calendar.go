package viewmodel

import (
	"time"

	"notare/internal/calendar"
	"notare/internal/core"
)

// CalendarState is the reference date, selection and mode of a calendar view.
type CalendarState struct {
	Ref      core.Date
	Selected core.Date
	Mode     core.ViewMode
}

// NewCalendarState opens the month of now with today selected.
func NewCalendarState(now time.Time) CalendarState {
	today := calendar.Today(now)
	return CalendarState{Ref: today, Selected: today, Mode: core.ViewMonth}
}

type CalendarAction interface {
	applyCalendar(CalendarState) CalendarState
}

type (
	Next struct{}

	Prev struct{}

	GoToday struct {
		Now time.Time
	}

	// Select marks a day. Selecting a day outside the visible month also
	// moves the reference to it.
	Select struct {
		Date core.Date
	}

	SetMode struct {
		Mode core.ViewMode
	}
)

func ReduceCalendar(s CalendarState, a CalendarAction) CalendarState {
	if a == nil {
		return s
	}
	return a.applyCalendar(s)
}

func (Next) applyCalendar(s CalendarState) CalendarState {
	s.Ref = calendar.Next(s.Ref, s.mode())
	return s
}

func (Prev) applyCalendar(s CalendarState) CalendarState {
	s.Ref = calendar.Prev(s.Ref, s.mode())
	return s
}

func (a GoToday) applyCalendar(s CalendarState) CalendarState {
	s.Ref = calendar.Today(a.Now)
	s.Selected = s.Ref
	return s
}

func (a Select) applyCalendar(s CalendarState) CalendarState {
	if a.Date.IsZero() {
		return s
	}
	s.Selected = a.Date
	start, end := calendar.Bounds(s.Ref, s.mode())
	if a.Date.Before(start.Time) || a.Date.After(end.Time) {
		s.Ref = a.Date
	}
	return s
}

func (a SetMode) applyCalendar(s CalendarState) CalendarState {
	if a.Mode.IsValid() {
		s.Mode = a.Mode
	}
	return s
}

// Grid renders the current state.
func (s CalendarState) Grid(today core.Date, lookup calendar.EventLookup) calendar.Grid {
	return calendar.Build(s.Ref, s.mode(), calendar.Options{
		Today:    today,
		Selected: s.Selected,
		Events:   lookup,
	})
}

func (s CalendarState) mode() core.ViewMode {
	if s.Mode.IsValid() {
		return s.Mode
	}
	return core.ViewMonth
}
