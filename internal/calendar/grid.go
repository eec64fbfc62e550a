// Package calendar builds the calendar grids shown by the dashboard and the
// CLI, and converts journal data to and from calendar formats.
//
// Weeks start on Sunday. A grid always covers complete weeks: month grids
// extend backward to the Sunday on or before the 1st and forward to the
// Saturday on or after the last day, so their length is a multiple of 7.
package calendar

import (
	"time"

	"notare/internal/core"
)

// DaysPerWeek is the width of every grid row.
const DaysPerWeek = 7

// Day is one cell of a grid.
type Day struct {
	Date            core.Date
	InCurrentPeriod bool
	IsToday         bool
	IsSelected      bool
	Events          []core.Event
}

// Options carries the per-render inputs of Build.
type Options struct {
	Today    core.Date
	Selected core.Date
	Events   EventLookup
}

// Grid is the ordered sequence of cells for one month or one week.
type Grid struct {
	Mode  core.ViewMode
	Ref   core.Date
	Title string
	Days  []Day
}

// Build generates the grid for ref. Unknown modes fall back to month.
func Build(ref core.Date, mode core.ViewMode, opts Options) Grid {
	if !mode.IsValid() {
		mode = core.ViewMonth
	}
	start, end := Bounds(ref, mode)

	days := make([]Day, 0, core.DaysBetween(start, end))
	for d := start; !d.After(end.Time); d = d.AddDays(1) {
		days = append(days, Day{
			Date:            d,
			InCurrentPeriod: d.SameMonth(ref),
			IsToday:         !opts.Today.IsZero() && d.Equal(opts.Today),
			IsSelected:      !opts.Selected.IsZero() && d.Equal(opts.Selected),
			Events:          eventsOn(opts.Events, d),
		})
	}

	return Grid{
		Mode:  mode,
		Ref:   ref,
		Title: title(ref, mode, start, end),
		Days:  days,
	}
}

// Bounds returns the first and last day covered by the grid of ref.
func Bounds(ref core.Date, mode core.ViewMode) (start, end core.Date) {
	if mode == core.ViewWeek {
		start = StartOfWeek(ref)
		return start, start.AddDays(DaysPerWeek - 1)
	}
	return StartOfWeek(ref.FirstOfMonth()), EndOfWeek(ref.LastOfMonth())
}

// StartOfWeek returns the Sunday on or before d.
func StartOfWeek(d core.Date) core.Date {
	return d.AddDays(-int(d.Weekday()))
}

// EndOfWeek returns the Saturday on or after d.
func EndOfWeek(d core.Date) core.Date {
	return d.AddDays(int(time.Saturday - d.Weekday()))
}

// Weeks splits the grid into rows of seven days.
func (g Grid) Weeks() [][]Day {
	rows := make([][]Day, 0, len(g.Days)/DaysPerWeek)
	for i := 0; i+DaysPerWeek <= len(g.Days); i += DaysPerWeek {
		rows = append(rows, g.Days[i:i+DaysPerWeek])
	}
	return rows
}

// Start returns the first day of the grid.
func (g Grid) Start() core.Date {
	if len(g.Days) == 0 {
		return g.Ref
	}
	return g.Days[0].Date
}

// End returns the last day of the grid.
func (g Grid) End() core.Date {
	if len(g.Days) == 0 {
		return g.Ref
	}
	return g.Days[len(g.Days)-1].Date
}

// Today returns the cell flagged as today, if the grid contains it.
func (g Grid) Today() (Day, bool) {
	for _, d := range g.Days {
		if d.IsToday {
			return d, true
		}
	}
	return Day{}, false
}

// EventCount sums the events of every cell.
func (g Grid) EventCount() int {
	n := 0
	for _, d := range g.Days {
		n += len(d.Events)
	}
	return n
}

func eventsOn(lookup EventLookup, d core.Date) []core.Event {
	if lookup == nil {
		return []core.Event{}
	}
	evs := lookup.EventsOn(d.Key())
	if len(evs) == 0 {
		return []core.Event{}
	}
	out := make([]core.Event, len(evs))
	copy(out, evs)
	return out
}

func title(ref core.Date, mode core.ViewMode, start, end core.Date) string {
	if mode == core.ViewWeek {
		return FormatWeekRange(start, end)
	}
	return FormatMonthYear(ref)
}
