package calendar

import (
	"time"

	"notare/internal/core"
)

// Next advances ref by one period. Month steps land on day 1 so that
// Jan 31 moves to Feb 1 rather than rolling over into March. A step past
// core.MaxYear leaves ref where it is.
func Next(ref core.Date, mode core.ViewMode) core.Date {
	if mode == core.ViewWeek {
		return step(ref, ref.AddDays(DaysPerWeek))
	}
	return step(ref, core.NewDate(ref.Year(), ref.Month()+1, 1))
}

// Prev moves ref back by one period, stopping at core.MinYear.
func Prev(ref core.Date, mode core.ViewMode) core.Date {
	if mode == core.ViewWeek {
		return step(ref, ref.AddDays(-DaysPerWeek))
	}
	return step(ref, core.NewDate(ref.Year(), ref.Month()-1, 1))
}

func step(from, to core.Date) core.Date {
	if !to.InRange() {
		return from
	}
	return to
}

// Today resets the reference to the calendar day of now.
func Today(now time.Time) core.Date {
	return core.DateOf(now)
}

// Navigation names a step requested by the UI.
type Navigation string

const (
	NavNone  Navigation = ""
	NavNext  Navigation = "next"
	NavPrev  Navigation = "prev"
	NavToday Navigation = "today"
)

// Apply performs the step nav on ref.
func (nav Navigation) Apply(ref core.Date, mode core.ViewMode, now time.Time) core.Date {
	switch nav {
	case NavNext:
		return Next(ref, mode)
	case NavPrev:
		return Prev(ref, mode)
	case NavToday:
		return Today(now)
	}
	return ref
}
