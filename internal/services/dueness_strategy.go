// Package services holds the journal use cases shared by the HTTP server, the
// scheduler, the backup worker and the CLI.
//
// Dueness of recurring task templates follows a strategy registry: each
// repetition type has a checker deciding whether today's instance is due.
package services

import (
	"fmt"

	"notare/internal/calendar"
	"notare/internal/core"
)

// DuenessChecker decides whether a recurring template should be materialized
// on today.
type DuenessChecker interface {
	IsDue(rt core.RecurringTask, today core.Date) bool
}

// DailyChecker is due once per calendar day.
type DailyChecker struct{}

func (DailyChecker) IsDue(rt core.RecurringTask, today core.Date) bool {
	last := rt.LastExecutionDate
	if last.IsZero() {
		return true
	}
	return last.Before(today.Time)
}

// WeeklyChecker is due when 7 or more days have passed since the last run.
type WeeklyChecker struct{}

func (WeeklyChecker) IsDue(rt core.RecurringTask, today core.Date) bool {
	last := rt.LastExecutionDate
	if last.IsZero() {
		return true
	}
	// DaysBetween counts both ends.
	return core.DaysBetween(last, today)-1 >= 7
}

// MonthlyChecker is due in a new month once the start day is reached. Start
// days past the end of a short month clamp to its last day.
type MonthlyChecker struct{}

func (MonthlyChecker) IsDue(rt core.RecurringTask, today core.Date) bool {
	last := rt.LastExecutionDate
	if last.IsZero() {
		return true
	}
	if last.Year() == today.Year() && last.Month() == today.Month() {
		return false
	}
	return today.Day() >= clampDay(rt.StartDate.Day(), today.Year(), today.Month())
}

// YearlyChecker is due in a new year once the start month and day are reached.
type YearlyChecker struct{}

func (YearlyChecker) IsDue(rt core.RecurringTask, today core.Date) bool {
	last := rt.LastExecutionDate
	if last.IsZero() {
		return true
	}
	if last.Year() == today.Year() {
		return false
	}

	targetMonth := rt.StartDate.Month()
	switch {
	case today.Month() < targetMonth:
		return false
	case today.Month() == targetMonth:
		return today.Day() >= clampDay(rt.StartDate.Day(), today.Year(), today.Month())
	default:
		return true
	}
}

// RRuleChecker is due when the template's rule has an occurrence after the
// last run and no later than today. A template that never ran is due only on
// an occurrence day.
type RRuleChecker struct{}

func (RRuleChecker) IsDue(rt core.RecurringTask, today core.Date) bool {
	from := today
	if last := rt.LastExecutionDate; !last.IsZero() {
		if !last.Before(today.Time) {
			return false
		}
		from = last.AddDays(1)
	}
	if from.Before(rt.StartDate.Time) {
		from = rt.StartDate
	}

	dates, err := calendar.ExpandRecurring(rt, from, today)
	if err != nil {
		return false
	}
	return len(dates) > 0
}

func clampDay(day, year, month int) int {
	if last := core.DaysIn(year, month); day > last {
		return last
	}
	return day
}

var duenessStrategies = map[core.RepetitionTypes]DuenessChecker{
	core.Daily:   DailyChecker{},
	core.Weekly:  WeeklyChecker{},
	core.Monthly: MonthlyChecker{},
	core.Yearly:  YearlyChecker{},
	core.Custom:  RRuleChecker{},
}

// GetDuenessChecker returns the checker registered for a repetition type.
func GetDuenessChecker(frequency core.RepetitionTypes) (DuenessChecker, error) {
	checker, ok := duenessStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown repetition type: %s", frequency)
	}
	return checker, nil
}

// RegisterDuenessChecker adds or replaces the checker for a repetition type.
// Not safe for concurrent use with GetDuenessChecker; register at startup.
func RegisterDuenessChecker(frequency core.RepetitionTypes, checker DuenessChecker) {
	duenessStrategies[frequency] = checker
}
