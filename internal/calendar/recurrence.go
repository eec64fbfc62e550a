package calendar

import (
	"errors"
	"fmt"
	"strings"

	"github.com/teambition/rrule-go"

	"notare/internal/core"
)

var simpleRules = map[core.RepetitionTypes]string{
	core.Daily:   "FREQ=DAILY",
	core.Weekly:  "FREQ=WEEKLY",
	core.Monthly: "FREQ=MONTHLY",
	core.Yearly:  "FREQ=YEARLY",
}

// Rule builds the recurrence rule of rt anchored on its start date.
func Rule(rt core.RecurringTask) (*rrule.RRule, error) {
	raw, ok := simpleRules[rt.Every]
	if rt.Every == core.Custom {
		raw, ok = strings.TrimPrefix(strings.TrimSpace(rt.RRule), "RRULE:"), true
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidRepetition, rt.Every)
	}

	r, err := rrule.StrToRRule(raw)
	if err != nil {
		return nil, fmt.Errorf("parse rrule %q: %w", raw, err)
	}
	r.DTStart(rt.StartDate.Time)
	return r, nil
}

// ExpandRecurring lists the days in [from, to] on which rt produces a task.
// The expansion never goes past rt.EndDate. Monthly rules on the 29th..31st
// skip the months that lack that day.
func ExpandRecurring(rt core.RecurringTask, from, to core.Date) ([]core.Date, error) {
	if err := rt.StartDate.Validate(); err != nil {
		return nil, fmt.Errorf("recurring task %q: %w", rt.Title, err)
	}
	r, err := Rule(rt)
	if err != nil {
		return nil, err
	}

	if !rt.EndDate.IsZero() && rt.EndDate.Before(to.Time) {
		to = rt.EndDate
	}
	if to.Before(from.Time) {
		return []core.Date{}, nil
	}

	var set rrule.Set
	set.RRule(r)

	times := set.Between(from.Time, to.Time, true)
	out := make([]core.Date, 0, len(times))
	for _, t := range times {
		out = append(out, core.DateOf(t))
	}
	return out, nil
}

// RecurringEvents expands every template over [from, to] as task events.
// Templates whose rule cannot be parsed are reported in the returned error
// but do not prevent the others from being expanded.
func RecurringEvents(templates []core.RecurringTask, from, to core.Date) ([]DatedEvent, error) {
	var (
		out  []DatedEvent
		errs []error
	)
	for _, rt := range templates {
		days, err := ExpandRecurring(rt, from, to)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, d := range days {
			out = append(out, DatedEvent{Date: d, Event: core.Event{Title: rt.Title, Kind: core.KindTask}})
		}
	}
	return out, errors.Join(errs...)
}
