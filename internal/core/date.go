package core

import (
	"errors"
	"fmt"
	"time"
)

// DateKeyLayout is the yyyy-MM-dd layout used to key days everywhere.
const DateKeyLayout = "2006-01-02"

// Date is a calendar day stored as UTC midnight.
type Date struct {
	time.Time
}

var (
	ErrZeroDate    = errors.New("date cannot be zero")
	ErrInvalidDate = errors.New("invalid date")

	ErrDateOutOfRange = fmt.Errorf("%w: year outside %d..%d", ErrInvalidDate, MinYear, MaxYear)
)

// Calendar references stay within these years so the days spilling over
// the edges of any grid still have four-digit keys.
const (
	MinYear = 1
	MaxYear = 9998
)

// NewDate creates a new Date from year, month, day. Out-of-range values
// normalize the way time.Date does (e.g. month 13 is January next year).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDateKey parses a yyyy-MM-dd key.
func ParseDateKey(s string) (Date, error) {
	t, err := time.Parse(DateKeyLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// InRange reports whether d lies within [MinYear, MaxYear].
func (d Date) InRange() bool {
	return d.Year() >= MinYear && d.Year() <= MaxYear
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// Key returns the yyyy-MM-dd form of the date.
func (d Date) Key() string {
	return d.Format(DateKeyLayout)
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Equal reports whether both values name the same calendar day.
func (d Date) Equal(o Date) bool {
	return d.Year() == o.Year() && d.Month() == o.Month() && d.Day() == o.Day()
}

// SameMonth reports whether both dates fall in the same month of the same year.
func (d Date) SameMonth(o Date) bool {
	return d.Year() == o.Year() && d.Month() == o.Month()
}

// FirstOfMonth returns day 1 of d's month.
func (d Date) FirstOfMonth() Date {
	return NewDate(d.Year(), d.Month(), 1)
}

// LastOfMonth returns the last day of d's month.
func (d Date) LastOfMonth() Date {
	return NewDate(d.Year(), d.Month()+1, 0)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year, month int) int {
	return NewDate(year, month+1, 0).Day()
}

// DaysBetween counts the days in the inclusive range [from, to]; it is 0
// when to precedes from.
func DaysBetween(from, to Date) int {
	if to.Before(from.Time) {
		return 0
	}
	return int(to.Sub(from.Time).Hours()/24) + 1
}
