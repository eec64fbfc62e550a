package calendar

import (
	"fmt"
	"time"

	"notare/internal/core"
)

// Names are pt-BR, the only locale the journal is rendered in.
var (
	weekdayShort = [7]string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}
	weekdayLong  = [7]string{"domingo", "segunda-feira", "terça-feira", "quarta-feira", "quinta-feira", "sexta-feira", "sábado"}
	monthNames   = [12]string{
		"janeiro", "fevereiro", "março", "abril", "maio", "junho",
		"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
	}
)

// WeekdayShort returns the abbreviated day name, e.g. "Seg".
func WeekdayShort(d time.Weekday) string {
	return weekdayShort[d%7]
}

// WeekdayHeaders returns the column headers of a grid, Sunday first.
func WeekdayHeaders() []string {
	return weekdayShort[:]
}

// MonthName returns the lower-case month name for month 1..12.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// FormatMonthYear renders e.g. "janeiro 2024".
func FormatMonthYear(d core.Date) string {
	return fmt.Sprintf("%s %d", MonthName(d.Month()), d.Year())
}

// FormatLong renders e.g. "segunda-feira, 15 de janeiro".
func FormatLong(d core.Date) string {
	return fmt.Sprintf("%s, %d de %s", weekdayLong[d.Weekday()], d.Day(), MonthName(d.Month()))
}

// FormatWeekRange renders the span of a week grid.
func FormatWeekRange(start, end core.Date) string {
	switch {
	case start.SameMonth(end):
		return fmt.Sprintf("%d a %d de %s de %d", start.Day(), end.Day(), MonthName(end.Month()), end.Year())
	case start.Year() == end.Year():
		return fmt.Sprintf("%d de %s a %d de %s de %d", start.Day(), MonthName(start.Month()), end.Day(), MonthName(end.Month()), end.Year())
	default:
		return fmt.Sprintf("%d de %s de %d a %d de %s de %d",
			start.Day(), MonthName(start.Month()), start.Year(),
			end.Day(), MonthName(end.Month()), end.Year())
	}
}
