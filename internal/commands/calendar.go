package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"notare/internal/calendar"
	"notare/internal/core"
	"notare/internal/viewmodel"
)

var (
	todayStyle   = color.New(color.FgHiGreen, color.Bold)
	outsideStyle = color.New(color.Faint)
	headerStyle  = color.New(color.Bold, color.Underline)
)

func addCalendar(topLevel *cobra.Command, e *env) {
	var (
		date string
		mode string
	)

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Print the calendar grid with its events",
		Long: `Calendar prints the month or week around a date. Days with events are
marked with * and listed below the grid.

Examples:
  notarectl calendar
  notarectl calendar --date 2024-01-15 --mode week`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true

			today := e.journal.Today()
			ref := today
			if date != "" {
				d, err := core.ParseDateKey(date)
				if err != nil {
					return err
				}
				if !d.InRange() {
					return fmt.Errorf("%s: %w", date, core.ErrDateOutOfRange)
				}
				ref = d
			}
			m, err := core.ParseViewMode(mode)
			if err != nil {
				return err
			}

			state := viewmodel.CalendarState{Ref: ref, Selected: ref, Mode: m}
			start, end := calendar.Bounds(state.Ref, state.Mode)
			lookup, err := e.journal.CalendarLookup(cmd.Context(), start, end)
			if err != nil {
				return err
			}
			renderCalendar(cmd.OutOrStdout(), state.Grid(today, lookup))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "reference day (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&mode, "mode", string(core.ViewMonth), "month or week")
	topLevel.AddCommand(cmd)
}

func renderCalendar(w io.Writer, g calendar.Grid) {
	fmt.Fprintln(w, headerStyle.Sprint(g.Title))

	tbl := uitable.New()
	tbl.Separator = " "
	headers := make([]interface{}, 0, 7)
	for _, h := range calendar.WeekdayHeaders() {
		headers = append(headers, h)
	}
	tbl.AddRow(headers...)

	for _, week := range g.Weeks() {
		row := make([]interface{}, 0, len(week))
		for _, d := range week {
			row = append(row, dayCell(d))
		}
		tbl.AddRow(row...)
	}
	fmt.Fprintln(w, tbl)

	if g.EventCount() == 0 {
		fmt.Fprintln(w, "\nNenhum evento no período.")
		return
	}

	fmt.Fprintln(w)
	events := uitable.New()
	events.Separator = "  "
	for _, d := range g.Days {
		for _, ev := range d.Events {
			events.AddRow(d.Date.Key(), ev.Kind, ev.Title)
		}
	}
	fmt.Fprintln(w, events)
}

func dayCell(d calendar.Day) string {
	cell := fmt.Sprintf("%2d", d.Date.Day())
	if len(d.Events) > 0 {
		cell += "*"
	} else {
		cell += " "
	}
	switch {
	case d.IsToday:
		return todayStyle.Sprint(cell)
	case !d.InCurrentPeriod:
		return outsideStyle.Sprint(cell)
	}
	return cell
}
