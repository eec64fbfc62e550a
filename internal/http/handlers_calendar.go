package http

import (
	"net/http"

	"notare/internal/calendar"
	"notare/internal/core"
	"notare/internal/viewmodel"
)

type calendarData struct {
	Grid           calendar.Grid
	Headers        []string
	Mode           core.ViewMode
	Ref            core.Date
	Selected       core.Date
	SelectedLabel  string
	SelectedEvents []core.Event
	Today          core.Date
}

// handleCalendar renders the calendar grid partial. The state travels in
// the query string: date is the reference day, selected the highlighted
// one, and nav an optional step applied after the selection.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	q := r.URL.Query()
	today := s.journal.Today()

	ref, err := ParseDate(q, "date", today)
	if err != nil || !ref.InRange() {
		BadRequestError("Data inválida").Write(w)
		return
	}
	selected, err := ParseDate(q, "selected", core.Date{})
	if err != nil {
		BadRequestError("Data selecionada inválida").Write(w)
		return
	}
	mode := core.ViewMonth
	if v := q.Get("mode"); v != "" {
		if mode, err = core.ParseViewMode(v); err != nil {
			BadRequestError(userMessage(err)).Write(w)
			return
		}
	}

	state := viewmodel.CalendarState{Ref: ref, Selected: ref, Mode: mode}
	state = viewmodel.ReduceCalendar(state, viewmodel.Select{Date: selected})

	switch nav := calendar.Navigation(q.Get("nav")); nav {
	case calendar.NavNone:
	case calendar.NavNext:
		state = viewmodel.ReduceCalendar(state, viewmodel.Next{})
	case calendar.NavPrev:
		state = viewmodel.ReduceCalendar(state, viewmodel.Prev{})
	case calendar.NavToday:
		state = viewmodel.ReduceCalendar(state, viewmodel.GoToday{Now: s.journal.Now()})
	default:
		BadRequestError("Navegação inválida").Write(w)
		return
	}

	start, end := calendar.Bounds(state.Ref, state.Mode)
	lookup, err := s.journal.CalendarLookup(r.Context(), start, end)
	if err != nil {
		s.writeError(w, r, err, "calendar")
		return
	}

	// Navigation keeps the selection, which may now be off the grid.
	selectedLookup := lookup
	if state.Selected.Before(start.Time) || state.Selected.After(end.Time) {
		selectedLookup, err = s.journal.CalendarLookup(r.Context(), state.Selected, state.Selected)
		if err != nil {
			s.writeError(w, r, err, "calendar")
			return
		}
	}

	data := calendarData{
		Grid:           state.Grid(today, lookup),
		Headers:        calendar.WeekdayHeaders(),
		Mode:           state.Mode,
		Ref:            state.Ref,
		Selected:       state.Selected,
		SelectedLabel:  calendar.FormatLong(state.Selected),
		SelectedEvents: selectedLookup.EventsOn(state.Selected.Key()),
		Today:          today,
	}
	s.render(w, r, "calendar", data, nil)
}

type miniCalendarData struct {
	Title   string
	Headers []string
	// Leading pads the first row up to the weekday of the 1st.
	Leading []struct{}
	Days    []calendar.MiniDay
	Today   core.Date
	Prev    core.Date
	Next    core.Date
}

// handleMiniCalendar renders the sidebar month with entry counts and the
// prevailing mood of each day.
func (s *Server) handleMiniCalendar(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	today := s.journal.Today()
	p := ParseMonthParams(r.URL.Query(), today)

	days, err := s.journal.MiniMonth(r.Context(), p.Year, p.Month)
	if err != nil {
		s.writeError(w, r, err, "mini_calendar")
		return
	}

	first := core.NewDate(p.Year, p.Month, 1)
	data := miniCalendarData{
		Title:   calendar.FormatMonthYear(first),
		Headers: calendar.WeekdayHeaders(),
		Leading: make([]struct{}, int(first.Weekday())),
		Days:    days,
		Today:   today,
		Prev:    calendar.Prev(first, core.ViewMonth),
		Next:    calendar.Next(first, core.ViewMonth),
	}
	s.render(w, r, "mini_calendar", data, nil)
}
