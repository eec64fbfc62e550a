package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"notare/internal/core"
	"notare/internal/log"
	"notare/internal/stats"
)

// parseReportFilter reads the report form. Custom presets need start and
// end; the other presets ignore them.
func parseReportFilter(q url.Values, now time.Time) (stats.Filter, error) {
	preset := stats.PresetLast30Days
	if v := q.Get("preset"); v != "" {
		p, err := stats.ParsePreset(v)
		if err != nil {
			return stats.Filter{}, err
		}
		preset = p
	}

	f := stats.NewFilter(preset, now)
	if preset == stats.PresetCustom {
		from, err := ParseDate(q, "start", f.From)
		if err != nil {
			return stats.Filter{}, err
		}
		to, err := ParseDate(q, "end", f.To)
		if err != nil {
			return stats.Filter{}, err
		}
		if err := stats.CheckRange(from, to); err != nil {
			return stats.Filter{}, err
		}
		f.From, f.To = from, to
	}

	for _, v := range ParseList(q, "mood") {
		m, err := core.ParseMoodLevel(v)
		if err != nil {
			return stats.Filter{}, err
		}
		f.Moods = append(f.Moods, m)
	}
	for _, v := range ParseList(q, "category") {
		c, err := core.ParseCategory(v)
		if err != nil {
			return stats.Filter{}, err
		}
		f.Categories = append(f.Categories, c)
	}
	for _, v := range ParseList(q, "type") {
		t, err := core.ParseEntryType(v)
		if err != nil {
			return stats.Filter{}, err
		}
		f.EntryTypes = append(f.EntryTypes, t)
	}
	for _, v := range ParseList(q, "status") {
		st, err := stats.ParseTaskStatus(v)
		if err != nil {
			return stats.Filter{}, err
		}
		f.TaskStatuses = append(f.TaskStatuses, st)
	}
	f.Tags = core.NormalizeTags(ParseList(q, "tag"))
	return f, nil
}

func filterError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, stats.ErrInvertedRange):
		BadRequestError("A data inicial deve ser anterior à final").Write(w)
		return
	case errors.Is(err, stats.ErrRangeTooLong):
		BadRequestError(fmt.Sprintf("O período pode ter no máximo %d dias", stats.MaxRangeDays)).Write(w)
		return
	}
	BadRequestError(userMessage(err)).Write(w)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	f, err := parseReportFilter(r.URL.Query(), s.journal.Now())
	if err != nil {
		filterError(w, err)
		return
	}
	report, err := s.journal.Report(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err, "report")
		return
	}
	s.render(w, r, "report", report, nil)
}

// handleReportExport downloads the report as CSV or the events of its
// range as an iCalendar file.
func (s *Server) handleReportExport(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	q := r.URL.Query()
	f, err := parseReportFilter(q, s.journal.Now())
	if err != nil {
		filterError(w, err)
		return
	}

	logger := s.requestLogger(r)
	switch format := q.Get("format"); format {
	case "", "csv":
		report, err := s.journal.Report(r.Context(), f)
		if err != nil {
			s.writeError(w, r, err, "report_export")
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", attachment(report.Filename("csv")))
		if err := report.WriteCSV(w); err != nil {
			logger.ErrorContext(r.Context(), "CSV export failed",
				log.FieldOperation, log.OpExport,
				"error", err)
		}
	case "ics":
		body, err := s.journal.ExportICS(r.Context(), f.From, f.To)
		if err != nil {
			s.writeError(w, r, err, "ics_export")
			return
		}
		name := stats.Report{GeneratedAt: s.journal.Now()}.Filename("ics")
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", attachment(name))
		_, _ = w.Write([]byte(body))
	default:
		BadRequestError(fmt.Sprintf("Formato não suportado: %s", format)).Write(w)
	}
}

func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}

type progressData struct {
	Progress     stats.ProgressStats
	Achievements []stats.Achievement
	Periods      []stats.Period
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	period := stats.PeriodWeek
	if v := r.URL.Query().Get("period"); v != "" {
		p, err := stats.ParsePeriod(v)
		if err != nil {
			BadRequestError(userMessage(err)).Write(w)
			return
		}
		period = p
	}

	progress, achievements, err := s.journal.Progress(r.Context(), period)
	if err != nil {
		s.writeError(w, r, err, "progress")
		return
	}
	data := progressData{
		Progress:     progress,
		Achievements: achievements,
		Periods:      []stats.Period{stats.PeriodWeek, stats.PeriodMonth, stats.PeriodYear},
	}
	s.render(w, r, "progress", data, nil)
}
