package http

import (
	"net/http"
	"slices"

	"notare/internal/core"
	"notare/internal/stats"
	"notare/internal/viewmodel"
)

// moodHistoryLen is how many records the mood panel lists.
const moodHistoryLen = 10

type moodsData struct {
	History      []core.MoodRecord
	Breakdown    stats.MoodStats
	Distribution []stats.LevelShare
	Average      float64
}

// handleMoods shows the mood history on GET and records a mood on POST.
func (s *Server) handleMoods(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGETOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}

	var b *HTMXResponseBuilder
	if r.Method == http.MethodPost {
		if resp := ParseFormOrFail(r); resp != nil {
			resp.Write(w)
			return
		}
		level, err := core.ParseMoodLevel(r.Form.Get("level"))
		if err != nil {
			UnprocessableEntityError(userMessage(err)).Write(w)
			return
		}
		date, err := ParseDate(r.Form, "date", core.Date{})
		if err != nil {
			UnprocessableEntityError("Data inválida").Write(w)
			return
		}

		saved, err := s.journal.RecordMood(r.Context(), core.MoodRecord{
			Date:  date,
			Level: level,
			Note:  sanitizeInput(r.Form.Get("note")),
		})
		s.recordWrite(err)
		if err != nil {
			s.writeError(w, r, err, "record_mood")
			return
		}
		b = NewHTMXResponse().
			TriggerMoodRecorded(saved.Date.Key()).
			TriggerCalendarRefresh(saved.Date.Key()).
			TriggerFormReset().
			TriggerSuccessNotification("Humor registrado: " + saved.Level.Label())
	}

	moods, err := s.journal.Moods(r.Context())
	if err != nil {
		s.writeError(w, r, err, "list_moods")
		return
	}

	history := slices.Clone(moods)
	slices.SortStableFunc(history, func(a, b core.MoodRecord) int {
		return b.Date.Compare(a.Date.Time)
	})
	if len(history) > moodHistoryLen {
		history = history[:moodHistoryLen]
	}

	data := moodsData{
		History:      history,
		Breakdown:    stats.MoodBreakdown(moods),
		Distribution: stats.MoodDistribution(moods),
		Average:      stats.AverageMood(moods),
	}
	s.render(w, r, "moods", data, b)
}

type entriesData struct {
	Entries    []core.Entry
	Tag        string
	CommonTags []string
	EntryTypes []core.EntryType
}

// handleEntries lists entries, optionally by tag, on GET and adds one on
// POST. Tags come from the free-text field and the suggestion checkboxes.
func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGETOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}

	var b *HTMXResponseBuilder
	if r.Method == http.MethodPost {
		if resp := ParseFormOrFail(r); resp != nil {
			resp.Write(w)
			return
		}
		entry := core.Entry{
			Content: sanitizeInput(r.Form.Get("content")),
			Tags:    append(core.SplitTags(r.Form.Get("tags")), r.Form["tag"]...),
		}
		if v := r.Form.Get("type"); v != "" {
			t, err := core.ParseEntryType(v)
			if err != nil {
				UnprocessableEntityError(userMessage(err)).Write(w)
				return
			}
			entry.Type = t
		}
		date, err := ParseDate(r.Form, "date", core.Date{})
		if err != nil {
			UnprocessableEntityError("Data inválida").Write(w)
			return
		}
		entry.Date = date

		saved, err := s.journal.AddEntry(r.Context(), entry)
		s.recordWrite(err)
		if err != nil {
			s.writeError(w, r, err, "create_entry")
			return
		}
		b = NewHTMXResponse().
			TriggerEntryCreated(saved.ID, saved.Date.Key()).
			TriggerCalendarRefresh(saved.Date.Key()).
			TriggerFormReset().
			TriggerSuccessNotification("Entrada salva")
	}

	entries, err := s.journal.Entries(r.Context())
	if err != nil {
		s.writeError(w, r, err, "list_entries")
		return
	}

	tag := ""
	if r.Method == http.MethodGet {
		tag = sanitizeInput(r.URL.Query().Get("tag"))
	}
	state := viewmodel.EntryState{Entries: entries}
	data := entriesData{
		Entries:    state.WithTag(tag),
		Tag:        tag,
		CommonTags: core.CommonTags,
		EntryTypes: core.EntryTypes(),
	}
	s.render(w, r, "entries", data, b)
}
