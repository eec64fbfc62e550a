package calendar

import "notare/internal/core"

// MiniDay summarizes one day of the sidebar calendar.
type MiniDay struct {
	Date    core.Date
	Entries int
	// Mood is empty when no mood was recorded that day.
	Mood core.MoodLevel
}

// MiniMonth returns one MiniDay per day of the month, in order. The mood of
// a day is the level recorded most often; ties go to the latest record.
func MiniMonth(year, month int, entries []core.Entry, moods []core.MoodRecord) []MiniDay {
	first := core.NewDate(year, month, 1)
	n := core.DaysIn(first.Year(), first.Month())

	entryCount := make(map[string]int)
	for _, e := range entries {
		if e.Date.SameMonth(first) {
			entryCount[e.Date.Key()]++
		}
	}

	type tally struct {
		counts map[core.MoodLevel]int
		best   core.MoodLevel
	}
	moodByDay := make(map[string]*tally)
	for _, m := range moods {
		if !m.Date.SameMonth(first) || !m.Level.IsValid() {
			continue
		}
		t := moodByDay[m.Date.Key()]
		if t == nil {
			t = &tally{counts: make(map[core.MoodLevel]int)}
			moodByDay[m.Date.Key()] = t
		}
		t.counts[m.Level]++
		if t.counts[m.Level] >= t.counts[t.best] {
			t.best = m.Level
		}
	}

	days := make([]MiniDay, n)
	for i := range days {
		d := first.AddDays(i)
		days[i] = MiniDay{Date: d, Entries: entryCount[d.Key()]}
		if t := moodByDay[d.Key()]; t != nil {
			days[i].Mood = t.best
		}
	}
	return days
}
