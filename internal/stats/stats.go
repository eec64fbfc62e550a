// Package stats computes the aggregate figures shown by the dashboard, the
// progress panel and the reports. Every function is pure: inputs are never
// mutated and nothing is cached between calls.
package stats

import (
	"math"
	"sort"

	"notare/internal/core"
)

// MoodStats buckets mood records into positive, neutral and negative.
// Percentages are rounded independently and may not sum to exactly 100.
type MoodStats struct {
	Total         int
	PositiveCount int
	NeutralCount  int
	NegativeCount int
	Positive      int
	Neutral       int
	Negative      int
}

// LevelShare is the count and share of one mood level.
type LevelShare struct {
	Level      core.MoodLevel
	Label      string
	Count      int
	Percentage int
}

// CategoryShare is the count and share of one task category.
type CategoryShare struct {
	Category   core.Category
	Label      string
	Count      int
	Percentage int
}

type TagCount struct {
	Tag   string
	Count int
}

// DayActivity summarizes one day. Mood is the mean score of that day's
// records, 0 when none.
type DayActivity struct {
	Date    core.Date
	Entries int
	Tasks   int
	Mood    float64
}

type DayCompletion struct {
	Date      core.Date
	Completed int
	Total     int
}

type HourCount struct {
	Hour  int
	Count int
}

// Percent returns round(n/total*100), or 0 when total is not positive.
func Percent(n, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(total) * 100))
}

func MoodBreakdown(records []core.MoodRecord) MoodStats {
	var s MoodStats
	for _, r := range records {
		switch {
		case r.Level.IsPositive():
			s.PositiveCount++
		case r.Level.IsNegative():
			s.NegativeCount++
		default:
			s.NeutralCount++
		}
	}
	s.Total = len(records)
	s.Positive = Percent(s.PositiveCount, s.Total)
	s.Neutral = Percent(s.NeutralCount, s.Total)
	s.Negative = Percent(s.NegativeCount, s.Total)
	return s
}

// TaskCompletion returns the completed share of tasks as a whole percentage.
func TaskCompletion(tasks []core.Task) int {
	done := 0
	for _, t := range tasks {
		if t.Completed {
			done++
		}
	}
	return Percent(done, len(tasks))
}

// EntryFrequency returns the share of days in [from, to] with at least one entry.
func EntryFrequency(entries []core.Entry, from, to core.Date) int {
	days := core.DaysBetween(from, to)
	if days == 0 {
		return 0
	}
	seen := make(map[string]struct{})
	for _, e := range entries {
		if inRange(e.Date, from, to) {
			seen[e.Date.Key()] = struct{}{}
		}
	}
	return Percent(len(seen), days)
}

// MoodDistribution reports every level, best first, even when its count is 0.
func MoodDistribution(records []core.MoodRecord) []LevelShare {
	counts := make(map[core.MoodLevel]int, 5)
	for _, r := range records {
		counts[r.Level]++
	}
	levels := core.MoodLevels()
	out := make([]LevelShare, 0, len(levels))
	for _, l := range levels {
		out = append(out, LevelShare{
			Level:      l,
			Label:      l.Label(),
			Count:      counts[l],
			Percentage: Percent(counts[l], len(records)),
		})
	}
	return out
}

// AverageMood returns the mean Score rounded to one decimal.
func AverageMood(records []core.MoodRecord) float64 {
	sum, n := 0, 0
	for _, r := range records {
		if s := r.Level.Score(); s > 0 {
			sum += s
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return round1(float64(sum) / float64(n))
}

// Streak counts consecutive days ending today that have an entry. A day
// without an entry yet does not break the streak until it is over, so the
// count starts from yesterday when today is empty.
func Streak(dates []core.Date, today core.Date) int {
	has := make(map[string]bool, len(dates))
	for _, d := range dates {
		has[d.Key()] = true
	}

	day := today
	if !has[day.Key()] {
		day = day.AddDays(-1)
	}
	n := 0
	for has[day.Key()] {
		n++
		day = day.AddDays(-1)
	}
	return n
}

// EntryDates extracts the dates of entries, in input order.
func EntryDates(entries []core.Entry) []core.Date {
	out := make([]core.Date, len(entries))
	for i, e := range entries {
		out[i] = e.Date
	}
	return out
}

// CategoryBreakdown reports every category in canonical order.
func CategoryBreakdown(tasks []core.Task) []CategoryShare {
	counts := make(map[core.Category]int, 4)
	for _, t := range tasks {
		counts[t.Category]++
	}
	cats := core.Categories()
	out := make([]CategoryShare, 0, len(cats))
	for _, c := range cats {
		out = append(out, CategoryShare{
			Category:   c,
			Label:      c.Label(),
			Count:      counts[c],
			Percentage: Percent(counts[c], len(tasks)),
		})
	}
	return out
}

// TopTags returns the n most used tags, by count then alphabetically.
func TopTags(entries []core.Entry, n int) []TagCount {
	counts := make(map[string]int)
	for _, e := range entries {
		for _, tag := range core.NormalizeTags(e.Tags) {
			counts[tag]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for tag, c := range counts {
		out = append(out, TagCount{Tag: tag, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// DailyActivity returns one row per day of [from, to].
func DailyActivity(from, to core.Date, entries []core.Entry, tasks []core.Task, moods []core.MoodRecord) []DayActivity {
	n := core.DaysBetween(from, to)
	out := make([]DayActivity, n)
	index := make(map[string]int, n)
	for i := range out {
		out[i].Date = from.AddDays(i)
		index[out[i].Date.Key()] = i
	}

	for _, e := range entries {
		if i, ok := index[e.Date.Key()]; ok {
			out[i].Entries++
		}
	}
	for _, t := range tasks {
		if i, ok := index[t.DueDate.Key()]; ok && !t.DueDate.IsZero() {
			out[i].Tasks++
		}
	}

	sums := make([]int, n)
	counts := make([]int, n)
	for _, m := range moods {
		if i, ok := index[m.Date.Key()]; ok && m.Level.IsValid() {
			sums[i] += m.Level.Score()
			counts[i]++
		}
	}
	for i := range out {
		if counts[i] > 0 {
			out[i].Mood = round1(float64(sums[i]) / float64(counts[i]))
		}
	}
	return out
}

// CompletionByDay counts completed and total tasks due on each day of [from, to].
func CompletionByDay(from, to core.Date, tasks []core.Task) []DayCompletion {
	n := core.DaysBetween(from, to)
	out := make([]DayCompletion, n)
	for i := range out {
		out[i].Date = from.AddDays(i)
	}
	for _, t := range tasks {
		if t.DueDate.IsZero() || !inRange(t.DueDate, from, to) {
			continue
		}
		i := core.DaysBetween(from, t.DueDate) - 1
		out[i].Total++
		if t.Completed {
			out[i].Completed++
		}
	}
	return out
}

// TimePatterns buckets entries by the hour they were written.
func TimePatterns(entries []core.Entry) []HourCount {
	out := make([]HourCount, 24)
	for h := range out {
		out[h].Hour = h
	}
	for _, e := range entries {
		if e.CreatedAt.IsZero() {
			continue
		}
		out[e.CreatedAt.Hour()].Count++
	}
	return out
}

func inRange(d, from, to core.Date) bool {
	return !d.Before(from.Time) && !d.After(to.Time)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
