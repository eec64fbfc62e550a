package calendar

import (
	"sort"

	"notare/internal/core"
)

// EventLookup resolves the events of a day from its yyyy-MM-dd key.
type EventLookup interface {
	EventsOn(key string) []core.Event
}

// MapLookup is an EventLookup backed by a map keyed by yyyy-MM-dd.
type MapLookup map[string][]core.Event

func (m MapLookup) EventsOn(key string) []core.Event {
	return m[key]
}

// Add appends ev under d's key.
func (m MapLookup) Add(d core.Date, ev core.Event) {
	m[d.Key()] = append(m[d.Key()], ev)
}

// Keys returns the populated keys in ascending order.
func (m MapLookup) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Flatten lists every event with its date, ordered by day.
func (m MapLookup) Flatten() []DatedEvent {
	var out []DatedEvent
	for _, k := range m.Keys() {
		d, err := core.ParseDateKey(k)
		if err != nil {
			continue
		}
		for _, ev := range m[k] {
			out = append(out, DatedEvent{Date: d, Event: ev})
		}
	}
	return out
}

type multiLookup []EventLookup

func (ml multiLookup) EventsOn(key string) []core.Event {
	var out []core.Event
	for _, l := range ml {
		if l == nil {
			continue
		}
		out = append(out, l.EventsOn(key)...)
	}
	return out
}

// MergeLookups returns a lookup yielding the events of every input, in order.
func MergeLookups(lookups ...EventLookup) EventLookup {
	return multiLookup(lookups)
}

// DatedEvent pairs an event with the day it belongs to.
type DatedEvent struct {
	Date  core.Date
	Event core.Event
}

// Index groups dated events by day.
func Index(events []DatedEvent) MapLookup {
	m := make(MapLookup, len(events))
	for _, e := range events {
		m.Add(e.Date, e.Event)
	}
	return m
}

// EventsFromJournal derives calendar markers from journal records.
// Tasks without a due date are not placed on the calendar.
func EventsFromJournal(tasks []core.Task, entries []core.Entry, moods []core.MoodRecord) []DatedEvent {
	out := make([]DatedEvent, 0, len(tasks)+len(entries)+len(moods))
	for _, e := range entries {
		out = append(out, DatedEvent{Date: e.Date, Event: core.Event{Title: entryTitle(e), Kind: core.KindEntry}})
	}
	for _, t := range tasks {
		if t.DueDate.IsZero() {
			continue
		}
		out = append(out, DatedEvent{Date: t.DueDate, Event: core.Event{Title: t.Title, Kind: core.KindTask}})
	}
	for _, m := range moods {
		out = append(out, DatedEvent{Date: m.Date, Event: core.Event{Title: "Humor " + lowerFirst(m.Level.Label()), Kind: core.KindMood}})
	}
	return out
}

const entryTitleMax = 40

func entryTitle(e core.Entry) string {
	r := []rune(e.Content)
	if len(r) <= entryTitleMax {
		return e.Content
	}
	return string(r[:entryTitleMax]) + "…"
}

func lowerFirst(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	if r[0] >= 'A' && r[0] <= 'Z' {
		r[0] += 'a' - 'A'
	}
	return string(r)
}
