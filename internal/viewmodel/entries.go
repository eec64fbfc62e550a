package viewmodel

import (
	"strings"

	"notare/internal/core"
)

// EntryState is the entry list, newest first, and the tags picked for the
// entry being written.
type EntryState struct {
	Entries   []core.Entry
	DraftTags []string
}

type EntryAction interface {
	applyEntries(EntryState) EntryState
}

type (
	// AddEntry prepends Entry with the draft tags merged in, then clears
	// the draft. Entries with blank content are ignored.
	AddEntry struct {
		Entry core.Entry
	}

	ToggleDraftTag struct {
		Tag string
	}

	ClearDraft struct{}
)

func ReduceEntries(s EntryState, a EntryAction) EntryState {
	if a == nil {
		return s
	}
	return a.applyEntries(s)
}

func (a AddEntry) applyEntries(s EntryState) EntryState {
	if strings.TrimSpace(a.Entry.Content) == "" {
		return s
	}
	e := a.Entry
	tags := make([]string, 0, len(e.Tags)+len(s.DraftTags))
	tags = append(tags, e.Tags...)
	e.Tags = core.NormalizeTags(append(tags, s.DraftTags...))

	entries := make([]core.Entry, 0, len(s.Entries)+1)
	entries = append(entries, e)
	s.Entries = append(entries, s.Entries...)
	s.DraftTags = nil
	return s
}

func (a ToggleDraftTag) applyEntries(s EntryState) EntryState {
	norm := core.NormalizeTags([]string{a.Tag})
	if len(norm) == 0 {
		return s
	}
	tag := norm[0]

	tags := make([]string, 0, len(s.DraftTags)+1)
	found := false
	for _, t := range s.DraftTags {
		if t == tag {
			found = true
			continue
		}
		tags = append(tags, t)
	}
	if !found {
		tags = append(tags, tag)
	}
	s.DraftTags = tags
	return s
}

func (ClearDraft) applyEntries(s EntryState) EntryState {
	s.DraftTags = nil
	return s
}

// WithTag returns the entries carrying tag, or all of them when tag is empty.
func (s EntryState) WithTag(tag string) []core.Entry {
	if strings.TrimSpace(tag) == "" {
		return s.Entries
	}
	var out []core.Entry
	for _, e := range s.Entries {
		if e.HasTag(tag) {
			out = append(out, e)
		}
	}
	return out
}
