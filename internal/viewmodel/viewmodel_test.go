package viewmodel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notare/internal/calendar"
	"notare/internal/core"
)

func seedTasks() []core.Task {
	return []core.Task{
		{ID: "1", Title: "Meditação matinal de 15 minutos", Completed: true, Priority: core.PriorityHigh, Category: core.CategoryHealth, DueTime: "08:00"},
		{ID: "2", Title: "Revisar relatório mensal", Priority: core.PriorityHigh, Category: core.CategoryWork, DueTime: "14:00"},
		{ID: "3", Title: "Exercício físico (30 min)", Priority: core.PriorityMedium, Category: core.CategoryHealth, DueTime: "18:00"},
	}
}

func TestToggleTaskDoesNotMutateInput(t *testing.T) {
	s := NewTaskState(seedTasks())
	next := ReduceTasks(s, ToggleTask{ID: "2"})

	assert.False(t, s.Tasks[1].Completed, "input state changed")
	assert.True(t, next.Tasks[1].Completed)

	back := ReduceTasks(next, ToggleTask{ID: "2"})
	assert.False(t, back.Tasks[1].Completed)

	same := ReduceTasks(s, ToggleTask{ID: "missing"})
	assert.Equal(t, s.Tasks, same.Tasks)
}

func TestAddTask(t *testing.T) {
	s := NewTaskState(seedTasks())

	next := ReduceTasks(s, AddTask{ID: "4", Title: "  Ler capítulo do livro "})
	require.Len(t, next.Tasks, 4)
	assert.Len(t, s.Tasks, 3)
	added := next.Tasks[3]
	assert.Equal(t, "Ler capítulo do livro", added.Title)
	assert.Equal(t, core.PriorityMedium, added.Priority)
	assert.Equal(t, core.CategoryPersonal, added.Category)
	assert.False(t, added.Completed)

	blank := ReduceTasks(s, AddTask{Title: "   "})
	assert.Len(t, blank.Tasks, 3)

	withID := ReduceTasks(s, NewAddTask("Planejar fim de semana"))
	assert.NotEmpty(t, withID.Tasks[3].ID)

	explicit := ReduceTasks(s, AddTask{Title: "x", Priority: core.PriorityLow, Category: core.CategoryStudy})
	assert.Equal(t, core.PriorityLow, explicit.Tasks[3].Priority)
	assert.Equal(t, core.CategoryStudy, explicit.Tasks[3].Category)
}

func TestTaskFilterAndStats(t *testing.T) {
	s := NewTaskState(seedTasks())
	assert.Equal(t, FilterPending, s.Filter)
	assert.Len(t, s.Visible(), 2)

	s = ReduceTasks(s, SetFilter{Filter: FilterCompleted})
	require.Len(t, s.Visible(), 1)
	assert.Equal(t, "1", s.Visible()[0].ID)

	s = ReduceTasks(s, SetFilter{Filter: "bogus"})
	assert.Equal(t, FilterCompleted, s.Filter)

	s = ReduceTasks(s, SetFilter{Filter: FilterAll})
	assert.Len(t, s.Visible(), 3)

	assert.Equal(t, TaskCounts{Completed: 1, Total: 3, Rate: 33}, s.Stats())
	assert.Equal(t, TaskCounts{}, NewTaskState(nil).Stats())
	assert.Equal(t, s, ReduceTasks(s, nil))
}

func TestParseTaskFilter(t *testing.T) {
	f, err := ParseTaskFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterPending, f)
	_, err = ParseTaskFilter("archived")
	assert.Error(t, err)
}

func TestCalendarNavigation(t *testing.T) {
	s := NewCalendarState(time.Date(2024, 1, 31, 15, 0, 0, 0, time.UTC))
	assert.Equal(t, core.ViewMonth, s.Mode)
	assert.Equal(t, "2024-01-31", s.Selected.Key())

	s = ReduceCalendar(s, Next{})
	assert.Equal(t, "2024-02-01", s.Ref.Key())
	s = ReduceCalendar(s, Prev{})
	assert.Equal(t, "2024-01-01", s.Ref.Key())
	assert.Equal(t, "2024-01-31", s.Selected.Key(), "navigation keeps the selection")

	s = ReduceCalendar(s, SetMode{Mode: core.ViewWeek})
	assert.Equal(t, core.ViewWeek, s.Mode)
	s = ReduceCalendar(s, Next{})
	assert.Equal(t, "2024-01-08", s.Ref.Key())

	s = ReduceCalendar(s, SetMode{Mode: "year"})
	assert.Equal(t, core.ViewWeek, s.Mode)

	s = ReduceCalendar(s, GoToday{Now: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)})
	assert.Equal(t, "2025-06-02", s.Ref.Key())
	assert.Equal(t, "2025-06-02", s.Selected.Key())
}

func TestCalendarSelect(t *testing.T) {
	s := CalendarState{Ref: core.NewDate(2024, 1, 15), Mode: core.ViewMonth}

	inside := ReduceCalendar(s, Select{Date: core.NewDate(2024, 1, 20)})
	assert.Equal(t, "2024-01-15", inside.Ref.Key())
	assert.Equal(t, "2024-01-20", inside.Selected.Key())

	// Feb 3 is padding of the January grid, so the reference stays.
	padding := ReduceCalendar(s, Select{Date: core.NewDate(2024, 2, 3)})
	assert.Equal(t, "2024-01-15", padding.Ref.Key())

	outside := ReduceCalendar(s, Select{Date: core.NewDate(2024, 3, 10)})
	assert.Equal(t, "2024-03-10", outside.Ref.Key())

	assert.Equal(t, s, ReduceCalendar(s, Select{}))
}

func TestCalendarGrid(t *testing.T) {
	s := CalendarState{Ref: core.NewDate(2024, 1, 15), Selected: core.NewDate(2024, 1, 16)}
	lookup := calendar.MapLookup{"2024-01-16": {{Title: "Meditação", Kind: core.KindTask}}}

	g := s.Grid(core.NewDate(2024, 1, 15), lookup)
	assert.Equal(t, core.ViewMonth, g.Mode)
	assert.Len(t, g.Days, 35)
	assert.Equal(t, 1, g.EventCount())
	for _, d := range g.Days {
		assert.Equal(t, d.Date.Key() == "2024-01-16", d.IsSelected)
		assert.Equal(t, d.Date.Key() == "2024-01-15", d.IsToday)
	}
}

func TestEntryState(t *testing.T) {
	s := EntryState{Entries: []core.Entry{{ID: "old", Content: "Conversa importante"}}}

	s = ReduceEntries(s, ToggleDraftTag{Tag: "Gratidão"})
	s = ReduceEntries(s, ToggleDraftTag{Tag: "família"})
	s = ReduceEntries(s, ToggleDraftTag{Tag: "#gratidão"})
	assert.Equal(t, []string{"família"}, s.DraftTags)
	s = ReduceEntries(s, ToggleDraftTag{Tag: "  "})
	assert.Equal(t, []string{"família"}, s.DraftTags)

	before := s
	s = ReduceEntries(s, AddEntry{Entry: core.Entry{ID: "new", Content: "Reflexão matinal", Tags: []string{"Crescimento"}}})
	require.Len(t, s.Entries, 2)
	assert.Equal(t, "new", s.Entries[0].ID)
	assert.Equal(t, []string{"crescimento", "família"}, s.Entries[0].Tags)
	assert.Empty(t, s.DraftTags)
	assert.Len(t, before.Entries, 1)
	assert.Equal(t, []string{"família"}, before.DraftTags)

	ignored := ReduceEntries(s, AddEntry{Entry: core.Entry{Content: " "}})
	assert.Len(t, ignored.Entries, 2)

	s = ReduceEntries(ReduceEntries(s, ToggleDraftTag{Tag: "saúde"}), ClearDraft{})
	assert.Empty(t, s.DraftTags)

	assert.Len(t, s.WithTag("FAMÍLIA"), 1)
	assert.Len(t, s.WithTag("trabalho"), 0)
	assert.Len(t, s.WithTag(""), 2)
}
