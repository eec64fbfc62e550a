package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"notare/internal/core"
)

func TestRows(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	task := TaskRow(core.Task{
		ID: "task-1", Title: "Meditação matinal de 15 minutos", Completed: true,
		Priority: core.PriorityHigh, Category: core.CategoryHealth, DueTime: "08:00",
		DueDate: core.NewDate(2024, 1, 15),
	}, at)
	assert.Equal(t, "Alta · Saúde · 08:00 · concluída", task.Detail)
	assert.Equal(t, 2024, task.Year())

	undated := TaskRow(core.Task{ID: "task-5", Title: "Planejar fim de semana", Priority: core.PriorityMedium, Category: core.CategoryPersonal}, at)
	assert.Equal(t, "", undated.Date)
	assert.Equal(t, "Média · Pessoal · pendente", undated.Detail)
	assert.Equal(t, 2025, undated.Year(), "undated rows go to the sync year")

	entry := EntryRow(core.Entry{ID: "entry-3", Date: core.NewDate(2024, 1, 13), Type: core.EntryMemory, Content: "Conversa", Tags: []string{"amizade", "conexão"}}, at)
	assert.Equal(t, "Memória", entry.Title)
	assert.Equal(t, "amizade, conexão", entry.Tags)

	rec := RecurringRow(core.RecurringTask{ID: "rec-3", Title: "Academia", StartDate: core.NewDate(2024, 1, 1), Every: core.Custom, RRule: "FREQ=WEEKLY;BYDAY=MO,WE,FR"}, at)
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=MO,WE,FR", rec.Detail)

	values := MoodRow(core.MoodRecord{ID: "mood-4", Date: core.NewDate(2024, 1, 12), Level: core.MoodNegative}, at).Values()
	assert.Len(t, values, len(Header))
	assert.Equal(t, "Difícil", values[3])
	assert.Equal(t, "2025-03-01T12:00:00Z", values[6])
}
