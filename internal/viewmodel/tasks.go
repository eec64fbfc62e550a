// Package viewmodel holds the explicit state of the interactive panels.
// Each state is updated by a pure reducer: an action goes in, a new state
// comes out, and the input state is left untouched.
package viewmodel

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"notare/internal/core"
	"notare/internal/stats"
)

const (
	FilterAll       TaskFilter = "all"
	FilterPending   TaskFilter = "pending"
	FilterCompleted TaskFilter = "completed"
)

// TaskFilter selects which tasks the list shows.
type TaskFilter string

func ParseTaskFilter(s string) (TaskFilter, error) {
	f := TaskFilter(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FilterAll, FilterPending, FilterCompleted:
		return f, nil
	case "":
		return FilterPending, nil
	}
	return "", fmt.Errorf("invalid task filter %q", s)
}

type TaskState struct {
	Tasks  []core.Task
	Filter TaskFilter
}

// NewTaskState starts with the pending filter.
func NewTaskState(tasks []core.Task) TaskState {
	return TaskState{Tasks: tasks, Filter: FilterPending}
}

// TaskAction is implemented by ToggleTask, AddTask and SetFilter.
type TaskAction interface {
	applyTask(TaskState) TaskState
}

type ToggleTask struct {
	ID string
}

// AddTask appends a task. Missing priority and category default to medium
// and personal. A blank title is ignored.
type AddTask struct {
	ID       string
	Title    string
	Priority core.Priority
	Category core.Category
	DueTime  string
	DueDate  core.Date
}

type SetFilter struct {
	Filter TaskFilter
}

// NewAddTask builds an AddTask with a fresh ID.
func NewAddTask(title string) AddTask {
	return AddTask{ID: uuid.NewString(), Title: title}
}

func ReduceTasks(s TaskState, a TaskAction) TaskState {
	if a == nil {
		return s
	}
	return a.applyTask(s)
}

func (a ToggleTask) applyTask(s TaskState) TaskState {
	tasks := make([]core.Task, len(s.Tasks))
	copy(tasks, s.Tasks)
	for i := range tasks {
		if tasks[i].ID == a.ID {
			tasks[i].Completed = !tasks[i].Completed
		}
	}
	s.Tasks = tasks
	return s
}

func (a AddTask) applyTask(s TaskState) TaskState {
	title := strings.TrimSpace(a.Title)
	if title == "" {
		return s
	}
	t := core.Task{
		ID:       a.ID,
		Title:    title,
		Priority: a.Priority,
		Category: a.Category,
		DueTime:  a.DueTime,
		DueDate:  a.DueDate,
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if !t.Priority.IsValid() {
		t.Priority = core.PriorityMedium
	}
	if !t.Category.IsValid() {
		t.Category = core.CategoryPersonal
	}

	tasks := make([]core.Task, 0, len(s.Tasks)+1)
	tasks = append(tasks, s.Tasks...)
	s.Tasks = append(tasks, t)
	return s
}

func (a SetFilter) applyTask(s TaskState) TaskState {
	if f, err := ParseTaskFilter(string(a.Filter)); err == nil {
		s.Filter = f
	}
	return s
}

// Visible returns the tasks the current filter lets through.
func (s TaskState) Visible() []core.Task {
	out := make([]core.Task, 0, len(s.Tasks))
	for _, t := range s.Tasks {
		switch s.Filter {
		case FilterCompleted:
			if !t.Completed {
				continue
			}
		case FilterAll:
		default:
			if t.Completed {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// TaskCounts summarizes the whole list regardless of the filter.
type TaskCounts struct {
	Completed int
	Total     int
	Rate      int
}

func (s TaskState) Stats() TaskCounts {
	c := TaskCounts{Total: len(s.Tasks), Rate: stats.TaskCompletion(s.Tasks)}
	for _, t := range s.Tasks {
		if t.Completed {
			c.Completed++
		}
	}
	return c
}
