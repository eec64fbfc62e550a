package http

import (
	"net/http"

	"notare/internal/core"
	"notare/internal/viewmodel"
)

type tasksData struct {
	Filter  viewmodel.TaskFilter
	Filters []viewmodel.TaskFilter
	Tasks   []core.Task
	Counts  viewmodel.TaskCounts
	Today   core.Date
}

// handleTasks lists tasks on GET and adds one on POST.
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGETOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if r.Method == http.MethodPost {
		s.handleCreateTask(w, r)
		return
	}

	filter, err := viewmodel.ParseTaskFilter(r.URL.Query().Get("filter"))
	if err != nil {
		BadRequestError("Filtro inválido").Write(w)
		return
	}
	s.renderTasks(w, r, filter, nil)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	task := core.Task{
		Title:   sanitizeInput(r.Form.Get("title")),
		DueTime: sanitizeInput(r.Form.Get("due_time")),
	}
	if v := sanitizeInput(r.Form.Get("priority")); v != "" {
		p, err := core.ParsePriority(v)
		if err != nil {
			UnprocessableEntityError(userMessage(err)).Write(w)
			return
		}
		task.Priority = p
	}
	if v := sanitizeInput(r.Form.Get("category")); v != "" {
		c, err := core.ParseCategory(v)
		if err != nil {
			UnprocessableEntityError(userMessage(err)).Write(w)
			return
		}
		task.Category = c
	}
	due, err := ParseDate(r.Form, "date", core.Date{})
	if err != nil {
		UnprocessableEntityError("Data inválida").Write(w)
		return
	}
	task.DueDate = due

	saved, err := s.journal.AddTask(r.Context(), task)
	s.recordWrite(err)
	if err != nil {
		s.writeError(w, r, err, "create_task")
		return
	}

	b := NewHTMXResponse().
		TriggerTaskCreated(saved.ID).
		TriggerCalendarRefresh(dateKeyOrEmpty(saved.DueDate)).
		TriggerFormReset().
		TriggerSuccessNotification("Tarefa adicionada")
	s.renderTasks(w, r, viewmodel.FilterPending, b)
}

// handleToggleTask flips a task and re-renders the list with the filter the
// client was showing.
func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	id := sanitizeInput(r.Form.Get("id"))
	if id == "" {
		BadRequestError("Tarefa não informada").Write(w)
		return
	}
	filter, err := viewmodel.ParseTaskFilter(r.Form.Get("filter"))
	if err != nil {
		filter = viewmodel.FilterPending
	}

	task, err := s.journal.ToggleTask(r.Context(), id)
	s.recordWrite(err)
	if err != nil {
		s.writeError(w, r, err, "toggle_task")
		return
	}

	b := NewHTMXResponse().
		TriggerTaskToggled(task.ID, task.Completed).
		TriggerCalendarRefresh(dateKeyOrEmpty(task.DueDate))
	s.renderTasks(w, r, filter, b)
}

func (s *Server) renderTasks(w http.ResponseWriter, r *http.Request, filter viewmodel.TaskFilter, b *HTMXResponseBuilder) {
	tasks, err := s.journal.Tasks(r.Context())
	if err != nil {
		s.writeError(w, r, err, "list_tasks")
		return
	}

	state := viewmodel.ReduceTasks(viewmodel.NewTaskState(tasks), viewmodel.SetFilter{Filter: filter})
	data := tasksData{
		Filter:  state.Filter,
		Filters: []viewmodel.TaskFilter{viewmodel.FilterPending, viewmodel.FilterCompleted, viewmodel.FilterAll},
		Tasks:   state.Visible(),
		Counts:  state.Stats(),
		Today:   s.journal.Today(),
	}
	s.render(w, r, "tasks", data, b)
}

func dateKeyOrEmpty(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Key()
}
