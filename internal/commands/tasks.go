package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"notare/internal/core"
	"notare/internal/viewmodel"
)

var overdueStyle = color.New(color.FgRed)

func addTasks(topLevel *cobra.Command, e *env) {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List, add and toggle tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	addTasksList(cmd, e)
	addTasksAdd(cmd, e)
	addTasksToggle(cmd, e)
	topLevel.AddCommand(cmd)
}

func addTasksList(parent *cobra.Command, e *env) {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			f, err := viewmodel.ParseTaskFilter(filter)
			if err != nil {
				return err
			}
			tasks, err := e.journal.Tasks(cmd.Context())
			if err != nil {
				return err
			}
			state := viewmodel.ReduceTasks(viewmodel.NewTaskState(tasks), viewmodel.SetFilter{Filter: f})
			renderTasks(cmd.OutOrStdout(), state, e.journal.Today())
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", string(viewmodel.FilterAll), "pending, completed or all")
	parent.AddCommand(cmd)
}

func renderTasks(w io.Writer, s viewmodel.TaskState, today core.Date) {
	visible := s.Visible()
	if len(visible) == 0 {
		fmt.Fprintln(w, "Nenhuma tarefa.")
	} else {
		tbl := uitable.New()
		tbl.MaxColWidth = 48
		tbl.AddRow("ID", "", "TÍTULO", "PRIORIDADE", "CATEGORIA", "PRAZO")
		for _, t := range visible {
			check := "[ ]"
			if t.Completed {
				check = "[x]"
			}
			due := ""
			if !t.DueDate.IsZero() {
				due = t.DueDate.Key()
				if t.DueTime != "" {
					due += " " + t.DueTime
				}
				if t.IsOverdue(today) {
					due = overdueStyle.Sprint(due)
				}
			}
			tbl.AddRow(t.ID, check, t.Title, t.Priority.Label(), t.Category.Label(), due)
		}
		fmt.Fprintln(w, tbl)
	}

	c := s.Stats()
	fmt.Fprintf(w, "\n%d de %d concluídas (%d%%)\n", c.Completed, c.Total, c.Rate)
}

func addTasksAdd(parent *cobra.Command, e *env) {
	var priority, category, dueTime, date string

	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Add a task",
		Long: `Add creates a task. Priority defaults to medium and category to personal.

Examples:
  notarectl tasks add "Revisar relatório mensal" --priority high --category work --date 2024-01-15 --due-time 14:00`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			t := core.Task{Title: args[0], DueTime: dueTime}
			if priority != "" {
				p, err := core.ParsePriority(priority)
				if err != nil {
					return err
				}
				t.Priority = p
			}
			if category != "" {
				c, err := core.ParseCategory(category)
				if err != nil {
					return err
				}
				t.Category = c
			}
			if date != "" {
				d, err := core.ParseDateKey(date)
				if err != nil {
					return err
				}
				t.DueDate = d
			}

			saved, err := e.journal.AddTask(cmd.Context(), t)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tarefa criada: %s (%s)\n", saved.Title, saved.ID)
			e.warnEphemeral(cmd)
			return nil
		},
	}

	cmd.Flags().StringVar(&priority, "priority", "", "low, medium or high")
	cmd.Flags().StringVar(&category, "category", "", "work, personal, health or study")
	cmd.Flags().StringVar(&dueTime, "due-time", "", "HH:MM")
	cmd.Flags().StringVar(&date, "date", "", "due date (YYYY-MM-DD)")
	parent.AddCommand(cmd)
}

func addTasksToggle(parent *cobra.Command, e *env) {
	cmd := &cobra.Command{
		Use:   "toggle ID",
		Short: "Mark a task completed, or pending again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			t, err := e.journal.ToggleTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			state := "pendente"
			if t.Completed {
				state = "concluída"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", t.Title, state)
			e.warnEphemeral(cmd)
			return nil
		},
	}
	parent.AddCommand(cmd)
}

// warnEphemeral tells the operator that writes to the memory backend die
// with the process.
func (e *env) warnEphemeral(cmd *cobra.Command) {
	if e.memory {
		fmt.Fprintln(cmd.ErrOrStderr(), "aviso: DATA_BACKEND=memory, a alteração não será mantida")
	}
}
