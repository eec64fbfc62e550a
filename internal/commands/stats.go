package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"notare/internal/calendar"
	"notare/internal/stats"
)

var earnedStyle = color.New(color.FgHiYellow)

func addStats(topLevel *cobra.Command, e *env) {
	var period string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print progress for the last week, month or year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			p, err := stats.ParsePeriod(period)
			if err != nil {
				return err
			}
			progress, achievements, err := e.journal.Progress(cmd.Context(), p)
			if err != nil {
				return err
			}
			renderProgress(cmd.OutOrStdout(), progress, achievements)
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", string(stats.PeriodWeek), "week, month or year")
	topLevel.AddCommand(cmd)
}

func renderProgress(w io.Writer, p stats.ProgressStats, achievements []stats.Achievement) {
	fmt.Fprintf(w, "%s · %s a %s\n", headerStyle.Sprint(p.Period.Label()),
		calendar.FormatLong(p.From), calendar.FormatLong(p.To))

	tbl := uitable.New()
	tbl.AddRow("Entradas", fmt.Sprintf("%d em %d dias (%d%%)", p.Entries, p.TotalDays, p.EntryRate))
	tbl.AddRow("Humor positivo", fmt.Sprintf("%d%%", p.PositiveRate))
	tbl.AddRow("Média de humor", fmt.Sprintf("%.1f", p.MoodAverage))
	tbl.AddRow("Tarefas", fmt.Sprintf("%d de %d (%d%%)", p.TasksCompleted, p.TotalTasks, p.CompletionRate))
	tbl.AddRow("Sequência", fmt.Sprintf("%d dia(s)", p.Streak))
	fmt.Fprintln(w, tbl)

	fmt.Fprintln(w)
	ach := uitable.New()
	for _, a := range achievements {
		mark := "·"
		if a.Earned {
			mark = earnedStyle.Sprint("★")
		}
		ach.AddRow(mark, a.Title, a.Description)
	}
	fmt.Fprintln(w, ach)
}
