package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"notare/internal/core"
	"notare/internal/stats"
)

func addExport(topLevel *cobra.Command, e *env) {
	var preset, start, end, output string

	cmd := &cobra.Command{
		Use:   "export {ics|csv}",
		Short: "Export the calendar or the report of a period",
		Long: `Export writes the events of the period as iCalendar, or its report as CSV.
Without --output the document goes to stdout.

Examples:
  notarectl export ics --preset thisMonth -o janeiro.ics
  notarectl export csv --preset custom --start 2024-01-01 --end 2024-01-31`,
		ValidArgs: []string{"ics", "csv"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			f, err := exportFilter(preset, start, end, e)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer file.Close()
				w = file
			}

			switch args[0] {
			case "ics":
				body, err := e.journal.ExportICS(cmd.Context(), f.From, f.To)
				if err != nil {
					return err
				}
				_, err = io.WriteString(w, body)
				return err
			default:
				report, err := e.journal.Report(cmd.Context(), f)
				if err != nil {
					return err
				}
				return report.WriteCSV(w)
			}
		},
	}

	cmd.Flags().StringVar(&preset, "preset", string(stats.PresetLast30Days), "last7days, last30days, lastWeek, lastMonth, thisMonth or custom")
	cmd.Flags().StringVar(&start, "start", "", "first day of a custom period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "last day of a custom period (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	topLevel.AddCommand(cmd)
}

func exportFilter(preset, start, end string, e *env) (stats.Filter, error) {
	p, err := stats.ParsePreset(preset)
	if err != nil {
		return stats.Filter{}, err
	}
	f := stats.NewFilter(p, e.journal.Now())
	if p != stats.PresetCustom {
		return f, nil
	}

	if start == "" || end == "" {
		return stats.Filter{}, errors.New("custom preset needs --start and --end")
	}
	from, err := core.ParseDateKey(start)
	if err != nil {
		return stats.Filter{}, err
	}
	to, err := core.ParseDateKey(end)
	if err != nil {
		return stats.Filter{}, err
	}
	if err := stats.CheckRange(from, to); err != nil {
		return stats.Filter{}, err
	}
	f.From, f.To = from, to
	return f, nil
}
