package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"notare/internal/seed"
)

// emptier is implemented by stores that can tell whether they hold data.
type emptier interface {
	Empty(ctx context.Context) (bool, error)
}

func addSeed(topLevel *cobra.Command, e *env) {
	var (
		file  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo dataset, or a seed file, into the store",
		Long: `Seed writes every record of the dataset into the configured store. A
store that already holds records is left alone unless --force is given.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoSeed: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			ctx := cmd.Context()

			ds, err := seed.Load(file)
			if err != nil {
				return err
			}

			store := e.journal.Store()
			if s, ok := store.(emptier); ok && !force {
				empty, err := s.Empty(ctx)
				if err != nil {
					return err
				}
				if !empty {
					return errors.New("store already holds records, use --force to seed anyway")
				}
			}
			if err := seed.Apply(ctx, store, ds); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seed aplicado: %d tarefas, %d humores, %d entradas, %d recorrentes, %d marcadores\n",
				len(ds.Tasks), len(ds.Moods), len(ds.Entries), len(ds.Recurring), len(ds.Markers))
			e.warnEphemeral(cmd)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "seed file (default: the embedded demo dataset)")
	cmd.Flags().BoolVar(&force, "force", false, "seed a store that already holds records")
	topLevel.AddCommand(cmd)
}
