// Package commands implements notarectl, the operator CLI of the journal.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"notare/internal/backend"
	"notare/internal/cli"
	"notare/internal/config"
	"notare/internal/log"
	"notare/internal/services"
)

// annotationNoSeed marks commands that must open the store without the
// automatic demo seed.
const annotationNoSeed = "notare/no-seed"

// env is the journal shared by the subcommands. It is opened lazily so
// --help works without a store.
type env struct {
	journal *services.JournalService
	memory  bool
	verbose bool
}

// New returns the root command. The store comes from the environment, the
// same way the server configures it.
func New() *cobra.Command {
	e := &env{}
	cmd := root(e)
	cmd.PersistentPreRunE = e.open
	cmd.PersistentPostRunE = func(*cobra.Command, []string) error {
		if e.journal == nil {
			return nil
		}
		return e.journal.Close()
	}
	return cmd
}

// NewWithJournal returns the root command bound to an open journal.
func NewWithJournal(j *services.JournalService) *cobra.Command {
	return root(&env{journal: j})
}

func root(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "notarectl",
		Short:         "Inspect and maintain the notare journal.",
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "log at debug level")

	addCalendar(cmd, e)
	addStats(cmd, e)
	addTasks(cmd, e)
	addExport(cmd, e)
	addSeed(cmd, e)
	return cmd
}

func (e *env) open(cmd *cobra.Command, _ []string) error {
	if e.journal != nil || !cmd.HasParent() {
		return nil
	}

	cli.LoadEnvFile()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cmd.Annotations[annotationNoSeed] == "true" {
		cfg.SeedDemo, cfg.SeedFile = false, ""
	}

	level := slog.LevelWarn
	if e.verbose {
		level = slog.LevelDebug
	}
	logger := log.New(log.Config{
		Level:     level,
		Component: log.ComponentCLI,
		Format:    cfg.LogFormat,
		Output:    cmd.ErrOrStderr(),
	})

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(cmd.Context(), bcfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	e.memory = bcfg.Type == backend.MemoryBackend
	e.journal = cli.NewJournalService(cfg, logger, res.Store, cli.ConnectAMQP(logger, cfg))
	return nil
}
