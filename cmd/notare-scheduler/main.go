package main

import (
	"context"
	"flag"
	"os"
	"time"

	"notare/internal/cli"
	"notare/internal/log"
	"notare/internal/scheduler"
)

func main() {
	runOnce := flag.String("run", "", "run one job (recurring or digest) immediately and exit")
	flag.Parse()

	cfg, logger := cli.Bootstrap(log.ComponentScheduler)
	logger.Info("Starting notare-scheduler",
		"recurring_cron", cfg.RecurringCron,
		"digest_cron", cfg.DigestCron,
		"timezone", cfg.Timezone)

	ctx := context.Background()
	store := cli.OpenBackend(ctx, logger, cfg)
	journal := cli.NewJournalService(cfg, logger, store.Store, cli.ConnectAMQP(logger, cfg))

	sched := scheduler.New(cfg.Location(), logger)
	for _, job := range []scheduler.Job{
		scheduler.RecurringJob(cfg.RecurringCron, journal),
		scheduler.DigestJob(cfg.DigestCron, journal, logger),
	} {
		if err := sched.Add(job); err != nil {
			logger.Error("Failed to schedule job", log.FieldError, err)
			os.Exit(1)
		}
	}

	if *runOnce != "" {
		err := sched.RunNow(ctx, *runOnce)
		_ = sched.Stop(ctx)
		_ = journal.Close()
		if err != nil {
			os.Exit(1)
		}
		return
	}

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := sched.Stop(ctx); err != nil {
			logger.Warn("Jobs still running at shutdown", log.FieldError, err)
		}
		if err := journal.Close(); err != nil {
			logger.Warn("Failed to close journal", log.FieldError, err)
		}
	})

	sched.Start()
	for name, next := range sched.Next() {
		logger.Info("Next run", "job", name, "at", next.Format(time.RFC3339))
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Scheduler stopped gracefully")
}
