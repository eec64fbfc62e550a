package scheduler

import (
	"context"
	"fmt"

	"notare/internal/log"
	"notare/internal/services"
	"notare/internal/stats"
)

const (
	JobRecurring = "recurring"
	JobDigest    = "digest"
)

// RecurringJob materializes the recurring tasks due today.
func RecurringJob(spec string, journal *services.JournalService) Job {
	processor := services.NewRecurringProcessor(journal)
	return Job{
		Name: JobRecurring,
		Spec: spec,
		Run: func(ctx context.Context) error {
			_, err := processor.ProcessDue(ctx, journal.Now())
			return err
		},
	}
}

// Digest is the summary logged by the digest job.
type Digest struct {
	Progress stats.ProgressStats
	Earned   []string
}

// BuildDigest computes the weekly progress and the achievements earned.
func BuildDigest(ctx context.Context, journal *services.JournalService) (Digest, error) {
	p, achievements, err := journal.Progress(ctx, stats.PeriodWeek)
	if err != nil {
		return Digest{}, fmt.Errorf("weekly progress: %w", err)
	}
	d := Digest{Progress: p}
	for _, a := range achievements {
		if a.Earned {
			d.Earned = append(d.Earned, a.Title)
		}
	}
	return d, nil
}

// DigestJob logs the weekly progress digest.
func DigestJob(spec string, journal *services.JournalService, logger *log.Logger) Job {
	logger = logger.WithComponent(log.ComponentScheduler)
	return Job{
		Name: JobDigest,
		Spec: spec,
		Run: func(ctx context.Context) error {
			d, err := BuildDigest(ctx, journal)
			if err != nil {
				return err
			}
			p := d.Progress
			logger.InfoContext(ctx, "Daily digest",
				"entries", p.Entries,
				"entry_rate", p.EntryRate,
				"positive_rate", p.PositiveRate,
				"tasks_completed", p.TasksCompleted,
				"total_tasks", p.TotalTasks,
				"completion_rate", p.CompletionRate,
				"mood_average", p.MoodAverage,
				"streak", p.Streak,
				"achievements", d.Earned)
			return nil
		},
	}
}
