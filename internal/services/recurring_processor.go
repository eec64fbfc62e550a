package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"notare/internal/core"
)

// RecurringProcessor turns due recurring task templates into concrete tasks.
type RecurringProcessor struct {
	journal *JournalService
}

func NewRecurringProcessor(journal *JournalService) *RecurringProcessor {
	return &RecurringProcessor{journal: journal}
}

// ProcessDue materializes every template due on now's day and returns how
// many tasks were created. A failing template is logged and skipped.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.journal == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	templates, err := p.journal.Recurring(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get recurring tasks: %w", err)
	}

	today := core.DateOf(now)
	slog.InfoContext(ctx, "Processing recurring tasks",
		"total", len(templates),
		"processing_date", today.Key())

	processed := 0
	for _, rt := range templates {
		if err := ctx.Err(); err != nil {
			return processed, err
		}
		if !rt.ActiveOn(today) {
			continue
		}

		checker, err := GetDuenessChecker(rt.Every)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to check if task is due", "id", rt.ID, "error", err)
			continue
		}
		if !checker.IsDue(rt, today) {
			continue
		}

		task, err := p.journal.Materialize(ctx, rt, today)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to create task from recurring template",
				"recurring_id", rt.ID,
				"title", rt.Title,
				"error", err)
			if task.ID == "" {
				continue
			}
		}

		processed++
		slog.InfoContext(ctx, "Created task from recurring template",
			"recurring_id", rt.ID,
			"task_id", task.ID,
			"frequency", rt.Every)
	}

	slog.InfoContext(ctx, "Recurring task processing complete",
		"processed", processed,
		"total_checked", len(templates))

	return processed, nil
}
