package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"notare/internal/amqp"
	"notare/internal/core"
	"notare/internal/journal"
	"notare/internal/sheets"
)

// BackupProcessor copies the record named by a journal event to the
// spreadsheet backup. Events carry identity only; the record is read back
// from the store so the backup reflects its current state.
type BackupProcessor struct {
	store  journal.Store
	writer sheets.BackupWriter
	now    func() time.Time
}

func NewBackupProcessor(store journal.Store, writer sheets.BackupWriter) *BackupProcessor {
	return &BackupProcessor{store: store, writer: writer, now: time.Now}
}

// Handle resolves and appends the record of msg. Records that no longer
// exist are skipped without error so the message is not redelivered.
func (p *BackupProcessor) Handle(ctx context.Context, msg *amqp.JournalEventMessage) error {
	row, err := p.resolve(ctx, msg)
	if errors.Is(err, journal.ErrNotFound) {
		slog.WarnContext(ctx, "Record not found, skipping backup",
			"kind", msg.Kind, "id", msg.ID, "action", msg.Action)
		return nil
	}
	if err != nil {
		return err
	}

	ref, err := p.writer.AppendRow(ctx, row)
	if err != nil {
		return fmt.Errorf("append %s %s to backup: %w", msg.Kind, msg.ID, err)
	}

	slog.InfoContext(ctx, "Record backed up",
		"kind", msg.Kind, "id", msg.ID, "action", msg.Action, "ref", ref)
	return nil
}

func (p *BackupProcessor) resolve(ctx context.Context, msg *amqp.JournalEventMessage) (sheets.BackupRow, error) {
	at := p.now()
	switch msg.Kind {
	case amqp.KindTask:
		t, err := p.store.GetTask(ctx, msg.ID)
		if err != nil {
			return sheets.BackupRow{}, fmt.Errorf("get task: %w", err)
		}
		return sheets.TaskRow(t, at), nil
	case amqp.KindMood:
		moods, err := p.store.ListMoods(ctx)
		if err != nil {
			return sheets.BackupRow{}, fmt.Errorf("list moods: %w", err)
		}
		m, err := findByID(moods, msg.ID, func(m core.MoodRecord) string { return m.ID })
		if err != nil {
			return sheets.BackupRow{}, err
		}
		return sheets.MoodRow(m, at), nil
	case amqp.KindEntry:
		entries, err := p.store.ListEntries(ctx)
		if err != nil {
			return sheets.BackupRow{}, fmt.Errorf("list entries: %w", err)
		}
		e, err := findByID(entries, msg.ID, func(e core.Entry) string { return e.ID })
		if err != nil {
			return sheets.BackupRow{}, err
		}
		return sheets.EntryRow(e, at), nil
	case amqp.KindRecurring:
		rts, err := p.store.ListRecurring(ctx)
		if err != nil {
			return sheets.BackupRow{}, fmt.Errorf("list recurring tasks: %w", err)
		}
		rt, err := findByID(rts, msg.ID, func(rt core.RecurringTask) string { return rt.ID })
		if err != nil {
			return sheets.BackupRow{}, err
		}
		return sheets.RecurringRow(rt, at), nil
	default:
		return sheets.BackupRow{}, fmt.Errorf("%w: unknown kind %q", amqp.ErrInvalidMessage, msg.Kind)
	}
}

func findByID[T any](items []T, id string, key func(T) string) (T, error) {
	for _, it := range items {
		if key(it) == id {
			return it, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("record %s: %w", id, journal.ErrNotFound)
}
