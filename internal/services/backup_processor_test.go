package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"notare/internal/amqp"
	"notare/internal/sheets"
)

type fakeBackupWriter struct {
	rows []sheets.BackupRow
	err  error
}

func (f *fakeBackupWriter) AppendRow(_ context.Context, row sheets.BackupRow) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.rows = append(f.rows, row)
	return "2024 Backup!A2:G2", nil
}

func TestBackupProcessorHandle(t *testing.T) {
	svc := newTestService(t, true, nil)
	writer := &fakeBackupWriter{}
	p := NewBackupProcessor(svc.Store(), writer)
	p.now = func() time.Time { return monday }

	tests := []struct {
		kind, id  string
		wantTitle string
	}{
		{amqp.KindTask, "task-1", "Meditação matinal de 15 minutos"},
		{amqp.KindMood, "mood-4", "Difícil"},
		{amqp.KindEntry, "entry-3", "Memória"},
		{amqp.KindRecurring, "rec-3", "Academia"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			msg := amqp.NewJournalEventMessage(tt.kind, tt.id, amqp.ActionCreated, "")
			if err := p.Handle(context.Background(), msg); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			row := writer.rows[len(writer.rows)-1]
			if row.Kind != tt.kind || row.ID != tt.id || row.Title != tt.wantTitle {
				t.Errorf("row = %+v", row)
			}
			if !row.SyncedAt.Equal(monday) {
				t.Errorf("SyncedAt = %v, want clock time", row.SyncedAt)
			}
		})
	}
}

func TestBackupProcessorSkipsMissingRecords(t *testing.T) {
	svc := newTestService(t, true, nil)
	writer := &fakeBackupWriter{}
	p := NewBackupProcessor(svc.Store(), writer)

	for _, kind := range []string{amqp.KindTask, amqp.KindMood, amqp.KindEntry, amqp.KindRecurring} {
		msg := amqp.NewJournalEventMessage(kind, "gone", amqp.ActionCreated, "")
		if err := p.Handle(context.Background(), msg); err != nil {
			t.Errorf("Handle(%s missing) error = %v, want nil", kind, err)
		}
	}
	if len(writer.rows) != 0 {
		t.Errorf("wrote %d rows for missing records", len(writer.rows))
	}
}

func TestBackupProcessorErrors(t *testing.T) {
	svc := newTestService(t, true, nil)
	writeErr := errors.New("quota exceeded")
	p := NewBackupProcessor(svc.Store(), &fakeBackupWriter{err: writeErr})

	err := p.Handle(context.Background(), amqp.NewJournalEventMessage(amqp.KindTask, "task-1", amqp.ActionToggled, ""))
	if !errors.Is(err, writeErr) {
		t.Errorf("Handle() error = %v, want writer error", err)
	}

	err = p.Handle(context.Background(), &amqp.JournalEventMessage{Kind: "expense", ID: "1", Action: amqp.ActionCreated})
	if !errors.Is(err, amqp.ErrInvalidMessage) {
		t.Errorf("Handle(unknown kind) error = %v, want ErrInvalidMessage", err)
	}
}
