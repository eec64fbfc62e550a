// Package worker runs the spreadsheet backup consumer.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"notare/internal/amqp"
)

// Consumer delivers journal events to handler until ctx is done.
// *amqp.Client implements it.
type Consumer interface {
	ConsumeJournalEvents(ctx context.Context, handler func(context.Context, *amqp.JournalEventMessage) error) error
}

// Handler processes one journal event. A returned error requeues the event.
type Handler interface {
	Handle(ctx context.Context, msg *amqp.JournalEventMessage) error
}

// BackupWorker feeds journal events from the bus into the backup handler.
type BackupWorker struct {
	consumer Consumer
	handler  Handler

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	doneCh  chan struct{}
	err     error
}

func NewBackupWorker(consumer Consumer, handler Handler) *BackupWorker {
	return &BackupWorker{consumer: consumer, handler: handler}
}

// Start begins consuming in the background. Returns an error if already
// running.
func (w *BackupWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return fmt.Errorf("backup worker is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.running = true
	w.cancel = cancel
	w.doneCh = make(chan struct{})
	w.err = nil

	go w.run(runCtx, w.doneCh)

	slog.InfoContext(ctx, "Backup worker started")
	return nil
}

func (w *BackupWorker) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	err := w.consumer.ConsumeJournalEvents(ctx, w.handler.Handle)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "Backup worker stopped", "error", err)
	}

	w.mu.Lock()
	w.err = err
	w.mu.Unlock()
}

// Stop cancels consumption and waits for the in-flight event, or for ctx.
func (w *BackupWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	cancel, done := w.cancel, w.doneCh
	w.mu.Unlock()

	cancel()

	select {
	case <-done:
		slog.InfoContext(ctx, "Backup worker stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Backup worker stop timed out")
		return ctx.Err()
	}

	w.mu.Lock()
	w.running = false
	err := w.err
	w.mu.Unlock()
	return err
}

// Done is closed when consumption ends, either by Stop or by a fatal
// consumer error. Nil before Start.
func (w *BackupWorker) Done() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.doneCh
}

// Err is the error that ended consumption, if any.
func (w *BackupWorker) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *BackupWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
