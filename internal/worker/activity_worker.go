// Package worker holds the background jobs run by cmd/kharcha-worker.
package worker

import (
	"context"
	"fmt"

	"kharcha/internal/amqp"
	"kharcha/internal/log"
	"kharcha/internal/storage"
)

// ActivityStore persists audit entries.
type ActivityStore interface {
	RecordActivity(ctx context.Context, a storage.Activity) (storage.Activity, bool, error)
}

// EventSource delivers transaction events until ctx is cancelled.
type EventSource interface {
	ConsumeTransactionEvents(ctx context.Context, handler func(context.Context, *amqp.TransactionEvent) error) error
}

// ActivityWorker records every transaction event in the activity log.
type ActivityWorker struct {
	store  ActivityStore
	source EventSource
	logger *log.Logger
}

func NewActivityWorker(store ActivityStore, source EventSource, logger *log.Logger) *ActivityWorker {
	if logger == nil {
		logger = log.Default()
	}
	return &ActivityWorker{
		store:  store,
		source: source,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// Run consumes events until ctx is cancelled.
func (w *ActivityWorker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Activity worker started")
	err := w.source.ConsumeTransactionEvents(ctx, w.HandleEvent)
	if ctx.Err() != nil {
		w.logger.InfoContext(ctx, "Activity worker stopped")
		return nil
	}
	return err
}

// HandleEvent records one event. A returned error causes redelivery.
func (w *ActivityWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	entry, duplicate, err := w.store.RecordActivity(ctx, storage.Activity{
		Event:         string(ev.Event),
		TransactionID: ev.TransactionID,
		UserID:        ev.UserID,
		Type:          ev.Type,
		Amount:        ev.Amount,
		Date:          ev.Date,
		OccurredAt:    ev.Timestamp,
	})
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to record activity",
			log.FieldTransactionID, ev.TransactionID, "event", ev.Event, log.FieldError, err)
		return fmt.Errorf("record activity: %w", err)
	}
	if duplicate {
		w.logger.DebugContext(ctx, "Activity already recorded",
			log.FieldTransactionID, ev.TransactionID, "event", ev.Event)
		return nil
	}

	w.logger.InfoContext(ctx, "Activity recorded",
		"activity_id", entry.ID,
		log.FieldTransactionID, ev.TransactionID,
		"event", ev.Event,
		log.FieldAmountCents, ev.Amount.Cents)
	return nil
}
