// Package services orchestrates writes across SQLite and the event bus.
package services

import (
	"context"
	"errors"
	"fmt"

	"kharcha/internal/amqp"
	"kharcha/internal/core"
	"kharcha/internal/log"
)

// TransactionStore is the persistence surface TransactionService needs.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	QueryTransactions(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error)
	GetCategory(ctx context.Context, id int64) (core.Category, error)
}

// Publisher delivers transaction events. *amqp.Client satisfies it.
type Publisher interface {
	PublishTransactionEvent(ctx context.Context, msg *amqp.TransactionEvent) error
}

// TransactionService saves transactions locally and then announces them on the bus.
// The database write is authoritative; publishing is best-effort.
type TransactionService struct {
	store     TransactionStore
	publisher Publisher
	logger    *log.Logger
}

// NewTransactionService accepts a nil publisher when no broker is configured.
func NewTransactionService(store TransactionStore, publisher Publisher, logger *log.Logger) *TransactionService {
	if logger == nil {
		logger = log.Default()
	}
	return &TransactionService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentService),
	}
}

// CreateTransaction validates tx, checks its category and stores it for userID.
func (s *TransactionService) CreateTransaction(ctx context.Context, userID int64, tx core.Transaction) (core.Transaction, error) {
	tx.UserID = userID
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	category, err := s.store.GetCategory(ctx, tx.CategoryID)
	if errors.Is(err, core.ErrNotFound) {
		return core.Transaction{}, core.InvalidArgument("category %d does not exist", tx.CategoryID)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load category: %w", err)
	}
	if !category.Type.Accepts(tx.Type) {
		return core.Transaction{}, core.InvalidArgument("category %q does not accept %s transactions", category.Name, tx.Type)
	}

	saved, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction created",
		log.NewFields().WithTransaction(saved.ID, saved.Amount.Cents, saved.CategoryID, string(saved.PaymentMode)).ToSlice()...)
	s.publish(ctx, amqp.EventTransactionCreated, saved)
	return saved, nil
}

// DeleteTransaction removes a transaction. Any household member may delete any entry.
func (s *TransactionService) DeleteTransaction(ctx context.Context, id int64) error {
	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction deleted", log.FieldTransactionID, id)
	s.publish(ctx, amqp.EventTransactionDeleted, tx)
	return nil
}

func (s *TransactionService) ListTransactions(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error) {
	if f.Range != nil {
		if err := f.Range.Validate(); err != nil {
			return nil, err
		}
	}
	if f.Type != "" && !f.Type.Valid() {
		return nil, core.InvalidArgument("unknown transaction type %q", f.Type)
	}
	if f.PaymentMode != "" && !f.PaymentMode.Valid() {
		return nil, core.InvalidArgument("unknown payment mode %q", f.PaymentMode)
	}
	return s.store.QueryTransactions(ctx, f)
}

func (s *TransactionService) publish(ctx context.Context, event amqp.EventType, tx core.Transaction) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP publisher not configured, skipping event", "event", event)
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, amqp.NewTransactionEvent(event, tx)); err != nil {
		// the transaction is already stored
		s.logger.ErrorContext(ctx, "Failed to publish transaction event",
			"event", event, log.FieldTransactionID, tx.ID, log.FieldError, err)
	}
}
