package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"kharcha/internal/core"
)

// EventType names what happened to a transaction
type EventType string

const (
	EventTransactionCreated EventType = "transaction.created"
	EventTransactionDeleted EventType = "transaction.deleted"
)

func (e EventType) Valid() bool {
	return e == EventTransactionCreated || e == EventTransactionDeleted
}

// TransactionEvent carries enough of a transaction for consumers to act without reading the database
type TransactionEvent struct {
	Event         EventType            `json:"event"`
	TransactionID int64                `json:"transactionId"`
	UserID        int64                `json:"userId"`
	Type          core.TransactionType `json:"type"`
	Amount        core.Money           `json:"amount"`
	CategoryID    int64                `json:"categoryId"`
	PaymentMode   core.PaymentMode     `json:"paymentMode"`
	Date          core.Date            `json:"date"`
	Timestamp     time.Time            `json:"timestamp"`
}

// NewTransactionEvent builds an event for tx stamped with the current time
func NewTransactionEvent(event EventType, tx core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		Event:         event,
		TransactionID: tx.ID,
		UserID:        tx.UserID,
		Type:          tx.Type,
		Amount:        tx.Amount,
		CategoryID:    tx.CategoryID,
		PaymentMode:   tx.PaymentMode,
		Date:          tx.Date,
		Timestamp:     time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventFromJSON decodes and sanity-checks a message body
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Event.Valid() {
		return nil, fmt.Errorf("unknown event %q", msg.Event)
	}
	if msg.TransactionID <= 0 {
		return nil, fmt.Errorf("event %s without transaction id", msg.Event)
	}
	return &msg, nil
}
