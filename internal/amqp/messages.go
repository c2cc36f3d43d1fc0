package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventKind names the ledger change a TransactionEvent reports.
type EventKind string

const (
	TransactionCreated EventKind = "transaction.created"
	TransactionUpdated EventKind = "transaction.updated"
	TransactionDeleted EventKind = "transaction.deleted"
	CategoryCreated    EventKind = "category.created"
	UsersSaved         EventKind = "users.saved"
)

func (k EventKind) IsValid() bool {
	switch k {
	case TransactionCreated, TransactionUpdated, TransactionDeleted, CategoryCreated, UsersSaved:
		return true
	default:
		return false
	}
}

// TransactionEvent is a lightweight change notification. Consumers re-read
// the store rather than trusting a payload.
type TransactionEvent struct {
	Kind      EventKind `json:"kind"`
	ID        string    `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEvent(kind EventKind, id string) *TransactionEvent {
	return &TransactionEvent{
		Kind:      kind,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventFromJSON decodes an event and rejects unknown kinds.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Kind.IsValid() {
		return nil, fmt.Errorf("unknown event kind %q", msg.Kind)
	}
	return &msg, nil
}
