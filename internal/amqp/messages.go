package amqp

import (
	"encoding/json"
	"time"
)

// LedgerChangeMessage announces that a ledger collection changed. It carries
// only the entity kind, the affected ID and the operation; the worker reloads
// the full ledger from the database before exporting.
type LedgerChangeMessage struct {
	Entity    string    `json:"entity"`
	ID        string    `json:"id"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

// Entity kinds carried by change messages.
const (
	EntityExpense = "expense"
	EntityCard    = "card"
	EntityGoal    = "goal"
	EntityBudget  = "budget"
)

// NewLedgerChangeMessage creates a change message stamped with the current time.
func NewLedgerChangeMessage(entity, id, op string) *LedgerChangeMessage {
	return &LedgerChangeMessage{
		Entity:    entity,
		ID:        id,
		Op:        op,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangeMessageFromJSON creates a message from JSON bytes
func LedgerChangeMessageFromJSON(data []byte) (*LedgerChangeMessage, error) {
	var msg LedgerChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
