package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Reasons attached to balance recalculation messages.
const (
	ReasonIncome    = "income"
	ReasonPurchase  = "purchase"
	ReasonWishList  = "wishlist"
	ReasonReconcile = "reconcile"
)

// BalanceRecalcMessage asks the worker to recompute the stored total of one
// user. It carries only the username; the worker reads the ledger itself.
type BalanceRecalcMessage struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBalanceRecalcMessage(username, reason string) *BalanceRecalcMessage {
	return &BalanceRecalcMessage{
		ID:        uuid.NewString(),
		Username:  username,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *BalanceRecalcMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BalanceRecalcMessageFromJSON decodes a message and rejects ones without a username.
func BalanceRecalcMessageFromJSON(data []byte) (*BalanceRecalcMessage, error) {
	var msg BalanceRecalcMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Username == "" {
		return nil, errors.New("message has no username")
	}
	return &msg, nil
}
