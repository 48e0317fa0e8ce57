package domain

import (
	"encoding/json"
	"time"
)

type OutboxEvent struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	EntityID  string          `json:"entity_id"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// DeadLetter is one failed (event, handler) pair waiting to be retried.
type DeadLetter struct {
	ID        int64
	OutboxID  int64
	Type      string
	Handler   string
	EntityID  string
	Payload   json.RawMessage
	ErrorMsg  string
	Attempts  int
	CreatedAt time.Time
}
