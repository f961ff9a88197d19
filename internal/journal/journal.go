// Package journal persists delivery-status records for envelope
// submission attempts. Envelopes themselves are never stored.
package journal

import (
	"context"
	"time"
)

// Record is one persisted delivery attempt outcome.
type Record struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	Destination string    `json:"destination"`
	Transport   string    `json:"transport"`
	MessageType string    `json:"message_type"`
	Detail      string    `json:"detail,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Journal defines the interface for delivery-record storage.
// Both SQLiteJournal and PostgresJournal implement this interface.
type Journal interface {
	Close()
	Ping(ctx context.Context) error

	Record(ctx context.Context, rec *Record) error
	Recent(ctx context.Context, limit int) ([]Record, error)
	Count(ctx context.Context) (int64, error)
}
