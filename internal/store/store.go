// ABOUTME: Store interface and data types for valiance-gateway persistence
// ABOUTME: Defines ChatTurn, ConversationRecord and the optional document-store boundary

package store

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when the document store cannot be reached.
// Callers on the chat path must treat it as a degraded feature, never a
// request failure.
var ErrUnavailable = errors.New("document store unavailable")

// HealthState is the tri-state result of a connection probe.
type HealthState int

const (
	// StateUnknown means no probe has completed yet.
	StateUnknown HealthState = iota
	// StateConnected means the last probe round-tripped successfully.
	StateConnected
	// StateDisconnected means the last probe failed or no store is configured.
	StateDisconnected
)

// String returns the health state for logging and status payloads.
func (s HealthState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// ChatTurn is one completed question/answer exchange. It is created
// after a successful generation and owned by the background writer until
// persisted; it is never mutated after creation.
type ChatTurn struct {
	ID             string
	UserInput      string
	AIResponse     string
	ConversationID string // optional client-side conversation grouping
	Timestamp      time.Time
}

// ConversationRecord is a client-supplied conversation blob synced in
// bulk. Records are upserted keyed by ID. LastSynced is always stamped
// server-side; the caller's value is never trusted.
type ConversationRecord struct {
	ID        string
	UserID    string
	CreatedAt *time.Time
	Fields    map[string]any // opaque client fields stored as-is
}

// Status is the best-effort diagnostic result of a storage probe.
type Status struct {
	Connected bool           `json:"connected"`
	Details   map[string]any `json:"details"`
	Error     string         `json:"error,omitempty"`
}

// Store is the boundary to the optional document store. Implementations
// must tolerate the backend being unreachable at any time: every method
// degrades with ErrUnavailable rather than blocking the caller beyond
// its configured timeouts.
type Store interface {
	// SaveChatTurn appends a turn to the chat log collection.
	SaveChatTurn(ctx context.Context, turn *ChatTurn) error

	// UpsertConversation updates or inserts a conversation keyed by its ID,
	// overwriting last_synced with the server clock.
	UpsertConversation(ctx context.Context, rec *ConversationRecord) error

	// Health runs a cheap connection probe with the store's short health
	// timeout, independent of operation timeouts.
	Health(ctx context.Context) HealthState

	// StorageStatus returns a diagnostic snapshot (non-authoritative).
	StorageStatus(ctx context.Context) Status

	// Close releases the underlying client, if any.
	Close(ctx context.Context) error
}
