// ABOUTME: In-memory Store implementation for tests
// ABOUTME: Records every call and lets tests flip health and inject failures

package store

import (
	"context"
	"sync"
	"time"
)

// MockStore is an in-memory Store for tests. All methods are safe for
// concurrent use and return copies of internal state.
type MockStore struct {
	mu sync.RWMutex

	turns         []ChatTurn
	conversations map[string]ConversationRecord
	syncStamps    map[string]time.Time

	healthState HealthState
	saveErr     error
	upsertErr   error
	closed      bool
}

// NewMockStore creates an empty mock reporting StateConnected.
func NewMockStore() *MockStore {
	return &MockStore{
		conversations: make(map[string]ConversationRecord),
		syncStamps:    make(map[string]time.Time),
		healthState:   StateConnected,
	}
}

// SetHealth overrides the state returned by Health.
func (m *MockStore) SetHealth(state HealthState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthState = state
}

// SetSaveErr makes SaveChatTurn return err.
func (m *MockStore) SetSaveErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// SetUpsertErr makes UpsertConversation return err.
func (m *MockStore) SetUpsertErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertErr = err
}

func (m *MockStore) SaveChatTurn(_ context.Context, turn *ChatTurn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.turns = append(m.turns, *turn)
	return nil
}

func (m *MockStore) UpsertConversation(_ context.Context, rec *ConversationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.conversations[rec.ID] = *rec
	m.syncStamps[rec.ID] = time.Now()
	return nil
}

func (m *MockStore) Health(_ context.Context) HealthState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.healthState
}

func (m *MockStore) StorageStatus(_ context.Context) Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Status{
		Connected: m.healthState == StateConnected,
		Details: map[string]any{
			"chat_turns":    len(m.turns),
			"conversations": len(m.conversations),
		},
	}
}

func (m *MockStore) Close(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Turns returns a copy of every saved chat turn in insertion order.
func (m *MockStore) Turns() []ChatTurn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ChatTurn, len(m.turns))
	copy(out, m.turns)
	return out
}

// Conversation returns the stored record for id, if any.
func (m *MockStore) Conversation(id string) (ConversationRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.conversations[id]
	return rec, ok
}

// ConversationCount returns the number of distinct stored conversations.
func (m *MockStore) ConversationCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conversations)
}

// SyncStamp returns the time UpsertConversation last ran for id.
func (m *MockStore) SyncStamp(id string) (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.syncStamps[id]
	return t, ok
}

// Closed reports whether Close was called.
func (m *MockStore) Closed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}
