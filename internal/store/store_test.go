// ABOUTME: Tests for store types and the in-memory mock
// ABOUTME: Covers health states, call recording, and injected failures

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthState_String(t *testing.T) {
	assert.Equal(t, "connected", StateConnected.String())
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "unknown", StateUnknown.String())
	assert.Equal(t, "unknown", HealthState(99).String())
}

func TestMockStore_SaveChatTurn(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	turn := &ChatTurn{
		ID:         "turn-1",
		UserInput:  "halo",
		AIResponse: "Halo! Ada yang bisa saya bantu?",
		Timestamp:  time.Now(),
	}
	require.NoError(t, m.SaveChatTurn(ctx, turn))

	turns := m.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, "turn-1", turns[0].ID)
	assert.Equal(t, "halo", turns[0].UserInput)
}

func TestMockStore_SaveChatTurn_InjectedError(t *testing.T) {
	m := NewMockStore()
	m.SetSaveErr(ErrUnavailable)

	err := m.SaveChatTurn(context.Background(), &ChatTurn{ID: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.Empty(t, m.Turns())
}

func TestMockStore_UpsertConversation_Idempotent(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	rec := &ConversationRecord{ID: "conv-1", UserID: "u1"}
	require.NoError(t, m.UpsertConversation(ctx, rec))
	require.NoError(t, m.UpsertConversation(ctx, rec))

	assert.Equal(t, 1, m.ConversationCount())

	first, ok := m.SyncStamp("conv-1")
	require.True(t, ok)
	assert.False(t, first.IsZero())
}

func TestMockStore_UpsertConversation_OverwritesFields(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	require.NoError(t, m.UpsertConversation(ctx, &ConversationRecord{
		ID:     "conv-1",
		Fields: map[string]any{"title": "old"},
	}))
	require.NoError(t, m.UpsertConversation(ctx, &ConversationRecord{
		ID:     "conv-1",
		Fields: map[string]any{"title": "new"},
	}))

	rec, ok := m.Conversation("conv-1")
	require.True(t, ok)
	assert.Equal(t, "new", rec.Fields["title"])
}

func TestMockStore_Health(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	assert.Equal(t, StateConnected, m.Health(ctx))

	m.SetHealth(StateDisconnected)
	assert.Equal(t, StateDisconnected, m.Health(ctx))
}

func TestMockStore_StorageStatus(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	require.NoError(t, m.SaveChatTurn(ctx, &ChatTurn{ID: "t1"}))
	require.NoError(t, m.UpsertConversation(ctx, &ConversationRecord{ID: "c1"}))

	status := m.StorageStatus(ctx)
	assert.True(t, status.Connected)
	assert.Equal(t, 1, status.Details["chat_turns"])
	assert.Equal(t, 1, status.Details["conversations"])

	m.SetHealth(StateDisconnected)
	assert.False(t, m.StorageStatus(ctx).Connected)
}

func TestMockStore_Close(t *testing.T) {
	m := NewMockStore()
	require.NoError(t, m.Close(context.Background()))
	assert.True(t, m.Closed())
}
