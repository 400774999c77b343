// ABOUTME: Tests for MongoStore behavior that needs no live backend
// ABOUTME: Covers local-only mode, health without a URI, and clean Close

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valiance-dev/valiance-gateway/internal/config"
)

func localOnlyConfig() config.StorageConfig {
	return config.StorageConfig{
		URI:            "",
		Database:       config.DefaultDatabase,
		MaxPoolSize:    config.DefaultMaxPoolSize,
		MaxConnIdle:    time.Minute,
		ConnectTimeout: time.Second,
		HealthTimeout:  time.Second,
	}
}

func TestMongoStore_LocalOnly_SaveChatTurn(t *testing.T) {
	s := NewMongoStore(localOnlyConfig())
	err := s.SaveChatTurn(context.Background(), &ChatTurn{ID: "t1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestMongoStore_LocalOnly_UpsertConversation(t *testing.T) {
	s := NewMongoStore(localOnlyConfig())
	err := s.UpsertConversation(context.Background(), &ConversationRecord{ID: "c1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestMongoStore_LocalOnly_Health(t *testing.T) {
	s := NewMongoStore(localOnlyConfig())
	assert.Equal(t, StateDisconnected, s.Health(context.Background()))
}

func TestMongoStore_LocalOnly_StorageStatus(t *testing.T) {
	s := NewMongoStore(localOnlyConfig())
	status := s.StorageStatus(context.Background())
	assert.False(t, status.Connected)
	assert.Equal(t, false, status.Details["configured"])
	assert.NotEmpty(t, status.Error)
}

func TestMongoStore_Health_DoesNotQueueBehindDial(t *testing.T) {
	cfg := localOnlyConfig()
	cfg.URI = "mongodb://127.0.0.1:1"
	s := NewMongoStore(cfg)

	// Simulate another caller mid-dial against an unreachable backend.
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	state := s.Health(context.Background())

	assert.Equal(t, StateDisconnected, state)
	assert.Less(t, time.Since(start), 500*time.Millisecond,
		"probe must report immediately when the connection lock is held")
}

func TestMongoStore_Close_NeverConnected(t *testing.T) {
	s := NewMongoStore(localOnlyConfig())
	require.NoError(t, s.Close(context.Background()))
}

func TestWIBZone(t *testing.T) {
	_, offset := time.Now().In(wib).Zone()
	assert.Equal(t, 7*60*60, offset)
}
