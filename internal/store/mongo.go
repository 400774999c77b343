// ABOUTME: MongoDB implementation of the Store interface
// ABOUTME: Lazy connect, bounded pool, self-healing probes, WIB server-side timestamps

package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/valiance-dev/valiance-gateway/internal/config"
)

const (
	chatTurnsCollection     = "chat_turns"
	conversationsCollection = "conversations"
)

// wib is the fixed server-side zone used for last_synced stamps.
var wib = time.FixedZone("WIB", 7*60*60)

// MongoStore persists chat turns and conversations in MongoDB. The
// connection is established lazily on first use and re-attempted on every
// operation after a failure, so a backend that comes up late or flaps is
// picked up without a restart. An empty URI configures a permanently
// disconnected store; the gateway then runs in local-only mode.
type MongoStore struct {
	cfg    config.StorageConfig
	logger *slog.Logger

	mu     sync.Mutex
	client *mongo.Client
}

// NewMongoStore creates a store for the given configuration. No network
// I/O happens here; the first operation or probe connects.
func NewMongoStore(cfg config.StorageConfig) *MongoStore {
	return &MongoStore{
		cfg:    cfg,
		logger: slog.Default().With("component", "store"),
	}
}

// connect returns a connected client, dialing if needed. Callers must
// not hold s.mu.
func (s *MongoStore) connect(ctx context.Context) (*mongo.Client, error) {
	if s.cfg.URI == "" {
		return nil, ErrUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}

	client, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}
	s.client = client
	return client, nil
}

// dial establishes and pings a new client. Callers own locking.
func (s *MongoStore) dial(ctx context.Context) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(s.cfg.URI).
		SetMaxPoolSize(s.cfg.MaxPoolSize).
		SetMaxConnIdleTime(s.cfg.MaxConnIdle).
		SetServerSelectionTimeout(s.cfg.ConnectTimeout).
		SetConnectTimeout(s.cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		// Connect rarely fails for unreachable hosts; the ping is what
		// actually proves the backend is there.
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	s.logger.Info("connected to mongodb", "database", s.cfg.Database)
	return client, nil
}

// dropClient forgets a client after an operation error so the next call
// redials from scratch.
func (s *MongoStore) dropClient(client *mongo.Client) {
	s.mu.Lock()
	if s.client == client {
		s.client = nil
	}
	s.mu.Unlock()
	_ = client.Disconnect(context.Background())
}

// dropClientAsync is dropClient for the health path: it skips the drop
// when the mutex is contended and runs the disconnect off the caller's
// goroutine, keeping the probe inside its budget.
func (s *MongoStore) dropClientAsync(client *mongo.Client) {
	if s.mu.TryLock() {
		if s.client == client {
			s.client = nil
		}
		s.mu.Unlock()
	}
	go func() {
		_ = client.Disconnect(context.Background())
	}()
}

func (s *MongoStore) collection(client *mongo.Client, name string) *mongo.Collection {
	return client.Database(s.cfg.Database).Collection(name)
}

// SaveChatTurn inserts one completed exchange into chat_turns.
func (s *MongoStore) SaveChatTurn(ctx context.Context, turn *ChatTurn) error {
	client, err := s.connect(ctx)
	if err != nil {
		return err
	}

	doc := bson.M{
		"id":          turn.ID,
		"user_input":  turn.UserInput,
		"ai_response": turn.AIResponse,
		"timestamp":   turn.Timestamp,
	}
	if turn.ConversationID != "" {
		doc["conversation_id"] = turn.ConversationID
	}

	if _, err := s.collection(client, chatTurnsCollection).InsertOne(ctx, doc); err != nil {
		s.dropClient(client)
		return fmt.Errorf("inserting chat turn: %w", err)
	}
	return nil
}

// UpsertConversation writes a conversation record keyed by its ID. The
// last_synced field is always the server clock in WIB, regardless of
// anything the client sent.
func (s *MongoStore) UpsertConversation(ctx context.Context, rec *ConversationRecord) error {
	client, err := s.connect(ctx)
	if err != nil {
		return err
	}

	set := bson.M{
		"id":          rec.ID,
		"last_synced": time.Now().In(wib),
	}
	if rec.UserID != "" {
		set["user_id"] = rec.UserID
	}
	if rec.CreatedAt != nil {
		set["created_at"] = *rec.CreatedAt
	}
	for k, v := range rec.Fields {
		switch k {
		case "id", "last_synced", "user_id", "created_at", "_id":
			continue
		}
		set[k] = v
	}

	_, err = s.collection(client, conversationsCollection).UpdateOne(
		ctx,
		bson.M{"id": rec.ID},
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		s.dropClient(client)
		return fmt.Errorf("upserting conversation %s: %w", rec.ID, err)
	}
	return nil
}

// Health probes the backend with the short health timeout. The probe
// never queues behind an in-flight dial or cleanup: if the mutex is
// contended it reports disconnected immediately, so a status check is
// never itself a source of latency. A failed ping drops the cached
// client so the next call redials.
func (s *MongoStore) Health(ctx context.Context) HealthState {
	if s.cfg.URI == "" {
		return StateDisconnected
	}

	probeCtx, cancel := context.WithTimeout(ctx, s.cfg.HealthTimeout)
	defer cancel()

	if !s.mu.TryLock() {
		// Another caller holds the lock, most likely dialing an
		// unreachable backend for up to ConnectTimeout.
		return StateDisconnected
	}
	client := s.client
	if client == nil {
		dialed, err := s.dial(probeCtx)
		if err != nil {
			s.mu.Unlock()
			return StateDisconnected
		}
		s.client = dialed
		client = dialed
	}
	s.mu.Unlock()

	if err := client.Ping(probeCtx, readpref.Primary()); err != nil {
		s.logger.Warn("mongodb health probe failed", "error", err)
		s.dropClientAsync(client)
		return StateDisconnected
	}
	return StateConnected
}

// StorageStatus returns a diagnostic snapshot including collection
// counts when the backend is reachable.
func (s *MongoStore) StorageStatus(ctx context.Context) Status {
	status := Status{Details: map[string]any{
		"database":   s.cfg.Database,
		"configured": s.cfg.URI != "",
	}}

	if s.cfg.URI == "" {
		status.Error = "no storage URI configured"
		return status
	}

	client, err := s.connect(ctx)
	if err != nil {
		status.Error = err.Error()
		return status
	}

	for _, name := range []string{chatTurnsCollection, conversationsCollection} {
		n, err := s.collection(client, name).EstimatedDocumentCount(ctx)
		if err != nil {
			s.dropClient(client)
			status.Error = err.Error()
			return status
		}
		status.Details[name] = n
	}

	status.Connected = true
	return status
}

// Close disconnects the underlying client, if one was established.
func (s *MongoStore) Close(ctx context.Context) error {
	s.mu.Lock()
	client := s.client
	s.client = nil
	s.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}
