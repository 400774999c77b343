// ABOUTME: Request orchestration for the ask, tune, and sync flows
// ABOUTME: Maps inference outcomes to user-facing responses and schedules background persistence

package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/valiance-dev/valiance-gateway/internal/asyncwriter"
	"github.com/valiance-dev/valiance-gateway/internal/config"
	"github.com/valiance-dev/valiance-gateway/internal/inference"
	"github.com/valiance-dev/valiance-gateway/internal/store"
	"github.com/valiance-dev/valiance-gateway/internal/tuning"
)

// User-facing response strings. The chat frontend is Indonesian; these
// must stay byte-identical across releases because clients match on them.
const (
	msgEmptyInput   = "Mohon masukkan pesan!"
	msgRateLimited  = "Server sedang sibuk, silakan coba ulang lain kali (ERROR: 429)"
	msgTimeout      = "Maaf, permintaan melebihi batas waktu. Silakan coba lagi."
	msgTuneSaved    = "Data tuning berhasil disimpan!"
	msgTuneMissing  = "Mohon berikan data tuning input dan output!"
	msgLocalOnly    = "MongoDB is not connected, data saved locally only"
	msgSyncSuccess  = "Conversations synced successfully"
	msgAccessDenied = "Access denied"
)

// AskResult is the orchestrated outcome of one ask request.
type AskResult struct {
	Response    string
	RawMarkdown string // set only on success; mirrors Response
	TimedOut    bool
}

// Service composes the tuning store, inference invoker, persistence
// store, and background writer into the request flows. It holds no
// per-request state and is safe for concurrent use.
type Service struct {
	cfg     *config.Config
	tuning  *tuning.Store
	invoker *inference.Invoker
	store   store.Store
	writer  *asyncwriter.Writer
	logger  *slog.Logger
}

// NewService wires the request flows together.
func NewService(cfg *config.Config, ts *tuning.Store, inv *inference.Invoker, st store.Store, w *asyncwriter.Writer, logger *slog.Logger) *Service {
	return &Service{
		cfg:     cfg,
		tuning:  ts,
		invoker: inv,
		store:   st,
		writer:  w,
		logger:  logger.With("component", "service"),
	}
}

// Ask runs the full chat flow: validate, build the prompt, invoke the
// provider under its deadline, map the outcome, and hand the turn to
// the background writer on success. Persistence never delays the
// returned result.
func (s *Service) Ask(ctx context.Context, message, conversationID string) AskResult {
	if message == "" {
		return AskResult{Response: msgEmptyInput}
	}

	prompt := tuning.BuildPrompt(s.tuning.Snapshot(), message, s.cfg.Tuning.PromptExamples)
	outcome := s.invoker.Invoke(ctx, prompt)

	switch outcome.Kind {
	case inference.KindSuccess:
		s.persistTurn(message, outcome.Text, conversationID)
		return AskResult{Response: outcome.Text, RawMarkdown: outcome.Text}
	case inference.KindRateLimited:
		return AskResult{Response: msgRateLimited}
	case inference.KindTimeout:
		return AskResult{Response: msgTimeout, TimedOut: true}
	default:
		return AskResult{Response: "Error: " + outcome.Err}
	}
}

// persistTurn schedules an asynchronous chat-turn write. The whole
// storage interaction, including the health probe, runs inside the
// submitted task: the handling flow never touches the store, so a slow
// or wedged backend cannot add latency to the response. The probe
// keeps doomed writes from hitting a backend that is known down; the
// lazy reconnect in the store handles the race where it recovers or
// drops between probe and write.
func (s *Service) persistTurn(userInput, aiResponse, conversationID string) {
	turn := &store.ChatTurn{
		ID:             uuid.NewString(),
		UserInput:      userInput,
		AIResponse:     aiResponse,
		ConversationID: conversationID,
		Timestamp:      time.Now(),
	}
	s.writer.Submit("save-chat-turn", func(ctx context.Context) {
		probeCtx, cancel := context.WithTimeout(ctx, s.cfg.Storage.HealthTimeout)
		healthy := s.store.Health(probeCtx) == store.StateConnected
		cancel()
		if !healthy {
			s.logger.Debug("skipping chat turn persistence, store unhealthy", "turn_id", turn.ID)
			return
		}
		if err := s.store.SaveChatTurn(ctx, turn); err != nil {
			s.logger.Warn("failed to persist chat turn", "turn_id", turn.ID, "error", err)
		}
	})
}

// Tune validates and appends one tuning example. The example is
// persisted to the backing file before this returns.
func (s *Service) Tune(input, output string) (string, error) {
	if input == "" || output == "" {
		return msgTuneMissing, fmt.Errorf("tuning example missing input or output")
	}
	if err := s.tuning.Append(tuning.Example{Input: input, Output: output}); err != nil {
		return "", err
	}
	return msgTuneSaved, nil
}

// SyncConversations upserts client conversation records, at most
// MaxConversations per call. Excess records are dropped with a warning;
// the client is expected to sync incrementally. Returns the status
// string and message for the response body.
func (s *Service) SyncConversations(ctx context.Context, conversations []map[string]any, userID string) (status, message string, err error) {
	probeCtx, cancel := context.WithTimeout(ctx, s.cfg.Storage.HealthTimeout)
	healthy := s.store.Health(probeCtx) == store.StateConnected
	cancel()
	if !healthy {
		return "warning", msgLocalOnly, nil
	}

	if userID == "" {
		userID = "anonymous"
	}

	capN := s.cfg.Sync.MaxConversations
	if len(conversations) > capN {
		s.logger.Warn("truncating conversation sync batch",
			"received", len(conversations),
			"cap", capN)
		conversations = conversations[:capN]
	}

	for _, conv := range conversations {
		rec, buildErr := buildConversationRecord(conv, userID)
		if buildErr != nil {
			s.logger.Warn("skipping malformed conversation record", "error", buildErr)
			continue
		}
		if upErr := s.store.UpsertConversation(ctx, rec); upErr != nil {
			s.logger.Error("conversation sync failed", "conversation_id", rec.ID, "error", upErr)
			return "error", upErr.Error(), upErr
		}
	}
	return "success", msgSyncSuccess, nil
}

// buildConversationRecord converts a raw client blob into a record,
// parsing created_at when it is an RFC 3339 string. Unparsable values
// pass through in Fields untouched.
func buildConversationRecord(conv map[string]any, userID string) (*store.ConversationRecord, error) {
	id, _ := conv["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("conversation record has no id")
	}

	rec := &store.ConversationRecord{
		ID:     id,
		UserID: userID,
		Fields: make(map[string]any, len(conv)),
	}
	for k, v := range conv {
		rec.Fields[k] = v
	}

	if raw, ok := conv["created_at"].(string); ok {
		if t, parseErr := time.Parse(time.RFC3339, raw); parseErr == nil {
			rec.CreatedAt = &t
			delete(rec.Fields, "created_at")
		}
	}
	return rec, nil
}

// StorageStatus returns the diagnostic probe result.
func (s *Service) StorageStatus(ctx context.Context) store.Status {
	return s.store.StorageStatus(ctx)
}

// TuningCount returns the number of stored tuning examples.
func (s *Service) TuningCount() int {
	return s.tuning.Len()
}

// StoreHealth probes the persistence backend.
func (s *Service) StoreHealth(ctx context.Context) store.HealthState {
	return s.store.Health(ctx)
}
