// ABOUTME: HTTP API handlers for the chat, tuning, and sync endpoints
// ABOUTME: JSON request decoding, response mapping, and the legacy denied route

package gateway

import (
	"encoding/json"
	"net/http"
)

// AskRequest is the JSON request body for POST /ask.
type AskRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// AskResponse is the JSON response for POST /ask.
type AskResponse struct {
	Response    string `json:"response"`
	RawMarkdown string `json:"rawMarkdown,omitempty"`
}

// TuneRequest is the JSON request body for POST /tune.
type TuneRequest struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// TuneResponse is the JSON response for POST /tune.
type TuneResponse struct {
	Response string `json:"response"`
}

// SyncRequest is the JSON request body for POST /sync-conversations.
// Conversation records are opaque client blobs; only id and created_at
// are interpreted server-side.
type SyncRequest struct {
	Conversations []map[string]any `json:"conversations"`
	UserID        string           `json:"user_id"`
}

// SyncResponse is the JSON response for POST /sync-conversations.
type SyncResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// DeniedResponse is the JSON response for the blocked conversation
// listing route.
type DeniedResponse struct {
	Status        string   `json:"status"`
	Message       string   `json:"message"`
	Conversations []string `json:"conversations"`
}

// handleAsk handles POST /ask requests.
func (g *Gateway) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		g.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result := g.service.Ask(r.Context(), req.Message, req.ConversationID)

	status := http.StatusOK
	if result.TimedOut {
		status = http.StatusGatewayTimeout
	}
	g.sendJSON(w, status, AskResponse{
		Response:    result.Response,
		RawMarkdown: result.RawMarkdown,
	})
}

// handleTune handles POST /tune requests.
func (g *Gateway) handleTune(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		g.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req TuneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	msg, err := g.service.Tune(req.Input, req.Output)
	if err != nil {
		if msg != "" {
			// Validation failure carries its own user-facing message.
			g.sendJSON(w, http.StatusBadRequest, TuneResponse{Response: msg})
			return
		}
		g.logger.Error("failed to save tuning example", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	g.sendJSON(w, http.StatusOK, TuneResponse{Response: msg})
}

// handleSyncConversations handles POST /sync-conversations requests.
func (g *Gateway) handleSyncConversations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		g.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	status, message, err := g.service.SyncConversations(r.Context(), req.Conversations, req.UserID)
	httpStatus := http.StatusOK
	if err != nil {
		httpStatus = http.StatusInternalServerError
	}
	g.sendJSON(w, httpStatus, SyncResponse{Status: status, Message: message})
}

// handleGetConversations handles GET /get-conversations. Listing
// synced conversations over the public API is blocked; the route is
// kept so old clients get a structured denial instead of a 404.
func (g *Gateway) handleGetConversations(w http.ResponseWriter, r *http.Request) {
	g.sendJSON(w, http.StatusForbidden, DeniedResponse{
		Status:        "error",
		Message:       msgAccessDenied,
		Conversations: []string{},
	})
}

// handleStorageStatus handles GET /storage/status requests.
func (g *Gateway) handleStorageStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		g.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	g.sendJSON(w, http.StatusOK, g.service.StorageStatus(r.Context()))
}

// sendJSON writes a JSON response with the given status.
func (g *Gateway) sendJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		g.logger.Error("failed to encode response", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	g.sendJSON(w, status, map[string]string{"error": message})
}
