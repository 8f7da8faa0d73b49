package chat

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/careloop/hospital-scheduler/pkg/logging"
)

// TurnService runs a chat turn and manages session lifecycle.
type TurnService interface {
	HandleTurn(ctx context.Context, sessionID, userMessage string) string
	ResetSession(ctx context.Context, sessionID string) error
}

// Handler serves the chat endpoints.
type Handler struct {
	svc      TurnService
	validate *validator.Validate
	logger   *logging.Logger
}

// NewHandler creates a chat handler.
func NewHandler(svc TurnService, logger *logging.Logger) *Handler {
	if svc == nil {
		panic("chat: turn service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		svc:      svc,
		validate: validator.New(),
		logger:   logger,
	}
}

type turnRequest struct {
	Message   string `json:"message" validate:"required"`
	SessionID string `json:"session_id" validate:"omitempty,max=128"`
}

type turnResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// HandleTurn is POST /chat. Oracle or store trouble never surfaces as a
// non-200 status; the response body carries a human-readable message either
// way. Only a malformed request is rejected at the transport level.
func (h *Handler) HandleTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = generateSessionID()
	}

	reply := h.svc.HandleTurn(r.Context(), req.SessionID, req.Message)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(turnResponse{
		Response:  reply,
		SessionID: req.SessionID,
	})
}

type resetRequest struct {
	SessionID string `json:"session_id" validate:"required,max=128"`
}

// HandleReset is POST /chat/reset, the out-of-band "new chat" signal. It
// clears the session's conversation history and nothing else.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	if err := h.svc.ResetSession(r.Context(), req.SessionID); err != nil {
		h.logger.Error("failed to reset session", "error", err, "session_id", req.SessionID)
		http.Error(w, "failed to reset session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "reset"})
}

// HealthCheck returns a simple health check response.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// generateSessionID mints a random session identifier for first-turn
// requests that arrive without one.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}
