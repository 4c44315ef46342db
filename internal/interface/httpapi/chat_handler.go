package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"calassist-service/internal/domain/entity"
	"calassist-service/internal/domain/repository"
	"calassist-service/internal/usecase"
	"calassist-service/pkg/logger"
)

// MessageHandler is the piece of the assistant the transport needs.
type MessageHandler interface {
	HandleMessage(ctx context.Context, userMsg string, history []*entity.ChatMessage) *usecase.Result
}

// ChatHandler exposes the assistant over HTTP. Callers either supply the chat
// history inline or a session ID; with a session ID the transcript store
// provides the history and records the new turns.
type ChatHandler struct {
	assistant     MessageHandler
	conversations repository.ConversationRepository
	historyLimit  int
	logger        logger.Logger
}

// NewChatHandler creates a new chat handler. The conversation repository may
// be nil; sessions then carry no server-side history.
func NewChatHandler(assistant MessageHandler, conversations repository.ConversationRepository, historyLimit int, logger logger.Logger) *ChatHandler {
	return &ChatHandler{
		assistant:     assistant,
		conversations: conversations,
		historyLimit:  historyLimit,
		logger:        logger,
	}
}

type chatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	SessionID string     `json:"session_id"`
	Message   string     `json:"message"`
	Messages  []chatTurn `json:"messages"`
}

type chatResponse struct {
	Intent    string   `json:"intent"`
	Datetime  *string  `json:"datetime"`
	Duration  int      `json:"duration"`
	Summary   string   `json:"summary"`
	Timezone  string   `json:"timezone"`
	Attendees []string `json:"attendees"`
	Ambiguity bool     `json:"ambiguity"`
	Reference string   `json:"reference,omitempty"`
	Response  string   `json:"response"`
}

// ServeHTTP handles POST /chat
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	history := h.loadHistory(r.Context(), &req)
	result := h.assistant.HandleMessage(r.Context(), req.Message, history)
	h.persistTurns(r.Context(), req.SessionID, req.Message, result.Response)

	resp := chatResponse{
		Intent:    string(result.Intent),
		Duration:  result.Slots.DurationMinutes,
		Summary:   result.Slots.Summary,
		Timezone:  result.Slots.Timezone,
		Attendees: result.Slots.Attendees,
		Ambiguity: result.Slots.Ambiguous,
		Reference: result.Slots.Reference,
		Response:  result.Response,
	}
	if result.Slots.Datetime != nil {
		iso := result.Slots.Datetime.Format(time.RFC3339)
		resp.Datetime = &iso
	}
	if resp.Attendees == nil {
		resp.Attendees = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// loadHistory prefers inline history over the stored transcript.
func (h *ChatHandler) loadHistory(ctx context.Context, req *chatRequest) []*entity.ChatMessage {
	if len(req.Messages) > 0 {
		history := make([]*entity.ChatMessage, 0, len(req.Messages))
		for _, turn := range req.Messages {
			history = append(history, &entity.ChatMessage{
				SessionID: req.SessionID,
				Role:      turn.Role,
				Content:   turn.Content,
			})
		}
		return history
	}

	if req.SessionID == "" || h.conversations == nil {
		return nil
	}
	history, err := h.conversations.Recent(ctx, req.SessionID, h.historyLimit)
	if err != nil {
		h.logger.Warn("Failed to load transcript, continuing without history",
			"sessionId", req.SessionID, "error", err)
		return nil
	}
	return history
}

// persistTurns appends both turns to the transcript. Failures are logged and
// swallowed; the reply already exists and must reach the user.
func (h *ChatHandler) persistTurns(ctx context.Context, sessionID, userMsg, reply string) {
	if sessionID == "" || h.conversations == nil {
		return
	}

	turns := []*entity.ChatMessage{
		{SessionID: sessionID, Role: entity.RoleUser, Content: userMsg},
		{SessionID: sessionID, Role: entity.RoleAssistant, Content: reply},
	}
	for _, turn := range turns {
		if err := h.conversations.Append(ctx, turn); err != nil {
			h.logger.Warn("Failed to persist chat turn", "sessionId", sessionID, "error", err)
			return
		}
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// HealthHandler reports liveness
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
