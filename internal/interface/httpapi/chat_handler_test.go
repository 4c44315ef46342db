package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calassist-service/internal/domain/entity"
	"calassist-service/internal/usecase"
	"calassist-service/pkg/logger"
	"calassist-service/pkg/nlp"
)

type stubAssistant struct {
	result  *usecase.Result
	gotMsg  string
	history []*entity.ChatMessage
}

func (s *stubAssistant) HandleMessage(_ context.Context, userMsg string, history []*entity.ChatMessage) *usecase.Result {
	s.gotMsg = userMsg
	s.history = history
	return s.result
}

type stubConversations struct {
	stored    []*entity.ChatMessage
	recent    []*entity.ChatMessage
	appendErr error
}

func (s *stubConversations) Append(_ context.Context, m *entity.ChatMessage) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.stored = append(s.stored, m)
	return nil
}

func (s *stubConversations) Recent(_ context.Context, _ string, _ int) ([]*entity.ChatMessage, error) {
	return s.recent, nil
}

func bookedResult() *usecase.Result {
	dt := time.Date(2025, 6, 29, 15, 0, 0, 0, time.UTC)
	return &usecase.Result{
		Intent: nlp.IntentBook,
		Slots: nlp.SlotRecord{
			Datetime:        &dt,
			DurationMinutes: 60,
			Summary:         "Team sync",
			Timezone:        "UTC",
			Attendees:       []string{"Alice"},
		},
		Response: "Event 'Team sync' booked for 29 Jun 2025 15:00 (UTC).",
	}
}

func TestChatHandlerFlattensResult(t *testing.T) {
	assistant := &stubAssistant{result: bookedResult()}
	h := NewChatHandler(assistant, nil, 20, logger.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/chat",
		strings.NewReader(`{"message": "book a team sync"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "book a team sync", assistant.gotMsg)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "book", body["intent"])
	assert.Equal(t, "2025-06-29T15:00:00Z", body["datetime"])
	assert.Equal(t, float64(60), body["duration"])
	assert.Equal(t, "Team sync", body["summary"])
	assert.Equal(t, []interface{}{"Alice"}, body["attendees"])
	assert.Equal(t, false, body["ambiguity"])
	assert.Contains(t, body["response"], "booked for 29 Jun 2025 15:00")
}

func TestChatHandlerNullDatetime(t *testing.T) {
	assistant := &stubAssistant{result: &usecase.Result{
		Intent: nlp.IntentUnknown,
		Slots: nlp.SlotRecord{
			DurationMinutes: 30,
			Summary:         "Event",
			Timezone:        "UTC",
			Ambiguous:       true,
		},
		Response: "Sorry, I didn't understand. Please try again or type 'help'.",
	}}
	h := NewChatHandler(assistant, nil, 20, logger.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message": "blub"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Nil(t, body["datetime"])
	assert.Equal(t, true, body["ambiguity"])
	assert.Equal(t, []interface{}{}, body["attendees"])
}

func TestChatHandlerRejectsBadRequests(t *testing.T) {
	h := NewChatHandler(&stubAssistant{result: bookedResult()}, nil, 20, logger.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message": ""}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)

	req = httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{not json`))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/chat", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestChatHandlerInlineHistoryWins(t *testing.T) {
	assistant := &stubAssistant{result: bookedResult()}
	conversations := &stubConversations{recent: []*entity.ChatMessage{
		{Role: entity.RoleAssistant, Content: "stored reply"},
	}}
	h := NewChatHandler(assistant, conversations, 20, logger.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(
		`{"session_id": "s1", "message": "cancel that", "messages": [{"role": "assistant", "content": "inline reply"}]}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Len(t, assistant.history, 1)
	assert.Equal(t, "inline reply", assistant.history[0].Content)
}

func TestChatHandlerLoadsStoredHistory(t *testing.T) {
	assistant := &stubAssistant{result: bookedResult()}
	conversations := &stubConversations{recent: []*entity.ChatMessage{
		{Role: entity.RoleAssistant, Content: "stored reply"},
	}}
	h := NewChatHandler(assistant, conversations, 20, logger.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/chat",
		strings.NewReader(`{"session_id": "s1", "message": "cancel that"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Len(t, assistant.history, 1)
	assert.Equal(t, "stored reply", assistant.history[0].Content)
}

func TestChatHandlerPersistsBothTurns(t *testing.T) {
	assistant := &stubAssistant{result: bookedResult()}
	conversations := &stubConversations{}
	h := NewChatHandler(assistant, conversations, 20, logger.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/chat",
		strings.NewReader(`{"session_id": "s1", "message": "book a team sync"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Len(t, conversations.stored, 2)
	assert.Equal(t, entity.RoleUser, conversations.stored[0].Role)
	assert.Equal(t, "book a team sync", conversations.stored[0].Content)
	assert.Equal(t, entity.RoleAssistant, conversations.stored[1].Role)

	// Without a session ID nothing is stored.
	conversations.stored = nil
	req = httptest.NewRequest(http.MethodPost, "/chat",
		strings.NewReader(`{"message": "book a team sync"}`))
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Empty(t, conversations.stored)
}

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}
