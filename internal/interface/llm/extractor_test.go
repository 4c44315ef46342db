package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calassist-service/pkg/logger"
	"calassist-service/pkg/nlp"
)

func completionServer(t *testing.T, content string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		})
	}))
}

func newExtractorAgainst(url string) *OpenAIExtractor {
	nop := logger.NewNop()
	return NewOpenAIExtractor(url, "test-key", "test-model", nlp.NewSlotExtractor(nop), nop)
}

func TestExtractOverridesRulesWithModelAnswer(t *testing.T) {
	srv := completionServer(t, "Here you go:\n```json\n"+
		`{"datetime": "2025-06-29T15:00:00Z", "duration": 45, "summary": "Team sync", "timezone": "Asia/Kolkata", "ambiguity": false}`+
		"\n```")
	defer srv.Close()

	got := newExtractorAgainst(srv.URL).Extract(context.Background(), "book a team sync", nil)

	require.NotNil(t, got.Datetime)
	assert.True(t, got.Datetime.Equal(time.Date(2025, 6, 29, 15, 0, 0, 0, time.UTC)))
	assert.Equal(t, 45, got.DurationMinutes)
	assert.Equal(t, "Team sync", got.Summary)
	assert.Equal(t, "Asia/Kolkata", got.Timezone)
	assert.False(t, got.Ambiguous)
}

// A dead endpoint degrades to plain rules extraction instead of failing.
func TestExtractFallsBackOnEndpointError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	got := newExtractorAgainst(srv.URL).Extract(context.Background(), "book on 29 June 2025 at 3pm for 1 hour", nil)

	require.NotNil(t, got.Datetime)
	assert.Equal(t, 60, got.DurationMinutes)
	assert.Equal(t, nlp.DefaultSummary, got.Summary)
}

func TestExtractFallsBackOnNonJSONCompletion(t *testing.T) {
	srv := completionServer(t, "I could not find any scheduling details.")
	defer srv.Close()

	got := newExtractorAgainst(srv.URL).Extract(context.Background(), "book on 29 June 2025 at 3pm", nil)

	require.NotNil(t, got.Datetime)
	assert.Equal(t, 2025, got.Datetime.Year())
}

// An unparseable model datetime keeps the rules result; a missing one marks
// the record ambiguous.
func TestExtractRejectsBadModelDatetime(t *testing.T) {
	srv := completionServer(t,
		`{"datetime": "whenever", "duration": 0, "summary": "", "timezone": "Nowhere/Fake", "ambiguity": false}`)
	defer srv.Close()

	got := newExtractorAgainst(srv.URL).Extract(context.Background(), "book on 29 June 2025 at 3pm", nil)

	require.NotNil(t, got.Datetime)
	assert.Equal(t, nlp.DefaultTimezone, got.Timezone)
	assert.False(t, got.Ambiguous)
}
