package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"calassist-service/pkg/logger"
	"calassist-service/pkg/nlp"
)

const systemPrompt = `You are a helpful AI assistant that helps users manage their calendar. The user may ask to check availability, book a meeting, or cancel one.

Extract the following information from the user's message and respond with a JSON object:

1. "datetime": A date/time string in ISO 8601 format (e.g. "2025-06-28T14:00:00+05:30")
2. "duration": Length of the meeting in minutes (default to 30 if not given)
3. "summary": What the meeting is about (default: "Meeting")
4. "timezone": If the user mentioned a timezone like "Asia/Kolkata", return it; otherwise "UTC"
5. "ambiguity": true if the time is vague (e.g. "next week"), or if essential information is missing

Respond in strict JSON format only.`

// jsonBlockRe pulls the JSON object out of a completion that may wrap it in
// prose or a markdown fence.
var jsonBlockRe = regexp.MustCompile(`\{[\s\S]*\}`)

// OpenAIExtractor extracts slots by asking an OpenAI-compatible chat
// completion endpoint. The regex extractor runs first on every message; the
// model's answer overrides the fields it fills, so a model outage degrades to
// plain rules extraction instead of failing the request.
type OpenAIExtractor struct {
	logger  logger.Logger
	rules   *nlp.SlotExtractor
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewOpenAIExtractor creates a new LLM-backed extractor
func NewOpenAIExtractor(baseURL, apiKey, model string, rules *nlp.SlotExtractor, logger logger.Logger) *OpenAIExtractor {
	return &OpenAIExtractor{
		logger:  logger,
		rules:   rules,
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type extractedSlots struct {
	Datetime  string `json:"datetime"`
	Duration  int    `json:"duration"`
	Summary   string `json:"summary"`
	Timezone  string `json:"timezone"`
	Ambiguity bool   `json:"ambiguity"`
}

// Extract parses one message, preferring the model's structured answer over
// the regex passes.
func (e *OpenAIExtractor) Extract(ctx context.Context, text string, contextEvent *nlp.ContextEvent) nlp.SlotRecord {
	record := e.rules.Extract(text, contextEvent)

	slots, err := e.complete(ctx, text)
	if err != nil {
		e.logger.Warn("LLM extraction failed, keeping rules result", "error", err)
		return record
	}

	if slots.Datetime != "" {
		if dt, err := nlp.ParseTimestamp(slots.Datetime); err == nil {
			record.Datetime = &dt
		} else {
			e.logger.Warn("LLM returned unparseable datetime", "datetime", slots.Datetime)
		}
	}
	if slots.Duration > 0 {
		record.DurationMinutes = slots.Duration
	}
	if slots.Summary != "" {
		record.Summary = slots.Summary
	}
	if slots.Timezone != "" {
		if _, err := time.LoadLocation(slots.Timezone); err == nil {
			record.Timezone = slots.Timezone
		}
	}
	record.Ambiguous = slots.Ambiguity || record.Datetime == nil

	return record
}

func (e *OpenAIExtractor) complete(ctx context.Context, text string) (*extractedSlots, error) {
	body := chatRequest{
		Model: e.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		Temperature: 0.0,
		MaxTokens:   512,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", e.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errorBody map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errorBody)
		return nil, fmt.Errorf("completion endpoint returned status %d: %v", resp.StatusCode, errorBody)
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("completion returned no choices")
	}

	raw := jsonBlockRe.FindString(response.Choices[0].Message.Content)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object in completion: %s", response.Choices[0].Message.Content)
	}

	var slots extractedSlots
	if err := json.Unmarshal([]byte(raw), &slots); err != nil {
		return nil, fmt.Errorf("invalid JSON from completion: %w", err)
	}

	return &slots, nil
}
