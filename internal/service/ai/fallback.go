package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/tkavin/mind-mirror/backend/internal/model/chat"
)

// HuggingFaceResponder is the secondary responder: a free hosted
// conversational model queried over plain HTTP when the primary provider
// fails.
type HuggingFaceResponder struct {
	apiURL     string
	httpClient *http.Client
}

// NewHuggingFaceResponder builds the secondary responder for the given
// inference endpoint.
func NewHuggingFaceResponder(apiURL string, timeout time.Duration) *HuggingFaceResponder {
	return &HuggingFaceResponder{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	MaxLength   int     `json:"max_length"`
	Temperature float64 `json:"temperature"`
}

type inferenceResult struct {
	GeneratedText string `json:"generated_text"`
}

// Respond renders the recent conversation as a flat transcript prompt and
// extracts the generated continuation after the final "Therapist:" marker.
func (h *HuggingFaceResponder) Respond(ctx context.Context, _ string, history []chat.Turn, userText string) (string, error) {
	var prompt strings.Builder
	prompt.WriteString("You are a supportive therapist.\n")

	start := 0
	if len(history) > 3 {
		start = len(history) - 3
	}
	for _, turn := range history[start:] {
		if turn.Role == chat.RoleUser {
			fmt.Fprintf(&prompt, "User: %s\n", turn.Content)
		} else {
			fmt.Fprintf(&prompt, "Therapist: %s\n", turn.Content)
		}
	}
	fmt.Fprintf(&prompt, "User: %s\nTherapist:", userText)

	body, err := json.Marshal(inferenceRequest{
		Inputs:     prompt.String(),
		Parameters: inferenceParameters{MaxLength: 100, Temperature: 0.7},
	})
	if err != nil {
		return "", fmt.Errorf("marshal inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send inference request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("inference request failed: status=%d", resp.StatusCode)
	}

	var results []inferenceResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", fmt.Errorf("decode inference response: %w", err)
	}
	if len(results) == 0 {
		return "", errors.New("empty inference response")
	}

	generated := results[0].GeneratedText
	if idx := strings.LastIndex(generated, "Therapist:"); idx >= 0 {
		generated = generated[idx+len("Therapist:"):]
	}
	reply := strings.TrimSpace(generated)
	if len(reply) <= 5 {
		return "", errors.New("inference reply too short")
	}
	return reply, nil
}

// fallbackReplies is the fixed set of supportive replies used when every
// remote responder has failed.
var fallbackReplies = []string{
	"I understand. That sounds like it must be difficult for you. Can you tell me more about how this makes you feel?",
	"Thank you for sharing that with me. Your feelings are completely valid. What support do you need right now?",
	"I hear you, and I want you to know that it's okay to feel this way. What would be most helpful for you today?",
	"That sounds challenging. You're being very brave by talking about this. How are you coping with these feelings?",
	"I appreciate you opening up to me. It takes courage to share personal experiences. What are your thoughts about this situation?",
}

// CannedResponder is the terminal safety net: it picks a pseudo-random reply
// from a fixed supportive set and never fails.
type CannedResponder struct{}

// Respond returns one canned supportive reply. The error is always nil.
func (CannedResponder) Respond(_ context.Context, _ string, _ []chat.Turn, _ string) (string, error) {
	return fallbackReplies[rand.IntN(len(fallbackReplies))], nil
}

// FallbackReplies exposes the canned set so callers can recognize fallback
// output, e.g. in tests.
func FallbackReplies() []string {
	out := make([]string, len(fallbackReplies))
	copy(out, fallbackReplies)
	return out
}
