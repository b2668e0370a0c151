package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tkavin/mind-mirror/backend/internal/config"
	"github.com/tkavin/mind-mirror/backend/internal/model/chat"
)

// GroqResponder is the primary responder. Groq serves an OpenAI-compatible
// chat-completions API, so the go-openai client is pointed at its base URL.
type GroqResponder struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewGroqResponder builds the primary responder from configuration.
func NewGroqResponder(cfg config.AIConfig) *GroqResponder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	clientCfg.HTTPClient = &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}

	return &GroqResponder{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Respond sends the context window to the model and returns its reply.
func (g *GroqResponder) Respond(ctx context.Context, system string, history []chat.Turn, userText string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == chat.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userText,
	})

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("groq chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("groq returned no choices")
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", errors.New("groq returned a blank reply")
	}

	log.Printf("[ai] groq reply generated, length=%d", len(reply))
	return reply, nil
}
