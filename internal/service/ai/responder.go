package ai

import (
	"context"

	"github.com/tkavin/mind-mirror/backend/internal/model/chat"
)

// Responder produces an assistant reply for a prepared context window: the
// system preamble, the bounded history and the new user utterance. The
// orchestrator can then chain implementations, falling through on error.
type Responder interface {
	Respond(ctx context.Context, system string, history []chat.Turn, userText string) (string, error)
}
