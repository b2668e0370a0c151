package conversation

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/tkavin/mind-mirror/backend/internal/analysis/emotion"
	"github.com/tkavin/mind-mirror/backend/internal/model/chat"
	"github.com/tkavin/mind-mirror/backend/internal/service/ai"
	"github.com/tkavin/mind-mirror/backend/internal/service/session"
)

// historyLimit bounds how many prior turns the responders see.
const historyLimit = 10

var (
	// ErrEmptyMessage is returned when the user submits blank input.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrProviderNotConfigured is returned when the primary provider has no
	// credential. The chat surface treats this as a hard stop rather than
	// silently degrading to the fallback chain.
	ErrProviderNotConfigured = errors.New("ai provider is not configured")
)

// Synthesizer renders assistant replies to audio when voice output is on.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, emotion string) ([]byte, string, error)
}

// Reply is the result of one conversational exchange.
type Reply struct {
	Text        string `json:"text"`
	Source      string `json:"source"`
	Emotion     string `json:"emotion"`
	Audio       []byte `json:"audio,omitempty"`
	AudioFormat string `json:"audio_format,omitempty"`
}

// Orchestrator runs the full exchange pipeline: classify the user's emotion,
// record it, generate a reply through the provider chain and persist both
// turns. The canned responder guarantees the chain always produces text.
type Orchestrator struct {
	primary  ai.Responder // nil when the provider key is absent
	fallback ai.Responder
	canned   ai.Responder
	state    *session.State
	synth    Synthesizer // nil when no synthesis engine is configured
}

// New assembles an orchestrator. primary and synth may be nil.
func New(primary, fallback ai.Responder, state *session.State, synth Synthesizer) *Orchestrator {
	return &Orchestrator{
		primary:  primary,
		fallback: fallback,
		canned:   ai.CannedResponder{},
		state:    state,
		synth:    synth,
	}
}

// Respond processes one user message end to end.
func (o *Orchestrator) Respond(ctx context.Context, userText string) (Reply, error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return Reply{}, ErrEmptyMessage
	}
	if o.primary == nil {
		return Reply{}, ErrProviderNotConfigured
	}

	now := time.Now()
	label := emotion.Classify(userText)
	if err := o.state.RecordEmotion(label, now); err != nil {
		log.Printf("[conversation] warning: failed to record emotion: %v", err)
	}

	// Snapshot history before appending so the prompt sees prior turns only.
	history := o.state.RecentHistory(historyLimit)
	o.state.AppendTurn(chat.Turn{
		Role:      chat.RoleUser,
		Content:   userText,
		Emotion:   string(label),
		Timestamp: now,
	})

	system := ai.SystemPrompt(string(label))
	text, source := o.generate(ctx, system, history, userText)

	o.state.AppendTurn(chat.Turn{
		Role:      chat.RoleAssistant,
		Content:   text,
		Timestamp: time.Now(),
	})
	if err := o.state.PersistChat(); err != nil {
		log.Printf("[conversation] warning: failed to persist chat history: %v", err)
	}

	reply := Reply{Text: text, Source: source, Emotion: string(label)}
	if o.synth != nil && o.state.TTSEnabled() {
		audio, format, err := o.synth.Synthesize(ctx, text, string(label))
		if err != nil {
			log.Printf("[conversation] warning: speech synthesis failed: %v", err)
		} else {
			reply.Audio = audio
			reply.AudioFormat = format
		}
	}

	return reply, nil
}

// generate walks the provider chain. The canned responder never fails, so a
// reply is always produced.
func (o *Orchestrator) generate(ctx context.Context, system string, history []chat.Turn, userText string) (string, string) {
	text, err := o.primary.Respond(ctx, system, history, userText)
	if err == nil {
		return text, "primary"
	}
	log.Printf("[conversation] primary provider failed, trying fallback: %v", err)

	if o.fallback != nil {
		text, err = o.fallback.Respond(ctx, system, history, userText)
		if err == nil {
			return text, "fallback"
		}
		log.Printf("[conversation] fallback provider failed, using canned reply: %v", err)
	}

	text, _ = o.canned.Respond(ctx, system, history, userText)
	return text, "canned"
}
