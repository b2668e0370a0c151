package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/tkavin/mind-mirror/backend/internal/model/chat"
	"github.com/tkavin/mind-mirror/backend/internal/service/ai"
	"github.com/tkavin/mind-mirror/backend/internal/service/session"
	"github.com/tkavin/mind-mirror/backend/internal/storage"
)

type stubResponder struct {
	reply string
	err   error
	calls int
}

func (s *stubResponder) Respond(_ context.Context, _ string, _ []chat.Turn, _ string) (string, error) {
	s.calls++
	return s.reply, s.err
}

type stubSynth struct {
	audio  []byte
	format string
	err    error
}

func (s *stubSynth) Synthesize(_ context.Context, _, _ string) ([]byte, string, error) {
	return s.audio, s.format, s.err
}

func newTestState(t *testing.T) *session.State {
	t.Helper()
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	return session.NewState(store)
}

func TestRespondUsesPrimary(t *testing.T) {
	primary := &stubResponder{reply: "I hear you."}
	fallback := &stubResponder{reply: "fallback reply"}
	state := newTestState(t)

	o := New(primary, fallback, state, nil)
	reply, err := o.Respond(context.Background(), "I feel sad today")
	if err != nil {
		t.Fatalf("Respond returned error: %v", err)
	}
	if reply.Source != "primary" {
		t.Fatalf("expected source primary, got %q", reply.Source)
	}
	if reply.Text != "I hear you." {
		t.Fatalf("unexpected reply text %q", reply.Text)
	}
	if reply.Emotion != "sad" {
		t.Fatalf("expected detected emotion sad, got %q", reply.Emotion)
	}
	if fallback.calls != 0 {
		t.Fatalf("fallback should not be called, got %d calls", fallback.calls)
	}
}

func TestRespondFallsBackWhenPrimaryFails(t *testing.T) {
	primary := &stubResponder{err: errors.New("rate limited")}
	fallback := &stubResponder{reply: "fallback reply"}
	state := newTestState(t)

	o := New(primary, fallback, state, nil)
	reply, err := o.Respond(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Respond returned error: %v", err)
	}
	if reply.Source != "fallback" {
		t.Fatalf("expected source fallback, got %q", reply.Source)
	}
	if reply.Text != "fallback reply" {
		t.Fatalf("unexpected reply text %q", reply.Text)
	}
}

func TestRespondCannedWhenAllProvidersFail(t *testing.T) {
	primary := &stubResponder{err: errors.New("down")}
	fallback := &stubResponder{err: errors.New("also down")}
	state := newTestState(t)

	o := New(primary, fallback, state, nil)
	reply, err := o.Respond(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Respond returned error: %v", err)
	}
	if reply.Source != "canned" {
		t.Fatalf("expected source canned, got %q", reply.Source)
	}

	found := false
	for _, candidate := range ai.FallbackReplies() {
		if reply.Text == candidate {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("canned reply %q not in the known set", reply.Text)
	}
}

func TestRespondRecordsBothTurns(t *testing.T) {
	primary := &stubResponder{reply: "glad to hear it"}
	state := newTestState(t)

	o := New(primary, nil, state, nil)
	if _, err := o.Respond(context.Background(), "I am so happy"); err != nil {
		t.Fatalf("Respond returned error: %v", err)
	}

	history := state.History()
	if len(history) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(history))
	}
	if history[0].Role != chat.RoleUser || history[0].Content != "I am so happy" {
		t.Fatalf("unexpected user turn: %+v", history[0])
	}
	if history[0].Emotion != "happy" {
		t.Fatalf("expected user turn tagged happy, got %q", history[0].Emotion)
	}
	if history[1].Role != chat.RoleAssistant || history[1].Content != "glad to hear it" {
		t.Fatalf("unexpected assistant turn: %+v", history[1])
	}
	if state.CurrentEmotion() != "happy" {
		t.Fatalf("expected current emotion happy, got %q", state.CurrentEmotion())
	}
}

func TestRespondRejectsEmptyMessage(t *testing.T) {
	o := New(&stubResponder{reply: "hi"}, nil, newTestState(t), nil)

	if _, err := o.Respond(context.Background(), "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestRespondErrorsWithoutPrimaryProvider(t *testing.T) {
	o := New(nil, &stubResponder{reply: "fallback"}, newTestState(t), nil)

	if _, err := o.Respond(context.Background(), "hello"); !errors.Is(err, ErrProviderNotConfigured) {
		t.Fatalf("expected ErrProviderNotConfigured, got %v", err)
	}
}

func TestRespondAttachesAudioWhenTTSEnabled(t *testing.T) {
	state := newTestState(t)
	synth := &stubSynth{audio: []byte("mp3-bytes"), format: "mp3"}

	o := New(&stubResponder{reply: "take a deep breath"}, nil, state, synth)
	reply, err := o.Respond(context.Background(), "I feel anxious")
	if err != nil {
		t.Fatalf("Respond returned error: %v", err)
	}
	if string(reply.Audio) != "mp3-bytes" || reply.AudioFormat != "mp3" {
		t.Fatalf("expected synthesized audio attached, got %+v", reply)
	}
}

func TestRespondSynthesisFailureDoesNotFailReply(t *testing.T) {
	state := newTestState(t)
	synth := &stubSynth{err: errors.New("engine offline")}

	o := New(&stubResponder{reply: "still here"}, nil, state, synth)
	reply, err := o.Respond(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Respond returned error: %v", err)
	}
	if reply.Text != "still here" || reply.Audio != nil {
		t.Fatalf("expected text reply without audio, got %+v", reply)
	}
}
