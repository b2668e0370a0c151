package session

import (
	"testing"
	"time"

	analysis "github.com/tkavin/mind-mirror/backend/internal/analysis/emotion"
	"github.com/tkavin/mind-mirror/backend/internal/model/chat"
	"github.com/tkavin/mind-mirror/backend/internal/model/mood"
	"github.com/tkavin/mind-mirror/backend/internal/storage"
)

func TestNewStatePrimesFromStore(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.New(dir)
	if err != nil {
		t.Fatalf("storage.New err: %v", err)
	}
	if err := store.SaveChatHistory([]chat.Turn{{Role: chat.RoleUser, Content: "earlier"}}); err != nil {
		t.Fatalf("SaveChatHistory err: %v", err)
	}
	if err := store.SavePreferences(map[string]any{"tts_enabled": false, "language": "tamil"}); err != nil {
		t.Fatalf("SavePreferences err: %v", err)
	}

	state := NewState(store)
	if len(state.History()) != 1 {
		t.Fatalf("expected cached transcript from store, got %d turns", len(state.History()))
	}
	if state.TTSEnabled() {
		t.Fatal("expected tts toggle loaded from preferences")
	}
	if state.Language() != "tamil" {
		t.Fatalf("expected language from preferences, got %s", state.Language())
	}
}

func TestRecentHistoryBounded(t *testing.T) {
	state, _ := newTestState(t)
	for i := 0; i < 15; i++ {
		state.AppendTurn(chat.Turn{Role: chat.RoleUser, Content: "m"})
	}

	if got := len(state.RecentHistory(10)); got != 10 {
		t.Fatalf("expected 10 recent turns, got %d", got)
	}
	if got := len(state.RecentHistory(0)); got != 15 {
		t.Fatalf("expected full history for limit 0, got %d", got)
	}
}

func TestRecordEmotionUpdatesCurrentAndStore(t *testing.T) {
	state, store := newTestState(t)
	if err := state.RecordEmotion(analysis.Sad, time.Now()); err != nil {
		t.Fatalf("RecordEmotion err: %v", err)
	}

	if state.CurrentEmotion() != "sad" {
		t.Fatalf("expected current emotion sad, got %s", state.CurrentEmotion())
	}
	if len(store.LoadEmotionData()) != 1 {
		t.Fatal("expected emotion event persisted")
	}
}

func TestRecordMoodAndHistory(t *testing.T) {
	state, _ := newTestState(t)
	entry := state.RecordMood("😊 Happy", mood.MethodManual)
	if entry.ID == "" {
		t.Fatal("expected mood entry id")
	}

	moods := state.Moods()
	if len(moods) != 1 || moods[0].Mood != "😊 Happy" || moods[0].Method != mood.MethodManual {
		t.Fatalf("unexpected mood history: %+v", moods)
	}

	byDay := state.MoodHistoryByDay()
	day := entry.Timestamp.Format("2006-01-02")
	if byDay[day]["😊 Happy"] != 1 {
		t.Fatalf("expected mood bucketed by day, got %v", byDay)
	}
}

func TestResetDropsEphemeralState(t *testing.T) {
	state, _ := newTestState(t)
	state.AppendTurn(chat.Turn{Role: chat.RoleUser, Content: "hi"})
	state.RecordMood("😐 Okay", mood.MethodManual)
	state.AddJournalEntry("a note")

	state.Reset()

	if len(state.History()) != 0 || len(state.Moods()) != 0 || len(state.JournalEntries()) != 0 {
		t.Fatal("expected all ephemeral state dropped")
	}
	if state.CurrentEmotion() != "" {
		t.Fatalf("expected current emotion cleared, got %s", state.CurrentEmotion())
	}
}
