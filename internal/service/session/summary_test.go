package session

import (
	"testing"
	"time"

	"github.com/tkavin/mind-mirror/backend/internal/model/chat"
	"github.com/tkavin/mind-mirror/backend/internal/model/emotion"
	"github.com/tkavin/mind-mirror/backend/internal/storage"
)

func newTestState(t *testing.T) (*State, *storage.Store) {
	t.Helper()
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("storage.New err: %v", err)
	}
	return NewState(store), store
}

func TestSummarizeEmotionsNoData(t *testing.T) {
	state, _ := newTestState(t)

	summary := state.SummarizeEmotions(7)
	if summary.HasData() {
		t.Fatal("expected explicit no-data result for empty collection")
	}
	if summary.Message == "" {
		t.Fatal("expected a no-data message")
	}
}

func TestSummarizeEmotionsOutsideWindow(t *testing.T) {
	state, store := newTestState(t)
	old := time.Now().AddDate(0, 0, -30)
	if err := store.AppendEmotion("happy", old); err != nil {
		t.Fatalf("AppendEmotion err: %v", err)
	}

	summary := state.SummarizeEmotions(7)
	if summary.HasData() {
		t.Fatal("expected no-data result when all events predate the window")
	}
}

func TestSummarizeEmotionsPercentages(t *testing.T) {
	state, store := newTestState(t)
	now := time.Now()
	for _, label := range []string{"happy", "happy", "sad"} {
		if err := store.AppendEmotion(label, now); err != nil {
			t.Fatalf("AppendEmotion err: %v", err)
		}
	}

	summary := state.SummarizeEmotions(7)
	if !summary.HasData() {
		t.Fatalf("expected data, got message %q", summary.Message)
	}
	if summary.TotalInteractions != 3 {
		t.Fatalf("expected 3 interactions, got %d", summary.TotalInteractions)
	}
	if summary.MostCommon != "happy" {
		t.Fatalf("expected happy as most common, got %s", summary.MostCommon)
	}
	if summary.Percentages["happy"] != 66.7 {
		t.Fatalf("expected happy=66.7, got %v", summary.Percentages["happy"])
	}
	if summary.Percentages["sad"] != 33.3 {
		t.Fatalf("expected sad=33.3, got %v", summary.Percentages["sad"])
	}
}

func TestSummarizeEmotionsTieBreakFirstSeen(t *testing.T) {
	state, store := newTestState(t)
	now := time.Now()
	for _, label := range []string{"sad", "happy", "happy", "sad"} {
		if err := store.AppendEmotion(label, now); err != nil {
			t.Fatalf("AppendEmotion err: %v", err)
		}
	}

	summary := state.SummarizeEmotions(7)
	if summary.MostCommon != "sad" {
		t.Fatalf("expected first-seen emotion to win the tie, got %s", summary.MostCommon)
	}
}

func TestSummarizeEmotionsSkipsBadDates(t *testing.T) {
	state, store := newTestState(t)
	events := []emotion.Event{
		emotion.NewEvent("happy", time.Now()),
		{Emotion: "sad", Timestamp: "whenever", Date: "not-a-date"},
	}
	if err := store.SaveEmotionData(events); err != nil {
		t.Fatalf("SaveEmotionData err: %v", err)
	}

	summary := state.SummarizeEmotions(7)
	if summary.TotalInteractions != 1 {
		t.Fatalf("expected malformed entry excluded from trends, got %d", summary.TotalInteractions)
	}
}

func TestMoodTrendsGroupsByDayAndEmotion(t *testing.T) {
	state, store := newTestState(t)
	now := time.Now()
	today := now.Format("2006-01-02")
	for _, label := range []string{"happy", "happy", "anxious"} {
		if err := store.AppendEmotion(label, now); err != nil {
			t.Fatalf("AppendEmotion err: %v", err)
		}
	}

	trends := state.MoodTrends(30)
	if trends[today]["happy"] != 2 || trends[today]["anxious"] != 1 {
		t.Fatalf("unexpected trend buckets: %v", trends[today])
	}
}

func TestChatStatisticsEmpty(t *testing.T) {
	state, _ := newTestState(t)
	stats := state.ChatStatistics()
	if stats.Message == "" {
		t.Fatal("expected no-data message for empty transcript")
	}
}

func TestChatStatisticsAverages(t *testing.T) {
	state, _ := newTestState(t)
	state.AppendTurn(chat.Turn{Role: chat.RoleUser, Content: "hello"})       // 5 chars
	state.AppendTurn(chat.Turn{Role: chat.RoleAssistant, Content: "hi"})     // 2 chars
	state.AppendTurn(chat.Turn{Role: chat.RoleUser, Content: "how are you"}) // 11 chars

	stats := state.ChatStatistics()
	if stats.TotalMessages != 3 || stats.UserMessages != 2 || stats.AssistantMessages != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.AvgUserLength != 8 {
		t.Fatalf("expected avg user length 8, got %v", stats.AvgUserLength)
	}
	if stats.AvgAssistantLength != 2 {
		t.Fatalf("expected avg assistant length 2, got %v", stats.AvgAssistantLength)
	}
}

func TestChatStatisticsNoAssistantMessages(t *testing.T) {
	state, _ := newTestState(t)
	state.AppendTurn(chat.Turn{Role: chat.RoleUser, Content: "hello"})

	stats := state.ChatStatistics()
	if stats.AvgAssistantLength != 0 {
		t.Fatalf("expected zero average for absent role, got %v", stats.AvgAssistantLength)
	}
}

func TestEstimateSessionsGapBased(t *testing.T) {
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	turns := []chat.Turn{
		{Role: chat.RoleUser, Content: "a", Timestamp: base},
		{Role: chat.RoleAssistant, Content: "b", Timestamp: base.Add(time.Minute)},
		// Three hours idle: a new session starts here.
		{Role: chat.RoleUser, Content: "c", Timestamp: base.Add(3 * time.Hour)},
		{Role: chat.RoleAssistant, Content: "d", Timestamp: base.Add(3*time.Hour + time.Minute)},
	}

	if got := estimateSessions(turns); got != 2 {
		t.Fatalf("expected 2 gap-based sessions, got %d", got)
	}
}

func TestEstimateSessionsLegacyFallback(t *testing.T) {
	turns := make([]chat.Turn, 45)
	for i := range turns {
		turns[i] = chat.Turn{Role: chat.RoleUser, Content: "x"} // no timestamps
	}

	if got := estimateSessions(turns); got != 2 {
		t.Fatalf("expected 45/20=2 sessions from the legacy proxy, got %d", got)
	}
	if got := estimateSessions(turns[:3]); got != 1 {
		t.Fatalf("expected at least 1 session, got %d", got)
	}
}
