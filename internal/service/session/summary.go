package session

import (
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/tkavin/mind-mirror/backend/internal/model/chat"
)

// sessionGap is the idle threshold between consecutive timestamped turns that
// marks a conversation session boundary.
const sessionGap = 2 * time.Hour

// turnsPerSessionGuess is the crude proxy used only for legacy transcripts
// whose turns carry no timestamps.
const turnsPerSessionGuess = 20

// EmotionSummary aggregates recent emotion events. When Message is set the
// window held no usable data; that is distinct from a summary with zero
// counts for a particular emotion.
type EmotionSummary struct {
	TotalInteractions int                 `json:"total_interactions"`
	MostCommon        string              `json:"most_common"`
	Counts            map[string]int      `json:"emotion_counts"`
	Percentages       map[string]float64  `json:"emotion_percentages"`
	DailyBreakdown    map[string][]string `json:"daily_breakdown"`
	DaysAnalyzed      int                 `json:"days_analyzed"`
	Message           string              `json:"message,omitempty"`
}

// HasData reports whether the summary describes actual events.
func (s EmotionSummary) HasData() bool {
	return s.Message == ""
}

// SummarizeEmotions aggregates emotion events whose date falls within the
// last windowDays. Events with a missing or unparseable date are skipped.
// Ties for the most common emotion resolve to the first-seen emotion within
// the window, which keeps the result deterministic.
func (s *State) SummarizeEmotions(windowDays int) EmotionSummary {
	events := s.store.LoadEmotionData()
	if len(events) == 0 {
		return EmotionSummary{Message: "No emotion data available", DaysAnalyzed: windowDays}
	}

	cutoff := time.Now().AddDate(0, 0, -windowDays)
	cutoff = time.Date(cutoff.Year(), cutoff.Month(), cutoff.Day(), 0, 0, 0, 0, time.Local)

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	daily := make(map[string][]string)
	total := 0

	for _, e := range events {
		day, ok := e.Day()
		if !ok || day.Before(cutoff) {
			continue
		}
		if _, seen := counts[e.Emotion]; !seen {
			firstSeen[e.Emotion] = total
		}
		counts[e.Emotion]++
		daily[e.Date] = append(daily[e.Date], e.Emotion)
		total++
	}

	if total == 0 {
		return EmotionSummary{
			Message:      fmt.Sprintf("No emotion data from the last %d days", windowDays),
			DaysAnalyzed: windowDays,
		}
	}

	percentages := make(map[string]float64, len(counts))
	for label, count := range counts {
		percentages[label] = round1(float64(count) / float64(total) * 100)
	}

	mostCommon := ""
	for label, count := range counts {
		if mostCommon == "" ||
			count > counts[mostCommon] ||
			(count == counts[mostCommon] && firstSeen[label] < firstSeen[mostCommon]) {
			mostCommon = label
		}
	}

	return EmotionSummary{
		TotalInteractions: total,
		MostCommon:        mostCommon,
		Counts:            counts,
		Percentages:       percentages,
		DailyBreakdown:    daily,
		DaysAnalyzed:      windowDays,
	}
}

// MoodTrends groups emotion events by day and emotion for charting:
// date -> emotion -> count over the last windowDays.
func (s *State) MoodTrends(windowDays int) map[string]map[string]int {
	events := s.store.LoadEmotionData()
	cutoff := time.Now().AddDate(0, 0, -windowDays)
	cutoff = time.Date(cutoff.Year(), cutoff.Month(), cutoff.Day(), 0, 0, 0, 0, time.Local)

	trends := make(map[string]map[string]int)
	for _, e := range events {
		day, ok := e.Day()
		if !ok || day.Before(cutoff) {
			continue
		}
		if trends[e.Date] == nil {
			trends[e.Date] = make(map[string]int)
		}
		trends[e.Date][e.Emotion]++
	}
	return trends
}

// MoodHistoryByDay buckets the user-declared mood entries by calendar day.
func (s *State) MoodHistoryByDay() map[string]map[string]int {
	byDay := make(map[string]map[string]int)
	for _, entry := range s.Moods() {
		day := entry.Timestamp.Format("2006-01-02")
		if byDay[day] == nil {
			byDay[day] = make(map[string]int)
		}
		byDay[day][entry.Mood]++
	}
	return byDay
}

// ChatStatistics describes the cached transcript. Average lengths are mean
// character counts and are zero when a role has no messages.
type ChatStatistics struct {
	TotalMessages        int     `json:"total_messages"`
	UserMessages         int     `json:"user_messages"`
	AssistantMessages    int     `json:"assistant_messages"`
	AvgUserLength        float64 `json:"avg_user_message_length"`
	AvgAssistantLength   float64 `json:"avg_assistant_message_length"`
	ConversationSessions int     `json:"conversation_sessions"`
	Message              string  `json:"message,omitempty"`
}

// ChatStatistics computes message counts, mean lengths and an estimated
// session count for the live transcript.
func (s *State) ChatStatistics() ChatStatistics {
	turns := s.History()
	if len(turns) == 0 {
		return ChatStatistics{Message: "No chat data available"}
	}

	var userCount, assistantCount, userChars, assistantChars int
	for _, t := range turns {
		length := utf8.RuneCountInString(t.Content)
		switch t.Role {
		case chat.RoleUser:
			userCount++
			userChars += length
		case chat.RoleAssistant:
			assistantCount++
			assistantChars += length
		}
	}

	stats := ChatStatistics{
		TotalMessages:        len(turns),
		UserMessages:         userCount,
		AssistantMessages:    assistantCount,
		ConversationSessions: estimateSessions(turns),
	}
	if userCount > 0 {
		stats.AvgUserLength = round1(float64(userChars) / float64(userCount))
	}
	if assistantCount > 0 {
		stats.AvgAssistantLength = round1(float64(assistantChars) / float64(assistantCount))
	}
	return stats
}

// estimateSessions segments the transcript into conversation sessions. When
// every turn carries a timestamp, a gap longer than sessionGap between
// consecutive turns starts a new session. Legacy turns without timestamps
// fall back to a coarse one-session-per-20-messages guess; that proxy is an
// approximation, not a real boundary detector.
func estimateSessions(turns []chat.Turn) int {
	if len(turns) == 0 {
		return 0
	}

	for _, t := range turns {
		if t.Timestamp.IsZero() {
			return max(1, len(turns)/turnsPerSessionGuess)
		}
	}

	sessions := 1
	for i := 1; i < len(turns); i++ {
		if turns[i].Timestamp.Sub(turns[i-1].Timestamp) > sessionGap {
			sessions++
		}
	}
	return sessions
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
