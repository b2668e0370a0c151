package storage

import (
	"fmt"
)

// IntegrityReport lists what the repair pass fixed and how many valid
// records each collection holds afterwards.
type IntegrityReport struct {
	IssuesFound    []string `json:"issues_found"`
	ChatMessages   int      `json:"chat_messages"`
	EmotionEntries int      `json:"emotion_entries"`
}

// ValidateIntegrity scans the chat and emotion collections, drops malformed
// records (unknown role, empty content, missing emotion field), rewrites a
// collection when anything was dropped, and reports what was fixed. It is a
// repair pass: problems become report entries, not errors.
func (s *Store) ValidateIntegrity() IntegrityReport {
	report := IntegrityReport{IssuesFound: []string{}}

	turns := s.LoadChatHistory()
	validTurns := turns[:0:0]
	for _, t := range turns {
		if t.Valid() {
			validTurns = append(validTurns, t)
			continue
		}
		report.IssuesFound = append(report.IssuesFound,
			fmt.Sprintf("invalid chat entry: role=%q content length=%d", t.Role, len(t.Content)))
	}
	if len(validTurns) != len(turns) {
		if err := s.SaveChatHistory(validTurns); err != nil {
			report.IssuesFound = append(report.IssuesFound,
				fmt.Sprintf("failed to rewrite chat history: %v", err))
		} else {
			report.IssuesFound = append(report.IssuesFound, "fixed chat history format issues")
		}
	}
	report.ChatMessages = len(validTurns)

	events := s.LoadEmotionData()
	validEvents := events[:0:0]
	for _, e := range events {
		if e.Emotion == "" {
			report.IssuesFound = append(report.IssuesFound, "invalid emotion entry: missing emotion field")
			continue
		}
		validEvents = append(validEvents, e)
	}
	if len(validEvents) != len(events) {
		if err := s.SaveEmotionData(validEvents); err != nil {
			report.IssuesFound = append(report.IssuesFound,
				fmt.Sprintf("failed to rewrite emotion data: %v", err))
		} else {
			report.IssuesFound = append(report.IssuesFound, "fixed emotion data format issues")
		}
	}
	report.EmotionEntries = len(validEvents)

	return report
}
