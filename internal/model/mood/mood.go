package mood

import (
	"strings"
	"time"
)

// Method records how a mood entry was captured.
type Method string

const (
	MethodManual Method = "manual"
	MethodVoice  Method = "voice"
)

// Labels is the closed set of moods a user can record, in display order.
var Labels = []string{
	"😊 Happy",
	"😐 Okay",
	"😔 Sad",
	"😠 Angry",
	"😰 Anxious",
	"😴 Tired",
	"😍 Loved",
}

// Entry is a user-declared mood, distinct from the automatic emotion
// classifier's output. Entries live in process memory for the session.
type Entry struct {
	ID        string    `json:"id"`
	Mood      string    `json:"mood"`
	Timestamp time.Time `json:"timestamp"`
	Method    Method    `json:"method"`
}

// Known reports whether label is one of the fixed mood labels.
func Known(label string) bool {
	for _, l := range Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Word returns the plain mood word of a label ("😊 Happy" -> "happy").
func Word(label string) string {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[len(fields)-1])
}

// DetectFromText scans free text for a mood word and returns the first label
// in display order whose word appears, or "" when none match.
func DetectFromText(text string) string {
	lower := strings.ToLower(text)
	for _, label := range Labels {
		word := Word(label)
		if word != "" && strings.Contains(lower, word) {
			return label
		}
	}
	return ""
}
