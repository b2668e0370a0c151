package emotion

import "time"

// Event records one classifier result with its timestamp and the local
// calendar day derived from it. Timestamps are stored as RFC 3339 strings
// and dates as YYYY-MM-DD so older files remain readable as-is.
type Event struct {
	Emotion   string `json:"emotion"`
	Timestamp string `json:"timestamp"`
	Date      string `json:"date"`
}

// NewEvent builds an event for the given label at ts, deriving the date in
// the timestamp's location.
func NewEvent(label string, ts time.Time) Event {
	return Event{
		Emotion:   label,
		Timestamp: ts.Format(time.RFC3339),
		Date:      ts.Format("2006-01-02"),
	}
}

// Day parses the event's calendar date. ok is false when the date is missing
// or unparseable; such events are excluded from trend computations but are
// left on disk untouched.
func (e Event) Day() (time.Time, bool) {
	if e.Date == "" {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation("2006-01-02", e.Date, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}
