package emotion

import "strings"

// Label is an emotion detected from free text.
type Label string

const (
	Neutral Label = "neutral"
	Happy   Label = "happy"
	Sad     Label = "sad"
	Angry   Label = "angry"
	Anxious Label = "anxious"
	Excited Label = "excited"
	Calm    Label = "calm"
)

// bucket pairs a label with its keyword list. Buckets are evaluated in slice
// order and keywords in list order: lists overlap across emotions (for
// example "excited" is also a happy keyword), so evaluation order is part of
// the contract and must stay fixed.
type bucket struct {
	label    Label
	keywords []string
}

// tamilBuckets is checked before englishBuckets; within each table the first
// bucket containing a matching keyword wins.
var tamilBuckets = []bucket{
	{Happy, []string{"மகிழ்ச்சி", "சந்தோஷம்", "खुशी", "நல்லா", "சூப்பர்"}},
	{Sad, []string{"வருத்தம்", "சோகம்", "दुःख", "கஷ்டம்", "அழுகை"}},
	{Angry, []string{"கோபம்", "எரிச்சல்", "गुस्सा", "திட்டு"}},
	{Anxious, []string{"பதற்றம்", "டென்ஷன்", "चिंता", "பயம்"}},
	{Excited, []string{"உற்சாகம்", "ஆர்வம்", "उत्साह", "என்னா", "வாவ்"}},
}

var englishBuckets = []bucket{
	{Happy, []string{"happy", "joy", "glad", "excited", "good", "great", "wonderful", "awesome"}},
	{Sad, []string{"sad", "depressed", "down", "upset", "hurt", "disappointed", "crying"}},
	{Angry, []string{"angry", "mad", "furious", "annoyed", "frustrated", "irritated"}},
	{Anxious, []string{"anxious", "worried", "nervous", "stressed", "tense", "afraid", "scared"}},
	{Calm, []string{"calm", "peaceful", "relaxed", "serene", "tranquil"}},
}

// Classify maps free text to an emotion label by case-insensitive substring
// matching against the Tamil table first and then the English table. It is pure
// and total: text without a match is Neutral, never an error.
func Classify(text string) Label {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return Neutral
	}

	for _, table := range [][]bucket{tamilBuckets, englishBuckets} {
		for _, b := range table {
			for _, word := range b.keywords {
				if strings.Contains(normalized, word) {
					return b.label
				}
			}
		}
	}

	return Neutral
}

// Known reports whether raw is one of the classifier's labels.
func Known(raw string) bool {
	switch Label(raw) {
	case Neutral, Happy, Sad, Angry, Anxious, Excited, Calm:
		return true
	default:
		return false
	}
}
