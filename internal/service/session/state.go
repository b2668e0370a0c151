package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	analysis "github.com/tkavin/mind-mirror/backend/internal/analysis/emotion"
	"github.com/tkavin/mind-mirror/backend/internal/model/chat"
	"github.com/tkavin/mind-mirror/backend/internal/model/mood"
	"github.com/tkavin/mind-mirror/backend/internal/storage"
)

// JournalEntry is a free-form note kept for the lifetime of the process.
type JournalEntry struct {
	ID        string    `json:"id"`
	Entry     string    `json:"entry"`
	Timestamp time.Time `json:"timestamp"`
}

// State is the process-lifetime view of one user's session: the cached chat
// transcript, the last detected emotion, voice toggles and the mood/journal
// histories. It is the sole writer back to the store; the mutex only
// serializes HTTP handlers sharing the single instance.
type State struct {
	mu    sync.Mutex
	store *storage.Store

	chatHistory    []chat.Turn
	currentEmotion analysis.Label
	voiceMode      bool
	ttsEnabled     bool
	language       string

	moods   []mood.Entry
	journal []JournalEntry
}

// NewState builds the session state, priming the transcript and toggles from
// the store. Defaults mirror a fresh install: TTS on, voice mode off,
// English.
func NewState(store *storage.Store) *State {
	s := &State{
		store:      store,
		ttsEnabled: true,
		language:   "english",
	}
	s.chatHistory = store.LoadChatHistory()
	s.applyPreferencesLocked(store.LoadPreferences())
	return s
}

// AppendTurn adds a turn to the live transcript.
func (s *State) AppendTurn(t chat.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatHistory = append(s.chatHistory, t)
}

// History returns a copy of the full transcript.
func (s *State) History() []chat.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]chat.Turn, len(s.chatHistory))
	copy(out, s.chatHistory)
	return out
}

// RecentHistory returns a copy of the last limit turns.
func (s *State) RecentHistory(limit int) []chat.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := 0
	if limit > 0 && len(s.chatHistory) > limit {
		start = len(s.chatHistory) - limit
	}
	out := make([]chat.Turn, len(s.chatHistory)-start)
	copy(out, s.chatHistory[start:])
	return out
}

// PersistChat writes the full transcript back to the store.
func (s *State) PersistChat() error {
	return s.store.SaveChatHistory(s.History())
}

// ClearChat empties the live transcript and removes the backing file.
func (s *State) ClearChat() error {
	s.mu.Lock()
	s.chatHistory = nil
	s.mu.Unlock()
	return s.store.ClearChatHistory()
}

// RecordEmotion stores a classifier result as the current emotion and
// appends it to the durable emotion log.
func (s *State) RecordEmotion(label analysis.Label, ts time.Time) error {
	s.mu.Lock()
	s.currentEmotion = label
	s.mu.Unlock()
	return s.store.AppendEmotion(string(label), ts)
}

// CurrentEmotion returns the last detected emotion, or "" before the first
// classification.
func (s *State) CurrentEmotion() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.currentEmotion)
}

// TTSEnabled reports whether replies should be spoken.
func (s *State) TTSEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ttsEnabled
}

// VoiceMode reports whether input is expected from the microphone.
func (s *State) VoiceMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voiceMode
}

// Language returns the preferred reply language.
func (s *State) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// ApplyPreferences updates the ephemeral toggles from a preference map and
// persists the map wholesale.
func (s *State) ApplyPreferences(prefs map[string]any) error {
	s.mu.Lock()
	s.applyPreferencesLocked(prefs)
	s.mu.Unlock()
	return s.store.SavePreferences(prefs)
}

func (s *State) applyPreferencesLocked(prefs map[string]any) {
	if v, ok := prefs["tts_enabled"].(bool); ok {
		s.ttsEnabled = v
	}
	if v, ok := prefs["voice_mode"].(bool); ok {
		s.voiceMode = v
	}
	if v, ok := prefs["language"].(string); ok && v != "" {
		s.language = v
	}
}

// Preferences returns the persisted preference map.
func (s *State) Preferences() map[string]any {
	return s.store.LoadPreferences()
}

// RecordMood appends a user-declared mood entry and returns it.
func (s *State) RecordMood(label string, method mood.Method) mood.Entry {
	entry := mood.Entry{
		ID:        uuid.NewString(),
		Mood:      label,
		Timestamp: time.Now(),
		Method:    method,
	}
	s.mu.Lock()
	s.moods = append(s.moods, entry)
	s.mu.Unlock()
	return entry
}

// Moods returns a copy of the mood history, oldest first.
func (s *State) Moods() []mood.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]mood.Entry, len(s.moods))
	copy(out, s.moods)
	return out
}

// AddJournalEntry appends a journal note and returns it.
func (s *State) AddJournalEntry(text string) JournalEntry {
	entry := JournalEntry{
		ID:        uuid.NewString(),
		Entry:     text,
		Timestamp: time.Now(),
	}
	s.mu.Lock()
	s.journal = append(s.journal, entry)
	s.mu.Unlock()
	return entry
}

// JournalEntries returns a copy of the journal, oldest first.
func (s *State) JournalEntries() []JournalEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JournalEntry, len(s.journal))
	copy(out, s.journal)
	return out
}

// Reset drops all ephemeral session state. Used together with
// storage.ClearAll for the "clear everything" action.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatHistory = nil
	s.currentEmotion = ""
	s.moods = nil
	s.journal = nil
}
