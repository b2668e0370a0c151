package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/tkavin/mind-mirror/backend/internal/model/chat"
	"github.com/tkavin/mind-mirror/backend/internal/model/emotion"
)

const (
	chatHistoryFile = "chat_history.json"
	emotionDataFile = "emotions.json"
	userDataFile    = "user_data.json"

	// emotionRetentionCap bounds the emotions file: on append, the oldest
	// entries beyond this count are evicted first.
	emotionRetentionCap = 1000
)

// Store owns the on-disk JSON representation of the three collections:
// chat history, emotion events and user preferences. Loads fail soft
// (missing or unreadable files yield empty collections plus a logged
// warning); saves replace the whole collection atomically.
type Store struct {
	dataDir string
}

// New creates the data directory if needed and returns a store rooted there.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{dataDir: dataDir}, nil
}

// DataDir returns the directory backing the store.
func (s *Store) DataDir() string {
	return s.dataDir
}

type chatFile struct {
	Messages      []chat.Turn `json:"messages"`
	LastUpdated   string      `json:"last_updated"`
	TotalMessages int         `json:"total_messages"`
}

type emotionFile struct {
	Emotions     []emotion.Event `json:"emotions"`
	LastUpdated  string          `json:"last_updated"`
	TotalEntries int             `json:"total_entries"`
}

type prefsFile struct {
	Preferences map[string]any `json:"preferences"`
	LastUpdated string         `json:"last_updated"`
}

// LoadChatHistory returns the persisted transcript, or an empty one when the
// file is missing or unreadable.
func (s *Store) LoadChatHistory() []chat.Turn {
	var f chatFile
	if !s.loadFile(chatHistoryFile, &f) {
		return nil
	}
	return f.Messages
}

// SaveChatHistory replaces the persisted transcript, stamping the update
// time and message count.
func (s *Store) SaveChatHistory(turns []chat.Turn) error {
	f := chatFile{
		Messages:      turns,
		LastUpdated:   time.Now().Format(time.RFC3339),
		TotalMessages: len(turns),
	}
	if f.Messages == nil {
		f.Messages = []chat.Turn{}
	}
	return WriteJSONAtomic(s.path(chatHistoryFile), f)
}

// LoadEmotionData returns the persisted emotion events, oldest first.
func (s *Store) LoadEmotionData() []emotion.Event {
	var f emotionFile
	if !s.loadFile(emotionDataFile, &f) {
		return nil
	}
	return f.Emotions
}

// SaveEmotionData replaces the persisted emotion events.
func (s *Store) SaveEmotionData(events []emotion.Event) error {
	f := emotionFile{
		Emotions:     events,
		LastUpdated:  time.Now().Format(time.RFC3339),
		TotalEntries: len(events),
	}
	if f.Emotions == nil {
		f.Emotions = []emotion.Event{}
	}
	return WriteJSONAtomic(s.path(emotionDataFile), f)
}

// AppendEmotion records one classifier result at ts, evicting the oldest
// entries FIFO when the collection would exceed the retention cap.
func (s *Store) AppendEmotion(label string, ts time.Time) error {
	events := append(s.LoadEmotionData(), emotion.NewEvent(label, ts))
	if len(events) > emotionRetentionCap {
		events = events[len(events)-emotionRetentionCap:]
	}
	return s.SaveEmotionData(events)
}

// LoadPreferences returns the persisted preference map, empty when absent.
func (s *Store) LoadPreferences() map[string]any {
	var f prefsFile
	if !s.loadFile(userDataFile, &f) {
		return map[string]any{}
	}
	if f.Preferences == nil {
		return map[string]any{}
	}
	return f.Preferences
}

// SavePreferences replaces the whole preference map; there is no history.
func (s *Store) SavePreferences(prefs map[string]any) error {
	f := prefsFile{
		Preferences: prefs,
		LastUpdated: time.Now().Format(time.RFC3339),
	}
	if f.Preferences == nil {
		f.Preferences = map[string]any{}
	}
	return WriteJSONAtomic(s.path(userDataFile), f)
}

// ClearChatHistory removes the chat file. Clearing an absent collection
// succeeds.
func (s *Store) ClearChatHistory() error {
	return s.remove(chatHistoryFile)
}

// ClearEmotionData removes the emotions file.
func (s *Store) ClearEmotionData() error {
	return s.remove(emotionDataFile)
}

// ClearPreferences removes the preferences file.
func (s *Store) ClearPreferences() error {
	return s.remove(userDataFile)
}

// ClearAll removes all three backing files.
func (s *Store) ClearAll() error {
	for _, name := range []string{chatHistoryFile, emotionDataFile, userDataFile} {
		if err := s.remove(name); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dataDir, name)
}

func (s *Store) remove(name string) error {
	err := os.Remove(s.path(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// loadFile reads and decodes one collection file. It returns false on a
// missing file, and logs a warning (still returning false) on read or parse
// errors: storage failures never abort the caller.
func (s *Store) loadFile(name string, v any) bool {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("[storage] warning: reading %s: %v", name, err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Printf("[storage] warning: parsing %s: %v", name, err)
		return false
	}
	return true
}
