package storage

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/tkavin/mind-mirror/backend/internal/model/chat"
	"github.com/tkavin/mind-mirror/backend/internal/model/emotion"
)

// exportVersion tags the snapshot format for future readers.
const exportVersion = "1.0"

type exportFile struct {
	ChatHistory     []chat.Turn     `json:"chat_history"`
	EmotionData     []emotion.Event `json:"emotion_data"`
	UserPreferences map[string]any  `json:"user_preferences"`
	ExportTimestamp string          `json:"export_timestamp"`
	Version         string          `json:"version"`
}

// ExportAll serializes chat, emotions and preferences into one snapshot file
// named from the current time, and returns the written filename. The file is
// a user-initiated backup, not a programmatic round-trip format.
func (s *Store) ExportAll() (string, error) {
	now := time.Now()
	snapshot := exportFile{
		ChatHistory:     s.LoadChatHistory(),
		EmotionData:     s.LoadEmotionData(),
		UserPreferences: s.LoadPreferences(),
		ExportTimestamp: now.Format(time.RFC3339),
		Version:         exportVersion,
	}
	if snapshot.ChatHistory == nil {
		snapshot.ChatHistory = []chat.Turn{}
	}
	if snapshot.EmotionData == nil {
		snapshot.EmotionData = []emotion.Event{}
	}

	name := fmt.Sprintf("mind_mirror_export_%s.json", now.Format("20060102_150405"))
	path := filepath.Join(s.dataDir, name)
	if err := WriteJSONAtomic(path, snapshot); err != nil {
		return "", fmt.Errorf("write export snapshot: %w", err)
	}
	return name, nil
}
