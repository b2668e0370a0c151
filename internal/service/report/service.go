package report

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/tkavin/mind-mirror/backend/internal/storage"
)

// Report kinds accepted by the service.
const (
	KindBug     = "bug"
	KindFeature = "feature"
)

var (
	// ErrMissingFields is returned when a report lacks its required fields.
	ErrMissingFields = errors.New("title and description are required")

	// ErrUnknownKind is returned for a report type outside bug/feature.
	ErrUnknownKind = errors.New("unknown report type")
)

// Report is a user-submitted bug report or feature request. Severity and
// steps apply to bugs; category, priority and use case to feature requests.
type Report struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity,omitempty"`
	Steps       string `json:"steps_to_reproduce,omitempty"`
	Category    string `json:"category,omitempty"`
	Priority    string `json:"priority,omitempty"`
	UseCase     string `json:"use_case,omitempty"`
	Environment string `json:"environment,omitempty"`
	Contact     string `json:"contact,omitempty"`
	Timestamp   string `json:"timestamp"`
	Type        string `json:"type"`
}

// Service validates reports and writes each to its own timestamped file
// under the reports directory.
type Service struct {
	reportsDir string
	now        func() time.Time
}

// NewService builds the report service rooted at reportsDir.
func NewService(reportsDir string) *Service {
	return &Service{reportsDir: reportsDir, now: time.Now}
}

// Save validates and persists one report, returning the file name it was
// written under.
func (s *Service) Save(kind string, r Report) (string, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind != KindBug && kind != KindFeature {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if strings.TrimSpace(r.Title) == "" || strings.TrimSpace(r.Description) == "" {
		return "", ErrMissingFields
	}

	now := s.now()
	r.Type = kind
	r.Timestamp = now.Format(time.RFC3339)

	filename := fmt.Sprintf("%s_%s.json", kind, now.Format("20060102_150405"))
	if err := storage.WriteJSONAtomic(filepath.Join(s.reportsDir, filename), r); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	return filename, nil
}
