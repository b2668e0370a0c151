package report

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	svc := NewService(dir)
	svc.now = func() time.Time {
		return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	}
	return svc, dir
}

func TestSaveBugReport(t *testing.T) {
	svc, dir := newTestService(t)

	filename, err := svc.Save(KindBug, Report{
		Title:       "Crash on empty message",
		Description: "Sending whitespace crashes the chat page",
		Severity:    "high",
		Steps:       "1. open chat 2. send spaces",
	})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if filename != "bug_20250314_092653.json" {
		t.Fatalf("unexpected filename %q", filename)
	}

	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		t.Fatalf("reading report file: %v", err)
	}

	var saved Report
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("parsing report file: %v", err)
	}
	if saved.Type != KindBug {
		t.Fatalf("expected type bug, got %q", saved.Type)
	}
	if saved.Title != "Crash on empty message" || saved.Severity != "high" {
		t.Fatalf("unexpected report contents: %+v", saved)
	}
	if saved.Timestamp == "" {
		t.Fatal("expected timestamp to be stamped")
	}
}

func TestSaveFeatureReport(t *testing.T) {
	svc, _ := newTestService(t)

	filename, err := svc.Save(KindFeature, Report{
		Title:       "Weekly summary email",
		Description: "Send a mood recap every Sunday",
		Priority:    "low",
	})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if filename != "feature_20250314_092653.json" {
		t.Fatalf("unexpected filename %q", filename)
	}
}

func TestSaveRequiresTitleAndDescription(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Save(KindBug, Report{Title: "only a title"}); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if _, err := svc.Save(KindBug, Report{Description: "only a description"}); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}

func TestSaveRejectsUnknownKind(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Save("complaint", Report{Title: "t", Description: "d"}); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}
