package speech

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when the engine a request needs has no
// credential.
var ErrNotConfigured = errors.New("speech engine is not configured")

// Transcript is the result of speech recognition.
type Transcript struct {
	Text       string  `json:"text"`
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

// Audio is the result of speech synthesis.
type Audio struct {
	Data   []byte `json:"-"`
	Format string `json:"format"`
	Engine string `json:"engine"`
}

// Transcriber converts recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, format string) (Transcript, error)
}

// SynthesizerEngine renders text to audio in one language.
type SynthesizerEngine interface {
	Synthesize(ctx context.Context, text, emotion string) (Audio, error)
}

// Service routes transcription to the recognizer and synthesis to the engine
// matching the detected language. Any engine may be nil when its credential
// is absent; requests needing it get ErrNotConfigured.
type Service struct {
	recognizer Transcriber
	tamilTTS   SynthesizerEngine
	englishTTS SynthesizerEngine
}

// NewService assembles the speech service from whichever engines are
// configured.
func NewService(recognizer Transcriber, tamilTTS, englishTTS SynthesizerEngine) *Service {
	return &Service{
		recognizer: recognizer,
		tamilTTS:   tamilTTS,
		englishTTS: englishTTS,
	}
}

// Transcribe converts audio to text via the configured recognizer.
func (s *Service) Transcribe(ctx context.Context, audio []byte, format string) (Transcript, error) {
	if s.recognizer == nil {
		return Transcript{}, fmt.Errorf("transcribe: %w", ErrNotConfigured)
	}
	return s.recognizer.Transcribe(ctx, audio, format)
}

// Synthesize renders text to audio, picking the engine from the text's
// language. The emotion hint adjusts voice parameters where the engine
// supports it.
func (s *Service) Synthesize(ctx context.Context, text, emotion string) ([]byte, string, error) {
	var engine SynthesizerEngine
	switch DetectLanguage(text) {
	case LanguageTamil:
		engine = s.tamilTTS
	default:
		engine = s.englishTTS
	}

	if engine == nil {
		return nil, "", fmt.Errorf("synthesize: %w", ErrNotConfigured)
	}

	audio, err := engine.Synthesize(ctx, text, emotion)
	if err != nil {
		return nil, "", err
	}
	return audio.Data, audio.Format, nil
}

// CanTranscribe reports whether speech recognition is available.
func (s *Service) CanTranscribe() bool {
	return s.recognizer != nil
}

// CanSynthesize reports whether at least one synthesis engine is available.
func (s *Service) CanSynthesize() bool {
	return s.tamilTTS != nil || s.englishTTS != nil
}
