package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tkavin/mind-mirror/backend/internal/config"
)

// VoiceRSS renders English text through the VoiceRSS API. The detected
// emotion nudges the speaking rate so upbeat replies sound brighter and
// low replies sound softer.
type VoiceRSS struct {
	apiKey     string
	endpoint   string
	voice      string
	httpClient *http.Client
}

// NewVoiceRSS builds the English synthesis engine.
func NewVoiceRSS(cfg config.SpeechConfig) *VoiceRSS {
	return &VoiceRSS{
		apiKey:     cfg.VoiceRSSKey,
		endpoint:   cfg.VoiceRSSURL,
		voice:      cfg.VoiceRSSVoice,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
}

// rateFor maps an emotion label onto the API's -10..10 speaking-rate scale.
func rateFor(emotion string) string {
	switch emotion {
	case "happy", "excited":
		return "2"
	case "sad":
		return "-2"
	case "anxious", "calm":
		return "-1"
	default:
		return "0"
	}
}

// Synthesize renders text as MP3.
func (v *VoiceRSS) Synthesize(ctx context.Context, text, emotion string) (Audio, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Audio{}, errors.New("text is empty")
	}

	form := url.Values{}
	form.Set("key", v.apiKey)
	form.Set("hl", v.voice)
	form.Set("src", text)
	form.Set("c", "MP3")
	form.Set("f", "44khz_16bit_mono")
	form.Set("r", rateFor(emotion))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Audio{}, fmt.Errorf("build synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return Audio{}, fmt.Errorf("call synthesis api: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Audio{}, fmt.Errorf("read synthesized audio: %w", err)
	}

	// The API reports failures as a 200 with a textual ERROR body.
	if resp.StatusCode != http.StatusOK {
		return Audio{}, fmt.Errorf("synthesis api returned status %d", resp.StatusCode)
	}
	if strings.HasPrefix(string(data), "ERROR") {
		return Audio{}, fmt.Errorf("synthesis api error: %s", strings.TrimSpace(string(data)))
	}
	if len(data) == 0 {
		return Audio{}, errors.New("synthesis api returned no audio")
	}

	return Audio{Data: data, Format: "mp3", Engine: "voicerss"}, nil
}
