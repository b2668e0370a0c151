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

// maxTranslateTTSChars is the endpoint's per-request text limit.
const maxTranslateTTSChars = 200

// TranslateTTS renders Tamil text through the Google Translate speech
// endpoint. It needs no credential, which is what makes Tamil synthesis
// available on a fresh install.
type TranslateTTS struct {
	endpoint   string
	httpClient *http.Client
}

// NewTranslateTTS builds the Tamil synthesis engine.
func NewTranslateTTS(cfg config.SpeechConfig) *TranslateTTS {
	return &TranslateTTS{
		endpoint:   cfg.TranslateTTSURL,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
}

// Synthesize renders text as MP3. The emotion hint is ignored; the endpoint
// has no voice parameters.
func (t *TranslateTTS) Synthesize(ctx context.Context, text, _ string) (Audio, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Audio{}, errors.New("text is empty")
	}
	if runes := []rune(text); len(runes) > maxTranslateTTSChars {
		text = string(runes[:maxTranslateTTSChars])
	}

	query := url.Values{}
	query.Set("ie", "UTF-8")
	query.Set("tl", "ta")
	query.Set("client", "tw-ob")
	query.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		t.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return Audio{}, fmt.Errorf("build synthesis request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return Audio{}, fmt.Errorf("call synthesis endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Audio{}, fmt.Errorf("synthesis endpoint returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Audio{}, fmt.Errorf("read synthesized audio: %w", err)
	}
	if len(data) == 0 {
		return Audio{}, errors.New("synthesis endpoint returned no audio")
	}

	return Audio{Data: data, Format: "mp3", Engine: "translate"}, nil
}
