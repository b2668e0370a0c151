package speech

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tkavin/mind-mirror/backend/internal/config"
)

// ErrNoSpeech is returned when the recognizer finds no transcribable speech
// in the audio.
var ErrNoSpeech = errors.New("no speech recognized")

// GoogleRecognizer transcribes audio through the Google Web Speech API. It
// tries the primary language first and retries once with the alternate
// language when nothing is recognized, so Tamil speakers and English
// speakers both get a transcript from the same endpoint.
type GoogleRecognizer struct {
	apiKey          string
	endpoint        string
	primaryLanguage string
	altLanguage     string
	httpClient      *http.Client
}

// NewGoogleRecognizer builds a recognizer from configuration.
func NewGoogleRecognizer(cfg config.SpeechConfig) *GoogleRecognizer {
	return &GoogleRecognizer{
		apiKey:          cfg.RecognizerKey,
		endpoint:        cfg.RecognizerURL,
		primaryLanguage: cfg.PrimaryLanguage,
		altLanguage:     cfg.AltLanguage,
		httpClient:      &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
}

// Transcribe sends the audio to the recognition endpoint. format is the
// audio container name, e.g. "flac" or "wav".
func (g *GoogleRecognizer) Transcribe(ctx context.Context, audio []byte, format string) (Transcript, error) {
	if len(audio) == 0 {
		return Transcript{}, errors.New("audio payload is empty")
	}

	transcript, err := g.recognize(ctx, audio, format, g.primaryLanguage)
	if err == nil {
		return transcript, nil
	}
	if !errors.Is(err, ErrNoSpeech) || g.altLanguage == "" {
		return Transcript{}, err
	}

	log.Printf("[speech] no match in %s, retrying recognition in %s", g.primaryLanguage, g.altLanguage)
	return g.recognize(ctx, audio, format, g.altLanguage)
}

func (g *GoogleRecognizer) recognize(ctx context.Context, audio []byte, format, language string) (Transcript, error) {
	query := url.Values{}
	query.Set("client", "chromium")
	query.Set("lang", language)
	query.Set("key", g.apiKey)
	query.Set("output", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.endpoint+"?"+query.Encode(), bytes.NewReader(audio))
	if err != nil {
		return Transcript{}, fmt.Errorf("build recognition request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeFor(format))

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Transcript{}, fmt.Errorf("call recognition api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Transcript{}, fmt.Errorf("recognition api returned status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	transcript, confidence, err := parseRecognitionBody(resp.Body)
	if err != nil {
		return Transcript{}, err
	}

	lang := LanguageEnglish
	if strings.HasPrefix(language, "ta") {
		lang = LanguageTamil
	}
	return Transcript{Text: transcript, Language: lang, Confidence: confidence}, nil
}

// parseRecognitionBody handles the API's line-delimited JSON: empty result
// lines precede the line carrying alternatives.
func parseRecognitionBody(body io.Reader) (string, float64, error) {
	type alternative struct {
		Transcript string  `json:"transcript"`
		Confidence float64 `json:"confidence"`
	}
	type result struct {
		Alternative []alternative `json:"alternative"`
		Final       bool          `json:"final"`
	}
	type response struct {
		Result []result `json:"result"`
	}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var parsed response
		if err := json.Unmarshal([]byte(line), &parsed); err != nil {
			return "", 0, fmt.Errorf("decode recognition response: %w", err)
		}
		for _, res := range parsed.Result {
			if len(res.Alternative) == 0 {
				continue
			}
			best := res.Alternative[0]
			if strings.TrimSpace(best.Transcript) == "" {
				continue
			}
			return best.Transcript, best.Confidence, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", 0, fmt.Errorf("read recognition response: %w", err)
	}

	return "", 0, ErrNoSpeech
}

func contentTypeFor(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "flac":
		return "audio/x-flac; rate=16000"
	case "wav":
		return "audio/l16; rate=16000"
	default:
		return "audio/" + strings.ToLower(format)
	}
}
