package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config aggregates every setting the service reads from the environment.
type Config struct {
	Server   ServerConfig
	AI       AIConfig
	Fallback FallbackConfig
	Speech   SpeechConfig
	Storage  StorageConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:   server,
		AI:       ai,
		Fallback: loadFallbackConfig(),
		Speech:   speech,
		Storage:  loadStorageConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the primary LLM provider. Groq exposes an
// OpenAI-compatible API, so a key, model name and base URL are enough.
type AIConfig struct {
	APIKey         string
	Model          string
	BaseURL        string
	Temperature    float32
	MaxTokens      int
	TimeoutSeconds int
}

// Enabled reports whether the required credential is present.
func (c AIConfig) Enabled() bool {
	return c.APIKey != ""
}

func loadAIConfig() (AIConfig, error) {
	temperature := float32(0.7)
	if override, err := parseOptionalFloat32Env("GROQ_TEMPERATURE"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		temperature = *override
	}

	maxTokens := 500
	if override, err := parseOptionalIntEnv("GROQ_MAX_TOKENS"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		maxTokens = *override
	}

	timeout := 30
	if override, err := parseOptionalIntEnv("GROQ_TIMEOUT"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		timeout = *override
	}

	return AIConfig{
		APIKey:         strings.TrimSpace(os.Getenv("GROQ_API_KEY")),
		Model:          getEnvOrDefault("GROQ_MODEL", "llama3-70b-8192"),
		BaseURL:        getEnvOrDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		Temperature:    temperature,
		MaxTokens:      maxTokens,
		TimeoutSeconds: timeout,
	}, nil
}

// FallbackConfig describes the secondary hosted responder used when the
// primary provider is missing or fails.
type FallbackConfig struct {
	APIURL         string
	TimeoutSeconds int
}

func loadFallbackConfig() FallbackConfig {
	return FallbackConfig{
		APIURL: getEnvOrDefault("FALLBACK_API_URL",
			"https://api-inference.huggingface.co/models/microsoft/DialoGPT-medium"),
		TimeoutSeconds: 15,
	}
}

// SpeechConfig describes the speech recognition and synthesis engines.
type SpeechConfig struct {
	RecognizerKey   string
	RecognizerURL   string
	PrimaryLanguage string
	AltLanguage     string
	VoiceRSSKey     string
	VoiceRSSURL     string
	VoiceRSSVoice   string
	TranslateTTSURL string
	TimeoutSeconds  int
}

// RecognizerEnabled reports whether speech-to-text can be used.
func (c SpeechConfig) RecognizerEnabled() bool {
	return c.RecognizerKey != ""
}

// EnglishTTSEnabled reports whether the English synthesis engine has its key.
func (c SpeechConfig) EnglishTTSEnabled() bool {
	return c.VoiceRSSKey != ""
}

func loadSpeechConfig() (SpeechConfig, error) {
	timeout := 30
	if override, err := parseOptionalIntEnv("SPEECH_TIMEOUT"); err != nil {
		return SpeechConfig{}, err
	} else if override != nil {
		timeout = *override
	}

	return SpeechConfig{
		RecognizerKey:   strings.TrimSpace(os.Getenv("GOOGLE_SPEECH_API_KEY")),
		RecognizerURL:   getEnvOrDefault("GOOGLE_SPEECH_URL", "https://www.google.com/speech-api/v2/recognize"),
		PrimaryLanguage: getEnvOrDefault("SPEECH_PRIMARY_LANGUAGE", "ta-IN"),
		AltLanguage:     getEnvOrDefault("SPEECH_ALT_LANGUAGE", "en-IN"),
		VoiceRSSKey:     strings.TrimSpace(os.Getenv("VOICERSS_API_KEY")),
		VoiceRSSURL:     getEnvOrDefault("VOICERSS_URL", "https://api.voicerss.org/"),
		VoiceRSSVoice:   getEnvOrDefault("VOICERSS_VOICE", "en-in"),
		TranslateTTSURL: getEnvOrDefault("TRANSLATE_TTS_URL", "https://translate.google.com/translate_tts"),
		TimeoutSeconds:  timeout,
	}, nil
}

// StorageConfig describes where JSON collections and user reports live.
type StorageConfig struct {
	DataDir    string
	ReportsDir string
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		DataDir:    getEnvOrDefault("DATA_DIR", "data"),
		ReportsDir: getEnvOrDefault("REPORTS_DIR", "user_reports"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalFloat32Env(key string) (*float32, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	result := float32(val)
	return &result, nil
}
