package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the voice companion gateway.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string
	AllowAnyOrigin   bool

	SessionTimeout time.Duration
	SampleRateHz   int

	// AudioDebugDir, when set, makes the gateway dump each inbound
	// utterance to a WAV file there. For diagnosing transcription
	// quality; leave empty in production.
	AudioDebugDir string

	VoiceProvider     string
	SpeechAPIKey      string
	SpeechSTTLanguage string
	SpeechTTSVoice    string
	SpeechBaseURL     string
	TTSBaseURL        string

	BrainProvider string
	GeminiAPIKey  string
	BrainModel    string

	ResearchFanout  int
	ResearchTimeout time.Duration
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:          envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:  envOrDefault("APP_METRICS_NAMESPACE", "aiko"),
		AllowAnyOrigin:    false,
		SessionTimeout:    15 * time.Minute,
		SampleRateHz:      16000,
		AudioDebugDir:     envTrimmed("AUDIO_DEBUG_DIR"),
		VoiceProvider:     envOrDefault("VOICE_PROVIDER", "auto"),
		SpeechAPIKey:      envTrimmed("GOOGLE_SPEECH_API_KEY"),
		SpeechSTTLanguage: envOrDefault("GOOGLE_STT_LANGUAGE", "en-US"),
		SpeechTTSVoice:    envOrDefault("GOOGLE_TTS_VOICE", "en-US-Neural2-F"),
		SpeechBaseURL:     envOrDefault("GOOGLE_STT_BASE_URL", "https://speech.googleapis.com"),
		TTSBaseURL:        envOrDefault("GOOGLE_TTS_BASE_URL", "https://texttospeech.googleapis.com"),
		BrainProvider:     envOrDefault("BRAIN_PROVIDER", "auto"),
		GeminiAPIKey:      envTrimmed("GEMINI_API_KEY"),
		BrainModel:        envOrDefault("BRAIN_MODEL", "gemini-2.5-flash"),
		ResearchFanout:    5,
		ResearchTimeout:   45 * time.Second,
		ShutdownTimeout:   15 * time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionTimeout, err = durationFromEnv("SESSION_TIMEOUT", cfg.SessionTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ResearchTimeout, err = durationFromEnv("RESEARCH_TIMEOUT", cfg.ResearchTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SampleRateHz, err = intFromEnv("AUDIO_SAMPLE_RATE", cfg.SampleRateHz)
	if err != nil {
		return Config{}, err
	}
	cfg.ResearchFanout, err = intFromEnv("RESEARCH_FANOUT", cfg.ResearchFanout)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if cfg.SessionTimeout < time.Minute {
		return Config{}, fmt.Errorf("SESSION_TIMEOUT must be at least 1m")
	}
	if cfg.SampleRateHz <= 0 {
		return Config{}, fmt.Errorf("AUDIO_SAMPLE_RATE must be positive")
	}
	if cfg.ResearchFanout <= 0 {
		return Config{}, fmt.Errorf("RESEARCH_FANOUT must be positive")
	}
	if cfg.ResearchTimeout <= 0 {
		return Config{}, fmt.Errorf("RESEARCH_TIMEOUT must be positive")
	}
	// Credentials are a startup concern, not a per-request one: an
	// explicitly selected cloud provider without its key is fatal here.
	if strings.EqualFold(cfg.VoiceProvider, "google") && cfg.SpeechAPIKey == "" {
		return Config{}, fmt.Errorf("VOICE_PROVIDER=google requires GOOGLE_SPEECH_API_KEY")
	}
	if strings.EqualFold(cfg.BrainProvider, "gemini") && cfg.GeminiAPIKey == "" {
		return Config{}, fmt.Errorf("BRAIN_PROVIDER=gemini requires GEMINI_API_KEY")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(envTrimmed(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
