package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
)

type Config struct {
	LogLevel   string         `json:"log_level"`
	AutoAnswer bool           `json:"auto_answer"`
	Audio      AudioConfig    `json:"audio"`
	Whisper    WhisperConfig  `json:"whisper"`
	Detector   DetectorConfig `json:"detector"`
	Answer     AnswerConfig   `json:"answer"`
}

type AudioConfig struct {
	// TargetSampleRate is the rate phrases are emitted at (16000 for whisper)
	TargetSampleRate int `json:"target_sample_rate"`
	// ChunkDuration is legacy and no longer drives phrase boundaries
	ChunkDuration float64 `json:"chunk_duration"`
	// SilenceThreshold is the amplitude level for silence detection (0.0-1.0)
	SilenceThreshold float32 `json:"silence_threshold"`
	// MinSilenceDuration is seconds of silence that end a phrase
	MinSilenceDuration float64 `json:"min_silence_duration"`
	// MaxBufferDuration is the most seconds buffered before a forced emission
	MaxBufferDuration float64 `json:"max_buffer_duration"`
	// DeviceIndex pins a capture device; nil means auto-detect a loopback device
	DeviceIndex *int `json:"device_index"`
}

type WhisperConfig struct {
	Model    string `json:"model"`    // "base.en", "small.en", etc.
	Language string `json:"language"` // "auto", "en", etc.
	Threads  int    `json:"threads"`
}

type DetectorConfig struct {
	Sensitivity float64 `json:"sensitivity"` // 0.0-1.0, higher detects more questions
}

type AnswerConfig struct {
	Model     string `json:"model"`    // e.g. "llama3.2:3b"
	BaseURL   string `json:"base_url"` // OpenAI-compatible endpoint
	APIKey    string `json:"api_key"`
	MaxTokens int    `json:"max_tokens"`
	TimeoutS  int    `json:"timeout_seconds"`
}

// Load reads the config from disk or returns defaults
func Load() (*Config, error) {
	path := configPath()

	cfg := Default()

	// Load existing config if it exists
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:   "info",
		AutoAnswer: true,
		Audio: AudioConfig{
			TargetSampleRate:   16000,
			ChunkDuration:      3.0,
			SilenceThreshold:   0.015,
			MinSilenceDuration: 1.0,
			MaxBufferDuration:  10.0,
			DeviceIndex:        nil,
		},
		Whisper: WhisperConfig{
			Model:    "base.en",
			Language: "auto",
			Threads:  0, // Auto-detect
		},
		Detector: DetectorConfig{
			Sensitivity: 0.7,
		},
		Answer: AnswerConfig{
			Model:     "llama3.2:3b",
			BaseURL:   "http://localhost:11434/v1",
			APIKey:    "ollama",
			MaxTokens: 150,
			TimeoutS:  30,
		},
	}
}

// Save writes the config to disk
func (c *Config) Save() error {
	path := configPath()

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// configPath returns the platform-specific config file path
func configPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, "loopscribe", "config.json")
}

// ModelsPath returns the platform-specific models directory path
func ModelsPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.local/share"
		}
	}

	return filepath.Join(base, "loopscribe", "models")
}
