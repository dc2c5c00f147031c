package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full application configuration, read once at startup and
// static for the process lifetime.
type Config struct {
	Hotkey        HotkeyConfig        `toml:"hotkey"`        // Push-to-talk key bindings
	Audio         AudioConfig         `toml:"audio"`         // Microphone capture settings
	Transcription TranscriptionConfig `toml:"transcription"` // Speech-to-text engine settings
	Typing        TypingConfig        `toml:"typing"`        // Text injection settings
	Notifications NotificationsConfig `toml:"notifications"` // Desktop notification settings
	Server        ServerConfig        `toml:"server"`        // Optional remote control API
	Logging       LoggingConfig       `toml:"logging"`       // Application logging settings
}

// HotkeyConfig selects the keys that gate recording.
type HotkeyConfig struct {
	Key       string `toml:"key"`        // Push-to-talk key, held while speaking (e.g. "f12")
	ToggleKey string `toml:"toggle_key"` // Optional toggle key: one press starts, the next stops ("" disables)
}

// AudioConfig describes the capture stream.
type AudioConfig struct {
	DeviceIndex    int `toml:"device_index"`        // Input device index, -1 for the system default
	SampleRate     int `toml:"sample_rate"`         // Samples per second (whisper expects 16000)
	Channels       int `toml:"channels"`            // 1 for mono, 2 for stereo
	FrameSize      int `toml:"frame_size"`          // Samples per read from the device
	MaxCaptureSecs int `toml:"max_capture_seconds"` // Force-end a capture after this long even if the key is held
	MinUtteranceMs int `toml:"min_utterance_ms"`    // Buffers shorter than this are dropped as "no speech"
}

// TranscriptionConfig selects and configures the speech-to-text engine.
type TranscriptionConfig struct {
	Engine        string `toml:"engine"`          // "whisper" (local ggml model) or "openai" (hosted API)
	ModelPath     string `toml:"model_path"`      // Path to the ggml model file for the whisper engine
	Language      string `toml:"language"`        // Transcription language (e.g. "en")
	EnergyGate    bool   `toml:"energy_gate"`     // Skip inference when the buffer has no speech-like energy
	OpenAIAPIKey  string `toml:"openai_api_key"`  // API key for the openai engine (env OPENAI_API_KEY overrides)
	OpenAIBaseURL string `toml:"openai_base_url"` // Optional base URL override (e.g. a proxy)
	OpenAIModel   string `toml:"openai_model"`    // Hosted model name (e.g. "whisper-1")
}

// TypingConfig controls how transcripts reach the focused window.
type TypingConfig struct {
	Mode             string `toml:"mode"`               // "paste" (clipboard + Ctrl+V) or "keys" (per-character keystrokes)
	RestoreClipboard bool   `toml:"restore_clipboard"`  // Put the previous clipboard contents back after pasting
	InterKeyDelayMs  int    `toml:"inter_key_delay_ms"` // Delay between keystrokes in "keys" mode
}

type NotificationsConfig struct {
	Enabled bool `toml:"enabled"` // Desktop notifications on recording start/stop
}

// ServerConfig configures the optional remote control API.
type ServerConfig struct {
	Enabled bool   `toml:"enabled"` // Start the HTTP control surface
	Host    string `toml:"host"`    // Bind address (keep 127.0.0.1 unless you know what you are doing)
	Port    int    `toml:"port"`    // Listen port
	APIKey  string `toml:"api_key"` // Authorization header value required on every request (env CONTROL_API_KEY overrides)
}

type LoggingConfig struct {
	Level  string `toml:"level"`  // "debug", "info", "warn" or "error"
	Format string `toml:"format"` // "console" or "json"
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Hotkey: HotkeyConfig{
			Key: "f12",
		},
		Audio: AudioConfig{
			DeviceIndex:    -1,
			SampleRate:     16000,
			Channels:       1,
			FrameSize:      8196,
			MaxCaptureSecs: 30,
			MinUtteranceMs: 300,
		},
		Transcription: TranscriptionConfig{
			Engine:      "whisper",
			ModelPath:   "models/ggml-small.en.bin",
			Language:    "en",
			EnergyGate:  true,
			OpenAIModel: "whisper-1",
		},
		Typing: TypingConfig{
			Mode:             "paste",
			RestoreClipboard: true,
			InterKeyDelayMs:  2,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8435,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads and decodes a TOML config file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	cfg.applyEnv()

	return cfg, nil
}

// LoadWithFallback tries the user-supplied path first, then config.toml in
// the working directory, and falls back to defaults when neither exists.
func LoadWithFallback(preferredPath string) (*Config, error) {
	searchPaths := []string{preferredPath, "config.toml"}

	for _, path := range searchPaths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); err == nil {
			return Load(path)
		} else if preferredPath != "" && path == preferredPath {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
	}

	cfg := Default()
	cfg.applyEnv()

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Transcription.OpenAIAPIKey = v
	}

	if v := os.Getenv("CONTROL_API_KEY"); v != "" {
		c.Server.APIKey = v
	}
}

// Validate checks startup preconditions. Any failure here is fatal.
func (c *Config) Validate() error {
	if c.Hotkey.Key == "" {
		return fmt.Errorf("hotkey.key must be set")
	}

	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	}

	if c.Audio.Channels != 1 && c.Audio.Channels != 2 {
		return fmt.Errorf("audio.channels must be 1 or 2, got %d", c.Audio.Channels)
	}

	if c.Audio.FrameSize <= 0 {
		return fmt.Errorf("audio.frame_size must be positive, got %d", c.Audio.FrameSize)
	}

	if c.Audio.MaxCaptureSecs <= 0 {
		return fmt.Errorf("audio.max_capture_seconds must be positive, got %d", c.Audio.MaxCaptureSecs)
	}

	if c.MaxCaptureDuration() <= c.MinUtteranceDuration() {
		return fmt.Errorf("audio.max_capture_seconds (%d) must exceed audio.min_utterance_ms (%d)",
			c.Audio.MaxCaptureSecs, c.Audio.MinUtteranceMs)
	}

	switch c.Transcription.Engine {
	case "whisper":
		if c.Transcription.ModelPath == "" {
			return fmt.Errorf("transcription.model_path must be set for the whisper engine")
		}
	case "openai":
		if c.Transcription.OpenAIAPIKey == "" {
			return fmt.Errorf("transcription.openai_api_key (or OPENAI_API_KEY) must be set for the openai engine")
		}
	default:
		return fmt.Errorf("unknown transcription.engine %q (want \"whisper\" or \"openai\")", c.Transcription.Engine)
	}

	switch c.Typing.Mode {
	case "paste", "keys":
	default:
		return fmt.Errorf("unknown typing.mode %q (want \"paste\" or \"keys\")", c.Typing.Mode)
	}

	if c.Server.Enabled && c.Server.APIKey == "" {
		return fmt.Errorf("server.api_key (or CONTROL_API_KEY) must be set when the control API is enabled")
	}

	return nil
}

func (c *Config) MaxCaptureDuration() time.Duration {
	return time.Duration(c.Audio.MaxCaptureSecs) * time.Second
}

func (c *Config) MinUtteranceDuration() time.Duration {
	return time.Duration(c.Audio.MinUtteranceMs) * time.Millisecond
}
