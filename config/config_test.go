package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("file values override defaults", func(t *testing.T) {
		path := writeConfig(t, `
[hotkey]
key = "f9"
toggle_key = "f10"

[audio]
sample_rate = 48000
max_capture_seconds = 10

[transcription]
engine = "openai"
openai_api_key = "sk-test"

[typing]
mode = "keys"
`)

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}

		if cfg.Hotkey.Key != "f9" || cfg.Hotkey.ToggleKey != "f10" {
			t.Errorf("unexpected hotkeys: %+v", cfg.Hotkey)
		}

		if cfg.Audio.SampleRate != 48000 {
			t.Errorf("expected sample rate 48000, got %d", cfg.Audio.SampleRate)
		}

		if cfg.MaxCaptureDuration() != 10*time.Second {
			t.Errorf("expected 10s max capture, got %s", cfg.MaxCaptureDuration())
		}

		// Untouched sections keep their defaults.
		if cfg.Audio.Channels != 1 || cfg.Audio.FrameSize != 8196 {
			t.Errorf("defaults lost: %+v", cfg.Audio)
		}

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected a valid config, got %v", err)
		}
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		path := writeConfig(t, `[hotkey`)

		if _, err := Load(path); err == nil {
			t.Errorf("expected an error for malformed toml")
		}
	})

	t.Run("environment overrides secrets", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-from-env")
		t.Setenv("CONTROL_API_KEY", "ctl-from-env")

		path := writeConfig(t, `
[transcription]
openai_api_key = "sk-from-file"
`)

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}

		if cfg.Transcription.OpenAIAPIKey != "sk-from-env" {
			t.Errorf("expected env api key to win, got %q", cfg.Transcription.OpenAIAPIKey)
		}

		if cfg.Server.APIKey != "ctl-from-env" {
			t.Errorf("expected env control key, got %q", cfg.Server.APIKey)
		}
	})
}

func TestLoadWithFallback(t *testing.T) {
	t.Run("missing explicit path is an error", func(t *testing.T) {
		if _, err := LoadWithFallback(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Errorf("expected an error for a missing explicit config")
		}
	})

	t.Run("no path and no config.toml falls back to defaults", func(t *testing.T) {
		chdir(t, t.TempDir())

		cfg, err := LoadWithFallback("")
		if err != nil {
			t.Fatalf("LoadWithFallback: %v", err)
		}

		if cfg.Hotkey.Key != "f12" {
			t.Errorf("expected default hotkey, got %q", cfg.Hotkey.Key)
		}
	})

	t.Run("config.toml in the working directory is picked up", func(t *testing.T) {
		dir := t.TempDir()
		chdir(t, dir)

		err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[hotkey]\nkey = \"f8\"\n"), 0o644)
		if err != nil {
			t.Fatalf("write: %v", err)
		}

		cfg, err := LoadWithFallback("")
		if err != nil {
			t.Fatalf("LoadWithFallback: %v", err)
		}

		if cfg.Hotkey.Key != "f8" {
			t.Errorf("expected f8 from config.toml, got %q", cfg.Hotkey.Key)
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return Default()
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty hotkey", func(c *Config) { c.Hotkey.Key = "" }},
		{"zero sample rate", func(c *Config) { c.Audio.SampleRate = 0 }},
		{"bad channel count", func(c *Config) { c.Audio.Channels = 3 }},
		{"zero frame size", func(c *Config) { c.Audio.FrameSize = 0 }},
		{"zero max capture", func(c *Config) { c.Audio.MaxCaptureSecs = 0 }},
		{"min utterance above max capture", func(c *Config) { c.Audio.MinUtteranceMs = 31000 }},
		{"unknown engine", func(c *Config) { c.Transcription.Engine = "parakeet" }},
		{"whisper without model", func(c *Config) { c.Transcription.ModelPath = "" }},
		{"openai without key", func(c *Config) {
			c.Transcription.Engine = "openai"
			c.Transcription.OpenAIAPIKey = ""
		}},
		{"unknown typing mode", func(c *Config) { c.Typing.Mode = "telepathy" }},
		{"server without api key", func(c *Config) { c.Server.Enabled = true }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)

			if err := cfg.Validate(); err == nil {
				t.Errorf("expected a validation error")
			}
		})
	}

	t.Run("defaults are valid", func(t *testing.T) {
		if err := valid().Validate(); err != nil {
			t.Errorf("defaults should validate, got %v", err)
		}
	})
}

func writeConfig(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")

	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return path
}

func chdir(t *testing.T, dir string) {
	t.Helper()

	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}

	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("chdir back: %v", err)
		}
	})
}
