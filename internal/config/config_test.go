package config

import (
	"testing"
	"time"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected defaults to load, got %v", err)
	}

	if cfg.Voice == "" {
		t.Fatal("expected a default voice")
	}
	if cfg.PlaybackSpeed != 1.0 {
		t.Fatalf("expected default playback speed 1.0, got %v", cfg.PlaybackSpeed)
	}
	if cfg.SilenceTimeout != 1500*time.Millisecond {
		t.Fatalf("expected default silence timeout 1.5s, got %v", cfg.SilenceTimeout)
	}
	if !cfg.AutoListen {
		t.Fatal("expected auto-listen on by default")
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("VOXA_PLAYBACK_SPEED", "1.5")
	t.Setenv("VOXA_SILENCE_TIMEOUT", "700ms")
	t.Setenv("VOXA_AUTO_LISTEN", "false")
	t.Setenv("VOXA_VOICE", "nova")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected overrides to load, got %v", err)
	}

	if cfg.PlaybackSpeed != 1.5 {
		t.Fatalf("expected playback speed 1.5, got %v", cfg.PlaybackSpeed)
	}
	if cfg.SilenceTimeout != 700*time.Millisecond {
		t.Fatalf("expected silence timeout 700ms, got %v", cfg.SilenceTimeout)
	}
	if cfg.AutoListen {
		t.Fatal("expected auto-listen off")
	}
	if cfg.Voice != "nova" {
		t.Fatalf("expected voice nova, got %q", cfg.Voice)
	}
}

func TestLoadFromEnvRejectsNonPositiveSpeed(t *testing.T) {
	t.Setenv("VOXA_PLAYBACK_SPEED", "0")

	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("expected an error for a zero playback speed")
	}
}
