package config

import (
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Audio.TargetSampleRate != 16000 {
		t.Errorf("expected target sample rate 16000, got %d", cfg.Audio.TargetSampleRate)
	}
	if cfg.Audio.SilenceThreshold != 0.015 {
		t.Errorf("expected silence threshold 0.015, got %f", cfg.Audio.SilenceThreshold)
	}
	if cfg.Audio.MinSilenceDuration != 1.0 {
		t.Errorf("expected min silence duration 1.0, got %f", cfg.Audio.MinSilenceDuration)
	}
	if cfg.Audio.MaxBufferDuration != 10.0 {
		t.Errorf("expected max buffer duration 10.0, got %f", cfg.Audio.MaxBufferDuration)
	}
	if cfg.Audio.DeviceIndex != nil {
		t.Error("device index should default to auto-detect")
	}
	if cfg.Whisper.Model != "base.en" {
		t.Errorf("expected model base.en, got %s", cfg.Whisper.Model)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("APPDATA", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Audio.TargetSampleRate != 16000 {
		t.Errorf("expected defaults, got target rate %d", cfg.Audio.TargetSampleRate)
	}
}

func TestSaveAndLoadRoundtrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("APPDATA", "")

	cfg := Default()
	idx := 3
	cfg.Audio.DeviceIndex = &idx
	cfg.Audio.SilenceThreshold = 0.02
	cfg.Whisper.Model = "small.en"

	if err := cfg.Save(); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Audio.DeviceIndex == nil || *loaded.Audio.DeviceIndex != 3 {
		t.Errorf("device index did not round-trip: %v", loaded.Audio.DeviceIndex)
	}
	if loaded.Audio.SilenceThreshold != 0.02 {
		t.Errorf("silence threshold did not round-trip: %f", loaded.Audio.SilenceThreshold)
	}
	if loaded.Whisper.Model != "small.en" {
		t.Errorf("model did not round-trip: %s", loaded.Whisper.Model)
	}
}
