package config

import (
	"testing"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return &Manager{configDir: t.TempDir()}
}

func TestManagerLoadMissingFile(t *testing.T) {
	m := newTestManager(t)

	if m.Exists() {
		t.Error("Exists() = true before any Save")
	}
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *cfg != (Config{}) {
		t.Errorf("Load() = %+v, want empty config", cfg)
	}
}

func TestManagerSaveLoadRoundTrip(t *testing.T) {
	m := newTestManager(t)

	want := Config{
		LLMProvider:     "anthropic",
		APIKey:          "sk-test",
		Model:           "claude-3-5-sonnet-20241022",
		MaxTurns:        20,
		Temperature:     0.3,
		MaxOutputTokens: 8192,
		DBPath:          "/tmp/stitch.db",
	}
	if err := m.Save(&want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !m.Exists() {
		t.Error("Exists() = false after Save")
	}

	got, err := m.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}
