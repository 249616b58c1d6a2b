package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(ConfigPath(dir))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Gemini.PlanModel != "gemini-3-flash-preview" {
		t.Errorf("unexpected plan model: %s", cfg.Gemini.PlanModel)
	}
	if cfg.Gemini.BaseURL == "" {
		t.Error("expected default base URL")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := ConfigPath(dir)

	cfg := DefaultConfig()
	cfg.Gemini.APIKey = "test-key"
	cfg.Logging.DebugMode = true
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Gemini.APIKey != "test-key" {
		t.Errorf("api key not persisted: %q", loaded.Gemini.APIKey)
	}
	if !loaded.Logging.DebugMode {
		t.Error("debug mode not persisted")
	}
}

func TestEnvOverrideWins(t *testing.T) {
	dir := t.TempDir()
	path := ConfigPath(dir)

	cfg := DefaultConfig()
	cfg.Gemini.APIKey = "file-key"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("GEMINI_API_KEY", "env-key")
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Gemini.APIKey != "env-key" {
		t.Errorf("env override lost: %q", loaded.Gemini.APIKey)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := ConfigPath(dir)
	if err := os.WriteFile(path, []byte("gemini: [not a map"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestGetGeminiTimeout(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.GetGeminiTimeout(); got != 2*time.Minute {
		t.Errorf("default timeout = %v", got)
	}
	cfg.Gemini.Timeout = "30s"
	if got := cfg.GetGeminiTimeout(); got != 30*time.Second {
		t.Errorf("timeout = %v", got)
	}
	cfg.Gemini.Timeout = "garbage"
	if got := cfg.GetGeminiTimeout(); got != 2*time.Minute {
		t.Errorf("fallback timeout = %v", got)
	}
}

func TestDatabasePathResolution(t *testing.T) {
	cfg := DefaultConfig()
	home := filepath.Join("some", "home")
	if got := cfg.DatabasePath(home); got != filepath.Join(home, "studio.db") {
		t.Errorf("relative path = %s", got)
	}
	abs := filepath.Join(string(filepath.Separator), "tmp", "x.db")
	cfg.Storage.DatabasePath = abs
	if got := cfg.DatabasePath(home); got != abs {
		t.Errorf("absolute path = %s", got)
	}
}

func TestHomeDirEnvOverride(t *testing.T) {
	t.Setenv("SOCIALSTUDIO_HOME", "/custom/home")
	if got := HomeDir(); got != "/custom/home" {
		t.Errorf("HomeDir = %s", got)
	}
}
