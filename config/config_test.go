package config

import (
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PAL_BACKEND_URL", "")
	t.Setenv("PAL_BACKEND", "")
	t.Setenv("PAL_DATA_DIR", "")
}

func TestEnvVarPresence(t *testing.T) {
	clearEnv(t)

	if HasAnyEnvVar() {
		t.Fatal("HasAnyEnvVar with nothing set")
	}
	if HasAllEnvVars() {
		t.Fatal("HasAllEnvVars with nothing set")
	}
	if got := GetMissingEnvVar(); got != "PAL_BACKEND_URL" {
		t.Fatalf("GetMissingEnvVar = %q", got)
	}

	t.Setenv("PAL_BACKEND_URL", "https://backend.example.com")
	if !HasAnyEnvVar() {
		t.Fatal("HasAnyEnvVar missed a set variable")
	}
	if HasAllEnvVars() {
		t.Fatal("HasAllEnvVars with a partial set")
	}
	if got := GetMissingEnvVar(); got != "PAL_BACKEND" {
		t.Fatalf("GetMissingEnvVar = %q", got)
	}

	t.Setenv("PAL_BACKEND", "hosted")
	if got := GetMissingEnvVar(); got != "PAL_DATA_DIR" {
		t.Fatalf("GetMissingEnvVar = %q", got)
	}

	t.Setenv("PAL_DATA_DIR", t.TempDir())
	if !HasAllEnvVars() {
		t.Fatal("HasAllEnvVars with the full set")
	}
	if got := GetMissingEnvVar(); got != "" {
		t.Fatalf("GetMissingEnvVar = %q, want empty", got)
	}
}

func TestLoadFromEnvOnly(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("PAL_BACKEND_URL", "https://backend.example.com")
	t.Setenv("PAL_BACKEND", "ollama")
	t.Setenv("PAL_DATA_DIR", dataDir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HostedURL != "https://backend.example.com" {
		t.Errorf("HostedURL = %q", cfg.HostedURL)
	}
	if cfg.DefaultBackend != "ollama" {
		t.Errorf("DefaultBackend = %q", cfg.DefaultBackend)
	}
	if cfg.DataDirectory != dataDir {
		t.Errorf("DataDirectory = %q", cfg.DataDirectory)
	}

	// Defaults survive alongside the overrides
	if cfg.OllamaHost != "http://localhost:11434" {
		t.Errorf("OllamaHost = %q", cfg.OllamaHost)
	}
	if cfg.SecurityMethod != SecurityPlainText {
		t.Errorf("SecurityMethod = %q", cfg.SecurityMethod)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~/data", filepath.Join(home, "data")},
		{"~", home},
		{"/absolute/path", "/absolute/path"},
	}

	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExpandPathEnvVars(t *testing.T) {
	t.Setenv("PAL_TEST_DIR", "/var/data")
	if got := ExpandPath("$PAL_TEST_DIR/store"); got != "/var/data/store" {
		t.Fatalf("ExpandPath = %q", got)
	}
}

func TestLoadWithConfigFiles(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// First run creates both config files with defaults
	if !FileExists(GetSettingsFilePath()) {
		t.Error("system config was not created")
	}
	if !FileExists(filepath.Join(cfg.DataDir(), "config.toml")) {
		t.Error("user config was not created")
	}

	if cfg.DefaultBackend != "hosted" {
		t.Errorf("DefaultBackend = %q", cfg.DefaultBackend)
	}
	if cfg.HostedURL != DefaultHostedURL {
		t.Errorf("HostedURL = %q", cfg.HostedURL)
	}
	if cfg.DataDir() != filepath.Join(home, ".local", "share", "persona-l") {
		t.Errorf("DataDir = %q", cfg.DataDir())
	}
}

func TestLoadUserConfigOverrides(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	// Seed configs, then rewrite the user config with overrides
	if _, err := Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	user := DefaultUserConfig()
	user.DefaultBackend = "anthropic"
	user.Anthropic.Model = "claude-opus-4-1"
	dataDir := filepath.Join(home, ".local", "share", "persona-l")
	if err := SaveUserConfig(user, dataDir); err != nil {
		t.Fatalf("SaveUserConfig: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultBackend != "anthropic" {
		t.Errorf("DefaultBackend = %q", cfg.DefaultBackend)
	}
	if cfg.AnthropicModel != "claude-opus-4-1" {
		t.Errorf("AnthropicModel = %q", cfg.AnthropicModel)
	}
}

func TestAPIKeyForWithoutStore(t *testing.T) {
	cfg := &Config{}
	if got := cfg.APIKeyFor("openai"); got != "" {
		t.Fatalf("APIKeyFor = %q, want empty without a store", got)
	}
}
