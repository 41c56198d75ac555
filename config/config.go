package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type HostedConfig struct {
	URL    string `toml:"url"`
	APIKey string `toml:"api_key,omitempty"`
}

type OllamaConfig struct {
	Host  string `toml:"host"`
	Model string `toml:"model"`
}

type OpenAIConfig struct {
	Model string `toml:"model"`
}

type AnthropicConfig struct {
	Model string `toml:"model"`
}

type SecurityConfig struct {
	Method     string `toml:"method"`
	SSHKeyPath string `toml:"ssh_key_path,omitempty"`
}

type UserConfig struct {
	DefaultBackend string          `toml:"default_backend"`
	Hosted         HostedConfig    `toml:"hosted"`
	Ollama         OllamaConfig    `toml:"ollama"`
	OpenAI         OpenAIConfig    `toml:"openai"`
	Anthropic      AnthropicConfig `toml:"anthropic"`
	Security       SecurityConfig  `toml:"security"`
}

type Config struct {
	DataDirectory  string
	DefaultBackend string
	HostedURL      string
	HostedAPIKey   string
	OllamaHost     string
	OllamaModel    string
	OpenAIModel    string
	AnthropicModel string
	SecurityMethod SecurityMethod
	SSHKeyPath     string

	CredentialStore *CredentialStore
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("PAL_BACKEND_URL"); url != "" {
		c.HostedURL = url
	}
	if backend := os.Getenv("PAL_BACKEND"); backend != "" {
		c.DefaultBackend = backend
	}
	if dataDir := os.Getenv("PAL_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
}

func CheckDebug() bool {
	debug := os.Getenv("PAL_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// Create debug log with secure permissions (0600 - may contain page text)
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (PAL_DEBUG=%s) ===", os.Getenv("PAL_DEBUG"))
	DebugLog.Printf("Log path: %s", logPath)
}

func HasAllEnvVars() bool {
	return os.Getenv("PAL_BACKEND_URL") != "" &&
		os.Getenv("PAL_BACKEND") != "" &&
		os.Getenv("PAL_DATA_DIR") != ""
}

func HasAnyEnvVar() bool {
	return os.Getenv("PAL_BACKEND_URL") != "" ||
		os.Getenv("PAL_BACKEND") != "" ||
		os.Getenv("PAL_DATA_DIR") != ""
}

func GetMissingEnvVar() string {
	if os.Getenv("PAL_BACKEND_URL") == "" {
		return "PAL_BACKEND_URL"
	}
	if os.Getenv("PAL_BACKEND") == "" {
		return "PAL_BACKEND"
	}
	if os.Getenv("PAL_DATA_DIR") == "" {
		return "PAL_DATA_DIR"
	}
	return ""
}

func Load() (*Config, error) {
	cfg := &Config{
		DataDirectory:  "~/.local/share/persona-l",
		DefaultBackend: "hosted",
		HostedURL:      DefaultHostedURL,
		OllamaHost:     "http://localhost:11434",
		OllamaModel:    "llama3.1:latest",
		OpenAIModel:    "gpt-4o-mini",
		AnthropicModel: "claude-sonnet-4-5-20250929",
		SecurityMethod: SecurityPlainText,
	}

	if HasAllEnvVars() {
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	systemCfg, err := LoadSystemConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}
	cfg.DataDirectory = systemCfg.DataDirectory

	dataDir := cfg.DataDir()
	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	if userCfg.DefaultBackend != "" {
		cfg.DefaultBackend = userCfg.DefaultBackend
	}
	if userCfg.Hosted.URL != "" {
		cfg.HostedURL = userCfg.Hosted.URL
	}
	cfg.HostedAPIKey = userCfg.Hosted.APIKey
	if userCfg.Ollama.Host != "" {
		cfg.OllamaHost = userCfg.Ollama.Host
	}
	if userCfg.Ollama.Model != "" {
		cfg.OllamaModel = userCfg.Ollama.Model
	}
	if userCfg.OpenAI.Model != "" {
		cfg.OpenAIModel = userCfg.OpenAI.Model
	}
	if userCfg.Anthropic.Model != "" {
		cfg.AnthropicModel = userCfg.Anthropic.Model
	}
	if userCfg.Security.Method != "" {
		cfg.SecurityMethod = SecurityMethod(userCfg.Security.Method)
	}
	cfg.SSHKeyPath = userCfg.Security.SSHKeyPath

	cfg.applyEnvOverrides()

	return cfg, nil
}

// LoadCredentials initializes the credential store for the configured
// security method. For the ssh_key method, passphrase may be required if
// the key is encrypted.
func (c *Config) LoadCredentials(passphrase string) error {
	store := NewCredentialStore(c.SecurityMethod, ExpandPath(c.SSHKeyPath))
	if passphrase != "" {
		store.SetPassphrase(passphrase)
	}
	if err := store.Load(c.DataDir()); err != nil {
		return err
	}
	c.CredentialStore = store
	return nil
}

// APIKeyFor returns the stored API key for a backend id, or "" when the
// credential store is not loaded or has no entry.
func (c *Config) APIKeyFor(backendID string) string {
	if c.CredentialStore == nil {
		return ""
	}
	return c.CredentialStore.Get(backendID)
}
