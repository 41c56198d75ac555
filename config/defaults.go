package config

// DefaultHostedURL is the function endpoint of the hosted Persona-L service.
const DefaultHostedURL = "https://api.persona-l.app/functions/v1"

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/persona-l",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		DefaultBackend: "hosted",
		Hosted: HostedConfig{
			URL: DefaultHostedURL,
		},
		Ollama: OllamaConfig{
			Host:  "http://localhost:11434",
			Model: "llama3.1:latest",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-sonnet-4-5-20250929",
		},
		Security: SecurityConfig{
			Method: string(SecurityPlainText),
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# Persona-L System Configuration
# Location: ~/.config/persona-l/settings.toml
# This file uses TOML format: https://toml.io

# Directory where conversations and user config are stored
data_directory = "~/.local/share/persona-l"
`
}

func GenerateUserConfigTemplate() string {
	return `# Persona-L User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

# Backend used to synthesize personas and answer chat turns.
# "hosted" talks to the Persona-L service; "openai", "anthropic" and
# "ollama" generate personas directly (API keys live in credentials).
default_backend = "hosted"

[hosted]
# Persona-L service endpoint
url = "` + DefaultHostedURL + `"

[ollama]
# Local Ollama server (used when default_backend = "ollama")
host = "http://localhost:11434"
model = "llama3.1:latest"

[openai]
model = "gpt-4o-mini"

[anthropic]
model = "claude-sonnet-4-5-20250929"

[security]
# How provider API keys are stored: "plaintext" or "ssh_key"
method = "plaintext"

# Path to the SSH private key used for encryption (ssh_key method only)
# ssh_key_path = "~/.ssh/id_ed25519"
`
}
