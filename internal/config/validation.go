package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// validSSLModes are the SSL modes accepted by PostgreSQL.
var validSSLModes = map[string]bool{
	"disable":     true,
	"allow":       true,
	"prefer":      true,
	"require":     true,
	"verify-ca":   true,
	"verify-full": true,
}

// Validate checks the configuration for correctness.
// Returns a sentinel error (checkable via errors.Is) for the first
// problem found. Called automatically by Load; callers constructing a
// Config by hand should call it themselves.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	switch c.Provider {
	case ProviderGemini, ProviderGoogleAI:
		// Genkit's googlegenai plugin reads GEMINI_API_KEY itself; fail
		// here so the user gets a config error instead of a mid-request one.
		if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
			return fmt.Errorf("%w: set GEMINI_API_KEY for provider %q", ErrMissingAPIKey, c.Provider)
		}
	case ProviderOllama:
		if c.OllamaHost == "" {
			return fmt.Errorf("%w: ollama_host must be set for provider %q", ErrInvalidOllamaHost, c.Provider)
		}
		if !strings.HasPrefix(c.OllamaHost, "http://") && !strings.HasPrefix(c.OllamaHost, "https://") {
			return fmt.Errorf("%w: ollama_host must start with http:// or https://, got %q", ErrInvalidOllamaHost, c.OllamaHost)
		}
	case ProviderOpenAI:
		if os.Getenv("OPENAI_API_KEY") == "" {
			return fmt.Errorf("%w: set OPENAI_API_KEY for provider %q", ErrMissingAPIKey, c.Provider)
		}
	default:
		return fmt.Errorf("%w: %q (supported: gemini, ollama, openai)", ErrInvalidProvider, c.Provider)
	}

	if strings.TrimSpace(c.ModelName) == "" {
		return fmt.Errorf("%w: model name must not be empty", ErrInvalidModelName)
	}

	if strings.TrimSpace(c.Language) == "" {
		return fmt.Errorf("%w: language must not be empty", ErrInvalidLanguage)
	}

	if strings.TrimSpace(c.EmbedderModel) == "" {
		return fmt.Errorf("%w: embedder model must not be empty", ErrInvalidEmbedderModel)
	}

	return c.validatePostgres()
}

// validatePostgres checks the PostgreSQL connection settings.
func (c *Config) validatePostgres() error {
	if strings.TrimSpace(c.PostgresHost) == "" {
		return fmt.Errorf("%w: host must not be empty", ErrInvalidPostgresHost)
	}

	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: port must be between 1 and 65535, got %d", ErrInvalidPostgresPort, c.PostgresPort)
	}

	if strings.TrimSpace(c.PostgresDBName) == "" {
		return fmt.Errorf("%w: database name must not be empty", ErrInvalidPostgresDBName)
	}

	if c.PostgresPassword == "" {
		return fmt.Errorf("%w: password must not be empty", ErrInvalidPostgresPassword)
	}
	if c.PostgresPassword == "aurenia_dev_password" {
		// Allowed for local development, but worth a visible nudge.
		slog.Warn("using default development database password, change it for production deployments")
	}

	if !validSSLModes[c.PostgresSSLMode] {
		return fmt.Errorf("%w: %q (supported: disable, allow, prefer, require, verify-ca, verify-full)",
			ErrInvalidPostgresSSLMode, c.PostgresSSLMode)
	}

	return nil
}
