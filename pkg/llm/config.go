package llm

import (
	"fmt"
	"strings"
	"time"

	"irscout/pkg/config"
)

const (
	DefaultMaxTokens = 800
	// DefaultTemperature keeps summaries close to the source figures.
	DefaultTemperature = 0.2
	DefaultTimeout     = 60 * time.Second
)

type Config struct {
	Provider    string
	Model       string
	APIKey      string
	APIURL      string
	MaxTokens   int
	Temperature float64
	// Timeout bounds one completion, including the streamed body.
	Timeout time.Duration
}

func LoadConfig() Config {
	return Config{
		Provider:    config.GetEnv("LLM_PROVIDER", "openai"),
		Model:       config.GetEnv("LLM_MODEL", ""),
		APIKey:      config.GetEnv("LLM_API_KEY", ""),
		APIURL:      config.GetEnv("LLM_API_URL", ""),
		MaxTokens:   config.GetEnvInt("LLM_MAX_TOKENS", DefaultMaxTokens),
		Temperature: config.GetEnvFloat("LLM_TEMPERATURE", DefaultTemperature),
		Timeout:     config.GetEnvDuration("LLM_TIMEOUT", DefaultTimeout),
	}
}

// Configured reports whether enough is set to call a provider. Ollama
// needs no key.
func (c Config) Configured() bool {
	if c.Model == "" {
		return false
	}
	return c.APIKey != "" || strings.EqualFold(c.Provider, "ollama")
}

// maxTokens never returns zero; Anthropic and Ollama both need a bound.
func (c Config) maxTokens() int {
	if c.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return c.MaxTokens
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func NewProvider(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIProvider(cfg), nil
	case "anthropic":
		return NewAnthropicProvider(cfg), nil
	case "ollama":
		return NewOllamaProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
