package config

import (
	"time"

	"irscout/internal/ircrawl"
	"irscout/pkg/config"
	"irscout/pkg/llm"
)

const DefaultPort = "18030"

// Config stores environment configuration for irscout.
type Config struct {
	Port            string
	MaxRequests     int
	FetchTimeout    time.Duration
	RenderTimeout   time.Duration
	CacheTTL        time.Duration
	CacheMaxEntries int
	EnableBrowser   bool
	BrowserBin      string
	UserAgent       string
	SSRFProtection  bool
	LLM             llm.Config
}

// LoadConfig loads the irscout configuration from environment variables.
func LoadConfig() Config {
	return Config{
		Port:            config.GetEnv("PORT", DefaultPort),
		MaxRequests:     config.GetEnvInt("IRSCOUT_MAX_REQUESTS", ircrawl.DefaultMaxRequests),
		FetchTimeout:    config.GetEnvDuration("IRSCOUT_FETCH_TIMEOUT", ircrawl.DefaultFetchTimeout),
		RenderTimeout:   config.GetEnvDuration("IRSCOUT_RENDER_TIMEOUT", ircrawl.DefaultRenderTimeout),
		CacheTTL:        config.GetEnvDuration("IRSCOUT_CACHE_TTL", ircrawl.DefaultCacheTTL),
		CacheMaxEntries: config.GetEnvInt("IRSCOUT_CACHE_MAX_ENTRIES", ircrawl.DefaultCacheMaxEntries),
		EnableBrowser:   config.GetEnvBool("IRSCOUT_ENABLE_BROWSER", true),
		BrowserBin:      config.GetEnv("IRSCOUT_BROWSER_BIN", ""),
		UserAgent:       config.GetEnv("IRSCOUT_USER_AGENT", ircrawl.DefaultUserAgent),
		SSRFProtection:  config.GetEnvBool("IRSCOUT_SSRF_PROTECTION", true),
		LLM:             llm.LoadConfig(),
	}
}
