package config

import (
	"os"
	"testing"
	"time"

	"irscout/internal/ircrawl"
)

var irscoutEnv = []string{
	"PORT",
	"IRSCOUT_MAX_REQUESTS",
	"IRSCOUT_FETCH_TIMEOUT",
	"IRSCOUT_RENDER_TIMEOUT",
	"IRSCOUT_CACHE_TTL",
	"IRSCOUT_CACHE_MAX_ENTRIES",
	"IRSCOUT_ENABLE_BROWSER",
	"IRSCOUT_BROWSER_BIN",
	"IRSCOUT_USER_AGENT",
	"IRSCOUT_SSRF_PROTECTION",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range irscoutEnv {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg := LoadConfig()
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.MaxRequests != ircrawl.DefaultMaxRequests {
		t.Errorf("MaxRequests = %d", cfg.MaxRequests)
	}
	if cfg.FetchTimeout != 5*time.Second || cfg.RenderTimeout != 15*time.Second {
		t.Errorf("timeouts = %v / %v", cfg.FetchTimeout, cfg.RenderTimeout)
	}
	if cfg.CacheTTL != time.Hour || cfg.CacheMaxEntries != ircrawl.DefaultCacheMaxEntries {
		t.Errorf("cache = %v / %d", cfg.CacheTTL, cfg.CacheMaxEntries)
	}
	if !cfg.EnableBrowser || !cfg.SSRFProtection {
		t.Errorf("expected browser and SSRF protection on by default")
	}
	if cfg.UserAgent != ircrawl.DefaultUserAgent {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("IRSCOUT_MAX_REQUESTS", "10")
	t.Setenv("IRSCOUT_FETCH_TIMEOUT", "2s")
	t.Setenv("IRSCOUT_CACHE_TTL", "bogus")
	t.Setenv("IRSCOUT_ENABLE_BROWSER", "false")
	t.Setenv("IRSCOUT_SSRF_PROTECTION", "0")

	cfg := LoadConfig()
	if cfg.Port != "9000" || cfg.MaxRequests != 10 || cfg.FetchTimeout != 2*time.Second {
		t.Errorf("unexpected overrides %+v", cfg)
	}
	if cfg.CacheTTL != time.Hour {
		t.Errorf("malformed TTL should fall back, got %v", cfg.CacheTTL)
	}
	if cfg.EnableBrowser || cfg.SSRFProtection {
		t.Errorf("expected browser and SSRF protection off")
	}
}
