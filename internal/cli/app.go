// Package cli wires irscout's configuration into the cobra command tree.
package cli

import (
	"errors"

	appconfig "irscout/internal/config"
	"irscout/internal/ircrawl"
	"irscout/internal/summary"
	"irscout/pkg/cache"
	"irscout/pkg/llm"
	"irscout/pkg/logging"
)

var errSummariesDisabled = errors.New("llm provider not configured")

// app holds the collaborators shared by serve and crawl.
type app struct {
	cfg     appconfig.Config
	logger  logging.Logger
	results *cache.Cache[ircrawl.CrawlResult]
	crawler *ircrawl.Crawler
}

func newApp(cfg appconfig.Config, logger logging.Logger) *app {
	results := ircrawl.NewResultCache(cfg.CacheTTL, cfg.CacheMaxEntries)

	opts := []ircrawl.CrawlerOption{
		ircrawl.WithLogger(logger),
		ircrawl.WithCache(results),
		ircrawl.WithMaxRequests(cfg.MaxRequests),
		ircrawl.WithFetchTimeout(cfg.FetchTimeout),
		ircrawl.WithUserAgent(cfg.UserAgent),
	}
	if cfg.EnableBrowser {
		opts = append(opts, ircrawl.WithRenderer(ircrawl.NewRodRenderer(
			ircrawl.WithRenderTimeout(cfg.RenderTimeout),
			ircrawl.WithRenderUserAgent(cfg.UserAgent),
			ircrawl.WithBrowserBin(cfg.BrowserBin),
		)))
	} else {
		logger.Warn("Browser fallback disabled - blocked sites report failure directly")
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		results: results,
		crawler: ircrawl.NewCrawler(ircrawl.NewHTTPClient(cfg.SSRFProtection), opts...),
	}
}

// summaries builds the report-summary service, or errSummariesDisabled
// when no LLM provider is configured.
func (a *app) summaries() (*summary.Service, error) {
	if !a.cfg.LLM.Configured() {
		return nil, errSummariesDisabled
	}
	provider, err := llm.NewProvider(a.cfg.LLM)
	if err != nil {
		return nil, err
	}
	return summary.NewService(
		ircrawl.NewHTTPClient(a.cfg.SSRFProtection),
		summary.NewLLMSummarizer(provider),
		summary.WithLogger(a.logger),
		summary.WithUserAgent(a.cfg.UserAgent),
	), nil
}
