package cli

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"irscout/internal/handler"
	"irscout/internal/ircrawl"
	"irscout/pkg/llm"
	"irscout/pkg/middleware"
	"irscout/pkg/monitoring"
	"irscout/pkg/server"
	"irscout/pkg/version"
)

const (
	minRequestTimeout = 60 * time.Second
	maxRequestTimeout = 170 * time.Second
)

// requestTimeout bounds an API request by a worst-case crawl: every
// budgeted fetch timing out plus two full renders, launch grace included.
// It stays under the server write timeout.
func requestTimeout(fetch, render time.Duration, maxRequests int) time.Duration {
	d := time.Duration(maxRequests)*fetch + 2*(render+ircrawl.RenderGrace)
	if d < minRequestTimeout {
		return minRequestTimeout
	}
	if d > maxRequestTimeout {
		return maxRequestTimeout
	}
	return d
}

func newServeCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := loadRuntime(cmd)
			if port != "" {
				cfg.Port = port
			}
			a := newApp(cfg, logger)

			healthChecker := monitoring.NewHealthChecker("irscout", version.Version)
			metricsCollector := monitoring.NewMetricsCollector(version.Version, version.GitCommit)

			healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
				"PORT":                 cfg.Port,
				"IRSCOUT_MAX_REQUESTS": strconv.Itoa(cfg.MaxRequests),
			}))
			healthChecker.AddCheck("browser", monitoring.FeatureHealthCheck("browser fallback", cfg.EnableBrowser))
			healthChecker.AddCheck("cache", monitoring.CacheHealthCheck(a.results.Len, cfg.CacheMaxEntries))

			var summaries handler.ReportSummarizer
			svc, err := a.summaries()
			switch {
			case err == nil:
				summaries = svc
				healthChecker.AddCheck("summaries", monitoring.FeatureHealthCheck("report summaries", true))
			case errors.Is(err, errSummariesDisabled):
				logger.Warn("LLM_MODEL not set - report summaries disabled")
				healthChecker.AddCheck("summaries", monitoring.FeatureHealthCheck("report summaries", false))
			default:
				return err
			}
			if summaries != nil && strings.EqualFold(cfg.LLM.Provider, "ollama") {
				healthChecker.AddCheck("ollama", monitoring.HTTPServiceHealthCheck("ollama", llm.OllamaBaseURL(cfg.LLM.APIURL)))
			}

			router := server.SetupServiceRouter(logger, "irscout", healthChecker, metricsCollector)
			api := router.Group("/api")
			api.Use(middleware.Timeout(requestTimeout(cfg.FetchTimeout, cfg.RenderTimeout, cfg.MaxRequests)))
			handler.New(a.crawler, summaries, logger, handler.WithMetrics(metricsCollector)).RegisterRoutes(api)

			serverCfg := server.DefaultConfig("irscout", cfg.Port)
			return server.Start(cmd.Context(), serverCfg, router, logger)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	return cmd
}
