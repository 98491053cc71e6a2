// Package handler exposes the crawl and report-summary operations over HTTP.
package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"irscout/internal/ircrawl"
	"irscout/internal/summary"
	"irscout/pkg/logging"
)

type Crawler interface {
	Crawl(ctx context.Context, req ircrawl.Request) (ircrawl.CrawlResult, error)
}

// ReportSummarizer summarizes HTML report pages and PDFs.
type ReportSummarizer interface {
	Summarize(ctx context.Context, req summary.Request) (summary.Result, error)
	SummarizePDF(ctx context.Context, req summary.PDFRequest) (summary.Result, error)
}

// Recorder receives one observation per summary request. Crawl outcomes
// are recorded by the crawler itself.
type Recorder interface {
	ObserveSummary(source, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveSummary(string, string) {}

type Handler struct {
	crawler   Crawler
	summaries ReportSummarizer
	logger    logging.Logger
	metrics   Recorder
}

type Option func(*Handler)

func WithMetrics(r Recorder) Option {
	return func(h *Handler) {
		if r != nil {
			h.metrics = r
		}
	}
}

// New builds a Handler. summaries may be nil, in which case both summary
// routes answer 503.
func New(crawler Crawler, summaries ReportSummarizer, logger logging.Logger, opts ...Option) *Handler {
	h := &Handler{crawler: crawler, summaries: summaries, logger: logger, metrics: nopRecorder{}}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// outcome buckets an error for metrics labels.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return "error"
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/crawl-ir", h.Crawl)
	r.POST("/report-summary", h.Summary)
	r.POST("/pdf-summary", h.PDFSummary)
}
