package ircrawl

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	crawlTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "irscout",
			Name:      "crawl_total",
			Help:      "Total crawl invocations by outcome",
		},
		[]string{"outcome"},
	)

	crawlDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "irscout",
			Name:      "crawl_duration_seconds",
			Help:      "Duration of uncached crawls in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10), // 0.25s to ~2m
		},
	)

	fetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "irscout",
			Name:      "fetch_total",
			Help:      "Total budgeted page fetches by result",
		},
		[]string{"result"},
	)

	renderTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "irscout",
			Name:      "render_total",
			Help:      "Total headless browser renders",
		},
		[]string{"status"},
	)

	renderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "irscout",
			Name:      "render_duration_seconds",
			Help:      "Duration of headless browser page renders in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 8), // 0.5s to ~64s
		},
	)

	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "irscout",
			Name:      "cache_lookups_total",
			Help:      "Crawl result cache lookups",
		},
		[]string{"result"},
	)

	reportsFound = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "irscout",
			Name:      "reports_found",
			Help:      "Number of reports returned by successful crawls",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
	)
)
