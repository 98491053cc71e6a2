package ircrawl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"irscout/pkg/cache"
	"irscout/pkg/logging"
)

const (
	DefaultCacheTTL        = time.Hour
	DefaultCacheMaxEntries = 1000
)

var (
	// ErrMissingTarget means neither a website nor an IR page URL was given.
	ErrMissingTarget = errors.New("website or irPageUrl is required")
	// ErrInvalidTarget means the IR page URL is not an absolute http(s) URL.
	ErrInvalidTarget = errors.New("invalid irPageUrl")
	// ErrCrawlFailed wraps an internal fault. The accompanying CrawlResult
	// still carries MsgFailed.
	ErrCrawlFailed = errors.New("crawl failed")
)

// Crawler discovers a company's IR page and returns its classified report
// links. It is safe for concurrent use; each Crawl owns its own request
// budget.
type Crawler struct {
	client       *http.Client
	renderer     Renderer
	cache        *cache.Cache[CrawlResult]
	logger       logging.Logger
	maxRequests  int
	fetchTimeout time.Duration
	userAgent    string
}

type CrawlerOption func(*Crawler)

// WithRenderer enables the headless-browser fallback for blocked sites.
func WithRenderer(r Renderer) CrawlerOption {
	return func(c *Crawler) { c.renderer = r }
}

func WithLogger(logger logging.Logger) CrawlerOption {
	return func(c *Crawler) { c.logger = logger }
}

// WithCache injects the result store, typically one built by NewResultCache.
func WithCache(store *cache.Cache[CrawlResult]) CrawlerOption {
	return func(c *Crawler) { c.cache = store }
}

func WithMaxRequests(n int) CrawlerOption {
	return func(c *Crawler) {
		if n > 0 {
			c.maxRequests = n
		}
	}
}

func WithFetchTimeout(d time.Duration) CrawlerOption {
	return func(c *Crawler) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

func WithUserAgent(ua string) CrawlerOption {
	return func(c *Crawler) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewResultCache builds the crawl result store with cache lookup metrics
// attached.
func NewResultCache(ttl time.Duration, maxEntries int, opts ...cache.Option) *cache.Cache[CrawlResult] {
	hooks := cache.MetricsHooks{
		OnHit:   func(string) { cacheLookupsTotal.WithLabelValues("hit").Inc() },
		OnMiss:  func(string) { cacheLookupsTotal.WithLabelValues("miss").Inc() },
		OnStore: func(string) { cacheLookupsTotal.WithLabelValues("store").Inc() },
	}
	opts = append([]cache.Option{cache.WithMetrics(hooks)}, opts...)
	return cache.New[CrawlResult](cache.Options{TTL: ttl, MaxEntries: maxEntries}, opts...)
}

// NewCrawler returns a Crawler. A nil client gets an SSRF-safe default.
// Without WithRenderer the browser fallback is disabled and blocked sites
// report MsgBlocked directly.
func NewCrawler(client *http.Client, opts ...CrawlerOption) *Crawler {
	if client == nil {
		client = NewHTTPClient(true)
	}
	if client.CheckRedirect == nil {
		client.CheckRedirect = checkRedirect
	}
	c := &Crawler{
		client:       client,
		logger:       logging.NewDiscardLogger(),
		maxRequests:  DefaultMaxRequests,
		fetchTimeout: DefaultFetchTimeout,
		userAgent:    DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = NewResultCache(DefaultCacheTTL, DefaultCacheMaxEntries)
	}
	return c
}

// Crawl answers req from the cache when a fresh entry exists, otherwise
// crawls. Cancelling ctx does not stop a crawl already in flight. Blocked and not-found outcomes are returned as results with Error
// set, not as errors, and are cached. A returned error is ErrMissingTarget,
// ErrInvalidTarget or ErrCrawlFailed; with ErrCrawlFailed the result is
// still well formed.
func (c *Crawler) Crawl(ctx context.Context, req Request) (CrawlResult, error) {
	req = req.normalized()
	if req.IRPageURL == "" && extractDomain(req.Website) == "" {
		return CrawlResult{}, ErrMissingTarget
	}
	if req.IRPageURL != "" {
		if _, err := parseTargetURL(req.IRPageURL); err != nil {
			return CrawlResult{}, fmt.Errorf("%w: %v", ErrInvalidTarget, err)
		}
	}

	key := req.CacheKey()
	// A crawl is only bounded by its per-fetch timeouts. Detaching from the
	// caller keeps a dropped client from turning into a cached failure for
	// every caller sharing this load.
	result, hit, err := c.cache.Get(context.WithoutCancel(ctx), key, func(ctx context.Context, _ string) (CrawlResult, bool, error) {
		res, err := c.crawlUncached(ctx, req)
		return res, err == nil && ctx.Err() == nil, err
	})
	if hit {
		crawlTotal.WithLabelValues("cache_hit").Inc()
		c.logger.WithField("cache_key", key).Debug("Serving crawl result from cache")
	}
	return result, err
}

func (c *Crawler) crawlUncached(ctx context.Context, req Request) (result CrawlResult, err error) {
	start := time.Now()
	run := c.newRun(req)

	defer func() {
		if r := recover(); r != nil {
			run.logger.WithField("panic", r).Error("Crawl panicked")
			result = failureResult(MsgFailed)
			err = fmt.Errorf("%w: %v", ErrCrawlFailed, r)
		}
		crawlDuration.Observe(time.Since(start).Seconds())
		crawlTotal.WithLabelValues(outcomeLabel(result, err)).Inc()
		run.logger.
			WithField("budget_used", run.budget.Used()).
			WithField("reports", len(result.Reports)).
			WithField("duration_ms", time.Since(start).Milliseconds()).
			Info("Crawl finished")
	}()

	result, err = run.execute(ctx)
	if err != nil {
		run.logger.WithError(err).Error("Crawl failed")
		return failureResult(MsgFailed), err
	}
	if result.Error == "" {
		reportsFound.Observe(float64(len(result.Reports)))
	}
	return result, nil
}

func outcomeLabel(result CrawlResult, err error) string {
	switch {
	case err != nil:
		return "failed"
	case result.Error == MsgBlocked:
		return "blocked"
	case result.Error == MsgNotFound:
		return "not_found"
	case result.Error != "":
		return "failed"
	default:
		return "ok"
	}
}

// crawlRun is the state of one uncached crawl. It is used from a single
// goroutine, so its budget needs no locking.
type crawlRun struct {
	req      Request
	budget   *RequestBudget
	fetcher  Fetcher
	renderer Renderer
	logger   logging.Entry
}

func (c *Crawler) newRun(req Request) *crawlRun {
	budget := NewRequestBudget(c.maxRequests)
	logger := c.logger.WithField("cache_key", req.CacheKey())
	return &crawlRun{
		req:    req,
		budget: budget,
		fetcher: &fetchSession{
			client:    c.client,
			budget:    budget,
			userAgent: c.userAgent,
			timeout:   c.fetchTimeout,
			logger:    logger,
		},
		renderer: c.renderer,
		logger:   logger,
	}
}

func (r *crawlRun) execute(ctx context.Context) (CrawlResult, error) {
	d := &discoverer{fetcher: r.fetcher, budget: r.budget, logger: r.logger}

	var page *foundPage
	if r.req.IRPageURL != "" {
		page = d.directPage(ctx, r.req.IRPageURL)
	} else {
		page = d.discover(ctx, r.req.Website)
	}

	blocked := d.blocked
	if page == nil && blocked {
		target := fallbackTarget(r.req)
		if html, ok := r.render(ctx, target); ok {
			page = &foundPage{url: target, html: html}
			blocked = false
		}
	}

	if page == nil {
		if blocked {
			return failureResult(MsgBlocked), nil
		}
		return failureResult(MsgNotFound), nil
	}

	reports, err := r.collect(ctx, page)
	if err != nil {
		return CrawlResult{}, fmt.Errorf("%w: %v", ErrCrawlFailed, err)
	}
	SortReports(reports)
	return CrawlResult{IRPageURL: page.url, Reports: reports}, nil
}

// collect extracts reports from the IR page and then from each report-index
// subpage it links to, one at a time, skipping URLs already collected.
func (r *crawlRun) collect(ctx context.Context, page *foundPage) ([]ClassifiedReport, error) {
	primary, err := parsePage(page.url, page.html)
	if err != nil {
		return nil, err
	}

	reports := make([]ClassifiedReport, 0)
	seen := make(map[string]bool)
	add := func(found []ClassifiedReport) {
		for _, rep := range found {
			if seen[rep.URL] {
				continue
			}
			seen[rep.URL] = true
			reports = append(reports, rep)
		}
	}
	add(classifyCandidates(primary.candidates()))

	for _, sub := range primary.reportSubpages() {
		if r.budget.Exhausted() {
			r.logger.WithField("budget_used", r.budget.Used()).Debug("Request budget exhausted, skipping remaining subpages")
			break
		}
		html := r.subpageHTML(ctx, sub)
		if html == nil {
			continue
		}
		subPage, err := parsePage(sub, html)
		if err != nil {
			r.logger.WithField("url", sub).WithError(err).Debug("Subpage did not parse")
			continue
		}
		add(classifyCandidates(subPage.candidates()))
	}
	return reports, nil
}

func (r *crawlRun) subpageHTML(ctx context.Context, target string) []byte {
	res := r.fetcher.Fetch(ctx, target)
	switch {
	case res.OK():
		return res.Body
	case res.Blocked():
		if html, ok := r.render(ctx, target); ok {
			return html
		}
	}
	return nil
}

// render is the browser fallback. It reports false when no renderer is
// configured or rendering failed.
func (r *crawlRun) render(ctx context.Context, target string) ([]byte, bool) {
	if r.renderer == nil {
		return nil, false
	}
	logger := r.logger.WithField("url", target)
	logger.Warn("Plain fetch blocked, rendering with headless browser")

	start := time.Now()
	html, err := r.renderer.Render(ctx, target)
	renderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		renderTotal.WithLabelValues("error").Inc()
		logger.WithError(err).Warn("Headless browser render failed")
		return nil, false
	}
	renderTotal.WithLabelValues("ok").Inc()
	return []byte(html), true
}
