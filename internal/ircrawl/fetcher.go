package ircrawl

import (
	"context"
	"io"
	"net/http"
	"time"

	"irscout/pkg/logging"
)

const (
	DefaultMaxRequests  = 25
	DefaultFetchTimeout = 5 * time.Second
	DefaultUserAgent    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	maxPageBytes = 10 << 20 // 10 MB
	maxRedirects = 10
)

// RequestBudget caps the outbound plain fetches of one crawl. It is owned by
// a single crawl and only touched from that crawl's goroutine.
type RequestBudget struct {
	limit int
	used  int
}

func NewRequestBudget(limit int) *RequestBudget {
	return &RequestBudget{limit: limit}
}

// Take reserves one request. It returns false once the cap is reached.
func (b *RequestBudget) Take() bool {
	if b.used >= b.limit {
		return false
	}
	b.used++
	return true
}

func (b *RequestBudget) Used() int { return b.used }

func (b *RequestBudget) Exhausted() bool { return b.used >= b.limit }

// Response is a completed GET. Body is only read for 2xx responses.
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// Blocked reports an anti-bot rejection (401/403).
func (r *Response) Blocked() bool {
	return r != nil && (r.StatusCode == http.StatusUnauthorized || r.StatusCode == http.StatusForbidden)
}

// Fetcher is the only path to the network for plain HTTP requests. A nil
// Response means "this path failed, try the next one".
type Fetcher interface {
	Fetch(ctx context.Context, target string) *Response
}

// NewFetcher returns a Fetcher with its own budget of maxRequests. Crawls
// build theirs internally; this is for one-off callers.
func NewFetcher(client *http.Client, maxRequests int, timeout time.Duration, userAgent string, logger logging.Logger) Fetcher {
	if client == nil {
		client = NewHTTPClient(true)
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &fetchSession{
		client:    client,
		budget:    NewRequestBudget(maxRequests),
		userAgent: userAgent,
		timeout:   timeout,
		logger:    logger.WithField("component", "fetcher"),
	}
}

// fetchSession is a Fetcher bound to one RequestBudget.
type fetchSession struct {
	client    *http.Client
	budget    *RequestBudget
	userAgent string
	timeout   time.Duration
	logger    logging.Entry
}

func (s *fetchSession) Fetch(ctx context.Context, target string) *Response {
	if !s.budget.Take() {
		fetchTotal.WithLabelValues("budget_exhausted").Inc()
		s.logger.WithField("url", target).WithField("budget_used", s.budget.Used()).Debug("Request budget exhausted, skipping fetch")
		return nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, target, nil)
	if err != nil {
		fetchTotal.WithLabelValues("invalid_url").Inc()
		return nil
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		fetchTotal.WithLabelValues("network_error").Inc()
		s.logger.WithField("url", target).WithError(err).Debug("Fetch failed")
		return nil
	}
	defer resp.Body.Close()

	out := &Response{URL: target, StatusCode: resp.StatusCode, ContentType: resp.Header.Get("Content-Type")}
	if !out.OK() {
		if out.Blocked() {
			fetchTotal.WithLabelValues("blocked").Inc()
		} else {
			fetchTotal.WithLabelValues("status_error").Inc()
		}
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPageBytes))
		return out
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		fetchTotal.WithLabelValues("read_error").Inc()
		s.logger.WithField("url", target).WithError(err).Debug("Reading response body failed")
		return nil
	}
	fetchTotal.WithLabelValues("ok").Inc()
	out.Body = body
	return out
}

func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return http.ErrUseLastResponse
	}
	return nil
}
