package ircrawl

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

const (
	DefaultRenderTimeout = 15 * time.Second
	renderStableDur      = 500 * time.Millisecond
	// RenderGrace covers browser launch and HTML capture on top of the
	// navigation wait.
	RenderGrace = 10 * time.Second
)

// Renderer produces fully rendered HTML for a page that rejects plain fetches.
type Renderer interface {
	Render(ctx context.Context, pageURL string) (string, error)
}

// blockedResourceTypes are not needed to read report links.
var blockedResourceTypes = []proto.NetworkResourceType{
	proto.NetworkResourceTypeImage,
	proto.NetworkResourceTypeFont,
	proto.NetworkResourceTypeStylesheet,
	proto.NetworkResourceTypeMedia,
}

// RodRenderer launches a headless Chromium per Render call and shuts it
// down before returning, on every path.
type RodRenderer struct {
	userAgent string
	timeout   time.Duration
	bin       string
}

type RodRendererOption func(*RodRenderer)

func WithRenderTimeout(d time.Duration) RodRendererOption {
	return func(r *RodRenderer) { r.timeout = d }
}

func WithRenderUserAgent(ua string) RodRendererOption {
	return func(r *RodRenderer) { r.userAgent = ua }
}

// WithBrowserBin points the launcher at a local Chrome/Chromium binary
// instead of letting Rod download one.
func WithBrowserBin(path string) RodRendererOption {
	return func(r *RodRenderer) { r.bin = path }
}

func NewRodRenderer(opts ...RodRendererOption) *RodRenderer {
	r := &RodRenderer{
		userAgent: DefaultUserAgent,
		timeout:   DefaultRenderTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render navigates to pageURL, waits until network traffic settles or the
// render timeout fires, and returns whatever HTML the page has by then.
func (r *RodRenderer) Render(ctx context.Context, pageURL string) (string, error) {
	renderCtx, cancel := context.WithTimeout(ctx, r.timeout+RenderGrace)
	defer cancel()

	l := launcher.New().
		Context(renderCtx).
		Headless(true).
		Set("disable-gpu").
		Set("no-sandbox").
		Set("disable-setuid-sandbox").
		Set("disable-dev-shm-usage")
	if r.bin != "" {
		l = l.Bin(r.bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return "", fmt.Errorf("launch headless browser: %w", err)
	}
	defer l.Cleanup()
	defer l.Kill()

	browser := rod.New().ControlURL(controlURL).Context(renderCtx)
	if err := browser.Connect(); err != nil {
		return "", fmt.Errorf("connect to headless browser: %w", err)
	}
	defer func() { _ = browser.Close() }()

	page, err := stealth.Page(browser)
	if err != nil {
		return "", fmt.Errorf("create tab: %w", err)
	}
	defer func() { _ = page.Close() }()
	page = page.Context(renderCtx)

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: r.userAgent}); err != nil {
		return "", fmt.Errorf("set user agent: %w", err)
	}

	router := page.HijackRequests()
	for _, rt := range blockedResourceTypes {
		_ = router.Add("*", rt, func(h *rod.Hijack) {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
		})
	}
	go router.Run()
	defer func() { _ = router.Stop() }()

	if err := page.Timeout(r.timeout).Navigate(pageURL); err != nil {
		return "", fmt.Errorf("navigate to %s: %w", pageURL, err)
	}
	// A page that never goes idle is still captured once the wait expires.
	_ = page.Timeout(r.timeout).WaitStable(renderStableDur)

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("get HTML from %s: %w", pageURL, err)
	}
	return html, nil
}
