package ircrawl

import (
	"context"
	"net/http"
	"testing"
	"time"

	"irscout/pkg/logging"
)

func newTestDiscoverer(net *fakeNet, limit int) *discoverer {
	budget := NewRequestBudget(limit)
	logger := logging.NewDiscardLogger().WithField("test", true)
	return &discoverer{
		fetcher: &fetchSession{
			client:    net.client(),
			budget:    budget,
			userAgent: DefaultUserAgent,
			timeout:   time.Second,
			logger:    logger,
		},
		budget: budget,
		logger: logger,
	}
}

func TestExtractDomain(t *testing.T) {
	tests := map[string]string{
		"example.com":                     "example.com",
		"https://www.example.com":         "example.com",
		"HTTP://WWW.Example.com/about?x=1": "example.com",
		"  www.example.co.uk/  ":          "example.co.uk",
		"https://investors.example.com":   "investors.example.com",
		"":                                "",
	}
	for in, want := range tests {
		if got := extractDomain(in); got != want {
			t.Fatalf("extractDomain(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDiscoverCommonPathRequiresMarker(t *testing.T) {
	net := newFakeNet()
	net.handle("example.com", site{
		"/investors":          "<html><body>Welcome</body></html>",
		"/investor-relations": "<html><body>Investor Relations</body></html>",
	})
	d := newTestDiscoverer(net, DefaultMaxRequests)

	page := d.discover(context.Background(), "https://www.example.com")
	if page == nil {
		t.Fatal("expected a page")
	}
	if page.url != "https://example.com/investor-relations" {
		t.Fatalf("unexpected page %q", page.url)
	}
	if net.requestCount() != 2 {
		t.Fatalf("expected 2 requests, got %d", net.requestCount())
	}
}

func TestDiscoverSubdomainAcceptedWithoutMarker(t *testing.T) {
	net := newFakeNet()
	net.handle("example.com", site{})
	net.handle("ir.example.com", site{"/": "<html><body>nothing relevant</body></html>"})
	d := newTestDiscoverer(net, DefaultMaxRequests)

	page := d.discover(context.Background(), "example.com")
	if page == nil || page.url != "https://ir.example.com" {
		t.Fatalf("expected ir subdomain, got %+v", page)
	}
	reqs := net.requested()
	if reqs[len(reqs)-2] != "https://investor.example.com" {
		t.Fatalf("expected investor subdomain to be tried first, got %v", reqs)
	}
}

func TestDiscoverFollowsHomepageLink(t *testing.T) {
	net := newFakeNet()
	net.handle("example.com", site{
		"/":                       `<html><body><a href="/about">About</a><a href="/corporate/shareholders">Shareholders</a></body></html>`,
		"/corporate/shareholders": "<html><body>reports</body></html>",
	})
	d := newTestDiscoverer(net, DefaultMaxRequests)

	page := d.discover(context.Background(), "example.com")
	if page == nil || page.url != "https://example.com/corporate/shareholders" {
		t.Fatalf("expected linked page, got %+v", page)
	}
}

func TestDiscoverFallsBackToHomepage(t *testing.T) {
	net := newFakeNet()
	net.handle("example.com", site{
		"/": `<html><body><a href="/about">About</a><a href="/files/ar.pdf">Annual Report</a></body></html>`,
	})
	d := newTestDiscoverer(net, DefaultMaxRequests)

	page := d.discover(context.Background(), "example.com")
	if page == nil {
		t.Fatal("expected homepage fallback")
	}
	// The "annual report" anchor is followed but 404s, so the homepage wins.
	if page.url != "https://example.com" {
		t.Fatalf("unexpected page %q", page.url)
	}
	if d.blocked {
		t.Fatal("blocked should be false")
	}
}

func TestDiscoverAllBlocked(t *testing.T) {
	net := newFakeNet()
	for _, host := range []string{"example.com", "investor.example.com", "ir.example.com"} {
		net.handle(host, statusHandler(http.StatusForbidden))
	}
	d := newTestDiscoverer(net, DefaultMaxRequests)

	if page := d.discover(context.Background(), "example.com"); page != nil {
		t.Fatalf("expected no page, got %+v", page)
	}
	if !d.blocked {
		t.Fatal("expected blocked flag")
	}
	// 8 common paths, 2 subdomains, 1 homepage.
	if got := net.requestCount(); got != len(commonIRPaths)+len(irSubdomains)+1 {
		t.Fatalf("unexpected request count %d", got)
	}
}

func TestDiscoverStopsWhenBudgetExhausted(t *testing.T) {
	net := newFakeNet()
	net.handle("example.com", site{"/": "<html>investor</html>"})
	d := newTestDiscoverer(net, 3)

	if page := d.discover(context.Background(), "example.com"); page != nil {
		t.Fatalf("expected no page, got %+v", page)
	}
	if got := net.requestCount(); got != 3 {
		t.Fatalf("expected 3 requests, got %d", got)
	}
}

func TestDirectPage(t *testing.T) {
	net := newFakeNet()
	net.handle("ir.example.com", site{"/reports": "<html></html>"})
	d := newTestDiscoverer(net, DefaultMaxRequests)

	if page := d.directPage(context.Background(), "https://ir.example.com/reports"); page == nil {
		t.Fatal("expected direct page")
	}
	if page := d.directPage(context.Background(), "https://ir.example.com/missing"); page != nil {
		t.Fatalf("expected nil for 404, got %+v", page)
	}
	if d.blocked {
		t.Fatal("404 must not set blocked")
	}
	if net.requestCount() != 2 {
		t.Fatalf("direct page must not try other tiers, got %v", net.requested())
	}
}

func TestFallbackTarget(t *testing.T) {
	if got := fallbackTarget(Request{IRPageURL: "https://x.example.com/ir"}); got != "https://x.example.com/ir" {
		t.Fatalf("got %q", got)
	}
	if got := fallbackTarget(Request{Website: "https://www.example.com"}); got != "https://ir.example.com" {
		t.Fatalf("got %q", got)
	}
}
