package ircrawl

import (
	"context"
	"strings"

	"irscout/pkg/logging"
)

// commonIRPaths are tried in order against https://<domain>.
var commonIRPaths = []string{
	"/investors",
	"/investor-relations",
	"/ir",
	"/investors/overview",
	"/investor-relations/overview",
	"/investors/default.aspx",
	"/investor",
	"/shareholders",
}

// irPageMarkers must appear in a common-path body before it is accepted.
var irPageMarkers = []string{"investor", "annual report", "quarterly"}

var irSubdomains = []string{"investor", "ir"}

// irLinkKeywords select the homepage anchor that leads to the IR section.
var irLinkKeywords = []string{"investor", "shareholders", "annual report", "ir"}

// foundPage is a page discovery settled on.
type foundPage struct {
	url  string
	html []byte
}

// discoverer walks the discovery tiers with one fetcher. blocked
// accumulates across every attempt.
type discoverer struct {
	fetcher Fetcher
	budget  *RequestBudget
	logger  logging.Entry
	blocked bool
}

// extractDomain strips the scheme, a leading "www." and anything after the
// host from a user-supplied website string.
func extractDomain(website string) string {
	d := strings.TrimSpace(website)
	lower := strings.ToLower(d)
	for _, scheme := range []string{"https://", "http://"} {
		if strings.HasPrefix(lower, scheme) {
			d = d[len(scheme):]
			break
		}
	}
	if len(d) >= 4 && strings.EqualFold(d[:4], "www.") {
		d = d[4:]
	}
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	return strings.ToLower(d)
}

// fetch makes one attempt and folds a 401/403 into the blocked flag.
func (d *discoverer) fetch(ctx context.Context, tier, target string) *Response {
	res := d.fetcher.Fetch(ctx, target)
	switch {
	case res == nil:
		d.logger.WithField("tier", tier).WithField("url", target).Debug("Discovery fetch failed")
	case res.Blocked():
		d.blocked = true
		d.logger.WithField("tier", tier).WithField("url", target).WithField("status", res.StatusCode).Info("Discovery fetch blocked")
	case !res.OK():
		d.logger.WithField("tier", tier).WithField("url", target).WithField("status", res.StatusCode).Debug("Discovery fetch returned non-OK status")
	}
	return res
}

// directPage fetches a caller-supplied IR page and skips every other tier.
func (d *discoverer) directPage(ctx context.Context, irPageURL string) *foundPage {
	res := d.fetch(ctx, "direct", irPageURL)
	if !res.OK() {
		return nil
	}
	return &foundPage{url: irPageURL, html: res.Body}
}

// discover runs tiers 2 to 5 against the website's bare domain and
// returns the first page that qualifies.
func (d *discoverer) discover(ctx context.Context, website string) *foundPage {
	domain := extractDomain(website)
	if domain == "" {
		return nil
	}
	baseURL := "https://" + domain

	tiers := []func(context.Context, string, string) *foundPage{
		d.tryCommonPaths,
		d.trySubdomains,
		d.scanHomepage,
	}
	for _, tier := range tiers {
		if d.budget.Exhausted() {
			d.logger.WithField("budget_used", d.budget.Used()).Debug("Request budget exhausted, abandoning discovery")
			return nil
		}
		if page := tier(ctx, domain, baseURL); page != nil {
			return page
		}
	}
	return nil
}

func (d *discoverer) tryCommonPaths(ctx context.Context, _, baseURL string) *foundPage {
	for _, p := range commonIRPaths {
		if d.budget.Exhausted() {
			return nil
		}
		target := baseURL + p
		res := d.fetch(ctx, "common-path", target)
		if !res.OK() {
			continue
		}
		if containsAny(strings.ToLower(string(res.Body)), irPageMarkers) {
			return &foundPage{url: target, html: res.Body}
		}
	}
	return nil
}

func (d *discoverer) trySubdomains(ctx context.Context, domain, _ string) *foundPage {
	for _, sub := range irSubdomains {
		if d.budget.Exhausted() {
			return nil
		}
		target := "https://" + sub + "." + domain
		if res := d.fetch(ctx, "subdomain", target); res.OK() {
			return &foundPage{url: target, html: res.Body}
		}
	}
	return nil
}

// scanHomepage follows the first IR-looking homepage link once. When that
// fails, the homepage itself is returned.
func (d *discoverer) scanHomepage(ctx context.Context, _, baseURL string) *foundPage {
	res := d.fetch(ctx, "homepage", baseURL)
	if !res.OK() {
		return nil
	}
	home := &foundPage{url: baseURL, html: res.Body}

	page, err := parsePage(baseURL, res.Body)
	if err != nil {
		d.logger.WithField("url", baseURL).WithError(err).Debug("Homepage did not parse")
		return home
	}
	link, ok := page.firstLinkMatching(irLinkKeywords)
	if !ok {
		return home
	}
	if linked := d.fetch(ctx, "homepage-link", link); linked.OK() {
		return &foundPage{url: link, html: linked.Body}
	}
	return home
}

// fallbackTarget is the URL handed to the browser when discovery ended
// blocked: the supplied IR URL, else a guess at ir.<domain>.
func fallbackTarget(req Request) string {
	if req.IRPageURL != "" {
		return req.IRPageURL
	}
	return "https://ir." + extractDomain(req.Website)
}
