package ircrawl

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// reportSubpageKeywords identify report-index pages. Anchor text matches
// the same words with hyphens replaced by spaces.
var reportSubpageKeywords = []string{
	"quarterly-results",
	"quarterly-reports",
	"annual-reports",
	"annual-results",
	"financial-results",
	"financial-reports",
	"sec-filings",
	"earnings",
	"press-releases",
	"reports-and-filings",
	"financial-information",
	"results-reports",
}

var reportSubpageTextKeywords = func() []string {
	out := make([]string, len(reportSubpageKeywords))
	for i, kw := range reportSubpageKeywords {
		out[i] = strings.ReplaceAll(kw, "-", " ")
	}
	return out
}()

// FindReportSubpages returns the absolute URLs of report-index pages linked
// from an IR page, in document order. PDF links and the page itself are
// excluded.
func FindReportSubpages(data []byte, baseURL string) ([]string, error) {
	page, err := parsePage(baseURL, data)
	if err != nil {
		return nil, err
	}
	return page.reportSubpages(), nil
}

func (p *htmlPage) reportSubpages() []string {
	seen := make(map[string]bool)
	var out []string

	p.doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		hrefLower := strings.ToLower(href)
		text := strings.ToLower(a.Text())

		if !containsAny(hrefLower, reportSubpageKeywords) && !containsAny(text, reportSubpageTextKeywords) {
			return
		}
		if strings.HasSuffix(strings.TrimSpace(hrefLower), ".pdf") {
			return
		}
		full, ok := p.resolve(href)
		if !ok || full == p.url || seen[full] {
			return
		}
		seen[full] = true
		out = append(out, full)
	})
	return out
}

// firstLinkMatching returns the first anchor whose text or href contains
// one of keywords and whose href resolves.
func (p *htmlPage) firstLinkMatching(keywords []string) (string, bool) {
	var link string
	p.doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := a.AttrOr("href", "")
		if !containsAny(strings.ToLower(a.Text()), keywords) && !containsAny(strings.ToLower(href), keywords) {
			return true
		}
		full, ok := p.resolve(href)
		if !ok {
			return true
		}
		link = full
		return false
	})
	return link, link != ""
}
