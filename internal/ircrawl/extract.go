package ircrawl

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const maxContextAncestors = 3

var irrelevantKeywords = []string{
	"privacy",
	"governance",
	"proxy",
	"cookie",
	"terms-of-service",
	"terms-of-use",
	"code-of-conduct",
	"bylaws",
	"charter",
	"committee",
	"board-of-directors",
	"whistleblower",
	"anti-corruption",
	"supplier",
}

var financialKeywords = []string{
	"annual report",
	"quarterly",
	"quarter",
	"earnings",
	"financial",
	"results",
	"report",
	"10-k",
	"10-q",
	"investor",
	"fiscal",
	"revenue",
	"income",
}

// htmlPage is a parsed document together with the URL it was loaded from.
type htmlPage struct {
	url  string
	base *url.URL
	doc  *goquery.Document
}

func parsePage(pageURL string, data []byte) (*htmlPage, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url %s: %w", pageURL, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse html from %s: %w", pageURL, err)
	}
	return &htmlPage{url: pageURL, base: base, doc: doc}, nil
}

// resolve makes href absolute against the page URL. Only http(s) results
// are returned.
func (p *htmlPage) resolve(href string) (string, bool) {
	resolved, err := p.base.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	switch resolved.Scheme {
	case "http", "https":
	default:
		return "", false
	}
	if resolved.Host == "" {
		return "", false
	}
	return resolved.String(), true
}

// ExtractCandidates parses one HTML document and returns its relevant PDF
// report links, deduplicated by absolute URL.
func ExtractCandidates(data []byte, baseURL string) ([]ReportCandidate, error) {
	page, err := parsePage(baseURL, data)
	if err != nil {
		return nil, err
	}
	return page.candidates(), nil
}

func (p *htmlPage) candidates() []ReportCandidate {
	seen := make(map[string]bool)
	var out []ReportCandidate

	p.doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" || !strings.Contains(strings.ToLower(href), ".pdf") {
			return
		}
		full, ok := p.resolve(href)
		if !ok || seen[full] {
			return
		}
		seen[full] = true

		text := collapseSpace(a.Text())
		if !isRelevant(text, href) || !isFinancial(text, href) {
			return
		}
		out = append(out, ReportCandidate{
			URL:                full,
			Href:               href,
			AnchorText:         text,
			SurroundingContext: surroundingContext(a),
		})
	})
	return out
}

// isRelevant is the exclusion gate: legal, governance and supplier documents
// are dropped even when they also look financial.
func isRelevant(text, href string) bool {
	return !containsAny(strings.ToLower(text+" "+href), irrelevantKeywords)
}

// isFinancial is the inclusion gate.
func isFinancial(text, href string) bool {
	return containsAny(strings.ToLower(text+" "+href), financialKeywords)
}

// surroundingContext gathers hints near a link: id/class/data-* of up to
// three enclosing blocks, headings of the nearest section, and the text of
// the enclosing list item or table row.
func surroundingContext(a *goquery.Selection) string {
	var parts []string

	parents := a.ParentsFiltered("div, section, li, tr, td, article")
	if parents.Length() > maxContextAncestors {
		parents = parents.Slice(0, maxContextAncestors)
	}
	for _, n := range parents.Nodes {
		parts = append(parts, hintAttrs(n)...)
	}

	if section := a.Closest("div, section, article"); section.Length() > 0 {
		section.Find("h1, h2, h3, h4").Each(func(_ int, h *goquery.Selection) {
			parts = append(parts, h.Text())
		})
	}

	if row := a.Closest("li, tr"); row.Length() > 0 {
		parts = append(parts, row.Text())
	}

	return collapseSpace(strings.Join(parts, " "))
}

func hintAttrs(n *html.Node) []string {
	var id, class string
	var data []string
	for _, attr := range n.Attr {
		switch {
		case attr.Key == "id":
			id = attr.Val
		case attr.Key == "class":
			class = attr.Val
		case strings.HasPrefix(attr.Key, "data-"):
			data = append(data, attr.Val)
		}
	}
	return append([]string{id, class}, data...)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// classifyCandidates turns candidates into reports.
func classifyCandidates(candidates []ReportCandidate) []ClassifiedReport {
	out := make([]ClassifiedReport, 0, len(candidates))
	for _, c := range candidates {
		cls := Classify(c.AnchorText, c.Href, c.SurroundingContext)
		out = append(out, ClassifiedReport{
			Title:   reportTitle(c.AnchorText, c.URL),
			URL:     c.URL,
			Type:    cls.Type,
			Year:    cls.Year,
			Quarter: cls.Quarter,
		})
	}
	return out
}
