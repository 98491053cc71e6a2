package ircrawl

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Years outside 2010-2029 are not recognised.
const yearExpr = `20[12]\d`

var (
	quarterPattern     = regexp.MustCompile(`(?i)q([1-4])`)
	yearPattern        = regexp.MustCompile(yearExpr)
	quarterYearPattern = regexp.MustCompile(`(?i)q[1-4][\s\-_.]*(` + yearExpr + `)`)
	yearQuarterPattern = regexp.MustCompile(`(?i)(` + yearExpr + `)[\s\-_.]*q[1-4]`)
)

var quarterPhrases = []struct {
	phrase  string
	quarter int
}{
	{"first quarter", 1},
	{"second quarter", 2},
	{"third quarter", 3},
	{"fourth quarter", 4},
}

var (
	annualKeywords    = []string{"annual", "yearly", "full year", "year-end", "10-k"}
	quarterlyKeywords = []string{"quarterly", "quarter", "10-q"}
)

// Classification is the classifier output. Year and Quarter are zero when
// no rule matched.
type Classification struct {
	Type    ReportType
	Year    int
	Quarter int
}

// classifyInput holds the lowercased sources every rule reads from.
type classifyInput struct {
	text     string
	filename string
	href     string
	context  string
	combined string
}

func newClassifyInput(text, href, context string) classifyInput {
	in := classifyInput{
		text:     strings.ToLower(text),
		filename: strings.ToLower(filenameFromHref(href)),
		href:     strings.ToLower(href),
		context:  strings.ToLower(context),
	}
	in.combined = strings.Join([]string{in.text, in.href, in.context}, " ")
	return in
}

type rule struct {
	name  string
	match func(in classifyInput) int
}

// quarterRules run top to bottom; the first non-zero result wins.
var quarterRules = []rule{
	{"anchor-text", func(in classifyInput) int { return quarterIn(in.text) }},
	{"filename", func(in classifyInput) int { return quarterIn(in.filename) }},
	{"href", func(in classifyInput) int { return quarterIn(in.href) }},
	{"context", func(in classifyInput) int { return quarterIn(in.context) }},
}

// yearRules run top to bottom; the first non-zero result wins. The full
// href is never searched for a bare year: upload-date path segments
// ("/2019/03/") would outrank the document's own year.
var yearRules = []rule{
	{"quarter-adjacent", func(in classifyInput) int { return quarterAdjacentYear(in.text, in.filename) }},
	{"anchor-text", func(in classifyInput) int { return bareYear(in.text) }},
	{"filename", func(in classifyInput) int { return bareYear(in.filename) }},
	{"context-quarter-adjacent", func(in classifyInput) int { return quarterAdjacentYear(in.context) }},
	{"context", func(in classifyInput) int { return bareYear(in.context) }},
}

type typeRule struct {
	reportType ReportType
	match      func(in classifyInput, quarter int) bool
}

// Annual is checked first, so "Q4 and Full Year 2023 Results" is annual.
var typeRules = []typeRule{
	{ReportAnnual, func(in classifyInput, _ int) bool { return containsAny(in.combined, annualKeywords) }},
	{ReportQuarterly, func(in classifyInput, quarter int) bool {
		return quarter != 0 || containsAny(in.combined, quarterlyKeywords)
	}},
}

// Classify assigns a report type, year and quarter from a link's anchor
// text, raw href and surrounding page context. It is a pure function.
func Classify(text, href, context string) Classification {
	in := newClassifyInput(text, href, context)
	c := Classification{
		Type:    ReportOther,
		Quarter: firstMatch(quarterRules, in),
		Year:    firstMatch(yearRules, in),
	}
	for _, tr := range typeRules {
		if tr.match(in, c.Quarter) {
			c.Type = tr.reportType
			break
		}
	}
	return c
}

func firstMatch(rules []rule, in classifyInput) int {
	for _, r := range rules {
		if v := r.match(in); v != 0 {
			return v
		}
	}
	return 0
}

func quarterIn(src string) int {
	if src == "" {
		return 0
	}
	if m := quarterPattern.FindStringSubmatch(src); m != nil {
		return atoi(m[1])
	}
	for _, qp := range quarterPhrases {
		if strings.Contains(src, qp.phrase) {
			return qp.quarter
		}
	}
	return 0
}

func quarterAdjacentYear(sources ...string) int {
	for _, src := range sources {
		if m := quarterYearPattern.FindStringSubmatch(src); m != nil {
			return atoi(m[1])
		}
		if m := yearQuarterPattern.FindStringSubmatch(src); m != nil {
			return atoi(m[1])
		}
	}
	return 0
}

func bareYear(src string) int {
	return atoi(yearPattern.FindString(src))
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// filenameFromHref returns the decoded last path segment of href, which may
// be relative.
func filenameFromHref(href string) string {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return lastSegment(href)
	}
	name := lastSegment(u.Path)
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}

func lastSegment(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

// reportTitle falls back from the anchor text to the file name without its
// .pdf suffix, then to "Report".
func reportTitle(anchorText, resolvedURL string) string {
	if anchorText != "" {
		return anchorText
	}
	name := filenameFromHref(resolvedURL)
	if i := strings.Index(strings.ToLower(name), ".pdf"); i >= 0 {
		name = name[:i] + name[i+len(".pdf"):]
	}
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return "Report"
}
