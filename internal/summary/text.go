package summary

import (
	"bytes"
	"net/url"
	"strings"

	readability "codeberg.org/readeck/go-readability/v2"
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

// minArticleWords is the smallest readability result accepted before the
// whole-document walker is used instead.
const minArticleWords = 50

// skippedTags never contribute report text.
var skippedTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"nav": true, "header": true, "footer": true, "aside": true, "form": true,
	"svg": true, "iframe": true,
}

// skippedRoles are landmark roles for page chrome.
var skippedRoles = map[string]bool{
	"navigation": true, "banner": true, "complementary": true, "contentinfo": true,
}

// reportText extracts LLM-ready text from an HTML report. The main article
// is isolated with readability and rendered as markdown so tables and
// headings survive; short or failed extractions fall back to walking the
// whole document.
func reportText(data []byte, pageURL string) string {
	base, _ := url.Parse(pageURL)
	article, err := readability.FromReader(bytes.NewReader(data), base)
	if err == nil && article.Node != nil {
		if md, err := htmltomarkdown.ConvertNode(article.Node); err == nil {
			if text := normalizeContent(string(md)); wordCount(text) >= minArticleWords {
				return text
			}
		}
		var buf bytes.Buffer
		if article.RenderText(&buf) == nil {
			if text := normalizeContent(buf.String()); wordCount(text) >= minArticleWords {
				return text
			}
		}
	}

	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	w := &textWalker{}
	w.walk(doc)
	return normalizeContent(w.b.String())
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// textWalker flattens a document into blocks. Headings become markdown
// headings and table cells are joined with " | " so figures stay next to
// their labels.
type textWalker struct {
	b strings.Builder
}

func (w *textWalker) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			w.b.WriteString(text)
			w.b.WriteByte(' ')
		}
		return
	case html.ElementNode:
		if hidden(n) {
			return
		}
		switch tag := n.Data; tag {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			w.b.WriteString("\n\n" + strings.Repeat("#", int(tag[1]-'0')) + " ")
		case "p", "div", "section", "article", "main", "ul", "ol", "li", "table", "pre", "blockquote":
			w.b.WriteString("\n\n")
		case "tr", "br":
			w.b.WriteByte('\n')
		case "td", "th":
			if prevElement(n) != nil {
				w.b.WriteString("| ")
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func prevElement(n *html.Node) *html.Node {
	for p := n.PrevSibling; p != nil; p = p.PrevSibling {
		if p.Type == html.ElementNode {
			return p
		}
	}
	return nil
}

func hidden(n *html.Node) bool {
	if skippedTags[n.Data] {
		return true
	}
	for _, a := range n.Attr {
		switch {
		case a.Key == "hidden":
			return true
		case a.Key == "aria-hidden" && a.Val == "true":
			return true
		case a.Key == "role" && skippedRoles[a.Val]:
			return true
		}
	}
	return false
}

// normalizeContent trims every line and collapses runs of blank lines.
func normalizeContent(content string) string {
	var out []string
	blank := false
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
