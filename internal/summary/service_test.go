package summary

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"irscout/pkg/llm"
)

type fakeSummarizer struct {
	mu     sync.Mutex
	inputs []string
	out    string
	err    error
}

func (f *fakeSummarizer) Summarize(_ context.Context, text string) (string, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, text)
	f.mu.Unlock()
	return f.out, f.err
}

func newReportServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/q3.html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><head><script>var x = 1;</script></head><body>
<nav>Home | Investors</nav>
<h1>Third Quarter 2023 Results</h1>
<p>Revenue grew 12% year over year.</p>
<div hidden>internal draft</div>
<table><tr><td>EPS</td><td>$1.02</td></tr></table>
</body></html>`))
		case "/report":
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF-1.7 ..."))
		case "/empty":
			_, _ = w.Write([]byte(`<html><body><script>1</script></body></html>`))
		case "/forbidden":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestServiceSummarize(t *testing.T) {
	server := newReportServer(t)
	summarizer := &fakeSummarizer{out: "- Revenue up 12%"}
	svc := NewService(server.Client(), summarizer)

	res, err := svc.Summarize(context.Background(), Request{URL: server.URL + "/q3.html", Ticker: "exm", ReportType: "quarterly"})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if res.Summary != "- Revenue up 12%" {
		t.Fatalf("unexpected summary %q", res.Summary)
	}
	input := summarizer.inputs[0]
	for _, want := range []string{"Text extracted from a quarterly report for EXM.", "# Third Quarter 2023 Results", "Revenue grew 12%", "EPS | $1.02"} {
		if !strings.Contains(input, want) {
			t.Fatalf("input %q missing %q", input, want)
		}
	}
	for _, unwanted := range []string{"var x", "internal draft", "Home | Investors"} {
		if strings.Contains(input, unwanted) {
			t.Fatalf("input %q should not contain %q", input, unwanted)
		}
	}
}

func TestServiceSummarizeErrors(t *testing.T) {
	server := newReportServer(t)

	tests := []struct {
		name string
		url  string
		want error
	}{
		{"missing url", "  ", ErrMissingURL},
		{"bad scheme", "ftp://example.com/r.html", ErrInvalidURL},
		{"pdf by extension", server.URL + "/files/annual.PDF", ErrUnsupportedContent},
		{"pdf by content type", server.URL + "/report", ErrUnsupportedContent},
		{"no text", server.URL + "/empty", ErrEmptyContent},
		{"blocked", server.URL + "/forbidden", ErrBlocked},
		{"not found", server.URL + "/missing", ErrFetchFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summarizer := &fakeSummarizer{out: "unused"}
			svc := NewService(server.Client(), summarizer)
			_, err := svc.Summarize(context.Background(), Request{URL: tt.url})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if len(summarizer.inputs) != 0 {
				t.Fatal("summarizer must not be called")
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	s := strings.Repeat("é", 10)
	got := truncateRunes(s, 4)
	if utf8.RuneCountInString(got) != 4 || !utf8.ValidString(got) {
		t.Fatalf("unexpected truncation %q", got)
	}
	if truncateRunes("abc", 10) != "abc" {
		t.Fatal("short strings must be untouched")
	}
}

type scriptedProvider struct {
	messages []llm.Message
	reply    string
}

func (p *scriptedProvider) Complete(_ context.Context, messages []llm.Message) (llm.Stream, error) {
	p.messages = messages
	return &onceStream{content: p.reply}, nil
}

type onceStream struct {
	content string
	done    bool
}

func (s *onceStream) Recv() (llm.Chunk, error) {
	if s.done {
		return llm.Chunk{}, io.EOF
	}
	s.done = true
	return llm.Chunk{Content: s.content}, nil
}

func (s *onceStream) Close() error { return nil }

func TestLLMSummarizer(t *testing.T) {
	provider := &scriptedProvider{reply: "  - one\n- two  "}
	got, err := NewLLMSummarizer(provider).Summarize(context.Background(), "report text")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if got != "- one\n- two" {
		t.Fatalf("unexpected summary %q", got)
	}
	if len(provider.messages) != 2 || provider.messages[0].Role != "system" || provider.messages[1].Content != "report text" {
		t.Fatalf("unexpected messages %+v", provider.messages)
	}
	if !strings.Contains(provider.messages[0].Content, "exactly 6 concise bullet points") {
		t.Fatalf("unexpected instructions %q", provider.messages[0].Content)
	}
}
