// Package summary produces short LLM summaries of financial reports linked
// from an investor-relations page, either HTML pages or PDF documents.
package summary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"irscout/internal/ircrawl"
	"irscout/pkg/logging"
)

const (
	// MaxInputChars bounds the report text handed to the summarizer.
	MaxInputChars = 80000
	// MaxPDFBytes bounds both uploaded and downloaded PDFs.
	MaxPDFBytes = 50 << 20

	DefaultFetchTimeout = 20 * time.Second
)

var (
	ErrMissingURL         = errors.New("url is required")
	ErrMissingFile        = errors.New("file is required")
	ErrInvalidURL         = errors.New("url must be an absolute http(s) URL")
	ErrUnsupportedContent = errors.New("pdf reports are summarized from the pdf endpoint")
	ErrEmptyContent       = errors.New("report has no readable text")
	ErrBlocked            = errors.New("site blocks automated access")
	ErrFetchFailed        = errors.New("failed to fetch report")
	ErrTooLarge           = errors.New("pdf exceeds 50MB")
	ErrInvalidPDF         = errors.New("not a readable pdf")
)

// Request asks for a summary of an HTML report page.
type Request struct {
	URL        string `json:"url"`
	Ticker     string `json:"ticker"`
	ReportType string `json:"reportType"`
}

// PDFRequest asks for a summary of a PDF, either downloaded from PDFURL or
// supplied in Data.
type PDFRequest struct {
	PDFURL     string `json:"pdfUrl"`
	Ticker     string `json:"ticker"`
	ReportType string `json:"reportType"`
	Data       []byte `json:"-"`
}

type Result struct {
	URL     string `json:"url,omitempty"`
	Summary string `json:"summary"`
}

// Service fetches a report, extracts its text and summarizes it. Summaries
// are not cached.
type Service struct {
	client       *http.Client
	summarizer   Summarizer
	logger       logging.Logger
	userAgent    string
	fetchTimeout time.Duration
}

type Option func(*Service)

func WithLogger(logger logging.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithUserAgent(ua string) Option {
	return func(s *Service) { s.userAgent = ua }
}

func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

func NewService(client *http.Client, summarizer Summarizer, opts ...Option) *Service {
	s := &Service{
		client:       client,
		summarizer:   summarizer,
		logger:       logging.NewDiscardLogger(),
		userAgent:    ircrawl.DefaultUserAgent,
		fetchTimeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize summarizes an HTML report page. PDFs are refused with
// ErrUnsupportedContent; SummarizePDF handles those.
func (s *Service) Summarize(ctx context.Context, req Request) (Result, error) {
	target, err := parseReportURL(req.URL)
	if err != nil {
		return Result{}, err
	}
	if strings.HasSuffix(strings.ToLower(target.Path), ".pdf") {
		return Result{}, ErrUnsupportedContent
	}

	// One request per summary; no retries.
	fetcher := ircrawl.NewFetcher(s.client, 1, s.fetchTimeout, s.userAgent, s.logger)
	res := fetcher.Fetch(ctx, target.String())
	switch {
	case res == nil:
		return Result{}, ErrFetchFailed
	case res.Blocked():
		return Result{}, ErrBlocked
	case !res.OK():
		return Result{}, fmt.Errorf("%w: status %d", ErrFetchFailed, res.StatusCode)
	}
	if isPDF(res.ContentType, res.Body) {
		return Result{}, ErrUnsupportedContent
	}

	summary, err := s.summarize(ctx, reportText(res.Body, target.String()), req.Ticker, req.ReportType)
	if err != nil {
		return Result{}, err
	}
	return Result{URL: target.String(), Summary: summary}, nil
}

// SummarizePDF summarizes an uploaded PDF, or downloads one from PDFURL
// when no data is supplied.
func (s *Service) SummarizePDF(ctx context.Context, req PDFRequest) (Result, error) {
	data := req.Data
	source := "upload"
	if data == nil {
		if strings.TrimSpace(req.PDFURL) == "" {
			return Result{}, ErrMissingURL
		}
		target, err := parseReportURL(req.PDFURL)
		if err != nil {
			return Result{}, err
		}
		source = target.String()
		if data, err = s.downloadPDF(ctx, source); err != nil {
			return Result{}, err
		}
	}
	if len(data) > MaxPDFBytes {
		return Result{}, ErrTooLarge
	}

	text, err := pdfText(data)
	if err != nil {
		return Result{}, err
	}
	summary, err := s.summarize(ctx, text, req.Ticker, req.ReportType)
	if err != nil {
		return Result{}, err
	}
	s.logger.WithField("source", source).WithField("pdf_bytes", len(data)).Debug("PDF summarized")

	res := Result{Summary: summary}
	if source != "upload" {
		res.URL = source
	}
	return res, nil
}

func (s *Service) summarize(ctx context.Context, text, ticker, reportType string) (string, error) {
	text = truncateRunes(text, MaxInputChars)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyContent
	}
	input := preamble(ticker, reportType) + text
	summary, err := s.summarizer.Summarize(ctx, input)
	if err != nil {
		return "", err
	}
	s.logger.WithFields(logging.Fields{
		"ticker":      ticker,
		"report_type": reportType,
		"input_size":  len(input),
	}).Info("Report summarized")
	return summary, nil
}

// downloadPDF makes one GET for a PDF, refusing bodies over MaxPDFBytes
// whether or not the server announces a length.
func (s *Service) downloadPDF(ctx context.Context, target string) ([]byte, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/pdf,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrBlocked
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	case resp.ContentLength > MaxPDFBytes:
		return nil, ErrTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxPDFBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if len(data) > MaxPDFBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

func parseReportURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMissingURL
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidURL
	}
	return u, nil
}

func isPDF(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "application/pdf") {
		return true
	}
	return bytes.HasPrefix(body, []byte("%PDF-"))
}

// reportLabel names the kind of report in the prompt.
func reportLabel(reportType string) string {
	switch strings.ToLower(strings.TrimSpace(reportType)) {
	case string(ircrawl.ReportAnnual):
		return "annual"
	case string(ircrawl.ReportQuarterly):
		return "quarterly"
	default:
		return "financial"
	}
}

func preamble(ticker, reportType string) string {
	var b strings.Builder
	label := reportLabel(reportType)
	article := "a"
	if label == "annual" {
		article = "an"
	}
	fmt.Fprintf(&b, "Text extracted from %s %s report", article, label)
	if t := strings.TrimSpace(ticker); t != "" {
		fmt.Fprintf(&b, " for %s", strings.ToUpper(t))
	}
	b.WriteString(".\n\n")
	return b.String()
}
