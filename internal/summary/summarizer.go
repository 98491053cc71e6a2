package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"irscout/pkg/llm"
)

// Summarizer turns report text into a short summary.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

const summaryInstructions = `You analyze financial reports published by public companies.
Summarize the report you are given in exactly 6 concise bullet points, covering:
1. Key financial results (revenue, profit, margins)
2. Business highlights and achievements
3. Segment performance or product updates
4. Risks or challenges mentioned
5. Forward-looking guidance or outlook
6. Notable strategic initiatives or changes
Return only the 6 bullet points.`

// LLMSummarizer asks an LLM provider for a six-bullet summary.
type LLMSummarizer struct {
	provider llm.Provider
}

func NewLLMSummarizer(provider llm.Provider) *LLMSummarizer {
	return &LLMSummarizer{provider: provider}
}

func (s *LLMSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if s.provider == nil {
		return "", errors.New("no LLM provider configured")
	}
	stream, err := s.provider.Complete(ctx, []llm.Message{
		{Role: "system", Content: summaryInstructions},
		{Role: "user", Content: text},
	})
	if err != nil {
		return "", fmt.Errorf("request summary: %w", err)
	}
	out, err := llm.Collect(stream)
	if err != nil {
		return "", fmt.Errorf("read summary: %w", err)
	}
	return strings.TrimSpace(out), nil
}
