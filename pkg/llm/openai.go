package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const defaultOpenAIURL = "https://api.openai.com/v1"

// OpenAIProvider speaks the chat completions API, which also covers
// OpenAI-compatible gateways when APIURL points elsewhere.
type OpenAIProvider struct {
	endpoint    endpoint
	model       string
	maxTokens   int
	temperature float64
}

func NewOpenAIProvider(cfg Config) *OpenAIProvider {
	base := strings.TrimRight(cfg.APIURL, "/")
	if base == "" {
		base = defaultOpenAIURL
	}
	header := http.Header{}
	if cfg.APIKey != "" {
		header.Set("Authorization", "Bearer "+cfg.APIKey)
	}
	return &OpenAIProvider{
		endpoint:    newEndpoint("openai", base+"/chat/completions", cfg, header),
		model:       cfg.Model,
		maxTokens:   cfg.maxTokens(),
		temperature: cfg.Temperature,
	}
}

func (p *OpenAIProvider) Complete(ctx context.Context, messages []Message) (Stream, error) {
	if p.model == "" {
		return nil, errors.New("openai model is required")
	}
	resp, err := p.endpoint.post(ctx, chatRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
		Stream:      true,
	})
	if err != nil {
		return nil, err
	}
	return newSSEStream(resp, decodeChatChunk), nil
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream"`
}

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func decodeChatChunk(data []byte) (Chunk, error) {
	var chunk chatChunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		return Chunk{}, fmt.Errorf("openai: decode chunk: %w", err)
	}
	if chunk.Error != nil {
		return Chunk{}, fmt.Errorf("openai: stream error: %s", chunk.Error.Message)
	}
	if len(chunk.Choices) == 0 {
		return Chunk{}, nil
	}
	return Chunk{Content: chunk.Choices[0].Delta.Content}, nil
}
