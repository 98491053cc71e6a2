package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultOllamaURL = "http://localhost:11434"

// OllamaBaseURL is the server root for apiURL. A trailing /v1 (the
// OpenAI-compatible prefix) is dropped so either form of LLM_API_URL works.
func OllamaBaseURL(apiURL string) string {
	base := strings.TrimRight(strings.TrimSpace(apiURL), "/")
	base = strings.TrimSuffix(base, "/v1")
	if base == "" {
		return defaultOllamaURL
	}
	return base
}

// OllamaProvider uses Ollama's native chat API so the token limit maps to
// num_predict.
type OllamaProvider struct {
	endpoint    endpoint
	model       string
	maxTokens   int
	temperature float64
}

func NewOllamaProvider(cfg Config) *OllamaProvider {
	return &OllamaProvider{
		endpoint:    newEndpoint("ollama", OllamaBaseURL(cfg.APIURL)+"/api/chat", cfg, nil),
		model:       cfg.Model,
		maxTokens:   cfg.maxTokens(),
		temperature: cfg.Temperature,
	}
}

func (p *OllamaProvider) Complete(ctx context.Context, messages []Message) (Stream, error) {
	if p.model == "" {
		return nil, errors.New("ollama model is required")
	}
	resp, err := p.endpoint.post(ctx, ollamaRequest{
		Model:    p.model,
		Messages: messages,
		Stream:   true,
		Options: ollamaOptions{
			NumPredict:  p.maxTokens,
			Temperature: p.temperature,
		},
	})
	if err != nil {
		return nil, err
	}
	return &ndjsonStream{resp: resp, scanner: newLineScanner(resp.Body)}, nil
}

type ollamaRequest struct {
	Model    string        `json:"model"`
	Messages []Message     `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	NumPredict  int     `json:"num_predict"`
	Temperature float64 `json:"temperature"`
}

type ollamaChunk struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error,omitempty"`
}

// ndjsonStream reads Ollama's one-object-per-line stream.
type ndjsonStream struct {
	resp    *http.Response
	scanner *bufio.Scanner
	done    bool
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64<<10), 1<<20)
	return s
}

func (s *ndjsonStream) Close() error {
	return s.resp.Body.Close()
}

func (s *ndjsonStream) Recv() (Chunk, error) {
	for !s.done && s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}
		var chunk ollamaChunk
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			return Chunk{}, fmt.Errorf("ollama: decode chunk: %w", err)
		}
		if chunk.Error != "" {
			return Chunk{}, fmt.Errorf("ollama: stream error: %s", chunk.Error)
		}
		s.done = chunk.Done
		if chunk.Message.Content != "" {
			return Chunk{Content: chunk.Message.Content}, nil
		}
	}
	if err := s.scanner.Err(); err != nil {
		return Chunk{}, fmt.Errorf("ollama: read stream: %w", err)
	}
	return Chunk{}, io.EOF
}
