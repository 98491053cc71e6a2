package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody caps how much of a failed response ends up in the error.
const maxErrorBody = 64 << 10

// endpoint is one provider's HTTP surface.
type endpoint struct {
	name   string
	client *http.Client
	url    string
	header http.Header
}

func newEndpoint(name, url string, cfg Config, header http.Header) endpoint {
	if header == nil {
		header = http.Header{}
	}
	header.Set("Content-Type", "application/json")
	return endpoint{
		name:   name,
		client: &http.Client{Timeout: cfg.timeout()},
		url:    url,
		header: header,
	}
}

// post sends body as JSON and hands back the response once the provider
// answers 2xx. The caller owns the body.
func (e endpoint) post(ctx context.Context, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal request: %w", e.name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", e.name, err)
	}
	req.Header = e.header.Clone()

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", e.name, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%s: unexpected status %s: %s", e.name, resp.Status, strings.TrimSpace(string(msg)))
	}
	return resp, nil
}
