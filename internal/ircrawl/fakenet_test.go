package ircrawl

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
)

// fakeNet routes requests by host to in-memory handlers so tests can use
// real-looking https://<domain> URLs. Unknown hosts fail like DNS errors.
type fakeNet struct {
	mu       sync.Mutex
	hosts    map[string]http.Handler
	requests []string
}

func newFakeNet() *fakeNet {
	return &fakeNet{hosts: make(map[string]http.Handler)}
}

func (f *fakeNet) handle(host string, h http.Handler) {
	f.hosts[host] = h
}

func (f *fakeNet) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req.URL.String())
	h, ok := f.hosts[req.URL.Host]
	f.mu.Unlock()
	if !ok {
		return nil, errors.New("no such host")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	resp := rec.Result()
	resp.Request = req
	return resp, nil
}

func (f *fakeNet) client() *http.Client {
	return &http.Client{Transport: f}
}

func (f *fakeNet) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeNet) requested() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// site serves fixed bodies by path; other paths are 404.
type site map[string]string

func (s site) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "" {
		path = "/"
	}
	body, ok := s[path]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(body))
}

func statusHandler(code int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
	})
}

type fakeRenderer struct {
	mu      sync.Mutex
	html    string
	err     error
	panics  bool
	targets []string
}

func (f *fakeRenderer) Render(_ context.Context, pageURL string) (string, error) {
	f.mu.Lock()
	f.targets = append(f.targets, pageURL)
	f.mu.Unlock()
	if f.panics {
		panic("renderer exploded")
	}
	return f.html, f.err
}

func (f *fakeRenderer) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.targets...)
}

// ctxTransport fails requests whose context is already done, the way a real
// transport does, and otherwise defers to next.
type ctxTransport struct {
	next http.RoundTripper
}

func (t ctxTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	return t.next.RoundTrip(req)
}
