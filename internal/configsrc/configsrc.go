// Package configsrc fetches configuration documents (menu catalog, roster)
// from a file path or an HTTP URL.
package configsrc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Source yields the raw bytes of one configuration document.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	// Name identifies the source in logs and cache keys.
	Name() string
}

// Open picks a Source for location: http(s) URLs are fetched over HTTP,
// anything else is read as a file path. An empty location yields nil.
func Open(location string) Source {
	switch {
	case location == "":
		return nil
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return NewHTTP(location)
	default:
		return File{Path: location}
	}
}

// File reads a document from disk.
type File struct {
	Path string
}

func (f File) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Path, err)
	}
	return data, nil
}

func (f File) Name() string { return "file:" + f.Path }

// HTTP fetches a document with a GET request.
type HTTP struct {
	url        string
	httpClient *http.Client
}

// NewHTTP creates an HTTP source for url.
func NewHTTP(url string) *HTTP {
	return &HTTP{
		url:        url,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (h *HTTP) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, fmt.Errorf("configsrc: create request: %w", err)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("configsrc: %s: %w", h.url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("configsrc: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("configsrc: %s returned %d", h.url, resp.StatusCode)
	}
	return body, nil
}

func (h *HTTP) Name() string { return h.url }

// Func adapts a function into a Source.
type Func struct {
	Label string
	Fn    func(ctx context.Context) ([]byte, error)
}

func (f Func) Fetch(ctx context.Context) ([]byte, error) { return f.Fn(ctx) }

func (f Func) Name() string { return f.Label }
