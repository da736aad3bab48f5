package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Source opens the raw bytes of a sales document.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Name() string
}

// HTTPConfig configures the remote source.
type HTTPConfig struct {
	URL        string
	HTTPClient *http.Client
}

// HTTPSource downloads the document from a URL.
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource builds a source for remote spreadsheets or CSV exports.
func NewHTTPSource(cfg HTTPConfig) (*HTTPSource, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("dataset: url is required")
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPSource{url: DriveDownloadURL(cfg.URL), client: client}, nil
}

// Name returns the download URL.
func (s *HTTPSource) Name() string { return s.url }

// Open performs a single GET request. Non-2xx responses are errors.
func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("dataset: build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dataset: http request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("dataset: remote error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp.Body, nil
}

// FileSource reads the document from local disk.
type FileSource struct {
	Path string
}

// Name returns the file path.
func (s FileSource) Name() string { return s.Path }

// Open opens the file.
func (s FileSource) Open(context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.Path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", s.Path, err)
	}
	return f, nil
}

// DriveDownloadURL rewrites Google Drive and Sheets share links into their
// direct download form. Other URLs are returned unchanged.
func DriveDownloadURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	if u.Host != "docs.google.com" && u.Host != "drive.google.com" {
		return raw
	}
	if u.Path == "/uc" {
		return raw
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, part := range parts {
		if part == "d" && i+1 < len(parts) && parts[i+1] != "" {
			return "https://drive.google.com/uc?export=download&id=" + parts[i+1]
		}
	}
	return raw
}
