package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"plangenie/internal/models"
)

const maxCatalogBytes = 10 * 1024 * 1024

// Source fetches the raw catalog document.
type Source interface {
	Fetch(ctx context.Context) (*models.RawCatalog, error)
	Name() string
}

// HTTPSource fetches the catalog with a GET request.
type HTTPSource struct {
	url       string
	client    *http.Client
	userAgent string
}

// NewHTTPSource creates a source for the given URL. Per-attempt timeouts are
// applied by the Store through the request context.
func NewHTTPSource(url string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPSource{url: url, client: client, userAgent: "PlanGenie/2.0"}
}

// Name returns the catalog URL.
func (s *HTTPSource) Name() string { return s.url }

// Fetch downloads and decodes the catalog.
func (s *HTTPSource) Fetch(ctx context.Context) (*models.RawCatalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch catalog: HTTP %d", resp.StatusCode)
	}

	var raw models.RawCatalog
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxCatalogBytes)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &raw, nil
}

// FileSource reads the catalog from a local JSON file.
type FileSource struct {
	path string
}

// NewFileSource creates a source backed by path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name returns the file path.
func (s *FileSource) Name() string { return s.path }

// Path returns the watched file path.
func (s *FileSource) Path() string { return s.path }

// Fetch reads and decodes the file.
func (s *FileSource) Fetch(ctx context.Context) (*models.RawCatalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var raw models.RawCatalog
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog file: %w", err)
	}
	return &raw, nil
}
