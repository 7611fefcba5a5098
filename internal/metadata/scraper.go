package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	DefaultFetchTimeout = 15 * time.Second

	// Book pages are a few hundred KB; anything past this is not a book page.
	maxPageSize = 5 << 20
)

// Scraper downloads a book info page and extracts candidate fields from it.
type Scraper struct {
	httpClient *http.Client
	userAgent  string
	extractor  Extractor
}

// NewScraper creates a scraper. Zero values fall back to the defaults; the
// timeout covers the whole request including reading the body.
func NewScraper(timeout time.Duration, userAgent string, extractor Extractor) *Scraper {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if extractor == nil {
		extractor = NewPatternExtractor()
	}

	return &Scraper{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
		extractor: extractor,
	}
}

// Fetch issues one GET to sourceURL and extracts book fields from the body.
func (s *Scraper) Fetch(ctx context.Context, sourceURL string) (*Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}

	candidate := s.extractor.Extract(string(body))
	return &candidate, nil
}
