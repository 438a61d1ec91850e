// Package scraper handles fetching and parsing Craigslist search and
// posting pages.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"craigslist-watcher/pkg/watcher"
)

// blockedMarker appears in the HTML block page Craigslist serves when
// it decides a client is a bot, regardless of HTTP status.
const blockedMarker = "Your request has been blocked"

// BlockedError indicates Craigslist served a block page instead of
// real results.
type BlockedError struct {
	URL string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("craigslist returned a blocked page: %s", e.URL)
}

// IsBlockedError checks if an error is a block-page error.
func IsBlockedError(err error) bool {
	var blocked *BlockedError
	return errors.As(err, &blocked)
}

// Scraper fetches and parses Craigslist pages.
type Scraper struct {
	client *http.Client
	logger *slog.Logger
}

// New creates a new scraper.
func New(client *http.Client, logger *slog.Logger) *Scraper {
	return &Scraper{
		client: client,
		logger: logger,
	}
}

// SearchResults fetches one page of search results and parses it into
// listings. Query parameters are appended to searchURL.
func (s *Scraper) SearchResults(ctx context.Context, searchURL, siteRoot string, params url.Values) ([]watcher.Listing, error) {
	pageURL := searchURL
	if len(params) > 0 {
		pageURL = searchURL + "?" + params.Encode()
	}

	html, err := s.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	listings := parseSearchResults(html, siteRoot)
	s.logger.Info("Search page parsed",
		"url", pageURL,
		"listings_found", len(listings))

	return listings, nil
}

// PostBody fetches an individual posting page and extracts its plain
// text body. A page with missing or changed structure yields an empty
// string, not an error.
func (s *Scraper) PostBody(ctx context.Context, postURL string) (string, error) {
	html, err := s.fetch(ctx, postURL)
	if err != nil {
		return "", err
	}
	return extractPostBody(html), nil
}

// fetch performs a GET and returns the response body as text.
func (s *Scraper) fetch(ctx context.Context, pageURL string) (string, error) {
	var body string
	var blockedErr *BlockedError

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
			}

			// Browser-like headers reduce bot-filter false positives.
			req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0 Safari/537.36")
			req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
			req.Header.Set("Accept-Language", "en-US,en;q=0.9")

			startTime := time.Now()
			resp, err := s.client.Do(req)
			duration := time.Since(startTime)

			if err != nil {
				s.logger.Warn("HTTP request failed, will retry",
					"url", pageURL,
					"duration_ms", duration.Milliseconds(),
					"error", err)
				return err
			}
			defer func() {
				if closeErr := resp.Body.Close(); closeErr != nil {
					s.logger.Warn("Failed to close response body", "error", closeErr)
				}
			}()

			s.logger.Info("HTTP request completed",
				"url", pageURL,
				"status_code", resp.StatusCode,
				"duration_ms", duration.Milliseconds(),
				"content_length", resp.ContentLength)

			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				return fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, pageURL)
			}

			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("read response body: %w", err)
			}

			text := string(data)
			if strings.Contains(text, blockedMarker) {
				s.logger.Warn("Block page detected", "url", pageURL)
				blockedErr = &BlockedError{URL: pageURL}
				return retry.Unrecoverable(blockedErr)
			}

			body = text
			return nil
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.MaxDelay(30*time.Second),
		retry.MaxJitter(5*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Info("Retrying fetch after error", "attempt", n, "url", pageURL, "error", err)
		}),
		retry.RetryIf(func(err error) bool {
			// A block page will not clear on retry within one pass.
			return !IsBlockedError(err)
		}),
	)

	if err != nil {
		// Surface the typed error so callers can classify a block page.
		if blockedErr != nil {
			return "", blockedErr
		}
		return "", fmt.Errorf("after retries: %w", err)
	}

	return body, nil
}
