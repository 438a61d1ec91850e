// Package scan drives one full scan pass over Craigslist search
// results: paginated fetch, cross-page dedupe, per-listing body fetch
// and keyword match, alerting, and seen-state persistence.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"craigslist-watcher/pkg/watcher"
	"craigslist-watcher/seen"
)

// Scraper interface for fetching and parsing Craigslist pages.
type Scraper interface {
	SearchResults(ctx context.Context, searchURL, siteRoot string, params url.Values) ([]watcher.Listing, error)
	PostBody(ctx context.Context, postURL string) (string, error)
}

// Store interface for seen-state persistence.
type Store interface {
	Load() seen.Set
	Save(set seen.Set) error
}

// Matcher interface for the keyword predicate.
type Matcher interface {
	Match(text string) (term string, ok bool)
}

// Notifier interface for alert delivery.
type Notifier interface {
	SendAlert(ctx context.Context, subject, body string) error
}

// Config holds the parameters for a scan pass.
type Config struct {
	Region   string // Craigslist region subdomain, e.g. "boston"
	Category string // search section path, e.g. "gms"
	Query    string // optional free-text filter
	Pages    int    // search pages per pass (minimum 1)
	PageSize int    // pagination stride for the "s" offset parameter
	Sleep    time.Duration
	DryRun   bool
}

// Monitor runs scan passes. One pass is strictly sequential: every
// network request waits on the politeness limiter first, which keeps
// ordering deterministic and doubles as the cancellation point.
type Monitor struct {
	scraper  Scraper
	store    Store
	matcher  Matcher
	notifier Notifier
	limiter  *rate.Limiter
	logger   *slog.Logger
	out      io.Writer
	cfg      Config
}

// New creates a new scan monitor.
func New(scraper Scraper, store Store, matcher Matcher, notifier Notifier, cfg Config, logger *slog.Logger) *Monitor {
	return &Monitor{
		scraper:  scraper,
		store:    store,
		matcher:  matcher,
		notifier: notifier,
		limiter:  rate.NewLimiter(rate.Every(cfg.Sleep), 1),
		logger:   logger,
		out:      os.Stdout,
		cfg:      cfg,
	}
}

// Run executes a single scan pass and returns its summary.
//
// A failed search-page fetch (non-2xx or block page) aborts the whole
// pass before anything is persisted, so listings from earlier pages of
// an aborted pass are re-evaluated next time. A failed listing fetch
// only skips that listing, and the listing stays marked seen: a
// permanently broken post must not be retried forever.
func (m *Monitor) Run(ctx context.Context) (*watcher.Summary, error) {
	searchURL := watcher.SearchURL(m.cfg.Region, m.cfg.Category)
	siteRoot := watcher.SiteRoot(m.cfg.Region)

	seenSet := m.store.Load()
	sum := &watcher.Summary{}

	m.logger.Info("Scan pass starting",
		"search_url", searchURL,
		"pages", m.cfg.Pages,
		"seen_ids", len(seenSet),
		"dry_run", m.cfg.DryRun)

	// Fetching-Pages: page 0 has no offset; later pages use s=<offset>.
	var all []watcher.Listing
	pages := m.cfg.Pages
	if pages < 1 {
		pages = 1
	}
	for page := range pages {
		if err := m.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		params := url.Values{}
		params.Set("sort", "date")
		if m.cfg.Query != "" {
			params.Set("query", m.cfg.Query)
		}
		if offset := page * m.cfg.PageSize; offset > 0 {
			params.Set("s", strconv.Itoa(offset))
		}

		listings, err := m.scraper.SearchResults(ctx, searchURL, siteRoot, params)
		if err != nil {
			return nil, fmt.Errorf("fetch search page %d: %w", page, err)
		}
		all = append(all, listings...)
	}

	// Deduping: pagination windows overlap, so merge by id with the
	// first occurrence winning.
	byID := make(map[string]bool, len(all))
	unique := make([]watcher.Listing, 0, len(all))
	for _, listing := range all {
		if byID[listing.ID] {
			continue
		}
		byID[listing.ID] = true
		unique = append(unique, listing)
	}
	sum.TotalFound = len(unique)

	// Per-Listing-Loop.
	for _, listing := range unique {
		if seenSet.Has(listing.ID) {
			sum.AlreadySeen++
			continue
		}

		sum.ProcessedNew++
		// Mark seen before the detail fetch so a crash mid-fetch
		// cannot cause the same listing to be retried forever.
		seenSet.Add(listing.ID)

		if err := m.limiter.Wait(ctx); err != nil {
			// Cancelled mid-loop: everything marked so far stays seen.
			if saveErr := m.store.Save(seenSet); saveErr != nil {
				m.logger.Error("Failed to save seen-state on cancellation", "error", saveErr)
			}
			return sum, err
		}

		body, err := m.scraper.PostBody(ctx, listing.Link)
		if err != nil {
			m.logger.Warn("Skipping listing, could not fetch post",
				"url", listing.Link,
				"error", err)
			continue
		}
		if body == "" {
			// Missing posting body: nothing to match against.
			continue
		}

		term, ok := m.matcher.Match(body)
		if !ok {
			continue
		}
		sum.Matched++

		if m.cfg.DryRun {
			fmt.Fprintf(m.out, "[dry-run] match %q -> %s\n", term, listing.Link)
			continue
		}

		subject := "Craigslist match: " + term
		msg := fmt.Sprintf("%s\n%s\n\nMatched: %s\n", listing.Title, listing.Link, term)

		if err := m.notifier.SendAlert(ctx, subject, msg); err != nil {
			if errors.Is(err, watcher.ErrNoRecipient) {
				// Configuration error, not a delivery hiccup.
				return sum, err
			}
			// Delivery failure is per-alert: the listing stays seen
			// and the pass moves on. Alerts are not retried.
			m.logger.Error("Alert delivery failed",
				"url", listing.Link,
				"error", err)
			continue
		}

		fmt.Fprintf(m.out, "[alert] match %q -> %s\n", term, listing.Link)
		sum.AlertsSent++
	}

	// Persisting: unconditionally, even when zero alerts went out.
	if err := m.store.Save(seenSet); err != nil {
		return sum, fmt.Errorf("save seen-state: %w", err)
	}

	m.summarize(sum)
	return sum, nil
}

// RunLoop reruns passes on a fixed interval. Passes never overlap:
// each one fully completes, including persistence, before the next
// may begin. Pass-level failures are logged and the loop continues; a
// configuration error or context cancellation stops it.
func (m *Monitor) RunLoop(ctx context.Context, interval time.Duration) error {
	for {
		if _, err := m.Run(ctx); err != nil {
			if errors.Is(err, watcher.ErrNoRecipient) || ctx.Err() != nil {
				return err
			}
			m.logger.Error("Scan pass failed", "error", err)
		}

		m.logger.Info("Sleeping until next pass", "interval", interval.String())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// summarize emits exactly one human-readable line per completed pass,
// so the operator never faces a silent exit.
func (m *Monitor) summarize(sum *watcher.Summary) {
	switch {
	case sum.ProcessedNew == 0:
		fmt.Fprintf(m.out, "No new posts to scan (found %d, already seen %d); nothing to send.\n",
			sum.TotalFound, sum.AlreadySeen)
	case sum.Matched == 0 && m.cfg.DryRun:
		fmt.Fprintf(m.out, "[dry-run] Scanned %d new posts (found %d, already seen %d); no keyword matches; nothing would be sent.\n",
			sum.ProcessedNew, sum.TotalFound, sum.AlreadySeen)
	case sum.Matched == 0:
		fmt.Fprintf(m.out, "Scanned %d new posts (found %d, already seen %d); no keyword matches; nothing to send via email.\n",
			sum.ProcessedNew, sum.TotalFound, sum.AlreadySeen)
	case m.cfg.DryRun:
		fmt.Fprintf(m.out, "[dry-run] Scanned %d new posts; matches=%d; would-send=%d.\n",
			sum.ProcessedNew, sum.Matched, sum.Matched)
	default:
		fmt.Fprintf(m.out, "Scanned %d new posts; matches=%d; emails-sent=%d.\n",
			sum.ProcessedNew, sum.Matched, sum.AlertsSent)
	}
}
