// Package watcher defines the shared domain types for the Craigslist
// keyword watcher.
package watcher

import (
	"errors"
	"fmt"
)

// ErrNoRecipient indicates that an alert had to be dispatched but no
// recipient address was configured. Raised at dispatch time so dry-run
// scans never need notifier configuration.
var ErrNoRecipient = errors.New("no recipient configured (set ALERT_TO)")

// Listing represents a single Craigslist post discovered on a search
// results page.
type Listing struct {
	ID    string // numeric post id if present, else the full URL
	Title string
	Link  string // absolute URL
}

// Summary holds the counters for one completed scan pass.
type Summary struct {
	TotalFound   int // unique listings discovered across all pages
	AlreadySeen  int // skipped because their id was in the seen-set
	ProcessedNew int // new listings evaluated this pass
	Matched      int // new listings whose body matched a keyword
	AlertsSent   int // alerts actually delivered (always 0 in dry-run)
}

// SiteRoot returns the root URL for a Craigslist region subdomain.
func SiteRoot(region string) string {
	return fmt.Sprintf("https://%s.craigslist.org/", region)
}

// SearchURL returns the search endpoint for a region and category.
func SearchURL(region, category string) string {
	return fmt.Sprintf("https://%s.craigslist.org/search/%s", region, category)
}
