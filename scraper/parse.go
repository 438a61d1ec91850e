package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"craigslist-watcher/pkg/watcher"
)

// Typical post URLs end in /<post_id>.html
var postIDRe = regexp.MustCompile(`/(\d+)\.html(?:\?|$)`)

// listingID extracts the numeric post id from a listing URL. URLs
// without a numeric id fall back to the URL itself, which still
// yields a stable unique identifier.
func listingID(link string) string {
	if m := postIDRe.FindStringSubmatch(link); m != nil {
		return m[1]
	}
	return link
}

// parseSearchResults extracts listings from one search results page.
//
// Craigslist markup has changed over time, so parsing is layered:
//   - newer layout: li.cl-static-search-result
//   - older layout: li.result-row
//   - fallback: scan every anchor for plausible .html post links
//
// Malformed or empty markup never raises; worst case is an empty
// slice. Results are deduplicated by resolved link within this call.
func parseSearchResults(html, siteRoot string) []watcher.Listing {
	root, err := url.Parse(siteRoot)
	if err != nil {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var listings []watcher.Listing
	seenLinks := make(map[string]bool)

	add := func(href, titleText string) {
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := root.ResolveReference(ref)
		link := resolved.String()

		// Only consider actual post pages on the same site.
		if !strings.HasSuffix(link, ".html") {
			return
		}
		if !strings.EqualFold(resolved.Host, root.Host) {
			return
		}
		if seenLinks[link] {
			return
		}
		seenLinks[link] = true

		title := squashSpace(titleText)
		if title == "" {
			title = "Craigslist match"
		}

		listings = append(listings, watcher.Listing{
			ID:    listingID(link),
			Title: title,
			Link:  link,
		})
	}

	rows := doc.Find("li.cl-static-search-result")
	if rows.Length() == 0 {
		rows = doc.Find("li.result-row")
	}

	if rows.Length() > 0 {
		rows.Each(func(_ int, row *goquery.Selection) {
			a := row.Find("a[href]").First()
			href, ok := a.Attr("href")
			if !ok {
				return
			}
			add(href, a.Text())
		})
		return listings
	}

	// Final fallback: every anchor on the page is a candidate; the
	// suffix and same-host filters remove most of the noise.
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		add(href, a.Text())
	})

	return listings
}

// extractPostBody extracts the posting body text from an individual
// post page. Craigslist keeps the body in <section id="postingbody">;
// if the structure changed or the body is missing, returns "".
func extractPostBody(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	body := doc.Find("section#postingbody").First()
	if body.Length() == 0 {
		return ""
	}

	text := squashSpace(body.Text())
	// Craigslist sometimes prepends this boilerplate phrase.
	text = strings.ReplaceAll(text, "QR Code Link to This Post", "")
	return strings.TrimSpace(text)
}

// squashSpace collapses all runs of whitespace to single spaces and
// trims the ends.
func squashSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
