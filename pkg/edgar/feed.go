package edgar

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"github.com/mmcdole/gofeed"
)

// FeedEntry is one item of a company's EDGAR Atom filing feed.
type FeedEntry struct {
	Title           string `json:"title"`
	AccessionNumber string `json:"accession_number"`
	Link            string `json:"link"`
	Updated         string `json:"updated"`
}

var accessionRe = regexp.MustCompile(`\d{10}-\d{2}-\d{6}`)

// FilingFeed returns entries from the company's browse-edgar Atom feed,
// optionally filtered server-side by form type. The feed is a lightweight
// metadata-only view of recent filings; it carries no report dates and no
// document content, which is why the locators use the submissions JSON
// instead. Useful for operator tooling and freshness checks.
func (c *Client) FilingFeed(ctx context.Context, cik, formType string, limit int) ([]FeedEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	q := url.Values{}
	q.Set("action", "getcompany")
	q.Set("CIK", cik)
	q.Set("output", "atom")
	q.Set("count", strconv.Itoa(limit))
	if formType != "" {
		q.Set("type", formType)
	}
	feedURL := c.cfg.BrowseURL + "?" + q.Encode()

	body, err := c.http.Get(ctx, feedURL, "application/atom+xml")
	if err != nil {
		return nil, fmt.Errorf("fetch filing feed for CIK %s: %w", cik, err)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse filing feed for CIK %s: %w", cik, err)
	}

	entries := make([]FeedEntry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if len(entries) == limit {
			break
		}
		e := FeedEntry{
			Title:           item.Title,
			AccessionNumber: accessionRe.FindString(item.Link),
			Link:            item.Link,
		}
		if item.UpdatedParsed != nil {
			e.Updated = item.UpdatedParsed.Format(isoDate)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
