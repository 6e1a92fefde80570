// Package edgar implements the SEC EDGAR acquisition layer: company
// resolution against the ticker catalog, filing location through the
// per-company submissions feed and the quarterly master indexes, and
// document fetching with markup-to-text conversion.
//
// No API key required. Every request must carry a contact-identifying
// User-Agent per SEC policy. Rate limit: 10 requests/second per user agent.
// Docs: https://www.sec.gov/edgar/sec-api-documentation
package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/finsight/filings/internal/infra"
	"github.com/finsight/filings/pkg/config"
)

// Client is the EDGAR API client. All endpoint hosts and access-policy
// settings come from the injected configuration, which keeps per-caller
// identification possible and lets tests point at mock endpoints.
type Client struct {
	cfg   config.EDGAR
	http  *infra.HTTPClient
	cache *infra.Cache
	log   *slog.Logger
}

// NewClient creates an EDGAR client from configuration.
func NewClient(cfg config.EDGAR, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		cfg:   cfg,
		http:  infra.NewHTTPClient(cfg.UserAgent, cfg.RateLimit, cfg.Timeout()),
		cache: infra.NewCache(cfg.CacheTTL()),
		log:   log,
	}
}

// getJSON performs a GET against an EDGAR JSON endpoint and decodes the body.
func (c *Client) getJSON(ctx context.Context, url string, dest any) error {
	body, err := c.http.Get(ctx, url, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("parse EDGAR JSON from %s: %w", url, err)
	}
	return nil
}

// documentURL builds the canonical archive location of a filing's primary
// document from the CIK, the accession number, and the document name.
func (c *Client) documentURL(cik, accessionNumber, primaryDocument string) string {
	return fmt.Sprintf("%s/edgar/data/%s/%s/%s",
		c.cfg.ArchiveURL, cik, stripDashes(accessionNumber), primaryDocument)
}

// padCIK pads a CIK to the 10 digits the submissions endpoint expects.
func padCIK(cik string) string {
	for len(cik) < 10 {
		cik = "0" + cik
	}
	return cik
}

func stripDashes(s string) string {
	return strings.ReplaceAll(s, "-", "")
}
