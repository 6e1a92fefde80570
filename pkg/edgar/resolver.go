package edgar

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/finsight/filings/pkg/models"
)

const catalogCacheKey = "company_tickers"

// catalogEntry is a row of the SEC company_tickers.json catalog.
type catalogEntry struct {
	CIKStr int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// ResolveCompany maps a free-text company name or ticker symbol to catalog
// matches. Matching runs in two tiers with distinct confidence:
//
//  1. exact ticker (case-insensitive) — unambiguous, returns a single
//     result and short-circuits;
//  2. title substring (case-insensitive) — returns every match in catalog
//     order; the caller disambiguates when more than one comes back.
//
// No fuzzy matching and no relevance ranking. Zero matches fail with
// *NotFoundError.
func (c *Client) ResolveCompany(ctx context.Context, identifier string) ([]models.CompanyInfo, error) {
	entries, err := c.catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load company catalog: %w", err)
	}

	ident := strings.TrimSpace(identifier)

	for _, e := range entries {
		if strings.EqualFold(e.Ticker, ident) {
			return []models.CompanyInfo{toCompanyInfo(e)}, nil
		}
	}

	lower := strings.ToLower(ident)
	var matches []models.CompanyInfo
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Title), lower) {
			matches = append(matches, toCompanyInfo(e))
		}
	}
	if len(matches) == 0 {
		return nil, &NotFoundError{Identifier: identifier}
	}
	return matches, nil
}

// catalog fetches company_tickers.json, memoized for the cache TTL.
// The endpoint returns a map keyed by row index ("0", "1", ...); rows are
// re-sorted by that numeric key so iteration order is the catalog's own.
func (c *Client) catalog(ctx context.Context) ([]catalogEntry, error) {
	if cached, ok := c.cache.Get(catalogCacheKey); ok {
		return cached.([]catalogEntry), nil
	}

	var raw map[string]catalogEntry
	if err := c.getJSON(ctx, c.cfg.CatalogURL, &raw); err != nil {
		return nil, err
	}

	keys := make([]int, 0, len(raw))
	byKey := make(map[int]catalogEntry, len(raw))
	for k, e := range raw {
		n, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		keys = append(keys, n)
		byKey[n] = e
	}
	sort.Ints(keys)

	entries := make([]catalogEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, byKey[k])
	}

	c.cache.Set(catalogCacheKey, entries)
	return entries, nil
}

func toCompanyInfo(e catalogEntry) models.CompanyInfo {
	return models.CompanyInfo{
		CIK:    strconv.FormatInt(e.CIKStr, 10),
		Ticker: e.Ticker,
		Title:  e.Title,
	}
}
