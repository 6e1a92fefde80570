package edgar

import (
	"context"
	"fmt"

	"github.com/finsight/filings/pkg/models"
)

// RecentFilings returns the limit most recent filings of the given form
// type from the company's submissions feed, with content fetched for each.
// Callers that dedupe against a store use LocateRecent and FillContent
// separately.
func (c *Client) RecentFilings(ctx context.Context, cik, formType string, limit int) ([]models.Filing, error) {
	filings, err := c.LocateRecent(ctx, cik, formType, limit)
	if err != nil {
		return nil, err
	}
	if err := c.FillContent(ctx, filings); err != nil {
		return nil, err
	}
	return filings, nil
}

// LocateRecent returns metadata for the limit most recent filings of the
// given form type, without fetching document content.
//
// The feed is ordered most-recent-first by the SEC and can hold hundreds
// of rows; scanning stops as soon as limit matches are collected. Form
// matching is exact string equality — callers supply canonical codes like
// "10-K", not descriptive phrases. Fewer matches than limit is not an
// error.
func (c *Client) LocateRecent(ctx context.Context, cik, formType string, limit int) ([]models.Filing, error) {
	if limit <= 0 {
		limit = 1
	}

	sub, err := c.submissions(ctx, cik)
	if err != nil {
		return nil, fmt.Errorf("recent filings for CIK %s: %w", cik, err)
	}

	filings := make([]models.Filing, 0, limit)
	for _, row := range sub.Filings.Recent.rows() {
		if row.Form != formType {
			continue
		}
		filings = append(filings, models.Filing{
			AccessionNumber: row.AccessionNumber,
			FilingDate:      row.FilingDate,
			ReportDate:      row.ReportDate,
			Form:            row.Form,
			PrimaryDocument: row.PrimaryDocument,
			URL:             c.documentURL(cik, row.AccessionNumber, row.PrimaryDocument),
		})
		if len(filings) == limit {
			break
		}
	}
	return filings, nil
}
