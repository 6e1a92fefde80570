package edgar

import (
	"context"
	"fmt"
)

// submissionsResponse is the per-company submissions feed: parallel arrays
// indexed positionally, ordered most-recent-first by the SEC.
type submissionsResponse struct {
	CIK     string `json:"cik"`
	Name    string `json:"name"`
	Filings struct {
		Recent filingSet `json:"recent"`
	} `json:"filings"`
}

type filingSet struct {
	AccessionNumber []string `json:"accessionNumber"`
	FilingDate      []string `json:"filingDate"`
	ReportDate      []string `json:"reportDate"`
	Form            []string `json:"form"`
	PrimaryDocument []string `json:"primaryDocument"`
}

// filingRow is one submissions entry, zipped out of the parallel arrays at
// the ingestion boundary so the locators operate on plain records instead
// of repeated positional indexing.
type filingRow struct {
	AccessionNumber string
	FilingDate      string
	ReportDate      string
	Form            string
	PrimaryDocument string
}

// rows zips the parallel arrays into records. Array lengths are clamped to
// the shortest so a ragged feed cannot cause an index panic.
func (s filingSet) rows() []filingRow {
	n := len(s.AccessionNumber)
	for _, l := range []int{len(s.FilingDate), len(s.ReportDate), len(s.Form), len(s.PrimaryDocument)} {
		if l < n {
			n = l
		}
	}
	rows := make([]filingRow, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, filingRow{
			AccessionNumber: s.AccessionNumber[i],
			FilingDate:      s.FilingDate[i],
			ReportDate:      s.ReportDate[i],
			Form:            s.Form[i],
			PrimaryDocument: s.PrimaryDocument[i],
		})
	}
	return rows
}

// submissions fetches a company's submissions feed, memoized for the cache
// TTL. The feed is read-only and idempotent, so one fetch serves every
// report-date lookup within a date-range call.
func (c *Client) submissions(ctx context.Context, cik string) (*submissionsResponse, error) {
	key := "submissions:" + cik
	if cached, ok := c.cache.Get(key); ok {
		return cached.(*submissionsResponse), nil
	}

	url := fmt.Sprintf("%s/submissions/CIK%s.json", c.cfg.DataURL, padCIK(cik))
	var resp submissionsResponse
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("fetch submissions for CIK %s: %w", cik, err)
	}

	c.cache.Set(key, &resp)
	return &resp, nil
}
