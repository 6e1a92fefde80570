package edgar

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/finsight/filings/pkg/models"
)

// masterIndexHeaderLines is the fixed preamble of a quarterly master index
// file before data rows begin.
const masterIndexHeaderLines = 11

const isoDate = "2006-01-02"

// yearQuarter identifies one quarterly master index.
type yearQuarter struct {
	Year    int
	Quarter int
}

// FilingsInRange scans the quarterly master indexes spanning
// [startDate, endDate] and returns every filing of the given form type
// submitted by the CIK within the bounds (inclusive), with content fetched
// for each match. Callers that dedupe against a store use LocateInRange
// and FillContent separately.
func (c *Client) FilingsInRange(ctx context.Context, cik, formType, startDate, endDate string) ([]models.Filing, error) {
	filings, err := c.LocateInRange(ctx, cik, formType, startDate, endDate)
	if err != nil {
		return nil, err
	}
	if err := c.FillContent(ctx, filings); err != nil {
		return nil, err
	}
	return filings, nil
}

// LocateInRange returns metadata for the in-range filings without fetching
// document content.
//
// The submissions API only exposes a company's recent filings cheaply;
// arbitrary historical ranges require pulling each quarter's full index —
// one pipe-delimited row per filing across all companies — and filtering
// client-side. A quarter whose index is missing or unparsable is skipped
// with a warning and never aborts the other quarters.
func (c *Client) LocateInRange(ctx context.Context, cik, formType, startDate, endDate string) ([]models.Filing, error) {
	start, err := time.Parse(isoDate, startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	end, err := time.Parse(isoDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", endDate, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s precedes start date %s", endDate, startDate)
	}

	var filings []models.Filing
	for _, q := range quarterSpan(start, end) {
		rows, err := c.quarterIndex(ctx, q)
		if err != nil {
			c.log.Warn("skipping quarterly index",
				"year", q.Year, "quarter", q.Quarter, "error", err)
			continue
		}
		for _, row := range rows {
			if row.CIK != cik || row.Form != formType {
				continue
			}
			filed, err := time.Parse(isoDate, row.DateFiled)
			if err != nil || filed.Before(start) || filed.After(end) {
				continue
			}
			filings = append(filings, c.filingFromIndexRow(ctx, row))
		}
	}
	return filings, nil
}

// indexRow is one data row of a quarterly master index:
// CIK|Company Name|Form Type|Date Filed|Filename.
type indexRow struct {
	CIK       string
	Company   string
	Form      string
	DateFiled string
	Filename  string
}

// quarterIndex fetches and parses one quarter's master index. Rows with
// fewer than five fields are discarded.
func (c *Client) quarterIndex(ctx context.Context, q yearQuarter) ([]indexRow, error) {
	url := fmt.Sprintf("%s/%d/QTR%d/master.idx", c.cfg.FullIndexURL, q.Year, q.Quarter)
	body, err := c.http.Get(ctx, url, "text/plain")
	if err != nil {
		return nil, &IndexUnavailableError{Year: q.Year, Quarter: q.Quarter, Err: err}
	}

	lines := strings.Split(string(body), "\n")
	if len(lines) <= masterIndexHeaderLines {
		return nil, &IndexUnavailableError{Year: q.Year, Quarter: q.Quarter,
			Err: fmt.Errorf("truncated index: %d lines", len(lines))}
	}

	var rows []indexRow
	for _, line := range lines[masterIndexHeaderLines:] {
		fields := strings.Split(line, "|")
		if len(fields) < 5 {
			continue
		}
		rows = append(rows, indexRow{
			CIK:       strings.TrimSpace(fields[0]),
			Company:   strings.TrimSpace(fields[1]),
			Form:      strings.TrimSpace(fields[2]),
			DateFiled: strings.TrimSpace(fields[3]),
			Filename:  strings.TrimSpace(fields[4]),
		})
	}
	return rows, nil
}

// filingFromIndexRow builds a Filing from a master index row. The index
// carries no report-period date, so it is recovered from the company's
// submissions feed by accession number; when the feed no longer lists the
// filing, the filing date substitutes (or the field stays empty when the
// fallback is disabled), logged as a warning either way.
func (c *Client) filingFromIndexRow(ctx context.Context, row indexRow) models.Filing {
	accession := strings.TrimSuffix(path.Base(row.Filename), ".txt")

	f := models.Filing{
		AccessionNumber: accession,
		FilingDate:      row.DateFiled,
		Form:            row.Form,
		PrimaryDocument: path.Base(row.Filename),
		URL:             fmt.Sprintf("%s/%s", c.cfg.ArchiveURL, row.Filename),
	}

	if sub, err := c.submissions(ctx, row.CIK); err == nil {
		want := stripDashes(accession)
		for _, r := range sub.Filings.Recent.rows() {
			if stripDashes(r.AccessionNumber) != want {
				continue
			}
			f.ReportDate = r.ReportDate
			f.PrimaryDocument = r.PrimaryDocument
			f.URL = c.documentURL(row.CIK, r.AccessionNumber, r.PrimaryDocument)
			return f
		}
	}

	if c.cfg.ReportDateFallback {
		c.log.Warn("report date unrecoverable, falling back to filing date",
			"accession", accession, "cik", row.CIK)
		f.ReportDate = row.DateFiled
	} else {
		c.log.Warn("report date unrecoverable, leaving empty",
			"accession", accession, "cik", row.CIK)
	}
	return f
}

// quarterSpan returns the ordered (year, quarter) pairs covering
// [start, end] inclusive, by calendar quarter.
func quarterSpan(start, end time.Time) []yearQuarter {
	var span []yearQuarter
	year, quarter := start.Year(), quarterOf(start)
	endYear, endQuarter := end.Year(), quarterOf(end)
	for year < endYear || (year == endYear && quarter <= endQuarter) {
		span = append(span, yearQuarter{Year: year, Quarter: quarter})
		quarter++
		if quarter > 4 {
			quarter = 1
			year++
		}
	}
	return span
}

func quarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}
