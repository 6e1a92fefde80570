// Package models defines the value objects exchanged between the EDGAR
// retrieval layer and its callers. CompanyInfo and Filing are transient,
// per-request values; persistence is the caller's concern.
package models

// ContentUnavailable is the sentinel placed in Filing.FullText when a
// document could not be fetched or converted. A failed fetch never aborts
// a batch; it is reported through this value instead.
const ContentUnavailable = "Error: Unable to fetch filing content"

// CompanyInfo is one entry of the SEC company catalog: the CIK in its
// un-padded canonical form, the exchange ticker, and the legal title as
// issued by the SEC (uppercase).
type CompanyInfo struct {
	CIK    string `json:"cik"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// Filing is a single SEC filing with its converted text content.
// AccessionNumber keeps the canonical dashed form (e.g.
// "0000320193-23-000106"); downstream deduplication depends on it.
// Dates are ISO calendar dates (YYYY-MM-DD). Immutable once constructed.
type Filing struct {
	AccessionNumber string `json:"accession_number"`
	FilingDate      string `json:"filing_date"`
	ReportDate      string `json:"report_date"`
	Form            string `json:"form"` // "10-K", "10-Q", "8-K", etc.
	PrimaryDocument string `json:"primary_document"`
	URL             string `json:"url"`
	FullText        string `json:"full_text"`
}

// ContentOK reports whether the filing carries genuine converted content
// rather than the fetch-failure sentinel.
func (f Filing) ContentOK() bool {
	return f.FullText != "" && f.FullText != ContentUnavailable
}
