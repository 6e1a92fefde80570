package edgar

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/finsight/filings/pkg/config"
)

// Shared EDGAR endpoint fixtures. The mock server mirrors the four
// regulator endpoints: company catalog, submissions feed, quarterly
// master index, and the document archive.

const catalogJSON = `{
	"0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."},
	"1": {"cik_str": 789019, "ticker": "MSFT", "title": "MICROSOFT CORP"},
	"2": {"cik_str": 1045810, "ticker": "NVDA", "title": "NVIDIA CORP"}
}`

const appleSubmissionsJSON = `{
	"cik": "320193",
	"name": "Apple Inc.",
	"filings": {
		"recent": {
			"accessionNumber": ["0000320193-23-000108", "0000320193-23-000106", "0000320193-22-000108"],
			"filingDate":      ["2023-11-30", "2023-11-03", "2022-10-28"],
			"reportDate":      ["2023-11-30", "2023-09-30", "2022-09-24"],
			"form":            ["8-K", "10-K", "10-K"],
			"primaryDocument": ["aapl-8k.htm", "aapl-20230930.htm", "aapl-20220924.htm"]
		}
	}
}`

const filingHTML = `<html><body>
<p>Annual report for fiscal 2023</p>
<table>
	<tr><th>Metric</th><th>Value</th></tr>
	<tr><td>Revenue</td><td>383,285</td></tr>
</table>
</body></html>`

// filingAtomFeed mirrors the browse-edgar Atom output: index-page links
// carrying the accession number, RFC3339 updated stamps, no report dates.
const filingAtomFeed = `<?xml version="1.0" encoding="ISO-8859-1" ?>
<feed xmlns="http://www.w3.org/2005/Atom">
<title>Apple Inc. filings</title>
<entry>
<title>8-K - Current report</title>
<link rel="alternate" type="text/html" href="https://www.sec.gov/Archives/edgar/data/320193/000032019323000108/0000320193-23-000108-index.htm"/>
<updated>2023-11-30T06:02:10-05:00</updated>
<id>urn:tag:sec.gov,2008:accession-number=0000320193-23-000108</id>
</entry>
<entry>
<title>10-K - Annual report</title>
<link rel="alternate" type="text/html" href="https://www.sec.gov/Archives/edgar/data/320193/000032019323000106/0000320193-23-000106-index.htm"/>
<updated>2023-11-03T06:01:36-04:00</updated>
<id>urn:tag:sec.gov,2008:accession-number=0000320193-23-000106</id>
</entry>
<entry>
<title>10-K - Annual report</title>
<link rel="alternate" type="text/html" href="https://www.sec.gov/Archives/edgar/data/320193/000032019322000108/0000320193-22-000108-index.htm"/>
<updated>2022-10-28T06:01:36-04:00</updated>
<id>urn:tag:sec.gov,2008:accession-number=0000320193-22-000108</id>
</entry>
</feed>`

// masterIdx2023Q4 holds the fixed 11-line preamble followed by data rows,
// including a malformed row and rows that must be filtered out.
var masterIdx2023Q4 = strings.Join(append(
	make([]string, 11), // preamble: 11 header lines, content irrelevant
	"320193|Apple Inc.|10-K|2023-11-03|edgar/data/320193/0000320193-23-000106.txt",
	"320193|Apple Inc.|8-K|2023-11-30|edgar/data/320193/0000320193-23-000108.txt",
	"320193|Apple Inc.|10-K|2023-12-15|edgar/data/320193/0000320193-23-000777.txt",
	"789019|MICROSOFT CORP|10-K|2023-11-01|edgar/data/789019/0000789019-23-000001.txt",
	"this is not a pipe delimited row",
), "\n")

// mockEDGAR serves the fixtures and counts requests so guardrail and
// caching tests can assert on network activity.
type mockEDGAR struct {
	srv *httptest.Server

	mu        sync.Mutex
	requests  int
	docPaths  []string
	feedQuery url.Values      // last browse-edgar query received
	failDocs  map[string]bool // document basename -> serve 500
}

func newMockEDGAR(t *testing.T) *mockEDGAR {
	t.Helper()
	m := &mockEDGAR{failDocs: make(map[string]bool)}
	m.srv = httptest.NewServer(http.HandlerFunc(m.handle))
	t.Cleanup(m.srv.Close)
	return m
}

func (m *mockEDGAR) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requests++
	if strings.HasPrefix(r.URL.Path, "/Archives/") {
		m.docPaths = append(m.docPaths, r.URL.Path)
	}
	fail := m.failDocs[pathBase(r.URL.Path)]
	m.mu.Unlock()

	switch {
	case r.URL.Path == "/files/company_tickers.json":
		io.WriteString(w, catalogJSON)
	case r.URL.Path == "/submissions/CIK0000320193.json":
		io.WriteString(w, appleSubmissionsJSON)
	case r.URL.Path == "/full-index/2023/QTR4/master.idx":
		io.WriteString(w, masterIdx2023Q4)
	case r.URL.Path == "/cgi-bin/browse-edgar":
		m.mu.Lock()
		m.feedQuery = r.URL.Query()
		m.mu.Unlock()
		io.WriteString(w, filingAtomFeed)
	case strings.HasPrefix(r.URL.Path, "/full-index/"):
		http.NotFound(w, r)
	case strings.HasPrefix(r.URL.Path, "/Archives/"):
		if fail {
			http.Error(w, "unavailable", http.StatusInternalServerError)
			return
		}
		io.WriteString(w, filingHTML)
	default:
		http.NotFound(w, r)
	}
}

func pathBase(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

func (m *mockEDGAR) requestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests
}

func (m *mockEDGAR) documentRequests() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.docPaths...)
}

func (m *mockEDGAR) lastFeedQuery() url.Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.feedQuery
}

func (m *mockEDGAR) failDocument(basename string) {
	m.mu.Lock()
	m.failDocs[basename] = true
	m.mu.Unlock()
}

// testConfig points every endpoint at the mock server.
func testConfig(srvURL string) config.EDGAR {
	return config.EDGAR{
		DataURL:            srvURL,
		ArchiveURL:         srvURL + "/Archives",
		CatalogURL:         srvURL + "/files/company_tickers.json",
		FullIndexURL:       srvURL + "/full-index",
		BrowseURL:          srvURL + "/cgi-bin/browse-edgar",
		UserAgent:          "filings-test test@example.com",
		TimeoutSec:         5,
		RateLimit:          100,
		FetchConcurrency:   1,
		CacheTTLSec:        60,
		ReportDateFallback: true,
	}
}

func newTestClient(t *testing.T, m *mockEDGAR) *Client {
	t.Helper()
	return NewClient(testConfig(m.srv.URL), discardLogger())
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
