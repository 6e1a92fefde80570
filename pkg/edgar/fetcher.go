package edgar

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/finsight/filings/internal/htmltext"
	"github.com/finsight/filings/pkg/models"
)

// FetchContent retrieves a filing document and converts its markup to
// structured text. It never returns an error: any fetch or parse failure
// is logged with the source URL and reported as the content sentinel, so
// one unreachable document cannot abort a multi-filing batch.
func (c *Client) FetchContent(ctx context.Context, url string) string {
	body, err := c.http.Get(ctx, url, "text/html")
	if err != nil {
		c.log.Error("fetch filing content", "url", url, "error", err)
		return models.ContentUnavailable
	}

	text, err := htmltext.Convert(string(body))
	if err != nil {
		c.log.Error("convert filing content", "url", url, "error", err)
		return models.ContentUnavailable
	}
	return text
}

// FillContent fetches content for every filing in place. With concurrency
// 1 (the default) fetches run sequentially in array order; higher values
// run a bounded group that still assigns results by index, so ordering in
// the given slice is unchanged and the request rate stays within what a
// compliant client produces. Returns the context error on cancellation so
// the caller can discard the partially filled batch.
//
// Callers that already hold content for some filings pass only the ones
// still needing a fetch; content fill is separate from location exactly so
// repeated requests do not touch EDGAR for documents the user has.
func (c *Client) FillContent(ctx context.Context, filings []models.Filing) error {
	limit := c.cfg.FetchConcurrency
	if limit <= 1 {
		for i := range filings {
			if err := ctx.Err(); err != nil {
				return err
			}
			filings[i].FullText = c.FetchContent(ctx, filings[i].URL)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range filings {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			filings[i].FullText = c.FetchContent(gctx, filings[i].URL)
			return nil
		})
	}
	return g.Wait()
}
