package infra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// HTTPClient wraps http.Client with the two properties SEC access policy
// requires of every request: a contact-identifying User-Agent header and a
// client-side request rate cap (10 req/s per user agent, see
// https://www.sec.gov/os/webmaster-faq#code-support).
type HTTPClient struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// NewHTTPClient creates a client with the given identification string,
// per-second rate limit, and request timeout.
func NewHTTPClient(userAgent string, reqPerSec int, timeout time.Duration) *HTTPClient {
	if reqPerSec <= 0 {
		reqPerSec = 10
	}
	return &HTTPClient{
		client:    &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Limit(reqPerSec), reqPerSec),
		userAgent: userAgent,
	}
}

// Get performs a rate-limited GET and returns the response body.
// The User-Agent header is set unconditionally; EDGAR rejects anonymous
// traffic, so this is a correctness requirement, not a courtesy.
func (c *HTTPClient) Get(ctx context.Context, url, accept string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", url, err)
	}
	return body, nil
}
