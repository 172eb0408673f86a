package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Veraticus/lng-shipment-tracker/internal/common"
	"github.com/Veraticus/lng-shipment-tracker/internal/dom"
)

// maxPageBytes caps how much of a response body is parsed.
const maxPageBytes = 8 << 20

// DefaultUserAgent mimics a desktop browser; the source site rejects obvious bots.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Client fetches and parses pages, honouring the per-origin throttle.
type Client struct {
	http      *http.Client
	throttle  *Throttle
	logger    *slog.Logger
	userAgent string
	referer   string
}

// NewClient creates a page client. A nil httpClient uses a fresh http.Client;
// per-request timeouts are applied through the context.
func NewClient(httpClient *http.Client, throttle *Throttle, userAgent, referer string, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if throttle == nil {
		throttle = NewThrottle(0)
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:      httpClient,
		throttle:  throttle,
		logger:    logger,
		userAgent: userAgent,
		referer:   referer,
	}
}

// Fetch GETs rawURL and parses the body. Server errors and rate limiting are
// marked retryable; other failures are permanent.
func (c *Client) Fetch(ctx context.Context, rawURL string, timeout time.Duration) (dom.Node, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, common.Permanent(fmt.Errorf("%w: invalid url %q: %w", common.ErrFetchFailed, rawURL, err))
	}

	if err := c.throttle.Wait(ctx, u.Scheme+"://"+u.Host); err != nil {
		return nil, err
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, common.Permanent(fmt.Errorf("%w: %w", common.ErrFetchFailed, err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Cache-Control", "max-age=0")
	if c.referer != "" {
		req.Header.Set("Referer", c.referer)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &common.RetryableError{
			Err:       fmt.Errorf("%w: %s: %w", common.ErrFetchFailed, rawURL, err),
			Retryable: !errors.Is(err, context.Canceled),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("fetched page",
		"url", rawURL,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if err := checkStatus(rawURL, resp.StatusCode); err != nil {
		return nil, err
	}

	page, err := dom.Parse(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, common.Permanent(fmt.Errorf("%w: %s: %w", common.ErrFetchFailed, rawURL, err))
	}
	return page, nil
}

func checkStatus(rawURL string, status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s: %w", common.ErrFetchFailed, rawURL, common.ErrRateLimit)
	case status >= 500:
		return &common.RetryableError{
			Err:       fmt.Errorf("%w: %s: status %d", common.ErrFetchFailed, rawURL, status),
			Retryable: true,
		}
	default:
		return common.Permanent(fmt.Errorf("%w: %s: status %d", common.ErrFetchFailed, rawURL, status))
	}
}
