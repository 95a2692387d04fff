// Package nwis fetches site descriptions from the USGS NWIS site service.
package nwis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/well-registry/internal/domain"
	"github.com/couchcryptid/well-registry/internal/observability"
	"github.com/couchcryptid/well-registry/internal/rdb"
)

// Client implements domain.SiteFetcher against the NWIS site service, which
// answers in RDB format.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

var _ domain.SiteFetcher = (*Client)(nil)

// NewClient creates a site service client rooted at endpoint.
func NewClient(endpoint string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    endpoint,
		logger:     logger,
		metrics:    metrics,
	}
}

// FetchSite returns the expanded site record for siteNo as raw column values.
func (c *Client) FetchSite(ctx context.Context, siteNo string) (map[string]string, error) {
	params := url.Values{
		"format":     {"rdb"},
		"siteOutput": {"expanded"},
		"sites":      {siteNo},
		"siteStatus": {"all"},
	}

	start := time.Now()
	rec, err := c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	c.metrics.NWISDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		c.metrics.NWISRequests.WithLabelValues("success").Inc()
	case errors.Is(err, domain.ErrSiteNotFound):
		c.metrics.NWISRequests.WithLabelValues("not_found").Inc()
	default:
		c.metrics.NWISRequests.WithLabelValues("error").Inc()
		c.logger.Warn("nwis site request failed", "site_no", siteNo, "error", err)
	}
	return rec, err
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, domain.ErrSiteNotFound
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Debug("nwis error body", "status", resp.StatusCode, "body", string(body))
		return nil, &domain.UpstreamError{StatusCode: resp.StatusCode}
	}

	rec, ok, err := rdb.First(resp.Body)
	if err != nil {
		if errors.Is(err, rdb.ErrHeadersNotFound) {
			return nil, domain.ErrSiteNotFound
		}
		return nil, &domain.UpstreamError{Err: fmt.Errorf("read rdb response: %w", err)}
	}
	if !ok {
		return nil, domain.ErrSiteNotFound
	}
	return rec, nil
}
