package feed

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pders01/pullfeed/internal/config"
	"github.com/pders01/pullfeed/internal/storage"
)

type Fetcher struct {
	client      *http.Client
	userAgent   string
	retryAfter  time.Duration
	ignoreCache bool
}

func NewFetcher(cfg *config.Config) *Fetcher {
	return &Fetcher{
		client:     &http.Client{Timeout: cfg.Feed.HTTPTimeout},
		userAgent:  cfg.Feed.UserAgent,
		retryAfter: cfg.Feed.DefaultRetryAfter,
	}
}

// SetIgnoreCache makes Fetch skip conditional request headers.
func (f *Fetcher) SetIgnoreCache(ignore bool) {
	f.ignoreCache = ignore
}

// Fetch performs a conditional GET. It returns updated=false with a nil
// response when the server answers 304.
func (f *Fetcher) Fetch(ctx context.Context, feed *storage.Feed) (*http.Response, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	if !f.ignoreCache {
		if feed.ETag != "" {
			req.Header.Set("If-None-Match", feed.ETag)
		}
		if feed.LastModified != "" {
			req.Header.Set("If-Modified-Since", feed.LastModified)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("fetching feed: %w", err)
	}

	if resp.StatusCode == http.StatusNotModified {
		resp.Body.Close()
		return nil, false, nil
	}

	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, false, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	return resp, true, nil
}

func (f *Fetcher) UpdateFeedMetadata(feed *storage.Feed, resp *http.Response) {
	if etag := resp.Header.Get("ETag"); etag != "" {
		feed.ETag = etag
	}
	if lastMod := resp.Header.Get("Last-Modified"); lastMod != "" {
		feed.LastModified = lastMod
	}
	feed.LastFetched = time.Now()
}

// RetryAfter reads a Retry-After header given in seconds, falling back to the
// configured default.
func (f *Fetcher) RetryAfter(resp *http.Response) time.Duration {
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return f.retryAfter
}
