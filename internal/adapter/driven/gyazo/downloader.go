package gyazo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/gyazobot/internal/domain/model"
	"github.com/ericfisherdev/gyazobot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ImageDownloader = (*Downloader)(nil)

// Downloader fetches image binaries by URL. Hosted images are immutable, so
// responses are cached (honoring Cache-Control) in a size-bounded memory cache.
type Downloader struct {
	httpClient *http.Client
}

// NewDownloader creates a Downloader with the following transport stack:
//  1. httpcache (RFC 7234 caching over a cache bounded to cacheBytes)
//  2. http.DefaultTransport
//
// cacheBytes <= 0 disables caching.
func NewDownloader(timeout time.Duration, cacheBytes int64) *Downloader {
	client := &http.Client{Timeout: timeout}
	if cacheBytes > 0 {
		transport := httpcache.NewTransport(newBoundedCache(cacheBytes))
		transport.MarkCachedResponses = true
		client.Transport = transport
	}
	return &Downloader{httpClient: client}
}

// NewDownloaderWithHTTPClient creates a Downloader around a custom http.Client.
func NewDownloaderWithHTTPClient(httpClient *http.Client) *Downloader {
	return &Downloader{httpClient: httpClient}
}

// Download returns the body of a GET on rawURL. Non-success statuses are
// reported as *model.TransportError.
func (d *Downloader) Download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, &model.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, newStatusError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.TransportError{Err: fmt.Errorf("read body: %w", err)}
	}

	slog.Debug("image downloaded",
		"url", rawURL,
		"bytes", len(data),
		"cached", resp.Header.Get(httpcache.XFromCache) != "",
	)

	return data, nil
}
