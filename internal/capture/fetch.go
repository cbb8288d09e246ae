package capture

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Fetcher loads the bytes behind blob: URLs from a Registry and behind
// http(s): URLs over the network.
type Fetcher struct {
	registry   *Registry
	httpClient *http.Client
}

func NewFetcher(registry *Registry, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		registry: registry,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (f *Fetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	switch {
	case strings.HasPrefix(uri, blobScheme):
		if f.registry == nil {
			return nil, fmt.Errorf("no blob registry for %s", uri)
		}
		blob, ok := f.registry.Get(uri)
		if !ok {
			return nil, fmt.Errorf("unknown blob %s", uri)
		}
		return blob.Data, nil
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		return f.fetchHTTP(ctx, uri)
	default:
		return nil, fmt.Errorf("unsupported source %q", uri)
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch failed (%d): %s", resp.StatusCode, body)
	}
	return body, nil
}
