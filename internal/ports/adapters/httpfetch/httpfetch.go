// Package httpfetch streams remote source videos to local disk.
package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

type Fetcher struct {
	client *http.Client
}

// New builds a fetcher sized for large video downloads.
func New() *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: 30 * time.Minute}}
}

// FetchToFile downloads url into dst. A partial file is removed on failure
// so callers never see a half-written video.
func (f *Fetcher) FetchToFile(ctx context.Context, url, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("download video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download video: unexpected status %d", resp.StatusCode)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create download target: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("write video: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("close download target: %w", err)
	}
	return nil
}
