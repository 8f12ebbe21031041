// Package assets mirrors public image assets to the local filesystem.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/custodia-labs/repogallery/internal/backoff"
	"github.com/custodia-labs/repogallery/internal/core/ports/driven"
	"github.com/custodia-labs/repogallery/internal/logger"
)

// Ensure Downloader implements the interface.
var _ driven.AssetStore = (*Downloader)(nil)

// DefaultTimeout bounds a single download attempt.
const DefaultTimeout = 60 * time.Second

// Options configures a Downloader.
type Options struct {
	// HTTPClient is the underlying client. Defaults to one with DefaultTimeout.
	HTTPClient *http.Client

	// Retry is the backoff schedule for failed downloads.
	Retry backoff.Policy
}

// Downloader fetches assets over plain HTTP with retries.
type Downloader struct {
	dir    string
	client *retryablehttp.Client
}

// NewDownloader creates a downloader storing files under dir.
func NewDownloader(dir string, opts Options) *Downloader {
	base := opts.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: DefaultTimeout}
	}
	policy := opts.Retry

	client := retryablehttp.NewClient()
	client.HTTPClient = base
	client.Logger = logger.Leveled{Prefix: "[assets]"}
	client.RetryMax = policy.MaxRetries
	if client.RetryMax < 0 {
		client.RetryMax = 0
	}
	client.RetryWaitMin = policy.Initial
	client.RetryWaitMax = policy.Max
	client.Backoff = func(_, _ time.Duration, attemptNum int, _ *http.Response) time.Duration {
		return policy.Delay(attemptNum + 1)
	}

	return &Downloader{dir: dir, client: client}
}

// Dir returns the asset directory.
func (d *Downloader) Dir() string {
	return d.dir
}

// LocalPath returns the deterministic path for sourceURL.
func (d *Downloader) LocalPath(sourceURL string) string {
	return LocalPath(d.dir, sourceURL)
}

// Exists reports whether localPath is a non-empty regular file.
func (d *Downloader) Exists(localPath string) bool {
	info, err := os.Stat(localPath)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// Download fetches sourceURL into localPath via a temp file and rename,
// so an interrupted download never leaves a partial asset behind.
func (d *Downloader) Download(ctx context.Context, sourceURL, localPath string) (int64, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("GET %s: unexpected status %d", sourceURL, resp.StatusCode)
	}

	dir := filepath.Dir(localPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create asset directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(localPath)+".part-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	n, err := io.Copy(tmp, resp.Body)
	if err == nil && n == 0 {
		err = errors.New("empty response body")
	}
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpPath, 0o644)
	}
	if err == nil {
		err = os.Rename(tmpPath, localPath)
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("save %s: %w", sourceURL, err)
	}

	logger.Debug("[assets] downloaded %s (%d bytes)", sourceURL, n)
	return n, nil
}
