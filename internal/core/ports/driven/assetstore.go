package driven

import "context"

// AssetStore mirrors public assets into a local content directory.
type AssetStore interface {
	// LocalPath returns the deterministic local path for a source URL.
	LocalPath(sourceURL string) string

	// Exists reports whether localPath exists and is non-empty.
	Exists(localPath string) bool

	// Download fetches sourceURL into localPath, retrying transient
	// failures, and returns the number of bytes written.
	Download(ctx context.Context, sourceURL, localPath string) (int64, error)
}
