package assets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repogallery/internal/backoff"
)

func fastPolicy() backoff.Policy {
	return backoff.Policy{MaxRetries: 3, Initial: time.Millisecond, Max: 5 * time.Millisecond}
}

func TestLocalPath(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		url := "https://raw.githubusercontent.com/o/r/main/img/sketch.png"

		assert.Equal(t, LocalPath("assets", url), LocalPath("assets", url))
		assert.True(t, strings.HasSuffix(LocalPath("assets", url), "-sketch.png"))
		assert.Equal(t, "assets", filepath.Dir(LocalPath("assets", url)))
	})

	t.Run("colliding base names stay distinct", func(t *testing.T) {
		a := LocalPath("d", "https://raw.githubusercontent.com/o/a/main/img/sketch.png")
		b := LocalPath("d", "https://raw.githubusercontent.com/o/b/main/img/sketch.png")

		assert.NotEqual(t, a, b)
	})

	t.Run("hash prefix length", func(t *testing.T) {
		name := filepath.Base(LocalPath("", "https://x/y.png"))
		prefix, _, ok := strings.Cut(name, "-")

		require.True(t, ok)
		assert.Len(t, prefix, 32)
	})
}

func TestBaseName(t *testing.T) {
	tests := []struct{ url, want string }{
		{"https://x/img/my%20sketch.png", "my_sketch.png"},
		{"https://x/", "asset"},
		{"https://x/..", "asset"},
		{"https://x/a/b.svg?size=2", "b.svg"},
		{"https://x/" + strings.Repeat("a", 100) + ".png", strings.Repeat("a", 60) + ".png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, baseName(tt.url), tt.url)
	}
}

func TestDownloader_Download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("PNGDATA"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	d := NewDownloader(dir, Options{Retry: fastPolicy()})
	url := srv.URL + "/img/a.png"
	local := d.LocalPath(url)

	assert.False(t, d.Exists(local))

	n, err := d.Download(context.Background(), url, local)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.True(t, d.Exists(local))

	data, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Equal(t, "PNGDATA", string(data))
	assert.Equal(t, dir, d.Dir())
}

func TestDownloader_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	d := NewDownloader(t.TempDir(), Options{Retry: fastPolicy()})
	url := srv.URL + "/a.png"

	_, err := d.Download(context.Background(), url, d.LocalPath(url))

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDownloader_GivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	dir := t.TempDir()
	d := NewDownloader(dir, Options{Retry: fastPolicy()})
	url := srv.URL + "/a.png"

	_, err := d.Download(context.Background(), url, d.LocalPath(url))

	assert.Error(t, err)
	assert.Equal(t, int32(4), calls.Load())
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestDownloader_NotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	d := NewDownloader(t.TempDir(), Options{Retry: fastPolicy()})
	url := srv.URL + "/a.png"

	_, err := d.Download(context.Background(), url, d.LocalPath(url))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestDownloader_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	d := NewDownloader(t.TempDir(), Options{Retry: fastPolicy()})
	url := srv.URL + "/a.png"
	local := d.LocalPath(url)

	_, err := d.Download(context.Background(), url, local)

	assert.Error(t, err)
	assert.NoFileExists(t, local)
}
