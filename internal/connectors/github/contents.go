package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/repogallery/internal/core/domain"
	"github.com/custodia-labs/repogallery/internal/core/ports/driven"
)

// Ensure Client implements the content port.
var _ driven.ContentFetcher = (*Client)(nil)

// contentsPath builds repos/{owner}/{repo}/contents/{path} with each
// segment escaped.
func contentsPath(id domain.RepositoryID, path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("repos/%s/%s/contents/%s",
		url.PathEscape(id.Organization), url.PathEscape(id.Name), strings.Join(segments, "/"))
}

func refParams(ref string) url.Values {
	if ref == "" {
		return nil
	}
	return url.Values{"ref": []string{ref}}
}

// GetFile fetches and decodes a file through the contents API.
// For files < 1MB, content is base64 encoded in the response.
func (c *Client) GetFile(
	ctx context.Context, id domain.RepositoryID, path, ref string,
) ([]byte, bool, error) {
	resp, err := c.Request(ctx, http.MethodGet, contentsPath(id, path), refParams(ref))
	if err != nil {
		return nil, false, err
	}
	if resp.NotFound() {
		return nil, false, nil
	}

	body := bytes.TrimSpace(resp.Body)
	if len(body) > 0 && body[0] == '[' {
		return nil, true, fmt.Errorf("%w: %s", ErrNotAFile, path)
	}

	var content gh.RepositoryContent
	if err := json.Unmarshal(body, &content); err != nil {
		return nil, true, fmt.Errorf("decode contents of %s: %w", path, err)
	}
	if content.GetType() != "" && content.GetType() != "file" {
		return nil, true, fmt.Errorf("%w: %s is a %s", ErrNotAFile, path, content.GetType())
	}

	decoded, err := content.GetContent()
	if err != nil {
		return nil, true, fmt.Errorf("decode content: %w", err)
	}
	return []byte(decoded), true, nil
}

// ListDirectory lists a directory through the contents API.
func (c *Client) ListDirectory(
	ctx context.Context, id domain.RepositoryID, path, ref string,
) ([]driven.DirEntry, bool, error) {
	resp, err := c.Request(ctx, http.MethodGet, contentsPath(id, path), refParams(ref))
	if err != nil {
		return nil, false, err
	}
	if resp.NotFound() {
		return nil, false, nil
	}

	body := bytes.TrimSpace(resp.Body)
	if len(body) == 0 || body[0] != '[' {
		return nil, true, fmt.Errorf("%w: %s", ErrNotADirectory, path)
	}

	var listing []*gh.RepositoryContent
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, true, fmt.Errorf("decode listing of %s: %w", path, err)
	}

	entries := make([]driven.DirEntry, 0, len(listing))
	for _, item := range listing {
		entries = append(entries, driven.DirEntry{
			Name: item.GetName(),
			Path: item.GetPath(),
			Type: item.GetType(),
			Size: int64(item.GetSize()),
		})
	}
	return entries, true, nil
}
