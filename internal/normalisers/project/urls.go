package project

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/custodia-labs/repogallery/internal/core/domain"
)

const (
	rawHost    = "raw.githubusercontent.com"
	githubHost = "github.com"
)

// RawBase returns the raw content root for a repository at branch.
func RawBase(id domain.RepositoryID, branch string) string {
	return fmt.Sprintf("https://%s/%s/%s/%s/", rawHost,
		url.PathEscape(id.Organization), url.PathEscape(id.Name), escapeSegments(branch))
}

// RepositoryURL returns the browser URL of a repository.
func RepositoryURL(id domain.RepositoryID) string {
	return fmt.Sprintf("https://%s/%s/%s", githubHost, id.Organization, id.Name)
}

// ResolveAsset turns an asset reference into an absolute http(s) URL.
// Relative paths resolve against the directory of the file they were
// found in; a leading "/" means the repository root. References that
// leave the repository or use other schemes are rejected.
func ResolveAsset(id domain.RepositoryID, branch string, asset domain.RawAsset) (string, bool) {
	ref := strings.TrimSpace(asset.Ref)
	ref = strings.TrimSuffix(strings.TrimPrefix(ref, "<"), ">")
	if ref == "" || strings.HasPrefix(ref, "#") {
		return "", false
	}
	if strings.HasPrefix(ref, "//") {
		ref = "https:" + ref
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	if u.IsAbs() {
		return CanonicalURL(ref)
	}
	if u.Host != "" || u.Path == "" {
		return "", false
	}

	var p string
	if strings.HasPrefix(u.Path, "/") {
		p = strings.TrimPrefix(path.Clean(u.Path), "/")
	} else {
		p = path.Clean(path.Join(path.Dir(asset.SourcePath), u.Path))
		if p == ".." || strings.HasPrefix(p, "../") {
			return "", false
		}
	}
	if p == "" || p == "." {
		return "", false
	}
	return RawBase(id, branch) + escapeSegments(p), true
}

// CanonicalURL normalises an absolute asset URL: GitHub blob and raw
// views are rewritten to raw.githubusercontent.com, and only http(s)
// URLs are accepted. Canonical URLs are returned unchanged.
func CanonicalURL(ref string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil || u.Host == "" {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return "", false
	}

	if strings.EqualFold(u.Host, githubHost) || strings.EqualFold(u.Host, "www."+githubHost) {
		// /{owner}/{repo}/blob/{ref}/{path...}
		parts := strings.SplitN(strings.TrimPrefix(u.EscapedPath(), "/"), "/", 5)
		if len(parts) == 5 && (parts[2] == "blob" || parts[2] == "raw") {
			q := u.Query()
			q.Del("raw")
			rewritten := url.URL{
				Scheme:   "https",
				Host:     rawHost,
				RawQuery: q.Encode(),
			}
			escaped := "/" + strings.Join([]string{parts[0], parts[1], parts[3], parts[4]}, "/")
			if err := setEscapedPath(&rewritten, escaped); err != nil {
				return "", false
			}
			return rewritten.String(), true
		}
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), true
}

func setEscapedPath(u *url.URL, escaped string) error {
	unescaped, err := url.PathUnescape(escaped)
	if err != nil {
		return err
	}
	u.Path = unescaped
	u.RawPath = escaped
	return nil
}

func escapeSegments(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
