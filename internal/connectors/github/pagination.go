package github

import (
	"net/url"
	"regexp"
	"strings"
)

// linkRegex matches Link header entries: <url>; rel="type".
var linkRegex = regexp.MustCompile(`<([^>]+)>;\s*rel="([^"]+)"`)

// ParseNextLink extracts the "next" URL from a Link header.
// Returns empty string if no next link is found.
func ParseNextLink(linkHeader string) string {
	return ParseAllLinks(linkHeader)["next"]
}

// ParseAllLinks extracts all URLs from a Link header by relationship type.
// Returns a map of rel type to URL.
func ParseAllLinks(linkHeader string) map[string]string {
	links := make(map[string]string)
	if linkHeader == "" {
		return links
	}

	parts := strings.Split(linkHeader, ",")
	for _, part := range parts {
		matches := linkRegex.FindStringSubmatch(strings.TrimSpace(part))
		if len(matches) == 3 {
			links[matches[2]] = matches[1]
		}
	}

	return links
}

// splitLink turns a pagination URL into a request path and query so the
// page can be fetched through Client.Request. Links on the API host are
// made relative to base; anything else stays absolute.
func splitLink(base *url.URL, link string) (string, url.Values, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", nil, err
	}
	query := u.Query()
	if !u.IsAbs() {
		return strings.TrimPrefix(u.Path, "/"), query, nil
	}
	if u.Host == base.Host && strings.HasPrefix(u.Path, base.Path) {
		return strings.TrimPrefix(u.Path, base.Path), query, nil
	}
	return u.Scheme + "://" + u.Host + u.Path, query, nil
}
