package github

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"path"
	"strings"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/repogallery/internal/core/domain"
	"github.com/custodia-labs/repogallery/internal/core/ports/driven"
	"github.com/custodia-labs/repogallery/internal/logger"
)

// PerPage is the listing page size (GitHub's maximum).
const PerPage = 100

// Ensure Discoverer implements the interface.
var _ driven.RepositoryLister = (*Discoverer)(nil)

// Discoverer lists organisation repositories matching a name pattern.
type Discoverer struct {
	client          *Client
	includeArchived bool
}

// NewDiscoverer creates a discoverer. Archived repositories are skipped
// unless includeArchived is set.
func NewDiscoverer(client *Client, includeArchived bool) *Discoverer {
	return &Discoverer{client: client, includeArchived: includeArchived}
}

// Repositories yields matching repositories page by page.
// Every range over the returned sequence starts again from the first page.
func (d *Discoverer) Repositories(
	ctx context.Context, organization, pattern string,
) iter.Seq2[domain.Repository, error] {
	return func(yield func(domain.Repository, error) bool) {
		fail := func(err error) {
			yield(domain.Repository{}, &DiscoveryError{Organization: organization, Err: err})
		}

		base, err := d.client.BaseURL(ctx)
		if err != nil {
			fail(err)
			return
		}

		reqPath := fmt.Sprintf("orgs/%s/repos", url.PathEscape(organization))
		params := url.Values{
			"per_page": []string{fmt.Sprint(PerPage)},
			"type":     []string{"all"},
		}

		for page := 1; ; page++ {
			if err := ctx.Err(); err != nil {
				yield(domain.Repository{}, err)
				return
			}

			resp, err := d.client.Request(ctx, http.MethodGet, reqPath, params)
			if err != nil {
				fail(err)
				return
			}
			if resp.NotFound() {
				fail(&APIError{StatusCode: http.StatusNotFound, Message: "organization not found", URL: reqPath})
				return
			}

			var repos []*gh.Repository
			if err := json.Unmarshal(resp.Body, &repos); err != nil {
				fail(fmt.Errorf("decode page %d: %w", page, err))
				return
			}
			logger.Debug("[github] %s page %d: %d repositories", organization, page, len(repos))

			for _, r := range repos {
				if !MatchName(r.GetName(), pattern) {
					continue
				}
				if r.GetArchived() && !d.includeArchived {
					continue
				}
				if !yield(toRepository(organization, r), nil) {
					return
				}
			}

			next := ParseNextLink(resp.Header.Get("Link"))
			if next == "" {
				return
			}
			reqPath, params, err = splitLink(base, next)
			if err != nil {
				fail(fmt.Errorf("parse next link: %w", err))
				return
			}
		}
	}
}

// MatchName reports whether a repository name matches pattern.
// Patterns with glob metacharacters use path.Match; anything else is a
// prefix. An empty pattern matches everything.
func MatchName(name, pattern string) bool {
	if pattern == "" {
		return true
	}
	if strings.ContainsAny(pattern, "*?[") {
		matched, err := path.Match(pattern, name)
		return err == nil && matched
	}
	return strings.HasPrefix(name, pattern)
}

func toRepository(organization string, r *gh.Repository) domain.Repository {
	org := r.GetOwner().GetLogin()
	if org == "" {
		org = organization
	}
	return domain.Repository{
		ID:            domain.RepositoryID{Organization: org, Name: r.GetName()},
		Description:   r.GetDescription(),
		DefaultBranch: r.GetDefaultBranch(),
		HTMLURL:       r.GetHTMLURL(),
		Private:       r.GetPrivate(),
		Archived:      r.GetArchived(),
		CreatedAt:     r.GetCreatedAt().Time,
		UpdatedAt:     r.GetUpdatedAt().Time,
	}
}
