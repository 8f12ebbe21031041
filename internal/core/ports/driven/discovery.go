package driven

import (
	"context"
	"iter"

	"github.com/custodia-labs/repogallery/internal/core/domain"
)

// RepositoryLister discovers repositories in an organisation.
type RepositoryLister interface {
	// Repositories yields repositories whose names match pattern.
	// The sequence is lazy and restartable: each range starts from the
	// first page. A non-nil error is terminal and wraps domain.ErrDiscovery.
	Repositories(ctx context.Context, organization, pattern string) iter.Seq2[domain.Repository, error]
}

// RateLimitReporter exposes the most recent API budget.
type RateLimitReporter interface {
	RateLimitState() domain.RateLimitState
}
