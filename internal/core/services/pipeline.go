package services

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/repogallery/internal/core/domain"
	"github.com/custodia-labs/repogallery/internal/core/ports/driven"
	"github.com/custodia-labs/repogallery/internal/core/ports/driving"
	"github.com/custodia-labs/repogallery/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.GalleryFetcher = (*Pipeline)(nil)

// PipelineOptions configures a fetch run.
type PipelineOptions struct {
	Organization string
	NamePattern  string

	// MaxWorkers bounds concurrent repository processing.
	MaxWorkers int

	// CallsPerRepository is the expected API cost of one repository,
	// used to size the pool against the remaining budget.
	CallsPerRepository int
}

// Pipeline runs discovery, extraction and normalisation, then writes the
// dataset at a single join point.
type Pipeline struct {
	lister     driven.RepositoryLister
	extractor  driven.ContentExtractor
	normaliser driven.RecordNormaliser
	store      driven.DatasetStore
	budget     driven.RateLimitReporter
	opts       PipelineOptions
}

// NewPipeline creates a pipeline. budget may be nil, in which case the
// pool always uses MaxWorkers.
func NewPipeline(
	lister driven.RepositoryLister,
	extractor driven.ContentExtractor,
	normaliser driven.RecordNormaliser,
	store driven.DatasetStore,
	budget driven.RateLimitReporter,
	opts PipelineOptions,
) *Pipeline {
	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = 1
	}
	if opts.CallsPerRepository < 1 {
		opts.CallsPerRepository = 1
	}
	return &Pipeline{
		lister:     lister,
		extractor:  extractor,
		normaliser: normaliser,
		store:      store,
		budget:     budget,
		opts:       opts,
	}
}

// PoolSize returns how many repositories may be processed at once so
// that each in-flight repository can still complete within the
// remaining budget.
func PoolSize(state domain.RateLimitState, maxWorkers, callsPerRepository int) int {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if callsPerRepository < 1 {
		callsPerRepository = 1
	}
	n := state.Remaining / callsPerRepository
	if n < 1 {
		return 1
	}
	if n > maxWorkers {
		return maxWorkers
	}
	return n
}

// Fetch runs the pipeline. Per-repository problems become record status
// and warnings. Discovery failure, cancellation and persist failure are
// returned, and in the first two cases nothing is written.
func (p *Pipeline) Fetch(ctx context.Context) (*driving.FetchSummary, error) {
	logger.Info("Fetching %s repositories matching %q",
		p.opts.Organization, p.opts.NamePattern)

	parent := ctx
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	sized := false

	var (
		mu      sync.Mutex
		records = make(map[domain.RepositoryID]domain.ProjectRecord)
		seen    = make(map[domain.RepositoryID]bool)
	)

	var discoveryErr error
	for repo, err := range p.lister.Repositories(gctx, p.opts.Organization, p.opts.NamePattern) {
		if err != nil {
			discoveryErr = err
			break
		}
		if seen[repo.ID] {
			logger.Debug("[pipeline] %s listed twice, ignoring duplicate", repo.ID)
			continue
		}
		seen[repo.ID] = true

		// The first listing page has refreshed the budget by now.
		if !sized {
			workers := p.workers()
			logger.Debug("[pipeline] %d workers", workers)
			g.SetLimit(workers)
			sized = true
		}

		g.Go(func() error {
			record := p.process(gctx, repo)

			mu.Lock()
			records[record.ID] = record
			mu.Unlock()

			return gctx.Err()
		})
	}

	if discoveryErr != nil {
		cancel()
	}
	waitErr := g.Wait()

	if err := parent.Err(); err != nil {
		return nil, err
	}
	if discoveryErr != nil {
		return nil, discoveryErr
	}
	if waitErr != nil {
		return nil, waitErr
	}

	summary := &driving.FetchSummary{Discovered: len(seen)}
	out := make([]domain.ProjectRecord, 0, len(records))
	for _, r := range records {
		out = append(out, r)
		switch r.Status {
		case domain.StatusComplete:
			summary.Complete++
		case domain.StatusPartial:
			summary.Partial++
		case domain.StatusFailed:
			summary.Failed++
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	summary.Records = out

	if err := p.store.Write(ctx, out); err != nil {
		return nil, err
	}
	logger.Info("Wrote %d records (%d complete, %d partial, %d failed)",
		len(out), summary.Complete, summary.Partial, summary.Failed)
	return summary, nil
}

// workers sizes the pool from the current budget. The shared token
// bucket still bounds the aggregate request rate.
func (p *Pipeline) workers() int {
	if p.budget == nil {
		return p.opts.MaxWorkers
	}
	return PoolSize(p.budget.RateLimitState(), p.opts.MaxWorkers, p.opts.CallsPerRepository)
}

func (p *Pipeline) process(ctx context.Context, repo domain.Repository) domain.ProjectRecord {
	logger.Debug("[pipeline] processing %s", repo.ID)

	fields, warnings := p.extractor.Extract(ctx, repo)
	record := p.normaliser.Normalise(repo, fields, warnings)

	for _, w := range record.Warnings {
		logger.Warn("%s: %s", record.ID, w)
	}
	return record
}
