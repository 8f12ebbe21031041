package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repogallery/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/repogallery/internal/core/domain"
	"github.com/custodia-labs/repogallery/internal/normalisers/project"
)

// sliceLister yields repos, then err if set.
type sliceLister struct {
	repos []domain.Repository
	err   error
}

func (l *sliceLister) Repositories(ctx context.Context, _, _ string) iter.Seq2[domain.Repository, error] {
	return func(yield func(domain.Repository, error) bool) {
		for _, r := range l.repos {
			if ctx.Err() != nil {
				yield(domain.Repository{}, ctx.Err())
				return
			}
			if !yield(r, nil) {
				return
			}
		}
		if l.err != nil {
			yield(domain.Repository{}, l.err)
		}
	}
}

// scriptedExtractor returns canned results per repository name.
type scriptedExtractor struct {
	mu       sync.Mutex
	results  map[string]*domain.ExtractedFields
	warnings map[string][]string
	calls    map[string]int
	inFlight atomic.Int32
	peak     atomic.Int32
	onCall   func(name string)
}

func (e *scriptedExtractor) Extract(_ context.Context, repo domain.Repository) (*domain.ExtractedFields, []string) {
	n := e.inFlight.Add(1)
	defer e.inFlight.Add(-1)
	for {
		p := e.peak.Load()
		if n <= p || e.peak.CompareAndSwap(p, n) {
			break
		}
	}

	e.mu.Lock()
	if e.calls == nil {
		e.calls = make(map[string]int)
	}
	e.calls[repo.ID.Name]++
	e.mu.Unlock()

	if e.onCall != nil {
		e.onCall(repo.ID.Name)
	}
	if f, ok := e.results[repo.ID.Name]; ok {
		copied := *f
		return &copied, e.warnings[repo.ID.Name]
	}
	return &domain.ExtractedFields{Title: repo.ID.Name, Attempted: 1, Succeeded: 1}, nil
}

type budget struct{ state domain.RateLimitState }

func (b *budget) RateLimitState() domain.RateLimitState { return b.state }

type failingStore struct{ err error }

func (s *failingStore) Write(context.Context, []domain.ProjectRecord) error { return s.err }
func (s *failingStore) Read(context.Context) ([]domain.ProjectRecord, error) { return nil, s.err }

func repos(names ...string) []domain.Repository {
	out := make([]domain.Repository, len(names))
	for i, n := range names {
		out[i] = domain.Repository{ID: domain.RepositoryID{Organization: "UBC-MDS", Name: n}}
	}
	return out
}

func newTestPipeline(lister *sliceLister, ex *scriptedExtractor, store *memory.DatasetStore, workers int) *Pipeline {
	return NewPipeline(lister, ex, project.New("p_"), store, nil, PipelineOptions{
		Organization: "UBC-MDS",
		NamePattern:  "p_",
		MaxWorkers:   workers,
	})
}

func TestPipeline_OneRecordPerRepository(t *testing.T) {
	lister := &sliceLister{repos: repos("p_1_a", "p_2_b", "p_1_a", "p_3_c")}
	ex := &scriptedExtractor{}
	store := memory.NewDatasetStore()

	summary, err := newTestPipeline(lister, ex, store, 2).Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, summary.Discovered)
	assert.Equal(t, 3, summary.Complete)

	written, err := store.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, written, 3)
	assert.Equal(t, "p_1_a", written[0].ID.Name)
	assert.Equal(t, "p_2_b", written[1].ID.Name)
	assert.Equal(t, "p_3_c", written[2].ID.Name)
	assert.Equal(t, 1, ex.calls["p_1_a"])
	assert.Equal(t, 1, store.Writes())
}

func TestPipeline_FailureIsContained(t *testing.T) {
	lister := &sliceLister{repos: repos("p_1_a", "p_2_b")}
	ex := &scriptedExtractor{
		results:  map[string]*domain.ExtractedFields{"p_2_b": {Failed: true, Attempted: 1}},
		warnings: map[string][]string{"p_2_b": {"README: github: transient error after 4 attempts"}},
	}
	store := memory.NewDatasetStore()

	summary, err := newTestPipeline(lister, ex, store, 4).Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Complete)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, domain.StatusComplete, summary.Records[0].Status)
	assert.Equal(t, domain.StatusFailed, summary.Records[1].Status)
}

func TestPipeline_EmptyOrganization(t *testing.T) {
	store := memory.NewDatasetStore()

	summary, err := newTestPipeline(&sliceLister{}, &scriptedExtractor{}, store, 4).Fetch(context.Background())

	require.NoError(t, err)
	assert.Zero(t, summary.Discovered)
	written, err := store.Read(context.Background())
	require.NoError(t, err)
	assert.Empty(t, written)
}

func TestPipeline_DiscoveryErrorWritesNothing(t *testing.T) {
	discoveryErr := fmt.Errorf("listing: %w", domain.ErrDiscovery)
	lister := &sliceLister{repos: repos("p_1_a"), err: discoveryErr}
	store := memory.NewDatasetStore()

	_, err := newTestPipeline(lister, &scriptedExtractor{}, store, 4).Fetch(context.Background())

	assert.ErrorIs(t, err, domain.ErrDiscovery)
	assert.Zero(t, store.Writes())
}

func TestPipeline_CancellationWritesNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lister := &sliceLister{repos: repos("p_1_a", "p_2_b", "p_3_c")}
	ex := &scriptedExtractor{onCall: func(name string) {
		if name == "p_1_a" {
			cancel()
		}
	}}
	store := memory.NewDatasetStore()

	_, err := newTestPipeline(lister, ex, store, 1).Fetch(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, store.Writes())
}

func TestPipeline_PersistFailure(t *testing.T) {
	persistErr := fmt.Errorf("disk full: %w", domain.ErrPersist)
	p := NewPipeline(&sliceLister{repos: repos("p_1_a")}, &scriptedExtractor{}, project.New("p_"),
		&failingStore{err: persistErr}, nil, PipelineOptions{MaxWorkers: 1})

	_, err := p.Fetch(context.Background())

	assert.True(t, errors.Is(err, domain.ErrPersist))
}

func TestPipeline_PoolBoundedByBudget(t *testing.T) {
	lister := &sliceLister{repos: repos("p_1", "p_2", "p_3", "p_4", "p_5", "p_6")}
	release := make(chan struct{})
	ex := &scriptedExtractor{}
	ex.onCall = func(string) { <-release }

	p := NewPipeline(lister, ex, project.New("p_"), memory.NewDatasetStore(),
		&budget{state: domain.RateLimitState{Remaining: 6}},
		PipelineOptions{MaxWorkers: 8, CallsPerRepository: 3})

	done := make(chan error, 1)
	go func() {
		_, err := p.Fetch(context.Background())
		done <- err
	}()
	close(release)
	require.NoError(t, <-done)

	assert.LessOrEqual(t, ex.peak.Load(), int32(2))
}

// refreshingLister lowers the budget before yielding, as a real listing
// does when its first response carries rate-limit headers.
type refreshingLister struct {
	sliceLister
	budget    *budget
	remaining int
}

func (l *refreshingLister) Repositories(ctx context.Context, org, pattern string) iter.Seq2[domain.Repository, error] {
	return func(yield func(domain.Repository, error) bool) {
		l.budget.state.Remaining = l.remaining
		for r, err := range l.sliceLister.Repositories(ctx, org, pattern) {
			if !yield(r, err) {
				return
			}
		}
	}
}

func TestPipeline_PoolSizedAfterFirstPage(t *testing.T) {
	b := &budget{state: domain.RateLimitState{Remaining: 5000}}
	lister := &refreshingLister{
		sliceLister: sliceLister{repos: repos("p_1", "p_2", "p_3", "p_4")},
		budget:      b,
		remaining:   3,
	}
	ex := &scriptedExtractor{}

	p := NewPipeline(lister, ex, project.New("p_"), memory.NewDatasetStore(), b,
		PipelineOptions{MaxWorkers: 8, CallsPerRepository: 3})

	summary, err := p.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, summary.Records, 4)
	assert.Equal(t, int32(1), ex.peak.Load())
}

func TestPoolSize(t *testing.T) {
	tests := []struct {
		name      string
		remaining int
		max       int
		calls     int
		want      int
	}{
		{"plenty of budget", 5000, 4, 3, 4},
		{"budget limits", 7, 4, 3, 2},
		{"exhausted budget keeps one worker", 0, 4, 3, 1},
		{"zero max", 100, 0, 3, 1},
		{"zero calls", 2, 4, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := domain.RateLimitState{Remaining: tt.remaining}
			assert.Equal(t, tt.want, PoolSize(state, tt.max, tt.calls))
		})
	}
}
