package services

import (
	"context"
	"iter"

	"github.com/custodia-labs/repogallery/internal/core/domain"
	"github.com/custodia-labs/repogallery/internal/core/ports/driven"
	"github.com/custodia-labs/repogallery/internal/core/ports/driving"
	"github.com/custodia-labs/repogallery/internal/logger"
)

// Ensure AssetService implements the interface.
var _ driving.AssetMirror = (*AssetService)(nil)

// AssetService mirrors record assets into local storage.
type AssetService struct {
	store    driven.AssetStore
	manifest driven.AssetManifestStore
}

// NewAssetService creates an asset service.
func NewAssetService(store driven.AssetStore, manifest driven.AssetManifestStore) *AssetService {
	return &AssetService{store: store, manifest: manifest}
}

// FetchAssets yields one outcome per (record, asset URL) pair. Each URL
// is downloaded at most once per pass, and existing non-empty files are
// skipped. Failures are reported as outcomes, never as errors. The
// sequence stops early when ctx is cancelled.
func (s *AssetService) FetchAssets(
	ctx context.Context, records []domain.ProjectRecord,
) iter.Seq2[domain.AssetReference, domain.AssetOutcome] {
	return func(yield func(domain.AssetReference, domain.AssetOutcome) bool) {
		done := make(map[string]domain.AssetOutcome)

		for _, record := range records {
			for _, url := range record.Assets {
				if ctx.Err() != nil {
					return
				}
				ref := domain.AssetReference{
					RecordID:  record.ID,
					SourceURL: url,
					LocalPath: s.store.LocalPath(url),
				}

				outcome, repeat := done[url]
				switch {
				case repeat && outcome.Result == domain.AssetFailed:
					// same failure, no second attempt
				case repeat:
					outcome = domain.AssetOutcome{Result: domain.AssetSkipped}
				default:
					outcome = s.fetch(ctx, ref)
					done[url] = outcome
				}

				if !yield(ref, outcome) {
					return
				}
			}
		}
	}
}

func (s *AssetService) fetch(ctx context.Context, ref domain.AssetReference) domain.AssetOutcome {
	if s.store.Exists(ref.LocalPath) {
		return domain.AssetOutcome{Result: domain.AssetSkipped}
	}
	n, err := s.store.Download(ctx, ref.SourceURL, ref.LocalPath)
	if err != nil {
		logger.Warn("%s: asset %s: %v", ref.RecordID, ref.SourceURL, err)
		return domain.AssetOutcome{Result: domain.AssetFailed, Warning: err.Error()}
	}
	return domain.AssetOutcome{Result: domain.AssetDownloaded, Bytes: n}
}

// Mirror runs FetchAssets to completion and persists the manifest. Only
// cancellation and a manifest write failure are returned as errors.
func (s *AssetService) Mirror(ctx context.Context, records []domain.ProjectRecord) (*driving.AssetSummary, error) {
	summary := &driving.AssetSummary{Entries: []domain.AssetManifestEntry{}}

	for ref, outcome := range s.FetchAssets(ctx, records) {
		summary.Entries = append(summary.Entries, domain.AssetManifestEntry{AssetReference: ref, Outcome: outcome})
		switch outcome.Result {
		case domain.AssetDownloaded:
			summary.Downloaded++
		case domain.AssetSkipped:
			summary.Skipped++
		case domain.AssetFailed:
			summary.Failed++
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.manifest.WriteManifest(ctx, summary.Entries); err != nil {
		return nil, err
	}
	logger.Info("Assets: %d downloaded, %d skipped, %d failed",
		summary.Downloaded, summary.Skipped, summary.Failed)
	return summary, nil
}
