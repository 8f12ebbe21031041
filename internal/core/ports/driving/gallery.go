package driving

import (
	"context"

	"github.com/custodia-labs/repogallery/internal/core/domain"
)

// GalleryFetcher builds the project dataset from the organisation.
type GalleryFetcher interface {
	// Fetch discovers, extracts and normalises every matching repository
	// and writes the dataset once all of them have settled.
	Fetch(ctx context.Context) (*FetchSummary, error)
}

// FetchSummary describes a completed fetch run.
type FetchSummary struct {
	Discovered int
	Complete   int
	Partial    int
	Failed     int
	Records    []domain.ProjectRecord
}

// AssetMirror downloads the assets referenced by a dataset.
type AssetMirror interface {
	// Mirror fetches every asset of records and persists the manifest.
	Mirror(ctx context.Context, records []domain.ProjectRecord) (*AssetSummary, error)
}

// AssetSummary counts asset outcomes of one pass.
type AssetSummary struct {
	Downloaded int
	Skipped    int
	Failed     int
	Entries    []domain.AssetManifestEntry
}

// StatusReporter summarises the persisted dataset.
type StatusReporter interface {
	Report(ctx context.Context) (*StatusReport, error)
}

// StatusReport is the per-record view of the dataset and asset manifest.
type StatusReport struct {
	Records  []RecordStatus
	Complete int
	Partial  int
	Failed   int

	// HasManifest is false when no asset pass has run yet.
	HasManifest bool
}

// RecordStatus is one record with its asset counts.
type RecordStatus struct {
	Record       domain.ProjectRecord
	AssetsLocal  int
	AssetsFailed int
}
