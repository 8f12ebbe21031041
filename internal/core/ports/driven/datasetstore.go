package driven

import (
	"context"

	"github.com/custodia-labs/repogallery/internal/core/domain"
)

// DatasetStore persists the project dataset.
// Write is atomic: readers see either the previous file or the new one.
type DatasetStore interface {
	Write(ctx context.Context, records []domain.ProjectRecord) error
	Read(ctx context.Context) ([]domain.ProjectRecord, error)
}

// AssetManifestStore persists the outcome of an asset fetch pass.
type AssetManifestStore interface {
	WriteManifest(ctx context.Context, entries []domain.AssetManifestEntry) error
	ReadManifest(ctx context.Context) ([]domain.AssetManifestEntry, error)
}
