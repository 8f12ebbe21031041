package file

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/custodia-labs/repogallery/internal/core/domain"
	"github.com/custodia-labs/repogallery/internal/core/ports/driven"
)

// Ensure ManifestStore implements the interface.
var _ driven.AssetManifestStore = (*ManifestStore)(nil)

// ManifestStore stores asset fetch outcomes, sorted by record then
// source URL.
type ManifestStore struct {
	path   string
	writer atomicWriter
}

// NewManifestStore creates a store writing to path.
func NewManifestStore(path string) *ManifestStore {
	return &ManifestStore{path: path}
}

// WriteManifest replaces the manifest.
func (s *ManifestStore) WriteManifest(ctx context.Context, entries []domain.AssetManifestEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sorted := append(make([]domain.AssetManifestEntry, 0, len(entries)), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.RecordID != b.RecordID {
			return a.RecordID.String() < b.RecordID.String()
		}
		return a.SourceURL < b.SourceURL
	})

	data, err := json.MarshalIndent(sorted, "", "  ")
	if err != nil {
		return &PersistError{Path: s.path, Op: "encode", Err: err}
	}
	return s.writer.write(s.path, append(data, '\n'))
}

// ReadManifest loads the manifest. A missing file wraps domain.ErrNotFound.
func (s *ManifestStore) ReadManifest(ctx context.Context) ([]domain.AssetManifestEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := []domain.AssetManifestEntry{}
	if err := readJSON(s.path, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
