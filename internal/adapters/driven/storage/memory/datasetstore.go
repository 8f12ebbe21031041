// Package memory provides in-memory dataset and manifest stores for tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/repogallery/internal/core/domain"
	"github.com/custodia-labs/repogallery/internal/core/ports/driven"
)

// Ensure the stores implement the interfaces.
var (
	_ driven.DatasetStore       = (*DatasetStore)(nil)
	_ driven.AssetManifestStore = (*ManifestStore)(nil)
)

// DatasetStore is an in-memory implementation of driven.DatasetStore.
type DatasetStore struct {
	mu      sync.RWMutex
	records []domain.ProjectRecord
	written bool
	writes  int
}

// NewDatasetStore creates an empty in-memory dataset store.
func NewDatasetStore() *DatasetStore {
	return &DatasetStore{}
}

// Write replaces the stored records. Duplicate identifiers are rejected.
func (s *DatasetStore) Write(ctx context.Context, records []domain.ProjectRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	seen := make(map[domain.RepositoryID]bool, len(records))
	for _, r := range records {
		if seen[r.ID] {
			return fmt.Errorf("%w: duplicate record %s", domain.ErrPersist, r.ID)
		}
		seen[r.ID] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]domain.ProjectRecord(nil), records...)
	s.written = true
	s.writes++
	return nil
}

// Read returns the stored records, or domain.ErrNotFound before the
// first write.
func (s *DatasetStore) Read(ctx context.Context) ([]domain.ProjectRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.written {
		return nil, domain.ErrNotFound
	}
	return append([]domain.ProjectRecord(nil), s.records...), nil
}

// Writes returns how many times Write succeeded.
func (s *DatasetStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// ManifestStore is an in-memory implementation of driven.AssetManifestStore.
type ManifestStore struct {
	mu      sync.RWMutex
	entries []domain.AssetManifestEntry
	written bool
}

// NewManifestStore creates an empty in-memory manifest store.
func NewManifestStore() *ManifestStore {
	return &ManifestStore{}
}

// WriteManifest replaces the stored entries.
func (s *ManifestStore) WriteManifest(ctx context.Context, entries []domain.AssetManifestEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]domain.AssetManifestEntry(nil), entries...)
	s.written = true
	return nil
}

// ReadManifest returns the stored entries, or domain.ErrNotFound before
// the first write.
func (s *ManifestStore) ReadManifest(ctx context.Context) ([]domain.AssetManifestEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.written {
		return nil, domain.ErrNotFound
	}
	return append([]domain.AssetManifestEntry(nil), s.entries...), nil
}
