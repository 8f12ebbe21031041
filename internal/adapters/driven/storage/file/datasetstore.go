package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/custodia-labs/repogallery/internal/core/domain"
	"github.com/custodia-labs/repogallery/internal/core/ports/driven"
)

// Ensure DatasetStore implements the interface.
var _ driven.DatasetStore = (*DatasetStore)(nil)

// DatasetStore stores project records as an indented JSON array sorted
// by identifier, so unchanged input produces byte-identical files.
type DatasetStore struct {
	path   string
	writer atomicWriter
}

// NewDatasetStore creates a store writing to path.
func NewDatasetStore(path string) *DatasetStore {
	return &DatasetStore{path: path}
}

// Path returns the dataset file path.
func (s *DatasetStore) Path() string {
	return s.path
}

// Write replaces the dataset. Records must be valid and have unique
// identifiers; otherwise nothing is written.
func (s *DatasetStore) Write(ctx context.Context, records []domain.ProjectRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sorted := make([]domain.ProjectRecord, 0, len(records))
	seen := make(map[domain.RepositoryID]bool, len(records))
	for i := range records {
		r := records[i]
		if err := r.Validate(); err != nil {
			return &PersistError{Path: s.path, Op: "validate", Err: err}
		}
		if seen[r.ID] {
			return &PersistError{
				Path: s.path,
				Op:   "validate",
				Err:  fmt.Errorf("%w: duplicate record %s", domain.ErrInvalidInput, r.ID),
			}
		}
		seen[r.ID] = true
		sorted = append(sorted, r)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID.String() < sorted[j].ID.String()
	})

	data, err := json.MarshalIndent(sorted, "", "  ")
	if err != nil {
		return &PersistError{Path: s.path, Op: "encode", Err: err}
	}
	return s.writer.write(s.path, append(data, '\n'))
}

// Read loads the dataset. A missing file wraps domain.ErrNotFound.
func (s *DatasetStore) Read(ctx context.Context) ([]domain.ProjectRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := []domain.ProjectRecord{}
	if err := readJSON(s.path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrInvalidInput, path, err)
	}
	return nil
}
