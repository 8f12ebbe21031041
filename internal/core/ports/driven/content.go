package driven

import (
	"context"

	"github.com/custodia-labs/repogallery/internal/core/domain"
)

// DirEntry is one entry of a repository directory listing.
type DirEntry struct {
	Name string
	Path string
	Type string // "file", "dir", "symlink" or "submodule"
	Size int64
}

// ContentFetcher reads content from a repository at a ref.
// A missing path is reported with found=false and a nil error.
type ContentFetcher interface {
	GetFile(ctx context.Context, id domain.RepositoryID, path, ref string) (content []byte, found bool, err error)
	ListDirectory(ctx context.Context, id domain.RepositoryID, path, ref string) (entries []DirEntry, found bool, err error)
}

// ContentExtractor pulls raw fields from a repository.
// It never fails: problems are reported as warnings and, when severe,
// by setting ExtractedFields.Failed.
type ContentExtractor interface {
	Extract(ctx context.Context, repo domain.Repository) (*domain.ExtractedFields, []string)
}

// RecordNormaliser builds the canonical record for a repository.
type RecordNormaliser interface {
	Normalise(repo domain.Repository, fields *domain.ExtractedFields, warnings []string) domain.ProjectRecord
}
