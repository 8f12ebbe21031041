package domain

import "fmt"

// ContentKind selects how a fetched path is parsed.
type ContentKind string

const (
	// KindReadme is a Markdown README.
	KindReadme ContentKind = "readme"

	// KindMetadata is a YAML metadata file.
	KindMetadata ContentKind = "metadata"

	// KindAssets is a directory whose image files are assets.
	KindAssets ContentKind = "assets"
)

// ContentPath is one repository path the extractor reads.
type ContentPath struct {
	Label    string      `toml:"label"`
	Path     string      `toml:"path"`
	Kind     ContentKind `toml:"kind"`
	Required bool        `toml:"required"`
}

// Validate checks the path has a location and a known kind.
func (p ContentPath) Validate() error {
	if p.Path == "" {
		return fmt.Errorf("%w: content path %q has no path", ErrInvalidInput, p.Label)
	}
	switch p.Kind {
	case KindReadme, KindMetadata, KindAssets:
		return nil
	}
	return fmt.Errorf("%w: content path %q has kind %q", ErrInvalidInput, p.Path, p.Kind)
}

// Name returns the label used in warnings, defaulting to the path.
func (p ContentPath) Name() string {
	if p.Label != "" {
		return p.Label
	}
	return p.Path
}

// DefaultContentPaths returns the layout student repositories follow.
// All paths are optional.
func DefaultContentPaths() []ContentPath {
	return []ContentPath{
		{Label: "README", Path: "README.md", Kind: KindReadme},
		{Label: "metadata file", Path: "metadata.yml", Kind: KindMetadata},
		{Label: "asset directory", Path: "img", Kind: KindAssets},
	}
}
