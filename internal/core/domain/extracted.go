package domain

// ExtractedFields holds the raw, un-normalised values pulled from one
// repository's content. Asset references may still be relative to
// SourcePath of the file they came from.
type ExtractedFields struct {
	Title        string
	Description  string
	Contributors []string
	Assets       []RawAsset

	// Attempted and Succeeded count content fetches. A "not found"
	// result counts as attempted but not succeeded.
	Attempted int
	Succeeded int

	// Failed is set when a required path is missing or a fetch error
	// stopped extraction.
	Failed bool
}

// RawAsset is an asset reference as written in repository content.
type RawAsset struct {
	// Ref is the link target exactly as found (URL or path). A path
	// starting with "/" is relative to the repository root.
	Ref string

	// SourcePath is the repository path of the file that contained Ref,
	// used to resolve relative references. Empty means repository root.
	SourcePath string
}
