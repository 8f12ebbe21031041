package domain

// AssetReference maps one asset of a record to its local mirror path.
// LocalPath depends only on SourceURL.
type AssetReference struct {
	RecordID  RepositoryID `json:"record_id"`
	SourceURL string       `json:"source_url"`
	LocalPath string       `json:"local_path"`
}

// AssetResult describes what happened to an asset during a fetch pass.
type AssetResult string

const (
	// AssetDownloaded means the asset was fetched over the network.
	AssetDownloaded AssetResult = "downloaded"

	// AssetSkipped means a non-empty local copy already existed.
	AssetSkipped AssetResult = "skipped"

	// AssetFailed means the download failed; see Warning.
	AssetFailed AssetResult = "failed"
)

// AssetOutcome is the per-asset result of a fetch pass.
type AssetOutcome struct {
	Result  AssetResult `json:"result"`
	Bytes   int64       `json:"bytes,omitempty"`
	Warning string      `json:"warning,omitempty"`
}

// AssetManifestEntry pairs a reference with its outcome for persistence.
type AssetManifestEntry struct {
	AssetReference
	Outcome AssetOutcome `json:"outcome"`
}
