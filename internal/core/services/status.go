package services

import (
	"context"
	"errors"

	"github.com/custodia-labs/repogallery/internal/core/domain"
	"github.com/custodia-labs/repogallery/internal/core/ports/driven"
	"github.com/custodia-labs/repogallery/internal/core/ports/driving"
)

// Ensure StatusService implements the interface.
var _ driving.StatusReporter = (*StatusService)(nil)

// StatusService reports on the persisted dataset.
type StatusService struct {
	dataset  driven.DatasetStore
	manifest driven.AssetManifestStore
}

// NewStatusService creates a status service.
func NewStatusService(dataset driven.DatasetStore, manifest driven.AssetManifestStore) *StatusService {
	return &StatusService{dataset: dataset, manifest: manifest}
}

// Report reads the dataset and, when present, the asset manifest.
func (s *StatusService) Report(ctx context.Context) (*driving.StatusReport, error) {
	records, err := s.dataset.Read(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.manifest.ReadManifest(ctx)
	hasManifest := err == nil
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	type counts struct{ local, failed int }
	perRecord := make(map[domain.RepositoryID]*counts)
	for _, e := range entries {
		c := perRecord[e.RecordID]
		if c == nil {
			c = &counts{}
			perRecord[e.RecordID] = c
		}
		if e.Outcome.Result == domain.AssetFailed {
			c.failed++
		} else {
			c.local++
		}
	}

	report := &driving.StatusReport{HasManifest: hasManifest}
	for _, r := range records {
		line := driving.RecordStatus{Record: r}
		if c := perRecord[r.ID]; c != nil {
			line.AssetsLocal, line.AssetsFailed = c.local, c.failed
		}
		report.Records = append(report.Records, line)

		switch r.Status {
		case domain.StatusComplete:
			report.Complete++
		case domain.StatusPartial:
			report.Partial++
		case domain.StatusFailed:
			report.Failed++
		}
	}
	return report, nil
}
