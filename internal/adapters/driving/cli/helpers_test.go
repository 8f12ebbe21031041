package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/repogallery/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/repogallery/internal/core/domain"
	"github.com/custodia-labs/repogallery/internal/core/ports/driving"
)

type mockFetcher struct {
	summary *driving.FetchSummary
	err     error
}

func (m *mockFetcher) Fetch(context.Context) (*driving.FetchSummary, error) {
	return m.summary, m.err
}

type mockMirror struct {
	got     []domain.ProjectRecord
	summary *driving.AssetSummary
	err     error
}

func (m *mockMirror) Mirror(_ context.Context, records []domain.ProjectRecord) (*driving.AssetSummary, error) {
	m.got = records
	return m.summary, m.err
}

type mockStatus struct {
	report *driving.StatusReport
	err    error
}

func (m *mockStatus) Report(context.Context) (*driving.StatusReport, error) {
	return m.report, m.err
}

// setupServices swaps the service factory for svc until the test ends.
func setupServices(t *testing.T, svc *Services) {
	t.Helper()
	old := newServices
	newServices = func() (*Services, error) { return svc, nil }
	t.Cleanup(func() { newServices = old })
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return buf.String(), err
}

func sample(name string, status domain.RecordStatus, warnings ...string) domain.ProjectRecord {
	return domain.ProjectRecord{
		ID:       domain.RepositoryID{Organization: "UBC-MDS", Name: name},
		Status:   status,
		Warnings: warnings,
		Assets:   []string{"https://x/" + name + ".png"},
	}
}

func datasetWith(t *testing.T, records ...domain.ProjectRecord) *memory.DatasetStore {
	t.Helper()
	store := memory.NewDatasetStore()
	if err := store.Write(context.Background(), records); err != nil {
		t.Fatal(err)
	}
	return store
}
