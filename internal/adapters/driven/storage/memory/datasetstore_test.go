package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repogallery/internal/core/domain"
)

func TestDatasetStore(t *testing.T) {
	store := NewDatasetStore()
	ctx := context.Background()

	_, err := store.Read(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	r := domain.ProjectRecord{ID: domain.RepositoryID{Organization: "o", Name: "a"}, Status: domain.StatusComplete}
	require.NoError(t, store.Write(ctx, []domain.ProjectRecord{r}))

	out, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.ProjectRecord{r}, out)
	assert.Equal(t, 1, store.Writes())

	err = store.Write(ctx, []domain.ProjectRecord{r, r})
	assert.ErrorIs(t, err, domain.ErrPersist)
	assert.Equal(t, 1, store.Writes())
}

func TestManifestStore(t *testing.T) {
	store := NewManifestStore()
	ctx := context.Background()

	_, err := store.ReadManifest(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	entry := domain.AssetManifestEntry{Outcome: domain.AssetOutcome{Result: domain.AssetSkipped}}
	require.NoError(t, store.WriteManifest(ctx, []domain.AssetManifestEntry{entry}))

	out, err := store.ReadManifest(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.AssetManifestEntry{entry}, out)
}
