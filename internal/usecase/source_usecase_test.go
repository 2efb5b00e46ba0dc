package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetworks/fleetworks/internal/adapter/persistence"
	"github.com/fleetworks/fleetworks/internal/domain"
)

func TestSourceUseCase_CreateSource(t *testing.T) {
	uc := NewSourceUseCase(persistence.NewMemorySourceRepository())
	ctx := context.Background()

	source, err := uc.CreateSource(ctx, CreateSourceRequest{
		Title:   "CVSA OOSC",
		Type:    domain.SourceTypeCVSA,
		Content: "handbook text",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.HashContent("handbook text"), source.ContentHash)

	_, err = uc.CreateSource(ctx, CreateSourceRequest{Title: "", Type: domain.SourceTypeCVSA})
	assert.Error(t, err)

	_, err = uc.CreateSource(ctx, CreateSourceRequest{Title: "Bad", Type: "MAGAZINE"})
	assert.Error(t, err)
}

func TestSourceUseCase_SeedSourceIdempotent(t *testing.T) {
	uc := NewSourceUseCase(persistence.NewMemorySourceRepository())
	ctx := context.Background()

	req := CreateSourceRequest{
		Title:   "CVSA OOSC",
		Type:    domain.SourceTypeCVSA,
		Content: "handbook text",
	}

	first, written, err := uc.SeedSource(ctx, req)
	require.NoError(t, err)
	assert.True(t, written)

	second, written, err := uc.SeedSource(ctx, req)
	require.NoError(t, err)
	assert.False(t, written, "unchanged content must not rewrite the source")
	assert.Equal(t, first.ID, second.ID)

	req.Content = "revised handbook text"
	third, written, err := uc.SeedSource(ctx, req)
	require.NoError(t, err)
	assert.True(t, written, "changed content hash triggers a corrective edit")
	assert.Equal(t, first.ID, third.ID)
	assert.Equal(t, domain.HashContent("revised handbook text"), third.ContentHash)
}
