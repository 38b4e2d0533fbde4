package store

import (
	"context"
	"testing"

	perrors "github.com/abgdnv/productcatalog/internal/product/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_InMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	// empty store lists as empty, non-nil slice
	list, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	// put and get
	p := Product{ID: "1", Name: "Mug", Description: "Blue", Price: 9.5, ImageURL: "https://b.memory.local/products/1.jpg"}
	require.NoError(t, s.Put(ctx, p))
	got, err := s.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, p, *got)

	// put is idempotent and replaces
	p.Name = "Cup"
	require.NoError(t, s.Put(ctx, p))
	require.NoError(t, s.Put(ctx, p))
	list, err = s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Cup", list[0].Name)

	// delete is idempotent
	require.NoError(t, s.Delete(ctx, "1"))
	require.NoError(t, s.Delete(ctx, "1"))
	_, err = s.Get(ctx, "1")
	assert.ErrorIs(t, err, perrors.ErrProductNotFound)
}
