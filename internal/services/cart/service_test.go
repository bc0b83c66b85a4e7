package cart

import (
	"context"
	"testing"
	"time"

	"github.com/deepgram/shopfront/internal/services/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]catalog.Product{
		{ID: "vase", Name: "Vase", Category: "Decor", Price: 20, Stock: 3},
		{ID: "mug", Name: "Mug", Category: "Kitchen", Price: 8.5, Stock: 10},
		{ID: "runner", Name: "Runner", Category: "Textiles", Price: 28, Stock: 0},
	})
	require.NoError(t, err)
	return c
}

func TestAddCapsAtStock(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil, testCatalog(t))

	_, err := svc.Add(ctx, "s1", "vase", 2)
	require.NoError(t, err)
	state, err := svc.Add(ctx, "s1", "vase", 5)
	require.NoError(t, err)

	require.Len(t, state.Items, 1)
	assert.Equal(t, 3, state.Items[0].Quantity)
}

func TestAddRejectsUnknownAndOutOfStock(t *testing.T) {
	svc := NewService(nil, testCatalog(t))

	_, err := svc.Add(context.Background(), "s1", "ghost", 1)
	assert.ErrorIs(t, err, ErrUnknownProduct)

	_, err = svc.Add(context.Background(), "s1", "runner", 1)
	assert.ErrorIs(t, err, ErrOutOfStock)
}

func TestPersistsAcrossLoads(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	cat := testCatalog(t)

	_, err := NewServiceWithStore(store, cat).Add(ctx, "s1", "mug", 2)
	require.NoError(t, err)

	state, err := NewServiceWithStore(store, cat).Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []Line{{ProductID: "mug", Quantity: 2}}, state.Items)

	other, err := NewServiceWithStore(store, cat).Get(ctx, "s2")
	require.NoError(t, err)
	assert.Empty(t, other.Items)
}

func TestSetQuantityAndRemove(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil, testCatalog(t))

	_, err := svc.Add(ctx, "s1", "mug", 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "s1", "vase", 1)
	require.NoError(t, err)

	state, err := svc.SetQuantity(ctx, "s1", "mug", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, state.Items[0].Quantity)

	count, subtotal := svc.Totals(state)
	assert.Equal(t, 5, count)
	assert.InDelta(t, 54.0, subtotal, 0.001)

	state, err = svc.Remove(ctx, "s1", "mug")
	require.NoError(t, err)
	assert.Equal(t, []Line{{ProductID: "vase", Quantity: 1}}, state.Items)
}

func TestToggleWishlist(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil, testCatalog(t))

	state, err := svc.ToggleWishlist(ctx, "s1", "runner")
	require.NoError(t, err)
	assert.Equal(t, []string{"runner"}, state.Wishlist)

	state, err = svc.ToggleWishlist(ctx, "s1", "runner")
	require.NoError(t, err)
	assert.Empty(t, state.Wishlist)
}

func TestEffects(t *testing.T) {
	svc := NewService(nil, testCatalog(t))
	changed := make(chan *State, 1)
	var navigated string

	effects := NewEffects(svc, "s1", func(st *State) { changed <- st }, func(id string) { navigated = id })

	effects.RequestAddToCart("vase")
	select {
	case st := <-changed:
		assert.Equal(t, []Line{{ProductID: "vase", Quantity: 1}}, st.Items)
	case <-time.After(time.Second):
		t.Fatal("cart change not reported")
	}

	effects.RequestNavigateToProduct("mug")
	assert.Equal(t, "mug", navigated)
}
