package cart

import (
	"context"
	"testing"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/models"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tshirt = models.Product{ID: "p-1", Name: "Tour T-Shirt", Price: 25, Category: "apparel"}
	album  = models.Product{ID: "p-2", Name: "Live Album", Price: 12.5, Category: "music"}
)

func TestStore_AddItem(t *testing.T) {
	ctx := context.Background()
	store := NewStore(memory.New(), "session-1")

	require.NoError(t, store.AddItem(ctx, tshirt))
	require.NoError(t, store.AddItem(ctx, album))

	items, err := store.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, "Tour T-Shirt", items[0].Name)
}

func TestStore_AddItemTwiceAccumulatesQuantity(t *testing.T) {
	ctx := context.Background()

	// addItem twice must be equivalent to addItem + updateQuantity(id, 2)
	added := NewStore(memory.New(), "s")
	require.NoError(t, added.AddItem(ctx, tshirt))
	require.NoError(t, added.AddItem(ctx, tshirt))

	updated := NewStore(memory.New(), "s")
	require.NoError(t, updated.AddItem(ctx, tshirt))
	require.NoError(t, updated.UpdateQuantity(ctx, tshirt.ID, 2))

	addedItems, err := added.Items(ctx)
	require.NoError(t, err)

	updatedItems, err := updated.Items(ctx)
	require.NoError(t, err)

	assert.Equal(t, updatedItems, addedItems)

	subtotal, err := added.Subtotal(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, subtotal, 0.001)
}

func TestStore_SubtotalNeverDrifts(t *testing.T) {
	ctx := context.Background()
	store := NewStore(memory.New(), "s")

	require.NoError(t, store.AddItem(ctx, tshirt))
	require.NoError(t, store.AddItem(ctx, album))
	require.NoError(t, store.UpdateQuantity(ctx, tshirt.ID, 5))
	require.NoError(t, store.AddItem(ctx, album))
	require.NoError(t, store.RemoveItem(ctx, tshirt.ID))
	require.NoError(t, store.AddItem(ctx, tshirt))

	items, err := store.Items(ctx)
	require.NoError(t, err)

	var expected float64
	for _, line := range items {
		expected += line.UnitPrice * float64(line.Quantity)
	}

	subtotal, err := store.Subtotal(ctx)
	require.NoError(t, err)
	assert.InDelta(t, expected, subtotal, 0.001)

	count, err := store.ItemCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestStore_UpdateQuantityZeroRemovesLine(t *testing.T) {
	ctx := context.Background()
	store := NewStore(memory.New(), "s")

	require.NoError(t, store.AddItem(ctx, tshirt))
	require.NoError(t, store.UpdateQuantity(ctx, tshirt.ID, 0))

	items, err := store.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	// removing an already removed line is a no-op, not an error
	require.NoError(t, store.RemoveItem(ctx, tshirt.ID))
}

func TestStore_UpdateQuantityNegativeRemovesLine(t *testing.T) {
	ctx := context.Background()
	store := NewStore(memory.New(), "s")

	require.NoError(t, store.AddItem(ctx, tshirt))
	require.NoError(t, store.UpdateQuantity(ctx, tshirt.ID, -3))

	items, err := store.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStore_PersistsAcrossReload(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()

	store := NewStore(kv, "session-1")
	require.NoError(t, store.AddItem(ctx, tshirt))
	require.NoError(t, store.AddItem(ctx, album))
	require.NoError(t, store.UpdateQuantity(ctx, album.ID, 3))

	before, err := store.Items(ctx)
	require.NoError(t, err)

	// a new Store over the same KV simulates a page reload
	reloaded := NewStore(kv, "session-1")

	after, err := reloaded.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()

	require.NoError(t, NewStore(kv, "a").AddItem(ctx, tshirt))

	items, err := NewStore(kv, "b").Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	store := NewStore(memory.New(), "s")

	require.NoError(t, store.AddItem(ctx, tshirt))
	require.NoError(t, store.Clear(ctx))

	items, err := store.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	count, err := store.ItemCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStore_UnknownSchemaVersionDiscardsCart(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()

	require.NoError(t, kv.Set(ctx, "cart:s", []byte(`{"schema_version":99,"items":[{"product_id":"x","quantity":1}]}`)))

	items, err := NewStore(kv, "s").Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}
