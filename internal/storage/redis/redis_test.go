package redis

import (
	"context"
	"testing"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/cart"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/config"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/models"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/storage"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	mr := miniredis.RunT(t)

	client, err := New(context.Background(), config.Redis{
		Host: mr.Host(),
		Port: mr.Port(),
	})
	require.NoError(t, err)

	return client
}

func TestClient_SetGet(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	require.NoError(t, client.Set(ctx, "cart:s", []byte(`{"schema_version":1}`)))

	value, err := client.Get(ctx, "cart:s")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"schema_version":1}`), value)
}

func TestClient_GetMissingKey(t *testing.T) {
	client := newTestClient(t)

	_, err := client.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestClient_Delete(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	require.NoError(t, client.Set(ctx, "k", []byte("v")))
	require.NoError(t, client.Delete(ctx, "k"))

	_, err := client.Get(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// deleting an absent key is not an error
	assert.NoError(t, client.Delete(ctx, "k"))
}

func TestClient_CartSurvivesReload(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	product := models.Product{ID: "p-1", Name: "Tour T-Shirt", Price: 25, Category: "apparel"}

	store := cart.NewStore(client, "session-1")
	require.NoError(t, store.AddItem(ctx, product))
	require.NoError(t, store.AddItem(ctx, product))

	// a fresh Store over the same Redis sees the same cart
	reloaded := cart.NewStore(client, "session-1")

	items, err := reloaded.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)

	subtotal, err := reloaded.Subtotal(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, subtotal, 0.001)
}

func TestClient_Overwrite(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	require.NoError(t, client.Set(ctx, "k", []byte("old")))
	require.NoError(t, client.Set(ctx, "k", []byte("new")))

	value, err := client.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), value)
}
