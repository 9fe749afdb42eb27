package checkout

import (
	"testing"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLines() []models.CartLine {
	return []models.CartLine{
		{ProductID: "p-1", Name: "Tour T-Shirt", UnitPrice: 25, Quantity: 2},
		{ProductID: "p-2", Name: "Live Album", UnitPrice: 12.5, Quantity: 1},
	}
}

func TestNewDraft_EmptyCart(t *testing.T) {
	draft, err := NewDraft(nil, 0, "USD")

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, draft)
}

func TestNewDraft_Totals(t *testing.T) {
	draft, err := NewDraft(testLines(), 0.075, "USD")
	require.NoError(t, err)

	assert.InDelta(t, 62.5, draft.Subtotal, 0.001)
	assert.InDelta(t, 4.69, draft.Tax, 0.001)
	assert.InDelta(t, 67.19, draft.Total, 0.001)
	assert.Equal(t, "USD", draft.Currency)
	assert.Equal(t, models.StatusDraft, draft.Status)
	assert.NotEmpty(t, draft.OrderID)
}

func TestNewDraft_ZeroTaxRate(t *testing.T) {
	draft, err := NewDraft(testLines(), 0, "USD")
	require.NoError(t, err)

	assert.Zero(t, draft.Tax)
	assert.InDelta(t, draft.Subtotal, draft.Total, 0.001)
}

func TestNewDraft_FreezesLines(t *testing.T) {
	lines := testLines()

	draft, err := NewDraft(lines, 0, "USD")
	require.NoError(t, err)

	lines[0].Quantity = 100
	lines[1].UnitPrice = 0

	assert.Equal(t, 2, draft.Lines[0].Quantity)
	assert.InDelta(t, 12.5, draft.Lines[1].UnitPrice, 0.001)
}

func TestNewDraft_UniqueOrderIDs(t *testing.T) {
	seen := map[string]bool{}

	for range 100 {
		draft, err := NewDraft(testLines(), 0, "USD")
		require.NoError(t, err)

		assert.False(t, seen[draft.OrderID], "duplicate order id %s", draft.OrderID)
		seen[draft.OrderID] = true
	}
}
