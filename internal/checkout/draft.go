package checkout

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/models"
)

// NewDraft замораживает позиции корзины и цены в момент начала
// оформления: дальнейшие изменения корзины (например, в другой вкладке)
// не могут повлиять на заказ в полете. Налог - единая ставка на весь
// заказ, не на позицию.
func NewDraft(lines []models.CartLine, taxRate float64, currency string) (*models.OrderDraft, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	frozen := make([]models.CartLine, len(lines))
	copy(frozen, lines)

	subtotal := models.Subtotal(frozen)
	tax := round2(subtotal * taxRate)

	return &models.OrderDraft{
		OrderID:   newOrderID(),
		Lines:     frozen,
		Subtotal:  subtotal,
		Tax:       tax,
		Total:     round2(subtotal + tax),
		Currency:  currency,
		Status:    models.StatusDraft,
		CreatedAt: time.Now(),
	}, nil
}

const orderIDAlphabet = "0123456789abcdef"

// newOrderID выдает глобально уникальный идентификатор заказа:
// наносекундная метка времени плюс случайный суффикс против коллизий
// в пределах одной наносекунды.
func newOrderID() string {
	suffix := make([]byte, 6)

	for i := range suffix {
		suffix[i] = orderIDAlphabet[rand.IntN(len(orderIDAlphabet))]
	}

	return fmt.Sprintf("ord-%d-%s", time.Now().UnixNano(), suffix)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
