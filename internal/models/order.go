package models

import "time"

// OrderStatus - статус черновика заказа. Статус движется строго вперед:
// откат из confirmed или failed невозможен.
type OrderStatus string

const (
	StatusDraft               OrderStatus = "draft"
	StatusAwaitingPayment     OrderStatus = "awaiting_payment"
	StatusPendingConfirmation OrderStatus = "pending_confirmation"
	StatusConfirmed           OrderStatus = "confirmed"
	StatusFailed              OrderStatus = "failed"
)

func (s OrderStatus) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusFailed
}

func (s OrderStatus) String() string {
	return string(s)
}

// rank задает порядок статусов для проверки движения строго вперед.
func (s OrderStatus) rank() int {
	switch s {
	case StatusDraft:
		return 0
	case StatusAwaitingPayment:
		return 1
	case StatusPendingConfirmation:
		return 2
	case StatusConfirmed, StatusFailed:
		return 3
	}

	return -1
}

// CanAdvance сообщает, допустим ли переход статуса в `next`.
// Терминальные статусы не допускают никаких переходов.
func (s OrderStatus) CanAdvance(next OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}

	return next.rank() > s.rank()
}

// OrderDraft - неизменяемый снимок корзины, доставки и цен, созданный
// в момент начала оформления заказа. Последующие изменения корзины
// на черновик не влияют; после отправки платежа меняется только статус
// и ссылка подтверждения.
type OrderDraft struct {
	OrderID       string        `json:"order_id"`
	Lines         []CartLine    `json:"lines"`
	Subtotal      float64       `json:"subtotal"`
	Tax           float64       `json:"tax"`
	Total         float64       `json:"total"`
	Currency      string        `json:"currency"`
	Shipping      ShippingInfo  `json:"shipping"`
	PaymentMethod PaymentMethod `json:"payment_method,omitempty"`
	Status        OrderStatus   `json:"status"`

	// ConfirmationReference - непрозрачная строка от платежного адаптера.
	// Пустая, пока адаптер ее не выдал.
	ConfirmationReference string `json:"confirmation_reference,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// CompletedOrder - запись о завершенном заказе. Сохраняется для экрана
// успешного оформления (читается ровно один раз) и архивируется
// консьюмером в PostgreSQL.
type CompletedOrder struct {
	OrderDraft

	Summary     string    `json:"summary"`
	CompletedAt time.Time `json:"completed_at"`
}
