// Package payment содержит адаптеры способов оплаты и клиент платежного
// шлюза. Адаптер получает черновик заказа только на чтение и никогда
// не трогает корзину: ее очищает обработчик завершения, и только после
// терминального подтверждения.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/models"
)

var (
	ErrUnknownMethod      = errors.New("unknown payment method")
	ErrMalformedReference = errors.New("transaction reference has a wrong format")
)

// OutcomeKind - вид результата отправки платежа.
type OutcomeKind string

const (
	// OutcomeConfirmed - мгновенное подтверждение в рамках запроса.
	OutcomeConfirmed OutcomeKind = "confirmed"
	// OutcomeAcceptedPending - заявка принята, фактическое подтверждение
	// придет позже через опрос статуса.
	OutcomeAcceptedPending OutcomeKind = "accepted-pending"
	// OutcomeRejected - платеж отклонен, пользователь может выбрать
	// другой способ или повторить.
	OutcomeRejected OutcomeKind = "rejected"
)

// Outcome - результат вызова адаптера.
type Outcome struct {
	Kind      OutcomeKind
	Reference string
	Reason    string
}

// Input - данные платежной формы конкретного способа. Для мгновенных
// способов это реквизиты (карта, кошелек), для отложенных - ссылка
// на совершенный пользователем перевод.
type Input struct {
	CardNumber string `json:"card_number,omitempty"`
	CardExpiry string `json:"card_expiry,omitempty"`
	CardCVC    string `json:"card_cvc,omitempty"`
	WalletID   string `json:"wallet_id,omitempty"`
	Reference  string `json:"reference,omitempty"`
}

// Adapter - единый контракт отправки платежа для всех способов оплаты.
type Adapter interface {
	Method() models.PaymentMethod
	Submit(ctx context.Context, draft *models.OrderDraft, input Input) (Outcome, error)
}

// Registry хранит адаптеры по способу оплаты. Новый способ добавляется
// конструктором адаптера, а не веткой switch по строке.
type Registry struct {
	adapters map[models.PaymentMethod]Adapter
}

// NewRegistry создает адаптеры для всех способов из перечисления.
func NewRegistry(api *API, referenceLength int) *Registry {
	adapters := map[models.PaymentMethod]Adapter{}

	for _, m := range []Adapter{
		newInstantAdapter(models.MethodCard, api),
		newInstantAdapter(models.MethodWallet, api),
		newInstantAdapter(models.MethodAggregator, api),
		newDelayedAdapter(models.MethodInterbank, referenceLength),
		newDelayedAdapter(models.MethodBankTransfer, referenceLength),
	} {
		adapters[m.Method()] = m
	}

	return &Registry{adapters: adapters}
}

// Adapter возвращает адаптер способа оплаты.
func (r *Registry) Adapter(method models.PaymentMethod) (Adapter, error) {
	a, ok := r.adapters[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}

	return a, nil
}

// ValidateReference проверяет формат пользовательской ссылки перевода:
// строго length символов, только латинские буквы и цифры. Проверка
// локальная и выполняется до любого сетевого вызова.
func ValidateReference(reference string, length int) error {
	if len(reference) != length {
		return ErrMalformedReference
	}

	for _, r := range reference {
		isDigit := r >= '0' && r <= '9'
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')

		if !isDigit && !isLetter {
			return ErrMalformedReference
		}
	}

	return nil
}
