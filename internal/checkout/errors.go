package checkout

import "errors"

var (
	ErrEmptyCart = errors.New("cart is empty, nothing to check out")
	ErrWrongStep = errors.New("operation is not allowed at this checkout step")
	ErrNoFlow    = errors.New("no active checkout for this session")
	ErrNetwork   = errors.New("can't reach the payment service")
)

// RejectionError - явный отказ платежного адаптера. Пользователь
// возвращается к выбору способа оплаты с видимой причиной отказа,
// корзина не меняется.
type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string {
	return e.Reason
}
