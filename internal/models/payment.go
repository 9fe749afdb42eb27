package models

// PaymentMethod - закрытое перечисление способов оплаты витрины.
type PaymentMethod string

const (
	MethodCard         PaymentMethod = "card"
	MethodWallet       PaymentMethod = "wallet"
	MethodInterbank    PaymentMethod = "interbank"
	MethodBankTransfer PaymentMethod = "banktransfer"
	MethodAggregator   PaymentMethod = "aggregator"
)

// Methods перечисляет все поддерживаемые способы оплаты.
func Methods() []PaymentMethod {
	return []PaymentMethod{
		MethodCard,
		MethodWallet,
		MethodInterbank,
		MethodBankTransfer,
		MethodAggregator,
	}
}

func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCard, MethodWallet, MethodInterbank, MethodBankTransfer, MethodAggregator:
		return true
	}

	return false
}

// IsDelayed сообщает, подтверждается ли оплата этим способом отложенно:
// пользователь заявляет о переводе, а фактическое подтверждение приходит
// позже через опрос статуса.
func (m PaymentMethod) IsDelayed() bool {
	return m == MethodInterbank || m == MethodBankTransfer
}

func (m PaymentMethod) String() string {
	return string(m)
}
