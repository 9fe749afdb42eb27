package payment

import (
	"context"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/models"
)

// delayedAdapter обслуживает способы с отложенным подтверждением:
// межбанковский и локальный банковский перевод. Адаптер лишь проверяет
// формат заявленной пользователем ссылки перевода и принимает заявку;
// фактическое подтверждение приходит позже через опрос статуса,
// адаптер никогда не подтверждает платеж сам.
type delayedAdapter struct {
	method          models.PaymentMethod
	referenceLength int
}

func newDelayedAdapter(method models.PaymentMethod, referenceLength int) *delayedAdapter {
	return &delayedAdapter{
		method:          method,
		referenceLength: referenceLength,
	}
}

func (a *delayedAdapter) Method() models.PaymentMethod {
	return a.method
}

func (a *delayedAdapter) Submit(_ context.Context, _ *models.OrderDraft, input Input) (Outcome, error) {
	if err := ValidateReference(input.Reference, a.referenceLength); err != nil {
		return Outcome{}, err
	}

	return Outcome{
		Kind:      OutcomeAcceptedPending,
		Reference: input.Reference,
	}, nil
}
