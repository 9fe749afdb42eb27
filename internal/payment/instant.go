package payment

import (
	"context"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/models"
)

// instantAdapter обслуживает способы с мгновенным подтверждением:
// карту, кошелек и агрегатор. Результат известен в рамках одного
// запроса к шлюзу.
type instantAdapter struct {
	method models.PaymentMethod
	api    *API
}

func newInstantAdapter(method models.PaymentMethod, api *API) *instantAdapter {
	return &instantAdapter{
		method: method,
		api:    api,
	}
}

func (a *instantAdapter) Method() models.PaymentMethod {
	return a.method
}

func (a *instantAdapter) Submit(ctx context.Context, draft *models.OrderDraft, input Input) (Outcome, error) {
	body := confirmRequest{
		OrderID:    draft.OrderID,
		Amount:     draft.Total,
		Currency:   draft.Currency,
		CardNumber: input.CardNumber,
		CardExpiry: input.CardExpiry,
		CardCVC:    input.CardCVC,
		WalletID:   input.WalletID,
	}

	result, err := a.api.Confirm(ctx, a.method, body)
	if err != nil {
		// Сетевой сбой или таймаут шлюза не должны выглядеть зависанием:
		// платеж считается отклоненным, попытку можно повторить.
		return Outcome{
			Kind:   OutcomeRejected,
			Reason: "payment service is unreachable, please try again",
		}, nil
	}

	if !result.Confirmed {
		reason := result.Reason
		if reason == "" {
			reason = "payment was declined"
		}

		return Outcome{
			Kind:   OutcomeRejected,
			Reason: reason,
		}, nil
	}

	return Outcome{
		Kind:      OutcomeConfirmed,
		Reference: result.Reference,
	}, nil
}

type confirmRequest struct {
	OrderID    string  `json:"order_id"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	CardNumber string  `json:"card_number,omitempty"`
	CardExpiry string  `json:"card_expiry,omitempty"`
	CardCVC    string  `json:"card_cvc,omitempty"`
	WalletID   string  `json:"wallet_id,omitempty"`
}
