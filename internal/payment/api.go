package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/config"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/models"
)

// API - клиент платежного шлюза. Шлюз для витрины непрозрачен:
// доступны только создание заказа, подтверждение мгновенных платежей
// и проверка статуса отложенных.
type API struct {
	baseURL string
	client  *http.Client
}

func NewAPI(cfg config.Payment) *API {
	return &API{
		baseURL: cfg.GatewayURL,
		// Таймаут клиента не дает зависшему шлюзу держать оформление
		// заказа дольше настроенного предела.
		client: &http.Client{Timeout: cfg.SubmitTimeout},
	}
}

// ConfirmResult - ответ шлюза на мгновенное подтверждение платежа.
type ConfirmResult struct {
	Confirmed bool   `json:"confirmed"`
	Reference string `json:"reference,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// StatusResult - ответ шлюза на проверку статуса отложенного платежа.
type StatusResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
)

// CreateOrder регистрирует заказ на стороне шлюза. Шлюз подтверждает
// прием тем же order_id.
func (a *API) CreateOrder(ctx context.Context, draft *models.OrderDraft) error {
	const fn = "payment.api.CreateOrder"

	var ack struct {
		OrderID string `json:"order_id"`
	}

	if err := a.post(ctx, "/orders", draft, &ack); err != nil {
		return fmt.Errorf("%s: %v", fn, err)
	}

	if ack.OrderID != draft.OrderID {
		return fmt.Errorf("%s: gateway acknowledged wrong order: %s", fn, ack.OrderID)
	}

	return nil
}

// Confirm выполняет синхронное подтверждение мгновенного платежа.
func (a *API) Confirm(ctx context.Context, method models.PaymentMethod, body any) (*ConfirmResult, error) {
	const fn = "payment.api.Confirm"

	result := &ConfirmResult{}

	path := fmt.Sprintf("/payment/%s/confirm", method)

	if err := a.post(ctx, path, body, result); err != nil {
		return nil, fmt.Errorf("%s: %v", fn, err)
	}

	return result, nil
}

// Status запрашивает статус отложенного платежа по заказу.
func (a *API) Status(ctx context.Context, method models.PaymentMethod, orderID string) (*StatusResult, error) {
	const fn = "payment.api.Status"

	path := fmt.Sprintf("%s/payment/%s/status/%s", a.baseURL, method, orderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: can't create request: %v", fn, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: can't call gateway: %v", fn, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: gateway returned status %d", fn, resp.StatusCode)
	}

	result := &StatusResult{}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return nil, fmt.Errorf("%s: can't decode response: %v", fn, err)
	}

	return result, nil
}

func (a *API) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("can't marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("can't create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("can't call gateway: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("can't decode response: %v", err)
	}

	return nil
}
