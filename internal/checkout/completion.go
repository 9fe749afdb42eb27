package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/cart"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/models"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/storage"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/lib/logger/sl"
)

const lastOrderPrefix = "last_order:"

// Publisher публикует завершенный заказ во внешний поток событий.
type Publisher interface {
	Publish(order *models.CompletedOrder) error
}

// Completion - обработчик терминальных исходов оформления.
// На успехе он очищает корзину, сохраняет запись для экрана успешного
// оформления и публикует событие для архиватора. На неуспехе корзина
// остается нетронутой: пользователь не заплатил и может повторить
// оформление без повторного наполнения корзины.
type Completion struct {
	kv        storage.KV
	publisher Publisher
	log       *slog.Logger
}

func NewCompletion(kv storage.KV, publisher Publisher, log *slog.Logger) *Completion {
	return &Completion{
		kv:        kv,
		publisher: publisher,
		log:       log,
	}
}

// Complete фиксирует успешно оплаченный заказ.
func (c *Completion) Complete(ctx context.Context, sessionID string, draft *models.OrderDraft) error {
	const fn = "checkout.Complete"

	record := &models.CompletedOrder{
		OrderDraft:  *draft,
		Summary:     summarize(draft),
		CompletedAt: time.Now(),
	}

	if err := cart.NewStore(c.kv, sessionID).Clear(ctx); err != nil {
		return fmt.Errorf("%s: can't clear cart: %v", fn, err)
	}

	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%s: can't marshal record: %v", fn, err)
	}

	// Запись переживает редирект: экран успеха может открыться новой
	// навигацией и не должен зависеть от состояния в памяти.
	if err := c.kv.Set(ctx, lastOrderPrefix+sessionID, value); err != nil {
		return fmt.Errorf("%s: can't persist record: %v", fn, err)
	}

	if c.publisher != nil {
		if err := c.publisher.Publish(record); err != nil {
			// Архивация - побочный поток; завершение заказа не откатывается.
			c.log.Error("can't publish completed order", sl.Err(err))
		}
	}

	c.log.Info("order completed",
		slog.String("order_uid", record.OrderID),
		slog.String("payment_method", record.PaymentMethod.String()),
	)

	return nil
}

// ConsumeLastOrder читает запись о последнем завершенном заказе сессии
// и тут же удаляет ее: ровно одно чтение, чтобы экран успеха не
// показывался повторно при позднем несвязанном визите.
func (c *Completion) ConsumeLastOrder(ctx context.Context, sessionID string) (*models.CompletedOrder, error) {
	const fn = "checkout.ConsumeLastOrder"

	key := lastOrderPrefix + sessionID

	value, err := c.kv.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, storage.ErrNoOrder
	}
	if err != nil {
		return nil, fmt.Errorf("%s: can't read record: %v", fn, err)
	}

	record := &models.CompletedOrder{}

	if err := json.Unmarshal(value, record); err != nil {
		return nil, fmt.Errorf("%s: can't unmarshal record: %v", fn, err)
	}

	if err := c.kv.Delete(ctx, key); err != nil {
		return nil, fmt.Errorf("%s: can't delete record: %v", fn, err)
	}

	return record, nil
}

func summarize(draft *models.OrderDraft) string {
	return fmt.Sprintf("%d item(s), %s %.2f, paid by %s",
		models.ItemCount(draft.Lines),
		draft.Currency,
		draft.Total,
		draft.PaymentMethod,
	)
}
