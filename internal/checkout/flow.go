// Package checkout реализует жизненный цикл оформления заказа:
// заморозку черновика, конечный автомат шагов оплаты, обработку
// завершения и реестр активных оформлений по сессиям.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/config"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/models"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/payment"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/payment/poller"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/lib/logger/sl"
)

// Step - шаг оформления заказа, который видит UI.
type Step string

const (
	StepShipping      Step = "collecting_shipping"
	StepPaymentMethod Step = "selecting_payment_method"
	StepSubmitting    Step = "submitting_payment"
	StepAwaiting      Step = "awaiting_confirmation"
	StepCompleted     Step = "completed"
	StepFailed        Step = "failed"
)

func (s Step) IsTerminal() bool {
	return s == StepCompleted || s == StepFailed
}

func (s Step) String() string {
	return string(s)
}

// Gateway - серверная регистрация заказа перед отправкой платежа.
type Gateway interface {
	CreateOrder(ctx context.Context, draft *models.OrderDraft) error
}

// Flow - конечный автомат оформления одного заказа. Все переходы
// выполняются под мьютексом и потому атомарны друг относительно друга;
// поздние результаты опроса отбрасываются проверкой текущего шага.
type Flow struct {
	mu        sync.Mutex
	sessionID string
	draft     *models.OrderDraft
	step      Step
	failure   string
	poll      *poller.Task
	cancelled bool

	adapters   *payment.Registry
	gateway    Gateway
	checker    poller.StatusChecker
	completion *Completion
	pay        config.Payment
	log        *slog.Logger
}

func newFlow(
	sessionID string,
	draft *models.OrderDraft,
	adapters *payment.Registry,
	gateway Gateway,
	checker poller.StatusChecker,
	completion *Completion,
	pay config.Payment,
	log *slog.Logger,
) *Flow {
	return &Flow{
		sessionID:  sessionID,
		draft:      draft,
		step:       StepShipping,
		adapters:   adapters,
		gateway:    gateway,
		checker:    checker,
		completion: completion,
		pay:        pay,
		log:        log,
	}
}

// State - снимок состояния оформления для UI.
type State struct {
	OrderID  string             `json:"order_id"`
	Step     Step               `json:"step"`
	Status   models.OrderStatus `json:"status"`
	Failure  string             `json:"failure,omitempty"`
	Total    float64            `json:"total"`
	Currency string             `json:"currency"`
	Elapsed  time.Duration      `json:"elapsed"`
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	state := State{
		OrderID:  f.draft.OrderID,
		Step:     f.step,
		Status:   f.draft.Status,
		Failure:  f.failure,
		Total:    f.draft.Total,
		Currency: f.draft.Currency,
	}

	if f.poll != nil {
		state.Elapsed = f.poll.Elapsed()
	}

	return state
}

// SubmitShipping прикрепляет проверенные данные доставки к черновику
// и переводит оформление к выбору способа оплаты. Валидация полей
// выполняется до вызова; невалидный ввод не доходит до автомата
// и шаг не меняет.
func (f *Flow) SubmitShipping(info models.ShippingInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepShipping {
		return ErrWrongStep
	}

	f.draft.Shipping = info
	f.step = StepPaymentMethod

	return nil
}

// Back возвращает к вводу данных доставки. Разрешено только с шага
// выбора способа оплаты: после отправки платежа черновик неизменяем,
// кроме статуса.
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepPaymentMethod {
		return ErrWrongStep
	}

	f.step = StepShipping

	return nil
}

// ChooseMethod выбирает способ оплаты. Смена способа до отправки
// платежа разрешена всегда и отбрасывает частично заполненную форму
// предыдущего способа.
func (f *Flow) ChooseMethod(method models.PaymentMethod) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepPaymentMethod && f.step != StepSubmitting {
		return ErrWrongStep
	}

	if !method.IsValid() {
		return fmt.Errorf("%w: %s", payment.ErrUnknownMethod, method)
	}

	f.draft.PaymentMethod = method
	f.step = StepSubmitting

	return nil
}

// SubmitPayment отправляет платеж выбранным способом.
//
// Для отложенных способов формат ссылки перевода проверяется локально
// до каких-либо сетевых вызовов. Затем заказ регистрируется на шлюзе
// и вызывается адаптер. Мгновенное подтверждение завершает заказ
// в рамках запроса; принятая заявка запускает опрос статуса; отказ
// возвращает к выбору способа оплаты.
//
// Сетевые вызовы идут по снимку черновика и без мьютекса, чтобы
// параллельные чтения состояния не ждали ответа шлюза. После возврата
// из сети шаг перепроверяется: разобранное за это время оформление
// или смена способа оплаты отбрасывают результат.
func (f *Flow) SubmitPayment(ctx context.Context, input payment.Input) error {
	f.mu.Lock()

	if f.step != StepSubmitting {
		f.mu.Unlock()

		return ErrWrongStep
	}

	method := f.draft.PaymentMethod

	adapter, err := f.adapters.Adapter(method)
	if err != nil {
		f.mu.Unlock()

		return err
	}

	if method.IsDelayed() {
		if err := payment.ValidateReference(input.Reference, f.pay.ReferenceLength); err != nil {
			f.mu.Unlock()

			return err
		}
	}

	snapshot := *f.draft
	f.mu.Unlock()

	if err := f.gateway.CreateOrder(ctx, &snapshot); err != nil {
		f.log.Error("can't create order on gateway", sl.Err(err))

		f.mu.Lock()
		defer f.mu.Unlock()

		if !f.cancelled && f.step == StepSubmitting {
			f.step = StepPaymentMethod
		}

		return ErrNetwork
	}

	outcome, err := adapter.Submit(ctx, &snapshot, input)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cancelled || f.step != StepSubmitting || f.draft.PaymentMethod != method {
		return ErrWrongStep
	}

	if err != nil {
		return err
	}

	f.advance(models.StatusAwaitingPayment)

	switch outcome.Kind {
	case payment.OutcomeConfirmed:
		f.draft.ConfirmationReference = outcome.Reference
		f.complete(ctx)

	case payment.OutcomeAcceptedPending:
		f.draft.ConfirmationReference = outcome.Reference
		f.advance(models.StatusPendingConfirmation)
		f.step = StepAwaiting

		f.poll = poller.New(
			f.checker,
			method,
			f.draft.OrderID,
			f.pay.PollInterval,
			f.pay.PollCeiling,
			f.applyPollResult,
		)
		// Опрос живет дольше HTTP-запроса, поэтому не наследует его контекст.
		f.poll.Start(context.Background())

	case payment.OutcomeRejected:
		f.step = StepPaymentMethod

		return &RejectionError{Reason: outcome.Reason}
	}

	return nil
}

// Cancel останавливает оформление: опрос прекращается немедленно,
// поздний результат не будет применен. Флаг cancelled дополнительно
// отсекает результат, который уже прошел проверку контекста в задаче
// опроса или возвращается из сетевого вызова отправки платежа.
// Корзина не меняется.
func (f *Flow) Cancel() {
	f.mu.Lock()
	f.cancelled = true
	poll := f.poll
	f.poll = nil
	f.mu.Unlock()

	// Cancel ждет полной остановки задачи, поэтому вызывается без
	// мьютекса: колбэк задачи сам берет этот мьютекс.
	if poll != nil {
		poll.Cancel()
	}
}

// applyPollResult применяет терминальный итог опроса. Результат
// устарел и отбрасывается, если оформление покинуло шаг ожидания
// или было разобрано: отмена не меняет шаг, поэтому проверки шага
// недостаточно.
func (f *Flow) applyPollResult(result poller.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cancelled || f.poll == nil || f.step != StepAwaiting {
		return
	}

	if result.Confirmed {
		f.complete(context.Background())

		return
	}

	f.advance(models.StatusFailed)
	f.step = StepFailed
	f.failure = result.Reason

	f.log.Info("checkout failed",
		slog.String("order_uid", f.draft.OrderID),
		slog.String("reason", result.Reason),
	)
}

// complete переводит оформление в терминальный успех. Вызывается
// под мьютексом.
func (f *Flow) complete(ctx context.Context) {
	f.advance(models.StatusConfirmed)
	f.step = StepCompleted

	if err := f.completion.Complete(ctx, f.sessionID, f.draft); err != nil {
		f.log.Error("can't finalize completed order", sl.Err(err))
	}
}

// advance двигает статус черновика строго вперед; недопустимый переход
// игнорируется, статус не может откатиться из терминального.
func (f *Flow) advance(next models.OrderStatus) {
	if f.draft.Status.CanAdvance(next) {
		f.draft.Status = next
	}
}
