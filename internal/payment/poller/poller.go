// Package poller реализует опрос статуса платежа для способов
// с отложенным подтверждением. Опрос - явная отменяемая задача
// с ручкой Start/Cancel: после остановки не остается ни осиротевших
// таймеров, ни горутин, а поздние результаты отбрасываются.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/models"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/payment"
)

// StatusChecker - внешняя проверка статуса заказа. Реализуется
// клиентом платежного шлюза.
type StatusChecker interface {
	Status(ctx context.Context, method models.PaymentMethod, orderID string) (*payment.StatusResult, error)
}

// Result - терминальный итог опроса.
type Result struct {
	Confirmed bool
	TimedOut  bool
	Reason    string
}

// Task - одна задача опроса для одного заказа. Первый запрос уходит
// сразу, без начальной задержки; далее запросы идут с фиксированным
// интервалом до терминального ответа или потолка по времени.
// Сетевая ошибка одного запроса не терминальна: терминальны только
// явные confirmed/failed от шлюза и потолок.
type Task struct {
	checker  StatusChecker
	method   models.PaymentMethod
	orderID  string
	interval time.Duration
	ceiling  time.Duration
	onResult func(Result)

	mu      sync.Mutex
	started time.Time
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(
	checker StatusChecker,
	method models.PaymentMethod,
	orderID string,
	interval time.Duration,
	ceiling time.Duration,
	onResult func(Result),
) *Task {
	return &Task{
		checker:  checker,
		method:   method,
		orderID:  orderID,
		interval: interval,
		ceiling:  ceiling,
		onResult: onResult,
		done:     make(chan struct{}),
	}
}

// Start запускает опрос. Повторный запуск той же задачи недопустим.
func (t *Task) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	t.mu.Lock()
	t.started = time.Now()
	t.cancel = cancel
	t.mu.Unlock()

	go t.run(ctx)
}

// Cancel останавливает опрос. После возврата из Cancel колбэк
// onResult больше не будет вызван.
func (t *Task) Cancel() {
	t.mu.Lock()
	cancel := t.cancel
	t.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-t.done
}

// Done закрывается после полной остановки задачи.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Elapsed возвращает время с начала опроса. Значение используется
// только для отображения прогресса и не участвует в решениях задачи,
// кроме сравнения с потолком.
func (t *Task) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started.IsZero() {
		return 0
	}

	return time.Since(t.started)
}

func (t *Task) run(ctx context.Context) {
	defer close(t.done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	deadline := time.NewTimer(t.ceiling)
	defer deadline.Stop()

	for {
		result, terminal := t.check(ctx)
		if terminal {
			// Результат применяется только если задача не отменена:
			// поздний ответ не должен попасть в уже разобранный флоу.
			if ctx.Err() == nil {
				t.onResult(result)
			}

			return
		}

		select {
		case <-ctx.Done():
			return

		case <-deadline.C:
			if ctx.Err() == nil {
				t.onResult(Result{
					TimedOut: true,
					Reason:   "payment confirmation timed out",
				})
			}

			return

		case <-ticker.C:
		}
	}
}

func (t *Task) check(ctx context.Context) (Result, bool) {
	status, err := t.checker.Status(ctx, t.method, t.orderID)
	if err != nil {
		return Result{}, false
	}

	switch status.Status {
	case payment.StatusConfirmed:
		return Result{Confirmed: true}, true

	case payment.StatusFailed:
		reason := status.Error
		if reason == "" {
			reason = "payment was not confirmed"
		}

		return Result{Reason: reason}, true
	}

	return Result{}, false
}
