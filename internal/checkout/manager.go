package checkout

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/cart"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/config"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/payment"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/payment/poller"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/storage"
)

// Manager владеет активными оформлениями по сессиям и создает
// корзины поверх общего KV-хранилища.
type Manager struct {
	mu    sync.Mutex
	flows map[string]*Flow

	kv         storage.KV
	adapters   *payment.Registry
	gateway    Gateway
	checker    poller.StatusChecker
	completion *Completion
	store      config.Store
	pay        config.Payment
	log        *slog.Logger
}

func NewManager(
	kv storage.KV,
	adapters *payment.Registry,
	gateway Gateway,
	checker poller.StatusChecker,
	completion *Completion,
	store config.Store,
	pay config.Payment,
	log *slog.Logger,
) *Manager {
	return &Manager{
		flows:      make(map[string]*Flow),
		kv:         kv,
		adapters:   adapters,
		gateway:    gateway,
		checker:    checker,
		completion: completion,
		store:      store,
		pay:        pay,
		log:        log,
	}
}

// Cart возвращает корзину сессии.
func (m *Manager) Cart(sessionID string) *cart.Store {
	return cart.NewStore(m.kv, sessionID)
}

// Begin начинает оформление: замораживает текущие позиции корзины
// в черновик. Пустая корзина блокирует оформление (ErrEmptyCart).
// Если по сессии уже идет оформление с платежом в полете, возвращается
// оно же; брошенное до отправки платежа оформление заменяется новым,
// его черновик уничтожается.
func (m *Manager) Begin(ctx context.Context, sessionID string) (*Flow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.flows[sessionID]; ok {
		step := existing.State().Step

		if step == StepAwaiting {
			return existing, nil
		}

		if !step.IsTerminal() {
			existing.Cancel()
		}
	}

	lines, err := cart.NewStore(m.kv, sessionID).Items(ctx)
	if err != nil {
		return nil, err
	}

	draft, err := NewDraft(lines, m.store.TaxRate, m.store.Currency)
	if err != nil {
		return nil, err
	}

	flow := newFlow(sessionID, draft, m.adapters, m.gateway, m.checker, m.completion, m.pay, m.log)
	m.flows[sessionID] = flow

	return flow, nil
}

// Flow возвращает активное оформление сессии.
func (m *Manager) Flow(sessionID string) (*Flow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	flow, ok := m.flows[sessionID]
	if !ok {
		return nil, ErrNoFlow
	}

	return flow, nil
}

// Abandon разбирает оформление сессии: опрос останавливается немедленно,
// черновик уничтожается. Корзина не меняется.
func (m *Manager) Abandon(sessionID string) error {
	m.mu.Lock()
	flow, ok := m.flows[sessionID]
	delete(m.flows, sessionID)
	m.mu.Unlock()

	if !ok {
		return ErrNoFlow
	}

	flow.Cancel()

	return nil
}
