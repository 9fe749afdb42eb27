package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/config"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/models"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/payment"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/payment/poller"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/storage"
	"github.com/ClaudyGod-MusicMinistries/ClaudyGodWebApp-sub001/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tshirt = models.Product{ID: "p-1", Name: "Tour T-Shirt", Price: 25, Category: "apparel"}

	validShipping = models.ShippingInfo{
		Name:     "Ada Obi",
		Email:    "ada@example.com",
		Phone:    "+2348012345678",
		Country:  "NG",
		State:    "Lagos",
		City:     "Ikeja",
		Address:  "1 Main Street",
		Landmark: "opposite the stadium",
	}
)

type fakeGateway struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (g *fakeGateway) CreateOrder(_ context.Context, _ *models.OrderDraft) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls++

	if g.fail {
		return errors.New("connection refused")
	}

	return nil
}

func (g *fakeGateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.calls
}

type scriptedChecker struct {
	mu      sync.Mutex
	calls   int
	respond func(call int) (*payment.StatusResult, error)
}

func (c *scriptedChecker) Status(_ context.Context, _ models.PaymentMethod, _ string) (*payment.StatusResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++

	if c.respond == nil {
		return &payment.StatusResult{Status: payment.StatusPending}, nil
	}

	return c.respond(c.calls)
}

type capturePublisher struct {
	mu     sync.Mutex
	orders []*models.CompletedOrder
}

func (p *capturePublisher) Publish(order *models.CompletedOrder) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.orders = append(p.orders, order)

	return nil
}

func (p *capturePublisher) Orders() []*models.CompletedOrder {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]*models.CompletedOrder(nil), p.orders...)
}

type testEnv struct {
	kv        storage.KV
	manager   *Manager
	gateway   *fakeGateway
	checker   *scriptedChecker
	publisher *capturePublisher
}

func newTestEnv(t *testing.T, gatewayURL string) *testEnv {
	t.Helper()

	kv := memory.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	pay := config.Payment{
		GatewayURL:      gatewayURL,
		SubmitTimeout:   200 * time.Millisecond,
		PollInterval:    5 * time.Millisecond,
		PollCeiling:     500 * time.Millisecond,
		ReferenceLength: 9,
	}

	gateway := &fakeGateway{}
	checker := &scriptedChecker{}
	publisher := &capturePublisher{}
	completion := NewCompletion(kv, publisher, log)
	registry := payment.NewRegistry(payment.NewAPI(pay), pay.ReferenceLength)

	manager := NewManager(
		kv,
		registry,
		gateway,
		checker,
		completion,
		config.Store{TaxRate: 0, Currency: "USD"},
		pay,
		log,
	)

	return &testEnv{
		kv:        kv,
		manager:   manager,
		gateway:   gateway,
		checker:   checker,
		publisher: publisher,
	}
}

// beginWithCart puts two t-shirts into the session cart and starts a checkout.
func (e *testEnv) beginWithCart(t *testing.T, sessionID string) *Flow {
	t.Helper()

	ctx := context.Background()
	store := e.manager.Cart(sessionID)
	require.NoError(t, store.AddItem(ctx, tshirt))
	require.NoError(t, store.AddItem(ctx, tshirt))

	flow, err := e.manager.Begin(ctx, sessionID)
	require.NoError(t, err)

	return flow
}

func TestManager_BeginEmptyCart(t *testing.T) {
	env := newTestEnv(t, "http://unreachable")

	_, err := env.manager.Begin(context.Background(), "s")
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = env.manager.Flow("s")
	assert.ErrorIs(t, err, ErrNoFlow)
}

func TestFlow_StepOrderIsEnforced(t *testing.T) {
	env := newTestEnv(t, "http://unreachable")
	flow := env.beginWithCart(t, "s")

	// shipping comes first, everything else is out of order
	assert.ErrorIs(t, flow.ChooseMethod(models.MethodCard), ErrWrongStep)
	assert.ErrorIs(t, flow.SubmitPayment(context.Background(), payment.Input{}), ErrWrongStep)
	assert.ErrorIs(t, flow.Back(), ErrWrongStep)

	require.NoError(t, flow.SubmitShipping(validShipping))
	assert.Equal(t, StepPaymentMethod, flow.State().Step)

	assert.ErrorIs(t, flow.SubmitShipping(validShipping), ErrWrongStep)

	// back to shipping and forward again
	require.NoError(t, flow.Back())
	assert.Equal(t, StepShipping, flow.State().Step)
	require.NoError(t, flow.SubmitShipping(validShipping))

	// switching the method before submitting is always allowed
	require.NoError(t, flow.ChooseMethod(models.MethodCard))
	require.NoError(t, flow.ChooseMethod(models.MethodWallet))
	assert.Equal(t, StepSubmitting, flow.State().Step)

	// the draft is locked in once a payment is on its way out
	assert.ErrorIs(t, flow.Back(), ErrWrongStep)
}

func TestFlow_ChooseUnknownMethod(t *testing.T) {
	env := newTestEnv(t, "http://unreachable")
	flow := env.beginWithCart(t, "s")

	require.NoError(t, flow.SubmitShipping(validShipping))

	err := flow.ChooseMethod(models.PaymentMethod("cash"))
	assert.ErrorIs(t, err, payment.ErrUnknownMethod)
	assert.Equal(t, StepPaymentMethod, flow.State().Step)
}

func TestFlow_MalformedReferenceNeverReachesGateway(t *testing.T) {
	env := newTestEnv(t, "http://unreachable")
	flow := env.beginWithCart(t, "s")

	require.NoError(t, flow.SubmitShipping(validShipping))
	require.NoError(t, flow.ChooseMethod(models.MethodBankTransfer))

	err := flow.SubmitPayment(context.Background(), payment.Input{Reference: "nope"})
	assert.ErrorIs(t, err, payment.ErrMalformedReference)

	assert.Zero(t, env.gateway.Calls())
	assert.Equal(t, StepSubmitting, flow.State().Step)
}

func TestFlow_GatewayFailureReturnsToMethodSelection(t *testing.T) {
	env := newTestEnv(t, "http://unreachable")
	env.gateway.fail = true

	flow := env.beginWithCart(t, "s")
	require.NoError(t, flow.SubmitShipping(validShipping))
	require.NoError(t, flow.ChooseMethod(models.MethodBankTransfer))

	err := flow.SubmitPayment(context.Background(), payment.Input{Reference: "AB12CD34E"})
	assert.ErrorIs(t, err, ErrNetwork)

	state := flow.State()
	assert.Equal(t, StepPaymentMethod, state.Step)
	assert.Equal(t, models.StatusDraft, state.Status)
}

func TestFlow_InstantPaymentConfirmed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(payment.ConfirmResult{Confirmed: true, Reference: "gw-ref-7"})
	}))
	defer srv.Close()

	env := newTestEnv(t, srv.URL)
	flow := env.beginWithCart(t, "s")

	require.NoError(t, flow.SubmitShipping(validShipping))
	require.NoError(t, flow.ChooseMethod(models.MethodCard))
	require.NoError(t, flow.SubmitPayment(context.Background(), payment.Input{
		CardNumber: "4242424242424242",
		CardExpiry: "12/27",
		CardCVC:    "123",
	}))

	state := flow.State()
	assert.Equal(t, StepCompleted, state.Step)
	assert.Equal(t, models.StatusConfirmed, state.Status)
	assert.Equal(t, 1, env.gateway.Calls())

	// the cart is emptied only on success
	items, err := env.manager.Cart("s").Items(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)

	orders := env.publisher.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, "gw-ref-7", orders[0].ConfirmationReference)
	assert.InDelta(t, 50.0, orders[0].Total, 0.001)
}

func TestFlow_InstantPaymentRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(payment.ConfirmResult{Confirmed: false, Reason: "insufficient funds"})
	}))
	defer srv.Close()

	env := newTestEnv(t, srv.URL)
	flow := env.beginWithCart(t, "s")

	require.NoError(t, flow.SubmitShipping(validShipping))
	require.NoError(t, flow.ChooseMethod(models.MethodCard))

	err := flow.SubmitPayment(context.Background(), payment.Input{CardNumber: "4000000000000002"})

	var rejection *RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, "insufficient funds", rejection.Reason)

	// back to method selection, the cart stays full
	assert.Equal(t, StepPaymentMethod, flow.State().Step)

	items, itemsErr := env.manager.Cart("s").Items(context.Background())
	require.NoError(t, itemsErr)
	assert.Len(t, items, 1)
}

func TestFlow_DelayedPaymentConfirmedByPolling(t *testing.T) {
	env := newTestEnv(t, "http://unreachable")
	env.checker.respond = func(call int) (*payment.StatusResult, error) {
		if call < 3 {
			return &payment.StatusResult{Status: payment.StatusPending}, nil
		}

		return &payment.StatusResult{Status: payment.StatusConfirmed}, nil
	}

	flow := env.beginWithCart(t, "s")
	require.NoError(t, flow.SubmitShipping(validShipping))
	require.NoError(t, flow.ChooseMethod(models.MethodBankTransfer))
	require.NoError(t, flow.SubmitPayment(context.Background(), payment.Input{Reference: "AB12CD34E"}))

	state := flow.State()
	assert.Equal(t, StepAwaiting, state.Step)
	assert.Equal(t, models.StatusPendingConfirmation, state.Status)

	require.Eventually(t, func() bool {
		return flow.State().Step == StepCompleted
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, models.StatusConfirmed, flow.State().Status)

	items, err := env.manager.Cart("s").Items(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)

	orders := env.publisher.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, "AB12CD34E", orders[0].ConfirmationReference)
	assert.InDelta(t, 50.0, orders[0].Total, 0.001)
	assert.Equal(t, "2 item(s), USD 50.00, paid by banktransfer", orders[0].Summary)
}

func TestFlow_DelayedPaymentTimesOut(t *testing.T) {
	env := newTestEnv(t, "http://unreachable")

	flow := env.beginWithCart(t, "s")
	require.NoError(t, flow.SubmitShipping(validShipping))
	require.NoError(t, flow.ChooseMethod(models.MethodInterbank))
	require.NoError(t, flow.SubmitPayment(context.Background(), payment.Input{Reference: "AB12CD34E"}))

	require.Eventually(t, func() bool {
		return flow.State().Step == StepFailed
	}, 2*time.Second, 10*time.Millisecond)

	state := flow.State()
	assert.Equal(t, models.StatusFailed, state.Status)
	assert.Equal(t, "payment confirmation timed out", state.Failure)

	// a failed payment must not touch the cart
	items, err := env.manager.Cart("s").Items(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)

	assert.Empty(t, env.publisher.Orders())
}

func TestManager_AbandonStopsPolling(t *testing.T) {
	env := newTestEnv(t, "http://unreachable")

	flow := env.beginWithCart(t, "s")
	require.NoError(t, flow.SubmitShipping(validShipping))
	require.NoError(t, flow.ChooseMethod(models.MethodBankTransfer))
	require.NoError(t, flow.SubmitPayment(context.Background(), payment.Input{Reference: "AB12CD34E"}))

	require.NoError(t, env.manager.Abandon("s"))

	_, err := env.manager.Flow("s")
	assert.ErrorIs(t, err, ErrNoFlow)

	// the cart survives an abandoned checkout
	items, err := env.manager.Cart("s").Items(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)

	assert.Equal(t, StepAwaiting, flow.State().Step, "an abandoned flow is frozen, not failed")
	assert.Empty(t, env.publisher.Orders())
}

func TestFlow_LatePollResultAfterAbandonIsDiscarded(t *testing.T) {
	env := newTestEnv(t, "http://unreachable")

	flow := env.beginWithCart(t, "s")
	require.NoError(t, flow.SubmitShipping(validShipping))
	require.NoError(t, flow.ChooseMethod(models.MethodBankTransfer))
	require.NoError(t, flow.SubmitPayment(context.Background(), payment.Input{Reference: "AB12CD34E"}))

	require.NoError(t, env.manager.Abandon("s"))

	// a confirmation that was already in flight when the user cancelled
	// must not complete the torn-down checkout
	flow.applyPollResult(poller.Result{Confirmed: true})

	assert.Equal(t, StepAwaiting, flow.State().Step)
	assert.Empty(t, env.publisher.Orders())

	items, err := env.manager.Cart("s").Items(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1, "the cart must survive a result that arrived after cancel")
}

type blockingGateway struct {
	entered chan struct{}
	release chan struct{}
}

func newBlockingGateway() *blockingGateway {
	return &blockingGateway{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (g *blockingGateway) CreateOrder(_ context.Context, _ *models.OrderDraft) error {
	g.entered <- struct{}{}
	<-g.release

	return nil
}

func newBlockedSubmit(t *testing.T, env *testEnv, gw *blockingGateway) (*Flow, chan error) {
	t.Helper()

	env.manager.gateway = gw

	flow := env.beginWithCart(t, "s")
	require.NoError(t, flow.SubmitShipping(validShipping))
	require.NoError(t, flow.ChooseMethod(models.MethodBankTransfer))

	done := make(chan error, 1)

	go func() {
		done <- flow.SubmitPayment(context.Background(), payment.Input{Reference: "AB12CD34E"})
	}()

	select {
	case <-gw.entered:
	case <-time.After(time.Second):
		t.Fatal("gateway was never called")
	}

	return flow, done
}

func TestFlow_StateDoesNotBlockDuringSubmit(t *testing.T) {
	env := newTestEnv(t, "http://unreachable")
	gw := newBlockingGateway()

	flow, done := newBlockedSubmit(t, env, gw)

	// a state poll must answer while the gateway call is in flight
	stateCh := make(chan State, 1)

	go func() {
		stateCh <- flow.State()
	}()

	select {
	case state := <-stateCh:
		assert.Equal(t, StepSubmitting, state.Step)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("State blocked on a payment submit in flight")
	}

	close(gw.release)
	require.NoError(t, <-done)

	assert.Equal(t, StepAwaiting, flow.State().Step)

	env.manager.Abandon("s")
}

func TestFlow_AbandonDuringSubmitDiscardsOutcome(t *testing.T) {
	env := newTestEnv(t, "http://unreachable")
	gw := newBlockingGateway()

	flow, done := newBlockedSubmit(t, env, gw)

	require.NoError(t, env.manager.Abandon("s"))
	close(gw.release)

	assert.ErrorIs(t, <-done, ErrWrongStep)

	// no poll was started and nothing got completed for the torn-down flow
	state := flow.State()
	assert.Equal(t, StepSubmitting, state.Step)
	assert.Equal(t, models.StatusDraft, state.Status)
	assert.Empty(t, env.publisher.Orders())

	items, err := env.manager.Cart("s").Items(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestManager_BeginReturnsInFlightCheckout(t *testing.T) {
	env := newTestEnv(t, "http://unreachable")

	flow := env.beginWithCart(t, "s")
	require.NoError(t, flow.SubmitShipping(validShipping))
	require.NoError(t, flow.ChooseMethod(models.MethodBankTransfer))
	require.NoError(t, flow.SubmitPayment(context.Background(), payment.Input{Reference: "AB12CD34E"}))

	again, err := env.manager.Begin(context.Background(), "s")
	require.NoError(t, err)
	assert.Same(t, flow, again, "a payment in flight must not be replaced")

	env.manager.Abandon("s")
}

func TestManager_BeginReplacesAbandonedCheckout(t *testing.T) {
	env := newTestEnv(t, "http://unreachable")

	flow := env.beginWithCart(t, "s")
	require.NoError(t, flow.SubmitShipping(validShipping))

	replacement, err := env.manager.Begin(context.Background(), "s")
	require.NoError(t, err)
	assert.NotSame(t, flow, replacement)
	assert.Equal(t, StepShipping, replacement.State().Step)
	assert.NotEqual(t, flow.State().OrderID, replacement.State().OrderID)
}

func TestFlow_DraftIsFrozenAtBegin(t *testing.T) {
	env := newTestEnv(t, "http://unreachable")
	ctx := context.Background()

	flow := env.beginWithCart(t, "s")

	// a second tab keeps editing the cart; the draft must not move
	require.NoError(t, env.manager.Cart("s").UpdateQuantity(ctx, tshirt.ID, 10))

	assert.InDelta(t, 50.0, flow.State().Total, 0.001)
}
