package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supplysathi/marketplace/internal/models"
	"github.com/supplysathi/marketplace/internal/payment"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []map[string]any
}

func (r *recordingPublisher) PublishEvent(_ context.Context, _ string, event map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i], _ = e["type"].(string)
	}
	return out
}

func (s *Service) paymentInFlight(orderID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inFlight[orderID]
	return ok
}

func countTransactions(t *testing.T, s *Service, orderID uuid.UUID) int {
	t.Helper()
	var n int64
	require.NoError(t, s.Repo.DB.Model(&models.Transaction{}).Where("order_id = ?", orderID).Count(&n).Error)
	return int(n)
}

func TestPay_SuccessRecordsTransactionAndConfirms(t *testing.T) {
	s := newTestService(t)
	rec := &recordingPublisher{}
	s.Events = rec
	ctx := context.Background()

	p := seedProduct(t, s, 25, 10)
	order, vendorID := placeTestOrder(t, s, p, 10) // total 323

	txn, err := s.Pay(ctx, vendorID, order.ID, payment.MethodUPI)
	require.NoError(t, err)
	require.NotNil(t, txn)
	assert.EqualValues(t, 323, txn.Amount)
	assert.Equal(t, "UPI", txn.Method)
	assert.NotEmpty(t, txn.Reference)

	got, err := s.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, got.PaymentStatus)
	assert.Equal(t, string(StatusConfirmed), got.Status)

	assert.Contains(t, rec.types(), EventPaymentSucceeded)
	assert.False(t, s.paymentInFlight(order.ID))
}

func TestPay_CashOnDeliveryAddsSurcharge(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	// 10 x 40 = 400, fee 50, tax 36 -> total 486
	p := seedProduct(t, s, 40, 10)
	order, vendorID := placeTestOrder(t, s, p, 10)
	require.EqualValues(t, 486, order.Total)

	// worst draw must not matter for COD
	s.Sim.Rand = func() float64 { return 0.9999 }

	txn, err := s.Pay(ctx, vendorID, order.ID, payment.MethodCOD)
	require.NoError(t, err)
	assert.EqualValues(t, 506, txn.Amount)
	assert.Equal(t, "Cash on Delivery", txn.Method)
	assert.Equal(t, 1, countTransactions(t, s, order.ID))
}

func TestPay_FailureLeavesOrderPendingAndAllowsRetry(t *testing.T) {
	s := newTestService(t)
	rec := &recordingPublisher{}
	s.Events = rec
	ctx := context.Background()

	p := seedProduct(t, s, 25, 10)
	order, vendorID := placeTestOrder(t, s, p, 2)

	s.Sim.Rand = func() float64 { return 0.99 }
	_, err := s.Pay(ctx, vendorID, order.ID, payment.MethodNetBanking)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPaymentFailed)

	got, err := s.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, got.PaymentStatus)
	assert.Equal(t, string(StatusProcessing), got.Status)
	assert.Equal(t, 0, countTransactions(t, s, order.ID))
	assert.Contains(t, rec.types(), EventPaymentFailed)

	// caller-initiated retry with a better draw succeeds
	s.Sim.Rand = func() float64 { return 0.0 }
	txn, err := s.Pay(ctx, vendorID, order.ID, payment.MethodWallet)
	require.NoError(t, err)
	assert.Equal(t, "Digital Wallet", txn.Method)
	assert.Equal(t, 1, countTransactions(t, s, order.ID))
}

func TestPay_AlreadyPaidFailsFast(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	p := seedProduct(t, s, 25, 10)
	order, vendorID := placeTestOrder(t, s, p, 2)

	_, err := s.Pay(ctx, vendorID, order.ID, payment.MethodUPI)
	require.NoError(t, err)

	_, err = s.Pay(ctx, vendorID, order.ID, payment.MethodCard)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyPaid)
	assert.Equal(t, 1, countTransactions(t, s, order.ID))
}

func TestPay_RejectedOrderCannotBePaid(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	p := seedProduct(t, s, 25, 10)
	order, vendorID := placeTestOrder(t, s, p, 2)

	_, err := s.RejectOrder(ctx, p.SupplierID, order.ID)
	require.NoError(t, err)

	_, err = s.Pay(ctx, vendorID, order.ID, payment.MethodUPI)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPay_UnknownMethod(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	p := seedProduct(t, s, 25, 10)
	order, vendorID := placeTestOrder(t, s, p, 2)

	_, err := s.Pay(ctx, vendorID, order.ID, payment.Method("Cheque"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPay_SecondAttemptWhileInFlight(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	p := seedProduct(t, s, 25, 10)
	order, vendorID := placeTestOrder(t, s, p, 2)

	release := make(chan struct{})
	s.Sim.Sleep = func(time.Duration) { <-release }

	type result struct {
		txn *models.Transaction
		err error
	}
	first := make(chan result, 1)
	go func() {
		txn, err := s.Pay(ctx, vendorID, order.ID, payment.MethodUPI)
		first <- result{txn, err}
	}()

	require.Eventually(t, func() bool {
		return s.paymentInFlight(order.ID)
	}, time.Second, time.Millisecond)

	_, err := s.Pay(ctx, vendorID, order.ID, payment.MethodWallet)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPaymentInProgress)

	close(release)
	res := <-first
	require.NoError(t, res.err)
	require.NotNil(t, res.txn)
	assert.Equal(t, 1, countTransactions(t, s, order.ID))
	assert.False(t, s.paymentInFlight(order.ID))
}

func TestPay_AbandonedAttemptStillResolves(t *testing.T) {
	s := newTestService(t)
	p := seedProduct(t, s, 25, 10)
	order, vendorID := placeTestOrder(t, s, p, 2)

	release := make(chan struct{})
	s.Sim.Sleep = func(time.Duration) { <-release }

	callerCtx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := s.Pay(callerCtx, vendorID, order.ID, payment.MethodUPI)
		done <- err
	}()

	require.Eventually(t, func() bool {
		return s.paymentInFlight(order.ID)
	}, time.Second, time.Millisecond)

	cancel()
	err := <-done
	require.ErrorIs(t, err, context.Canceled)

	// the resolution still completes and is applied
	close(release)
	require.Eventually(t, func() bool {
		got, err := s.GetOrder(context.Background(), order.ID)
		return err == nil && got.PaymentStatus == models.PaymentPaid
	}, time.Second, time.Millisecond)
	assert.Equal(t, 1, countTransactions(t, s, order.ID))
	require.Eventually(t, func() bool {
		return !s.paymentInFlight(order.ID)
	}, time.Second, time.Millisecond)
}

func TestPay_ResolutionDiscardedWhenOrderRejectedMeanwhile(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	p := seedProduct(t, s, 25, 10)
	order, vendorID := placeTestOrder(t, s, p, 2)

	release := make(chan struct{})
	s.Sim.Sleep = func(time.Duration) { <-release }

	done := make(chan error, 1)
	go func() {
		_, err := s.Pay(ctx, vendorID, order.ID, payment.MethodUPI)
		done <- err
	}()

	require.Eventually(t, func() bool {
		return s.paymentInFlight(order.ID)
	}, time.Second, time.Millisecond)

	_, err := s.RejectOrder(ctx, p.SupplierID, order.ID)
	require.NoError(t, err)

	close(release)
	err = <-done
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	got, err := s.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, string(StatusRejected), got.Status)
	assert.Equal(t, models.PaymentPending, got.PaymentStatus)
	assert.Equal(t, 0, countTransactions(t, s, order.ID))
}
