package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/supplysathi/marketplace/internal/logging"
	"github.com/supplysathi/marketplace/internal/models"
	"github.com/supplysathi/marketplace/internal/payment"
)

type payResult struct {
	txn *models.Transaction
	err error
}

// Pay issues a single payment attempt for the order. Only one attempt per
// order may be outstanding; a second call while the first is unresolved
// returns ErrPaymentInProgress. The caller may abandon the wait through
// ctx, but the simulated resolution still completes in the background and
// is discarded if the order is gone, already Paid, or Rejected by then.
func (s *Service) Pay(ctx context.Context, vendorID, orderID uuid.UUID, method payment.Method) (*models.Transaction, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.VendorID != vendorID {
		return nil, fmt.Errorf("%w: order belongs to another vendor", ErrForbidden)
	}
	if order.PaymentStatus == models.PaymentPaid {
		return nil, fmt.Errorf("%w: order %s", ErrAlreadyPaid, orderID)
	}
	if Status(order.Status) == StatusRejected {
		return nil, fmt.Errorf("%w: rejected orders cannot be paid", ErrValidation)
	}
	if _, ok := payment.ParseMethod(string(method)); !ok {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, method)
	}

	ch, err := s.beginAttempt(orderID)
	if err != nil {
		return nil, err
	}

	go s.resolveAttempt(orderID, method, order.Total, ch)

	select {
	case res := <-ch:
		return res.txn, res.err
	case <-ctx.Done():
		// abandoned; the in-flight guard stays until the background
		// resolution finishes and either applies or discards itself
		return nil, ctx.Err()
	}
}

func (s *Service) beginAttempt(orderID uuid.UUID) (chan payResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[orderID]; busy {
		return nil, fmt.Errorf("%w: order %s", ErrPaymentInProgress, orderID)
	}
	ch := make(chan payResult, 1)
	s.inFlight[orderID] = ch
	return ch, nil
}

func (s *Service) endAttempt(orderID uuid.UUID) {
	s.mu.Lock()
	delete(s.inFlight, orderID)
	s.mu.Unlock()
}

// resolveAttempt runs detached from the caller: the gateway simulation,
// once started, always runs to completion and its result is applied (or
// discarded) against current ledger state, never against the snapshot the
// caller saw.
func (s *Service) resolveAttempt(orderID uuid.UUID, method payment.Method, amount int64, ch chan payResult) {
	defer s.endAttempt(orderID)

	out := s.Sim.Resolve(method, amount)
	ctx := context.Background()

	res := s.applyOutcome(ctx, orderID, method, out)
	ch <- res
}

func (s *Service) applyOutcome(ctx context.Context, orderID uuid.UUID, method payment.Method, out payment.Outcome) payResult {
	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logging.FromContext(ctx).Warn("payment resolved for missing order, discarded", "order_id", orderID)
			return payResult{err: fmt.Errorf("%w: order", ErrNotFound)}
		}
		return payResult{err: err}
	}
	if order.PaymentStatus == models.PaymentPaid {
		return payResult{err: fmt.Errorf("%w: order %s", ErrAlreadyPaid, orderID)}
	}
	if Status(order.Status) == StatusRejected {
		return payResult{err: fmt.Errorf("%w: rejected orders cannot be paid", ErrValidation)}
	}

	if !out.OK {
		s.publish(ctx, EventPaymentFailed, orderID, map[string]any{
			"method": string(method),
			"reason": out.Reason,
		})
		return payResult{err: fmt.Errorf("%w: %s", ErrPaymentFailed, out.Reason)}
	}

	txn := &models.Transaction{
		ID:        uuid.New(),
		OrderID:   orderID,
		Method:    string(method),
		Reference: out.Reference,
		Amount:    out.Charged,
		CreatedAt: time.Now().UTC(),
	}

	newStatus := ""
	if Status(order.Status) == StatusProcessing {
		newStatus = string(StatusConfirmed)
	}

	if err := s.Repo.RecordPayment(ctx, txn, newStatus); err != nil {
		return payResult{err: err}
	}

	s.publish(ctx, EventPaymentSucceeded, orderID, map[string]any{
		"method":    txn.Method,
		"reference": txn.Reference,
		"amount":    txn.Amount,
	})
	return payResult{txn: txn}
}
