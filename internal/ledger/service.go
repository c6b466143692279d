package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/supplysathi/marketplace/internal/models"
	"github.com/supplysathi/marketplace/internal/payment"
	"github.com/supplysathi/marketplace/internal/pricing"
	"github.com/supplysathi/marketplace/internal/repo"
)

var (
	ErrValidation        = errors.New("validation")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrPaymentFailed     = errors.New("payment failed")
	ErrPaymentInProgress = errors.New("payment in progress")
	ErrAlreadyPaid       = errors.New("already paid")
)

// Service owns the order collection: placement, status transitions,
// payment orchestration and ratings. One Service is built per process and
// passed down explicitly.
type Service struct {
	Repo   *repo.GormRepo
	Policy pricing.Policy
	Sim    *payment.Simulator
	Events EventPublisher
	Now    func() time.Time

	mu       sync.Mutex
	inFlight map[uuid.UUID]chan payResult
}

func NewService(r *repo.GormRepo, policy pricing.Policy, sim *payment.Simulator, events EventPublisher) *Service {
	return &Service{
		Repo:     r,
		Policy:   policy,
		Sim:      sim,
		Events:   events,
		Now:      time.Now,
		inFlight: make(map[uuid.UUID]chan payResult),
	}
}

type PlaceOrderInput struct {
	ProductID    uuid.UUID
	Quantity     int
	DeliveryDate time.Time
	Note         string
}

// PlaceOrder validates the request against current stock and the delivery
// date, then decrements stock and creates the order atomically. On any
// validation failure nothing is mutated.
func (s *Service) PlaceOrder(ctx context.Context, vendorID uuid.UUID, in PlaceOrderInput) (*models.Order, error) {
	if in.ProductID == uuid.Nil {
		return nil, fmt.Errorf("%w: product_id required", ErrValidation)
	}
	if in.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be >= 1", ErrValidation)
	}

	product, err := s.Repo.GetProduct(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product", ErrNotFound)
		}
		return nil, err
	}
	if in.Quantity > product.Stock {
		return nil, fmt.Errorf("%w: requested %d, available %d", ErrInsufficientStock, in.Quantity, product.Stock)
	}

	now := s.Now().UTC()
	if !dateOf(in.DeliveryDate).After(dateOf(now)) {
		return nil, fmt.Errorf("%w: delivery date must be after the order date", ErrValidation)
	}

	quote := pricing.Compute(product.Price, in.Quantity, s.Policy)

	order := &models.Order{
		ID:            uuid.New(),
		ProductID:     product.ID,
		ProductName:   product.Name,
		Unit:          product.Unit,
		UnitPrice:     product.Price,
		Quantity:      in.Quantity,
		VendorID:      vendorID,
		SupplierID:    product.SupplierID,
		Subtotal:      quote.Subtotal,
		DeliveryFee:   quote.DeliveryFee,
		Tax:           quote.Tax,
		Total:         quote.Total,
		Status:        string(StatusProcessing),
		PaymentStatus: models.PaymentPending,
		DeliveryDate:  in.DeliveryDate,
		Note:          in.Note,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.Repo.CreateOrderReservingStock(ctx, order); err != nil {
		if errors.Is(err, repo.ErrInsufficientStock) {
			return nil, fmt.Errorf("%w: requested %d", ErrInsufficientStock, in.Quantity)
		}
		return nil, err
	}

	s.publish(ctx, EventOrderPlaced, order.ID, map[string]any{
		"vendor_id":   order.VendorID.String(),
		"supplier_id": order.SupplierID.String(),
		"total":       order.Total,
	})
	return order, nil
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *Service) ConfirmOrder(ctx context.Context, supplierID, orderID uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, supplierID, orderID, StatusConfirmed, EventOrderConfirmed)
}

func (s *Service) RejectOrder(ctx context.Context, supplierID, orderID uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, supplierID, orderID, StatusRejected, EventOrderRejected)
}

func (s *Service) MarkInTransit(ctx context.Context, supplierID, orderID uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, supplierID, orderID, StatusInTransit, EventOrderInTransit)
}

func (s *Service) MarkDelivered(ctx context.Context, supplierID, orderID uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, supplierID, orderID, StatusDelivered, EventOrderDelivered)
}

// transition applies exactly one step of the status machine. An illegal
// step returns ErrInvalidTransition and leaves the order untouched.
func (s *Service) transition(ctx context.Context, supplierID, orderID uuid.UUID, to Status, eventType string) (*models.Order, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.SupplierID != supplierID {
		return nil, fmt.Errorf("%w: order belongs to another supplier", ErrForbidden)
	}

	from := Status(order.Status)
	if !CanTransition(from, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	if err := s.Repo.UpdateOrderStatus(ctx, orderID, string(to)); err != nil {
		return nil, err
	}
	order.Status = string(to)

	s.publish(ctx, eventType, order.ID, map[string]any{"status": order.Status})
	return order, nil
}

// RateOrder records a one-time 1-5 rating on a delivered order.
func (s *Service) RateOrder(ctx context.Context, vendorID, orderID uuid.UUID, stars int) (*models.Order, error) {
	if stars < 1 || stars > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.VendorID != vendorID {
		return nil, fmt.Errorf("%w: order belongs to another vendor", ErrForbidden)
	}
	if Status(order.Status) != StatusDelivered {
		return nil, fmt.Errorf("%w: only delivered orders can be rated", ErrValidation)
	}
	if order.Rating != nil {
		return nil, fmt.Errorf("%w: order already rated", ErrValidation)
	}

	if err := s.Repo.SetOrderRating(ctx, orderID, stars); err != nil {
		return nil, err
	}
	order.Rating = &stars
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.getOrder(ctx, orderID)
}

func (s *Service) ListVendorOrders(ctx context.Context, vendorID uuid.UUID) ([]models.Order, error) {
	return s.Repo.ListOrdersByVendor(ctx, vendorID)
}

func (s *Service) ListSupplierOrders(ctx context.Context, supplierID uuid.UUID) ([]models.Order, error) {
	return s.Repo.ListOrdersBySupplier(ctx, supplierID)
}

func (s *Service) getOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order", ErrNotFound)
		}
		return nil, err
	}
	return order, nil
}
