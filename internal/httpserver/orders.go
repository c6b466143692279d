package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/supplysathi/marketplace/internal/ledger"
	"github.com/supplysathi/marketplace/internal/logging"
	"github.com/supplysathi/marketplace/internal/models"
	"github.com/supplysathi/marketplace/internal/transport"
)

type OrderHTTP struct {
	Svc *ledger.Service
}

func (h *OrderHTTP) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.place")

	vendorID, err := userID(c)
	if err != nil {
		return err
	}

	var req transport.PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("place_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	deliveryDate, err := time.Parse("2006-01-02", req.DeliveryDate)
	if err != nil {
		l.Warn("place_order_error", "status", 400, "reason", "invalid delivery date", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid delivery_date, expected YYYY-MM-DD")
	}

	order, err := h.Svc.PlaceOrder(ctx, vendorID, ledger.PlaceOrderInput{
		ProductID:    req.ProductID,
		Quantity:     req.Quantity,
		DeliveryDate: deliveryDate,
		Note:         req.Note,
	})
	if err != nil {
		l.Warn("place_order_error", "error", err)
		return httpError(err)
	}

	l.Info("place_order_success", "order_id", order.ID, "total", order.Total)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	uid, err := userID(c)
	if err != nil {
		return err
	}

	order, err := h.Svc.GetOrder(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	if order.VendorID != uid && order.SupplierID != uid {
		return echo.NewHTTPError(http.StatusForbidden, "not your order")
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	var orders []models.Order
	if c.Get("role") == models.RoleSupplier {
		orders, err = h.Svc.ListSupplierOrders(c.Request().Context(), uid)
	} else {
		orders, err = h.Svc.ListVendorOrders(c.Request().Context(), uid)
	}
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) ConfirmOrder(c echo.Context) error {
	return h.transition(c, h.Svc.ConfirmOrder, "order.confirm")
}

func (h *OrderHTTP) RejectOrder(c echo.Context) error {
	return h.transition(c, h.Svc.RejectOrder, "order.reject")
}

func (h *OrderHTTP) MarkInTransit(c echo.Context) error {
	return h.transition(c, h.Svc.MarkInTransit, "order.in_transit")
}

func (h *OrderHTTP) MarkDelivered(c echo.Context) error {
	return h.transition(c, h.Svc.MarkDelivered, "order.delivered")
}

func (h *OrderHTTP) transition(c echo.Context, op func(ctx context.Context, supplierID, orderID uuid.UUID) (*models.Order, error), name string) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", name)

	supplierID, err := userID(c)
	if err != nil {
		return err
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	order, err := op(ctx, supplierID, orderID)
	if err != nil {
		l.Warn("transition_error", "order_id", orderID, "error", err)
		return httpError(err)
	}

	l.Info("transition_success", "order_id", order.ID, "status", order.Status)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) RateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	vendorID, err := userID(c)
	if err != nil {
		return err
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var req transport.RateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.RateOrder(ctx, vendorID, orderID, req.Rating)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, order)
}
