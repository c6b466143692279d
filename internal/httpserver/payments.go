package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/supplysathi/marketplace/internal/ledger"
	"github.com/supplysathi/marketplace/internal/logging"
	"github.com/supplysathi/marketplace/internal/models"
	"github.com/supplysathi/marketplace/internal/payment"
	"github.com/supplysathi/marketplace/internal/transport"
)

type PaymentHTTP struct {
	Svc *ledger.Service
}

// Pay blocks until the simulated gateway resolves the attempt, or until
// the client abandons the request.
func (h *PaymentHTTP) Pay(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.pay")

	vendorID, err := userID(c)
	if err != nil {
		return err
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var req transport.PayRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("pay_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	txn, err := h.Svc.Pay(ctx, vendorID, orderID, payment.Method(req.Method))
	if err != nil {
		l.Warn("pay_error", "order_id", orderID, "method", req.Method, "error", err)
		return httpError(err)
	}

	l.Info("pay_success", "order_id", orderID, "reference", txn.Reference, "amount", txn.Amount)
	return c.JSON(http.StatusCreated, txn)
}

func (h *PaymentHTTP) GetTransaction(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	order, err := h.Svc.GetOrder(c.Request().Context(), orderID)
	if err != nil {
		return httpError(err)
	}
	if order.VendorID != uid && order.SupplierID != uid {
		return echo.NewHTTPError(http.StatusForbidden, "not your order")
	}

	txn, err := h.Svc.Repo.GetTransactionByOrder(c.Request().Context(), orderID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "no transaction for order")
	}
	return c.JSON(http.StatusOK, txn)
}

// ListTransactions returns the transactions across the caller's orders,
// newest first.
func (h *PaymentHTTP) ListTransactions(c echo.Context) error {
	ctx := c.Request().Context()

	uid, err := userID(c)
	if err != nil {
		return err
	}

	var orders []models.Order
	if c.Get("role") == models.RoleSupplier {
		orders, err = h.Svc.ListSupplierOrders(ctx, uid)
	} else {
		orders, err = h.Svc.ListVendorOrders(ctx, uid)
	}
	if err != nil {
		return httpError(err)
	}
	if len(orders) == 0 {
		return c.JSON(http.StatusOK, []models.Transaction{})
	}

	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	txns, err := h.Svc.Repo.ListTransactions(ctx, ids)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, txns)
}
