package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	ProductHandler *ProductHTTP
	OrderHandler   *OrderHTTP
	PaymentHandler *PaymentHTTP
	JWTSecret      []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	mw := &AuthMiddleware{JWTSecret: d.JWTSecret}

	api := e.Group("/api")

	api.POST("/register", d.AuthHandler.Register)
	api.POST("/login", d.AuthHandler.Login)

	products := api.Group("/products")
	products.GET("", d.ProductHandler.ListProducts)
	products.GET("/search", d.ProductHandler.SearchProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)

	supplier := products.Group("", mw.RequireSupplier)
	supplier.GET("/mine", d.ProductHandler.ListMine)
	supplier.POST("", d.ProductHandler.CreateProduct)
	supplier.PATCH("/:id", d.ProductHandler.PatchProduct)
	supplier.POST("/:id/restock", d.ProductHandler.Restock)
	supplier.DELETE("/:id", d.ProductHandler.DeleteProduct)

	orders := api.Group("/orders", mw.RequireAuth)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)

	vendorOrders := api.Group("/orders", mw.RequireVendor)
	vendorOrders.POST("", d.OrderHandler.PlaceOrder)
	vendorOrders.POST("/:id/pay", d.PaymentHandler.Pay)
	vendorOrders.POST("/:id/rating", d.OrderHandler.RateOrder)

	supplierOrders := api.Group("/orders", mw.RequireSupplier)
	supplierOrders.POST("/:id/confirm", d.OrderHandler.ConfirmOrder)
	supplierOrders.POST("/:id/reject", d.OrderHandler.RejectOrder)
	supplierOrders.POST("/:id/in-transit", d.OrderHandler.MarkInTransit)
	supplierOrders.POST("/:id/delivered", d.OrderHandler.MarkDelivered)

	txns := api.Group("/transactions", mw.RequireAuth)
	txns.GET("", d.PaymentHandler.ListTransactions)
	txns.GET("/:id", d.PaymentHandler.GetTransaction)
}
