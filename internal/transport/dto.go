package transport

import (
	"github.com/google/uuid"

	"github.com/supplysathi/marketplace/internal/models"
)

type RegisterRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	BusinessName string `json:"business_name"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type ProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Unit        string `json:"unit"`
	Price       int64  `json:"price"`
	Stock       int    `json:"stock"`
}

type RestockRequest struct {
	Quantity int `json:"quantity"`
}

type PlaceOrderRequest struct {
	ProductID    uuid.UUID `json:"product_id"`
	Quantity     int       `json:"quantity"`
	DeliveryDate string    `json:"delivery_date"` // YYYY-MM-DD
	Note         string    `json:"note"`
}

type PayRequest struct {
	Method string `json:"method"`
}

type RateRequest struct {
	Rating int `json:"rating"`
}
