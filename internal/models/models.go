package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"     json:"username"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null"                 json:"role"`
	BusinessName string    `json:"business_name"`
	CreatedAt    time.Time `json:"created_at"`
}

type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	SupplierID  uuid.UUID `gorm:"type:uuid;index;not null" json:"supplier_id"`
	Name        string    `gorm:"not null"                 json:"name"`
	Description string    `json:"description"`
	Unit        string    `gorm:"not null"                 json:"unit"`
	Price       int64     `gorm:"not null"                 json:"price"`
	Stock       int       `gorm:"not null;check:stock>=0"  json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Order keeps its own snapshot of the product name, unit and price, so a
// later product update or delete never rewrites an existing order.
type Order struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"      json:"id"`
	ProductID     uuid.UUID `gorm:"type:uuid;index;not null"  json:"product_id"`
	ProductName   string    `gorm:"not null"                  json:"product_name"`
	Unit          string    `gorm:"not null"                  json:"unit"`
	UnitPrice     int64     `gorm:"not null"                  json:"unit_price"`
	Quantity      int       `gorm:"not null;check:quantity>0" json:"quantity"`
	VendorID      uuid.UUID `gorm:"type:uuid;index;not null"  json:"vendor_id"`
	SupplierID    uuid.UUID `gorm:"type:uuid;index;not null"  json:"supplier_id"`
	Subtotal      int64     `gorm:"not null"                  json:"subtotal"`
	DeliveryFee   int64     `gorm:"not null"                  json:"delivery_fee"`
	Tax           int64     `gorm:"not null"                  json:"tax"`
	Total         int64     `gorm:"not null"                  json:"total"`
	Status        string    `gorm:"index;not null"            json:"status"`
	PaymentStatus string    `gorm:"not null"                  json:"payment_status"`
	DeliveryDate  time.Time `gorm:"not null"                  json:"delivery_date"`
	Note          string    `json:"note"`
	Rating        *int      `json:"rating,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Transaction is immutable once created: exactly one per successful payment.
type Transaction struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"           json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"order_id"`
	Method    string    `gorm:"not null"                       json:"method"`
	Reference string    `gorm:"not null"                       json:"reference"`
	Amount    int64     `gorm:"not null"                       json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	RoleVendor   = "vendor"
	RoleSupplier = "supplier"
)

const (
	PaymentPending = "Pending"
	PaymentPaid    = "Paid"
)
