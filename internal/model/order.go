package model

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

type OrderSource string

const (
	SourcePOS        OrderSource = "pos"
	SourceStorefront OrderSource = "storefront"
)

type PaymentMethod string

const (
	PayCash PaymentMethod = "cash"
	PayQRIS PaymentMethod = "qris"
)

type Order struct {
	BaseModel
	Code          string        `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Source        OrderSource   `gorm:"type:varchar(20);not null" json:"source"`
	Status        OrderStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`

	Subtotal int64 `gorm:"not null" json:"subtotal"`
	Discount int64 `gorm:"default:0" json:"discount"`
	Total    int64 `gorm:"not null" json:"total"`

	// Cash payment fields
	CashReceived int64 `gorm:"default:0" json:"cash_received"`
	Change       int64 `gorm:"default:0" json:"change"`

	// QRIS payment fields, filled by the gateway on charge creation
	QrString    string     `gorm:"type:text" json:"qr_string,omitempty"`
	GatewayRef  string     `gorm:"type:varchar(100);index" json:"gateway_ref,omitempty"`
	QrExpiresAt *time.Time `json:"qr_expires_at,omitempty"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`

	CustomerName  string `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerPhone string `gorm:"type:varchar(30)" json:"customer_phone"`
	Note          string `gorm:"type:text" json:"note"`

	ShiftID *uuid.UUID `gorm:"type:uuid;index" json:"shift_id,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`

	// User tracking
	CreatedByUserID *string `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
	CreatedByUser   *User   `gorm:"foreignKey:CreatedByUserID;references:ID" json:"created_by_user,omitempty"`
}

// OrderItem snapshots product name and price at sale time so later catalog
// edits do not rewrite history.
type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	Product     *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	ProductSKU  string    `gorm:"type:varchar(50);not null" json:"product_sku"`
	ProductName string    `gorm:"type:varchar(255);not null" json:"product_name"`
	Price       int64     `gorm:"not null" json:"price"`
	Qty         int       `gorm:"not null" json:"qty"`
	LineTotal   int64     `gorm:"not null" json:"line_total"`
}
