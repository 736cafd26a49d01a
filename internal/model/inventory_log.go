package model

import "github.com/google/uuid"

type InventoryLogType string

const (
	LogSale       InventoryLogType = "sale"
	LogRestock    InventoryLogType = "restock"
	LogAdjustment InventoryLogType = "adjustment"
)

// InventoryLog is the append-only audit trail of every stock mutation.
// Quantity is the absolute number of units moved; the direction can be read
// from previous vs current stock.
type InventoryLog struct {
	BaseModel
	ProductID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"product_id"`
	Product       *Product         `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Type          InventoryLogType `gorm:"type:varchar(20);not null" json:"type"`
	Quantity      int              `gorm:"not null" json:"quantity"`
	PreviousStock int              `gorm:"not null" json:"previous_stock"`
	CurrentStock  int              `gorm:"not null" json:"current_stock"`
	Reference     string           `gorm:"type:varchar(100);index" json:"reference"` // originating order or opname code
}
