package model

import (
	"time"

	"github.com/google/uuid"
)

type OpnameStatus string

const (
	OpnameDraft      OpnameStatus = "draft"
	OpnameInProgress OpnameStatus = "in_progress"
	OpnameCompleted  OpnameStatus = "completed"
	OpnameCancelled  OpnameStatus = "cancelled"
)

// StockOpnameSession is one physical counting round. The items snapshot the
// catalog stock at session start; finalizing writes the counted reality back.
type StockOpnameSession struct {
	BaseModel
	Code   string       `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Status OpnameStatus `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	Notes  string       `gorm:"type:text" json:"notes"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	TotalItems      int `gorm:"default:0" json:"total_items"`
	TotalAdjusted   int `gorm:"default:0" json:"total_adjusted"`
	TotalDifference int `gorm:"default:0" json:"total_difference"` // sum of |difference| over adjusted items

	Items []StockOpnameItem `gorm:"foreignKey:SessionID" json:"items,omitempty"`
}

func (StockOpnameSession) TableName() string {
	return "stock_opname_sessions"
}

// IsActive reports whether the session still blocks new sessions from starting.
func (s *StockOpnameSession) IsActive() bool {
	return s.Status == OpnameDraft || s.Status == OpnameInProgress
}

// StockOpnameItem is one countable product line. SystemStock is immutable
// after creation; CountedStock stays nil until the counter enters a value.
type StockOpnameItem struct {
	BaseModel
	SessionID    uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	ProductID    uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	Product      *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	SystemStock  int       `gorm:"not null" json:"system_stock"`
	CountedStock *int      `json:"counted_stock"`
}

func (StockOpnameItem) TableName() string {
	return "stock_opname_items"
}

// Difference returns counted minus system stock. The second return is false
// while the line has not been counted yet.
func (i *StockOpnameItem) Difference() (int, bool) {
	if i.CountedStock == nil {
		return 0, false
	}
	return *i.CountedStock - i.SystemStock, true
}
