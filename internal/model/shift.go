package model

import (
	"time"

	"github.com/google/uuid"
)

type ShiftStatus string

const (
	ShiftOpen   ShiftStatus = "open"
	ShiftClosed ShiftStatus = "closed"
)

// Shift is one cashier register session. POS checkouts are only accepted
// while a shift is open, and sales totals accumulate on the shift row.
type Shift struct {
	BaseModel
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id" validate:"uuid_required"`
	User   *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Status   ShiftStatus `gorm:"type:varchar(10);not null;default:'open'" json:"status"`
	OpenedAt time.Time   `gorm:"not null" json:"opened_at"`
	ClosedAt *time.Time  `json:"closed_at,omitempty"`

	// Cash drawer amounts in rupiah
	OpeningFloat int64  `gorm:"default:0" json:"opening_float"`
	ClosingCash  *int64 `json:"closing_cash,omitempty"`

	// Accumulated while the shift is open
	CashSales  int64 `gorm:"default:0" json:"cash_sales"`
	QrisSales  int64 `gorm:"default:0" json:"qris_sales"`
	OrderCount int   `gorm:"default:0" json:"order_count"`

	Note string `gorm:"type:text" json:"note,omitempty"`
}

func (Shift) TableName() string {
	return "shifts"
}

// ExpectedCash is the drawer amount the closing count should match.
func (s *Shift) ExpectedCash() int64 {
	return s.OpeningFloat + s.CashSales
}
