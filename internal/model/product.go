package model

import "github.com/google/uuid"

type Product struct {
	BaseModel
	SKU                  string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required,sku"`
	Name                 string     `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Category             string     `gorm:"type:varchar(100)" json:"category"`
	Unit                 string     `gorm:"type:varchar(20)" json:"unit"`
	Price                int64      `gorm:"default:0" json:"price" validate:"gte=0"`
	Stock                int        `gorm:"default:0" json:"stock"`
	MinStock             int        `gorm:"default:0" json:"min_stock"`
	RequiresPrescription bool       `gorm:"default:false" json:"requires_prescription"`
	VendorID             *uuid.UUID `gorm:"type:uuid;index" json:"vendor_id,omitempty"`
	Vendor               *Vendor    `gorm:"foreignKey:VendorID" json:"vendor,omitempty" validate:"-"`

	// User tracking
	CreatedByUserID *string `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
	UpdatedByUserID *string `gorm:"type:varchar(255)" json:"updated_by_user_id,omitempty"`
	CreatedByUser   *User   `gorm:"foreignKey:CreatedByUserID;references:ID" json:"created_by_user,omitempty"`
	UpdatedByUser   *User   `gorm:"foreignKey:UpdatedByUserID;references:ID" json:"updated_by_user,omitempty"`
}

// IsLowStock reports whether the product has fallen below its reorder threshold.
func (p *Product) IsLowStock() bool {
	return p.MinStock > 0 && p.Stock < p.MinStock
}
