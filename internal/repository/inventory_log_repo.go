package repository

import (
	"go-apotek-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InventoryLogRepository interface {
	Create(tx *gorm.DB, logRow *model.InventoryLog) error
	FindByProduct(productID uuid.UUID, limit int) ([]model.InventoryLog, error)
	FindByReference(reference string) ([]model.InventoryLog, error)
	FindRecent(limit int) ([]model.InventoryLog, error)
}

type inventoryLogRepo struct {
	db *gorm.DB
}

func NewInventoryLogRepo(db *gorm.DB) InventoryLogRepository {
	return &inventoryLogRepo{db}
}

// Create menerima *gorm.DB (tx) agar log ikut transaksi pemanggil
func (r *inventoryLogRepo) Create(tx *gorm.DB, logRow *model.InventoryLog) error {
	return tx.Create(logRow).Error
}

func (r *inventoryLogRepo) FindByProduct(productID uuid.UUID, limit int) ([]model.InventoryLog, error) {
	var logs []model.InventoryLog
	q := r.db.Where("product_id = ?", productID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&logs).Error
	return logs, err
}

func (r *inventoryLogRepo) FindByReference(reference string) ([]model.InventoryLog, error) {
	var logs []model.InventoryLog
	err := r.db.Preload("Product").Where("reference = ?", reference).Order("created_at ASC").Find(&logs).Error
	return logs, err
}

func (r *inventoryLogRepo) FindRecent(limit int) ([]model.InventoryLog, error) {
	var logs []model.InventoryLog
	err := r.db.Preload("Product").Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
