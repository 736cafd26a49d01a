package repository

import (
	"go-apotek-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll() ([]model.Product, error)
	FindActive() ([]model.Product, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	FindBySKU(sku string) (*model.Product, error)
	FindLowStock() ([]model.Product, error)
	Update(product *model.Product) error
	UpdateLocked(product *model.Product) error
	UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error
	Delete(id uuid.UUID, deletedBy string) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) FindAll() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Preload("Vendor").Order("name ASC").Find(&products).Error
	return products, err
}

// FindActive returns the storefront catalog: priced products only.
func (r *productRepo) FindActive() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("price > 0").Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Vendor").First(&product, "id = ?", id).Error
	return &product, err
}

func (r *productRepo) FindBySKU(sku string) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "sku = ?", sku).Error
	return &product, err
}

func (r *productRepo) FindLowStock() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("min_stock > 0 AND stock < min_stock").Order("stock ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) Update(product *model.Product) error {
	return r.db.Save(product).Error
}

// UpdateLocked saves an edited product under a row lock so a concurrent
// checkout cannot interleave. If the write changes the stock, an adjustment
// log is appended in the same transaction so the mutation trail stays in sync.
func (r *productRepo) UpdateLocked(product *model.Product) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var current model.Product
		if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&current, "id = ?", product.ID).Error; err != nil {
			return err
		}

		if current.Stock != product.Stock {
			qty := product.Stock - current.Stock
			if qty < 0 {
				qty = -qty
			}
			logRow := model.InventoryLog{
				ProductID:     product.ID,
				Type:          model.LogAdjustment,
				Quantity:      qty,
				PreviousStock: current.Stock,
				CurrentStock:  product.Stock,
				Reference:     "EDIT-" + product.SKU,
			}
			logRow.CreatedBy = product.UpdatedBy
			logRow.UpdatedBy = product.UpdatedBy
			if err := tx.Create(&logRow).Error; err != nil {
				return err
			}
		}

		return tx.Save(product).Error
	})
}

// UpdateStock menerima *gorm.DB (tx) agar bisa berjalan dalam transaksi
func (r *productRepo) UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error {
	return tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      newStock,
			"updated_by": updatedBy,
		}).Error
}

func (r *productRepo) Delete(id uuid.UUID, deletedBy string) error {
	if err := r.db.Model(&model.Product{}).Where("id = ?", id).
		Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return r.db.Delete(&model.Product{}, "id = ?", id).Error
}
