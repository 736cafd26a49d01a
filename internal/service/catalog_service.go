package service

import (
	"errors"
	"fmt"

	"go-apotek-pos/internal/model"
	"go-apotek-pos/internal/repository"
	"go-apotek-pos/internal/ws"
	"go-apotek-pos/pkg/validator"

	"github.com/google/uuid"
)

type CatalogService interface {
	CreateProduct(req *model.Product, userID, userName string) error
	UpdateProduct(id uuid.UUID, req *model.Product, userID, userName string) (*model.Product, error)
	DeleteProduct(id uuid.UUID, userID string) error
	GetProducts() ([]model.Product, error)
	GetStorefrontProducts() ([]model.Product, error)
	GetProduct(id uuid.UUID) (*model.Product, error)
	GetLowStockProducts() ([]model.Product, error)
	GetProductHistory(id uuid.UUID, limit int) ([]model.InventoryLog, error)

	CreateVendor(req *model.Vendor, userID string) error
	UpdateVendor(id uuid.UUID, req *model.Vendor, userID string) (*model.Vendor, error)
	DeleteVendor(id uuid.UUID, userID string) error
	GetVendors() ([]model.Vendor, error)
	GetVendor(id uuid.UUID) (*model.Vendor, error)
}

type catalogService struct {
	productRepo repository.ProductRepository
	vendorRepo  repository.VendorRepository
	logRepo     repository.InventoryLogRepository
	wsHub       *ws.Hub
}

func NewCatalogService(productRepo repository.ProductRepository, vendorRepo repository.VendorRepository, logRepo repository.InventoryLogRepository, hub *ws.Hub) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		vendorRepo:  vendorRepo,
		logRepo:     logRepo,
		wsHub:       hub,
	}
}

func (s *catalogService) CreateProduct(req *model.Product, userID, userName string) error {
	// 1. Validasi struct dasar
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}

	// 2. Cek duplikasi SKU
	existing, _ := s.productRepo.FindBySKU(req.SKU)
	if existing != nil && existing.ID != uuid.Nil {
		return errors.New("SKU already exists")
	}

	req.CreatedBy = userID
	req.UpdatedBy = userID
	req.CreatedByUserID = &userID
	req.UpdatedByUserID = &userID

	if err := s.productRepo.Create(req); err != nil {
		return err
	}

	go s.wsHub.Publish("product_created", map[string]interface{}{
		"product": map[string]interface{}{
			"id":    req.ID,
			"sku":   req.SKU,
			"name":  req.Name,
			"stock": req.Stock,
			"price": req.Price,
		},
		"message": fmt.Sprintf("%s created product '%s'", userName, req.Name),
	})

	return nil
}

func (s *catalogService) UpdateProduct(id uuid.UUID, req *model.Product, userID, userName string) (*model.Product, error) {
	existing, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, errors.New("product not found")
	}

	oldStock := existing.Stock

	existing.Name = req.Name
	existing.SKU = req.SKU
	existing.Category = req.Category
	existing.Stock = req.Stock
	existing.Unit = req.Unit
	existing.Price = req.Price
	existing.MinStock = req.MinStock
	existing.RequiresPrescription = req.RequiresPrescription
	existing.VendorID = req.VendorID
	existing.UpdatedBy = userID
	existing.UpdatedByUserID = &userID

	// Simpan di bawah row lock agar tidak balapan dengan checkout
	if err := s.productRepo.UpdateLocked(existing); err != nil {
		return nil, err
	}

	go s.wsHub.Publish("product_updated", map[string]interface{}{
		"product": map[string]interface{}{
			"id":        existing.ID,
			"sku":       existing.SKU,
			"name":      existing.Name,
			"old_stock": oldStock,
			"new_stock": existing.Stock,
			"price":     existing.Price,
		},
		"message": fmt.Sprintf("%s updated product '%s'", userName, existing.Name),
	})

	return existing, nil
}

func (s *catalogService) DeleteProduct(id uuid.UUID, userID string) error {
	if _, err := s.productRepo.FindByID(id); err != nil {
		return errors.New("product not found")
	}
	return s.productRepo.Delete(id, userID)
}

func (s *catalogService) GetProducts() ([]model.Product, error) {
	return s.productRepo.FindAll()
}

func (s *catalogService) GetStorefrontProducts() ([]model.Product, error) {
	return s.productRepo.FindActive()
}

func (s *catalogService) GetProduct(id uuid.UUID) (*model.Product, error) {
	return s.productRepo.FindByID(id)
}

func (s *catalogService) GetLowStockProducts() ([]model.Product, error) {
	return s.productRepo.FindLowStock()
}

// GetProductHistory returns the stock mutation trail: sales, restocks and
// opname adjustments, newest first.
func (s *catalogService) GetProductHistory(id uuid.UUID, limit int) ([]model.InventoryLog, error) {
	if _, err := s.productRepo.FindByID(id); err != nil {
		return nil, errors.New("product not found")
	}
	if limit <= 0 {
		limit = 50
	}
	return s.logRepo.FindByProduct(id, limit)
}

func (s *catalogService) CreateVendor(req *model.Vendor, userID string) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}

	existing, _ := s.vendorRepo.FindByCode(req.Code)
	if existing != nil && existing.ID != uuid.Nil {
		return errors.New("vendor code already exists")
	}

	req.CreatedBy = userID
	req.UpdatedBy = userID
	return s.vendorRepo.Create(req)
}

func (s *catalogService) UpdateVendor(id uuid.UUID, req *model.Vendor, userID string) (*model.Vendor, error) {
	existing, err := s.vendorRepo.FindByID(id)
	if err != nil {
		return nil, errors.New("vendor not found")
	}

	existing.Code = req.Code
	existing.Name = req.Name
	existing.ContactName = req.ContactName
	existing.Phone = req.Phone
	existing.Email = req.Email
	existing.Address = req.Address
	existing.IsActive = req.IsActive
	existing.UpdatedBy = userID

	if err := s.vendorRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *catalogService) DeleteVendor(id uuid.UUID, userID string) error {
	if _, err := s.vendorRepo.FindByID(id); err != nil {
		return errors.New("vendor not found")
	}
	return s.vendorRepo.Delete(id, userID)
}

func (s *catalogService) GetVendors() ([]model.Vendor, error) {
	return s.vendorRepo.FindAll()
}

func (s *catalogService) GetVendor(id uuid.UUID) (*model.Vendor, error) {
	return s.vendorRepo.FindByID(id)
}
