package service

import (
	"testing"

	"go-apotek-pos/internal/model"
)

func newCatalogFixture() (*memProductRepo, CatalogService) {
	products := newMemProductRepo()
	svc := NewCatalogService(products, newMemVendorRepo(), &memLogRepo{}, newTestHub())
	return products, svc
}

func TestUpdateProductLogsStockChange(t *testing.T) {
	products, svc := newCatalogFixture()
	p := products.add("Paracetamol", 5000, 50)

	edit := *p
	edit.Stock = 45
	updated, err := svc.UpdateProduct(p.ID, &edit, "user-1", "Admin")
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if updated.Stock != 45 {
		t.Errorf("stock = %d, want 45", updated.Stock)
	}

	// A manual stock edit leaves an adjustment entry in the mutation trail.
	if len(products.logs) != 1 {
		t.Fatalf("adjustment logs = %d, want 1", len(products.logs))
	}
	logRow := products.logs[0]
	if logRow.Type != model.LogAdjustment {
		t.Errorf("log type = %s, want %s", logRow.Type, model.LogAdjustment)
	}
	if logRow.PreviousStock != 50 || logRow.CurrentStock != 45 || logRow.Quantity != 5 {
		t.Errorf("log = prev %d cur %d qty %d, want 50/45/5",
			logRow.PreviousStock, logRow.CurrentStock, logRow.Quantity)
	}
}

func TestCreateProductRejectsMalformedSKU(t *testing.T) {
	products, svc := newCatalogFixture()

	for _, sku := range []string{"AB", "PCM 500", "PCM_500", ""} {
		p := model.Product{SKU: sku, Name: "Paracetamol 500mg", Price: 5000, Stock: 10}
		if err := svc.CreateProduct(&p, "user-1", "Admin"); err == nil {
			t.Errorf("CreateProduct accepted SKU %q", sku)
		}
	}

	ok := model.Product{SKU: "PCM-500", Name: "Paracetamol 500mg", Price: 5000, Stock: 10}
	if err := svc.CreateProduct(&ok, "user-1", "Admin"); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if len(products.products) != 1 {
		t.Errorf("products stored = %d, want 1", len(products.products))
	}
}

func TestUpdateProductWithoutStockChange(t *testing.T) {
	products, svc := newCatalogFixture()
	p := products.add("Paracetamol", 5000, 50)

	edit := *p
	edit.Price = 5500
	if _, err := svc.UpdateProduct(p.ID, &edit, "user-1", "Admin"); err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}

	if len(products.logs) != 0 {
		t.Errorf("adjustment logs = %d, want 0 when stock is untouched", len(products.logs))
	}
	if got := products.stockOf(p.ID); got != 50 {
		t.Errorf("stock = %d, want 50", got)
	}
}
