package repository

import (
	"errors"
	"time"

	"go-apotek-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInsufficientStock = errors.New("insufficient stock remaining")

// StockDecrement is one product deduction applied atomically with order
// creation.
type StockDecrement struct {
	ProductID uuid.UUID
	Qty       int
}

type OrderRepository interface {
	CreateWithStock(order *model.Order, decrements []StockDecrement) error
	CancelWithRestock(order *model.Order) error
	FindAll(status model.OrderStatus, limit int) ([]model.Order, error)
	FindByID(id uuid.UUID) (*model.Order, error)
	FindByCode(code string) (*model.Order, error)
	FindByGatewayRef(ref string) (*model.Order, error)
	Update(order *model.Order) error
	GetDashboardStats() (*DashboardStats, error)
	GetSalesSummary(startDate, endDate time.Time) ([]SalesSummaryRow, error)
}

// SalesSummaryRow is one day in the sales chart.
type SalesSummaryRow struct {
	Date    string `json:"date"`
	Orders  int    `json:"orders"`
	Revenue int64  `json:"revenue"`
}

// DashboardStats backs the admin overview cards.
type DashboardStats struct {
	TotalProducts  int64 `json:"total_products"`
	LowStockCount  int64 `json:"low_stock_count"`
	StockValuation int64 `json:"stock_valuation"`
	TodayOrders    int64 `json:"today_orders"`
	TodayRevenue   int64 `json:"today_revenue"`
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

// CreateWithStock locks every cart product, re-checks availability, deducts
// stock, appends sale logs and creates the order in a single transaction.
// The open shift's totals accumulate in the same commit.
func (r *orderRepo) CreateWithStock(order *model.Order, decrements []StockDecrement) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, dec := range decrements {
			var product model.Product
			if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&product, "id = ?", dec.ProductID).Error; err != nil {
				return err
			}
			if product.Stock < dec.Qty {
				return ErrInsufficientStock
			}

			newStock := product.Stock - dec.Qty
			if err := tx.Model(&model.Product{}).
				Where("id = ?", product.ID).
				Updates(map[string]interface{}{
					"stock":      newStock,
					"updated_by": order.CreatedBy,
				}).Error; err != nil {
				return err
			}

			logRow := model.InventoryLog{
				ProductID:     product.ID,
				Type:          model.LogSale,
				Quantity:      dec.Qty,
				PreviousStock: product.Stock,
				CurrentStock:  newStock,
				Reference:     order.Code,
			}
			logRow.CreatedBy = order.CreatedBy
			logRow.UpdatedBy = order.CreatedBy
			if err := tx.Create(&logRow).Error; err != nil {
				return err
			}
		}

		if err := tx.Create(order).Error; err != nil {
			return err
		}

		if order.ShiftID != nil {
			updates := map[string]interface{}{
				"order_count": gorm.Expr("order_count + 1"),
			}
			switch order.PaymentMethod {
			case model.PayCash:
				updates["cash_sales"] = gorm.Expr("cash_sales + ?", order.Total)
			case model.PayQRIS:
				updates["qris_sales"] = gorm.Expr("qris_sales + ?", order.Total)
			}
			if err := tx.Model(&model.Shift{}).Where("id = ?", *order.ShiftID).Updates(updates).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// CancelWithRestock returns every order line to stock with restock logs and
// flips the order to cancelled, all in one transaction.
func (r *orderRepo) CancelWithRestock(order *model.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			var product model.Product
			if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&product, "id = ?", item.ProductID).Error; err != nil {
				return err
			}

			newStock := product.Stock + item.Qty
			if err := tx.Model(&model.Product{}).
				Where("id = ?", product.ID).
				Updates(map[string]interface{}{
					"stock":      newStock,
					"updated_by": order.UpdatedBy,
				}).Error; err != nil {
				return err
			}

			logRow := model.InventoryLog{
				ProductID:     product.ID,
				Type:          model.LogRestock,
				Quantity:      item.Qty,
				PreviousStock: product.Stock,
				CurrentStock:  newStock,
				Reference:     order.Code,
			}
			logRow.CreatedBy = order.UpdatedBy
			logRow.UpdatedBy = order.UpdatedBy
			if err := tx.Create(&logRow).Error; err != nil {
				return err
			}
		}

		return tx.Model(&model.Order{}).
			Where("id = ?", order.ID).
			Updates(map[string]interface{}{
				"status":     model.OrderCancelled,
				"updated_by": order.UpdatedBy,
			}).Error
	})
}

func (r *orderRepo) FindAll(status model.OrderStatus, limit int) ([]model.Order, error) {
	var orders []model.Order
	q := r.db.Preload("Items").Preload("CreatedByUser").Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&orders).Error
	return orders, err
}

func (r *orderRepo) FindByID(id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := r.db.Preload("Items").Preload("CreatedByUser").First(&order, "id = ?", id).Error
	return &order, err
}

func (r *orderRepo) FindByCode(code string) (*model.Order, error) {
	var order model.Order
	err := r.db.Preload("Items").First(&order, "code = ?", code).Error
	return &order, err
}

func (r *orderRepo) FindByGatewayRef(ref string) (*model.Order, error) {
	var order model.Order
	err := r.db.Preload("Items").First(&order, "gateway_ref = ?", ref).Error
	return &order, err
}

func (r *orderRepo) Update(order *model.Order) error {
	return r.db.Save(order).Error
}

func (r *orderRepo) GetDashboardStats() (*DashboardStats, error) {
	var stats DashboardStats

	r.db.Model(&model.Product{}).Count(&stats.TotalProducts)
	r.db.Model(&model.Product{}).Where("min_stock > 0 AND stock < min_stock").Count(&stats.LowStockCount)
	r.db.Model(&model.Product{}).Select("COALESCE(SUM(stock * price), 0)").Scan(&stats.StockValuation)

	today := time.Now().Truncate(24 * time.Hour)
	r.db.Model(&model.Order{}).
		Where("created_at >= ? AND status IN ?", today, []model.OrderStatus{model.OrderPaid, model.OrderCompleted}).
		Count(&stats.TodayOrders)
	r.db.Model(&model.Order{}).
		Where("created_at >= ? AND status IN ?", today, []model.OrderStatus{model.OrderPaid, model.OrderCompleted}).
		Select("COALESCE(SUM(total), 0)").
		Scan(&stats.TodayRevenue)

	return &stats, nil
}

func (r *orderRepo) GetSalesSummary(startDate, endDate time.Time) ([]SalesSummaryRow, error) {
	var results []SalesSummaryRow

	rows, err := r.db.Model(&model.Order{}).
		Select(`
			DATE(created_at) as date,
			COUNT(*) as orders,
			COALESCE(SUM(total), 0) as revenue
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Where("status IN ?", []model.OrderStatus{model.OrderPaid, model.OrderCompleted}).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var row SalesSummaryRow
		if err := rows.Scan(&row.Date, &row.Orders, &row.Revenue); err != nil {
			return nil, err
		}
		results = append(results, row)
	}

	return results, nil
}
