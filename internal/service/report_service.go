package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-apotek-pos/internal/repository"
	"go-apotek-pos/pkg/cache"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// Dashboard stats are cached for the same interval the admin UI polls at.
const dashboardCacheTTL = 30 * time.Second

const dashboardCacheKey = "dashboard:stats"

type ReportService interface {
	GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error)
	GetSalesSummary(startDate, endDate time.Time) ([]repository.SalesSummaryRow, error)
	ExportSalesReport(startDate, endDate time.Time) (*excelize.File, error)
	ExportOpnameSession(sessionID uuid.UUID) (*excelize.File, error)
}

type reportService struct {
	orderRepo  repository.OrderRepository
	opnameRepo repository.OpnameRepository
	store      cache.Cache
}

func NewReportService(orderRepo repository.OrderRepository, opnameRepo repository.OpnameRepository, store cache.Cache) ReportService {
	return &reportService{
		orderRepo:  orderRepo,
		opnameRepo: opnameRepo,
		store:      store,
	}
}

func (s *reportService) GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error) {
	if raw, ok, err := s.store.Get(ctx, dashboardCacheKey); err == nil && ok {
		var stats repository.DashboardStats
		if err := json.Unmarshal(raw, &stats); err == nil {
			return &stats, nil
		}
	}

	stats, err := s.orderRepo.GetDashboardStats()
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(stats); err == nil {
		// Cache failures are non-fatal, the next poll just recomputes.
		_ = s.store.Set(ctx, dashboardCacheKey, raw, dashboardCacheTTL)
	}

	return stats, nil
}

func (s *reportService) GetSalesSummary(startDate, endDate time.Time) ([]repository.SalesSummaryRow, error) {
	return s.orderRepo.GetSalesSummary(startDate, endDate)
}

// ExportSalesReport builds an Excel workbook with one row per day in range.
func (s *reportService) ExportSalesReport(startDate, endDate time.Time) (*excelize.File, error) {
	rows, err := s.orderRepo.GetSalesSummary(startDate, endDate)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Sheet1"

	f.SetCellValue(sheet, "A1", "Date")
	f.SetCellValue(sheet, "B1", "Orders")
	f.SetCellValue(sheet, "C1", "Revenue")

	for i, row := range rows {
		rowNum := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", rowNum), row.Date)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", rowNum), row.Orders)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", rowNum), row.Revenue)
	}

	return f, nil
}

// ExportOpnameSession builds an Excel workbook with one row per counted line.
func (s *reportService) ExportOpnameSession(sessionID uuid.UUID) (*excelize.File, error) {
	session, err := s.opnameRepo.FindByID(sessionID)
	if err != nil {
		return nil, err
	}
	items, err := s.opnameRepo.FindItems(sessionID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Sheet1"

	f.SetCellValue(sheet, "A1", "Session")
	f.SetCellValue(sheet, "B1", session.Code)
	f.SetCellValue(sheet, "A2", "Status")
	f.SetCellValue(sheet, "B2", string(session.Status))

	f.SetCellValue(sheet, "A4", "SKU")
	f.SetCellValue(sheet, "B4", "Product")
	f.SetCellValue(sheet, "C4", "System Stock")
	f.SetCellValue(sheet, "D4", "Counted Stock")
	f.SetCellValue(sheet, "E4", "Difference")

	for i, item := range items {
		rowNum := i + 5
		if item.Product != nil {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", rowNum), item.Product.SKU)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", rowNum), item.Product.Name)
		}
		f.SetCellValue(sheet, fmt.Sprintf("C%d", rowNum), item.SystemStock)
		if diff, counted := item.Difference(); counted {
			f.SetCellValue(sheet, fmt.Sprintf("D%d", rowNum), *item.CountedStock)
			f.SetCellValue(sheet, fmt.Sprintf("E%d", rowNum), diff)
		} else {
			f.SetCellValue(sheet, fmt.Sprintf("D%d", rowNum), "-")
			f.SetCellValue(sheet, fmt.Sprintf("E%d", rowNum), "-")
		}
	}

	return f, nil
}
