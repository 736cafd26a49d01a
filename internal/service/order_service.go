package service

import (
	"errors"
	"fmt"
	"time"

	"go-apotek-pos/internal/mailer"
	"go-apotek-pos/internal/model"
	"go-apotek-pos/internal/payment"
	"go-apotek-pos/internal/repository"
	"go-apotek-pos/internal/webhook"
	"go-apotek-pos/internal/ws"
	"go-apotek-pos/pkg/idgen"
	"go-apotek-pos/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNoOpenShift      = errors.New("no open register shift, open one before checkout")
	ErrInsufficientCash = errors.New("cash received is less than the order total")
	ErrDiscountTooLarge = errors.New("discount exceeds order subtotal")
	ErrOrderNotPending  = errors.New("order is not pending")
	ErrOrderNotPaid     = errors.New("order is not paid")
	ErrNoGatewayRef     = errors.New("gateway reference is required")
)

type CheckoutItem struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Qty       int       `json:"qty" validate:"required,gt=0"`
}

type CheckoutRequest struct {
	Source        model.OrderSource   `json:"source" validate:"required,oneof=pos storefront"`
	PaymentMethod model.PaymentMethod `json:"payment_method" validate:"required,oneof=cash qris"`
	Discount      int64               `json:"discount" validate:"gte=0"`
	CashReceived  int64               `json:"cash_received" validate:"gte=0"`
	CustomerName  string              `json:"customer_name"`
	CustomerPhone string              `json:"customer_phone"`
	Note          string              `json:"note"`
	Items         []CheckoutItem      `json:"items" validate:"required,min=1,dive"`
}

type OrderService interface {
	Checkout(req *CheckoutRequest, userID, userName string) (*model.Order, error)
	MarkPaid(gatewayRef string) (*model.Order, error)
	SettlePickup(id uuid.UUID, cashReceived int64, userID, userName string) (*model.Order, error)
	CompleteOrder(id uuid.UUID, userID string) (*model.Order, error)
	CancelOrder(id uuid.UUID, userID string) (*model.Order, error)
	GetOrders(status model.OrderStatus, limit int) ([]model.Order, error)
	GetOrder(id uuid.UUID) (*model.Order, error)
	GetOrderByCode(code string) (*model.Order, error)
}

type orderService struct {
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	shiftRepo    repository.ShiftRepository
	settingsRepo repository.SettingsRepository
	wsHub        *ws.Hub
	dispatcher   *webhook.Dispatcher
	mail         *mailer.Mailer
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	shiftRepo repository.ShiftRepository,
	settingsRepo repository.SettingsRepository,
	hub *ws.Hub,
	dispatcher *webhook.Dispatcher,
	mail *mailer.Mailer,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		shiftRepo:    shiftRepo,
		settingsRepo: settingsRepo,
		wsHub:        hub,
		dispatcher:   dispatcher,
		mail:         mail,
	}
}

// Checkout handles both POS sales and storefront orders. POS requires an open
// register shift; cash at the POS settles immediately while QRIS and all
// storefront orders stay pending until the gateway callback or pickup.
func (s *orderService) Checkout(req *CheckoutRequest, userID, userName string) (*model.Order, error) {
	// 1. Validasi input
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}

	// 2. POS wajib punya shift yang sedang buka
	var shiftID *uuid.UUID
	if req.Source == model.SourcePOS {
		shift, err := s.shiftRepo.FindOpen()
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNoOpenShift
			}
			return nil, err
		}
		shiftID = &shift.ID
	}

	// 3. Ambil produk dan susun baris order
	var (
		orderItems []model.OrderItem
		decrements []repository.StockDecrement
		subtotal   int64
	)
	for _, line := range req.Items {
		product, err := s.productRepo.FindByID(line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %s not found", line.ProductID)
		}
		if product.Stock < line.Qty {
			return nil, fmt.Errorf("%w: %s", repository.ErrInsufficientStock, product.Name)
		}

		lineTotal := product.Price * int64(line.Qty)
		subtotal += lineTotal

		item := model.OrderItem{
			ProductID:   product.ID,
			ProductSKU:  product.SKU,
			ProductName: product.Name,
			Price:       product.Price,
			Qty:         line.Qty,
			LineTotal:   lineTotal,
		}
		item.CreatedBy = userID
		item.UpdatedBy = userID
		orderItems = append(orderItems, item)

		decrements = append(decrements, repository.StockDecrement{
			ProductID: product.ID,
			Qty:       line.Qty,
		})
	}

	if req.Discount > subtotal {
		return nil, ErrDiscountTooLarge
	}
	total := subtotal - req.Discount

	order := &model.Order{
		Code:          idgen.Code("INV"),
		Source:        req.Source,
		Status:        model.OrderPending,
		PaymentMethod: req.PaymentMethod,
		Subtotal:      subtotal,
		Discount:      req.Discount,
		Total:         total,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Note:          req.Note,
		ShiftID:       shiftID,
		Items:         orderItems,
	}
	order.CreatedBy = userID
	order.UpdatedBy = userID
	if userID != "" && userID != "system" {
		order.CreatedByUserID = &userID
	}

	// 4. Pembayaran
	switch req.PaymentMethod {
	case model.PayCash:
		if req.Source == model.SourcePOS {
			if req.CashReceived < total {
				return nil, ErrInsufficientCash
			}
			now := time.Now()
			order.Status = model.OrderPaid
			order.PaidAt = &now
			order.CashReceived = req.CashReceived
			order.Change = req.CashReceived - total
		}
		// Storefront cash settles at pickup; the order stays pending.

	case model.PayQRIS:
		settings, err := s.settingsRepo.Get()
		if err != nil {
			return nil, err
		}
		client := payment.NewQRISClient(settings.QrisBaseURL, settings.QrisAPIKey)
		charge, err := client.CreateCharge(order.Code, total)
		if err != nil {
			return nil, err
		}
		order.QrString = charge.QrString
		order.GatewayRef = charge.Ref
		if !charge.ExpiresAt.IsZero() {
			expires := charge.ExpiresAt
			order.QrExpiresAt = &expires
		}
	}

	// 5. Simpan order + potong stok secara atomik
	if err := s.orderRepo.CreateWithStock(order, decrements); err != nil {
		return nil, err
	}

	// 6. Notifikasi
	go s.notifyOrderEvent("order.created", order, userName)
	go s.alertLowStock()

	return order, nil
}

// MarkPaid settles a pending order from the payment gateway callback. Cash
// pickup orders never carry a gateway ref; they settle via SettlePickup.
func (s *orderService) MarkPaid(gatewayRef string) (*model.Order, error) {
	if gatewayRef == "" {
		return nil, ErrNoGatewayRef
	}

	order, err := s.orderRepo.FindByGatewayRef(gatewayRef)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderPending {
		return nil, ErrOrderNotPending
	}

	now := time.Now()
	order.Status = model.OrderPaid
	order.PaidAt = &now
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}

	go s.notifyOrderEvent("order.paid", order, "")

	return order, nil
}

// SettlePickup settles a pending order with cash at the counter: storefront
// pay-at-pickup orders, and QRIS orders whose QR expired unpaid.
func (s *orderService) SettlePickup(id uuid.UUID, cashReceived int64, userID, userName string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderPending {
		return nil, ErrOrderNotPending
	}
	if cashReceived < order.Total {
		return nil, ErrInsufficientCash
	}

	now := time.Now()
	order.Status = model.OrderPaid
	order.PaidAt = &now
	order.PaymentMethod = model.PayCash
	order.CashReceived = cashReceived
	order.Change = cashReceived - order.Total
	order.UpdatedBy = userID
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}

	go s.notifyOrderEvent("order.paid", order, userName)

	return order, nil
}

func (s *orderService) CompleteOrder(id uuid.UUID, userID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderPaid {
		return nil, ErrOrderNotPaid
	}

	order.Status = model.OrderCompleted
	order.UpdatedBy = userID
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}
	return order, nil
}

// CancelOrder voids a pending order and returns its lines to stock.
func (s *orderService) CancelOrder(id uuid.UUID, userID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderPending {
		return nil, ErrOrderNotPending
	}

	order.UpdatedBy = userID
	if err := s.orderRepo.CancelWithRestock(order); err != nil {
		return nil, err
	}
	order.Status = model.OrderCancelled
	return order, nil
}

func (s *orderService) GetOrders(status model.OrderStatus, limit int) ([]model.Order, error) {
	return s.orderRepo.FindAll(status, limit)
}

func (s *orderService) GetOrder(id uuid.UUID) (*model.Order, error) {
	return s.orderRepo.FindByID(id)
}

func (s *orderService) GetOrderByCode(code string) (*model.Order, error) {
	return s.orderRepo.FindByCode(code)
}

func (s *orderService) notifyOrderEvent(eventType string, order *model.Order, userName string) {
	payload := map[string]interface{}{
		"order_id":       order.ID,
		"code":           order.Code,
		"source":         order.Source,
		"status":         order.Status,
		"payment_method": order.PaymentMethod,
		"total":          order.Total,
		"item_count":     len(order.Items),
	}
	if userName != "" {
		payload["cashier"] = userName
	}
	s.wsHub.Publish(eventType, payload)

	settings, err := s.settingsRepo.Get()
	if err != nil {
		return
	}
	s.dispatcher.Dispatch(settings.WebhookURL, settings.WebhookToken, eventType, payload)
}

func (s *orderService) alertLowStock() {
	settings, err := s.settingsRepo.Get()
	if err != nil || settings.AlertEmail == "" || !s.mail.Configured() {
		return
	}
	products, err := s.productRepo.FindLowStock()
	if err != nil || len(products) == 0 {
		return
	}
	if err := s.mail.SendLowStockAlert(settings.AlertEmail, products); err != nil {
		fmt.Println("mailer: failed to send low stock alert:", err)
	}
}
