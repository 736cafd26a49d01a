package service

import (
	"errors"
	"testing"

	"go-apotek-pos/internal/mailer"
	"go-apotek-pos/internal/model"
	"go-apotek-pos/internal/repository"
	"go-apotek-pos/internal/webhook"
)

func newOrderFixture() (*memProductRepo, *memOrderRepo, *memShiftRepo, OrderService) {
	products := newMemProductRepo()
	orders := newMemOrderRepo(products)
	shifts := newMemShiftRepo()
	svc := NewOrderService(orders, products, shifts, &memSettingsRepo{}, newTestHub(), webhook.NewDispatcher(), mailer.FromEnv())
	return products, orders, shifts, svc
}

func TestCheckoutCashAtPOS(t *testing.T) {
	products, orders, shifts, svc := newOrderFixture()
	shifts.openShift()
	p1 := products.add("Paracetamol", 5000, 50)
	p2 := products.add("Vitamin C", 8000, 10)

	order, err := svc.Checkout(&CheckoutRequest{
		Source:        model.SourcePOS,
		PaymentMethod: model.PayCash,
		CashReceived:  30000,
		Items: []CheckoutItem{
			{ProductID: p1.ID, Qty: 2},
			{ProductID: p2.ID, Qty: 1},
		},
	}, "user-1", "Kasir")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if order.Status != model.OrderPaid {
		t.Errorf("status = %s, want %s", order.Status, model.OrderPaid)
	}
	if order.Subtotal != 18000 || order.Total != 18000 {
		t.Errorf("subtotal/total = %d/%d, want 18000/18000", order.Subtotal, order.Total)
	}
	if order.Change != 12000 {
		t.Errorf("change = %d, want 12000", order.Change)
	}
	if order.PaidAt == nil {
		t.Error("paid_at not set on settled cash sale")
	}
	if order.Code == "" {
		t.Error("order code is empty")
	}

	if got := products.stockOf(p1.ID); got != 48 {
		t.Errorf("p1 stock = %d, want 48", got)
	}
	if got := products.stockOf(p2.ID); got != 9 {
		t.Errorf("p2 stock = %d, want 9", got)
	}
	if len(orders.logs) != 2 {
		t.Errorf("sale logs = %d, want 2", len(orders.logs))
	}
}

func TestCheckoutRequiresOpenShift(t *testing.T) {
	products, _, _, svc := newOrderFixture()
	p := products.add("Paracetamol", 5000, 50)

	_, err := svc.Checkout(&CheckoutRequest{
		Source:        model.SourcePOS,
		PaymentMethod: model.PayCash,
		CashReceived:  10000,
		Items:         []CheckoutItem{{ProductID: p.ID, Qty: 1}},
	}, "user-1", "Kasir")
	if !errors.Is(err, ErrNoOpenShift) {
		t.Errorf("Checkout error = %v, want ErrNoOpenShift", err)
	}
}

func TestCheckoutInsufficientStock(t *testing.T) {
	products, _, shifts, svc := newOrderFixture()
	shifts.openShift()
	p := products.add("Paracetamol", 5000, 2)

	_, err := svc.Checkout(&CheckoutRequest{
		Source:        model.SourcePOS,
		PaymentMethod: model.PayCash,
		CashReceived:  100000,
		Items:         []CheckoutItem{{ProductID: p.ID, Qty: 3}},
	}, "user-1", "Kasir")
	if !errors.Is(err, repository.ErrInsufficientStock) {
		t.Fatalf("Checkout error = %v, want ErrInsufficientStock", err)
	}
	if got := products.stockOf(p.ID); got != 2 {
		t.Errorf("stock after rejected checkout = %d, want 2", got)
	}
}

func TestCheckoutInsufficientCash(t *testing.T) {
	products, _, shifts, svc := newOrderFixture()
	shifts.openShift()
	p := products.add("Paracetamol", 5000, 50)

	_, err := svc.Checkout(&CheckoutRequest{
		Source:        model.SourcePOS,
		PaymentMethod: model.PayCash,
		CashReceived:  4000,
		Items:         []CheckoutItem{{ProductID: p.ID, Qty: 1}},
	}, "user-1", "Kasir")
	if !errors.Is(err, ErrInsufficientCash) {
		t.Errorf("Checkout error = %v, want ErrInsufficientCash", err)
	}
}

func TestCheckoutRejectsOversizedDiscount(t *testing.T) {
	products, _, shifts, svc := newOrderFixture()
	shifts.openShift()
	p := products.add("Paracetamol", 5000, 50)

	_, err := svc.Checkout(&CheckoutRequest{
		Source:        model.SourcePOS,
		PaymentMethod: model.PayCash,
		Discount:      6000,
		CashReceived:  10000,
		Items:         []CheckoutItem{{ProductID: p.ID, Qty: 1}},
	}, "user-1", "Kasir")
	if !errors.Is(err, ErrDiscountTooLarge) {
		t.Errorf("Checkout error = %v, want ErrDiscountTooLarge", err)
	}
}

func TestStorefrontOrderStaysPending(t *testing.T) {
	products, _, _, svc := newOrderFixture()
	p := products.add("Paracetamol", 5000, 50)

	// No open shift needed for storefront orders.
	order, err := svc.Checkout(&CheckoutRequest{
		Source:        model.SourceStorefront,
		PaymentMethod: model.PayCash,
		CustomerName:  "Budi",
		CustomerPhone: "0812000111",
		Items:         []CheckoutItem{{ProductID: p.ID, Qty: 3}},
	}, "storefront", "Budi")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if order.Status != model.OrderPending {
		t.Errorf("status = %s, want %s", order.Status, model.OrderPending)
	}
	if order.PaidAt != nil {
		t.Error("paid_at set on a pending pickup order")
	}
	// Stock is reserved immediately so two customers can't buy the same box.
	if got := products.stockOf(p.ID); got != 47 {
		t.Errorf("stock = %d, want 47", got)
	}
}

func TestMarkPaidSettlesPendingOrder(t *testing.T) {
	products, orders, _, svc := newOrderFixture()
	p := products.add("Paracetamol", 5000, 50)

	order, err := svc.Checkout(&CheckoutRequest{
		Source:        model.SourceStorefront,
		PaymentMethod: model.PayCash,
		CustomerName:  "Budi",
		CustomerPhone: "0812000111",
		Items:         []CheckoutItem{{ProductID: p.ID, Qty: 1}},
	}, "storefront", "Budi")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	// Simulate what the gateway callback would reference.
	stored, _ := orders.FindByID(order.ID)
	stored.GatewayRef = "pay-ref-1"
	orders.Update(stored)

	paid, err := svc.MarkPaid("pay-ref-1")
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if paid.Status != model.OrderPaid || paid.PaidAt == nil {
		t.Errorf("order = %s paid_at %v, want paid with timestamp", paid.Status, paid.PaidAt)
	}

	// A duplicate callback must not settle twice.
	if _, err := svc.MarkPaid("pay-ref-1"); !errors.Is(err, ErrOrderNotPending) {
		t.Errorf("second MarkPaid error = %v, want ErrOrderNotPending", err)
	}
}

func TestSettlePickupSettlesCashOrder(t *testing.T) {
	products, _, _, svc := newOrderFixture()
	p := products.add("Paracetamol", 5000, 50)

	order, err := svc.Checkout(&CheckoutRequest{
		Source:        model.SourceStorefront,
		PaymentMethod: model.PayCash,
		CustomerName:  "Budi",
		CustomerPhone: "0812000111",
		Items:         []CheckoutItem{{ProductID: p.ID, Qty: 2}},
	}, "storefront", "Budi")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	// The handover requires payment first.
	if _, err := svc.CompleteOrder(order.ID, "user-1"); !errors.Is(err, ErrOrderNotPaid) {
		t.Fatalf("CompleteOrder before payment error = %v, want ErrOrderNotPaid", err)
	}

	settled, err := svc.SettlePickup(order.ID, 15000, "user-1", "Kasir")
	if err != nil {
		t.Fatalf("SettlePickup: %v", err)
	}
	if settled.Status != model.OrderPaid || settled.PaidAt == nil {
		t.Errorf("order = %s paid_at %v, want paid with timestamp", settled.Status, settled.PaidAt)
	}
	if settled.CashReceived != 15000 || settled.Change != 5000 {
		t.Errorf("cash/change = %d/%d, want 15000/5000", settled.CashReceived, settled.Change)
	}

	completed, err := svc.CompleteOrder(order.ID, "user-1")
	if err != nil {
		t.Fatalf("CompleteOrder after settle: %v", err)
	}
	if completed.Status != model.OrderCompleted {
		t.Errorf("status = %s, want %s", completed.Status, model.OrderCompleted)
	}

	// A settled order cannot settle twice.
	if _, err := svc.SettlePickup(order.ID, 15000, "user-1", "Kasir"); !errors.Is(err, ErrOrderNotPending) {
		t.Errorf("second SettlePickup error = %v, want ErrOrderNotPending", err)
	}
}

func TestSettlePickupRejectsShortCash(t *testing.T) {
	products, _, _, svc := newOrderFixture()
	p := products.add("Paracetamol", 5000, 50)

	order, err := svc.Checkout(&CheckoutRequest{
		Source:        model.SourceStorefront,
		PaymentMethod: model.PayCash,
		CustomerName:  "Budi",
		CustomerPhone: "0812000111",
		Items:         []CheckoutItem{{ProductID: p.ID, Qty: 2}},
	}, "storefront", "Budi")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if _, err := svc.SettlePickup(order.ID, 9000, "user-1", "Kasir"); !errors.Is(err, ErrInsufficientCash) {
		t.Errorf("SettlePickup error = %v, want ErrInsufficientCash", err)
	}
}

func TestMarkPaidRequiresGatewayReference(t *testing.T) {
	products, _, _, svc := newOrderFixture()
	p := products.add("Paracetamol", 5000, 50)

	// A pending cash pickup has a blank gateway ref; a blank-ref callback must
	// not settle it.
	if _, err := svc.Checkout(&CheckoutRequest{
		Source:        model.SourceStorefront,
		PaymentMethod: model.PayCash,
		CustomerName:  "Budi",
		CustomerPhone: "0812000111",
		Items:         []CheckoutItem{{ProductID: p.ID, Qty: 1}},
	}, "storefront", "Budi"); err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if _, err := svc.MarkPaid(""); !errors.Is(err, ErrNoGatewayRef) {
		t.Errorf("MarkPaid(empty) error = %v, want ErrNoGatewayRef", err)
	}
}

func TestCancelOrderRestocks(t *testing.T) {
	products, _, _, svc := newOrderFixture()
	p := products.add("Paracetamol", 5000, 50)

	order, err := svc.Checkout(&CheckoutRequest{
		Source:        model.SourceStorefront,
		PaymentMethod: model.PayCash,
		CustomerName:  "Budi",
		CustomerPhone: "0812000111",
		Items:         []CheckoutItem{{ProductID: p.ID, Qty: 5}},
	}, "storefront", "Budi")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if got := products.stockOf(p.ID); got != 45 {
		t.Fatalf("stock after checkout = %d, want 45", got)
	}

	cancelled, err := svc.CancelOrder(order.ID, "user-1")
	if err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	if cancelled.Status != model.OrderCancelled {
		t.Errorf("status = %s, want %s", cancelled.Status, model.OrderCancelled)
	}
	if got := products.stockOf(p.ID); got != 50 {
		t.Errorf("stock after cancel = %d, want 50", got)
	}

	// Cancelling a cancelled order is rejected.
	if _, err := svc.CancelOrder(order.ID, "user-1"); !errors.Is(err, ErrOrderNotPending) {
		t.Errorf("second CancelOrder error = %v, want ErrOrderNotPending", err)
	}
}
