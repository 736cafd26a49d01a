package handler

import (
	"errors"

	"go-apotek-pos/internal/model"
	"go-apotek-pos/internal/repository"
	"go-apotek-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Checkout creates a POS sale
// POST /api/v1/orders
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	var req service.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	req.Source = model.SourcePOS

	order, err := h.orderService.Checkout(&req, localString(c, "user_id"), localString(c, "user_name"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoOpenShift):
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrInsufficientStock):
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "Order created successfully",
		"data":    order,
	})
}

// GetOrders lists orders, optionally filtered by status
// GET /api/v1/orders?status=pending&limit=50
func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	status := model.OrderStatus(c.Query("status"))
	orders, err := h.orderService.GetOrders(status, c.QueryInt("limit", 50))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch orders"})
	}

	return c.JSON(fiber.Map{
		"data":  orders,
		"count": len(orders),
	})
}

// GetOrder returns one order with its lines
// GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	order, err := h.orderService.GetOrder(id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Order not found"})
	}

	return c.JSON(fiber.Map{"data": order})
}

type settlePickupRequest struct {
	CashReceived int64 `json:"cash_received"`
}

// SettlePickup settles a pending pickup order with cash at the counter
// POST /api/v1/orders/:id/settle
func (h *OrderHandler) SettlePickup(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	var req settlePickupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.orderService.SettlePickup(id, req.CashReceived, localString(c, "user_id"), localString(c, "user_name"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotPending):
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrInsufficientCash):
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(404).JSON(fiber.Map{"error": "Order not found"})
	}

	return c.JSON(fiber.Map{
		"message": "Order settled",
		"data":    order,
	})
}

// CompleteOrder marks a paid order as handed over
// POST /api/v1/orders/:id/complete
func (h *OrderHandler) CompleteOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	order, err := h.orderService.CompleteOrder(id, localString(c, "user_id"))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotPaid) {
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(404).JSON(fiber.Map{"error": "Order not found"})
	}

	return c.JSON(fiber.Map{
		"message": "Order completed",
		"data":    order,
	})
}

// CancelOrder voids a pending order and restocks its lines
// POST /api/v1/orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	order, err := h.orderService.CancelOrder(id, localString(c, "user_id"))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotPending) {
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(404).JSON(fiber.Map{"error": "Order not found"})
	}

	return c.JSON(fiber.Map{
		"message": "Order cancelled",
		"data":    order,
	})
}

type paymentCallbackRequest struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// PaymentCallback settles QRIS orders from the gateway notification. The
// route is public; the gateway reference acts as the shared secret.
// POST /api/v1/payments/qris/callback
func (h *OrderHandler) PaymentCallback(c *fiber.Ctx) error {
	var req paymentCallbackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Reference == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Reference is required"})
	}
	if req.Status != "paid" && req.Status != "settlement" {
		// Acknowledge non-settlement notifications so the gateway stops retrying.
		return c.JSON(fiber.Map{"message": "Ignored"})
	}

	order, err := h.orderService.MarkPaid(req.Reference)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotPending) {
			return c.JSON(fiber.Map{"message": "Already processed"})
		}
		return c.Status(404).JSON(fiber.Map{"error": "Order not found"})
	}

	return c.JSON(fiber.Map{
		"message": "Payment recorded",
		"data":    fiber.Map{"order_code": order.Code, "status": order.Status},
	})
}
