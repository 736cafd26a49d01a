package handler

import (
	"errors"

	"go-apotek-pos/internal/model"
	"go-apotek-pos/internal/repository"
	"go-apotek-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

// StorefrontHandler serves the public customer-facing endpoints. No auth;
// orders come in as pending and are settled by QRIS callback or at pickup.
type StorefrontHandler struct {
	catalogService service.CatalogService
	orderService   service.OrderService
}

func NewStorefrontHandler(catalogService service.CatalogService, orderService service.OrderService) *StorefrontHandler {
	return &StorefrontHandler{
		catalogService: catalogService,
		orderService:   orderService,
	}
}

// GetProducts lists sellable products for the storefront catalog
// GET /api/v1/store/products
func (h *StorefrontHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.catalogService.GetStorefrontProducts()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch products"})
	}

	return c.JSON(fiber.Map{
		"data":  products,
		"count": len(products),
	})
}

type storefrontOrderRequest struct {
	PaymentMethod model.PaymentMethod   `json:"payment_method"`
	CustomerName  string                `json:"customer_name"`
	CustomerPhone string                `json:"customer_phone"`
	Note          string                `json:"note"`
	Items         []service.CheckoutItem `json:"items"`
}

// CreateOrder places a customer order
// POST /api/v1/store/orders
func (h *StorefrontHandler) CreateOrder(c *fiber.Ctx) error {
	var req storefrontOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.CustomerName == "" || req.CustomerPhone == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Customer name and phone are required"})
	}

	checkout := &service.CheckoutRequest{
		Source:        model.SourceStorefront,
		PaymentMethod: req.PaymentMethod,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Note:          req.Note,
		Items:         req.Items,
	}

	order, err := h.orderService.Checkout(checkout, "storefront", req.CustomerName)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "Order placed successfully",
		"data": fiber.Map{
			"code":           order.Code,
			"status":         order.Status,
			"total":          order.Total,
			"payment_method": order.PaymentMethod,
			"qr_string":      order.QrString,
			"qr_expires_at":  order.QrExpiresAt,
		},
	})
}

// GetOrderStatus lets a customer poll their order by code
// GET /api/v1/store/orders/:code
func (h *StorefrontHandler) GetOrderStatus(c *fiber.Ctx) error {
	order, err := h.orderService.GetOrderByCode(c.Params("code"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Order not found"})
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"code":           order.Code,
			"status":         order.Status,
			"total":          order.Total,
			"payment_method": order.PaymentMethod,
			"paid_at":        order.PaidAt,
		},
	})
}
