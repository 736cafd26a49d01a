package handler

import (
	"go-apotek-pos/internal/model"
	"go-apotek-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type VendorHandler struct {
	catalogService service.CatalogService
}

func NewVendorHandler(catalogService service.CatalogService) *VendorHandler {
	return &VendorHandler{catalogService: catalogService}
}

// POST /api/v1/vendors
func (h *VendorHandler) CreateVendor(c *fiber.Ctx) error {
	var req model.Vendor
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.catalogService.CreateVendor(&req, localString(c, "user_id")); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "Vendor created successfully",
		"data":    req,
	})
}

// PUT /api/v1/vendors/:id
func (h *VendorHandler) UpdateVendor(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid vendor ID"})
	}

	var req model.Vendor
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	vendor, err := h.catalogService.UpdateVendor(id, &req, localString(c, "user_id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"message": "Vendor updated successfully",
		"data":    vendor,
	})
}

// DELETE /api/v1/vendors/:id
func (h *VendorHandler) DeleteVendor(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid vendor ID"})
	}

	if err := h.catalogService.DeleteVendor(id, localString(c, "user_id")); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Vendor deleted successfully"})
}

// GET /api/v1/vendors
func (h *VendorHandler) GetVendors(c *fiber.Ctx) error {
	vendors, err := h.catalogService.GetVendors()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch vendors"})
	}

	return c.JSON(fiber.Map{
		"data":  vendors,
		"count": len(vendors),
	})
}

// GET /api/v1/vendors/:id
func (h *VendorHandler) GetVendor(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid vendor ID"})
	}

	vendor, err := h.catalogService.GetVendor(id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Vendor not found"})
	}

	return c.JSON(fiber.Map{"data": vendor})
}
