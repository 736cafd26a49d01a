package handler

import (
	"errors"

	"go-apotek-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ShiftHandler struct {
	shiftService service.ShiftService
}

func NewShiftHandler(shiftService service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftService: shiftService}
}

type openShiftRequest struct {
	OpeningFloat int64  `json:"opening_float"`
	Note         string `json:"note"`
}

// OpenShift starts a register session
// POST /api/v1/shifts/open
func (h *ShiftHandler) OpenShift(c *fiber.Ctx) error {
	var req openShiftRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.OpeningFloat < 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Opening float cannot be negative"})
	}

	userID := localString(c, "user_id")
	uid, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	shift, err := h.shiftService.OpenShift(uid, req.OpeningFloat, req.Note, userID)
	if err != nil {
		if errors.Is(err, service.ErrShiftAlreadyOpen) {
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "Shift opened",
		"data":    shift,
	})
}

type closeShiftRequest struct {
	ClosingCash int64 `json:"closing_cash"`
}

// CloseShift ends a register session with the counted drawer
// POST /api/v1/shifts/:id/close
func (h *ShiftHandler) CloseShift(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid shift ID"})
	}

	var req closeShiftRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.ClosingCash < 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Closing cash cannot be negative"})
	}

	shift, err := h.shiftService.CloseShift(id, req.ClosingCash, localString(c, "user_id"))
	if err != nil {
		if errors.Is(err, service.ErrShiftNotOpen) {
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(404).JSON(fiber.Map{"error": "Shift not found"})
	}

	return c.JSON(fiber.Map{
		"message": "Shift closed",
		"data":    shift,
	})
}

// GetOpenShift returns the currently open register shift, if any
// GET /api/v1/shifts/open
func (h *ShiftHandler) GetOpenShift(c *fiber.Ctx) error {
	shift, err := h.shiftService.GetOpenShift()
	if err != nil {
		return c.JSON(fiber.Map{"data": nil})
	}
	return c.JSON(fiber.Map{"data": shift})
}

// GetShifts lists recent shifts
// GET /api/v1/shifts
func (h *ShiftHandler) GetShifts(c *fiber.Ctx) error {
	shifts, err := h.shiftService.GetShifts(c.QueryInt("limit"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch shifts"})
	}

	return c.JSON(fiber.Map{
		"data":  shifts,
		"count": len(shifts),
	})
}
