package handler

import (
	"errors"

	"go-apotek-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type OpnameHandler struct {
	opnameService service.OpnameService
}

func NewOpnameHandler(opnameService service.OpnameService) *OpnameHandler {
	return &OpnameHandler{opnameService: opnameService}
}

type startOpnameRequest struct {
	Notes string `json:"notes"`
}

// StartSession opens a new counting session
// POST /api/v1/opname/sessions
func (h *OpnameHandler) StartSession(c *fiber.Ctx) error {
	var req startOpnameRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	userID := localString(c, "user_id")
	userName := localString(c, "user_name")

	session, err := h.opnameService.StartSession(req.Notes, userID, userName)
	if err != nil {
		if errors.Is(err, service.ErrSessionActive) {
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "Stock opname session started",
		"data":    session,
	})
}

type recordCountRequest struct {
	// String on purpose so "abc" and "-3" get rejected instead of coerced.
	CountedStock string `json:"counted_stock"`
}

// RecordCount saves one physical count
// PUT /api/v1/opname/items/:id
func (h *OpnameHandler) RecordCount(c *fiber.Ctx) error {
	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	var req recordCountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	item, err := h.opnameService.RecordCount(itemID, req.CountedStock, localString(c, "user_id"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCount) || errors.Is(err, service.ErrSessionNotOpen) {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(404).JSON(fiber.Map{"error": "Opname item not found"})
	}

	return c.JSON(fiber.Map{
		"message": "Count recorded",
		"data":    item,
	})
}

// FinalizeSession reconciles the session and applies adjustments
// POST /api/v1/opname/sessions/:id/finalize
func (h *OpnameHandler) FinalizeSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid session ID"})
	}

	session, err := h.opnameService.FinalizeSession(sessionID, localString(c, "user_id"), localString(c, "user_name"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUncountedItems):
			return c.Status(422).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrSessionFinished), errors.Is(err, service.ErrSessionNotOpen):
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"message": "Stock opname finalized",
		"data":    session,
	})
}

// CancelSession abandons an active session
// POST /api/v1/opname/sessions/:id/cancel
func (h *OpnameHandler) CancelSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid session ID"})
	}

	session, err := h.opnameService.CancelSession(sessionID, localString(c, "user_id"))
	if err != nil {
		if errors.Is(err, service.ErrSessionFinished) {
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(404).JSON(fiber.Map{"error": "Session not found"})
	}

	return c.JSON(fiber.Map{
		"message": "Stock opname cancelled",
		"data":    session,
	})
}

// GetSessions lists recent sessions
// GET /api/v1/opname/sessions
func (h *OpnameHandler) GetSessions(c *fiber.Ctx) error {
	sessions, err := h.opnameService.GetSessions(c.QueryInt("limit"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch sessions"})
	}

	return c.JSON(fiber.Map{
		"data":  sessions,
		"count": len(sessions),
	})
}

// GetSessionItems lists the count lines of one session
// GET /api/v1/opname/sessions/:id/items
func (h *OpnameHandler) GetSessionItems(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid session ID"})
	}

	items, err := h.opnameService.GetSessionItems(sessionID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Session not found"})
	}

	return c.JSON(fiber.Map{
		"data":  items,
		"count": len(items),
	})
}

// localString reads a middleware-set local, defaulting to "system" so that
// audit columns are never empty.
func localString(c *fiber.Ctx, key string) string {
	if v, ok := c.Locals(key).(string); ok && v != "" {
		return v
	}
	return "system"
}
