package handler

import (
	"go-apotek-pos/internal/repository"

	"github.com/gofiber/fiber/v2"
)

type SettingsHandler struct {
	settingsRepo repository.SettingsRepository
}

func NewSettingsHandler(settingsRepo repository.SettingsRepository) *SettingsHandler {
	return &SettingsHandler{settingsRepo: settingsRepo}
}

// GetSettings returns the store settings. Secrets are never serialized.
// GET /api/v1/settings
func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.settingsRepo.Get()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load settings"})
	}
	return c.JSON(fiber.Map{"data": settings})
}

type updateSettingsRequest struct {
	StoreName    string `json:"store_name"`
	StoreAddress string `json:"store_address"`
	StorePhone   string `json:"store_phone"`
	QrisBaseURL  string `json:"qris_base_url"`
	QrisAPIKey   string `json:"qris_api_key"`
	WebhookURL   string `json:"webhook_url"`
	WebhookToken string `json:"webhook_token"`
	AlertEmail   string `json:"alert_email"`
}

// UpdateSettings overwrites the store settings. Blank secret fields keep the
// stored value so the UI never has to echo credentials back.
// PUT /api/v1/settings
func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	var req updateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	settings, err := h.settingsRepo.Get()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load settings"})
	}

	settings.StoreName = req.StoreName
	settings.StoreAddress = req.StoreAddress
	settings.StorePhone = req.StorePhone
	settings.QrisBaseURL = req.QrisBaseURL
	settings.WebhookURL = req.WebhookURL
	settings.AlertEmail = req.AlertEmail
	if req.QrisAPIKey != "" {
		settings.QrisAPIKey = req.QrisAPIKey
	}
	if req.WebhookToken != "" {
		settings.WebhookToken = req.WebhookToken
	}
	settings.UpdatedBy = localString(c, "user_id")

	if err := h.settingsRepo.Update(settings); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to save settings"})
	}

	return c.JSON(fiber.Map{
		"message": "Settings updated successfully",
		"data":    settings,
	})
}
