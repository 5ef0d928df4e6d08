package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/coparrent/coparrent/internal/pkg/middleware"
)

// HandleGetProfile returns the authenticated parent's profile including the
// canonical subscription state. The status/tier fields are read-only here;
// only the billing projector writes them.
func HandleGetProfile(c *fiber.Ctx) error {
	profileID := middleware.ProfileIDFromContext(c)
	if profileID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	profile, err := profileRepo().GetByID(profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load profile"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id":                  profile.ID,
		"name":                profile.Name,
		"email":               profile.Email,
		"subscription_status": profile.SubscriptionStatus,
		"subscription_tier":   profile.SubscriptionTier,
		"created_at":          profile.CreatedAt,
	})
}
