package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/coparrent/coparrent/app/models"
	"github.com/coparrent/coparrent/app/repository"
	"github.com/coparrent/coparrent/internal/pkg/database"
)

// Locals keys set by the API key middleware.
const (
	KeyProfileID    = "PROFILE_ID"
	KeyProfileEmail = "PROFILE_EMAIL"
	KeyIsAdmin      = "IS_ADMIN"
)

// APIKeyAuthMiddleware authenticates requests carrying a profile API key.
func APIKeyAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := extractAPIKeyFromHeader(c)
		if apiKey == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing API key"})
		}

		db := database.GetDB()
		if db == nil {
			log.Error("api key middleware: database unavailable")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Database unavailable"})
		}

		repo := repository.NewProfileRepository(db)
		profile, err := repo.GetByAPIKeyHash(models.HashAPIKey(apiKey))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid API key"})
			}
			log.Errorf("api key lookup failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "API key verification failed"})
		}

		if profile.Status == models.STATUS_BLOCKED {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Account is blocked"})
		}

		// Refresh last-used timestamp best-effort.
		if err := repo.TouchAPIKeyUsage(profile.ID, time.Now()); err != nil {
			log.Errorf("failed to update api key usage timestamp for profile %d: %v", profile.ID, err)
		}

		c.Locals(KeyProfileID, profile.ID)
		c.Locals(KeyProfileEmail, profile.Email)
		c.Locals(KeyIsAdmin, profile.Role == models.ROLE_ADMIN)

		return c.Next()
	}
}

// ProfileIDFromContext reads the authenticated profile id set by the
// middleware; zero means unauthenticated.
func ProfileIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals(KeyProfileID); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func extractAPIKeyFromHeader(c *fiber.Ctx) string {
	apiKey := strings.TrimSpace(c.Get("X-API-Key"))
	if apiKey != "" {
		return apiKey
	}
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
