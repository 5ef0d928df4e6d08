package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// HandleAdminListProfiles lists profiles for operators, with optional search
// by name or email via the q parameter.
func HandleAdminListProfiles(c *fiber.Ctx) error {
	repo := profileRepo()

	if query := strings.TrimSpace(c.Query("q")); query != "" {
		profiles, err := repo.Search(query)
		if err != nil {
			log.Errorf("[Admin] profile search failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to search profiles"})
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"profiles": profiles,
			"count":    len(profiles),
		})
	}

	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	profiles, err := repo.List(offset, limit)
	if err != nil {
		log.Errorf("[Admin] failed to list profiles: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to list profiles"})
	}
	total, err := repo.Count()
	if err != nil {
		log.Errorf("[Admin] failed to count profiles: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to count profiles"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"profiles": profiles,
		"count":    len(profiles),
		"total":    total,
	})
}

// HandleAdminDeleteProfile soft-deletes a profile by id.
func HandleAdminDeleteProfile(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid profile id"})
	}

	repo := profileRepo()
	if _, err := repo.GetByID(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Profile not found"})
		}
		log.Errorf("[Admin] profile lookup failed for %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load profile"})
	}

	if err := repo.Delete(uint(id)); err != nil {
		log.Errorf("[Admin] failed to delete profile %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to delete profile"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"deleted": true,
		"id":      id,
	})
}
