package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/coparrent/coparrent/app/models"
	"github.com/coparrent/coparrent/internal/pkg/billing"
	"github.com/coparrent/coparrent/internal/pkg/database"
	"github.com/coparrent/coparrent/internal/pkg/jobqueue"
)

// HandleAdminListWebhookEvents returns recent ledger rows for operators.
func HandleAdminListWebhookEvents(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)

	repo := billing.NewRepository(database.GetDB())
	events, err := repo.ListRecentEvents(limit)
	if err != nil {
		log.Errorf("[Admin] failed to list ledger events: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to list events"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"events": events,
		"count":  len(events),
	})
}

// HandleAdminWebhookStats returns aggregated per-event-type outcome counts.
func HandleAdminWebhookStats(c *fiber.Ctx) error {
	var stats []models.EventStat
	if err := database.GetDB().Order("event_type ASC").Find(&stats).Error; err != nil {
		log.Errorf("[Admin] failed to load event stats: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load stats"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"stats": stats})
}

// HandleAdminTriggerLedgerCleanup enqueues an immediate retention sweep.
func HandleAdminTriggerLedgerCleanup(c *fiber.Ctx) error {
	job, err := jobqueue.GetManager().EnqueueLedgerCleanup()
	if err != nil {
		log.Errorf("[Admin] failed to enqueue ledger cleanup: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to enqueue cleanup"})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"job_id": job.ID,
		"status": job.Status,
	})
}

// HandleAdminQueueStats reports job queue depth and outcome counters.
func HandleAdminQueueStats(c *fiber.Ctx) error {
	queue := jobqueue.GetManager().GetQueue()

	pending, err := queue.GetQueueSize(c.Context())
	if err != nil {
		log.Errorf("[Admin] failed to read queue size: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to read queue"})
	}
	processing, _ := queue.GetProcessingSize(c.Context())
	stats, _ := queue.GetJobStats(c.Context())

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"pending":    pending,
		"processing": processing,
		"stats":      stats,
	})
}
