package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"

	"github.com/coparrent/coparrent/app/controllers"
	"github.com/coparrent/coparrent/internal/pkg/env"
)

type AdminRouter struct {
}

func (h AdminRouter) InstallRouter(app *fiber.App) {
	admin := app.Group("/admin", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("ADMIN_USER", "admin"): env.GetEnv("ADMIN_PASSWORD", "admin"),
		},
	}))

	admin.Get("/profiles", controllers.HandleAdminListProfiles)
	admin.Delete("/profiles/:id", controllers.HandleAdminDeleteProfile)

	admin.Get("/webhooks/events", controllers.HandleAdminListWebhookEvents)
	admin.Get("/webhooks/stats", controllers.HandleAdminWebhookStats)

	admin.Post("/jobs/ledger-cleanup", controllers.HandleAdminTriggerLedgerCleanup)
	admin.Get("/jobs/stats", controllers.HandleAdminQueueStats)
}

func NewAdminRouter() *AdminRouter {
	return &AdminRouter{}
}
