package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/coparrent/coparrent/app/controllers"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

func InstallRouter(app *fiber.App) {
	// Wire the repository factory before any handler can run.
	controllers.InitializeControllers()

	setup(app, NewApiRouter(), NewAdminRouter())
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
