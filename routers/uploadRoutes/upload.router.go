package uploadRoutes

import (
	controllers "lms/controllers/upload"
	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupUploadRoutes(app *fiber.App) {
	uploadGroup := app.Group("/upload", middleware.JWTMiddleware)
	uploadGroup.Post("/file", middleware.RequireCapability(middleware.CapManageCourses), controllers.UploadFile)
}
