package liveClassRoutes

import (
	controllers "lms/controllers/liveclass"
	"lms/middleware"
	"lms/services/video"
	validators "lms/validators/liveclass"

	"github.com/gofiber/fiber/v2"
)

func SetupLiveClassRoutes(app *fiber.App, scheduler video.Scheduler) {
	courseGroup := app.Group("/course", middleware.JWTMiddleware)
	courseGroup.Post("/:course_id/live-class",
		middleware.RequireCapability(middleware.CapScheduleLiveClass),
		validators.CourseParam(), validators.ScheduleLiveClass(),
		controllers.ScheduleLiveClass(scheduler))
	courseGroup.Get("/:course_id/live-classes", validators.CourseParam(), controllers.GetLiveClasses)

	liveClassGroup := app.Group("/live-class", middleware.JWTMiddleware)
	liveClassGroup.Delete("/:id",
		middleware.RequireCapability(middleware.CapScheduleLiveClass),
		validators.LiveClassIDParam(), controllers.CancelLiveClass(scheduler))
}
