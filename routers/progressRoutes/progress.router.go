package progressRoutes

import (
	controllers "lms/controllers/progress"
	"lms/middleware"
	"lms/services/progress"
	validators "lms/validators/progress"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressRoutes(app *fiber.App, svc *progress.Service) {
	courseGroup := app.Group("/course", middleware.JWTMiddleware)

	courseGroup.Post("/:course_id/lesson/:lesson_id/complete",
		validators.CourseParam(), validators.LessonParam(), validators.LessonCompletion(),
		controllers.RecordLessonCompletion(svc))
	courseGroup.Get("/:id/progress", validators.CourseIDParam(), controllers.GetCourseProgress(svc))
}
