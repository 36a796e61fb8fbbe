package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up course, section and lesson management routes.
func SetupAdminCourseRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/course", middleware.JWTMiddleware, middleware.RequireCapability(middleware.CapManageCourses))

	// Course CRUD
	adminGroup.Post("/create", validators.CreateCourseAdmin(), controllers.AdminCreateCourse)
	adminGroup.Get("/list", controllers.AdminGetAllCourses)
	adminGroup.Put("/:id", validators.CourseIDParam(), validators.UpdateCourseAdmin(), controllers.AdminUpdateCourse)
	adminGroup.Post("/:id/publish", validators.CourseIDParam(), controllers.AdminPublishCourse)
	adminGroup.Delete("/:id", validators.CourseIDParam(), controllers.AdminDeleteCourse)

	// Section management
	adminGroup.Post("/:id/section", validators.CourseIDParam(), validators.CreateSection(), controllers.AdminCreateSection)
	adminGroup.Delete("/:course_id/section/:section_id", validators.CourseParam(), validators.SectionParam(), controllers.AdminDeleteSection)

	// Lesson management
	adminGroup.Post("/:course_id/section/:section_id/lesson", validators.CourseParam(), validators.SectionParam(), validators.CreateLesson(), controllers.AdminCreateLesson)
	adminGroup.Delete("/:course_id/lesson/:lesson_id", validators.CourseParam(), validators.LessonParam(), controllers.AdminDeleteLesson)

	// Dashboard
	dashGroup := app.Group("/admin/dashboard", middleware.JWTMiddleware, middleware.RequireCapability(middleware.CapViewAllEnrollments))
	dashGroup.Get("/stats", controllers.AdminDashboardStats)
}
