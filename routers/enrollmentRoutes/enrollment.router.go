package enrollmentRoutes

import (
	controllers "lms/controllers/enrollment"
	"lms/middleware"
	"lms/services/enrollment"
	validators "lms/validators/enrollment"

	"github.com/gofiber/fiber/v2"
)

// SetupEnrollmentRoutes wires the student and admin enrollment endpoints onto
// the shared ledger service.
func SetupEnrollmentRoutes(app *fiber.App, svc *enrollment.Service) {
	courseGroup := app.Group("/course", middleware.JWTMiddleware)
	courseGroup.Post("/:id/enroll", middleware.RequireCapability(middleware.CapSelfEnroll), validators.CourseIDParam(), controllers.EnrollInCourse(svc))
	courseGroup.Delete("/:id/enroll", validators.CourseIDParam(), controllers.UnenrollFromCourse(svc))

	userGroup := app.Group("/user", middleware.JWTMiddleware)
	userGroup.Get("/enrollments", controllers.GetMyEnrollments(svc))

	adminGroup := app.Group("/admin/course", middleware.JWTMiddleware)
	adminGroup.Post("/:id/enroll", middleware.RequireCapability(middleware.CapAdminEnroll), validators.CourseIDParam(), validators.AdminEnroll(), controllers.AdminEnrollStudent(svc))
	adminGroup.Patch("/:id/enrollment/:user_id/status", middleware.RequireCapability(middleware.CapAdminEnroll), validators.CourseIDParam(), validators.StudentParam(), validators.StatusUpdate(), controllers.AdminUpdateEnrollmentStatus(svc))
	adminGroup.Get("/:id/enrollments", middleware.RequireCapability(middleware.CapViewAllEnrollments), validators.CourseIDParam(), controllers.AdminGetCourseEnrollments(svc))
}
