package progressController

import (
	"lms/middleware"
	"lms/services/progress"

	"github.com/gofiber/fiber/v2"
)

// RecordLessonCompletion toggles a lesson's completed flag and returns the
// recomputed progress snapshot.
func RecordLessonCompletion(svc *progress.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userId").(uint)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
		}
		courseID := c.Locals("courseID").(uint)
		lessonID := c.Locals("lessonID").(uint)

		reqData, ok := c.Locals("validatedCompletion").(*struct {
			Completed *bool `json:"completed" validate:"required"`
		})
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
		}

		snapshot, err := svc.RecordLessonCompletion(courseID, userID, lessonID, *reqData.Completed)
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}

		return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson progress updated successfully!", snapshot)
	}
}

func GetCourseProgress(svc *progress.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userId").(uint)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
		}
		courseID := c.Locals("courseID").(uint)

		view, err := svc.GetCourseProgress(courseID, userID)
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}

		return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", view)
	}
}
