package enrollmentController

import (
	"log"

	"lms/middleware"
	"lms/services/enrollment"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
)

// EnrollInCourse handles self-service enrollment in a free course.
func EnrollInCourse(svc *enrollment.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userId").(uint)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
		}
		courseID := c.Locals("courseID").(uint)

		enr, err := svc.Enroll(courseID, userID, enrollment.ModeSelf)
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}

		go utils.SendEnrollmentConfirmation(enr.UserID, enr.CourseID)

		return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrolled in course successfully!", enr)
	}
}

func UnenrollFromCourse(svc *enrollment.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userId").(uint)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
		}
		courseID := c.Locals("courseID").(uint)

		if err := svc.Unenroll(courseID, userID); err != nil {
			return middleware.ErrorResponse(c, err)
		}

		return middleware.JsonResponse(c, fiber.StatusOK, true, "Unenrolled from course successfully!", nil)
	}
}

func GetMyEnrollments(svc *enrollment.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userId").(uint)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
		}

		enrollments, err := svc.ListForStudent(userID)
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}

		return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", enrollments)
	}
}

// AdminEnrollStudent enrolls a target student on an admin's behalf.
func AdminEnrollStudent(svc *enrollment.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID := c.Locals("courseID").(uint)

		reqData, ok := c.Locals("validatedAdminEnroll").(*struct {
			UserID uint `json:"user_id" validate:"required"`
		})
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
		}

		enr, err := svc.Enroll(courseID, reqData.UserID, enrollment.ModeAdmin)
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}

		log.Printf("[ENROLLMENT] admin enrolled user %d in course %d", reqData.UserID, courseID)
		go utils.SendEnrollmentConfirmation(enr.UserID, enr.CourseID)

		return middleware.JsonResponse(c, fiber.StatusOK, true, "Student enrolled successfully!", enr)
	}
}

func AdminUpdateEnrollmentStatus(svc *enrollment.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID := c.Locals("courseID").(uint)
		studentID := c.Locals("studentID").(uint)

		reqData, ok := c.Locals("validatedStatusUpdate").(*struct {
			Status string `json:"status" validate:"required,oneof=ACTIVE COMPLETED SUSPENDED"`
		})
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
		}

		enr, err := svc.UpdateStatus(courseID, studentID, reqData.Status)
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}

		return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment status updated successfully!", enr)
	}
}

func AdminGetCourseEnrollments(svc *enrollment.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID := c.Locals("courseID").(uint)

		enrollments, err := svc.ListForCourse(courseID)
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}

		return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", enrollments)
	}
}
