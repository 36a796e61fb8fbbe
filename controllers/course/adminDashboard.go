package courseController

import (
	"lms/database"
	"lms/middleware"
	"lms/models"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
)

// AdminDashboardStats returns platform-wide counters for the admin portal.
func AdminDashboardStats(c *fiber.Ctx) error {
	db := database.Database.Db

	var totalStudents, totalCourses, totalEnrollments, completedEnrollments int64
	db.Model(&models.User{}).Where("role = ? AND is_deleted = ?", models.RoleStudent, false).Count(&totalStudents)
	db.Model(&models.Course{}).Where("is_deleted = ?", false).Count(&totalCourses)
	db.Model(&models.Enrollment{}).Count(&totalEnrollments)
	db.Model(&models.Enrollment{}).Where("status = ?", models.EnrollmentStatusCompleted).Count(&completedEnrollments)

	monthStart := now.BeginningOfMonth()

	var revenueThisMonth int64
	db.Model(&models.Payment{}).
		Where("status = ? AND completed_at >= ?", models.PaymentStatusCompleted, monthStart).
		Select("COALESCE(SUM(amount), 0)").Scan(&revenueThisMonth)

	var enrollmentsThisMonth int64
	db.Model(&models.Enrollment{}).Where("created_at >= ?", monthStart).Count(&enrollmentsThisMonth)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats fetched successfully!", fiber.Map{
		"total_students":         totalStudents,
		"total_courses":          totalCourses,
		"total_enrollments":      totalEnrollments,
		"completed_enrollments":  completedEnrollments,
		"enrollments_this_month": enrollmentsThisMonth,
		"revenue_this_month":     revenueThisMonth, // minor currency units
	})
}
