package middleware

import (
	"lms/models"

	"github.com/gofiber/fiber/v2"
)

// Capability names a single authorized action. Handlers gate on capabilities
// instead of branching on roles, so the role-to-action mapping lives in one place.
type Capability string

const (
	CapSelfEnroll         Capability = "self-enroll"
	CapAdminEnroll        Capability = "admin-enroll"
	CapViewAllEnrollments Capability = "view-all-enrollments"
	CapManageCourses      Capability = "manage-courses"
	CapScheduleLiveClass  Capability = "schedule-live-classes"
	CapManageUsers        Capability = "manage-users"
)

var roleCapabilities = map[string][]Capability{
	models.RoleStudent: {
		CapSelfEnroll,
	},
	models.RoleTeacher: {
		CapManageCourses,
		CapScheduleLiveClass,
		CapViewAllEnrollments,
	},
	models.RoleAdmin: {
		CapSelfEnroll,
		CapAdminEnroll,
		CapViewAllEnrollments,
		CapManageCourses,
		CapScheduleLiveClass,
		CapManageUsers,
	},
}

// HasCapability reports whether a role grants the given capability.
func HasCapability(role string, cap Capability) bool {
	for _, c := range roleCapabilities[role] {
		if c == cap {
			return true
		}
	}
	return false
}

// RequireCapability returns a middleware that rejects callers whose role does
// not grant the required capability. It must run after JWTMiddleware.
func RequireCapability(cap Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: role not found", nil)
		}

		if !HasCapability(role, cap) {
			return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
		}

		return c.Next()
	}
}
