package courseValidator

import (
	"strconv"
	"strings"

	"lms/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

func fieldErrors(err error) map[string]string {
	errors := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			errors[fe.Field()] = "Failed validation: " + fe.Tag()
		}
	}
	return errors
}

// uintParam parses a positive integer path parameter and stashes it in Locals.
func uintParam(param, localKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Params(param))
		if raw == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Missing "+param+" parameter!", nil)
		}

		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid "+param+" parameter!", nil)
		}

		c.Locals(localKey, uint(value))
		return c.Next()
	}
}

func CourseIDParam() fiber.Handler {
	return uintParam("id", "courseID")
}

func CourseParam() fiber.Handler {
	return uintParam("course_id", "courseID")
}

func SectionParam() fiber.Handler {
	return uintParam("section_id", "sectionID")
}

func LessonParam() fiber.Handler {
	return uintParam("lesson_id", "lessonID")
}

func CourseList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page  *int `json:"page"`
			Limit *int `json:"limit"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		if reqData.Page != nil && *reqData.Page < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Page must be greater than 0!", nil)
		}
		if reqData.Limit != nil && (*reqData.Limit < 1 || *reqData.Limit > 100) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Limit must be between 1 and 100!", nil)
		}

		c.Locals("validatedCourseList", reqData)
		return c.Next()
	}
}

func CreateCourseAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title           string `json:"title" validate:"required,min=3"`
			Description     string `json:"description"`
			Category        string `json:"category"`
			Level           string `json:"level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
			Price           uint   `json:"price"`
			DiscountPrice   uint   `json:"discount_price"`
			EnrollmentLimit int    `json:"enrollment_limit" validate:"gte=0"`
			Duration        int64  `json:"duration"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

func UpdateCourseAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title           *string `json:"title" validate:"omitempty,min=3"`
			Description     *string `json:"description"`
			Category        *string `json:"category"`
			Level           *string `json:"level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
			Price           *uint   `json:"price"`
			DiscountPrice   *uint   `json:"discount_price"`
			EnrollmentLimit *int    `json:"enrollment_limit" validate:"omitempty,gte=0"`
			Duration        *int64  `json:"duration"`
			ThumbnailURL    *string `json:"thumbnail_url"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		c.Locals("validatedCourseUpdate", reqData)
		return c.Next()
	}
}

func CreateSection() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       string `json:"title" validate:"required,min=2"`
			Description string `json:"description"`
			OrderIndex  int    `json:"order_index"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		c.Locals("validatedSection", reqData)
		return c.Next()
	}
}

func CreateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       string `json:"title" validate:"required,min=2"`
			ContentType string `json:"content_type" validate:"omitempty,oneof=TEXT VIDEO"`
			TextContent string `json:"text_content"`
			VideoURL    string `json:"video_url" validate:"omitempty,url"`
			Duration    int    `json:"duration" validate:"gte=0"`
			OrderIndex  int    `json:"order_index"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		c.Locals("validatedLesson", reqData)
		return c.Next()
	}
}
