package liveClassValidator

import (
	"strconv"
	"strings"
	"time"

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

func CourseParam() fiber.Handler {
	return uintParam("course_id", "courseID")
}

func LiveClassIDParam() fiber.Handler {
	return uintParam("id", "liveClassID")
}

func ScheduleLiveClass() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Topic     string    `json:"topic" validate:"required,min=3"`
			StartTime time.Time `json:"start_time" validate:"required"`
			Duration  int       `json:"duration" validate:"required,gt=0"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		c.Locals("validatedLiveClass", reqData)
		return c.Next()
	}
}
