package paymentController

import (
	"lms/middleware"
	"lms/services/payment"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
)

// CreateOrder opens a gateway order for a paid course.
func CreateOrder(svc *payment.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userId").(uint)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
		}

		reqData, ok := c.Locals("validatedCreateOrder").(*struct {
			CourseID uint `json:"course_id" validate:"required"`
		})
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
		}

		record, err := svc.CreateOrder(userID, reqData.CourseID)
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}

		return middleware.JsonResponse(c, fiber.StatusOK, true, "Order created successfully!", record)
	}
}

// VerifyPayment handles the synchronous client-side confirmation after checkout.
func VerifyPayment(svc *payment.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userId").(uint)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
		}

		reqData, ok := c.Locals("validatedVerify").(*struct {
			OrderID   string `json:"razorpay_order_id" validate:"required"`
			PaymentID string `json:"razorpay_payment_id" validate:"required"`
			Signature string `json:"razorpay_signature" validate:"required"`
		})
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
		}

		enr, err := svc.Verify(userID, reqData.OrderID, reqData.PaymentID, reqData.Signature)
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}

		go utils.SendEnrollmentConfirmation(enr.UserID, enr.CourseID)

		return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment verified and enrollment created!", enr)
	}
}

// Webhook receives the gateway's server-to-server notifications. The signature
// covers the raw body, so the handler reads it unparsed.
func Webhook(svc *payment.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		signature := c.Get("X-Razorpay-Signature")
		if signature == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Missing webhook signature header!", nil)
		}

		if err := svc.HandleWebhook(c.Body(), signature); err != nil {
			return middleware.ErrorResponse(c, err)
		}

		return middleware.JsonResponse(c, fiber.StatusOK, true, "Webhook processed.", nil)
	}
}

func GetMyPayments(svc *payment.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userId").(uint)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
		}

		payments, err := svc.ListForUser(userID)
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}

		return middleware.JsonResponse(c, fiber.StatusOK, true, "Payments fetched successfully!", payments)
	}
}
