package paymentRoutes

import (
	controllers "lms/controllers/payment"
	"lms/middleware"
	"lms/services/payment"
	validators "lms/validators/payment"

	"github.com/gofiber/fiber/v2"
)

// SetupPaymentRoutes wires checkout and reconciliation endpoints. The webhook
// is authenticated by its own signature, so it sits outside the JWT group.
func SetupPaymentRoutes(app *fiber.App, svc *payment.Service) {
	paymentGroup := app.Group("/payment", middleware.JWTMiddleware)

	paymentGroup.Post("/order", validators.CreateOrder(), controllers.CreateOrder(svc))
	paymentGroup.Post("/verify", validators.Verify(), controllers.VerifyPayment(svc))
	paymentGroup.Get("/history", controllers.GetMyPayments(svc))

	app.Post("/webhook/razorpay", controllers.Webhook(svc))
}
