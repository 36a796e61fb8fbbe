package main

import (
	"log"

	"lms/config"
	"lms/database"
	authRoutes "lms/routers/authRoutes"
	courseRoutes "lms/routers/courseRoutes"
	enrollmentRoutes "lms/routers/enrollmentRoutes"
	liveClassRoutes "lms/routers/liveClassRoutes"
	paymentRoutes "lms/routers/paymentRoutes"
	progressRoutes "lms/routers/progressRoutes"
	uploadRoutes "lms/routers/uploadRoutes"
	"lms/services/enrollment"
	"lms/services/payment"
	"lms/services/progress"
	"lms/services/video"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	db := database.Database.Db

	enrollmentService := enrollment.NewService(db)
	progressService := progress.NewService(db)
	paymentService := payment.NewService(
		db,
		payment.NewRazorpayClient(config.AppConfig.RazorpayKeyID, config.AppConfig.RazorpayKeySecret),
		config.AppConfig.RazorpayKeySecret,
		config.AppConfig.RazorpayWebhookSecret,
		enrollmentService,
	)
	zoomClient := video.NewZoomClient(config.AppConfig.ZoomAccountID, config.AppConfig.ZoomClientID, config.AppConfig.ZoomClientSecret)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",  // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Serve static files from the public folder
	app.Static("/", "./public")

	authRoutes.SetupAuthRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupAdminCourseRoutes(app)
	enrollmentRoutes.SetupEnrollmentRoutes(app, enrollmentService)
	progressRoutes.SetupProgressRoutes(app, progressService)
	paymentRoutes.SetupPaymentRoutes(app, paymentService)
	liveClassRoutes.SetupLiveClassRoutes(app, zoomClient)
	uploadRoutes.SetupUploadRoutes(app)

	utils.InitializeReminderScheduler()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
