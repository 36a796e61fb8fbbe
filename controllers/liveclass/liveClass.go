package liveClassController

import (
	"log"
	"time"

	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/services/video"

	"github.com/gofiber/fiber/v2"
)

// ScheduleLiveClass creates a meeting with the video provider and stores the
// returned identifiers on a LiveClass row.
func ScheduleLiveClass(scheduler video.Scheduler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userId").(uint)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
		}
		courseID := c.Locals("courseID").(uint)

		var course models.Course
		if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}

		reqData, ok := c.Locals("validatedLiveClass").(*struct {
			Topic     string    `json:"topic" validate:"required,min=3"`
			StartTime time.Time `json:"start_time" validate:"required"`
			Duration  int       `json:"duration" validate:"required,gt=0"`
		})
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
		}

		if reqData.StartTime.Before(time.Now()) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Start time must be in the future!", nil)
		}

		meeting, err := scheduler.CreateMeeting(reqData.Topic, reqData.StartTime, reqData.Duration)
		if err != nil {
			log.Printf("[LIVE-CLASS] failed to create meeting: %v", err)
			return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Failed to schedule meeting with video provider!", nil)
		}

		liveClass := models.LiveClass{
			CourseID:  courseID,
			Topic:     reqData.Topic,
			StartTime: reqData.StartTime,
			Duration:  reqData.Duration,
			MeetingID: meeting.MeetingID(),
			JoinURL:   meeting.JoinURL,
			StartURL:  meeting.StartURL,
			CreatedBy: userID,
		}
		if err := database.Database.Db.Create(&liveClass).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save live class!", nil)
		}

		return middleware.JsonResponse(c, fiber.StatusCreated, true, "Live class scheduled successfully!", liveClass)
	}
}

// GetLiveClasses lists upcoming live classes of a course for enrolled students.
func GetLiveClasses(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(uint)

	var enrollment models.Enrollment
	if err := database.Database.Db.Where("course_id = ? AND user_id = ?", courseID, userID).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}

	var liveClasses []models.LiveClass
	if err := database.Database.Db.
		Where("course_id = ? AND is_deleted = ? AND start_time > ?", courseID, false, time.Now().Add(-1*time.Hour)).
		Order("start_time asc").Find(&liveClasses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch live classes!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Live classes fetched successfully!", liveClasses)
}

// CancelLiveClass removes the row and best-effort deletes the remote meeting.
func CancelLiveClass(scheduler video.Scheduler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		liveClassID := c.Locals("liveClassID").(uint)

		var liveClass models.LiveClass
		if err := database.Database.Db.Where("id = ? AND is_deleted = ?", liveClassID, false).First(&liveClass).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Live class not found!", nil)
		}

		liveClass.IsDeleted = true
		if err := database.Database.Db.Save(&liveClass).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to cancel live class!", nil)
		}

		// Remote cleanup is best effort; a stale provider meeting is harmless.
		if liveClass.MeetingID != "" {
			if err := scheduler.DeleteMeeting(liveClass.MeetingID); err != nil {
				log.Printf("[LIVE-CLASS] failed to delete meeting %s: %v", liveClass.MeetingID, err)
			}
		}

		return middleware.JsonResponse(c, fiber.StatusOK, true, "Live class cancelled successfully!", nil)
	}
}
