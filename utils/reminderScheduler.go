package utils

import (
	"log"
	"time"

	"lms/database"
	"lms/models"

	"github.com/robfig/cron/v3"
)

// InitializeReminderScheduler starts the hourly live-class reminder sweep.
func InitializeReminderScheduler() {
	log.Println("[REMINDER-SCHEDULER] Initializing live class reminder scheduler...")

	c := cron.New()

	c.AddFunc("0 * * * *", func() {
		log.Println("[REMINDER-SCHEDULER] Running hourly live class check...")
		SendDueLiveClassReminders()
	})

	c.Start()
	log.Println("[REMINDER-SCHEDULER] Scheduler started - runs hourly")
}

// SendDueLiveClassReminders emails every enrolled student of each live class
// starting within the next hour, once per class.
func SendDueLiveClassReminders() {
	db := database.Database.Db
	now := time.Now()
	oneHourFromNow := now.Add(time.Hour)

	var dueClasses []models.LiveClass
	if err := db.
		Where("is_deleted = ? AND reminder_sent = ?", false, false).
		Where("start_time BETWEEN ? AND ?", now, oneHourFromNow).
		Find(&dueClasses).Error; err != nil {
		log.Printf("[REMINDER-SCHEDULER] Error fetching due live classes: %v", err)
		return
	}

	log.Printf("[REMINDER-SCHEDULER] Found %d live classes starting soon", len(dueClasses))

	for _, liveClass := range dueClasses {
		var course models.Course
		if err := db.Where("id = ?", liveClass.CourseID).First(&course).Error; err != nil {
			log.Printf("[REMINDER-SCHEDULER] Error fetching course %d: %v", liveClass.CourseID, err)
			continue
		}

		var enrollments []models.Enrollment
		if err := db.Where("course_id = ? AND status <> ?", liveClass.CourseID, models.EnrollmentStatusSuspended).
			Find(&enrollments).Error; err != nil {
			log.Printf("[REMINDER-SCHEDULER] Error fetching enrollments for course %d: %v", liveClass.CourseID, err)
			continue
		}

		for _, enrollment := range enrollments {
			var user models.User
			if err := db.Where("id = ?", enrollment.UserID).First(&user).Error; err != nil {
				continue
			}
			SendLiveClassReminder(&user, &course, &liveClass)
		}

		db.Model(&liveClass).Update("reminder_sent", true)
		log.Printf("[REMINDER-SCHEDULER] Sent reminders for live class %d to %d students", liveClass.ID, len(enrollments))
	}
}
