package utils

import (
	"fmt"
	"log"
	"time"

	"lms/config"
	"lms/database"
	"lms/models"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendEmail delivers a transactional email through SendGrid. Without an API
// key the message is logged to the console instead, which keeps local
// development working.
func SendEmail(to, subject, htmlBody string) error {
	if config.AppConfig.SendgridAPIKey == "" {
		log.Printf("[EMAIL] (console) to=%s subject=%q", to, subject)
		return nil
	}

	from := mail.NewEmail("LearnSphere", config.AppConfig.EmailSender)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), "", htmlBody)

	client := sendgrid.NewSendClient(config.AppConfig.SendgridAPIKey)
	resp, err := client.Send(message)
	if err != nil {
		log.Printf("[EMAIL] send failed: %v", err)
		return err
	}
	if resp.StatusCode >= 400 {
		log.Printf("[EMAIL] send failed: status %d: %s", resp.StatusCode, resp.Body)
		return fmt.Errorf("sendgrid: status %d", resp.StatusCode)
	}
	return nil
}

// SendEnrollmentConfirmation emails a student after a successful enrollment.
// Failures are logged, never surfaced to the enrolling request.
func SendEnrollmentConfirmation(userID, courseID uint) {
	db := database.Database.Db
	if db == nil {
		return
	}

	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		log.Printf("[EMAIL] enrollment confirmation: user %d not found: %v", userID, err)
		return
	}
	var course models.Course
	if err := db.Where("id = ?", courseID).First(&course).Error; err != nil {
		log.Printf("[EMAIL] enrollment confirmation: course %d not found: %v", courseID, err)
		return
	}

	body := emailTemplate("Enrollment Confirmed", fmt.Sprintf(
		`<h2>Hi %s,</h2>
		<p>You are now enrolled in <strong>%s</strong>.</p>
		<p>Head over to your dashboard to start learning.</p>`,
		user.Name, course.Title))

	if err := SendEmail(user.Email, "You are enrolled in "+course.Title, body); err != nil {
		log.Printf("[EMAIL] enrollment confirmation to %s failed: %v", user.Email, err)
	}
}

// SendLiveClassReminder emails a student about a live class starting soon.
func SendLiveClassReminder(user *models.User, course *models.Course, liveClass *models.LiveClass) {
	body := emailTemplate("Live Class Reminder", fmt.Sprintf(
		`<h2>Hi %s,</h2>
		<p>Your live class <strong>%s</strong> for the course <strong>%s</strong> starts at %s.</p>
		<p><a class="btn" href="%s">Join the class</a></p>`,
		user.Name, liveClass.Topic, course.Title,
		liveClass.StartTime.Format(time.RFC1123), liveClass.JoinURL))

	if err := SendEmail(user.Email, "Reminder: "+liveClass.Topic, body); err != nil {
		log.Printf("[EMAIL] live class reminder to %s failed: %v", user.Email, err)
	}
}

func emailTemplate(title, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1A2B4C; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; }
			.content { padding: 40px 30px; color: #1A2B4C; line-height: 1.6; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #2F80ED; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>%s</h1></div>
			<div class="content">%s</div>
			<div class="footer">LearnSphere &middot; This is an automated message, please do not reply.</div>
		</div>
	</body>
	</html>`, title, bodyContent)
}
