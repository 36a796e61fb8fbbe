package models

import (
	"time"

	"gorm.io/gorm"
)

// LiveClass stores a scheduled video-conference session for a course.
// MeetingID and the URLs come from the external video provider.
type LiveClass struct {
	gorm.Model
	CourseID     uint      `json:"course_id" gorm:"index;not null"`
	Topic        string    `json:"topic"`
	StartTime    time.Time `json:"start_time" gorm:"index"`
	Duration     int       `json:"duration" gorm:"default:60"` // minutes
	MeetingID    string    `json:"meeting_id"`
	JoinURL      string    `json:"join_url"`
	StartURL     string    `json:"-"` // host link, not exposed to students
	CreatedBy    uint      `json:"created_by"`
	ReminderSent bool      `json:"-" gorm:"default:false"`
	IsDeleted    bool      `gorm:"default:false" json:"-"`
}
