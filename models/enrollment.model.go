package models

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment statuses
const (
	EnrollmentStatusActive    = "ACTIVE"
	EnrollmentStatusCompleted = "COMPLETED"
	EnrollmentStatusSuspended = "SUSPENDED"
)

// Enrollment tracks a student's registration in a course with progress.
// The composite unique index is the final arbiter against duplicate
// enrollments under concurrent requests.
type Enrollment struct {
	gorm.Model
	CourseID uint   `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollments_course_user"`
	UserID   uint   `json:"user_id" gorm:"not null;uniqueIndex:idx_enrollments_course_user"`
	Status   string `json:"status" gorm:"default:'ACTIVE'"` // ACTIVE, COMPLETED, SUSPENDED
	// Progress is always recomputed as round(100 * completed / total), 0 for empty courses.
	Progress         int        `json:"progress" gorm:"default:0"`
	CompletedLessons int        `json:"completed_lessons" gorm:"default:0"`
	TotalLessons     int        `json:"total_lessons" gorm:"default:0"`
	Mode             string     `json:"mode" gorm:"default:'self'"` // self, admin, payment
	EnrolledAt       time.Time  `json:"enrolled_at"`
	CompletedAt      *time.Time `json:"completed_at"`
}

// LessonProgress records one fact: whether a student has completed a lesson
// in a course. Toggling updates the row, it is never duplicated.
type LessonProgress struct {
	gorm.Model
	CourseID    uint       `json:"course_id" gorm:"not null;uniqueIndex:idx_lesson_progress_course_user_lesson"`
	UserID      uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_lesson_progress_course_user_lesson"`
	LessonID    uint       `json:"lesson_id" gorm:"not null;uniqueIndex:idx_lesson_progress_course_user_lesson"`
	Completed   bool       `json:"completed" gorm:"default:false"`
	CompletedAt *time.Time `json:"completed_at"`
}
