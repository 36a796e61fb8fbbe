package progress

import (
	"errors"
	"math"
	"time"

	"lms/apperrors"
	"lms/models"

	"gorm.io/gorm"
)

var (
	ErrNotEnrolled         = apperrors.New(apperrors.KindNotFound, "User not enrolled in this course!")
	ErrEnrollmentSuspended = apperrors.New(apperrors.KindConflict, "Enrollment is suspended!")
	ErrLessonNotFound      = apperrors.New(apperrors.KindNotFound, "Lesson not found in this course!")
)

// Snapshot is the result of recording a lesson completion.
type Snapshot struct {
	LessonID         uint `json:"lesson_id"`
	Completed        bool `json:"completed"`
	Percentage       int  `json:"percentage"`
	CompletedLessons int  `json:"completed_lessons"`
	TotalLessons     int  `json:"total_lessons"`
}

// Service owns per-lesson completion facts and the aggregate percentage
// written back onto the enrollment.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// RecordLessonCompletion upserts the completion fact for one lesson and
// recomputes the enrollment's progress. Recomputation is idempotent: calling
// twice with no intervening toggle yields the same percentage.
func (s *Service) RecordLessonCompletion(courseID, studentID, lessonID uint, completed bool) (*Snapshot, error) {
	var enrollment models.Enrollment
	if err := s.db.Where("course_id = ? AND user_id = ?", courseID, studentID).First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, apperrors.Upstream("fetch enrollment", err)
	}
	if enrollment.Status == models.EnrollmentStatusSuspended {
		return nil, ErrEnrollmentSuspended
	}

	// The lesson must belong to the course (CourseID is denormalized from the section).
	var lesson models.Lesson
	if err := s.db.Where("id = ? AND course_id = ? AND is_deleted = ?", lessonID, courseID, false).First(&lesson).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, apperrors.Upstream("fetch lesson", err)
	}

	var record models.LessonProgress
	err := s.db.Where("course_id = ? AND user_id = ? AND lesson_id = ?", courseID, studentID, lessonID).First(&record).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		record = models.LessonProgress{
			CourseID:  courseID,
			UserID:    studentID,
			LessonID:  lessonID,
			Completed: completed,
		}
		if completed {
			now := s.now()
			record.CompletedAt = &now
		}
		if err := s.db.Create(&record).Error; err != nil {
			return nil, apperrors.Upstream("create lesson progress", err)
		}
	case err != nil:
		return nil, apperrors.Upstream("fetch lesson progress", err)
	default:
		record.Completed = completed
		if completed {
			now := s.now()
			record.CompletedAt = &now
		} else {
			record.CompletedAt = nil
		}
		if err := s.db.Save(&record).Error; err != nil {
			return nil, apperrors.Upstream("update lesson progress", err)
		}
	}

	done, total, percentage, err := s.recompute(courseID, studentID, &enrollment)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		LessonID:         lessonID,
		Completed:        completed,
		Percentage:       percentage,
		CompletedLessons: int(done),
		TotalLessons:     int(total),
	}, nil
}

// recompute counts lessons and completions, derives the percentage and writes
// it onto the enrollment. Reaching 100 promotes the enrollment to COMPLETED;
// dropping below 100 demotes it back to ACTIVE and clears the completion stamp.
func (s *Service) recompute(courseID, studentID uint, enrollment *models.Enrollment) (done, total int64, percentage int, err error) {
	if err = s.db.Model(&models.Lesson{}).
		Where("course_id = ? AND is_deleted = ?", courseID, false).
		Count(&total).Error; err != nil {
		return 0, 0, 0, apperrors.Upstream("count lessons", err)
	}

	// Completions of lessons that were since removed must not count, or the
	// percentage drifts past 100 after an admin deletes a completed lesson.
	liveLessons := s.db.Model(&models.Lesson{}).Select("id").
		Where("course_id = ? AND is_deleted = ?", courseID, false)
	if err = s.db.Model(&models.LessonProgress{}).
		Where("course_id = ? AND user_id = ? AND completed = ?", courseID, studentID, true).
		Where("lesson_id IN (?)", liveLessons).
		Count(&done).Error; err != nil {
		return 0, 0, 0, apperrors.Upstream("count completions", err)
	}

	if total > 0 {
		percentage = int(math.Round(float64(done) / float64(total) * 100))
	}

	enrollment.Progress = percentage
	enrollment.CompletedLessons = int(done)
	enrollment.TotalLessons = int(total)

	if percentage == 100 {
		if enrollment.Status != models.EnrollmentStatusCompleted {
			enrollment.Status = models.EnrollmentStatusCompleted
			now := s.now()
			enrollment.CompletedAt = &now
		}
	} else if enrollment.Status == models.EnrollmentStatusCompleted {
		enrollment.Status = models.EnrollmentStatusActive
		enrollment.CompletedAt = nil
	}

	if err = s.db.Save(enrollment).Error; err != nil {
		return 0, 0, 0, apperrors.Upstream("update enrollment", err)
	}

	return done, total, percentage, nil
}

// CourseProgress is the read-only view: the enrollment plus per-lesson facts.
type CourseProgress struct {
	Enrollment models.Enrollment       `json:"enrollment"`
	Lessons    []models.LessonProgress `json:"lessons"`
}

// GetCourseProgress returns the stored progress for a (course, student) pair.
func (s *Service) GetCourseProgress(courseID, studentID uint) (*CourseProgress, error) {
	var enrollment models.Enrollment
	if err := s.db.Where("course_id = ? AND user_id = ?", courseID, studentID).First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, apperrors.Upstream("fetch enrollment", err)
	}

	var lessons []models.LessonProgress
	if err := s.db.Where("course_id = ? AND user_id = ?", courseID, studentID).Order("lesson_id asc").Find(&lessons).Error; err != nil {
		return nil, apperrors.Upstream("list lesson progress", err)
	}

	return &CourseProgress{Enrollment: enrollment, Lessons: lessons}, nil
}
