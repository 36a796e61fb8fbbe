package enrollment

import (
	"errors"
	"time"

	"lms/apperrors"
	"lms/models"

	"gorm.io/gorm"
)

// Mode records how an enrollment was created.
type Mode string

const (
	ModeSelf    Mode = "self"
	ModeAdmin   Mode = "admin"
	ModePayment Mode = "payment"
)

var (
	ErrCourseNotFound     = apperrors.New(apperrors.KindNotFound, "Course not found or not published!")
	ErrAlreadyEnrolled    = apperrors.New(apperrors.KindConflict, "User already enrolled in this course!")
	ErrLimitReached       = apperrors.New(apperrors.KindConflict, "Enrollment limit reached for this course!")
	ErrEnrollmentNotFound = apperrors.New(apperrors.KindNotFound, "Enrollment not found!")
	ErrNotAStudent        = apperrors.New(apperrors.KindInvalidInput, "Target user is not a student!")
	ErrInvalidStatus      = apperrors.New(apperrors.KindInvalidInput, "Invalid enrollment status!")
)

// Service owns the lifecycle of a student's relationship to a course.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// Enroll registers a student in a course.
//
// Self mode requires the effective price to be zero; a paid course fails with a
// payment-required error carrying the price so the caller can redirect to checkout.
// Admin mode requires the target user to hold the student role. Payment mode is
// invoked by the payment bridge after capture and skips the publish, price and
// capacity checks. The capacity check is best effort; the composite unique index on
// (course_id, user_id) is the final arbiter against duplicates.
func (s *Service) Enroll(courseID, studentID uint, mode Mode) (*models.Enrollment, error) {
	// Payment mode must succeed even when the course was unpublished between
	// checkout and capture; the money is already taken. Deleted courses stay out.
	query := s.db.Where("id = ? AND is_deleted = ?", courseID, false)
	if mode != ModePayment {
		query = query.Where("is_published = ?", true)
	}

	var course models.Course
	if err := query.First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, apperrors.Upstream("fetch course", err)
	}

	if mode == ModeSelf {
		if price := course.EffectivePrice(); price > 0 {
			return nil, apperrors.WithData(apperrors.KindPaymentRequired, "This course requires payment!", map[string]interface{}{
				"price":    price,
				"currency": "INR",
			})
		}
	}

	if mode == ModeAdmin {
		var user models.User
		if err := s.db.Where("id = ? AND is_deleted = ?", studentID, false).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.New(apperrors.KindNotFound, "User not found!")
			}
			return nil, apperrors.Upstream("fetch user", err)
		}
		if user.Role != models.RoleStudent {
			return nil, ErrNotAStudent
		}
	}

	// Fast path; the unique constraint below backstops concurrent requests.
	var existing models.Enrollment
	if err := s.db.Where("course_id = ? AND user_id = ?", courseID, studentID).First(&existing).Error; err == nil {
		return nil, ErrAlreadyEnrolled
	}

	// Soft limit: two requests racing near the limit may both pass.
	if mode != ModePayment && course.EnrollmentLimit > 0 {
		var count int64
		if err := s.db.Model(&models.Enrollment{}).Where("course_id = ?", courseID).Count(&count).Error; err != nil {
			return nil, apperrors.Upstream("count enrollments", err)
		}
		if count >= int64(course.EnrollmentLimit) {
			return nil, ErrLimitReached
		}
	}

	enrollment := models.Enrollment{
		CourseID:   courseID,
		UserID:     studentID,
		Status:     models.EnrollmentStatusActive,
		Progress:   0,
		Mode:       string(mode),
		EnrolledAt: s.now(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&enrollment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Course{}).Where("id = ?", courseID).
			UpdateColumn("total_enrollments", gorm.Expr("total_enrollments + 1")).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, apperrors.Upstream("create enrollment", err)
	}

	return &enrollment, nil
}

// Unenroll removes the enrollment. LessonProgress rows are kept for history.
func (s *Service) Unenroll(courseID, studentID uint) error {
	var enrollment models.Enrollment
	if err := s.db.Where("course_id = ? AND user_id = ?", courseID, studentID).First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEnrollmentNotFound
		}
		return apperrors.Upstream("fetch enrollment", err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Hard delete so the unique index does not block a later re-enrollment.
		if err := tx.Unscoped().Delete(&enrollment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Course{}).Where("id = ? AND total_enrollments > 0", courseID).
			UpdateColumn("total_enrollments", gorm.Expr("total_enrollments - 1")).Error
	})
	if err != nil {
		return apperrors.Upstream("delete enrollment", err)
	}

	return nil
}

// UpdateStatus is the administrative override. Setting COMPLETED forces the
// percentage to 100 and stamps the completion time without reconciling
// LessonProgress rows; it is a display override, not a recomputation.
func (s *Service) UpdateStatus(courseID, studentID uint, status string) (*models.Enrollment, error) {
	switch status {
	case models.EnrollmentStatusActive, models.EnrollmentStatusCompleted, models.EnrollmentStatusSuspended:
	default:
		return nil, ErrInvalidStatus
	}

	var enrollment models.Enrollment
	if err := s.db.Where("course_id = ? AND user_id = ?", courseID, studentID).First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, apperrors.Upstream("fetch enrollment", err)
	}

	if status == models.EnrollmentStatusCompleted {
		now := s.now()
		enrollment.Progress = 100
		enrollment.CompletedAt = &now
	} else if enrollment.Status == models.EnrollmentStatusCompleted {
		enrollment.CompletedAt = nil
	}
	enrollment.Status = status

	if err := s.db.Save(&enrollment).Error; err != nil {
		return nil, apperrors.Upstream("update enrollment", err)
	}

	return &enrollment, nil
}

// Get returns the enrollment for a (course, student) pair.
func (s *Service) Get(courseID, studentID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := s.db.Where("course_id = ? AND user_id = ?", courseID, studentID).First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, apperrors.Upstream("fetch enrollment", err)
	}
	return &enrollment, nil
}

// ListForStudent returns all enrollments of one student, newest first.
func (s *Service) ListForStudent(studentID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := s.db.Where("user_id = ?", studentID).Order("created_at desc").Find(&enrollments).Error; err != nil {
		return nil, apperrors.Upstream("list enrollments", err)
	}
	return enrollments, nil
}

// ListForCourse returns all enrollments of one course, newest first.
func (s *Service) ListForCourse(courseID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := s.db.Where("course_id = ?", courseID).Order("created_at desc").Find(&enrollments).Error; err != nil {
		return nil, apperrors.Upstream("list enrollments", err)
	}
	return enrollments, nil
}
