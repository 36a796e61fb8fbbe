package enrollment

import (
	"testing"
	"time"

	"lms/apperrors"
	"lms/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Section{},
		&models.Lesson{},
		&models.Enrollment{},
		&models.LessonProgress{},
		&models.Payment{},
	))
	return db
}

func createCourse(t *testing.T, db *gorm.DB, price uint, limit int) *models.Course {
	t.Helper()
	course := models.Course{
		Title:           "Test Course",
		Price:           price,
		EnrollmentLimit: limit,
		IsPublished:     true,
	}
	require.NoError(t, db.Create(&course).Error)
	return &course
}

func createUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	user := models.User{
		Name:     "Test User",
		Email:    role + "-" + t.Name() + "@example.com",
		Role:     role,
		Password: "hashed",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestEnrollFreeCourseSelf(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	course := createCourse(t, db, 0, 0)
	student := createUser(t, db, models.RoleStudent)

	enr, err := svc.Enroll(course.ID, student.ID, ModeSelf)
	require.NoError(t, err)

	assert.Equal(t, models.EnrollmentStatusActive, enr.Status)
	assert.Equal(t, 0, enr.Progress)
	assert.Equal(t, string(ModeSelf), enr.Mode)
	assert.False(t, enr.EnrolledAt.IsZero())

	var count int64
	db.Model(&models.Enrollment{}).Where("course_id = ? AND user_id = ?", course.ID, student.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	var updated models.Course
	require.NoError(t, db.First(&updated, course.ID).Error)
	assert.Equal(t, 1, updated.TotalEnrollments)
}

func TestEnrollPaidCourseSelfRequiresPayment(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	course := createCourse(t, db, 499, 0)
	student := createUser(t, db, models.RoleStudent)

	_, err := svc.Enroll(course.ID, student.ID, ModeSelf)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindPaymentRequired, apperrors.KindOf(err))

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, uint(499), appErr.Data["price"])
}

func TestEnrollDiscountPriceWins(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	course := createCourse(t, db, 999, 0)
	course.DiscountPrice = 250
	require.NoError(t, db.Save(course).Error)
	student := createUser(t, db, models.RoleStudent)

	_, err := svc.Enroll(course.ID, student.ID, ModeSelf)
	require.Error(t, err)

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, uint(250), appErr.Data["price"])
}

func TestEnrollDuplicate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	course := createCourse(t, db, 0, 0)
	student := createUser(t, db, models.RoleStudent)

	_, err := svc.Enroll(course.ID, student.ID, ModeSelf)
	require.NoError(t, err)

	_, err = svc.Enroll(course.ID, student.ID, ModeSelf)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)

	var count int64
	db.Model(&models.Enrollment{}).Where("course_id = ?", course.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestEnrollUnpublishedCourse(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	course := createCourse(t, db, 0, 0)
	course.IsPublished = false
	require.NoError(t, db.Save(course).Error)
	student := createUser(t, db, models.RoleStudent)

	_, err := svc.Enroll(course.ID, student.ID, ModeSelf)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestEnrollmentLimit(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	course := createCourse(t, db, 0, 2)

	first := createUser(t, db, models.RoleStudent)
	first.Email = "first@example.com"
	require.NoError(t, db.Save(first).Error)
	second := models.User{Name: "Second", Email: "second@example.com", Role: models.RoleStudent, Password: "hashed"}
	require.NoError(t, db.Create(&second).Error)
	third := models.User{Name: "Third", Email: "third@example.com", Role: models.RoleStudent, Password: "hashed"}
	require.NoError(t, db.Create(&third).Error)

	_, err := svc.Enroll(course.ID, first.ID, ModeSelf)
	require.NoError(t, err)
	_, err = svc.Enroll(course.ID, second.ID, ModeSelf)
	require.NoError(t, err)

	_, err = svc.Enroll(course.ID, third.ID, ModeAdmin)
	assert.ErrorIs(t, err, ErrLimitReached)
}

func TestEnrollPaymentModeIgnoresUnpublish(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	course := createCourse(t, db, 499, 0)
	course.IsPublished = false
	require.NoError(t, db.Save(course).Error)
	student := createUser(t, db, models.RoleStudent)

	// A captured payment enrolls even after the course was unpublished.
	enr, err := svc.Enroll(course.ID, student.ID, ModePayment)
	require.NoError(t, err)
	assert.Equal(t, string(ModePayment), enr.Mode)

	// Deleted courses are still rejected in every mode.
	course.IsDeleted = true
	require.NoError(t, db.Save(course).Error)
	other := models.User{Name: "Late", Email: "late@example.com", Role: models.RoleStudent, Password: "hashed"}
	require.NoError(t, db.Create(&other).Error)
	_, err = svc.Enroll(course.ID, other.ID, ModePayment)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestEnrollPaymentModeSkipsCapacity(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	course := createCourse(t, db, 499, 1)

	occupant := models.User{Name: "Occupant", Email: "occupant@example.com", Role: models.RoleStudent, Password: "hashed"}
	require.NoError(t, db.Create(&occupant).Error)
	payer := models.User{Name: "Payer", Email: "payer@example.com", Role: models.RoleStudent, Password: "hashed"}
	require.NoError(t, db.Create(&payer).Error)

	_, err := svc.Enroll(course.ID, occupant.ID, ModePayment)
	require.NoError(t, err)

	// A confirmed payment is honored even when the course filled up meanwhile.
	_, err = svc.Enroll(course.ID, payer.ID, ModePayment)
	require.NoError(t, err)
}

func TestEnrollAdminRequiresStudentRole(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	course := createCourse(t, db, 0, 0)
	teacher := createUser(t, db, models.RoleTeacher)

	_, err := svc.Enroll(course.ID, teacher.ID, ModeAdmin)
	assert.ErrorIs(t, err, ErrNotAStudent)
}

func TestUnenroll(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	course := createCourse(t, db, 0, 0)
	student := createUser(t, db, models.RoleStudent)

	_, err := svc.Enroll(course.ID, student.ID, ModeSelf)
	require.NoError(t, err)

	require.NoError(t, svc.Unenroll(course.ID, student.ID))

	var updated models.Course
	require.NoError(t, db.First(&updated, course.ID).Error)
	assert.Equal(t, 0, updated.TotalEnrollments)

	assert.ErrorIs(t, svc.Unenroll(course.ID, student.ID), ErrEnrollmentNotFound)

	// The unique index must not block re-enrollment after unenroll.
	_, err = svc.Enroll(course.ID, student.ID, ModeSelf)
	require.NoError(t, err)
}

func TestUpdateStatusCompletedOverride(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	svc.now = func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) }
	course := createCourse(t, db, 0, 0)
	student := createUser(t, db, models.RoleStudent)

	_, err := svc.Enroll(course.ID, student.ID, ModeSelf)
	require.NoError(t, err)

	enr, err := svc.UpdateStatus(course.ID, student.ID, models.EnrollmentStatusCompleted)
	require.NoError(t, err)

	assert.Equal(t, models.EnrollmentStatusCompleted, enr.Status)
	assert.Equal(t, 100, enr.Progress)
	require.NotNil(t, enr.CompletedAt)
	assert.Equal(t, 2026, enr.CompletedAt.Year())

	// Pure display override: no LessonProgress rows are backfilled.
	var lpCount int64
	db.Model(&models.LessonProgress{}).Where("course_id = ? AND user_id = ?", course.ID, student.ID).Count(&lpCount)
	assert.Equal(t, int64(0), lpCount)
}

func TestUpdateStatusSuspendClearsCompletion(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	course := createCourse(t, db, 0, 0)
	student := createUser(t, db, models.RoleStudent)

	_, err := svc.Enroll(course.ID, student.ID, ModeSelf)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(course.ID, student.ID, models.EnrollmentStatusCompleted)
	require.NoError(t, err)

	enr, err := svc.UpdateStatus(course.ID, student.ID, models.EnrollmentStatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusSuspended, enr.Status)
	assert.Nil(t, enr.CompletedAt)
}

func TestUpdateStatusInvalid(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	_, err := svc.UpdateStatus(1, 1, "PAUSED")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
