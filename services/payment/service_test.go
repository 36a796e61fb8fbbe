package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"

	"lms/models"
	"lms/services/enrollment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testKeySecret     = "test_key_secret"
	testWebhookSecret = "test_webhook_secret"
)

type fakeGateway struct {
	orders int
	fail   bool
}

func (f *fakeGateway) CreateOrder(amount int64, currency, receipt string) (*Order, error) {
	if f.fail {
		return nil, fmt.Errorf("gateway unavailable")
	}
	f.orders++
	return &Order{
		ID:       fmt.Sprintf("order_%d", f.orders),
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

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

func setupService(t *testing.T) (*Service, *fakeGateway, *gorm.DB, *models.Course, *models.User) {
	t.Helper()
	db := setupTestDB(t)
	gateway := &fakeGateway{}
	ledger := enrollment.NewService(db)
	svc := NewService(db, gateway, testKeySecret, testWebhookSecret, ledger)

	course := models.Course{Title: "Paid Course", Price: 499, IsPublished: true}
	require.NoError(t, db.Create(&course).Error)
	user := models.User{Name: "Buyer", Email: "buyer@example.com", Role: models.RoleStudent, Password: "hashed"}
	require.NoError(t, db.Create(&user).Error)

	return svc, gateway, db, &course, &user
}

func sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func enrollmentCount(t *testing.T, db *gorm.DB, courseID, userID uint) int64 {
	t.Helper()
	var count int64
	db.Model(&models.Enrollment{}).Where("course_id = ? AND user_id = ?", courseID, userID).Count(&count)
	return count
}

func capturedWebhookBody(orderID, paymentID string) []byte {
	return []byte(fmt.Sprintf(
		`{"event":"payment.captured","payload":{"payment":{"entity":{"id":%q,"order_id":%q}}}}`,
		paymentID, orderID))
}

func TestCreateOrder(t *testing.T) {
	svc, gateway, db, course, user := setupService(t)

	record, err := svc.CreateOrder(user.ID, course.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, gateway.orders)
	assert.Equal(t, models.PaymentStatusPending, record.Status)
	assert.Equal(t, int64(499*100), record.Amount) // minor units
	assert.Equal(t, "INR", record.Currency)
	assert.NotEmpty(t, record.OrderID)
	assert.Contains(t, record.Receipt, "rcpt_")

	var stored models.Payment
	require.NoError(t, db.Where("order_id = ?", record.OrderID).First(&stored).Error)
}

func TestCreateOrderFreeCourse(t *testing.T) {
	svc, _, db, _, user := setupService(t)

	free := models.Course{Title: "Free Course", Price: 0, IsPublished: true}
	require.NoError(t, db.Create(&free).Error)

	_, err := svc.CreateOrder(user.ID, free.ID)
	assert.ErrorIs(t, err, ErrFreeCourse)
}

func TestCreateOrderAlreadyEnrolled(t *testing.T) {
	svc, _, db, course, user := setupService(t)

	require.NoError(t, db.Create(&models.Enrollment{
		CourseID: course.ID, UserID: user.ID, Status: models.EnrollmentStatusActive,
	}).Error)

	_, err := svc.CreateOrder(user.ID, course.ID)
	assert.ErrorIs(t, err, enrollment.ErrAlreadyEnrolled)
}

func TestVerifyCreatesEnrollment(t *testing.T) {
	svc, _, db, course, user := setupService(t)

	record, err := svc.CreateOrder(user.ID, course.ID)
	require.NoError(t, err)

	signature := sign([]byte(record.OrderID+"|pay_1"), testKeySecret)
	enr, err := svc.Verify(user.ID, record.OrderID, "pay_1", signature)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusActive, enr.Status)
	assert.Equal(t, string(enrollment.ModePayment), enr.Mode)

	var stored models.Payment
	require.NoError(t, db.Where("order_id = ?", record.OrderID).First(&stored).Error)
	assert.Equal(t, models.PaymentStatusCompleted, stored.Status)
	assert.Equal(t, "pay_1", stored.PaymentID)
	require.NotNil(t, stored.CompletedAt)
}

func TestVerifyAfterCourseUnpublished(t *testing.T) {
	// The course goes unpublished between checkout and capture. The captured
	// payment still yields its enrollment, on both confirmation paths.
	svc, _, db, course, user := setupService(t)

	record, err := svc.CreateOrder(user.ID, course.ID)
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Course{}).
		Where("id = ?", course.ID).Update("is_published", false).Error)

	signature := sign([]byte(record.OrderID+"|pay_1"), testKeySecret)
	enr, err := svc.Verify(user.ID, record.OrderID, "pay_1", signature)
	require.NoError(t, err)
	assert.Equal(t, string(enrollment.ModePayment), enr.Mode)
	assert.Equal(t, int64(1), enrollmentCount(t, db, course.ID, user.ID))

	body := capturedWebhookBody(record.OrderID, "pay_1")
	require.NoError(t, svc.HandleWebhook(body, sign(body, testWebhookSecret)))
	assert.Equal(t, int64(1), enrollmentCount(t, db, course.ID, user.ID))
}

func TestVerifyTwiceFailsSecondCall(t *testing.T) {
	// Scenario: identical valid payloads; the second call hits the
	// idempotence guard and no second enrollment appears.
	svc, _, db, course, user := setupService(t)

	record, err := svc.CreateOrder(user.ID, course.ID)
	require.NoError(t, err)

	signature := sign([]byte(record.OrderID+"|pay_1"), testKeySecret)
	_, err = svc.Verify(user.ID, record.OrderID, "pay_1", signature)
	require.NoError(t, err)

	_, err = svc.Verify(user.ID, record.OrderID, "pay_1", signature)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
	assert.Equal(t, int64(1), enrollmentCount(t, db, course.ID, user.ID))
}

func TestVerifyTamperedSignature(t *testing.T) {
	svc, _, db, course, user := setupService(t)

	record, err := svc.CreateOrder(user.ID, course.ID)
	require.NoError(t, err)

	_, err = svc.Verify(user.ID, record.OrderID, "pay_1", "deadbeef")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	var stored models.Payment
	require.NoError(t, db.Where("order_id = ?", record.OrderID).First(&stored).Error)
	assert.Equal(t, models.PaymentStatusFailed, stored.Status)
	assert.NotEmpty(t, stored.ErrorMessage)
	assert.Equal(t, int64(0), enrollmentCount(t, db, course.ID, user.ID))
}

func TestVerifyTamperedSignatureWithStorageDown(t *testing.T) {
	// Even when the FAILED write cannot land, the caller still gets the
	// signature error rather than a storage error.
	svc, _, db, _, user := setupService(t)
	require.NoError(t, db.Migrator().DropTable(&models.Payment{}))

	_, err := svc.Verify(user.ID, "order_1", "pay_1", "deadbeef")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyWrongUser(t *testing.T) {
	svc, _, db, course, user := setupService(t)

	record, err := svc.CreateOrder(user.ID, course.ID)
	require.NoError(t, err)

	other := models.User{Name: "Other", Email: "other@example.com", Role: models.RoleStudent, Password: "hashed"}
	require.NoError(t, db.Create(&other).Error)

	signature := sign([]byte(record.OrderID+"|pay_1"), testKeySecret)
	_, err = svc.Verify(other.ID, record.OrderID, "pay_1", signature)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestWebhookRecoversFromFailedVerification(t *testing.T) {
	// Scenario: tampered client verification marks the payment FAILED, then a
	// properly signed capture webhook still produces exactly one enrollment.
	svc, _, db, course, user := setupService(t)

	record, err := svc.CreateOrder(user.ID, course.ID)
	require.NoError(t, err)

	_, err = svc.Verify(user.ID, record.OrderID, "pay_1", "deadbeef")
	require.ErrorIs(t, err, ErrInvalidSignature)
	assert.Equal(t, int64(0), enrollmentCount(t, db, course.ID, user.ID))

	body := capturedWebhookBody(record.OrderID, "pay_1")
	require.NoError(t, svc.HandleWebhook(body, sign(body, testWebhookSecret)))

	var stored models.Payment
	require.NoError(t, db.Where("order_id = ?", record.OrderID).First(&stored).Error)
	assert.Equal(t, models.PaymentStatusCompleted, stored.Status)
	assert.Equal(t, int64(1), enrollmentCount(t, db, course.ID, user.ID))
}

func TestWebhookAfterVerifyIsNoOp(t *testing.T) {
	svc, _, db, course, user := setupService(t)

	record, err := svc.CreateOrder(user.ID, course.ID)
	require.NoError(t, err)

	signature := sign([]byte(record.OrderID+"|pay_1"), testKeySecret)
	_, err = svc.Verify(user.ID, record.OrderID, "pay_1", signature)
	require.NoError(t, err)

	body := capturedWebhookBody(record.OrderID, "pay_1")
	require.NoError(t, svc.HandleWebhook(body, sign(body, testWebhookSecret)))
	require.NoError(t, svc.HandleWebhook(body, sign(body, testWebhookSecret)))

	assert.Equal(t, int64(1), enrollmentCount(t, db, course.ID, user.ID))
}

func TestWebhookBadSignature(t *testing.T) {
	svc, _, db, course, user := setupService(t)

	record, err := svc.CreateOrder(user.ID, course.ID)
	require.NoError(t, err)

	body := capturedWebhookBody(record.OrderID, "pay_1")
	err = svc.HandleWebhook(body, "deadbeef")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	var stored models.Payment
	require.NoError(t, db.Where("order_id = ?", record.OrderID).First(&stored).Error)
	assert.Equal(t, models.PaymentStatusPending, stored.Status)
	assert.Equal(t, int64(0), enrollmentCount(t, db, course.ID, user.ID))
}

func TestWebhookPaymentFailed(t *testing.T) {
	svc, _, db, course, user := setupService(t)

	record, err := svc.CreateOrder(user.ID, course.ID)
	require.NoError(t, err)

	body := []byte(fmt.Sprintf(
		`{"event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_1","order_id":%q,"error_description":"card declined"}}}}`,
		record.OrderID))
	require.NoError(t, svc.HandleWebhook(body, sign(body, testWebhookSecret)))

	var stored models.Payment
	require.NoError(t, db.Where("order_id = ?", record.OrderID).First(&stored).Error)
	assert.Equal(t, models.PaymentStatusFailed, stored.Status)
	assert.Equal(t, "card declined", stored.ErrorMessage)
	assert.Equal(t, int64(0), enrollmentCount(t, db, course.ID, user.ID))
}

func TestWebhookFailedCannotUndoCapture(t *testing.T) {
	svc, _, db, course, user := setupService(t)

	record, err := svc.CreateOrder(user.ID, course.ID)
	require.NoError(t, err)

	captured := capturedWebhookBody(record.OrderID, "pay_1")
	require.NoError(t, svc.HandleWebhook(captured, sign(captured, testWebhookSecret)))

	failed := []byte(fmt.Sprintf(
		`{"event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_1","order_id":%q,"error_description":"late failure"}}}}`,
		record.OrderID))
	require.NoError(t, svc.HandleWebhook(failed, sign(failed, testWebhookSecret)))

	var stored models.Payment
	require.NoError(t, db.Where("order_id = ?", record.OrderID).First(&stored).Error)
	assert.Equal(t, models.PaymentStatusCompleted, stored.Status)
}

func TestWebhookRefundProcessed(t *testing.T) {
	svc, _, db, course, user := setupService(t)

	record, err := svc.CreateOrder(user.ID, course.ID)
	require.NoError(t, err)

	captured := capturedWebhookBody(record.OrderID, "pay_1")
	require.NoError(t, svc.HandleWebhook(captured, sign(captured, testWebhookSecret)))

	refund := []byte(`{"event":"refund.processed","payload":{"refund":{"entity":{"id":"rfnd_1","payment_id":"pay_1"}}}}`)
	require.NoError(t, svc.HandleWebhook(refund, sign(refund, testWebhookSecret)))

	var stored models.Payment
	require.NoError(t, db.Where("order_id = ?", record.OrderID).First(&stored).Error)
	assert.Equal(t, models.PaymentStatusRefunded, stored.Status)
}

func TestWebhookUnknownEventIgnored(t *testing.T) {
	svc, _, _, _, _ := setupService(t)

	body := []byte(`{"event":"order.paid","payload":{}}`)
	assert.NoError(t, svc.HandleWebhook(body, sign(body, testWebhookSecret)))
}

func TestPaymentSignatureRoundTrip(t *testing.T) {
	signature := sign([]byte("order_9|pay_9"), testKeySecret)
	assert.True(t, VerifyPaymentSignature("order_9", "pay_9", signature, testKeySecret))
	assert.False(t, VerifyPaymentSignature("order_9", "pay_8", signature, testKeySecret))
	assert.False(t, VerifyPaymentSignature("order_9", "pay_9", signature, "wrong_secret"))
}
