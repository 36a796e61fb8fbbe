package payment

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"lms/apperrors"
	"lms/models"
	"lms/services/enrollment"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrCourseNotFound   = apperrors.New(apperrors.KindNotFound, "Course not found or not published!")
	ErrFreeCourse       = apperrors.New(apperrors.KindInvalidInput, "Course is free, enroll directly!")
	ErrPaymentNotFound  = apperrors.New(apperrors.KindNotFound, "Payment not found for this order!")
	ErrAlreadyCompleted = apperrors.New(apperrors.KindConflict, "Payment already completed!")
	ErrInvalidSignature = apperrors.New(apperrors.KindSignatureInvalid, "Payment signature verification failed!")
)

// Service reconciles gateway payment confirmations with enrollment creation.
// The verification call and the webhook may both run for the same order, in
// either order; the net effect is one enrollment and one terminal status.
type Service struct {
	db            *gorm.DB
	gateway       Gateway
	keySecret     string
	webhookSecret string
	ledger        *enrollment.Service
	now           func() time.Time
}

func NewService(db *gorm.DB, gateway Gateway, keySecret, webhookSecret string, ledger *enrollment.Service) *Service {
	return &Service{
		db:            db,
		gateway:       gateway,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
		ledger:        ledger,
		now:           time.Now,
	}
}

// CreateOrder opens an order with the gateway and records a PENDING payment.
func (s *Service) CreateOrder(userID, courseID uint) (*models.Payment, error) {
	var course models.Course
	if err := s.db.Where("id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, apperrors.Upstream("fetch course", err)
	}

	price := course.EffectivePrice()
	if price == 0 {
		return nil, ErrFreeCourse
	}

	var existing models.Enrollment
	if err := s.db.Where("course_id = ? AND user_id = ?", courseID, userID).First(&existing).Error; err == nil {
		return nil, enrollment.ErrAlreadyEnrolled
	}

	receipt := "rcpt_" + uuid.NewString()
	order, err := s.gateway.CreateOrder(int64(price)*100, "INR", receipt)
	if err != nil {
		return nil, apperrors.Upstream("create gateway order", err)
	}

	record := models.Payment{
		UserID:   userID,
		CourseID: courseID,
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		Receipt:  receipt,
		Status:   models.PaymentStatusPending,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return nil, apperrors.Upstream("create payment", err)
	}

	return &record, nil
}

// Verify handles the synchronous client-side confirmation. A signature
// mismatch marks the payment FAILED. A payment already COMPLETED fails the
// idempotence guard without creating a second enrollment.
func (s *Service) Verify(userID uint, orderID, paymentID, signature string) (*models.Enrollment, error) {
	if !VerifyPaymentSignature(orderID, paymentID, signature, s.keySecret) {
		if err := s.db.Model(&models.Payment{}).
			Where("order_id = ? AND user_id = ? AND status = ?", orderID, userID, models.PaymentStatusPending).
			Updates(map[string]interface{}{
				"status":        models.PaymentStatusFailed,
				"error_message": "signature verification failed",
			}).Error; err != nil {
			log.Printf("[PAYMENT] failed to mark order %s as FAILED: %v", orderID, err)
		}
		return nil, ErrInvalidSignature
	}

	var record models.Payment
	if err := s.db.Where("order_id = ? AND user_id = ?", orderID, userID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, apperrors.Upstream("fetch payment", err)
	}

	if record.Status == models.PaymentStatusCompleted {
		return nil, ErrAlreadyCompleted
	}

	now := s.now()
	record.Status = models.PaymentStatusCompleted
	record.PaymentID = paymentID
	record.Signature = signature
	record.ErrorMessage = ""
	record.CompletedAt = &now
	if err := s.db.Save(&record).Error; err != nil {
		return nil, apperrors.Upstream("update payment", err)
	}

	return s.enrollPaid(record.CourseID, record.UserID)
}

// enrollPaid creates the enrollment for a captured payment. The webhook may
// already have created it; that is not an error.
func (s *Service) enrollPaid(courseID, userID uint) (*models.Enrollment, error) {
	enr, err := s.ledger.Enroll(courseID, userID, enrollment.ModePayment)
	if errors.Is(err, enrollment.ErrAlreadyEnrolled) {
		return s.ledger.Get(courseID, userID)
	}
	if err != nil {
		return nil, err
	}
	return enr, nil
}

// webhookEvent mirrors the gateway's webhook envelope.
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID               string `json:"id"`
				OrderID          string `json:"order_id"`
				ErrorDescription string `json:"error_description"`
			} `json:"entity"`
		} `json:"payment"`
		Refund struct {
			Entity struct {
				ID        string `json:"id"`
				PaymentID string `json:"payment_id"`
			} `json:"entity"`
		} `json:"refund"`
	} `json:"payload"`
}

// HandleWebhook processes the asynchronous server-to-server notification.
// Unrecognized events are logged and ignored.
func (s *Service) HandleWebhook(body []byte, signature string) error {
	if !VerifyWebhookSignature(body, signature, s.webhookSecret) {
		return ErrInvalidSignature
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return apperrors.New(apperrors.KindInvalidInput, "Malformed webhook payload!")
	}

	switch event.Event {
	case "payment.captured":
		return s.handleCaptured(event.Payload.Payment.Entity.OrderID, event.Payload.Payment.Entity.ID)
	case "payment.failed":
		return s.handleFailed(event.Payload.Payment.Entity.OrderID, event.Payload.Payment.Entity.ErrorDescription)
	case "refund.processed":
		return s.handleRefunded(event.Payload.Refund.Entity.PaymentID)
	default:
		log.Printf("[PAYMENT-WEBHOOK] ignoring event %q", event.Event)
		return nil
	}
}

// handleCaptured may run concurrently with or after Verify for the same
// order, so every mutating step is preceded by an existence check.
func (s *Service) handleCaptured(orderID, paymentID string) error {
	var record models.Payment
	if err := s.db.Where("order_id = ?", orderID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		return apperrors.Upstream("fetch payment", err)
	}

	if record.Status != models.PaymentStatusCompleted {
		now := s.now()
		record.Status = models.PaymentStatusCompleted
		record.PaymentID = paymentID
		record.ErrorMessage = ""
		record.CompletedAt = &now
		if err := s.db.Save(&record).Error; err != nil {
			return apperrors.Upstream("update payment", err)
		}
	}

	_, err := s.enrollPaid(record.CourseID, record.UserID)
	return err
}

func (s *Service) handleFailed(orderID, reason string) error {
	var record models.Payment
	if err := s.db.Where("order_id = ?", orderID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		return apperrors.Upstream("fetch payment", err)
	}

	// Transitions only run forward; a captured payment cannot fail afterwards.
	if record.Status != models.PaymentStatusPending {
		log.Printf("[PAYMENT-WEBHOOK] ignoring failed event for order %s in status %s", orderID, record.Status)
		return nil
	}

	record.Status = models.PaymentStatusFailed
	record.ErrorMessage = reason
	if err := s.db.Save(&record).Error; err != nil {
		return apperrors.Upstream("update payment", err)
	}
	return nil
}

func (s *Service) handleRefunded(paymentID string) error {
	var record models.Payment
	if err := s.db.Where("payment_id = ?", paymentID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		return apperrors.Upstream("fetch payment", err)
	}

	if record.Status != models.PaymentStatusCompleted {
		log.Printf("[PAYMENT-WEBHOOK] ignoring refund event for payment %s in status %s", paymentID, record.Status)
		return nil
	}

	record.Status = models.PaymentStatusRefunded
	if err := s.db.Save(&record).Error; err != nil {
		return apperrors.Upstream("update payment", err)
	}
	return nil
}

// ListForUser returns a user's payments, newest first.
func (s *Service) ListForUser(userID uint) ([]models.Payment, error) {
	var payments []models.Payment
	if err := s.db.Where("user_id = ?", userID).Order("created_at desc").Find(&payments).Error; err != nil {
		return nil, apperrors.Upstream("list payments", err)
	}
	return payments, nil
}
