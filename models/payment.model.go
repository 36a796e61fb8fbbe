package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment statuses. Transitions only run forward:
// PENDING -> COMPLETED | FAILED, COMPLETED -> REFUNDED.
const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusFailed    = "FAILED"
	PaymentStatusRefunded  = "REFUNDED"
)

// Payment represents one attempted purchase of a course. Rows are never deleted.
type Payment struct {
	gorm.Model
	UserID       uint       `json:"user_id" gorm:"index;not null"`
	CourseID     uint       `json:"course_id" gorm:"index;not null"`
	OrderID      string     `json:"order_id" gorm:"type:varchar(100);uniqueIndex;not null"`
	PaymentID    string     `json:"payment_id" gorm:"type:varchar(100)"` // set once captured
	Signature    string     `json:"-"`
	Amount       int64      `json:"amount" gorm:"not null"` // minor currency units
	Currency     string     `json:"currency" gorm:"size:3;default:'INR'"`
	Receipt      string     `json:"receipt"`
	Status       string     `json:"status" gorm:"default:'PENDING'"`
	ErrorMessage string     `json:"error_message"`
	CompletedAt  *time.Time `json:"completed_at"`
}
