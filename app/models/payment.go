package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusExpired   = "expired"
)

// PaymentTTL is how long a pending payment stays matchable before the
// reconciliation sweep expires it.
const PaymentTTL = 24 * time.Hour

// Payment is one purchase attempt for a package. The transfer content is the
// unique reference code the admin must put into the bank transfer so the
// reconciliation engine can match the incoming transaction.
type Payment struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	UUID            string      `gorm:"type:char(36);uniqueIndex;not null" json:"uuid"`
	AdminID         uint        `gorm:"not null;index" json:"admin_id"`
	PackageType     string      `gorm:"type:varchar(50);not null" json:"package_type"`
	Amount          int64       `gorm:"not null" json:"amount"`
	TransferContent string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"transfer_content"`
	BankAccountID   uint        `gorm:"not null;index" json:"bank_account_id"`
	BankAccount     BankAccount `gorm:"foreignKey:BankAccountID" json:"bank_account,omitempty"`
	Status          string      `gorm:"type:varchar(20);default:'pending';index:idx_payments_status_expires,priority:1" json:"status"`
	CompletedAt     *time.Time  `gorm:"type:timestamp;default:null" json:"completed_at,omitempty"`
	ExpiresAt       time.Time   `gorm:"not null;index:idx_payments_status_expires,priority:2" json:"expires_at"`
	CreatedAt       time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate assigns the public UUID and the 24h expiry window.
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.New().String()
	}
	if p.ExpiresAt.IsZero() {
		p.ExpiresAt = time.Now().Add(PaymentTTL)
	}
	return nil
}

// IsPending reports whether the payment can still be completed or deleted.
func (p *Payment) IsPending() bool {
	return p.Status == PaymentStatusPending
}
