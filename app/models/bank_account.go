package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// BankAccount is a receiving account for package payments. APIURL optionally
// points at an external transaction-feed endpoint polled by the
// reconciliation engine; accounts without one are skipped.
type BankAccount struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	BankName      string    `gorm:"type:varchar(100);not null" json:"bank_name" validate:"required,min=2,max=100"`
	AccountNumber string    `gorm:"type:varchar(50);not null" json:"account_number" validate:"required,min=4,max=50"`
	AccountHolder string    `gorm:"type:varchar(150);not null" json:"account_holder" validate:"required,min=2,max=150"`
	APIURL        string    `gorm:"type:varchar(255);default:''" json:"api_url" validate:"omitempty,url"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (b *BankAccount) Validate() error {
	v := validator.New()

	return v.Struct(b)
}

// HasFeed reports whether a transaction-feed endpoint is configured.
func (b *BankAccount) HasFeed() bool {
	return strings.TrimSpace(b.APIURL) != ""
}
