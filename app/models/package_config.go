package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

const (
	PackageBasic   = "basic"
	PackagePro     = "pro"
	PackagePremium = "premium"
)

// BillLimitUnlimited marks a package without a monthly upload cap.
const BillLimitUnlimited = -1

// StringList stores an ordered list of strings as a JSON column.
type StringList []string

// Value implements the driver.Valuer interface
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("invalid scan source")
	}
	if len(bytes) == 0 {
		*l = StringList{}
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// PackageConfig is one catalog entry: a purchasable (or free) package type
// with its price in VND and monthly bill upload limit.
type PackageConfig struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	PackageType  string     `gorm:"uniqueIndex;type:varchar(50);not null" json:"package_type" validate:"required,min=2,max=50"`
	Price        int64      `gorm:"not null" json:"price" validate:"gte=0"`
	BillLimit    int        `gorm:"not null" json:"bill_limit"`
	Color        string     `gorm:"type:varchar(30)" json:"color"`
	Descriptions StringList `gorm:"type:text" json:"descriptions"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// DefaultBillLimit returns the fallback monthly limit used when a package
// type has no catalog entry.
func DefaultBillLimit(packageType string) int {
	switch packageType {
	case PackageBasic:
		return 20
	case PackagePro:
		return 100
	default:
		return BillLimitUnlimited
	}
}
