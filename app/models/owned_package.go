package models

import "time"

// OwnedPackage is one purchase instance of a package type. An admin can hold
// several at once, each with its own expiry, independent of which one is
// currently selected as the active package.
type OwnedPackage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AdminID     uint      `gorm:"not null;index" json:"admin_id"`
	PackageType string    `gorm:"type:varchar(50);not null" json:"package_type"`
	ExpiryDate  time.Time `gorm:"not null" json:"expiry_date"`
	PurchasedAt time.Time `gorm:"not null" json:"purchased_at"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// IsExpired reports whether the owned package has passed its expiry.
func (p *OwnedPackage) IsExpired(now time.Time) bool {
	return !p.ExpiryDate.After(now)
}
