package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bill is one uploaded bill image. Only its owner and creation timestamp
// matter to the quota gate: the monthly usage count is re-derived from
// created_at, never kept as a separate counter.
type Bill struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UUID      string         `gorm:"type:char(36);uniqueIndex;not null" json:"uuid"`
	AdminID   uint           `gorm:"not null;index:idx_bills_admin_created,priority:1" json:"admin_id"`
	Title     string         `gorm:"type:varchar(255)" json:"title"`
	FileName  string         `gorm:"type:varchar(255);not null" json:"file_name"`
	FilePath  string         `gorm:"type:varchar(255);not null" json:"file_path"`
	FileSize  int64          `gorm:"type:bigint" json:"file_size"`
	FileType  string         `gorm:"type:varchar(50)" json:"file_type"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index:idx_bills_admin_created,priority:2" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns the public UUID.
func (b *Bill) BeforeCreate(tx *gorm.DB) error {
	if b.UUID == "" {
		b.UUID = uuid.New().String()
	}
	return nil
}
