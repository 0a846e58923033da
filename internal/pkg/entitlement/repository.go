package entitlement

import (
	"time"

	"github.com/dtnhan205/showbillBE/app/models"
	"gorm.io/gorm"
)

// Repository provides DB operations used by the entitlement service.
type Repository interface {
	GetAdmin(id uint) (*models.Admin, error)
	ListOwned(adminID uint) ([]models.OwnedPackage, error)
	DeleteOwned(ids []uint) error
	CreateOwned(p *models.OwnedPackage) error
	HasOwned(adminID uint, packageType string, expiry time.Time) (bool, error)
	UpdateAdminFields(adminID uint, fields map[string]interface{}) error
	CountBillsInMonth(adminID uint, at time.Time) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates an entitlement repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetAdmin(id uint) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.First(&admin, id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *gormRepository) ListOwned(adminID uint) ([]models.OwnedPackage, error) {
	var owned []models.OwnedPackage
	err := r.db.Where("admin_id = ?", adminID).Order("purchased_at asc").Find(&owned).Error
	return owned, err
}

func (r *gormRepository) DeleteOwned(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Delete(&models.OwnedPackage{}, ids).Error
}

func (r *gormRepository) CreateOwned(p *models.OwnedPackage) error {
	return r.db.Create(p).Error
}

func (r *gormRepository) HasOwned(adminID uint, packageType string, expiry time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.OwnedPackage{}).
		Where("admin_id = ? AND package_type = ? AND expiry_date = ?", adminID, packageType, expiry).
		Count(&count).Error
	return count > 0, err
}

// UpdateAdminFields writes only the given columns so concurrent writers
// (reconciliation grant vs. package switch) cannot clobber unrelated fields.
func (r *gormRepository) UpdateAdminFields(adminID uint, fields map[string]interface{}) error {
	return r.db.Model(&models.Admin{}).Where("id = ?", adminID).Updates(fields).Error
}

func (r *gormRepository) CountBillsInMonth(adminID uint, at time.Time) (int64, error) {
	start := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, at.Location())
	end := start.AddDate(0, 1, 0)

	var count int64
	err := r.db.Model(&models.Bill{}).
		Where("admin_id = ? AND created_at >= ? AND created_at < ?", adminID, start, end).
		Count(&count).Error
	return count, err
}
