package catalog

import (
	"github.com/dtnhan205/showbillBE/app/models"
	"gorm.io/gorm"
)

// Repository provides DB operations used by the catalog service.
type Repository interface {
	List() ([]models.PackageConfig, error)
	GetByType(packageType string) (*models.PackageConfig, error)
	Create(cfg *models.PackageConfig) error
	CreateBatch(cfgs []models.PackageConfig) error
	UpdateFields(packageType string, fields map[string]interface{}) error
	DeleteByType(packageType string) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a catalog repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) List() ([]models.PackageConfig, error) {
	var configs []models.PackageConfig
	err := r.db.Order("package_type asc").Find(&configs).Error
	return configs, err
}

func (r *gormRepository) GetByType(packageType string) (*models.PackageConfig, error) {
	var cfg models.PackageConfig
	if err := r.db.Where("package_type = ?", packageType).First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *gormRepository) Create(cfg *models.PackageConfig) error {
	return r.db.Create(cfg).Error
}

func (r *gormRepository) CreateBatch(cfgs []models.PackageConfig) error {
	return r.db.Create(&cfgs).Error
}

func (r *gormRepository) UpdateFields(packageType string, fields map[string]interface{}) error {
	return r.db.Model(&models.PackageConfig{}).
		Where("package_type = ?", packageType).
		Updates(fields).Error
}

func (r *gormRepository) DeleteByType(packageType string) (int64, error) {
	tx := r.db.Where("package_type = ?", packageType).Delete(&models.PackageConfig{})
	return tx.RowsAffected, tx.Error
}
