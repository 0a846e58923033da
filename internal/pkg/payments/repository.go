package payments

import (
	"time"

	"github.com/dtnhan205/showbillBE/app/models"
	"gorm.io/gorm"
)

// PackageStat is the aggregated revenue for one package type.
type PackageStat struct {
	PackageType string `json:"package_type"`
	Count       int64  `json:"count"`
	Revenue     int64  `json:"revenue"`
}

// MonthlyStat is the aggregated revenue for one calendar month.
type MonthlyStat struct {
	Month   string `json:"month"`
	Count   int64  `json:"count"`
	Revenue int64  `json:"revenue"`
}

// Repository provides DB operations used by the payment service and the
// reconciliation engine.
type Repository interface {
	Create(p *models.Payment) error
	GetByID(id uint) (*models.Payment, error)
	GetByIDForAdmin(id, adminID uint) (*models.Payment, error)
	ListByAdmin(adminID uint) ([]models.Payment, error)
	ListAll() ([]models.Payment, error)
	Delete(id uint) error
	CountPending(adminID uint) (int64, error)
	LatestPendingSince(adminID uint, since time.Time) (*models.Payment, error)
	TransferContentExists(code string) (bool, error)
	MarkCompleted(id uint, completedAt time.Time) (bool, error)
	ListPendingUnexpired(now time.Time) ([]models.Payment, error)
	ExpirePending(now time.Time) (int64, error)
	ActiveBankAccount() (*models.BankAccount, error)
	StatsByPackage(start, end time.Time) ([]PackageStat, error)
	MonthlyTotals(start, end time.Time) ([]MonthlyStat, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payment repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(p *models.Payment) error {
	return r.db.Create(p).Error
}

func (r *gormRepository) GetByID(id uint) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.Preload("BankAccount").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) GetByIDForAdmin(id, adminID uint) (*models.Payment, error) {
	var p models.Payment
	err := r.db.Preload("BankAccount").
		Where("id = ? AND admin_id = ?", id, adminID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) ListByAdmin(adminID uint) ([]models.Payment, error) {
	var ps []models.Payment
	err := r.db.Preload("BankAccount").
		Where("admin_id = ?", adminID).
		Order("created_at desc").
		Find(&ps).Error
	return ps, err
}

func (r *gormRepository) ListAll() ([]models.Payment, error) {
	var ps []models.Payment
	err := r.db.Preload("BankAccount").Order("created_at desc").Find(&ps).Error
	return ps, err
}

func (r *gormRepository) Delete(id uint) error {
	return r.db.Delete(&models.Payment{}, id).Error
}

func (r *gormRepository) CountPending(adminID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Payment{}).
		Where("admin_id = ? AND status = ?", adminID, models.PaymentStatusPending).
		Count(&count).Error
	return count, err
}

func (r *gormRepository) LatestPendingSince(adminID uint, since time.Time) (*models.Payment, error) {
	var p models.Payment
	err := r.db.
		Where("admin_id = ? AND status = ? AND created_at >= ?", adminID, models.PaymentStatusPending, since).
		Order("created_at desc").
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) TransferContentExists(code string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Payment{}).
		Where("transfer_content = ?", code).
		Count(&count).Error
	return count > 0, err
}

// MarkCompleted promotes a pending payment to completed. The status guard in
// the WHERE clause makes completion idempotent: a second writer (manual
// verification racing the reconciliation engine) affects zero rows.
func (r *gormRepository) MarkCompleted(id uint, completedAt time.Time) (bool, error) {
	tx := r.db.Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, models.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":       models.PaymentStatusCompleted,
			"completed_at": completedAt,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *gormRepository) ListPendingUnexpired(now time.Time) ([]models.Payment, error) {
	var ps []models.Payment
	err := r.db.Preload("BankAccount").
		Where("status = ? AND expires_at > ?", models.PaymentStatusPending, now).
		Order("bank_account_id asc, created_at asc").
		Find(&ps).Error
	return ps, err
}

func (r *gormRepository) ExpirePending(now time.Time) (int64, error) {
	tx := r.db.Model(&models.Payment{}).
		Where("status = ? AND expires_at <= ?", models.PaymentStatusPending, now).
		Update("status", models.PaymentStatusExpired)
	return tx.RowsAffected, tx.Error
}

func (r *gormRepository) ActiveBankAccount() (*models.BankAccount, error) {
	var account models.BankAccount
	if err := r.db.Where("is_active = ?", true).Order("id asc").First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *gormRepository) StatsByPackage(start, end time.Time) ([]PackageStat, error) {
	var stats []PackageStat
	err := r.db.Model(&models.Payment{}).
		Select("package_type, COUNT(*) as count, COALESCE(SUM(amount), 0) as revenue").
		Where("status = ? AND completed_at >= ? AND completed_at <= ?", models.PaymentStatusCompleted, start, end).
		Group("package_type").
		Order("package_type asc").
		Scan(&stats).Error
	return stats, err
}

func (r *gormRepository) MonthlyTotals(start, end time.Time) ([]MonthlyStat, error) {
	var stats []MonthlyStat
	err := r.db.Model(&models.Payment{}).
		Select("DATE_FORMAT(completed_at, '%Y-%m') as month, COUNT(*) as count, COALESCE(SUM(amount), 0) as revenue").
		Where("status = ? AND completed_at >= ? AND completed_at <= ?", models.PaymentStatusCompleted, start, end).
		Group("month").
		Order("month asc").
		Scan(&stats).Error
	return stats, err
}
