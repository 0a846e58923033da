package payments

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/dtnhan205/showbillBE/app/models"
	"github.com/dtnhan205/showbillBE/internal/pkg/catalog"
	"github.com/dtnhan205/showbillBE/internal/pkg/entitlement"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

const (
	pendingPaymentCap = 3
	creationCooldown  = time.Hour
)

// Catalog is the slice of the package catalog the payment ledger needs.
type Catalog interface {
	Get(packageType string) (*models.PackageConfig, error)
}

// Granter hands a completed purchase over to the entitlement ledger.
type Granter interface {
	Grant(adminID uint, packageType string, completedAt time.Time) error
}

// Stats is the revenue report over a date range.
type Stats struct {
	TotalCount   int64         `json:"total_count"`
	TotalRevenue int64         `json:"total_revenue"`
	ByPackage    []PackageStat `json:"by_package"`
	Monthly      []MonthlyStat `json:"monthly"`
}

// Service is the payment ledger: purchase attempts, their validation rules
// and their promotion to completed.
type Service struct {
	repo    Repository
	catalog Catalog
	granter Granter
}

// NewService creates a payment service from injected dependencies.
func NewService(repo Repository, cat Catalog, granter Granter) *Service {
	return &Service{repo: repo, catalog: cat, granter: granter}
}

// NewServiceFromDB creates a payment service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db), catalog.NewServiceFromDB(db), entitlement.NewServiceFromDB(db))
}

// Create validates and records a new purchase attempt:
// known non-free package, at most 3 pending payments, one pending creation
// per hour, exact catalog price, an active receiving account and a unique
// transfer reference.
func (s *Service) Create(adminID uint, packageType string, amount int64) (*models.Payment, error) {
	t := strings.ToLower(strings.TrimSpace(packageType))
	if t == "" || t == models.PackageBasic {
		return nil, ErrFreePackage
	}

	cfg, err := s.catalog.Get(t)
	if errors.Is(err, catalog.ErrUnknownType) {
		return nil, ErrUnknownPackage
	}
	if err != nil {
		return nil, err
	}

	pending, err := s.repo.CountPending(adminID)
	if err != nil {
		return nil, err
	}
	if pending >= pendingPaymentCap {
		return nil, &TooManyPendingError{Count: pending}
	}

	now := time.Now()
	recent, err := s.repo.LatestPendingSince(adminID, now.Add(-creationCooldown))
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if recent != nil {
		remaining := recent.CreatedAt.Add(creationCooldown).Sub(now)
		if remaining > 0 {
			minutes := int(math.Ceil(remaining.Minutes()))
			return nil, &CooldownError{MinutesRemaining: minutes}
		}
	}

	if amount != cfg.Price {
		return nil, &WrongAmountError{PackageType: t, Expected: cfg.Price}
	}

	account, err := s.repo.ActiveBankAccount()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoActiveBankAccount
	}
	if err != nil {
		return nil, err
	}

	code, err := generateTransferContent(s.repo)
	if err != nil {
		return nil, err
	}

	p := &models.Payment{
		AdminID:         adminID,
		PackageType:     t,
		Amount:          amount,
		TransferContent: code,
		BankAccountID:   account.ID,
		Status:          models.PaymentStatusPending,
		ExpiresAt:       now.Add(models.PaymentTTL),
	}
	if err := s.repo.Create(p); err != nil {
		return nil, err
	}
	p.BankAccount = *account

	log.Infof("[Payments] admin %d created payment %s for %s (%d VND)", adminID, code, t, amount)
	return p, nil
}

// History returns the admin's own payments, newest first.
func (s *Service) History(adminID uint) ([]models.Payment, error) {
	return s.repo.ListByAdmin(adminID)
}

// AllHistory returns every payment, newest first.
func (s *Service) AllHistory() ([]models.Payment, error) {
	return s.repo.ListAll()
}

// Detail returns one payment owned by the admin.
func (s *Service) Detail(adminID, id uint) (*models.Payment, error) {
	p, err := s.repo.GetByIDForAdmin(id, adminID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaymentNotFound
	}
	return p, err
}

// Delete removes an owned payment that has not been completed.
func (s *Service) Delete(adminID, id uint) error {
	p, err := s.repo.GetByIDForAdmin(id, adminID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPaymentNotFound
	}
	if err != nil {
		return err
	}
	if p.Status == models.PaymentStatusCompleted {
		return ErrPaymentCompleted
	}
	return s.repo.Delete(p.ID)
}

// Complete promotes a payment to completed and grants the purchased package.
// Completion is guarded by the payment's terminal status, so concurrent
// completion attempts grant at most once.
func (s *Service) Complete(p *models.Payment, completedAt time.Time) error {
	ok, err := s.repo.MarkCompleted(p.ID, completedAt)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPaymentCompleted
	}

	p.Status = models.PaymentStatusCompleted
	p.CompletedAt = &completedAt

	return s.granter.Grant(p.AdminID, p.PackageType, completedAt)
}

// VerifyManually is the super-admin escape hatch: it completes a payment
// without a matching bank transaction.
func (s *Service) VerifyManually(paymentID uint) (*models.Payment, error) {
	p, err := s.repo.GetByID(paymentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	if !p.IsPending() {
		return nil, ErrPaymentCompleted
	}

	if err := s.Complete(p, time.Now()); err != nil {
		return nil, err
	}
	log.Infof("[Payments] payment %d (%s) verified manually", p.ID, p.TransferContent)
	return p, nil
}

// Stats aggregates completed payments over a date range.
func (s *Service) Stats(start, end time.Time) (*Stats, error) {
	byPackage, err := s.repo.StatsByPackage(start, end)
	if err != nil {
		return nil, err
	}
	monthly, err := s.repo.MonthlyTotals(start, end)
	if err != nil {
		return nil, err
	}

	out := &Stats{ByPackage: byPackage, Monthly: monthly}
	for _, st := range byPackage {
		out.TotalCount += st.Count
		out.TotalRevenue += st.Revenue
	}
	return out, nil
}
