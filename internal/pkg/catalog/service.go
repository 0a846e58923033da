package catalog

import (
	"errors"
	"math/rand"
	"strings"

	"github.com/dtnhan205/showbillBE/app/models"
	"gorm.io/gorm"
)

var (
	// ErrUnknownType is returned when a package type has no catalog entry.
	ErrUnknownType = errors.New("package type not found")
	// ErrDuplicateType is returned when creating a package type that already exists.
	ErrDuplicateType = errors.New("package type already exists")
	// ErrBasicPrice is returned when an update would give the basic package a non-zero price.
	ErrBasicPrice = errors.New("the basic package price must stay 0")
	// ErrBasicUndeletable is returned when deleting the basic package.
	ErrBasicUndeletable = errors.New("the basic package cannot be deleted")
	// ErrInvalidPrice is returned for negative prices.
	ErrInvalidPrice = errors.New("price must be 0 or greater")
	// ErrInvalidBillLimit is returned for bill limits other than -1 or >= 0.
	ErrInvalidBillLimit = errors.New("bill limit must be -1 (unlimited) or 0 or greater")
)

// Fixed colors for the built-in package types; custom types draw from the palette.
var packageColors = map[string]string{
	models.PackageBasic:   "#9ca3af",
	models.PackagePro:     "#3b82f6",
	models.PackagePremium: "#f59e0b",
}

var customPalette = []string{"#10b981", "#8b5cf6", "#ef4444", "#14b8a6", "#ec4899", "#f97316"}

// Service is the package catalog: the definitions of every purchasable tier.
type Service struct {
	repo Repository
}

// NewService creates a catalog service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a catalog service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

func normalizeType(packageType string) string {
	return strings.ToLower(strings.TrimSpace(packageType))
}

func colorFor(packageType string) string {
	if c, ok := packageColors[packageType]; ok {
		return c
	}
	return customPalette[rand.Intn(len(customPalette))]
}

func defaultConfigs() []models.PackageConfig {
	return []models.PackageConfig{
		{PackageType: models.PackageBasic, Price: 0, BillLimit: 20, Color: packageColors[models.PackageBasic]},
		{PackageType: models.PackagePro, Price: 50000, BillLimit: 100, Color: packageColors[models.PackagePro]},
		{PackageType: models.PackagePremium, Price: 100000, BillLimit: models.BillLimitUnlimited, Color: packageColors[models.PackagePremium]},
	}
}

// List returns all package definitions sorted by type, seeding the default
// catalog on first read.
func (s *Service) List() ([]models.PackageConfig, error) {
	configs, err := s.repo.List()
	if err != nil {
		return nil, err
	}
	if len(configs) > 0 {
		return configs, nil
	}

	if err := s.repo.CreateBatch(defaultConfigs()); err != nil {
		return nil, err
	}
	return s.repo.List()
}

// Get returns one package definition by type.
func (s *Service) Get(packageType string) (*models.PackageConfig, error) {
	cfg, err := s.repo.GetByType(normalizeType(packageType))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnknownType
	}
	return cfg, err
}

// Exists reports whether a package type has a catalog entry.
func (s *Service) Exists(packageType string) (bool, error) {
	_, err := s.Get(packageType)
	if errors.Is(err, ErrUnknownType) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// BillLimitFor returns the monthly upload limit for a package type, falling
// back to hardcoded defaults when the catalog entry is missing.
func (s *Service) BillLimitFor(packageType string) int {
	t := normalizeType(packageType)
	cfg, err := s.Get(t)
	if err != nil {
		return models.DefaultBillLimit(t)
	}
	return cfg.BillLimit
}

// Upsert updates a package definition in place, creating it when absent.
// billLimit and descriptions are optional; omitted values keep (or default)
// the stored ones.
func (s *Service) Upsert(packageType string, price int64, billLimit *int, descriptions []string) (*models.PackageConfig, error) {
	t := normalizeType(packageType)
	if t == "" {
		return nil, ErrUnknownType
	}
	if t == models.PackageBasic && price != 0 {
		return nil, ErrBasicPrice
	}
	if price < 0 {
		return nil, ErrInvalidPrice
	}
	if billLimit != nil && *billLimit < models.BillLimitUnlimited {
		return nil, ErrInvalidBillLimit
	}

	existing, err := s.repo.GetByType(t)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if existing == nil {
		limit := models.DefaultBillLimit(t)
		if billLimit != nil {
			limit = *billLimit
		}
		cfg := &models.PackageConfig{
			PackageType:  t,
			Price:        price,
			BillLimit:    limit,
			Color:        colorFor(t),
			Descriptions: descriptions,
		}
		if err := s.repo.Create(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	fields := map[string]interface{}{"price": price}
	if billLimit != nil {
		fields["bill_limit"] = *billLimit
	}
	if descriptions != nil {
		fields["descriptions"] = models.StringList(descriptions)
	}
	if err := s.repo.UpdateFields(t, fields); err != nil {
		return nil, err
	}
	return s.repo.GetByType(t)
}

// Create adds a new package definition and rejects duplicates.
func (s *Service) Create(packageType string, price int64, billLimit int, descriptions []string) (*models.PackageConfig, error) {
	t := normalizeType(packageType)
	if t == "" {
		return nil, ErrUnknownType
	}
	if price < 0 {
		return nil, ErrInvalidPrice
	}
	if t == models.PackageBasic && price != 0 {
		return nil, ErrBasicPrice
	}
	if billLimit < models.BillLimitUnlimited {
		return nil, ErrInvalidBillLimit
	}

	if _, err := s.repo.GetByType(t); err == nil {
		return nil, ErrDuplicateType
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cfg := &models.PackageConfig{
		PackageType:  t,
		Price:        price,
		BillLimit:    billLimit,
		Color:        colorFor(t),
		Descriptions: descriptions,
	}
	if err := s.repo.Create(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Delete removes a package definition. The basic package is permanent.
func (s *Service) Delete(packageType string) error {
	t := normalizeType(packageType)
	if t == models.PackageBasic {
		return ErrBasicUndeletable
	}
	deleted, err := s.repo.DeleteByType(t)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrUnknownType
	}
	return nil
}
