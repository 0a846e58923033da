package entitlement

import (
	"errors"
	"strings"
	"time"

	"github.com/dtnhan205/showbillBE/app/models"
	"github.com/dtnhan205/showbillBE/internal/pkg/catalog"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

var (
	// ErrAdminNotFound is returned when the admin does not exist.
	ErrAdminNotFound = errors.New("admin not found")
	// ErrUnknownPackage is returned when switching to a type absent from the catalog.
	ErrUnknownPackage = errors.New("unknown package type")
	// ErrNotOwned is returned when switching to a package the admin does not
	// currently own (or whose owned instances have all expired).
	ErrNotOwned = errors.New("you don't own this package")
)

// Catalog is the slice of the package catalog the entitlement ledger needs.
type Catalog interface {
	Exists(packageType string) (bool, error)
	BillLimitFor(packageType string) int
}

// Resolution is the reconciled entitlement state for one admin: the
// effective active package after expiry fallback, plus the surviving owned
// packages.
type Resolution struct {
	Admin         *models.Admin
	ActivePackage string
	PackageExpiry *time.Time
	Owned         []models.OwnedPackage
	Changed       bool
}

// OwnedPackageView is an owned package formatted for API responses.
type OwnedPackageView struct {
	PackageType string    `json:"package_type"`
	ExpiryDate  time.Time `json:"expiry_date"`
	PurchasedAt time.Time `json:"purchased_at"`
	IsActive    bool      `json:"is_active"`
}

// Overview is the full entitlement summary returned to the admin.
type Overview struct {
	ActivePackage string             `json:"active_package"`
	Package       string             `json:"package"`
	PackageExpiry *time.Time         `json:"package_expiry"`
	OwnedPackages []OwnedPackageView `json:"owned_packages"`
	BillsUploaded int64              `json:"bills_uploaded"`
	BillLimit     *int               `json:"bill_limit"`
	CanUpload     bool               `json:"can_upload"`
}

// Service is the entitlement ledger: which packages an admin owns, which one
// is active, and the quota state derived from both.
type Service struct {
	repo    Repository
	catalog Catalog
}

// NewService creates an entitlement service from injected dependencies.
func NewService(repo Repository, cat Catalog) *Service {
	return &Service{repo: repo, catalog: cat}
}

// NewServiceFromDB creates an entitlement service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db), catalog.NewServiceFromDB(db))
}

func normalizeType(packageType string) string {
	return strings.ToLower(strings.TrimSpace(packageType))
}

// Resolve prunes expired owned packages, validates the stored active package
// against them and falls back to another valid package (or basic) when the
// active one has expired. Fallbacks are persisted immediately.
func (s *Service) Resolve(adminID uint) (*Resolution, error) {
	admin, err := s.repo.GetAdmin(adminID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}

	owned, err := s.repo.ListOwned(adminID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	valid := make([]models.OwnedPackage, 0, len(owned))
	var expiredIDs []uint
	for _, p := range owned {
		if p.IsExpired(now) {
			expiredIDs = append(expiredIDs, p.ID)
			continue
		}
		valid = append(valid, p)
	}
	if len(expiredIDs) > 0 {
		if err := s.repo.DeleteOwned(expiredIDs); err != nil {
			return nil, err
		}
	}

	active := normalizeType(admin.ActivePackage)
	if active == "" {
		active = models.PackageBasic
	}

	var expiry *time.Time
	changed := false
	if active != models.PackageBasic {
		var match *models.OwnedPackage
		for i := range valid {
			if strings.EqualFold(valid[i].PackageType, active) {
				match = &valid[i]
				break
			}
		}
		switch {
		case match != nil:
			active = normalizeType(match.PackageType)
			e := match.ExpiryDate
			expiry = &e
		case len(valid) > 0:
			active = normalizeType(valid[0].PackageType)
			e := valid[0].ExpiryDate
			expiry = &e
			changed = true
		default:
			active = models.PackageBasic
			expiry = nil
			changed = true
		}
	}

	if changed {
		if err := s.persistActive(admin, active, expiry); err != nil {
			return nil, err
		}
		log.Infof("[Entitlement] admin %d active package fell back to %s", admin.ID, active)
	}

	return &Resolution{
		Admin:         admin,
		ActivePackage: active,
		PackageExpiry: expiry,
		Owned:         valid,
		Changed:       changed,
	}, nil
}

// Overview returns the resolved entitlement plus current-month usage.
func (s *Service) Overview(adminID uint) (*Overview, error) {
	res, err := s.Resolve(adminID)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountBillsInMonth(adminID, time.Now())
	if err != nil {
		return nil, err
	}

	views := make([]OwnedPackageView, 0, len(res.Owned))
	for _, p := range res.Owned {
		views = append(views, OwnedPackageView{
			PackageType: normalizeType(p.PackageType),
			ExpiryDate:  p.ExpiryDate,
			PurchasedAt: p.PurchasedAt,
			IsActive:    strings.EqualFold(p.PackageType, res.ActivePackage),
		})
	}

	out := &Overview{
		ActivePackage: res.ActivePackage,
		Package:       res.ActivePackage,
		PackageExpiry: res.PackageExpiry,
		OwnedPackages: views,
		BillsUploaded: count,
	}

	limit := s.catalog.BillLimitFor(res.ActivePackage)
	if limit == models.BillLimitUnlimited {
		out.BillLimit = nil
		out.CanUpload = true
	} else {
		out.BillLimit = &limit
		out.CanUpload = count < int64(limit)
	}
	return out, nil
}

// Switch selects a different owned package as the active one. Basic is
// always allowed; anything else must exist in the catalog and be backed by
// an unexpired owned package.
func (s *Service) Switch(adminID uint, packageType string) error {
	t := normalizeType(packageType)

	admin, err := s.repo.GetAdmin(adminID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAdminNotFound
	}
	if err != nil {
		return err
	}

	if t == models.PackageBasic {
		return s.persistActive(admin, models.PackageBasic, nil)
	}

	exists, err := s.catalog.Exists(t)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUnknownPackage
	}

	owned, err := s.repo.ListOwned(adminID)
	if err != nil {
		return err
	}
	now := time.Now()
	for i := range owned {
		if owned[i].IsExpired(now) || !strings.EqualFold(owned[i].PackageType, t) {
			continue
		}
		e := owned[i].ExpiryDate
		return s.persistActive(admin, t, &e)
	}
	return ErrNotOwned
}

// Grant records a completed purchase: a new owned package valid for one
// month, auto-activated when the admin is still on the free tier. Duplicate
// grants for the same type and expiry are absorbed so a repeated
// reconciliation match cannot double-grant.
func (s *Service) Grant(adminID uint, packageType string, completedAt time.Time) error {
	t := normalizeType(packageType)
	expiry := completedAt.AddDate(0, 1, 0)

	has, err := s.repo.HasOwned(adminID, t, expiry)
	if err != nil {
		return err
	}
	if !has {
		if err := s.repo.CreateOwned(&models.OwnedPackage{
			AdminID:     adminID,
			PackageType: t,
			ExpiryDate:  expiry,
			PurchasedAt: completedAt,
		}); err != nil {
			return err
		}
	}

	admin, err := s.repo.GetAdmin(adminID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAdminNotFound
	}
	if err != nil {
		return err
	}

	active := normalizeType(admin.ActivePackage)
	if active == "" || active == models.PackageBasic {
		if err := s.persistActive(admin, t, &expiry); err != nil {
			return err
		}
		log.Infof("[Entitlement] admin %d auto-activated package %s", adminID, t)
		return nil
	}

	// Keep the legacy mirror in sync with whichever package stays active.
	owned, err := s.repo.ListOwned(adminID)
	if err != nil {
		return err
	}
	now := time.Now()
	for i := range owned {
		if owned[i].IsExpired(now) || !strings.EqualFold(owned[i].PackageType, active) {
			continue
		}
		e := owned[i].ExpiryDate
		return s.persistActive(admin, active, &e)
	}
	// Active package has no valid backing; the next Resolve will fall back.
	return nil
}

// persistActive writes the active package, its legacy mirror fields and, if
// the new tier no longer permits the current avatar frame, clears the frame.
// Field-level updates only, so concurrent entitlement writers cannot clobber
// unrelated admin columns.
func (s *Service) persistActive(admin *models.Admin, active string, expiry *time.Time) error {
	fields := map[string]interface{}{
		"active_package": active,
		"package":        active,
		"package_expiry": expiry,
	}
	if admin.AvatarFrame != "" && !FrameAllowed(active, admin.AvatarFrame) {
		fields["avatar_frame"] = ""
		admin.AvatarFrame = ""
		log.Infof("[Entitlement] admin %d avatar frame stripped, not permitted by %s", admin.ID, active)
	}

	if err := s.repo.UpdateAdminFields(admin.ID, fields); err != nil {
		return err
	}
	admin.ActivePackage = active
	admin.Package = active
	admin.PackageExpiry = expiry
	return nil
}
