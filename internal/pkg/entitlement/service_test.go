package entitlement

import (
	"testing"
	"time"

	"github.com/dtnhan205/showbillBE/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRepo struct {
	admins    map[uint]*models.Admin
	owned     []models.OwnedPackage
	billCount int64
	nextID    uint
}

func newFakeRepo(admins ...*models.Admin) *fakeRepo {
	r := &fakeRepo{admins: make(map[uint]*models.Admin), nextID: 1}
	for _, a := range admins {
		r.admins[a.ID] = a
	}
	return r
}

func (r *fakeRepo) GetAdmin(id uint) (*models.Admin, error) {
	admin, ok := r.admins[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *admin
	return &copied, nil
}

func (r *fakeRepo) ListOwned(adminID uint) ([]models.OwnedPackage, error) {
	var out []models.OwnedPackage
	for _, p := range r.owned {
		if p.AdminID == adminID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeRepo) DeleteOwned(ids []uint) error {
	drop := make(map[uint]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := r.owned[:0]
	for _, p := range r.owned {
		if !drop[p.ID] {
			kept = append(kept, p)
		}
	}
	r.owned = kept
	return nil
}

func (r *fakeRepo) CreateOwned(p *models.OwnedPackage) error {
	p.ID = r.nextID
	r.nextID++
	r.owned = append(r.owned, *p)
	return nil
}

func (r *fakeRepo) HasOwned(adminID uint, packageType string, expiry time.Time) (bool, error) {
	for _, p := range r.owned {
		if p.AdminID == adminID && p.PackageType == packageType && p.ExpiryDate.Equal(expiry) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) UpdateAdminFields(adminID uint, fields map[string]interface{}) error {
	admin := r.admins[adminID]
	if v, ok := fields["active_package"]; ok {
		admin.ActivePackage = v.(string)
	}
	if v, ok := fields["package"]; ok {
		admin.Package = v.(string)
	}
	if v, ok := fields["package_expiry"]; ok {
		if v == nil {
			admin.PackageExpiry = nil
		} else {
			admin.PackageExpiry = v.(*time.Time)
		}
	}
	if v, ok := fields["avatar_frame"]; ok {
		admin.AvatarFrame = v.(string)
	}
	return nil
}

func (r *fakeRepo) CountBillsInMonth(adminID uint, at time.Time) (int64, error) {
	return r.billCount, nil
}

type fakeCatalog struct {
	types  map[string]bool
	limits map[string]int
}

func (c *fakeCatalog) Exists(packageType string) (bool, error) {
	return c.types[packageType], nil
}

func (c *fakeCatalog) BillLimitFor(packageType string) int {
	if limit, ok := c.limits[packageType]; ok {
		return limit
	}
	return models.DefaultBillLimit(packageType)
}

func defaultCatalog() *fakeCatalog {
	return &fakeCatalog{
		types:  map[string]bool{"basic": true, "pro": true, "premium": true},
		limits: map[string]int{"basic": 20, "pro": 100, "premium": models.BillLimitUnlimited},
	}
}

func TestResolve_PrunesExpiredAndFallsBackToBasic(t *testing.T) {
	repo := newFakeRepo(&models.Admin{ID: 1, ActivePackage: "pro"})
	repo.owned = []models.OwnedPackage{
		{ID: 10, AdminID: 1, PackageType: "pro", ExpiryDate: time.Now().Add(-time.Hour)},
	}
	svc := NewService(repo, defaultCatalog())

	res, err := svc.Resolve(1)
	require.NoError(t, err)
	assert.Equal(t, "basic", res.ActivePackage)
	assert.Nil(t, res.PackageExpiry)
	assert.True(t, res.Changed)
	assert.Empty(t, res.Owned)

	assert.Equal(t, "basic", repo.admins[1].ActivePackage)
	assert.Equal(t, "basic", repo.admins[1].Package)
	assert.Nil(t, repo.admins[1].PackageExpiry)
	assert.Empty(t, repo.owned)
}

func TestResolve_FallsBackToAnotherOwnedPackage(t *testing.T) {
	repo := newFakeRepo(&models.Admin{ID: 1, ActivePackage: "premium"})
	repo.owned = []models.OwnedPackage{
		{ID: 10, AdminID: 1, PackageType: "premium", ExpiryDate: time.Now().Add(-time.Hour)},
		{ID: 11, AdminID: 1, PackageType: "pro", ExpiryDate: time.Now().Add(48 * time.Hour)},
	}
	svc := NewService(repo, defaultCatalog())

	res, err := svc.Resolve(1)
	require.NoError(t, err)
	assert.Equal(t, "pro", res.ActivePackage)
	require.NotNil(t, res.PackageExpiry)
	assert.True(t, res.Changed)
	assert.Len(t, res.Owned, 1)
}

func TestResolve_KeepsValidActivePackage(t *testing.T) {
	expiry := time.Now().Add(72 * time.Hour)
	repo := newFakeRepo(&models.Admin{ID: 1, ActivePackage: "Pro"})
	repo.owned = []models.OwnedPackage{
		{ID: 10, AdminID: 1, PackageType: "pro", ExpiryDate: expiry},
	}
	svc := NewService(repo, defaultCatalog())

	res, err := svc.Resolve(1)
	require.NoError(t, err)
	assert.Equal(t, "pro", res.ActivePackage)
	assert.False(t, res.Changed)
	require.NotNil(t, res.PackageExpiry)
	assert.True(t, res.PackageExpiry.Equal(expiry))
}

func TestResolve_AdminNotFound(t *testing.T) {
	svc := NewService(newFakeRepo(), defaultCatalog())

	_, err := svc.Resolve(99)
	assert.ErrorIs(t, err, ErrAdminNotFound)
}

func TestOverview_UnlimitedPackageHasNoLimit(t *testing.T) {
	repo := newFakeRepo(&models.Admin{ID: 1, ActivePackage: "premium"})
	repo.owned = []models.OwnedPackage{
		{ID: 10, AdminID: 1, PackageType: "premium", ExpiryDate: time.Now().Add(time.Hour)},
	}
	repo.billCount = 5000
	svc := NewService(repo, defaultCatalog())

	out, err := svc.Overview(1)
	require.NoError(t, err)
	assert.Nil(t, out.BillLimit)
	assert.True(t, out.CanUpload)
	assert.Equal(t, int64(5000), out.BillsUploaded)
	require.Len(t, out.OwnedPackages, 1)
	assert.True(t, out.OwnedPackages[0].IsActive)
}

func TestOverview_AtLimitCannotUpload(t *testing.T) {
	repo := newFakeRepo(&models.Admin{ID: 1, ActivePackage: "basic"})
	repo.billCount = 20
	svc := NewService(repo, defaultCatalog())

	out, err := svc.Overview(1)
	require.NoError(t, err)
	require.NotNil(t, out.BillLimit)
	assert.Equal(t, 20, *out.BillLimit)
	assert.False(t, out.CanUpload)
	assert.Equal(t, out.ActivePackage, out.Package)
}

func TestSwitch_BasicAlwaysAllowed(t *testing.T) {
	repo := newFakeRepo(&models.Admin{ID: 1, ActivePackage: "pro"})
	svc := NewService(repo, defaultCatalog())

	require.NoError(t, svc.Switch(1, "basic"))
	assert.Equal(t, "basic", repo.admins[1].ActivePackage)
	assert.Nil(t, repo.admins[1].PackageExpiry)
}

func TestSwitch_UnknownPackage(t *testing.T) {
	repo := newFakeRepo(&models.Admin{ID: 1})
	svc := NewService(repo, defaultCatalog())

	assert.ErrorIs(t, svc.Switch(1, "diamond"), ErrUnknownPackage)
}

func TestSwitch_NotOwned(t *testing.T) {
	repo := newFakeRepo(&models.Admin{ID: 1})
	svc := NewService(repo, defaultCatalog())

	assert.ErrorIs(t, svc.Switch(1, "pro"), ErrNotOwned)
}

func TestSwitch_ExpiredOwnershipDoesNotCount(t *testing.T) {
	repo := newFakeRepo(&models.Admin{ID: 1})
	repo.owned = []models.OwnedPackage{
		{ID: 10, AdminID: 1, PackageType: "pro", ExpiryDate: time.Now().Add(-time.Minute)},
	}
	svc := NewService(repo, defaultCatalog())

	assert.ErrorIs(t, svc.Switch(1, "pro"), ErrNotOwned)
}

func TestSwitch_ActivatesOwnedPackage(t *testing.T) {
	expiry := time.Now().Add(24 * time.Hour)
	repo := newFakeRepo(&models.Admin{ID: 1, ActivePackage: "basic"})
	repo.owned = []models.OwnedPackage{
		{ID: 10, AdminID: 1, PackageType: "pro", ExpiryDate: expiry},
	}
	svc := NewService(repo, defaultCatalog())

	require.NoError(t, svc.Switch(1, "PRO"))
	assert.Equal(t, "pro", repo.admins[1].ActivePackage)
	require.NotNil(t, repo.admins[1].PackageExpiry)
	assert.True(t, repo.admins[1].PackageExpiry.Equal(expiry))
}

func TestSwitch_StripsDisallowedAvatarFrame(t *testing.T) {
	repo := newFakeRepo(&models.Admin{ID: 1, ActivePackage: "pro", AvatarFrame: "pro/flame.png"})
	svc := NewService(repo, defaultCatalog())

	require.NoError(t, svc.Switch(1, "basic"))
	assert.Equal(t, "", repo.admins[1].AvatarFrame)
}

func TestGrant_CreatesOwnedAndAutoActivatesFromBasic(t *testing.T) {
	repo := newFakeRepo(&models.Admin{ID: 1, ActivePackage: "basic"})
	svc := NewService(repo, defaultCatalog())

	completedAt := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, svc.Grant(1, "pro", completedAt))

	require.Len(t, repo.owned, 1)
	assert.Equal(t, "pro", repo.owned[0].PackageType)
	assert.True(t, repo.owned[0].ExpiryDate.Equal(completedAt.AddDate(0, 1, 0)))
	assert.True(t, repo.owned[0].PurchasedAt.Equal(completedAt))

	assert.Equal(t, "pro", repo.admins[1].ActivePackage)
	require.NotNil(t, repo.admins[1].PackageExpiry)
}

func TestGrant_IsIdempotentPerExpiry(t *testing.T) {
	repo := newFakeRepo(&models.Admin{ID: 1, ActivePackage: "basic"})
	svc := NewService(repo, defaultCatalog())

	completedAt := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, svc.Grant(1, "pro", completedAt))
	require.NoError(t, svc.Grant(1, "pro", completedAt))

	assert.Len(t, repo.owned, 1)
}

func TestGrant_KeepsCurrentActivePackage(t *testing.T) {
	activeExpiry := time.Now().Add(10 * 24 * time.Hour)
	repo := newFakeRepo(&models.Admin{ID: 1, ActivePackage: "premium"})
	repo.owned = []models.OwnedPackage{
		{ID: 10, AdminID: 1, PackageType: "premium", ExpiryDate: activeExpiry},
	}
	svc := NewService(repo, defaultCatalog())

	require.NoError(t, svc.Grant(1, "pro", time.Now()))

	assert.Len(t, repo.owned, 2)
	assert.Equal(t, "premium", repo.admins[1].ActivePackage)
	require.NotNil(t, repo.admins[1].PackageExpiry)
	assert.True(t, repo.admins[1].PackageExpiry.Equal(activeExpiry))
}
