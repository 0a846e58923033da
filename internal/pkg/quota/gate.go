package quota

import (
	"fmt"
	"time"

	"github.com/dtnhan205/showbillBE/app/models"
	"github.com/dtnhan205/showbillBE/internal/pkg/catalog"
	"github.com/dtnhan205/showbillBE/internal/pkg/entitlement"
	"gorm.io/gorm"
)

// LimitReachedError is returned when the monthly cap is already used up.
type LimitReachedError struct {
	PackageType string
	Uploaded    int64
	Limit       int
}

func (e *LimitReachedError) Error() string {
	return fmt.Sprintf("you have uploaded %d/%d bills this month, upgrade your package to keep uploading", e.Uploaded, e.Limit)
}

// BatchTooLargeError is returned when a multi-file upload would cross the
// monthly cap. The whole batch is rejected; Remaining says how many files
// would still fit.
type BatchTooLargeError struct {
	PackageType string
	Uploaded    int64
	Limit       int
	Requested   int
	Remaining   int64
}

func (e *BatchTooLargeError) Error() string {
	return fmt.Sprintf("uploading %d files would exceed your monthly limit, you can still upload %d more", e.Requested, e.Remaining)
}

// Resolver reconciles the admin's effective active package.
type Resolver interface {
	Resolve(adminID uint) (*entitlement.Resolution, error)
}

// Limits resolves the monthly cap per package type.
type Limits interface {
	BillLimitFor(packageType string) int
}

// Counter re-derives the admin's upload count for the current month.
type Counter interface {
	CountBillsInMonth(adminID uint, at time.Time) (int64, error)
}

// Gate is the pre-upload quota check. It decides per batch: either all N
// files fit into the remaining monthly quota or the request is rejected
// whole. It persists nothing itself; the count is re-derived from bill rows
// on every check.
type Gate struct {
	resolver Resolver
	limits   Limits
	counter  Counter
}

// NewGate creates a gate from injected dependencies.
func NewGate(resolver Resolver, limits Limits, counter Counter) *Gate {
	return &Gate{resolver: resolver, limits: limits, counter: counter}
}

// NewGateFromDB creates a gate from a GORM DB handle.
func NewGateFromDB(db *gorm.DB) *Gate {
	return NewGate(entitlement.NewServiceFromDB(db), catalog.NewServiceFromDB(db), entitlement.NewRepository(db))
}

// Check validates that fileCount more uploads fit into the admin's monthly
// quota under their effective active package.
func (g *Gate) Check(adminID uint, fileCount int) error {
	if fileCount < 1 {
		fileCount = 1
	}

	res, err := g.resolver.Resolve(adminID)
	if err != nil {
		return err
	}

	limit := g.limits.BillLimitFor(res.ActivePackage)
	if limit == models.BillLimitUnlimited {
		return nil
	}

	uploaded, err := g.counter.CountBillsInMonth(adminID, time.Now())
	if err != nil {
		return err
	}

	if uploaded >= int64(limit) {
		return &LimitReachedError{PackageType: res.ActivePackage, Uploaded: uploaded, Limit: limit}
	}
	if uploaded+int64(fileCount) > int64(limit) {
		return &BatchTooLargeError{
			PackageType: res.ActivePackage,
			Uploaded:    uploaded,
			Limit:       limit,
			Requested:   fileCount,
			Remaining:   int64(limit) - uploaded,
		}
	}
	return nil
}
