package quota

import (
	"testing"
	"time"

	"github.com/dtnhan205/showbillBE/app/models"
	"github.com/dtnhan205/showbillBE/internal/pkg/entitlement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	active string
}

func (r *fakeResolver) Resolve(adminID uint) (*entitlement.Resolution, error) {
	return &entitlement.Resolution{ActivePackage: r.active}, nil
}

type fakeLimits struct {
	limits map[string]int
}

func (l *fakeLimits) BillLimitFor(packageType string) int {
	return l.limits[packageType]
}

type fakeCounter struct {
	count int64
}

func (c *fakeCounter) CountBillsInMonth(adminID uint, at time.Time) (int64, error) {
	return c.count, nil
}

func newTestGate(active string, uploaded int64) *Gate {
	return NewGate(
		&fakeResolver{active: active},
		&fakeLimits{limits: map[string]int{
			"basic":   20,
			"pro":     100,
			"premium": models.BillLimitUnlimited,
		}},
		&fakeCounter{count: uploaded},
	)
}

func TestCheck_UnlimitedPackageAlwaysPasses(t *testing.T) {
	gate := newTestGate("premium", 1000000)
	assert.NoError(t, gate.Check(1, 500))
}

func TestCheck_UnderLimitPasses(t *testing.T) {
	gate := newTestGate("basic", 19)
	assert.NoError(t, gate.Check(1, 1))
}

func TestCheck_AtLimitIsRejected(t *testing.T) {
	gate := newTestGate("basic", 20)

	err := gate.Check(1, 1)
	var limitReached *LimitReachedError
	require.ErrorAs(t, err, &limitReached)
	assert.Equal(t, "basic", limitReached.PackageType)
	assert.Equal(t, int64(20), limitReached.Uploaded)
	assert.Equal(t, 20, limitReached.Limit)
}

func TestCheck_BatchCrossingLimitIsRejectedWhole(t *testing.T) {
	gate := newTestGate("basic", 19)

	err := gate.Check(1, 2)
	var batch *BatchTooLargeError
	require.ErrorAs(t, err, &batch)
	assert.Equal(t, 2, batch.Requested)
	assert.Equal(t, int64(1), batch.Remaining)
}

func TestCheck_BatchFillingRemainingQuotaPasses(t *testing.T) {
	gate := newTestGate("pro", 95)
	assert.NoError(t, gate.Check(1, 5))
}

func TestCheck_ZeroFileCountCountsAsOne(t *testing.T) {
	gate := newTestGate("basic", 20)

	err := gate.Check(1, 0)
	var limitReached *LimitReachedError
	assert.ErrorAs(t, err, &limitReached)
}
