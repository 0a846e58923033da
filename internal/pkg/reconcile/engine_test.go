package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dtnhan205/showbillBE/app/models"
	"github.com/dtnhan205/showbillBE/internal/pkg/bankfeed"
	"github.com/dtnhan205/showbillBE/internal/pkg/payments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	pending    []models.Payment
	expired    int64
	expireErr  error
	expireRuns int
}

func (l *fakeLedger) ListPendingUnexpired(now time.Time) ([]models.Payment, error) {
	return l.pending, nil
}

func (l *fakeLedger) ExpirePending(now time.Time) (int64, error) {
	l.expireRuns++
	return l.expired, l.expireErr
}

type fakeCompleter struct {
	completed []uint
	failWith  map[uint]error
}

func (c *fakeCompleter) Complete(p *models.Payment, completedAt time.Time) error {
	if err, ok := c.failWith[p.ID]; ok {
		return err
	}
	c.completed = append(c.completed, p.ID)
	return nil
}

type fakeFeed struct {
	byURL map[string][]bankfeed.Transaction
	errs  map[string]error
	calls []string
}

func (f *fakeFeed) FetchTransactions(ctx context.Context, apiURL string) ([]bankfeed.Transaction, error) {
	f.calls = append(f.calls, apiURL)
	if err, ok := f.errs[apiURL]; ok {
		return nil, err
	}
	return f.byURL[apiURL], nil
}

func pendingPayment(id, accountID uint, ref string, amount int64, apiURL string) models.Payment {
	return models.Payment{
		ID:              id,
		AdminID:         id,
		PackageType:     "pro",
		Amount:          amount,
		TransferContent: ref,
		BankAccountID:   accountID,
		BankAccount:     models.BankAccount{ID: accountID, BankName: "VCB", AccountNumber: "001", APIURL: apiURL},
		Status:          models.PaymentStatusPending,
		ExpiresAt:       time.Now().Add(time.Hour),
	}
}

func TestRunCycle_MatchesAndCompletes(t *testing.T) {
	ledger := &fakeLedger{pending: []models.Payment{
		pendingPayment(1, 7, "dtn000001", 50000, "https://feed.example/7"),
	}}
	completer := &fakeCompleter{}
	feed := &fakeFeed{byURL: map[string][]bankfeed.Transaction{
		"https://feed.example/7": {
			{Reference: "x1", Amount: 50000, Description: "MBVCB DTN000001 thanh toan", Inbound: true},
		},
	}}

	checked, updated, err := NewEngine(ledger, completer, feed).RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, checked)
	assert.Equal(t, 1, updated)
	assert.Equal(t, []uint{1}, completer.completed)
	assert.Equal(t, 1, ledger.expireRuns)
}

func TestRunCycle_IgnoresNonMatchingTransactions(t *testing.T) {
	ledger := &fakeLedger{pending: []models.Payment{
		pendingPayment(1, 7, "dtn000001", 50000, "https://feed.example/7"),
	}}
	completer := &fakeCompleter{}
	feed := &fakeFeed{byURL: map[string][]bankfeed.Transaction{
		"https://feed.example/7": {
			// Outbound with the right reference and amount.
			{Amount: 50000, Description: "dtn000001", Inbound: false},
			// Inbound but the wrong amount.
			{Amount: 49000, Description: "dtn000001", Inbound: true},
			// Inbound with the right amount but no reference.
			{Amount: 50000, Description: "unrelated transfer", Inbound: true},
		},
	}}

	checked, updated, err := NewEngine(ledger, completer, feed).RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, checked)
	assert.Equal(t, 0, updated)
	assert.Empty(t, completer.completed)
}

func TestRunCycle_OneCreditSettlesOnePayment(t *testing.T) {
	ledger := &fakeLedger{pending: []models.Payment{
		pendingPayment(1, 7, "dtn000001", 50000, "https://feed.example/7"),
		pendingPayment(2, 7, "dtn000002", 50000, "https://feed.example/7"),
	}}
	completer := &fakeCompleter{}
	// One credit whose description happens to contain both references.
	feed := &fakeFeed{byURL: map[string][]bankfeed.Transaction{
		"https://feed.example/7": {
			{Amount: 50000, Description: "dtn000001 dtn000002", Inbound: true},
		},
	}}

	checked, updated, err := NewEngine(ledger, completer, feed).RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, checked)
	assert.Equal(t, 1, updated)
	assert.Equal(t, []uint{1}, completer.completed)
}

func TestRunCycle_FetchFailureSkipsAccountOnly(t *testing.T) {
	ledger := &fakeLedger{pending: []models.Payment{
		pendingPayment(1, 7, "dtn000001", 50000, "https://feed.example/7"),
		pendingPayment(2, 8, "dtn000002", 100000, "https://feed.example/8"),
	}}
	completer := &fakeCompleter{}
	feed := &fakeFeed{
		errs: map[string]error{"https://feed.example/7": errors.New("connection refused")},
		byURL: map[string][]bankfeed.Transaction{
			"https://feed.example/8": {
				{Amount: 100000, Description: "dtn000002", Inbound: true},
			},
		},
	}

	checked, updated, err := NewEngine(ledger, completer, feed).RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, checked)
	assert.Equal(t, 1, updated)
	assert.Equal(t, []uint{2}, completer.completed)
}

func TestRunCycle_SkipsAccountsWithoutFeed(t *testing.T) {
	ledger := &fakeLedger{pending: []models.Payment{
		pendingPayment(1, 7, "dtn000001", 50000, ""),
	}}
	completer := &fakeCompleter{}
	feed := &fakeFeed{}

	checked, updated, err := NewEngine(ledger, completer, feed).RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, checked)
	assert.Equal(t, 0, updated)
	assert.Empty(t, feed.calls)
}

func TestRunCycle_AlreadyCompletedIsNotCountedTwice(t *testing.T) {
	ledger := &fakeLedger{pending: []models.Payment{
		pendingPayment(1, 7, "dtn000001", 50000, "https://feed.example/7"),
	}}
	completer := &fakeCompleter{failWith: map[uint]error{1: payments.ErrPaymentCompleted}}
	feed := &fakeFeed{byURL: map[string][]bankfeed.Transaction{
		"https://feed.example/7": {
			{Amount: 50000, Description: "dtn000001", Inbound: true},
		},
	}}

	checked, updated, err := NewEngine(ledger, completer, feed).RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, checked)
	assert.Equal(t, 0, updated)
}

func TestRunCycle_SweepErrorPropagates(t *testing.T) {
	ledger := &fakeLedger{expireErr: errors.New("db gone")}
	completer := &fakeCompleter{}
	feed := &fakeFeed{}

	_, _, err := NewEngine(ledger, completer, feed).RunCycle(context.Background())
	assert.Error(t, err)
}

func TestMatchTransaction_CaseInsensitiveReference(t *testing.T) {
	p := pendingPayment(1, 7, "dtn000001", 50000, "")
	txns := []bankfeed.Transaction{
		{Amount: 50000, Description: "MBVCB DTN000001 chuyen khoan", Inbound: true},
	}

	if idx := matchTransaction(txns, &p); idx != 0 {
		t.Fatalf("expected match at index 0, got %d", idx)
	}
}
