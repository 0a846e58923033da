package reconcile

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dtnhan205/showbillBE/app/models"
	"github.com/dtnhan205/showbillBE/internal/pkg/bankfeed"
	"github.com/dtnhan205/showbillBE/internal/pkg/payments"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// Feed fetches the externally observed transactions for one bank account.
type Feed interface {
	FetchTransactions(ctx context.Context, apiURL string) ([]bankfeed.Transaction, error)
}

// Ledger is the slice of the payment repository the engine reads and sweeps.
type Ledger interface {
	ListPendingUnexpired(now time.Time) ([]models.Payment, error)
	ExpirePending(now time.Time) (int64, error)
}

// Completer promotes a matched payment and grants its package.
type Completer interface {
	Complete(p *models.Payment, completedAt time.Time) error
}

// Engine matches pending payments against bank transaction feeds. One
// RunCycle is an independent, idempotent unit of work: per-account fetch
// failures are logged and skipped, leaving the affected payments pending for
// the next cycle.
type Engine struct {
	ledger    Ledger
	completer Completer
	feed      Feed
}

// NewEngine creates an engine from injected dependencies.
func NewEngine(ledger Ledger, completer Completer, feed Feed) *Engine {
	return &Engine{ledger: ledger, completer: completer, feed: feed}
}

// NewEngineFromDB creates an engine from a GORM DB handle.
func NewEngineFromDB(db *gorm.DB) *Engine {
	return NewEngine(payments.NewRepository(db), payments.NewServiceFromDB(db), bankfeed.NewClient())
}

// RunCycle processes one reconciliation pass and returns how many pending
// payments were checked and how many were completed.
func (e *Engine) RunCycle(ctx context.Context) (checked, updated int, err error) {
	now := time.Now()

	pending, err := e.ledger.ListPendingUnexpired(now)
	if err != nil {
		return 0, 0, err
	}

	if len(pending) > 0 {
		log.Infof("[Reconcile] %d pending payment(s) awaiting transfer", len(pending))
	}

	// Group payments per bank account, keeping creation order within each.
	var accountOrder []uint
	byAccount := make(map[uint][]models.Payment)
	for _, p := range pending {
		if _, ok := byAccount[p.BankAccountID]; !ok {
			accountOrder = append(accountOrder, p.BankAccountID)
		}
		byAccount[p.BankAccountID] = append(byAccount[p.BankAccountID], p)
	}

	for _, accountID := range accountOrder {
		group := byAccount[accountID]
		bank := group[0].BankAccount

		if !bank.HasFeed() {
			log.Warnf("[Reconcile] bank account %s (%s) has no feed url, skipping %d payment(s)",
				bank.BankName, bank.AccountNumber, len(group))
			continue
		}

		transactions, fetchErr := e.feed.FetchTransactions(ctx, bank.APIURL)
		if fetchErr != nil {
			log.Errorf("[Reconcile] fetching feed for bank account %s (%s) failed: %v",
				bank.BankName, bank.AccountNumber, fetchErr)
			continue
		}

		checked += len(group)
		for i := range group {
			p := &group[i]

			idx := matchTransaction(transactions, p)
			if idx < 0 {
				continue
			}

			if completeErr := e.completer.Complete(p, now); completeErr != nil {
				if errors.Is(completeErr, payments.ErrPaymentCompleted) {
					// Another writer (manual verify) got there first.
					log.Warnf("[Reconcile] payment %d already completed, skipping", p.ID)
				} else {
					log.Errorf("[Reconcile] completing payment %d failed: %v", p.ID, completeErr)
				}
				continue
			}

			// Take the matched credit out of the pool so one bank
			// transaction cannot settle two payments in the same cycle.
			transactions = append(transactions[:idx], transactions[idx+1:]...)

			updated++
			log.Infof("[Reconcile] payment %d (%s, %d VND) matched, granted package %s to admin %d",
				p.ID, p.TransferContent, p.Amount, p.PackageType, p.AdminID)
		}
	}

	expired, sweepErr := e.ledger.ExpirePending(now)
	if sweepErr != nil {
		log.Errorf("[Reconcile] expiry sweep failed: %v", sweepErr)
		return checked, updated, sweepErr
	}
	if expired > 0 {
		log.Infof("[Reconcile] expired %d overdue payment(s)", expired)
	}

	return checked, updated, nil
}

// matchTransaction returns the index of the first inbound transaction whose
// amount equals the payment amount and whose description contains the
// transfer reference (case-insensitively), or -1.
func matchTransaction(transactions []bankfeed.Transaction, p *models.Payment) int {
	ref := strings.ToLower(p.TransferContent)
	for i, txn := range transactions {
		if !txn.Inbound {
			continue
		}
		if txn.Amount != p.Amount {
			continue
		}
		if !strings.Contains(strings.ToLower(txn.Description), ref) {
			continue
		}
		return i
	}
	return -1
}
