package payments

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownPackage is returned when the requested type has no catalog entry.
	ErrUnknownPackage = errors.New("unknown package type")
	// ErrFreePackage is returned when trying to buy the free tier.
	ErrFreePackage = errors.New("the basic package cannot be purchased")
	// ErrNoActiveBankAccount is returned when no receiving account is active.
	ErrNoActiveBankAccount = errors.New("no active bank account is configured")
	// ErrPaymentNotFound is returned for unknown or foreign payment ids.
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrPaymentCompleted guards terminal statuses: a payment that is no
	// longer pending cannot be completed, and a completed one cannot be
	// deleted.
	ErrPaymentCompleted = errors.New("payment is already completed")
	// ErrReferenceExhausted is returned when no unique transfer reference
	// could be generated within the retry budget.
	ErrReferenceExhausted = errors.New("could not generate a unique transfer reference")
)

// TooManyPendingError is returned when the pending-payment cap is reached.
type TooManyPendingError struct {
	Count int64
}

func (e *TooManyPendingError) Error() string {
	return fmt.Sprintf("you already have %d unpaid payments, pay or delete one before creating another", e.Count)
}

// CooldownError is returned when a pending payment was created within the
// last hour. MinutesRemaining is always positive.
type CooldownError struct {
	MinutesRemaining int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("you created a payment recently, wait %d more minutes or pay/delete the old one", e.MinutesRemaining)
}

// WrongAmountError is returned when the amount does not match the catalog price.
type WrongAmountError struct {
	PackageType string
	Expected    int64
}

func (e *WrongAmountError) Error() string {
	return fmt.Sprintf("wrong amount, the %s package costs %d VND", e.PackageType, e.Expected)
}
