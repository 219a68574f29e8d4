/*
errors.go - Centralized error types for the finance domain

PURPOSE:
  All domain error values in one place. The storage and API layers wrap
  these with additional context and map them to HTTP statuses.

USAGE:
    if errors.Is(err, finance.ErrPaymentNotFound) {
        writeError(w, http.StatusNotFound, ...)
    }
*/
package finance

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrPaymentNotFound is returned when a referenced payment doesn't exist.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrBudgetPlanNotFound is returned when no budget plan exists for a month.
	ErrBudgetPlanNotFound = errors.New("budget plan not found")

	// ErrInvalidBudgetMonth is returned for a malformed YYYY-MM month key.
	ErrInvalidBudgetMonth = errors.New("invalid budget month")

	// ErrNegativeBudget is returned when persisting a negative budget plan.
	// Note the scheduling engine itself accepts negative budgets (everything
	// deferred); only storage of a plan rejects them.
	ErrNegativeBudget = errors.New("negative budget amount")

	// ErrInvalidAmount is returned for a non-positive or unparseable amount.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrAlreadySettled is returned when paying against a fully paid record.
	ErrAlreadySettled = errors.New("payment already settled")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// OverpaymentError reports an attempt to pay more than remains outstanding.
type OverpaymentError struct {
	PaymentID int64
	Remaining decimal.Decimal
	Attempted decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment %d: attempted %s exceeds remaining %s",
		e.PaymentID, e.Attempted, e.Remaining)
}

func (e *OverpaymentError) Unwrap() error {
	return ErrInvalidAmount
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrBudgetPlanNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidBudgetMonth) ||
		errors.Is(err, ErrNegativeBudget) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrAlreadySettled)
}
