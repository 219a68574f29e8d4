package finance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// BUDGET PLAN - Monthly spending ceiling
// =============================================================================

// BudgetPlan is the planned spending ceiling for one calendar month. The
// scheduler treats Amount as an opaque number; currency formatting is the
// presentation layer's problem.
type BudgetPlan struct {
	Month     string // YYYY-MM
	Amount    decimal.Decimal
	Note      string
	UpdatedAt time.Time
}

const monthLayout = "2006-01"

// ValidMonth reports whether s is a well-formed YYYY-MM month key.
func ValidMonth(s string) bool {
	_, err := time.Parse(monthLayout, s)
	return err == nil
}

// MonthOf returns the month key for a date.
func MonthOf(t time.Time) string {
	return t.Format(monthLayout)
}

// Validate checks the plan is structurally sound before persisting.
func (b BudgetPlan) Validate() error {
	if !ValidMonth(b.Month) {
		return fmt.Errorf("invalid month %q (use YYYY-MM): %w", b.Month, ErrInvalidBudgetMonth)
	}
	if b.Amount.IsNegative() {
		return fmt.Errorf("budget amount %s is negative: %w", b.Amount, ErrNegativeBudget)
	}
	return nil
}
