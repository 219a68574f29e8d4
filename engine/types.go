/*
Package engine provides the payment scheduling and prioritization core.

PURPOSE:
  This package contains the one place in the system where a decision is
  made rather than data being moved between a form and a table: scoring
  the urgency of outstanding payment obligations and allocating a monthly
  budget across them.

KEY CONCEPTS IN THIS FILE (types.go):
  - Obligation: One outstanding payment item with a remaining balance
  - ScoredObligation: Obligation plus priority score, tier, and reason text
  - ScheduleResult: Budget allocation outcome (scheduled vs deferred)
  - PriorityLevel: Coarse urgency tier derived from the numeric score

DESIGN PRINCIPLES:
  1. Purity: Every operation is a pure function of its arguments. The
     engine holds no state between calls and never queries the clock;
     callers pass the reference date explicitly.
  2. Precision: Uses decimal.Decimal for all monetary amounts to avoid
     floating-point errors.
  3. Closed enumerations: Category and payment-type tags are enumerated
     constants. Unrecognized tags contribute nothing rather than silently
     matching.
  4. Single source of truth: Score, tier, and reason text are produced
     here and consumed verbatim by the presentation layer.

USAGE:
  scored := engine.Score(ob, asOf)
  result := engine.Schedule(obligations, budget, asOf)
  urgent := engine.SelectOverdueForReschedule(obligations, asOf)

SEE ALSO:
  - score.go: Additive urgency scoring rules
  - schedule.go: Greedy budget allocation
  - overdue.go: Budget-agnostic overdue ranking
*/
package engine

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TAGS - Closed enumerations for category and payment structure
// =============================================================================

// CategoryType classifies what an obligation pays for. Only RentCategory and
// InsuranceCategory carry elevated priority; the remaining values exist so
// the storage layer can round-trip tags without the engine treating them as
// meaningful.
type CategoryType string

const (
	CategoryRent      CategoryType = "rent"
	CategoryInsurance CategoryType = "insurance" // labor/health insurance
	CategoryUtility   CategoryType = "utility"
	CategoryLoan      CategoryType = "loan"
	CategoryPayroll   CategoryType = "payroll"
	CategoryOther     CategoryType = "other"
	CategoryNone      CategoryType = ""
)

// PaymentType classifies the payment structure of an obligation.
type PaymentType string

const (
	PaymentInstallment PaymentType = "installment"
	PaymentMonthly     PaymentType = "monthly"
	PaymentOneTime     PaymentType = "one_time"
	PaymentNone        PaymentType = ""
)

// ParseCategoryType normalizes a raw tag. Unrecognized tags are kept as-is
// so they round-trip through storage; the scorer only matches the
// enumerated constants, so an unknown tag contributes nothing.
func ParseCategoryType(s string) CategoryType {
	return CategoryType(strings.ToLower(strings.TrimSpace(s)))
}

// ParsePaymentType normalizes a raw payment-type tag, same contract as
// ParseCategoryType.
func ParsePaymentType(s string) PaymentType {
	return PaymentType(strings.ToLower(strings.TrimSpace(s)))
}

// =============================================================================
// PRIORITY LEVEL - Coarse urgency tier
// =============================================================================

type PriorityLevel string

const (
	LevelCritical PriorityLevel = "critical"
	LevelHigh     PriorityLevel = "high"
	LevelMedium   PriorityLevel = "medium"
	LevelLow      PriorityLevel = "low"
)

// Tier thresholds on the summed priority score.
const (
	criticalThreshold = 100
	highThreshold     = 50
	mediumThreshold   = 15
)

// LevelFor buckets a numeric priority score into its tier.
func LevelFor(priority int) PriorityLevel {
	switch {
	case priority >= criticalThreshold:
		return LevelCritical
	case priority >= highThreshold:
		return LevelHigh
	case priority >= mediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

// IsUrgent reports whether a tier belongs in the "pay attention now" set.
func (l PriorityLevel) IsUrgent() bool {
	return l == LevelCritical || l == LevelHigh
}

// =============================================================================
// OBLIGATION - One outstanding payment item
// =============================================================================

// Obligation is the engine's view of a payment item. The storage layer
// supplies RemainingAmount, IsOverdue, and OverdueDays already derived
// relative to "now" in the application's timezone; the engine trusts them
// as given and never recomputes them.
type Obligation struct {
	ID          int64
	ItemName    string
	ProjectName string

	TotalAmount     decimal.Decimal
	PaidAmount      decimal.Decimal
	RemainingAmount decimal.Decimal

	IsOverdue   bool
	OverdueDays int
	HasLateFee  bool

	CategoryType CategoryType
	PaymentType  PaymentType

	// DueDate is the raw ISO YYYY-MM-DD string as stored. Empty or
	// malformed values simply contribute no deadline pressure.
	DueDate string
}

// =============================================================================
// SCORED OBLIGATION - Obligation plus scoring output
// =============================================================================

// ScoredObligation is an Obligation with the scorer's verdict attached.
// The embedded obligation is carried through untouched.
type ScoredObligation struct {
	Obligation

	Priority int
	Level    PriorityLevel

	// Reason explains the contributing rules in fixed vocabulary; the
	// presentation layer renders this verbatim.
	Reason string
}

// =============================================================================
// SCHEDULE RESULT - Budget allocation outcome
// =============================================================================

// ScheduleResult is the outcome of allocating a budget across obligations.
type ScheduleResult struct {
	// TotalNeeded is the sum of RemainingAmount over every input
	// obligation, scheduled or not.
	TotalNeeded decimal.Decimal

	// IsOverBudget is true when TotalNeeded exceeds the supplied budget.
	IsOverBudget bool

	// ScheduledItems fit within the budget, in descending priority order.
	ScheduledItems []ScoredObligation

	// DeferredItems did not fit, in descending priority order.
	DeferredItems []ScoredObligation

	// ScheduledTotal is the sum of RemainingAmount over ScheduledItems.
	// Always <= budget.
	ScheduledTotal decimal.Decimal

	// RemainingBudget is budget - ScheduledTotal, clamped at zero.
	RemainingBudget decimal.Decimal

	// CriticalItems are all input obligations whose tier is critical or
	// high, whether scheduled or deferred, in descending priority order.
	CriticalItems []ScoredObligation
}

// sumRemaining totals RemainingAmount over a slice of obligations.
func sumRemaining(obs []Obligation) decimal.Decimal {
	total := decimal.Zero
	for _, ob := range obs {
		total = total.Add(ob.RemainingAmount)
	}
	return total
}
