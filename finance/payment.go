// Package finance implements the payment domain around the scheduling
// engine: persisted payment records, status lifecycle, and the derivation
// of engine obligations (remaining amount, overdue flags) relative to a
// reference date. The engine itself never computes these; they are the
// storage collaborator's job.
package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/biglong-lab/woyu-money-sub010/engine"
)

// =============================================================================
// PAYMENT RECORD - Persisted payment row
// =============================================================================

// PaymentStatus is the persisted lifecycle state of a payment record.
type PaymentStatus string

const (
	StatusPending PaymentStatus = "pending"
	StatusPartial PaymentStatus = "partial"
	StatusPaid    PaymentStatus = "paid"
	StatusOverdue PaymentStatus = "overdue"
)

// PaymentRecord is a payment row as stored. Amounts are decimals; DueDate
// uses day granularity (zero value = no deadline).
type PaymentRecord struct {
	ID          int64
	ItemName    string
	ProjectName string

	CategoryType engine.CategoryType
	PaymentType  engine.PaymentType

	TotalAmount decimal.Decimal
	PaidAmount  decimal.Decimal

	HasLateFee bool
	DueDate    time.Time
	Status     PaymentStatus

	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const dateLayout = "2006-01-02"

// Remaining is the outstanding balance, clamped at zero so an overpayment
// never produces a negative obligation.
func (p PaymentRecord) Remaining() decimal.Decimal {
	remaining := p.TotalAmount.Sub(p.PaidAmount)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// IsSettled reports whether nothing remains to pay.
func (p PaymentRecord) IsSettled() bool {
	return !p.Remaining().IsPositive()
}

// OverdueDays counts whole days past the due date as of the given date.
// Zero when there is no due date, the due date has not passed, or the
// record is settled.
func (p PaymentRecord) OverdueDays(asOf time.Time) int {
	if p.DueDate.IsZero() || p.IsSettled() {
		return 0
	}
	days := daysBetween(p.DueDate, asOf)
	if days <= 0 {
		return 0
	}
	return days
}

// IsOverdueAt reports whether the record is past due with a balance
// remaining as of the given date.
func (p PaymentRecord) IsOverdueAt(asOf time.Time) bool {
	return p.OverdueDays(asOf) > 0
}

// DerivedStatus computes the lifecycle state from amounts and calendar.
// Persisted status is kept in sync with this by the overdue refresher.
func (p PaymentRecord) DerivedStatus(asOf time.Time) PaymentStatus {
	switch {
	case p.IsSettled():
		return StatusPaid
	case p.IsOverdueAt(asOf):
		return StatusOverdue
	case p.PaidAmount.IsPositive():
		return StatusPartial
	default:
		return StatusPending
	}
}

// Obligation derives the engine's input shape from this record as of the
// given date. This is the single place where remaining/overdue fields are
// computed; downstream consumers must not rederive them.
func (p PaymentRecord) Obligation(asOf time.Time) engine.Obligation {
	dueDate := ""
	if !p.DueDate.IsZero() {
		dueDate = p.DueDate.Format(dateLayout)
	}

	return engine.Obligation{
		ID:              p.ID,
		ItemName:        p.ItemName,
		ProjectName:     p.ProjectName,
		TotalAmount:     p.TotalAmount,
		PaidAmount:      p.PaidAmount,
		RemainingAmount: p.Remaining(),
		IsOverdue:       p.IsOverdueAt(asOf),
		OverdueDays:     p.OverdueDays(asOf),
		HasLateFee:      p.HasLateFee,
		CategoryType:    p.CategoryType,
		PaymentType:     p.PaymentType,
		DueDate:         dueDate,
	}
}

// Obligations derives engine input for a batch of records, skipping
// settled ones (a paid item has no claim on the budget).
func Obligations(records []PaymentRecord, asOf time.Time) []engine.Obligation {
	obs := make([]engine.Obligation, 0, len(records))
	for _, p := range records {
		if p.IsSettled() {
			continue
		}
		obs = append(obs, p.Obligation(asOf))
	}
	return obs
}

// daysBetween returns whole calendar days from one date to another,
// ignoring time-of-day.
func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
