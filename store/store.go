/*
Package store defines the persistence interfaces between the finance
domain and the database.

KEY INTERFACES:
  PaymentStore: Payment record CRUD plus the outstanding-list query the
                scheduler is fed from
  BudgetStore:  Monthly budget plan read/write

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite
  - store/memory: In-memory for testing

The schedule cache seam lives in store/cache (Redis-backed in production,
in-memory in tests).
*/
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/biglong-lab/woyu-money-sub010/finance"
)

// =============================================================================
// PAYMENT STORE
// =============================================================================

// PaymentStore handles persistence of payment records.
type PaymentStore interface {
	// SavePayment inserts a record (ID zero) or updates an existing one.
	// On insert the assigned ID is written back to the record.
	SavePayment(ctx context.Context, p *finance.PaymentRecord) error

	// GetPayment returns one record, or finance.ErrPaymentNotFound.
	GetPayment(ctx context.Context, id int64) (*finance.PaymentRecord, error)

	// ListPayments returns all records ordered by due date then ID.
	ListPayments(ctx context.Context) ([]finance.PaymentRecord, error)

	// ListOutstanding returns records with a positive remaining balance,
	// ordered by due date then ID. This feeds the scheduling engine.
	ListOutstanding(ctx context.Context) ([]finance.PaymentRecord, error)

	// RecordPayment applies an additional paid amount to a record and
	// refreshes its status as of the given date. Fails with
	// finance.ErrAlreadySettled or *finance.OverpaymentError.
	RecordPayment(ctx context.Context, id int64, amount decimal.Decimal, asOf time.Time) (*finance.PaymentRecord, error)

	// RefreshStatuses rewrites the persisted status of every unsettled
	// record from its derived status as of the given date. Returns the
	// number of records whose status changed.
	RefreshStatuses(ctx context.Context, asOf time.Time) (int, error)
}

// =============================================================================
// BUDGET STORE
// =============================================================================

// BudgetStore handles persistence of monthly budget plans.
type BudgetStore interface {
	// SaveBudgetPlan upserts the plan for its month.
	SaveBudgetPlan(ctx context.Context, plan finance.BudgetPlan) error

	// GetBudgetPlan returns the plan for a month, or
	// finance.ErrBudgetPlanNotFound.
	GetBudgetPlan(ctx context.Context, month string) (*finance.BudgetPlan, error)
}

// Store combines all persistence capabilities.
type Store interface {
	PaymentStore
	BudgetStore
}
