package finance_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/biglong-lab/woyu-money-sub010/engine"
	"github.com/biglong-lab/woyu-money-sub010/finance"
)

var asOf = time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

func money(n float64) decimal.Decimal { return decimal.NewFromFloat(n) }

func record(total, paid float64, due time.Time) finance.PaymentRecord {
	return finance.PaymentRecord{
		ID:          1,
		ItemName:    "item",
		TotalAmount: money(total),
		PaidAmount:  money(paid),
		DueDate:     due,
	}
}

// =============================================================================
// DERIVATION: REMAINING
// =============================================================================

func TestRemaining_TotalMinusPaid(t *testing.T) {
	p := record(30000, 10000, time.Time{})
	assert.True(t, p.Remaining().Equal(money(20000)))
}

func TestRemaining_OverpaymentClampsToZero(t *testing.T) {
	p := record(1000, 1500, time.Time{})
	assert.True(t, p.Remaining().IsZero())
	assert.True(t, p.IsSettled())
}

// =============================================================================
// DERIVATION: OVERDUE
// =============================================================================

func TestOverdue_PastDueWithBalance(t *testing.T) {
	p := record(5000, 0, asOf.AddDate(0, 0, -5))

	assert.True(t, p.IsOverdueAt(asOf))
	assert.Equal(t, 5, p.OverdueDays(asOf))
}

func TestOverdue_DueToday_NotYetOverdue(t *testing.T) {
	p := record(5000, 0, asOf)

	assert.False(t, p.IsOverdueAt(asOf))
	assert.Equal(t, 0, p.OverdueDays(asOf))
}

func TestOverdue_SettledRecordNeverOverdue(t *testing.T) {
	p := record(5000, 5000, asOf.AddDate(0, 0, -30))

	assert.False(t, p.IsOverdueAt(asOf))
	assert.Equal(t, 0, p.OverdueDays(asOf))
}

func TestOverdue_NoDueDate(t *testing.T) {
	p := record(5000, 0, time.Time{})
	assert.False(t, p.IsOverdueAt(asOf))
}

// =============================================================================
// DERIVATION: STATUS
// =============================================================================

func TestDerivedStatus(t *testing.T) {
	cases := []struct {
		name string
		p    finance.PaymentRecord
		want finance.PaymentStatus
	}{
		{"unpaid, not due", record(1000, 0, asOf.AddDate(0, 0, 10)), finance.StatusPending},
		{"partially paid", record(1000, 400, asOf.AddDate(0, 0, 10)), finance.StatusPartial},
		{"fully paid", record(1000, 1000, asOf.AddDate(0, 0, -10)), finance.StatusPaid},
		{"past due", record(1000, 400, asOf.AddDate(0, 0, -3)), finance.StatusOverdue},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.p.DerivedStatus(asOf))
		})
	}
}

// =============================================================================
// OBLIGATION CONVERSION
// =============================================================================

func TestObligation_CarriesDerivedFields(t *testing.T) {
	p := record(30000, 10000, asOf.AddDate(0, 0, -3))
	p.ID = 7
	p.ItemName = "六月房租"
	p.ProjectName = "台北辦公室"
	p.CategoryType = engine.CategoryRent
	p.PaymentType = engine.PaymentMonthly
	p.HasLateFee = true

	ob := p.Obligation(asOf)

	assert.Equal(t, int64(7), ob.ID)
	assert.Equal(t, "六月房租", ob.ItemName)
	assert.Equal(t, "台北辦公室", ob.ProjectName)
	assert.True(t, ob.RemainingAmount.Equal(money(20000)))
	assert.True(t, ob.IsOverdue)
	assert.Equal(t, 3, ob.OverdueDays)
	assert.True(t, ob.HasLateFee)
	assert.Equal(t, engine.CategoryRent, ob.CategoryType)
	assert.Equal(t, engine.PaymentMonthly, ob.PaymentType)
	assert.Equal(t, asOf.AddDate(0, 0, -3).Format("2006-01-02"), ob.DueDate)
}

func TestObligation_NoDueDate_EmptyString(t *testing.T) {
	p := record(100, 0, time.Time{})
	assert.Equal(t, "", p.Obligation(asOf).DueDate)
}

func TestObligations_SkipsSettledRecords(t *testing.T) {
	records := []finance.PaymentRecord{
		record(1000, 1000, time.Time{}),
		record(2000, 500, time.Time{}),
	}

	obs := finance.Obligations(records, asOf)

	assert.Len(t, obs, 1)
	assert.True(t, obs[0].RemainingAmount.Equal(money(1500)))
}

// =============================================================================
// BUDGET PLAN
// =============================================================================

func TestBudgetPlan_Validate(t *testing.T) {
	good := finance.BudgetPlan{Month: "2025-06", Amount: money(50000)}
	assert.NoError(t, good.Validate())

	badMonth := finance.BudgetPlan{Month: "June 2025", Amount: money(50000)}
	assert.ErrorIs(t, badMonth.Validate(), finance.ErrInvalidBudgetMonth)

	negative := finance.BudgetPlan{Month: "2025-06", Amount: money(-1)}
	assert.ErrorIs(t, negative.Validate(), finance.ErrNegativeBudget)
}

func TestMonthOf(t *testing.T) {
	assert.Equal(t, "2025-06", finance.MonthOf(asOf))
	assert.True(t, finance.ValidMonth("2025-06"))
	assert.False(t, finance.ValidMonth("2025-6"))
}

func TestLookupCategory(t *testing.T) {
	rent := finance.LookupCategory(engine.CategoryRent)
	assert.True(t, rent.Elevated)
	assert.Equal(t, "租金", rent.Label)

	unknown := finance.LookupCategory(engine.CategoryType("groceries"))
	assert.False(t, unknown.Elevated)
	assert.Equal(t, "groceries", unknown.Label)
}
