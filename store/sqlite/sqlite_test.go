package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biglong-lab/woyu-money-sub010/engine"
	"github.com/biglong-lab/woyu-money-sub010/finance"
	"github.com/biglong-lab/woyu-money-sub010/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var asOf = time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *sqlite.Store {
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func money(n float64) decimal.Decimal { return decimal.NewFromFloat(n) }

func rentPayment(due time.Time) *finance.PaymentRecord {
	return &finance.PaymentRecord{
		ItemName:     "六月房租",
		ProjectName:  "台北辦公室",
		CategoryType: engine.CategoryRent,
		PaymentType:  engine.PaymentMonthly,
		TotalAmount:  money(30000),
		PaidAmount:   decimal.Zero,
		HasLateFee:   true,
		DueDate:      due,
		Status:       finance.StatusPending,
	}
}

// =============================================================================
// PAYMENT CRUD
// =============================================================================

func TestSavePayment_InsertAssignsID_AndRoundTrips(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	p := rentPayment(asOf.AddDate(0, 0, 5))
	require.NoError(t, st.SavePayment(ctx, p))
	require.NotZero(t, p.ID)

	got, err := st.GetPayment(ctx, p.ID)
	require.NoError(t, err)

	assert.Equal(t, "六月房租", got.ItemName)
	assert.Equal(t, "台北辦公室", got.ProjectName)
	assert.Equal(t, engine.CategoryRent, got.CategoryType)
	assert.Equal(t, engine.PaymentMonthly, got.PaymentType)
	assert.True(t, got.TotalAmount.Equal(money(30000)))
	assert.True(t, got.HasLateFee)
	assert.Equal(t, asOf.AddDate(0, 0, 5).Format("2006-01-02"), got.DueDate.Format("2006-01-02"))
}

func TestSavePayment_UpdateExisting(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	p := rentPayment(asOf.AddDate(0, 0, 5))
	require.NoError(t, st.SavePayment(ctx, p))

	p.ItemName = "七月房租"
	p.TotalAmount = money(31000)
	require.NoError(t, st.SavePayment(ctx, p))

	got, err := st.GetPayment(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "七月房租", got.ItemName)
	assert.True(t, got.TotalAmount.Equal(money(31000)))
}

func TestSavePayment_UpdateMissing_NotFound(t *testing.T) {
	st := newTestStore(t)

	p := rentPayment(time.Time{})
	p.ID = 999

	err := st.SavePayment(context.Background(), p)
	assert.ErrorIs(t, err, finance.ErrPaymentNotFound)
}

func TestGetPayment_Missing_NotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetPayment(context.Background(), 42)
	assert.ErrorIs(t, err, finance.ErrPaymentNotFound)
	assert.True(t, finance.IsNotFound(err))
}

func TestListPayments_OrderedByDueDate_NoDueDateLast(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	later := rentPayment(asOf.AddDate(0, 0, 10))
	later.ItemName = "later"
	require.NoError(t, st.SavePayment(ctx, later))

	undated := rentPayment(time.Time{})
	undated.ItemName = "undated"
	require.NoError(t, st.SavePayment(ctx, undated))

	sooner := rentPayment(asOf.AddDate(0, 0, 1))
	sooner.ItemName = "sooner"
	require.NoError(t, st.SavePayment(ctx, sooner))

	records, err := st.ListPayments(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "sooner", records[0].ItemName)
	assert.Equal(t, "later", records[1].ItemName)
	assert.Equal(t, "undated", records[2].ItemName)
	assert.True(t, records[2].DueDate.IsZero())
}

// =============================================================================
// OUTSTANDING LIST
// =============================================================================

func TestListOutstanding_ExcludesSettled(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	open := rentPayment(asOf.AddDate(0, 0, 3))
	require.NoError(t, st.SavePayment(ctx, open))

	settled := rentPayment(asOf.AddDate(0, 0, 3))
	settled.PaidAmount = settled.TotalAmount
	settled.Status = finance.StatusPaid
	require.NoError(t, st.SavePayment(ctx, settled))

	outstanding, err := st.ListOutstanding(ctx)
	require.NoError(t, err)
	require.Len(t, outstanding, 1)
	assert.Equal(t, open.ID, outstanding[0].ID)
}

func TestListOutstanding_DropsStaleSettledRows(t *testing.T) {
	// A row fully paid but whose status column was never refreshed must
	// still be excluded from the outstanding list.
	st := newTestStore(t)
	ctx := context.Background()

	stale := rentPayment(asOf.AddDate(0, 0, 3))
	stale.PaidAmount = stale.TotalAmount
	stale.Status = finance.StatusPending
	require.NoError(t, st.SavePayment(ctx, stale))

	outstanding, err := st.ListOutstanding(ctx)
	require.NoError(t, err)
	assert.Empty(t, outstanding)
}

// =============================================================================
// RECORD PAYMENT
// =============================================================================

func TestRecordPayment_PartialThenSettled(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	p := rentPayment(asOf.AddDate(0, 0, 5))
	require.NoError(t, st.SavePayment(ctx, p))

	got, err := st.RecordPayment(ctx, p.ID, money(10000), asOf)
	require.NoError(t, err)
	assert.Equal(t, finance.StatusPartial, got.Status)
	assert.True(t, got.Remaining().Equal(money(20000)))

	got, err = st.RecordPayment(ctx, p.ID, money(20000), asOf)
	require.NoError(t, err)
	assert.Equal(t, finance.StatusPaid, got.Status)
	assert.True(t, got.IsSettled())
}

func TestRecordPayment_Overpayment_Rejected(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	p := rentPayment(asOf.AddDate(0, 0, 5))
	require.NoError(t, st.SavePayment(ctx, p))

	_, err := st.RecordPayment(ctx, p.ID, money(99999), asOf)

	var overpay *finance.OverpaymentError
	require.ErrorAs(t, err, &overpay)
	assert.True(t, overpay.Remaining.Equal(money(30000)))
	assert.True(t, finance.IsClientError(err))
}

func TestRecordPayment_AgainstSettled_Rejected(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	p := rentPayment(asOf.AddDate(0, 0, 5))
	require.NoError(t, st.SavePayment(ctx, p))

	_, err := st.RecordPayment(ctx, p.ID, money(30000), asOf)
	require.NoError(t, err)

	_, err = st.RecordPayment(ctx, p.ID, money(1), asOf)
	assert.ErrorIs(t, err, finance.ErrAlreadySettled)
}

func TestRecordPayment_NonPositiveAmount_Rejected(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	p := rentPayment(asOf.AddDate(0, 0, 5))
	require.NoError(t, st.SavePayment(ctx, p))

	_, err := st.RecordPayment(ctx, p.ID, decimal.Zero, asOf)
	assert.ErrorIs(t, err, finance.ErrInvalidAmount)
}

// =============================================================================
// STATUS REFRESH
// =============================================================================

func TestRefreshStatuses_MarksOverdue(t *testing.T) {
	// GIVEN: A pending payment whose due date has passed
	// WHEN: The refresher sweeps
	// THEN: The persisted status flips to overdue, once

	st := newTestStore(t)
	ctx := context.Background()

	p := rentPayment(asOf.AddDate(0, 0, -2))
	require.NoError(t, st.SavePayment(ctx, p))

	changed, err := st.RefreshStatuses(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	got, err := st.GetPayment(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.StatusOverdue, got.Status)

	// Second sweep is a no-op.
	changed, err = st.RefreshStatuses(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 0, changed)
}

// =============================================================================
// BUDGET PLANS
// =============================================================================

func TestBudgetPlan_UpsertAndGet(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	plan := finance.BudgetPlan{Month: "2025-06", Amount: money(50000), Note: "六月預算"}
	require.NoError(t, st.SaveBudgetPlan(ctx, plan))

	got, err := st.GetBudgetPlan(ctx, "2025-06")
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(money(50000)))
	assert.Equal(t, "六月預算", got.Note)

	// Upsert replaces.
	plan.Amount = money(60000)
	require.NoError(t, st.SaveBudgetPlan(ctx, plan))

	got, err = st.GetBudgetPlan(ctx, "2025-06")
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(money(60000)))
}

func TestBudgetPlan_MissingMonth_NotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetBudgetPlan(context.Background(), "2025-01")
	assert.ErrorIs(t, err, finance.ErrBudgetPlanNotFound)
}

func TestBudgetPlan_InvalidRejected(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	err := st.SaveBudgetPlan(ctx, finance.BudgetPlan{Month: "bad", Amount: money(1)})
	assert.ErrorIs(t, err, finance.ErrInvalidBudgetMonth)

	err = st.SaveBudgetPlan(ctx, finance.BudgetPlan{Month: "2025-06", Amount: money(-5)})
	assert.ErrorIs(t, err, finance.ErrNegativeBudget)
}
