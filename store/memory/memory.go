// Package memory provides an in-memory Store implementation for testing
// and development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/biglong-lab/woyu-money-sub010/finance"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	payments map[int64]finance.PaymentRecord
	budgets  map[string]finance.BudgetPlan
	nextID   int64
}

func NewMemory() *Memory {
	return &Memory{
		payments: make(map[int64]finance.PaymentRecord),
		budgets:  make(map[string]finance.BudgetPlan),
		nextID:   1,
	}
}

// -----------------------------------------------------------------------------
// PaymentStore
// -----------------------------------------------------------------------------

func (m *Memory) SavePayment(_ context.Context, p *finance.PaymentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if p.ID == 0 {
		p.ID = m.nextID
		m.nextID++
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	m.payments[p.ID] = *p
	return nil
}

func (m *Memory) GetPayment(_ context.Context, id int64) (*finance.PaymentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.payments[id]
	if !ok {
		return nil, finance.ErrPaymentNotFound
	}
	return &p, nil
}

func (m *Memory) ListPayments(_ context.Context) ([]finance.PaymentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedLocked(func(finance.PaymentRecord) bool { return true }), nil
}

func (m *Memory) ListOutstanding(_ context.Context) ([]finance.PaymentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedLocked(func(p finance.PaymentRecord) bool { return !p.IsSettled() }), nil
}

func (m *Memory) RecordPayment(_ context.Context, id int64, amount decimal.Decimal, asOf time.Time) (*finance.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.payments[id]
	if !ok {
		return nil, finance.ErrPaymentNotFound
	}
	if !amount.IsPositive() {
		return nil, finance.ErrInvalidAmount
	}
	if p.IsSettled() {
		return nil, finance.ErrAlreadySettled
	}
	if amount.GreaterThan(p.Remaining()) {
		return nil, &finance.OverpaymentError{
			PaymentID: id,
			Remaining: p.Remaining(),
			Attempted: amount,
		}
	}

	p.PaidAmount = p.PaidAmount.Add(amount)
	p.Status = p.DerivedStatus(asOf)
	p.UpdatedAt = time.Now().UTC()
	m.payments[id] = p
	return &p, nil
}

func (m *Memory) RefreshStatuses(_ context.Context, asOf time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	changed := 0
	for id, p := range m.payments {
		derived := p.DerivedStatus(asOf)
		if p.Status != derived {
			p.Status = derived
			p.UpdatedAt = time.Now().UTC()
			m.payments[id] = p
			changed++
		}
	}
	return changed, nil
}

// sortedLocked returns matching records ordered by due date then ID,
// records without a due date last.
func (m *Memory) sortedLocked(match func(finance.PaymentRecord) bool) []finance.PaymentRecord {
	records := make([]finance.PaymentRecord, 0, len(m.payments))
	for _, p := range m.payments {
		if match(p) {
			records = append(records, p)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		switch {
		case a.DueDate.IsZero() != b.DueDate.IsZero():
			return !a.DueDate.IsZero()
		case !a.DueDate.Equal(b.DueDate):
			return a.DueDate.Before(b.DueDate)
		default:
			return a.ID < b.ID
		}
	})
	return records
}

// -----------------------------------------------------------------------------
// BudgetStore
// -----------------------------------------------------------------------------

func (m *Memory) SaveBudgetPlan(_ context.Context, plan finance.BudgetPlan) error {
	if err := plan.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	plan.UpdatedAt = time.Now().UTC()
	m.budgets[plan.Month] = plan
	return nil
}

func (m *Memory) GetBudgetPlan(_ context.Context, month string) (*finance.BudgetPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plan, ok := m.budgets[month]
	if !ok {
		return nil, finance.ErrBudgetPlanNotFound
	}
	return &plan, nil
}
