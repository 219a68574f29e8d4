/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements store.PaymentStore and store.BudgetStore using SQLite. In
  production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  payments:     Payment records with amounts, due dates, and status
  budget_plans: One planned spending ceiling per calendar month

DERIVED FIELDS:
  Remaining amount, overdue flag, and overdue days are NOT stored; they
  are derived from amounts and the calendar by finance.PaymentRecord at
  read time. Only the coarse status column is persisted (for cheap list
  filtering) and kept in sync by RefreshStatuses.

AMOUNT STORAGE:
  Decimal amounts are stored as TEXT and parsed with shopspring/decimal
  to avoid floating-point drift.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency.

USAGE:
  st, err := sqlite.New("./data/woyu.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

SEE ALSO:
  - store/store.go: Interface definitions
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/biglong-lab/woyu-money-sub010/engine"
	"github.com/biglong-lab/woyu-money-sub010/finance"
)

// Store implements the storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Payment records
	CREATE TABLE IF NOT EXISTS payments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_name TEXT NOT NULL,
		project_name TEXT NOT NULL DEFAULT '',
		category_type TEXT NOT NULL DEFAULT '',
		payment_type TEXT NOT NULL DEFAULT '',
		total_amount TEXT NOT NULL,
		paid_amount TEXT NOT NULL DEFAULT '0',
		has_late_fee BOOLEAN NOT NULL DEFAULT FALSE,
		due_date TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		note TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- For list views ordered by deadline (hot path)
	CREATE INDEX IF NOT EXISTS idx_payments_due_date
		ON payments(due_date) WHERE due_date IS NOT NULL;

	-- For status filtering (outstanding list, overdue sweep)
	CREATE INDEX IF NOT EXISTS idx_payments_status
		ON payments(status);

	CREATE INDEX IF NOT EXISTS idx_payments_category
		ON payments(category_type);

	-- Budget plans (one per month)
	CREATE TABLE IF NOT EXISTS budget_plans (
		month TEXT PRIMARY KEY,
		amount TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PAYMENT STORE (store.PaymentStore interface)
// =============================================================================

const paymentColumns = `id, item_name, project_name, category_type, payment_type,
	total_amount, paid_amount, has_late_fee, due_date, status, note,
	created_at, updated_at`

// SavePayment inserts or updates a payment record.
func (s *Store) SavePayment(ctx context.Context, p *finance.PaymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if p.ID == 0 {
		p.CreatedAt = now
		p.UpdatedAt = now

		res, err := s.db.ExecContext(ctx, `
			INSERT INTO payments
			(item_name, project_name, category_type, payment_type, total_amount,
			 paid_amount, has_late_fee, due_date, status, note, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ItemName, p.ProjectName, string(p.CategoryType), string(p.PaymentType),
			p.TotalAmount.String(), p.PaidAmount.String(), p.HasLateFee,
			nullDate(p.DueDate), string(p.Status), p.Note,
			now.Format(time.RFC3339), now.Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read inserted id: %w", err)
		}
		p.ID = id
		return nil
	}

	p.UpdatedAt = now
	res, err := s.db.ExecContext(ctx, `
		UPDATE payments SET
			item_name = ?, project_name = ?, category_type = ?, payment_type = ?,
			total_amount = ?, paid_amount = ?, has_late_fee = ?, due_date = ?,
			status = ?, note = ?, updated_at = ?
		WHERE id = ?`,
		p.ItemName, p.ProjectName, string(p.CategoryType), string(p.PaymentType),
		p.TotalAmount.String(), p.PaidAmount.String(), p.HasLateFee,
		nullDate(p.DueDate), string(p.Status), p.Note,
		now.Format(time.RFC3339), p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return finance.ErrPaymentNotFound
	}
	return nil
}

// GetPayment returns a single payment record.
func (s *Store) GetPayment(ctx context.Context, id int64) (*finance.PaymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id)
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, finance.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment %d: %w", id, err)
	}
	return p, nil
}

// ListPayments returns all payment records ordered by due date then ID.
func (s *Store) ListPayments(ctx context.Context) ([]finance.PaymentRecord, error) {
	return s.listPayments(ctx, ``)
}

// ListOutstanding returns records that still have a remaining balance.
func (s *Store) ListOutstanding(ctx context.Context) ([]finance.PaymentRecord, error) {
	// Status is a cached filter; settled-but-stale rows are dropped again
	// after scanning so a missed refresh can't leak paid items.
	records, err := s.listPayments(ctx, `WHERE status != 'paid'`)
	if err != nil {
		return nil, err
	}
	outstanding := records[:0]
	for _, p := range records {
		if !p.IsSettled() {
			outstanding = append(outstanding, p)
		}
	}
	return outstanding, nil
}

func (s *Store) listPayments(ctx context.Context, where string) ([]finance.PaymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + paymentColumns + ` FROM payments ` + where + `
		ORDER BY due_date IS NULL, due_date, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var records []finance.PaymentRecord
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		records = append(records, *p)
	}
	return records, rows.Err()
}

// RecordPayment applies an additional paid amount to a record.
func (s *Store) RecordPayment(ctx context.Context, id int64, amount decimal.Decimal, asOf time.Time) (*finance.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id)
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, finance.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payment %d: %w", id, err)
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

	_, err = s.db.ExecContext(ctx, `
		UPDATE payments SET paid_amount = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		p.PaidAmount.String(), string(p.Status),
		p.UpdatedAt.Format(time.RFC3339), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment %d: %w", id, err)
	}
	return p, nil
}

// RefreshStatuses syncs every unsettled record's status column with its
// derived status. Run by the background refresher.
func (s *Store) RefreshStatuses(ctx context.Context, asOf time.Time) (int, error) {
	records, err := s.listPayments(ctx, `WHERE status != 'paid'`)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, p := range records {
		derived := p.DerivedStatus(asOf)
		if p.Status == derived {
			continue
		}
		_, err := s.db.ExecContext(ctx,
			`UPDATE payments SET status = ?, updated_at = ? WHERE id = ?`,
			string(derived), time.Now().UTC().Format(time.RFC3339), p.ID)
		if err != nil {
			return changed, fmt.Errorf("failed to refresh status of payment %d: %w", p.ID, err)
		}
		changed++
	}
	return changed, nil
}

// =============================================================================
// BUDGET STORE (store.BudgetStore interface)
// =============================================================================

// SaveBudgetPlan upserts the budget plan for a month.
func (s *Store) SaveBudgetPlan(ctx context.Context, plan finance.BudgetPlan) error {
	if err := plan.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budget_plans (month, amount, note, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(month) DO UPDATE SET
			amount = excluded.amount,
			note = excluded.note,
			updated_at = excluded.updated_at`,
		plan.Month, plan.Amount.String(), plan.Note,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save budget plan %s: %w", plan.Month, err)
	}
	return nil
}

// GetBudgetPlan returns the budget plan for a month.
func (s *Store) GetBudgetPlan(ctx context.Context, month string) (*finance.BudgetPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		plan      finance.BudgetPlan
		amount    string
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT month, amount, note, updated_at FROM budget_plans WHERE month = ?`,
		month,
	).Scan(&plan.Month, &amount, &plan.Note, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, finance.ErrBudgetPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget plan %s: %w", month, err)
	}

	plan.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount for budget plan %s: %w", month, err)
	}
	plan.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &plan, nil
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*finance.PaymentRecord, error) {
	var (
		p           finance.PaymentRecord
		category    string
		paymentType string
		total       string
		paid        string
		dueDate     sql.NullString
		status      string
		createdAt   string
		updatedAt   string
	)

	err := row.Scan(
		&p.ID, &p.ItemName, &p.ProjectName, &category, &paymentType,
		&total, &paid, &p.HasLateFee, &dueDate, &status, &p.Note,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.CategoryType = engine.ParseCategoryType(category)
	p.PaymentType = engine.ParsePaymentType(paymentType)
	p.Status = finance.PaymentStatus(status)

	if p.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("corrupt total_amount %q: %w", total, err)
	}
	if p.PaidAmount, err = decimal.NewFromString(paid); err != nil {
		return nil, fmt.Errorf("corrupt paid_amount %q: %w", paid, err)
	}

	if dueDate.Valid && dueDate.String != "" {
		p.DueDate, err = time.Parse("2006-01-02", dueDate.String)
		if err != nil {
			return nil, fmt.Errorf("corrupt due_date %q: %w", dueDate.String, err)
		}
	}

	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &p, nil
}

func nullDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format("2006-01-02")
}
