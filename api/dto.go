/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

AMOUNTS:
  Request amounts arrive as JSON numbers and are converted to decimals
  with NewFromFloat (the "safe parse" boundary; NaN cannot be expressed
  in JSON). Response amounts are rendered as float64.

PRIORITY FIELDS:
  priority, priority_level, and reason come straight from the engine and
  are displayed verbatim; clients must not recompute them.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/biglong-lab/woyu-money-sub010/engine"
	"github.com/biglong-lab/woyu-money-sub010/finance"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// PaymentDTO represents a payment record in API responses, including the
// fields derived relative to "now".
type PaymentDTO struct {
	ID            int64   `json:"id"`
	ItemName      string  `json:"item_name"`
	ProjectName   string  `json:"project_name,omitempty"`
	CategoryType  string  `json:"category_type,omitempty"`
	CategoryLabel string  `json:"category_label,omitempty"`
	PaymentType   string  `json:"payment_type,omitempty"`
	TotalAmount   float64 `json:"total_amount"`
	PaidAmount    float64 `json:"paid_amount"`
	Remaining     float64 `json:"remaining_amount"`
	HasLateFee    bool    `json:"has_late_fee"`
	DueDate       string  `json:"due_date,omitempty"`
	IsOverdue     bool    `json:"is_overdue"`
	OverdueDays   int     `json:"overdue_days"`
	Status        string  `json:"status"`
	Note          string  `json:"note,omitempty"`
	CreatedAt     string  `json:"created_at,omitempty"`
}

// CreatePaymentRequest is the request to create a payment record.
type CreatePaymentRequest struct {
	ItemName     string  `json:"item_name"`
	ProjectName  string  `json:"project_name"`
	CategoryType string  `json:"category_type"`
	PaymentType  string  `json:"payment_type"`
	TotalAmount  float64 `json:"total_amount"`
	PaidAmount   float64 `json:"paid_amount"`
	HasLateFee   bool    `json:"has_late_fee"`
	DueDate      string  `json:"due_date"` // YYYY-MM-DD, empty = none
	Note         string  `json:"note"`
}

// RecordPaymentRequest is the request to pay an amount against a record.
type RecordPaymentRequest struct {
	Amount float64 `json:"amount"`
}

// ScoredPaymentDTO is a payment with the engine's priority verdict.
type ScoredPaymentDTO struct {
	PaymentDTO

	Priority      int    `json:"priority"`
	PriorityLevel string `json:"priority_level"`
	Reason        string `json:"reason"`
}

// ScheduleRequest is the request to run the smart scheduler. Budget is
// optional; when omitted the month's budget plan is used.
type ScheduleRequest struct {
	Budget *float64 `json:"budget,omitempty"`
	Month  string   `json:"month,omitempty"` // YYYY-MM, default: current month
}

// ScheduleResultDTO is the scheduler's allocation outcome.
type ScheduleResultDTO struct {
	Month           string             `json:"month"`
	Budget          float64            `json:"budget"`
	TotalNeeded     float64            `json:"total_needed"`
	IsOverBudget    bool               `json:"is_over_budget"`
	ScheduledItems  []ScoredPaymentDTO `json:"scheduled_items"`
	DeferredItems   []ScoredPaymentDTO `json:"deferred_items"`
	ScheduledTotal  float64            `json:"scheduled_total"`
	RemainingBudget float64            `json:"remaining_budget"`
	CriticalItems   []ScoredPaymentDTO `json:"critical_items"`
}

// BudgetPlanDTO represents a monthly budget plan.
type BudgetPlanDTO struct {
	Month     string  `json:"month"`
	Amount    float64 `json:"amount"`
	Note      string  `json:"note,omitempty"`
	UpdatedAt string  `json:"updated_at,omitempty"`
}

// SaveBudgetPlanRequest is the request to set a month's budget.
type SaveBudgetPlanRequest struct {
	Amount float64 `json:"amount"`
	Note   string  `json:"note"`
}

// CategoryDTO represents a category tag for UI pickers.
type CategoryDTO struct {
	Tag      string `json:"tag"`
	Label    string `json:"label"`
	Elevated bool   `json:"elevated"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func (h *Handler) toPaymentDTO(p finance.PaymentRecord, asOf time.Time) PaymentDTO {
	ob := p.Obligation(asOf)

	dto := PaymentDTO{
		ID:           p.ID,
		ItemName:     p.ItemName,
		ProjectName:  p.ProjectName,
		CategoryType: string(p.CategoryType),
		PaymentType:  string(p.PaymentType),
		TotalAmount:  toFloat(p.TotalAmount),
		PaidAmount:   toFloat(p.PaidAmount),
		Remaining:    toFloat(p.Remaining()),
		HasLateFee:   p.HasLateFee,
		DueDate:      ob.DueDate,
		IsOverdue:    ob.IsOverdue,
		OverdueDays:  ob.OverdueDays,
		Status:       string(p.DerivedStatus(asOf)),
		Note:         p.Note,
	}
	if p.CategoryType != engine.CategoryNone {
		dto.CategoryLabel = h.Categories.Get(p.CategoryType).Label
	}
	if !p.CreatedAt.IsZero() {
		dto.CreatedAt = p.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

// toScoredDTO renders a scored obligation using the original record for
// fields the engine does not carry (note, timestamps).
func (h *Handler) toScoredDTO(item engine.ScoredObligation, records map[int64]finance.PaymentRecord, asOf time.Time) ScoredPaymentDTO {
	dto := ScoredPaymentDTO{
		Priority:      item.Priority,
		PriorityLevel: string(item.Level),
		Reason:        item.Reason,
	}
	if p, ok := records[item.ID]; ok {
		dto.PaymentDTO = h.toPaymentDTO(p, asOf)
	}
	return dto
}

func (h *Handler) toScoredDTOs(items []engine.ScoredObligation, records map[int64]finance.PaymentRecord, asOf time.Time) []ScoredPaymentDTO {
	dtos := make([]ScoredPaymentDTO, len(items))
	for i, item := range items {
		dtos[i] = h.toScoredDTO(item, records, asOf)
	}
	return dtos
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
