/*
handlers.go - HTTP API handlers for the payment scheduling system

PURPOSE:
  Exposes the payment records, budget plans, and the scheduling engine
  via REST API. Handles HTTP request/response, JSON serialization, and
  delegates decisions to the engine package.

ENDPOINTS:
  Payments:
    GET    /api/payments              List all payments
    POST   /api/payments              Create payment
    GET    /api/payments/{id}         Get payment details
    POST   /api/payments/{id}/pay     Record a payment against a record
    GET    /api/payments/overdue      Overdue items ranked for reschedule

  Scheduling:
    POST   /api/schedule              Run the smart scheduler

  Budget:
    GET    /api/budget/{month}        Get a month's budget plan
    PUT    /api/budget/{month}        Set a month's budget plan

  Categories:
    GET    /api/categories            Category tags for pickers

REQUEST FLOW:
  1. Parse HTTP request
  2. Load records from the store and derive obligations as of "now"
  3. Call the engine (score / schedule / overdue selection)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Record not found
  - 409: Conflict (paying a settled record)
  - 500: Internal errors

CACHING:
  Schedule responses are memoized in the cache seam keyed by month,
  budget, and a generation counter bumped on every payment mutation, so
  a stale allocation is never served after a write.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - refresher.go: Background overdue-status sweep
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/biglong-lab/woyu-money-sub010/engine"
	"github.com/biglong-lab/woyu-money-sub010/finance"
	"github.com/biglong-lab/woyu-money-sub010/store"
	"github.com/biglong-lab/woyu-money-sub010/store/cache"
)

// scheduleCacheTTL bounds staleness even if an invalidation is missed.
const scheduleCacheTTL = 5 * time.Minute

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      store.Store
	Cache      cache.Cache
	Categories *finance.CategoryCache

	// Now supplies the reference date for all derivations and scoring.
	// Overridable in tests.
	Now func() time.Time

	// generation is bumped on every payment mutation to invalidate
	// cached schedule responses.
	generation atomic.Int64
}

// NewHandler creates a new handler with the given store and cache.
func NewHandler(st store.Store, c cache.Cache) *Handler {
	return &Handler{
		Store:      st,
		Cache:      c,
		Categories: finance.NewCategoryCache(),
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

// InvalidateSchedules discards cached schedule responses. Called after
// every payment mutation and by the status refresher.
func (h *Handler) InvalidateSchedules() {
	h.generation.Add(1)
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// ListPayments returns all payment records.
// GET /api/payments
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListPayments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payments", err)
		return
	}

	asOf := h.Now()
	dtos := make([]PaymentDTO, len(records))
	for i, p := range records {
		dtos[i] = h.toPaymentDTO(p, asOf)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPayment returns a single payment record.
// GET /api/payments/{id}
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payment id", err)
		return
	}

	p, err := h.Store.GetPayment(r.Context(), id)
	if err != nil {
		writeStoreError(w, "Failed to get payment", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toPaymentDTO(*p, h.Now()))
}

// CreatePayment creates a new payment record.
// POST /api/payments
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if req.ItemName == "" {
		writeError(w, http.StatusBadRequest, "item_name is required", nil)
		return
	}
	if req.TotalAmount <= 0 {
		writeError(w, http.StatusBadRequest, "total_amount must be positive", nil)
		return
	}

	var dueDate time.Time
	if req.DueDate != "" {
		var err error
		dueDate, err = time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid due_date format (use YYYY-MM-DD)", err)
			return
		}
	}

	asOf := h.Now()
	p := finance.PaymentRecord{
		ItemName:     req.ItemName,
		ProjectName:  req.ProjectName,
		CategoryType: engine.ParseCategoryType(req.CategoryType),
		PaymentType:  engine.ParsePaymentType(req.PaymentType),
		TotalAmount:  decimal.NewFromFloat(req.TotalAmount),
		PaidAmount:   decimal.NewFromFloat(req.PaidAmount),
		HasLateFee:   req.HasLateFee,
		DueDate:      dueDate,
		Note:         req.Note,
	}
	p.Status = p.DerivedStatus(asOf)

	if err := h.Store.SavePayment(r.Context(), &p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create payment", err)
		return
	}

	h.InvalidateSchedules()
	writeJSON(w, http.StatusCreated, h.toPaymentDTO(p, asOf))
}

// RecordPayment applies a paid amount to a record.
// POST /api/payments/{id}/pay
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payment id", err)
		return
	}

	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := h.Store.RecordPayment(r.Context(), id, decimal.NewFromFloat(req.Amount), h.Now())
	if err != nil {
		writeStoreError(w, "Failed to record payment", err)
		return
	}

	h.InvalidateSchedules()
	writeJSON(w, http.StatusOK, h.toPaymentDTO(*p, h.Now()))
}

// ListOverdue returns overdue payments ranked by priority, the
// budget-agnostic "what should I pay first" view.
// GET /api/payments/overdue
func (h *Handler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListOutstanding(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payments", err)
		return
	}

	asOf := h.Now()
	overdue := engine.SelectOverdueForReschedule(finance.Obligations(records, asOf), asOf)

	writeJSON(w, http.StatusOK, map[string]any{
		"items": h.toScoredDTOs(overdue, recordsByID(records), asOf),
	})
}

// =============================================================================
// SCHEDULING HANDLER
// =============================================================================

// RunSchedule scores all outstanding payments and allocates the budget.
// POST /api/schedule
func (h *Handler) RunSchedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	asOf := h.Now()
	month := req.Month
	if month == "" {
		month = finance.MonthOf(asOf)
	}
	if !finance.ValidMonth(month) {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", nil)
		return
	}

	var budget decimal.Decimal
	if req.Budget != nil {
		budget = decimal.NewFromFloat(*req.Budget)
	} else {
		plan, err := h.Store.GetBudgetPlan(r.Context(), month)
		if err != nil {
			if finance.IsNotFound(err) {
				writeError(w, http.StatusBadRequest,
					fmt.Sprintf("No budget plan for %s; supply a budget explicitly", month), err)
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to load budget plan", err)
			return
		}
		budget = plan.Amount
	}

	cacheKey := h.scheduleCacheKey(month, budget, asOf)
	if cached, ok := h.Cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(cached))
		return
	}

	records, err := h.Store.ListOutstanding(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payments", err)
		return
	}

	result := engine.Schedule(finance.Obligations(records, asOf), budget, asOf)

	byID := recordsByID(records)
	dto := ScheduleResultDTO{
		Month:           month,
		Budget:          toFloat(budget),
		TotalNeeded:     toFloat(result.TotalNeeded),
		IsOverBudget:    result.IsOverBudget,
		ScheduledItems:  h.toScoredDTOs(result.ScheduledItems, byID, asOf),
		DeferredItems:   h.toScoredDTOs(result.DeferredItems, byID, asOf),
		ScheduledTotal:  toFloat(result.ScheduledTotal),
		RemainingBudget: toFloat(result.RemainingBudget),
		CriticalItems:   h.toScoredDTOs(result.CriticalItems, byID, asOf),
	}

	if body, err := json.Marshal(dto); err == nil {
		// Cache write failures only cost the memoization.
		_ = h.Cache.Set(cacheKey, string(body), scheduleCacheTTL)
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) scheduleCacheKey(month string, budget decimal.Decimal, asOf time.Time) string {
	return fmt.Sprintf("schedule:%s:%s:%s:g%d",
		month, budget.String(), asOf.Format("2006-01-02"), h.generation.Load())
}

// =============================================================================
// BUDGET HANDLERS
// =============================================================================

// GetBudgetPlan returns the budget plan for a month.
// GET /api/budget/{month}
func (h *Handler) GetBudgetPlan(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")

	plan, err := h.Store.GetBudgetPlan(r.Context(), month)
	if err != nil {
		writeStoreError(w, "Failed to get budget plan", err)
		return
	}

	writeJSON(w, http.StatusOK, BudgetPlanDTO{
		Month:     plan.Month,
		Amount:    toFloat(plan.Amount),
		Note:      plan.Note,
		UpdatedAt: plan.UpdatedAt.Format(time.RFC3339),
	})
}

// SaveBudgetPlan sets the budget plan for a month.
// PUT /api/budget/{month}
func (h *Handler) SaveBudgetPlan(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")

	var req SaveBudgetPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	plan := finance.BudgetPlan{
		Month:  month,
		Amount: decimal.NewFromFloat(req.Amount),
		Note:   req.Note,
	}
	if err := h.Store.SaveBudgetPlan(r.Context(), plan); err != nil {
		writeStoreError(w, "Failed to save budget plan", err)
		return
	}

	h.InvalidateSchedules()
	writeJSON(w, http.StatusOK, BudgetPlanDTO{
		Month:  plan.Month,
		Amount: toFloat(plan.Amount),
		Note:   plan.Note,
	})
}

// =============================================================================
// CATEGORY HANDLER
// =============================================================================

// ListCategories returns category tags for UI pickers.
// GET /api/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	infos := finance.Categories()
	dtos := make([]CategoryDTO, len(infos))
	for i, info := range infos {
		dtos[i] = CategoryDTO{
			Tag:      string(info.Tag),
			Label:    info.Label,
			Elevated: info.Elevated,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeStoreError maps domain errors to HTTP statuses.
func writeStoreError(w http.ResponseWriter, message string, err error) {
	switch {
	case finance.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, finance.ErrAlreadySettled):
		writeError(w, http.StatusConflict, message, err)
	case finance.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func recordsByID(records []finance.PaymentRecord) map[int64]finance.PaymentRecord {
	byID := make(map[int64]finance.PaymentRecord, len(records))
	for _, p := range records {
		byID[p.ID] = p
	}
	return byID
}
