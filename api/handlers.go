/*
handlers.go - HTTP handlers

PURPOSE:
  Thin adapters between HTTP and the session pipeline. Handlers decode a
  request, call Session.Open/Update with the appropriate engine mutation,
  and encode the resulting snapshot. All budget rules live in the engine;
  a handler never decides whether a mutation is allowed.

ERROR MAPPING:
  Guard rejection      422 + {error, code, limit}
  Other client errors  400 (404 for unknown references)
  Advisor unavailable  503
  Store failure        500
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/warp/budget-engine/advisor"
	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/session"
)

// Handler carries the dependencies shared by all routes.
type Handler struct {
	Sessions *session.Session
	Clock    budget.Clock
	Advisor  advisor.Advisor // nil when not configured
	Log      zerolog.Logger
}

func NewHandler(sessions *session.Session, clock budget.Clock, adv advisor.Advisor, log zerolog.Logger) *Handler {
	return &Handler{Sessions: sessions, Clock: clock, Advisor: adv, Log: log}
}

// userKey identifies the document. Single-user deployments use the default.
func userKey(r *http.Request) string {
	if key := r.Header.Get("X-User-ID"); key != "" {
		return key
	}
	return "local"
}

// =============================================================================
// SNAPSHOT
// =============================================================================

func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Sessions.Open(r.Context(), userKey(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toSnapshotDTO(snap))
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func (h *Handler) LogExpense(w http.ResponseWriter, r *http.Request) {
	var req LogExpenseRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.update(w, r, func(doc budget.Document) (budget.Document, error) {
		return budget.LogExpense(doc, h.Clock.Today(), req.Category, dec(req.Amount), req.Description)
	})
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.update(w, r, func(doc budget.Document) (budget.Document, error) {
		return budget.DeleteTransaction(doc, id)
	})
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req DepositRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.update(w, r, func(doc budget.Document) (budget.Document, error) {
		return budget.Deposit(doc, h.Clock.Today(), req.Category, dec(req.Amount))
	})
}

// =============================================================================
// INCOME
// =============================================================================

func (h *Handler) SetIncome(w http.ResponseWriter, r *http.Request) {
	var req SetIncomeRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.update(w, r, func(doc budget.Document) (budget.Document, error) {
		return budget.SetIncome(doc, dec(req.Amount))
	})
}

func (h *Handler) AddIncomeSource(w http.ResponseWriter, r *http.Request) {
	var req IncomeSourceRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.update(w, r, func(doc budget.Document) (budget.Document, error) {
		return budget.AddIncomeSource(doc, req.Name, dec(req.Amount), req.DayOfMonth)
	})
}

func (h *Handler) RemoveIncomeSource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.update(w, r, func(doc budget.Document) (budget.Document, error) {
		return budget.RemoveIncomeSource(doc, id)
	})
}

// =============================================================================
// BILLS
// =============================================================================

func (h *Handler) SetBill(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req SetBillRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.update(w, r, func(doc budget.Document) (budget.Document, error) {
		return budget.SetBill(doc, h.Clock.Today(), name, dec(req.Amount), req.DayOfMonth)
	})
}

func (h *Handler) RemoveBill(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	h.update(w, r, func(doc budget.Document) (budget.Document, error) {
		return budget.RemoveBill(doc, name)
	})
}

// =============================================================================
// ALLOCATIONS AND CATEGORIES
// =============================================================================

func (h *Handler) SetAllocation(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	var req SetAllocationRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.update(w, r, func(doc budget.Document) (budget.Document, error) {
		return budget.SetBaseAllocation(doc, h.Clock.Today(), category, dec(req.Amount))
	})
}

func (h *Handler) AddCategory(w http.ResponseWriter, r *http.Request) {
	var req AddCategoryRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.update(w, r, func(doc budget.Document) (budget.Document, error) {
		return budget.AddCategory(doc, req.Name)
	})
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	h.update(w, r, func(doc budget.Document) (budget.Document, error) {
		return budget.DeleteCategory(doc, name)
	})
}

func (h *Handler) HideCategory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	h.update(w, r, func(doc budget.Document) (budget.Document, error) {
		return budget.HideCategory(doc, name)
	})
}

func (h *Handler) UnhideCategory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	h.update(w, r, func(doc budget.Document) (budget.Document, error) {
		return budget.UnhideCategory(doc, name)
	})
}

// =============================================================================
// GOALS AND EMERGENCY FUND
// =============================================================================

func (h *Handler) AddGoal(w http.ResponseWriter, r *http.Request) {
	var req AddGoalRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.update(w, r, func(doc budget.Document) (budget.Document, error) {
		return budget.AddGoal(doc, req.Name, dec(req.TargetAmount), req.TargetDate)
	})
}

func (h *Handler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.update(w, r, func(doc budget.Document) (budget.Document, error) {
		return budget.DeleteGoal(doc, id)
	})
}

func (h *Handler) SetEmergencyPlan(w http.ResponseWriter, r *http.Request) {
	var req EmergencyPlanRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.update(w, r, func(doc budget.Document) (budget.Document, error) {
		return budget.SetEmergencyPlan(doc, dec(req.TargetAmount), req.Deadline)
	})
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, func(doc budget.Document) (budget.Document, error) {
		return budget.Reset(doc), nil
	})
}

// =============================================================================
// ADVISOR - Proposals only; applying goes through the guarded path
// =============================================================================

func (h *Handler) ProposeAllocations(w http.ResponseWriter, r *http.Request) {
	if h.Advisor == nil {
		h.respondJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "advisor not configured"})
		return
	}
	snap, err := h.Sessions.Open(r.Context(), userKey(r))
	if err != nil {
		h.respondError(w, err)
		return
	}

	in := advisor.AllocationInput{DisposableIncome: snap.Metrics.DisposableIncome}
	for _, c := range snap.Document.ActiveCategories() {
		in.Categories = append(in.Categories, advisor.CategorySpend{
			Name:           c,
			BaseAllocation: snap.Document.BaseAllocations[c],
			SpentThisMonth: snap.Metrics.RealSpent[c],
		})
	}

	proposal, err := h.Advisor.ProposeAllocations(r.Context(), in)
	if err != nil {
		h.Log.Warn().Err(err).Msg("allocation proposal unavailable")
		h.respondJSON(w, http.StatusBadGateway, ErrorResponse{Error: "no proposal available"})
		return
	}
	h.respondJSON(w, http.StatusOK, proposal)
}

func (h *Handler) ApplyAllocations(w http.ResponseWriter, r *http.Request) {
	var req ApplyAllocationsRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.update(w, r, func(doc budget.Document) (budget.Document, error) {
		return budget.ApplyAllocationProposal(doc, h.Clock.Today(), decMap(req.Allocations))
	})
}

func (h *Handler) ProposeEmergencyPlan(w http.ResponseWriter, r *http.Request) {
	if h.Advisor == nil {
		h.respondJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "advisor not configured"})
		return
	}
	snap, err := h.Sessions.Open(r.Context(), userKey(r))
	if err != nil {
		h.respondError(w, err)
		return
	}

	plan, err := h.Advisor.ProposeEmergencyPlan(r.Context(), advisor.EmergencyInput{
		MonthlyIncome:  snap.Metrics.TotalIncome,
		MonthlyBills:   snap.Metrics.Bills,
		CurrentBalance: snap.Metrics.EmergencyBalance,
	})
	if err != nil {
		h.Log.Warn().Err(err).Msg("emergency plan unavailable")
		h.respondJSON(w, http.StatusBadGateway, ErrorResponse{Error: "no plan available"})
		return
	}
	h.respondJSON(w, http.StatusOK, plan)
}

// =============================================================================
// PLUMBING
// =============================================================================

func (h *Handler) update(w http.ResponseWriter, r *http.Request, mutate session.Mutation) {
	snap, err := h.Sessions.Update(r.Context(), userKey(r), mutate)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toSnapshotDTO(snap))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if rej, ok := budget.AsRejection(err); ok {
		limit := f64(rej.Limit)
		h.respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: rej.Reason,
			Code:  rej.Rule,
			Limit: &limit,
		})
		return
	}

	switch {
	case errors.Is(err, budget.ErrUnknownCategory),
		errors.Is(err, budget.ErrUnknownTransaction),
		errors.Is(err, budget.ErrUnknownIncomeSource),
		errors.Is(err, budget.ErrUnknownGoal):
		h.respondJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case budget.IsClientError(err):
		h.respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		h.Log.Error().Err(err).Msg("request failed")
		h.respondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Log.Error().Err(err).Msg("encode response failed")
	}
}
