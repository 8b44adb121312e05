/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the engine's decimal
  document model from the external contract. Money crosses this boundary
  as float64; inside the engine it is always decimal.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/session"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// SnapshotDTO is the full dashboard payload: document plus derived metrics.
type SnapshotDTO struct {
	Document DocumentDTO `json:"document"`
	Metrics  MetricsDTO  `json:"metrics"`
}

type DocumentDTO struct {
	MonthlyIncome     float64                 `json:"monthly_income"`
	IncomeRollover    float64                 `json:"income_rollover"`
	IncomeSources     []IncomeSourceDTO       `json:"income_sources"`
	Bills             map[string]BillDTO      `json:"bills"`
	Categories        []string                `json:"categories"`
	HiddenCategories  []string                `json:"hidden_categories"`
	BaseAllocations   map[string]float64      `json:"base_allocations"`
	Allocations       map[string]float64      `json:"allocations"`
	Transactions      []TransactionDTO        `json:"transactions"`
	Goals             []GoalDTO               `json:"goals"`
	EmergencyTarget   float64                 `json:"emergency_target"`
	EmergencyDeadline string                  `json:"emergency_deadline,omitempty"`
}

type MetricsDTO struct {
	TotalIncome        float64            `json:"total_income"`
	ProjectedIncome    float64            `json:"projected_income"`
	Effective          float64            `json:"effective"`
	DisposableIncome   float64            `json:"disposable_income"`
	Bills              float64            `json:"bills"`
	TotalAllocated     float64            `json:"total_allocated"`
	AllocatedRemaining float64            `json:"allocated_remaining"`
	FreeCash           float64            `json:"free_cash"`
	Unallocated        float64            `json:"unallocated"`
	TotalSpent         float64            `json:"total_spent"`
	TotalContributions float64            `json:"total_contributions"`
	Overspend          float64            `json:"overspend"`
	RealSpent          map[string]float64 `json:"real_spent"`
	PacingTargets      map[string]float64 `json:"pacing_targets"`
	EmergencyBalance   float64            `json:"emergency_balance"`
	EmergencyAllocated float64            `json:"emergency_allocated"`
	EmergencySpent     float64            `json:"emergency_spent"`
	TotalInvested      float64            `json:"total_invested"`
	Day                int                `json:"day"`
	DaysInMonth        int                `json:"days_in_month"`
}

type TransactionDTO struct {
	ID             string  `json:"id"`
	Amount         float64 `json:"amount"`
	Category       string  `json:"category"`
	Description    string  `json:"description,omitempty"`
	Timestamp      string  `json:"timestamp"`
	IsSystem       bool    `json:"is_system"`
	IsContribution bool    `json:"is_contribution"`
	Type           string  `json:"type"`
}

type BillDTO struct {
	Amount     float64 `json:"amount"`
	DayOfMonth int     `json:"day_of_month"`
}

type IncomeSourceDTO struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	DayOfMonth int     `json:"day_of_month"`
}

type GoalDTO struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	TargetAmount  float64 `json:"target_amount"`
	TargetDate    string  `json:"target_date,omitempty"`
	CurrentAmount float64 `json:"current_amount"`
}

// ErrorResponse is the standard error payload. Guard rejections carry the
// rule code and the numeric limit that was violated.
type ErrorResponse struct {
	Error string   `json:"error"`
	Code  string   `json:"code,omitempty"`
	Limit *float64 `json:"limit,omitempty"`
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

type LogExpenseRequest struct {
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

type DepositRequest struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

type SetIncomeRequest struct {
	Amount float64 `json:"amount"`
}

type IncomeSourceRequest struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	DayOfMonth int     `json:"day_of_month"`
}

type SetBillRequest struct {
	Amount     float64 `json:"amount"`
	DayOfMonth int     `json:"day_of_month"`
}

type SetAllocationRequest struct {
	Amount float64 `json:"amount"`
}

type AddCategoryRequest struct {
	Name string `json:"name"`
}

type AddGoalRequest struct {
	Name         string  `json:"name"`
	TargetAmount float64 `json:"target_amount"`
	TargetDate   string  `json:"target_date"`
}

type EmergencyPlanRequest struct {
	TargetAmount float64 `json:"target_amount"`
	Deadline     string  `json:"deadline"`
}

type ApplyAllocationsRequest struct {
	Allocations map[string]float64 `json:"allocations"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toSnapshotDTO(snap session.Snapshot) SnapshotDTO {
	return SnapshotDTO{
		Document: toDocumentDTO(snap.Document),
		Metrics:  toMetricsDTO(snap.Metrics),
	}
}

func toDocumentDTO(doc budget.Document) DocumentDTO {
	dto := DocumentDTO{
		MonthlyIncome:     f64(doc.MonthlyIncome),
		IncomeRollover:    f64(doc.IncomeRollover),
		IncomeSources:     make([]IncomeSourceDTO, 0, len(doc.IncomeSources)),
		Bills:             make(map[string]BillDTO, len(doc.Bills)),
		Categories:        doc.Categories,
		HiddenCategories:  doc.HiddenCategories,
		BaseAllocations:   f64Map(doc.BaseAllocations),
		Allocations:       f64Map(doc.Allocations),
		Transactions:      make([]TransactionDTO, 0, len(doc.Transactions)),
		Goals:             make([]GoalDTO, 0, len(doc.CustomGoals)),
		EmergencyTarget:   f64(doc.EmergencyTarget),
		EmergencyDeadline: doc.EmergencyDeadline,
	}
	for _, src := range doc.IncomeSources {
		dto.IncomeSources = append(dto.IncomeSources, IncomeSourceDTO{
			ID: src.ID, Name: src.Name, Amount: f64(src.Amount), DayOfMonth: src.DayOfMonth,
		})
	}
	for name, b := range doc.Bills {
		dto.Bills[name] = BillDTO{Amount: f64(b.Amount), DayOfMonth: b.DayOfMonth}
	}
	for _, tx := range doc.Transactions {
		dto.Transactions = append(dto.Transactions, TransactionDTO{
			ID:             tx.ID,
			Amount:         f64(tx.Amount),
			Category:       tx.Category,
			Description:    tx.Description,
			Timestamp:      tx.Timestamp,
			IsSystem:       tx.IsSystem,
			IsContribution: tx.IsContribution,
			Type:           string(tx.Kind()),
		})
	}
	for _, g := range doc.CustomGoals {
		dto.Goals = append(dto.Goals, GoalDTO{
			ID:            g.ID,
			Name:          g.Name,
			TargetAmount:  f64(g.TargetAmount),
			TargetDate:    g.TargetDate,
			CurrentAmount: f64(g.CurrentAmount),
		})
	}
	return dto
}

func toMetricsDTO(m budget.Metrics) MetricsDTO {
	return MetricsDTO{
		TotalIncome:        f64(m.TotalIncome),
		ProjectedIncome:    f64(m.ProjectedIncome),
		Effective:          f64(m.Effective),
		DisposableIncome:   f64(m.DisposableIncome),
		Bills:              f64(m.Bills),
		TotalAllocated:     f64(m.TotalAllocated),
		AllocatedRemaining: f64(m.AllocatedRemaining),
		FreeCash:           f64(m.FreeCash),
		Unallocated:        f64(m.Unallocated),
		TotalSpent:         f64(m.TotalSpent),
		TotalContributions: f64(m.TotalContributions),
		Overspend:          f64(m.Overspend),
		RealSpent:          f64Map(m.RealSpent),
		PacingTargets:      f64Map(m.PacingTargets),
		EmergencyBalance:   f64(m.EmergencyBalance),
		EmergencyAllocated: f64(m.EmergencyAllocated),
		EmergencySpent:     f64(m.EmergencySpent),
		TotalInvested:      f64(m.TotalInvested),
		Day:                m.Day,
		DaysInMonth:        m.DaysInMonth,
	}
}

func f64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func f64Map(m map[string]decimal.Decimal) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = f64(v)
	}
	return out
}

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func decMap(m map[string]float64) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(m))
	for k, v := range m {
		out[k] = dec(v)
	}
	return out
}
