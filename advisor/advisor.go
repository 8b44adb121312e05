/*
Package advisor is the optional AI suggestion collaborator.

PURPOSE:
  Proposes budget changes - it never commits them. Proposals are applied
  only through the engine's guarded mutation path after explicit user
  acceptance. An unreachable or garbled advisor means no proposal this
  round, never a corrupted document: every failure surfaces as a plain
  error the caller can drop on the floor.
*/
package advisor

import (
	"context"

	"github.com/shopspring/decimal"
)

// CategorySpend summarizes one category for the advisor.
type CategorySpend struct {
	Name           string          `json:"name"`
	BaseAllocation decimal.Decimal `json:"base_allocation"`
	SpentThisMonth decimal.Decimal `json:"spent_this_month"`
}

// AllocationInput is the budget context for an allocation proposal.
type AllocationInput struct {
	DisposableIncome decimal.Decimal `json:"disposable_income"`
	Categories       []CategorySpend `json:"categories"`
}

// AllocationProposal is advisory output: suggested base allocations per
// category plus a short rationale and a confidence score in [0,1].
type AllocationProposal struct {
	Allocations map[string]decimal.Decimal `json:"allocations"`
	Advice      string                     `json:"advice"`
	Score       float64                    `json:"score"`
}

// EmergencyInput is the budget context for an emergency fund plan.
type EmergencyInput struct {
	MonthlyIncome  decimal.Decimal `json:"monthly_income"`
	MonthlyBills   decimal.Decimal `json:"monthly_bills"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
}

// EmergencyPlan is an advisory emergency fund target and schedule.
type EmergencyPlan struct {
	TargetAmount        decimal.Decimal `json:"target_amount"`
	Deadline            string          `json:"deadline"` // YYYY-MM-DD
	MonthlyContribution decimal.Decimal `json:"monthly_contribution"`
	Reasoning           string          `json:"reasoning"`
}

// Advisor proposes budget changes. Implementations must be side-effect free
// with respect to the budget document.
type Advisor interface {
	ProposeAllocations(ctx context.Context, in AllocationInput) (*AllocationProposal, error)
	ProposeEmergencyPlan(ctx context.Context, in EmergencyInput) (*EmergencyPlan, error)
}
