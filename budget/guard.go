/*
guard.go - Mutation guard rules

PURPOSE:
  Pure predicates that accept or reject a proposed mutation before it is
  applied. Every guard reads a freshly computed Metrics plus the proposed
  delta and returns nil (accept) or a *Rejection carrying the rule, a
  human-readable reason and the numeric limit that was violated. Guards
  never mutate state; acceptance is a precondition the caller checks
  before writing the document back.

REMAINING BUDGET:
  What an expense is checked against depends on the category:
    ordinary category   allocation - realSpent
    emergency fund      derived balance (withdrawals never overdraw)
    goal category       the goal's running balance
*/
package budget

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CanLogExpense checks a spending transaction against the category's
// remaining budget.
func CanLogExpense(doc Document, m Metrics, category string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if !doc.HasCategory(category) {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	var remaining decimal.Decimal
	var reason string
	switch {
	case category == CategoryEmergency:
		remaining = m.EmergencyBalance
		reason = "withdrawal exceeds the emergency fund balance"
	case doc.IsGoalCategory(category):
		g, _ := doc.GoalByName(category)
		remaining = g.CurrentAmount
		reason = fmt.Sprintf("withdrawal exceeds the %q balance", category)
	default:
		remaining = m.RemainingAllocation(doc, category)
		reason = fmt.Sprintf("only %s left in %q this month", remaining.StringFixed(2), category)
	}

	if amount.GreaterThan(remaining) {
		return &Rejection{Rule: "expense", Reason: reason, Limit: remaining, Requested: amount}
	}
	return nil
}

// CanDeposit checks a contribution into a goal or the emergency fund against
// the category's remaining monthly allocation, and rejects outright when the
// target is already fully funded.
func CanDeposit(doc Document, m Metrics, category string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}

	var balance, target decimal.Decimal
	switch {
	case category == CategoryEmergency:
		balance, target = m.EmergencyBalance, doc.EmergencyTarget
	case doc.IsGoalCategory(category):
		g, _ := doc.GoalByName(category)
		balance, target = g.CurrentAmount, g.TargetAmount
	default:
		return fmt.Errorf("%w: %q is not a savings category", ErrUnknownCategory, category)
	}

	if target.IsPositive() && balance.GreaterThanOrEqual(target) {
		return &Rejection{
			Rule:      "deposit",
			Reason:    fmt.Sprintf("%q is already fully funded", category),
			Limit:     decimal.Zero,
			Requested: amount,
		}
	}

	remaining := m.RemainingAllocation(doc, category)
	if amount.GreaterThan(remaining) {
		return &Rejection{
			Rule:      "deposit",
			Reason:    fmt.Sprintf("deposit exceeds the remaining %q allocation", category),
			Limit:     remaining,
			Requested: amount,
		}
	}
	return nil
}

// CanSetBill checks that the bill's incremental amount is covered by free
// cash. A new bill is all-incremental; raising one is checked on the raise;
// lowering one always passes.
func CanSetBill(doc Document, m Metrics, name string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	increment := amount
	if existing, ok := doc.Bills[name]; ok {
		increment = amount.Sub(existing.Amount)
	}
	// Lowering a bill frees cash; only growth needs cover.
	if increment.IsPositive() && increment.GreaterThan(m.Unallocated) {
		return &Rejection{
			Rule:      "bill",
			Reason:    "bill increase exceeds unassigned cash",
			Limit:     m.Unallocated,
			Requested: increment,
		}
	}
	return nil
}

// CanSetBaseAllocation checks that the new total of all base allocations
// stays within disposable income (income minus bills).
func CanSetBaseAllocation(doc Document, m Metrics, category string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNonPositiveAmount
	}
	if !doc.HasCategory(category) {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	total := amount
	for _, c := range doc.Categories {
		if c != category {
			total = total.Add(doc.BaseAllocations[c])
		}
	}
	if total.GreaterThan(m.DisposableIncome) {
		return &Rejection{
			Rule:      "allocation",
			Reason:    "total base allocations exceed disposable income",
			Limit:     m.DisposableIncome,
			Requested: total,
		}
	}
	return nil
}

// CanDeleteCategory protects the default set and goal-backed categories.
func CanDeleteCategory(doc Document, name string) error {
	if !doc.HasCategory(name) {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	if IsDefaultCategory(name) {
		return &Rejection{
			Rule:   "category",
			Reason: fmt.Sprintf("%q is a default category and can only be hidden", name),
		}
	}
	if doc.IsGoalCategory(name) {
		return &Rejection{
			Rule:   "category",
			Reason: fmt.Sprintf("%q is backed by a goal; delete the goal instead", name),
		}
	}
	return nil
}
