/*
mutate.go - Guarded document mutations

PURPOSE:
  Every user action is a pure function: clone the document, check the
  relevant guard against freshly computed metrics, apply the change, and
  return the new document. A non-nil error means the input document is
  unchanged and nothing must be persisted. The caller owns the write.

CONVENTIONS:
  - User transactions get random IDs; system transactions keep their
    deterministic reconcile IDs.
  - The legacy Spent aggregate is maintained alongside the ledger so
    documents stay readable by the earlier schema's bookkeeping.
  - Goal balances are updated incrementally here; the emergency fund is
    only ever touched through EmergencyDeposits and transactions.
*/
package budget

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LogExpense records a spending transaction against a category. For a goal
// or the emergency fund this is a withdrawal, decrementing the stored
// balance and never exceeding it.
func LogExpense(doc Document, now Date, category string, amount decimal.Decimal, description string) (Document, error) {
	m := ComputeMetrics(doc, now)
	if err := CanLogExpense(doc, m, category, amount); err != nil {
		return doc, err
	}

	d := doc.Clone()
	d.Transactions = prepend(d.Transactions, Transaction{
		ID:          uuid.NewString(),
		Amount:      amount,
		Category:    category,
		Description: description,
		Timestamp:   now.ISO(),
		Type:        TxDebit,
	})
	d.Spent[category] = d.Spent[category].Add(amount)

	if i := goalIndex(d, category); i >= 0 {
		d.CustomGoals[i].CurrentAmount = d.CustomGoals[i].CurrentAmount.Sub(amount)
	}
	return d, nil
}

// Deposit moves money into a goal or the emergency fund as a contribution
// transaction. Counts against the category's monthly allocation.
func Deposit(doc Document, now Date, category string, amount decimal.Decimal) (Document, error) {
	m := ComputeMetrics(doc, now)
	if err := CanDeposit(doc, m, category, amount); err != nil {
		return doc, err
	}

	d := doc.Clone()
	d.Transactions = prepend(d.Transactions, Transaction{
		ID:             uuid.NewString(),
		Amount:         amount,
		Category:       category,
		Description:    "Contribution",
		Timestamp:      now.ISO(),
		IsContribution: true,
		Type:           TxDebit,
	})
	d.Spent[category] = d.Spent[category].Add(amount)

	if category == CategoryEmergency {
		d.EmergencyDeposits = d.EmergencyDeposits.Add(amount)
	} else if i := goalIndex(d, category); i >= 0 {
		d.CustomGoals[i].CurrentAmount = d.CustomGoals[i].CurrentAmount.Add(amount)
	}
	return d, nil
}

// DeleteTransaction removes a user-logged transaction and restores the
// legacy spend aggregate. System and contribution transactions are
// protected; they are corrected through their own paths.
func DeleteTransaction(doc Document, id string) (Document, error) {
	d := doc.Clone()
	for i, tx := range d.Transactions {
		if tx.ID != id {
			continue
		}
		if tx.IsSystem {
			return doc, ErrSystemTransaction
		}
		if tx.IsContribution {
			return doc, ErrContributionTransaction
		}
		d.Transactions = append(d.Transactions[:i], d.Transactions[i+1:]...)
		if tx.Kind() == TxDebit {
			restored := d.Spent[tx.Category].Sub(tx.Amount)
			if restored.IsNegative() {
				restored = decimal.Zero
			}
			d.Spent[tx.Category] = restored
		}
		if gi := goalIndex(d, tx.Category); gi >= 0 {
			// Undoing a goal withdrawal puts the money back.
			d.CustomGoals[gi].CurrentAmount = d.CustomGoals[gi].CurrentAmount.Add(tx.Amount)
		}
		return d, nil
	}
	return doc, fmt.Errorf("%w: %q", ErrUnknownTransaction, id)
}

// SetIncome updates the legacy flat monthly income.
func SetIncome(doc Document, amount decimal.Decimal) (Document, error) {
	if amount.IsNegative() {
		return doc, ErrNonPositiveAmount
	}
	d := doc.Clone()
	d.MonthlyIncome = amount
	return d, nil
}

// AddIncomeSource registers a recurring income definition.
func AddIncomeSource(doc Document, name string, amount decimal.Decimal, dayOfMonth int) (Document, error) {
	if !amount.IsPositive() {
		return doc, ErrNonPositiveAmount
	}
	if dayOfMonth < 1 {
		dayOfMonth = 1
	}
	d := doc.Clone()
	d.IncomeSources = append(d.IncomeSources, IncomeSource{
		ID:         uuid.NewString(),
		Name:       name,
		Amount:     amount,
		DayOfMonth: dayOfMonth,
	})
	return d, nil
}

// RemoveIncomeSource deletes a recurring income definition. Already-posted
// instances stay in history.
func RemoveIncomeSource(doc Document, id string) (Document, error) {
	d := doc.Clone()
	for i, src := range d.IncomeSources {
		if src.ID == id {
			d.IncomeSources = append(d.IncomeSources[:i], d.IncomeSources[i+1:]...)
			return d, nil
		}
	}
	return doc, fmt.Errorf("%w: %q", ErrUnknownIncomeSource, id)
}

// SetBill creates or updates a recurring bill, guarded by free cash.
func SetBill(doc Document, now Date, name string, amount decimal.Decimal, dayOfMonth int) (Document, error) {
	m := ComputeMetrics(doc, now)
	if err := CanSetBill(doc, m, name, amount); err != nil {
		return doc, err
	}
	if dayOfMonth < 1 {
		dayOfMonth = 1
	}
	d := doc.Clone()
	d.Bills[name] = Bill{Amount: amount, DayOfMonth: dayOfMonth}
	return d, nil
}

// RemoveBill deletes a recurring bill definition.
func RemoveBill(doc Document, name string) (Document, error) {
	d := doc.Clone()
	if _, ok := d.Bills[name]; !ok {
		return doc, fmt.Errorf("%w: bill %q", ErrUnknownCategory, name)
	}
	delete(d.Bills, name)
	return d, nil
}

// SetBaseAllocation updates a category's base budget. The effective
// allocation keeps whatever carryover delta the month already has.
func SetBaseAllocation(doc Document, now Date, category string, amount decimal.Decimal) (Document, error) {
	m := ComputeMetrics(doc, now)
	if err := CanSetBaseAllocation(doc, m, category, amount); err != nil {
		return doc, err
	}
	d := doc.Clone()
	carryover := d.Allocations[category].Sub(d.BaseAllocations[category])
	d.BaseAllocations[category] = amount
	d.Allocations[category] = amount.Add(carryover)
	return d, nil
}

// AddCategory creates a flexible spending bucket with zero budget.
func AddCategory(doc Document, name string) (Document, error) {
	if IsReservedCategory(name) {
		return doc, fmt.Errorf("%w: %q", ErrReservedCategory, name)
	}
	if doc.HasCategory(name) {
		return doc, fmt.Errorf("%w: %q", ErrDuplicateCategory, name)
	}
	d := doc.Clone()
	d.Categories = append(d.Categories, name)
	d.BaseAllocations[name] = decimal.Zero
	d.Allocations[name] = decimal.Zero
	d.Spent[name] = decimal.Zero
	return d, nil
}

// DeleteCategory removes a non-default category. Its transactions stay in
// history for the months they belong to.
func DeleteCategory(doc Document, name string) (Document, error) {
	if err := CanDeleteCategory(doc, name); err != nil {
		return doc, err
	}
	d := doc.Clone()
	d.Categories = removeString(d.Categories, name)
	d.HiddenCategories = removeString(d.HiddenCategories, name)
	delete(d.BaseAllocations, name)
	delete(d.Allocations, name)
	delete(d.Spent, name)
	return d, nil
}

// HideCategory excludes a category from active budgeting views.
func HideCategory(doc Document, name string) (Document, error) {
	if !doc.HasCategory(name) {
		return doc, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	if doc.IsHidden(name) {
		return doc, nil
	}
	d := doc.Clone()
	d.HiddenCategories = append(d.HiddenCategories, name)
	return d, nil
}

// UnhideCategory restores a hidden category to active views.
func UnhideCategory(doc Document, name string) (Document, error) {
	d := doc.Clone()
	d.HiddenCategories = removeString(d.HiddenCategories, name)
	return d, nil
}

// AddGoal creates a savings goal and its matching category with zero
// allocation.
func AddGoal(doc Document, name string, target decimal.Decimal, targetDate string) (Document, error) {
	if !target.IsPositive() {
		return doc, ErrNonPositiveAmount
	}
	if IsReservedCategory(name) {
		return doc, fmt.Errorf("%w: %q", ErrReservedCategory, name)
	}
	if doc.HasCategory(name) {
		return doc, fmt.Errorf("%w: %q", ErrDuplicateCategory, name)
	}
	if targetDate != "" {
		if _, err := time.Parse("2006-01-02", targetDate); err != nil {
			return doc, fmt.Errorf("invalid target date %q: %w", targetDate, err)
		}
	}
	d := doc.Clone()
	d.CustomGoals = append(d.CustomGoals, Goal{
		ID:           uuid.NewString(),
		Name:         name,
		TargetAmount: target,
		TargetDate:   targetDate,
	})
	d.Categories = append(d.Categories, name)
	d.BaseAllocations[name] = decimal.Zero
	d.Allocations[name] = decimal.Zero
	d.Spent[name] = decimal.Zero
	return d, nil
}

// DeleteGoal removes a goal and its category. Contribution and withdrawal
// history stays in the ledger.
func DeleteGoal(doc Document, id string) (Document, error) {
	d := doc.Clone()
	for i, g := range d.CustomGoals {
		if g.ID != id {
			continue
		}
		d.CustomGoals = append(d.CustomGoals[:i], d.CustomGoals[i+1:]...)
		d.Categories = removeString(d.Categories, g.Name)
		d.HiddenCategories = removeString(d.HiddenCategories, g.Name)
		delete(d.BaseAllocations, g.Name)
		delete(d.Allocations, g.Name)
		delete(d.Spent, g.Name)
		return d, nil
	}
	return doc, fmt.Errorf("%w: %q", ErrUnknownGoal, id)
}

// SetEmergencyPlan updates the emergency fund target and optional deadline.
// The emergency category is created on first use so deposits have somewhere
// to pace against.
func SetEmergencyPlan(doc Document, target decimal.Decimal, deadline string) (Document, error) {
	if target.IsNegative() {
		return doc, ErrNonPositiveAmount
	}
	if deadline != "" {
		if _, err := time.Parse("2006-01-02", deadline); err != nil {
			return doc, fmt.Errorf("invalid deadline %q: %w", deadline, err)
		}
	}
	d := doc.Clone()
	d.EmergencyTarget = target
	d.EmergencyDeadline = deadline
	if !d.HasCategory(CategoryEmergency) {
		d.Categories = append(d.Categories, CategoryEmergency)
		d.BaseAllocations[CategoryEmergency] = decimal.Zero
		d.Allocations[CategoryEmergency] = decimal.Zero
		d.Spent[CategoryEmergency] = decimal.Zero
	}
	return d, nil
}

// ApplyAllocationProposal merges advisory base allocations through the
// normal guarded path, one category at a time. Any rejection or unknown
// category aborts the whole merge and returns the input document untouched.
func ApplyAllocationProposal(doc Document, now Date, allocations map[string]decimal.Decimal) (Document, error) {
	for c := range allocations {
		if !doc.HasCategory(c) {
			return doc, fmt.Errorf("proposal for %q: %w", c, ErrUnknownCategory)
		}
	}

	d := doc
	for _, c := range doc.Categories {
		amount, ok := allocations[c]
		if !ok {
			continue
		}
		var err error
		d, err = SetBaseAllocation(d, now, c, amount)
		if err != nil {
			return doc, fmt.Errorf("proposal for %q: %w", c, err)
		}
	}
	return d, nil
}

// Reset zeroes all monthly figures: income, rollover, allocations, spend and
// transaction history. Bills, categories, goals and the emergency fund are
// left in place.
func Reset(doc Document) Document {
	d := doc.Clone()
	d.MonthlyIncome = decimal.Zero
	d.IncomeRollover = decimal.Zero
	for _, c := range d.Categories {
		d.BaseAllocations[c] = decimal.Zero
		d.Allocations[c] = decimal.Zero
		d.Spent[c] = decimal.Zero
	}
	// Emergency withdrawals live in the ledger being cleared; fold them into
	// the deposit counter so the derived balance survives the reset.
	d.EmergencyDeposits = emergencyBalance(doc)
	d.Transactions = []Transaction{}
	return d
}

// =============================================================================
// HELPERS
// =============================================================================

func prepend(txs []Transaction, tx Transaction) []Transaction {
	return append([]Transaction{tx}, txs...)
}

func goalIndex(d Document, category string) int {
	for i, g := range d.CustomGoals {
		if g.Name == category {
			return i
		}
	}
	return -1
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
