/*
Package budget provides the core monthly budgeting engine.

PURPOSE:
  This package contains the pure-computation layer of the budgeter: the
  persisted document model, month-end reconciliation, derived dashboard
  metrics, and the guard rules that gate every mutation. There is no I/O
  here - persistence is behind the Store interface and "now" is behind
  the Clock interface, so everything is deterministic and testable.

KEY CONCEPTS IN THIS FILE (types.go):
  - Document: The sole persisted aggregate (one per user)
  - Transaction: A dated ledger entry (debit or credit)
  - Bill / IncomeSource: Recurring definitions auto-posted each month
  - Goal: A named savings target with an incrementally maintained balance

DESIGN PRINCIPLES:
  1. Purity: Engine functions take a Document and return a new Document
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Tolerance: Legacy documents missing newer fields never cause errors;
     missing collections default to empty, missing numerics to zero

SEE ALSO:
  - reconcile.go: Month rollover and recurring auto-posting
  - metrics.go: Derived dashboard figures
  - guard.go: Accept/reject rules for proposed mutations
*/
package budget

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// SchemaVersion is the current document schema. Version 1 documents are
// the legacy shape (bare-number bills, no goals or emergency fund) and
// are migrated in place by Normalize.
const SchemaVersion = 2

// =============================================================================
// RESERVED CATEGORY NAMES
// =============================================================================

const (
	// CategoryIncome marks credit events: received salary or other income.
	CategoryIncome = "Income"

	// CategoryBills is the category of auto-posted recurring bill instances.
	CategoryBills = "Bills"

	// CategoryEmergency is the emergency fund. Its balance is derived from
	// transaction history, unlike goals (see Goal).
	CategoryEmergency = "Emergency Fund"

	// CategoryInvestments tracks long-term savings.
	CategoryInvestments = "Investments"

	// CategoryLegacySavings is the pre-rename alias of CategoryInvestments
	// still present in old documents.
	CategoryLegacySavings = "Savings & Investments"
)

// protectedCategories can be hidden but never deleted.
var protectedCategories = map[string]bool{
	"Food":              true,
	"Fuel":              true,
	"Leisure":           true,
	CategoryInvestments: true,
	CategoryEmergency:   true,
}

// IsDefaultCategory reports whether name belongs to the fixed default set.
func IsDefaultCategory(name string) bool { return protectedCategories[name] }

// reservedCategories are transaction-routing names. They never appear in
// Categories: a spending bucket with one of these names would have its
// transactions misread as income or bill events.
var reservedCategories = map[string]bool{
	CategoryIncome: true,
	CategoryBills:  true,
}

// IsReservedCategory reports whether name may never become a user category.
func IsReservedCategory(name string) bool { return reservedCategories[name] }

// =============================================================================
// TRANSACTION - A single dated ledger entry, newest first in the document
// =============================================================================

type TransactionType string

const (
	TxDebit  TransactionType = "debit"
	TxCredit TransactionType = "credit"
)

type Transaction struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Timestamp   string          `json:"timestamp"`

	// IsSystem marks an auto-posted recurring instance. System transactions
	// are only changed by editing the recurring definition, never directly.
	IsSystem bool `json:"is_system,omitempty"`

	// IsContribution marks an internal transfer into a goal or the emergency
	// fund. Contributions count toward the category's pacing but are not
	// outward spending.
	IsContribution bool `json:"is_contribution,omitempty"`

	Type TransactionType `json:"type,omitempty"`
}

// Kind returns the effective direction: explicit Type if set, credit for
// income, debit otherwise.
func (t Transaction) Kind() TransactionType {
	if t.Type != "" {
		return t.Type
	}
	if t.Category == CategoryIncome {
		return TxCredit
	}
	return TxDebit
}

// Time parses the ISO timestamp. Malformed timestamps yield the zero time,
// which falls outside every month filter.
func (t Transaction) Time() time.Time {
	ts, err := time.Parse(time.RFC3339, t.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// InMonth reports whether the transaction falls in the given calendar month.
func (t Transaction) InMonth(year int, month time.Month) bool {
	ts := t.Time()
	return ts.Year() == year && ts.Month() == month
}

// =============================================================================
// RECURRING DEFINITIONS
// =============================================================================

// Bill is a recurring fixed obligation due on a day of the month.
//
// Legacy documents stored bills as bare numbers. UnmarshalJSON accepts both
// shapes so the rest of the engine only ever sees the typed form.
type Bill struct {
	Amount     decimal.Decimal `json:"amount"`
	DayOfMonth int             `json:"day_of_month"`
}

func (b *Bill) UnmarshalJSON(data []byte) error {
	// Legacy shape: a bare number.
	var amount decimal.Decimal
	if err := json.Unmarshal(data, &amount); err == nil {
		b.Amount = amount
		b.DayOfMonth = 1
		return nil
	}

	type billAlias Bill
	var full billAlias
	if err := json.Unmarshal(data, &full); err != nil {
		return err
	}
	*b = Bill(full)
	return nil
}

// IncomeSource is a recurring income definition, paid on a day of the month.
type IncomeSource struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	DayOfMonth int             `json:"day_of_month"`
}

// =============================================================================
// GOAL - Named savings target
// =============================================================================

// Goal carries an incrementally maintained balance (CurrentAmount), updated
// by deposits and withdrawals rather than derived from transactions. This is
// deliberately asymmetric with the emergency fund, whose balance IS derived;
// the asymmetry matches the behavior of the first reconciled schema version.
type Goal struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	TargetDate    string          `json:"target_date,omitempty"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
}

// Funded reports whether the goal has reached its target.
func (g Goal) Funded() bool {
	return g.TargetAmount.IsPositive() && g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
}

// =============================================================================
// DOCUMENT - The persisted aggregate, one per user
// =============================================================================

// Document is the complete budget state. Field names are the schema contract
// with the store and must not change once persisted.
type Document struct {
	Schema int `json:"schema_version,omitempty"`

	// MonthlyIncome is the legacy single-source income, superseded by
	// IncomeSources when any are present.
	MonthlyIncome  decimal.Decimal `json:"monthly_income"`
	IncomeRollover decimal.Decimal `json:"income_rollover"`
	IncomeSources  []IncomeSource  `json:"income_sources,omitempty"`

	Bills map[string]Bill `json:"bills"`

	// Categories is the display order; goals appear here too once created.
	Categories       []string `json:"categories"`
	HiddenCategories []string `json:"hidden_categories,omitempty"`

	BaseAllocations map[string]decimal.Decimal `json:"base_allocations"`
	Allocations     map[string]decimal.Decimal `json:"allocations"`

	// Spent is the legacy aggregate spend tracker, reset at rollover. The
	// metrics engine derives actual spend from transactions instead.
	Spent map[string]decimal.Decimal `json:"spent"`

	// Transactions are newest first.
	Transactions []Transaction `json:"transactions"`

	// LastMonth (1-12) is the month rollover was last performed for.
	LastMonth int `json:"last_month"`

	CustomGoals []Goal `json:"custom_goals,omitempty"`

	// EmergencyDeposits is the lifetime sum of emergency contributions.
	// Monotonic: withdrawals are transactions, netted at read time.
	EmergencyDeposits decimal.Decimal `json:"emergency_deposits"`
	EmergencyTarget   decimal.Decimal `json:"emergency_target,omitempty"`
	EmergencyDeadline string          `json:"emergency_deadline,omitempty"`
}

// Clone returns a deep copy. Engine operations mutate only clones so callers
// can treat inputs as immutable.
func (d Document) Clone() Document {
	out := d
	out.IncomeSources = append([]IncomeSource(nil), d.IncomeSources...)
	out.Categories = append([]string(nil), d.Categories...)
	out.HiddenCategories = append([]string(nil), d.HiddenCategories...)
	out.Transactions = append([]Transaction(nil), d.Transactions...)
	out.CustomGoals = append([]Goal(nil), d.CustomGoals...)

	out.Bills = make(map[string]Bill, len(d.Bills))
	for k, v := range d.Bills {
		out.Bills[k] = v
	}
	out.BaseAllocations = cloneAmounts(d.BaseAllocations)
	out.Allocations = cloneAmounts(d.Allocations)
	out.Spent = cloneAmounts(d.Spent)
	return out
}

func cloneAmounts(m map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// GoalByName returns the goal whose name matches the category, if any.
func (d Document) GoalByName(name string) (Goal, bool) {
	for _, g := range d.CustomGoals {
		if g.Name == name {
			return g, true
		}
	}
	return Goal{}, false
}

// IsGoalCategory reports whether the category is backed by a goal.
func (d Document) IsGoalCategory(name string) bool {
	_, ok := d.GoalByName(name)
	return ok
}

// HasCategory reports whether name is a known category.
func (d Document) HasCategory(name string) bool {
	for _, c := range d.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// IsHidden reports whether the category is excluded from active views.
func (d Document) IsHidden(name string) bool {
	for _, c := range d.HiddenCategories {
		if c == name {
			return true
		}
	}
	return false
}

// ActiveCategories returns categories in display order, skipping hidden ones.
func (d Document) ActiveCategories() []string {
	out := make([]string, 0, len(d.Categories))
	for _, c := range d.Categories {
		if !d.IsHidden(c) {
			out = append(out, c)
		}
	}
	return out
}

// HasTransaction reports whether a transaction with the given ID exists.
func (d Document) HasTransaction(id string) bool {
	for _, tx := range d.Transactions {
		if tx.ID == id {
			return true
		}
	}
	return false
}

// BillsTotal sums all recurring bills. Bills always apply in full for the
// month regardless of due date.
func (d Document) BillsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, b := range d.Bills {
		total = total.Add(b.Amount)
	}
	return total
}
