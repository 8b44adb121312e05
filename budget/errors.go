/*
errors.go - Centralized error types for the budget engine

PURPOSE:
  All engine error types in one place. There is no fatal error class in the
  core: malformed documents are defaulted, and guard rejections are normal,
  expected control flow surfaced as structured errors.

ERROR CATEGORIES:
  1. Guard rejections - A mutation was denied by a budget rule
  2. Lookup errors - Referenced category/transaction/goal does not exist
  3. Protection errors - The target may not be changed this way

USAGE:
  Callers distinguish rejections from lookup errors with errors.Is/As:

    if rej, ok := budget.AsRejection(err); ok {
        render(rej.Reason, rej.Limit)
    }
*/
package budget

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrRejected is the root of every guard rejection.
	ErrRejected = errors.New("mutation rejected")

	// ErrUnknownCategory is returned when a referenced category does not exist.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrUnknownTransaction is returned when a referenced transaction does not exist.
	ErrUnknownTransaction = errors.New("unknown transaction")

	// ErrUnknownIncomeSource is returned when a referenced income source does not exist.
	ErrUnknownIncomeSource = errors.New("unknown income source")

	// ErrUnknownGoal is returned when a referenced goal does not exist.
	ErrUnknownGoal = errors.New("unknown goal")

	// ErrDuplicateCategory is returned when adding a category that already exists.
	ErrDuplicateCategory = errors.New("category already exists")

	// ErrReservedCategory is returned when a category or goal would take a
	// transaction-routing name ("Income", "Bills").
	ErrReservedCategory = errors.New("reserved category name")

	// ErrSystemTransaction is returned when deleting an auto-posted transaction.
	// Recurring instances change only via their recurring definition.
	ErrSystemTransaction = errors.New("system transactions cannot be edited directly")

	// ErrContributionTransaction is returned when deleting a contribution.
	// Savings are taken back out via a withdrawal, not by rewriting history.
	ErrContributionTransaction = errors.New("contributions are reversed by a withdrawal")

	// ErrNonPositiveAmount is returned for zero or negative money inputs.
	ErrNonPositiveAmount = errors.New("amount must be positive")
)

// =============================================================================
// REJECTION - Structured guard outcome
// =============================================================================

// Rejection is a guard rule denying a proposed mutation. It carries the rule
// that fired, a human-readable reason, and the numeric limit that was
// violated. Always recoverable.
type Rejection struct {
	Rule      string
	Reason    string
	Limit     decimal.Decimal
	Requested decimal.Decimal
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s (limit %s, requested %s)",
		r.Rule, r.Reason, r.Limit.StringFixed(2), r.Requested.StringFixed(2))
}

func (r *Rejection) Unwrap() error { return ErrRejected }

// AsRejection extracts a Rejection from an error chain.
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

// IsClientError reports whether the error is due to invalid caller input
// rather than a system failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrRejected) ||
		errors.Is(err, ErrUnknownCategory) ||
		errors.Is(err, ErrUnknownTransaction) ||
		errors.Is(err, ErrUnknownIncomeSource) ||
		errors.Is(err, ErrUnknownGoal) ||
		errors.Is(err, ErrDuplicateCategory) ||
		errors.Is(err, ErrReservedCategory) ||
		errors.Is(err, ErrSystemTransaction) ||
		errors.Is(err, ErrContributionTransaction) ||
		errors.Is(err, ErrNonPositiveAmount)
}
