/*
reconcile.go - Month-end rollover and recurring auto-posting

PURPOSE:
  Reconcile brings a stored document up to date for "today". It is called
  on every load and on every store notification, so it must be pure,
  deterministic and idempotent: calling it twice with the same day yields
  no further change.

STEPS (order matters):
  1. Normalize - migrate legacy shape, backfill missing fields
  2. Rollover  - when the stored month differs from the current month,
     carry each category's leftover (or overspend) onto its fresh base
     allocation and fold the month's unspent cash into income_rollover
  3. Auto-post - synthesize system transactions for bills and income
     sources whose due day has passed this month

IDEMPOTENCY:
  Auto-posted transactions use a deterministic ID derived from
  (kind, name, year, month). Posting checks for the ID before prepending,
  so reconciling once per day for a whole month posts each bill exactly
  once. This is the same idempotency-key discipline as any append-only
  ledger: retries are expected and harmless.

HISTORY:
  Rollover does NOT clear transaction history. All monthly figures are
  derived from date-filtered views of the retained ledger.
*/
package budget

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Reconcile returns the document brought up to date for now, and whether it
// changed. Callers persist only when changed.
func Reconcile(doc Document, now Date) (Document, bool) {
	d, changed := Normalize(doc)

	if rolled := rollover(&d, now); rolled {
		changed = true
	}
	if posted := postRecurring(&d, now); posted {
		changed = true
	}
	return d, changed
}

// rollover performs the month transition. Triggers only when a previous
// month is recorded and differs from the current one.
func rollover(d *Document, now Date) bool {
	if d.LastMonth == 0 {
		// First reconcile for this document: anchor to the current month.
		d.LastMonth = int(now.Month)
		return true
	}
	if d.LastMonth == int(now.Month) {
		return false
	}

	prevYear, prevMonth := now.PrevMonth()
	prevSpent := categorySpend(*d, prevYear, prevMonth)

	prevIncome := incomeReceived(*d, prevYear, prevMonth)
	if len(d.IncomeSources) == 0 {
		// Legacy single-source documents carry income as a flat figure.
		prevIncome = prevIncome.Add(d.MonthlyIncome)
	}

	totalSpent := decimal.Zero
	for _, amount := range prevSpent {
		totalSpent = totalSpent.Add(amount)
	}

	// Whatever the month did not consume (or overconsumed) carries forward.
	unspent := prevIncome.Add(d.IncomeRollover).Sub(d.BillsTotal()).Sub(totalSpent)

	for _, c := range d.Categories {
		carryover := d.Allocations[c].Sub(prevSpent[c])
		d.Allocations[c] = d.BaseAllocations[c].Add(carryover)
		d.Spent[c] = decimal.Zero
	}

	d.IncomeRollover = unspent
	d.LastMonth = int(now.Month)
	return true
}

// postRecurring synthesizes system transactions for every recurring item
// whose due day has passed this month and which has not been posted yet.
func postRecurring(d *Document, now Date) bool {
	posted := false

	// Bills in name order so repeated reconciles produce identical documents.
	names := make([]string, 0, len(d.Bills))
	for name := range d.Bills {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		bill := d.Bills[name]
		due := dueDay(bill.DayOfMonth, now)
		if due > now.Day {
			continue
		}
		id := systemTxID("bill", name, now)
		if d.HasTransaction(id) {
			continue
		}
		d.Transactions = append([]Transaction{{
			ID:          id,
			Amount:      bill.Amount,
			Category:    CategoryBills,
			Description: name,
			Timestamp:   NewDate(now.Year, now.Month, due).ISO(),
			IsSystem:    true,
			Type:        TxDebit,
		}}, d.Transactions...)
		posted = true
	}

	for _, src := range d.IncomeSources {
		due := dueDay(src.DayOfMonth, now)
		if due > now.Day {
			continue
		}
		id := systemTxID("income", src.Name, now)
		if d.HasTransaction(id) {
			continue
		}
		d.Transactions = append([]Transaction{{
			ID:          id,
			Amount:      src.Amount,
			Category:    CategoryIncome,
			Description: src.Name,
			Timestamp:   NewDate(now.Year, now.Month, due).ISO(),
			IsSystem:    true,
			Type:        TxCredit,
		}}, d.Transactions...)
		posted = true
	}
	return posted
}

// dueDay clamps a scheduled day into the current month, so a bill due on
// the 31st still posts in February.
func dueDay(day int, now Date) int {
	if max := now.DaysInMonth(); day > max {
		return max
	}
	return day
}

// systemTxID is the deterministic identifier for an auto-posted instance of
// a recurring item: one per (kind, name, year, month).
func systemTxID(kind, name string, now Date) string {
	return fmt.Sprintf("sys-%s-%s-%04d-%02d", kind, slug(name), now.Year, int(now.Month))
}

func slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}
