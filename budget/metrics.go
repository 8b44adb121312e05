/*
metrics.go - Derived dashboard figures

PURPOSE:
  ComputeMetrics turns a (reconciled) document plus the current day into
  every figure the dashboard shows and every guard rule reads. This is the
  single most load-bearing routine in the engine: its inclusion/exclusion
  rules decide what counts as spending, so they gate every mutation.

SPENDING SEMANTICS:
  Three distinct notions of "spent" coexist on purpose:

  realSpent[c]   Current-month spend charged against c's allocation.
                 Excludes income, bills, and withdrawals OUT of savings
                 (a withdrawal is not budget spend - the money was set
                 aside in an earlier month). Contributions INTO savings
                 are included: they consume this month's allocation.

  totalSpent     Outward cash leaving the user this month: category spend
                 minus internal transfers, plus bills.

  overspend      Sum of every category's excess over its allocation.
                 Punitively clawed back from free cash.

EMERGENCY FUND:
  Balance is derived: lifetime deposits minus all-time non-contribution
  withdrawals. Goals, by contrast, carry their own running balance.
*/
package budget

import (
	"time"

	"github.com/shopspring/decimal"
)

// Metrics is the full set of derived financial figures for one month.
type Metrics struct {
	// Income
	TotalIncome      decimal.Decimal // received + still scheduled this month
	ProjectedIncome  decimal.Decimal // scheduled but not yet received
	Effective        decimal.Decimal // TotalIncome + rollover
	DisposableIncome decimal.Decimal // TotalIncome - bills

	// Commitments
	Bills          decimal.Decimal
	TotalAllocated decimal.Decimal

	// Spending
	RealSpent          map[string]decimal.Decimal
	TotalSpent         decimal.Decimal
	TotalContributions decimal.Decimal
	Overspend          decimal.Decimal

	// Headline figures
	FreeCash           decimal.Decimal // the "unused balance"
	Unallocated        decimal.Decimal // free cash before overspend clawback
	AllocatedRemaining decimal.Decimal

	// Savings
	EmergencyBalance   decimal.Decimal
	EmergencyAllocated decimal.Decimal
	EmergencySpent     decimal.Decimal // contributions this month
	TotalInvested      decimal.Decimal // all-time, investment categories

	// Pacing: how far ahead (+) or behind (-) of the even daily burn each
	// active category is.
	PacingTargets map[string]decimal.Decimal

	Day         int
	DaysInMonth int
}

// ComputeMetrics derives all dashboard figures from the document for now.
func ComputeMetrics(doc Document, now Date) Metrics {
	m := Metrics{
		RealSpent:     map[string]decimal.Decimal{},
		PacingTargets: map[string]decimal.Decimal{},
		Day:           now.Day,
		DaysInMonth:   now.DaysInMonth(),
	}

	incomeFromTx := incomeReceived(doc, now.Year, now.Month)
	for _, src := range doc.IncomeSources {
		if src.DayOfMonth > now.Day {
			m.ProjectedIncome = m.ProjectedIncome.Add(src.Amount)
		}
	}
	m.TotalIncome = incomeFromTx.Add(m.ProjectedIncome)
	if len(doc.IncomeSources) == 0 {
		m.TotalIncome = m.TotalIncome.Add(doc.MonthlyIncome)
	}
	m.Effective = m.TotalIncome.Add(doc.IncomeRollover)

	m.Bills = doc.BillsTotal()
	m.DisposableIncome = m.TotalIncome.Sub(m.Bills)

	for _, c := range doc.Categories {
		m.TotalAllocated = m.TotalAllocated.Add(doc.Allocations[c])
	}
	m.Unallocated = m.Effective.Sub(m.Bills).Sub(m.TotalAllocated)

	m.RealSpent = categorySpend(doc, now.Year, now.Month)

	spentAcrossCategories := decimal.Zero
	for _, amount := range m.RealSpent {
		spentAcrossCategories = spentAcrossCategories.Add(amount)
	}
	for _, tx := range doc.Transactions {
		if tx.IsContribution && tx.InMonth(now.Year, now.Month) {
			m.TotalContributions = m.TotalContributions.Add(tx.Amount)
		}
	}
	m.TotalSpent = spentAcrossCategories.Sub(m.TotalContributions).Add(m.Bills)

	for _, c := range doc.Categories {
		if over := m.RealSpent[c].Sub(doc.Allocations[c]); over.IsPositive() {
			m.Overspend = m.Overspend.Add(over)
		}
	}
	m.FreeCash = m.Unallocated.Sub(m.Overspend)
	m.AllocatedRemaining = m.TotalAllocated.Sub(spentAcrossCategories)

	m.EmergencyBalance = emergencyBalance(doc)
	m.EmergencyAllocated = doc.Allocations[CategoryEmergency]
	m.EmergencySpent = m.RealSpent[CategoryEmergency]

	for _, tx := range doc.Transactions {
		if tx.Category == CategoryInvestments || tx.Category == CategoryLegacySavings {
			m.TotalInvested = m.TotalInvested.Add(tx.Amount)
		}
	}

	days := decimal.NewFromInt(int64(m.DaysInMonth))
	day := decimal.NewFromInt(int64(now.Day))
	for _, c := range doc.ActiveCategories() {
		expected := doc.Allocations[c].Div(days).Mul(day)
		m.PacingTargets[c] = expected.Sub(m.RealSpent[c])
	}
	return m
}

// RemainingAllocation is the category's budget left this month.
func (m Metrics) RemainingAllocation(doc Document, category string) decimal.Decimal {
	return doc.Allocations[category].Sub(m.RealSpent[category])
}

// =============================================================================
// SHARED LEDGER VIEWS - Used by both reconcile and metrics
// =============================================================================

// categorySpend sums transaction amounts per category for a calendar month,
// with the realSpent exclusions: income and bills are not category spend,
// and neither are withdrawals out of savings.
func categorySpend(doc Document, year int, month time.Month) map[string]decimal.Decimal {
	out := map[string]decimal.Decimal{}
	for _, tx := range doc.Transactions {
		if !tx.InMonth(year, month) {
			continue
		}
		if tx.Category == CategoryIncome || tx.Category == CategoryBills {
			continue
		}
		if isSavingsWithdrawal(doc, tx) {
			continue
		}
		out[tx.Category] = out[tx.Category].Add(tx.Amount)
	}
	return out
}

// isSavingsWithdrawal reports whether the transaction moves money OUT of a
// goal or the emergency fund. Those appear in the category's own history but
// never count as budget spend.
func isSavingsWithdrawal(doc Document, tx Transaction) bool {
	if tx.IsContribution {
		return false
	}
	return tx.Category == CategoryEmergency || doc.IsGoalCategory(tx.Category)
}

// incomeReceived sums credit events for a calendar month.
func incomeReceived(doc Document, year int, month time.Month) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range doc.Transactions {
		if tx.Category == CategoryIncome && tx.InMonth(year, month) {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// emergencyBalance nets lifetime deposits against all-time withdrawals.
func emergencyBalance(doc Document) decimal.Decimal {
	withdrawn := decimal.Zero
	for _, tx := range doc.Transactions {
		if tx.Category == CategoryEmergency && !tx.IsContribution {
			withdrawn = withdrawn.Add(tx.Amount)
		}
	}
	return doc.EmergencyDeposits.Sub(withdrawn)
}
