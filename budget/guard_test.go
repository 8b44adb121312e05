/*
guard_test.go - Mutation guard rule tests

Each guard is exercised at its exact boundary: the largest accepted amount
and the smallest rejected one, asserting the limit the rejection reports.
*/
package budget_test

import (
	"errors"
	"testing"
	"time"

	"github.com/warp/budget-engine/budget"
)

func rejection(t *testing.T, err error) *budget.Rejection {
	t.Helper()
	if err == nil {
		t.Fatal("expected a rejection, got nil")
	}
	rej, ok := budget.AsRejection(err)
	if !ok {
		t.Fatalf("expected a rejection, got %v", err)
	}
	if !errors.Is(err, budget.ErrRejected) {
		t.Error("rejection should unwrap to ErrRejected")
	}
	return rej
}

// =============================================================================
// EXPENSES
// =============================================================================

func TestCanLogExpense_AllocationBoundary(t *testing.T) {
	// GIVEN: Food allocated 300 with 100 already spent
	// WHEN: Spending exactly the remaining 200, then a penny more
	// THEN: The exact amount passes; the penny more is rejected with the
	//       remaining budget as the limit

	now := budget.NewDate(2025, time.April, 15)
	doc := marchDoc()
	doc.LastMonth = int(time.April)
	doc.Transactions = []budget.Transaction{
		debit("tx-1", "Food", 100, budget.NewDate(2025, time.April, 5)),
	}
	doc.Spent["Food"] = m(100)
	metrics := budget.ComputeMetrics(doc, now)

	if err := budget.CanLogExpense(doc, metrics, "Food", m(200)); err != nil {
		t.Errorf("exact remaining budget should pass: %v", err)
	}

	rej := rejection(t, budget.CanLogExpense(doc, metrics, "Food", m(200.01)))
	equal(t, m(200), rej.Limit, "rejection limit")
	equal(t, m(200.01), rej.Requested, "rejection requested")
}

func TestCanLogExpense_EmergencyWithdrawalNeverOverdraws(t *testing.T) {
	// GIVEN: An emergency fund balance of 380
	// WHEN: Withdrawing 380, then 381
	// THEN: The balance is the hard limit

	now := budget.NewDate(2025, time.April, 15)
	doc := marchDoc()
	doc.LastMonth = int(time.April)
	doc.Categories = append(doc.Categories, budget.CategoryEmergency)
	doc, _ = budget.Normalize(doc)
	doc.EmergencyDeposits = m(500)
	doc.Transactions = []budget.Transaction{
		debit("tx-1", budget.CategoryEmergency, 120, budget.NewDate(2025, time.March, 3)),
	}
	metrics := budget.ComputeMetrics(doc, now)

	if err := budget.CanLogExpense(doc, metrics, budget.CategoryEmergency, m(380)); err != nil {
		t.Errorf("withdrawal of the full balance should pass: %v", err)
	}
	rej := rejection(t, budget.CanLogExpense(doc, metrics, budget.CategoryEmergency, m(381)))
	equal(t, m(380), rej.Limit, "rejection limit")
}

func TestCanLogExpense_GoalWithdrawalCappedByBalance(t *testing.T) {
	// GIVEN: A goal holding 200
	// WHEN: Withdrawing more than the balance
	// THEN: Rejected regardless of the category's allocation

	now := budget.NewDate(2025, time.April, 15)
	doc := marchDoc()
	doc.LastMonth = int(time.April)
	doc.CustomGoals = []budget.Goal{
		{ID: "g1", Name: "Holiday", TargetAmount: m(1000), CurrentAmount: m(200)},
	}
	doc, _ = budget.Normalize(doc)
	doc.Allocations["Holiday"] = m(500)
	metrics := budget.ComputeMetrics(doc, now)

	rej := rejection(t, budget.CanLogExpense(doc, metrics, "Holiday", m(250)))
	equal(t, m(200), rej.Limit, "rejection limit")
}

func TestCanLogExpense_RejectsUnknownCategoryAndBadAmount(t *testing.T) {
	now := budget.NewDate(2025, time.April, 15)
	doc := marchDoc()
	doc.LastMonth = int(time.April)
	metrics := budget.ComputeMetrics(doc, now)

	if err := budget.CanLogExpense(doc, metrics, "Nope", m(10)); !errors.Is(err, budget.ErrUnknownCategory) {
		t.Errorf("want ErrUnknownCategory, got %v", err)
	}
	if err := budget.CanLogExpense(doc, metrics, "Food", m(0)); !errors.Is(err, budget.ErrNonPositiveAmount) {
		t.Errorf("want ErrNonPositiveAmount, got %v", err)
	}
}

// =============================================================================
// DEPOSITS
// =============================================================================

func TestCanDeposit_RejectsFullyFundedTarget(t *testing.T) {
	// GIVEN: A goal already at its target
	// WHEN: Depositing more
	// THEN: Rejected outright

	now := budget.NewDate(2025, time.April, 15)
	doc := marchDoc()
	doc.LastMonth = int(time.April)
	doc.CustomGoals = []budget.Goal{
		{ID: "g1", Name: "Holiday", TargetAmount: m(1000), CurrentAmount: m(1000)},
	}
	doc, _ = budget.Normalize(doc)
	doc.Allocations["Holiday"] = m(500)
	metrics := budget.ComputeMetrics(doc, now)

	rejection(t, budget.CanDeposit(doc, metrics, "Holiday", m(1)))
}

func TestCanDeposit_CappedByMonthlyAllocation(t *testing.T) {
	// GIVEN: A goal category allocated 100 with 40 contributed this month
	// WHEN: Depositing 60, then 61
	// THEN: The remaining allocation is the limit

	now := budget.NewDate(2025, time.April, 15)
	doc := marchDoc()
	doc.LastMonth = int(time.April)
	doc.CustomGoals = []budget.Goal{
		{ID: "g1", Name: "Holiday", TargetAmount: m(1000), CurrentAmount: m(40)},
	}
	doc, _ = budget.Normalize(doc)
	doc.Allocations["Holiday"] = m(100)
	doc.Transactions = []budget.Transaction{{
		ID:             "tx-c",
		Amount:         m(40),
		Category:       "Holiday",
		Timestamp:      budget.NewDate(2025, time.April, 2).ISO(),
		IsContribution: true,
		Type:           budget.TxDebit,
	}}
	metrics := budget.ComputeMetrics(doc, now)

	if err := budget.CanDeposit(doc, metrics, "Holiday", m(60)); err != nil {
		t.Errorf("deposit within the allocation should pass: %v", err)
	}
	rej := rejection(t, budget.CanDeposit(doc, metrics, "Holiday", m(61)))
	equal(t, m(60), rej.Limit, "rejection limit")
}

func TestCanDeposit_RejectsOrdinaryCategory(t *testing.T) {
	now := budget.NewDate(2025, time.April, 15)
	doc := marchDoc()
	doc.LastMonth = int(time.April)
	metrics := budget.ComputeMetrics(doc, now)

	if err := budget.CanDeposit(doc, metrics, "Food", m(10)); !errors.Is(err, budget.ErrUnknownCategory) {
		t.Errorf("want ErrUnknownCategory, got %v", err)
	}
}

// =============================================================================
// BILLS AND ALLOCATIONS
// =============================================================================

func TestCanSetBill_IncrementAgainstUnassignedCash(t *testing.T) {
	// GIVEN: Income 2000, rent 500, Food allocated 300: 1200 unassigned
	// WHEN: Raising rent by more than the unassigned cash
	// THEN: Rejected; the increment, not the full amount, is what counts

	now := budget.NewDate(2025, time.April, 15)
	doc := marchDoc()
	doc.LastMonth = int(time.April)
	metrics := budget.ComputeMetrics(doc, now)
	equal(t, m(1200), metrics.Unallocated, "Unallocated")

	if err := budget.CanSetBill(doc, metrics, "Rent", m(1700)); err != nil {
		t.Errorf("raise within unassigned cash should pass: %v", err)
	}
	rej := rejection(t, budget.CanSetBill(doc, metrics, "Rent", m(1701)))
	equal(t, m(1200), rej.Limit, "rejection limit")
	equal(t, m(1201), rej.Requested, "rejection requested")
}

func TestCanSetBill_LoweringAlwaysAllowed(t *testing.T) {
	// GIVEN: An overcommitted budget (unassigned cash is negative)
	// WHEN: Lowering a bill
	// THEN: Allowed - cutting a bill frees cash and must never be blocked,
	//       even though any increase would be

	now := budget.NewDate(2025, time.April, 15)
	doc := marchDoc()
	doc.LastMonth = int(time.April)
	doc.Allocations["Food"] = m(1700)
	metrics := budget.ComputeMetrics(doc, now)
	equal(t, m(-200), metrics.Unallocated, "Unallocated")

	if err := budget.CanSetBill(doc, metrics, "Rent", m(450)); err != nil {
		t.Errorf("lowering a bill should always pass: %v", err)
	}
	if err := budget.CanSetBill(doc, metrics, "Rent", m(500)); err != nil {
		t.Errorf("keeping a bill unchanged should pass: %v", err)
	}
	rejection(t, budget.CanSetBill(doc, metrics, "Rent", m(501)))
}

func TestCanSetBaseAllocation_DisposableIncomeCap(t *testing.T) {
	// GIVEN: Income 2000 and bills 600: disposable income 1400
	// WHEN: Pushing the base allocation total to 1400, then 1401
	// THEN: The disposable income is the cap on the TOTAL, not the one value

	now := budget.NewDate(2025, time.April, 15)
	doc := marchDoc()
	doc.LastMonth = int(time.April)
	doc.Bills = map[string]budget.Bill{
		"Rent": {Amount: m(600), DayOfMonth: 1},
	}
	doc.Categories = append(doc.Categories, "Fuel")
	doc, _ = budget.Normalize(doc)
	doc.BaseAllocations["Fuel"] = m(400)
	metrics := budget.ComputeMetrics(doc, now)

	// Food 1000 + Fuel 400 = 1400 exactly.
	if err := budget.CanSetBaseAllocation(doc, metrics, "Food", m(1000)); err != nil {
		t.Errorf("total at the cap should pass: %v", err)
	}
	rej := rejection(t, budget.CanSetBaseAllocation(doc, metrics, "Food", m(1001)))
	equal(t, m(1400), rej.Limit, "rejection limit")
	equal(t, m(1401), rej.Requested, "rejection requested")

	if err := budget.CanSetBaseAllocation(doc, metrics, "Food", m(-1)); !errors.Is(err, budget.ErrNonPositiveAmount) {
		t.Errorf("want ErrNonPositiveAmount, got %v", err)
	}
}

// =============================================================================
// CATEGORIES
// =============================================================================

func TestCanDeleteCategory_ProtectsDefaultsAndGoals(t *testing.T) {
	doc := marchDoc()
	doc.Categories = append(doc.Categories, "Subscriptions")
	doc.CustomGoals = []budget.Goal{
		{ID: "g1", Name: "Holiday", TargetAmount: m(1000)},
	}
	doc, _ = budget.Normalize(doc)

	rejection(t, budget.CanDeleteCategory(doc, "Food"))
	rejection(t, budget.CanDeleteCategory(doc, "Holiday"))

	if err := budget.CanDeleteCategory(doc, "Subscriptions"); err != nil {
		t.Errorf("custom category should be deletable: %v", err)
	}
	if err := budget.CanDeleteCategory(doc, "Nope"); !errors.Is(err, budget.ErrUnknownCategory) {
		t.Errorf("want ErrUnknownCategory, got %v", err)
	}
}
