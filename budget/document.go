/*
document.go - Document lifecycle: seeding and load-boundary normalization

PURPOSE:
  A document is created once per user with seeded defaults, then
  read-modify-written forever after. Documents written by older versions
  of the app can be missing whole collections or carry duck-typed fields;
  Normalize migrates them to the current schema exactly once at the load
  boundary so the engines never branch on shape.

MIGRATION RULES:
  - Missing collections become empty; missing numerics stay zero
  - Bare-number bills become {amount, day_of_month: 1} (see Bill.UnmarshalJSON)
  - Every category gets entries in base_allocations/allocations/spent
  - Every goal name is also a category (with zero allocation)
  - schema_version is stamped to the current version

SEE ALSO:
  - reconcile.go: Runs Normalize as its first step
*/
package budget

import (
	"github.com/shopspring/decimal"
)

// NewDocument returns the seeded first document for a user.
func NewDocument(now Date) Document {
	alloc := func() map[string]decimal.Decimal {
		return map[string]decimal.Decimal{
			"Food":    decimal.NewFromInt(300),
			"Fuel":    decimal.NewFromInt(150),
			"Leisure": decimal.NewFromInt(100),
		}
	}
	return Document{
		Schema:        SchemaVersion,
		MonthlyIncome: decimal.NewFromInt(2000),
		Bills: map[string]Bill{
			"Rent":        {Amount: decimal.NewFromInt(800), DayOfMonth: 1},
			"Council Tax": {Amount: decimal.NewFromInt(150), DayOfMonth: 1},
		},
		Categories:      []string{"Food", "Fuel", "Leisure"},
		BaseAllocations: alloc(),
		Allocations:     alloc(),
		Spent: map[string]decimal.Decimal{
			"Food":    decimal.Zero,
			"Fuel":    decimal.Zero,
			"Leisure": decimal.Zero,
		},
		Transactions: []Transaction{},
		CustomGoals:  []Goal{},
		LastMonth:    int(now.Month),
	}
}

// Normalize migrates a loaded document to the current schema. It never fails:
// malformed-but-present fields are clamped to usable defaults. Returns the
// migrated document and whether anything changed (so the caller knows to
// persist).
func Normalize(doc Document) (Document, bool) {
	d := doc.Clone()
	changed := false

	if d.Bills == nil {
		d.Bills = map[string]Bill{}
		changed = true
	}
	if d.BaseAllocations == nil {
		d.BaseAllocations = map[string]decimal.Decimal{}
		changed = true
	}
	if d.Allocations == nil {
		d.Allocations = map[string]decimal.Decimal{}
		changed = true
	}
	if d.Spent == nil {
		d.Spent = map[string]decimal.Decimal{}
		changed = true
	}
	if d.Transactions == nil {
		d.Transactions = []Transaction{}
		changed = true
	}
	if d.CustomGoals == nil {
		d.CustomGoals = []Goal{}
		changed = true
	}

	// A recurring definition without a due day is due on the 1st.
	for name, b := range d.Bills {
		if b.DayOfMonth < 1 {
			b.DayOfMonth = 1
			d.Bills[name] = b
			changed = true
		}
	}
	for i, src := range d.IncomeSources {
		if src.DayOfMonth < 1 {
			d.IncomeSources[i].DayOfMonth = 1
			changed = true
		}
	}

	// Every goal is also a category so it participates in allocation pacing.
	for _, g := range d.CustomGoals {
		if !d.HasCategory(g.Name) {
			d.Categories = append(d.Categories, g.Name)
			changed = true
		}
	}

	// Every category has entries in the three allocation maps.
	for _, c := range d.Categories {
		if _, ok := d.BaseAllocations[c]; !ok {
			d.BaseAllocations[c] = decimal.Zero
			changed = true
		}
		if _, ok := d.Allocations[c]; !ok {
			d.Allocations[c] = decimal.Zero
			changed = true
		}
		if _, ok := d.Spent[c]; !ok {
			d.Spent[c] = decimal.Zero
			changed = true
		}
	}

	if d.Schema < SchemaVersion {
		d.Schema = SchemaVersion
		changed = true
	}
	return d, changed
}
