package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.New(filepath.Join(t.TempDir(), "budget.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestStore_RoundTrip(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	_, ok, err := st.Load(ctx, "u1")
	require.NoError(t, err)
	require.False(t, ok)

	doc := budget.NewDocument(budget.NewDate(2025, time.April, 1))
	doc.Transactions = []budget.Transaction{{
		ID:        "tx-1",
		Amount:    decimal.NewFromInt(120),
		Category:  budget.CategoryIncome,
		Timestamp: budget.NewDate(2025, time.April, 1).ISO(),
	}}
	require.NoError(t, st.Save(ctx, "u1", doc))

	loaded, ok, err := st.Load(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, loaded.MonthlyIncome.Equal(doc.MonthlyIncome))
	require.Len(t, loaded.Transactions, 1)
	require.Equal(t, "tx-1", loaded.Transactions[0].ID)
	require.Equal(t, doc.LastMonth, loaded.LastMonth)
}

func TestStore_SaveOverwrites(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	doc := budget.NewDocument(budget.NewDate(2025, time.April, 1))
	require.NoError(t, st.Save(ctx, "u1", doc))

	doc.Categories = append(doc.Categories, "Subscriptions")
	require.NoError(t, st.Save(ctx, "u1", doc))

	loaded, ok, err := st.Load(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, loaded.HasCategory("Subscriptions"))
}

func TestStore_SaveNotifiesSubscribers(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	var got []budget.Document
	cancel := st.Subscribe("u1", func(doc budget.Document) { got = append(got, doc) })

	doc := budget.NewDocument(budget.NewDate(2025, time.April, 1))
	require.NoError(t, st.Save(ctx, "u1", doc))
	require.Len(t, got, 1)

	cancel()
	require.NoError(t, st.Save(ctx, "u1", doc))
	require.Len(t, got, 1)
}
