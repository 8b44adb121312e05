package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/budget/store"
)

func TestMemory_LoadMissing(t *testing.T) {
	st := store.NewMemory()

	_, ok, err := st.Load(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Error("expected no document for an unknown key")
	}
}

func TestMemory_SaveLoadIsolation(t *testing.T) {
	// GIVEN: A saved document
	// WHEN: Mutating the copy the caller still holds, and the loaded copy
	// THEN: The stored document is unaffected by either

	st := store.NewMemory()
	ctx := context.Background()
	doc := budget.NewDocument(budget.NewDate(2025, time.April, 1))

	if err := st.Save(ctx, "u1", doc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	doc.Categories = append(doc.Categories, "Tampered")

	loaded, ok, err := st.Load(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if loaded.HasCategory("Tampered") {
		t.Error("store must hold its own copy, not the caller's")
	}

	loaded.Categories = append(loaded.Categories, "Tampered")
	again, _, _ := st.Load(ctx, "u1")
	if again.HasCategory("Tampered") {
		t.Error("loaded documents must be independent copies")
	}
}

func TestMemory_SubscribeAndCancel(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	doc := budget.NewDocument(budget.NewDate(2025, time.April, 1))

	notified := 0
	cancel := st.Subscribe("u1", func(budget.Document) { notified++ })

	if err := st.Save(ctx, "u1", doc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := st.Save(ctx, "other", doc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if notified != 1 {
		t.Errorf("notifications: want 1 (own key only), got %d", notified)
	}

	cancel()
	if err := st.Save(ctx, "u1", doc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if notified != 1 {
		t.Errorf("notifications after cancel: want 1, got %d", notified)
	}
}
