package budget

import "context"

// Store is the external document store, keyed by user. The engine treats it
// as an opaque read-snapshot/write-full-document collaborator with change
// notification; all budget semantics live on this side of the boundary.
//
// Implementations:
//   - budget/store: in-memory, for tests and dev
//   - store/sqlite: production, one JSON document per user
type Store interface {
	// Load returns the document for key, or ok=false when none exists yet.
	Load(ctx context.Context, key string) (doc Document, ok bool, err error)

	// Save writes the full document for key, replacing any previous version.
	Save(ctx context.Context, key string, doc Document) error

	// Subscribe registers fn to run after every Save for key. The returned
	// cancel func unregisters it. Notifications may be redundant or stale;
	// subscribers must tolerate replays (Reconcile is idempotent for this
	// reason).
	Subscribe(key string, fn func(Document)) (cancel func())
}
