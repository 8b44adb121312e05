/*
Package session runs the load → migrate → reconcile → persist → metrics
pipeline over the document store.

PURPOSE:
  The budget package is pure; this package is the stateful boundary around
  it. A Session owns the store and the clock and exposes three operations:

    Open    load-or-seed a user's document, reconcile it, persist if
            changed, and return a Snapshot (document + metrics)
    Update  the single guarded write path: read, apply a mutation
            function, persist, return the fresh Snapshot
    Watch   subscribe to store notifications and push reconciled
            Snapshots to a callback - the push/subscribe pattern mapped
            to a message-passing boundary instead of shared state

IDEMPOTENCY:
  The store may notify with stale or repeated snapshots; Reconcile is
  idempotent so running the pipeline again is always safe. Persist happens
  only when reconciliation actually changed the document, which also keeps
  Watch from looping on its own writes.
*/
package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/warp/budget-engine/budget"
)

// Snapshot is one consistent view of a user's budget: the reconciled
// document and the metrics derived from it.
type Snapshot struct {
	Document budget.Document
	Metrics  budget.Metrics
}

// Mutation transforms a document. It must be pure; a non-nil error leaves
// the stored document untouched.
type Mutation func(budget.Document) (budget.Document, error)

type Session struct {
	store budget.Store
	clock budget.Clock
	log   zerolog.Logger
}

func New(store budget.Store, clock budget.Clock, log zerolog.Logger) *Session {
	return &Session{store: store, clock: clock, log: log}
}

// Open loads the user's document, seeding a default one on first access,
// reconciles it for today and persists the result when it changed.
func (s *Session) Open(ctx context.Context, key string) (Snapshot, error) {
	now := s.clock.Today()

	doc, ok, err := s.store.Load(ctx, key)
	if err != nil {
		return Snapshot{}, fmt.Errorf("open %q: %w", key, err)
	}
	if !ok {
		doc = budget.NewDocument(now)
		if err := s.store.Save(ctx, key, doc); err != nil {
			return Snapshot{}, fmt.Errorf("seed %q: %w", key, err)
		}
		s.log.Info().Str("user", key).Msg("seeded new budget document")
	}

	reconciled, changed := budget.Reconcile(doc, now)
	if changed {
		if err := s.store.Save(ctx, key, reconciled); err != nil {
			return Snapshot{}, fmt.Errorf("persist reconciled %q: %w", key, err)
		}
		s.log.Info().Str("user", key).Str("day", now.String()).Msg("reconciled budget document")
	}

	return Snapshot{
		Document: reconciled,
		Metrics:  budget.ComputeMetrics(reconciled, now),
	}, nil
}

// Update applies a mutation through the guarded write path and returns the
// resulting snapshot. The document seen by the mutation is already
// reconciled for today.
func (s *Session) Update(ctx context.Context, key string, mutate Mutation) (Snapshot, error) {
	snap, err := s.Open(ctx, key)
	if err != nil {
		return Snapshot{}, err
	}

	updated, err := mutate(snap.Document)
	if err != nil {
		return Snapshot{}, err
	}

	if err := s.store.Save(ctx, key, updated); err != nil {
		return Snapshot{}, fmt.Errorf("persist update %q: %w", key, err)
	}

	now := s.clock.Today()
	return Snapshot{
		Document: updated,
		Metrics:  budget.ComputeMetrics(updated, now),
	}, nil
}

// Watch pushes a fresh Snapshot to fn for the current state and after every
// external change to the document. Returns a cancel func.
func (s *Session) Watch(ctx context.Context, key string, fn func(Snapshot)) (func(), error) {
	snap, err := s.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	fn(snap)

	cancel := s.store.Subscribe(key, func(doc budget.Document) {
		now := s.clock.Today()
		reconciled, changed := budget.Reconcile(doc, now)
		if changed {
			// Persisting triggers another notification carrying the
			// reconciled document; push then, not now.
			if err := s.store.Save(ctx, key, reconciled); err != nil {
				s.log.Error().Err(err).Str("user", key).Msg("persist on notify failed")
			}
			return
		}
		fn(Snapshot{
			Document: reconciled,
			Metrics:  budget.ComputeMetrics(reconciled, now),
		})
	})
	return cancel, nil
}
