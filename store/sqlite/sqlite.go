/*
Package sqlite provides a SQLite-backed implementation of budget.Store.

PURPOSE:
  Persists one JSON budget document per user key. The document shape is the
  schema contract; SQLite only sees an opaque blob plus bookkeeping columns,
  so schema evolution happens entirely in budget.Normalize.

CHANGE NOTIFICATION:
  The system is single-process, single-writer-per-user, so Subscribe is an
  in-process hub: every successful Save notifies the key's subscribers.
  A multi-process deployment would replace this with the store's own
  notification channel (LISTEN/NOTIFY on PostgreSQL, snapshots on Firestore).

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  st, err := sqlite.New("./data/budget.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

SEE ALSO:
  - budget/store.go: Interface definition
  - budget/store/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/budget-engine/budget"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	user_key   TEXT PRIMARY KEY,
	doc        TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

type Store struct {
	db *sql.DB

	mu          sync.Mutex
	subscribers map[string]map[int]func(budget.Document)
	nextSub     int
}

func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &Store{
		db:          db,
		subscribers: make(map[string]map[int]func(budget.Document)),
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Load(ctx context.Context, key string) (budget.Document, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM documents WHERE user_key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return budget.Document{}, false, nil
	}
	if err != nil {
		return budget.Document{}, false, fmt.Errorf("load document %q: %w", key, err)
	}

	var doc budget.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return budget.Document{}, false, fmt.Errorf("decode document %q: %w", key, err)
	}
	return doc, true, nil
}

func (s *Store) Save(ctx context.Context, key string, doc budget.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %q: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (user_key, doc, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_key) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		key, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save document %q: %w", key, err)
	}

	s.notify(key, doc)
	return nil
}

func (s *Store) Subscribe(key string, fn func(budget.Document)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subscribers[key] == nil {
		s.subscribers[key] = make(map[int]func(budget.Document))
	}
	id := s.nextSub
	s.nextSub++
	s.subscribers[key][id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers[key], id)
	}
}

func (s *Store) notify(key string, doc budget.Document) {
	s.mu.Lock()
	var fns []func(budget.Document)
	for _, fn := range s.subscribers[key] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(doc.Clone())
	}
}
