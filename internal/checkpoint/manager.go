// ABOUTME: Process-wide checkpoint store lifecycle: lazy, idempotent acquire and explicit release.
// ABOUTME: One connection pool per process; repeated acquires return the same store handle.

package checkpoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Pool bounds. The pool keeps one idle connection warm and never exceeds
// twenty; acquisition beyond that blocks up to the connect timeout.
const (
	poolMinConns       = 1
	poolMaxConns       = 20
	poolConnectTimeout = 30 * time.Second
)

// ErrCheckpointer wraps any failure during lazy store initialization. The
// store is unusable for the rest of the process once this is returned; there
// is no automatic retry or rollback of the partial state.
var ErrCheckpointer = errors.New("checkpointer error")

// Manager owns the process-wide checkpoint store. Acquire is idempotent:
// concurrent or repeated calls after the first success return the same
// handle without re-running setup.
type Manager struct {
	mu     sync.Mutex
	path   string
	db     *sql.DB
	store  *Store
	logger *slog.Logger
}

// NewManager creates a manager for a store at the given path. Nothing is
// opened until the first Acquire.
func NewManager(path string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		path:   path,
		logger: logger.With("component", "checkpoint"),
	}
}

// Acquire returns the checkpoint store, lazily creating the connection pool
// and running one-time schema setup on first use.
func (m *Manager) Acquire(ctx context.Context) (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store != nil {
		return m.store, nil
	}

	if m.db == nil {
		db, err := m.openPool()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCheckpointer, err)
		}
		m.db = db
	}

	store := newStore(m.db)
	if err := store.setup(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCheckpointer, err)
	}

	m.store = store
	m.logger.Info("checkpoint store initialized", "path", m.path)
	return m.store, nil
}

func (m *Manager) openPool() (*sql.DB, error) {
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating checkpoint directory: %w", err)
	}

	db, err := sql.Open("sqlite", m.path)
	if err != nil {
		return nil, fmt.Errorf("opening checkpoint database: %w", err)
	}

	db.SetMaxOpenConns(poolMaxConns)
	db.SetMaxIdleConns(poolMinConns)
	db.SetConnMaxIdleTime(poolConnectTimeout)

	// Autocommit with WAL; busy_timeout bounds connection acquisition under
	// write contention.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d", poolConnectTimeout.Milliseconds())); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return db, nil
}

// Release closes the connection pool if present. Safe to call when never
// initialized; close errors are logged, never propagated, because teardown
// must not crash shutdown.
func (m *Manager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return
	}
	if err := m.db.Close(); err != nil {
		m.logger.Error("closing checkpoint pool", "error", err)
	}
	m.db = nil
	m.store = nil
}
