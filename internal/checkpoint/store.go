// ABOUTME: Durable conversation state store over SQLite, keyed by thread id.
// ABOUTME: Persists the transcript, the rolling summary, and any pending interrupt.

package checkpoint

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/docketry/docket-gateway/internal/llm"
)

// State is one thread's durable conversation state. It is owned by the store:
// the orchestration core mutates it only between Load and Save of one turn.
type State struct {
	Messages []llm.Message `json:"messages"`
	Summary  string        `json:"summary,omitempty"`
	Pending  *Pending      `json:"pending,omitempty"`
}

// Pending is a suspended tool invocation awaiting a human reply. It carries
// everything needed to resume in a fresh process: the suspended agent, the
// tool call, and the sub-agent transcript accumulated so far.
type Pending struct {
	Agent         string          `json:"agent"`
	ToolCallID    string          `json:"tool_call_id"`
	ToolName      string          `json:"tool_name"`
	Input         json.RawMessage `json:"input"`
	Payload       string          `json:"payload"`
	SubMessages   []llm.Message   `json:"sub_messages,omitempty"`
	HandoffCallID string          `json:"handoff_call_id,omitempty"`
	HandoffAck    string          `json:"handoff_ack,omitempty"`
}

// Store reads and writes conversation state. Safe for concurrent use; the
// underlying pool serializes access.
type Store struct {
	db *sql.DB
}

// newStore wraps the pool. Schema setup happens once via setup().
func newStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// setup creates the checkpoint schema. Called exactly once per process by the
// manager's first successful Acquire.
func (s *Store) setup() error {
	schema := `
		CREATE TABLE IF NOT EXISTS checkpoints (
			thread_id TEXT PRIMARY KEY,
			state BLOB NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("creating checkpoint schema: %w", err)
	}
	return nil
}

// Load returns the state for the given thread. A thread that has never been
// saved yields an empty state, not an error.
func (s *Store) Load(ctx context.Context, threadID string) (*State, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM checkpoints WHERE thread_id = ?`, threadID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return &State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading checkpoint %s: %w", threadID, err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decoding checkpoint %s: %w", threadID, err)
	}
	return &state, nil
}

// Save persists the state for the given thread, replacing any previous state.
func (s *Store) Save(ctx context.Context, threadID string, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding checkpoint %s: %w", threadID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO checkpoints (thread_id, state, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(thread_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		threadID, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving checkpoint %s: %w", threadID, err)
	}
	return nil
}
