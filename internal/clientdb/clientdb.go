// ABOUTME: SQLite-backed client directory and Google token store using modernc.org/sqlite.
// ABOUTME: Read surface for agent tools: find clients by name, fetch stored OAuth tokens.

package clientdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	_ "modernc.org/sqlite"
)

// ErrTokenNotFound indicates no stored OAuth token exists for the user.
var ErrTokenNotFound = errors.New("token not found")

// Client is one client record owned by a user.
type Client struct {
	ID        string
	UserID    string
	FirstName string
	LastName  string
	Email     string
	Birthdate string // YYYY-MM-DD
}

// Directory provides read access to clients and stored credentials.
type Directory struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates a directory at the given path. The schema is created if it
// doesn't exist; parent directories are created if needed.
func Open(path string) (*Directory, error) {
	logger := slog.Default().With("component", "clientdb")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	d := &Directory{db: db, logger: logger}
	if err := d.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("client directory initialized", "path", path)
	return d, nil
}

func (d *Directory) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS clients (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			firstname TEXT NOT NULL,
			lastname TEXT NOT NULL,
			email TEXT NOT NULL,
			birthdate TEXT,
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_clients_user_name
			ON clients(user_id, firstname, lastname);

		CREATE TABLE IF NOT EXISTS oauth_tokens (
			user_id TEXT NOT NULL,
			provider TEXT NOT NULL,
			token_data BLOB NOT NULL,
			updated_at DATETIME NOT NULL,
			PRIMARY KEY (user_id, provider)
		);
	`
	_, err := d.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (d *Directory) Close() error {
	return d.db.Close()
}

// CreateClient inserts a client record.
func (d *Directory) CreateClient(ctx context.Context, c *Client) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO clients (id, user_id, firstname, lastname, email, birthdate, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.FirstName, c.LastName, c.Email, c.Birthdate, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting client: %w", err)
	}
	return nil
}

// FindClients returns clients matching first and last name, scoped to the
// requesting user. birthdate, when non-empty, narrows the match further.
func (d *Directory) FindClients(ctx context.Context, userID, firstName, lastName, birthdate string) ([]*Client, error) {
	query := `
		SELECT id, user_id, firstname, lastname, email, COALESCE(birthdate, '')
		FROM clients
		WHERE user_id = ? AND firstname = ? AND lastname = ?`
	args := []any{userID, firstName, lastName}
	if birthdate != "" {
		query += " AND birthdate = ?"
		args = append(args, birthdate)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying clients: %w", err)
	}
	defer rows.Close()

	var clients []*Client
	for rows.Next() {
		c := &Client{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.FirstName, &c.LastName, &c.Email, &c.Birthdate); err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// SaveGoogleToken stores the user's Google OAuth token for later sessions.
func (d *Directory) SaveGoogleToken(ctx context.Context, userID string, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	_, err = d.db.ExecContext(ctx, `
		INSERT INTO oauth_tokens (user_id, provider, token_data, updated_at)
		VALUES (?, 'google', ?, ?)
		ON CONFLICT(user_id, provider) DO UPDATE SET token_data = excluded.token_data, updated_at = excluded.updated_at`,
		userID, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return nil
}

// GoogleToken returns the user's stored Google OAuth token, or
// ErrTokenNotFound when the user never authorized.
func (d *Directory) GoogleToken(ctx context.Context, userID string) (*oauth2.Token, error) {
	var data []byte
	err := d.db.QueryRowContext(ctx, `
		SELECT token_data FROM oauth_tokens WHERE user_id = ? AND provider = 'google'`,
		userID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading token: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}
	return &token, nil
}
