package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS memory (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS memory_session ON memory(session_id, id);`

// KV is the durable key-value surface the client persists through.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Turn is one recorded exchange line in the server's memory table.
type Turn struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type Database struct {
	db *sql.DB
}

func New(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Database{db: db}, nil
}

func (db *Database) Close() error {
	return db.db.Close()
}

func (db *Database) Get(key string) (string, bool, error) {
	var value string
	err := db.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return value, true, nil
}

func (db *Database) Set(key, value string) error {
	query := `
        INSERT INTO kv (key, value, updated_at)
        VALUES (?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	if _, err := db.db.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

func (db *Database) Delete(key string) error {
	if _, err := db.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

func (db *Database) SaveMessage(turn *Turn) error {
	query := `
        INSERT INTO memory (session_id, role, content, created_at)
        VALUES (?, ?, ?, CURRENT_TIMESTAMP)
        RETURNING id, created_at`

	return db.db.QueryRow(query, turn.SessionID, turn.Role, turn.Content).Scan(&turn.ID, &turn.CreatedAt)
}

// LoadMessages returns a session's turns oldest first.
func (db *Database) LoadMessages(sessionID string) ([]Turn, error) {
	rows, err := db.db.Query(`
        SELECT id, session_id, role, content, created_at
        FROM memory
        WHERE session_id = ?
        ORDER BY id ASC`, sessionID)
	if err != nil {
		return []Turn{}, err
	}
	defer rows.Close()

	turns := make([]Turn, 0)
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Role, &t.Content, &t.CreatedAt); err != nil {
			return []Turn{}, err
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// ResetMemory drops every recorded turn, or only one session's when sessionID is set.
func (db *Database) ResetMemory(sessionID string) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if sessionID == "" {
		res, err = db.db.Exec("DELETE FROM memory")
	} else {
		res, err = db.db.Exec("DELETE FROM memory WHERE session_id = ?", sessionID)
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
