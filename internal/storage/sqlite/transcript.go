package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/curugbadak/pasar-desa/backend/internal/model/chat"
)

// TranscriptStore records turns in a local SQLite database.
type TranscriptStore struct {
	db *sql.DB
}

// NewTranscriptStore opens (and creates if needed) the database at dbPath.
func NewTranscriptStore(dbPath string) (*TranscriptStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &TranscriptStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *TranscriptStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS turns (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		text TEXT NOT NULL,
		attachment INTEGER NOT NULL DEFAULT 0,
		fallback INTEGER NOT NULL DEFAULT 0,
		order_json TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, seq);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Append inserts a turn. Re-appending the same turn id is ignored.
func (s *TranscriptStore) Append(ctx context.Context, turn chat.Turn) error {
	var orderJSON any
	if turn.Order != nil {
		raw, err := json.Marshal(turn.Order)
		if err != nil {
			return fmt.Errorf("marshal order of turn %s: %w", turn.ID, err)
		}
		orderJSON = string(raw)
	}

	query := `
	INSERT INTO turns (id, session_id, role, text, attachment, fallback, order_json, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO NOTHING`

	_, err := s.db.ExecContext(ctx, query,
		turn.ID, turn.SessionID, string(turn.Role), turn.Text,
		boolToInt(turn.Attachment), boolToInt(turn.Fallback), orderJSON,
		turn.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert turn %s: %w", turn.ID, err)
	}
	return nil
}

// Load returns the recorded turns of a session in insertion order.
func (s *TranscriptStore) Load(ctx context.Context, sessionID string) ([]chat.Turn, error) {
	query := `
		SELECT id, session_id, role, text, attachment, fallback, order_json, created_at
		FROM turns WHERE session_id = ? ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var turns []chat.Turn
	for rows.Next() {
		var (
			turn                 chat.Turn
			role                 string
			attachment, fallback int
			orderJSON            sql.NullString
			createdAt            int64
		)
		if err := rows.Scan(&turn.ID, &turn.SessionID, &role, &turn.Text, &attachment, &fallback, &orderJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scan turn row: %w", err)
		}
		turn.Role = chat.Role(role)
		turn.Attachment = attachment != 0
		turn.Fallback = fallback != 0
		turn.CreatedAt = time.Unix(0, createdAt).UTC()
		if orderJSON.Valid {
			var proposal chat.OrderProposal
			if err := json.Unmarshal([]byte(orderJSON.String), &proposal); err != nil {
				return nil, fmt.Errorf("decode order of turn %s: %w", turn.ID, err)
			}
			turn.Order = &proposal
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}
	return turns, nil
}

// Close closes the database.
func (s *TranscriptStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
