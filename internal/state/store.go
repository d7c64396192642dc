// Package state provides durable SQLite-backed storage for quorum
// conversations, messages, and per-message pipeline stages.
package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Dicklesworthstone/quorum/internal/modes"
)

// Conversation is one persisted conversation. Messages are populated only by
// GetConversation.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Mode      string    `json:"mode"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Messages  []Message `json:"messages,omitempty"`
}

// Message is one user or assistant turn. Stages are populated only for
// assistant messages that ran a pipeline.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	Mode           string    `json:"mode,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	Stages         []Stage   `json:"stages,omitempty"`
}

// Stage is one persisted pipeline stage row. ParsedData is the stage's parsed
// payload re-serialized as JSON text.
type Stage struct {
	ID             int64           `json:"id"`
	MessageID      string          `json:"message_id"`
	StageType      string          `json:"stage_type"`
	StageOrder     int             `json:"stage_order"`
	Model          string          `json:"model,omitempty"`
	Role           string          `json:"role,omitempty"`
	Content        string          `json:"content"`
	ParsedData     json.RawMessage `json:"parsed_data,omitempty"`
	ResponseTimeMS int64           `json:"response_time_ms,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Store wraps the SQLite handle. All access is serialized through the mutex;
// SQLite handles concurrent readers but a single writer.
type Store struct {
	mu sync.RWMutex
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	mode       TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	role            TEXT NOT NULL,
	content         TEXT NOT NULL,
	mode            TEXT,
	created_at      TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS stages (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	message_id       TEXT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
	stage_type       TEXT NOT NULL,
	stage_order      INTEGER NOT NULL,
	model            TEXT,
	role             TEXT,
	content          TEXT NOT NULL,
	parsed_data      TEXT,
	response_time_ms INTEGER,
	created_at       TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, created_at);
CREATE INDEX IF NOT EXISTS idx_stages_message ON stages(message_id, stage_order);
`

// Open opens (or creates) the SQLite database at path and applies the schema.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Exchange is one completed question/answer round to persist atomically: the
// conversation row (created on first sight), the user turn, the assistant
// turn, and every pipeline stage.
type Exchange struct {
	ConversationID string
	Title          string
	Mode           string
	MessageID      string
	Question       string
	Answer         string
	Stages         []modes.StageRecord
}

// SaveExchange persists one round in a single transaction. On a fresh
// conversation the title and mode are taken from the exchange; on later
// rounds only updated_at moves.
func (s *Store) SaveExchange(ex *Exchange) error {
	if s == nil || s.db == nil {
		return errors.New("store is nil")
	}
	if ex == nil {
		return errors.New("exchange is nil")
	}
	if ex.ConversationID == "" || ex.MessageID == "" {
		return errors.New("conversation id and message id are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := func() error {
		result, err := tx.Exec(`UPDATE conversations SET updated_at = ? WHERE id = ?`, now, ex.ConversationID)
		if err != nil {
			return fmt.Errorf("touch conversation: %w", err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			title := ex.Title
			if title == "" {
				title = "New Conversation"
			}
			if _, err := tx.Exec(`
				INSERT INTO conversations (id, title, mode, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?)`,
				ex.ConversationID, title, ex.Mode, now, now,
			); err != nil {
				return fmt.Errorf("insert conversation: %w", err)
			}
		}

		if _, err := tx.Exec(`
			INSERT INTO messages (id, conversation_id, role, content, mode, created_at)
			VALUES (?, ?, 'user', ?, ?, ?)`,
			ex.MessageID+"-q", ex.ConversationID, ex.Question, ex.Mode, now,
		); err != nil {
			return fmt.Errorf("insert user message: %w", err)
		}
		if _, err := tx.Exec(`
			INSERT INTO messages (id, conversation_id, role, content, mode, created_at)
			VALUES (?, ?, 'assistant', ?, ?, ?)`,
			ex.MessageID, ex.ConversationID, ex.Answer, ex.Mode, now,
		); err != nil {
			return fmt.Errorf("insert assistant message: %w", err)
		}

		if len(ex.Stages) == 0 {
			return nil
		}
		stmt, err := tx.Prepare(`
			INSERT INTO stages
				(message_id, stage_type, stage_order, model, role, content, parsed_data, response_time_ms, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare stage insert: %w", err)
		}
		defer stmt.Close()

		for _, stage := range ex.Stages {
			parsed := sql.NullString{}
			if stage.ParsedData != nil {
				raw, err := json.Marshal(stage.ParsedData)
				if err != nil {
					return fmt.Errorf("marshal stage %s parsed data: %w", stage.StageType, err)
				}
				parsed = sql.NullString{String: string(raw), Valid: true}
			}
			if _, err := stmt.Exec(
				ex.MessageID,
				stage.StageType,
				stage.StageOrder,
				stage.Model,
				stage.Role,
				stage.Content,
				parsed,
				stage.ResponseTimeMS,
				now,
			); err != nil {
				return fmt.Errorf("insert stage %s: %w", stage.StageType, err)
			}
		}
		return nil
	}(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// SetTitle replaces a conversation's title.
func (s *Store) SetTitle(conversationID, title string) error {
	if s == nil || s.db == nil {
		return errors.New("store is nil")
	}
	if conversationID == "" {
		return errors.New("conversation id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(`UPDATE conversations SET title = ? WHERE id = ?`, title, conversationID)
	if err != nil {
		return fmt.Errorf("update title: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("conversation not found: %s", conversationID)
	}
	return nil
}

// GetConversation fetches one conversation with its messages and their
// stages, in chronological and stage order. Returns nil when absent.
func (s *Store) GetConversation(id string) (*Conversation, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store is nil")
	}
	if id == "" {
		return nil, errors.New("conversation id is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var c Conversation
	err := s.db.QueryRow(`
		SELECT id, title, mode, created_at, updated_at
		FROM conversations WHERE id = ?`, id,
	).Scan(&c.ID, &c.Title, &c.Mode, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT id, conversation_id, role, content, COALESCE(mode, ''), created_at
		FROM messages WHERE conversation_id = ?
		ORDER BY created_at, rowid`, id)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.Mode, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		c.Messages = append(c.Messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	for i := range c.Messages {
		if c.Messages[i].Role != "assistant" {
			continue
		}
		stages, err := s.fetchStages(c.Messages[i].ID)
		if err != nil {
			return nil, err
		}
		c.Messages[i].Stages = stages
	}
	return &c, nil
}

// ListConversations returns all conversations, newest activity first, without
// messages.
func (s *Store) ListConversations() ([]Conversation, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store is nil")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, title, mode, created_at, updated_at
		FROM conversations
		ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.Title, &c.Mode, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteConversation removes a conversation with its messages and stages.
func (s *Store) DeleteConversation(id string) error {
	if s == nil || s.db == nil {
		return errors.New("store is nil")
	}
	if id == "" {
		return errors.New("conversation id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(`DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("conversation not found: %s", id)
	}
	return nil
}

// History returns the conversation's turns in chronological order, for
// feeding multi-turn modes. Stage rows are not included.
func (s *Store) History(conversationID string) ([]Message, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store is nil")
	}
	if conversationID == "" {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, conversation_id, role, content, COALESCE(mode, ''), created_at
		FROM messages WHERE conversation_id = ?
		ORDER BY created_at, rowid`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.Mode, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) fetchStages(messageID string) ([]Stage, error) {
	rows, err := s.db.Query(`
		SELECT id, message_id, stage_type, stage_order, COALESCE(model, ''), COALESCE(role, ''),
		       content, parsed_data, COALESCE(response_time_ms, 0), created_at
		FROM stages WHERE message_id = ?
		ORDER BY stage_order`, messageID)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	defer rows.Close()

	var out []Stage
	for rows.Next() {
		var (
			st     Stage
			parsed sql.NullString
		)
		if err := rows.Scan(&st.ID, &st.MessageID, &st.StageType, &st.StageOrder, &st.Model, &st.Role,
			&st.Content, &parsed, &st.ResponseTimeMS, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		if parsed.Valid {
			st.ParsedData = json.RawMessage(parsed.String)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
