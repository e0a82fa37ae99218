package chatinfra

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Abraxas-365/debelu/pkg/chat"
	"github.com/Abraxas-365/debelu/pkg/chat/toolx"
	"github.com/Abraxas-365/debelu/pkg/errx"
	"github.com/Abraxas-365/debelu/pkg/kernel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const schema = `
CREATE TABLE IF NOT EXISTS chat_messages (
	id               VARCHAR(36)  PRIMARY KEY,
	session_id       VARCHAR(255) NOT NULL,
	seq              INTEGER      NOT NULL,
	role             VARCHAR(16)  NOT NULL,
	content          TEXT         NOT NULL,
	tool_invocations TEXT         NOT NULL,
	created_at       TIMESTAMP    NOT NULL,
	UNIQUE (session_id, seq)
)`

// SQLStore persists history in a relational database. It runs on Postgres
// (lib/pq) and SQLite (modernc.org/sqlite); queries are written with '?'
// placeholders and rebound for the connected driver.
type SQLStore struct {
	db *sqlx.DB
}

var _ chat.Store = (*SQLStore)(nil)

func init() {
	// modernc registers as "sqlite", which sqlx does not know by default
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// EnsureSchema creates the chat tables when they are missing.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return storeErrors.NewWithCause(ErrSchema, err).WithDetail("driver", s.db.DriverName())
	}
	return nil
}

type messageRow struct {
	ID              string    `db:"id"`
	SessionID       string    `db:"session_id"`
	Seq             int64     `db:"seq"`
	Role            string    `db:"role"`
	Content         string    `db:"content"`
	ToolInvocations string    `db:"tool_invocations"`
	CreatedAt       time.Time `db:"created_at"`
}

func toRow(sessionID kernel.SessionID, msg chat.Message) (messageRow, error) {
	invocations := msg.ToolInvocations
	if invocations == nil {
		invocations = []toolx.Invocation{}
	}
	raw, err := json.Marshal(invocations)
	if err != nil {
		return messageRow{}, err
	}
	return messageRow{
		ID:              msg.ID,
		SessionID:       sessionID.String(),
		Role:            string(msg.Role),
		Content:         msg.Content,
		ToolInvocations: string(raw),
		CreatedAt:       msg.CreatedAt.UTC(),
	}, nil
}

func (r messageRow) toDomain() (chat.Message, error) {
	var invocations []toolx.Invocation
	if err := json.Unmarshal([]byte(r.ToolInvocations), &invocations); err != nil {
		return chat.Message{}, err
	}
	if invocations == nil {
		invocations = []toolx.Invocation{}
	}
	return chat.Message{
		ID:              r.ID,
		Role:            chat.Role(r.Role),
		Content:         r.Content,
		CreatedAt:       r.CreatedAt.UTC(),
		ToolInvocations: invocations,
	}, nil
}

// AddMessage appends msg after the session's last message.
func (s *SQLStore) AddMessage(ctx context.Context, sessionID kernel.SessionID, msg chat.Message) error {
	row, err := toRow(sessionID, msg)
	if err != nil {
		return storeErrors.NewWithCause(ErrMarshal, err).WithDetail("message_id", msg.ID)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return storeErrors.NewWithCause(ErrAppend, err).WithDetail("session_id", sessionID.String())
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, &row.Seq,
		tx.Rebind(`SELECT COALESCE(MAX(seq), 0) + 1 FROM chat_messages WHERE session_id = ?`),
		row.SessionID)
	if err != nil {
		return storeErrors.NewWithCause(ErrAppend, err).WithDetail("session_id", sessionID.String())
	}

	query := `
		INSERT INTO chat_messages (id, session_id, seq, role, content, tool_invocations, created_at)
		VALUES (:id, :session_id, :seq, :role, :content, :tool_invocations, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
		if isUniqueViolation(err) {
			return storeErrors.NewWithCause(ErrConflict, err).
				WithDetail("session_id", sessionID.String()).
				WithDetail("message_id", msg.ID)
		}
		return storeErrors.NewWithCause(ErrAppend, err).WithDetail("session_id", sessionID.String())
	}

	if err := tx.Commit(); err != nil {
		return storeErrors.NewWithCause(ErrAppend, err).WithDetail("session_id", sessionID.String())
	}
	return nil
}

func (s *SQLStore) Messages(ctx context.Context, sessionID kernel.SessionID) ([]chat.Message, error) {
	var rows []messageRow
	query := s.db.Rebind(`
		SELECT id, session_id, seq, role, content, tool_invocations, created_at
		FROM chat_messages
		WHERE session_id = ?
		ORDER BY seq`)
	if err := s.db.SelectContext(ctx, &rows, query, sessionID.String()); err != nil {
		return nil, storeErrors.NewWithCause(ErrLoad, err).WithDetail("session_id", sessionID.String())
	}

	msgs := make([]chat.Message, 0, len(rows))
	for _, r := range rows {
		msg, err := r.toDomain()
		if err != nil {
			return nil, storeErrors.NewWithCause(ErrUnmarshal, err).WithDetail("message_id", r.ID)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return errx.Wrap(err, "chat database unreachable", errx.TypeExternal)
	}
	return nil
}

// isUniqueViolation recognises duplicate keys from either driver.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
