package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pkg/errors"

	"github.com/vishnutej000/Memories-sub001/internal/core"
	"github.com/vishnutej000/Memories-sub001/internal/httpapi"
)

const schema = `CREATE TABLE IF NOT EXISTS chats (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  participants_json TEXT NOT NULL DEFAULT '[]',
  message_count INTEGER NOT NULL DEFAULT 0,
  range_start TEXT NOT NULL DEFAULT '',
  range_end TEXT NOT NULL DEFAULT '',
  imported_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS messages (
  chat_id TEXT NOT NULL,
  id TEXT NOT NULL,
  ts TEXT NOT NULL,
  sender TEXT NOT NULL,
  content TEXT NOT NULL,
  type TEXT NOT NULL DEFAULT 'text',
  is_deleted INTEGER NOT NULL DEFAULT 0,
  is_forwarded INTEGER NOT NULL DEFAULT 0,
  emoji_count INTEGER NOT NULL DEFAULT 0,
  sentiment REAL NOT NULL DEFAULT 0,
  PRIMARY KEY (chat_id, id)
);
CREATE INDEX IF NOT EXISTS messages_idx_chat_ts ON messages(chat_id, ts);`

// ErrNotFound is returned when a chat id has no row.
var ErrNotFound = core.ErrNotFound

type SQLiteSink struct {
	db *sql.DB
}

const defaultListLimit = 100

func OpenSQLite(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "apply schema")
	}
	if _, err := db.Exec(`PRAGMA journal_mode=wal;`); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "set WAL")
	}
	ApplySQLitePragmas(context.Background(), db)
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Close() error { return s.db.Close() }

func (s *SQLiteSink) Ping() error { return s.db.Ping() }

func (s *SQLiteSink) RawDB() *sql.DB { return s.db }

func (s *SQLiteSink) String() string {
	return fmt.Sprintf("SQLiteSink{%p}", s.db)
}

// InsertChat writes the chat header row.
func (s *SQLiteSink) InsertChat(ctx context.Context, chat core.Chat) error {
	participants, err := json.Marshal(chat.Participants)
	if err != nil {
		return errors.Wrap(err, "encode participants")
	}
	start, end := "", ""
	if chat.Range != nil {
		start = chat.Range.Start.UTC().Format(time.RFC3339Nano)
		end = chat.Range.End.UTC().Format(time.RFC3339Nano)
	}
	const q = `INSERT INTO chats (id, title, participants_json, message_count, range_start, range_end, imported_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO NOTHING;`
	_, err = s.db.ExecContext(ctx, q, chat.ID, chat.Title, string(participants),
		chat.MessageCount, start, end, chat.ImportedAt.UTC().Format(time.RFC3339Nano))
	return errors.Wrap(err, "insert chat")
}

// Write inserts one message row. It satisfies the Writer interface so the
// buffered writer can batch imports.
func (s *SQLiteSink) Write(rec Record) error {
	const q = `INSERT INTO messages (chat_id, id, ts, sender, content, type, is_deleted, is_forwarded, emoji_count, sentiment)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(chat_id, id) DO NOTHING;`
	msg := rec.Msg
	_, err := s.db.Exec(q, rec.ChatID, msg.ID, msg.Ts.UTC().Format(time.RFC3339Nano),
		msg.Sender, msg.Content, string(msg.Type),
		boolInt(msg.IsDeleted), boolInt(msg.IsForwarded), msg.EmojiCount, msg.SentimentScore)
	return errors.Wrap(err, "insert message")
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// DeleteChat removes a chat and its messages.
func (s *SQLiteSink) DeleteChat(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chats WHERE id = ?;`, id)
	if err != nil {
		return errors.Wrap(err, "delete chat")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM messages WHERE chat_id = ?;`, id)
	return errors.Wrap(err, "delete chat messages")
}

// ListChats returns all stored chats, most recently imported first.
func (s *SQLiteSink) ListChats(ctx context.Context) ([]core.Chat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, participants_json, message_count, range_start, range_end, imported_at
FROM chats ORDER BY imported_at DESC;`)
	if err != nil {
		return nil, errors.Wrap(err, "list chats")
	}
	defer rows.Close()

	var out []core.Chat
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate chats")
	}
	return out, nil
}

// GetChat returns one chat header by id.
func (s *SQLiteSink) GetChat(ctx context.Context, id string) (core.Chat, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, participants_json, message_count, range_start, range_end, imported_at
FROM chats WHERE id = ?;`, id)
	chat, err := scanChat(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Chat{}, ErrNotFound
	}
	return chat, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChat(row rowScanner) (core.Chat, error) {
	var (
		chat         core.Chat
		participants string
		start, end   string
		importedAt   string
	)
	if err := row.Scan(&chat.ID, &chat.Title, &participants, &chat.MessageCount, &start, &end, &importedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Chat{}, err
		}
		return core.Chat{}, errors.Wrap(err, "scan chat")
	}
	if err := json.Unmarshal([]byte(participants), &chat.Participants); err != nil {
		return core.Chat{}, errors.Wrap(err, "decode participants")
	}
	if start != "" && end != "" {
		rng := &core.DateRange{}
		if t, err := time.Parse(time.RFC3339Nano, start); err == nil {
			rng.Start = t
		}
		if t, err := time.Parse(time.RFC3339Nano, end); err == nil {
			rng.End = t
		}
		chat.Range = rng
	}
	if t, err := time.Parse(time.RFC3339Nano, importedAt); err == nil {
		chat.ImportedAt = t
	}
	return chat, nil
}

// CountMessages counts a chat's messages matching the filters.
func (s *SQLiteSink) CountMessages(ctx context.Context, chatID string, filters httpapi.Filters) (int64, error) {
	query, args := buildMessageQuery(chatID, filters, true)
	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count")
	}
	return n, nil
}

// ListMessages returns a chat's messages matching the filters.
func (s *SQLiteSink) ListMessages(ctx context.Context, chatID string, filters httpapi.Filters) ([]core.ChatMessage, error) {
	query, args := buildMessageQuery(chatID, filters, false)
	return s.queryMessages(ctx, query, args...)
}

// AllMessages returns every message of a chat in chronological order; the
// analysis endpoints consume this.
func (s *SQLiteSink) AllMessages(ctx context.Context, chatID string) ([]core.ChatMessage, error) {
	const q = `SELECT id, ts, sender, content, type, is_deleted, is_forwarded, emoji_count, sentiment
FROM messages WHERE chat_id = ? ORDER BY ts ASC;`
	return s.queryMessages(ctx, q, chatID)
}

func (s *SQLiteSink) queryMessages(ctx context.Context, query string, args ...any) ([]core.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list messages")
	}
	defer rows.Close()

	var out []core.ChatMessage
	for rows.Next() {
		var (
			msg                  core.ChatMessage
			ts, msgType          string
			isDeleted, forwarded int
		)
		if err := rows.Scan(&msg.ID, &ts, &msg.Sender, &msg.Content, &msgType,
			&isDeleted, &forwarded, &msg.EmojiCount, &msg.SentimentScore); err != nil {
			return nil, errors.Wrap(err, "scan message")
		}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			msg.Ts = t
		}
		msg.Type = core.MessageType(msgType)
		msg.IsDeleted = isDeleted == 1
		msg.IsForwarded = forwarded == 1
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate messages")
	}
	return out, nil
}

func buildMessageQuery(chatID string, filters httpapi.Filters, count bool) (string, []any) {
	var builder strings.Builder
	if count {
		builder.WriteString("SELECT COUNT(*) FROM messages")
	} else {
		builder.WriteString("SELECT id, ts, sender, content, type, is_deleted, is_forwarded, emoji_count, sentiment FROM messages")
	}

	conditions := []string{"chat_id = ?"}
	args := []any{chatID}

	if len(filters.Types) > 0 {
		placeholders := make([]string, 0, len(filters.Types))
		for _, t := range filters.Types {
			placeholders = append(placeholders, "?")
			args = append(args, t)
		}
		conditions = append(conditions, fmt.Sprintf("type IN (%s)", strings.Join(placeholders, ",")))
	}

	if len(filters.Senders) > 0 {
		ors := make([]string, 0, len(filters.Senders))
		for _, sender := range filters.Senders {
			ors = append(ors, "LOWER(sender) LIKE '%' || ? || '%'")
			args = append(args, sender)
		}
		conditions = append(conditions, fmt.Sprintf("(%s)", strings.Join(ors, " OR ")))
	}

	if filters.Since != nil {
		conditions = append(conditions, "ts >= ?")
		args = append(args, filters.Since.UTC().Format(time.RFC3339Nano))
	}

	builder.WriteString(" WHERE ")
	builder.WriteString(strings.Join(conditions, " AND "))

	if !count {
		order := "DESC"
		if filters.Order == httpapi.OrderAsc {
			order = "ASC"
		}
		builder.WriteString(" ORDER BY ts ")
		builder.WriteString(order)
		limit := filters.Limit
		if limit <= 0 {
			limit = defaultListLimit
		}
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	builder.WriteString(";")
	return builder.String(), args
}
