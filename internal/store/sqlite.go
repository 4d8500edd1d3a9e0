package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/example/todo-assistant/internal/models"
	"github.com/google/uuid"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	completed   INTEGER NOT NULL DEFAULT 0,
	priority    TEXT NOT NULL DEFAULT 'medium',
	status      TEXT NOT NULL DEFAULT 'active',
	due_date    TEXT,
	tags        TEXT,
	recurrence  TEXT,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id);
CREATE INDEX IF NOT EXISTS idx_tasks_user_status ON tasks(user_id, status);

CREATE TABLE IF NOT EXISTS conversations (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	title      TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id);

CREATE TABLE IF NOT EXISTS messages (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL,
	role            TEXT NOT NULL,
	content         TEXT NOT NULL,
	created_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id);
`

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB is the SQLite-backed Store and ConversationStore.
type DB struct {
	taskOps
	sql *sql.DB
}

// Open opens (and creates, if needed) the database at path. Use ":memory:"
// for tests.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc.org/sqlite serializes writes per connection; a single
	// connection avoids SQLITE_BUSY on concurrent turns.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &DB{taskOps: taskOps{q: db}, sql: db}, nil
}

func (d *DB) Close() error { return d.sql.Close() }

// Begin opens a turn-scoped transaction. All mutations inside it become
// visible together on Commit.
func (d *DB) Begin(ctx context.Context) (Tx, error) {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &sqliteTx{taskOps: taskOps{q: tx}, tx: tx}, nil
}

type sqliteTx struct {
	taskOps
	tx *sql.Tx
}

func (t *sqliteTx) Commit() error   { return t.tx.Commit() }
func (t *sqliteTx) Rollback() error { return t.tx.Rollback() }

// taskOps implements TaskStore over either a DB or a transaction.
type taskOps struct {
	q querier
}

func (s taskOps) Create(ctx context.Context, userID string, fields models.TaskFields) (*models.Task, error) {
	fields.Title = strings.TrimSpace(fields.Title)
	if err := validateFields(fields); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	t := &models.Task{
		ID:          models.NewTaskID(),
		UserID:      userID,
		Title:       fields.Title,
		Description: fields.Description,
		Priority:    fields.Priority,
		Status:      fields.Status,
		DueDate:     fields.DueDate,
		Tags:        fields.Tags,
		Recurrence:  fields.Recurrence,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if t.Status == "" {
		t.Status = models.StatusActive
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, title, description, completed, priority, status, due_date, tags, recurrence, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Title, t.Description, boolToInt(t.Completed),
		string(t.Priority), string(t.Status), timePtrToNull(t.DueDate),
		jsonOrNull(t.Tags), jsonOrNull(t.Recurrence),
		t.CreatedAt.Format(time.RFC3339Nano), t.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

const taskColumns = `id, user_id, title, description, completed, priority, status, due_date, tags, recurrence, created_at, updated_at`

func (s taskOps) Get(ctx context.Context, userID, id string) (*models.Task, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND id = ?`, userID, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return t, err
}

func (s taskOps) List(ctx context.Context, userID string, f Filters, so Sort, p Page) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`
	args := []any{userID}

	switch f.Status {
	case "", "all":
	case "pending":
		query += ` AND completed = 0`
	case "completed":
		query += ` AND completed = 1`
	default:
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.Priority != "" {
		query += ` AND priority = ?`
		args = append(args, string(f.Priority))
	}
	if f.Tag != "" {
		// Tags are stored as a JSON array of strings.
		query += ` AND tags LIKE ?`
		args = append(args, `%"`+f.Tag+`"%`)
	}

	query += orderClause(so)
	if p.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d OFFSET %d`, p.Limit, p.Offset)
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (s taskOps) Search(ctx context.Context, userID, query string) ([]*models.Task, error) {
	pat := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE user_id = ? AND (lower(title) LIKE ? OR lower(description) LIKE ?)
		ORDER BY created_at`, userID, pat, pat)
	if err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (s taskOps) Update(ctx context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error) {
	t, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	applyPatch(t, patch)
	if err := validateFields(models.TaskFields{Title: t.Title}); err != nil {
		return nil, err
	}
	t.UpdatedAt = time.Now().UTC()
	_, err = s.q.ExecContext(ctx, `
		UPDATE tasks SET title = ?, description = ?, completed = ?, priority = ?, status = ?,
			due_date = ?, tags = ?, recurrence = ?, updated_at = ?
		WHERE user_id = ? AND id = ?`,
		t.Title, t.Description, boolToInt(t.Completed), string(t.Priority), string(t.Status),
		timePtrToNull(t.DueDate), jsonOrNull(t.Tags), jsonOrNull(t.Recurrence),
		t.UpdatedAt.Format(time.RFC3339Nano), userID, id)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

func (s taskOps) Delete(ctx context.Context, userID, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s taskOps) Complete(ctx context.Context, userID, id string) (*models.Task, error) {
	done := true
	st := models.StatusCompleted
	return s.Update(ctx, userID, id, models.TaskPatch{Completed: &done, Status: &st})
}

func applyPatch(t *models.Task, p models.TaskPatch) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.DueDate != nil {
		t.DueDate = p.DueDate
	}
	if p.Tags != nil {
		t.Tags = p.Tags
	}
	if p.Recurrence != nil {
		t.Recurrence = p.Recurrence
	}
}

func orderClause(so Sort) string {
	dir := " ASC"
	if so.Desc {
		dir = " DESC"
	}
	switch so.Field {
	case "title":
		return ` ORDER BY lower(title)` + dir
	case "status":
		return ` ORDER BY status` + dir
	case "due_date":
		// NULL due dates sort last either way.
		return ` ORDER BY due_date IS NULL, due_date` + dir
	case "priority":
		return ` ORDER BY CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END` + dir
	default:
		return ` ORDER BY created_at` + dir
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(r rowScanner) (*models.Task, error) {
	var (
		t          models.Task
		completed  int
		priority   string
		status     string
		due        sql.NullString
		tags       sql.NullString
		recurrence sql.NullString
		created    string
		updated    string
	)
	err := r.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &completed,
		&priority, &status, &due, &tags, &recurrence, &created, &updated)
	if err != nil {
		return nil, err
	}
	t.Completed = completed != 0
	t.Priority = models.Priority(priority)
	t.Status = models.Status(status)
	if due.Valid && due.String != "" {
		if ts, err := time.Parse(time.RFC3339Nano, due.String); err == nil {
			t.DueDate = &ts
		}
	}
	if tags.Valid && tags.String != "" {
		_ = json.Unmarshal([]byte(tags.String), &t.Tags)
	}
	if recurrence.Valid && recurrence.String != "" {
		var rec models.Recurrence
		if json.Unmarshal([]byte(recurrence.String), &rec) == nil {
			t.Recurrence = &rec
		}
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	t.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &t, nil
}

func collectTasks(rows *sql.Rows) ([]*models.Task, error) {
	var out []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func timePtrToNull(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func jsonOrNull(v any) any {
	switch x := v.(type) {
	case []string:
		if len(x) == 0 {
			return nil
		}
	case *models.Recurrence:
		if x == nil {
			return nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return string(b)
}

// CreateConversation starts a new conversation with the given title.
func (d *DB) CreateConversation(ctx context.Context, userID, title string) (*models.Conversation, error) {
	now := time.Now().UTC()
	c := &models.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := d.sql.ExecContext(ctx, `
		INSERT INTO conversations (id, user_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Title, now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert conversation: %w", err)
	}
	return c, nil
}

func (d *DB) GetConversation(ctx context.Context, userID, id string) (*models.Conversation, error) {
	row := d.sql.QueryRowContext(ctx, `
		SELECT id, user_id, title, created_at, updated_at FROM conversations
		WHERE user_id = ? AND id = ?`, userID, id)
	return scanConversation(row)
}

func (d *DB) ListConversations(ctx context.Context, userID string) ([]*models.Conversation, error) {
	rows, err := d.sql.QueryContext(ctx, `
		SELECT id, user_id, title, created_at, updated_at FROM conversations
		WHERE user_id = ? ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()
	var out []*models.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AppendMessage adds one entry to a conversation's log and bumps the
// conversation's updated_at.
func (d *DB) AppendMessage(ctx context.Context, conversationID, role, content string) (*models.Message, error) {
	now := time.Now().UTC()
	m := &models.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      now,
	}
	_, err := d.sql.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.ConversationID, m.Role, m.Content, now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	_, _ = d.sql.ExecContext(ctx, `UPDATE conversations SET updated_at = ? WHERE id = ?`,
		now.Format(time.RFC3339Nano), conversationID)
	return m, nil
}

func (d *DB) ListMessages(ctx context.Context, conversationID string) ([]*models.Message, error) {
	rows, err := d.sql.QueryContext(ctx, `
		SELECT id, conversation_id, role, content, created_at FROM messages
		WHERE conversation_id = ? ORDER BY created_at`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()
	var out []*models.Message
	for rows.Next() {
		var m models.Message
		var created string
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &created); err != nil {
			return nil, err
		}
		m.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, &m)
	}
	return out, rows.Err()
}

func scanConversation(r rowScanner) (*models.Conversation, error) {
	var c models.Conversation
	var created, updated string
	err := r.Scan(&c.ID, &c.UserID, &c.Title, &created, &updated)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	c.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &c, nil
}
