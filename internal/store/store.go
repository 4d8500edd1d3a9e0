// Package store provides user-scoped persistence for tasks and
// conversations. The SQLite implementation is the production path; the
// in-memory implementation backs tests.
package store

import (
	"context"
	"errors"

	"github.com/example/todo-assistant/internal/models"
)

var (
	ErrNotFound     = errors.New("task not found")
	ErrEmptyTitle   = errors.New("title must not be empty")
	ErrTitleTooLong = errors.New("title must be at most 255 characters")
)

// Filters narrows List results. Zero values mean "no filter".
type Filters struct {
	// Status is "", "all", "pending", "completed", or a concrete
	// models.Status value. "pending" and "completed" filter on the
	// completed flag, not the status column.
	Status   string
	Priority models.Priority
	Tag      string
}

// Sort orders List results by a whitelisted field.
type Sort struct {
	Field string // title, priority, status, due_date, created_at
	Desc  bool
}

// Page bounds List results. A zero Limit means no bound.
type Page struct {
	Offset int
	Limit  int
}

// TaskStore is the task CRUD surface consumed by the pipeline. Every
// operation is scoped by user id; a task never leaks across users.
type TaskStore interface {
	Create(ctx context.Context, userID string, fields models.TaskFields) (*models.Task, error)
	Get(ctx context.Context, userID, id string) (*models.Task, error)
	List(ctx context.Context, userID string, f Filters, s Sort, p Page) ([]*models.Task, error)
	Search(ctx context.Context, userID, query string) ([]*models.Task, error)
	Update(ctx context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, userID, id string) error
	Complete(ctx context.Context, userID, id string) (*models.Task, error)
}

// Tx is a TaskStore whose mutations become visible together on Commit.
type Tx interface {
	TaskStore
	Commit() error
	Rollback() error
}

// Store is a TaskStore that can open turn-scoped transactions.
type Store interface {
	TaskStore
	Begin(ctx context.Context) (Tx, error)
}

// ConversationStore is the append-only message log plus conversation
// metadata.
type ConversationStore interface {
	CreateConversation(ctx context.Context, userID, title string) (*models.Conversation, error)
	GetConversation(ctx context.Context, userID, id string) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]*models.Conversation, error)
	AppendMessage(ctx context.Context, conversationID, role, content string) (*models.Message, error)
	ListMessages(ctx context.Context, conversationID string) ([]*models.Message, error)
}

func validateFields(f models.TaskFields) error {
	if f.Title == "" {
		return ErrEmptyTitle
	}
	if len(f.Title) > 255 {
		return ErrTitleTooLong
	}
	return nil
}
