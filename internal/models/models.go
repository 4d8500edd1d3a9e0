package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// Task is the unit everything else operates on. A task belongs to exactly
// one user; every store and resolver operation is scoped by UserID.
type Task struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Completed   bool        `json:"completed"`
	Priority    Priority    `json:"priority"`
	Status      Status      `json:"status"`
	DueDate     *time.Time  `json:"due_date,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	Recurrence  *Recurrence `json:"recurrence,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// TaskFields carries the caller-settable fields for task creation.
type TaskFields struct {
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Priority    Priority    `json:"priority,omitempty"`
	Status      Status      `json:"status,omitempty"`
	DueDate     *time.Time  `json:"due_date,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	Recurrence  *Recurrence `json:"recurrence,omitempty"`
}

// TaskPatch is a partial update; nil fields are left untouched.
type TaskPatch struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Completed   *bool       `json:"completed,omitempty"`
	Priority    *Priority   `json:"priority,omitempty"`
	Status      *Status     `json:"status,omitempty"`
	DueDate     *time.Time  `json:"due_date,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	Recurrence  *Recurrence `json:"recurrence,omitempty"`
}

// NewTaskID returns a 32-char hex id (UUIDv4 without hyphens). The resolver
// treats identifiers of length >= 30 as id-shaped, so ids must stay long.
func NewTaskID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ToolCall is the externally visible form of an intent: a name from the
// fixed tool vocabulary plus an argument mapping.
type ToolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ExecutionOutcome records what happened to a single tool call. Outcomes
// live for one turn and are never persisted.
type ExecutionOutcome struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// TurnResult is what a conversational turn hands back to the caller.
type TurnResult struct {
	Response       string             `json:"response"`
	ToolCalls      []ToolCall         `json:"tool_calls"`
	ChatTitle      string             `json:"chat_title,omitempty"`
	ConversationID string             `json:"conversation_id,omitempty"`
	Outcomes       []ExecutionOutcome `json:"outcomes,omitempty"`
}

// Conversation groups messages under a user-visible title.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is one entry in a conversation's append-only log.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"` // "user" or "assistant"
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}
