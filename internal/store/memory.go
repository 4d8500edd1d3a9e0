package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/todo-assistant/internal/models"
)

// Memory is an in-memory Store used by tests. It applies the same
// validation and filter semantics as the SQLite store. Transactions are
// pass-through: one worker owns a turn, so there is never a concurrent
// writer to isolate from.
type Memory struct {
	mu    sync.RWMutex
	tasks map[string]map[string]*models.Task // userID -> taskID -> task
}

func NewMemory() *Memory {
	return &Memory{tasks: map[string]map[string]*models.Task{}}
}

// Seed inserts a task verbatim, for test setup.
func (m *Memory) Seed(t *models.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tasks[t.UserID] == nil {
		m.tasks[t.UserID] = map[string]*models.Task{}
	}
	m.tasks[t.UserID][t.ID] = t
}

func (m *Memory) Create(ctx context.Context, userID string, fields models.TaskFields) (*models.Task, error) {
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
	m.Seed(t)
	return t, nil
}

func (m *Memory) Get(ctx context.Context, userID, id string) (*models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[userID][id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *Memory) List(ctx context.Context, userID string, f Filters, so Sort, p Page) ([]*models.Task, error) {
	m.mu.RLock()
	var out []*models.Task
	for _, t := range m.tasks[userID] {
		if matchFilters(t, f) {
			cp := *t
			out = append(out, &cp)
		}
	}
	m.mu.RUnlock()

	sortTasks(out, so)
	if p.Offset > 0 {
		if p.Offset >= len(out) {
			return nil, nil
		}
		out = out[p.Offset:]
	}
	if p.Limit > 0 && p.Limit < len(out) {
		out = out[:p.Limit]
	}
	return out, nil
}

func (m *Memory) Search(ctx context.Context, userID, query string) ([]*models.Task, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	m.mu.RLock()
	var out []*models.Task
	for _, t := range m.tasks[userID] {
		if strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.Description), q) {
			cp := *t
			out = append(out, &cp)
		}
	}
	m.mu.RUnlock()
	sortTasks(out, Sort{Field: "created_at"})
	return out, nil
}

func (m *Memory) Update(ctx context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[userID][id]
	if !ok {
		return nil, ErrNotFound
	}
	applyPatch(t, patch)
	if err := validateFields(models.TaskFields{Title: t.Title}); err != nil {
		return nil, err
	}
	t.UpdatedAt = time.Now().UTC()
	cp := *t
	return &cp, nil
}

func (m *Memory) Delete(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[userID][id]; !ok {
		return ErrNotFound
	}
	delete(m.tasks[userID], id)
	return nil
}

func (m *Memory) Complete(ctx context.Context, userID, id string) (*models.Task, error) {
	done := true
	st := models.StatusCompleted
	return m.Update(ctx, userID, id, models.TaskPatch{Completed: &done, Status: &st})
}

func (m *Memory) Begin(ctx context.Context) (Tx, error) {
	return memoryTx{m}, nil
}

type memoryTx struct{ *Memory }

func (memoryTx) Commit() error   { return nil }
func (memoryTx) Rollback() error { return nil }

func matchFilters(t *models.Task, f Filters) bool {
	switch f.Status {
	case "", "all":
	case "pending":
		if t.Completed {
			return false
		}
	case "completed":
		if !t.Completed {
			return false
		}
	default:
		if string(t.Status) != f.Status {
			return false
		}
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Tag != "" {
		found := false
		for _, tag := range t.Tags {
			if tag == f.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func sortTasks(ts []*models.Task, so Sort) {
	less := func(a, b *models.Task) bool {
		switch so.Field {
		case "title":
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		case "status":
			return a.Status < b.Status
		case "priority":
			return priorityRank(a.Priority) < priorityRank(b.Priority)
		case "due_date":
			switch {
			case a.DueDate == nil:
				return false
			case b.DueDate == nil:
				return true
			default:
				return a.DueDate.Before(*b.DueDate)
			}
		default:
			if a.CreatedAt.Equal(b.CreatedAt) {
				return a.ID < b.ID
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(ts, func(i, j int) bool {
		if so.Desc {
			return less(ts[j], ts[i])
		}
		return less(ts[i], ts[j])
	})
}

func priorityRank(p models.Priority) int {
	switch p {
	case models.PriorityHigh:
		return 3
	case models.PriorityMedium:
		return 2
	default:
		return 1
	}
}
