package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/todo-assistant/internal/models"
)

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	t.Run("empty title", func(t *testing.T) {
		_, err := mem.Create(ctx, "u1", models.TaskFields{Title: "   "})
		assert.ErrorIs(t, err, ErrEmptyTitle)
	})

	t.Run("title too long", func(t *testing.T) {
		_, err := mem.Create(ctx, "u1", models.TaskFields{Title: strings.Repeat("x", 256)})
		assert.ErrorIs(t, err, ErrTitleTooLong)
	})

	t.Run("defaults", func(t *testing.T) {
		task, err := mem.Create(ctx, "u1", models.TaskFields{Title: "buy milk"})
		require.NoError(t, err)
		assert.Equal(t, models.PriorityMedium, task.Priority)
		assert.Equal(t, models.StatusActive, task.Status)
		assert.False(t, task.Completed)
		assert.Len(t, task.ID, 32)
	})
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	mem.Seed(&models.Task{ID: models.NewTaskID(), UserID: "u1", Title: "a", Completed: false, Status: models.StatusActive, Priority: models.PriorityHigh, Tags: []string{"work"}})
	mem.Seed(&models.Task{ID: models.NewTaskID(), UserID: "u1", Title: "b", Completed: true, Status: models.StatusCompleted, Priority: models.PriorityLow})
	mem.Seed(&models.Task{ID: models.NewTaskID(), UserID: "u2", Title: "c"})

	t.Run("all", func(t *testing.T) {
		tasks, err := mem.List(ctx, "u1", Filters{Status: "all"}, Sort{}, Page{})
		require.NoError(t, err)
		assert.Len(t, tasks, 2)
	})

	t.Run("pending", func(t *testing.T) {
		tasks, err := mem.List(ctx, "u1", Filters{Status: "pending"}, Sort{}, Page{})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "a", tasks[0].Title)
	})

	t.Run("completed", func(t *testing.T) {
		tasks, err := mem.List(ctx, "u1", Filters{Status: "completed"}, Sort{}, Page{})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "b", tasks[0].Title)
	})

	t.Run("priority", func(t *testing.T) {
		tasks, err := mem.List(ctx, "u1", Filters{Priority: models.PriorityHigh}, Sort{}, Page{})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "a", tasks[0].Title)
	})

	t.Run("tag", func(t *testing.T) {
		tasks, err := mem.List(ctx, "u1", Filters{Tag: "work"}, Sort{}, Page{})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "a", tasks[0].Title)
	})

	t.Run("user scoping", func(t *testing.T) {
		tasks, err := mem.List(ctx, "u2", Filters{}, Sort{}, Page{})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "c", tasks[0].Title)
	})
}

func TestSortTasks(t *testing.T) {
	due := func(days int) *time.Time {
		d := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days)
		return &d
	}
	mem := NewMemory()
	mem.Seed(&models.Task{ID: models.NewTaskID(), UserID: "u1", Title: "beta", Priority: models.PriorityLow, DueDate: due(2)})
	mem.Seed(&models.Task{ID: models.NewTaskID(), UserID: "u1", Title: "alpha", Priority: models.PriorityHigh})
	mem.Seed(&models.Task{ID: models.NewTaskID(), UserID: "u1", Title: "gamma", Priority: models.PriorityMedium, DueDate: due(1)})

	ctx := context.Background()

	t.Run("by title", func(t *testing.T) {
		tasks, err := mem.List(ctx, "u1", Filters{}, Sort{Field: "title"}, Page{})
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "beta", "gamma"}, titles(tasks))
	})

	t.Run("by priority descending", func(t *testing.T) {
		tasks, err := mem.List(ctx, "u1", Filters{}, Sort{Field: "priority", Desc: true}, Page{})
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "gamma", "beta"}, titles(tasks))
	})

	t.Run("by due date with missing dates last", func(t *testing.T) {
		tasks, err := mem.List(ctx, "u1", Filters{}, Sort{Field: "due_date"}, Page{})
		require.NoError(t, err)
		assert.Equal(t, []string{"gamma", "beta", "alpha"}, titles(tasks))
	})
}

func TestUpdateDeleteComplete(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	task, err := mem.Create(ctx, "u1", models.TaskFields{Title: "buy milk"})
	require.NoError(t, err)

	t.Run("update title", func(t *testing.T) {
		title := "buy oat milk"
		got, err := mem.Update(ctx, "u1", task.ID, models.TaskPatch{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "buy oat milk", got.Title)
	})

	t.Run("complete marks both flags", func(t *testing.T) {
		got, err := mem.Complete(ctx, "u1", task.ID)
		require.NoError(t, err)
		assert.True(t, got.Completed)
		assert.Equal(t, models.StatusCompleted, got.Status)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := mem.Get(ctx, "u1", "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, mem.Delete(ctx, "u1", "missing"), ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, mem.Delete(ctx, "u1", task.ID))
		_, err := mem.Get(ctx, "u1", task.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func titles(tasks []*models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}
