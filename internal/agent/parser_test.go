package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/todo-assistant/internal/models"
	"github.com/example/todo-assistant/internal/resolve"
	"github.com/example/todo-assistant/internal/store"
)

func newParser(titles ...string) (*Parser, map[string]string) {
	mem := store.NewMemory()
	ids := map[string]string{}
	for _, title := range titles {
		task := &models.Task{ID: models.NewTaskID(), UserID: "u1", Title: title}
		mem.Seed(task)
		ids[title] = task.ID
	}
	return NewParser(resolve.New(mem)), ids
}

func singleCall(t *testing.T, out *Interpretation, name string) models.ToolCall {
	t.Helper()
	require.NotNil(t, out)
	require.Len(t, out.ToolCalls, 1)
	require.Equal(t, name, out.ToolCalls[0].Name)
	return out.ToolCalls[0]
}

func TestParseAddFamily(t *testing.T) {
	ctx := context.Background()

	t.Run("add with connector", func(t *testing.T) {
		p, _ := newParser()
		out := p.Parse(ctx, "u1", "add a task called buy milk")
		call := singleCall(t, out, "add_task")
		assert.Equal(t, "buy milk", call.Arguments["title"])
		assert.Equal(t, "u1", call.Arguments["user_id"])
	})

	t.Run("create task", func(t *testing.T) {
		p, _ := newParser()
		out := p.Parse(ctx, "u1", "Create task: water the plants")
		call := singleCall(t, out, "add_task")
		assert.Equal(t, "water the plants", call.Arguments["title"])
	})

	t.Run("add without a title asks for one", func(t *testing.T) {
		p, _ := newParser()
		out := p.Parse(ctx, "u1", "add")
		require.NotNil(t, out)
		assert.Empty(t, out.ToolCalls)
		assert.Contains(t, out.Response, "task title")
	})
}

func TestParseUpdateFamily(t *testing.T) {
	ctx := context.Background()

	t.Run("edit with to-connector resolves to a concrete id", func(t *testing.T) {
		p, ids := newParser("market", "call dentist")
		out := p.Parse(ctx, "u1", "Edit market to grocery shopping")
		call := singleCall(t, out, "update_task")
		assert.Equal(t, ids["market"], call.Arguments["task_id"])
		assert.Equal(t, "grocery shopping", call.Arguments["title"])
	})

	t.Run("change the X task to Y", func(t *testing.T) {
		p, ids := newParser("market")
		out := p.Parse(ctx, "u1", "change the market task to weekly shop")
		call := singleCall(t, out, "update_task")
		assert.Equal(t, ids["market"], call.Arguments["task_id"])
		assert.Equal(t, "weekly shop", call.Arguments["title"])
	})

	t.Run("ambiguous reference asks instead of acting", func(t *testing.T) {
		p, _ := newParser("milk run", "buy milk")
		out := p.Parse(ctx, "u1", "edit milk to oat milk")
		require.NotNil(t, out)
		assert.Empty(t, out.ToolCalls)
		assert.Contains(t, out.Response, "multiple")
	})

	t.Run("unknown reference", func(t *testing.T) {
		p, _ := newParser("call dentist")
		out := p.Parse(ctx, "u1", "rename taxes to file taxes")
		require.NotNil(t, out)
		assert.Empty(t, out.ToolCalls)
		assert.Contains(t, out.Response, "nahi mila")
	})
}

func TestParseDeleteFamily(t *testing.T) {
	ctx := context.Background()

	t.Run("delete by title", func(t *testing.T) {
		p, ids := newParser("groceries", "call dentist")
		out := p.Parse(ctx, "u1", "delete the groceries task")
		call := singleCall(t, out, "delete_task")
		assert.Equal(t, ids["groceries"], call.Arguments["task_id"])
	})

	t.Run("remove", func(t *testing.T) {
		p, ids := newParser("old notes")
		out := p.Parse(ctx, "u1", "remove old notes")
		call := singleCall(t, out, "delete_task")
		assert.Equal(t, ids["old notes"], call.Arguments["task_id"])
	})
}

func TestParseCompleteFamily(t *testing.T) {
	ctx := context.Background()

	t.Run("complete strips the trailing task word", func(t *testing.T) {
		p, ids := newParser("market", "call dentist")
		out := p.Parse(ctx, "u1", "Complete market task")
		call := singleCall(t, out, "complete_task")
		assert.Equal(t, ids["market"], call.Arguments["task_id"])
	})

	t.Run("market never matches the verb mark", func(t *testing.T) {
		p, _ := newParser("market")
		out := p.Parse(ctx, "u1", "market")
		require.NotNil(t, out)
		assert.Empty(t, out.ToolCalls, "a bare noun is not a completion")
	})

	t.Run("mark as done", func(t *testing.T) {
		p, ids := newParser("buy milk")
		out := p.Parse(ctx, "u1", "mark buy milk as done")
		call := singleCall(t, out, "complete_task")
		assert.Equal(t, ids["buy milk"], call.Arguments["task_id"])
	})

	t.Run("finish", func(t *testing.T) {
		p, ids := newParser("essay draft")
		out := p.Parse(ctx, "u1", "finish essay draft")
		call := singleCall(t, out, "complete_task")
		assert.Equal(t, ids["essay draft"], call.Arguments["task_id"])
	})
}

func TestParseListFamily(t *testing.T) {
	ctx := context.Background()

	t.Run("plain list", func(t *testing.T) {
		p, _ := newParser()
		out := p.Parse(ctx, "u1", "show all my tasks")
		call := singleCall(t, out, "list_tasks")
		assert.Equal(t, "all", call.Arguments["status"])
	})

	t.Run("pending", func(t *testing.T) {
		p, _ := newParser()
		out := p.Parse(ctx, "u1", "list my pending tasks")
		call := singleCall(t, out, "list_tasks")
		assert.Equal(t, "pending", call.Arguments["status"])
	})

	t.Run("list completed is a listing not a completion", func(t *testing.T) {
		p, _ := newParser()
		out := p.Parse(ctx, "u1", "list completed tasks")
		call := singleCall(t, out, "list_tasks")
		assert.Equal(t, "completed", call.Arguments["status"])
	})

	t.Run("show done", func(t *testing.T) {
		p, _ := newParser()
		out := p.Parse(ctx, "u1", "show me the done ones")
		call := singleCall(t, out, "list_tasks")
		assert.Equal(t, "completed", call.Arguments["status"])
	})

	t.Run("greeting followed by a command is a command", func(t *testing.T) {
		p, _ := newParser()
		out := p.Parse(ctx, "u1", "hi list my tasks")
		singleCall(t, out, "list_tasks")
	})
}

func TestParseSearchFamily(t *testing.T) {
	ctx := context.Background()

	t.Run("free text", func(t *testing.T) {
		p, _ := newParser()
		out := p.Parse(ctx, "u1", "search for milk")
		call := singleCall(t, out, "search_tasks")
		assert.Equal(t, "milk", call.Arguments["query"])
	})

	t.Run("priority phrase without a verb", func(t *testing.T) {
		p, _ := newParser()
		out := p.Parse(ctx, "u1", "high priority tasks")
		call := singleCall(t, out, "search_tasks")
		assert.Equal(t, "high", call.Arguments["priority"])
		assert.NotContains(t, call.Arguments, "query")
	})

	t.Run("due keyword takes over the query", func(t *testing.T) {
		p, _ := newParser()
		out := p.Parse(ctx, "u1", "what is due tomorrow")
		call := singleCall(t, out, "search_tasks")
		assert.Equal(t, "due tomorrow", call.Arguments["query"])
	})

	t.Run("find with priority strips the phrase from the query", func(t *testing.T) {
		p, _ := newParser()
		out := p.Parse(ctx, "u1", "find urgent tasks")
		call := singleCall(t, out, "search_tasks")
		assert.Equal(t, "high", call.Arguments["priority"])
	})
}

func TestParseSortFamily(t *testing.T) {
	ctx := context.Background()

	t.Run("due date descending", func(t *testing.T) {
		p, _ := newParser()
		out := p.Parse(ctx, "u1", "sort my tasks by due date descending")
		call := singleCall(t, out, "sort_tasks")
		assert.Equal(t, "due_date", call.Arguments["field"])
		assert.Equal(t, "desc", call.Arguments["order"])
	})

	t.Run("priority defaults ascending", func(t *testing.T) {
		p, _ := newParser()
		out := p.Parse(ctx, "u1", "order by priority")
		call := singleCall(t, out, "sort_tasks")
		assert.Equal(t, "priority", call.Arguments["field"])
		assert.Equal(t, "asc", call.Arguments["order"])
	})

	t.Run("latest first", func(t *testing.T) {
		p, _ := newParser()
		out := p.Parse(ctx, "u1", "latest tasks first")
		call := singleCall(t, out, "sort_tasks")
		assert.Equal(t, "created_at", call.Arguments["field"])
		assert.Equal(t, "desc", call.Arguments["order"])
	})
}

func TestParseGreetingAndDefault(t *testing.T) {
	ctx := context.Background()

	t.Run("pure greeting yields nil", func(t *testing.T) {
		p, _ := newParser()
		for _, msg := range []string{"hi", "Hello!", "hey", "AOA", "salam"} {
			assert.Nil(t, p.Parse(ctx, "u1", msg), msg)
		}
	})

	t.Run("unclassified chatter gets the greeting reply", func(t *testing.T) {
		p, _ := newParser()
		out := p.Parse(ctx, "u1", "what a nice morning")
		require.NotNil(t, out)
		assert.Empty(t, out.ToolCalls)
		assert.Equal(t, greetingReply, out.Response)
	})

	t.Run("chat title falls back to the leading words", func(t *testing.T) {
		p, _ := newParser()
		out := p.Parse(ctx, "u1", "add a task called plan the launch")
		require.NotNil(t, out)
		assert.NotEmpty(t, out.ChatTitle)
	})
}
