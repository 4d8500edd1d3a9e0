package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/todo-assistant/internal/agent"
	"github.com/example/todo-assistant/internal/providers/llm"
	"github.com/example/todo-assistant/internal/resolve"
	"github.com/example/todo-assistant/internal/store"
	"github.com/example/todo-assistant/internal/tools"
)

func newOrchestrator(client llm.Client) (*Orchestrator, *store.Memory) {
	mem := store.NewMemory()
	log := zap.NewNop()
	parser := agent.NewParser(resolve.New(mem))
	interp := agent.NewInterpreter(client, parser, time.Second, log)
	coord := agent.NewCoordinator(tools.NewTaskRegistry(), mem, log)
	return New(mem, nil, interp, coord, log), mem
}

func TestProcessTurn(t *testing.T) {
	ctx := context.Background()

	t.Run("pure greeting", func(t *testing.T) {
		orch, _ := newOrchestrator(&llm.MockClient{Err: errors.New("must not be called")})
		result := orch.ProcessTurn(ctx, "u1", "hello!", "")
		require.NotNil(t, result)
		assert.Equal(t, agent.Greeting(), result.Response)
		assert.Empty(t, result.ToolCalls)
	})

	t.Run("model-driven add lands in the store", func(t *testing.T) {
		orch, mem := newOrchestrator(&llm.MockClient{
			Response: `{"response":"Added!","tool_calls":[{"name":"add_task","arguments":{"title":"buy milk"}}],"chat_title":"Groceries"}`,
		})
		result := orch.ProcessTurn(ctx, "u1", "add a task called buy milk", "")
		require.NotNil(t, result)
		assert.Contains(t, result.Response, "Added!")
		assert.Equal(t, "Groceries", result.ChatTitle)
		require.Len(t, result.Outcomes, 1)
		assert.True(t, result.Outcomes[0].OK)

		tasks, err := mem.List(ctx, "u1", store.Filters{}, store.Sort{}, store.Page{})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "buy milk", tasks[0].Title)
	})

	t.Run("model failure still produces a working turn", func(t *testing.T) {
		orch, mem := newOrchestrator(&llm.MockClient{Err: errors.New("rate limited")})
		result := orch.ProcessTurn(ctx, "u1", "add a task called pay rent", "")
		require.NotNil(t, result)
		require.Len(t, result.Outcomes, 1)
		assert.True(t, result.Outcomes[0].OK)

		tasks, err := mem.List(ctx, "u1", store.Filters{}, store.Sort{}, store.Page{})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "pay rent", tasks[0].Title)
	})

	t.Run("a turn always answers", func(t *testing.T) {
		orch, _ := newOrchestrator(&llm.MockClient{Response: "not json at all"})
		result := orch.ProcessTurn(ctx, "u1", "what a lovely day", "")
		require.NotNil(t, result)
		assert.NotEmpty(t, result.Response)
	})
}

func TestProcessTurnConversations(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	db := newRecordingConvs()
	log := zap.NewNop()
	parser := agent.NewParser(resolve.New(mem))
	interp := agent.NewInterpreter(&llm.MockClient{Response: `{"response":"ok","tool_calls":[],"chat_title":"Small talk"}`}, parser, time.Second, log)
	coord := agent.NewCoordinator(tools.NewTaskRegistry(), mem, log)
	orch := New(mem, db, interp, coord, log)

	result := orch.ProcessTurn(ctx, "u1", "tell me something", "")
	require.NotNil(t, result)
	require.NotEmpty(t, result.ConversationID)

	conv, err := db.GetConversation(ctx, "u1", result.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "Small talk", conv.Title)

	msgs, err := db.ListMessages(ctx, result.ConversationID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "tell me something", msgs[0].Content)
	assert.Equal(t, "assistant", msgs[1].Role)

	// A second turn in the same conversation appends, not recreates.
	again := orch.ProcessTurn(ctx, "u1", "and another thing", result.ConversationID)
	assert.Equal(t, result.ConversationID, again.ConversationID)
	msgs, err = db.ListMessages(ctx, result.ConversationID)
	require.NoError(t, err)
	assert.Len(t, msgs, 4)
}
