package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/todo-assistant/internal/agent"
	"github.com/example/todo-assistant/internal/models"
	"github.com/example/todo-assistant/internal/orchestrator"
	"github.com/example/todo-assistant/internal/providers/llm"
	"github.com/example/todo-assistant/internal/resolve"
	"github.com/example/todo-assistant/internal/store"
	"github.com/example/todo-assistant/internal/tools"
)

func newTestServer(t *testing.T, client llm.Client) (*httptest.Server, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	log := zap.NewNop()
	parser := agent.NewParser(resolve.New(mem))
	interp := agent.NewInterpreter(client, parser, time.Second, log)
	coord := agent.NewCoordinator(tools.NewTaskRegistry(), mem, log)
	orch := orchestrator.New(mem, nil, interp, coord, log)

	mux := http.NewServeMux()
	NewServer(orch, mem, nil, log).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, mem
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &llm.MockClient{})
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestChatEndpoint(t *testing.T) {
	t.Run("runs a turn end to end", func(t *testing.T) {
		srv, mem := newTestServer(t, &llm.MockClient{
			Response: `{"response":"Added!","tool_calls":[{"name":"add_task","arguments":{"title":"buy milk"}}]}`,
		})
		resp, err := http.Post(srv.URL+"/chat", "application/json",
			strings.NewReader(`{"user_id":"u1","message":"add a task called buy milk"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result models.TurnResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Contains(t, result.Response, "Added!")

		tasks, err := mem.List(t.Context(), "u1", store.Filters{}, store.Sort{}, store.Page{})
		require.NoError(t, err)
		assert.Len(t, tasks, 1)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		srv, _ := newTestServer(t, &llm.MockClient{})
		resp, err := http.Post(srv.URL+"/chat", "application/json", strings.NewReader(`{"user_id":"u1"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejects wrong method", func(t *testing.T) {
		srv, _ := newTestServer(t, &llm.MockClient{})
		resp, err := http.Get(srv.URL + "/chat")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestTasksEndpoint(t *testing.T) {
	t.Run("create then list", func(t *testing.T) {
		srv, _ := newTestServer(t, &llm.MockClient{})
		resp, err := http.Post(srv.URL+"/tasks", "application/json",
			strings.NewReader(`{"user_id":"u1","title":"pay rent","priority":"high"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var created models.Task
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
		assert.Equal(t, "pay rent", created.Title)
		assert.Equal(t, models.PriorityHigh, created.Priority)

		listResp, err := http.Get(srv.URL + "/tasks?user_id=u1&status=pending")
		require.NoError(t, err)
		defer listResp.Body.Close()
		require.Equal(t, http.StatusOK, listResp.StatusCode)

		var listed []*models.Task
		require.NoError(t, json.NewDecoder(listResp.Body).Decode(&listed))
		require.Len(t, listed, 1)
		assert.Equal(t, created.ID, listed[0].ID)
	})

	t.Run("priority query filters the listing", func(t *testing.T) {
		srv, mem := newTestServer(t, &llm.MockClient{})
		mem.Seed(&models.Task{ID: models.NewTaskID(), UserID: "u1", Title: "fix leak", Priority: models.PriorityHigh})
		mem.Seed(&models.Task{ID: models.NewTaskID(), UserID: "u1", Title: "fix typo", Priority: models.PriorityLow})

		resp, err := http.Get(srv.URL + "/tasks?user_id=u1&priority=high")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var listed []*models.Task
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
		require.Len(t, listed, 1)
		assert.Equal(t, "fix leak", listed[0].Title)
	})

	t.Run("empty title is a client error", func(t *testing.T) {
		srv, _ := newTestServer(t, &llm.MockClient{})
		resp, err := http.Post(srv.URL+"/tasks", "application/json",
			strings.NewReader(`{"user_id":"u1","title":""}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("list requires a user", func(t *testing.T) {
		srv, _ := newTestServer(t, &llm.MockClient{})
		resp, err := http.Get(srv.URL + "/tasks")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
