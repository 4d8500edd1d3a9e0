package tools

import (
	"context"
	"errors"

	"github.com/example/todo-assistant/internal/store"
)

type DeleteTool struct{}

func (t *DeleteTool) Name() string { return "delete_task" }

func (t *DeleteTool) Execute(ctx context.Context, st store.TaskStore, args map[string]any) (*Result, error) {
	id := strArg(args, "task_id", "id")
	if id == "" {
		return nil, errors.New("missing task_id")
	}
	if err := st.Delete(ctx, userIDArg(args), id); err != nil {
		return nil, err
	}
	return &Result{Message: "All set, the task is gone."}, nil
}
