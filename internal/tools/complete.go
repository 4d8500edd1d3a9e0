package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/todo-assistant/internal/store"
)

type CompleteTool struct{}

func (t *CompleteTool) Name() string { return "complete_task" }

func (t *CompleteTool) Execute(ctx context.Context, st store.TaskStore, args map[string]any) (*Result, error) {
	id := strArg(args, "task_id", "id")
	if id == "" {
		return nil, errors.New("missing task_id")
	}
	task, err := st.Complete(ctx, userIDArg(args), id)
	if err != nil {
		return nil, err
	}
	return &Result{
		Message: fmt.Sprintf("Nice, '%s' is done!", task.Title),
		Task:    task,
	}, nil
}
