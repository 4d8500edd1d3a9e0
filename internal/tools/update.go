package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/todo-assistant/internal/models"
	"github.com/example/todo-assistant/internal/store"
)

type UpdateTool struct{}

func (t *UpdateTool) Name() string { return "update_task" }

func (t *UpdateTool) Execute(ctx context.Context, st store.TaskStore, args map[string]any) (*Result, error) {
	id := strArg(args, "task_id", "id")
	if id == "" {
		return nil, errors.New("missing task_id")
	}

	var patch models.TaskPatch
	if title := strArg(args, "title"); title != "" {
		patch.Title = &title
	}
	if desc := strArg(args, "description"); desc != "" {
		patch.Description = &desc
	}
	if p := priorityArg(args); p != "" {
		patch.Priority = &p
	}
	if due := dueDateArg(args); due != nil {
		patch.DueDate = due
	}
	if tags := tagsArg(args); tags != nil {
		patch.Tags = tags
	}

	task, err := st.Update(ctx, userIDArg(args), id, patch)
	if err != nil {
		return nil, err
	}
	return &Result{
		Message: fmt.Sprintf("Got it, updated '%s'.", task.Title),
		Task:    task,
	}, nil
}
