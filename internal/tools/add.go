package tools

import (
	"context"
	"fmt"

	"github.com/example/todo-assistant/internal/models"
	"github.com/example/todo-assistant/internal/store"
)

type AddTool struct{}

func (t *AddTool) Name() string { return "add_task" }

func (t *AddTool) Execute(ctx context.Context, st store.TaskStore, args map[string]any) (*Result, error) {
	fields := models.TaskFields{
		Title:       strArg(args, "title"),
		Description: strArg(args, "description"),
		Priority:    priorityArg(args),
		DueDate:     dueDateArg(args),
		Tags:        tagsArg(args),
	}
	task, err := st.Create(ctx, userIDArg(args), fields)
	if err != nil {
		return nil, err
	}
	return &Result{
		Message: fmt.Sprintf("Done! I've added '%s' to your list.", task.Title),
		Task:    task,
	}, nil
}
