package tools

import (
	"context"
	"fmt"

	"github.com/example/todo-assistant/internal/store"
)

type ListTool struct{}

func (t *ListTool) Name() string { return "list_tasks" }

func (t *ListTool) Execute(ctx context.Context, st store.TaskStore, args map[string]any) (*Result, error) {
	status := strArg(args, "status")
	if status == "" {
		status = "all"
	}
	tasks, err := st.List(ctx, userIDArg(args), store.Filters{Status: status}, store.Sort{Field: "created_at"}, store.Page{})
	if err != nil {
		return nil, err
	}
	label := status
	if label == "all" {
		label = ""
	} else {
		label += " "
	}
	return &Result{
		Message: fmt.Sprintf("Found %d %stasks.", len(tasks), label),
		Tasks:   tasks,
	}, nil
}
