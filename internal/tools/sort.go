package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/todo-assistant/internal/store"
)

type SortTool struct{}

func (t *SortTool) Name() string { return "sort_tasks" }

func (t *SortTool) Execute(ctx context.Context, st store.TaskStore, args map[string]any) (*Result, error) {
	field := normalizeSortField(strArg(args, "field"))
	order := strings.ToLower(strArg(args, "order"))
	desc := order == "desc" || order == "descending" || order == "latest"

	tasks, err := st.List(ctx, userIDArg(args), store.Filters{}, store.Sort{Field: field, Desc: desc}, store.Page{})
	if err != nil {
		return nil, err
	}
	dir := "ascending"
	if desc {
		dir = "descending"
	}
	return &Result{
		Message: fmt.Sprintf("Tasks sorted by %s (%s).", field, dir),
		Tasks:   tasks,
	}, nil
}

func normalizeSortField(field string) string {
	switch strings.ToLower(strings.ReplaceAll(field, "_", " ")) {
	case "due date", "due":
		return "due_date"
	case "priority":
		return "priority"
	case "title":
		return "title"
	case "status":
		return "status"
	default:
		return "created_at"
	}
}
