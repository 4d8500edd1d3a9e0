package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/todo-assistant/internal/models"
	"github.com/example/todo-assistant/internal/store"
)

type SearchTool struct{}

func (t *SearchTool) Name() string { return "search_tasks" }

// Execute combines a free-text query with status and priority filters.
// A query of "due today" / "due tomorrow" / "this week" filters on due
// date instead of title text. With no query and no filters it matches
// everything, by policy: a vague search beats a refusal.
func (t *SearchTool) Execute(ctx context.Context, st store.TaskStore, args map[string]any) (*Result, error) {
	userID := userIDArg(args)
	query := strArg(args, "query")
	status := strArg(args, "status")
	priority := priorityArg(args)

	var (
		tasks []*models.Task
		err   error
	)
	if query != "" && status == "" && priority == "" && !isDueKeyword(query) {
		tasks, err = st.Search(ctx, userID, query)
	} else {
		tasks, err = st.List(ctx, userID, store.Filters{Status: status, Priority: priority}, store.Sort{Field: "created_at"}, store.Page{})
		if err == nil && query != "" && !isDueKeyword(query) {
			tasks = filterByText(tasks, query)
		}
	}
	if err != nil {
		return nil, err
	}

	if isDueKeyword(query) {
		tasks = filterByDue(tasks, query, time.Now())
	}

	return &Result{
		Message: fmt.Sprintf("Found %d matching tasks.", len(tasks)),
		Tasks:   tasks,
	}, nil
}

func isDueKeyword(q string) bool {
	switch strings.ToLower(strings.TrimSpace(q)) {
	case "due today", "due tomorrow", "today", "tomorrow", "this week", "due date":
		return true
	}
	return false
}

func filterByText(tasks []*models.Task, query string) []*models.Task {
	q := strings.ToLower(query)
	var out []*models.Task
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.Description), q) {
			out = append(out, t)
		}
	}
	return out
}

func filterByDue(tasks []*models.Task, keyword string, now time.Time) []*models.Task {
	// Day windows start at local midnight, not the UTC day boundary.
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	var from, to time.Time
	switch strings.ToLower(strings.TrimSpace(keyword)) {
	case "due today", "today", "due date":
		from, to = today, today.AddDate(0, 0, 1)
	case "due tomorrow", "tomorrow":
		from, to = today.AddDate(0, 0, 1), today.AddDate(0, 0, 2)
	case "this week":
		from, to = today, today.AddDate(0, 0, 7)
	default:
		return tasks
	}
	var out []*models.Task
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		d := *t.DueDate
		if !d.Before(from) && d.Before(to) {
			out = append(out, t)
		}
	}
	return out
}
