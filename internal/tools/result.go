package tools

import (
	"strings"
	"time"

	"github.com/example/todo-assistant/internal/models"
)

// Result is what a tool hands back: a user-presentable message plus the
// tasks it touched or found.
type Result struct {
	Message string
	Task    *models.Task
	Tasks   []*models.Task
}

func strArg(args map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := args[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func userIDArg(args map[string]any) string {
	return strArg(args, "user_id")
}

func priorityArg(args map[string]any) models.Priority {
	switch strings.ToLower(strArg(args, "priority")) {
	case "low":
		return models.PriorityLow
	case "medium":
		return models.PriorityMedium
	case "high", "urgent":
		return models.PriorityHigh
	default:
		return ""
	}
}

func dueDateArg(args map[string]any) *time.Time {
	raw := strArg(args, "due_date")
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

func tagsArg(args map[string]any) []string {
	raw, ok := args["tags"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
