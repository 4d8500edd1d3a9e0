package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/todo-assistant/internal/models"
	"github.com/example/todo-assistant/internal/resolve"
	"github.com/example/todo-assistant/internal/store"
	"github.com/example/todo-assistant/internal/tools"
)

// Coordinator runs a turn's tool calls against the store. The batch is
// best-effort all: calls execute in order, a failure is recorded and
// never aborts the rest, and every mutation lands in one commit after
// the whole batch has been attempted.
type Coordinator struct {
	registry *tools.Registry
	store    store.Store
	log      *zap.Logger
}

func NewCoordinator(registry *tools.Registry, st store.Store, log *zap.Logger) *Coordinator {
	return &Coordinator{registry: registry, store: st, log: log}
}

// Tool names whose task_id argument may still be free text when the call
// came from the model rather than the fallback parser.
func needsResolution(name string) bool {
	switch name {
	case "update_task", "delete_task", "complete_task":
		return true
	}
	return false
}

// Execute applies the calls and composes the final reply: the base
// response, then any task listings the tools produced, then a single
// consolidated note covering every failure.
func (c *Coordinator) Execute(ctx context.Context, userID, base string, calls []models.ToolCall) (string, []models.ExecutionOutcome) {
	if len(calls) == 0 {
		return base, nil
	}

	tx, err := c.store.Begin(ctx)
	if err != nil {
		c.log.Error("could not open turn transaction", zap.Error(err))
		outcomes := make([]models.ExecutionOutcome, 0, len(calls))
		for _, call := range calls {
			outcomes = append(outcomes, models.ExecutionOutcome{Name: call.Name, Error: "storage unavailable"})
		}
		return composeReply(base, nil, []string{"storage unavailable"}), outcomes
	}
	resolver := resolve.New(tx)

	var (
		outcomes []models.ExecutionOutcome
		listing  []*models.Task
		failures []string
	)
	record := func(name string, err error) {
		if err == nil {
			outcomes = append(outcomes, models.ExecutionOutcome{Name: name, OK: true})
			return
		}
		outcomes = append(outcomes, models.ExecutionOutcome{Name: name, Error: err.Error()})
		failures = append(failures, fmt.Sprintf("%s: %s", name, err.Error()))
	}

	for _, call := range calls {
		tool, ok := c.registry.Get(call.Name)
		if !ok {
			c.log.Warn("dropping unrecognized tool call", zap.String("name", call.Name))
			continue
		}
		args := cloneArgs(call.Arguments)
		args["user_id"] = userID

		if needsResolution(call.Name) {
			if err := c.resolveIDArg(ctx, resolver, userID, args); err != nil {
				record(call.Name, err)
				continue
			}
		}

		res, err := tool.Execute(ctx, tx, args)
		if err != nil {
			c.log.Debug("tool call failed", zap.String("name", call.Name), zap.Error(err))
			record(call.Name, err)
			continue
		}
		record(call.Name, nil)
		if len(res.Tasks) > 0 {
			listing = res.Tasks
		}
		if call.Name == "complete_task" && res.Task != nil && res.Task.Recurrence != nil {
			if err := c.spawnNextOccurrence(ctx, tx, res.Task); err != nil {
				c.log.Warn("could not create next occurrence", zap.String("task", res.Task.ID), zap.Error(err))
				failures = append(failures, fmt.Sprintf("next occurrence of '%s': %s", res.Task.Title, err.Error()))
			}
		}
	}

	if err := tx.Commit(); err != nil {
		c.log.Error("turn commit failed", zap.Error(err))
		failures = append(failures, "saving your changes failed, please try again")
	}

	return composeReply(base, listing, failures), outcomes
}

// resolveIDArg re-resolves a human-supplied identifier at execution
// time; parse-time snapshots can be stale. Id-shaped arguments pass
// through untouched.
func (c *Coordinator) resolveIDArg(ctx context.Context, resolver *resolve.Resolver, userID string, args map[string]any) error {
	id, _ := args["task_id"].(string)
	if id == "" {
		id, _ = args["id"].(string)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("no task reference given")
	}
	task, outcome, err := resolver.Resolve(ctx, userID, id)
	if err != nil {
		return err
	}
	switch outcome {
	case resolve.Found:
		args["task_id"] = task.ID
		return nil
	case resolve.Ambiguous:
		return fmt.Errorf("more than one task matches '%s', please be more specific", id)
	default:
		return fmt.Errorf("couldn't find a task matching '%s'", id)
	}
}

// spawnNextOccurrence creates the follow-up task for a completed
// recurring task. The next due date advances from the completed task's
// due date, or from now when it has none.
func (c *Coordinator) spawnNextOccurrence(ctx context.Context, st store.TaskStore, done *models.Task) error {
	current := time.Now().UTC()
	if done.DueDate != nil {
		current = *done.DueDate
	}
	next, ok := done.Recurrence.NextDueDate(current)
	if !ok {
		// End condition reached, or an unknown recurrence type.
		return nil
	}
	_, err := st.Create(ctx, done.UserID, models.TaskFields{
		Title:       done.Title,
		Description: done.Description,
		Priority:    done.Priority,
		Status:      models.StatusActive,
		DueDate:     &next,
		Tags:        done.Tags,
		Recurrence:  done.Recurrence,
	})
	return err
}

func composeReply(base string, listing []*models.Task, failures []string) string {
	var b strings.Builder
	b.WriteString(base)
	if len(listing) > 0 {
		b.WriteString("\n")
		for _, t := range listing {
			state := "Pending"
			if t.Completed {
				state = "Completed"
			}
			fmt.Fprintf(&b, "\n- %s (%s)", t.Title, state)
		}
	}
	if len(failures) > 0 {
		b.WriteString("\n\nNote: some of that didn't work out: ")
		b.WriteString(strings.Join(failures, "; "))
	}
	return b.String()
}

func cloneArgs(args map[string]any) map[string]any {
	out := make(map[string]any, len(args)+1)
	for k, v := range args {
		out[k] = v
	}
	return out
}
