// Package tools implements the fixed tool vocabulary the agent is allowed
// to execute: add_task, delete_task, complete_task, update_task,
// list_tasks, search_tasks, sort_tasks.
package tools

import (
	"context"

	"github.com/example/todo-assistant/internal/store"
)

// Tool executes one named operation against a task store. The store is
// passed per call so a turn can run every tool inside one transaction.
type Tool interface {
	Name() string
	Execute(ctx context.Context, st store.TaskStore, args map[string]any) (*Result, error)
}

type Registry struct {
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: map[string]Tool{}}
}

// NewTaskRegistry returns a registry holding the full task vocabulary.
func NewTaskRegistry() *Registry {
	r := NewRegistry()
	r.Register(&AddTool{})
	r.Register(&UpdateTool{})
	r.Register(&DeleteTool{})
	r.Register(&CompleteTool{})
	r.Register(&ListTool{})
	r.Register(&SearchTool{})
	r.Register(&SortTool{})
	return r
}

func (r *Registry) Register(t Tool) {
	r.tools[t.Name()] = t
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names lists the registered vocabulary.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.tools))
	for name := range r.tools {
		out = append(out, name)
	}
	return out
}
