// Package resolve maps free-text task references ("market", a pasted id,
// "[groceries]") to concrete tasks.
package resolve

import (
	"context"
	"errors"
	"strings"

	"github.com/example/todo-assistant/internal/models"
	"github.com/example/todo-assistant/internal/store"
)

// Outcome is the tri-state result of a resolution. Multiple candidate
// matches collapse into Ambiguous; the resolver never picks one.
type Outcome int

const (
	Found Outcome = iota
	Ambiguous
	NotFound
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "FOUND"
	case Ambiguous:
		return "AMBIGUOUS"
	default:
		return "NOT_FOUND"
	}
}

// Task ids are 32 hex chars; anything this long is treated as id-shaped.
const idShapeMinLen = 30

// Resolver looks tasks up by id or title through the task store.
type Resolver struct {
	store store.TaskStore
}

func New(st store.TaskStore) *Resolver {
	return &Resolver{store: st}
}

// Resolve maps an identifier to a task. Matching order, first conclusive
// stage wins:
//  1. id-shaped strings are looked up directly; a miss falls through
//  2. exact title match, case-insensitive; more than one hit is Ambiguous
//  3. partial title match (substring containment)
//
// The returned task is non-nil only for Found.
func (r *Resolver) Resolve(ctx context.Context, userID, identifier string) (*models.Task, Outcome, error) {
	identifier = Normalize(identifier)
	if identifier == "" {
		return nil, NotFound, nil
	}

	if len(identifier) >= idShapeMinLen {
		t, err := r.store.Get(ctx, userID, identifier)
		if err == nil {
			return t, Found, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, NotFound, err
		}
		// Miss: a long string can still be a long title.
	}

	tasks, err := r.store.List(ctx, userID, store.Filters{}, store.Sort{}, store.Page{})
	if err != nil {
		return nil, NotFound, err
	}

	lower := strings.ToLower(identifier)

	var exact []*models.Task
	for _, t := range tasks {
		if strings.ToLower(t.Title) == lower {
			exact = append(exact, t)
		}
	}
	switch len(exact) {
	case 1:
		return exact[0], Found, nil
	case 0:
	default:
		return nil, Ambiguous, nil
	}

	var partial []*models.Task
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), lower) {
			partial = append(partial, t)
		}
	}
	switch len(partial) {
	case 1:
		return partial[0], Found, nil
	case 0:
		return nil, NotFound, nil
	default:
		return nil, Ambiguous, nil
	}
}

var bracketPairs = map[byte]byte{
	'"':  '"',
	'\'': '\'',
	'[':  ']',
	'(':  ')',
	'{':  '}',
}

// Normalize trims whitespace and strips one layer of surrounding quotes
// or brackets.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if closer, ok := bracketPairs[s[0]]; ok && s[len(s)-1] == closer {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}
