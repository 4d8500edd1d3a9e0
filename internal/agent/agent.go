// Package agent turns free-form user messages into validated task
// operations and applies them. Two interpretation paths produce the same
// shape: the model-backed interpreter and the deterministic fallback
// parser it fails over to.
package agent

import (
	"regexp"
	"strings"

	"github.com/example/todo-assistant/internal/models"
)

// Interpretation is the common output of both interpretation paths.
type Interpretation struct {
	Response  string
	ToolCalls []models.ToolCall
	ChatTitle string
}

// The fixed tool vocabulary. Tool calls outside it are dropped, never
// executed.
var toolVocabulary = map[string]bool{
	"add_task":      true,
	"delete_task":   true,
	"complete_task": true,
	"update_task":   true,
	"list_tasks":    true,
	"search_tasks":  true,
	"sort_tasks":    true,
}

const (
	greetingReply    = "Hi 🙂 How can I help you?"
	clarifyTaskReply = "I see you're asking about a task. Could you please clarify what you'd like to do? 🙂"
)

// Greeting is the canned reply for turns that are a pure greeting.
func Greeting() string { return greetingReply }

var taskVerbs = []string{
	"add", "create", "delete", "remove", "update", "edit",
	"complete", "finish", "list", "show",
}

// HasTaskVerb reports whether the message mentions any task verb. It
// decides greeting suppression and the wording of the generic
// clarification reply.
func HasTaskVerb(message string) bool {
	m := strings.ToLower(message)
	for _, v := range taskVerbs {
		if strings.Contains(m, v) {
			return true
		}
	}
	return false
}

var greetingTokens = []*regexp.Regexp{
	regexp.MustCompile(`^hi$`),
	regexp.MustCompile(`^hello$`),
	regexp.MustCompile(`^hey$`),
	regexp.MustCompile(`^asalam\s*o\s*alaikum$`),
	regexp.MustCompile(`^aoa$`),
	regexp.MustCompile(`^salam$`),
}

// IsPureGreeting reports whether the message is a bare greeting with no
// task verb anywhere in it. A task verb always wins over a greeting.
func IsPureGreeting(message string) bool {
	clean := strings.ToLower(strings.TrimSpace(message))
	clean = strings.NewReplacer("?", "", "!", "", ".", "").Replace(clean)
	clean = strings.TrimSpace(clean)
	for _, g := range greetingTokens {
		if g.MatchString(clean) {
			return !HasTaskVerb(clean)
		}
	}
	return false
}

// FallbackTitle derives a chat title from the first words of a message
// when the interpreter did not supply one.
func FallbackTitle(message string) string {
	words := strings.Fields(message)
	if len(words) > 4 {
		words = words[:4]
	}
	title := strings.Join(words, " ")
	if runes := []rune(title); len(runes) > 30 {
		title = string(runes[:30]) + "..."
	}
	return title
}
