package agent

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/todo-assistant/internal/models"
	"github.com/example/todo-assistant/internal/providers/llm"
)

// Interpreter is the primary interpretation path. It asks the generative
// model for a JSON answer and falls back to the deterministic parser on
// any failure: transport error, timeout, cancellation, or un-parseable
// output. The fallback's result then IS the turn's result.
type Interpreter struct {
	client  llm.Client
	parser  *Parser
	timeout time.Duration
	log     *zap.Logger
}

func NewInterpreter(client llm.Client, parser *Parser, timeout time.Duration, log *zap.Logger) *Interpreter {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Interpreter{client: client, parser: parser, timeout: timeout, log: log}
}

// modelOutput mirrors the JSON shape the prompt asks for.
type modelOutput struct {
	Response  string `json:"response"`
	ToolCalls []struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	} `json:"tool_calls"`
	ChatTitle string `json:"chat_title"`
}

// Interpret produces the turn's interpretation. Returns nil only for
// pure greetings (via the parser).
func (i *Interpreter) Interpret(ctx context.Context, userID, message string, snapshot []*models.Task) *Interpretation {
	if IsPureGreeting(message) {
		return nil
	}

	cctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()
	raw, err := i.client.Generate(cctx, BuildPrompt(message, snapshot))
	if err != nil {
		i.log.Debug("interpreter unavailable, using fallback parser", zap.Error(err))
		return i.parser.Parse(ctx, userID, message)
	}

	obj, ok := extractJSONObject(raw)
	if !ok {
		i.log.Debug("no JSON object in interpreter output, using fallback parser",
			zap.String("raw", truncate(raw, 200)))
		return i.parser.Parse(ctx, userID, message)
	}
	var parsed modelOutput
	if err := json.Unmarshal([]byte(obj), &parsed); err != nil {
		i.log.Debug("interpreter JSON did not decode, using fallback parser", zap.Error(err))
		return i.parser.Parse(ctx, userID, message)
	}

	out := &Interpretation{
		Response:  strings.TrimSpace(parsed.Response),
		ChatTitle: strings.TrimSpace(parsed.ChatTitle),
	}
	for _, call := range parsed.ToolCalls {
		if !toolVocabulary[call.Name] {
			i.log.Debug("dropping tool call outside vocabulary", zap.String("name", call.Name))
			continue
		}
		args := call.Arguments
		if args == nil {
			args = map[string]any{}
		}
		args["user_id"] = userID
		out.ToolCalls = append(out.ToolCalls, models.ToolCall{Name: call.Name, Arguments: args})
	}

	if out.Response == "" {
		out.Response = "I've processed your request."
	}
	// The model must not shrug off a task request with small talk.
	if HasTaskVerb(message) && len(out.ToolCalls) == 0 && looksLikeGreeting(out.Response) {
		out.Response = clarifyTaskReply
	}
	if out.ChatTitle == "" {
		out.ChatTitle = FallbackTitle(message)
	}
	return out
}

func looksLikeGreeting(response string) bool {
	r := strings.ToLower(strings.TrimSpace(response))
	return strings.HasPrefix(r, "hi ") || strings.HasPrefix(r, "hello") || strings.HasPrefix(r, "hey") ||
		r == "hi" || r == greetingReplyLower
}

var greetingReplyLower = strings.ToLower(greetingReply)

// extractJSONObject strips code fences and returns the first balanced
// top-level JSON object in s. Brace counting is naive about braces in
// strings, which has been fine for the shapes models actually return.
func extractJSONObject(s string) (string, bool) {
	t := strings.TrimSpace(s)
	if idx := strings.Index(t, "```json"); idx != -1 {
		t = t[idx+len("```json"):]
		if j := strings.Index(t, "```"); j != -1 {
			t = t[:j]
		}
	} else if strings.HasPrefix(t, "```") {
		t = strings.TrimPrefix(t, "```")
		if idx := strings.IndexByte(t, '\n'); idx != -1 {
			t = t[idx+1:]
		}
		if j := strings.LastIndex(t, "```"); j != -1 {
			t = t[:j]
		}
	}
	t = strings.TrimSpace(t)

	start := strings.IndexByte(t, '{')
	if start == -1 {
		return "", false
	}
	depth := 0
	for i := start; i < len(t); i++ {
		switch t[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return t[start : i+1], true
			}
		}
	}
	return "", false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
