package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/example/todo-assistant/internal/models"
	"github.com/example/todo-assistant/internal/resolve"
)

// Parser is the deterministic fallback interpreter: an ordered cascade of
// verb-family detectors over the raw message. It depends only on the
// message text and the resolver.
type Parser struct {
	resolver *resolve.Resolver
}

func NewParser(r *resolve.Resolver) *Parser {
	return &Parser{resolver: r}
}

// family is one detector in the cascade. A true second return means the
// family claimed the message, even when the result is only a
// clarification with no tool call.
type family func(ctx context.Context, userID, msg string) (*Interpretation, bool)

// Parse classifies the message into the first matching verb family.
// Returns nil only for pure greetings, which the caller answers with a
// canned reply. Every other path yields at least a clarification.
func (p *Parser) Parse(ctx context.Context, userID, message string) *Interpretation {
	lower := strings.ToLower(strings.TrimSpace(message))
	if IsPureGreeting(lower) {
		return nil
	}

	families := []family{
		p.addFamily,
		p.updateFamily,
		p.deleteFamily,
		p.completeFamily,
		p.listFamily,
		p.searchFamily,
		p.sortFamily,
	}
	for _, f := range families {
		if out, ok := f(ctx, userID, lower); ok {
			if out.ChatTitle == "" {
				out.ChatTitle = FallbackTitle(message)
			}
			return out
		}
	}

	out := &Interpretation{Response: greetingReply, ChatTitle: FallbackTitle(message)}
	if HasTaskVerb(lower) {
		out.Response = clarifyTaskReply
	}
	return out
}

// Filler words stripped iteratively from the front of a captured span.
var fillerPrefix = regexp.MustCompile(`^(?:to|my|a|the|task|tasks|called|named|as|is|with|label)\s+`)

// cleanCapture strips filler prefixes until a fixed point, then one layer
// of surrounding quotes.
func cleanCapture(s string) string {
	s = strings.TrimSpace(s)
	for {
		next := strings.TrimSpace(fillerPrefix.ReplaceAllString(s, ""))
		if next == s {
			break
		}
		s = next
	}
	return resolve.Normalize(s)
}

var addCapture = regexp.MustCompile(`(?:add|create).*?(?:task|:|called|named)\s+(.+)`)

func (p *Parser) addFamily(ctx context.Context, userID, msg string) (*Interpretation, bool) {
	if !strings.Contains(msg, "add") && !strings.Contains(msg, "create") {
		return nil, false
	}
	m := addCapture.FindStringSubmatch(msg)
	if m == nil {
		return &Interpretation{Response: "I'd like to help you add a task. Could you please specify the task title?"}, true
	}
	title := cleanCapture(m[1])
	if title == "" {
		return &Interpretation{Response: "I'd like to help you add a task. Could you please specify the task title?"}, true
	}
	return &Interpretation{
		Response: fmt.Sprintf("Added task: %s", title),
		ToolCalls: []models.ToolCall{{
			Name:      "add_task",
			Arguments: map[string]any{"title": title, "user_id": userID},
		}},
	}, true
}

var (
	updateTrigger    = regexp.MustCompile(`\b(?:upd|edi|cha|ren)`)
	updateConnector1 = regexp.MustCompile(`(?:upd|edi|cha|ren)\S*.*?(?:task|:|called|named)\s+(.+?)\s+(?:to|as|with)\s+(.+)`)
	updateConnector2 = regexp.MustCompile(`(?:upd|edi|cha|ren)\S*\s+(.+?)\s+(?:to|as|with)\s+(.+)`)
	updateLoose      = regexp.MustCompile(`(?:upd|edi|cha|ren)\S*\s+(?:task\s+)?(\S+)\s+(.+)`)
)

func (p *Parser) updateFamily(ctx context.Context, userID, msg string) (*Interpretation, bool) {
	if !updateTrigger.MatchString(msg) {
		return nil, false
	}
	var identifier, newTitle string
	for _, re := range []*regexp.Regexp{updateConnector1, updateConnector2, updateLoose} {
		if m := re.FindStringSubmatch(msg); m != nil {
			identifier = cleanCapture(trailTask.ReplaceAllString(m[1], ""))
			newTitle = cleanCapture(m[2])
			if identifier != "" && newTitle != "" {
				break
			}
		}
	}
	if identifier == "" || newTitle == "" {
		return &Interpretation{Response: "Aap kis task ko badalna chahte hain aur uska naya naam kya hoga? (e.g. 'Change milk to buy milk') 🙂"}, true
	}

	task, outcome, err := p.resolver.Resolve(ctx, userID, identifier)
	if err != nil {
		outcome = resolve.NotFound
	}
	switch outcome {
	case resolve.Found:
		return &Interpretation{
			Response: fmt.Sprintf("Theek hai, task '%s' ko '%s' kar diya hai. 🙂", task.Title, newTitle),
			ToolCalls: []models.ToolCall{{
				Name:      "update_task",
				Arguments: map[string]any{"task_id": task.ID, "title": newTitle, "user_id": userID},
			}},
		}, true
	case resolve.Ambiguous:
		return &Interpretation{Response: fmt.Sprintf("Mujhe multiple tasks mile hain '%s' matching. Kisko update karun?", identifier)}, true
	default:
		return &Interpretation{Response: fmt.Sprintf("Mujhe '%s' naam ka koi task nahi mila jise update kar sakun.", identifier)}, true
	}
}

var (
	deleteTrigger  = regexp.MustCompile(`\b(?:del|rem)`)
	deleteCapture1 = regexp.MustCompile(`(?:del|rem)\S*.*?(?:task|:|called|named)\s+(.+)`)
	deleteCapture2 = regexp.MustCompile(`(?:del|rem)\S*\s+(?:task\s+)?(.+)`)
)

func (p *Parser) deleteFamily(ctx context.Context, userID, msg string) (*Interpretation, bool) {
	if !deleteTrigger.MatchString(msg) {
		return nil, false
	}
	var identifier string
	for _, re := range []*regexp.Regexp{deleteCapture1, deleteCapture2} {
		if m := re.FindStringSubmatch(msg); m != nil {
			if identifier = cleanCapture(trailTask.ReplaceAllString(m[1], "")); identifier != "" {
				break
			}
		}
	}
	if identifier == "" {
		return &Interpretation{Response: "Aap konsa task delete karna chahte hain? 🙂"}, true
	}

	task, outcome, err := p.resolver.Resolve(ctx, userID, identifier)
	if err != nil {
		outcome = resolve.NotFound
	}
	switch outcome {
	case resolve.Found:
		return &Interpretation{
			Response: fmt.Sprintf("Theek hai, task '%s' delete kar diya hai. 🙂", task.Title),
			ToolCalls: []models.ToolCall{{
				Name:      "delete_task",
				Arguments: map[string]any{"task_id": task.ID, "user_id": userID},
			}},
		}, true
	case resolve.Ambiguous:
		return &Interpretation{Response: fmt.Sprintf("Mujhe multiple tasks mile hain '%s' ke naam se. Aap please specify karenge?", identifier)}, true
	default:
		return &Interpretation{Response: fmt.Sprintf("Maaf kijiyega, mujhe '%s' naam ka koi task nahi mila.", identifier)}, true
	}
}

var (
	// \bmark\b keeps "market" from ever firing the verb "mark", and the
	// full "finish" stem keeps "find" out of this family.
	completeTrigger = regexp.MustCompile(`\b(?:comp|finish|done\b)|\bmark\b.*\b(?:c|d)|\bas\s+done\b|\bis\s+done\b`)
	markDoneCapture = regexp.MustCompile(`\bmark\s+(?:task\s+)?(.+?)\s+(?:as\s+done|is\s+done|done|completed?)\s*$`)
	completeCapture = regexp.MustCompile(`(?:comp|finish|done)\S*\s+(?:task\s+)?(.+)$`)
	trailQualifier  = regexp.MustCompile(`\s+(?:as\s+done|is\s+done|done)\s*$`)
	trailTask       = regexp.MustCompile(`\s+tasks?\s*$`)
	listTrigger     = regexp.MustCompile(`\b(?:list|show|all)\b`)
)

func (p *Parser) completeFamily(ctx context.Context, userID, msg string) (*Interpretation, bool) {
	loc := completeTrigger.FindStringIndex(msg)
	if loc == nil {
		return nil, false
	}
	// "list completed tasks" is a list request, not a completion: when a
	// list trigger precedes the completion token, yield to the list
	// family.
	if l := listTrigger.FindStringIndex(msg); l != nil && l[0] < loc[0] {
		return nil, false
	}

	var identifier string
	if m := markDoneCapture.FindStringSubmatch(msg); m != nil {
		identifier = m[1]
	} else if m := completeCapture.FindStringSubmatch(msg); m != nil {
		identifier = m[1]
	}
	identifier = trailQualifier.ReplaceAllString(identifier, "")
	identifier = trailTask.ReplaceAllString(identifier, "")
	identifier = cleanCapture(identifier)
	if identifier == "" {
		return &Interpretation{Response: "Aapne konsa kaam khatam kar liya hai? 🙂"}, true
	}

	task, outcome, err := p.resolver.Resolve(ctx, userID, identifier)
	if err != nil {
		outcome = resolve.NotFound
	}
	switch outcome {
	case resolve.Found:
		return &Interpretation{
			Response: fmt.Sprintf("Theek hai, task '%s' complete kar diya hai. 🙂", task.Title),
			ToolCalls: []models.ToolCall{{
				Name:      "complete_task",
				Arguments: map[string]any{"task_id": task.ID, "user_id": userID},
			}},
		}, true
	case resolve.Ambiguous:
		return &Interpretation{Response: "Multiple tasks mile hain matching your message. Aap please wazahat karenge?"}, true
	default:
		return &Interpretation{Response: fmt.Sprintf("Mujhe '%s' task nahi mila.", identifier)}, true
	}
}

func (p *Parser) listFamily(ctx context.Context, userID, msg string) (*Interpretation, bool) {
	if !strings.Contains(msg, "list") && !strings.Contains(msg, "show") && !strings.Contains(msg, "all") &&
		!strings.Contains(msg, "khatam") {
		return nil, false
	}
	status := "all"
	response := "Here are your tasks:"
	switch {
	case strings.Contains(msg, "pending") || strings.Contains(msg, "incomplete") || strings.Contains(msg, "khatam nahi hua"):
		status = "pending"
		response = "Here are your pending tasks:"
	case strings.Contains(msg, "completed") || strings.Contains(msg, "done") || strings.Contains(msg, "khatam ho gaya"):
		status = "completed"
		response = "Here are your completed tasks:"
	}
	return &Interpretation{
		Response: response,
		ToolCalls: []models.ToolCall{{
			Name:      "list_tasks",
			Arguments: map[string]any{"status": status, "user_id": userID},
		}},
	}, true
}

var (
	searchQueryCapture = regexp.MustCompile(`(?:search|find|look\s+for|look\s+up|look)\s+(?:for\s+)?(?:tasks?\s+)?(.+)$`)
	searchTailFilter   = regexp.MustCompile(`\s+(?:priority|status|due).*$`)
	priorityPhrase     = regexp.MustCompile(`\b(?:high|medium|low)\s+priority\b|\burgent\b`)
	dueKeywords        = []string{"due today", "due tomorrow", "due date", "this week", "today", "tomorrow"}
)

func (p *Parser) searchFamily(ctx context.Context, userID, msg string) (*Interpretation, bool) {
	// "sort by due date" carries a due keyword but is a sort request.
	if strings.Contains(msg, "sort") || strings.Contains(msg, "order") {
		return nil, false
	}
	hasVerb := strings.Contains(msg, "search") || strings.Contains(msg, "find") || strings.Contains(msg, "look")
	priority := searchPriority(msg)
	due := dueKeyword(msg)
	if !hasVerb && priority == "" && due == "" {
		return nil, false
	}

	query := ""
	if m := searchQueryCapture.FindStringSubmatch(msg); m != nil {
		q := searchTailFilter.ReplaceAllString(m[1], "")
		q = priorityPhrase.ReplaceAllString(q, "")
		q = trailTask.ReplaceAllString(q, "")
		query = cleanCapture(q)
	}
	// Due-date keywords take over the query slot; the search tool
	// understands them directly.
	if due != "" {
		query = due
	}

	args := map[string]any{"user_id": userID}
	if query != "" {
		args["query"] = query
	}
	if priority != "" {
		args["priority"] = priority
	}
	return &Interpretation{
		Response: "Here's what I found:",
		ToolCalls: []models.ToolCall{{
			Name:      "search_tasks",
			Arguments: args,
		}},
	}, true
}

func searchPriority(msg string) string {
	switch {
	case strings.Contains(msg, "high priority") || strings.Contains(msg, "urgent"):
		return "high"
	case strings.Contains(msg, "medium priority"):
		return "medium"
	case strings.Contains(msg, "low priority"):
		return "low"
	}
	return ""
}

func dueKeyword(msg string) string {
	for _, kw := range dueKeywords {
		if strings.Contains(msg, kw) {
			switch {
			case strings.Contains(msg, "today"):
				return "due today"
			case strings.Contains(msg, "tomorrow"):
				return "due tomorrow"
			default:
				return "this week"
			}
		}
	}
	return ""
}

var explicitOrder = regexp.MustCompile(`\b(asc|ascending|desc|descending)\b`)

func (p *Parser) sortFamily(ctx context.Context, userID, msg string) (*Interpretation, bool) {
	if !strings.Contains(msg, "sort") && !strings.Contains(msg, "order") &&
		!strings.Contains(msg, "latest") && !strings.Contains(msg, "oldest") {
		return nil, false
	}

	field := "created_at"
	switch {
	case strings.Contains(msg, "due") || strings.Contains(msg, "date"):
		field = "due_date"
	case strings.Contains(msg, "priority"):
		field = "priority"
	case strings.Contains(msg, "title") || strings.Contains(msg, "alphabetical"):
		field = "title"
	case strings.Contains(msg, "status"):
		field = "status"
	}

	order := "asc"
	if strings.Contains(msg, "latest") || strings.Contains(msg, "newest") {
		order = "desc"
	}
	if m := explicitOrder.FindStringSubmatch(msg); m != nil {
		if strings.HasPrefix(m[1], "asc") {
			order = "asc"
		} else {
			order = "desc"
		}
	}

	dir := "ascending"
	if order == "desc" {
		dir = "descending"
	}
	return &Interpretation{
		Response: fmt.Sprintf("Sorting tasks by %s in %s order:", field, dir),
		ToolCalls: []models.ToolCall{{
			Name:      "sort_tasks",
			Arguments: map[string]any{"field": field, "order": order, "user_id": userID},
		}},
	}, true
}
