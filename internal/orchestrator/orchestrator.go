// Package orchestrator ties one conversational turn together: interpret
// the message, run the resulting tool calls, and persist the exchange.
package orchestrator

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/todo-assistant/internal/agent"
	"github.com/example/todo-assistant/internal/models"
	"github.com/example/todo-assistant/internal/store"
)

type Orchestrator struct {
	store  store.Store
	convs  store.ConversationStore
	interp *agent.Interpreter
	coord  *agent.Coordinator
	log    *zap.Logger
}

func New(st store.Store, convs store.ConversationStore, interp *agent.Interpreter, coord *agent.Coordinator, log *zap.Logger) *Orchestrator {
	return &Orchestrator{store: st, convs: convs, interp: interp, coord: coord, log: log}
}

// ProcessTurn handles a single user message. It always returns a usable
// TurnResult; conversation persistence failures are logged but never
// surface to the user.
func (o *Orchestrator) ProcessTurn(ctx context.Context, userID, message, conversationID string) *models.TurnResult {
	snapshot, err := o.store.List(ctx, userID, store.Filters{}, store.Sort{}, store.Page{})
	if err != nil {
		o.log.Warn("could not load task snapshot", zap.Error(err))
		snapshot = nil
	}

	interp := o.interp.Interpret(ctx, userID, message, snapshot)
	if interp == nil {
		result := &models.TurnResult{Response: agent.Greeting(), ChatTitle: agent.FallbackTitle(message)}
		result.ConversationID = o.persist(ctx, userID, conversationID, message, result)
		return result
	}

	response, outcomes := o.coord.Execute(ctx, userID, interp.Response, interp.ToolCalls)

	result := &models.TurnResult{
		Response:  response,
		ToolCalls: interp.ToolCalls,
		ChatTitle: interp.ChatTitle,
		Outcomes:  outcomes,
	}
	result.ConversationID = o.persist(ctx, userID, conversationID, message, result)
	return result
}

// persist writes the user and assistant messages, creating the
// conversation first when the caller didn't name one.
func (o *Orchestrator) persist(ctx context.Context, userID, conversationID, message string, result *models.TurnResult) string {
	if o.convs == nil {
		return conversationID
	}
	if conversationID == "" {
		title := result.ChatTitle
		if title == "" {
			title = agent.FallbackTitle(message)
		}
		conv, err := o.convs.CreateConversation(ctx, userID, title)
		if err != nil {
			o.log.Warn("could not create conversation", zap.Error(err))
			return ""
		}
		conversationID = conv.ID
	}
	if _, err := o.convs.AppendMessage(ctx, conversationID, "user", message); err != nil {
		o.log.Warn("could not record user message", zap.Error(err))
	}
	if _, err := o.convs.AppendMessage(ctx, conversationID, "assistant", result.Response); err != nil {
		o.log.Warn("could not record assistant message", zap.Error(err))
	}
	return conversationID
}
