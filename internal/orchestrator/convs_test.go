package orchestrator

import (
	"context"
	"time"

	"github.com/example/todo-assistant/internal/models"
	"github.com/example/todo-assistant/internal/store"
)

// recordingConvs is a minimal in-memory ConversationStore for tests.
type recordingConvs struct {
	convs    map[string]*models.Conversation
	messages map[string][]*models.Message
}

func newRecordingConvs() *recordingConvs {
	return &recordingConvs{
		convs:    map[string]*models.Conversation{},
		messages: map[string][]*models.Message{},
	}
}

func (r *recordingConvs) CreateConversation(ctx context.Context, userID, title string) (*models.Conversation, error) {
	now := time.Now().UTC()
	c := &models.Conversation{ID: models.NewTaskID(), UserID: userID, Title: title, CreatedAt: now, UpdatedAt: now}
	r.convs[c.ID] = c
	return c, nil
}

func (r *recordingConvs) GetConversation(ctx context.Context, userID, id string) (*models.Conversation, error) {
	c, ok := r.convs[id]
	if !ok || c.UserID != userID {
		return nil, store.ErrNotFound
	}
	return c, nil
}

func (r *recordingConvs) ListConversations(ctx context.Context, userID string) ([]*models.Conversation, error) {
	var out []*models.Conversation
	for _, c := range r.convs {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *recordingConvs) AppendMessage(ctx context.Context, conversationID, role, content string) (*models.Message, error) {
	m := &models.Message{
		ID:             models.NewTaskID(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
	r.messages[conversationID] = append(r.messages[conversationID], m)
	return m, nil
}

func (r *recordingConvs) ListMessages(ctx context.Context, conversationID string) ([]*models.Message, error) {
	return r.messages[conversationID], nil
}
