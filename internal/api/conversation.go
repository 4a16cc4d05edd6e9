package api

import (
	"context"

	"github.com/archiveone/panchat/internal/entity"
)

// ListConversations fetches every conversation the signed-in user
// participates in. A backend that has the messaging feature disabled
// answers with the backend-unavailable code, which callers must surface
// as a distinct "not set up" state rather than an empty inbox.
func (c *Client) ListConversations(ctx context.Context) ([]*entity.Conversation, error) {
	var records []*ConversationRecord
	if err := c.get(ctx, "/conversation/list", nil, &records); err != nil {
		return nil, err
	}

	result := make([]*entity.Conversation, 0, len(records))
	for _, r := range records {
		result = append(result, r.ToEntity())
	}
	return result, nil
}

// GetOrCreateDirectConversation returns the conversation id for the pair
// (viewer, otherUserId), creating it server-side on first use. The call
// is idempotent: the same pair always maps to the same id.
func (c *Client) GetOrCreateDirectConversation(ctx context.Context, otherUserId string) (string, error) {
	var result ConversationIdResponse
	req := &CreateDirectRequest{PeerUserId: otherUserId}
	if err := c.post(ctx, "/conversation/direct", req, &result); err != nil {
		return "", err
	}
	return result.ConversationId, nil
}

// MarkRead acknowledges every message in the conversation server-side
func (c *Client) MarkRead(ctx context.Context, conversationId string) error {
	req := &MarkReadRequest{ConversationId: conversationId}
	return c.post(ctx, "/conversation/mark_read", req, nil)
}
