package api

import (
	"context"

	"github.com/archiveone/panchat/internal/entity"
	"github.com/archiveone/panchat/pkg/errcode"
)

// SendMessage issues the backend message write and returns the
// server-confirmed message with its permanent id
func (c *Client) SendMessage(ctx context.Context, req *SendMessageRequest) (*entity.Message, error) {
	var record MessageRecord
	if err := c.post(ctx, "/msg/send", req, &record); err != nil {
		return nil, err
	}
	return record.ToEntity(), nil
}

// PullHistory fetches a conversation's message log, ascending by
// creation time
func (c *Client) PullHistory(ctx context.Context, conversationId string) ([]*entity.Message, error) {
	params := map[string]string{"conversation_id": conversationId}
	var resp HistoryResponse
	if err := c.get(ctx, "/msg/history", params, &resp); err != nil {
		if _, ok := errcode.FromError(err); ok {
			return nil, err
		}
		return nil, errcode.ErrPullFailed.Wrap(err)
	}

	result := make([]*entity.Message, 0, len(resp.Messages))
	for _, r := range resp.Messages {
		result = append(result, r.ToEntity())
	}
	return result, nil
}
