package api

import "context"

// CreateGroup creates a group conversation server-side and returns its
// id. Validation happens in the session layer; the backend enforces the
// same rules and this call surfaces its verdict unchanged.
func (c *Client) CreateGroup(ctx context.Context, req *CreateGroupRequest) (string, error) {
	var result ConversationIdResponse
	if err := c.post(ctx, "/group/create", req, &result); err != nil {
		return "", err
	}
	return result.ConversationId, nil
}
