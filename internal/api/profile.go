package api

import (
	"context"

	"github.com/archiveone/panchat/internal/entity"
)

// LookupProfile fetches the display snapshot for a user. Callers degrade
// to a placeholder on failure; a missing profile never blocks delivery.
func (c *Client) LookupProfile(ctx context.Context, userId string) (entity.Profile, error) {
	params := map[string]string{"user_id": userId}
	var record ProfileRecord
	if err := c.get(ctx, "/user/profile", params, &record); err != nil {
		return entity.Profile{}, err
	}
	return entity.Profile{
		Name:      record.Name,
		Username:  record.Username,
		AvatarUrl: record.AvatarUrl,
	}, nil
}
