package api

import (
	"context"

	"github.com/archiveone/panchat/pkg/errcode"
)

// Upload stores a raw media file and returns its durable URL. Every
// failure maps to the upload taxonomy so the send pipeline can
// short-circuit before any message write.
func (c *Client) Upload(ctx context.Context, ownerId, kind, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errcode.ErrUploadFailed.Wrap(errcode.ErrInvalidParam)
	}

	params := map[string]string{
		"owner_id": ownerId,
		"kind":     kind,
		"filename": filename,
	}

	var result UploadResponse
	if err := c.postRaw(ctx, "/media/upload", params, "application/octet-stream", data, &result); err != nil {
		return "", errcode.ErrUploadFailed.Wrap(err)
	}
	if result.Url == "" {
		return "", errcode.ErrUploadFailed
	}
	return result.Url, nil
}
