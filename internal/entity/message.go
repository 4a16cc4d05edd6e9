package entity

import (
	"strings"

	"github.com/archiveone/panchat/pkg/constant"
)

// Message represents one entry in a conversation's log. Until the server
// confirms a send, Id holds a client-generated temporary id and Status is
// pending.
type Message struct {
	Id             string `json:"id"`
	ConversationId string `json:"conversation_id"`
	SenderId       string `json:"sender_id"`
	ClientMsgId    string `json:"client_msg_id,omitempty"`
	ContentType    string `json:"content_type"`
	Body           string `json:"body,omitempty"`
	MediaUrl       string `json:"media_url,omitempty"`
	CreatedAt      int64  `json:"created_at"`
	IsDeleted      bool   `json:"is_deleted,omitempty"`
	IsEdited       bool   `json:"is_edited,omitempty"`
	Status         string `json:"status"`
}

// IsLocal reports whether the message still carries a temporary client id
func (m *Message) IsLocal() bool {
	return strings.HasPrefix(m.Id, constant.LocalIdPrefix)
}

// Before orders messages by creation time, ties broken by id, so every
// replica of the log converges on the same total order.
func (m *Message) Before(other *Message) bool {
	if m.CreatedAt != other.CreatedAt {
		return m.CreatedAt < other.CreatedAt
	}
	return m.Id < other.Id
}

// Clone returns a shallow copy callers can hold without racing the store
func (m *Message) Clone() *Message {
	c := *m
	return &c
}
