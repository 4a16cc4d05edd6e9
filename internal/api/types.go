package api

import (
	"github.com/archiveone/panchat/internal/entity"
	"github.com/archiveone/panchat/pkg/constant"
)

// ProfileRecord is the wire shape of a user profile snapshot
type ProfileRecord struct {
	UserId    string `json:"user_id"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	AvatarUrl string `json:"avatar_url"`
}

// MemberRecord is the wire shape of a conversation member
type MemberRecord struct {
	UserId string `json:"user_id"`
}

// MessageRecord is the wire shape of a server-confirmed message
type MessageRecord struct {
	Id             string `json:"id"`
	ConversationId string `json:"conversation_id"`
	SenderId       string `json:"sender_id"`
	ClientMsgId    string `json:"client_msg_id,omitempty"`
	ContentType    string `json:"content_type"`
	Body           string `json:"body,omitempty"`
	MediaUrl       string `json:"media_url,omitempty"`
	CreatedAt      int64  `json:"created_at"`
	IsDeleted      bool   `json:"is_deleted"`
	IsEdited       bool   `json:"is_edited"`
}

// ToEntity converts a server record into the entity form. Anything the
// server returns is by definition delivered, so status is sent.
func (r *MessageRecord) ToEntity() *entity.Message {
	return &entity.Message{
		Id:             r.Id,
		ConversationId: r.ConversationId,
		SenderId:       r.SenderId,
		ClientMsgId:    r.ClientMsgId,
		ContentType:    r.ContentType,
		Body:           r.Body,
		MediaUrl:       r.MediaUrl,
		CreatedAt:      r.CreatedAt,
		IsDeleted:      r.IsDeleted,
		IsEdited:       r.IsEdited,
		Status:         constant.StatusSent,
	}
}

// ConversationRecord is the wire shape of a conversation list entry
type ConversationRecord struct {
	Id            string         `json:"id"`
	IsGroup       bool           `json:"is_group"`
	GroupName     string         `json:"group_name,omitempty"`
	GroupImageUrl string         `json:"group_image_url,omitempty"`
	Members       []MemberRecord `json:"members"`
	LastMessage   *MessageRecord `json:"last_message,omitempty"`
	LastMessageAt int64          `json:"last_message_at"`
	UnreadCount   int            `json:"unread_count"`
}

// ToEntity converts a conversation record; participant profiles are left
// empty for the repository to denormalize.
func (r *ConversationRecord) ToEntity() *entity.Conversation {
	conv := &entity.Conversation{
		Id:            r.Id,
		IsGroup:       r.IsGroup,
		GroupName:     r.GroupName,
		GroupImageUrl: r.GroupImageUrl,
		LastMessageAt: r.LastMessageAt,
		UnreadCount:   r.UnreadCount,
	}
	for _, m := range r.Members {
		conv.Participants = append(conv.Participants, entity.Participant{UserId: m.UserId})
	}
	if r.LastMessage != nil {
		conv.LastMessage = r.LastMessage.ToEntity()
		if conv.LastMessageAt == 0 {
			conv.LastMessageAt = conv.LastMessage.CreatedAt
		}
	}
	return conv
}

// SendMessageRequest represents a message write
type SendMessageRequest struct {
	ClientMsgId    string `json:"client_msg_id"`
	ConversationId string `json:"conversation_id"`
	ContentType    string `json:"content_type"`
	Body           string `json:"body,omitempty"`
	MediaUrl       string `json:"media_url,omitempty"`
}

// CreateDirectRequest represents a get-or-create direct conversation call
type CreateDirectRequest struct {
	PeerUserId string `json:"peer_user_id"`
}

// CreateGroupRequest represents a group conversation create call
type CreateGroupRequest struct {
	Name      string   `json:"name"`
	MemberIds []string `json:"member_ids"`
	ImageUrl  string   `json:"image_url,omitempty"`
}

// ConversationIdResponse carries a single conversation id
type ConversationIdResponse struct {
	ConversationId string `json:"conversation_id"`
}

// MarkReadRequest represents a mark-as-read call
type MarkReadRequest struct {
	ConversationId string `json:"conversation_id"`
}

// HistoryResponse carries a conversation's message history
type HistoryResponse struct {
	Messages []*MessageRecord `json:"messages"`
}

// UploadResponse carries the durable URL of a stored media object
type UploadResponse struct {
	Url string `json:"url"`
}
