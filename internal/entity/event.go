package entity

import (
	"github.com/archiveone/panchat/pkg/constant"
	"github.com/archiveone/panchat/pkg/errcode"
)

// Notification is a non-message event pushed over the realtime channel
// (likes, follows, group invites)
type Notification struct {
	Id        string `json:"id"`
	Kind      string `json:"kind"`
	ActorId   string `json:"actor_id"`
	Body      string `json:"body,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

// Event is the tagged union delivered by the realtime channel. Exactly
// one payload field is set, matching Kind.
type Event struct {
	Kind         string        `json:"kind"`
	Message      *Message      `json:"message,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
}

// Validate checks the tag/payload pairing at the ingestion boundary so
// malformed frames never reach the typed stores.
func (e *Event) Validate() error {
	switch e.Kind {
	case constant.EventKindMessage:
		if e.Message == nil || e.Notification != nil {
			return errcode.ErrInvalidEvent
		}
		if e.Message.Id == "" || e.Message.ConversationId == "" {
			return errcode.ErrInvalidEvent
		}
	case constant.EventKindNotification:
		if e.Notification == nil || e.Message != nil {
			return errcode.ErrInvalidEvent
		}
		if e.Notification.Id == "" {
			return errcode.ErrInvalidEvent
		}
	default:
		return errcode.ErrInvalidEvent
	}
	return nil
}
