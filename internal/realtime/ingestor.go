package realtime

import (
	"context"
	"encoding/json"

	"github.com/mbeoliero/kit/log"

	"github.com/archiveone/panchat/internal/entity"
	"github.com/archiveone/panchat/internal/store"
	"github.com/archiveone/panchat/pkg/constant"
	"github.com/archiveone/panchat/pkg/errcode"
)

// NotificationSink receives non-message events. It is injected by the
// owning scope; nothing registers itself globally.
type NotificationSink interface {
	OnNotification(n *entity.Notification)
}

// Ingestor feeds decoded realtime events into the typed stores. Events
// may arrive duplicated or out of order relative to local optimistic
// state; the stores' dedup and sorting make application idempotent.
type Ingestor struct {
	msgs       *store.MessageStore
	convs      *store.ConversationRepository
	unread     *store.UnreadTracker
	sink       NotificationSink
	selfId     string
	activeConv func() string
}

// NewIngestor creates a new Ingestor. activeConv reports which
// conversation the user currently has open, so unread counting can skip
// it; selfId filters out the user's own echoes.
func NewIngestor(msgs *store.MessageStore, convs *store.ConversationRepository, unread *store.UnreadTracker, sink NotificationSink, selfId string, activeConv func() string) *Ingestor {
	return &Ingestor{
		msgs:       msgs,
		convs:      convs,
		unread:     unread,
		sink:       sink,
		selfId:     selfId,
		activeConv: activeConv,
	}
}

// DecodeEvent parses and validates a raw frame into the tagged event
// union. Malformed frames are rejected here, before any store is
// touched.
func DecodeEvent(data []byte) (*entity.Event, error) {
	var ev entity.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, errcode.ErrInvalidEvent.Wrap(err)
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return &ev, nil
}

// HandleFrame decodes one wire frame and applies it. Invalid frames are
// dropped with a warning; one bad event must not tear down the channel.
func (in *Ingestor) HandleFrame(ctx context.Context, data []byte) {
	ev, err := DecodeEvent(data)
	if err != nil {
		log.CtxWarn(ctx, "dropping invalid realtime frame: %v", err)
		return
	}
	in.HandleEvent(ctx, ev)
}

// HandleEvent applies one validated event to the stores
func (in *Ingestor) HandleEvent(ctx context.Context, ev *entity.Event) {
	switch ev.Kind {
	case constant.EventKindMessage:
		msg := ev.Message
		in.msgs.MergeRemote(msg)
		in.convs.UpsertAfterSend(msg.ConversationId, msg)

		if msg.SenderId != in.selfId && in.activeConv() != msg.ConversationId {
			in.unread.Increment(msg.ConversationId)
		}
		log.CtxDebug(ctx, "merged remote message: conversation_id=%s, id=%s", msg.ConversationId, msg.Id)

	case constant.EventKindNotification:
		if in.sink != nil {
			in.sink.OnNotification(ev.Notification)
		}
	}
}
