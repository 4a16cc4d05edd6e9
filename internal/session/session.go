package session

import (
	"context"
	"io"
	"sync"

	"github.com/mbeoliero/kit/log"

	"github.com/archiveone/panchat/internal/api"
	"github.com/archiveone/panchat/internal/config"
	"github.com/archiveone/panchat/internal/entity"
	"github.com/archiveone/panchat/internal/realtime"
	"github.com/archiveone/panchat/internal/store"
	"github.com/archiveone/panchat/pkg/errcode"
)

// AuthSession reports the signed-in user. Absence means every messaging
// operation is refused.
type AuthSession interface {
	CurrentUserID() (string, bool)
}

// Backend is the full slice of the hosted data API the messaging
// subsystem consumes. *api.Client satisfies it.
type Backend interface {
	ListConversations(ctx context.Context) ([]*entity.Conversation, error)
	GetOrCreateDirectConversation(ctx context.Context, otherUserId string) (string, error)
	PullHistory(ctx context.Context, conversationId string) ([]*entity.Message, error)
	SendMessage(ctx context.Context, req *api.SendMessageRequest) (*entity.Message, error)
	CreateGroup(ctx context.Context, req *api.CreateGroupRequest) (string, error)
	MarkRead(ctx context.Context, conversationId string) error
	LookupProfile(ctx context.Context, userId string) (entity.Profile, error)
	Upload(ctx context.Context, ownerId, kind, filename string, data []byte) (string, error)
}

// Subscriber opens the per-user realtime channel
type Subscriber interface {
	Subscribe(ctx context.Context, userId string, ing *realtime.Ingestor) (io.Closer, error)
}

// Session is the messaging facade the surrounding UI talks to. It owns
// the stores, the send coordinator, the group manager and the realtime
// subscription, and gates everything on the auth session.
type Session struct {
	auth        AuthSession
	backend     Backend
	subscriber  Subscriber
	sink        realtime.NotificationSink
	msgs        *store.MessageStore
	convs       *store.ConversationRepository
	unread      *store.UnreadTracker
	coordinator *SendCoordinator
	groups      *GroupChatManager

	mu     sync.Mutex
	active string
	sub    io.Closer
}

// New wires a Session from its collaborators
func New(cfg *config.Config, auth AuthSession, backend Backend, subscriber Subscriber, sink realtime.NotificationSink) *Session {
	msgs := store.NewMessageStore(backend)
	convs := store.NewConversationRepository(backend, backend)
	unread := store.NewUnreadTracker()

	return &Session{
		auth:        auth,
		backend:     backend,
		subscriber:  subscriber,
		sink:        sink,
		msgs:        msgs,
		convs:       convs,
		unread:      unread,
		coordinator: NewSendCoordinator(msgs, convs, backend, backend, cfg.API.SendTimeout, cfg.API.UploadTimeout),
		groups:      NewGroupChatManager(backend, backend, convs, backend, cfg.API.UploadTimeout),
	}
}

// Unread exposes the unread tracker for badge rendering
func (s *Session) Unread() *store.UnreadTracker {
	return s.unread
}

func (s *Session) userId() (string, error) {
	userId, ok := s.auth.CurrentUserID()
	if !ok {
		return "", errcode.ErrAuthRequired
	}
	return userId, nil
}

// ListConversations loads the inbox: every conversation the user
// participates in, sorted descending by last activity
func (s *Session) ListConversations(ctx context.Context) ([]*entity.Conversation, error) {
	userId, err := s.userId()
	if err != nil {
		return nil, err
	}
	return s.convs.Load(ctx, userId)
}

// SelectConversation makes a conversation the active view: loads its
// history and marks it read
func (s *Session) SelectConversation(ctx context.Context, conversationId string) ([]*entity.Message, error) {
	if _, err := s.userId(); err != nil {
		return nil, err
	}

	history, err := s.msgs.LoadHistory(ctx, conversationId)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.active = conversationId
	s.mu.Unlock()

	if err := s.MarkAsRead(ctx, conversationId); err != nil {
		return nil, err
	}
	return history, nil
}

// Deselect clears the active conversation; new messages for it count as
// unread again
func (s *Session) Deselect() {
	s.mu.Lock()
	s.active = ""
	s.mu.Unlock()
}

// ActiveConversation returns the conversation currently open, if any
func (s *Session) ActiveConversation() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SendMessage starts an optimistic send. The pending message is already
// in the store when this returns; the channel resolves to sent or
// failed.
func (s *Session) SendMessage(ctx context.Context, in SendInput) (*entity.Message, <-chan SendResult, error) {
	userId, err := s.userId()
	if err != nil {
		return nil, nil, err
	}
	in.SenderId = userId
	return s.coordinator.Send(ctx, in)
}

// SendText is a convenience for plain text sends
func (s *Session) SendText(ctx context.Context, conversationId, body string) (*entity.Message, <-chan SendResult, error) {
	return s.SendMessage(ctx, SendInput{ConversationId: conversationId, Body: body})
}

// MarkAsRead zeroes the conversation's unread count and acknowledges it
// server-side. The server call is best effort; local state is
// authoritative for the badge.
func (s *Session) MarkAsRead(ctx context.Context, conversationId string) error {
	if _, err := s.userId(); err != nil {
		return err
	}

	s.unread.MarkRead(conversationId)
	if err := s.backend.MarkRead(ctx, conversationId); err != nil {
		log.CtxWarn(ctx, "server mark-read failed: conversation_id=%s, error=%v", conversationId, err)
	}
	return nil
}

// CreateDirectConversation resolves (or creates) the direct conversation
// with another user
func (s *Session) CreateDirectConversation(ctx context.Context, otherUserId string) (string, error) {
	if _, err := s.userId(); err != nil {
		return "", err
	}
	if otherUserId == "" {
		return "", errcode.ErrInvalidParam
	}
	return s.convs.GetOrCreateDirect(ctx, otherUserId)
}

// CreateGroupConversation creates a named group with the given members
func (s *Session) CreateGroupConversation(ctx context.Context, name string, memberIds []string, image *MediaAttachment) (string, error) {
	userId, err := s.userId()
	if err != nil {
		return "", err
	}
	return s.groups.CreateGroup(ctx, userId, name, memberIds, image)
}

// Conversations returns the cached inbox without a network round trip
func (s *Session) Conversations() []*entity.Conversation {
	return s.convs.List()
}

// Messages returns the cached log for a conversation
func (s *Session) Messages(conversationId string) []*entity.Message {
	return s.msgs.Snapshot(conversationId)
}

// OpenInbox acquires the realtime subscription. Exactly one can be held
// at a time; a second acquire without a release is refused so remounts
// cannot cause duplicate delivery.
func (s *Session) OpenInbox(ctx context.Context) error {
	userId, err := s.userId()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sub != nil {
		return errcode.ErrAlreadySubscribed
	}

	ing := realtime.NewIngestor(s.msgs, s.convs, s.unread, s.sink, userId, s.ActiveConversation)
	sub, err := s.subscriber.Subscribe(ctx, userId, ing)
	if err != nil {
		return err
	}
	s.sub = sub
	return nil
}

// CloseInbox releases the realtime subscription. Safe to call when none
// is held.
func (s *Session) CloseInbox() error {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()

	if sub == nil {
		return nil
	}
	return sub.Close()
}
