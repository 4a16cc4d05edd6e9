package store

import (
	"context"
	"sort"
	"sync"

	"github.com/mbeoliero/kit/log"

	"github.com/archiveone/panchat/internal/entity"
)

// ConversationBackend is the slice of the data API the repository needs
type ConversationBackend interface {
	ListConversations(ctx context.Context) ([]*entity.Conversation, error)
	GetOrCreateDirectConversation(ctx context.Context, otherUserId string) (string, error)
}

// ProfileDirectory resolves display snapshots for participants
type ProfileDirectory interface {
	LookupProfile(ctx context.Context, userId string) (entity.Profile, error)
}

// ConversationRepository caches the signed-in user's conversations and
// keeps the visible list ordered descending by last activity. The order
// is recomputed from the cache on every read, never patched
// incrementally.
type ConversationRepository struct {
	mu       sync.Mutex
	backend  ConversationBackend
	profiles ProfileDirectory
	convs    map[string]*entity.Conversation
}

// NewConversationRepository creates a new ConversationRepository
func NewConversationRepository(backend ConversationBackend, profiles ProfileDirectory) *ConversationRepository {
	return &ConversationRepository{
		backend:  backend,
		profiles: profiles,
		convs:    make(map[string]*entity.Conversation),
	}
}

// Load fetches the user's conversations with participant profiles
// denormalized, replaces the cache and returns the sorted list. A
// provisioning failure propagates as ErrBackendUnavailable so callers
// can show a "not set up" state instead of an empty inbox.
func (r *ConversationRepository) Load(ctx context.Context, userId string) ([]*entity.Conversation, error) {
	records, err := r.backend.ListConversations(ctx)
	if err != nil {
		log.CtxError(ctx, "load conversations failed: user_id=%s, error=%v", userId, err)
		return nil, err
	}

	for _, conv := range records {
		r.denormalize(ctx, conv)
	}

	r.mu.Lock()
	r.convs = make(map[string]*entity.Conversation, len(records))
	for _, conv := range records {
		r.convs[conv.Id] = conv
	}
	r.mu.Unlock()

	return r.List(), nil
}

// denormalize resolves participant profiles, degrading to a placeholder
// on lookup failure
func (r *ConversationRepository) denormalize(ctx context.Context, conv *entity.Conversation) {
	for i, p := range conv.Participants {
		profile, err := r.profiles.LookupProfile(ctx, p.UserId)
		if err != nil {
			log.CtxWarn(ctx, "profile lookup failed, using placeholder: user_id=%s, error=%v", p.UserId, err)
			profile = entity.PlaceholderProfile(p.UserId)
		}
		conv.Participants[i].Profile = profile
	}
}

// List returns a copy of the cached conversations sorted descending by
// last message time, ties broken by id for a stable order
func (r *ConversationRepository) List() []*entity.Conversation {
	r.mu.Lock()
	result := make([]*entity.Conversation, 0, len(r.convs))
	for _, conv := range r.convs {
		result = append(result, conv.Clone())
	}
	r.mu.Unlock()

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].LastMessageAt != result[j].LastMessageAt {
			return result[i].LastMessageAt > result[j].LastMessageAt
		}
		return result[i].Id < result[j].Id
	})
	return result
}

// Get returns the cached conversation, if known
func (r *ConversationRepository) Get(conversationId string) (*entity.Conversation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.convs[conversationId]
	if !ok {
		return nil, false
	}
	return conv.Clone(), true
}

// GetOrCreateDirect resolves the direct conversation with another user,
// creating it server-side on first contact. Calling twice for the same
// pair returns the same id.
func (r *ConversationRepository) GetOrCreateDirect(ctx context.Context, otherUserId string) (string, error) {
	conversationId, err := r.backend.GetOrCreateDirectConversation(ctx, otherUserId)
	if err != nil {
		log.CtxError(ctx, "get or create direct conversation failed: peer=%s, error=%v", otherUserId, err)
		return "", err
	}

	r.mu.Lock()
	_, cached := r.convs[conversationId]
	r.mu.Unlock()
	if cached {
		return conversationId, nil
	}

	conv := &entity.Conversation{
		Id:           conversationId,
		Participants: []entity.Participant{{UserId: otherUserId}},
	}
	r.denormalize(ctx, conv)

	r.mu.Lock()
	if _, ok := r.convs[conversationId]; !ok {
		r.convs[conversationId] = conv
	}
	r.mu.Unlock()

	return conversationId, nil
}

// Insert caches a conversation created out of band (e.g. a fresh group)
func (r *ConversationRepository) Insert(conv *entity.Conversation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.convs[conv.Id] = conv.Clone()
}

// UpsertAfterSend updates the cached conversation's last-message pointer
// after a send or an inbound merge. Cache-only, no network call. Stale
// updates (older than the current pointer) are ignored so out-of-order
// delivery cannot move a conversation backwards.
func (r *ConversationRepository) UpsertAfterSend(conversationId string, msg *entity.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.convs[conversationId]
	if !ok {
		conv = &entity.Conversation{
			Id:           conversationId,
			Participants: []entity.Participant{{UserId: msg.SenderId, Profile: entity.PlaceholderProfile(msg.SenderId)}},
		}
		r.convs[conversationId] = conv
	}

	if msg.CreatedAt >= conv.LastMessageAt {
		conv.LastMessage = msg.Clone()
		conv.LastMessageAt = msg.CreatedAt
	}
}
