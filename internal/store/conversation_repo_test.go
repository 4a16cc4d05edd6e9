package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archiveone/panchat/internal/entity"
	"github.com/archiveone/panchat/pkg/errcode"
)

type fakeConvBackend struct {
	convs       []*entity.Conversation
	listErr     error
	directIds   map[string]string
	directCalls int
}

func (f *fakeConvBackend) ListConversations(_ context.Context) ([]*entity.Conversation, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	result := make([]*entity.Conversation, 0, len(f.convs))
	for _, c := range f.convs {
		result = append(result, c.Clone())
	}
	return result, nil
}

func (f *fakeConvBackend) GetOrCreateDirectConversation(_ context.Context, otherUserId string) (string, error) {
	f.directCalls++
	if id, ok := f.directIds[otherUserId]; ok {
		return id, nil
	}
	return "direct_" + otherUserId, nil
}

type fakeProfiles struct {
	profiles map[string]entity.Profile
	failFor  map[string]bool
}

func (f *fakeProfiles) LookupProfile(_ context.Context, userId string) (entity.Profile, error) {
	if f.failFor[userId] {
		return entity.Profile{}, errcode.ErrNetwork
	}
	if p, ok := f.profiles[userId]; ok {
		return p, nil
	}
	return entity.Profile{Name: userId, Username: userId}, nil
}

func conv(id string, lastAt int64, members ...string) *entity.Conversation {
	c := &entity.Conversation{Id: id, LastMessageAt: lastAt}
	for _, m := range members {
		c.Participants = append(c.Participants, entity.Participant{UserId: m})
	}
	return c
}

func TestConversationRepository_LoadSortsDescending(t *testing.T) {
	backend := &fakeConvBackend{convs: []*entity.Conversation{
		conv("c1", 1000, "bob"),
		conv("c2", 3000, "carol"),
		conv("c3", 2000, "dave"),
	}}
	r := NewConversationRepository(backend, &fakeProfiles{})

	list, err := r.Load(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"c2", "c3", "c1"}, []string{list[0].Id, list[1].Id, list[2].Id})
}

func TestConversationRepository_EmptyListIsNotAnError(t *testing.T) {
	r := NewConversationRepository(&fakeConvBackend{}, &fakeProfiles{})

	list, err := r.Load(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestConversationRepository_BackendUnavailable(t *testing.T) {
	backend := &fakeConvBackend{listErr: errcode.ErrBackendUnavailable}
	r := NewConversationRepository(backend, &fakeProfiles{})

	_, err := r.Load(context.Background(), "alice")
	require.Error(t, err)
	assert.True(t, errcode.IsBackendUnavailable(err))
}

func TestConversationRepository_ProfilePlaceholderOnLookupFailure(t *testing.T) {
	backend := &fakeConvBackend{convs: []*entity.Conversation{conv("c1", 1000, "bob", "carol")}}
	profiles := &fakeProfiles{
		profiles: map[string]entity.Profile{"bob": {Name: "Bob", Username: "bob"}},
		failFor:  map[string]bool{"carol": true},
	}
	r := NewConversationRepository(backend, profiles)

	list, err := r.Load(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)

	assert.Equal(t, "Bob", list[0].Participants[0].Profile.Name)
	assert.Equal(t, entity.PlaceholderProfile("carol"), list[0].Participants[1].Profile)
}

func TestConversationRepository_GetOrCreateDirectIdempotent(t *testing.T) {
	r := NewConversationRepository(&fakeConvBackend{}, &fakeProfiles{})

	id1, err := r.GetOrCreateDirect(context.Background(), "bob")
	require.NoError(t, err)
	id2, err := r.GetOrCreateDirect(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	_, ok := r.Get(id1)
	assert.True(t, ok)
}

func TestConversationRepository_UpsertAfterSendResorts(t *testing.T) {
	backend := &fakeConvBackend{convs: []*entity.Conversation{
		conv("c1", 1000, "bob"),
		conv("c2", 2000, "carol"),
	}}
	r := NewConversationRepository(backend, &fakeProfiles{})
	_, err := r.Load(context.Background(), "alice")
	require.NoError(t, err)

	r.UpsertAfterSend("c1", &entity.Message{Id: "m1", ConversationId: "c1", SenderId: "alice", CreatedAt: 5000})

	list := r.List()
	assert.Equal(t, "c1", list[0].Id)
	assert.Equal(t, int64(5000), list[0].LastMessageAt)
	assert.Equal(t, "m1", list[0].LastMessage.Id)
}

func TestConversationRepository_UpsertIgnoresStaleMessages(t *testing.T) {
	r := NewConversationRepository(&fakeConvBackend{}, &fakeProfiles{})
	r.UpsertAfterSend("c1", &entity.Message{Id: "m2", ConversationId: "c1", SenderId: "bob", CreatedAt: 5000})
	r.UpsertAfterSend("c1", &entity.Message{Id: "m1", ConversationId: "c1", SenderId: "bob", CreatedAt: 4000})

	c, ok := r.Get("c1")
	require.True(t, ok)
	assert.Equal(t, "m2", c.LastMessage.Id)
	assert.Equal(t, int64(5000), c.LastMessageAt)
}

func TestConversationRepository_UpsertCreatesUnknownConversation(t *testing.T) {
	r := NewConversationRepository(&fakeConvBackend{}, &fakeProfiles{})

	// First contact from a stranger arrives via realtime push before any
	// list refresh.
	r.UpsertAfterSend("c9", &entity.Message{Id: "m1", ConversationId: "c9", SenderId: "mallory", CreatedAt: 100})

	c, ok := r.Get("c9")
	require.True(t, ok)
	assert.True(t, c.HasParticipant("mallory"))
}
