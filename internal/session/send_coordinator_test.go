package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archiveone/panchat/internal/api"
	"github.com/archiveone/panchat/internal/entity"
	"github.com/archiveone/panchat/internal/store"
	"github.com/archiveone/panchat/pkg/constant"
	"github.com/archiveone/panchat/pkg/errcode"
)

func newCoordinator(backend *fakeBackend) (*SendCoordinator, *store.MessageStore, *store.ConversationRepository) {
	msgs := store.NewMessageStore(backend)
	convs := store.NewConversationRepository(backend, backend)
	c := NewSendCoordinator(msgs, convs, backend, backend, 2*time.Second, 2*time.Second)
	return c, msgs, convs
}

func waitResult(t *testing.T, results <-chan SendResult) SendResult {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for send result")
		return SendResult{}
	}
}

func TestSendCoordinator_OptimisticAppendIsSynchronous(t *testing.T) {
	release := make(chan struct{})
	backend := &fakeBackend{
		sendFn: func(_ context.Context, req *api.SendMessageRequest) (*entity.Message, error) {
			<-release
			return &entity.Message{Id: "srv_1", ConversationId: req.ConversationId, ClientMsgId: req.ClientMsgId, Body: req.Body, CreatedAt: entity.NowUnixMilli(), Status: constant.StatusSent}, nil
		},
	}
	c, msgs, _ := newCoordinator(backend)

	pending, results, err := c.Send(context.Background(), SendInput{ConversationId: "c1", SenderId: "alice", Body: "hello"})
	require.NoError(t, err)

	// Visible before the network call resolves.
	log := msgs.Snapshot("c1")
	require.Len(t, log, 1)
	assert.Equal(t, constant.StatusPending, log[0].Status)
	assert.Equal(t, pending.Id, log[0].Id)
	assert.True(t, pending.IsLocal())

	close(release)
	r := waitResult(t, results)
	require.NoError(t, r.Err)
	assert.Equal(t, "srv_1", r.Message.Id)

	log = msgs.Snapshot("c1")
	require.Len(t, log, 1)
	assert.Equal(t, "srv_1", log[0].Id)
	assert.Equal(t, constant.StatusSent, log[0].Status)
}

func TestSendCoordinator_OfflineSendFailsAndRestoresBody(t *testing.T) {
	backend := &fakeBackend{
		sendFn: func(context.Context, *api.SendMessageRequest) (*entity.Message, error) {
			return nil, errcode.ErrNetwork
		},
	}
	c, msgs, _ := newCoordinator(backend)

	pending, results, err := c.Send(context.Background(), SendInput{ConversationId: "c1", SenderId: "alice", Body: "hello"})
	require.NoError(t, err)
	assert.Equal(t, constant.StatusPending, msgs.Snapshot("c1")[0].Status)

	r := waitResult(t, results)
	require.Error(t, r.Err)
	assert.True(t, errcode.IsNetwork(r.Err))
	assert.Equal(t, "hello", r.RestoreBody)

	// The failed entry stays visible for retry, not silently dropped.
	log := msgs.Snapshot("c1")
	require.Len(t, log, 1)
	assert.Equal(t, pending.Id, log[0].Id)
	assert.Equal(t, constant.StatusFailed, log[0].Status)
}

func TestSendCoordinator_UploadFailureShortCircuits(t *testing.T) {
	var sent bool
	backend := &fakeBackend{
		uploadFn: func(context.Context, string, string, string, []byte) (string, error) {
			return "", errcode.ErrUploadFailed
		},
		sendFn: func(context.Context, *api.SendMessageRequest) (*entity.Message, error) {
			sent = true
			return nil, errcode.ErrInternal
		},
	}
	c, msgs, _ := newCoordinator(backend)

	_, results, err := c.Send(context.Background(), SendInput{
		ConversationId: "c1",
		SenderId:       "alice",
		ContentType:    constant.ContentTypeImage,
		Attachment:     &MediaAttachment{Filename: "pic.jpg", Data: []byte{1, 2, 3}},
	})
	require.NoError(t, err)

	r := waitResult(t, results)
	assert.True(t, errcode.IsUpload(r.Err))
	assert.False(t, sent, "upload failure must never issue the message write")
	assert.Equal(t, constant.StatusFailed, msgs.Snapshot("c1")[0].Status)
}

func TestSendCoordinator_AttachmentUploadedBeforeSend(t *testing.T) {
	backend := &fakeBackend{}
	c, msgs, _ := newCoordinator(backend)

	_, results, err := c.Send(context.Background(), SendInput{
		ConversationId: "c1",
		SenderId:       "alice",
		ContentType:    constant.ContentTypeVoice,
		Attachment:     &MediaAttachment{Filename: "note.ogg", Data: []byte{9}},
	})
	require.NoError(t, err)

	r := waitResult(t, results)
	require.NoError(t, r.Err)
	assert.Equal(t, "https://media.example/note.ogg", r.Message.MediaUrl)
	assert.Equal(t, "https://media.example/note.ogg", msgs.Snapshot("c1")[0].MediaUrl)
}

func TestSendCoordinator_Validation(t *testing.T) {
	c, msgs, _ := newCoordinator(&fakeBackend{})
	ctx := context.Background()

	_, _, err := c.Send(ctx, SendInput{ConversationId: "c1", SenderId: "alice", Body: "   "})
	assert.ErrorIs(t, err, errcode.ErrEmptyMessage)

	_, _, err = c.Send(ctx, SendInput{ConversationId: "c1", SenderId: "alice", ContentType: "sticker", Body: "x"})
	assert.ErrorIs(t, err, errcode.ErrInvalidParam)

	// Media content without attachment or url.
	_, _, err = c.Send(ctx, SendInput{ConversationId: "c1", SenderId: "alice", ContentType: constant.ContentTypeImage})
	assert.ErrorIs(t, err, errcode.ErrInvalidParam)

	// Nothing was appended for rejected input.
	assert.Empty(t, msgs.Snapshot("c1"))
}

func TestSendCoordinator_SendTimeout(t *testing.T) {
	backend := &fakeBackend{
		sendFn: func(ctx context.Context, _ *api.SendMessageRequest) (*entity.Message, error) {
			<-ctx.Done()
			return nil, errcode.ErrNetwork.Wrap(ctx.Err())
		},
	}
	msgs := store.NewMessageStore(backend)
	convs := store.NewConversationRepository(backend, backend)
	c := NewSendCoordinator(msgs, convs, backend, backend, 50*time.Millisecond, time.Second)

	_, results, err := c.Send(context.Background(), SendInput{ConversationId: "c1", SenderId: "alice", Body: "hello"})
	require.NoError(t, err)

	r := waitResult(t, results)
	assert.ErrorIs(t, r.Err, errcode.ErrSendTimeout)
	assert.Equal(t, constant.StatusFailed, msgs.Snapshot("c1")[0].Status)
}

func TestSendCoordinator_PipelinedSends(t *testing.T) {
	var mu sync.Mutex
	inflight := map[string]chan struct{}{
		"one": make(chan struct{}),
		"two": make(chan struct{}),
	}
	serverTimes := map[string]int64{"one": 1000, "two": 2000}
	backend := &fakeBackend{
		sendFn: func(_ context.Context, req *api.SendMessageRequest) (*entity.Message, error) {
			mu.Lock()
			gate := inflight[req.Body]
			mu.Unlock()
			<-gate
			return &entity.Message{Id: "srv_" + req.Body, ConversationId: req.ConversationId, ClientMsgId: req.ClientMsgId, Body: req.Body, CreatedAt: serverTimes[req.Body], Status: constant.StatusSent}, nil
		},
	}
	c, msgs, _ := newCoordinator(backend)
	ctx := context.Background()

	// Second send starts while the first is still in flight.
	_, res1, err := c.Send(ctx, SendInput{ConversationId: "c1", SenderId: "alice", Body: "one"})
	require.NoError(t, err)
	_, res2, err := c.Send(ctx, SendInput{ConversationId: "c1", SenderId: "alice", Body: "two"})
	require.NoError(t, err)

	require.Len(t, msgs.Snapshot("c1"), 2)

	// Resolve out of order: the later send completes first.
	close(inflight["two"])
	r2 := waitResult(t, res2)
	require.NoError(t, r2.Err)
	close(inflight["one"])
	r1 := waitResult(t, res1)
	require.NoError(t, r1.Err)

	log := msgs.Snapshot("c1")
	require.Len(t, log, 2)
	assert.Equal(t, "srv_one", log[0].Id)
	assert.Equal(t, "srv_two", log[1].Id)
}

func TestSendCoordinator_SuccessUpdatesConversationList(t *testing.T) {
	backend := &fakeBackend{}
	c, _, convs := newCoordinator(backend)

	_, results, err := c.Send(context.Background(), SendInput{ConversationId: "c1", SenderId: "alice", Body: "hello"})
	require.NoError(t, err)
	r := waitResult(t, results)
	require.NoError(t, r.Err)

	list := convs.List()
	require.Len(t, list, 1)
	assert.Equal(t, "c1", list[0].Id)
	assert.Equal(t, r.Message.Id, list[0].LastMessage.Id)
}
