package session

import (
	"context"
	"strings"
	"time"

	"github.com/mbeoliero/kit/log"

	"github.com/archiveone/panchat/internal/api"
	"github.com/archiveone/panchat/internal/entity"
	"github.com/archiveone/panchat/internal/store"
	"github.com/archiveone/panchat/pkg/constant"
	"github.com/archiveone/panchat/pkg/errcode"
	"github.com/archiveone/panchat/pkg/idgen"
)

// MessageSender issues the backend message write
type MessageSender interface {
	SendMessage(ctx context.Context, req *api.SendMessageRequest) (*entity.Message, error)
}

// Uploader stores raw media and returns a durable URL
type Uploader interface {
	Upload(ctx context.Context, ownerId, kind, filename string, data []byte) (string, error)
}

// MediaAttachment is a raw file to upload before the message write
type MediaAttachment struct {
	Filename string
	Data     []byte
}

// SendInput describes one outgoing message
type SendInput struct {
	ConversationId string
	SenderId       string
	ContentType    string
	Body           string
	MediaUrl       string
	Attachment     *MediaAttachment
}

// SendResult is delivered once the send resolves. On failure,
// RestoreBody carries the original text so the compose field can be
// repopulated; the input is never lost.
type SendResult struct {
	Message     *entity.Message
	Err         error
	RestoreBody string
}

// SendCoordinator runs the optimistic-send lifecycle for outgoing
// messages: append pending, upload media if any, issue the backend
// write, reconcile. Each send owns its own temporary id and resolves
// independently, so sends pipeline instead of queueing behind one
// another.
type SendCoordinator struct {
	msgs          *store.MessageStore
	convs         *store.ConversationRepository
	sender        MessageSender
	uploads       Uploader
	sendTimeout   time.Duration
	uploadTimeout time.Duration
}

// NewSendCoordinator creates a new SendCoordinator
func NewSendCoordinator(msgs *store.MessageStore, convs *store.ConversationRepository, sender MessageSender, uploads Uploader, sendTimeout, uploadTimeout time.Duration) *SendCoordinator {
	return &SendCoordinator{
		msgs:          msgs,
		convs:         convs,
		sender:        sender,
		uploads:       uploads,
		sendTimeout:   sendTimeout,
		uploadTimeout: uploadTimeout,
	}
}

// Send validates the input, appends the pending message synchronously
// so the UI reflects it instantly, and resolves the rest in the
// background. The returned channel delivers exactly one SendResult.
// There is no automatic retry; a failed send stays visible for the user
// to resubmit.
func (c *SendCoordinator) Send(ctx context.Context, in SendInput) (*entity.Message, <-chan SendResult, error) {
	if in.ContentType == "" {
		in.ContentType = constant.ContentTypeText
	}
	if err := c.validate(in); err != nil {
		return nil, nil, err
	}

	tempId, err := idgen.NextLocalID()
	if err != nil {
		return nil, nil, errcode.ErrInternal.Wrap(err)
	}

	pending := &entity.Message{
		Id:             tempId,
		ConversationId: in.ConversationId,
		SenderId:       in.SenderId,
		ClientMsgId:    idgen.NewClientMsgID(),
		ContentType:    in.ContentType,
		Body:           in.Body,
		MediaUrl:       in.MediaUrl,
		CreatedAt:      entity.NowUnixMilli(),
		Status:         constant.StatusPending,
	}

	if err := c.msgs.AppendOptimistic(pending); err != nil {
		return nil, nil, err
	}

	results := make(chan SendResult, 1)
	go c.resolve(context.WithoutCancel(ctx), in, pending, results)

	return pending.Clone(), results, nil
}

func (c *SendCoordinator) validate(in SendInput) error {
	if in.ConversationId == "" || in.SenderId == "" {
		return errcode.ErrInvalidParam
	}
	if !constant.IsValidContentType(in.ContentType) {
		return errcode.ErrInvalidParam
	}
	if in.ContentType == constant.ContentTypeText {
		if strings.TrimSpace(in.Body) == "" {
			return errcode.ErrEmptyMessage
		}
		return nil
	}
	if in.MediaUrl == "" && in.Attachment == nil {
		return errcode.ErrInvalidParam
	}
	return nil
}

// resolve performs the upload and write, then reconciles. The context
// is detached from the caller: navigating away must not abort an
// in-flight send, only the configured timeouts bound it.
func (c *SendCoordinator) resolve(ctx context.Context, in SendInput, pending *entity.Message, results chan<- SendResult) {
	mediaUrl := in.MediaUrl

	if in.Attachment != nil {
		uploadCtx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
		url, err := c.uploads.Upload(uploadCtx, in.SenderId, constant.UploadKindForContentType(in.ContentType), in.Attachment.Filename, in.Attachment.Data)
		cancel()
		if err != nil {
			// Upload failure aborts before any message write.
			log.CtxWarn(ctx, "attachment upload failed: conversation_id=%s, temp_id=%s, error=%v", in.ConversationId, pending.Id, err)
			c.fail(ctx, in, pending, errcode.ErrUploadFailed.Wrap(err), results)
			return
		}
		mediaUrl = url
	}

	sendCtx, cancel := context.WithTimeout(ctx, c.sendTimeout)
	defer cancel()

	serverMsg, err := c.sender.SendMessage(sendCtx, &api.SendMessageRequest{
		ClientMsgId:    pending.ClientMsgId,
		ConversationId: in.ConversationId,
		ContentType:    in.ContentType,
		Body:           in.Body,
		MediaUrl:       mediaUrl,
	})
	if err != nil {
		if sendCtx.Err() != nil {
			err = errcode.ErrSendTimeout.Wrap(err)
		}
		log.CtxWarn(ctx, "message send failed: conversation_id=%s, temp_id=%s, error=%v", in.ConversationId, pending.Id, err)
		c.fail(ctx, in, pending, err, results)
		return
	}

	if err := c.msgs.Reconcile(in.ConversationId, pending.Id, serverMsg); err != nil {
		log.CtxError(ctx, "reconcile failed: temp_id=%s, server_id=%s, error=%v", pending.Id, serverMsg.Id, err)
	}
	c.convs.UpsertAfterSend(in.ConversationId, serverMsg)

	log.CtxInfo(ctx, "message sent: conversation_id=%s, id=%s", in.ConversationId, serverMsg.Id)
	results <- SendResult{Message: serverMsg.Clone()}
}

func (c *SendCoordinator) fail(ctx context.Context, in SendInput, pending *entity.Message, cause error, results chan<- SendResult) {
	if err := c.msgs.Fail(in.ConversationId, pending.Id); err != nil {
		log.CtxError(ctx, "mark send failed: temp_id=%s, error=%v", pending.Id, err)
	}
	results <- SendResult{Err: cause, RestoreBody: in.Body}
}
