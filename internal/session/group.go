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
)

// GroupBackend creates group conversations server-side
type GroupBackend interface {
	CreateGroup(ctx context.Context, req *api.CreateGroupRequest) (string, error)
}

// GroupChatManager creates group conversations and hands them to the
// conversation repository once they exist. A failed creation never
// leaves a partial conversation selectable.
type GroupChatManager struct {
	backend       GroupBackend
	uploads       Uploader
	convs         *store.ConversationRepository
	profiles      store.ProfileDirectory
	uploadTimeout time.Duration
}

// NewGroupChatManager creates a new GroupChatManager
func NewGroupChatManager(backend GroupBackend, uploads Uploader, convs *store.ConversationRepository, profiles store.ProfileDirectory, uploadTimeout time.Duration) *GroupChatManager {
	return &GroupChatManager{
		backend:       backend,
		uploads:       uploads,
		convs:         convs,
		profiles:      profiles,
		uploadTimeout: uploadTimeout,
	}
}

// CreateGroup validates, uploads the group image if provided, creates
// the conversation server-side and caches it locally. Returns the new
// conversation id.
func (m *GroupChatManager) CreateGroup(ctx context.Context, creatorId, name string, memberIds []string, image *MediaAttachment) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errcode.ErrEmptyGroupName
	}
	if len(memberIds) == 0 {
		return "", errcode.ErrNoGroupMembers
	}

	imageUrl := ""
	if image != nil {
		uploadCtx, cancel := context.WithTimeout(ctx, m.uploadTimeout)
		url, err := m.uploads.Upload(uploadCtx, creatorId, constant.UploadKindGroupImage, image.Filename, image.Data)
		cancel()
		if err != nil {
			log.CtxWarn(ctx, "group image upload failed: creator_id=%s, error=%v", creatorId, err)
			return "", errcode.ErrUploadFailed.Wrap(err)
		}
		imageUrl = url
	}

	conversationId, err := m.backend.CreateGroup(ctx, &api.CreateGroupRequest{
		Name:      name,
		MemberIds: memberIds,
		ImageUrl:  imageUrl,
	})
	if err != nil {
		log.CtxError(ctx, "group creation failed: creator_id=%s, name=%s, error=%v", creatorId, name, err)
		return "", err
	}

	conv := &entity.Conversation{
		Id:            conversationId,
		IsGroup:       true,
		GroupName:     name,
		GroupImageUrl: imageUrl,
		LastMessageAt: entity.NowUnixMilli(),
	}
	for _, memberId := range memberIds {
		profile, perr := m.profiles.LookupProfile(ctx, memberId)
		if perr != nil {
			log.CtxWarn(ctx, "profile lookup failed, using placeholder: user_id=%s, error=%v", memberId, perr)
			profile = entity.PlaceholderProfile(memberId)
		}
		conv.Participants = append(conv.Participants, entity.Participant{UserId: memberId, Profile: profile})
	}
	m.convs.Insert(conv)

	log.CtxInfo(ctx, "group created: conversation_id=%s, name=%s, members=%d", conversationId, name, len(memberIds))
	return conversationId, nil
}
