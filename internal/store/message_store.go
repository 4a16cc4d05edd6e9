package store

import (
	"context"
	"sort"
	"sync"

	"github.com/mbeoliero/kit/log"

	"github.com/archiveone/panchat/internal/entity"
	"github.com/archiveone/panchat/pkg/constant"
	"github.com/archiveone/panchat/pkg/errcode"
)

// HistoryLoader pulls a conversation's server-side message log
type HistoryLoader interface {
	PullHistory(ctx context.Context, conversationId string) ([]*entity.Message, error)
}

// MessageStore keeps the per-conversation ordered message log. It merges
// server-confirmed, locally-optimistic and push-delivered entries into
// one sequence: a total order by created-at, ties broken by id. All
// mutation goes through its methods.
type MessageStore struct {
	mu     sync.Mutex
	loader HistoryLoader
	logs   map[string][]*entity.Message
	loaded map[string]bool
}

// NewMessageStore creates a new MessageStore
func NewMessageStore(loader HistoryLoader) *MessageStore {
	return &MessageStore{
		loader: loader,
		logs:   make(map[string][]*entity.Message),
		loaded: make(map[string]bool),
	}
}

// LoadHistory returns the conversation log ascending by created-at,
// fetching from the backend on first access. Entries that arrived via
// optimistic sends or realtime push before the fetch are merged in, not
// overwritten.
func (s *MessageStore) LoadHistory(ctx context.Context, conversationId string) ([]*entity.Message, error) {
	s.mu.Lock()
	alreadyLoaded := s.loaded[conversationId]
	s.mu.Unlock()

	if !alreadyLoaded {
		history, err := s.loader.PullHistory(ctx, conversationId)
		if err != nil {
			log.CtxError(ctx, "load history failed: conversation_id=%s, error=%v", conversationId, err)
			return nil, err
		}

		s.mu.Lock()
		for _, msg := range history {
			s.mergeLocked(msg)
		}
		s.loaded[conversationId] = true
		s.mu.Unlock()
	}

	return s.Snapshot(conversationId), nil
}

// Snapshot returns a copy of the current log without touching the network
func (s *MessageStore) Snapshot(conversationId string) []*entity.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.logs[conversationId]
	result := make([]*entity.Message, 0, len(entries))
	for _, m := range entries {
		result = append(result, m.Clone())
	}
	return result
}

// AppendOptimistic inserts a pending message at the tail immediately,
// before any network round trip. The id must be a temporary local id.
func (s *MessageStore) AppendOptimistic(msg *entity.Message) error {
	if !msg.IsLocal() || msg.Status != constant.StatusPending {
		return errcode.ErrInvalidParam
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(msg.ConversationId, msg.Id) >= 0 {
		return errcode.ErrInvalidParam
	}

	s.logs[msg.ConversationId] = append(s.logs[msg.ConversationId], msg.Clone())
	s.sortLocked(msg.ConversationId)
	return nil
}

// Reconcile replaces the pending entry at tempId with the
// server-confirmed message, preserving its log position. If the server
// copy already arrived as a realtime echo the temp entry is dropped
// instead, so the log never holds both.
func (s *MessageStore) Reconcile(conversationId, tempId string, serverMsg *entity.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findLocked(conversationId, tempId)
	if s.findLocked(conversationId, serverMsg.Id) >= 0 {
		if idx >= 0 {
			s.removeLocked(conversationId, idx)
		}
		return nil
	}
	if idx < 0 {
		return errcode.ErrMessageNotFound
	}

	confirmed := serverMsg.Clone()
	confirmed.Status = constant.StatusSent
	s.logs[conversationId][idx] = confirmed
	s.sortLocked(conversationId)
	return nil
}

// Fail marks the pending entry failed. It stays visible so the user can
// retry or discard; nothing is silently dropped.
func (s *MessageStore) Fail(conversationId, tempId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findLocked(conversationId, tempId)
	if idx < 0 {
		return errcode.ErrMessageNotFound
	}

	s.logs[conversationId][idx].Status = constant.StatusFailed
	return nil
}

// MergeRemote inserts an inbound message, deduplicating by id. A
// coordinator's own sent message may arrive again as an echo; the second
// copy updates edit/delete flags in place instead of duplicating. An
// echo that beats the send response is matched to its pending entry via
// the client message id.
func (s *MessageStore) MergeRemote(msg *entity.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mergeLocked(msg)
}

func (s *MessageStore) mergeLocked(msg *entity.Message) {
	entries := s.logs[msg.ConversationId]

	if idx := s.findLocked(msg.ConversationId, msg.Id); idx >= 0 {
		existing := entries[idx]
		existing.IsDeleted = msg.IsDeleted
		existing.IsEdited = msg.IsEdited
		existing.Body = msg.Body
		existing.MediaUrl = msg.MediaUrl
		return
	}

	if msg.ClientMsgId != "" {
		for i, m := range entries {
			if m.IsLocal() && m.ClientMsgId == msg.ClientMsgId {
				confirmed := msg.Clone()
				confirmed.Status = constant.StatusSent
				entries[i] = confirmed
				s.sortLocked(msg.ConversationId)
				return
			}
		}
	}

	incoming := msg.Clone()
	if incoming.Status == "" {
		incoming.Status = constant.StatusSent
	}
	s.logs[msg.ConversationId] = append(entries, incoming)
	s.sortLocked(msg.ConversationId)
}

func (s *MessageStore) findLocked(conversationId, id string) int {
	for i, m := range s.logs[conversationId] {
		if m.Id == id {
			return i
		}
	}
	return -1
}

func (s *MessageStore) removeLocked(conversationId string, idx int) {
	entries := s.logs[conversationId]
	s.logs[conversationId] = append(entries[:idx], entries[idx+1:]...)
}

func (s *MessageStore) sortLocked(conversationId string) {
	entries := s.logs[conversationId]
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Before(entries[j])
	})
}
