package store

import "sync"

// UnreadTracker maintains per-conversation and aggregate unread counts.
// Counts grow only through Increment (one call per genuinely new
// message) and reset only through an explicit MarkRead.
type UnreadTracker struct {
	mu     sync.Mutex
	counts map[string]int
	total  int
}

// NewUnreadTracker creates a new UnreadTracker
func NewUnreadTracker() *UnreadTracker {
	return &UnreadTracker{counts: make(map[string]int)}
}

// Increment bumps the conversation's count and the aggregate
func (t *UnreadTracker) Increment(conversationId string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts[conversationId]++
	t.total++
}

// MarkRead zeroes the conversation's count and subtracts it from the
// aggregate. Safe to call when already at zero.
func (t *UnreadTracker) MarkRead(conversationId string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev := t.counts[conversationId]
	if prev == 0 {
		return
	}
	t.counts[conversationId] = 0
	t.total -= prev
}

// Count returns the conversation's unread count
func (t *UnreadTracker) Count(conversationId string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[conversationId]
}

// Total returns the aggregate unread count across all conversations
func (t *UnreadTracker) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}
