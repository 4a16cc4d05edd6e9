package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnreadTracker_IncrementAndTotal(t *testing.T) {
	u := NewUnreadTracker()

	u.Increment("c1")
	u.Increment("c1")
	u.Increment("c2")

	assert.Equal(t, 2, u.Count("c1"))
	assert.Equal(t, 1, u.Count("c2"))
	assert.Equal(t, 3, u.Total())
}

func TestUnreadTracker_MarkRead(t *testing.T) {
	u := NewUnreadTracker()
	u.Increment("c1")
	u.Increment("c1")
	u.Increment("c2")

	u.MarkRead("c1")
	assert.Equal(t, 0, u.Count("c1"))
	assert.Equal(t, 1, u.Total())
}

func TestUnreadTracker_MarkReadIdempotent(t *testing.T) {
	u := NewUnreadTracker()
	u.Increment("c1")

	u.MarkRead("c1")
	u.MarkRead("c1")

	assert.Equal(t, 0, u.Count("c1"))
	assert.Equal(t, 0, u.Total())

	// Marking a conversation that never had messages is a no-op too.
	u.MarkRead("c2")
	assert.Equal(t, 0, u.Total())
}
