package idgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archiveone/panchat/pkg/constant"
)

func TestNextLocalID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := NextLocalID()
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(id, constant.LocalIdPrefix))
		assert.False(t, seen[id], "local ids must be unique")
		seen[id] = true
	}
}

func TestNewClientMsgID(t *testing.T) {
	a := NewClientMsgID()
	b := NewClientMsgID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestSonyflakeGenerator(t *testing.T) {
	gen, err := NewSonyflakeGenerator(7)
	require.NoError(t, err)

	a, err := gen.NextID()
	require.NoError(t, err)
	b, err := gen.NextID()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, constant.LocalIdPrefix)
}
