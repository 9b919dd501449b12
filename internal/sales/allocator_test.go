package sales

import (
	"testing"

	"api_fiado/internal/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDAllocator_StartsAtOneAndIncreases(t *testing.T) {
	mem := kv.NewMemory()
	a := NewIDAllocator(mem)

	for want := 1; want <= 3; want++ {
		id, err := a.NextID()
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}

	raw, ok, _ := mem.Get(nextIDKey)
	assert.True(t, ok)
	assert.Equal(t, "4", raw, "Expected counter to hold the next id to issue")
}

func TestIDAllocator_ResumesFromPersistedCounter(t *testing.T) {
	mem := kv.NewMemory()
	require.NoError(t, mem.Set(nextIDKey, "42"))

	id, err := NewIDAllocator(mem).NextID()
	require.NoError(t, err)
	assert.Equal(t, 42, id)
}

func TestIDAllocator_CorruptCounterStaysAboveFloor(t *testing.T) {
	mem := kv.NewMemory()
	require.NoError(t, mem.Set(nextIDKey, "not-a-number"))

	a := NewIDAllocator(mem)
	a.floor = func() int { return 9 }

	id, err := a.NextID()
	require.NoError(t, err)
	assert.Equal(t, 10, id)
}

func TestIDAllocator_WriteFailureIsReturned(t *testing.T) {
	f := &failingSubstrate{Memory: kv.NewMemory(), failSet: true}

	_, err := NewIDAllocator(f).NextID()
	assert.ErrorIs(t, err, errDiskFull)
}
