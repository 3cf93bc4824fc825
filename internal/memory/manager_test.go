package memory

import (
	"errors"
	"testing"

	"rect-segmenter/internal/colorvec"
	"rect-segmenter/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocAndFree(t *testing.T) {
	m := NewManager(logger.Nop{}, 0)
	assert.Equal(t, DefaultLimit, m.Limit())

	buf, err := m.Alloc(10, "vectors")
	require.NoError(t, err)
	require.Len(t, buf, 10)
	for _, v := range buf {
		assert.Equal(t, colorvec.Vec3{}, v)
	}
	assert.Equal(t, int64(10*colorvec.Bytes), m.GetUsedMemory())
	assert.Equal(t, 1, m.GetActiveCount())

	m.Free(buf, "vectors")

	alloc, dealloc, used := m.GetStats()
	assert.Equal(t, int64(1), alloc)
	assert.Equal(t, int64(1), dealloc)
	assert.Zero(t, used)
	assert.Zero(t, m.GetActiveCount())
}

func TestAllocLimit(t *testing.T) {
	m := NewManager(nil, 100*colorvec.Bytes)

	first, err := m.Alloc(60, "first")
	require.NoError(t, err)

	_, err = m.Alloc(50, "second")
	require.Error(t, err)

	var allocErr *AllocationError
	require.True(t, errors.As(err, &allocErr))
	assert.Equal(t, "second", allocErr.Tag)
	assert.Equal(t, int64(50*colorvec.Bytes), allocErr.Requested)
	assert.Equal(t, int64(60*colorvec.Bytes), allocErr.InUse)
	assert.Contains(t, err.Error(), "memory limit exceeded")

	m.Free(first, "first")
	second, err := m.Alloc(50, "second")
	require.NoError(t, err)
	m.Free(second, "second")
}

func TestAllocRejectsEmpty(t *testing.T) {
	m := NewManager(nil, 0)

	_, err := m.Alloc(0, "empty")
	var allocErr *AllocationError
	require.ErrorAs(t, err, &allocErr)
	assert.Contains(t, err.Error(), "invalid allocation size")
}

func TestFreeUntracked(t *testing.T) {
	m := NewManager(nil, 0)

	m.Free(make([]colorvec.Vec3, 3), "foreign")
	m.Free(nil, "nil")

	_, dealloc, _ := m.GetStats()
	assert.Zero(t, dealloc)
}

func TestCleanup(t *testing.T) {
	m := NewManager(nil, 0)

	_, err := m.Alloc(4, "leaked")
	require.NoError(t, err)
	m.LogStats()

	m.Cleanup()
	assert.Zero(t, m.GetUsedMemory())
	assert.Zero(t, m.GetActiveCount())
}
