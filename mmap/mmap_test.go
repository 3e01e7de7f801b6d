package mmap

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapWriteReadUnmap(t *testing.T) {
	r, err := Map[uint64](10)
	require.NoError(t, err)

	s := r.Slice()
	s[0] = 4
	s[3] = 9
	s[9] = 25

	assert.Equal(t, uint64(4), s[0])
	assert.Equal(t, uint64(9), s[3])
	assert.Equal(t, uint64(25), s[9])

	require.NoError(t, r.Unmap())
	assert.Nil(t, r.Slice())
}

func TestMapZeroLength(t *testing.T) {
	_, err := Map[uint64](0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrZeroLength)

	var re *ResourceError
	assert.ErrorAs(t, err, &re)
}

func TestMapHugeSize(t *testing.T) {
	// 2^50 elements cannot be backed by any real address space.
	_, err := Map[uint64](1 << 50)
	require.Error(t, err)

	var re *ResourceError
	assert.ErrorAs(t, err, &re)
}

func TestResizePreservesContent(t *testing.T) {
	const k = 10

	r, err := Map[uint64](k)
	require.NoError(t, err)
	defer r.Unmap()

	s := r.Slice()
	for i := range s {
		s[i] = uint64(i * i)
	}

	require.NoError(t, r.Resize(k*10))
	assert.Equal(t, k*10, r.Capacity())

	s = r.Slice()
	for i := 0; i < k; i++ {
		assert.Equal(t, uint64(i*i), s[i])
	}
}

func TestResizeFailureKeepsMapping(t *testing.T) {
	r, err := Map[uint64](8)
	require.NoError(t, err)
	defer r.Unmap()

	r.Slice()[7] = 42

	require.Error(t, r.Resize(0))
	require.Error(t, r.Resize(1<<50))

	assert.Equal(t, 8, r.Capacity())
	assert.Equal(t, uint64(42), r.Slice()[7])
}

func TestUnmapIdempotent(t *testing.T) {
	r, err := Map[uint32](4)
	require.NoError(t, err)

	require.NoError(t, r.Unmap())
	require.NoError(t, r.Unmap())
}

func TestFileSizeAndGrowFile(t *testing.T) {
	const size = 100

	f, err := os.CreateTemp(t.TempDir(), "typed_mmap")
	require.NoError(t, err)
	defer f.Close()
	fd := int(f.Fd())

	n, err := FileSize[uint64](fd)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, f.Truncate(size*8))
	n, err = FileSize[uint64](fd)
	require.NoError(t, err)
	assert.Equal(t, size, n)

	// Growing to a smaller or equal size is a no-op.
	require.NoError(t, GrowFile[uint64](size/2, fd))
	n, err = FileSize[uint64](fd)
	require.NoError(t, err)
	assert.Equal(t, size, n)

	require.NoError(t, GrowFile[uint64](size, fd))
	n, err = FileSize[uint64](fd)
	require.NoError(t, err)
	assert.Equal(t, size, n)

	require.NoError(t, GrowFile[uint64](size*2, fd))
	n, err = FileSize[uint64](fd)
	require.NoError(t, err)
	assert.Equal(t, size*2, n)
}

func TestFileSizeMisaligned(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "typed_mmap")
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, f.Truncate(13))

	_, err = FileSize[uint64](int(f.Fd()))
	assert.ErrorIs(t, err, ErrMisalignedFile)
}

func TestGrowAndMap(t *testing.T) {
	const size = 100

	f, err := os.CreateTemp(t.TempDir(), "typed_mmap")
	require.NoError(t, err)
	defer f.Close()
	fd := int(f.Fd())

	r, err := GrowAndMap[uint64](size, fd)
	require.NoError(t, err)
	defer r.Unmap()

	n, err := FileSize[uint64](fd)
	require.NoError(t, err)
	assert.Equal(t, size, n)

	s := r.Slice()
	s[0] = 1
	s[1] = 8
	s[99] = 27

	assert.Equal(t, uint64(1), s[0])
	assert.Equal(t, uint64(8), s[1])
	assert.Equal(t, uint64(27), s[99])
}

func TestFileBackedResizePersists(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "typed_mmap")
	require.NoError(t, err)
	defer f.Close()
	fd := int(f.Fd())

	r, err := GrowAndMap[uint64](10, fd)
	require.NoError(t, err)

	for i, s := 0, r.Slice(); i < 10; i++ {
		s[i] = uint64(i + 1)
	}

	// Growing a file-backed region grows the file first.
	require.NoError(t, r.Resize(1000))
	n, err := FileSize[uint64](fd)
	require.NoError(t, err)
	assert.Equal(t, 1000, n)

	s := r.Slice()
	for i := 0; i < 10; i++ {
		assert.Equal(t, uint64(i+1), s[i])
	}
	// Freshly exposed file pages read as zero.
	assert.Equal(t, uint64(0), s[500])

	require.NoError(t, r.Unmap())
}
