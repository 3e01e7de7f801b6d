package mmapvec

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barracuda156/libosmium/mmap"
)

const testEmpty = ^uint64(0)

func TestNewDefaults(t *testing.T) {
	v, err := New[uint64](testEmpty)
	require.NoError(t, err)
	defer v.Close()

	assert.Equal(t, 0, v.Size())
	assert.Equal(t, DefaultIncrement, v.Capacity())
	assert.True(t, v.Empty())
}

func TestPushBackAndAccess(t *testing.T) {
	v, err := New[uint64](testEmpty, WithCapacity(4), WithIncrement(4))
	require.NoError(t, err)
	defer v.Close()

	for i := uint64(0); i < 100; i++ {
		require.NoError(t, v.PushBack(i*3))
		assert.LessOrEqual(t, v.Size(), v.Capacity())
	}
	assert.Equal(t, 100, v.Size())
	assert.False(t, v.Empty())

	for i := 0; i < 100; i++ {
		assert.Equal(t, uint64(i*3), v.Get(i))

		got, err := v.At(i)
		require.NoError(t, err)
		assert.Equal(t, uint64(i*3), got)
	}
}

func TestAtBounds(t *testing.T) {
	v, err := New[uint64](testEmpty, WithCapacity(8))
	require.NoError(t, err)
	defer v.Close()

	require.NoError(t, v.PushBack(7))

	_, err = v.At(1)
	require.Error(t, err)

	var be *BoundsError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 1, be.Index)
	assert.Equal(t, 1, be.Size)

	_, err = v.At(-1)
	assert.Error(t, err)
}

func TestGrowthIsAmortized(t *testing.T) {
	const (
		increment = 64
		m         = 10_000
	)

	v, err := New[uint64](testEmpty, WithCapacity(increment), WithIncrement(increment))
	require.NoError(t, err)
	defer v.Close()

	growths := 0
	lastCap := v.Capacity()
	for i := 0; i < m; i++ {
		require.NoError(t, v.PushBack(uint64(i)))
		if c := v.Capacity(); c != lastCap {
			growths++
			lastCap = c
		}
	}

	// One growth per exhausted increment, not per append.
	assert.LessOrEqual(t, growths, m/increment+1)
	assert.Greater(t, growths, 0)
}

func TestReserve(t *testing.T) {
	v, err := New[uint64](testEmpty, WithCapacity(8), WithIncrement(8))
	require.NoError(t, err)
	defer v.Close()

	require.NoError(t, v.PushBack(11))
	require.NoError(t, v.PushBack(22))

	require.NoError(t, v.Reserve(100))
	assert.Equal(t, 100, v.Capacity())
	assert.Equal(t, 2, v.Size())
	assert.Equal(t, uint64(11), v.Get(0))
	assert.Equal(t, uint64(22), v.Get(1))

	// Shrinking reserves are a no-op.
	require.NoError(t, v.Reserve(10))
	assert.Equal(t, 100, v.Capacity())

	// Newly reserved slots hold the sentinel.
	require.NoError(t, v.Resize(100))
	got, err := v.At(99)
	require.NoError(t, err)
	assert.Equal(t, testEmpty, got)
}

func TestResizeShrinkKeepsStaleContent(t *testing.T) {
	v, err := New[uint64](testEmpty, WithCapacity(16), WithIncrement(16))
	require.NoError(t, err)
	defer v.Close()

	require.NoError(t, v.Resize(10))
	for i := 0; i < 10; i++ {
		v.Set(i, uint64(i+100))
	}

	require.NoError(t, v.Resize(3))
	assert.Equal(t, 3, v.Size())
	assert.Equal(t, 16, v.Capacity())

	// Logical shrink only: the mapping still holds the old values.
	require.NoError(t, v.Resize(10))
	assert.Equal(t, uint64(105), v.Get(5))
}

func TestResizeOverAllocates(t *testing.T) {
	v, err := New[uint64](testEmpty, WithCapacity(8), WithIncrement(8))
	require.NoError(t, err)
	defer v.Close()

	require.NoError(t, v.Resize(20))
	assert.Equal(t, 20, v.Size())
	assert.Equal(t, 20+8, v.Capacity())
}

func TestClear(t *testing.T) {
	v, err := New[uint64](testEmpty, WithCapacity(8))
	require.NoError(t, err)
	defer v.Close()

	require.NoError(t, v.PushBack(1))
	require.NoError(t, v.PushBack(2))
	capBefore := v.Capacity()

	v.Clear()
	assert.Equal(t, 0, v.Size())
	assert.Equal(t, capBefore, v.Capacity())

	require.NoError(t, v.PushBack(9))
	assert.Equal(t, uint64(9), v.Get(0))
	assert.Equal(t, 1, v.Size())
}

func TestShrinkToFit(t *testing.T) {
	v, err := New[uint64](testEmpty, WithCapacity(128))
	require.NoError(t, err)
	defer v.Close()

	require.NoError(t, v.Resize(100))
	for i := 0; i < 5; i++ {
		v.Set(i, uint64(i+1))
	}

	v.ShrinkToFit()
	assert.Equal(t, 5, v.Size())
}

func TestShrinkToFitAllEmpty(t *testing.T) {
	v, err := New[uint64](testEmpty, WithCapacity(64))
	require.NoError(t, err)
	defer v.Close()

	require.NoError(t, v.Resize(50))
	v.ShrinkToFit()
	assert.Equal(t, 0, v.Size())
}

func TestAll(t *testing.T) {
	v, err := New[uint64](testEmpty, WithCapacity(8))
	require.NoError(t, err)
	defer v.Close()

	want := []uint64{5, 6, 7}
	for _, x := range want {
		require.NoError(t, v.PushBack(x))
	}

	var got []uint64
	for i, x := range v.All() {
		assert.Equal(t, len(got), i)
		got = append(got, x)
	}
	assert.Equal(t, want, got)
}

func TestFileBackedReopen(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "mmapvec")
	require.NoError(t, err)
	defer f.Close()

	v, err := NewFile(f, 1000, 0, testEmpty)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Size())
	assert.Equal(t, 1000, v.Capacity())

	require.NoError(t, v.Resize(10))
	for i := 0; i < 10; i++ {
		v.Set(i, uint64(i*i))
	}
	require.NoError(t, v.Close())

	// Reopen against the same descriptor. The file has no length field;
	// the resumed size is the raw element count of the file, trimmed back
	// to 10 by the trailing-sentinel convention.
	n, err := mmap.FileSize[uint64](int(f.Fd()))
	require.NoError(t, err)
	assert.Equal(t, 1000, n)

	v, err = NewFile(f, 1000, n, testEmpty)
	require.NoError(t, err)
	defer v.Close()

	assert.Equal(t, 10, v.Size())
	for i := 0; i < 10; i++ {
		assert.Equal(t, uint64(i*i), v.Get(i))
	}
}

func TestFileBackedSizeExceedsCapacity(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "mmapvec")
	require.NoError(t, err)
	defer f.Close()

	_, err = NewFile(f, 10, 11, testEmpty)
	assert.ErrorIs(t, err, ErrSizeExceedsCapacity)
}

func TestFileBackedResumedSize(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "mmapvec")
	require.NoError(t, err)
	defer f.Close()

	v, err := NewFile(f, 100, 0, testEmpty)
	require.NoError(t, err)
	// Deliberately store the sentinel inside populated range: without a
	// tracker, construction cannot tell it apart from unused tail slots.
	require.NoError(t, v.Resize(4))
	v.Set(0, 1)
	v.Set(1, 2)
	v.Set(2, testEmpty)
	v.Set(3, testEmpty)
	require.NoError(t, v.Close())

	n, err := mmap.FileSize[uint64](int(f.Fd()))
	require.NoError(t, err)

	v, err = NewFile(f, 100, n, testEmpty)
	require.NoError(t, err)
	defer v.Close()
	assert.Equal(t, 2, v.Size())
}

func TestWriteTo(t *testing.T) {
	v, err := New[uint32](^uint32(0), WithCapacity(8))
	require.NoError(t, err)
	defer v.Close()

	require.NoError(t, v.PushBack(0x01020304))
	require.NoError(t, v.PushBack(0x0a0b0c0d))

	var buf bytes.Buffer
	n, err := v.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)
	assert.Equal(t, 8, buf.Len())
}

type fakeAcquirer struct {
	limit, used int64
}

func (a *fakeAcquirer) TryAcquireMemory(n int64) bool {
	if a.used+n > a.limit {
		return false
	}
	a.used += n
	return true
}

func (a *fakeAcquirer) ReleaseMemory(n int64) { a.used -= n }

func TestMemoryBudget(t *testing.T) {
	acq := &fakeAcquirer{limit: 1024}

	v, err := New[uint64](testEmpty, WithCapacity(64), WithIncrement(64), WithMemoryAcquirer(acq))
	require.NoError(t, err)
	assert.Equal(t, int64(512), acq.used)

	// Growing past the budget fails and leaves the vector usable.
	err = v.Reserve(1000)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBudgetExceeded)
	assert.Equal(t, 64, v.Capacity())

	require.NoError(t, v.PushBack(3))
	assert.Equal(t, uint64(3), v.Get(0))

	require.NoError(t, v.Close())
	assert.Equal(t, int64(0), acq.used)
}

func BenchmarkVector_PushBack(b *testing.B) {
	v, err := New[uint64](testEmpty)
	if err != nil {
		b.Fatal(err)
	}
	defer v.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := v.PushBack(uint64(i)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkVector_Get(b *testing.B) {
	v, err := New[uint64](testEmpty, WithCapacity(1<<16))
	if err != nil {
		b.Fatal(err)
	}
	defer v.Close()
	for i := 0; i < 1<<16; i++ {
		if err := v.PushBack(uint64(i)); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	var sum uint64
	for i := 0; i < b.N; i++ {
		sum += v.Get(i & (1<<16 - 1))
	}
	_ = sum
}
