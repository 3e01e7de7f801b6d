package occupancy_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barracuda156/libosmium/mmapvec"
	"github.com/barracuda156/libosmium/occupancy"
)

func TestTrackerBasics(t *testing.T) {
	tr := occupancy.NewTracker()
	assert.Equal(t, 0, tr.TrimmedLen(100))

	tr.Mark(0)
	tr.Mark(7)
	tr.Mark(3)

	assert.True(t, tr.Contains(7))
	assert.False(t, tr.Contains(5))
	assert.Equal(t, uint64(3), tr.Cardinality())

	assert.Equal(t, 8, tr.TrimmedLen(100))
	assert.Equal(t, 4, tr.TrimmedLen(7))
	assert.Equal(t, 1, tr.TrimmedLen(3))
	assert.Equal(t, 0, tr.TrimmedLen(0))

	tr.Unmark(7)
	assert.Equal(t, 4, tr.TrimmedLen(100))

	tr.Mark(-1) // ignored
	assert.Equal(t, uint64(2), tr.Cardinality())
}

func TestTrackerRoundTrip(t *testing.T) {
	tr := occupancy.NewTracker()
	for _, i := range []int{1, 2, 500, 70000} {
		tr.Mark(i)
	}

	var buf bytes.Buffer
	_, err := tr.WriteTo(&buf)
	require.NoError(t, err)

	tr2 := occupancy.NewTracker()
	_, err = tr2.ReadFrom(&buf)
	require.NoError(t, err)

	assert.True(t, tr2.Contains(70000))
	assert.Equal(t, tr.Cardinality(), tr2.Cardinality())
}

func TestTrackerPreservesStoredSentinel(t *testing.T) {
	const empty = ^uint64(0)

	tr := occupancy.NewTracker()
	v, err := mmapvec.New(empty, mmapvec.WithCapacity(64), mmapvec.WithTracker(tr))
	require.NoError(t, err)
	defer v.Close()

	require.NoError(t, v.PushBack(1))
	require.NoError(t, v.PushBack(empty)) // deliberate sentinel value
	require.NoError(t, v.PushBack(3))
	require.NoError(t, v.PushBack(empty)) // deliberate sentinel value at the tail

	// The plain sentinel scan would trim the trailing slot; tracked
	// occupancy keeps it.
	v.ShrinkToFit()
	assert.Equal(t, 4, v.Size())
	assert.Equal(t, empty, v.Get(3))
}
