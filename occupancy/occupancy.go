// Package occupancy tracks which slots of a dense array have been written.
//
// The persisted array format has no length field; logical size is recovered
// by trimming trailing sentinel-valued slots. That convention cannot tell a
// deliberately stored sentinel apart from an unused slot. A Tracker is the
// opt-in escape hatch: attach it with mmapvec.WithTracker and trimming is
// driven by recorded occupancy instead of slot values.
package occupancy

import (
	"io"

	"github.com/RoaringBitmap/roaring/v2"
)

// Tracker is a compressed set of written indices. It implements
// mmapvec.Tracker.
//
// Like the vector it accompanies, a Tracker is single-writer.
type Tracker struct {
	rb *roaring.Bitmap
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{rb: roaring.New()}
}

// Mark records index i as written. Negative indices are ignored.
func (t *Tracker) Mark(i int) {
	if i < 0 {
		return
	}
	t.rb.Add(uint32(i))
}

// Unmark removes index i from the set.
func (t *Tracker) Unmark(i int) {
	if i < 0 {
		return
	}
	t.rb.Remove(uint32(i))
}

// Contains reports whether index i has been marked.
func (t *Tracker) Contains(i int) bool {
	return i >= 0 && t.rb.Contains(uint32(i))
}

// Cardinality returns the number of marked indices.
func (t *Tracker) Cardinality() uint64 {
	return t.rb.GetCardinality()
}

// TrimmedLen returns one past the highest marked index below limit, or 0 when
// no index below limit is marked.
func (t *Tracker) TrimmedLen(limit int) int {
	if limit <= 0 || t.rb.IsEmpty() {
		return 0
	}
	it := t.rb.ReverseIterator()
	for it.HasNext() {
		if i := int(it.Next()); i < limit {
			return i + 1
		}
	}
	return 0
}

// WriteTo serializes the tracker. It complements a persisted array file when
// the sentinel convention alone is not enough to recover occupancy.
func (t *Tracker) WriteTo(w io.Writer) (int64, error) {
	return t.rb.WriteTo(w)
}

// ReadFrom replaces the tracker's contents with a serialized set.
func (t *Tracker) ReadFrom(r io.Reader) (int64, error) {
	return t.rb.ReadFrom(r)
}
