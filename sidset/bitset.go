package sidset

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// BitsetSidList is a SidList backed by a Roaring bitmap. It is the engine's
// default representation: intersections during left-expansion sid-list
// recomputation dominate cost at deeper recursion, and Roaring bitmaps keep
// those intersections fast even when the id space is sparse.
type BitsetSidList struct {
	bm        *roaring.Bitmap
	size      int
	sizeValid bool
}

// NewBitsetSidList returns an empty BitsetSidList.
func NewBitsetSidList() *BitsetSidList {
	return &BitsetSidList{bm: roaring.New()}
}

func (b *BitsetSidList) Add(sid int) {
	b.bm.Add(uint32(sid))
	b.sizeValid = false
}

// Size returns the cardinality, memoised after the first call following any
// mutation.
func (b *BitsetSidList) Size() int {
	if !b.sizeValid {
		b.size = int(b.bm.GetCardinality())
		b.sizeValid = true
	}
	return b.size
}

func (b *BitsetSidList) Contains(sid int) bool {
	return b.bm.Contains(uint32(sid))
}

// Intersect returns a new BitsetSidList holding the bitwise AND of the two
// receivers; neither input is mutated.
func (b *BitsetSidList) Intersect(other SidList) SidList {
	o, ok := other.(*BitsetSidList)
	if !ok {
		return intersectHeterogeneous(b, other)
	}
	return &BitsetSidList{bm: roaring.And(b.bm, o.bm)}
}

func (b *BitsetSidList) ForEach(fn func(sid int)) {
	it := b.bm.Iterator()
	for it.HasNext() {
		fn(int(it.Next()))
	}
}

// intersectHeterogeneous handles the (disallowed in normal operation, but
// still well-defined) case of intersecting across representations.
func intersectHeterogeneous(a, other SidList) SidList {
	out := NewBitsetSidList()
	a.ForEach(func(sid int) {
		if other.Contains(sid) {
			out.Add(sid)
		}
	})
	return out
}
