package sidset

import "sort"

// ArraySidList is a SidList backed by a sorted slice of ids. Intersection is
// a merge-like scan that binary-searches the smaller list against the
// larger, the same idiom interval.SearchPosTypes uses for endpoint scans.
type ArraySidList struct {
	ids []int32
}

// NewArraySidList returns an empty ArraySidList.
func NewArraySidList() *ArraySidList {
	return &ArraySidList{}
}

// Add inserts sid, keeping ids sorted and free of duplicates.
func (a *ArraySidList) Add(sid int) {
	x := int32(sid)
	i := sort.Search(len(a.ids), func(i int) bool { return a.ids[i] >= x })
	if i < len(a.ids) && a.ids[i] == x {
		return
	}
	a.ids = append(a.ids, 0)
	copy(a.ids[i+1:], a.ids[i:])
	a.ids[i] = x
}

func (a *ArraySidList) Size() int {
	return len(a.ids)
}

func (a *ArraySidList) Contains(sid int) bool {
	x := int32(sid)
	i := sort.Search(len(a.ids), func(i int) bool { return a.ids[i] >= x })
	return i < len(a.ids) && a.ids[i] == x
}

// Intersect walks the smaller list, binary-searching each element against
// the larger, and returns a new sorted ArraySidList of common members.
func (a *ArraySidList) Intersect(other SidList) SidList {
	o, ok := other.(*ArraySidList)
	if !ok {
		return intersectHeterogeneousArray(a, other)
	}
	small, large := a.ids, o.ids
	if len(large) < len(small) {
		small, large = large, small
	}
	out := &ArraySidList{}
	for _, x := range small {
		i := sort.Search(len(large), func(i int) bool { return large[i] >= x })
		if i < len(large) && large[i] == x {
			out.ids = append(out.ids, x)
		}
	}
	return out
}

func (a *ArraySidList) ForEach(fn func(sid int)) {
	for _, x := range a.ids {
		fn(int(x))
	}
}

func intersectHeterogeneousArray(a *ArraySidList, other SidList) SidList {
	out := &ArraySidList{}
	a.ForEach(func(sid int) {
		if other.Contains(sid) {
			out.ids = append(out.ids, int32(sid))
		}
	})
	return out
}
