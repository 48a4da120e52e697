/*Package sidset implements the two interchangeable sequence-id set
  representations the engine uses to track which sequences contain a given
  item or partial rule: a Roaring-bitmap-backed set and a sorted-slice set.
  Both satisfy SidList and must produce identical observable behavior; the
  engine picks one representation at construction time and never mixes them.
*/
package sidset

// SidList is a set of sequence identifiers supporting the operations the
// engine needs: membership growth during index construction, size queries,
// and intersection during left-expansion sid-list recomputation.
type SidList interface {
	// Add inserts sid into the set.
	Add(sid int)
	// Size returns the set's cardinality. Implementations may memoise it.
	Size() int
	// Contains reports whether sid is a member.
	Contains(sid int) bool
	// Intersect returns a new SidList of the same representation as the
	// receiver, containing sids present in both the receiver and other.
	Intersect(other SidList) SidList
	// ForEach calls fn once per member, in ascending order.
	ForEach(fn func(sid int))
}
