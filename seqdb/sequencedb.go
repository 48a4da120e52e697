package seqdb

import (
	"github.com/grailbio/base/errors"
)

// SequenceDB is a mapping sequence-id -> *Sequence, with sequence-id equal to
// insertion index. Ids are stable only through the preprocessing phase; after
// that they are frozen and removed slots are left nil rather than
// re-indexed, so an id never changes meaning mid-run.
type SequenceDB struct {
	seqs []*Sequence
}

// New returns an empty SequenceDB.
func New() *SequenceDB {
	return &SequenceDB{}
}

// Add appends seq and returns its assigned id.
func (db *SequenceDB) Add(seq *Sequence) int {
	db.seqs = append(db.seqs, seq)
	return len(db.seqs) - 1
}

// Size returns the number of live (non-removed) sequences.
func (db *SequenceDB) Size() int {
	n := 0
	for _, s := range db.seqs {
		if s != nil {
			n++
		}
	}
	return n
}

// Len returns the id space, i.e. one past the largest id ever assigned.
// Some ids in [0, Len()) may have been removed and are nil.
func (db *SequenceDB) Len() int {
	return len(db.seqs)
}

// Get returns the sequence at sid, or nil if it has been removed.
func (db *SequenceDB) Get(sid int) *Sequence {
	if sid < 0 || sid >= len(db.seqs) {
		return nil
	}
	return db.seqs[sid]
}

// ForEach calls fn for every live sequence, in id order.
func (db *SequenceDB) ForEach(fn func(sid int, seq *Sequence)) {
	for sid, s := range db.seqs {
		if s != nil {
			fn(sid, s)
		}
	}
}

// ExactUtility returns the exact utility of sequence sid, or 0 if removed.
func (db *SequenceDB) ExactUtility(sid int) float64 {
	s := db.Get(sid)
	if s == nil {
		return 0
	}
	return s.ExactUtility
}

// RemoveItem deletes the item at (itemsetPos, itemPos) of sequence sid,
// decrementing the sequence's exact utility by the item's utility and
// returning that utility so the caller can fold it into a removal-round
// accumulator ("removeUtility"). RemoveItem cascades: an itemset left
// empty by the removal is deleted (removeEmptyItemset), and a sequence left
// empty by that is deleted in turn (removeEmptySequence).
func (db *SequenceDB) RemoveItem(sid, itemsetPos, itemPos int) float64 {
	s := db.Get(sid)
	if s == nil {
		return 0
	}
	is := &s.Itemsets[itemsetPos]
	u := is.Utilities[itemPos]
	is.Items = append(is.Items[:itemPos], is.Items[itemPos+1:]...)
	is.Utilities = append(is.Utilities[:itemPos], is.Utilities[itemPos+1:]...)
	s.ExactUtility -= u
	if len(is.Items) == 0 {
		db.removeEmptyItemset(sid, itemsetPos)
	}
	return u
}

// removeEmptyItemset drops itemset pos from sequence sid. If that leaves the
// sequence with no itemsets at all, it cascades to removeEmptySequence.
func (db *SequenceDB) removeEmptyItemset(sid, pos int) {
	s := db.Get(sid)
	if s == nil {
		return
	}
	s.Itemsets = append(s.Itemsets[:pos], s.Itemsets[pos+1:]...)
	if len(s.Itemsets) == 0 {
		db.removeEmptySequence(sid)
	}
}

// removeEmptySequence removes sequence sid from the database entirely. The
// id slot is left nil so sibling ids remain stable.
func (db *SequenceDB) removeEmptySequence(sid int) {
	if sid < 0 || sid >= len(db.seqs) {
		return
	}
	db.seqs[sid] = nil
}

// ContainsItem reports whether item appears anywhere in sequence sid.
func (s *Sequence) ContainsItem(item Item) bool {
	for _, is := range s.Itemsets {
		for _, it := range is.Items {
			if it == item {
				return true
			}
		}
	}
	return false
}

// Validate checks the per-itemset |items|==|utilities| invariant that
// husrio.Parse and any direct constructor must uphold.
func (s *Sequence) Validate() error {
	for i, is := range s.Itemsets {
		if len(is.Items) == 0 {
			return errors.E("seqdb", "empty itemset at position", i)
		}
		if len(is.Items) != len(is.Utilities) {
			return errors.E("seqdb", "itemset", i, "item/utility count mismatch")
		}
	}
	return nil
}
