/*Package preprocess implements the preprocessing phase: per-item
  sequence-estimated utility (SEU), the iterative SEU-based item-removal
  pruning pass (REURP), the item-to-sequence-id index, the pairwise
  co-occurrence utility map (REUCM), and the 1x1 rule seed map that the
  expansion engine starts its recursion from.
*/
package preprocess

import (
	"github.com/grailbio/base/log"

	"github.com/fieldkit-data/husrmine/seqdb"
	"github.com/fieldkit-data/husrmine/sidset"
)

// Config holds the thresholds and knobs the preprocessor needs. MinUtil is
// never literally 0 by the time it reaches here; the driver substitutes a
// small positive epsilon for a requested 0, since 0 would admit every item.
type Config struct {
	MinUtil        float64
	MaxRemoveTimes int
	Strategy2      bool
	NewSidList     func() sidset.SidList
}

// DefaultMaxRemoveTimes bounds REURP's iteration count. It is generous but
// finite so a pathological input cannot loop forever; exposed on Config so
// tests can force early termination.
const DefaultMaxRemoveTimes = 1000

// PairSeed is the 1x1 rule seed for an ordered item pair (a, b): the summed
// exact utility of sequences in which b occurs in a later itemset than a, and
// the set of such sequence ids.
type PairSeed struct {
	EstUtil float64
	Sids    sidset.SidList
}

// Preprocessor holds the outputs of the preprocessing pipeline.
type Preprocessor struct {
	cfg Config

	ItemSEU   map[seqdb.Item]float64
	ItemSIDs  map[seqdb.Item]sidset.SidList
	REUCM     map[seqdb.Item]map[seqdb.Item]float64
	PairSeeds map[seqdb.Item]map[seqdb.Item]PairSeed

	// ItemsRemoved and RoundsRun are run statistics, surfaced by the driver.
	ItemsRemoved int
	RoundsRun    int
}

// New returns a Preprocessor configured with cfg, filling in defaults.
func New(cfg Config) *Preprocessor {
	if cfg.MaxRemoveTimes <= 0 {
		cfg.MaxRemoveTimes = DefaultMaxRemoveTimes
	}
	if cfg.NewSidList == nil {
		cfg.NewSidList = func() sidset.SidList { return sidset.NewBitsetSidList() }
	}
	return &Preprocessor{cfg: cfg}
}

// Run executes the full preprocessing pipeline over db, mutating db in
// place (REURP deletes unpromising items and any itemsets/sequences that
// become empty) and populating the Preprocessor's maps.
func (p *Preprocessor) Run(db *seqdb.SequenceDB) {
	p.buildSEU(db)
	p.reurp(db)
	p.buildItemSIDs(db)
	p.buildREUCMAndSeeds(db)
	p.pruneMaps()
}

// buildSEU computes itemSEU[i] = sum of exactUtility(sid) over sequences
// containing i.
func (p *Preprocessor) buildSEU(db *seqdb.SequenceDB) {
	p.ItemSEU = make(map[seqdb.Item]float64)
	seen := make(map[seqdb.Item]bool)
	db.ForEach(func(sid int, seq *seqdb.Sequence) {
		for k := range seen {
			delete(seen, k)
		}
		for _, is := range seq.Itemsets {
			for _, it := range is.Items {
				if seen[it] {
					continue
				}
				seen[it] = true
				p.ItemSEU[it] += seq.ExactUtility
			}
		}
	})
}

// reurp removes items whose SEU falls below minUtil, cascading their
// occurrences out of the database, and iterates: each round's removals
// lower survivors' SEU bound by the sequence's removeUtility (the sum of
// utilities deleted from that sequence this round), which may push more
// items below minUtil for the next round. Loops until a round removes
// nothing or MaxRemoveTimes is reached.
func (p *Preprocessor) reurp(db *seqdb.SequenceDB) {
	for round := 0; round < p.cfg.MaxRemoveTimes; round++ {
		var toRemove []seqdb.Item
		for item, seu := range p.ItemSEU {
			if seu < p.cfg.MinUtil {
				toRemove = append(toRemove, item)
			}
		}
		if len(toRemove) == 0 {
			break
		}
		p.RoundsRun++
		remove := make(map[seqdb.Item]bool, len(toRemove))
		for _, it := range toRemove {
			remove[it] = true
			delete(p.ItemSEU, it)
			p.ItemsRemoved++
		}
		log.Debug.Printf("REURP round %d: removing %d items", p.RoundsRun, len(toRemove))

		db.ForEach(func(sid int, seq *seqdb.Sequence) {
			removeUtility := removeMatchingItems(db, sid, func(it seqdb.Item) bool { return remove[it] })
			if removeUtility == 0 {
				return
			}
			seq = db.Get(sid)
			if seq == nil {
				return
			}
			decremented := make(map[seqdb.Item]bool)
			for _, is := range seq.Itemsets {
				for _, it := range is.Items {
					if decremented[it] {
						continue
					}
					decremented[it] = true
					if _, ok := p.ItemSEU[it]; ok {
						p.ItemSEU[it] -= removeUtility
					}
				}
			}
		})
	}
}

// removeMatchingItems deletes every item in sequence sid for which match
// returns true, cascading empty-itemset and empty-sequence removal, and
// returns the total utility removed. It restarts its scan from the top
// after each removal rather than tracking shifting indices, which is
// correct (sequences here are small) and avoids index-aliasing bugs.
func removeMatchingItems(db *seqdb.SequenceDB, sid int, match func(seqdb.Item) bool) float64 {
	var total float64
	for {
		seq := db.Get(sid)
		if seq == nil {
			return total
		}
		found := false
		for isIdx, is := range seq.Itemsets {
			for itemIdx, it := range is.Items {
				if match(it) {
					total += db.RemoveItem(sid, isIdx, itemIdx)
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			return total
		}
	}
}

// buildItemSIDs builds itemSIDs : item -> SidList over the (now pruned) db.
func (p *Preprocessor) buildItemSIDs(db *seqdb.SequenceDB) {
	p.ItemSIDs = make(map[seqdb.Item]sidset.SidList)
	db.ForEach(func(sid int, seq *seqdb.Sequence) {
		seen := make(map[seqdb.Item]bool)
		for _, is := range seq.Itemsets {
			for _, it := range is.Items {
				if seen[it] {
					continue
				}
				seen[it] = true
				l, ok := p.ItemSIDs[it]
				if !ok {
					l = p.cfg.NewSidList()
					p.ItemSIDs[it] = l
				}
				l.Add(sid)
			}
		}
	})
}

// buildREUCMAndSeeds performs the single pass building REUCM and the 1x1
// seed map simultaneously: for every ordered pair (a, b) with a preceding or
// equal to b in sequence order, add the sequence's exact utility to
// REUCM[a][b], and, when b lies in a later itemset than a, (once per
// sequence) record the pair's estimated utility and sid for the seed map.
func (p *Preprocessor) buildREUCMAndSeeds(db *seqdb.SequenceDB) {
	p.REUCM = make(map[seqdb.Item]map[seqdb.Item]float64)
	p.PairSeeds = make(map[seqdb.Item]map[seqdb.Item]PairSeed)

	db.ForEach(func(sid int, seq *seqdb.Sequence) {
		flat := flattenWithItemsetIndex(seq)
		seenPair := make(map[[2]seqdb.Item]bool)
		for i, ai := range flat {
			for j := i; j < len(flat); j++ {
				bi := flat[j]
				if ai.item == bi.item {
					continue
				}
				p.addREUCM(ai.item, bi.item, seq.ExactUtility)
				if bi.itemsetIdx <= ai.itemsetIdx {
					continue
				}
				key := [2]seqdb.Item{ai.item, bi.item}
				if seenPair[key] {
					continue
				}
				seenPair[key] = true
				p.addSeed(ai.item, bi.item, seq.ExactUtility, sid)
			}
		}
	})
}

type posItem struct {
	item       seqdb.Item
	itemsetIdx int
}

// flattenWithItemsetIndex returns every item in seq in sequence-scan order
// (itemset order, then ascending item order within an itemset, matching the
// data model's "lexicographical order"): a flat-index comparison i <= j is
// then equivalent to "a precedes or equals b in sequence order", while the
// carried itemsetIdx lets callers additionally distinguish same-itemset
// co-occurrence (equal itemsetIdx) from a genuine later-itemset occurrence
// (strictly greater itemsetIdx) — REUCM wants the former, PairSeeds (which
// needs a real beta > alpha rule occurrence) wants only the latter.
func flattenWithItemsetIndex(seq *seqdb.Sequence) []posItem {
	var out []posItem
	for idx, is := range seq.Itemsets {
		for _, it := range is.Items {
			out = append(out, posItem{item: it, itemsetIdx: idx})
		}
	}
	return out
}

func (p *Preprocessor) addREUCM(a, b seqdb.Item, util float64) {
	row, ok := p.REUCM[a]
	if !ok {
		row = make(map[seqdb.Item]float64)
		p.REUCM[a] = row
	}
	row[b] += util
}

func (p *Preprocessor) addSeed(a, b seqdb.Item, util float64, sid int) {
	row, ok := p.PairSeeds[a]
	if !ok {
		row = make(map[seqdb.Item]PairSeed)
		p.PairSeeds[a] = row
	}
	seed, ok := row[b]
	if !ok {
		seed = PairSeed{Sids: p.cfg.NewSidList()}
	}
	seed.EstUtil += util
	seed.Sids.Add(sid)
	row[b] = seed
}

// pruneMaps drops REUCM entries (and, if Strategy2 is enabled, PairSeeds
// entries) below minUtil: these bounds can never support a qualifying rule.
func (p *Preprocessor) pruneMaps() {
	for a, row := range p.REUCM {
		for b, u := range row {
			if u < p.cfg.MinUtil {
				delete(row, b)
			}
		}
		if len(row) == 0 {
			delete(p.REUCM, a)
		}
	}
	if !p.cfg.Strategy2 {
		return
	}
	for a, row := range p.PairSeeds {
		for b, seed := range row {
			if seed.EstUtil < p.cfg.MinUtil {
				delete(row, b)
			}
		}
		if len(row) == 0 {
			delete(p.PairSeeds, a)
		}
	}
}

// REUCPRight reports whether extending a rule whose largest antecedent item
// is a and largest consequent item is c, by item j on the right, passes the
// REUCP gate: REUCM[a][j] must exist (and thus be >= minUtil, since pruneMaps
// already dropped lower entries).
func (p *Preprocessor) REUCPRight(a, j seqdb.Item) bool {
	row, ok := p.REUCM[a]
	if !ok {
		return false
	}
	_, ok = row[j]
	return ok
}

// REUCPLeft reports whether extending a rule with largest consequent item c
// by item j on the left passes the REUCP gate: REUCM[j][c] must exist.
func (p *Preprocessor) REUCPLeft(j, c seqdb.Item) bool {
	row, ok := p.REUCM[j]
	if !ok {
		return false
	}
	_, ok = row[c]
	return ok
}
