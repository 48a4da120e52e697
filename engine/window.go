/*Package engine implements the recursive right/left expansion search: the
  pruning-and-expansion core that enumerates every rule whose exact utility
  and confidence meet the configured thresholds. It consumes a pruned
  SequenceDB and the REUCM/item-SID index built by package preprocess, and
  emits accepted rules to a rule.Sink.
*/
package engine

import (
	"github.com/fieldkit-data/husrmine/etable"
	"github.com/fieldkit-data/husrmine/seqdb"
)

// findAlpha locates a rule's antecedent occurrence in seq: for each item in
// ant, its first occurrence itemset index; alpha is the max of those (the
// earliest itemset by which every antecedent item has appeared). ok is
// false if any antecedent item never occurs.
func findAlpha(seq *seqdb.Sequence, ant []seqdb.Item) (alpha int, util float64, ok bool) {
	alpha = etable.NotFound
	for _, it := range ant {
		pos, u, found := firstOccurrence(seq, it)
		if !found {
			return etable.NotFound, 0, false
		}
		if pos > alpha {
			alpha = pos
		}
		util += u
	}
	return alpha, util, true
}

// findBeta locates a rule's consequent occurrence in seq, given alpha: for
// each item in cons, its last occurrence at an itemset index > alpha; beta
// is the max of those (the latest itemset by which every consequent item
// has appeared after alpha). ok is false if any consequent item never
// occurs strictly after alpha.
func findBeta(seq *seqdb.Sequence, cons []seqdb.Item, alpha int) (beta int, util float64, ok bool) {
	beta = etable.NotFound
	for _, it := range cons {
		pos, u, found := lastOccurrence(seq, it, alpha+1)
		if !found {
			return etable.NotFound, 0, false
		}
		if pos > beta {
			beta = pos
		}
		util += u
	}
	return beta, util, true
}

func firstOccurrence(seq *seqdb.Sequence, item seqdb.Item) (idx int, util float64, ok bool) {
	for i, is := range seq.Itemsets {
		for k, it := range is.Items {
			if it == item {
				return i, is.Utilities[k], true
			}
		}
	}
	return 0, 0, false
}

func lastOccurrence(seq *seqdb.Sequence, item seqdb.Item, minIdx int) (idx int, util float64, ok bool) {
	for i := len(seq.Itemsets) - 1; i >= minIdx; i-- {
		for k, it := range seq.Itemsets[i].Items {
			if it == item {
				return i, seq.Itemsets[i].Utilities[k], true
			}
		}
	}
	return 0, 0, false
}

// computeRow builds the full RE-table row for rule (ant, cons) in sequence
// sid: ULeft sums items in
// [0, beta) larger than the largest antecedent item; URight sums items in
// (alpha, end] larger than the largest consequent item; ULeftRight sums
// items in (alpha, beta) larger than both. These windows deliberately
// overlap (an item can count toward more than one reservoir): LEEU/REEU are
// loose, sound upper bounds, not a tight partition of utility, so the
// overlap only ever makes a bound looser, never unsound.
//
// The beta itemset's region strictly before y's position is, under the
// data model's ascending item-order invariant, never larger than y, so it
// contributes nothing to URight; only the region after y's position
// (captured here via the (alpha, end] window) contributes. See
// seed_offbyone_test.go.
func computeRow(seq *seqdb.Sequence, sid int, ant, cons []seqdb.Item) (etable.RERow, bool) {
	alpha, antUtil, ok := findAlpha(seq, ant)
	if !ok {
		return etable.RERow{}, false
	}
	beta, consUtil, ok := findBeta(seq, cons, alpha)
	if !ok {
		return etable.RERow{}, false
	}
	largestAnt := ant[len(ant)-1]
	largestCons := cons[len(cons)-1]
	inRule := toSet(ant, cons)

	row := etable.RERow{Sid: sid, Util: antUtil + consUtil, AlphaItemset: alpha, BetaItemset: beta}

	for i := 0; i < beta; i++ {
		is := seq.Itemsets[i]
		for k, it := range is.Items {
			if inRule[it] || it <= largestAnt {
				continue
			}
			row.ULeft += is.Utilities[k]
		}
	}
	for i := alpha + 1; i < len(seq.Itemsets); i++ {
		is := seq.Itemsets[i]
		for k, it := range is.Items {
			if inRule[it] || it <= largestCons {
				continue
			}
			row.URight += is.Utilities[k]
		}
	}
	for i := alpha + 1; i < beta; i++ {
		is := seq.Itemsets[i]
		for k, it := range is.Items {
			if inRule[it] || it <= largestAnt || it <= largestCons {
				continue
			}
			row.ULeftRight += is.Utilities[k]
		}
	}
	row.ComputeRowBounds()
	return row, true
}

func toSet(lists ...[]seqdb.Item) map[seqdb.Item]bool {
	m := make(map[seqdb.Item]bool)
	for _, l := range lists {
		for _, it := range l {
			m[it] = true
		}
	}
	return m
}
