package engine

import (
	"sort"

	"github.com/fieldkit-data/husrmine/etable"
	"github.com/fieldkit-data/husrmine/preprocess"
	"github.com/fieldkit-data/husrmine/rule"
	"github.com/fieldkit-data/husrmine/seqdb"
	"github.com/fieldkit-data/husrmine/sidset"
)

// Config holds the mining thresholds. MinUtil is never literally 0 here;
// the driver substitutes a small positive epsilon for a requested minUtil
// of 0 before constructing an Engine, since 0 would admit every rule.
type Config struct {
	MinUtil     float64
	MinConf     float64
	MaxAntSize  int
	MaxConsSize int
}

// Stats are run statistics surfaced by the driver's --stats flag.
type Stats struct {
	TablesBuilt  int
	RulesEmitted int
}

// Engine runs the recursive right/left expansion search over a pruned
// database, using the preprocessor's item-SID index and REUCM for pruning,
// and emitting qualifying rules to Sink.
type Engine struct {
	DB   *seqdb.SequenceDB
	PP   *preprocess.Preprocessor
	Cfg  Config
	Sink rule.Sink

	Stats Stats
}

// New returns an Engine ready to Mine.
func New(db *seqdb.SequenceDB, pp *preprocess.Preprocessor, cfg Config, sink rule.Sink) *Engine {
	return &Engine{DB: db, PP: pp, Cfg: cfg, Sink: sink}
}

// Mine walks every 1x1 seed pair in a deterministic order, building each
// seed's RE-table and recursing. It is the sole entry point; all rule
// discovery happens through the recursive expandRight / expandFirstLeft /
// expandSecondLeft calls it triggers.
func (e *Engine) Mine() error {
	for _, a := range sortedItemKeys(e.PP.PairSeeds) {
		row := e.PP.PairSeeds[a]
		for _, b := range sortedPairSeedKeys(row) {
			seed := row[b]
			tbl := e.buildRETable([]seqdb.Item{a}, []seqdb.Item{b}, sidsOf(seed.Sids))
			if tbl == nil {
				continue
			}
			e.Stats.TablesBuilt++
			if err := e.evaluateAndRecurseRE([]seqdb.Item{a}, []seqdb.Item{b}, tbl); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) evaluateAndRecurseRE(ant, cons []seqdb.Item, tbl *etable.RETable) error {
	if len(tbl.Rows) == 0 {
		return nil
	}
	support := len(tbl.Rows)
	confidence := e.confidence(ant, support)
	if tbl.TotalUtility >= e.Cfg.MinUtil && confidence >= e.Cfg.MinConf {
		if err := e.emit(ant, cons, support, confidence, tbl.TotalUtility); err != nil {
			return err
		}
	}
	if tbl.REEU >= e.Cfg.MinUtil && len(cons) < e.Cfg.MaxConsSize {
		if err := e.expandRight(ant, cons, tbl); err != nil {
			return err
		}
	}
	if tbl.LEEU >= e.Cfg.MinUtil && len(ant) < e.Cfg.MaxAntSize {
		if err := e.expandFirstLeft(ant, cons, tbl); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) evaluateAndRecurseLE(ant, cons []seqdb.Item, tbl *etable.LETable) error {
	if len(tbl.Rows) == 0 {
		return nil
	}
	support := len(tbl.Rows)
	confidence := e.confidence(ant, support)
	if tbl.TotalUtility >= e.Cfg.MinUtil && confidence >= e.Cfg.MinConf {
		if err := e.emit(ant, cons, support, confidence, tbl.TotalUtility); err != nil {
			return err
		}
	}
	if tbl.LEEU >= e.Cfg.MinUtil && len(ant) < e.Cfg.MaxAntSize {
		if err := e.expandSecondLeft(ant, cons, tbl); err != nil {
			return err
		}
	}
	return nil
}

// expandRight extends cons by one item on the right, for every candidate
// item that survives REUCP and RSU pruning, and recurses into both further
// right-expansion and first-left-expansion on each surviving child.
func (e *Engine) expandRight(ant, cons []seqdb.Item, tbl *etable.RETable) error {
	largestAnt := ant[len(ant)-1]
	largestCons := cons[len(cons)-1]
	inRule := toSet(ant, cons)

	candidateSids := make(map[seqdb.Item][]int)
	rsu := make(map[seqdb.Item]float64)
	for _, row := range tbl.Rows {
		seq := e.DB.Get(row.Sid)
		if seq == nil {
			continue
		}
		seen := make(map[seqdb.Item]bool)
		for i := row.AlphaItemset + 1; i < len(seq.Itemsets); i++ {
			for _, it := range seq.Itemsets[i].Items {
				if inRule[it] || it <= largestCons || seen[it] {
					continue
				}
				seen[it] = true
				candidateSids[it] = append(candidateSids[it], row.Sid)
				rsu[it] += row.REEU
			}
		}
	}

	for _, j := range sortedItemSlice(candidateSids) {
		if rsu[j] < e.Cfg.MinUtil {
			continue
		}
		if !e.PP.REUCPRight(largestAnt, j) {
			continue
		}
		childCons := appendItem(cons, j)
		child := e.buildRETable(ant, childCons, candidateSids[j])
		if child == nil {
			continue
		}
		e.Stats.TablesBuilt++
		if err := e.evaluateAndRecurseRE(ant, childCons, child); err != nil {
			return err
		}
	}
	return nil
}

// expandFirstLeft extends ant by one item on the left, the first time a
// rule's antecedent grows: its children are LE-tables, since from here on
// the consequent is fixed and URight/ULeftRight no longer need tracking.
func (e *Engine) expandFirstLeft(ant, cons []seqdb.Item, tbl *etable.RETable) error {
	largestAnt := ant[len(ant)-1]
	largestCons := cons[len(cons)-1]
	inRule := toSet(ant, cons)

	candidateSids := make(map[seqdb.Item][]int)
	rsu := make(map[seqdb.Item]float64)
	for _, row := range tbl.Rows {
		seq := e.DB.Get(row.Sid)
		if seq == nil {
			continue
		}
		seen := make(map[seqdb.Item]bool)
		for i := 0; i < row.BetaItemset; i++ {
			for _, it := range seq.Itemsets[i].Items {
				if inRule[it] || it <= largestAnt || seen[it] {
					continue
				}
				seen[it] = true
				candidateSids[it] = append(candidateSids[it], row.Sid)
				rsu[it] += row.LEEU
			}
		}
	}

	for _, j := range sortedItemSlice(candidateSids) {
		if rsu[j] < e.Cfg.MinUtil {
			continue
		}
		if !e.PP.REUCPLeft(j, largestCons) {
			continue
		}
		childAnt := appendItem(ant, j)
		child := e.buildLETable(childAnt, cons, candidateSids[j])
		if child == nil {
			continue
		}
		e.Stats.TablesBuilt++
		if err := e.evaluateAndRecurseLE(childAnt, cons, child); err != nil {
			return err
		}
	}
	return nil
}

// expandSecondLeft extends ant by one item on the left for a rule past its
// first left-expansion; structurally identical to expandFirstLeft but
// consumes and produces LE-tables.
func (e *Engine) expandSecondLeft(ant, cons []seqdb.Item, tbl *etable.LETable) error {
	largestAnt := ant[len(ant)-1]
	largestCons := cons[len(cons)-1]
	inRule := toSet(ant, cons)

	candidateSids := make(map[seqdb.Item][]int)
	rsu := make(map[seqdb.Item]float64)
	for _, row := range tbl.Rows {
		seq := e.DB.Get(row.Sid)
		if seq == nil {
			continue
		}
		beta := tbl.TableBeta[row.Sid]
		seen := make(map[seqdb.Item]bool)
		for i := 0; i < beta; i++ {
			for _, it := range seq.Itemsets[i].Items {
				if inRule[it] || it <= largestAnt || seen[it] {
					continue
				}
				seen[it] = true
				candidateSids[it] = append(candidateSids[it], row.Sid)
				rsu[it] += row.LEEU
			}
		}
	}

	for _, j := range sortedItemSlice(candidateSids) {
		if rsu[j] < e.Cfg.MinUtil {
			continue
		}
		if !e.PP.REUCPLeft(j, largestCons) {
			continue
		}
		childAnt := appendItem(ant, j)
		child := e.buildLETable(childAnt, cons, candidateSids[j])
		if child == nil {
			continue
		}
		e.Stats.TablesBuilt++
		if err := e.evaluateAndRecurseLE(childAnt, cons, child); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) buildRETable(ant, cons []seqdb.Item, sids []int) *etable.RETable {
	tbl := &etable.RETable{}
	for _, sid := range sids {
		seq := e.DB.Get(sid)
		if seq == nil {
			continue
		}
		row, ok := computeRow(seq, sid, ant, cons)
		if !ok {
			continue
		}
		tbl.AddRow(row)
	}
	if len(tbl.Rows) == 0 {
		return nil
	}
	return tbl
}

func (e *Engine) buildLETable(ant, cons []seqdb.Item, sids []int) *etable.LETable {
	tbl := &etable.LETable{TableBeta: make(map[int]int)}
	for _, sid := range sids {
		seq := e.DB.Get(sid)
		if seq == nil {
			continue
		}
		row, ok := computeRow(seq, sid, ant, cons)
		if !ok {
			continue
		}
		lrow := etable.LERow{Sid: sid, Util: row.Util, ULeft: row.ULeft}
		lrow.ComputeRowBounds()
		tbl.AddRow(lrow)
		tbl.TableBeta[sid] = row.BetaItemset
	}
	if len(tbl.Rows) == 0 {
		return nil
	}
	return tbl
}

// confidence computes support(ant=>cons) / support(ant), where ruleSupport
// is the number of rows the caller already built.
func (e *Engine) confidence(ant []seqdb.Item, ruleSupport int) float64 {
	antSupport := e.support(ant)
	if antSupport == 0 {
		return 0
	}
	return float64(ruleSupport) / float64(antSupport)
}

// support returns the number of (pruned) sequences containing every item in
// items, computed by intersecting the preprocessor's item-SID index; this
// is exact because REURP removal is all-or-nothing per item.
func (e *Engine) support(items []seqdb.Item) int {
	if len(items) == 0 {
		return 0
	}
	list, ok := e.PP.ItemSIDs[items[0]]
	if !ok {
		return 0
	}
	for _, it := range items[1:] {
		other, ok := e.PP.ItemSIDs[it]
		if !ok {
			return 0
		}
		list = list.Intersect(other)
	}
	return list.Size()
}

func (e *Engine) emit(ant, cons []seqdb.Item, support int, confidence, utility float64) error {
	e.Stats.RulesEmitted++
	return e.Sink.Emit(rule.Record{
		Rule: rule.Rule{
			Antecedent: append([]seqdb.Item{}, ant...),
			Consequent: append([]seqdb.Item{}, cons...),
		},
		Support:    support,
		Confidence: confidence,
		Utility:    utility,
	})
}

func appendItem(items []seqdb.Item, j seqdb.Item) []seqdb.Item {
	out := make([]seqdb.Item, len(items)+1)
	copy(out, items)
	out[len(items)] = j
	return out
}

func sidsOf(l sidset.SidList) []int {
	var out []int
	l.ForEach(func(sid int) { out = append(out, sid) })
	return out
}

func sortedItemKeys(m map[seqdb.Item]map[seqdb.Item]preprocess.PairSeed) []seqdb.Item {
	out := make([]seqdb.Item, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedPairSeedKeys(m map[seqdb.Item]preprocess.PairSeed) []seqdb.Item {
	out := make([]seqdb.Item, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedItemSlice(m map[seqdb.Item][]int) []seqdb.Item {
	out := make([]seqdb.Item, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
