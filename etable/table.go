/*Package etable implements the per-rule expansion tables (RE-table and
  LE-table): the per-sequence summaries of utility reservoirs and position
  markers the expansion engine builds, consumes once, and discards. Tables
  never escape the recursive call that builds them.
*/
package etable

// NotFound is the sentinel used for position markers that have not (yet)
// been located in a sequence scan. It is distinct from every valid itemset
// index, which are all >= 0.
const NotFound = -1

// RERow is one row of an RE-table: the summary of a partial rule's
// occurrence in a single sequence, used during right-expansion and during
// the first left-expansion.
type RERow struct {
	Sid         int
	Util        float64
	AlphaItemset int
	BetaItemset  int
	ULeft        float64
	URight       float64
	ULeftRight   float64
	LEEU         float64
	REEU         float64
}

// RETable is the RE-table for a partial rule: one row per sequence
// containing it, plus the table-wide aggregates the engine compares against
// minUtil to decide whether to emit and whether to expand further.
type RETable struct {
	Rows         []RERow
	TotalUtility float64
	LEEU         float64
	REEU         float64
}

// ComputeRowBounds fills LEEU and REEU on row: when
// ULeftRight is nonzero both bounds include it and ULeft; when it is zero,
// LEEU is util+ULeft (if ULeft != 0) and REEU is util+URight+ULeft (if
// URight != 0), and both are zero otherwise.
func (row *RERow) ComputeRowBounds() {
	if row.ULeftRight != 0 {
		row.LEEU = row.Util + row.ULeftRight + row.ULeft
		row.REEU = row.Util + row.ULeftRight + row.ULeft + row.URight
		return
	}
	row.LEEU = 0
	if row.ULeft != 0 {
		row.LEEU = row.Util + row.ULeft
	}
	row.REEU = 0
	if row.URight != 0 {
		row.REEU = row.Util + row.URight + row.ULeft
	}
}

// AddRow appends row to the table and folds its bounds into the table-wide
// aggregates.
func (t *RETable) AddRow(row RERow) {
	t.Rows = append(t.Rows, row)
	t.TotalUtility += row.Util
	t.LEEU += row.LEEU
	t.REEU += row.REEU
}

// LERow is one row of an LE-table: used once the engine is past the first
// left-expansion, where the consequent no longer changes and so URight /
// ULeftRight no longer need tracking.
type LERow struct {
	Sid   int
	Util  float64
	ULeft float64
	LEEU  float64
}

// LETable is the LE-table for a partial rule past its first
// left-expansion. TableBeta threads beta-itemset positions alongside the
// table because beta is invariant under further left-expansion.
type LETable struct {
	Rows         []LERow
	TableBeta    map[int]int
	TotalUtility float64
	LEEU         float64
}

// ComputeRowBounds fills LEEU = util + ULeft on an LE-table row.
func (row *LERow) ComputeRowBounds() {
	row.LEEU = row.Util + row.ULeft
}

// AddRow appends row and folds it into the table-wide aggregates.
func (t *LETable) AddRow(row LERow) {
	t.Rows = append(t.Rows, row)
	t.TotalUtility += row.Util
	t.LEEU += row.LEEU
}
