/*Package rule defines the mined-rule record and the sink interface that
  receives accepted rules as the expansion engine emits them.
*/
package rule

import "github.com/fieldkit-data/husrmine/seqdb"

// Rule is the pair (antecedent, consequent) of disjoint ordered item lists.
// The last element of each side is its "largest item", used by the engine
// for lexicographic extension tests.
type Rule struct {
	Antecedent []seqdb.Item
	Consequent []seqdb.Item
}

// LargestAntecedent returns the last (largest) antecedent item.
func (r Rule) LargestAntecedent() seqdb.Item {
	return r.Antecedent[len(r.Antecedent)-1]
}

// LargestConsequent returns the last (largest) consequent item.
func (r Rule) LargestConsequent() seqdb.Item {
	return r.Consequent[len(r.Consequent)-1]
}

// Record is a fully evaluated rule ready for emission: the rule itself plus
// its exact support, confidence, and utility.
type Record struct {
	Rule
	Support    int
	Confidence float64
	Utility    float64
}

// Sink receives accepted rule records. A Sink failure aborts mining; there
// is no partial-run persistence or retry.
type Sink interface {
	Emit(Record) error
}
