package seqdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(utils ...[]float64) *Sequence {
	s := &Sequence{}
	item := Item(1)
	for _, us := range utils {
		is := Itemset{}
		for _, u := range us {
			is.Items = append(is.Items, item)
			is.Utilities = append(is.Utilities, u)
			item++
		}
		s.Itemsets = append(s.Itemsets, is)
		s.ExactUtility += sum(us)
	}
	return s
}

func sum(xs []float64) float64 {
	var t float64
	for _, x := range xs {
		t += x
	}
	return t
}

func TestSequenceDBAddGet(t *testing.T) {
	db := New()
	s := seq([]float64{5, 3})
	id := db.Add(s)
	assert.Equal(t, 0, id)
	assert.Equal(t, 1, db.Size())
	assert.Equal(t, s, db.Get(0))
	assert.Equal(t, 8.0, db.ExactUtility(0))
}

func TestRemoveItemCascadesToEmptyItemset(t *testing.T) {
	db := New()
	s := seq([]float64{5}, []float64{3, 2})
	id := db.Add(s)

	db.RemoveItem(id, 0, 0) // only item in itemset 0
	require.Len(t, db.Get(id).Itemsets, 1)
	assert.Equal(t, 5.0, db.ExactUtility(id))
}

func TestRemoveItemCascadesToEmptySequence(t *testing.T) {
	db := New()
	s := seq([]float64{5})
	id := db.Add(s)

	db.RemoveItem(id, 0, 0)
	assert.Nil(t, db.Get(id))
	assert.Equal(t, 0, db.Size())
}

func TestRemoveItemKeepsOtherIdsStable(t *testing.T) {
	db := New()
	a := db.Add(seq([]float64{5}))
	b := db.Add(seq([]float64{1}))

	db.RemoveItem(a, 0, 0)
	assert.Nil(t, db.Get(a))
	assert.Equal(t, 1.0, db.ExactUtility(b))
	assert.Equal(t, 2, db.Len())
	assert.Equal(t, 1, db.Size())
}

func TestValidateRejectsMismatch(t *testing.T) {
	s := &Sequence{Itemsets: []Itemset{{Items: []Item{1, 2}, Utilities: []float64{1}}}}
	assert.Error(t, s.Validate())
}
