package etable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowBoundsWithULeftRight(t *testing.T) {
	row := RERow{Util: 10, ULeft: 2, URight: 3, ULeftRight: 5}
	row.ComputeRowBounds()
	assert.Equal(t, 10+5+2, int(row.LEEU))
	assert.Equal(t, 10+5+2+3, int(row.REEU))
}

func TestRowBoundsWithoutULeftRight(t *testing.T) {
	row := RERow{Util: 10, ULeft: 2, URight: 3}
	row.ComputeRowBounds()
	assert.Equal(t, 12.0, row.LEEU)
	assert.Equal(t, 15.0, row.REEU)
}

func TestRowBoundsZeroWhenNoReservoirs(t *testing.T) {
	row := RERow{Util: 10}
	row.ComputeRowBounds()
	assert.Equal(t, 0.0, row.LEEU)
	assert.Equal(t, 0.0, row.REEU)
}

func TestTableAggregatesAccumulate(t *testing.T) {
	tbl := &RETable{}
	r1 := RERow{Util: 10, ULeft: 2}
	r1.ComputeRowBounds()
	r2 := RERow{Util: 5, URight: 1}
	r2.ComputeRowBounds()
	tbl.AddRow(r1)
	tbl.AddRow(r2)
	assert.Equal(t, 15.0, tbl.TotalUtility)
	assert.Equal(t, r1.LEEU+r2.LEEU, tbl.LEEU)
	assert.Equal(t, r1.REEU+r2.REEU, tbl.REEU)
}

func TestLERowBounds(t *testing.T) {
	row := LERow{Util: 4, ULeft: 6}
	row.ComputeRowBounds()
	assert.Equal(t, 10.0, row.LEEU)
}
