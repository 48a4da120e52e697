package husrio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldkit-data/husrmine/rule"
	"github.com/fieldkit-data/husrmine/seqdb"
)

func TestFileSinkEmitAndCloseWritesFormattedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.txt")

	s := NewFileSink(path)
	require.NoError(t, s.Emit(rule.Record{
		Rule: rule.Rule{
			Antecedent: []seqdb.Item{1, 2},
			Consequent: []seqdb.Item{3},
		},
		Support:    4,
		Confidence: 0.75,
		Utility:    12.5,
	}))
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1,2 ==> 3  #SUP:4 #CONF:0.75 #UTIL:12.5\n", string(data))
}

func TestFileSinkClosingWithNoRowsWritesEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.txt")

	s := NewFileSink(path)
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestTrimTrailingZeros(t *testing.T) {
	assert.Equal(t, "0.75", trimTrailingZeros("0.750000"))
	assert.Equal(t, "1", trimTrailingZeros("1.000000"))
	assert.Equal(t, "1.2", trimTrailingZeros("1.200000"))
}
