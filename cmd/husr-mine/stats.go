package main

import (
	"fmt"
	"os"
	"time"

	"github.com/grailbio/base/errors"
)

// runStats is the run-statistics summary written by --stats. It is
// telemetry only, reported on success, never consulted by the mining
// pipeline itself.
type runStats struct {
	SequencesLoaded  int
	SequencesSkipped int
	ItemsRemoved     int
	REURPRounds      int
	TablesBuilt      int
	RulesEmitted     int
	Elapsed          time.Duration
}

// String formats the stats as simple key:value lines, one per field.
func (s runStats) String() string {
	return fmt.Sprintf(
		"sequencesLoaded:%d\nsequencesSkipped:%d\nitemsRemovedByREURP:%d\nreurpRounds:%d\ntablesBuilt:%d\nrulesEmitted:%d\nelapsed:%s\n",
		s.SequencesLoaded, s.SequencesSkipped, s.ItemsRemoved, s.REURPRounds,
		s.TablesBuilt, s.RulesEmitted, s.Elapsed,
	)
}

// writeStats writes s to path, only called after a successful run.
func writeStats(path string, s runStats) error {
	if err := os.WriteFile(path, []byte(s.String()), 0o644); err != nil {
		return errors.E(err, "writing stats", path)
	}
	return nil
}
