package main

/*
husr-mine mines high-utility sequential rules from a utility-annotated
sequence database: itemsets of (item, utility) pairs ordered within a
sequence, a minimum utility, a minimum confidence, and antecedent/consequent
size caps in, a text file of qualifying rules out.
*/

import (
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/fieldkit-data/husrmine/engine"
	"github.com/fieldkit-data/husrmine/husrio"
	"github.com/fieldkit-data/husrmine/preprocess"
)

// minUtilEpsilon is substituted for a literal minUtil=0, per the
// boundary rule that a minUtil of exactly zero would otherwise admit
// every possible rule combination.
const minUtilEpsilon = 0.001

// params holds every driver parameter, populated from flags and optionally
// overlaid with a --config file.
type params struct {
	input             string
	output            string
	minUtil           float64
	minConfidence     float64
	maxAntecedentSize int
	maxConsequentSize int
	maxSequenceCount  int
	strategy2         bool
	configPath        string
	statsPath         string
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] --input PATH --output PATH\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage

	p := params{}
	flag.StringVar(&p.input, "input", "", "Input sequence-database path (local or remote; .gz transparently decompressed)")
	flag.StringVar(&p.output, "output", "", "Output rules path, written atomically")
	flag.Float64Var(&p.minUtil, "min-util", 0, "Minimum rule utility (0 substitutes a small positive epsilon)")
	flag.Float64Var(&p.minConfidence, "min-confidence", 0, "Minimum rule confidence, in [0,1]")
	flag.IntVar(&p.maxAntecedentSize, "max-antecedent-size", 1, "Maximum antecedent item count, >= 1")
	flag.IntVar(&p.maxConsequentSize, "max-consequent-size", 1, "Maximum consequent item count, >= 1")
	flag.IntVar(&p.maxSequenceCount, "max-sequence-count", 0, "Maximum number of sequences to load from input; 0 = unlimited")
	flag.BoolVar(&p.strategy2, "strategy2", true, "Also prune 1x1 seed pairs below minUtil during preprocessing")
	flag.StringVar(&p.configPath, "config", "", "Optional JSONC config file overlaid beneath these flags")
	flag.StringVar(&p.statsPath, "stats", "", "Optional path to write a run-statistics summary on success")
	flag.Parse()

	fc, err := loadFileConfig(p.configPath)
	if err != nil {
		log.Fatalf("%v", err)
	}
	applyFileConfig(&p, fc, flag.CommandLine)

	if err := validateParams(p); err != nil {
		log.Fatalf("%v", err)
	}
	if p.minUtil == 0 {
		p.minUtil = minUtilEpsilon
	}

	start := time.Now()
	stats, err := run(p)
	if err != nil {
		log.Fatalf("%v", err)
	}
	stats.Elapsed = time.Since(start)

	if p.statsPath != "" {
		if err := writeStats(p.statsPath, stats); err != nil {
			log.Fatalf("%v", err)
		}
	}
	log.Debug.Printf("exiting: %d rules emitted over %d tables", stats.RulesEmitted, stats.TablesBuilt)
}

// validateParams checks the contract-violation class of error (size caps,
// confidence bound) before any I/O is attempted: main calls it before run
// opens the input.
func validateParams(p params) error {
	if p.input == "" || p.output == "" {
		return errors.E("both --input and --output are required")
	}
	if p.minUtil < 0 {
		return errors.E("min-util must be >= 0")
	}
	if p.minConfidence < 0 || p.minConfidence > 1 {
		return errors.E("min-confidence must be in [0,1]")
	}
	if p.maxAntecedentSize < 1 {
		return errors.E("max-antecedent-size must be >= 1")
	}
	if p.maxConsequentSize < 1 {
		return errors.E("max-consequent-size must be >= 1")
	}
	if p.maxSequenceCount < 0 {
		return errors.E("max-sequence-count must be >= 0")
	}
	return nil
}

// run executes the full load -> preprocess -> mine -> write pipeline.
func run(p params) (runStats, error) {
	var stats runStats
	ctx := vcontext.Background()

	r, err := husrio.Open(ctx, p.input)
	if err != nil {
		return stats, err
	}
	db, skipped, err := husrio.Parse(r, p.maxSequenceCount)
	closeErr := r.Close()
	if err != nil {
		return stats, err
	}
	if closeErr != nil {
		return stats, errors.E(closeErr, "closing input", p.input)
	}
	stats.SequencesLoaded = db.Size()
	stats.SequencesSkipped = skipped

	pp := preprocess.New(preprocess.Config{
		MinUtil:   p.minUtil,
		Strategy2: p.strategy2,
	})
	pp.Run(db)
	stats.ItemsRemoved = pp.ItemsRemoved
	stats.REURPRounds = pp.RoundsRun

	sink := husrio.NewFileSink(p.output)
	eng := engine.New(db, pp, engine.Config{
		MinUtil:     p.minUtil,
		MinConf:     p.minConfidence,
		MaxAntSize:  p.maxAntecedentSize,
		MaxConsSize: p.maxConsequentSize,
	}, sink)

	if err := eng.Mine(); err != nil {
		return stats, err
	}
	if err := sink.Close(); err != nil {
		return stats, err
	}
	stats.TablesBuilt = eng.Stats.TablesBuilt
	stats.RulesEmitted = eng.Stats.RulesEmitted
	return stats, nil
}
