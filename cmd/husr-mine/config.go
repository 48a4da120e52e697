package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/pflag"
	"github.com/tailscale/hujson"

	"github.com/grailbio/base/errors"
)

// fileConfig holds the subset of run parameters that may be set via
// --config, a JSONC (hujson) file overlaid beneath the CLI flags: any flag
// the user actually passed on the command line takes precedence over the
// same field in this file. Flags the user did not pass fall through to
// whatever the config file set, and finally to the flag package's own
// defaults.
type fileConfig struct {
	MinUtil           *float64 `json:"minUtil,omitempty"`
	MinConfidence     *float64 `json:"minConfidence,omitempty"`
	MaxAntecedentSize *int     `json:"maxAntecedentSize,omitempty"`
	MaxConsequentSize *int     `json:"maxConsequentSize,omitempty"`
	MaxSequenceCount  *int     `json:"maxSequenceCount,omitempty"`
	Strategy2         *bool    `json:"strategy2,omitempty"`
}

// loadFileConfig reads and parses a JSONC config file at path. An empty
// path (no --config given) is not an error: it simply yields a zero
// fileConfig, so --config is always optional. A path that cannot be read
// is an error.
func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.E(err, "reading config", path)
	}
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return cfg, errors.E(err, "parsing config as JSONC", path)
	}
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return cfg, errors.E(err, "decoding config", path)
	}
	return cfg, nil
}

// applyFileConfig fills in any params field the user left at its flag
// default with the corresponding config-file value, if present. CLI flags
// always win over the config file.
func applyFileConfig(p *params, fc fileConfig, set *pflag.FlagSet) {
	if fc.MinUtil != nil && !set.Changed("min-util") {
		p.minUtil = *fc.MinUtil
	}
	if fc.MinConfidence != nil && !set.Changed("min-confidence") {
		p.minConfidence = *fc.MinConfidence
	}
	if fc.MaxAntecedentSize != nil && !set.Changed("max-antecedent-size") {
		p.maxAntecedentSize = *fc.MaxAntecedentSize
	}
	if fc.MaxConsequentSize != nil && !set.Changed("max-consequent-size") {
		p.maxConsequentSize = *fc.MaxConsequentSize
	}
	if fc.MaxSequenceCount != nil && !set.Changed("max-sequence-count") {
		p.maxSequenceCount = *fc.MaxSequenceCount
	}
	if fc.Strategy2 != nil && !set.Changed("strategy2") {
		p.strategy2 = *fc.Strategy2
	}
}
