package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runPipeline(t *testing.T, input string, p params) string {
	t.Helper()
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(inPath, []byte(input), 0o644))
	p.input = inPath
	p.output = filepath.Join(dir, "out.txt")

	_, err := run(p)
	require.NoError(t, err)

	data, err := os.ReadFile(p.output)
	require.NoError(t, err)
	return string(data)
}

func TestScenarioSingleRule(t *testing.T) {
	out := runPipeline(t, "1:5 -1 2:3 -2\n", params{
		minUtil: 1, minConfidence: 0.5, maxAntecedentSize: 1, maxConsequentSize: 1,
	})
	assert.Equal(t, "1 ==> 2  #SUP:1 #CONF:1 #UTIL:8\n", out)
}

func TestScenarioPruningRemovesItem(t *testing.T) {
	out := runPipeline(t, "1:1 -1 2:1 -2\n3:100 -1 4:100 -2\n", params{
		minUtil: 50, minConfidence: 0, maxAntecedentSize: 1, maxConsequentSize: 1,
	})
	assert.Equal(t, "3 ==> 4  #SUP:1 #CONF:1 #UTIL:200\n", out)
}

func TestScenarioRightExpansion(t *testing.T) {
	input := "1:5 -1 2:5 3:5 -2\n1:5 -1 2:5 3:5 -2\n"
	out := runPipeline(t, input, params{
		minUtil: 15, minConfidence: 1.0, maxAntecedentSize: 1, maxConsequentSize: 2,
	})
	lines := splitNonEmpty(out)
	require.Len(t, lines, 3)
	assert.Contains(t, out, "1 ==> 2  #SUP:2 #CONF:1 #UTIL:20\n")
	assert.Contains(t, out, "1 ==> 3  #SUP:2 #CONF:1 #UTIL:20\n")
	assert.Contains(t, out, "1 ==> 2,3  #SUP:2 #CONF:1 #UTIL:30\n")
}

func TestScenarioLeftExpansion(t *testing.T) {
	input := "1:5 2:5 -1 3:5 -2\n1:5 2:5 -1 3:5 -2\n"
	out := runPipeline(t, input, params{
		minUtil: 20, minConfidence: 1.0, maxAntecedentSize: 2, maxConsequentSize: 1,
	})
	// 1 ==> 3 and 2 ==> 3 each reach utility 20, which meets minUtil, so they
	// are emitted alongside the left-expanded rule.
	assert.Equal(t, "1 ==> 3  #SUP:2 #CONF:1 #UTIL:20\n1,2 ==> 3  #SUP:2 #CONF:1 #UTIL:30\n2 ==> 3  #SUP:2 #CONF:1 #UTIL:20\n", out)
}

func TestScenarioConfidenceFilter(t *testing.T) {
	input := "1:10 -1 2:10 -2\n1:10 -1 2:10 -2\n1:10 -1 3:10 -2\n"
	out := runPipeline(t, input, params{
		minUtil: 1, minConfidence: 0.7, maxAntecedentSize: 1, maxConsequentSize: 1,
	})
	assert.Empty(t, out)
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func TestValidateParamsRejectsContractViolations(t *testing.T) {
	base := params{input: "in", output: "out", maxAntecedentSize: 1, maxConsequentSize: 1}

	assert.NoError(t, validateParams(base))

	missing := base
	missing.input = ""
	assert.Error(t, validateParams(missing))

	badConf := base
	badConf.minConfidence = 1.5
	assert.Error(t, validateParams(badConf))

	badAnt := base
	badAnt.maxAntecedentSize = 0
	assert.Error(t, validateParams(badAnt))

	badCons := base
	badCons.maxConsequentSize = 0
	assert.Error(t, validateParams(badCons))

	badSeq := base
	badSeq.maxSequenceCount = -1
	assert.Error(t, validateParams(badSeq))
}
