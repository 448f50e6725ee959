package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `LOAD_CSV "level1.csv" AS measurement MAP_COLUMNS { factory -> factory_id }
`

func writeInput(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.dsl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestCompileToStdout(t *testing.T) {
	cmd := newRootCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{writeInput(t, sample)})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "LOAD CSV WITH HEADERS FROM \"file:///level1.csv\" AS row")
}

func TestCompileToFile(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.cypher")
	cmd := newRootCommand()
	cmd.SetArgs([]string{"-o", outPath, writeInput(t, sample)})

	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "MERGE (m)-[:AT_FACTORY]->(f);")
}

func TestMissingInputFile(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "nope.dsl")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.dsl")
}

func TestCompileErrorNamesInput(t *testing.T) {
	cmd := newRootCommand()
	path := writeInput(t, `NORMALIZE ghost { fuel: {"a": "b"} }`)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown alias \"ghost\"")
}
