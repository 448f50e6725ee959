package ontoc_test

import (
	"context"
	"strings"
	"testing"

	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontodsl/ontoc"
	"github.com/ontodsl/ontoc/parser"
)

const pipeline = `
# ingest raw meter readings
LOAD_CSV "level1.csv" AS measurement MAP_COLUMNS {
  factory -> factory_id,
  type -> fuel,
  amount -> value
}

NORMALIZE measurement { fuel: {"gass": "gas", "oli": "oil"} }

AGGREGATE measurement
  BY [factory_id, fuel]
  INTO activity
  AGG_SUM(value) AS value
  TAKE_FIRST(unit) AS unit
  TIME_WINDOW monthly FROM time INTO time_window

UNIT_CONVERT activity.value FROM unit TO "kwh" USING "conversion_table.csv"

ENRICH activity WITH emission_factor_table
  MATCH ON fuel
  OUTPUT emission AS {
    id: "em_" + activity.id,
    scope: emission_factor.scope,
    value: activity.value * emission_factor.factor
  }

COMPUTE total_emission FOR emission GROUP BY scope INTO ghg_report AS sum(value)

VALIDATE ghg_report WITH "total_equals_sum_of_emissions"`

func TestCompilePipeline(t *testing.T) {
	out, err := ontoc.CompileString(context.Background(), pipeline)
	require.NoError(t, err)

	blocks := strings.Split(out, "\n\n")
	require.Len(t, blocks, 7, "one block per statement, none for comments")

	headers := []string{
		"// LOAD_CSV: level1.csv AS measurement",
		"// NORMALIZE: measurement",
		"// AGGREGATE: measurement -> activity",
		"// UNIT_CONVERT: activity.value FROM unit TO kwh",
		"// ENRICH: activity WITH emission_factor_table",
		"// COMPUTE: total_emission FOR emission",
		"// VALIDATE: ghg_report WITH total_equals_sum_of_emissions",
	}
	for i, h := range headers {
		assert.True(t, strings.HasPrefix(blocks[i], h), "block %d should start with %q:\n%s", i, h, blocks[i])
	}

	// The factory convention survives end to end.
	assert.Contains(t, blocks[0], "MERGE (f:factory { id: row.factory })")
	assert.Contains(t, blocks[2], "MERGE (a)-[:AT_FACTORY]->(f);")
}

func TestCompileFailureProducesNoOutput(t *testing.T) {
	// ENRICH names an alias no earlier statement introduced.
	out, err := ontoc.CompileString(context.Background(), `
ENRICH activity WITH emission_factor_table
  MATCH ON fuel
  OUTPUT emission AS { scope: emission_factor.scope }`)

	require.Error(t, err)
	assert.Empty(t, out)

	var serr *parser.SemanticError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "activity", serr.Subject)
}

func TestCompileSyntaxErrorPosition(t *testing.T) {
	_, err := ontoc.CompileString(context.Background(), `LOAD_CSV measurement`)

	var perr *parser.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "STRING", perr.Expected)
	assert.Equal(t, 1, perr.Pos.Line)
}

func TestCompileWithLogger(t *testing.T) {
	var lines []string
	log := funcr.New(func(prefix, args string) {
		lines = append(lines, args)
	}, funcr.Options{Verbosity: 1})

	_, err := ontoc.CompileString(context.Background(), pipeline, ontoc.WithLogger(log))
	require.NoError(t, err)

	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "parsed program")
	assert.Contains(t, lines[1], "generated cypher")
}

func TestCompileReaderAndStringAgree(t *testing.T) {
	fromString, err := ontoc.CompileString(context.Background(), pipeline)
	require.NoError(t, err)
	fromReader, err := ontoc.Compile(context.Background(), strings.NewReader(pipeline))
	require.NoError(t, err)
	assert.Equal(t, fromString, fromReader)
}
