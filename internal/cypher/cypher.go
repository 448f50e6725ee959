// Package cypher generates Cypher statement blocks from a parsed DSL
// program. One block is emitted per statement in program order; block order
// is the execution order contract for the downstream query engine.
package cypher

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ontodsl/ontoc/ast"
	"github.com/ontodsl/ontoc/symbol"
)

// ErrInvalidAST marks generation failures caused by a malformed AST. A
// conforming parser never produces such a tree, so this is an internal
// error, not a user-facing compile error.
var ErrInvalidAST = errors.New("invalid AST")

// Generate emits the Cypher text for a well-formed program. The symbol table
// is the registry populated during parsing and is only read here; it supplies
// the known field set for LOAD_CSV statements without an explicit column map.
func Generate(program *ast.Program, symbols *symbol.Table) (string, error) {
	g := &generator{symbols: symbols}

	var blocks []string
	for _, stmt := range program.Statements {
		block, err := g.statement(stmt)
		if err != nil {
			return "", err
		}
		if block != "" {
			blocks = append(blocks, block)
		}
	}

	return strings.Join(blocks, "\n\n"), nil
}

type generator struct {
	symbols *symbol.Table
}

func (g *generator) statement(stmt ast.Statement) (string, error) {
	switch s := stmt.(type) {
	case *ast.LoadStatement:
		return g.load(s)
	case *ast.NormalizeStatement:
		return g.normalize(s)
	case *ast.AggregateStatement:
		return g.aggregate(s)
	case *ast.UnitConvertStatement:
		return g.unitConvert(s)
	case *ast.EnrichStatement:
		return g.enrich(s)
	case *ast.ComputeStatement:
		return g.compute(s)
	case *ast.ValidateStatement:
		return g.validate(s)
	case *ast.CommentStatement:
		// Comments contribute no output block.
		return "", nil
	default:
		return "", fmt.Errorf("%w: unknown statement type %T", ErrInvalidAST, stmt)
	}
}
