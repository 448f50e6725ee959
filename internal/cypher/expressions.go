package cypher

import (
	"fmt"
	"strings"

	"github.com/ontodsl/ontoc/ast"
)

// exprScope tells the expression renderer which node variables the
// surrounding MATCH bound, so dotted references resolve to the right side.
type exprScope struct {
	sourceAlias string // DSL alias of the matched source nodes
	sourceVar   string // Cypher variable bound to them
	factorAlias string // factor table name, empty outside ENRICH
	factorVar   string // Cypher variable bound to factor rows
	contextVar  string // variable prefixed onto bare function arguments
}

// expression renders an AST expression as Cypher text.
//
// The overloaded + needs no disambiguation here: Cypher itself overloads +
// for arithmetic and concatenation, so an operand whose shape is unknown at
// parse time is deferred to the engine by emitting + verbatim.
func (g *generator) expression(expr ast.Expression, scope exprScope) (string, error) {
	switch e := expr.(type) {
	case *ast.Identifier:
		return scope.identifier(e), nil
	case *ast.NumberLiteral:
		return e.Text, nil
	case *ast.StringLiteral:
		return quote(e.Value), nil
	case *ast.BinaryExpr:
		left, err := g.expression(e.Left, scope)
		if err != nil {
			return "", err
		}
		right, err := g.expression(e.Right, scope)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s %s)", left, e.Op, right), nil
	case *ast.FunctionCall:
		arg := e.Arg
		if scope.contextVar != "" && !strings.Contains(arg, ".") {
			arg = scope.contextVar + "." + arg
		}
		return fmt.Sprintf("%s(%s)", strings.ToUpper(e.Name), arg), nil
	default:
		return "", fmt.Errorf("%w: unknown expression type %T", ErrInvalidAST, expr)
	}
}

// identifier resolves a dotted reference to the matched node variable it
// names. The factor side also answers to the table name with a trailing
// "_table" stripped, the implicit factor-row alias of the DSL.
func (s exprScope) identifier(e *ast.Identifier) string {
	if len(e.Parts) != 2 {
		return strings.Join(e.Parts, ".")
	}
	prefix, field := e.Parts[0], e.Parts[1]
	switch {
	case prefix == s.sourceAlias && s.sourceVar != "":
		return s.sourceVar + "." + field
	case s.factorAlias != "" && (prefix == s.factorAlias || prefix == strings.TrimSuffix(s.factorAlias, "_table")):
		return s.factorVar + "." + field
	default:
		return prefix + "." + field
	}
}

// quote renders a Cypher single-quoted string literal.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", `\'`)
	return "'" + s + "'"
}
