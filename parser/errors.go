package parser

import (
	"fmt"

	"github.com/ontodsl/ontoc/token"
)

// ParseError reports a grammar violation: the token kind(s) the parser
// expected, the token it actually found, and where.
type ParseError struct {
	Pos      token.Position
	Expected string
	Found    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("expected %s, got %s at line %d, column %d",
		e.Expected, e.Found, e.Pos.Line, e.Pos.Column)
}

// SemanticError reports a cross-statement violation: a reference to an alias
// no earlier statement introduced, an unsupported aggregation function, or an
// empty required list. Subject names the offending alias or function.
type SemanticError struct {
	Pos     token.Position
	Subject string
	Msg     string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("%s at line %d, column %d", e.Msg, e.Pos.Line, e.Pos.Column)
}
