// Package token defines constants representing the lexical tokens of the
// ontology transformation DSL.
package token

// Token represents a lexical token.
type Token int

const (
	// Special tokens
	ILLEGAL Token = iota
	EOF
	COMMENT

	// Literals
	IDENT  // identifiers
	NUMBER // integer or decimal literals
	STRING // double-quoted string literals

	// Operators
	PLUS     // +
	MINUS    // -
	ASTERISK // *
	SLASH    // /
	ARROW    // ->

	// Delimiters
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	LBRACE   // {
	RBRACE   // }
	COMMA    // ,
	COLON    // :
	DOT      // .

	// Keywords
	keyword_beg
	LOAD_CSV
	MAP_COLUMNS
	NORMALIZE
	AGGREGATE
	BY
	INTO
	AGG_SUM
	TAKE_FIRST
	AGG_COUNT
	TIME_WINDOW
	FROM
	UNIT_CONVERT
	TO
	USING
	ENRICH
	WITH
	MATCH
	ON
	OUTPUT
	AS
	COMPUTE
	FOR
	GROUP
	VALIDATE
	keyword_end
)

var tokens = [...]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",
	COMMENT: "COMMENT",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",

	PLUS:     "+",
	MINUS:    "-",
	ASTERISK: "*",
	SLASH:    "/",
	ARROW:    "->",

	LPAREN:   "(",
	RPAREN:   ")",
	LBRACKET: "[",
	RBRACKET: "]",
	LBRACE:   "{",
	RBRACE:   "}",
	COMMA:    ",",
	COLON:    ":",
	DOT:      ".",

	LOAD_CSV:     "LOAD_CSV",
	MAP_COLUMNS:  "MAP_COLUMNS",
	NORMALIZE:    "NORMALIZE",
	AGGREGATE:    "AGGREGATE",
	BY:           "BY",
	INTO:         "INTO",
	AGG_SUM:      "AGG_SUM",
	TAKE_FIRST:   "TAKE_FIRST",
	AGG_COUNT:    "AGG_COUNT",
	TIME_WINDOW:  "TIME_WINDOW",
	FROM:         "FROM",
	UNIT_CONVERT: "UNIT_CONVERT",
	TO:           "TO",
	USING:        "USING",
	ENRICH:       "ENRICH",
	WITH:         "WITH",
	MATCH:        "MATCH",
	ON:           "ON",
	OUTPUT:       "OUTPUT",
	AS:           "AS",
	COMPUTE:      "COMPUTE",
	FOR:          "FOR",
	GROUP:        "GROUP",
	VALIDATE:     "VALIDATE",
}

func (tok Token) String() string {
	if tok >= 0 && int(tok) < len(tokens) {
		return tokens[tok]
	}
	return ""
}

// Keywords maps keyword strings to their token types.
var Keywords map[string]Token

func init() {
	Keywords = make(map[string]Token)
	for i := keyword_beg + 1; i < keyword_end; i++ {
		Keywords[tokens[i]] = i
	}
}

// Lookup returns the token type for an identifier string.
// Keywords are case-sensitive: AGGREGATE is a keyword, aggregate is an
// identifier.
func Lookup(ident string) Token {
	if tok, ok := Keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token is a keyword.
func (tok Token) IsKeyword() bool {
	return tok > keyword_beg && tok < keyword_end
}

// Position represents a source position.
type Position struct {
	Offset int // byte offset
	Line   int // line number (1-based)
	Column int // column number (1-based)
}
