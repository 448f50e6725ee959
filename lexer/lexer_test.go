package lexer_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/ontodsl/ontoc/lexer"
	"github.com/ontodsl/ontoc/token"
)

func tokenize(t *testing.T, input string) []lexer.Item {
	t.Helper()
	items, err := lexer.Tokenize(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Tokenize(%q) error: %v", input, err)
	}
	return items
}

func TestTokenStream(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		tokens []token.Token
		values []string
	}{
		{
			name:   "load statement",
			input:  `LOAD_CSV "level1.csv" AS measurement`,
			tokens: []token.Token{token.LOAD_CSV, token.STRING, token.AS, token.IDENT, token.EOF},
			values: []string{"LOAD_CSV", "level1.csv", "AS", "measurement", ""},
		},
		{
			name:   "column map arrow",
			input:  `{ factory -> factory_id }`,
			tokens: []token.Token{token.LBRACE, token.IDENT, token.ARROW, token.IDENT, token.RBRACE, token.EOF},
			values: []string{"{", "factory", "->", "factory_id", "}", ""},
		},
		{
			name:   "arrow without surrounding spaces",
			input:  `factory->factory_id`,
			tokens: []token.Token{token.IDENT, token.ARROW, token.IDENT, token.EOF},
			values: []string{"factory", "->", "factory_id", ""},
		},
		{
			name:   "hyphenated identifier",
			input:  `emission-factors`,
			tokens: []token.Token{token.IDENT, token.EOF},
			values: []string{"emission-factors", ""},
		},
		{
			name:   "keywords are case sensitive",
			input:  `AGGREGATE aggregate`,
			tokens: []token.Token{token.AGGREGATE, token.IDENT, token.EOF},
			values: []string{"AGGREGATE", "aggregate", ""},
		},
		{
			name:   "numbers",
			input:  `42 3.14`,
			tokens: []token.Token{token.NUMBER, token.NUMBER, token.EOF},
			values: []string{"42", "3.14", ""},
		},
		{
			name:   "operators and punctuation",
			input:  `( ) [ ] : , . + - * /`,
			tokens: []token.Token{token.LPAREN, token.RPAREN, token.LBRACKET, token.RBRACKET, token.COLON, token.COMMA, token.DOT, token.PLUS, token.MINUS, token.ASTERISK, token.SLASH, token.EOF},
			values: []string{"(", ")", "[", "]", ":", ",", ".", "+", "-", "*", "/", ""},
		},
		{
			name:   "string escapes",
			input:  `"a\"b\\c\nd"`,
			tokens: []token.Token{token.STRING, token.EOF},
			values: []string{"a\"b\\c\nd", ""},
		},
		{
			name:   "line comment",
			input:  "# load the raw data\nNORMALIZE",
			tokens: []token.Token{token.COMMENT, token.NORMALIZE, token.EOF},
			values: []string{"# load the raw data", "NORMALIZE", ""},
		},
		{
			name:   "dotted identifier",
			input:  `activity.value`,
			tokens: []token.Token{token.IDENT, token.DOT, token.IDENT, token.EOF},
			values: []string{"activity", ".", "value", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := tokenize(t, tt.input)
			if len(items) != len(tt.tokens) {
				t.Fatalf("got %d tokens, want %d: %v", len(items), len(tt.tokens), items)
			}
			for i, item := range items {
				if item.Token != tt.tokens[i] {
					t.Errorf("token %d: got %s, want %s", i, item.Token, tt.tokens[i])
				}
				if item.Value != tt.values[i] {
					t.Errorf("token %d: got value %q, want %q", i, item.Value, tt.values[i])
				}
			}
		})
	}
}

func TestPositions(t *testing.T) {
	items := tokenize(t, "LOAD_CSV \"x.csv\" AS m\nNORMALIZE m")

	if got := items[0].Pos; got.Line != 1 || got.Column != 1 {
		t.Errorf("first token at line %d, column %d, want 1:1", got.Line, got.Column)
	}
	// NORMALIZE starts the second line
	var norm lexer.Item
	for _, item := range items {
		if item.Token == token.NORMALIZE {
			norm = item
		}
	}
	if norm.Pos.Line != 2 || norm.Pos.Column != 1 {
		t.Errorf("NORMALIZE at line %d, column %d, want 2:1", norm.Pos.Line, norm.Pos.Column)
	}
}

func TestUnrecognizedInput(t *testing.T) {
	_, err := lexer.Tokenize(strings.NewReader("LOAD_CSV %"))
	if err == nil {
		t.Fatal("expected error for unrecognized character")
	}
	var lexErr *lexer.Error
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected *lexer.Error, got %T: %v", err, err)
	}
	if lexErr.Text != "%" {
		t.Errorf("offending text %q, want %%", lexErr.Text)
	}
	if lexErr.Pos.Line != 1 || lexErr.Pos.Column != 10 {
		t.Errorf("error at line %d, column %d, want 1:10", lexErr.Pos.Line, lexErr.Pos.Column)
	}
}
