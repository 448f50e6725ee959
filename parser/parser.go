// Package parser implements a recursive-descent parser for the ontology
// transformation DSL. Parsing is single-pass with one token of lookahead and
// stops at the first error; a program either parses completely or not at all.
package parser

import (
	"context"
	"fmt"
	"io"

	"github.com/ontodsl/ontoc/ast"
	"github.com/ontodsl/ontoc/lexer"
	"github.com/ontodsl/ontoc/symbol"
	"github.com/ontodsl/ontoc/token"
)

// Parser parses DSL statements.
type Parser struct {
	lexer   *lexer.Lexer
	current lexer.Item
	peek    lexer.Item

	symbols  *symbol.Table
	comments []lexer.Item
	stmt     int // index of the statement being parsed
	err      error
}

// New creates a new Parser from an io.Reader.
func New(r io.Reader) *Parser {
	p := &Parser{
		lexer:   lexer.New(r),
		symbols: symbol.NewTable(),
	}
	// Read two tokens to initialize current and peek
	p.nextToken()
	p.nextToken()
	return p
}

// Symbols returns the alias registry populated while parsing. It is
// read-only after ParseProgram returns.
func (p *Parser) Symbols() *symbol.Table {
	return p.symbols
}

func (p *Parser) nextToken() {
	p.current = p.peek
	for {
		p.peek = p.lexer.NextToken()
		if p.peek.Token == token.COMMENT {
			p.comments = append(p.comments, p.peek)
			continue
		}
		if p.peek.Token == token.ILLEGAL {
			p.setErr(&lexer.Error{Pos: p.peek.Pos, Text: p.peek.Value})
			p.peek.Token = token.EOF
		}
		break
	}
}

func (p *Parser) currentIs(t token.Token) bool {
	return p.current.Token == t
}

func (p *Parser) peekIs(t token.Token) bool {
	return p.peek.Token == t
}

// setErr records the first error; later ones are discarded.
func (p *Parser) setErr(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *Parser) expect(t token.Token) lexer.Item {
	item := p.current
	if !p.currentIs(t) {
		p.setErr(&ParseError{
			Pos:      p.current.Pos,
			Expected: t.String(),
			Found:    p.current.Token.String(),
		})
		return item
	}
	p.nextToken()
	return item
}

// Parse parses a complete DSL program from the input.
func Parse(ctx context.Context, r io.Reader) (*ast.Program, error) {
	return New(r).ParseProgram(ctx)
}

// ParseProgram consumes the whole token stream and returns the program, or
// the first lexical, syntax, or semantic error encountered.
func (p *Parser) ParseProgram(ctx context.Context) (*ast.Program, error) {
	program := &ast.Program{}

	for !p.currentIs(token.EOF) && p.err == nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		program.Statements = append(program.Statements, p.drainComments()...)

		p.stmt = len(program.Statements)
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
	}
	program.Statements = append(program.Statements, p.drainComments()...)

	if p.err != nil {
		return nil, p.err
	}
	return program, nil
}

// drainComments converts comments collected by the lexer into no-op
// statements so that program spelling survives into the AST.
func (p *Parser) drainComments() []ast.Statement {
	var stmts []ast.Statement
	for _, c := range p.comments {
		stmts = append(stmts, &ast.CommentStatement{Position: c.Pos, Text: c.Value})
	}
	p.comments = nil
	return stmts
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.current.Token {
	case token.LOAD_CSV:
		return p.parseLoad()
	case token.NORMALIZE:
		return p.parseNormalize()
	case token.AGGREGATE:
		return p.parseAggregate()
	case token.UNIT_CONVERT:
		return p.parseUnitConvert()
	case token.ENRICH:
		return p.parseEnrich()
	case token.COMPUTE:
		return p.parseCompute()
	case token.VALIDATE:
		return p.parseValidate()
	default:
		p.setErr(&ParseError{
			Pos:      p.current.Pos,
			Expected: "statement keyword",
			Found:    p.current.Token.String(),
		})
		return nil
	}
}

// parseLoad parses LOAD_CSV "path" AS alias [MAP_COLUMNS { src -> dst, ... }].
func (p *Parser) parseLoad() ast.Statement {
	stmt := &ast.LoadStatement{Position: p.current.Pos}
	p.expect(token.LOAD_CSV)
	stmt.Path = p.expect(token.STRING).Value
	p.expect(token.AS)
	stmt.Alias = p.expect(token.IDENT).Value

	if p.currentIs(token.MAP_COLUMNS) {
		p.nextToken()
		p.expect(token.LBRACE)
		for !p.currentIs(token.RBRACE) && !p.currentIs(token.EOF) && p.err == nil {
			src := p.expect(token.IDENT).Value
			p.expect(token.ARROW)
			dst := p.expect(token.IDENT).Value
			stmt.Columns = append(stmt.Columns, ast.ColumnMapping{Source: src, Target: dst})
			if p.currentIs(token.COMMA) {
				p.nextToken()
			}
		}
		p.expect(token.RBRACE)
	}

	entry := p.register(stmt.Alias, symbol.KindLoad, stmt.Position)
	if entry != nil {
		for _, c := range stmt.Columns {
			entry.AddField(c.Target)
		}
	}
	return stmt
}

// parseNormalize parses NORMALIZE alias { field: {"old": "new", ...}, ... }.
func (p *Parser) parseNormalize() ast.Statement {
	stmt := &ast.NormalizeStatement{Position: p.current.Pos}
	p.expect(token.NORMALIZE)
	aliasItem := p.expect(token.IDENT)
	stmt.Alias = aliasItem.Value
	entry := p.resolve(stmt.Alias, aliasItem.Pos)

	p.expect(token.LBRACE)
	for !p.currentIs(token.RBRACE) && !p.currentIs(token.EOF) && p.err == nil {
		rule := ast.FieldRule{Field: p.expect(token.IDENT).Value}
		p.expect(token.COLON)
		p.expect(token.LBRACE)
		for !p.currentIs(token.RBRACE) && !p.currentIs(token.EOF) && p.err == nil {
			old := p.valueLiteral()
			p.expect(token.COLON)
			rule.Mappings = append(rule.Mappings, ast.ValueMapping{Old: old, New: p.valueLiteral()})
			if p.currentIs(token.COMMA) {
				p.nextToken()
			}
		}
		p.expect(token.RBRACE)

		if len(rule.Mappings) == 0 {
			p.semanticErr(stmt.Position, rule.Field, "empty value mapping for field %q in NORMALIZE %s", rule.Field, stmt.Alias)
		}
		if entry != nil {
			entry.AddField(rule.Field)
		}
		stmt.Rules = append(stmt.Rules, rule)

		if p.currentIs(token.COMMA) {
			p.nextToken()
		}
	}
	p.expect(token.RBRACE)

	if len(stmt.Rules) == 0 {
		p.semanticErr(stmt.Position, stmt.Alias, "NORMALIZE %s has no field blocks", stmt.Alias)
	}
	return stmt
}

// parseAggregate parses AGGREGATE source BY [keys] INTO target clause+
// [TIME_WINDOW mode FROM field INTO alias].
func (p *Parser) parseAggregate() ast.Statement {
	stmt := &ast.AggregateStatement{Position: p.current.Pos}
	p.expect(token.AGGREGATE)
	sourceItem := p.expect(token.IDENT)
	stmt.Source = sourceItem.Value
	source := p.resolve(stmt.Source, sourceItem.Pos)

	p.expect(token.BY)
	stmt.GroupBy = p.identList()
	if len(stmt.GroupBy) == 0 {
		p.semanticErr(stmt.Position, stmt.Source, "AGGREGATE %s has an empty grouping key list", stmt.Source)
	}

	p.expect(token.INTO)
	stmt.Target = p.expect(token.IDENT).Value

	for p.err == nil {
		var clause ast.AggregationClause
		switch p.current.Token {
		case token.AGG_SUM:
			clause.Func = ast.AggSum
		case token.TAKE_FIRST:
			clause.Func = ast.AggFirst
		case token.AGG_COUNT:
			clause.Func = ast.AggCount
		default:
			clause.Func = ""
		}
		if clause.Func == "" {
			break
		}
		p.nextToken()
		p.expect(token.LPAREN)
		if p.currentIs(token.IDENT) {
			clause.Field = p.expect(token.IDENT).Value
		} else if clause.Func != ast.AggCount {
			// The field argument is optional only for AGG_COUNT.
			p.expect(token.IDENT)
		}
		p.expect(token.RPAREN)
		p.expect(token.AS)
		clause.Alias = p.expect(token.IDENT).Value
		stmt.Clauses = append(stmt.Clauses, clause)
	}
	if len(stmt.Clauses) == 0 && p.err == nil {
		p.semanticErr(stmt.Position, stmt.Source, "AGGREGATE %s has no aggregation clauses", stmt.Source)
	}

	if p.currentIs(token.TIME_WINDOW) {
		p.nextToken()
		w := &ast.TimeWindow{Mode: p.expect(token.IDENT).Value}
		p.expect(token.FROM)
		w.Source = p.expect(token.IDENT).Value
		p.expect(token.INTO)
		w.Alias = p.expect(token.IDENT).Value
		stmt.Window = w
	}

	if source != nil {
		for _, key := range stmt.GroupBy {
			source.AddField(key)
		}
		for _, c := range stmt.Clauses {
			source.AddField(c.Field)
		}
		if stmt.Window != nil {
			source.AddField(stmt.Window.Source)
		}
	}
	if target := p.register(stmt.Target, symbol.KindAggregate, stmt.Position); target != nil {
		for _, key := range stmt.GroupBy {
			target.AddField(key)
		}
		for _, c := range stmt.Clauses {
			target.AddField(c.Alias)
		}
		if stmt.Window != nil {
			target.AddField(stmt.Window.Alias)
		}
	}
	return stmt
}

// parseUnitConvert parses UNIT_CONVERT alias.field FROM a TO b USING "table".
func (p *Parser) parseUnitConvert() ast.Statement {
	stmt := &ast.UnitConvertStatement{Position: p.current.Pos}
	p.expect(token.UNIT_CONVERT)
	aliasItem := p.expect(token.IDENT)
	stmt.Alias = aliasItem.Value
	entry := p.resolve(stmt.Alias, aliasItem.Pos)
	p.expect(token.DOT)
	stmt.Field = p.expect(token.IDENT).Value
	p.expect(token.FROM)
	stmt.FromUnit = p.valueLiteral()
	p.expect(token.TO)
	stmt.ToUnit = p.valueLiteral()
	p.expect(token.USING)
	stmt.Table = p.expect(token.STRING).Value

	if entry != nil {
		entry.AddField(stmt.Field)
	}
	return stmt
}

// parseEnrich parses ENRICH source WITH table MATCH ON key OUTPUT target AS { field: expr, ... }.
// The factor table is an implicitly known external reference table and does
// not need to be registered by an earlier statement.
func (p *Parser) parseEnrich() ast.Statement {
	stmt := &ast.EnrichStatement{Position: p.current.Pos}
	p.expect(token.ENRICH)
	sourceItem := p.expect(token.IDENT)
	stmt.Source = sourceItem.Value
	source := p.resolve(stmt.Source, sourceItem.Pos)
	p.expect(token.WITH)
	stmt.FactorTable = p.valueLiteral()
	p.expect(token.MATCH)
	p.expect(token.ON)
	stmt.MatchKey = p.expect(token.IDENT).Value
	p.expect(token.OUTPUT)
	stmt.Target = p.expect(token.IDENT).Value
	p.expect(token.AS)

	p.expect(token.LBRACE)
	for !p.currentIs(token.RBRACE) && !p.currentIs(token.EOF) && p.err == nil {
		name := p.expect(token.IDENT).Value
		p.expect(token.COLON)
		expr := p.parseExpression(LOWEST, 0)
		stmt.Outputs = append(stmt.Outputs, ast.OutputField{Name: name, Expr: expr})
		if p.currentIs(token.COMMA) {
			p.nextToken()
		}
	}
	p.expect(token.RBRACE)

	if len(stmt.Outputs) == 0 && p.err == nil {
		p.semanticErr(stmt.Position, stmt.Target, "ENRICH output block for %s is empty", stmt.Target)
	}

	if source != nil {
		source.AddField(stmt.MatchKey)
		for _, out := range stmt.Outputs {
			recordFieldRefs(source, stmt.Source, out.Expr)
		}
	}
	if target := p.register(stmt.Target, symbol.KindEnrich, stmt.Position); target != nil {
		for _, out := range stmt.Outputs {
			target.AddField(out.Name)
		}
	}
	return stmt
}

// parseCompute parses COMPUTE result FOR source GROUP BY keys INTO target AS func(field).
func (p *Parser) parseCompute() ast.Statement {
	stmt := &ast.ComputeStatement{Position: p.current.Pos}
	p.expect(token.COMPUTE)
	stmt.Result = p.expect(token.IDENT).Value
	p.expect(token.FOR)
	sourceItem := p.expect(token.IDENT)
	stmt.Source = sourceItem.Value
	source := p.resolve(stmt.Source, sourceItem.Pos)
	p.expect(token.GROUP)
	p.expect(token.BY)

	if p.currentIs(token.LBRACKET) {
		stmt.GroupBy = p.identList()
	} else {
		stmt.GroupBy = []string{p.expect(token.IDENT).Value}
	}
	if len(stmt.GroupBy) == 0 {
		p.semanticErr(stmt.Position, stmt.Source, "COMPUTE %s has an empty grouping key list", stmt.Result)
	}

	p.expect(token.INTO)
	stmt.Target = p.expect(token.IDENT).Value
	p.expect(token.AS)

	exprPos := p.current.Pos
	stmt.Expr = p.parseExpression(LOWEST, 0)
	if p.err == nil {
		call, ok := stmt.Expr.(*ast.FunctionCall)
		if !ok {
			p.setErr(&ParseError{Pos: exprPos, Expected: "aggregation function call", Found: "expression"})
		} else if !supportedAggFuncs[call.Name] {
			p.semanticErr(call.Position, call.Name, "unsupported aggregation function %q", call.Name)
		}
	}

	if source != nil {
		for _, key := range stmt.GroupBy {
			source.AddField(key)
		}
		if call, ok := stmt.Expr.(*ast.FunctionCall); ok {
			source.AddField(call.Arg)
		}
	}
	if target := p.register(stmt.Target, symbol.KindCompute, stmt.Position); target != nil {
		for _, key := range stmt.GroupBy {
			target.AddField(key)
		}
		target.AddField(stmt.Result)
	}
	return stmt
}

// parseValidate parses VALIDATE alias WITH "rule". The rule name is opaque:
// no rule registry exists at compile time, so it is recorded verbatim.
func (p *Parser) parseValidate() ast.Statement {
	stmt := &ast.ValidateStatement{Position: p.current.Pos}
	p.expect(token.VALIDATE)
	aliasItem := p.expect(token.IDENT)
	stmt.Alias = aliasItem.Value
	p.resolve(stmt.Alias, aliasItem.Pos)
	p.expect(token.WITH)
	stmt.Rule = p.expect(token.STRING).Value
	return stmt
}

// supportedAggFuncs is the closed set of functions accepted in a COMPUTE
// value expression. Names are lowercase in the DSL and uppercased during
// generation.
var supportedAggFuncs = map[string]bool{
	"sum":   true,
	"count": true,
	"avg":   true,
	"min":   true,
	"max":   true,
}

// identList parses a bracketed, comma-separated identifier list.
func (p *Parser) identList() []string {
	var idents []string
	p.expect(token.LBRACKET)
	for !p.currentIs(token.RBRACKET) && !p.currentIs(token.EOF) && p.err == nil {
		idents = append(idents, p.expect(token.IDENT).Value)
		if p.currentIs(token.COMMA) {
			p.nextToken()
		}
	}
	p.expect(token.RBRACKET)
	return idents
}

// valueLiteral accepts a bare identifier or a quoted string, used where the
// grammar takes literal values (units, normalization values, table names).
func (p *Parser) valueLiteral() string {
	switch p.current.Token {
	case token.IDENT, token.STRING, token.NUMBER:
		v := p.current.Value
		p.nextToken()
		return v
	default:
		p.setErr(&ParseError{
			Pos:      p.current.Pos,
			Expected: "identifier or string",
			Found:    p.current.Token.String(),
		})
		return ""
	}
}

// resolve looks up an alias that must have been introduced by an earlier
// statement, recording a SemanticError naming the alias if it was not.
func (p *Parser) resolve(alias string, pos token.Position) *symbol.Entry {
	entry, ok := p.symbols.Resolve(alias)
	if !ok {
		p.semanticErr(pos, alias, "unknown alias %q: not introduced by any earlier statement", alias)
		return nil
	}
	return entry
}

func (p *Parser) register(alias string, kind symbol.Kind, pos token.Position) *symbol.Entry {
	entry, err := p.symbols.Register(alias, kind, p.stmt)
	if err != nil {
		p.semanticErr(pos, alias, "%s", err.Error())
		return nil
	}
	return entry
}

func (p *Parser) semanticErr(pos token.Position, subject, format string, args ...any) {
	p.setErr(&SemanticError{
		Pos:     pos,
		Subject: subject,
		Msg:     fmt.Sprintf(format, args...),
	})
}

// recordFieldRefs walks an expression and records dotted references to the
// given alias as known fields on its entry. Best-effort bookkeeping only.
func recordFieldRefs(entry *symbol.Entry, alias string, expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.Identifier:
		if len(e.Parts) == 2 && e.Parts[0] == alias {
			entry.AddField(e.Parts[1])
		}
	case *ast.BinaryExpr:
		recordFieldRefs(entry, alias, e.Left)
		recordFieldRefs(entry, alias, e.Right)
	}
}
