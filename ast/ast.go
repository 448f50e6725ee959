// Package ast defines the abstract syntax tree for the ontology
// transformation DSL.
package ast

import (
	"github.com/ontodsl/ontoc/token"
)

// Node is the interface implemented by all AST nodes.
type Node interface {
	Pos() token.Position
	End() token.Position
}

// Statement is the interface implemented by all statement nodes.
type Statement interface {
	Node
	statementNode()
}

// Expression is the interface implemented by all expression nodes.
type Expression interface {
	Node
	expressionNode()
	// Shape reports the best-effort value kind of the expression, computed
	// bottom-up from literal kinds. It drives the rendering of the
	// overloaded + operator.
	Shape() Shape
}

// Shape is a best-effort hint about the value kind an expression produces.
// It is not a type system: an identifier's shape is unknown until runtime,
// and generation defers to the target language in that case.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeNumber
	ShapeString
)

// Program is the root node: an ordered sequence of statements. Statement
// order equals the execution order of the generated queries.
type Program struct {
	Statements []Statement `json:"statements"`
}

// -----------------------------------------------------------------------------
// Statements

// ColumnMapping maps a raw CSV column to a node field.
type ColumnMapping struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// LoadStatement represents LOAD_CSV "path" AS alias [MAP_COLUMNS {...}].
type LoadStatement struct {
	Position token.Position  `json:"-"`
	Path     string          `json:"path"`
	Alias    string          `json:"alias"`
	Columns  []ColumnMapping `json:"columns,omitempty"`
}

func (s *LoadStatement) Pos() token.Position { return s.Position }
func (s *LoadStatement) End() token.Position { return s.Position }
func (s *LoadStatement) statementNode()      {}

// ValueMapping rewrites one literal field value to another.
type ValueMapping struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// FieldRule is the set of value rewrites for a single field.
type FieldRule struct {
	Field    string         `json:"field"`
	Mappings []ValueMapping `json:"mappings"`
}

// NormalizeStatement represents NORMALIZE alias { field: {"old": "new"} }.
type NormalizeStatement struct {
	Position token.Position `json:"-"`
	Alias    string         `json:"alias"`
	Rules    []FieldRule    `json:"rules"`
}

func (s *NormalizeStatement) Pos() token.Position { return s.Position }
func (s *NormalizeStatement) End() token.Position { return s.Position }
func (s *NormalizeStatement) statementNode()      {}

// AggFunc identifies an aggregation function.
type AggFunc string

const (
	AggSum   AggFunc = "sum"
	AggCount AggFunc = "count"
	AggFirst AggFunc = "first"
)

// AggregationClause is one AGG_SUM/TAKE_FIRST/AGG_COUNT(...) AS alias clause.
// Field is empty only for AGG_COUNT().
type AggregationClause struct {
	Func  AggFunc `json:"func"`
	Field string  `json:"field,omitempty"`
	Alias string  `json:"alias"`
}

// TimeWindow truncates a timestamp field to a coarser granularity used as
// part of the grouping key.
type TimeWindow struct {
	Mode   string `json:"mode"`
	Source string `json:"source"`
	Alias  string `json:"alias"`
}

// AggregateStatement represents AGGREGATE source BY [...] INTO target ...
type AggregateStatement struct {
	Position token.Position      `json:"-"`
	Source   string              `json:"source"`
	GroupBy  []string            `json:"group_by"`
	Target   string              `json:"target"`
	Clauses  []AggregationClause `json:"clauses"`
	Window   *TimeWindow         `json:"window,omitempty"`
}

func (s *AggregateStatement) Pos() token.Position { return s.Position }
func (s *AggregateStatement) End() token.Position { return s.Position }
func (s *AggregateStatement) statementNode()      {}

// UnitConvertStatement represents UNIT_CONVERT alias.field FROM a TO b USING "table".
type UnitConvertStatement struct {
	Position token.Position `json:"-"`
	Alias    string         `json:"alias"`
	Field    string         `json:"field"`
	FromUnit string         `json:"from_unit"`
	ToUnit   string         `json:"to_unit"`
	Table    string         `json:"table"`
}

func (s *UnitConvertStatement) Pos() token.Position { return s.Position }
func (s *UnitConvertStatement) End() token.Position { return s.Position }
func (s *UnitConvertStatement) statementNode()      {}

// OutputField is one field of an ENRICH output block.
type OutputField struct {
	Name string     `json:"name"`
	Expr Expression `json:"expr"`
}

// EnrichStatement represents ENRICH source WITH table MATCH ON key OUTPUT target AS {...}.
type EnrichStatement struct {
	Position    token.Position `json:"-"`
	Source      string         `json:"source"`
	FactorTable string         `json:"factor_table"`
	MatchKey    string         `json:"match_key"`
	Target      string         `json:"target"`
	Outputs     []OutputField  `json:"outputs"`
}

func (s *EnrichStatement) Pos() token.Position { return s.Position }
func (s *EnrichStatement) End() token.Position { return s.Position }
func (s *EnrichStatement) statementNode()      {}

// ComputeStatement represents COMPUTE result FOR source GROUP BY keys INTO target AS func(field).
type ComputeStatement struct {
	Position token.Position `json:"-"`
	Result   string         `json:"result"`
	Source   string         `json:"source"`
	GroupBy  []string       `json:"group_by"`
	Target   string         `json:"target"`
	Expr     Expression     `json:"expr"`
}

func (s *ComputeStatement) Pos() token.Position { return s.Position }
func (s *ComputeStatement) End() token.Position { return s.Position }
func (s *ComputeStatement) statementNode()      {}

// ValidateStatement represents VALIDATE alias WITH "rule". The rule name is
// an opaque label; no rule registry exists at compile time.
type ValidateStatement struct {
	Position token.Position `json:"-"`
	Alias    string         `json:"alias"`
	Rule     string         `json:"rule"`
}

func (s *ValidateStatement) Pos() token.Position { return s.Position }
func (s *ValidateStatement) End() token.Position { return s.Position }
func (s *ValidateStatement) statementNode()      {}

// CommentStatement is a no-op statement preserved from a source comment.
// It contributes no output block.
type CommentStatement struct {
	Position token.Position `json:"-"`
	Text     string         `json:"text"`
}

func (s *CommentStatement) Pos() token.Position { return s.Position }
func (s *CommentStatement) End() token.Position { return s.Position }
func (s *CommentStatement) statementNode()      {}

// -----------------------------------------------------------------------------
// Expressions

// Identifier is a plain or dotted reference (alias.field).
type Identifier struct {
	Position token.Position `json:"-"`
	Parts    []string       `json:"parts"`
}

func (e *Identifier) Pos() token.Position { return e.Position }
func (e *Identifier) End() token.Position { return e.Position }
func (e *Identifier) expressionNode()     {}
func (e *Identifier) Shape() Shape        { return ShapeUnknown }

// StringLiteral is a double-quoted string literal; Value excludes the quotes.
type StringLiteral struct {
	Position token.Position `json:"-"`
	Value    string         `json:"value"`
}

func (e *StringLiteral) Pos() token.Position { return e.Position }
func (e *StringLiteral) End() token.Position { return e.Position }
func (e *StringLiteral) expressionNode()     {}
func (e *StringLiteral) Shape() Shape        { return ShapeString }

// NumberLiteral is an unsigned integer or decimal literal. Text preserves
// the source spelling so generation is byte-stable.
type NumberLiteral struct {
	Position token.Position `json:"-"`
	Text     string         `json:"text"`
	Value    float64        `json:"value"`
}

func (e *NumberLiteral) Pos() token.Position { return e.Position }
func (e *NumberLiteral) End() token.Position { return e.Position }
func (e *NumberLiteral) expressionNode()     {}
func (e *NumberLiteral) Shape() Shape        { return ShapeNumber }

// BinaryExpr is a binary operation over +, -, * or /.
type BinaryExpr struct {
	Position token.Position `json:"-"`
	Left     Expression     `json:"left"`
	Op       token.Token    `json:"op"`
	Right    Expression     `json:"right"`
}

func (e *BinaryExpr) Pos() token.Position { return e.Position }
func (e *BinaryExpr) End() token.Position { return e.Right.End() }
func (e *BinaryExpr) expressionNode()     {}

// Shape propagates operand shapes bottom-up. A + over at least one string
// operand is concatenation; over two numbers it is arithmetic; anything
// involving an unknown identifier stays unknown and is deferred to the
// target language.
func (e *BinaryExpr) Shape() Shape {
	left, right := e.Left.Shape(), e.Right.Shape()
	if e.Op == token.PLUS && (left == ShapeString || right == ShapeString) {
		return ShapeString
	}
	if left == ShapeNumber && right == ShapeNumber {
		return ShapeNumber
	}
	return ShapeUnknown
}

// FunctionCall is an aggregation call with a single identifier argument,
// e.g. sum(value).
type FunctionCall struct {
	Position token.Position `json:"-"`
	Name     string         `json:"name"`
	Arg      string         `json:"arg"`
}

func (e *FunctionCall) Pos() token.Position { return e.Position }
func (e *FunctionCall) End() token.Position { return e.Position }
func (e *FunctionCall) expressionNode()     {}
func (e *FunctionCall) Shape() Shape        { return ShapeNumber }
