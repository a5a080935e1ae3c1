// Package ra rewrites a linearized relational-algebra expression by a
// single forward pass applying projection-cascade elimination, selection
// pushdown, theta-join projection splitting, and projection distribution
// over set operators.
package ra

import "fmt"

// TokenKind distinguishes the four token shapes an Expression is built
// from.
type TokenKind int

const (
	TokOperator TokenKind = iota
	TokOperand
	TokAttributeList
	TokCondition
)

// Operator identifies one relational-algebra operator by its glossary
// symbol.
type Operator string

const (
	Projection  Operator = "π"
	Selection   Operator = "σ"
	NaturalJoin Operator = "⋈"
	ThetaJoin   Operator = "⋈θ"
	Union       Operator = "∪"
	Intersect   Operator = "∩"
	Except      Operator = "−"
	Rename      Operator = "ρ"
)

// Token is one element of a linearized RA expression.
type Token struct {
	Kind      TokenKind
	Op        Operator // valid when Kind == TokOperator
	Operand   string   // table name, valid when Kind == TokOperand
	Attrs     string   // raw delimited attribute list, valid when Kind == TokAttributeList
	Condition string   // raw condition, valid when Kind == TokCondition
}

// Expression is the ordered token sequence representing one RA tree.
type Expression []Token

// ErrMalformedExpression marks an operator code this package does not
// recognize. The rewriter never aborts on it — the offending token is
// passed through unchanged and this error is only ever logged.
var ErrMalformedExpression = fmt.Errorf("malformed relational-algebra expression")

// Proj builds a π, AttributeList token pair.
func Proj(attrList string) []Token {
	return []Token{{Kind: TokOperator, Op: Projection}, {Kind: TokAttributeList, Attrs: attrList}}
}

// Sel builds a σ, Condition token pair.
func Sel(cond string) []Token {
	return []Token{{Kind: TokOperator, Op: Selection}, {Kind: TokCondition, Condition: cond}}
}

// ThetaJoinOn builds a ⋈θ, Condition token pair.
func ThetaJoinOn(cond string) []Token {
	return []Token{{Kind: TokOperator, Op: ThetaJoin}, {Kind: TokCondition, Condition: cond}}
}

// OperandTok builds a single operand token for table.
func OperandTok(table string) Token { return Token{Kind: TokOperand, Operand: table} }
