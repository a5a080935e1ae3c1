package ra

import "strings"

// String renders expr back into the bracketed surface syntax used by
// spec scenarios and test fixtures, e.g. "π[a;b] Table(R)".
func (expr Expression) String() string {
	var b strings.Builder
	for i, tok := range expr {
		// An attribute list or condition is written directly after its
		// operator, with no separating space.
		if i > 0 && tok.Kind != TokAttributeList && tok.Kind != TokCondition {
			b.WriteByte(' ')
		}
		switch tok.Kind {
		case TokOperator:
			b.WriteString(string(tok.Op))
		case TokOperand:
			b.WriteString("Table(")
			b.WriteString(tok.Operand)
			b.WriteByte(')')
		case TokAttributeList:
			b.WriteByte('[')
			b.WriteString(tok.Attrs)
			b.WriteByte(']')
		case TokCondition:
			b.WriteByte('[')
			b.WriteString(tok.Condition)
			b.WriteByte(']')
		}
	}
	return b.String()
}
