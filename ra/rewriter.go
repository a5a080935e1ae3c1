package ra

import (
	"mantisDB/advanced/logging"
	"mantisDB/config"
)

// Rewriter applies the rule set of spec.md §4.5 in a single left-to-right
// pass over an Expression: projection cascade elimination, selection
// pushdown below a qualifying projection, theta-join projection
// splitting, and projection distribution over union/intersection.
//
// It is pure and total: malformed operator codes and schema-lookup
// failures are logged and the offending subtree is passed through
// unchanged — the rewriter never fails to return a valid expression.
type Rewriter struct {
	cfg     *config.RewriterConfig
	catalog SchemaCatalog
	logger  *logging.Logger
}

// NewRewriter builds a Rewriter against catalog, using cfg for the
// attribute delimiter/escape (defaults applied if cfg is nil).
func NewRewriter(cfg *config.RewriterConfig, catalog SchemaCatalog, logger *logging.Logger) *Rewriter {
	if cfg == nil {
		cfg = config.DefaultRewriterConfig()
	}
	if logger == nil {
		logger = logging.New("ra.rewriter", logging.INFO)
	}
	return &Rewriter{cfg: cfg, catalog: catalog, logger: logger}
}

func (r *Rewriter) delimiter() string { return r.cfg.AttributeDelimiter }
func (r *Rewriter) escape() string    { return r.cfg.AttributeEscape }

// Rewrite returns a rewritten copy of expr. expr is never modified.
func (r *Rewriter) Rewrite(expr Expression) Expression {
	var out Expression

	for i := 0; i < len(expr); {
		tok := expr[i]

		if tok.Kind != TokOperator {
			// Operand tokens reached without a preceding operator claiming
			// them (e.g. the root of the expression) are appended as-is.
			out = append(out, tok)
			i++
			continue
		}

		switch tok.Op {
		case Projection:
			out, i = r.rewriteProjection(expr, out, i)
		case Selection:
			out, i = r.rewriteSelection(expr, out, i)
		case ThetaJoin:
			out, i = r.rewriteThetaJoin(expr, out, i)
		case Union, Intersect:
			out, i = r.rewriteSetOp(expr, out, i, tok.Op)
		case NaturalJoin, Except, Rename:
			out = append(out, tok)
			i++
		default:
			r.logger.Debug(ErrMalformedExpression.Error(), map[string]interface{}{"operator": string(tok.Op)})
			out = append(out, tok)
			i++
		}
	}

	return out
}

// rewriteProjection implements Rule 2 (cascade elimination): a π whose
// attribute set is a superset of the immediately preceding, already
// emitted AttributeList is redundant and is dropped.
func (r *Rewriter) rewriteProjection(expr Expression, out Expression, i int) (Expression, int) {
	if i+1 >= len(expr) || expr[i+1].Kind != TokAttributeList {
		out = append(out, expr[i])
		return out, i + 1
	}
	attrList := expr[i+1].Attrs
	current := Tokenize(attrList, r.delimiter())

	if n := len(out); n > 0 && out[n-1].Kind == TokAttributeList {
		previous := Tokenize(out[n-1].Attrs, r.delimiter())
		if IsSubset(previous, current) {
			// The already-emitted, more restrictive projection subsumes this
			// one; skip emitting it (spec.md P6: at most one π for the subtree).
			return out, i + 2
		}
	}

	out = append(out, expr[i], expr[i+1])
	return out, i + 2
}

// rewriteSelection implements Rule 1 (pushdown): if the output's last
// two tokens are a π whose attribute list covers every attribute the
// condition references, the σ is spliced in ahead of that π instead of
// being appended after it.
func (r *Rewriter) rewriteSelection(expr Expression, out Expression, i int) (Expression, int) {
	if i+1 >= len(expr) || expr[i+1].Kind != TokCondition {
		out = append(out, expr[i])
		return out, i + 1
	}
	cond := expr[i+1].Condition
	condAttrs := ConditionAttrs(cond, r.escape())

	if n := len(out); n >= 2 && out[n-2].Kind == TokOperator && out[n-2].Op == Projection && out[n-1].Kind == TokAttributeList {
		projAttrs := Tokenize(out[n-1].Attrs, r.delimiter())
		if IsSubset(condAttrs, projAttrs) {
			spliced := make(Expression, 0, len(out)+2)
			spliced = append(spliced, out[:n-2]...)
			spliced = append(spliced, expr[i], expr[i+1])
			spliced = append(spliced, out[n-2:]...)
			return spliced, i + 2
		}
	}

	out = append(out, expr[i], expr[i+1])
	return out, i + 2
}

// rewriteThetaJoin implements Rule 3 (theta-join projection split). It
// only recognizes the flattened shape exercised by this package's
// callers — a join whose two operands are bare table operands directly
// following the condition token; a nested operand subtree falls back to
// the unsplit emission, since the rest of the pass would rewrite it
// independently anyway.
func (r *Rewriter) rewriteThetaJoin(expr Expression, out Expression, i int) (Expression, int) {
	if i+1 >= len(expr) || expr[i+1].Kind != TokCondition {
		out = append(out, expr[i])
		return out, i + 1
	}
	cond := expr[i+1].Condition

	n := len(out)
	hasOuterProj := n >= 2 && out[n-2].Kind == TokOperator && out[n-2].Op == Projection && out[n-1].Kind == TokAttributeList
	hasBareOperands := i+3 < len(expr) && expr[i+2].Kind == TokOperand && expr[i+3].Kind == TokOperand

	if !hasOuterProj || !hasBareOperands {
		out = append(out, expr[i], expr[i+1])
		return out, i + 2
	}

	leftTable, rightTable := expr[i+2].Operand, expr[i+3].Operand
	projAttrs := Tokenize(out[n-1].Attrs, r.delimiter())

	leftSchema, errL := r.catalog.SchemaAttrs(leftTable)
	rightSchema, errR := r.catalog.SchemaAttrs(rightTable)
	if errL != nil || errR != nil {
		// Schema lookup failed; fall back to the original subtree unchanged.
		r.logger.Debug("schema lookup failed, leaving theta-join unsplit", map[string]interface{}{"left": leftTable, "right": rightTable})
		out = append(out, expr[i], expr[i+1], expr[i+2], expr[i+3])
		return out, i + 4
	}

	condAttrs := ConditionAttrs(cond, r.escape())
	leftAttrs := FilterToSchema(projAttrs, leftSchema)
	rightAttrs := FilterToSchema(projAttrs, rightSchema)

	if IsSubset(condAttrs, projAttrs) {
		// Rule 3a: pure split; the outer projection is fully replaced.
		out = out[:n-2]
		out = append(out, expr[i], expr[i+1])
		out = append(out, Proj(Join(leftAttrs, r.delimiter()))...)
		out = append(out, OperandTok(leftTable))
		out = append(out, Proj(Join(rightAttrs, r.delimiter()))...)
		out = append(out, OperandTok(rightTable))
		return out, i + 4
	}

	// Rule 3b: augment each side with the join's own attributes and keep
	// the outer projection (already emitted, left untouched).
	leftAttrs = Dedup(append(leftAttrs, FilterToSchema(condAttrs, leftSchema)...))
	rightAttrs = Dedup(append(rightAttrs, FilterToSchema(condAttrs, rightSchema)...))
	out = append(out, expr[i], expr[i+1])
	out = append(out, Proj(Join(leftAttrs, r.delimiter()))...)
	out = append(out, OperandTok(leftTable))
	out = append(out, Proj(Join(rightAttrs, r.delimiter()))...)
	out = append(out, OperandTok(rightTable))
	return out, i + 4
}

// rewriteSetOp implements Rule 4 (distribution over ∪/∩): a single π, L
// sitting directly above the set operator is duplicated beneath each of
// its two operands instead of being retained once above both.
func (r *Rewriter) rewriteSetOp(expr Expression, out Expression, i int, kind Operator) (Expression, int) {
	n := len(out)
	hasOuterProj := n >= 2 && out[n-2].Kind == TokOperator && out[n-2].Op == Projection && out[n-1].Kind == TokAttributeList
	hasBareOperands := i+2 < len(expr) && expr[i+1].Kind == TokOperand && expr[i+2].Kind == TokOperand

	if !hasOuterProj || !hasBareOperands {
		out = append(out, expr[i])
		return out, i + 1
	}

	attrList := out[n-1].Attrs
	out = out[:n-2]
	out = append(out, Token{Kind: TokOperator, Op: kind})
	out = append(out, Proj(attrList)...)
	out = append(out, expr[i+1])
	out = append(out, Proj(attrList)...)
	out = append(out, expr[i+2])
	return out, i + 3
}
