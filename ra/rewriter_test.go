package ra

import (
	"reflect"
	"testing"
)

func exprFromTokens(tokens ...[]Token) Expression {
	var out Expression
	for _, group := range tokens {
		out = append(out, group...)
	}
	return out
}

func TestRewriter_ProjectionCascade(t *testing.T) {
	// π[a;b] π[a;b;c] Table(R)
	input := exprFromTokens(
		Proj("a;b"),
		Proj("a;b;c"),
		[]Token{OperandTok("R")},
	)

	rw := NewRewriter(nil, MapSchemaCatalog{}, nil)
	got := rw.Rewrite(input)

	want := exprFromTokens(Proj("a;b"), []Token{OperandTok("R")})
	if !reflect.DeepEqual(got, want) {
		t.Errorf("cascade mismatch:\n got  %s\n want %s", got, want)
	}
}

func TestRewriter_SelectionPushdown(t *testing.T) {
	// π[a;b] σ[`a`>10] Table(R) where a,b in schema(R)
	input := exprFromTokens(
		Proj("a;b"),
		Sel("`a`>10"),
		[]Token{OperandTok("R")},
	)

	catalog := MapSchemaCatalog{"R": {"a", "b", "c"}}
	rw := NewRewriter(nil, catalog, nil)
	got := rw.Rewrite(input)

	want := exprFromTokens(Sel("`a`>10"), Proj("a;b"), []Token{OperandTok("R")})
	if !reflect.DeepEqual(got, want) {
		t.Errorf("pushdown mismatch:\n got  %s\n want %s", got, want)
	}
}

func TestRewriter_ThetaJoinSplit(t *testing.T) {
	// π[a;c] ⋈θ[`a`=`c`] Table(R) Table(S), R{a,b} S{c,d}
	input := exprFromTokens(
		Proj("a;c"),
		ThetaJoinOn("`a`=`c`"),
		[]Token{OperandTok("R"), OperandTok("S")},
	)

	catalog := MapSchemaCatalog{
		"R": {"a", "b"},
		"S": {"c", "d"},
	}
	rw := NewRewriter(nil, catalog, nil)
	got := rw.Rewrite(input)

	want := exprFromTokens(
		ThetaJoinOn("`a`=`c`"),
		Proj("a"),
		[]Token{OperandTok("R")},
		Proj("c"),
		[]Token{OperandTok("S")},
	)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("theta-join split mismatch:\n got  %s\n want %s", got, want)
	}
}

func TestRewriter_ThetaJoinAugmentWhenConditionEscapesProjection(t *testing.T) {
	// π[a] ⋈θ[`a`=`c`] Table(R) Table(S): join needs `c` which L doesn't
	// carry, so Rule 3b augments instead of splitting purely.
	input := exprFromTokens(
		Proj("a"),
		ThetaJoinOn("`a`=`c`"),
		[]Token{OperandTok("R"), OperandTok("S")},
	)
	catalog := MapSchemaCatalog{
		"R": {"a", "b"},
		"S": {"c", "d"},
	}
	rw := NewRewriter(nil, catalog, nil)
	got := rw.Rewrite(input)

	want := exprFromTokens(
		Proj("a"),
		ThetaJoinOn("`a`=`c`"),
		Proj("a"),
		[]Token{OperandTok("R")},
		Proj("c"),
		[]Token{OperandTok("S")},
	)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("theta-join augment mismatch:\n got  %s\n want %s", got, want)
	}
}

func TestRewriter_DistributeOverUnion(t *testing.T) {
	input := exprFromTokens(
		Proj("a;b"),
		[]Token{{Kind: TokOperator, Op: Union}, OperandTok("R"), OperandTok("S")},
	)
	rw := NewRewriter(nil, MapSchemaCatalog{}, nil)
	got := rw.Rewrite(input)

	want := exprFromTokens(
		[]Token{{Kind: TokOperator, Op: Union}},
		Proj("a;b"),
		[]Token{OperandTok("R")},
		Proj("a;b"),
		[]Token{OperandTok("S")},
	)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("union distribution mismatch:\n got  %s\n want %s", got, want)
	}
}

func TestRewriter_Idempotent(t *testing.T) {
	cases := []Expression{
		exprFromTokens(Proj("a;b"), Proj("a;b;c"), []Token{OperandTok("R")}),
		exprFromTokens(Proj("a;b"), Sel("`a`>10"), []Token{OperandTok("R")}),
		exprFromTokens(Proj("a;c"), ThetaJoinOn("`a`=`c`"), []Token{OperandTok("R"), OperandTok("S")}),
	}
	catalog := MapSchemaCatalog{"R": {"a", "b"}, "S": {"c", "d"}}
	rw := NewRewriter(nil, catalog, nil)

	for _, in := range cases {
		once := rw.Rewrite(in)
		twice := rw.Rewrite(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("rewrite not idempotent for %s:\n once  %s\n twice %s", in, once, twice)
		}
	}
}

func TestRewriter_MalformedOperatorPassesThrough(t *testing.T) {
	input := Expression{{Kind: TokOperator, Op: Operator("?")}, OperandTok("R")}
	rw := NewRewriter(nil, MapSchemaCatalog{}, nil)
	got := rw.Rewrite(input)
	if !reflect.DeepEqual(got, input) {
		t.Errorf("expected malformed operator passed through unchanged, got %s", got)
	}
}
