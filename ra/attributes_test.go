package ra

import "testing"

func TestTokenizeAndJoinRoundTrip(t *testing.T) {
	xs := []string{"a", "b", "c"}
	joined := Join(Dedup(xs), ";")
	got := Dedup(Tokenize(joined, ";"))

	want := Dedup(xs)
	if len(got) != len(want) {
		t.Fatalf("round-trip length mismatch: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("round-trip mismatch at %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestIsSubset(t *testing.T) {
	if !IsSubset([]string{"a", "b"}, []string{"a", "b", "c"}) {
		t.Error("expected {a,b} subset of {a,b,c}")
	}
	if IsSubset([]string{"a", "d"}, []string{"a", "b", "c"}) {
		t.Error("expected {a,d} not subset of {a,b,c}")
	}
}

func TestSetEqual(t *testing.T) {
	if !SetEqual([]string{"a", "b"}, []string{"b", "a"}) {
		t.Error("expected {a,b} and {b,a} to be set-equal regardless of order")
	}
	if SetEqual([]string{"a", "b"}, []string{"a"}) {
		t.Error("expected {a,b} and {a} not set-equal")
	}
}

func TestConditionAttrs(t *testing.T) {
	got := ConditionAttrs("`a`=`c`", "`")
	want := []string{"a", "c"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestFilterToSchema(t *testing.T) {
	got := FilterToSchema([]string{"a", "c", "z"}, []string{"a", "b", "c"})
	want := []string{"a", "c"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDedupPreservesFirstOccurrenceOrder(t *testing.T) {
	got := Dedup([]string{"b", "a", "b", "c", "a"})
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("at %d expected %q got %q", i, want[i], got[i])
		}
	}
}
