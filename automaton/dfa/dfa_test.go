package dfa

import (
	"errors"
	"testing"

	"github.com/regexray/regexray/automaton/nfa"
	"github.com/regexray/regexray/parser"
)

func mustDFA(t *testing.T, source string, det DetAlgorithm) *DFA {
	t.Helper()
	res, err := parser.Parse(source, parser.DefaultConfig())
	if err != nil {
		t.Fatalf("parse(%q): %v", source, err)
	}
	n, err := nfa.Compile(res.Tree, nfa.DefaultCompilerConfig())
	if err != nil {
		t.Fatalf("compile(%q): %v", source, err)
	}
	d, err := Determinize(n, DetOptions{Algorithm: det})
	if err != nil {
		t.Fatalf("determinize(%q): %v", source, err)
	}
	return d
}

func TestDeterminize_Literal(t *testing.T) {
	for _, algo := range []DetAlgorithm{Subset, SubsetIndexed} {
		d := mustDFA(t, "/abc/", algo)
		if !d.Accepts("abc") {
			t.Errorf("algo %v: expected to accept abc", algo)
		}
		if d.Accepts("ab") || d.Accepts("abcd") {
			t.Errorf("algo %v: expected exact match only", algo)
		}
	}
}

func TestDeterminize_Alternation(t *testing.T) {
	d := mustDFA(t, "/cat|dog/", Subset)
	if !d.Accepts("cat") || !d.Accepts("dog") {
		t.Error("expected both alternatives accepted")
	}
	if d.Accepts("cow") {
		t.Error("did not expect cow accepted")
	}
}

func TestDeterminize_Star(t *testing.T) {
	d := mustDFA(t, "/a*/", Subset)
	for _, s := range []string{"", "a", "aaaa"} {
		if !d.Accepts(s) {
			t.Errorf("expected to accept %q", s)
		}
	}
}

func TestDeterminize_DeterministicByConstruction(t *testing.T) {
	d := mustDFA(t, "/a+b/", Subset)
	for _, s := range d.States {
		if len(s.Trans) != len(d.Alphabet) {
			t.Fatalf("state %d: Trans length %d != alphabet length %d", s.ID, len(s.Trans), len(d.Alphabet))
		}
	}
}

func minimizedBoth(t *testing.T, source string) (moore, hopcroft *DFA) {
	t.Helper()
	d := mustDFA(t, source, SubsetIndexed)
	m, err := Minimize(d, MinOptions{Algorithm: Moore})
	if err != nil {
		t.Fatalf("minimize(moore): %v", err)
	}
	h, err := Minimize(d, MinOptions{Algorithm: Hopcroft})
	if err != nil {
		t.Fatalf("minimize(hopcroft): %v", err)
	}
	return m, h
}

func TestMinimize_PreservesLanguage(t *testing.T) {
	tests := []string{"/a*b/", "/(cat|dog)/", "/a{2,4}/", "/[a-z]+/"}
	accept := map[string][]string{
		"/a*b/":       {"b", "ab", "aaab"},
		"/(cat|dog)/": {"cat", "dog"},
		"/a{2,4}/":    {"aa", "aaa", "aaaa"},
		"/[a-z]+/":    {"a", "hello"},
	}
	reject := map[string][]string{
		"/a*b/":       {"", "a", "bb"},
		"/(cat|dog)/": {"cow", ""},
		"/a{2,4}/":    {"a", "aaaaa"},
		"/[a-z]+/":    {"", "A", "1"},
	}
	for _, src := range tests {
		m, h := minimizedBoth(t, src)
		for _, s := range accept[src] {
			if !m.Accepts(s) {
				t.Errorf("%s: moore-minimized rejected %q, want accept", src, s)
			}
			if !h.Accepts(s) {
				t.Errorf("%s: hopcroft-minimized rejected %q, want accept", src, s)
			}
		}
		for _, s := range reject[src] {
			if m.Accepts(s) {
				t.Errorf("%s: moore-minimized accepted %q, want reject", src, s)
			}
			if h.Accepts(s) {
				t.Errorf("%s: hopcroft-minimized accepted %q, want reject", src, s)
			}
		}
	}
}

func TestMinimize_EmptyLanguage(t *testing.T) {
	// (a)\1 would be rejected at compile time (backreference), so build a
	// determinizable-but-unsatisfiable automaton directly: an NFA whose
	// only path ends in Fail rather than Match.
	b := nfa.NewBuilder()
	fail := b.AddFail()
	b.SetStart(fail)
	n, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	d, err := Determinize(n, DetOptions{})
	if err != nil {
		t.Fatalf("determinize: %v", err)
	}
	if !IsEmpty(d) {
		t.Fatal("expected empty language")
	}
	m, err := Minimize(d, MinOptions{Algorithm: Moore})
	if err != nil {
		t.Fatalf("minimize: %v", err)
	}
	if !IsEmpty(m) {
		t.Error("expected minimized automaton to still be empty")
	}
}

func TestCheckIntersection(t *testing.T) {
	a := mustDFA(t, "/[a-m]+/", Subset)
	b := mustDFA(t, "/[k-z]+/", Subset)
	res := CheckIntersection(a, b)
	if res.IsEmpty {
		t.Fatal("expected non-empty intersection (k,l,m overlap)")
	}
	if res.Example == nil || !a.Accepts(*res.Example) || !b.Accepts(*res.Example) {
		t.Errorf("example %v not accepted by both automata", res.Example)
	}

	c := mustDFA(t, "/[a-c]+/", Subset)
	e := mustDFA(t, "/[x-z]+/", Subset)
	res2 := CheckIntersection(c, e)
	if !res2.IsEmpty {
		t.Error("expected empty intersection for disjoint classes")
	}
}

func TestCheckSubsetOf(t *testing.T) {
	narrow := mustDFA(t, "/cat/", Subset)
	wide := mustDFA(t, "/cat|dog/", Subset)
	res := CheckSubsetOf(narrow, wide)
	if !res.IsSubset {
		t.Errorf("expected cat subset of cat|dog, counterexample: %v", res.CounterExample)
	}

	res2 := CheckSubsetOf(wide, narrow)
	if res2.IsSubset {
		t.Error("expected cat|dog not subset of cat")
	}
	if res2.CounterExample == nil || *res2.CounterExample != "dog" {
		t.Errorf("counterexample = %v, want \"dog\"", res2.CounterExample)
	}
}

// TestCheckSubsetOf_DisjointAlphabets guards against regressing to a
// complement built over only one operand's alphabet: 'z' never appears
// in /a/'s alphabet, so a complement(/a/) that only knows about 'a'
// would wrongly treat 'z' as rejected by complement(/a/) too, making
// /a|z/ look like a subset of /a/ when "z" is a clear counterexample.
func TestCheckSubsetOf_DisjointAlphabets(t *testing.T) {
	az := mustDFA(t, "/a|z/", Subset)
	a := mustDFA(t, "/a/", Subset)
	res := CheckSubsetOf(az, a)
	if res.IsSubset {
		t.Fatal("expected a|z not subset of a")
	}
	if res.CounterExample == nil || *res.CounterExample != "z" {
		t.Errorf("counterexample = %v, want \"z\"", res.CounterExample)
	}
}

func TestCheckEquivalent(t *testing.T) {
	a := mustDFA(t, "/a|b/", Subset)
	b := mustDFA(t, "/b|a/", Subset)
	res := CheckEquivalent(a, b)
	if !res.IsEquivalent {
		t.Errorf("expected a|b equivalent to b|a, left=%v right=%v", res.LeftOnlyExample, res.RightOnly)
	}

	c := mustDFA(t, "/a|b|c/", Subset)
	res2 := CheckEquivalent(a, c)
	if res2.IsEquivalent {
		t.Error("expected a|b not equivalent to a|b|c")
	}
	if res2.RightOnly == nil || *res2.RightOnly != "c" {
		t.Errorf("RightOnly = %v, want \"c\"", res2.RightOnly)
	}
}

// TestCheckEquivalent_DisjointAlphabets mirrors
// TestCheckSubsetOf_DisjointAlphabets for the equivalence check: /a/ and
// /a|z/ must not come back equivalent merely because /a/'s alphabet
// never mentions 'z'.
func TestCheckEquivalent_DisjointAlphabets(t *testing.T) {
	a := mustDFA(t, "/a/", Subset)
	az := mustDFA(t, "/a|z/", Subset)
	res := CheckEquivalent(a, az)
	if res.IsEquivalent {
		t.Fatal("expected a not equivalent to a|z")
	}
	if res.RightOnly == nil || *res.RightOnly != "z" {
		t.Errorf("RightOnly = %v, want \"z\"", res.RightOnly)
	}
}

func TestDeterminize_TransitionBudgetExceeded(t *testing.T) {
	res, err := parser.Parse("/[a-z]{1,50}/", parser.DefaultConfig())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	n, err := nfa.Compile(res.Tree, nfa.DefaultCompilerConfig())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	_, err = Determinize(n, DetOptions{MaxTransitionsProcessed: 1})
	var ce *nfa.ComplexityException
	if !errors.As(err, &ce) {
		t.Fatalf("expected *nfa.ComplexityException, got %T: %v", err, err)
	}
	if ce.Phase != "determinize" {
		t.Errorf("Phase = %q, want determinize", ce.Phase)
	}
}
