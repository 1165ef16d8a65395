package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regexray/regexray/automaton/dfa"
	"github.com/regexray/regexray/cache"
)

func TestCompile_FullMatch(t *testing.T) {
	d, err := Compile("/cat|dog/", DefaultSolverOptions())
	require.NoError(t, err)
	assert.True(t, d.Accepts("cat"))
	assert.True(t, d.Accepts("dog"))
	assert.False(t, d.Accepts("concatenate"), "FULL match mode should reject a superstring")
}

func TestCompile_UnanchoredMatch(t *testing.T) {
	opts := DefaultSolverOptions()
	opts.MatchMode = MatchUnanchored
	d, err := Compile("/cat/", opts)
	require.NoError(t, err)
	assert.True(t, d.Accepts("concatenate"), "UNANCHORED mode should accept a superstring containing the pattern")
	assert.False(t, d.Accepts("dog"), "UNANCHORED mode should still reject a string without the pattern")
}

func TestCompile_Uncached_And_Cached_Agree(t *testing.T) {
	backend := cache.NewInMemory(8)
	opts := DefaultSolverOptions()
	optsCached := opts
	optsCached.Cache = backend

	plain, err := Compile("/a+b/", opts)
	require.NoError(t, err)
	cached, err := Compile("/a+b/", optsCached)
	require.NoError(t, err)
	for _, s := range []string{"ab", "aaab", "b", ""} {
		assert.Equal(t, plain.Accepts(s), cached.Accepts(s), "cached/uncached disagree on %q", s)
	}

	// Second call should hit the cache and still agree.
	cached2, err := Compile("/a+b/", optsCached)
	require.NoError(t, err)
	assert.True(t, cached2.Accepts("ab"))
}

func TestSolve_Intersection(t *testing.T) {
	res, err := Solve("intersection", "/[a-m]+/", "/[k-z]+/", MatchFull)
	require.NoError(t, err)
	ir, ok := res.(*dfa.IntersectionResult)
	require.Truef(t, ok, "result type = %T, want *dfa.IntersectionResult", res)
	assert.False(t, ir.IsEmpty, "expected non-empty intersection")
}

func TestSolve_SubsetOf(t *testing.T) {
	res, err := Solve("subsetOf", "/edit/", "/[a-z]+/", MatchFull)
	require.NoError(t, err)
	sr, ok := res.(*dfa.SubsetResult)
	require.Truef(t, ok, "result type = %T, want *dfa.SubsetResult", res)
	assert.True(t, sr.IsSubset, "expected /edit/ subset of /[a-z]+/, counterexample: %v", sr.CounterExample)
}

func TestSolve_NotSubsetOf_DisjointAlphabet(t *testing.T) {
	// Regression for complementing over only one operand's alphabet: 'z'
	// must still count against /a/ even though /a/'s own alphabet never
	// mentions it.
	res, err := Solve("subsetOf", "/a|z/", "/a/", MatchFull)
	require.NoError(t, err)
	sr, ok := res.(*dfa.SubsetResult)
	require.Truef(t, ok, "result type = %T, want *dfa.SubsetResult", res)
	assert.False(t, sr.IsSubset)
	require.NotNil(t, sr.CounterExample)
	assert.Equal(t, "z", *sr.CounterExample)
}

func TestSolve_Equivalent(t *testing.T) {
	res, err := Solve("equivalent", "/a|b/", "/[ab]/", MatchFull)
	require.NoError(t, err)
	er, ok := res.(*dfa.EquivalenceResult)
	require.Truef(t, ok, "result type = %T, want *dfa.EquivalenceResult", res)
	assert.True(t, er.IsEquivalent, "expected a|b equivalent to [ab], left=%v right=%v", er.LeftOnlyExample, er.RightOnly)
}

func TestSolve_UnknownOperation(t *testing.T) {
	_, err := Solve("bogus", "/a/", "/b/", MatchFull)
	assert.Error(t, err)
}
