// Package automaton is the solver facade spec.md's automata solver
// component describes: it wires automaton/nfa (Thompson construction),
// automaton/dfa (subset construction, minimization, language operations),
// and cache together behind the operations a caller actually wants --
// compile a pattern, check whether two patterns' languages intersect, one
// subsets the other, or they're equivalent.
package automaton

import (
	"fmt"

	"github.com/regexray/regexray/ast"
	"github.com/regexray/regexray/automaton/dfa"
	"github.com/regexray/regexray/automaton/nfa"
	"github.com/regexray/regexray/cache"
	"github.com/regexray/regexray/parser"
)

// MatchMode selects how a pattern's automaton treats the rest of the
// string outside what it literally writes.
type MatchMode uint8

const (
	// MatchFull requires the whole input to match; ^/$ and the other
	// text-position assertions are no-ops under this mode (automaton/nfa
	// already compiles them to epsilon unconditionally).
	MatchFull MatchMode = iota
	// MatchUnanchored allows the pattern to match anywhere in the input:
	// the compiled automaton is wrapped in `.*` on both ends.
	MatchUnanchored
)

func (m MatchMode) String() string {
	if m == MatchUnanchored {
		return "unanchored"
	}
	return "full"
}

// SolverOptions configures one Compile call.
type SolverOptions struct {
	MatchMode               MatchMode
	DetAlgorithm            dfa.DetAlgorithm
	MinAlgorithm            dfa.MinAlgorithm
	MaxTransitionsProcessed int // shared budget for determinize and minimize; 0 = unbounded
	Minimize                bool
	Cache                   cache.Backend
}

// DefaultSolverOptions returns FULL-match, SUBSET_INDEXED/Hopcroft,
// minimized, unbounded-budget, uncached options.
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		MatchMode:    MatchFull,
		DetAlgorithm: dfa.SubsetIndexed,
		MinAlgorithm: dfa.Hopcroft,
		Minimize:     true,
	}
}

func dotStarWrap(pattern ast.Node) ast.Node {
	return &ast.Sequence{Children_: []ast.Node{
		&ast.Quantifier{Node: &ast.Dot{}, Kind: ast.QuantStar, Min: 0, Max: -1},
		pattern,
		&ast.Quantifier{Node: &ast.Dot{}, Kind: ast.QuantStar, Min: 0, Max: -1},
	}}
}

// Compile parses pattern (delimiter/flags envelope included, e.g.
// "/abc/i") and builds its (optionally minimized) DFA under opts, going
// through opts.Cache when one is provided.
func Compile(pattern string, opts SolverOptions) (*dfa.DFA, error) {
	if opts.Cache != nil {
		res, err := parser.Parse(pattern, parser.DefaultConfig())
		if err != nil {
			return nil, err
		}
		c := dfa.NewCache(opts.Cache)
		key := c.Key(pattern, res.Tree.Flags, opts.MatchMode.String(), opts.DetAlgorithm, opts.MinAlgorithm)
		return c.LoadOrCompute(key, func() (*dfa.DFA, error) { return compileTree(res.Tree, opts) })
	}
	res, err := parser.Parse(pattern, parser.DefaultConfig())
	if err != nil {
		return nil, err
	}
	return compileTree(res.Tree, opts)
}

func compileTree(re *ast.Regex, opts SolverOptions) (*dfa.DFA, error) {
	pattern := re.Pattern
	if opts.MatchMode == MatchUnanchored {
		pattern = dotStarWrap(pattern)
	}
	wrapped := &ast.Regex{Base: re.Base, Delimiter: re.Delimiter, Flags: re.Flags, Pattern: pattern}

	n, err := nfa.Compile(wrapped, nfa.DefaultCompilerConfig())
	if err != nil {
		return nil, err
	}
	d, err := dfa.Determinize(n, dfa.DetOptions{Algorithm: opts.DetAlgorithm, MaxTransitionsProcessed: opts.MaxTransitionsProcessed})
	if err != nil {
		return nil, err
	}
	if !opts.Minimize {
		return d, nil
	}
	return dfa.Minimize(d, dfa.MinOptions{Algorithm: opts.MinAlgorithm, MaxTransitionsProcessed: opts.MaxTransitionsProcessed})
}

// Intersection reports whether a's and b's languages share any string.
func Intersection(a, b *dfa.DFA) *dfa.IntersectionResult {
	return dfa.CheckIntersection(a, b)
}

// SubsetOf reports whether a's language is contained in b's.
func SubsetOf(a, b *dfa.DFA) *dfa.SubsetResult {
	return dfa.CheckSubsetOf(a, b)
}

// Equivalent reports whether a and b accept exactly the same language.
func Equivalent(a, b *dfa.DFA) *dfa.EquivalenceResult {
	return dfa.CheckEquivalent(a, b)
}

// Solve is a convenience entry point matching spec's
// `solver.<op>(patternA, patternB, matchMode)` calling convention: it
// compiles both patterns under matchMode and dispatches to the named
// operation ("intersection", "subsetOf", "equivalent").
func Solve(op, patternA, patternB string, matchMode MatchMode) (interface{}, error) {
	opts := DefaultSolverOptions()
	opts.MatchMode = matchMode
	a, err := Compile(patternA, opts)
	if err != nil {
		return nil, err
	}
	b, err := Compile(patternB, opts)
	if err != nil {
		return nil, err
	}
	switch op {
	case "intersection":
		return Intersection(a, b), nil
	case "subsetOf":
		return SubsetOf(a, b), nil
	case "equivalent":
		return Equivalent(a, b), nil
	default:
		return nil, fmt.Errorf("automaton: unknown solver operation %q", op)
	}
}
