package dfa

import (
	"sort"
	"strconv"
	"strings"

	"github.com/regexray/regexray/automaton/nfa"
	"github.com/regexray/regexray/charset"
)

// DetAlgorithm selects how Determinize deduplicates already-discovered
// NFA-state subsets while building the DFA. Both variants compute the
// identical automaton; they differ only in the bookkeeping spec.md §4.K
// names as SUBSET and SUBSET_INDEXED.
type DetAlgorithm uint8

const (
	// Subset scans the slice of previously discovered subsets linearly,
	// the textbook subset-construction presentation.
	Subset DetAlgorithm = iota
	// SubsetIndexed keeps a hash index from a canonical subset key to its
	// DFA state id, trading memory for O(1) dedup lookups.
	SubsetIndexed
)

// DetOptions configures Determinize.
type DetOptions struct {
	Algorithm DetAlgorithm
	// MaxTransitionsProcessed bounds the (state, symbol) pairs examined;
	// 0 means unbounded. Exceeding it raises a
	// nfa.ComplexityException{Phase: "determinize"}.
	MaxTransitionsProcessed int
}

// subset is a sorted, deduplicated set of NFA state IDs: the canonical
// representation of one DFA state during construction.
type subset []nfa.StateID

func (s subset) key() string {
	var b strings.Builder
	for i, id := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(id)))
	}
	return b.String()
}

func (s subset) equal(o subset) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

func epsilonClosure(n *nfa.NFA, seed []nfa.StateID) subset {
	seen := map[nfa.StateID]bool{}
	var visit func(id nfa.StateID)
	visit = func(id nfa.StateID) {
		if id == nfa.InvalidState || seen[id] {
			return
		}
		seen[id] = true
		st := n.States[id]
		switch st.Kind {
		case nfa.StateEpsilon:
			visit(st.Next)
		case nfa.StateSplit:
			visit(st.Left)
			visit(st.Right)
		}
	}
	for _, id := range seed {
		visit(id)
	}
	out := make(subset, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func isAccepting(n *nfa.NFA, s subset) bool {
	for _, id := range s {
		if n.Accepting(id) {
			return true
		}
	}
	return false
}

// collectAlphabet gathers every CharSet used on a StateChar edge and
// partitions them into the coarsest common refinement: the alphabet the
// resulting DFA's transitions are indexed by.
func collectAlphabet(n *nfa.NFA) []charset.CharSet {
	var sets []charset.CharSet
	for _, st := range n.States {
		if st.Kind == nfa.StateChar {
			sets = append(sets, st.Set)
		}
	}
	return charset.Partition(sets)
}

// Determinize runs subset construction over n, producing a DFA whose
// alphabet is the partition collectAlphabet derives from n's edges.
func Determinize(n *nfa.NFA, opts DetOptions) (*DFA, error) {
	alphabet := collectAlphabet(n)
	start := epsilonClosure(n, []nfa.StateID{n.Start})

	type discovered struct {
		set subset
		id  int
	}
	var found []discovered
	index := map[string]int{}

	lookup := func(s subset) (int, bool) {
		switch opts.Algorithm {
		case SubsetIndexed:
			id, ok := index[s.key()]
			return id, ok
		default:
			for _, d := range found {
				if d.set.equal(s) {
					return d.id, true
				}
			}
			return 0, false
		}
	}
	record := func(s subset) int {
		id := len(found)
		found = append(found, discovered{set: s, id: id})
		if opts.Algorithm == SubsetIndexed {
			index[s.key()] = id
		}
		return id
	}

	startID := record(start)
	_ = startID

	var states []State
	processed := 0
	for i := 0; i < len(found); i++ {
		cur := found[i].set
		trans := make([]int, len(alphabet))
		for sym, part := range alphabet {
			processed++
			if opts.MaxTransitionsProcessed > 0 && processed > opts.MaxTransitionsProcessed {
				return nil, &nfa.ComplexityException{
					Phase: "determinize", Limit: opts.MaxTransitionsProcessed, Observed: processed,
				}
			}
			rep := part.Ranges()[0].Lo
			var targets []nfa.StateID
			for _, id := range cur {
				st := n.States[id]
				if st.Kind == nfa.StateChar && st.Set.Contains(rep) {
					targets = append(targets, st.Next)
				}
			}
			if len(targets) == 0 {
				trans[sym] = -1
				continue
			}
			next := epsilonClosure(n, targets)
			if id, ok := lookup(next); ok {
				trans[sym] = id
			} else {
				trans[sym] = record(next)
			}
		}
		states = append(states, State{ID: found[i].id, Accepting: isAccepting(n, cur), Trans: trans})
	}

	return &DFA{Alphabet: alphabet, States: states, Start: 0}, nil
}
