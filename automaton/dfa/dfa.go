// Package dfa builds and manipulates deterministic automata derived from
// automaton/nfa's Thompson NFAs: subset construction, Moore/Hopcroft
// minimization, and the language operations (intersection, subset,
// equivalence) the solver exposes. Grounded on the teacher engine's
// nfa/composite.go product-construction idiom, generalized from byte
// ranges to the charset.CharSet alphabet partitions automaton/nfa emits.
package dfa

import "github.com/regexray/regexray/charset"

// State is one DFA state: an acceptance flag and one transition entry per
// symbol of the owning DFA's Alphabet. Trans[i] == -1 means "no
// transition on this symbol" (implicit reject), same convention the
// teacher's onepass engine uses for unset byte-class transitions.
type State struct {
	ID        int
	Accepting bool
	Trans     []int
}

// DFA is a deterministic automaton over an explicit alphabet partition,
// not necessarily complete (a Trans entry of -1 means no transition on
// that symbol): Alphabet[i] is the set of runes symbol i stands for, the
// coarsest-common-refinement partition automaton/nfa's source edges
// induce (see charset.Partition).
type DFA struct {
	Alphabet []charset.CharSet
	States   []State
	Start    int
}

// SymbolFor returns the alphabet index whose CharSet contains r, or -1 if
// r isn't covered by any symbol (meaning no transition in this DFA can
// ever fire on it).
func (d *DFA) SymbolFor(r rune) int {
	for i, set := range d.Alphabet {
		if set.Contains(r) {
			return i
		}
	}
	return -1
}

// Step returns the target state for (state, symbol), or -1 if none.
func (d *DFA) Step(state, symbol int) int {
	if state < 0 || state >= len(d.States) {
		return -1
	}
	t := d.States[state].Trans
	if symbol < 0 || symbol >= len(t) {
		return -1
	}
	return t[symbol]
}

// Accepts runs the DFA over s and reports whether it lands on an
// accepting state. Any rune not covered by the alphabet immediately
// rejects, as does any symbol whose transition is unset.
func (d *DFA) Accepts(s string) bool {
	cur := d.Start
	for _, r := range s {
		sym := d.SymbolFor(r)
		if sym < 0 {
			return false
		}
		cur = d.Step(cur, sym)
		if cur < 0 {
			return false
		}
	}
	return cur >= 0 && d.States[cur].Accepting
}
