package dfa

import (
	"github.com/regexray/regexray/charset"
	"github.com/regexray/regexray/internal/sparse"
)

// commonAlphabet computes the coarsest refinement of a's and b's
// alphabets, so both automata can be walked symbol-for-symbol in lockstep
// during a product construction.
func commonAlphabet(a, b *DFA) []charset.CharSet {
	sets := make([]charset.CharSet, 0, len(a.Alphabet)+len(b.Alphabet))
	sets = append(sets, a.Alphabet...)
	sets = append(sets, b.Alphabet...)
	return charset.Partition(sets)
}

// remap re-expresses d's transition table over a finer alphabet: each new
// symbol is a subset of exactly one of d's original symbols (or none), so
// its behavior is identical throughout.
func remap(d *DFA, common []charset.CharSet) *DFA {
	states := make([]State, len(d.States))
	for i, s := range d.States {
		trans := make([]int, len(common))
		for j, part := range common {
			rep := part.Ranges()[0].Lo
			orig := d.SymbolFor(rep)
			if orig < 0 {
				trans[j] = -1
				continue
			}
			trans[j] = s.Trans[orig]
		}
		states[i] = State{ID: s.ID, Accepting: s.Accepting, Trans: trans}
	}
	return &DFA{Alphabet: common, States: states, Start: d.Start}
}

// complete2 totals both a and b over a shared alphabet: a prerequisite
// for product construction (every state needs a transition for every
// symbol, including into each automaton's own sink).
func complete2(a, b *DFA) (*DFA, *DFA) {
	common := commonAlphabet(a, b)
	ra := remap(a, common)
	rb := remap(b, common)
	ca, _ := complete(ra)
	cb, _ := complete(rb)
	return ca, cb
}

// Intersect builds the product DFA accepting exactly the strings both a
// and b accept, reachable states only (mirrors the teacher's
// nfa/composite.go multi-pattern product construction, generalized from
// NFA union to DFA intersection).
func Intersect(a, b *DFA) *DFA {
	ca, cb := complete2(a, b)
	alphabet := ca.Alphabet

	type pair struct{ x, y int }
	start := pair{ca.Start, cb.Start}
	ids := map[pair]int{start: 0}
	order := []pair{start}

	var states []State
	for i := 0; i < len(order); i++ {
		p := order[i]
		sx, sy := ca.States[p.x], cb.States[p.y]
		trans := make([]int, len(alphabet))
		for sym := range alphabet {
			tx, ty := sx.Trans[sym], sy.Trans[sym]
			if tx < 0 || ty < 0 {
				trans[sym] = -1
				continue
			}
			np := pair{tx, ty}
			id, ok := ids[np]
			if !ok {
				id = len(order)
				ids[np] = id
				order = append(order, np)
			}
			trans[sym] = id
		}
		states = append(states, State{ID: i, Accepting: sx.Accepting && sy.Accepting, Trans: trans})
	}
	return &DFA{Alphabet: alphabet, States: states, Start: 0}
}

// withCatchAll appends an explicit "everything else" symbol to parts,
// covering every code point none of them mention, so a DFA remapped onto
// this alphabet has a real transition -- not an absent one -- for code
// points outside its own vocabulary. Without this, a pattern like /a/
// has no symbol at all for 'z': its alphabet is exactly {a}, and
// Complement/remap can only route symbols the alphabet actually names.
func withCatchAll(parts []charset.CharSet) []charset.CharSet {
	union := charset.Empty()
	for _, p := range parts {
		union = union.Union(p)
	}
	rest := union.Complement(charset.MaxUnicode)
	if rest.IsEmpty() {
		return parts
	}
	return append(append([]charset.CharSet{}, parts...), rest)
}

// complementOver builds the complement of d, completed over alphabet
// first rather than over d's own (possibly narrower) alphabet. This
// matters whenever the result will later be remapped onto a wider
// alphabet (e.g. intersected against another DFA that mentions code
// points d never does): remapping an already-completed automaton onto a
// larger alphabet sends any symbol its own alphabet never named through
// remap's -1/"no mapping" path, which a later complete() fills with a
// fresh, non-accepting sink -- silently discarding the fact that this
// automaton is a complement and that sink should have been accepting.
// Completing over the final, wide alphabet up front avoids that.
func complementOver(d *DFA, alphabet []charset.CharSet) *DFA {
	rd := remap(d, alphabet)
	cd, _ := complete(rd)
	states := make([]State, len(cd.States))
	for i, s := range cd.States {
		states[i] = State{ID: s.ID, Accepting: !s.Accepting, Trans: append([]int(nil), s.Trans...)}
	}
	return &DFA{Alphabet: cd.Alphabet, States: states, Start: cd.Start}
}

// Complement flips acceptance over a total copy of d (totality is
// required: the implicit-reject convention would otherwise make every
// unreachable symbol vacuously "accepted" by the complement), completed
// over d's own alphabet plus an explicit catch-all for everything it
// never mentions.
func Complement(d *DFA) *DFA {
	return complementOver(d, withCatchAll(d.Alphabet))
}

// IsEmpty reports whether d accepts no strings at all: no accepting state
// is reachable from Start.
func IsEmpty(d *DFA) bool {
	_, ok := example(d)
	return !ok
}

// example does a breadth-first search from d.Start for the shortest
// accepted string, returning ("", false) if the language is empty.
func example(d *DFA) (string, bool) {
	type step struct {
		state int
		path  []rune
	}
	if d.Start < 0 || d.Start >= len(d.States) {
		return "", false
	}
	visited := sparse.NewSparseSet(uint32(len(d.States)))
	visited.Insert(uint32(d.Start))
	queue := []step{{d.Start, nil}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if d.States[cur.state].Accepting {
			return string(cur.path), true
		}
		for sym, part := range d.Alphabet {
			t := d.States[cur.state].Trans[sym]
			if t < 0 || visited.Contains(uint32(t)) {
				continue
			}
			visited.Insert(uint32(t))
			rep := part.Ranges()[0].Lo
			path := append(append([]rune{}, cur.path...), rep)
			queue = append(queue, step{t, path})
		}
	}
	return "", false
}

// IntersectionResult reports whether two patterns' languages overlap.
type IntersectionResult struct {
	IsEmpty bool
	Example *string
}

// CheckIntersection computes whether a and b share any accepted string,
// with a witness if they do.
func CheckIntersection(a, b *DFA) *IntersectionResult {
	p := Intersect(a, b)
	if s, ok := example(p); ok {
		return &IntersectionResult{IsEmpty: false, Example: &s}
	}
	return &IntersectionResult{IsEmpty: true}
}

// SubsetResult reports whether a's language is a subset of b's.
type SubsetResult struct {
	IsSubset       bool
	CounterExample *string
}

// CheckSubsetOf decides whether a's language is entirely contained in
// b's: equivalent to a ∩ complement(b) being empty. A non-empty
// intersection yields a string a accepts but b rejects.
//
// complement(b) is completed over a and b's common alphabet, not just
// b's own: otherwise a symbol a mentions but b never does (e.g. 'z' in
// SubsetOf(/a|z/, /a/)) has no transition in b's narrow alphabet, and a
// later remap onto the wider alphabet would route it to a fresh,
// wrongly non-accepting sink instead of complement(b)'s true accepting
// one -- silently declaring a a subset of b when it isn't.
func CheckSubsetOf(a, b *DFA) *SubsetResult {
	common := withCatchAll(commonAlphabet(a, b))
	notB := complementOver(b, common)
	p := Intersect(a, notB)
	if s, ok := example(p); ok {
		return &SubsetResult{IsSubset: false, CounterExample: &s}
	}
	return &SubsetResult{IsSubset: true}
}

// EquivalenceResult reports whether a and b accept exactly the same
// language, with witnesses for each direction they disagree.
type EquivalenceResult struct {
	IsEquivalent    bool
	LeftOnlyExample *string
	RightOnly       *string
}

// CheckEquivalent decides a == b by checking both subset directions,
// complementing each side over their shared (plus catch-all) alphabet
// for the same reason CheckSubsetOf does.
func CheckEquivalent(a, b *DFA) *EquivalenceResult {
	common := withCatchAll(commonAlphabet(a, b))
	leftOnly := Intersect(a, complementOver(b, common))
	rightOnly := Intersect(complementOver(a, common), b)
	res := &EquivalenceResult{IsEquivalent: true}
	if s, ok := example(leftOnly); ok {
		res.IsEquivalent = false
		res.LeftOnlyExample = &s
	}
	if s, ok := example(rightOnly); ok {
		res.IsEquivalent = false
		res.RightOnly = &s
	}
	return res
}
