// Package nfa builds Thompson-construction NFAs from a regexray AST, for
// the automata solver (structural equivalence / intersection / subset
// checks) rather than for matching. Edges carry a charset.CharSet instead
// of a single byte or code point, mirroring the teacher engine's
// StateID-addressed Builder (nfa.Builder in the teacher package) with the
// byte-range edges generalized to range sets.
package nfa

import "github.com/regexray/regexray/charset"

// StateID identifies a state within an NFA's States slice.
type StateID int32

// InvalidState is the sentinel for an unset state reference.
const InvalidState StateID = -1

// StateKind discriminates State's role, mirroring the teacher's
// nfa.StateKind enum (StateByteRange/StateSplit/StateEpsilon/StateMatch/
// StateFail), generalized from bytes to rune sets and stripped of the
// capture/look-around kinds: those constructs never reach this compiler
// (see Compiler.compileNode's ComplexityException cases).
type StateKind uint8

const (
	StateChar StateKind = iota
	StateSplit
	StateEpsilon
	StateMatch
	StateFail
)

func (k StateKind) String() string {
	switch k {
	case StateChar:
		return "Char"
	case StateSplit:
		return "Split"
	case StateEpsilon:
		return "Epsilon"
	case StateMatch:
		return "Match"
	case StateFail:
		return "Fail"
	default:
		return "Unknown"
	}
}

// State is one node of the NFA. Only the fields relevant to Kind are
// meaningful.
type State struct {
	ID   StateID
	Kind StateKind

	Set  charset.CharSet // StateChar: the set of runes this edge accepts
	Next StateID         // StateChar, StateEpsilon

	Left, Right StateID // StateSplit: two epsilon targets
}

// NFA is the finished, immutable automaton: a state slice plus a single
// start state. Unlike the teacher's dual anchored/unanchored starts (needed
// for a real search engine), the solver always reasons about whole-string
// acceptance (spec's MatchMode::FULL) with unanchored wrapping applied, if
// requested, as a pre-processing step on the AST before compilation (see
// automaton.dotStarWrap) rather than as a second start state here.
type NFA struct {
	States []State
	Start  StateID
}

// Accepting reports whether id is a Match state.
func (n *NFA) Accepting(id StateID) bool {
	return id != InvalidState && n.States[id].Kind == StateMatch
}
