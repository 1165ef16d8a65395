package nfa

import (
	"fmt"

	"github.com/regexray/regexray/charset"
)

// BuildError reports a malformed NFA construction, mirroring the teacher's
// nfa.BuildError shape (Message + offending StateID).
type BuildError struct {
	Message string
	StateID StateID
}

func (e *BuildError) Error() string {
	if e.StateID == InvalidState {
		return e.Message
	}
	return fmt.Sprintf("%s (state %d)", e.Message, e.StateID)
}

// Builder constructs an NFA incrementally, fragment by fragment, the way
// the teacher's nfa.Builder does for byte-range NFAs: each Add* method
// appends one state and returns its ID, and Patch/PatchSplit fix up
// forward references once a fragment's successor is known.
type Builder struct {
	states []State
	start  StateID
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{start: InvalidState}
}

// AddChar adds a state that transitions to next on any rune in set.
func (b *Builder) AddChar(set charset.CharSet, next StateID) StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, State{ID: id, Kind: StateChar, Set: set, Next: next})
	return id
}

// AddSplit adds a state with epsilon transitions to left and right
// (alternation and quantifier branching both use this).
func (b *Builder) AddSplit(left, right StateID) StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, State{ID: id, Kind: StateSplit, Left: left, Right: right})
	return id
}

// AddEpsilon adds a state with a single epsilon transition.
func (b *Builder) AddEpsilon(next StateID) StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, State{ID: id, Kind: StateEpsilon, Next: next})
	return id
}

// AddMatch adds an accepting state.
func (b *Builder) AddMatch() StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, State{ID: id, Kind: StateMatch})
	return id
}

// AddFail adds a dead state with no outgoing transitions.
func (b *Builder) AddFail() StateID {
	id := StateID(len(b.states))
	b.states = append(b.states, State{ID: id, Kind: StateFail})
	return id
}

// Patch rewrites a Char/Epsilon state's Next target. Used to connect a
// fragment's dangling end to its successor once it is known.
func (b *Builder) Patch(id, target StateID) error {
	if int(id) >= len(b.states) || id < 0 {
		return &BuildError{Message: "state ID out of bounds", StateID: id}
	}
	s := &b.states[id]
	switch s.Kind {
	case StateChar, StateEpsilon:
		s.Next = target
		return nil
	default:
		return &BuildError{Message: fmt.Sprintf("cannot patch state of kind %s", s.Kind), StateID: id}
	}
}

// PatchSplit rewrites a Split state's two targets.
func (b *Builder) PatchSplit(id, left, right StateID) error {
	if int(id) >= len(b.states) || id < 0 {
		return &BuildError{Message: "state ID out of bounds", StateID: id}
	}
	s := &b.states[id]
	if s.Kind != StateSplit {
		return &BuildError{Message: fmt.Sprintf("expected Split state, got %s", s.Kind), StateID: id}
	}
	s.Left, s.Right = left, right
	return nil
}

// PatchLeft rewrites only a Split state's Left target, leaving Right as-is.
func (b *Builder) PatchLeft(id, left StateID) error {
	if int(id) >= len(b.states) || id < 0 {
		return &BuildError{Message: "state ID out of bounds", StateID: id}
	}
	s := &b.states[id]
	if s.Kind != StateSplit {
		return &BuildError{Message: fmt.Sprintf("expected Split state, got %s", s.Kind), StateID: id}
	}
	s.Left = left
	return nil
}

// PatchRight rewrites only a Split state's Right target, leaving Left as-is.
func (b *Builder) PatchRight(id, right StateID) error {
	if int(id) >= len(b.states) || id < 0 {
		return &BuildError{Message: "state ID out of bounds", StateID: id}
	}
	s := &b.states[id]
	if s.Kind != StateSplit {
		return &BuildError{Message: fmt.Sprintf("expected Split state, got %s", s.Kind), StateID: id}
	}
	s.Right = right
	return nil
}

// SetStart sets the NFA's single start state.
func (b *Builder) SetStart(start StateID) { b.start = start }

// States returns the number of states added so far.
func (b *Builder) States() int { return len(b.states) }

// Build finalizes the NFA. Returns an error if the start state was never
// set or any state references an out-of-bounds target.
func (b *Builder) Build() (*NFA, error) {
	if b.start == InvalidState {
		return nil, &BuildError{Message: "start state not set"}
	}
	if int(b.start) >= len(b.states) {
		return nil, &BuildError{Message: "start state out of bounds", StateID: b.start}
	}
	for i, s := range b.states {
		id := StateID(i)
		switch s.Kind {
		case StateChar, StateEpsilon:
			if s.Next != InvalidState && int(s.Next) >= len(b.states) {
				return nil, &BuildError{Message: fmt.Sprintf("invalid next state %d", s.Next), StateID: id}
			}
		case StateSplit:
			if s.Left != InvalidState && int(s.Left) >= len(b.states) {
				return nil, &BuildError{Message: fmt.Sprintf("invalid left state %d", s.Left), StateID: id}
			}
			if s.Right != InvalidState && int(s.Right) >= len(b.states) {
				return nil, &BuildError{Message: fmt.Sprintf("invalid right state %d", s.Right), StateID: id}
			}
		}
	}
	return &NFA{States: b.states, Start: b.start}, nil
}
