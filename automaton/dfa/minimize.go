package dfa

import (
	"github.com/regexray/regexray/automaton/nfa"
	"github.com/regexray/regexray/internal/sparse"
)

// MinAlgorithm selects the partition-refinement strategy Minimize uses.
type MinAlgorithm uint8

const (
	// Moore repeatedly refines the whole partition in lockstep rounds
	// until a fixpoint, the classical textbook presentation.
	Moore MinAlgorithm = iota
	// Hopcroft refines one block at a time off a worklist, splitting only
	// the blocks a processed (block, symbol) pair can actually affect.
	Hopcroft
)

// MinOptions configures Minimize.
type MinOptions struct {
	Algorithm MinAlgorithm
	// MaxTransitionsProcessed bounds refinement work; 0 means unbounded.
	// Exceeding it raises nfa.ComplexityException{Phase: "minimize"}.
	MaxTransitionsProcessed int
}

// complete returns a copy of d with an explicit sink state added so every
// (state, symbol) pair has a transition -- partition refinement assumes a
// total transition function. sinkID is the new state's id.
func complete(d *DFA) (cd *DFA, sinkID int) {
	sinkID = len(d.States)
	states := make([]State, 0, len(d.States)+1)
	for _, s := range d.States {
		trans := make([]int, len(s.Trans))
		for i, t := range s.Trans {
			if t < 0 {
				trans[i] = sinkID
			} else {
				trans[i] = t
			}
		}
		states = append(states, State{ID: s.ID, Accepting: s.Accepting, Trans: trans})
	}
	sinkTrans := make([]int, len(d.Alphabet))
	for i := range sinkTrans {
		sinkTrans[i] = sinkID
	}
	states = append(states, State{ID: sinkID, Accepting: false, Trans: sinkTrans})
	return &DFA{Alphabet: d.Alphabet, States: states, Start: d.Start}, sinkID
}

// Minimize returns the minimal DFA equivalent to d, using the selected
// algorithm for partition refinement. The dead/sink state introduced for
// totality is dropped from the result unless every state collapses into
// a single block (the empty-language DFA), in which case that one block
// is kept.
func Minimize(d *DFA, opts MinOptions) (*DFA, error) {
	cd, sinkID := complete(d)

	var blockOf []int
	var err error
	switch opts.Algorithm {
	case Hopcroft:
		blockOf, err = minimizeHopcroft(cd, opts.MaxTransitionsProcessed)
	default:
		blockOf, err = minimizeMoore(cd, opts.MaxTransitionsProcessed)
	}
	if err != nil {
		return nil, err
	}

	return buildFromPartition(cd, blockOf, sinkID)
}

// minimizeMoore refines the partition in lockstep rounds: states agree on
// a block iff they agree on acceptance and, for every symbol, their
// successors currently land in the same block.
func minimizeMoore(d *DFA, budget int) ([]int, error) {
	n := len(d.States)
	block := make([]int, n)
	for i, s := range d.States {
		if s.Accepting {
			block[i] = 1
		}
	}
	processed := 0
	for {
		changed := false
		sig := make([]string, n)
		for i, s := range d.States {
			b := make([]byte, 0, 4+4*len(s.Trans))
			writeInt(&b, block[i])
			for _, t := range s.Trans {
				processed++
				if budget > 0 && processed > budget {
					return nil, &nfa.ComplexityException{Phase: "minimize", Limit: budget, Observed: processed}
				}
				tb := -1
				if t >= 0 {
					tb = block[t]
				}
				writeInt(&b, tb)
			}
			sig[i] = string(b)
		}
		next := make([]int, n)
		seen := map[string]int{}
		for i, s := range sig {
			id, ok := seen[s]
			if !ok {
				id = len(seen)
				seen[s] = id
			}
			next[i] = id
		}
		for i := range next {
			if next[i] != block[i] {
				changed = true
			}
		}
		block = next
		if !changed {
			break
		}
	}
	return block, nil
}

// minimizeHopcroft refines the partition via a worklist of (block, symbol)
// splitters, processing one at a time rather than re-deriving the whole
// partition every round.
func minimizeHopcroft(d *DFA, budget int) ([]int, error) {
	n := len(d.States)
	var accepting, rejecting []int
	for i, s := range d.States {
		if s.Accepting {
			accepting = append(accepting, i)
		} else {
			rejecting = append(rejecting, i)
		}
	}
	partition := [][]int{}
	if len(accepting) > 0 {
		partition = append(partition, accepting)
	}
	if len(rejecting) > 0 {
		partition = append(partition, rejecting)
	}

	type splitter struct {
		block  int
		symbol int
	}
	var worklist []splitter
	for b := range partition {
		for sym := range d.Alphabet {
			worklist = append(worklist, splitter{b, sym})
		}
	}

	processed := 0
	for len(worklist) > 0 {
		w := worklist[0]
		worklist = worklist[1:]
		if w.block >= len(partition) {
			continue
		}
		splitterBlock := partition[w.block]
		inSplitter := sparse.NewSparseSet(uint32(len(d.States)))
		for _, s := range splitterBlock {
			inSplitter.Insert(uint32(s))
		}

		newPartition := make([][]int, 0, len(partition)+1)
		for _, block := range partition {
			var in, out []int
			for _, s := range block {
				processed++
				if budget > 0 && processed > budget {
					return nil, &nfa.ComplexityException{Phase: "minimize", Limit: budget, Observed: processed}
				}
				t := d.States[s].Trans[w.symbol]
				if t >= 0 && inSplitter.Contains(uint32(t)) {
					in = append(in, s)
				} else {
					out = append(out, s)
				}
			}
			if len(in) > 0 && len(out) > 0 {
				newPartition = append(newPartition, in, out)
				for sym := range d.Alphabet {
					worklist = append(worklist, splitter{len(newPartition) - 2, sym})
					worklist = append(worklist, splitter{len(newPartition) - 1, sym})
				}
			} else {
				newPartition = append(newPartition, block)
			}
		}
		partition = newPartition
	}

	block := make([]int, n)
	for bi, blk := range partition {
		for _, s := range blk {
			block[s] = bi
		}
	}
	return block, nil
}

func writeInt(b *[]byte, v int) {
	*b = append(*b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v), '|')
}

// buildFromPartition collapses d's states into one new state per block,
// dropping the block containing sinkID unless it's the only block (the
// empty-language automaton) since that block represents implicit reject.
func buildFromPartition(d *DFA, blockOf []int, sinkID int) (*DFA, error) {
	numBlocks := 0
	for _, b := range blockOf {
		if b+1 > numBlocks {
			numBlocks = b + 1
		}
	}
	sinkBlock := blockOf[sinkID]

	repOf := make([]int, numBlocks)
	haveRep := make([]bool, numBlocks)
	for i, b := range blockOf {
		if !haveRep[b] {
			repOf[b] = i
			haveRep[b] = true
		}
	}

	keepSink := numBlocks == 1
	newID := make([]int, numBlocks)
	next := 0
	for b := 0; b < numBlocks; b++ {
		if b == sinkBlock && !keepSink {
			newID[b] = -1
			continue
		}
		newID[b] = next
		next++
	}

	states := make([]State, 0, next)
	for b := 0; b < numBlocks; b++ {
		if newID[b] == -1 {
			continue
		}
		rep := d.States[repOf[b]]
		trans := make([]int, len(rep.Trans))
		for sym, t := range rep.Trans {
			if t < 0 {
				trans[sym] = -1
				continue
			}
			tb := blockOf[t]
			trans[sym] = newID[tb]
		}
		states = append(states, State{ID: newID[b], Accepting: rep.Accepting, Trans: trans})
	}

	start := newID[blockOf[d.Start]]
	if start == -1 {
		// Start collapsed into the dropped sink: empty-language DFA.
		return &DFA{Alphabet: d.Alphabet, States: []State{{ID: 0, Accepting: false, Trans: make([]int, len(d.Alphabet))}}, Start: 0}, nil
	}
	return &DFA{Alphabet: d.Alphabet, States: states, Start: start}, nil
}
