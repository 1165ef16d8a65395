package parser

import "github.com/regexray/regexray/ast"

// registry accumulates every capturing group discovered while parsing, in
// the order their opening parenthesis is scanned (which is also PCRE's
// capture-numbering order). Backref/Subroutine resolution against this
// registry happens later, in the validator -- forward references
// (`(?1)` calling a group defined further to the right, or a named
// backreference written before its `(?<name>...)`) are syntactically
// valid, so the parser cannot reject an unresolved reference on sight.
type registry struct {
	captures  []ast.CaptureInfo
	byName    map[string][]int // name -> indices into captures, duplicates allowed under /J
	nextIndex int
}

func newRegistry() *registry {
	return &registry{byName: make(map[string][]int), nextIndex: 1}
}

// reserve allocates the next capture index for a newly opened capturing or
// named group and records it. pos is the group's opening position.
func (r *registry) reserve(name string, pos ast.Position) int {
	idx := r.nextIndex
	r.nextIndex++
	r.captures = append(r.captures, ast.CaptureInfo{Index: idx, Name: name, Pos: pos})
	if name != "" {
		r.byName[name] = append(r.byName[name], idx)
	}
	return idx
}

// Captures returns the finished registry, in capture-number order.
func (r *registry) Captures() []ast.CaptureInfo { return r.captures }
