// Package ast defines the typed syntax tree the parser produces: a closed
// sum of node kinds, each carrying a byte-accurate [Start,End) span into
// the original pattern source, plus the Visitor interface every downstream
// component (compiler, optimizer, validator, ReDoS analyzer, transpilers,
// automata solver) dispatches through.
//
// The sum is closed by convention, not by the type system (Go has no sealed
// interfaces): every concrete node type lives in this package, implements
// node, and Visitor declares one method per concrete type. Adding a node
// kind means touching every visitor at once -- the compile error surfaces
// immediately instead of the silent "unimplemented" panics the reference
// engine this was distilled from relies on at runtime.
package ast

// Position is a byte-accurate half-open span [Start, End) into the
// original pattern source.
type Position struct {
	Start, End uint32
}

// Node is implemented by every concrete AST node type.
type Node interface {
	// Span returns the node's byte-accurate position in the source.
	Span() Position

	// Accept dispatches to the matching Visitor method and returns
	// whatever error that method produces (nil for well-formed visitors
	// that accumulate findings rather than fail outright).
	Accept(v Visitor) error

	// Children returns the node's immediate child nodes in source order,
	// for visitors that only need generic tree structure (Dumper,
	// Metrics, the Mermaid graph exporter) rather than per-kind
	// semantics.
	Children() []Node
}

// Base is embedded by every concrete node type to provide Span() and carry
// the byte span without repeating the two fields everywhere.
type Base struct {
	Pos Position
}

// Span implements Node.
func (b Base) Span() Position { return b.Pos }
