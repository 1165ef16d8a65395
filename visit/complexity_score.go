package visit

import "github.com/regexray/regexray/ast"

// ComplexityScore is a structural cost estimate for a pattern -- not a
// ReDoS verdict (see package redos for that), just a rough "how much
// engine work does this pattern ask for" number used to flag patterns
// worth a closer look.
type ComplexityScore struct {
	NodeCount        int
	MaxDepth         int
	QuantifierCount  int
	UnboundedCount   int
	BacktrackingOps  int // lookarounds, backreferences, atomic groups, possessive quantifiers, subroutine calls
	Score            int

	depth int
}

// NewComplexityScore returns a fresh ComplexityScore accumulator.
func NewComplexityScore() *ComplexityScore { return &ComplexityScore{} }

// ScoreComplexity walks re and computes its ComplexityScore.
func ScoreComplexity(re *ast.Regex) (*ComplexityScore, error) {
	c := NewComplexityScore()
	if err := re.Accept(c); err != nil {
		return nil, err
	}
	c.Score = c.NodeCount + c.QuantifierCount*2 + c.UnboundedCount*4 + c.BacktrackingOps*8 + c.MaxDepth
	return c, nil
}

func (c *ComplexityScore) enter(n ast.Node) error {
	c.NodeCount++
	c.depth++
	if c.depth > c.MaxDepth {
		c.MaxDepth = c.depth
	}
	defer func() { c.depth-- }()
	for _, child := range n.Children() {
		if child == nil {
			continue
		}
		if err := child.Accept(c); err != nil {
			return err
		}
	}
	return nil
}

func (c *ComplexityScore) VisitRegex(n *ast.Regex) error             { return c.enter(n) }
func (c *ComplexityScore) VisitSequence(n *ast.Sequence) error       { return c.enter(n) }
func (c *ComplexityScore) VisitAlternation(n *ast.Alternation) error { return c.enter(n) }

func (c *ComplexityScore) VisitGroup(n *ast.Group) error {
	switch n.Type {
	case ast.GroupLookaheadPositive, ast.GroupLookaheadNegative,
		ast.GroupLookbehindPositive, ast.GroupLookbehindNegative, ast.GroupAtomic:
		c.BacktrackingOps++
	}
	return c.enter(n)
}

func (c *ComplexityScore) VisitQuantifier(n *ast.Quantifier) error {
	c.QuantifierCount++
	if n.Kind != ast.QuantCounted || n.Max == -1 {
		c.UnboundedCount++
	}
	if n.Mode == ast.ModePossessive {
		c.BacktrackingOps++
	}
	return c.enter(n)
}

func (c *ComplexityScore) VisitLiteral(n *ast.Literal) error      { return c.enter(n) }
func (c *ComplexityScore) VisitCharLiteral(n *ast.CharLiteral) error { return c.enter(n) }
func (c *ComplexityScore) VisitDot(n *ast.Dot) error               { return c.enter(n) }
func (c *ComplexityScore) VisitAnchor(n *ast.Anchor) error         { return c.enter(n) }
func (c *ComplexityScore) VisitAssertion(n *ast.Assertion) error   { return c.enter(n) }
func (c *ComplexityScore) VisitCharType(n *ast.CharType) error     { return c.enter(n) }
func (c *ComplexityScore) VisitUnicodeProp(n *ast.UnicodeProp) error { return c.enter(n) }
func (c *ComplexityScore) VisitPosixClass(n *ast.PosixClass) error { return c.enter(n) }
func (c *ComplexityScore) VisitCharClass(n *ast.CharClass) error   { return c.enter(n) }
func (c *ComplexityScore) VisitRange(n *ast.Range) error           { return c.enter(n) }
func (c *ComplexityScore) VisitClassOperation(n *ast.ClassOperation) error { return c.enter(n) }

func (c *ComplexityScore) VisitBackref(n *ast.Backref) error {
	c.BacktrackingOps++
	return c.enter(n)
}

func (c *ComplexityScore) VisitControlChar(n *ast.ControlChar) error { return c.enter(n) }
func (c *ComplexityScore) VisitKeep(n *ast.Keep) error               { return c.enter(n) }
func (c *ComplexityScore) VisitComment(n *ast.Comment) error         { return c.enter(n) }
func (c *ComplexityScore) VisitConditional(n *ast.Conditional) error { return c.enter(n) }
func (c *ComplexityScore) VisitDefine(n *ast.Define) error           { return c.enter(n) }

func (c *ComplexityScore) VisitSubroutine(n *ast.Subroutine) error {
	c.BacktrackingOps++
	return c.enter(n)
}

func (c *ComplexityScore) VisitScriptRun(n *ast.ScriptRun) error { return c.enter(n) }
func (c *ComplexityScore) VisitVersionCondition(n *ast.VersionCondition) error { return c.enter(n) }
func (c *ComplexityScore) VisitPcreVerb(n *ast.PcreVerb) error     { return c.enter(n) }
func (c *ComplexityScore) VisitCallout(n *ast.Callout) error       { return c.enter(n) }
func (c *ComplexityScore) VisitLimitMatch(n *ast.LimitMatch) error { return c.enter(n) }
