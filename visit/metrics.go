package visit

import "github.com/regexray/regexray/ast"

// Metrics is a plain structural census of a pattern: per-kind node
// counts, capture-group count, and tree depth -- purely descriptive,
// unlike ComplexityScore's weighted cost estimate.
type Metrics struct {
	NodeCounts     map[string]int
	CaptureGroups  int
	NamedCaptures  int
	Alternations   int
	Depth          int

	depth int
}

// NewMetrics returns a fresh Metrics accumulator.
func NewMetrics() *Metrics {
	return &Metrics{NodeCounts: map[string]int{}}
}

// ComputeMetrics walks re and returns its structural census.
func ComputeMetrics(re *ast.Regex) (*Metrics, error) {
	m := NewMetrics()
	if err := re.Accept(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) count(kind string, n ast.Node) error {
	m.NodeCounts[kind]++
	m.depth++
	if m.depth > m.Depth {
		m.Depth = m.depth
	}
	defer func() { m.depth-- }()
	for _, child := range n.Children() {
		if child == nil {
			continue
		}
		if err := child.Accept(m); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) VisitRegex(n *ast.Regex) error { return m.count("Regex", n) }
func (m *Metrics) VisitSequence(n *ast.Sequence) error { return m.count("Sequence", n) }

func (m *Metrics) VisitAlternation(n *ast.Alternation) error {
	m.Alternations++
	return m.count("Alternation", n)
}

func (m *Metrics) VisitGroup(n *ast.Group) error {
	if n.Type == ast.GroupCapturing || n.Type == ast.GroupNamed {
		m.CaptureGroups++
	}
	if n.Type == ast.GroupNamed {
		m.NamedCaptures++
	}
	return m.count("Group", n)
}

func (m *Metrics) VisitQuantifier(n *ast.Quantifier) error         { return m.count("Quantifier", n) }
func (m *Metrics) VisitLiteral(n *ast.Literal) error               { return m.count("Literal", n) }
func (m *Metrics) VisitCharLiteral(n *ast.CharLiteral) error       { return m.count("CharLiteral", n) }
func (m *Metrics) VisitDot(n *ast.Dot) error                       { return m.count("Dot", n) }
func (m *Metrics) VisitAnchor(n *ast.Anchor) error                 { return m.count("Anchor", n) }
func (m *Metrics) VisitAssertion(n *ast.Assertion) error           { return m.count("Assertion", n) }
func (m *Metrics) VisitCharType(n *ast.CharType) error             { return m.count("CharType", n) }
func (m *Metrics) VisitUnicodeProp(n *ast.UnicodeProp) error       { return m.count("UnicodeProp", n) }
func (m *Metrics) VisitPosixClass(n *ast.PosixClass) error         { return m.count("PosixClass", n) }
func (m *Metrics) VisitCharClass(n *ast.CharClass) error           { return m.count("CharClass", n) }
func (m *Metrics) VisitRange(n *ast.Range) error                   { return m.count("Range", n) }
func (m *Metrics) VisitClassOperation(n *ast.ClassOperation) error { return m.count("ClassOperation", n) }
func (m *Metrics) VisitBackref(n *ast.Backref) error               { return m.count("Backref", n) }
func (m *Metrics) VisitControlChar(n *ast.ControlChar) error       { return m.count("ControlChar", n) }
func (m *Metrics) VisitKeep(n *ast.Keep) error                     { return m.count("Keep", n) }
func (m *Metrics) VisitComment(n *ast.Comment) error               { return m.count("Comment", n) }
func (m *Metrics) VisitConditional(n *ast.Conditional) error       { return m.count("Conditional", n) }
func (m *Metrics) VisitDefine(n *ast.Define) error                 { return m.count("Define", n) }
func (m *Metrics) VisitSubroutine(n *ast.Subroutine) error         { return m.count("Subroutine", n) }
func (m *Metrics) VisitScriptRun(n *ast.ScriptRun) error           { return m.count("ScriptRun", n) }
func (m *Metrics) VisitVersionCondition(n *ast.VersionCondition) error {
	return m.count("VersionCondition", n)
}
func (m *Metrics) VisitPcreVerb(n *ast.PcreVerb) error     { return m.count("PcreVerb", n) }
func (m *Metrics) VisitCallout(n *ast.Callout) error       { return m.count("Callout", n) }
func (m *Metrics) VisitLimitMatch(n *ast.LimitMatch) error { return m.count("LimitMatch", n) }
