package visit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/regexray/regexray/ast"
)

// Dumper renders an AST as an indented, human-readable tree -- one line
// per node, following Children() rather than hand-visiting each node
// kind's specific fields, the way nfa/nfa.go's per-kind String() dumps a
// compiled automaton's states.
type Dumper struct {
	b     strings.Builder
	depth int
}

// NewDumper returns a ready-to-use Dumper.
func NewDumper() *Dumper { return &Dumper{} }

// Dump renders re's tree as indented text.
func Dump(re *ast.Regex) (string, error) {
	d := NewDumper()
	if err := re.Accept(d); err != nil {
		return "", err
	}
	return d.b.String(), nil
}

func (d *Dumper) line(label string) {
	d.b.WriteString(strings.Repeat("  ", d.depth))
	d.b.WriteString(label)
	d.b.WriteByte('\n')
}

func (d *Dumper) visitChildren(n ast.Node) error {
	d.depth++
	defer func() { d.depth-- }()
	for _, c := range n.Children() {
		if c == nil {
			continue
		}
		if err := c.Accept(d); err != nil {
			return err
		}
	}
	return nil
}

// label describes n's kind and distinguishing fields in one short line,
// independent of its children (which the caller renders by recursing).
func label(n ast.Node) string {
	switch v := n.(type) {
	case *ast.Regex:
		return fmt.Sprintf("Regex(delim=%q flags=%q)", v.Delimiter, v.Flags.String())
	case *ast.Sequence:
		return fmt.Sprintf("Sequence(%d)", len(v.Children_))
	case *ast.Alternation:
		return fmt.Sprintf("Alternation(%d)", len(v.Alternatives))
	case *ast.Group:
		return fmt.Sprintf("Group(type=%d name=%q)", v.Type, v.Name)
	case *ast.Quantifier:
		return fmt.Sprintf("Quantifier(kind=%d min=%d max=%d mode=%d)", v.Kind, v.Min, v.Max, v.Mode)
	case *ast.Literal:
		return fmt.Sprintf("Literal(%q raw=%v)", v.Value, v.IsRaw)
	case *ast.CharLiteral:
		return fmt.Sprintf("CharLiteral(%q cp=U+%04X)", v.Original, v.CodePoint)
	case *ast.Dot:
		return "Dot"
	case *ast.Anchor:
		return fmt.Sprintf("Anchor(kind=%d)", v.Kind)
	case *ast.Assertion:
		return fmt.Sprintf("Assertion(kind=%d)", v.Kind)
	case *ast.CharType:
		return fmt.Sprintf("CharType(kind=%d)", v.Kind)
	case *ast.UnicodeProp:
		return fmt.Sprintf("UnicodeProp(%q negated=%v)", v.Prop, v.Negated)
	case *ast.PosixClass:
		return fmt.Sprintf("PosixClass(%q negated=%v)", v.Name, v.Negated)
	case *ast.CharClass:
		return fmt.Sprintf("CharClass(negated=%v)", v.IsNegated)
	case *ast.Range:
		return "Range"
	case *ast.ClassOperation:
		return fmt.Sprintf("ClassOperation(type=%d)", v.Type)
	case *ast.Backref:
		return fmt.Sprintf("Backref(%q byName=%v relative=%v)", v.Ref, v.ByName, v.Relative)
	case *ast.ControlChar:
		return fmt.Sprintf("ControlChar(%q)", v.Char)
	case *ast.Keep:
		return "Keep"
	case *ast.Comment:
		return fmt.Sprintf("Comment(%q)", v.Text)
	case *ast.Conditional:
		return "Conditional"
	case *ast.Define:
		return "Define"
	case *ast.Subroutine:
		return fmt.Sprintf("Subroutine(%q byName=%v recursive=%v)", v.Target, v.ByName, v.Recursive)
	case *ast.ScriptRun:
		return fmt.Sprintf("ScriptRun(atomic=%v)", v.Atomic)
	case *ast.VersionCondition:
		return fmt.Sprintf("VersionCondition(op=%d %d.%d)", v.Op, v.Major, v.Minor)
	case *ast.PcreVerb:
		return fmt.Sprintf("PcreVerb(%s hasArg=%v)", v.Verb, v.HasArg)
	case *ast.Callout:
		return fmt.Sprintf("Callout(%q)", v.ID)
	case *ast.LimitMatch:
		return fmt.Sprintf("LimitMatch(%d)", v.Limit)
	default:
		return fmt.Sprintf("%T", n)
	}
}

func (d *Dumper) visit(n ast.Node) error {
	d.line(label(n))
	return d.visitChildren(n)
}

func (d *Dumper) VisitRegex(n *ast.Regex) error             { return d.visit(n) }
func (d *Dumper) VisitSequence(n *ast.Sequence) error       { return d.visit(n) }
func (d *Dumper) VisitAlternation(n *ast.Alternation) error { return d.visit(n) }
func (d *Dumper) VisitGroup(n *ast.Group) error             { return d.visit(n) }
func (d *Dumper) VisitQuantifier(n *ast.Quantifier) error   { return d.visit(n) }
func (d *Dumper) VisitLiteral(n *ast.Literal) error         { return d.visit(n) }
func (d *Dumper) VisitCharLiteral(n *ast.CharLiteral) error { return d.visit(n) }
func (d *Dumper) VisitDot(n *ast.Dot) error                 { return d.visit(n) }
func (d *Dumper) VisitAnchor(n *ast.Anchor) error           { return d.visit(n) }
func (d *Dumper) VisitAssertion(n *ast.Assertion) error     { return d.visit(n) }
func (d *Dumper) VisitCharType(n *ast.CharType) error       { return d.visit(n) }
func (d *Dumper) VisitUnicodeProp(n *ast.UnicodeProp) error { return d.visit(n) }
func (d *Dumper) VisitPosixClass(n *ast.PosixClass) error   { return d.visit(n) }
func (d *Dumper) VisitCharClass(n *ast.CharClass) error     { return d.visit(n) }
func (d *Dumper) VisitRange(n *ast.Range) error             { return d.visit(n) }
func (d *Dumper) VisitClassOperation(n *ast.ClassOperation) error { return d.visit(n) }
func (d *Dumper) VisitBackref(n *ast.Backref) error         { return d.visit(n) }
func (d *Dumper) VisitControlChar(n *ast.ControlChar) error { return d.visit(n) }
func (d *Dumper) VisitKeep(n *ast.Keep) error                 { return d.visit(n) }
func (d *Dumper) VisitComment(n *ast.Comment) error           { return d.visit(n) }
func (d *Dumper) VisitConditional(n *ast.Conditional) error   { return d.visit(n) }
func (d *Dumper) VisitDefine(n *ast.Define) error             { return d.visit(n) }
func (d *Dumper) VisitSubroutine(n *ast.Subroutine) error     { return d.visit(n) }
func (d *Dumper) VisitScriptRun(n *ast.ScriptRun) error       { return d.visit(n) }
func (d *Dumper) VisitVersionCondition(n *ast.VersionCondition) error { return d.visit(n) }
func (d *Dumper) VisitPcreVerb(n *ast.PcreVerb) error     { return d.visit(n) }
func (d *Dumper) VisitCallout(n *ast.Callout) error       { return d.visit(n) }
func (d *Dumper) VisitLimitMatch(n *ast.LimitMatch) error { return d.visit(n) }

// DumpMermaid renders re's tree as a Mermaid flowchart (`graph TD`), one
// node per AST node and one edge per parent/child link -- generic over
// Children() the same way ast.Walk is, needing no per-kind dispatch.
func DumpMermaid(re *ast.Regex) string {
	var b strings.Builder
	b.WriteString("graph TD\n")
	id := 0
	ids := map[ast.Node]string{}
	nodeID := func(n ast.Node) string {
		if existing, ok := ids[n]; ok {
			return existing
		}
		id++
		nid := "n" + strconv.Itoa(id)
		ids[n] = nid
		return nid
	}
	ast.Walk(re, func(n ast.Node) {
		nid := nodeID(n)
		b.WriteString(fmt.Sprintf("  %s[%q]\n", nid, label(n)))
	})
	ast.Walk(re, func(n ast.Node) {
		pid := nodeID(n)
		for _, c := range n.Children() {
			if c == nil {
				continue
			}
			b.WriteString(fmt.Sprintf("  %s --> %s\n", pid, nodeID(c)))
		}
	})
	return b.String()
}
