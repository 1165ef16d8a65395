package visit

import (
	"fmt"

	"github.com/regexray/regexray/ast"
)

// Issue is one Validator finding: a stable dotted code plus a
// human-readable message and the byte span it anchors to.
type Issue struct {
	Code    string
	Message string
	Pos     ast.Position
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s (%d-%d)", i.Code, i.Message, i.Pos.Start, i.Pos.End)
}

// Validator enforces the AST invariants: capturing-group shape, backref/
// subroutine targets resolve to something defined in the tree, and
// quantifiers only ever apply to a quantifiable node. It reports findings
// rather than stopping at the first one -- a single pattern commonly
// trips more than one rule at once.
type Validator struct {
	captures map[string]bool // known capture names and "#<index>" numeric keys
	issues   []Issue
}

// NewValidator builds a Validator primed with the capture registry the
// parser assembled while building re (parser.Result.Captures).
func NewValidator(captures []ast.CaptureInfo) *Validator {
	known := make(map[string]bool, len(captures)*2)
	for _, c := range captures {
		known[fmt.Sprintf("#%d", c.Index)] = true
		if c.Name != "" {
			known[c.Name] = true
		}
	}
	return &Validator{captures: known}
}

// Validate walks re and returns every invariant violation found.
func Validate(re *ast.Regex, captures []ast.CaptureInfo) []Issue {
	v := NewValidator(captures)
	_ = re.Accept(v)
	return v.issues
}

func (v *Validator) report(code, msg string, pos ast.Position) {
	v.issues = append(v.issues, Issue{Code: code, Message: msg, Pos: pos})
}

func (v *Validator) checkSpan(n ast.Node) {
	pos := n.Span()
	if pos.Start > pos.End {
		v.report("regex.lint.position.inverted", fmt.Sprintf("start %d > end %d", pos.Start, pos.End), pos)
	}
}

// isQuantifiable rejects the node kinds spec.md names as never
// quantifiable: another quantifier, an anchor, `\K`, and PCRE verbs.
func isQuantifiable(n ast.Node) bool {
	switch n.(type) {
	case *ast.Quantifier, *ast.Anchor, *ast.Keep, *ast.PcreVerb:
		return false
	default:
		return true
	}
}

func (v *Validator) visitChildren(n ast.Node) error {
	for _, child := range n.Children() {
		if err := child.Accept(v); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) VisitRegex(n *ast.Regex) error {
	v.checkSpan(n)
	if n.Pattern != nil {
		return n.Pattern.Accept(v)
	}
	return nil
}

func (v *Validator) VisitSequence(n *ast.Sequence) error {
	v.checkSpan(n)
	var prevEnd uint32
	first := true
	for _, child := range n.Children_ {
		pos := child.Span()
		if !first && pos.Start < prevEnd {
			v.report("regex.lint.sequence.overlap", "sibling spans are not monotone non-decreasing", pos)
		}
		first = false
		prevEnd = pos.End
		if err := child.Accept(v); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) VisitAlternation(n *ast.Alternation) error {
	v.checkSpan(n)
	if len(n.Alternatives) < 2 {
		v.report("regex.lint.alternation.singlebranch", "alternation must have at least two branches", n.Span())
	}
	for _, alt := range n.Alternatives {
		if err := alt.Accept(v); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) VisitGroup(n *ast.Group) error {
	v.checkSpan(n)
	if n.Type == ast.GroupNamed && n.Name == "" {
		v.report("regex.lint.group.missingname", "named group has no name", n.Span())
	}
	if n.Type != ast.GroupNamed && n.Name != "" {
		v.report("regex.lint.group.strayname", "name set on a non-named group", n.Span())
	}
	if n.Type == ast.GroupInlineFlags && n.Flags == nil {
		v.report("regex.lint.group.missingflags", "inline-flags group has no flags", n.Span())
	}
	if n.Type != ast.GroupInlineFlags && n.Type != ast.GroupNonCapturing && n.Flags != nil {
		v.report("regex.lint.group.strayflags", "flags set on a group that doesn't carry scoped flags", n.Span())
	}
	if n.Child != nil {
		return n.Child.Accept(v)
	}
	return nil
}

func (v *Validator) VisitQuantifier(n *ast.Quantifier) error {
	v.checkSpan(n)
	if n.Kind == ast.QuantCounted && n.Max != -1 && n.Min > n.Max {
		v.report("regex.lint.quantifier.minmax", fmt.Sprintf("min %d > max %d", n.Min, n.Max), n.Span())
	}
	if n.Node != nil {
		if !isQuantifiable(n.Node) {
			v.report("regex.lint.quantifier.notquantifiable", "quantifier applied to a non-quantifiable atom", n.Span())
		}
		if inner, ok := n.Node.(*ast.Quantifier); ok && inner.Kind != ast.QuantCounted {
			v.report("regex.lint.quantifier.nested", "nested unbounded quantifier", n.Span())
		}
		return n.Node.Accept(v)
	}
	return nil
}

func (v *Validator) VisitLiteral(n *ast.Literal) error      { v.checkSpan(n); return nil }
func (v *Validator) VisitCharLiteral(n *ast.CharLiteral) error { v.checkSpan(n); return nil }
func (v *Validator) VisitDot(n *ast.Dot) error               { v.checkSpan(n); return nil }
func (v *Validator) VisitAnchor(n *ast.Anchor) error         { v.checkSpan(n); return nil }
func (v *Validator) VisitAssertion(n *ast.Assertion) error   { v.checkSpan(n); return nil }
func (v *Validator) VisitCharType(n *ast.CharType) error     { v.checkSpan(n); return nil }
func (v *Validator) VisitUnicodeProp(n *ast.UnicodeProp) error { v.checkSpan(n); return nil }
func (v *Validator) VisitPosixClass(n *ast.PosixClass) error { v.checkSpan(n); return nil }

func (v *Validator) VisitCharClass(n *ast.CharClass) error {
	v.checkSpan(n)
	if n.Expression != nil {
		return n.Expression.Accept(v)
	}
	return nil
}

func (v *Validator) VisitRange(n *ast.Range) error {
	v.checkSpan(n)
	return v.visitChildren(n)
}

func (v *Validator) VisitClassOperation(n *ast.ClassOperation) error {
	v.checkSpan(n)
	return v.visitChildren(n)
}

func (v *Validator) VisitBackref(n *ast.Backref) error {
	v.checkSpan(n)
	switch {
	case n.ByName:
		if !v.captures[n.Ref] {
			v.report("regex.lint.backref.undefined", fmt.Sprintf("backreference to undefined group %q", n.Ref), n.Span())
		}
	case n.Relative:
		// Relative references ("\g{-1}", "\g{+1}") resolve against the
		// capture count in scope at this point in the pattern, which this
		// single-pass registry doesn't track -- skip rather than false-flag.
	default:
		if !v.captures["#"+n.Ref] {
			v.report("regex.lint.backref.undefined", fmt.Sprintf("backreference to undefined group %q", n.Ref), n.Span())
		}
	}
	return nil
}

func (v *Validator) VisitControlChar(n *ast.ControlChar) error { v.checkSpan(n); return nil }
func (v *Validator) VisitKeep(n *ast.Keep) error               { v.checkSpan(n); return nil }
func (v *Validator) VisitComment(n *ast.Comment) error         { v.checkSpan(n); return nil }

func (v *Validator) VisitConditional(n *ast.Conditional) error {
	v.checkSpan(n)
	if n.Condition != nil {
		if err := n.Condition.Accept(v); err != nil {
			return err
		}
	}
	if n.Yes != nil {
		if err := n.Yes.Accept(v); err != nil {
			return err
		}
	}
	if n.No != nil {
		return n.No.Accept(v)
	}
	return nil
}

func (v *Validator) VisitDefine(n *ast.Define) error {
	v.checkSpan(n)
	if n.Content != nil {
		return n.Content.Accept(v)
	}
	return nil
}

func (v *Validator) VisitSubroutine(n *ast.Subroutine) error {
	v.checkSpan(n)
	// Recursive targets "R" (whole-pattern recursion) and "0" (recurse
	// into group 0) always refer to the pattern itself, not a specific
	// capture -- nothing to resolve.
	if n.Recursive {
		return nil
	}
	if n.ByName {
		if !v.captures[n.Target] {
			v.report("regex.lint.subroutine.undefined", fmt.Sprintf("subroutine call to undefined group %q", n.Target), n.Span())
		}
		return nil
	}
	if isUnsignedDigits(n.Target) && !v.captures["#"+n.Target] {
		v.report("regex.lint.subroutine.undefined", fmt.Sprintf("subroutine call to undefined group %q", n.Target), n.Span())
	}
	return nil
}

func isUnsignedDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (v *Validator) VisitScriptRun(n *ast.ScriptRun) error {
	v.checkSpan(n)
	if n.Content != nil {
		return n.Content.Accept(v)
	}
	return nil
}

func (v *Validator) VisitVersionCondition(n *ast.VersionCondition) error { v.checkSpan(n); return nil }

func (v *Validator) VisitPcreVerb(n *ast.PcreVerb) error   { v.checkSpan(n); return nil }
func (v *Validator) VisitCallout(n *ast.Callout) error     { v.checkSpan(n); return nil }
func (v *Validator) VisitLimitMatch(n *ast.LimitMatch) error { v.checkSpan(n); return nil }
