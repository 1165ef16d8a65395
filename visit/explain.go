package visit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/regexray/regexray/ast"
)

// Explain renders an AST as an English sentence fragment, accumulating a
// single phrase on e.result the same way Compiler accumulates source text,
// using the same fresh-sub-visitor-per-child pattern for composing a
// parent's phrase out of its children's.
type Explain struct {
	result string
}

// NewExplain returns a fresh Explain accumulator.
func NewExplain() *Explain { return &Explain{} }

// ExplainPattern describes re in plain English.
func ExplainPattern(re *ast.Regex) (string, error) {
	e := NewExplain()
	if err := re.Accept(e); err != nil {
		return "", err
	}
	return e.result, nil
}

func (e *Explain) child(n ast.Node) (string, error) {
	if n == nil {
		return "", nil
	}
	sub := &Explain{}
	if err := n.Accept(sub); err != nil {
		return "", err
	}
	return sub.result, nil
}

func (e *Explain) VisitRegex(n *ast.Regex) error {
	body, err := e.child(n.Pattern)
	if err != nil {
		return err
	}
	var mods []string
	if n.Flags.Has(ast.FlagCaseless) {
		mods = append(mods, "case-insensitively")
	}
	if n.Flags.Has(ast.FlagMultiline) {
		mods = append(mods, "in multiline mode")
	}
	if n.Flags.Has(ast.FlagDotAll) {
		mods = append(mods, "with . matching newlines")
	}
	if n.Flags.Has(ast.FlagExtended) {
		mods = append(mods, "in extended (free-spacing) mode")
	}
	if len(mods) == 0 {
		e.result = "match " + body
		return nil
	}
	e.result = "match " + body + " " + strings.Join(mods, ", ")
	return nil
}

func (e *Explain) VisitSequence(n *ast.Sequence) error {
	parts := make([]string, 0, len(n.Children_))
	for _, c := range n.Children_ {
		p, err := e.child(c)
		if err != nil {
			return err
		}
		if p != "" {
			parts = append(parts, p)
		}
	}
	e.result = strings.Join(parts, ", then ")
	return nil
}

func (e *Explain) VisitAlternation(n *ast.Alternation) error {
	parts := make([]string, len(n.Alternatives))
	for i, alt := range n.Alternatives {
		p, err := e.child(alt)
		if err != nil {
			return err
		}
		parts[i] = p
	}
	e.result = "either " + strings.Join(parts, ", or ")
	return nil
}

func (e *Explain) VisitGroup(n *ast.Group) error {
	inner, err := e.child(n.Child)
	if err != nil {
		return err
	}
	switch n.Type {
	case ast.GroupCapturing:
		e.result = fmt.Sprintf("capture (group %d) %s", n.CaptureIndex, inner)
	case ast.GroupNamed:
		e.result = fmt.Sprintf("capture %s as %q", inner, n.Name)
	case ast.GroupNonCapturing:
		e.result = inner
	case ast.GroupAtomic:
		e.result = "atomically, " + inner
	case ast.GroupLookaheadPositive:
		e.result = "followed by " + inner
	case ast.GroupLookaheadNegative:
		e.result = "not followed by " + inner
	case ast.GroupLookbehindPositive:
		e.result = "preceded by " + inner
	case ast.GroupLookbehindNegative:
		e.result = "not preceded by " + inner
	case ast.GroupInlineFlags:
		e.result = "with flags set"
	case ast.GroupBranchReset:
		e.result = "one of " + inner
	default:
		e.result = inner
	}
	return nil
}

func (e *Explain) VisitQuantifier(n *ast.Quantifier) error {
	inner, err := e.child(n.Node)
	if err != nil {
		return err
	}
	var times string
	switch n.Kind {
	case ast.QuantStar:
		times = "zero or more times"
	case ast.QuantPlus:
		times = "one or more times"
	case ast.QuantQuest:
		times = "zero or one time"
	case ast.QuantCounted:
		switch {
		case n.Max == -1:
			times = fmt.Sprintf("at least %d times", n.Min)
		case n.Min == n.Max:
			times = fmt.Sprintf("exactly %d times", n.Min)
		default:
			times = fmt.Sprintf("between %d and %d times", n.Min, n.Max)
		}
	}
	switch n.Mode {
	case ast.ModeLazy:
		times += ", as few as possible"
	case ast.ModePossessive:
		times += ", possessively"
	}
	e.result = fmt.Sprintf("%s, %s", inner, times)
	return nil
}

func (e *Explain) VisitLiteral(n *ast.Literal) error {
	e.result = fmt.Sprintf("%q", n.Value)
	return nil
}

func (e *Explain) VisitCharLiteral(n *ast.CharLiteral) error {
	e.result = fmt.Sprintf("the character %q", string(n.CodePoint))
	return nil
}

func (e *Explain) VisitDot(n *ast.Dot) error {
	e.result = "any character"
	return nil
}

func (e *Explain) VisitAnchor(n *ast.Anchor) error {
	if n.Kind == ast.AnchorCaret {
		e.result = "the start of the line"
	} else {
		e.result = "the end of the line"
	}
	return nil
}

func (e *Explain) VisitAssertion(n *ast.Assertion) error {
	switch n.Kind {
	case ast.AssertStartText:
		e.result = "the start of the subject"
	case ast.AssertEndText:
		e.result = "the end of the subject"
	case ast.AssertEndTextNL:
		e.result = "the end of the subject (or before a trailing newline)"
	case ast.AssertPrevMatchEnd:
		e.result = "the end of the previous match"
	case ast.AssertWordBoundary:
		e.result = "a word boundary"
	case ast.AssertNotWordBoundary:
		e.result = "a non-word-boundary position"
	case ast.AssertWordBoundaryG:
		e.result = "a Unicode-aware word boundary"
	case ast.AssertNotWordBoundaryG:
		e.result = "a non-word Unicode-aware boundary"
	}
	return nil
}

func (e *Explain) VisitCharType(n *ast.CharType) error {
	names := map[ast.CharTypeKind]string{
		ast.CTDigit: "a digit", ast.CTNotDigit: "a non-digit",
		ast.CTSpace: "whitespace", ast.CTNotSpace: "non-whitespace",
		ast.CTWord: "a word character", ast.CTNotWord: "a non-word character",
		ast.CTHorizSpace: "horizontal whitespace", ast.CTNotHorizSpace: "non-horizontal-whitespace",
		ast.CTVertSpace: "vertical whitespace", ast.CTNotVertSpace: "non-vertical-whitespace",
		ast.CTNewlineSeq: "a newline sequence",
	}
	e.result = names[n.Kind]
	return nil
}

func (e *Explain) VisitUnicodeProp(n *ast.UnicodeProp) error {
	if n.Negated {
		e.result = fmt.Sprintf("a character not in Unicode property %s", n.Prop)
		return nil
	}
	e.result = fmt.Sprintf("a character in Unicode property %s", n.Prop)
	return nil
}

func (e *Explain) VisitPosixClass(n *ast.PosixClass) error {
	if n.Negated {
		e.result = "not in POSIX class [:" + n.Name + ":]"
		return nil
	}
	e.result = "in POSIX class [:" + n.Name + ":]"
	return nil
}

func (e *Explain) VisitCharClass(n *ast.CharClass) error {
	inner, err := e.child(n.Expression)
	if err != nil {
		return err
	}
	if n.IsNegated {
		e.result = "any character except " + inner
		return nil
	}
	e.result = "one of " + inner
	return nil
}

func (e *Explain) VisitRange(n *ast.Range) error {
	lo, err := e.child(n.Start)
	if err != nil {
		return err
	}
	hi, err := e.child(n.End)
	if err != nil {
		return err
	}
	e.result = fmt.Sprintf("%s through %s", lo, hi)
	return nil
}

func (e *Explain) VisitClassOperation(n *ast.ClassOperation) error {
	left, err := e.child(n.Left)
	if err != nil {
		return err
	}
	right, err := e.child(n.Right)
	if err != nil {
		return err
	}
	if n.Type == ast.ClassOpIntersection {
		e.result = left + " intersected with " + right
		return nil
	}
	e.result = left + " minus " + right
	return nil
}

func (e *Explain) VisitBackref(n *ast.Backref) error {
	if n.ByName {
		e.result = fmt.Sprintf("the same text matched by group %q", n.Ref)
		return nil
	}
	e.result = fmt.Sprintf("the same text matched by group %s", n.Ref)
	return nil
}

func (e *Explain) VisitControlChar(n *ast.ControlChar) error {
	e.result = "control character " + strconv.Itoa(int(n.Char))
	return nil
}

func (e *Explain) VisitKeep(n *ast.Keep) error {
	e.result = "reset the reported match start here"
	return nil
}

func (e *Explain) VisitComment(n *ast.Comment) error {
	e.result = ""
	return nil
}

func (e *Explain) VisitConditional(n *ast.Conditional) error {
	cond, err := e.child(n.Condition)
	if err != nil {
		return err
	}
	yes, err := e.child(n.Yes)
	if err != nil {
		return err
	}
	if n.No == nil {
		e.result = fmt.Sprintf("if %s, then %s", cond, yes)
		return nil
	}
	no, err := e.child(n.No)
	if err != nil {
		return err
	}
	e.result = fmt.Sprintf("if %s, then %s, otherwise %s", cond, yes, no)
	return nil
}

func (e *Explain) VisitDefine(n *ast.Define) error {
	e.result = "(definitions only, matches nothing directly)"
	return nil
}

func (e *Explain) VisitSubroutine(n *ast.Subroutine) error {
	switch {
	case n.Recursive && n.Target == "0":
		e.result = "recurse into the whole pattern"
	case n.Recursive:
		e.result = "recurse into the whole pattern"
	case n.ByName:
		e.result = fmt.Sprintf("run group %q again", n.Target)
	default:
		e.result = fmt.Sprintf("run group %s again", n.Target)
	}
	return nil
}

func (e *Explain) VisitScriptRun(n *ast.ScriptRun) error {
	inner, err := e.child(n.Content)
	if err != nil {
		return err
	}
	if n.Atomic {
		e.result = fmt.Sprintf("atomically, %s, all from the same script", inner)
		return nil
	}
	e.result = fmt.Sprintf("%s, all from the same script", inner)
	return nil
}

func (e *Explain) VisitVersionCondition(n *ast.VersionCondition) error {
	op := ">="
	if n.Op == ast.VersionEQ {
		op = "=="
	}
	e.result = fmt.Sprintf("PCRE2 version %s %d.%d", op, n.Major, n.Minor)
	return nil
}

func (e *Explain) VisitPcreVerb(n *ast.PcreVerb) error {
	if n.HasArg {
		e.result = fmt.Sprintf("backtracking control verb %s with argument %q", n.Verb, n.Arg)
		return nil
	}
	e.result = fmt.Sprintf("backtracking control verb %s", n.Verb)
	return nil
}

func (e *Explain) VisitCallout(n *ast.Callout) error {
	e.result = "invoke callout " + n.ID
	return nil
}

func (e *Explain) VisitLimitMatch(n *ast.LimitMatch) error {
	e.result = fmt.Sprintf("limit match attempts to %d", n.Limit)
	return nil
}
