// Package python is a transpile target: a CompileVisitor that renders an
// AST as a pattern string for Python's stdlib re module, grounded on
// visit.Compiler's accumulate-into-a-strings.Builder shape
// (github.com/regexray/regexray/visit), generalized the same way
// transpile/javascript is -- render the nearest equivalent, or fail with
// a typed diagnostic.
//
// Unlike JavaScript, Python's re module (3.11+) natively supports atomic
// groups and possessive quantifiers, so those pass straight through
// instead of raising transpile.Exception; it has no regex literal syntax,
// so global flags are rendered as a leading inline flag group
// ("(?im)...") rather than a trailing suffix.
package python

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/regexray/regexray/ast"
	"github.com/regexray/regexray/transpile"
)

// Compiler renders an AST as a Python re pattern string. Single-use:
// construct a fresh one per call via NewCompiler or Transpile.
type Compiler struct {
	out      strings.Builder
	err      error
	ctx      *transpile.Context
	pattern  string
	ungreedy bool // re.Flags.Has(FlagUngreedy): swap greedy<->lazy on render
}

// NewCompiler returns a ready-to-use Compiler sharing ctx for
// warnings/notes.
func NewCompiler(ctx *transpile.Context) *Compiler {
	return &Compiler{ctx: ctx}
}

// Transpile renders re as a transpile.Result targeting Python.
func Transpile(re *ast.Regex, pattern string) (*transpile.Result, error) {
	ctx := &transpile.Context{}
	c := NewCompiler(ctx)
	c.pattern = pattern
	c.ungreedy = re.Flags.Has(ast.FlagUngreedy)

	if err := re.Pattern.Accept(c); err != nil {
		return nil, err
	}
	if c.err != nil {
		return nil, c.err
	}

	flags := pyFlags(re.Flags)
	body := c.out.String()
	literal := body
	if flags != "" {
		literal = "(?" + flags + ")" + body
	}
	return &transpile.Result{
		Target:   transpile.Python,
		Pattern:  pattern,
		Flags:    flags,
		Literal:  literal,
		Warnings: ctx.Warnings,
		Notes:    ctx.Notes,
	}, nil
}

// pyFlags maps the PCRE2 flags with a direct Python re equivalent.
// FlagUnicode has no Python flag (str patterns are always Unicode); it
// is dropped silently. FlagUngreedy has no flag letter -- it is instead
// applied structurally by flipping every quantifier's greediness (see
// Compiler.ungreedy).
func pyFlags(fs ast.FlagSet) string {
	var b strings.Builder
	if fs.Has(ast.FlagCaseless) {
		b.WriteByte('i')
	}
	if fs.Has(ast.FlagMultiline) {
		b.WriteByte('m')
	}
	if fs.Has(ast.FlagDotAll) {
		b.WriteByte('s')
	}
	if fs.Has(ast.FlagExtended) {
		b.WriteByte('x')
	}
	return b.String()
}

func (c *Compiler) write(s string) {
	if c.err != nil {
		return
	}
	c.out.WriteString(s)
}

func (c *Compiler) fail(pos uint32, message string) error {
	if c.err == nil {
		c.err = &transpile.Exception{
			Target:  transpile.Python,
			Pattern: c.pattern,
			Pos:     pos,
			Message: message,
		}
	}
	return c.err
}

func (c *Compiler) sub(n ast.Node) (string, error) {
	if n == nil {
		return "", nil
	}
	sc := NewCompiler(c.ctx)
	sc.pattern = c.pattern
	sc.ungreedy = c.ungreedy
	if err := n.Accept(sc); err != nil {
		return "", err
	}
	if sc.err != nil {
		return "", sc.err
	}
	return sc.out.String(), nil
}

func (c *Compiler) VisitRegex(n *ast.Regex) error {
	if n.Pattern != nil {
		if err := n.Pattern.Accept(c); err != nil {
			return c.fail(n.Span().Start, err.Error())
		}
	}
	return c.err
}

func (c *Compiler) VisitSequence(n *ast.Sequence) error {
	for _, child := range n.Children_ {
		if err := child.Accept(c); err != nil {
			return err
		}
	}
	return c.err
}

func (c *Compiler) VisitAlternation(n *ast.Alternation) error {
	for i, alt := range n.Alternatives {
		if i > 0 {
			c.write("|")
		}
		if err := alt.Accept(c); err != nil {
			return err
		}
	}
	return c.err
}

func (c *Compiler) VisitGroup(n *ast.Group) error {
	switch n.Type {
	case ast.GroupInlineFlags:
		return c.fail(n.Span().Start, "Scoped inline flag groups not supported by Python's re module")
	case ast.GroupBranchReset:
		return c.fail(n.Span().Start, "Branch reset groups not supported by Python's re module")
	}
	body, err := c.sub(n.Child)
	if err != nil {
		return err
	}
	switch n.Type {
	case ast.GroupCapturing:
		c.write("(" + body + ")")
	case ast.GroupNonCapturing:
		c.write("(?:" + body + ")")
	case ast.GroupNamed:
		c.write("(?P<" + n.Name + ">" + body + ")")
	case ast.GroupLookaheadPositive:
		c.write("(?=" + body + ")")
	case ast.GroupLookaheadNegative:
		c.write("(?!" + body + ")")
	case ast.GroupLookbehindPositive:
		c.write("(?<=" + body + ")")
	case ast.GroupLookbehindNegative:
		c.write("(?<!" + body + ")")
	case ast.GroupAtomic:
		c.write("(?>" + body + ")")
	default:
		return c.fail(n.Span().Start, fmt.Sprintf("unknown group type %v", n.Type))
	}
	return c.err
}

func (c *Compiler) VisitQuantifier(n *ast.Quantifier) error {
	body, err := c.sub(n.Node)
	if err != nil {
		return err
	}
	c.write(body)
	switch n.Kind {
	case ast.QuantStar:
		c.write("*")
	case ast.QuantPlus:
		c.write("+")
	case ast.QuantQuest:
		c.write("?")
	default:
		if n.Max == n.Min {
			c.write("{" + strconv.Itoa(n.Min) + "}")
		} else if n.Max == -1 {
			c.write("{" + strconv.Itoa(n.Min) + ",}")
		} else {
			c.write("{" + strconv.Itoa(n.Min) + "," + strconv.Itoa(n.Max) + "}")
		}
	}
	mode := n.Mode
	if c.ungreedy {
		switch mode {
		case ast.ModeGreedy:
			mode = ast.ModeLazy
		case ast.ModeLazy:
			mode = ast.ModeGreedy
		}
	}
	switch mode {
	case ast.ModeLazy:
		c.write("?")
	case ast.ModePossessive:
		c.write("+")
	}
	return c.err
}

func escapeLiteral(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '.', '*', '+', '?', '(', ')', '[', ']', '{', '}', '^', '$', '|', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (c *Compiler) VisitLiteral(n *ast.Literal) error {
	c.write(escapeLiteral(n.Value))
	return c.err
}

func (c *Compiler) VisitCharLiteral(n *ast.CharLiteral) error {
	switch n.Type {
	case ast.CharOctalLegacy:
		return c.fail(n.Span().Start, "\\o{...} octal escapes not supported by Python's re module")
	case ast.CharOctal:
		c.write(n.Original)
	case ast.CharHex:
		if n.CodePoint <= 0xFF {
			c.write(fmt.Sprintf(`\x%02X`, n.CodePoint))
		} else if n.CodePoint <= 0xFFFF {
			c.write(fmt.Sprintf(`\u%04X`, n.CodePoint))
		} else {
			c.write(fmt.Sprintf(`\U%08X`, n.CodePoint))
		}
	default: // CharUnicode, CharUnicodeNamed
		if n.CodePoint <= 0xFFFF {
			c.write(fmt.Sprintf(`\u%04X`, n.CodePoint))
		} else {
			c.write(fmt.Sprintf(`\U%08X`, n.CodePoint))
		}
	}
	return c.err
}

func (c *Compiler) VisitDot(n *ast.Dot) error {
	c.write(".")
	return c.err
}

func (c *Compiler) VisitAnchor(n *ast.Anchor) error {
	if n.Kind == ast.AnchorDollar {
		c.write("$")
	} else {
		c.write("^")
	}
	return c.err
}

func (c *Compiler) VisitAssertion(n *ast.Assertion) error {
	switch n.Kind {
	case ast.AssertStartText:
		c.write(`\A`)
	case ast.AssertEndText:
		c.write(`\Z`)
	case ast.AssertEndTextNL:
		c.ctx.Warn("\\Z translated to Python's \\Z (which, unlike PCRE2's \\Z, never permits a trailing newline).")
		c.write(`\Z`)
	case ast.AssertWordBoundary:
		c.write(`\b`)
	case ast.AssertNotWordBoundary:
		c.write(`\B`)
	case ast.AssertPrevMatchEnd:
		return c.fail(n.Span().Start, "\\G has no Python re equivalent")
	case ast.AssertWordBoundaryG, ast.AssertNotWordBoundaryG:
		return c.fail(n.Span().Start, "Grapheme-cluster boundaries (\\b{g}, \\B{g}) not supported by Python's re module")
	default:
		return c.fail(n.Span().Start, fmt.Sprintf("unknown assertion kind %v", n.Kind))
	}
	return c.err
}

func (c *Compiler) VisitCharType(n *ast.CharType) error {
	switch n.Kind {
	case ast.CTDigit:
		c.write(`\d`)
	case ast.CTNotDigit:
		c.write(`\D`)
	case ast.CTSpace:
		c.write(`\s`)
	case ast.CTNotSpace:
		c.write(`\S`)
	case ast.CTWord:
		c.write(`\w`)
	case ast.CTNotWord:
		c.write(`\W`)
	case ast.CTHorizSpace, ast.CTNotHorizSpace, ast.CTVertSpace, ast.CTNotVertSpace, ast.CTNewlineSeq:
		return c.fail(n.Span().Start, "Horizontal/vertical whitespace and newline-sequence escapes (\\h, \\v, \\R) not supported by Python's re module")
	default:
		return c.fail(n.Span().Start, fmt.Sprintf("unknown char type kind %v", n.Kind))
	}
	return c.err
}

func (c *Compiler) VisitUnicodeProp(n *ast.UnicodeProp) error {
	return c.fail(n.Span().Start, "Unicode property escapes (\\p{...}) not supported by Python's stdlib re module (available only via the third-party regex package)")
}

var posixToClassBody = map[string]string{
	"alpha":  "A-Za-z",
	"digit":  "0-9",
	"alnum":  "A-Za-z0-9",
	"upper":  "A-Z",
	"lower":  "a-z",
	"space":  " \\t\\n\\r\\f\\v",
	"xdigit": "0-9A-Fa-f",
	"punct":  "!-/:-@\\[-`{-~",
}

func (c *Compiler) VisitPosixClass(n *ast.PosixClass) error {
	body, ok := posixToClassBody[n.Name]
	if !ok {
		return c.fail(n.Span().Start, fmt.Sprintf("POSIX class [:%s:] has no Python re equivalent", n.Name))
	}
	if n.Negated {
		c.ctx.Note("POSIX class [:%s:] approximated as an ASCII character set.", n.Name)
	}
	c.write(body)
	return c.err
}

func (c *Compiler) VisitCharClass(n *ast.CharClass) error {
	body, err := c.sub(n.Expression)
	if err != nil {
		return err
	}
	neg := ""
	if n.IsNegated {
		neg = "^"
	}
	c.write("[" + neg + body + "]")
	return c.err
}

func (c *Compiler) VisitRange(n *ast.Range) error {
	lo, err := c.sub(n.Start)
	if err != nil {
		return err
	}
	hi, err := c.sub(n.End)
	if err != nil {
		return err
	}
	c.write(lo + "-" + hi)
	return c.err
}

func (c *Compiler) VisitClassOperation(n *ast.ClassOperation) error {
	return c.fail(n.Span().Start, "Character class intersection/subtraction not supported by Python's re module")
}

func (c *Compiler) VisitBackref(n *ast.Backref) error {
	switch {
	case n.ByName:
		c.write("(?P=" + n.Ref + ")")
	case n.Relative:
		return c.fail(n.Span().Start, "Relative backreferences not supported by Python's re module")
	default:
		c.write(`\` + n.Ref)
	}
	return c.err
}

func (c *Compiler) VisitControlChar(n *ast.ControlChar) error {
	return c.fail(n.Span().Start, "Control-character escapes (\\cX) not supported by Python's re module")
}

func (c *Compiler) VisitKeep(n *ast.Keep) error {
	return c.fail(n.Span().Start, "\\K (match-start reset) has no Python re equivalent")
}

func (c *Compiler) VisitComment(n *ast.Comment) error {
	return c.err
}

// compileCondition mirrors visit.Compiler's flat, unescaped condition
// clause rendering: a standalone Backref/Subroutine compiles with its
// leading sigil, but a condition clause does not.
func (c *Compiler) compileCondition(n ast.Node) (string, error) {
	switch v := n.(type) {
	case *ast.Backref:
		if v.ByName {
			return v.Ref, nil
		}
		return v.Ref, nil
	case *ast.Subroutine:
		switch {
		case v.ByName:
			return v.Target, nil
		case v.Recursive:
			return "R", nil
		default:
			return v.Target, nil
		}
	default:
		return c.sub(n)
	}
}

func (c *Compiler) VisitConditional(n *ast.Conditional) error {
	cond, err := c.compileCondition(n.Condition)
	if err != nil {
		return err
	}
	yes, err := c.sub(n.Yes)
	if err != nil {
		return err
	}
	c.write("(?(" + cond + ")" + yes)
	if n.No != nil {
		no, err := c.sub(n.No)
		if err != nil {
			return err
		}
		c.write("|" + no)
	}
	c.write(")")
	return c.err
}

func (c *Compiler) VisitDefine(n *ast.Define) error {
	return c.fail(n.Span().Start, "(?(DEFINE)...) blocks not supported by Python's re module")
}

func (c *Compiler) VisitSubroutine(n *ast.Subroutine) error {
	return c.fail(n.Span().Start, "Subroutine calls and recursion not supported by Python's re module")
}

func (c *Compiler) VisitScriptRun(n *ast.ScriptRun) error {
	return c.fail(n.Span().Start, "Script runs not supported by Python's re module")
}

func (c *Compiler) VisitVersionCondition(n *ast.VersionCondition) error {
	return c.fail(n.Span().Start, "Version conditionals not supported by Python's re module")
}

func (c *Compiler) VisitPcreVerb(n *ast.PcreVerb) error {
	return c.fail(n.Span().Start, fmt.Sprintf("Backtracking control verb (*%s) not supported by Python's re module", n.Verb))
}

func (c *Compiler) VisitCallout(n *ast.Callout) error {
	return c.fail(n.Span().Start, "Callouts not supported by Python's re module")
}

func (c *Compiler) VisitLimitMatch(n *ast.LimitMatch) error {
	return c.fail(n.Span().Start, "(*LIMIT_MATCH=n) not supported by Python's re module")
}
