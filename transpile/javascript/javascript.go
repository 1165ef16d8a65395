// Package javascript is a transpile target: a CompileVisitor that renders
// an AST as a JavaScript RegExp literal, grounded on visit.Compiler's
// accumulate-into-a-strings.Builder shape (github.com/regexray/regexray/visit)
// generalized from "render PCRE2 source" to "render the nearest JavaScript
// equivalent, or fail with a typed diagnostic."
package javascript

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/regexray/regexray/ast"
	"github.com/regexray/regexray/transpile"
)

// Compiler renders an AST as a JavaScript RegExp literal. It is single-use:
// construct a fresh one per call via NewCompiler or Transpile.
type Compiler struct {
	out     strings.Builder
	err     error
	ctx     *transpile.Context
	pattern string // the original source, for Exception messages
	needsU  bool   // set when a construct requires the /u flag
}

// NewCompiler returns a ready-to-use Compiler sharing ctx for
// warnings/notes.
func NewCompiler(ctx *transpile.Context) *Compiler {
	return &Compiler{ctx: ctx}
}

// Transpile renders re as a transpile.Result targeting JavaScript.
func Transpile(re *ast.Regex, pattern string) (*transpile.Result, error) {
	ctx := &transpile.Context{}
	c := NewCompiler(ctx)
	c.pattern = pattern
	if err := re.Pattern.Accept(c); err != nil {
		return nil, err
	}
	if c.err != nil {
		return nil, c.err
	}

	flags := jsFlags(re.Flags)
	if c.needsU && !strings.Contains(flags, "u") {
		flags += "u"
		ctx.Warn("Added /u for Unicode code point escapes.")
	}

	literal := "/" + c.out.String() + "/" + flags
	return &transpile.Result{
		Target:   transpile.JavaScript,
		Pattern:  pattern,
		Flags:    flags,
		Literal:  literal,
		Warnings: ctx.Warnings,
		Notes:    ctx.Notes,
	}, nil
}

// jsFlags maps the subset of PCRE2 flags that carry a direct JavaScript
// equivalent; x (extended/free-spacing) has none and is dropped. The
// lexer has no free-spacing mode, so whitespace and `#` in the pattern
// are already literal nodes in re.Pattern and render as literals.
func jsFlags(fs ast.FlagSet) string {
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
	if fs.Has(ast.FlagUnicode) {
		b.WriteByte('u')
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
			Target:  transpile.JavaScript,
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
	if err := n.Accept(sc); err != nil {
		return "", err
	}
	if sc.err != nil {
		return "", sc.err
	}
	if sc.needsU {
		c.needsU = true
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
	case ast.GroupAtomic:
		return c.fail(n.Span().Start, "Atomic groups not supported in JavaScript")
	case ast.GroupInlineFlags:
		return c.fail(n.Span().Start, "Inline flag groups not supported in JavaScript")
	case ast.GroupBranchReset:
		return c.fail(n.Span().Start, "Branch reset groups not supported in JavaScript")
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
		c.write("(?<" + n.Name + ">" + body + ")")
	case ast.GroupLookaheadPositive:
		c.write("(?=" + body + ")")
	case ast.GroupLookaheadNegative:
		c.write("(?!" + body + ")")
	case ast.GroupLookbehindPositive:
		c.write("(?<=" + body + ")")
	case ast.GroupLookbehindNegative:
		c.write("(?<!" + body + ")")
	default:
		return c.fail(n.Span().Start, fmt.Sprintf("unknown group type %v", n.Type))
	}
	return c.err
}

func (c *Compiler) VisitQuantifier(n *ast.Quantifier) error {
	if n.Mode == ast.ModePossessive {
		return c.fail(n.Span().Start, "Possessive quantifiers not supported in JavaScript")
	}
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
	if n.Mode == ast.ModeLazy {
		c.write("?")
	}
	return c.err
}

func escapeLiteral(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '.', '*', '+', '?', '(', ')', '[', ']', '{', '}', '^', '$', '|', '\\', '/':
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
	case ast.CharOctal, ast.CharOctalLegacy:
		return c.fail(n.Span().Start, "Octal escapes not supported in JavaScript")
	}
	c.needsU = true
	if n.CodePoint > 0xFFFF {
		c.write(fmt.Sprintf(`\u{%X}`, n.CodePoint))
	} else {
		c.write(fmt.Sprintf(`\u%04X`, n.CodePoint))
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
		c.ctx.Warn("\\A translated to ^ (may differ under the m flag).")
		c.write("^")
	case ast.AssertEndText, ast.AssertEndTextNL:
		c.ctx.Warn("\\z/\\Z translated to $ (may differ under the m flag).")
		c.write("$")
	case ast.AssertWordBoundary:
		c.write(`\b`)
	case ast.AssertNotWordBoundary:
		c.write(`\B`)
	case ast.AssertPrevMatchEnd:
		return c.fail(n.Span().Start, "\\G has no JavaScript equivalent")
	case ast.AssertWordBoundaryG, ast.AssertNotWordBoundaryG:
		return c.fail(n.Span().Start, "Grapheme-cluster boundaries (\\b{g}, \\B{g}) not supported in JavaScript")
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
		return c.fail(n.Span().Start, "Horizontal/vertical whitespace and newline-sequence escapes (\\h, \\v, \\R) not supported in JavaScript")
	default:
		return c.fail(n.Span().Start, fmt.Sprintf("unknown char type kind %v", n.Kind))
	}
	return c.err
}

func (c *Compiler) VisitUnicodeProp(n *ast.UnicodeProp) error {
	// JavaScript's \p{...}/\P{...} always require braces, unlike PCRE2's
	// bare \pL shorthand, and only work under the /u flag.
	c.needsU = true
	letter := "p"
	if n.Negated {
		letter = "P"
	}
	c.write(`\` + letter + `{` + n.Prop + `}`)
	return c.err
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
		return c.fail(n.Span().Start, fmt.Sprintf("POSIX class [:%s:] has no JavaScript equivalent", n.Name))
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
	return c.fail(n.Span().Start, "Character class intersection/subtraction not supported in JavaScript")
}

func (c *Compiler) VisitBackref(n *ast.Backref) error {
	if n.ByName {
		c.write(`\k<` + n.Ref + `>`)
		return c.err
	}
	if n.Relative {
		return c.fail(n.Span().Start, "Relative backreferences not supported in JavaScript")
	}
	c.write(`\` + n.Ref)
	return c.err
}

func (c *Compiler) VisitControlChar(n *ast.ControlChar) error {
	return c.fail(n.Span().Start, "Control-character escapes (\\cX) not supported in JavaScript")
}

func (c *Compiler) VisitKeep(n *ast.Keep) error {
	return c.fail(n.Span().Start, "\\K (match-start reset) has no JavaScript equivalent")
}

func (c *Compiler) VisitComment(n *ast.Comment) error {
	return c.err
}

func (c *Compiler) VisitConditional(n *ast.Conditional) error {
	return c.fail(n.Span().Start, "Conditional patterns not supported in JavaScript")
}

func (c *Compiler) VisitDefine(n *ast.Define) error {
	return c.fail(n.Span().Start, "(?(DEFINE)...) blocks not supported in JavaScript")
}

func (c *Compiler) VisitSubroutine(n *ast.Subroutine) error {
	return c.fail(n.Span().Start, "Subroutine calls and recursion not supported in JavaScript")
}

func (c *Compiler) VisitScriptRun(n *ast.ScriptRun) error {
	return c.fail(n.Span().Start, "Script runs not supported in JavaScript")
}

func (c *Compiler) VisitVersionCondition(n *ast.VersionCondition) error {
	return c.fail(n.Span().Start, "Version conditionals not supported in JavaScript")
}

func (c *Compiler) VisitPcreVerb(n *ast.PcreVerb) error {
	return c.fail(n.Span().Start, fmt.Sprintf("Backtracking control verb (*%s) not supported in JavaScript", n.Verb))
}

func (c *Compiler) VisitCallout(n *ast.Callout) error {
	return c.fail(n.Span().Start, "Callouts not supported in JavaScript")
}

func (c *Compiler) VisitLimitMatch(n *ast.LimitMatch) error {
	return c.fail(n.Span().Start, "(*LIMIT_MATCH=n) not supported in JavaScript")
}
