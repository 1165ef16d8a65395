// Package visit implements the closed family of AST visitors spec.md's
// visitor pipeline describes: the recompiler (AST -> pattern string),
// validator, optimizer, explainer, highlighter, dumper, sample generator,
// complexity scorer, literal extractor, and structural metrics. Every
// visitor implements ast.Visitor and is dispatched the same way --
// node.Accept(v) -- grounded on the teacher engine's own accept/visit
// idiom (meta/compile.go's CompileVisitor) generalized from a byte-level
// NFA compiler to a family of AST-level passes.
package visit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/regexray/regexray/ast"
)

// Compiler renders an AST back into PCRE2 pattern source text. The
// recompiled pattern, re-lexed and re-parsed, must produce a structurally
// equivalent tree (spec's round-trip contract); Compiler does not strive
// for byte-identical output; where PCRE2 offers more than one spelling for
// a construct (e.g. `(?'name'...)` vs `(?P'name'...)` both parse to
// NameSyntaxQuote) it picks one canonical form.
type Compiler struct {
	out strings.Builder
	err error
}

// NewCompiler returns a ready-to-use Compiler.
func NewCompiler() *Compiler { return &Compiler{} }

// Compile renders re as a complete delimited pattern, e.g. "/abc/i".
func Compile(re *ast.Regex) (string, error) {
	c := NewCompiler()
	return c.Compile(re)
}

// CompileNode renders an arbitrary subtree (not necessarily a whole
// *ast.Regex) back to source text, undelimited -- for callers (the ReDoS
// analyzer's "vulnerable subpattern" field, diagnostic snippets) that need
// a fragment's spelling rather than a complete pattern.
func CompileNode(n ast.Node) (string, error) {
	c := NewCompiler()
	if n == nil {
		return "", nil
	}
	if err := n.Accept(c); err != nil {
		return "", err
	}
	if c.err != nil {
		return "", c.err
	}
	return c.out.String(), nil
}

// Compile renders re using this Compiler instance (resettable via a fresh
// NewCompiler call; one Compiler is single-use).
func (c *Compiler) Compile(re *ast.Regex) (string, error) {
	if err := re.Accept(c); err != nil {
		return "", err
	}
	if c.err != nil {
		return "", c.err
	}
	return c.out.String(), nil
}

// closingDelimiter mirrors the parser's own bracket-pairing rule so a
// recompiled pattern delimited by "(...)", "[...]", "{...}", or "<...>"
// closes the way the parser expects to re-lex it.
func closingDelimiter(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	case '{':
		return '}'
	case '<':
		return '>'
	default:
		return open
	}
}

func (c *Compiler) write(s string) {
	if c.err != nil {
		return
	}
	c.out.WriteString(s)
}

func (c *Compiler) fail(err error) error {
	if c.err == nil {
		c.err = err
	}
	return err
}

// sub compiles a nested node into its own string, for constructs (Group,
// Quantifier, Conditional) that need a child's rendering before deciding
// how to wrap it.
func (c *Compiler) sub(n ast.Node) (string, error) {
	if n == nil {
		return "", nil
	}
	sc := NewCompiler()
	if err := n.Accept(sc); err != nil {
		return "", err
	}
	if sc.err != nil {
		return "", sc.err
	}
	return sc.out.String(), nil
}

func (c *Compiler) VisitRegex(n *ast.Regex) error {
	d := n.Delimiter
	if d == 0 {
		d = '/'
	}
	closing := closingDelimiter(d)
	c.write(string(d))
	if n.Pattern != nil {
		if err := n.Pattern.Accept(c); err != nil {
			return c.fail(err)
		}
	}
	c.write(string(closing))
	c.write(n.Flags.String())
	return c.err
}

func (c *Compiler) VisitSequence(n *ast.Sequence) error {
	for _, child := range n.Children_ {
		if err := child.Accept(c); err != nil {
			return c.fail(err)
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
			return c.fail(err)
		}
	}
	return c.err
}

func (c *Compiler) VisitGroup(n *ast.Group) error {
	body, err := c.sub(n.Child)
	if err != nil {
		return c.fail(err)
	}
	switch n.Type {
	case ast.GroupCapturing:
		c.write("(" + body + ")")
	case ast.GroupNonCapturing:
		if n.Flags != nil {
			c.write("(?" + n.Flags.String() + ":" + body + ")")
		} else {
			c.write("(?:" + body + ")")
		}
	case ast.GroupNamed:
		switch n.NameSyntax {
		case ast.NameSyntaxPAngle:
			c.write("(?P<" + n.Name + ">" + body + ")")
		case ast.NameSyntaxQuote:
			c.write("(?'" + n.Name + "'" + body + ")")
		default:
			c.write("(?<" + n.Name + ">" + body + ")")
		}
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
	case ast.GroupInlineFlags:
		flags := ""
		if n.Flags != nil {
			flags = n.Flags.String()
		}
		c.write("(?" + flags + ")")
	case ast.GroupBranchReset:
		c.write("(?|" + body + ")")
	default:
		return c.fail(fmt.Errorf("visit: unknown group type %v", n.Type))
	}
	return c.err
}

func (c *Compiler) VisitQuantifier(n *ast.Quantifier) error {
	body, err := c.sub(n.Node)
	if err != nil {
		return c.fail(err)
	}
	c.write(body)
	switch n.Kind {
	case ast.QuantStar:
		c.write("*")
	case ast.QuantPlus:
		c.write("+")
	case ast.QuantQuest:
		c.write("?")
	default: // QuantCounted
		if n.Max == n.Min {
			c.write("{" + strconv.Itoa(n.Min) + "}")
		} else if n.Max == -1 {
			c.write("{" + strconv.Itoa(n.Min) + ",}")
		} else {
			c.write("{" + strconv.Itoa(n.Min) + "," + strconv.Itoa(n.Max) + "}")
		}
	}
	switch n.Mode {
	case ast.ModeLazy:
		c.write("?")
	case ast.ModePossessive:
		c.write("+")
	}
	return c.err
}

// escapeLiteral backslash-escapes the PCRE2 metacharacters so Value
// re-lexes as the same literal text rather than syntax.
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
	if n.IsRaw {
		c.write(`\Q` + n.Value + `\E`)
		return c.err
	}
	c.write(escapeLiteral(n.Value))
	return c.err
}

func (c *Compiler) VisitCharLiteral(n *ast.CharLiteral) error {
	if n.Original != "" {
		c.write(n.Original)
		return c.err
	}
	c.write(fmt.Sprintf(`\x{%x}`, n.CodePoint))
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
		c.write(`\z`)
	case ast.AssertEndTextNL:
		c.write(`\Z`)
	case ast.AssertPrevMatchEnd:
		c.write(`\G`)
	case ast.AssertWordBoundary:
		c.write(`\b`)
	case ast.AssertNotWordBoundary:
		c.write(`\B`)
	case ast.AssertWordBoundaryG:
		c.write(`\b{g}`)
	case ast.AssertNotWordBoundaryG:
		c.write(`\B{g}`)
	default:
		return c.fail(fmt.Errorf("visit: unknown assertion kind %v", n.Kind))
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
	case ast.CTHorizSpace:
		c.write(`\h`)
	case ast.CTNotHorizSpace:
		c.write(`\H`)
	case ast.CTVertSpace:
		c.write(`\v`)
	case ast.CTNotVertSpace:
		c.write(`\V`)
	case ast.CTNewlineSeq:
		c.write(`\R`)
	default:
		return c.fail(fmt.Errorf("visit: unknown char type kind %v", n.Kind))
	}
	return c.err
}

func (c *Compiler) VisitUnicodeProp(n *ast.UnicodeProp) error {
	letter := "p"
	if n.Negated {
		letter = "P"
	}
	if n.HasBraces {
		c.write(`\` + letter + `{` + n.Prop + `}`)
	} else {
		c.write(`\` + letter + n.Prop)
	}
	return c.err
}

func (c *Compiler) VisitPosixClass(n *ast.PosixClass) error {
	neg := ""
	if n.Negated {
		neg = "^"
	}
	c.write("[:" + neg + n.Name + ":]")
	return c.err
}

func (c *Compiler) VisitCharClass(n *ast.CharClass) error {
	body, err := c.sub(n.Expression)
	if err != nil {
		return c.fail(err)
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
		return c.fail(err)
	}
	hi, err := c.sub(n.End)
	if err != nil {
		return c.fail(err)
	}
	c.write(lo + "-" + hi)
	return c.err
}

func (c *Compiler) VisitClassOperation(n *ast.ClassOperation) error {
	left, err := c.sub(n.Left)
	if err != nil {
		return c.fail(err)
	}
	right, err := c.sub(n.Right)
	if err != nil {
		return c.fail(err)
	}
	op := "&&"
	if n.Type == ast.ClassOpSubtraction {
		op = "--"
	}
	c.write(left + op + right)
	return c.err
}

func (c *Compiler) VisitBackref(n *ast.Backref) error {
	switch {
	case n.ByName:
		c.write(`\k<` + n.Ref + `>`)
	case n.Relative:
		c.write(`\g{` + n.Ref + `}`)
	default:
		c.write(`\` + n.Ref)
	}
	return c.err
}

func (c *Compiler) VisitControlChar(n *ast.ControlChar) error {
	c.write(fmt.Sprintf(`\c%c`, n.Char))
	return c.err
}

func (c *Compiler) VisitKeep(n *ast.Keep) error {
	c.write(`\K`)
	return c.err
}

func (c *Compiler) VisitComment(n *ast.Comment) error {
	c.write("(?#" + n.Text + ")")
	return c.err
}

// compileCondition renders a Conditional's flat condition clause -- the
// text between "(?(" and ")" -- which uses a bare, unescaped spelling
// distinct from how the same node type compiles on its own (a standalone
// Backref needs its leading backslash, a condition's does not).
func (c *Compiler) compileCondition(n ast.Node) (string, error) {
	switch v := n.(type) {
	case *ast.Backref:
		if v.ByName {
			return "<" + v.Ref + ">", nil
		}
		return v.Ref, nil
	case *ast.Subroutine:
		switch {
		case v.ByName:
			return "R&" + v.Target, nil
		case v.Recursive:
			return v.Target, nil // "R"
		default:
			return "R" + v.Target, nil // signed group number
		}
	case *ast.VersionCondition:
		op := ">="
		if v.Op == ast.VersionEQ {
			op = "="
		}
		return fmt.Sprintf("VERSION%s%d.%d", op, v.Major, v.Minor), nil
	default:
		return c.sub(n)
	}
}

func (c *Compiler) VisitConditional(n *ast.Conditional) error {
	cond, err := c.compileCondition(n.Condition)
	if err != nil {
		return c.fail(err)
	}
	yes, err := c.sub(n.Yes)
	if err != nil {
		return c.fail(err)
	}
	c.write("(?(" + cond + ")" + yes)
	if n.No != nil {
		no, err := c.sub(n.No)
		if err != nil {
			return c.fail(err)
		}
		c.write("|" + no)
	}
	c.write(")")
	return c.err
}

func (c *Compiler) VisitDefine(n *ast.Define) error {
	body, err := c.sub(n.Content)
	if err != nil {
		return c.fail(err)
	}
	c.write("(?(DEFINE)" + body + ")")
	return c.err
}

func (c *Compiler) VisitSubroutine(n *ast.Subroutine) error {
	if n.ByName {
		c.write("(?&" + n.Target + ")")
	} else {
		// Target already carries its own spelling: "R" for (?R), "0"/"1"/
		// "-1" etc. for numbered recursion/subroutine calls.
		c.write("(?" + n.Target + ")")
	}
	return c.err
}

func (c *Compiler) VisitScriptRun(n *ast.ScriptRun) error {
	body, err := c.sub(n.Content)
	if err != nil {
		return c.fail(err)
	}
	verb := "script_run"
	if n.Atomic {
		verb = "atomic_script_run"
	}
	c.write("(*" + verb + ":" + body + ")")
	return c.err
}

func (c *Compiler) VisitVersionCondition(n *ast.VersionCondition) error {
	op := ">="
	if n.Op == ast.VersionEQ {
		op = "="
	}
	c.write(fmt.Sprintf("(?(VERSION%s%d.%d))", op, n.Major, n.Minor))
	return c.err
}

func (c *Compiler) VisitPcreVerb(n *ast.PcreVerb) error {
	if n.HasArg {
		c.write("(*" + n.Verb + ":" + n.Arg + ")")
	} else {
		c.write("(*" + n.Verb + ")")
	}
	return c.err
}

func (c *Compiler) VisitCallout(n *ast.Callout) error {
	if n.HasParen {
		c.write("(?C" + n.ID + ")")
	} else {
		c.write("(?C)")
	}
	return c.err
}

func (c *Compiler) VisitLimitMatch(n *ast.LimitMatch) error {
	c.write("(*LIMIT_MATCH=" + strconv.Itoa(n.Limit) + ")")
	return c.err
}
