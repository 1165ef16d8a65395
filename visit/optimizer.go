package visit

import (
	"fmt"

	"github.com/regexray/regexray/ast"
)

// OptimizerOptions toggles the Optimizer's individual rewrite rules.
type OptimizerOptions struct {
	// MinQuantifierCount is the minimum run length of an identical literal
	// atom before it folds into a counted quantifier (aaaa -> a{4}).
	MinQuantifierCount int
	AutoPossessify     bool
	// No rewrite reads MergeClasses: the Optimizer does not merge
	// character classes.
	MergeClasses       bool
	ModernizeClasses   bool
}

// DefaultOptimizerOptions enables every rule with a run-length threshold
// of 4.
func DefaultOptimizerOptions() OptimizerOptions {
	return OptimizerOptions{
		MinQuantifierCount: 4,
		AutoPossessify:     true,
		MergeClasses:       true,
		ModernizeClasses:   true,
	}
}

// Change is a human-readable note describing one rewrite the Optimizer
// applied.
type Change struct {
	Rule string
	Note string
	Pos  ast.Position
}

// Optimizer rewrites an AST in place of a functional return value: each
// VisitX method stores its rewritten replacement on the Optimizer's own
// result field, the same accumulate-into-self shape Compiler uses for its
// output string. Optimize is the entry point; rewrite is the internal
// recursive step that spins up one sub-Optimizer per child so each node's
// result doesn't bleed into its siblings'.
type Optimizer struct {
	opts    OptimizerOptions
	unicode bool
	result  ast.Node
	changes []Change
	err     error
}

// NewOptimizer returns an Optimizer configured with opts.
func NewOptimizer(opts OptimizerOptions) *Optimizer {
	return &Optimizer{opts: opts}
}

// Optimize rewrites re and returns the new tree plus every change applied.
// A rewrite that would leave the pattern body empty, drop every anchor,
// or shrink the source by more than
// 90% is rejected wholesale and the original tree is returned instead
// (spec's safeguard-check contract).
func Optimize(re *ast.Regex, opts OptimizerOptions) (*ast.Regex, []Change, error) {
	o := NewOptimizer(opts)
	o.unicode = re.Flags.Has(ast.FlagUnicode)
	if err := re.Accept(o); err != nil {
		return nil, nil, err
	}
	if o.err != nil {
		return nil, nil, o.err
	}
	out, ok := o.result.(*ast.Regex)
	if !ok {
		return nil, nil, fmt.Errorf("visit: optimizer produced %T, want *ast.Regex", o.result)
	}
	if !safeguardOK(re, out) {
		return re, nil, nil
	}
	return out, o.changes, nil
}

// safeguardOK rejects edits that empty the pattern out, strip every
// anchor the original had, or cut the recompiled length drastically --
// the three failure modes spec.md's Optimizer safeguard names.
func safeguardOK(before, after *ast.Regex) bool {
	beforeSrc, err1 := Compile(before)
	afterSrc, err2 := Compile(after)
	if err1 != nil || err2 != nil {
		return false
	}
	if body, err := CompileNode(after.Pattern); err != nil || body == "" {
		return false
	}
	if len(beforeSrc) > 8 && len(afterSrc) < len(beforeSrc)/10 {
		return false
	}
	beforeAnchors := countAnchors(before.Pattern)
	afterAnchors := countAnchors(after.Pattern)
	if beforeAnchors > 0 && afterAnchors == 0 {
		return false
	}
	return true
}

func countAnchors(n ast.Node) int {
	if n == nil {
		return 0
	}
	count := 0
	ast.Walk(n, func(child ast.Node) {
		if _, ok := child.(*ast.Anchor); ok {
			count++
		}
	})
	return count
}

func (o *Optimizer) note(rule, msg string, pos ast.Position) {
	o.changes = append(o.changes, Change{Rule: rule, Note: msg, Pos: pos})
}

func (o *Optimizer) fail(err error) error {
	if o.err == nil {
		o.err = err
	}
	return err
}

// rewrite runs n through a fresh sub-Optimizer (so result/changes don't
// cross-contaminate between siblings) and folds its change log into o's.
func (o *Optimizer) rewrite(n ast.Node) (ast.Node, error) {
	if n == nil {
		return nil, nil
	}
	sub := &Optimizer{opts: o.opts, unicode: o.unicode}
	if err := n.Accept(sub); err != nil {
		return nil, err
	}
	if sub.err != nil {
		return nil, sub.err
	}
	o.changes = append(o.changes, sub.changes...)
	return sub.result, nil
}

func (o *Optimizer) rewriteAll(nodes []ast.Node) ([]ast.Node, error) {
	out := make([]ast.Node, len(nodes))
	for i, n := range nodes {
		r, err := o.rewrite(n)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func (o *Optimizer) VisitRegex(n *ast.Regex) error {
	pattern, err := o.rewrite(n.Pattern)
	if err != nil {
		return o.fail(err)
	}
	flags := n.Flags
	if !containsDot(pattern) && flags.Has(ast.FlagDotAll) {
		flags = flags.Without(ast.FlagDotAll)
		o.note("drop-unused-flag", "dropped /s: pattern contains no '.'", n.Span())
	}
	o.result = &ast.Regex{Base: n.Base, Delimiter: n.Delimiter, Flags: flags, Pattern: pattern}
	return nil
}

func containsDot(n ast.Node) bool {
	if n == nil {
		return false
	}
	found := false
	ast.Walk(n, func(child ast.Node) {
		if _, ok := child.(*ast.Dot); ok {
			found = true
		}
	})
	return found
}

// singleRune reports the one code point n denotes when n is a one-
// character Literal or a CharLiteral, so runs of repeated atoms and
// adjacent-atom overlap checks can compare actual characters.
func singleRune(n ast.Node) (rune, bool) {
	switch v := n.(type) {
	case *ast.Literal:
		if !v.IsRaw {
			runes := []rune(v.Value)
			if len(runes) == 1 {
				return runes[0], true
			}
		}
	case *ast.CharLiteral:
		return v.CodePoint, true
	}
	return 0, false
}

func (o *Optimizer) VisitSequence(n *ast.Sequence) error {
	children, err := o.rewriteAll(n.Children_)
	if err != nil {
		return o.fail(err)
	}
	children = o.foldLiteralRuns(children)
	children = o.autoPossessify(children)
	o.result = &ast.Sequence{Base: n.Base, Children_: children}
	return nil
}

// foldLiteralRuns replaces runs of >= MinQuantifierCount identical
// single-character literal atoms with one counted Quantifier
// (`aaaa` -> `a{4}`).
func (o *Optimizer) foldLiteralRuns(children []ast.Node) []ast.Node {
	if o.opts.MinQuantifierCount <= 0 {
		return children
	}
	out := make([]ast.Node, 0, len(children))
	i := 0
	for i < len(children) {
		r, ok := singleRune(children[i])
		if !ok {
			out = append(out, children[i])
			i++
			continue
		}
		j := i + 1
		for j < len(children) {
			r2, ok2 := singleRune(children[j])
			if !ok2 || r2 != r {
				break
			}
			j++
		}
		count := j - i
		if count >= o.opts.MinQuantifierCount {
			pos := ast.Position{Start: children[i].Span().Start, End: children[j-1].Span().End}
			out = append(out, &ast.Quantifier{
				Base: ast.Base{Pos: pos},
				Node: children[i],
				Kind: ast.QuantCounted,
				Min:  count,
				Max:  count,
			})
			o.note("fold-literal-run", fmt.Sprintf("folded %d repeats into {%d}", count, count), pos)
		} else {
			out = append(out, children[i:j]...)
		}
		i = j
	}
	return out
}

// autoPossessify promotes a trailing unbounded/optional quantifier to
// possessive mode when the following atom provably cannot match the same
// character the quantified atom just consumed -- the only shape this
// rule treats as provably safe is two distinct single-rune atoms back to
// back; anything else (classes, dot, nested groups) is left alone rather
// than risk changing which strings match.
func (o *Optimizer) autoPossessify(children []ast.Node) []ast.Node {
	if !o.opts.AutoPossessify {
		return children
	}
	for i := 0; i < len(children)-1; i++ {
		q, ok := children[i].(*ast.Quantifier)
		if !ok || q.Mode != ast.ModeGreedy {
			continue
		}
		if q.Kind != ast.QuantStar && q.Kind != ast.QuantPlus {
			continue
		}
		qr, ok := singleRune(q.Node)
		if !ok {
			continue
		}
		nr, ok := singleRune(children[i+1])
		if !ok || nr == qr {
			continue
		}
		q.Mode = ast.ModePossessive
		o.note("auto-possessify", "promoted quantifier to possessive: following atom cannot overlap", q.Span())
	}
	return children
}

func (o *Optimizer) VisitAlternation(n *ast.Alternation) error {
	alts, err := o.rewriteAll(n.Alternatives)
	if err != nil {
		return o.fail(err)
	}
	o.result = &ast.Alternation{Base: n.Base, Alternatives: alts}
	return nil
}

func (o *Optimizer) VisitGroup(n *ast.Group) error {
	child, err := o.rewrite(n.Child)
	if err != nil {
		return o.fail(err)
	}
	o.result = &ast.Group{
		Base: n.Base, Type: n.Type, Child: child, Name: n.Name,
		NameSyntax: n.NameSyntax, Flags: n.Flags, CaptureIndex: n.CaptureIndex,
	}
	return nil
}

func (o *Optimizer) VisitQuantifier(n *ast.Quantifier) error {
	child, err := o.rewrite(n.Node)
	if err != nil {
		return o.fail(err)
	}
	o.result = &ast.Quantifier{Base: n.Base, Node: child, Kind: n.Kind, Min: n.Min, Max: n.Max, Mode: n.Mode}
	return nil
}

func (o *Optimizer) VisitLiteral(n *ast.Literal) error {
	runes := []rune(n.Value)
	if !n.IsRaw && o.opts.MinQuantifierCount > 0 && len(runes) >= o.opts.MinQuantifierCount {
		// A literal run arrives as one node; fold repeats inside it too.
		parts := make([]ast.Node, len(runes))
		off := n.Pos.Start
		for i, r := range runes {
			end := off + uint32(len(string(r)))
			parts[i] = &ast.Literal{Base: ast.Base{Pos: ast.Position{Start: off, End: end}}, Value: string(r)}
			off = end
		}
		if folded := o.foldLiteralRuns(parts); len(folded) < len(parts) {
			o.result = &ast.Sequence{Base: n.Base, Children_: folded}
			return nil
		}
	}
	o.result = &ast.Literal{Base: n.Base, Value: n.Value, IsRaw: n.IsRaw}
	return nil
}

func (o *Optimizer) VisitCharLiteral(n *ast.CharLiteral) error {
	o.result = &ast.CharLiteral{Base: n.Base, Original: n.Original, CodePoint: n.CodePoint, Type: n.Type}
	return nil
}

func (o *Optimizer) VisitDot(n *ast.Dot) error {
	o.result = &ast.Dot{Base: n.Base}
	return nil
}

func (o *Optimizer) VisitAnchor(n *ast.Anchor) error {
	o.result = &ast.Anchor{Base: n.Base, Kind: n.Kind}
	return nil
}

func (o *Optimizer) VisitAssertion(n *ast.Assertion) error {
	o.result = &ast.Assertion{Base: n.Base, Kind: n.Kind}
	return nil
}

func (o *Optimizer) VisitCharType(n *ast.CharType) error {
	o.result = &ast.CharType{Base: n.Base, Kind: n.Kind}
	return nil
}

func (o *Optimizer) VisitUnicodeProp(n *ast.UnicodeProp) error {
	o.result = &ast.UnicodeProp{Base: n.Base, Prop: n.Prop, HasBraces: n.HasBraces, Negated: n.Negated}
	return nil
}

func (o *Optimizer) VisitPosixClass(n *ast.PosixClass) error {
	o.result = &ast.PosixClass{Base: n.Base, Name: n.Name, Negated: n.Negated}
	return nil
}

// isAsciiDigitRange reports whether n, a class's expression, is exactly
// the Range 0-9 (so the class is `[0-9]`), so ModernizeClasses can
// recognize it and rewrite to \d.
func isAsciiDigitRange(n ast.Node) bool {
	r, ok := n.(*ast.Range)
	if !ok {
		return false
	}
	lo, ok1 := singleRune(r.Start)
	hi, ok2 := singleRune(r.End)
	return ok1 && ok2 && lo == '0' && hi == '9'
}

func (o *Optimizer) VisitCharClass(n *ast.CharClass) error {
	expr, err := o.rewrite(n.Expression)
	if err != nil {
		return o.fail(err)
	}
	if o.opts.ModernizeClasses && !n.IsNegated && !o.unicode && isAsciiDigitRange(expr) {
		o.note("modernize-class", "rewrote [0-9] to \\d", n.Span())
		o.result = &ast.CharType{Base: n.Base, Kind: ast.CTDigit}
		return nil
	}
	o.result = &ast.CharClass{Base: n.Base, IsNegated: n.IsNegated, Expression: expr}
	return nil
}

func (o *Optimizer) VisitRange(n *ast.Range) error {
	start, err := o.rewrite(n.Start)
	if err != nil {
		return o.fail(err)
	}
	end, err := o.rewrite(n.End)
	if err != nil {
		return o.fail(err)
	}
	o.result = &ast.Range{Base: n.Base, Start: start, End: end}
	return nil
}

func (o *Optimizer) VisitClassOperation(n *ast.ClassOperation) error {
	left, err := o.rewrite(n.Left)
	if err != nil {
		return o.fail(err)
	}
	right, err := o.rewrite(n.Right)
	if err != nil {
		return o.fail(err)
	}
	o.result = &ast.ClassOperation{Base: n.Base, Type: n.Type, Left: left, Right: right}
	return nil
}

func (o *Optimizer) VisitBackref(n *ast.Backref) error {
	o.result = &ast.Backref{Base: n.Base, Ref: n.Ref, ByName: n.ByName, Relative: n.Relative}
	return nil
}

func (o *Optimizer) VisitControlChar(n *ast.ControlChar) error {
	o.result = &ast.ControlChar{Base: n.Base, Char: n.Char}
	return nil
}

func (o *Optimizer) VisitKeep(n *ast.Keep) error {
	o.result = &ast.Keep{Base: n.Base}
	return nil
}

func (o *Optimizer) VisitComment(n *ast.Comment) error {
	o.result = &ast.Comment{Base: n.Base, Text: n.Text}
	return nil
}

func (o *Optimizer) VisitConditional(n *ast.Conditional) error {
	cond, err := o.rewrite(n.Condition)
	if err != nil {
		return o.fail(err)
	}
	yes, err := o.rewrite(n.Yes)
	if err != nil {
		return o.fail(err)
	}
	no, err := o.rewrite(n.No)
	if err != nil {
		return o.fail(err)
	}
	o.result = &ast.Conditional{Base: n.Base, Condition: cond, Yes: yes, No: no}
	return nil
}

func (o *Optimizer) VisitDefine(n *ast.Define) error {
	content, err := o.rewrite(n.Content)
	if err != nil {
		return o.fail(err)
	}
	o.result = &ast.Define{Base: n.Base, Content: content}
	return nil
}

func (o *Optimizer) VisitSubroutine(n *ast.Subroutine) error {
	o.result = &ast.Subroutine{Base: n.Base, Target: n.Target, ByName: n.ByName, Recursive: n.Recursive}
	return nil
}

func (o *Optimizer) VisitScriptRun(n *ast.ScriptRun) error {
	content, err := o.rewrite(n.Content)
	if err != nil {
		return o.fail(err)
	}
	o.result = &ast.ScriptRun{Base: n.Base, Script: n.Script, Content: content, Atomic: n.Atomic}
	return nil
}

func (o *Optimizer) VisitVersionCondition(n *ast.VersionCondition) error {
	o.result = &ast.VersionCondition{Base: n.Base, Op: n.Op, Major: n.Major, Minor: n.Minor}
	return nil
}

func (o *Optimizer) VisitPcreVerb(n *ast.PcreVerb) error {
	o.result = &ast.PcreVerb{Base: n.Base, Verb: n.Verb, Arg: n.Arg, HasArg: n.HasArg}
	return nil
}

func (o *Optimizer) VisitCallout(n *ast.Callout) error {
	o.result = &ast.Callout{Base: n.Base, ID: n.ID, HasParen: n.HasParen}
	return nil
}

func (o *Optimizer) VisitLimitMatch(n *ast.LimitMatch) error {
	o.result = &ast.LimitMatch{Base: n.Base, Limit: n.Limit}
	return nil
}
