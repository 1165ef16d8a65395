package visit

import (
	"github.com/regexray/regexray/ast"
)

// ExtractorConfig bounds literal extraction the same way the teacher
// engine's own prefilter literal extractor does: small limits keep an
// alternation-heavy or class-heavy pattern from blowing up into an
// unbounded literal set.
type ExtractorConfig struct {
	// MaxLiterals caps how many literal strings one LiteralSet can hold.
	MaxLiterals int
	// MaxLiteralLen caps each literal's length.
	MaxLiteralLen int
	// MaxClassSize caps how large a CharClass can be before it's expanded
	// into one literal per member; larger classes are treated as inexact.
	MaxClassSize int
	// CrossProductLimit caps the running literal count while folding a
	// Sequence left to right; once exceeded, extraction gives up and
	// marks the remainder inexact rather than multiplying further.
	CrossProductLimit int
}

// DefaultExtractorConfig mirrors the teacher's own defaults.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		MaxLiterals:       64,
		MaxLiteralLen:     64,
		MaxClassSize:      10,
		CrossProductLimit: 250,
	}
}

// LiteralSet is the literal strings a subtree's matches are known to
// contain. Exact means every match of the subtree contains at least one
// of Literals verbatim (so the set is safe to use as a required-substring
// prefilter); once any branch of the tree contributes no usable literal,
// Exact becomes false and Literals (if non-empty) is a hint only.
type LiteralSet struct {
	Literals []string
	Exact    bool
}

func inexact(hint []string) LiteralSet { return LiteralSet{Literals: hint, Exact: false} }

func exact(lits ...string) LiteralSet { return LiteralSet{Literals: lits, Exact: true} }

// Extractor computes the LiteralSet for a node bottom-up, accumulating its
// own per-call result the same way Compiler/Optimizer do.
type Extractor struct {
	cfg    ExtractorConfig
	result LiteralSet
}

// NewExtractor returns an Extractor configured with cfg.
func NewExtractor(cfg ExtractorConfig) *Extractor { return &Extractor{cfg: cfg} }

// ExtractLiterals computes re's top-level LiteralSet.
func ExtractLiterals(re *ast.Regex, cfg ExtractorConfig) (LiteralSet, error) {
	e := NewExtractor(cfg)
	if err := re.Accept(e); err != nil {
		return LiteralSet{}, err
	}
	return e.result, nil
}

func (e *Extractor) child(n ast.Node) (LiteralSet, error) {
	if n == nil {
		return inexact(nil), nil
	}
	sub := &Extractor{cfg: e.cfg}
	if err := n.Accept(sub); err != nil {
		return LiteralSet{}, err
	}
	return sub.result, nil
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}

// crossProduct concatenates every literal in a with every literal in b,
// stopping (and marking inexact) once the product would exceed
// CrossProductLimit.
func (e *Extractor) crossProduct(a, b LiteralSet) LiteralSet {
	if len(a.Literals) == 0 {
		return b
	}
	if len(b.Literals) == 0 {
		return a
	}
	out := make([]string, 0, len(a.Literals)*len(b.Literals))
	for _, x := range a.Literals {
		for _, y := range b.Literals {
			if len(out) >= e.cfg.CrossProductLimit {
				return LiteralSet{Literals: dedupTruncate(out, e.cfg), Exact: false}
			}
			out = append(out, x+y)
		}
	}
	return LiteralSet{Literals: dedupTruncate(out, e.cfg), Exact: a.Exact && b.Exact}
}

func dedupTruncate(lits []string, cfg ExtractorConfig) []string {
	seen := make(map[string]bool, len(lits))
	out := make([]string, 0, len(lits))
	for _, l := range lits {
		l = truncate(l, cfg.MaxLiteralLen)
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
		if cfg.MaxLiterals > 0 && len(out) >= cfg.MaxLiterals {
			break
		}
	}
	return out
}

func (e *Extractor) VisitRegex(n *ast.Regex) error {
	set, err := e.child(n.Pattern)
	if err != nil {
		return err
	}
	e.result = set
	return nil
}

func (e *Extractor) VisitSequence(n *ast.Sequence) error {
	acc := exact("")
	for _, child := range n.Children_ {
		set, err := e.child(child)
		if err != nil {
			return err
		}
		acc = e.crossProduct(acc, set)
		if !set.Exact {
			// Once an atom contributes nothing certain, everything folded
			// after it is a hint, not a guarantee -- keep accumulating for
			// the literals but never flip back to exact.
			acc.Exact = false
		}
	}
	e.result = acc
	return nil
}

func (e *Extractor) VisitAlternation(n *ast.Alternation) error {
	var all []string
	exactAll := true
	for _, alt := range n.Alternatives {
		set, err := e.child(alt)
		if err != nil {
			return err
		}
		if !set.Exact || len(set.Literals) == 0 {
			exactAll = false
		}
		all = append(all, set.Literals...)
	}
	e.result = LiteralSet{Literals: dedupTruncate(all, e.cfg), Exact: exactAll}
	return nil
}

func (e *Extractor) VisitGroup(n *ast.Group) error {
	switch n.Type {
	case ast.GroupCapturing, ast.GroupNonCapturing, ast.GroupNamed, ast.GroupAtomic, ast.GroupBranchReset:
		set, err := e.child(n.Child)
		if err != nil {
			return err
		}
		e.result = set
	default:
		// Lookarounds and inline-flags groups match zero width or carry no
		// body of their own; no usable literal.
		e.result = inexact(nil)
	}
	return nil
}

func (e *Extractor) VisitQuantifier(n *ast.Quantifier) error {
	inner, err := e.child(n.Node)
	if err != nil {
		return err
	}
	if n.Kind == ast.QuantCounted && n.Min == n.Max && n.Min >= 1 && n.Min <= e.cfg.MaxLiterals {
		acc := inner
		for i := 1; i < n.Min; i++ {
			acc = e.crossProduct(acc, inner)
		}
		e.result = acc
		return nil
	}
	// *, ?, {0,..}, or unbounded: the atom may not appear at all, so there
	// is no substring guaranteed present.
	e.result = inexact(inner.Literals)
	return nil
}

func (e *Extractor) VisitLiteral(n *ast.Literal) error {
	if n.Value == "" {
		e.result = exact("")
		return nil
	}
	e.result = exact(n.Value)
	return nil
}

func (e *Extractor) VisitCharLiteral(n *ast.CharLiteral) error {
	e.result = exact(string(n.CodePoint))
	return nil
}

func (e *Extractor) VisitDot(n *ast.Dot) error     { e.result = inexact(nil); return nil }
func (e *Extractor) VisitAnchor(n *ast.Anchor) error { e.result = exact(""); return nil }
func (e *Extractor) VisitAssertion(n *ast.Assertion) error { e.result = exact(""); return nil }

func (e *Extractor) VisitCharType(n *ast.CharType) error { e.result = inexact(nil); return nil }

func (e *Extractor) VisitUnicodeProp(n *ast.UnicodeProp) error { e.result = inexact(nil); return nil }
func (e *Extractor) VisitPosixClass(n *ast.PosixClass) error   { e.result = inexact(nil); return nil }

func (e *Extractor) VisitCharClass(n *ast.CharClass) error {
	members, ok := expandClassMembers(n, e.cfg.MaxClassSize)
	if !ok {
		e.result = inexact(nil)
		return nil
	}
	lits := make([]string, len(members))
	for i, r := range members {
		lits[i] = string(r)
	}
	e.result = LiteralSet{Literals: dedupTruncate(lits, e.cfg), Exact: true}
	return nil
}

// expandClassMembers enumerates a non-negated CharClass's runes when it is
// a flat union of single runes/ranges no larger than maxSize; it refuses
// (ok=false) for negated classes, set operations, or anything too big to
// be worth expanding.
func expandClassMembers(n *ast.CharClass, maxSize int) ([]rune, bool) {
	if n.IsNegated {
		return nil, false
	}
	var members []rune
	var walk func(ast.Node) bool
	walk = func(expr ast.Node) bool {
		switch v := expr.(type) {
		case nil:
			return true
		case *ast.Sequence:
			for _, c := range v.Children_ {
				if !walk(c) {
					return false
				}
			}
			return true
		case *ast.Range:
			lo, ok1 := singleRune(v.Start)
			hi, ok2 := singleRune(v.End)
			if !ok1 || !ok2 || hi < lo || int(hi-lo)+1 > maxSize {
				return false
			}
			for r := lo; r <= hi; r++ {
				members = append(members, r)
				if len(members) > maxSize {
					return false
				}
			}
			return true
		case *ast.Literal, *ast.CharLiteral:
			r, ok := singleRune(expr)
			if !ok {
				return false
			}
			members = append(members, r)
			return len(members) <= maxSize
		default:
			return false
		}
	}
	if !walk(n.Expression) {
		return nil, false
	}
	return members, true
}

func (e *Extractor) VisitRange(n *ast.Range) error {
	lo, ok1 := singleRune(n.Start)
	hi, ok2 := singleRune(n.End)
	if ok1 && ok2 && hi >= lo && int(hi-lo) < e.cfg.MaxClassSize {
		lits := make([]string, 0, hi-lo+1)
		for r := lo; r <= hi; r++ {
			lits = append(lits, string(r))
		}
		e.result = LiteralSet{Literals: dedupTruncate(lits, e.cfg), Exact: true}
		return nil
	}
	e.result = inexact(nil)
	return nil
}

func (e *Extractor) VisitClassOperation(n *ast.ClassOperation) error { e.result = inexact(nil); return nil }
func (e *Extractor) VisitBackref(n *ast.Backref) error               { e.result = inexact(nil); return nil }
func (e *Extractor) VisitControlChar(n *ast.ControlChar) error {
	e.result = exact(string(rune(n.Char)))
	return nil
}
func (e *Extractor) VisitKeep(n *ast.Keep) error       { e.result = exact(""); return nil }
func (e *Extractor) VisitComment(n *ast.Comment) error { e.result = exact(""); return nil }

func (e *Extractor) VisitConditional(n *ast.Conditional) error { e.result = inexact(nil); return nil }
func (e *Extractor) VisitDefine(n *ast.Define) error           { e.result = exact(""); return nil }
func (e *Extractor) VisitSubroutine(n *ast.Subroutine) error   { e.result = inexact(nil); return nil }
func (e *Extractor) VisitScriptRun(n *ast.ScriptRun) error {
	set, err := e.child(n.Content)
	if err != nil {
		return err
	}
	e.result = set
	return nil
}
func (e *Extractor) VisitVersionCondition(n *ast.VersionCondition) error { e.result = exact(""); return nil }
func (e *Extractor) VisitPcreVerb(n *ast.PcreVerb) error                { e.result = exact(""); return nil }
func (e *Extractor) VisitCallout(n *ast.Callout) error                  { e.result = exact(""); return nil }
func (e *Extractor) VisitLimitMatch(n *ast.LimitMatch) error            { e.result = exact(""); return nil }
