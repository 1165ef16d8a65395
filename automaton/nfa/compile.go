package nfa

import (
	"fmt"

	"github.com/regexray/regexray/ast"
	"github.com/regexray/regexray/charset"
)

// CompilerConfig bounds Thompson construction the way parser.Config bounds
// parsing -- a recursion-depth guard against pathological/adversarial
// nesting. Unicode forces the code-point alphabet bound to MaxUnicode even
// if the source AST's Flags didn't carry FlagUnicode (used when the
// caller already knows the pattern should be treated as code-point based).
type CompilerConfig struct {
	MaxRecursionDepth int
	Unicode           bool
}

// DefaultCompilerConfig returns the compiler's default recursion budget.
func DefaultCompilerConfig() CompilerConfig {
	return CompilerConfig{MaxRecursionDepth: 250}
}

// Compiler walks a regexray AST and emits a Thompson-construction NFA with
// CharSet edges. It implements only the regular subset of PCRE2: spec's
// "Constructs outside the regular languages -- backreferences, look-
// arounds, subroutines, recursion -- raise ComplexityException
// immediately" (see the switch default cases below for the exact list,
// which also includes conditionals and word-boundary assertions -- see
// DESIGN.md for why those two are treated as non-regular here).
type Compiler struct {
	cfg     CompilerConfig
	b       *Builder
	depth   int
	unicode bool
	dotAll  bool
}

// Compile builds the NFA for re.Pattern. Top-level flags (u, s) govern the
// alphabet bound and dot's newline behavior for the whole pattern; inline
// `(?i)`/`(?s)`-style flag scoping mid-pattern is not tracked (documented
// simplification -- see DESIGN.md).
func Compile(re *ast.Regex, cfg CompilerConfig) (*NFA, error) {
	if cfg.MaxRecursionDepth == 0 {
		cfg = DefaultCompilerConfig()
	}
	c := &Compiler{
		cfg:     cfg,
		b:       NewBuilder(),
		unicode: re.Flags.Has(ast.FlagUnicode) || cfg.Unicode,
		dotAll:  re.Flags.Has(ast.FlagDotAll),
	}
	frag, err := c.compileNode(re.Pattern)
	if err != nil {
		return nil, err
	}
	match := c.b.AddMatch()
	if err := c.patchAll(frag.outs, match); err != nil {
		return nil, err
	}
	c.b.SetStart(frag.start)
	return c.b.Build()
}

// maxRune is the alphabet bound used for Complement calls: full Unicode
// under /u, ASCII otherwise.
func (c *Compiler) maxRune() rune {
	if c.unicode {
		return charset.MaxUnicode
	}
	return charset.MaxASCII
}

// fragment is a sub-NFA with one entry state and a list of dangling exit
// points still awaiting a successor -- the classic Thompson-construction
// "patch list" (mirrors the teacher compiler's start/end StateID pairs,
// generalized to multiple exits so alternation/quantifier branches don't
// need an extra epsilon join state for every fragment).
type fragment struct {
	start StateID
	outs  []patchPoint
}

// patchPoint names one still-dangling transition: state.Next (arm 0),
// state.Left (arm 1), or state.Right (arm 2).
type patchPoint struct {
	state StateID
	arm   int
}

func (c *Compiler) patchOne(p patchPoint, target StateID) error {
	switch p.arm {
	case 0:
		return c.b.Patch(p.state, target)
	case 1:
		return c.b.PatchLeft(p.state, target)
	default:
		return c.b.PatchRight(p.state, target)
	}
}

func (c *Compiler) patchAll(outs []patchPoint, target StateID) error {
	for _, p := range outs {
		if err := c.patchOne(p, target); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) concat(a, b fragment) (fragment, error) {
	if err := c.patchAll(a.outs, b.start); err != nil {
		return fragment{}, err
	}
	return fragment{start: a.start, outs: b.outs}, nil
}

// emptyFragment matches the empty string: a single epsilon state whose own
// Next is the fragment's one exit.
func (c *Compiler) emptyFragment() fragment {
	id := c.b.AddEpsilon(InvalidState)
	return fragment{start: id, outs: []patchPoint{{id, 0}}}
}

func (c *Compiler) compileRune(r rune) fragment {
	id := c.b.AddChar(charset.Single(r), InvalidState)
	return fragment{start: id, outs: []patchPoint{{id, 0}}}
}

func (c *Compiler) combineAlt(frags []fragment) fragment {
	if len(frags) == 1 {
		return frags[0]
	}
	cur := frags[len(frags)-1]
	for i := len(frags) - 2; i >= 0; i-- {
		id := c.b.AddSplit(frags[i].start, cur.start)
		outs := append(append([]patchPoint{}, frags[i].outs...), cur.outs...)
		cur = fragment{start: id, outs: outs}
	}
	return cur
}

// questFragment wraps an already-compiled fragment in a 0-or-1 split.
func (c *Compiler) questFragment(inner fragment) fragment {
	s := c.b.AddSplit(inner.start, InvalidState)
	outs := append(append([]patchPoint{}, inner.outs...), patchPoint{s, 2})
	return fragment{start: s, outs: outs}
}

func (c *Compiler) enter() error {
	c.depth++
	if c.depth > c.cfg.MaxRecursionDepth {
		return &ComplexityException{Phase: "compile", Limit: c.cfg.MaxRecursionDepth, Observed: c.depth}
	}
	return nil
}

func (c *Compiler) leave() { c.depth-- }

// compileNode dispatches on the AST node's concrete type and emits its
// fragment, recursing into children as needed.
func (c *Compiler) compileNode(n ast.Node) (fragment, error) {
	if err := c.enter(); err != nil {
		return fragment{}, err
	}
	defer c.leave()

	switch v := n.(type) {
	case *ast.Sequence:
		if len(v.Children_) == 0 {
			return c.emptyFragment(), nil
		}
		frag, err := c.compileNode(v.Children_[0])
		if err != nil {
			return fragment{}, err
		}
		for _, child := range v.Children_[1:] {
			next, err := c.compileNode(child)
			if err != nil {
				return fragment{}, err
			}
			frag, err = c.concat(frag, next)
			if err != nil {
				return fragment{}, err
			}
		}
		return frag, nil

	case *ast.Alternation:
		frags := make([]fragment, 0, len(v.Alternatives))
		for _, alt := range v.Alternatives {
			f, err := c.compileNode(alt)
			if err != nil {
				return fragment{}, err
			}
			frags = append(frags, f)
		}
		return c.combineAlt(frags), nil

	case *ast.Literal:
		runes := []rune(v.Value)
		if len(runes) == 0 {
			return c.emptyFragment(), nil
		}
		frag := c.compileRune(runes[0])
		for _, r := range runes[1:] {
			var err error
			frag, err = c.concat(frag, c.compileRune(r))
			if err != nil {
				return fragment{}, err
			}
		}
		return frag, nil

	case *ast.CharLiteral:
		return c.compileRune(v.CodePoint), nil

	case *ast.ControlChar:
		return c.compileRune(rune(v.Char)), nil

	case *ast.Dot:
		id := c.b.AddChar(c.dotSet(), InvalidState)
		return fragment{start: id, outs: []patchPoint{{id, 0}}}, nil

	case *ast.CharType:
		if v.Kind == ast.CTNewlineSeq {
			return c.compileNewlineSeq()
		}
		set := charTypeSet(v.Kind, c.maxRune())
		id := c.b.AddChar(set, InvalidState)
		return fragment{start: id, outs: []patchPoint{{id, 0}}}, nil

	case *ast.UnicodeProp:
		set, err := resolveUnicodeProp(v.Prop, v.Negated, c.maxRune())
		if err != nil {
			return fragment{}, err
		}
		id := c.b.AddChar(set, InvalidState)
		return fragment{start: id, outs: []patchPoint{{id, 0}}}, nil

	case *ast.CharClass:
		set, err := c.compileClassSet(v)
		if err != nil {
			return fragment{}, err
		}
		id := c.b.AddChar(set, InvalidState)
		return fragment{start: id, outs: []patchPoint{{id, 0}}}, nil

	case *ast.Quantifier:
		return c.compileQuantifier(v)

	case *ast.Group:
		return c.compileGroup(v)

	case *ast.ScriptRun:
		// Structural simplification: a script run is treated as a
		// transparent wrapper around Content (the actual Unicode-script
		// cohesion constraint spans the whole matched run and cannot be
		// expressed as a per-transition CharSet edge). See DESIGN.md.
		return c.compileNode(v.Content)

	case *ast.Anchor:
		// ^ and $ are ignored (epsilon): the solver's whole-string
		// FULL match mode makes them no-ops (spec.md §4.K).
		return c.emptyFragment(), nil

	case *ast.Assertion:
		switch v.Kind {
		case ast.AssertStartText, ast.AssertEndText, ast.AssertEndTextNL, ast.AssertPrevMatchEnd:
			return c.emptyFragment(), nil
		default:
			return fragment{}, errNonRegular(fmt.Sprintf("assertion %v", v.Kind))
		}

	case *ast.Keep, *ast.Comment, *ast.PcreVerb, *ast.LimitMatch, *ast.Callout:
		return c.emptyFragment(), nil

	case *ast.Backref:
		return fragment{}, errNonRegular("backreference")
	case *ast.Subroutine:
		return fragment{}, errNonRegular("subroutine/recursion call")
	case *ast.Conditional:
		return fragment{}, errNonRegular("conditional construct")
	case *ast.Define:
		return fragment{}, errNonRegular("DEFINE block")

	default:
		return fragment{}, errNonRegular(fmt.Sprintf("%T", n))
	}
}

func (c *Compiler) dotSet() charset.CharSet {
	full := charset.Full(c.maxRune())
	if c.dotAll {
		return full
	}
	return full.Subtract(charset.Single('\n'))
}

func (c *Compiler) compileNewlineSeq() (fragment, error) {
	crlf, err := c.concat(c.compileRune('\r'), c.compileRune('\n'))
	if err != nil {
		return fragment{}, err
	}
	id := c.b.AddChar(newlineSinglesSet(), InvalidState)
	single := fragment{start: id, outs: []patchPoint{{id, 0}}}
	return c.combineAlt([]fragment{crlf, single}), nil
}

func (c *Compiler) compileQuantifier(v *ast.Quantifier) (fragment, error) {
	switch v.Kind {
	case ast.QuantStar:
		return c.compileStar(v.Node)
	case ast.QuantPlus:
		first, err := c.compileNode(v.Node)
		if err != nil {
			return fragment{}, err
		}
		star, err := c.compileStar(v.Node)
		if err != nil {
			return fragment{}, err
		}
		return c.concat(first, star)
	case ast.QuantQuest:
		child, err := c.compileNode(v.Node)
		if err != nil {
			return fragment{}, err
		}
		return c.questFragment(child), nil
	default: // ast.QuantCounted
		return c.compileCounted(v.Node, v.Min, v.Max)
	}
}

func (c *Compiler) compileStar(node ast.Node) (fragment, error) {
	s := c.b.AddSplit(InvalidState, InvalidState)
	child, err := c.compileNode(node)
	if err != nil {
		return fragment{}, err
	}
	if err := c.b.PatchLeft(s, child.start); err != nil {
		return fragment{}, err
	}
	if err := c.patchAll(child.outs, s); err != nil {
		return fragment{}, err
	}
	return fragment{start: s, outs: []patchPoint{{s, 2}}}, nil
}

func (c *Compiler) compileCounted(node ast.Node, min, max int) (fragment, error) {
	var required fragment
	haveRequired := false
	for i := 0; i < min; i++ {
		child, err := c.compileNode(node)
		if err != nil {
			return fragment{}, err
		}
		if !haveRequired {
			required, haveRequired = child, true
			continue
		}
		required, err = c.concat(required, child)
		if err != nil {
			return fragment{}, err
		}
	}

	var tail fragment
	if max == -1 {
		star, err := c.compileStar(node)
		if err != nil {
			return fragment{}, err
		}
		tail = star
	} else {
		tail = c.emptyFragment()
		for i := 0; i < max-min; i++ {
			child, err := c.compileNode(node)
			if err != nil {
				return fragment{}, err
			}
			combined, err := c.concat(child, tail)
			if err != nil {
				return fragment{}, err
			}
			tail = c.questFragment(combined)
		}
	}

	if !haveRequired {
		return tail, nil
	}
	return c.concat(required, tail)
}

func (c *Compiler) compileGroup(v *ast.Group) (fragment, error) {
	switch v.Type {
	case ast.GroupLookaheadPositive, ast.GroupLookaheadNegative,
		ast.GroupLookbehindPositive, ast.GroupLookbehindNegative:
		return fragment{}, errNonRegular("look-around group")
	case ast.GroupInlineFlags:
		if v.Child == nil {
			return c.emptyFragment(), nil
		}
		return c.compileNode(v.Child)
	default: // Capturing, NonCapturing, Named, Atomic, BranchReset: transparent
		return c.compileNode(v.Child)
	}
}
