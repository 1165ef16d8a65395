package visit

import (
	"math/rand"
	"strconv"

	"github.com/regexray/regexray/ast"
)

// SampleGeneratorOptions bounds sample generation the same way
// ExtractorConfig bounds literal extraction: small limits keep an
// unbounded quantifier from producing an unusably long sample.
type SampleGeneratorOptions struct {
	// MaxRepeat caps how many repeats above Min an unbounded ({n,}, *, +)
	// quantifier adds to its inner atom.
	MaxRepeat int
	// Seed drives the pseudo-random choices (which alternative, which
	// class member, how many repeats above Min); the same seed against
	// the same pattern always produces the same sample.
	Seed int64
}

// DefaultSampleGeneratorOptions mirrors the extractor's own style of
// small, named bounds.
func DefaultSampleGeneratorOptions() SampleGeneratorOptions {
	return SampleGeneratorOptions{MaxRepeat: 6, Seed: 1}
}

// SampleGenerator (ast.Visitor) produces one string that matches the
// pattern it walks. Like Compiler/Optimizer/Extractor it accumulates a
// per-node result on itself, but unlike them its children share the
// same rng and captures map (by pointer) rather than starting fresh,
// since a later backreference needs to see an earlier group's text.
type SampleGenerator struct {
	opts     SampleGeneratorOptions
	rng      *rand.Rand
	captures map[string]string
	result   string
}

// NewSampleGenerator returns a fresh SampleGenerator.
func NewSampleGenerator(opts SampleGeneratorOptions) *SampleGenerator {
	return &SampleGenerator{
		opts:     opts,
		rng:      rand.New(rand.NewSource(opts.Seed)),
		captures: map[string]string{},
	}
}

// GenerateSample returns one string re would match.
func GenerateSample(re *ast.Regex, opts SampleGeneratorOptions) (string, error) {
	g := NewSampleGenerator(opts)
	if err := re.Accept(g); err != nil {
		return "", err
	}
	return g.result, nil
}

func (g *SampleGenerator) child(n ast.Node) (string, error) {
	if n == nil {
		return "", nil
	}
	sub := &SampleGenerator{opts: g.opts, rng: g.rng, captures: g.captures}
	if err := n.Accept(sub); err != nil {
		return "", err
	}
	return sub.result, nil
}

func (g *SampleGenerator) VisitRegex(n *ast.Regex) error {
	s, err := g.child(n.Pattern)
	if err != nil {
		return err
	}
	g.result = s
	return nil
}

func (g *SampleGenerator) VisitSequence(n *ast.Sequence) error {
	var out []byte
	for _, c := range n.Children_ {
		s, err := g.child(c)
		if err != nil {
			return err
		}
		out = append(out, s...)
	}
	g.result = string(out)
	return nil
}

func (g *SampleGenerator) VisitAlternation(n *ast.Alternation) error {
	choice := n.Alternatives[g.rng.Intn(len(n.Alternatives))]
	s, err := g.child(choice)
	if err != nil {
		return err
	}
	g.result = s
	return nil
}

func (g *SampleGenerator) VisitGroup(n *ast.Group) error {
	switch n.Type {
	case ast.GroupCapturing, ast.GroupNamed, ast.GroupNonCapturing, ast.GroupAtomic, ast.GroupBranchReset:
		s, err := g.child(n.Child)
		if err != nil {
			return err
		}
		g.result = s
		if n.Type == ast.GroupCapturing || n.Type == ast.GroupNamed {
			g.captures[strconv.Itoa(n.CaptureIndex)] = s
			if n.Type == ast.GroupNamed {
				g.captures[n.Name] = s
			}
		}
	default:
		// Lookarounds, inline-flags groups: zero-width or non-matching.
		g.result = ""
	}
	return nil
}

func (g *SampleGenerator) repeatCount(min, max int) int {
	if max == -1 {
		upper := min + g.opts.MaxRepeat
		return min + g.rng.Intn(upper-min+1)
	}
	if max < min {
		return min
	}
	return min + g.rng.Intn(max-min+1)
}

func (g *SampleGenerator) VisitQuantifier(n *ast.Quantifier) error {
	var min, max int
	switch n.Kind {
	case ast.QuantStar:
		min, max = 0, -1
	case ast.QuantPlus:
		min, max = 1, -1
	case ast.QuantQuest:
		min, max = 0, 1
	case ast.QuantCounted:
		min, max = n.Min, n.Max
	}
	count := g.repeatCount(min, max)
	var out []byte
	for i := 0; i < count; i++ {
		s, err := g.child(n.Node)
		if err != nil {
			return err
		}
		out = append(out, s...)
	}
	g.result = string(out)
	return nil
}

func (g *SampleGenerator) VisitLiteral(n *ast.Literal) error {
	g.result = n.Value
	return nil
}

func (g *SampleGenerator) VisitCharLiteral(n *ast.CharLiteral) error {
	g.result = string(n.CodePoint)
	return nil
}

func (g *SampleGenerator) VisitDot(n *ast.Dot) error {
	g.result = "x"
	return nil
}

func (g *SampleGenerator) VisitAnchor(n *ast.Anchor) error   { g.result = ""; return nil }
func (g *SampleGenerator) VisitAssertion(n *ast.Assertion) error { g.result = ""; return nil }

var charTypeSample = map[ast.CharTypeKind]string{
	ast.CTDigit: "5", ast.CTNotDigit: "x",
	ast.CTSpace: " ", ast.CTNotSpace: "x",
	ast.CTWord: "a", ast.CTNotWord: "!",
	ast.CTHorizSpace: " ", ast.CTNotHorizSpace: "x",
	ast.CTVertSpace: "\n", ast.CTNotVertSpace: "x",
	ast.CTNewlineSeq: "\n",
}

func (g *SampleGenerator) VisitCharType(n *ast.CharType) error {
	g.result = charTypeSample[n.Kind]
	return nil
}

// Best-effort placeholders: sampling a real member of an arbitrary
// Unicode property or POSIX class needs a property table this package
// doesn't carry.
func (g *SampleGenerator) VisitUnicodeProp(n *ast.UnicodeProp) error { g.result = "a"; return nil }
func (g *SampleGenerator) VisitPosixClass(n *ast.PosixClass) error   { g.result = "a"; return nil }

func (g *SampleGenerator) VisitCharClass(n *ast.CharClass) error {
	if !n.IsNegated {
		if members, ok := expandClassMembers(n, 64); ok && len(members) > 0 {
			g.result = string(members[g.rng.Intn(len(members))])
			return nil
		}
	}
	g.result = "x"
	return nil
}

func (g *SampleGenerator) VisitRange(n *ast.Range) error {
	lo, ok1 := singleRune(n.Start)
	hi, ok2 := singleRune(n.End)
	if ok1 && ok2 && hi >= lo {
		g.result = string(lo + rune(g.rng.Intn(int(hi-lo)+1)))
		return nil
	}
	g.result = "x"
	return nil
}

func (g *SampleGenerator) VisitClassOperation(n *ast.ClassOperation) error {
	g.result = "x"
	return nil
}

func (g *SampleGenerator) VisitBackref(n *ast.Backref) error {
	g.result = g.captures[n.Ref]
	return nil
}

func (g *SampleGenerator) VisitControlChar(n *ast.ControlChar) error {
	g.result = string(rune(n.Char))
	return nil
}

func (g *SampleGenerator) VisitKeep(n *ast.Keep) error       { g.result = ""; return nil }
func (g *SampleGenerator) VisitComment(n *ast.Comment) error { g.result = ""; return nil }

func (g *SampleGenerator) VisitConditional(n *ast.Conditional) error {
	// Without running the match engine there is no way to evaluate the
	// condition, so pick the "yes" branch -- it is always syntactically
	// valid standalone, which the "no" branch is not guaranteed to be.
	s, err := g.child(n.Yes)
	if err != nil {
		return err
	}
	g.result = s
	return nil
}

func (g *SampleGenerator) VisitDefine(n *ast.Define) error { g.result = ""; return nil }

func (g *SampleGenerator) VisitSubroutine(n *ast.Subroutine) error {
	if n.Recursive {
		g.result = ""
		return nil
	}
	g.result = g.captures[n.Target]
	return nil
}

func (g *SampleGenerator) VisitScriptRun(n *ast.ScriptRun) error {
	s, err := g.child(n.Content)
	if err != nil {
		return err
	}
	g.result = s
	return nil
}

func (g *SampleGenerator) VisitVersionCondition(n *ast.VersionCondition) error {
	g.result = ""
	return nil
}
func (g *SampleGenerator) VisitPcreVerb(n *ast.PcreVerb) error     { g.result = ""; return nil }
func (g *SampleGenerator) VisitCallout(n *ast.Callout) error       { g.result = ""; return nil }
func (g *SampleGenerator) VisitLimitMatch(n *ast.LimitMatch) error { g.result = ""; return nil }
