// Package redos is the ReDoS structural analyzer: it searches an AST for
// the quantifier shapes that make a backtracking engine's running time
// blow up on adversarial input, without running any matcher. Signals are
// purely structural -- nested unbounded quantifiers, an unbounded
// quantifier wrapping overlapping alternation branches, empty-matching
// repetition, and adjacent quantifiers over overlapping alphabets --
// found by walking the AST with a small type switch per check.
package redos

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/regexray/regexray/ast"
	"github.com/regexray/regexray/visit"
)

// Severity ranks how exploitable a finding is.
type Severity int

const (
	Safe Severity = iota
	Low
	Medium
	High
	Critical
)

func (s Severity) String() string {
	switch s {
	case Safe:
		return "Safe"
	case Low:
		return "Low"
	case Medium:
		return "Medium"
	case High:
		return "High"
	case Critical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// Thresholds maps a numeric score onto a Severity. The spec leaves the
// exact boundary configurable; these are its stated defaults.
type Thresholds struct {
	Low      int
	Medium   int
	High     int
}

// DefaultThresholds returns low<=3 < medium<=6 < high<=8 < critical.
func DefaultThresholds() Thresholds {
	return Thresholds{Low: 3, Medium: 6, High: 8}
}

func (t Thresholds) classify(score int) Severity {
	switch {
	case score <= 0:
		return Safe
	case score <= t.Low:
		return Low
	case score <= t.Medium:
		return Medium
	case score <= t.High:
		return High
	default:
		return Critical
	}
}

// Finding is one structural ReDoS signal.
//
// AnalysisID correlates this finding back to the facade call that
// produced it (stamped by the facade, left zero when Analyze is called
// directly).
type Finding struct {
	Severity         Severity     `json:"severity"`
	Message          string       `json:"message"`
	Pattern          string       `json:"pattern"` // recompiled text of the vulnerable subpattern
	SuggestedRewrite string       `json:"suggestedRewrite,omitempty"`
	Confidence       float64      `json:"confidence"`
	Pos              ast.Position `json:"-"`
	AnalysisID       uuid.UUID    `json:"analysis_id,omitempty"`
}

// Report is the aggregate result of analyzing one pattern, shaped to
// match spec's ReDoS JSON: {severity, score, confidence, trigger?,
// vulnerablePart?, vulnerableSubpattern?, findings:[...], recommendations[]}.
type Report struct {
	Severity             Severity  `json:"severity"`
	Score                int       `json:"score"`
	Confidence           float64   `json:"confidence"`
	Trigger              string    `json:"trigger,omitempty"`
	VulnerablePart       string    `json:"vulnerablePart,omitempty"`
	VulnerableSubpattern string    `json:"vulnerableSubpattern,omitempty"`
	Findings             []Finding `json:"findings"`
	Recommendations      []string  `json:"recommendations"`
}

// Options configures one Analyze call.
type Options struct {
	Thresholds Thresholds
	// MinConfidence suppresses findings below this confidence.
	MinConfidence float64
}

// DefaultOptions returns DefaultThresholds with no confidence floor.
func DefaultOptions() Options {
	return Options{Thresholds: DefaultThresholds()}
}

// Analyze walks re and returns its ReDoS Report.
func Analyze(re *ast.Regex, opts Options) (*Report, error) {
	a := &analyzer{opts: opts}
	if err := a.walk(re.Pattern); err != nil {
		return nil, err
	}

	score := 0
	for _, f := range a.findings {
		if f.Confidence < opts.MinConfidence {
			continue
		}
		score += severityWeight(f.Severity)
	}

	rep := &Report{
		Severity: opts.Thresholds.classify(score),
		Score:    score,
		Findings: filterConfidence(a.findings, opts.MinConfidence),
	}
	if len(rep.Findings) > 0 {
		worst := rep.Findings[0]
		for _, f := range rep.Findings {
			if f.Severity > worst.Severity {
				worst = f
			}
		}
		rep.VulnerableSubpattern = worst.Pattern
		rep.VulnerablePart = worst.Pattern
		rep.Confidence = worst.Confidence
		if sample, err := triggerSample(re, worst); err == nil {
			rep.Trigger = sample
		}
		for _, f := range rep.Findings {
			if f.SuggestedRewrite != "" {
				rep.Recommendations = append(rep.Recommendations, f.SuggestedRewrite)
			}
		}
	}
	return rep, nil
}

func filterConfidence(findings []Finding, min float64) []Finding {
	if min <= 0 {
		return findings
	}
	out := make([]Finding, 0, len(findings))
	for _, f := range findings {
		if f.Confidence >= min {
			out = append(out, f)
		}
	}
	return out
}

func severityWeight(s Severity) int {
	switch s {
	case Low:
		return 2
	case Medium:
		return 5
	case High:
		return 7
	case Critical:
		return 10
	default:
		return 0
	}
}

// triggerSample generates a short string that exercises the worst
// finding's subpattern, reusing the sample generator over the whole
// pattern (a standalone fragment may not be syntactically complete, e.g.
// a lone Backref with nothing captured before it).
func triggerSample(re *ast.Regex, f Finding) (string, error) {
	return visit.GenerateSample(re, visit.DefaultSampleGeneratorOptions())
}

type analyzer struct {
	opts     Options
	findings []Finding
}

func (a *analyzer) walk(n ast.Node) error {
	if n == nil {
		return nil
	}
	if q, ok := n.(*ast.Quantifier); ok {
		a.checkQuantifier(q)
	}
	if seq, ok := n.(*ast.Sequence); ok {
		a.checkAdjacentQuantifiers(seq)
	}
	for _, c := range n.Children() {
		if err := a.walk(c); err != nil {
			return err
		}
	}
	return nil
}

// isUnbounded reports whether q can repeat arbitrarily many times: `*`
// and `+` always can; `?` never can (0 or 1); a counted quantifier can
// only when it has no upper bound ({n,}).
func isUnbounded(q *ast.Quantifier) bool {
	switch q.Kind {
	case ast.QuantStar, ast.QuantPlus:
		return true
	case ast.QuantCounted:
		return q.Max == -1
	default:
		return false
	}
}

func subpatternText(n ast.Node) string {
	s, err := visit.CompileNode(n)
	if err != nil {
		return ""
	}
	return s
}

// checkQuantifier looks for nested unbounded quantifiers and
// empty-matching repetition rooted at q.
func (a *analyzer) checkQuantifier(q *ast.Quantifier) {
	if !isUnbounded(q) {
		return
	}
	if inner := findNestedUnbounded(q.Node); inner != nil {
		a.findings = append(a.findings, Finding{
			Severity:         Critical,
			Message:          fmt.Sprintf("nested unbounded quantifiers: %s", subpatternText(q)),
			Pattern:          subpatternText(q),
			SuggestedRewrite: fmt.Sprintf("(?>%s)", subpatternText(q.Node)),
			Confidence:       0.9,
			Pos:              q.Span(),
		})
		return
	}
	if canMatchEmpty(q.Node) {
		a.findings = append(a.findings, Finding{
			Severity:         High,
			Message:          fmt.Sprintf("empty-matching repetition: %s", subpatternText(q)),
			Pattern:          subpatternText(q),
			SuggestedRewrite: fmt.Sprintf("(?>%s)", subpatternText(q.Node)),
			Confidence:       0.7,
			Pos:              q.Span(),
		})
		return
	}
	if alt := findOverlappingAlternation(q.Node); alt != nil {
		a.findings = append(a.findings, Finding{
			Severity:         Medium,
			Message:          fmt.Sprintf("unbounded quantifier over overlapping alternation branches: %s", subpatternText(q)),
			Pattern:          subpatternText(q),
			SuggestedRewrite: fmt.Sprintf("(?>%s)", subpatternText(q.Node)),
			Confidence:       0.55,
			Pos:              q.Span(),
		})
	}
}

// findNestedUnbounded looks inside n (descending through grouping
// constructs only) for another unbounded quantifier -- the `(a+)+` shape.
func findNestedUnbounded(n ast.Node) *ast.Quantifier {
	switch v := n.(type) {
	case *ast.Quantifier:
		if isUnbounded(v) {
			return v
		}
		return findNestedUnbounded(v.Node)
	case *ast.Group:
		return findNestedUnbounded(v.Child)
	case *ast.Sequence:
		for _, c := range v.Children_ {
			if found := findNestedUnbounded(c); found != nil {
				return found
			}
		}
	case *ast.Alternation:
		for _, alt := range v.Alternatives {
			if found := findNestedUnbounded(alt); found != nil {
				return found
			}
		}
	}
	return nil
}

// findOverlappingAlternation reports the first Alternation reachable
// through grouping/sequence wrapping whose branches share a common first
// literal rune -- `(a|ab)*` style ambiguity.
func findOverlappingAlternation(n ast.Node) *ast.Alternation {
	switch v := n.(type) {
	case *ast.Alternation:
		if branchesOverlap(v.Alternatives) {
			return v
		}
	case *ast.Group:
		return findOverlappingAlternation(v.Child)
	case *ast.Sequence:
		for _, c := range v.Children_ {
			if found := findOverlappingAlternation(c); found != nil {
				return found
			}
		}
	}
	return nil
}

func branchesOverlap(alts []ast.Node) bool {
	seen := map[rune]bool{}
	for _, alt := range alts {
		r, ok := firstRune(alt)
		if !ok {
			continue
		}
		if seen[r] {
			return true
		}
		seen[r] = true
	}
	return false
}

// firstRune extracts the first code point an atom or a sequence's first
// atom would consume, for the shallow overlap checks above; it gives up
// (ok=false) on anything more complex than a literal lead-in.
func firstRune(n ast.Node) (rune, bool) {
	switch v := n.(type) {
	case *ast.Literal:
		runes := []rune(v.Value)
		if len(runes) > 0 {
			return runes[0], true
		}
	case *ast.CharLiteral:
		return v.CodePoint, true
	case *ast.Sequence:
		if len(v.Children_) > 0 {
			return firstRune(v.Children_[0])
		}
	case *ast.Group:
		return firstRune(v.Child)
	}
	return 0, false
}

// canMatchEmpty reports whether n can match the empty string -- the
// `(a?)*`/`(a*)*` shape, where the engine can loop forever making zero
// progress per iteration without a termination check.
func canMatchEmpty(n ast.Node) bool {
	switch v := n.(type) {
	case *ast.Literal:
		return v.Value == ""
	case *ast.CharLiteral, *ast.Dot, *ast.CharType, *ast.UnicodeProp,
		*ast.PosixClass, *ast.CharClass, *ast.ControlChar:
		return false
	case *ast.Sequence:
		for _, c := range v.Children_ {
			if !canMatchEmpty(c) {
				return false
			}
		}
		return true
	case *ast.Alternation:
		for _, alt := range v.Alternatives {
			if canMatchEmpty(alt) {
				return true
			}
		}
		return false
	case *ast.Group:
		return canMatchEmpty(v.Child)
	case *ast.Quantifier:
		if v.Min == 0 {
			return true
		}
		return canMatchEmpty(v.Node)
	case *ast.Conditional:
		if v.No == nil {
			return true
		}
		return canMatchEmpty(v.Yes) || canMatchEmpty(v.No)
	case *ast.ScriptRun:
		return canMatchEmpty(v.Content)
	case *ast.Anchor, *ast.Assertion, *ast.Keep, *ast.Comment, *ast.Define,
		*ast.VersionCondition, *ast.PcreVerb, *ast.Callout, *ast.LimitMatch,
		*ast.Backref, *ast.Subroutine:
		return true
	default:
		return true
	}
}

// checkAdjacentQuantifiers looks for two consecutive quantified atoms in
// a Sequence whose repeated atoms share the same first code point, e.g.
// `a+a+` or `\d+\d+` -- textbook adjacent-overlapping-quantifier ambiguity.
func (a *analyzer) checkAdjacentQuantifiers(seq *ast.Sequence) {
	for i := 0; i+1 < len(seq.Children_); i++ {
		q1, ok1 := seq.Children_[i].(*ast.Quantifier)
		q2, ok2 := seq.Children_[i+1].(*ast.Quantifier)
		if !ok1 || !ok2 || !isUnbounded(q1) || !isUnbounded(q2) {
			continue
		}
		if atomsOverlap(q1.Node, q2.Node) {
			a.findings = append(a.findings, Finding{
				Severity:         Medium,
				Message:          fmt.Sprintf("adjacent quantifiers over overlapping alphabets: %s%s", subpatternText(q1), subpatternText(q2)),
				Pattern:          subpatternText(q1) + subpatternText(q2),
				SuggestedRewrite: fmt.Sprintf("%s%s", possessive(q1), possessive(q2)),
				Confidence:       0.6,
				Pos:              q1.Span(),
			})
		}
	}
}

func possessive(q *ast.Quantifier) string {
	text := subpatternText(q.Node)
	switch q.Kind {
	case ast.QuantStar:
		return text + "*+"
	case ast.QuantPlus:
		return text + "++"
	default:
		return subpatternText(q)
	}
}

// atomsOverlap is a conservative, structural-only overlap check: two
// literal/char-literal runes are overlapping iff equal; two CharType
// escapes of the same kind are treated as overlapping; anything else is
// assumed non-overlapping rather than risk a false positive.
func atomsOverlap(a, b ast.Node) bool {
	ra, oka := firstRune(a)
	rb, okb := firstRune(b)
	if oka && okb {
		return ra == rb
	}
	ta, oka2 := a.(*ast.CharType)
	tb, okb2 := b.(*ast.CharType)
	if oka2 && okb2 {
		return ta.Kind == tb.Kind
	}
	return false
}
