package visit

import (
	"github.com/rivo/uniseg"

	"github.com/regexray/regexray/ast"
)

// TokenKind classifies a span of source text for syntax highlighting.
type TokenKind int

const (
	TokenLiteral TokenKind = iota
	TokenMeta              // delimiters, parens, pipes, escape-introduced metacharacters
	TokenGroup
	TokenQuantifier
	TokenClass
	TokenEscape
	TokenAnchor
	TokenComment
)

func (k TokenKind) String() string {
	switch k {
	case TokenLiteral:
		return "literal"
	case TokenMeta:
		return "meta"
	case TokenGroup:
		return "group"
	case TokenQuantifier:
		return "quantifier"
	case TokenClass:
		return "class"
	case TokenEscape:
		return "escape"
	case TokenAnchor:
		return "anchor"
	case TokenComment:
		return "comment"
	default:
		return "unknown"
	}
}

// Token is one highlighted span, positioned by the byte-accurate
// ast.Position every node already carries.
type Token struct {
	Kind TokenKind
	Pos  ast.Position
}

// Highlight (ast.Visitor) walks an AST collecting one Token per node --
// except Regex, Sequence, Range and ClassOperation nodes, which emit none
// of their own -- in walk order (a Quantifier's token follows its
// operand's), for a caller to render as syntax-highlighted text.
type Highlight struct {
	tokens []Token
}

// NewHighlight returns a fresh Highlight accumulator.
func NewHighlight() *Highlight { return &Highlight{} }

// HighlightPattern returns re's tokens in walk order.
func HighlightPattern(re *ast.Regex) ([]Token, error) {
	h := NewHighlight()
	if err := re.Accept(h); err != nil {
		return nil, err
	}
	return h.tokens, nil
}

func (h *Highlight) emit(kind TokenKind, n ast.Node) {
	h.tokens = append(h.tokens, Token{Kind: kind, Pos: n.Span()})
}

func (h *Highlight) descend(n ast.Node) error {
	for _, c := range n.Children() {
		if c == nil {
			continue
		}
		if err := c.Accept(h); err != nil {
			return err
		}
	}
	return nil
}

func (h *Highlight) VisitRegex(n *ast.Regex) error { return h.descend(n) }
func (h *Highlight) VisitSequence(n *ast.Sequence) error { return h.descend(n) }
func (h *Highlight) VisitAlternation(n *ast.Alternation) error {
	h.emit(TokenMeta, n)
	return h.descend(n)
}

func (h *Highlight) VisitGroup(n *ast.Group) error {
	h.emit(TokenGroup, n)
	return h.descend(n)
}

func (h *Highlight) VisitQuantifier(n *ast.Quantifier) error {
	if err := h.descend(n); err != nil {
		return err
	}
	h.emit(TokenQuantifier, n)
	return nil
}

func (h *Highlight) VisitLiteral(n *ast.Literal) error      { h.emit(TokenLiteral, n); return nil }
func (h *Highlight) VisitCharLiteral(n *ast.CharLiteral) error { h.emit(TokenEscape, n); return nil }
func (h *Highlight) VisitDot(n *ast.Dot) error              { h.emit(TokenMeta, n); return nil }
func (h *Highlight) VisitAnchor(n *ast.Anchor) error        { h.emit(TokenAnchor, n); return nil }
func (h *Highlight) VisitAssertion(n *ast.Assertion) error  { h.emit(TokenAnchor, n); return nil }
func (h *Highlight) VisitCharType(n *ast.CharType) error    { h.emit(TokenEscape, n); return nil }
func (h *Highlight) VisitUnicodeProp(n *ast.UnicodeProp) error { h.emit(TokenEscape, n); return nil }
func (h *Highlight) VisitPosixClass(n *ast.PosixClass) error   { h.emit(TokenClass, n); return nil }

func (h *Highlight) VisitCharClass(n *ast.CharClass) error {
	h.emit(TokenClass, n)
	return h.descend(n)
}

func (h *Highlight) VisitRange(n *ast.Range) error { return h.descend(n) }

func (h *Highlight) VisitClassOperation(n *ast.ClassOperation) error { return h.descend(n) }

func (h *Highlight) VisitBackref(n *ast.Backref) error         { h.emit(TokenEscape, n); return nil }
func (h *Highlight) VisitControlChar(n *ast.ControlChar) error { h.emit(TokenEscape, n); return nil }
func (h *Highlight) VisitKeep(n *ast.Keep) error               { h.emit(TokenMeta, n); return nil }
func (h *Highlight) VisitComment(n *ast.Comment) error         { h.emit(TokenComment, n); return nil }

func (h *Highlight) VisitConditional(n *ast.Conditional) error {
	h.emit(TokenGroup, n)
	return h.descend(n)
}

func (h *Highlight) VisitDefine(n *ast.Define) error {
	h.emit(TokenGroup, n)
	return h.descend(n)
}

func (h *Highlight) VisitSubroutine(n *ast.Subroutine) error { h.emit(TokenMeta, n); return nil }

func (h *Highlight) VisitScriptRun(n *ast.ScriptRun) error {
	h.emit(TokenGroup, n)
	return h.descend(n)
}

func (h *Highlight) VisitVersionCondition(n *ast.VersionCondition) error {
	h.emit(TokenMeta, n)
	return nil
}
func (h *Highlight) VisitPcreVerb(n *ast.PcreVerb) error     { h.emit(TokenMeta, n); return nil }
func (h *Highlight) VisitCallout(n *ast.Callout) error       { h.emit(TokenMeta, n); return nil }
func (h *Highlight) VisitLimitMatch(n *ast.LimitMatch) error { h.emit(TokenMeta, n); return nil }

// ColumnAt returns the zero-based grapheme-cluster column that byte offset
// corresponds to within source -- used to line up a caret under a
// diagnostic position even when the pattern contains multi-byte runes or
// combining sequences that count as a single visual column.
func ColumnAt(source string, byteOffset int) int {
	if byteOffset <= 0 {
		return 0
	}
	if byteOffset > len(source) {
		byteOffset = len(source)
	}
	col := 0
	rest := source[:byteOffset]
	gr := uniseg.NewGraphemes(rest)
	for gr.Next() {
		col++
	}
	return col
}
