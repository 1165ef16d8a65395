// Package parser implements a recursive-descent parser over the token
// stream produced by package lexer, building the typed ast.Node tree
// defined by package ast.
//
// The parser strips the pattern's delimiter/flags envelope, validates the
// flag alphabet, and walks the grammar (alternation / sequence / atom /
// quantifier / group). It defers semantic validation -- undefined
// backreferences, a quantifier applied to a non-quantifiable atom -- to the
// later validator visitor; a parse error here means the token stream could
// not be shaped into a tree at all, not that the tree is semantically
// sound.
package parser

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/regexray/regexray/ast"
	"github.com/regexray/regexray/lexer"
	"github.com/regexray/regexray/token"
)

// Config bounds the parser's recursive descent so a pathological or
// adversarial pattern cannot exhaust the stack or allocate unbounded AST
// nodes. max_pattern_length is enforced by the facade before the lexer
// ever runs; these two are the parser's own limits (spec.md's
// "Recursion limits" contract).
type Config struct {
	MaxRecursionDepth int
	MaxNodes          int
}

// DefaultConfig returns the parser's default budget.
func DefaultConfig() Config {
	return Config{
		MaxRecursionDepth: 250,
		MaxNodes:          20000,
	}
}

// Result bundles everything Parse produces: the tree, and the capture
// registry assembled along the way (needed by the validator to resolve
// backreferences/subroutines, and by the recompiler to preserve naming
// syntax).
type Result struct {
	Tree     *ast.Regex
	Captures []ast.CaptureInfo
}

// Parse strips source's delimiter/flags envelope, lexes the pattern body,
// and parses it into a Result.
func Parse(source string, cfg Config) (*Result, error) {
	delim, body, flagsStr, err := splitPattern(source)
	if err != nil {
		return nil, err
	}
	fs, bad, ok := ast.ParseFlags(flagsStr)
	if !ok {
		return nil, newErrf(len(source)-len(flagsStr), errUnknownFlag, "unknown regex flag %q", string(bad))
	}

	toks, err := lexer.Lex(body, fs.Has(ast.FlagUnicode))
	if err != nil {
		return nil, err
	}

	p := &Parser{
		toks:   toks,
		offset: strings.IndexByte(source, delim) + 1,
		cfg:    cfg,
		reg:    newRegistry(),
	}
	pattern, err := p.parseAlternation()
	if err != nil {
		return nil, err
	}
	if !p.toks.AtEOF() {
		tok := p.toks.Peek()
		return nil, newErrf(int(tok.Pos)+p.offset, errSyntax, "unexpected %s", tok.Kind)
	}

	re := &ast.Regex{
		Base:      ast.Base{Pos: ast.Position{Start: 0, End: uint32(len(source))}},
		Delimiter: delim,
		Flags:     fs,
		Pattern:   pattern,
	}
	return &Result{Tree: re, Captures: p.reg.Captures()}, nil
}

// splitPattern separates a `/pattern/flags`-style source into its
// delimiter byte, pattern body, and trailing flags. Delimiters are either
// a matched bracket pair (`()[]{}<>`) or any single non-alphanumeric,
// non-backslash, non-whitespace byte repeated at both ends (spec.md §3).
func splitPattern(source string) (delim byte, body, flags string, err error) {
	if len(source) < 2 {
		return 0, "", "", newErr(0, "pattern source too short", errSyntax)
	}
	open := source[0]
	if !isValidDelimiterByte(open) {
		return 0, "", "", newErrf(0, errSyntax, "invalid delimiter %q", string(open))
	}
	close := closingDelimiter(open)

	depth := 0
	for i := 1; i < len(source); i++ {
		c := source[i]
		if c == '\\' {
			i++
			continue
		}
		if open != close && c == open {
			depth++
			continue
		}
		if c == close {
			if depth > 0 {
				depth--
				continue
			}
			return open, source[1:i], source[i+1:], nil
		}
	}
	return 0, "", "", newErr(len(source), "unterminated pattern delimiter", errSyntax)
}

func isValidDelimiterByte(b byte) bool {
	switch {
	case b >= '0' && b <= '9', b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z':
		return false
	case b == '\\', b == ' ', b == '\t', b == '\n', b == '\r':
		return false
	default:
		return true
	}
}

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

// Parser holds the mutable state of one parse. offset is the byte index
// of the pattern body's first byte within the original (delimited)
// source, added to every position the lexer reports so that AST spans
// stay relative to the full source string, delimiter included.
type Parser struct {
	toks   *token.TokenStream
	offset int
	cfg    Config
	reg    *registry
	depth  int
	nodes  int
}

func (p *Parser) posOf(t token.Token) ast.Position {
	return ast.Position{Start: t.Pos + uint32(p.offset), End: t.End() + uint32(p.offset)}
}

func (p *Parser) posRange(first, last token.Token) ast.Position {
	return ast.Position{Start: first.Pos + uint32(p.offset), End: last.End() + uint32(p.offset)}
}

func (p *Parser) posSpan(first, last ast.Node) ast.Position {
	return ast.Position{Start: first.Span().Start, End: last.Span().End}
}

// enter tracks recursion depth and node count against cfg's budget. Every
// recursive production (group, char class, conditional) calls it on
// entry and defers leave on exit.
func (p *Parser) enter(pos int) error {
	p.depth++
	if p.depth > p.cfg.MaxRecursionDepth {
		return newErr(pos, "maximum recursion depth exceeded", errBudgetExceeded)
	}
	return nil
}

func (p *Parser) leave() { p.depth-- }

func (p *Parser) node(pos int) error {
	p.nodes++
	if p.nodes > p.cfg.MaxNodes {
		return newErr(pos, "maximum node count exceeded", errBudgetExceeded)
	}
	return nil
}

// ---- Grammar: alternation / sequence / quantified atom --------------------

func (p *Parser) parseAlternation() (ast.Node, error) {
	startTok := p.toks.Peek()
	first, err := p.parseSequence()
	if err != nil {
		return nil, err
	}
	if p.toks.Peek().Kind != token.KindAlternation {
		return first, nil
	}
	alts := []ast.Node{first}
	for p.toks.Peek().Kind == token.KindAlternation {
		p.toks.Next()
		next, err := p.parseSequence()
		if err != nil {
			return nil, err
		}
		alts = append(alts, next)
	}
	endPos := alts[len(alts)-1].Span().End
	return &ast.Alternation{
		Base:         ast.Base{Pos: ast.Position{Start: p.posOf(startTok).Start, End: endPos}},
		Alternatives: alts,
	}, nil
}

func isSequenceEnd(k token.Kind) bool {
	switch k {
	case token.KindEOF, token.KindAlternation, token.KindGroupClose, token.KindCommentClose:
		return true
	default:
		return false
	}
}

func (p *Parser) parseSequence() (ast.Node, error) {
	startTok := p.toks.Peek()
	var children []ast.Node
	for !isSequenceEnd(p.toks.Peek().Kind) {
		n, err := p.parseAtomWithQuantifier()
		if err != nil {
			return nil, err
		}
		// A quantifier binds to the last character of a literal run only:
		// `colou?` is "colo" followed by `u?`.
		if q, ok := n.(*ast.Quantifier); ok {
			if lit, ok := q.Node.(*ast.Literal); ok && !lit.IsRaw && utf8.RuneCountInString(lit.Value) > 1 {
				_, size := utf8.DecodeLastRuneInString(lit.Value)
				cut := len(lit.Value) - size
				mid := lit.Pos.Start + uint32(cut)
				children = append(children, &ast.Literal{Base: ast.Base{Pos: ast.Position{Start: lit.Pos.Start, End: mid}}, Value: lit.Value[:cut]})
				lit.Value = lit.Value[cut:]
				lit.Pos.Start = mid
				q.Pos.Start = mid
			}
		}
		if n != nil {
			children = append(children, n)
		}
	}
	if len(children) == 1 {
		return children[0], nil
	}
	pos := p.posOf(startTok)
	if len(children) > 0 {
		pos = ast.Position{Start: children[0].Span().Start, End: children[len(children)-1].Span().End}
	}
	return &ast.Sequence{Base: ast.Base{Pos: pos}, Children_: children}, nil
}

func (p *Parser) parseAtomWithQuantifier() (ast.Node, error) {
	startTok := p.toks.Peek()
	if err := p.node(int(startTok.Pos) + p.offset); err != nil {
		return nil, err
	}
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if p.toks.Peek().Kind != token.KindQuantifier {
		return atom, nil
	}
	return p.parseQuantifier(atom)
}

func (p *Parser) parseQuantifier(atom ast.Node) (ast.Node, error) {
	qtok := p.toks.Next()
	kind, min, max, err := decodeQuantifier(qtok)
	if err != nil {
		return nil, newErrf(int(qtok.Pos)+p.offset, errBadQuantifier, "invalid quantifier range %q: %v", qtok.Lexeme, err)
	}
	if min > max && max != -1 {
		return nil, newErrf(int(qtok.Pos)+p.offset, errBadQuantifier,
			"invalid quantifier range %q: min > max", qtok.Lexeme)
	}
	mode := ast.ModeGreedy
	switch p.toks.Peek().Kind {
	case token.KindQuantifier:
		switch p.toks.Peek().Lexeme {
		case "?":
			p.toks.Next()
			mode = ast.ModeLazy
		case "+":
			p.toks.Next()
			mode = ast.ModePossessive
		}
	}
	return &ast.Quantifier{
		Base: ast.Base{Pos: ast.Position{Start: atom.Span().Start, End: qtok.End() + uint32(p.offset)}},
		Node: atom,
		Kind: kind,
		Min:  min,
		Max:  max,
		Mode: mode,
	}, nil
}

func decodeQuantifier(tok token.Token) (ast.QuantKind, int, int, error) {
	switch tok.Lexeme {
	case "*":
		return ast.QuantStar, 0, -1, nil
	case "+":
		return ast.QuantPlus, 1, -1, nil
	case "?":
		return ast.QuantQuest, 0, 1, nil
	}
	// {n} {n,} {n,m} {,m}
	body := strings.TrimSuffix(strings.TrimPrefix(tok.Lexeme, "{"), "}")
	parts := strings.SplitN(body, ",", 2)
	if len(parts) == 1 {
		n, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, 0, 0, err
		}
		return ast.QuantCounted, n, n, nil
	}
	min := 0
	if parts[0] != "" {
		n, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, 0, 0, err
		}
		min = n
	}
	max := -1
	if parts[1] != "" {
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, 0, err
		}
		max = n
	}
	return ast.QuantCounted, min, max, nil
}
